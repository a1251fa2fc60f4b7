package audio

import (
	log "log/slog"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

var (
	indexRe   = regexp.MustCompile(`^Sink Input #(\d+)`)
	percentRe = regexp.MustCompile(`(\d+)\s*%`)
)

// Ducker lowers the volume of other PulseAudio streams while the
// assistant speaks and restores them afterwards. Streams whose
// application.name is in selfNames are left alone.
type Ducker struct {
	mu        sync.Mutex
	selfNames []string
	saved     map[int]int // sink-input id -> original volume %
	minVolume int
}

func NewDucker(selfNames []string, minVolume int) *Ducker {
	if minVolume < 0 {
		minVolume = 0
	}
	return &Ducker{
		selfNames: append([]string(nil), selfNames...),
		saved:     make(map[int]int),
		minVolume: minVolume,
	}
}

// Duck drops every foreign stream to minVolume, remembering the
// original levels. Failures are logged and ignored: ducking is a
// comfort feature, never a reason to skip speaking.
func (d *Ducker) Duck() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.saved) > 0 {
		return // already ducked
	}

	for _, s := range listSinkInputs() {
		if d.isSelf(s.app) || s.volume <= d.minVolume {
			continue
		}
		if err := setSinkInputVolume(s.id, d.minVolume); err != nil {
			log.Debug("duck failed", "stream", s.id, "err", err)
			continue
		}
		d.saved[s.id] = s.volume
	}
}

// Restore puts every ducked stream back to its remembered level.
func (d *Ducker) Restore() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for id, vol := range d.saved {
		if err := setSinkInputVolume(id, vol); err != nil {
			log.Debug("restore failed", "stream", id, "err", err)
		}
	}
	d.saved = make(map[int]int)
}

func (d *Ducker) isSelf(app string) bool {
	for _, name := range d.selfNames {
		if strings.EqualFold(app, name) {
			return true
		}
	}
	return false
}

type sinkInput struct {
	id     int
	volume int
	app    string
}

func listSinkInputs() []sinkInput {
	out, err := exec.Command("pactl", "list", "sink-inputs").Output()
	if err != nil {
		return nil
	}

	var (
		streams []sinkInput
		cur     *sinkInput
	)
	for _, line := range strings.Split(string(out), "\n") {
		trimmed := strings.TrimSpace(line)

		if m := indexRe.FindStringSubmatch(trimmed); m != nil {
			if cur != nil {
				streams = append(streams, *cur)
			}
			id, _ := strconv.Atoi(m[1])
			cur = &sinkInput{id: id}
			continue
		}
		if cur == nil {
			continue
		}
		if strings.HasPrefix(trimmed, "Volume:") && cur.volume == 0 {
			if m := percentRe.FindStringSubmatch(trimmed); m != nil {
				cur.volume, _ = strconv.Atoi(m[1])
			}
		}
		if strings.HasPrefix(trimmed, "application.name") {
			if _, val, ok := strings.Cut(trimmed, "="); ok {
				cur.app = strings.Trim(strings.TrimSpace(val), `"`)
			}
		}
	}
	if cur != nil {
		streams = append(streams, *cur)
	}
	return streams
}

func setSinkInputVolume(id, percent int) error {
	return exec.Command("pactl", "set-sink-input-volume",
		strconv.Itoa(id), strconv.Itoa(percent)+"%").Run()
}
