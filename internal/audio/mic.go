package audio

import (
	"context"
	log "log/slog"
	"strings"
	"time"
)

// Transcriber turns 16 kHz mono PCM into text.
type Transcriber interface {
	Transcribe(ctx context.Context, pcm []float32) (string, error)
}

// Microphone is the capture-device listener: record a bounded clip,
// transcribe it, lowercase the result. It satisfies the listen loop's
// Listener contract.
type Microphone struct {
	rec     *Recorder
	stt     Transcriber
	timeout time.Duration
}

func NewMicrophone(rec *Recorder, stt Transcriber, timeout time.Duration) *Microphone {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Microphone{rec: rec, stt: stt, timeout: timeout}
}

func (m *Microphone) Listen(ctx context.Context) (string, error) {
	pcm, err := m.rec.Record(m.timeout)
	if err != nil {
		return "", err
	}
	if len(pcm) == 0 {
		return "", nil
	}

	log.Debug("captured clip", "samples", len(pcm))

	text, err := m.stt.Transcribe(ctx, pcm)
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(text)), nil
}
