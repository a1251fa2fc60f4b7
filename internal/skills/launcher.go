package skills

import (
	"fmt"
	"strings"
	"time"
)

// launchTarget maps an app/site keyword to a URL. The slice order is
// part of the contract: the first key contained in the spoken target
// wins, so an unordered map would change behavior.
type launchTarget struct {
	key string
	url string
}

var launchTargets = []launchTarget{
	{"calculator", "https://www.online-calculator.com"},
	{"youtube", "https://www.youtube.com"},
	{"whatsapp", "https://web.whatsapp.com"},
	{"camera", "https://webcamtests.com/mirror"},
	{"chrome", "https://www.google.com"},
	{"browser", "https://www.google.com"},
	{"gmail", "https://mail.google.com"},
	{"maps", "https://maps.google.com"},
	{"github", "https://github.com"},
	{"twitter", "https://twitter.com"},
	{"instagram", "https://instagram.com"},
	{"reddit", "https://reddit.com"},
}

// Open resolves a spoken target against the known keyword table, or
// guesses a www.{target}.com URL when nothing matches.
func Open(target string) string {
	for _, t := range launchTargets {
		if strings.Contains(target, t.key) {
			return fmt.Sprintf("Opening %s. URL: %s", t.key, t.url)
		}
	}
	return fmt.Sprintf("I can try to open that for you. URL: https://www.%s.com",
		strings.TrimSpace(target))
}

// Play confirms a media launch. It does not start playback itself; the
// UI owns that.
func Play(term string) string {
	return fmt.Sprintf("Playing %s on YouTube.", term)
}

// TimeOfDay renders an instant as 12-hour wall-clock time with AM/PM.
func TimeOfDay(t time.Time) string {
	return t.Format("03:04 PM")
}
