package tts

// Silent is a no-op speaker for text-only mode, when no synthesis or
// playback device is available.
type Silent struct{}

func (Silent) Speak(string) error { return nil }
