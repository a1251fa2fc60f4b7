// Package output fans one logical response out to both channels:
// synthesized speech and the structured UI event stream.
package output

import (
	log "log/slog"
)

type Speaker interface {
	Speak(text string) error
}

type Emitter interface {
	Emit(event string, payload map[string]any)
}

type Ducker interface {
	Duck()
	Restore()
}

// Sink delivers responses. Every failure inside is logged and
// swallowed: emission must never take the assistant down.
type Sink struct {
	speech Speaker
	events Emitter
	ducker Ducker
}

func New(speech Speaker, events Emitter, ducker Ducker) *Sink {
	return &Sink{speech: speech, events: events, ducker: ducker}
}

// Say delivers text to both channels at the same moment: the UI event
// first (non-blocking), then synchronous speech playback.
func (s *Sink) Say(text string) {
	if text == "" {
		return
	}

	log.Info("Quantum", "text", text)

	if s.events != nil {
		s.events.Emit("assistant_speak", map[string]any{"text": text})
	}

	if s.speech == nil {
		return
	}
	if s.ducker != nil {
		s.ducker.Duck()
		defer s.ducker.Restore()
	}
	if err := s.speech.Speak(text); err != nil {
		log.Warn("speech synthesis failed", "err", err)
	}
}

// Emit forwards a structured side-payload to the UI channel only.
func (s *Sink) Emit(event string, payload map[string]any) {
	if s.events == nil {
		return
	}
	s.events.Emit(event, payload)
}
