package config

import (
	"os"
	"strconv"
)

// Config is everything read from the environment. Missing provider keys
// are not an error: the affected provider degrades to always-fail and
// the fallback chain routes around it.
type Config struct {
	OpenAIKey    string
	GroqKey      string
	Port         int
	NotesFile    string
	WhisperModel string
	WakeWord     string
}

func FromEnv() Config {
	cfg := Config{
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		GroqKey:      os.Getenv("GROQ_API_KEY"),
		Port:         5001,
		NotesFile:    "notes.txt",
		WhisperModel: "third_party/whisper.cpp/models/ggml-base.en.bin",
		WakeWord:     "quantum",
	}

	if v := os.Getenv("PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Port = n
		}
	}
	if v := os.Getenv("NOTES_FILE"); v != "" {
		cfg.NotesFile = v
	}
	if v := os.Getenv("WHISPER_MODEL"); v != "" {
		cfg.WhisperModel = v
	}
	if v := os.Getenv("WAKE_WORD"); v != "" {
		cfg.WakeWord = v
	}

	return cfg
}
