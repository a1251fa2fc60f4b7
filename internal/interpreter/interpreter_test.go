package interpreter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/quantumtecofficial/ar-study-buddy/internal/skills"
	"github.com/quantumtecofficial/ar-study-buddy/pkg/util"
)

type stubSearch struct {
	results  []skills.Result
	err      error
	gotQuery string
	gotMax   int
}

func (s *stubSearch) Search(_ context.Context, query string, max int) ([]skills.Result, error) {
	s.gotQuery = query
	s.gotMax = max
	return s.results, s.err
}

type stubWeather struct {
	reply   string
	gotCity string
	calls   int
}

func (s *stubWeather) Report(_ context.Context, city string) string {
	s.gotCity = city
	s.calls++
	return s.reply
}

type stubWiki struct {
	summary string
	err     error
}

func (s *stubWiki) Summary(context.Context, string) (string, error) {
	return s.summary, s.err
}

type stubNotes struct {
	entries []string
	err     error
}

func (s *stubNotes) Append(text string) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, text)
	return nil
}

type stubBrain struct {
	reply     string
	gotPrompt string
	calls     int
}

func (s *stubBrain) Ask(_ context.Context, prompt string) string {
	s.gotPrompt = prompt
	s.calls++
	return s.reply
}

type fixture struct {
	search  *stubSearch
	weather *stubWeather
	wiki    *stubWiki
	notes   *stubNotes
	brain   *stubBrain
	stops   int
	interp  *Interpreter
}

func newFixture() *fixture {
	f := &fixture{
		search:  &stubSearch{},
		weather: &stubWeather{reply: "sunny"},
		wiki:    &stubWiki{},
		notes:   &stubNotes{},
		brain:   &stubBrain{reply: "ai says hi"},
	}
	f.interp = New(Config{
		Search:  f.search,
		Weather: f.weather,
		Wiki:    f.wiki,
		Notes:   f.notes,
		Brain:   f.brain,
		Stop:    func() { f.stops++ },
		Now: func() time.Time {
			return time.Date(2025, 3, 9, 15, 4, 0, 0, time.UTC)
		},
	})
	return f
}

func TestRuleOrdering(t *testing.T) {
	ctx := context.Background()

	t.Run("weather beats time", func(t *testing.T) {
		f := newFixture()
		resp := f.interp.Interpret(ctx, "what time is the weather")
		if f.weather.calls != 1 {
			t.Fatalf("weather rule should win, got response %q", resp.Text)
		}
		if strings.Contains(resp.Text, "The time is") {
			t.Errorf("time rule fired for a weather utterance: %q", resp.Text)
		}
	})

	t.Run("weather and time routes to weather", func(t *testing.T) {
		f := newFixture()
		f.interp.Interpret(ctx, "what's the weather and time")
		if f.weather.calls != 1 {
			t.Error("expected the weather rule to consume the utterance")
		}
	})

	t.Run("play beats open", func(t *testing.T) {
		f := newFixture()
		resp := f.interp.Interpret(ctx, "play something then open youtube")
		if !strings.HasPrefix(resp.Text, "Playing ") {
			t.Errorf("play rule should win, got %q", resp.Text)
		}
	})

	t.Run("time swallows start study timer", func(t *testing.T) {
		// "timer" contains "time", and the time rule comes first; only
		// "start pomodoro" reaches the pomodoro rule.
		f := newFixture()
		resp := f.interp.Interpret(ctx, "start study timer")
		if !strings.HasPrefix(resp.Text, "The time is") {
			t.Errorf("got %q, want the time rule to win", resp.Text)
		}
	})

	t.Run("search wikipedia is not web search", func(t *testing.T) {
		f := newFixture()
		f.wiki.summary = "Go is a language."
		resp := f.interp.Interpret(ctx, "search wikipedia for golang")
		if resp.Text != "Go is a language." {
			t.Errorf("got %q", resp.Text)
		}
		if f.search.gotQuery != "" {
			t.Errorf("web search was called with %q", f.search.gotQuery)
		}
	})
}

func TestWebSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("first result body is spoken, full list attached", func(t *testing.T) {
		f := newFixture()
		f.search.results = []skills.Result{{Title: "A", Href: "u", Body: "b"}}

		resp := f.interp.Interpret(ctx, "search for cats")

		if resp.Text != "Here is what I found for cats: b" {
			t.Errorf("text = %q", resp.Text)
		}
		if f.search.gotQuery != "cats" || f.search.gotMax != 5 {
			t.Errorf("search called with (%q, %d)", f.search.gotQuery, f.search.gotMax)
		}
		if len(resp.Events) != 1 || resp.Events[0].Name != "search_results" {
			t.Fatalf("events = %+v", resp.Events)
		}
		got, ok := resp.Events[0].Payload["results"].([]skills.Result)
		if !ok {
			t.Fatalf("payload results has type %T", resp.Events[0].Payload["results"])
		}
		if !util.EqualSlices(got, f.search.results, func(x, y skills.Result) bool { return x == y }, false) {
			t.Errorf("payload results = %+v", got)
		}
	})

	t.Run("empty results", func(t *testing.T) {
		f := newFixture()
		resp := f.interp.Interpret(ctx, "search for nothing at all")
		if resp.Text != "I couldn't find anything." {
			t.Errorf("text = %q", resp.Text)
		}
		if len(resp.Events) != 0 {
			t.Errorf("no payload expected, got %+v", resp.Events)
		}
	})

	t.Run("search error degrades to not found", func(t *testing.T) {
		f := newFixture()
		f.search.err = errors.New("socket timeout")
		resp := f.interp.Interpret(ctx, "search for cats")
		if resp.Text != "I couldn't find anything." {
			t.Errorf("text = %q", resp.Text)
		}
	})
}

func TestWeatherRule(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		utterance string
		wantCity  string
	}{
		{"how's the weather", "New York"},
		{"what is the weather in tokyo", "tokyo"},
		{"weather in new delhi", "new delhi"},
	}
	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			f := newFixture()
			resp := f.interp.Interpret(ctx, tt.utterance)
			if f.weather.gotCity != tt.wantCity {
				t.Errorf("city = %q, want %q", f.weather.gotCity, tt.wantCity)
			}
			if resp.Text != "sunny" {
				t.Errorf("text = %q", resp.Text)
			}
		})
	}
}

func TestClockRule(t *testing.T) {
	f := newFixture()
	resp := f.interp.Interpret(context.Background(), "what time is it")
	if resp.Text != "The time is 03:04 PM" {
		t.Errorf("text = %q", resp.Text)
	}
}

func TestOpenRule(t *testing.T) {
	tests := []struct {
		utterance string
		want      string
	}{
		{"open youtube", "Opening youtube. URL: https://www.youtube.com"},
		{"open github", "Opening github. URL: https://github.com"},
		{"open floopity", "I can try to open that for you. URL: https://www.floopity.com"},
	}
	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			f := newFixture()
			resp := f.interp.Interpret(context.Background(), tt.utterance)
			if resp.Text != tt.want {
				t.Errorf("text = %q, want %q", resp.Text, tt.want)
			}
		})
	}
}

func TestStopRule(t *testing.T) {
	for _, utterance := range []string{"stop", "please exit now"} {
		t.Run(utterance, func(t *testing.T) {
			f := newFixture()
			resp := f.interp.Interpret(context.Background(), utterance)
			if resp.Text != "Goodbye, sir." {
				t.Errorf("text = %q", resp.Text)
			}
			if f.stops != 1 {
				t.Errorf("stop called %d times, want exactly 1", f.stops)
			}
		})
	}
}

func TestIdentityRules(t *testing.T) {
	tests := []struct {
		utterance string
		want      string
	}{
		{"who made you", "Protkarsh, the brilliant boy behind me. He made me."},
		{"who created you", "Protkarsh, the brilliant boy behind me. He made me."},
		{"what is your name", "My name is Quantum AI."},
		{"who are you", "My name is Quantum AI."},
	}
	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			f := newFixture()
			resp := f.interp.Interpret(context.Background(), tt.utterance)
			if resp.Text != tt.want {
				t.Errorf("text = %q, want %q", resp.Text, tt.want)
			}
		})
	}
}

func TestNoteRule(t *testing.T) {
	ctx := context.Background()

	t.Run("empty remainder asks back, records nothing", func(t *testing.T) {
		f := newFixture()
		resp := f.interp.Interpret(ctx, "take a note")
		if resp.Text != "What should I write down?" {
			t.Errorf("text = %q", resp.Text)
		}
		if len(f.notes.entries) != 0 {
			t.Errorf("entries = %v, want none", f.notes.entries)
		}
	})

	t.Run("note text is recorded and confirmed", func(t *testing.T) {
		f := newFixture()
		resp := f.interp.Interpret(ctx, "take a note buy milk")
		if len(f.notes.entries) != 1 || f.notes.entries[0] != "buy milk" {
			t.Fatalf("entries = %v", f.notes.entries)
		}
		if !strings.Contains(resp.Text, "buy milk") {
			t.Errorf("confirmation %q should contain the note text", resp.Text)
		}
	})

	t.Run("write this down variant", func(t *testing.T) {
		f := newFixture()
		f.interp.Interpret(ctx, "write this down feed the cat")
		if len(f.notes.entries) != 1 || f.notes.entries[0] != "feed the cat" {
			t.Fatalf("entries = %v", f.notes.entries)
		}
	})

	t.Run("persist error surfaces apology", func(t *testing.T) {
		f := newFixture()
		f.notes.err = errors.New("disk full")
		resp := f.interp.Interpret(ctx, "take a note buy milk")
		if resp.Text != "I couldn't save the note." {
			t.Errorf("text = %q", resp.Text)
		}
	})
}

func TestWikipediaRule(t *testing.T) {
	ctx := context.Background()

	t.Run("ambiguous and not-found are distinct", func(t *testing.T) {
		f := newFixture()

		f.wiki.err = fmt.Errorf("wrapped: %w", skills.ErrAmbiguous)
		ambiguous := f.interp.Interpret(ctx, "search wikipedia for mercury")

		f.wiki.err = fmt.Errorf("wrapped: %w", skills.ErrNotFound)
		missing := f.interp.Interpret(ctx, "search wikipedia for mercury")

		if ambiguous.Text == missing.Text {
			t.Fatalf("both error kinds produced %q", ambiguous.Text)
		}
		if !strings.Contains(ambiguous.Text, "multiple results") {
			t.Errorf("ambiguous text = %q", ambiguous.Text)
		}
		if !strings.Contains(missing.Text, "couldn't find a Wikipedia page") {
			t.Errorf("missing text = %q", missing.Text)
		}
	})

	t.Run("generic failure", func(t *testing.T) {
		f := newFixture()
		f.wiki.err = errors.New("tls handshake")
		resp := f.interp.Interpret(ctx, "search wikipedia for mercury")
		if resp.Text != "I encountered an error searching Wikipedia." {
			t.Errorf("text = %q", resp.Text)
		}
	})
}

func TestPomodoroRule(t *testing.T) {
	f := newFixture()
	resp := f.interp.Interpret(context.Background(), "start pomodoro")
	if resp.Text != "Starting Pomodoro timer for 25 minutes. Focus now." {
		t.Errorf("text = %q", resp.Text)
	}
	if len(resp.Events) != 1 || resp.Events[0].Name != "start_timer" {
		t.Fatalf("events = %+v", resp.Events)
	}
	if d, _ := resp.Events[0].Payload["duration"].(int); d != 25 {
		t.Errorf("duration = %v", resp.Events[0].Payload["duration"])
	}
}

func TestDefaultRoutesToBrain(t *testing.T) {
	f := newFixture()
	resp := f.interp.Interpret(context.Background(), "tell me a joke")
	if f.brain.gotPrompt != "tell me a joke" {
		t.Errorf("brain prompt = %q", f.brain.gotPrompt)
	}
	if resp.Text != "ai says hi" {
		t.Errorf("text = %q", resp.Text)
	}
}

type recordSink struct {
	said   []string
	events []Event
}

func (r *recordSink) Say(text string) { r.said = append(r.said, text) }
func (r *recordSink) Emit(event string, payload map[string]any) {
	r.events = append(r.events, Event{Name: event, Payload: payload})
}

func TestSinkReceivesResponse(t *testing.T) {
	f := newFixture()
	sink := &recordSink{}
	f.interp.cfg.Sink = sink

	f.interp.Interpret(context.Background(), "start pomodoro")

	if len(sink.said) != 1 || !strings.Contains(sink.said[0], "Pomodoro") {
		t.Errorf("said = %v", sink.said)
	}
	if len(sink.events) != 1 || sink.events[0].Name != "start_timer" {
		t.Errorf("events = %+v", sink.events)
	}
}

func TestEmptyUtterance(t *testing.T) {
	f := newFixture()
	resp := f.interp.Interpret(context.Background(), "   ")
	if resp.Text != "" || len(resp.Events) != 0 {
		t.Errorf("blank utterance should be a no-op, got %+v", resp)
	}
	if f.brain.calls != 0 {
		t.Error("brain should not be consulted for a blank utterance")
	}
}
