// Package interpreter routes normalized utterances to skills through an
// ordered list of substring rules. The order is load-bearing: an
// utterance matching several rules always goes to the earliest one, and
// tests pin that down.
package interpreter

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"strings"
	"time"

	"github.com/quantumtecofficial/ar-study-buddy/internal/skills"
)

const maxSearchResults = 5

// Event is a structured side-payload delivered to the UI channel
// alongside the spoken text.
type Event struct {
	Name    string
	Payload map[string]any
}

// Response is what one interpreted utterance produces.
type Response struct {
	Text   string
	Events []Event
}

// Sink receives the response: Say carries the spoken/text channel,
// Emit the structured UI channel. Implementations must not panic.
type Sink interface {
	Say(text string)
	Emit(event string, payload map[string]any)
}

// Dependencies the rules call into. Consumer-side interfaces so tests
// can stub each skill.
type (
	WeatherReporter interface {
		Report(ctx context.Context, city string) string
	}
	Encyclopedia interface {
		Summary(ctx context.Context, topic string) (string, error)
	}
	NoteTaker interface {
		Append(text string) error
	}
	Brain interface {
		Ask(ctx context.Context, prompt string) string
	}
)

type Config struct {
	Search  skills.Searcher
	Weather WeatherReporter
	Wiki    Encyclopedia
	Notes   NoteTaker
	Brain   Brain

	// Sink, when set, receives every response as a side effect of
	// Interpret. Optional so tests can inspect the return value alone.
	Sink Sink

	// Stop is invoked by the stop/exit rule to flip the listen loop's
	// continue flag.
	Stop func()

	// Now supplies the current instant for the time rule.
	Now func() time.Time
}

type rule struct {
	match  func(q string) bool
	handle func(ctx context.Context, q string) Response
}

// Interpreter holds no mutable state and is safe to call from the
// listen loop and the UI handler concurrently.
type Interpreter struct {
	cfg   Config
	rules []rule
}

func New(cfg Config) *Interpreter {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Stop == nil {
		cfg.Stop = func() {}
	}

	i := &Interpreter{cfg: cfg}
	i.rules = []rule{
		{contains("search for"), i.webSearch},
		{contains("play"), i.play},
		{contains("weather"), i.weather},
		{contains("time"), i.clock},
		{contains("open"), i.open},
		{containsAny("stop", "exit"), i.shutdown},
		{containsAny("who made you", "who created you"), i.creator},
		{containsAny("what is your name", "who are you"), i.identity},
		{containsAny("take a note", "write this down"), i.note},
		{contains("search wikipedia for"), i.wikipedia},
		{containsAny("start study timer", "start pomodoro"), i.pomodoro},
	}
	return i
}

// Interpret routes one utterance to the first matching rule, falling
// back to the AI chain. The response is delivered to the sink and also
// returned. It never panics; skill failures degrade to apology text.
func (i *Interpreter) Interpret(ctx context.Context, utterance string) Response {
	q := strings.TrimSpace(utterance)
	if q == "" {
		return Response{}
	}

	resp := i.route(ctx, q)
	if i.cfg.Sink != nil {
		i.cfg.Sink.Say(resp.Text)
		for _, ev := range resp.Events {
			i.cfg.Sink.Emit(ev.Name, ev.Payload)
		}
	}
	return resp
}

func (i *Interpreter) route(ctx context.Context, q string) Response {
	for _, r := range i.rules {
		if r.match(q) {
			return r.handle(ctx, q)
		}
	}
	return Response{Text: i.cfg.Brain.Ask(ctx, q)}
}

// ── rule handlers, in evaluation order ──────────────────────────

func (i *Interpreter) webSearch(ctx context.Context, q string) Response {
	term := strip(q, "search for")
	results, err := i.cfg.Search.Search(ctx, term, maxSearchResults)
	if err != nil {
		log.Warn("web search failed", "term", term, "err", err)
		results = nil
	}
	if len(results) == 0 {
		return Response{Text: "I couldn't find anything."}
	}
	return Response{
		Text: fmt.Sprintf("Here is what I found for %s: %s", term, results[0].Body),
		Events: []Event{{
			Name:    "search_results",
			Payload: map[string]any{"results": results},
		}},
	}
}

func (i *Interpreter) play(_ context.Context, q string) Response {
	return Response{Text: skills.Play(strip(q, "play"))}
}

func (i *Interpreter) weather(ctx context.Context, q string) Response {
	city := "New York"
	// Everything after the last occurrence of "in" is the city, even
	// when "in" sits inside a word.
	if idx := strings.LastIndex(q, "in"); idx >= 0 {
		city = strings.TrimSpace(q[idx+len("in"):])
	}
	return Response{Text: i.cfg.Weather.Report(ctx, city)}
}

func (i *Interpreter) clock(_ context.Context, _ string) Response {
	return Response{Text: fmt.Sprintf("The time is %s", skills.TimeOfDay(i.cfg.Now()))}
}

func (i *Interpreter) open(_ context.Context, q string) Response {
	return Response{Text: skills.Open(strip(q, "open"))}
}

func (i *Interpreter) shutdown(_ context.Context, _ string) Response {
	i.cfg.Stop()
	return Response{Text: "Goodbye, sir."}
}

func (i *Interpreter) creator(_ context.Context, _ string) Response {
	return Response{Text: "Protkarsh, the brilliant boy behind me. He made me."}
}

func (i *Interpreter) identity(_ context.Context, _ string) Response {
	return Response{Text: "My name is Quantum AI."}
}

func (i *Interpreter) note(_ context.Context, q string) Response {
	text := strip(strip(q, "take a note"), "write this down")
	if text == "" {
		return Response{Text: "What should I write down?"}
	}
	if err := i.cfg.Notes.Append(text); err != nil {
		log.Error("note append failed", "err", err)
		return Response{Text: "I couldn't save the note."}
	}
	return Response{Text: fmt.Sprintf("Note saved: %s", text)}
}

func (i *Interpreter) wikipedia(ctx context.Context, q string) Response {
	topic := strip(q, "search wikipedia for")
	summary, err := i.cfg.Wiki.Summary(ctx, topic)
	switch {
	case err == nil:
		return Response{Text: summary}
	case errors.Is(err, skills.ErrAmbiguous):
		return Response{Text: fmt.Sprintf("There are multiple results for %s. Please be more specific.", topic)}
	case errors.Is(err, skills.ErrNotFound):
		return Response{Text: fmt.Sprintf("I couldn't find a Wikipedia page for %s.", topic)}
	default:
		log.Warn("wikipedia lookup failed", "topic", topic, "err", err)
		return Response{Text: "I encountered an error searching Wikipedia."}
	}
}

func (i *Interpreter) pomodoro(_ context.Context, _ string) Response {
	return Response{
		Text: "Starting Pomodoro timer for 25 minutes. Focus now.",
		Events: []Event{{
			Name:    "start_timer",
			Payload: map[string]any{"duration": 25},
		}},
	}
}

// ── predicates and extraction ───────────────────────────────────

func contains(sub string) func(string) bool {
	return func(q string) bool { return strings.Contains(q, sub) }
}

func containsAny(subs ...string) func(string) bool {
	return func(q string) bool {
		for _, sub := range subs {
			if strings.Contains(q, sub) {
				return true
			}
		}
		return false
	}
}

// strip removes every occurrence of the matched keyword and trims the
// remainder.
func strip(q, keyword string) string {
	return strings.TrimSpace(strings.ReplaceAll(q, keyword, ""))
}
