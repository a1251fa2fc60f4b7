// Package assistant runs the passive listen loop: capture an
// utterance, gate it on the wake word, hand the remainder to the
// interpreter.
package assistant

import (
	"context"
	log "log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/quantumtecofficial/ar-study-buddy/internal/interpreter"
)

const DefaultWakeWord = "quantum"

// State of the loop. IDLE before Run, RUNNING while capturing, STOPPED
// once the loop has exited. FOLLOW_UP (the one extra capture after a
// bare wake word) is not observable from outside a single iteration.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Listener yields one utterance per call, blocking for a bounded
// duration. A nil error with empty text means "nothing heard this
// cycle"; errors are treated the same way.
type Listener interface {
	Listen(ctx context.Context) (string, error)
}

// Idle is the text-only listener used when no capture device is
// available: it just paces the loop.
type Idle struct {
	Pause time.Duration
}

func (i Idle) Listen(ctx context.Context) (string, error) {
	pause := i.Pause
	if pause <= 0 {
		pause = time.Second
	}
	select {
	case <-ctx.Done():
	case <-time.After(pause):
	}
	return "", nil
}

// Loop is the background worker. Only the loop goroutine reads the
// continue flag; only the interpreter's stop rule (via Stop) writes it.
type Loop struct {
	listener Listener
	interp   *interpreter.Interpreter
	sink     interpreter.Sink
	wake     string
	pause    time.Duration

	running atomic.Bool
	state   atomic.Int32
}

func NewLoop(listener Listener, interp *interpreter.Interpreter, sink interpreter.Sink, wake string) *Loop {
	if wake == "" {
		wake = DefaultWakeWord
	}
	return &Loop{
		listener: listener,
		interp:   interp,
		sink:     sink,
		wake:     wake,
		pause:    100 * time.Millisecond,
	}
}

func (l *Loop) State() State { return State(l.state.Load()) }

// Stop clears the continue flag. The loop exits at the next iteration
// boundary; an in-progress capture is never interrupted.
func (l *Loop) Stop() { l.running.Store(false) }

// Run blocks until the loop stops. Call it on its own goroutine.
func (l *Loop) Run(ctx context.Context) {
	l.running.Store(true)
	l.state.Store(int32(StateRunning))
	l.sink.Say("Quantum is online.")

	for l.running.Load() {
		select {
		case <-ctx.Done():
			l.running.Store(false)
			continue
		default:
		}

		utterance, err := l.listener.Listen(ctx)
		if err != nil {
			log.Debug("nothing captured this cycle", "err", err)
		} else if utterance != "" {
			l.handle(ctx, utterance)
		}
		time.Sleep(l.pause)
	}

	l.state.Store(int32(StateStopped))
	log.Info("listen loop stopped")
}

func (l *Loop) handle(ctx context.Context, utterance string) {
	l.sink.Emit("user_speak", map[string]any{"text": utterance})

	if !strings.Contains(utterance, l.wake) {
		// Passive listening: without the wake word nothing is acted on.
		return
	}

	command := strings.TrimSpace(strings.ReplaceAll(utterance, l.wake, ""))
	if command != "" {
		l.interp.Interpret(ctx, command)
		return
	}

	// Bare wake word: exactly one follow-up capture, then back to the
	// regular cycle whatever happens.
	l.sink.Say("Yes sir?")
	followUp, err := l.listener.Listen(ctx)
	if err != nil || strings.TrimSpace(followUp) == "" {
		return
	}
	l.interp.Interpret(ctx, followUp)
}
