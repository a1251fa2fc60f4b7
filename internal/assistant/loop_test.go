package assistant

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/quantumtecofficial/ar-study-buddy/internal/interpreter"
)

// scriptListener pops one scripted line per Listen call, then yields
// silence forever.
type scriptListener struct {
	mu    sync.Mutex
	lines []string
}

func (s *scriptListener) Listen(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.lines) == 0 {
		return "", nil
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

type recordSink struct {
	mu     sync.Mutex
	says   []string
	events []string
}

func (r *recordSink) Say(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.says = append(r.says, text)
}

func (r *recordSink) Emit(event string, _ map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordSink) said(text string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.says {
		if s == text {
			return true
		}
	}
	return false
}

func (r *recordSink) emitted(event string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == event {
			return true
		}
	}
	return false
}

type countingBrain struct {
	mu    sync.Mutex
	calls int
}

func (b *countingBrain) Ask(_ context.Context, prompt string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	return "thinking about " + prompt
}

func (b *countingBrain) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

// startLoop wires a loop exactly like the daemon does: the stop rule's
// callback closes over the loop itself.
func startLoop(t *testing.T, lines []string) (*Loop, *recordSink, *countingBrain, chan struct{}) {
	t.Helper()

	sink := &recordSink{}
	brain := &countingBrain{}

	var loop *Loop
	interp := interpreter.New(interpreter.Config{
		Brain: brain,
		Sink:  sink,
		Stop:  func() { loop.Stop() },
	})
	loop = NewLoop(&scriptListener{lines: lines}, interp, sink, "quantum")
	loop.pause = time.Millisecond

	done := make(chan struct{})
	go func() {
		loop.Run(context.Background())
		close(done)
	}()
	return loop, sink, brain, done
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func waitDone(t *testing.T, done chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not exit")
	}
}

func TestLoopAnnouncesOnline(t *testing.T) {
	loop, sink, _, done := startLoop(t, nil)

	waitFor(t, "online greeting", func() bool { return sink.said("Quantum is online.") })
	if got := loop.State(); got != StateRunning {
		t.Errorf("state = %v, want running", got)
	}

	loop.Stop()
	waitDone(t, done)
	if got := loop.State(); got != StateStopped {
		t.Errorf("state after exit = %v, want stopped", got)
	}
}

func TestLoopWakeWordCommand(t *testing.T) {
	loop, sink, _, done := startLoop(t, []string{"quantum what is your name"})

	waitFor(t, "identity reply", func() bool { return sink.said("My name is Quantum AI.") })
	if !sink.emitted("user_speak") {
		t.Error("utterance was not surfaced to the UI channel")
	}

	loop.Stop()
	waitDone(t, done)
}

func TestLoopIgnoresWithoutWakeWord(t *testing.T) {
	loop, sink, brain, done := startLoop(t, []string{"tell me a joke"})

	waitFor(t, "utterance surfaced", func() bool { return sink.emitted("user_speak") })

	loop.Stop()
	waitDone(t, done)

	if n := brain.count(); n != 0 {
		t.Errorf("brain consulted %d times for an unaddressed utterance", n)
	}
	if sink.said("thinking about tell me a joke") {
		t.Error("reply produced without the wake word")
	}
}

func TestLoopBareWakeWordFollowUp(t *testing.T) {
	loop, sink, _, done := startLoop(t, []string{"quantum", "who are you"})

	waitFor(t, "follow-up reply", func() bool { return sink.said("My name is Quantum AI.") })
	if !sink.said("Yes sir?") {
		t.Error("bare wake word did not prompt for a follow-up")
	}

	loop.Stop()
	waitDone(t, done)
}

func TestLoopBareWakeWordSilence(t *testing.T) {
	loop, sink, brain, done := startLoop(t, []string{"quantum"})

	waitFor(t, "follow-up prompt", func() bool { return sink.said("Yes sir?") })
	if got := loop.State(); got != StateRunning {
		t.Errorf("state = %v, want running after a silent follow-up", got)
	}
	if n := brain.count(); n != 0 {
		t.Errorf("brain consulted %d times on silence", n)
	}

	loop.Stop()
	waitDone(t, done)
}

func TestLoopStopCommand(t *testing.T) {
	loop, sink, _, done := startLoop(t, []string{"quantum stop"})

	waitDone(t, done)
	if !sink.said("Goodbye, sir.") {
		t.Error("no farewell on stop")
	}
	if got := loop.State(); got != StateStopped {
		t.Errorf("state = %v, want stopped", got)
	}
}

func TestLoopContextCancel(t *testing.T) {
	sink := &recordSink{}
	interp := interpreter.New(interpreter.Config{Brain: &countingBrain{}, Sink: sink})
	loop := NewLoop(&scriptListener{}, interp, sink, "quantum")
	loop.pause = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()

	waitFor(t, "loop start", func() bool { return loop.State() == StateRunning })
	cancel()
	waitDone(t, done)
	if got := loop.State(); got != StateStopped {
		t.Errorf("state = %v, want stopped after cancel", got)
	}
}

func TestIdleListenerPaces(t *testing.T) {
	idle := Idle{Pause: 5 * time.Millisecond}
	start := time.Now()
	text, err := idle.Listen(context.Background())
	if err != nil || text != "" {
		t.Fatalf("Listen = (%q, %v), want empty and nil", text, err)
	}
	if time.Since(start) < 5*time.Millisecond {
		t.Error("idle listener returned without pausing")
	}
}
