package skills

import (
	"fmt"
	"os"
	"sync"
	"time"
)

const noteStamp = "2006-01-02 15:04:05"

// Notebook appends timestamped lines to a flat text file. Lines are
// never rewritten or truncated. Safe for concurrent use.
type Notebook struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

func NewNotebook(path string) *Notebook {
	return &Notebook{path: path, now: time.Now}
}

func (n *Notebook) Append(text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	f, err := os.OpenFile(n.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open note log: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("[%s] %s\n", n.now().Format(noteStamp), text)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("append note: %w", err)
	}
	return nil
}
