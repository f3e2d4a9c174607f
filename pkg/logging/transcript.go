package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Transcript writes a human-readable line per interaction to daily log files.
type Transcript struct {
	dir     string
	file    *os.File
	path    string
	mu      sync.Mutex
	lastDay string
	now     func() time.Time
}

// NewTranscript creates a transcript that writes to dir.
// Log files are named transcript-YYYY-MM-DD.log.
func NewTranscript(dir string) (*Transcript, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create transcript dir: %w", err)
	}

	t := &Transcript{dir: dir, now: time.Now}
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.rotateLocked(); err != nil {
		return nil, err
	}
	return t, nil
}

// Write appends a timestamped line.
func (t *Transcript) Write(line string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.maybeRotateLocked(); err != nil {
		return err
	}
	if t.file == nil {
		return nil
	}

	_, err := fmt.Fprintf(t.file, "[%s] %s\n", t.now().Format("15:04:05.000"), line)
	return err
}

// WriteTick writes the events of one tick under a header naming the session and tick number.
func (t *Transcript) WriteTick(sessionID string, tick int, events []string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.maybeRotateLocked(); err != nil {
		return err
	}
	if t.file == nil {
		return nil
	}

	header := fmt.Sprintf("=== [%s] session=%s tick=%d ===\n", t.now().Format("15:04:05"), sessionID, tick)
	if _, err := t.file.WriteString(header); err != nil {
		return err
	}
	if len(events) == 0 {
		_, err := t.file.WriteString("  (no events)\n")
		return err
	}
	_, err := t.file.WriteString("  " + strings.Join(events, "\n  ") + "\n")
	return err
}

// Path returns the current log file path.
func (t *Transcript) Path() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.path
}

// Close closes the log file.
func (t *Transcript) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.file != nil {
		err := t.file.Close()
		t.file = nil
		return err
	}
	return nil
}

func (t *Transcript) maybeRotateLocked() error {
	if t.now().Format("2006-01-02") != t.lastDay {
		return t.rotateLocked()
	}
	return nil
}

func (t *Transcript) rotateLocked() error {
	if t.file != nil {
		t.file.Close()
		t.file = nil
	}

	today := t.now().Format("2006-01-02")
	t.lastDay = today
	t.path = filepath.Join(t.dir, "transcript-"+today+".log")

	file, err := os.OpenFile(t.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open transcript: %w", err)
	}
	t.file = file
	return nil
}
