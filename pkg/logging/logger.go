package logging

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Level represents log severity
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// ParseLevel maps a level name to a Level.
func ParseLevel(name string) (Level, bool) {
	switch Level(name) {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		return Level(name), true
	}
	return "", false
}

// Category represents the subsystem generating the log
type Category string

const (
	CategoryInteraction Category = "interaction"
	CategoryFrame       Category = "frame"
	CategoryHost        Category = "host"
	CategoryConfig      Category = "config"
	CategoryScene       Category = "scene"
)

// Event represents a structured log event
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	Level     Level             `json:"level"`
	Category  Category          `json:"category"`
	EventType string            `json:"type"`
	SessionID string            `json:"session_id,omitempty"`
	Scene     string            `json:"scene,omitempty"`
	Details   map[string]any    `json:"details,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Message   string            `json:"message,omitempty"`
}

// Logger writes structured events to multiple destinations
type Logger struct {
	sessionID string
	scene     string
	baseDir   string
	session   io.Writer
	errors    io.Writer
	frames    io.Writer
	closers   []io.Closer
	mu        sync.Mutex
	minLevel  Level
}

// NewSessionID returns a sortable, unique session identifier.
func NewSessionID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// NewLogger creates a logger that writes sessions/<id>.jsonl, errors.jsonl and frames.jsonl under baseDir.
// An empty sessionID is replaced with a fresh one.
func NewLogger(baseDir, sessionID string) (*Logger, error) {
	if sessionID == "" {
		sessionID = NewSessionID()
	}

	sessionsDir := filepath.Join(baseDir, "sessions")
	if err := os.MkdirAll(sessionsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}

	l := &Logger{
		sessionID: sessionID,
		baseDir:   baseDir,
		minLevel:  LevelInfo,
	}

	open := func(path string) (*os.File, error) {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, err
		}
		l.closers = append(l.closers, f)
		return f, nil
	}

	var err error
	if l.session, err = open(filepath.Join(sessionsDir, sessionID+".jsonl")); err != nil {
		return nil, fmt.Errorf("failed to open session log: %w", err)
	}
	if l.errors, err = open(filepath.Join(baseDir, "errors.jsonl")); err != nil {
		l.Close()
		return nil, fmt.Errorf("failed to open error log: %w", err)
	}
	if l.frames, err = open(filepath.Join(baseDir, "frames.jsonl")); err != nil {
		l.Close()
		return nil, fmt.Errorf("failed to open frame log: %w", err)
	}
	return l, nil
}

// NewWriterLogger creates a logger that writes every event to w and nothing else.
func NewWriterLogger(w io.Writer, sessionID string) *Logger {
	if sessionID == "" {
		sessionID = NewSessionID()
	}
	return &Logger{
		sessionID: sessionID,
		session:   w,
		minLevel:  LevelInfo,
	}
}

// SessionID returns the id stamped on every event.
func (l *Logger) SessionID() string {
	return l.sessionID
}

// SessionPath returns the session log path, or "" for a writer logger.
func (l *Logger) SessionPath() string {
	if l.baseDir == "" {
		return ""
	}
	return filepath.Join(l.baseDir, "sessions", l.sessionID+".jsonl")
}

// SetMinLevel sets the minimum log level
func (l *Logger) SetMinLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minLevel = level
}

// SetScene sets the scene name for subsequent events
func (l *Logger) SetScene(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.scene = name
}

// Enabled reports whether events at level would be written.
func (l *Logger) Enabled(level Level) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.shouldLog(level)
}

// Log writes an event to appropriate destinations
func (l *Logger) Log(event Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.SessionID == "" {
		event.SessionID = l.sessionID
	}
	if event.Scene == "" && l.scene != "" {
		event.Scene = l.scene
	}

	if !l.shouldLog(event.Level) {
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	data = append(data, '\n')

	if l.session != nil {
		if _, err := l.session.Write(data); err != nil {
			return fmt.Errorf("failed to write to session log: %w", err)
		}
	}

	if event.Level == LevelError && l.errors != nil {
		if _, err := l.errors.Write(data); err != nil {
			return fmt.Errorf("failed to write to error log: %w", err)
		}
	}

	if event.Category == CategoryFrame && l.frames != nil {
		if _, err := l.frames.Write(data); err != nil {
			return fmt.Errorf("failed to write to frame log: %w", err)
		}
	}

	return nil
}

var levelRank = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

func (l *Logger) shouldLog(level Level) bool {
	return levelRank[level] >= levelRank[l.minLevel]
}

// Debug logs a debug event
func (l *Logger) Debug(category Category, eventType string, message string, details map[string]any) error {
	return l.Log(Event{
		Level:     LevelDebug,
		Category:  category,
		EventType: eventType,
		Message:   message,
		Details:   details,
	})
}

// Info logs an info event
func (l *Logger) Info(category Category, eventType string, message string, details map[string]any) error {
	return l.Log(Event{
		Level:     LevelInfo,
		Category:  category,
		EventType: eventType,
		Message:   message,
		Details:   details,
	})
}

// Warn logs a warning event
func (l *Logger) Warn(category Category, eventType string, message string, details map[string]any) error {
	return l.Log(Event{
		Level:     LevelWarn,
		Category:  category,
		EventType: eventType,
		Message:   message,
		Details:   details,
	})
}

// Error logs an error event
func (l *Logger) Error(category Category, eventType string, message string, details map[string]any) error {
	return l.Log(Event{
		Level:     LevelError,
		Category:  category,
		EventType: eventType,
		Message:   message,
		Details:   details,
	})
}

// Close closes all log files. Writers passed to NewWriterLogger are left open.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var errs []error
	for _, c := range l.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	l.closers = nil

	if len(errs) > 0 {
		return fmt.Errorf("errors closing log files: %v", errs)
	}
	return nil
}

// ReadRecentEvents reads the last N events from a JSONL log
func ReadRecentEvents(logPath string, count int) ([]Event, error) {
	file, err := os.Open(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	defer file.Close()

	var events []Event
	decoder := json.NewDecoder(file)
	for {
		var event Event
		if err := decoder.Decode(&event); err != nil {
			break
		}
		events = append(events, event)
	}

	if count >= 0 && len(events) > count {
		events = events[len(events)-count:]
	}
	return events, nil
}
