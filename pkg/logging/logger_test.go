package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestNewLogger tests logger construction with temp directories
func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		baseDir   string
		sessionID string
	}{
		{"valid directory and session ID", t.TempDir(), "test-session-123"},
		{"creates directories if not exist", filepath.Join(t.TempDir(), "nested", "path"), "session-456"},
		{"generated session ID", t.TempDir(), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.baseDir, tt.sessionID)
			if err != nil {
				t.Fatalf("NewLogger() error = %v", err)
			}
			defer logger.Close()

			if tt.sessionID != "" && logger.SessionID() != tt.sessionID {
				t.Errorf("SessionID() = %v, want %v", logger.SessionID(), tt.sessionID)
			}
			if tt.sessionID == "" && len(logger.SessionID()) != 26 {
				t.Errorf("generated SessionID() = %q, want a 26 character ULID", logger.SessionID())
			}
			if logger.minLevel != LevelInfo {
				t.Errorf("minLevel = %v, want %v", logger.minLevel, LevelInfo)
			}

			for _, path := range []string{
				logger.SessionPath(),
				filepath.Join(tt.baseDir, "errors.jsonl"),
				filepath.Join(tt.baseDir, "frames.jsonl"),
			} {
				if _, err := os.Stat(path); os.IsNotExist(err) {
					t.Errorf("%s not created", path)
				}
			}
		})
	}
}

// TestNewLoggerInvalidDirectory tests error handling for invalid directories
func TestNewLoggerInvalidDirectory(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "file-not-dir")
	if err := os.WriteFile(filePath, []byte("test"), 0644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if _, err := NewLogger(filePath, "test-session"); err == nil {
		t.Fatal("expected error when baseDir is a file, got nil")
	}
}

func TestNewSessionID_Sortable(t *testing.T) {
	a := NewSessionID()
	time.Sleep(2 * time.Millisecond)
	b := NewSessionID()
	if a == b {
		t.Fatal("session ids should be unique")
	}
	if a > b {
		t.Errorf("session ids should sort by creation time: %s > %s", a, b)
	}
}

// TestLogEvent tests the Log method
func TestLogEvent(t *testing.T) {
	baseDir := t.TempDir()
	logger, err := NewLogger(baseDir, "test-session")
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	defer logger.Close()
	logger.SetScene("demo")

	before := time.Now()
	event := Event{
		Level:     LevelInfo,
		Category:  CategoryInteraction,
		EventType: "enter",
		Message:   "pointer entered",
		Details:   map[string]any{"widget": "button"},
	}
	if err := logger.Log(event); err != nil {
		t.Fatalf("Log() failed: %v", err)
	}
	after := time.Now()

	events, err := ReadRecentEvents(logger.SessionPath(), 1)
	if err != nil {
		t.Fatalf("ReadRecentEvents failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	logged := events[0]
	if logged.Category != CategoryInteraction || logged.EventType != "enter" {
		t.Errorf("logged = %+v", logged)
	}
	if logged.SessionID != "test-session" {
		t.Errorf("SessionID = %v, want test-session", logged.SessionID)
	}
	if logged.Scene != "demo" {
		t.Errorf("Scene = %v, want demo", logged.Scene)
	}
	if logged.Details["widget"] != "button" {
		t.Errorf("Details = %v", logged.Details)
	}
	if logged.Timestamp.Before(before) || logged.Timestamp.After(after) {
		t.Errorf("Timestamp %v not in expected range [%v, %v]", logged.Timestamp, before, after)
	}
}

// TestLogRouting tests that errors and frame events are mirrored to their own logs
func TestLogRouting(t *testing.T) {
	baseDir := t.TempDir()
	logger, err := NewLogger(baseDir, "test-session")
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	defer logger.Close()

	_ = logger.Error(CategoryScene, "invalid_scene", "bad parent", nil)
	_ = logger.Info(CategoryFrame, "propagate", "", map[string]any{"visited": 3})
	_ = logger.Info(CategoryInteraction, "grab", "", nil)

	tests := []struct {
		path string
		want int
	}{
		{logger.SessionPath(), 3},
		{filepath.Join(baseDir, "errors.jsonl"), 1},
		{filepath.Join(baseDir, "frames.jsonl"), 1},
	}
	for _, tt := range tests {
		events, err := ReadRecentEvents(tt.path, 10)
		if err != nil {
			t.Fatalf("ReadRecentEvents(%s) failed: %v", tt.path, err)
		}
		if len(events) != tt.want {
			t.Errorf("%s has %d events, want %d", filepath.Base(tt.path), len(events), tt.want)
		}
	}
}

// TestShouldLog tests level filtering
func TestShouldLog(t *testing.T) {
	logger := NewWriterLogger(&bytes.Buffer{}, "s")

	tests := []struct {
		name      string
		minLevel  Level
		logLevel  Level
		shouldLog bool
	}{
		{"debug level allows debug", LevelDebug, LevelDebug, true},
		{"info level blocks debug", LevelInfo, LevelDebug, false},
		{"info level allows warn", LevelInfo, LevelWarn, true},
		{"warn level blocks info", LevelWarn, LevelInfo, false},
		{"error level blocks warn", LevelError, LevelWarn, false},
		{"error level allows error", LevelError, LevelError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger.SetMinLevel(tt.minLevel)
			if got := logger.Enabled(tt.logLevel); got != tt.shouldLog {
				t.Errorf("Enabled(%v) with minLevel %v = %v, want %v",
					tt.logLevel, tt.minLevel, got, tt.shouldLog)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	if lvl, ok := ParseLevel("warn"); !ok || lvl != LevelWarn {
		t.Errorf("ParseLevel(warn) = %v, %v", lvl, ok)
	}
	if _, ok := ParseLevel("loud"); ok {
		t.Error("ParseLevel(loud) should fail")
	}
}

func TestWriterLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, "replay")
	logger.SetMinLevel(LevelDebug)

	_ = logger.Debug(CategoryFrame, "update", "", nil)
	_ = logger.Warn(CategoryHost, "slow_tick", "tick took too long", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	var event Event
	if err := json.Unmarshal([]byte(lines[1]), &event); err != nil {
		t.Fatalf("line is not JSON: %v", err)
	}
	if event.Level != LevelWarn || event.SessionID != "replay" {
		t.Errorf("event = %+v", event)
	}
	if logger.SessionPath() != "" {
		t.Error("a writer logger has no session path")
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

// TestReadRecentEvents tests reading events with different counts
func TestReadRecentEvents(t *testing.T) {
	baseDir := t.TempDir()
	logger, err := NewLogger(baseDir, "test-session")
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	defer logger.Close()

	for i := 0; i < 10; i++ {
		_ = logger.Info(CategoryInteraction, "test", "message", map[string]any{"seq": i})
	}

	tests := []struct {
		name      string
		count     int
		wantCount int
	}{
		{"read last 5", 5, 5},
		{"read more than exist", 20, 10},
		{"read 0", 0, 0},
		{"negative count reads all", -1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := ReadRecentEvents(logger.SessionPath(), tt.count)
			if err != nil {
				t.Fatalf("ReadRecentEvents failed: %v", err)
			}
			if len(events) != tt.wantCount {
				t.Errorf("got %d events, want %d", len(events), tt.wantCount)
			}
			if len(events) > 0 {
				last := events[len(events)-1].Details["seq"].(float64)
				if int(last) != 9 {
					t.Errorf("last seq = %v, want 9", last)
				}
			}
		})
	}
}

// TestReadRecentEventsNonexistent tests reading from nonexistent file
func TestReadRecentEventsNonexistent(t *testing.T) {
	if _, err := ReadRecentEvents("/nonexistent/path/file.jsonl", 10); err == nil {
		t.Error("expected error for nonexistent file, got nil")
	}
}

// TestConcurrentWrites tests thread safety of logging
func TestConcurrentWrites(t *testing.T) {
	baseDir := t.TempDir()
	logger, err := NewLogger(baseDir, "test-session")
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	defer logger.Close()

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(id int) {
			for j := 0; j < 10; j++ {
				_ = logger.Info(CategoryHost, "concurrent", "", map[string]any{
					"goroutine": id,
					"iteration": j,
				})
			}
			done <- true
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	events, err := ReadRecentEvents(logger.SessionPath(), 200)
	if err != nil {
		t.Fatalf("ReadRecentEvents failed: %v", err)
	}
	if len(events) != 100 {
		t.Errorf("expected 100 events, got %d", len(events))
	}
}

// TestClose tests cleanup of log files
func TestClose(t *testing.T) {
	logger, err := NewLogger(t.TempDir(), "test-session")
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	_ = logger.Info(CategoryHost, "test", "test", nil)

	if err := logger.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close() failed: %v", err)
	}

	events, err := ReadRecentEvents(logger.SessionPath(), 1)
	if err != nil {
		t.Fatalf("ReadRecentEvents after Close() failed: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("expected 1 event after Close(), got %d", len(events))
	}
}
