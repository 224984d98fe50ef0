package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	ctx := context.Background()

	if err := l.Log(ctx, NewEntry(OpQuery, StatusSuccess)); err != nil {
		t.Errorf("Nil logger Log returned error: %v", err)
	}
	l.LogSuccess(ctx, OpCommit, "tx")
	l.LogFailure(ctx, OpRollback, "tx", errors.New("boom"))
	if err := l.Close(); err != nil {
		t.Errorf("Nil logger Close returned error: %v", err)
	}
}

func TestFileAppender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit", "log.jsonl")

	a, err := NewFileAppender(path)
	if err != nil {
		t.Fatalf("NewFileAppender failed: %v", err)
	}

	l := NewLogger(a)
	ctx := context.Background()
	l.LogSuccess(ctx, OpQuery, "users.sql")
	l.LogFailure(ctx, OpExecute, "broken.sql", errors.New("syntax error"))
	if err := l.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open audit file: %v", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("Invalid JSON line: %v", err)
		}
		entries = append(entries, e)
	}

	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Operation != OpQuery || entries[0].Status != StatusSuccess {
		t.Errorf("Unexpected first entry: %+v", entries[0])
	}
	if entries[1].Status != StatusFailure || entries[1].ErrorMessage != "syntax error" {
		t.Errorf("Unexpected second entry: %+v", entries[1])
	}
	if entries[0].ID == entries[1].ID {
		t.Error("Expected unique entry IDs")
	}
}

type failingAppender struct{}

func (failingAppender) Append(context.Context, *Entry) error { return fmt.Errorf("append failed") }
func (failingAppender) Close() error                         { return nil }

type countingAppender struct{ count int }

func (c *countingAppender) Append(context.Context, *Entry) error { c.count++; return nil }
func (c *countingAppender) Close() error                         { return nil }

func TestLogger_ContinuesAfterAppenderFailure(t *testing.T) {
	counting := &countingAppender{}
	l := NewLogger(failingAppender{}, counting)

	err := l.Log(context.Background(), NewEntry(OpConnect, StatusSuccess))
	if err == nil {
		t.Error("Expected aggregated error from failing appender")
	}
	if counting.count != 1 {
		t.Errorf("Expected second appender to still receive entry, count=%d", counting.count)
	}
}

func TestEntry_WithErrorSetsFailure(t *testing.T) {
	e := NewEntry(OpTransaction, StatusSuccess).WithError(errors.New("bad"))
	if e.Status != StatusFailure || e.ErrorMessage != "bad" {
		t.Errorf("Expected WithError to flip status, got %+v", e)
	}

	// nil ошибка ничего не меняет
	e2 := NewEntry(OpTransaction, StatusSuccess).WithError(nil)
	if e2.Status != StatusSuccess {
		t.Errorf("Expected nil error to keep status, got %+v", e2)
	}
}
