package executor

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Cruisoring/sqlkit/pkg/audit"
	"github.com/Cruisoring/sqlkit/pkg/settings"
)

// recordingAppender накапливает записи аудита для проверок
type recordingAppender struct {
	mu      sync.Mutex
	entries []*audit.Entry
}

func (a *recordingAppender) Append(_ context.Context, e *audit.Entry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
	return nil
}

func (a *recordingAppender) Close() error { return nil }

func (a *recordingAppender) has(op audit.Operation, status audit.Status) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, e := range a.entries {
		if e.Operation == op && e.Status == status {
			return true
		}
	}
	return false
}

func TestScope_RollbackFailureKeepsOriginalError(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "scope.db")
	rec := &recordingAppender{}
	e := New(settings.Map{settings.KeyConnectionString: dsn}, nil)
	e.Audit = audit.NewLogger(rec)
	ctx := context.Background()

	s, err := e.BeginScope(ctx, ScopeOptions{Name: "broken-rollback"})
	if err != nil {
		t.Fatalf("BeginScope failed: %v", err)
	}

	// Транзакция завершается в обход области: и выполнение, и
	// последующая попытка отката обречены на sql.ErrTxDone
	if err := s.tx.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	_, execErr := s.Execute(ctx, "INSERT INTO users (id) VALUES (@id)", 1)
	if execErr == nil {
		t.Fatal("Expected execution failure")
	}
	if !errors.Is(execErr, sql.ErrTxDone) {
		t.Errorf("Expected original execution error to propagate, got %v", execErr)
	}

	// Сбой самого отката журналируется, не подменяя исходную ошибку
	if !rec.has(audit.OpRollback, audit.StatusFailure) {
		t.Error("Expected failed rollback to be logged")
	}

	// Область закрывается чисто: соединение освобождается несмотря на
	// сбой отката
	if err := s.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}
