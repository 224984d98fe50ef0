package executor_test

import (
	"context"
	"testing"

	"github.com/Cruisoring/sqlkit/pkg/executor"
	_ "github.com/Cruisoring/sqlkit/pkg/executor/drivers/sqlite"
)

func TestScope_AutoCommit(t *testing.T) {
	dsn, e := newTestDB(t)
	ctx := context.Background()

	s, err := e.BeginScope(ctx, executor.ScopeOptions{Conn: dsn, AutoCommit: true, Name: "insert-users"})
	if err != nil {
		t.Fatalf("BeginScope failed: %v", err)
	}

	if _, err := s.Execute(ctx, "INSERT INTO users (id, name) VALUES (@id, @name)", 1, "Alice"); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if _, err := s.Execute(ctx, "INSERT INTO users (id, name) VALUES (@id, @name)", 2, "Bob"); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	v, err := e.Scalar(ctx, dsn, "SELECT COUNT(*) FROM users")
	if err != nil {
		t.Fatalf("Scalar failed: %v", err)
	}
	if v.Int != 2 {
		t.Errorf("Expected 2 committed rows, got %d", v.Int)
	}
}

func TestScope_RollbackWithoutAutoCommit(t *testing.T) {
	dsn, e := newTestDB(t)
	ctx := context.Background()

	s, err := e.BeginScope(ctx, executor.ScopeOptions{Conn: dsn, Name: "discarded"})
	if err != nil {
		t.Fatalf("BeginScope failed: %v", err)
	}
	if _, err := s.Execute(ctx, "INSERT INTO users (id) VALUES (@id)", 1); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	v, err := e.Scalar(ctx, dsn, "SELECT COUNT(*) FROM users")
	if err != nil {
		t.Fatalf("Scalar failed: %v", err)
	}
	if v.Int != 0 {
		t.Errorf("Expected rollback to discard rows, got %d", v.Int)
	}
}

func TestScope_RollbackOnFailure(t *testing.T) {
	dsn, e := newTestDB(t)
	ctx := context.Background()

	s, err := e.BeginScope(ctx, executor.ScopeOptions{Conn: dsn, AutoCommit: true, Name: "failing"})
	if err != nil {
		t.Fatalf("BeginScope failed: %v", err)
	}

	if _, err := s.Execute(ctx, "INSERT INTO users (id) VALUES (@id)", 1); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	// Исходная ошибка выполнения доходит до вызывающего кода
	if _, err := s.Execute(ctx, "INSERT INTO no_such_table (id) VALUES (@id)", 2); err == nil {
		t.Fatal("Expected execution failure")
	}

	// После отката область отклоняет дальнейшие выполнения
	if _, err := s.Execute(ctx, "INSERT INTO users (id) VALUES (@id)", 3); err == nil {
		t.Fatal("Expected error after rollback")
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close after rollback failed: %v", err)
	}

	v, err := e.Scalar(ctx, dsn, "SELECT COUNT(*) FROM users")
	if err != nil {
		t.Fatalf("Scalar failed: %v", err)
	}
	if v.Int != 0 {
		t.Errorf("Expected all work rolled back, got %d rows", v.Int)
	}
}

func TestScope_Records(t *testing.T) {
	dsn, e := newTestDB(t)
	ctx := context.Background()

	s, err := e.BeginScope(ctx, executor.ScopeOptions{Conn: dsn, AutoCommit: true, Name: "read-own-writes"})
	if err != nil {
		t.Fatalf("BeginScope failed: %v", err)
	}
	defer s.Close()

	if _, err := s.Execute(ctx, "INSERT INTO users (id, name) VALUES (@id, @name)", 1, "Alice"); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	// Незафиксированная запись видна внутри транзакции
	rs, err := s.Records(ctx, "SELECT name FROM users WHERE id = @id", 1)
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if len(rs) != 1 {
		t.Fatalf("Expected own write to be visible, got %d rows", len(rs))
	}
}

func TestScope_CloseIdempotent(t *testing.T) {
	dsn, e := newTestDB(t)
	ctx := context.Background()

	s, err := e.BeginScope(ctx, executor.ScopeOptions{Conn: dsn, Name: "double-close"})
	if err != nil {
		t.Fatalf("BeginScope failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("First close failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Second close failed: %v", err)
	}
}

func TestScope_RejectsBorrowedHandle(t *testing.T) {
	_, e := newTestDB(t)

	_, err := e.BeginScope(context.Background(), executor.ScopeOptions{Conn: 42})
	if err == nil {
		t.Error("Expected error for non-string scope connection")
	}
}
