package scripts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

// Кэш общий для процесса и не вытесняется - тесты используют
// уникальные имена скриптов.
var scriptSeq atomic.Int64

func uniqueName(t *testing.T) string {
	t.Helper()
	return fmt.Sprintf("test_script_%d.sql", scriptSeq.Add(1))
}

func TestResolve_LiteralTextPassthrough(t *testing.T) {
	r := NewResolver()
	cases := []string{
		"SELECT * FROM users",
		"UPDATE t SET a = 1",
		"",
	}
	for _, text := range cases {
		got, err := r.Resolve(context.Background(), text)
		if err != nil {
			t.Fatalf("Resolve(%q) failed: %v", text, err)
		}
		if got != text {
			t.Errorf("Expected passthrough for %q, got %q", text, got)
		}
	}
}

func TestResolve_FromDirSource(t *testing.T) {
	dir := t.TempDir()
	name := uniqueName(t)
	content := "SELECT id, name FROM users WHERE id = @id"
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write script: %v", err)
	}

	r := NewResolver(DirSource{Dir: dir})
	got, err := r.Resolve(context.Background(), name)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != content {
		t.Errorf("Expected script content, got %q", got)
	}
}

func TestResolve_CachesAfterFirstRead(t *testing.T) {
	dir := t.TempDir()
	name := uniqueName(t)
	if err := os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1"), 0o644); err != nil {
		t.Fatalf("Failed to write script: %v", err)
	}

	r := NewResolver(DirSource{Dir: dir})
	if _, err := r.Resolve(context.Background(), name); err != nil {
		t.Fatalf("First resolve failed: %v", err)
	}

	// Файл удален - второе разрешение идет из кэша
	if err := os.Remove(filepath.Join(dir, name)); err != nil {
		t.Fatalf("Failed to remove script: %v", err)
	}
	got, err := r.Resolve(context.Background(), name)
	if err != nil {
		t.Fatalf("Cached resolve failed: %v", err)
	}
	if got != "SELECT 1" {
		t.Errorf("Expected cached content, got %q", got)
	}
}

func TestResolve_CaseInsensitiveCacheKey(t *testing.T) {
	dir := t.TempDir()
	name := uniqueName(t)
	if err := os.WriteFile(filepath.Join(dir, name), []byte("SELECT 2"), 0o644); err != nil {
		t.Fatalf("Failed to write script: %v", err)
	}

	r := NewResolver(DirSource{Dir: dir})
	if _, err := r.Resolve(context.Background(), name); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	// Другой регистр имени попадает в ту же запись кэша
	upper := filepath.Base(name)
	upper = string(upper[0]-'a'+'A') + upper[1:]
	got, err := r.Resolve(context.Background(), upper)
	if err != nil {
		t.Fatalf("Resolve with different case failed: %v", err)
	}
	if got != "SELECT 2" {
		t.Errorf("Expected case-insensitive cache hit, got %q", got)
	}
}

func TestResolve_NotFound(t *testing.T) {
	r := NewResolver(DirSource{Dir: t.TempDir()})
	_, err := r.Resolve(context.Background(), uniqueName(t))
	if !errors.Is(err, ErrScriptNotFound) {
		t.Errorf("Expected ErrScriptNotFound, got %v", err)
	}
}

func TestResolve_PathTraversalRejected(t *testing.T) {
	r := NewResolver(DirSource{Dir: t.TempDir()})
	_, err := r.Resolve(context.Background(), "../../etc/passwd.sql")
	if !errors.Is(err, ErrScriptNotFound) {
		t.Errorf("Expected rejection of traversal name, got %v", err)
	}
}

func TestResolve_SourceChainOrder(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	name := uniqueName(t)

	if err := os.WriteFile(filepath.Join(first, name), []byte("from first"), 0o644); err != nil {
		t.Fatalf("Failed to write script: %v", err)
	}
	if err := os.WriteFile(filepath.Join(second, name), []byte("from second"), 0o644); err != nil {
		t.Fatalf("Failed to write script: %v", err)
	}

	r := NewResolver(DirSource{Dir: first}, DirSource{Dir: second})
	got, err := r.Resolve(context.Background(), name)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != "from first" {
		t.Errorf("Expected first source to win, got %q", got)
	}
}
