package mysql

import (
	"testing"
	"time"
)

func TestDetect(t *testing.T) {
	if !detect("user:pass@tcp(localhost:3306)/db") || !detect("user@unix(/tmp/mysql.sock)/db") {
		t.Error("Expected mysql DSNs to be detected")
	}
	if detect("postgres://localhost/db") || detect(":memory:") {
		t.Error("Expected foreign DSNs not to be detected")
	}
}

func TestWithTimeout(t *testing.T) {
	got := withTimeout("user@tcp(host)/db", 30*time.Second)
	if got != "user@tcp(host)/db?timeout=30s" {
		t.Errorf("Unexpected dsn: %q", got)
	}
}
