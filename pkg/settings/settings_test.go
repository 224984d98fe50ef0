package settings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestMap_Get(t *testing.T) {
	m := Map{KeyConnectionString: "file:test.db"}

	v, err := m.Get(KeyConnectionString)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if v != "file:test.db" {
		t.Errorf("Expected 'file:test.db', got %q", v)
	}

	_, err = m.Get("absent")
	if !errors.Is(err, ErrMissingSetting) {
		t.Errorf("Expected ErrMissingSetting, got %v", err)
	}
}

func TestEnv_Get(t *testing.T) {
	t.Setenv("SQLKIT_CONNECTION_STRING", "postgres://localhost/test")

	e := Env{Prefix: "SQLKIT_"}
	v, err := e.Get(KeyConnectionString)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if v != "postgres://localhost/test" {
		t.Errorf("Unexpected value: %q", v)
	}

	_, err = e.Get("no_such_key")
	if !errors.Is(err, ErrMissingSetting) {
		t.Errorf("Expected ErrMissingSetting, got %v", err)
	}
}

func TestChain_Get(t *testing.T) {
	c := Chain{
		Map{"a": "first"},
		Map{"a": "second", "b": "only-second"},
	}

	if v, _ := c.Get("a"); v != "first" {
		t.Errorf("Expected first provider to win, got %q", v)
	}
	if v, _ := c.Get("b"); v != "only-second" {
		t.Errorf("Expected fallback to second provider, got %q", v)
	}
	if _, err := c.Get("c"); !errors.Is(err, ErrMissingSetting) {
		t.Errorf("Expected ErrMissingSetting, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := "connection_string: \"file:app.db\"\nscripts_dir: /opt/scripts\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write settings file: %v", err)
	}

	m, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if v, _ := m.Get(KeyConnectionString); v != "file:app.db" {
		t.Errorf("Unexpected connection string: %q", v)
	}
	if v, _ := m.Get(KeyScriptsDir); v != "/opt/scripts" {
		t.Errorf("Unexpected scripts dir: %q", v)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}
