package executor

import (
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/Cruisoring/sqlkit/pkg/core/params"
)

func TestRebind_Question(t *testing.T) {
	binds := []params.Binding{
		{Name: "kind", Value: "user"},
		{Name: "id", Value: 7},
	}
	outs := map[string]*any{}

	text, args, err := rebind(
		"SELECT * FROM t WHERE kind = @kind AND id = @id OR parent = @id",
		binds, PlaceholderQuestion, outs)
	if err != nil {
		t.Fatalf("rebind failed: %v", err)
	}

	expected := "SELECT * FROM t WHERE kind = ? AND id = ? OR parent = ?"
	if text != expected {
		t.Errorf("Expected %q, got %q", expected, text)
	}
	// Повторное вхождение @id дает повторный аргумент
	if len(args) != 3 || args[0] != "user" || args[1] != 7 || args[2] != 7 {
		t.Errorf("Unexpected args: %v", args)
	}
}

func TestRebind_Dollar(t *testing.T) {
	binds := []params.Binding{
		{Name: "a", Value: 1},
		{Name: "b", Value: 2},
	}

	text, args, err := rebind(
		"SELECT @a, @b, @a", binds, PlaceholderDollar, map[string]*any{})
	if err != nil {
		t.Fatalf("rebind failed: %v", err)
	}

	// Повторное вхождение переиспользует номер
	if text != "SELECT $1, $2, $1" {
		t.Errorf("Unexpected text: %q", text)
	}
	if len(args) != 2 || args[0] != 1 || args[1] != 2 {
		t.Errorf("Unexpected args: %v", args)
	}
}

func TestRebind_Named(t *testing.T) {
	binds := []params.Binding{
		{Name: "id", Value: 5},
		{Name: "total", Direction: params.Out, TypeTag: "Int"},
	}
	outs := map[string]*any{}

	text, args, err := rebind("EXEC proc @id = @id, @total = @total OUTPUT",
		binds, PlaceholderNamed, outs)
	if err != nil {
		t.Fatalf("rebind failed: %v", err)
	}
	if !strings.Contains(text, "@id") {
		t.Errorf("Expected named text preserved, got %q", text)
	}
	if len(args) != 2 {
		t.Fatalf("Expected 2 args, got %d", len(args))
	}

	named, ok := args[0].(sql.NamedArg)
	if !ok || named.Name != "id" || named.Value != 5 {
		t.Errorf("Unexpected first arg: %#v", args[0])
	}
	outArg, ok := args[1].(sql.NamedArg)
	if !ok {
		t.Fatalf("Expected NamedArg, got %#v", args[1])
	}
	if _, ok := outArg.Value.(sql.Out); !ok {
		t.Errorf("Expected sql.Out wrapper, got %#v", outArg.Value)
	}
	if outs["total"] == nil {
		t.Error("Expected output destination registered")
	}
}

func TestRebind_OutputNotSupported(t *testing.T) {
	binds := []params.Binding{{Name: "v", Direction: params.Out}}

	_, _, err := rebind("SELECT @v", binds, PlaceholderQuestion, map[string]*any{})
	if !errors.Is(err, ErrOutputNotSupported) {
		t.Errorf("Expected ErrOutputNotSupported, got %v", err)
	}

	_, _, err = rebind("SELECT @v", binds, PlaceholderDollar, map[string]*any{})
	if !errors.Is(err, ErrOutputNotSupported) {
		t.Errorf("Expected ErrOutputNotSupported for dollar style, got %v", err)
	}
}

func TestRebind_MissingBinding(t *testing.T) {
	_, _, err := rebind("SELECT @missing", nil, PlaceholderQuestion, map[string]*any{})
	if err == nil {
		t.Error("Expected error for unbound placeholder")
	}
}

func TestRegistry(t *testing.T) {
	d := &Dialect{
		Name:   "fake",
		Driver: "fake",
		Detect: func(dsn string) bool { return strings.HasPrefix(dsn, "fake://") },
	}
	Register(d)

	got, err := ByName("fake")
	if err != nil || got != d {
		t.Errorf("ByName failed: %v, %v", got, err)
	}

	if _, err := ByName("no-such-dialect"); !errors.Is(err, ErrUnknownDriver) {
		t.Errorf("Expected ErrUnknownDriver, got %v", err)
	}

	detected, err := DetectDialect("fake://host/db")
	if err != nil || detected != d {
		t.Errorf("DetectDialect failed: %v, %v", detected, err)
	}

	if _, err := DetectDialect("gopher://nothing"); !errors.Is(err, ErrUnknownDriver) {
		t.Errorf("Expected ErrUnknownDriver for unmatched dsn, got %v", err)
	}
}

func TestRegister_DuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic on duplicate registration")
		}
	}()
	Register(&Dialect{Name: "dup-check"})
	Register(&Dialect{Name: "dup-check"})
}
