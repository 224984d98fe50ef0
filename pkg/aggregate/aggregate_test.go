package aggregate

import (
	"errors"
	"testing"

	"github.com/Cruisoring/sqlkit/pkg/core/record"
)

func table(rows ...*record.Record) record.ResultSet {
	return record.ResultSet(rows)
}

func TestMerge_DisjointColumns(t *testing.T) {
	tables := []record.ResultSet{
		table(record.MustFromPairs("A", 1)),
		table(record.MustFromPairs("B", 2)),
	}

	merged, err := Merge(tables, Override)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if len(merged) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(merged))
	}

	expected := record.MustFromPairs("A", 1, "B", 2)
	if !merged[0].Equal(expected) {
		t.Errorf("Expected %s, got %s", expected, merged[0])
	}
}

func TestMerge_ConflictOverride(t *testing.T) {
	tables := []record.ResultSet{
		table(record.MustFromPairs("A", 1)),
		table(record.MustFromPairs("A", 2)),
	}

	merged, err := Merge(tables, Override)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if v, _ := merged[0].Get("A"); v.Int != 2 {
		t.Errorf("Expected last write to win, got %v", v)
	}
}

func TestMerge_ConflictIgnore(t *testing.T) {
	tables := []record.ResultSet{
		table(record.MustFromPairs("A", 1)),
		table(record.MustFromPairs("A", 2)),
	}

	merged, err := Merge(tables, Ignore)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if v, _ := merged[0].Get("A"); v.Int != 1 {
		t.Errorf("Expected first write to win, got %v", v)
	}
}

func TestMerge_ConflictStrict(t *testing.T) {
	tables := []record.ResultSet{
		table(record.MustFromPairs("A", 1)),
		table(record.MustFromPairs("A", 2)),
	}

	_, err := Merge(tables, Strict)
	if !errors.Is(err, record.ErrConflictingColumn) {
		t.Errorf("Expected ErrConflictingColumn, got %v", err)
	}
}

func TestMerge_StrictEqualValuesPass(t *testing.T) {
	tables := []record.ResultSet{
		table(record.MustFromPairs("A", 1)),
		table(record.MustFromPairs("A", 1, "B", 2)),
	}

	merged, err := Merge(tables, Strict)
	if err != nil {
		t.Fatalf("Expected equal values to pass strict merge, got %v", err)
	}
	if !merged[0].Equal(record.MustFromPairs("A", 1, "B", 2)) {
		t.Errorf("Unexpected merge result: %s", merged[0])
	}
}

func TestMerge_StrictRowCountMismatch(t *testing.T) {
	tables := []record.ResultSet{
		table(record.MustFromPairs("A", 1)),
		table(record.MustFromPairs("B", 1), record.MustFromPairs("B", 2)),
	}

	_, err := Merge(tables, Strict)
	if !errors.Is(err, ErrRowCountMismatch) {
		t.Errorf("Expected ErrRowCountMismatch, got %v", err)
	}
}

func TestMerge_LongerSecondTableAppends(t *testing.T) {
	tables := []record.ResultSet{
		table(record.MustFromPairs("A", 1)),
		table(record.MustFromPairs("B", 1), record.MustFromPairs("B", 2)),
	}

	merged, err := Merge(tables, Override)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if len(merged) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(merged))
	}
	if !merged[1].Equal(record.MustFromPairs("B", 2)) {
		t.Errorf("Expected appended row from second table, got %s", merged[1])
	}
}

func TestMerge_DoesNotMutateInput(t *testing.T) {
	first := record.MustFromPairs("A", 1)
	tables := []record.ResultSet{
		table(first),
		table(record.MustFromPairs("B", 2)),
	}

	if _, err := Merge(tables, Override); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if first.Has("B") {
		t.Error("Merge mutated input table")
	}
}

func TestMerge_Empty(t *testing.T) {
	merged, err := Merge(nil, Override)
	if err != nil || merged != nil {
		t.Errorf("Expected nil result for no tables, got %v, %v", merged, err)
	}
}
