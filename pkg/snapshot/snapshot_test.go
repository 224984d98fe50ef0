package snapshot

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Cruisoring/sqlkit/pkg/core/record"
)

func sampleRows() record.ResultSet {
	nested := record.MustFromPairs("city", "Omsk", "zip", "644001")
	rec := record.New()
	rec.Set("id", record.IntValue(1))
	rec.Set("name", record.StringValue("Alice"))
	rec.Set("score", record.FloatValue(9.5))
	rec.Set("active", record.BoolValue(true))
	rec.Set("created", record.TimeValue(time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)))
	rec.Set("data", record.BlobValue([]byte{1, 2, 3}))
	rec.Set("note", record.Null())
	rec.Set("tags", record.ListValue(record.IntValue(1), record.StringValue("x")))
	rec.Set("addr", record.RecordValue(nested))
	return record.ResultSet{rec, record.MustFromPairs("id", 2, "name", "Bob")}
}

func assertEqualSets(t *testing.T, expected, got record.ResultSet) {
	t.Helper()
	if len(got) != len(expected) {
		t.Fatalf("Expected %d rows, got %d", len(expected), len(got))
	}
	for i := range expected {
		if !got[i].Equal(expected[i]) {
			t.Errorf("Row %d mismatch:\nexpected %s\ngot      %s", i, expected[i], got[i])
		}
	}
}

func TestRoundTrip(t *testing.T) {
	rows := sampleRows()

	data, err := Marshal(rows, Options{})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	got, err := Unmarshal(data, Options{})
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	assertEqualSets(t, rows, got)
}

func TestRoundTrip_File(t *testing.T) {
	rows := sampleRows()
	path := filepath.Join(t.TempDir(), "users.snap")

	if err := Write(path, rows, Options{}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := Read(path, Options{})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	assertEqualSets(t, rows, got)
}

func TestRoundTrip_Encrypted(t *testing.T) {
	rows := sampleRows()
	key := bytes.Repeat([]byte{7}, 32)

	data, err := Marshal(rows, Options{Key: key})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	got, err := Unmarshal(data, Options{Key: key})
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	assertEqualSets(t, rows, got)

	// Без ключа зашифрованный снимок не читается
	if _, err := Unmarshal(data, Options{}); !errors.Is(err, ErrKey) {
		t.Errorf("Expected ErrKey without key, got %v", err)
	}

	// Неверный ключ отклоняется
	wrong := bytes.Repeat([]byte{8}, 32)
	if _, err := Unmarshal(data, Options{Key: wrong}); !errors.Is(err, ErrKey) {
		t.Errorf("Expected ErrKey for wrong key, got %v", err)
	}
}

func TestUnmarshal_Corruption(t *testing.T) {
	data, err := Marshal(sampleRows(), Options{})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	// Порча полезной нагрузки ловится контрольной суммой
	corrupted := append([]byte(nil), data...)
	corrupted[len(corrupted)-1] ^= 0xFF
	if _, err := Unmarshal(corrupted, Options{}); !errors.Is(err, ErrChecksum) {
		t.Errorf("Expected ErrChecksum, got %v", err)
	}
}

func TestUnmarshal_BadFormat(t *testing.T) {
	if _, err := Unmarshal([]byte("not a snapshot"), Options{}); !errors.Is(err, ErrFormat) {
		t.Errorf("Expected ErrFormat for garbage, got %v", err)
	}
	if _, err := Unmarshal([]byte("SQ"), Options{}); !errors.Is(err, ErrFormat) {
		t.Errorf("Expected ErrFormat for truncated data, got %v", err)
	}
}

func TestMarshal_BadKeyLength(t *testing.T) {
	if _, err := Marshal(sampleRows(), Options{Key: []byte("short")}); !errors.Is(err, ErrKey) {
		t.Errorf("Expected ErrKey for short key, got %v", err)
	}
}

func TestRoundTrip_Empty(t *testing.T) {
	data, err := Marshal(nil, Options{})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	got, err := Unmarshal(data, Options{})
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected empty result set, got %d rows", len(got))
	}
}
