package main

import (
	"reflect"
	"testing"
)

func TestParseArg(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"42", int64(42)},
		{"-7", int64(-7)},
		{"3.14", 3.14},
		{"true", true},
		{"FALSE", false},
		{"null", nil},
		{"hello", "hello"},
		{"2024-03-15", "2024-03-15"},
	}

	for _, tt := range tests {
		got := parseArg(tt.in)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseArg(%q) = %v (%T), expected %v (%T)", tt.in, got, got, tt.want, tt.want)
		}
	}
}

func TestSplitKeys(t *testing.T) {
	got := splitKeys(" id , region ,")
	want := []string{"id", "region"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitKeys: got %v, expected %v", got, want)
	}

	if splitKeys("") != nil {
		t.Error("Expected nil for empty keys")
	}
}
