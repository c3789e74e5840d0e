package util

import (
	"testing"
	"time"
)

func TestParseBarDateISO(t *testing.T) {
	got, err := ParseBarDate("2024-10-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseBarDateFloorsTimestamp(t *testing.T) {
	got, err := ParseBarDate("2024-10-10 15:30:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected midnight UTC, got %v", got)
	}
}

func TestParseBarDateUSLayout(t *testing.T) {
	got, err := ParseBarDate("10/02/2024")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Month() != time.October || got.Day() != 2 {
		t.Fatalf("unexpected date %v", got)
	}
}

func TestParseBarDateRejectsGarbage(t *testing.T) {
	if _, err := ParseBarDate("not-a-date"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestParseVolume(t *testing.T) {
	if v, err := ParseVolume("12345"); err != nil || v != 12345 {
		t.Fatalf("int rendering: v=%d err=%v", v, err)
	}
	if v, err := ParseVolume("12345.0"); err != nil || v != 12345 {
		t.Fatalf("float rendering: v=%d err=%v", v, err)
	}
	if _, err := ParseVolume("n/a"); err == nil {
		t.Fatalf("expected error")
	}
}
