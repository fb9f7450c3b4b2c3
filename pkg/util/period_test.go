package util

import (
	"testing"
	"time"
)

func TestParsePeriod(t *testing.T) {
	got, err := ParsePeriod("2020-03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("unexpected time %v", got)
	}

	if _, err := ParsePeriod("2020-3"); err == nil {
		t.Fatalf("expected error for malformed label")
	}
}

func TestPeriodsBetweenWrapsYear(t *testing.T) {
	got, err := PeriodsBetween("2019-11", "2020-02")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"2019-11", "2019-12", "2020-01", "2020-02"}
	if len(got) != len(want) {
		t.Fatalf("unexpected length %d", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("period %d: got %q want %q", i, got[i], want[i])
		}
	}
}

func TestNormalizePeriodOrdering(t *testing.T) {
	if NormalizePeriod("2020-02") <= NormalizePeriod("2019-12") {
		t.Fatalf("normalized labels must order chronologically")
	}
}
