package chart

import (
	"testing"

	"RateScope/internal/domain/models"
)

func testRegistryDataset() *models.Dataset {
	return &models.Dataset{
		Periods:         []string{"2020-01", "2020-02"},
		ActualRate:      []*float64{f(2.0), f(2.25)},
		Inflation:       []*float64{f(3.0), f(3.1)},
		OutputGrowth:    []*float64{f(1.0), f(-0.5)},
		InflationTarget: []*float64{f(2.0), f(2.0)},
	}
}

func TestNewStandardRegistryRegistersThreeCharts(t *testing.T) {
	r, err := NewStandardRegistry(testRegistryDataset(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ids := r.IDs()
	want := []string{ChartRate, ChartInflation, ChartOutput}
	if len(ids) != len(want) {
		t.Fatalf("got %d charts, want %d", len(ids), len(want))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("chart %d is %q, want %q", i, ids[i], want[i])
		}
	}
}

func TestNewStandardRegistryHonorsReferenceWidth(t *testing.T) {
	r, err := NewStandardRegistry(testRegistryDataset(), 1200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, id := range r.IDs() {
		state, ok := r.Snapshot(id)
		if !ok {
			t.Fatalf("missing chart %q", id)
		}
		if state.RefWidth != 1200 {
			t.Fatalf("chart %q ref width = %d, want 1200", id, state.RefWidth)
		}
	}

	r, err = NewStandardRegistry(testRegistryDataset(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state, _ := r.Snapshot(ChartRate); state.RefWidth != ReferenceWidth {
		t.Fatalf("ref width = %d, want the %d default", state.RefWidth, ReferenceWidth)
	}
}

func TestRegisterRejectsMisalignedSeries(t *testing.T) {
	r := NewRegistry([]string{"2020-01", "2020-02"})

	err := r.Register(&State{
		ID:     "broken",
		Series: []Series{{Name: "x", Values: []*float64{f(1.0)}}},
	})
	if err == nil {
		t.Fatal("expected length mismatch error")
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	r, err := NewStandardRegistry(testRegistryDataset(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap, ok := r.Snapshot(ChartRate)
	if !ok {
		t.Fatal("rate chart missing")
	}

	*snap.Series[0].Values[0] = 99

	again, _ := r.Snapshot(ChartRate)
	if *again.Series[0].Values[0] != 2.0 {
		t.Fatalf("live state mutated through snapshot: %v", *again.Series[0].Values[0])
	}
}

func TestSetSeriesValuesReplacesImplied(t *testing.T) {
	r, err := NewStandardRegistry(testRegistryDataset(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	implied := []*float64{f(2.1), f(2.3)}
	if err := r.SetSeriesValues(ChartRate, SeriesImplied, implied); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap, _ := r.Snapshot(ChartRate)
	if *snap.Series[1].Values[1] != 2.3 {
		t.Fatalf("implied not updated: %v", snap.Series[1].Values[1])
	}
}

func TestSnapshotUnknownChart(t *testing.T) {
	r := NewRegistry(nil)
	if _, ok := r.Snapshot("nope"); ok {
		t.Fatal("expected ok=false for unknown chart")
	}
}
