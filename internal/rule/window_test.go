package rule

import (
	"testing"

	"RateScope/internal/domain/models"
)

func TestFilterWindowSingleMonth(t *testing.T) {
	periods := []string{"2020-01", "2020-02", "2020-03"}
	values := []*float64{f(1.0), f(2.0), f(3.0)}

	gotPeriods, gotSeries := FilterWindow(periods, models.DateWindow{From: "2020-02", To: "2020-02"}, values)
	if len(gotPeriods) != 1 || gotPeriods[0] != "2020-02" {
		t.Fatalf("periods: got %v, want [2020-02]", gotPeriods)
	}
	if len(gotSeries) != 1 || len(gotSeries[0]) != 1 || *gotSeries[0][0] != 2.0 {
		t.Fatalf("values: got %v, want [2.0]", gotSeries)
	}
}

func TestFilterWindowPreservesOrderAndNils(t *testing.T) {
	periods := []string{"2019-12", "2020-01", "2020-02", "2020-03"}
	values := []*float64{f(0.5), f(1.0), nil, f(3.0)}

	gotPeriods, gotSeries := FilterWindow(periods, models.DateWindow{From: "2020-01", To: "2020-03"}, values)
	if len(gotPeriods) != 3 {
		t.Fatalf("expected 3 periods, got %v", gotPeriods)
	}
	if gotSeries[0][1] != nil {
		t.Fatalf("nil entries must survive the projection")
	}
	if *gotSeries[0][0] != 1.0 || *gotSeries[0][2] != 3.0 {
		t.Fatalf("order not preserved: %v", gotSeries[0])
	}
}

func TestFilterWindowEmptyResult(t *testing.T) {
	periods := []string{"2020-01"}
	gotPeriods, _ := FilterWindow(periods, models.DateWindow{From: "2021-01", To: "2021-12"})
	if len(gotPeriods) != 0 {
		t.Fatalf("expected empty window, got %v", gotPeriods)
	}
}
