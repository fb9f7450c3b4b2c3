package rule

import "testing"

func TestRoundHalfUpTieBreak(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{2.5, 3},
		{3.5, 4},
		{-2.5, -2}, // ties go toward +inf, not away from zero
		{-0.5, 0},
		{-3.5, -3},
		{2.4, 2},
		{-2.6, -3},
	}
	for _, c := range cases {
		if got := roundHalfUp(c.in, 1); got != c.want {
			t.Errorf("roundHalfUp(%v): got %v, want %v", c.in, got, c.want)
		}
	}
}

func TestRound4(t *testing.T) {
	if got := Round4(3.14159265); got != 3.1416 {
		t.Fatalf("Round4(pi): got %v", got)
	}
	if got := Round4(2.0); got != 2.0 {
		t.Fatalf("Round4(2.0): got %v", got)
	}
}
