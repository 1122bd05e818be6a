package autostep

import (
	"testing"

	"github.com/abelbrown/lemure/internal/span"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		points, target, want int
	}{
		{0, 5000, 1},
		{1, 5000, 1},
		{5000, 5000, 1},
		{5001, 5000, 2},
		{100000, 5000, 20},
		{100001, 5000, 21},
		{10, 0, 1},
	}
	for _, tt := range tests {
		if got := Compute(tt.points, tt.target); got != tt.want {
			t.Errorf("Compute(%d, %d) = %d, want %d", tt.points, tt.target, got, tt.want)
		}
	}
}

func TestComputeMonotonic(t *testing.T) {
	for target := 1; target < 200; target += 7 {
		prev := Compute(1, target)
		for pts := 1; pts < 5000; pts += 13 {
			got := Compute(pts, target)
			if got < 1 {
				t.Fatalf("Compute(%d, %d) = %d < 1", pts, target, got)
			}
			if got < prev {
				t.Fatalf("not non-decreasing in points at %d/%d", pts, target)
			}
			prev = got
		}
	}
	for pts := 1; pts < 50000; pts += 997 {
		prev := Compute(pts, 1)
		for target := 1; target < 500; target += 11 {
			got := Compute(pts, target)
			if got > prev {
				t.Fatalf("not non-increasing in target at %d/%d", pts, target)
			}
			prev = got
		}
	}
}

func TestEstimate(t *testing.T) {
	full := span.New(0, 10_000)
	tests := []struct {
		name  string
		r     span.Range
		total int
		want  int
	}{
		{"full range", full, 1000, 1000},
		{"half", span.New(0, 5000), 1000, 500},
		{"rounds", span.New(0, 3333), 1000, 333},
		{"floored at one", span.New(0, 1), 10, 1},
		{"zero total", full, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Estimate(tt.r, full, tt.total); got != tt.want {
				t.Errorf("Estimate = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEffective(t *testing.T) {
	full := span.New(0, 100_000)
	r := span.New(0, 50_000)
	s := Settings{Enabled: true, Target: 100}

	res := Effective(s, r, full, 100_000, nil)
	if res.Points != 50_000 || res.Step != 500 || res.Exact {
		t.Errorf("estimate result = %+v", res)
	}

	var c Cache
	tok := c.Begin()
	c.Apply(tok, Stats{Range: r, Points: 1000, Total: 100_000})
	res = Effective(s, r, full, 100_000, &c)
	if res.Points != 1000 || res.Step != 10 || !res.Exact {
		t.Errorf("exact result = %+v", res)
	}

	// Exact entry for a different range is ignored.
	res = Effective(s, span.New(0, 60_000), full, 100_000, &c)
	if res.Exact {
		t.Error("cache entry for another range must not be used")
	}

	manual := Settings{Enabled: false, Target: 100, Manual: 7}
	if res := Effective(manual, r, full, 100_000, &c); res.Step != 7 {
		t.Errorf("manual step = %d, want 7", res.Step)
	}
}

func TestCacheDiscardsStaleResponses(t *testing.T) {
	var c Cache
	r1, r2 := span.New(0, 10), span.New(0, 20)

	t1 := c.Begin()
	t2 := c.Begin()
	if c.Apply(t1, Stats{Range: r1, Points: 5}) {
		t.Error("stale token accepted")
	}
	if _, ok := c.Entry(); ok {
		t.Error("stale response populated cache")
	}
	if !c.Apply(t2, Stats{Range: r2, Points: 9}) {
		t.Error("current token rejected")
	}
	if st, ok := c.Lookup(r2); !ok || st.Points != 9 {
		t.Errorf("Lookup = %+v, %v", st, ok)
	}

	c.Reset()
	if _, ok := c.Entry(); ok {
		t.Error("Reset must clear the entry")
	}
	if c.Apply(t2, Stats{Range: r2, Points: 9}) {
		t.Error("response from before Reset accepted")
	}
}

func TestSanitize(t *testing.T) {
	s := Settings{Target: -1, Manual: 0}.Sanitize()
	if s.Target != DefaultTarget || s.Manual != 1 {
		t.Errorf("Sanitize = %+v", s)
	}
	if got := Decimated(10, 3); got != 4 {
		t.Errorf("Decimated(10, 3) = %d, want 4", got)
	}
	if got := Decimated(0, 3); got != 0 {
		t.Errorf("Decimated(0, 3) = %d, want 0", got)
	}
}
