package channel

import (
	"slices"
	"testing"
)

func chans(codes ...string) []Channel {
	out := make([]Channel, len(codes))
	for i, c := range codes {
		out[i] = Channel{Code: c}
	}
	return out
}

func TestNaturalCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"A2", "A10", -1},
		{"A10", "A10b", -1},
		{"A2", "A10b", -1},
		{"a-t1", "A-T1", 0},
		{"A-T7", "A-T10", -1},
		{"T", "1", -1},  // text before digits
		{"1", "T", 1},
		{"A", "A1", -1}, // shorter first
		{"A01", "A1", 0},
		{"X99999999999999999999", "X100000000000000000000", -1},
		{"", "A", -1},
	}
	for _, tt := range tests {
		if got := NaturalCompare(tt.a, tt.b); got != tt.want {
			t.Errorf("NaturalCompare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
		if got := NaturalCompare(tt.b, tt.a); got != -tt.want {
			t.Errorf("NaturalCompare(%q, %q) = %d, want %d", tt.b, tt.a, got, -tt.want)
		}
	}
}

func TestNaturalSortsEmbeddedNumbers(t *testing.T) {
	got := Codes(Natural(chans("A10b", "A10", "A2", "B1", "A1")))
	want := []string{"A1", "A2", "A10", "A10b", "B1"}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSortsArePermutations(t *testing.T) {
	in := []Channel{
		{Code: "A-T3", Label: "zeta", Unit: "°C"},
		{Code: "A-Pc", Label: "Alpha", Unit: "bar"},
		{Code: "UR-sie", Label: "beta"},
		{Code: "A-T10", Label: "Жара", Unit: "°C"},
		{Code: "x1", Label: "alpha", Unit: "V"},
		{Code: "A-Te", Unit: "°C"},
	}
	orig := slices.Clone(in)

	sorts := map[string]func([]Channel) []Channel{
		"natural":  Natural,
		"label":    ByLabel,
		"unit":     ByUnitThenCode,
		"priority": func(c []Channel) []Channel { return Priority(c, DefaultPriority) },
		"custom":   func(c []Channel) []Channel { return CustomSaved(c, []string{"x1", "x1", "nope", "A-Pc"}) },
	}
	for name, fn := range sorts {
		t.Run(name, func(t *testing.T) {
			out := fn(in)
			if len(out) != len(in) {
				t.Fatalf("len = %d, want %d", len(out), len(in))
			}
			got := Codes(out)
			slices.Sort(got)
			want := Codes(in)
			slices.Sort(want)
			if !slices.Equal(got, want) {
				t.Errorf("not a permutation: %v vs %v", got, want)
			}
			if !slices.Equal(in, orig) {
				t.Error("input was mutated")
			}
		})
	}
}

func TestByLabelIgnoresCase(t *testing.T) {
	in := []Channel{
		{Code: "1", Label: "beta"},
		{Code: "2", Label: "Alpha"},
		{Code: "3", Label: ""},
		{Code: "4", Label: "alpha2"},
	}
	got := Codes(ByLabel(in))
	want := []string{"3", "2", "4", "1"}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestByUnitThenCode(t *testing.T) {
	in := []Channel{
		{Code: "T10", Unit: "°C"},
		{Code: "P1", Unit: "bar"},
		{Code: "T2", Unit: "°C"},
		{Code: "Z"},
	}
	got := Codes(ByUnitThenCode(in))
	want := []string{"Z", "P1", "T2", "T10"}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestPriority(t *testing.T) {
	in := chans("zz", "A-Te", "A-T10", "A-Pc", "A-T2")
	got := Codes(Priority(in, DefaultPriority))
	want := []string{"A-Pc", "A-Te", "A-T2", "A-T10", "zz"}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCustomSaved(t *testing.T) {
	in := chans("A", "B", "C", "D", "E")
	tests := []struct {
		name  string
		saved []string
		want  []string
	}{
		{"empty saved keeps file order", nil, []string{"A", "B", "C", "D", "E"}},
		{"prefix then rest in file order", []string{"D", "B"}, []string{"D", "B", "A", "C", "E"}},
		{"duplicates collapse to first", []string{"C", "A", "C"}, []string{"C", "A", "B", "D", "E"}},
		{"absent codes skipped", []string{"Q", "E"}, []string{"E", "A", "B", "C", "D"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Codes(CustomSaved(in, tt.saved))
			if !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWorkingOrderPriorityScenario(t *testing.T) {
	file := []Channel{
		{Code: "A-Pc", Unit: "bar"},
		{Code: "A-Te", Unit: "°C"},
		{Code: "A-Tc", Unit: "°C"},
	}
	got := Codes(WorkingOrder(ModePriority, file, nil))
	want := []string{"A-Pc", "A-Tc", "A-Te"}
	// A-Tc precedes A-Te in the priority list.
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if got := Codes(WorkingOrder(ModeFile, file, nil)); !slices.Equal(got, []string{"A-Pc", "A-Te", "A-Tc"}) {
		t.Errorf("file mode reordered: %v", got)
	}
}

func TestSortModeParseAndNext(t *testing.T) {
	if m, ok := ParseSortMode("label"); !ok || m != ModeLabel {
		t.Errorf("ParseSortMode(label) = %v, %v", m, ok)
	}
	if m, ok := ParseSortMode("bogus"); ok || m != ModeFile {
		t.Errorf("ParseSortMode(bogus) = %v, %v", m, ok)
	}
	m := ModeFile
	for range Modes {
		m = m.Next()
	}
	if m != ModeFile {
		t.Errorf("cycling all modes should return to file, got %v", m)
	}
}
