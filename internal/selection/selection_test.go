package selection

import (
	"slices"
	"testing"

	"github.com/abelbrown/lemure/internal/channel"
)

var abcde = []string{"A", "B", "C", "D", "E"}

func selected(m *Model, order []string) []string { return m.Ordered(order) }

func TestShiftClickSelectsRange(t *testing.T) {
	m := New()
	m.Click(abcde, "B", false, false)
	m.Click(abcde, "D", false, true)

	if got := selected(m, abcde); !slices.Equal(got, []string{"B", "C", "D"}) {
		t.Errorf("got %v, want [B C D]", got)
	}
	if m.Anchor() != "B" {
		t.Errorf("shift-click must not move the anchor, got %q", m.Anchor())
	}

	// Reverse direction
	m.Click(abcde, "A", false, true)
	if got := selected(m, abcde); !slices.Equal(got, []string{"A", "B"}) {
		t.Errorf("got %v, want [A B]", got)
	}
}

func TestShiftCtrlClickUnions(t *testing.T) {
	m := New()
	m.Click(abcde, "E", false, false)
	m.Click(abcde, "A", true, false) // anchor A, selection {A,E}
	m.Click(abcde, "B", true, true)

	if got := selected(m, abcde); !slices.Equal(got, []string{"A", "B", "E"}) {
		t.Errorf("got %v, want [A B E]", got)
	}
}

func TestShiftClickAnchorFilteredOut(t *testing.T) {
	m := New()
	m.Click(abcde, "A", false, false)
	display := []string{"C", "D"}
	m.Click(display, "D", false, true)
	if got := selected(m, abcde); !slices.Equal(got, []string{"D"}) {
		t.Errorf("got %v, want [D]", got)
	}
}

func TestCtrlClickToggles(t *testing.T) {
	m := New()
	m.Click(abcde, "A", false, false)
	m.Click(abcde, "C", true, false)
	m.Click(abcde, "E", true, false)

	if got := selected(m, abcde); !slices.Equal(got, []string{"A", "C", "E"}) {
		t.Errorf("got %v, want [A C E]", got)
	}
	m.Click(abcde, "C", true, false)
	if got := selected(m, abcde); !slices.Equal(got, []string{"A", "E"}) {
		t.Errorf("got %v, want [A E]", got)
	}
	if m.Anchor() != "C" {
		t.Errorf("anchor = %q, want C", m.Anchor())
	}
}

func TestPlainClickCollapses(t *testing.T) {
	m := New()
	m.SelectAll(abcde)
	m.Click(abcde, "D", false, false)
	if got := selected(m, abcde); !slices.Equal(got, []string{"D"}) {
		t.Errorf("got %v, want [D]", got)
	}
	if m.Anchor() != "D" {
		t.Errorf("anchor = %q, want D", m.Anchor())
	}
}

func TestSelectAllUsesWorkingOrder(t *testing.T) {
	m := New()
	m.SelectAll(abcde)
	if m.Len() != 5 {
		t.Errorf("Len = %d, want 5", m.Len())
	}
}

func TestClearKeepsFirstDisplayed(t *testing.T) {
	m := New()
	m.SelectAll(abcde)

	m.Clear([]string{"C", "D"}, abcde)
	if got := selected(m, abcde); !slices.Equal(got, []string{"C"}) {
		t.Errorf("got %v, want [C]", got)
	}
	if m.Anchor() != "C" {
		t.Errorf("anchor = %q, want C", m.Anchor())
	}

	m.Clear(nil, abcde)
	if got := selected(m, abcde); !slices.Equal(got, []string{"A"}) {
		t.Errorf("got %v, want [A]", got)
	}

	m.Clear(nil, nil)
	if m.Len() != 0 || m.Anchor() != "" {
		t.Errorf("expected empty selection, got %d anchor %q", m.Len(), m.Anchor())
	}
}

func TestPrune(t *testing.T) {
	tests := []struct {
		name      string
		available []string
		intersect bool
		want      []string
	}{
		{"preserve verbatim", []string{"A"}, false, []string{"B", "D"}},
		{"intersect", []string{"A", "B", "C"}, true, []string{"B"}},
		{"empty intersection keeps previous", []string{"A", "C"}, true, []string{"B", "D"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New()
			m.Set([]string{"B", "D"})
			m.Prune(tt.available, tt.intersect)
			if got := selected(m, abcde); !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRestrict(t *testing.T) {
	m := New()
	m.Click(abcde, "B", false, false)
	m.Restrict([]string{"X"})
	if m.Len() != 0 || m.Anchor() != "" {
		t.Errorf("Restrict left %d selected, anchor %q", m.Len(), m.Anchor())
	}
}

func TestSetRoundTrip(t *testing.T) {
	m := New()
	m.Set([]string{"D", "B"})
	first := m.Ordered(abcde)
	m.Set(m.Ordered(abcde))
	m.Set(m.Ordered(abcde))
	if got := m.Ordered(abcde); !slices.Equal(got, first) {
		t.Errorf("round trip changed selection: %v -> %v", first, got)
	}
}

func TestOrderedFollowsWorkingOrder(t *testing.T) {
	m := New()
	m.Set([]string{"E", "A", "C"})
	if got := m.Ordered([]string{"C", "B", "A", "E"}); !slices.Equal(got, []string{"C", "A", "E"}) {
		t.Errorf("got %v", got)
	}
}

func TestDefault(t *testing.T) {
	file := []channel.Channel{
		{Code: "A-Pc", Unit: "bar"},
		{Code: "A-Te", Unit: "°C"},
		{Code: "A-Tc", Unit: "°C"},
	}
	if got := Default(file); !slices.Equal(got, []string{"A-Te", "A-Tc"}) {
		t.Errorf("got %v, want [A-Te A-Tc]", got)
	}

	var many []channel.Channel
	for _, c := range []string{"T1", "T2", "T3", "T4", "T5", "T6", "T7"} {
		many = append(many, channel.Channel{Code: c, Unit: "°C"})
	}
	if got := Default(many); len(got) != 6 {
		t.Errorf("got %d channels, want 6", len(got))
	}

	noTemp := []channel.Channel{{Code: "a"}, {Code: "b"}, {Code: "c"}, {Code: "d"}, {Code: "e"}}
	if got := Default(noTemp); !slices.Equal(got, []string{"a", "b", "c", "d"}) {
		t.Errorf("got %v, want first four", got)
	}
	if got := Default(nil); len(got) != 0 {
		t.Errorf("got %v for no channels", got)
	}
}
