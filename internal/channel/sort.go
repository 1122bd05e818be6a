package channel

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultPriority is the fixed list of codes engineers look at first.
var DefaultPriority = []string{
	"A-Pc", "A-Pe", "UR-sie", "T-sie", "A-Tc", "A-Te",
	"A-T1", "A-T2", "A-T3", "A-T4", "A-T5", "A-T6", "A-T7",
	"A-I", "A-F", "A-V", "A-W",
}

// Natural sorts by NaturalCompare on the code.
func Natural(chs []Channel) []Channel {
	out := slices.Clone(chs)
	slices.SortStableFunc(out, func(a, b Channel) int {
		return NaturalCompare(a.Code, b.Code)
	})
	return out
}

// ByLabel sorts by label using root-locale collation, ignoring case.
func ByLabel(chs []Channel) []Channel {
	// A Collator keeps scratch buffers, so each call gets its own.
	col := collate.New(language.Und, collate.IgnoreCase)
	out := slices.Clone(chs)
	slices.SortStableFunc(out, func(a, b Channel) int {
		return col.CompareString(a.Label, b.Label)
	})
	return out
}

// ByUnitThenCode groups by the exact unit string, then orders each group
// naturally by code.
func ByUnitThenCode(chs []Channel) []Channel {
	out := slices.Clone(chs)
	slices.SortStableFunc(out, func(a, b Channel) int {
		if c := strings.Compare(a.Unit, b.Unit); c != 0 {
			return c
		}
		return NaturalCompare(a.Code, b.Code)
	})
	return out
}

// Priority emits the codes of prio that exist in chs (each once), followed by
// every other channel in natural order.
func Priority(chs []Channel, prio []string) []Channel {
	head, rest := takePrefix(chs, prio)
	return append(head, Natural(rest)...)
}

// CustomSaved emits the codes of saved that exist in chs (each once, later
// duplicates ignored), followed by every other channel in its original order.
func CustomSaved(chs []Channel, saved []string) []Channel {
	head, rest := takePrefix(chs, saved)
	return append(head, rest...)
}

// takePrefix splits chs into the channels named by codes (in codes order,
// deduplicated) and the remainder (in chs order).
func takePrefix(chs []Channel, codes []string) (head, rest []Channel) {
	byCode := Lookup(chs)
	used := make(map[string]bool, len(codes))
	head = make([]Channel, 0, len(codes))
	for _, code := range codes {
		c, ok := byCode[code]
		if !ok || used[code] {
			continue
		}
		used[code] = true
		head = append(head, c)
	}
	rest = make([]Channel, 0, len(chs)-len(head))
	for _, c := range chs {
		if !used[c.Code] {
			rest = append(rest, c)
		}
	}
	return head, rest
}
