// Package channel holds the channel metadata reported by the backend and the
// strategies that order it. All sort functions are pure: []Channel in,
// []Channel out, never mutating the input.
package channel

// Channel is one recorded series of a test run. Immutable once loaded.
type Channel struct {
	Code  string `json:"code"`
	Name  string `json:"name,omitempty"`
	Label string `json:"label,omitempty"`
	Unit  string `json:"unit,omitempty"`
}

// DisplayLabel returns the label, falling back to the name and then the code.
func (c Channel) DisplayLabel() string {
	switch {
	case c.Label != "":
		return c.Label
	case c.Name != "":
		return c.Name
	default:
		return c.Code
	}
}

// Codes returns the codes of chs in order.
func Codes(chs []Channel) []string {
	out := make([]string, len(chs))
	for i, c := range chs {
		out[i] = c.Code
	}
	return out
}

// CodeSet returns the set of codes present in chs.
func CodeSet(chs []Channel) map[string]bool {
	set := make(map[string]bool, len(chs))
	for _, c := range chs {
		set[c.Code] = true
	}
	return set
}

// Lookup indexes chs by code.
func Lookup(chs []Channel) map[string]Channel {
	m := make(map[string]Channel, len(chs))
	for _, c := range chs {
		m[c.Code] = c
	}
	return m
}
