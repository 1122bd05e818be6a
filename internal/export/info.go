package export

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/abelbrown/lemure/internal/autostep"
)

// Info is the export summary shown under the chart.
type Info struct {
	Channels     int
	Step         autostep.Result
	Auto         bool
	IncludeExtra bool
}

// After is the number of rows left once the step is applied.
func (i Info) After() int { return autostep.Decimated(i.Step.Points, i.Step.Step) }

// String renders the panel as a single line.
func (i Info) String() string {
	pts := humanize.Comma(int64(i.Step.Points))
	if !i.Step.Exact {
		pts = "~" + pts
	}
	mode := "manual"
	if i.Auto {
		mode = "auto"
	}
	z := "no"
	if i.IncludeExtra {
		z = "yes"
	}
	parts := []string{
		fmt.Sprintf("channels %d", i.Channels),
		"points " + pts,
		fmt.Sprintf("step %d (%s)", i.Step.Step, mode),
		"rows " + humanize.Comma(int64(i.After())),
		"Z " + z,
	}
	return strings.Join(parts, " · ")
}
