package backend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/abelbrown/lemure/internal/autostep"
	"github.com/abelbrown/lemure/internal/channel"
	"github.com/abelbrown/lemure/internal/plot"
	"github.com/abelbrown/lemure/internal/span"
)

// ErrNoFolder is returned by Load for an empty folder path.
var ErrNoFolder = errors.New("no folder specified")

// Summary describes the time axis of a loaded test.
type Summary struct {
	Points  int    `json:"points"`
	Start   string `json:"start,omitempty"`
	End     string `json:"end,omitempty"`
	StartMs int64  `json:"start_ms"`
	EndMs   int64  `json:"end_ms"`
}

// Range is the full dataset span.
func (s Summary) Range() span.Range { return span.New(s.StartMs, s.EndMs) }

// Dataset is the response to a successful load.
type Dataset struct {
	Folder     string            `json:"folder"`
	Summary    Summary           `json:"summary"`
	Channels   []channel.Channel `json:"channels"`
	FileOrder  []string          `json:"file_order"`
	SavedOrder []string          `json:"saved_order"`
}

// Load asks the server to load the test in folder.
func (c *Client) Load(ctx context.Context, folder string) (*Dataset, error) {
	folder = strings.TrimSpace(folder)
	if folder == "" {
		return nil, ErrNoFolder
	}
	var ds Dataset
	if err := c.call(ctx, "POST", "/api/load", nil, map[string]string{"folder": folder}, &ds); err != nil {
		return nil, fmt.Errorf("load %s: %w", folder, err)
	}
	if ds.Folder == "" {
		ds.Folder = folder
	}
	return &ds, nil
}

// SeriesQuery selects the samples to fetch. Set exactly one of Step and
// MaxPoints; with MaxPoints the server picks the stride.
type SeriesQuery struct {
	Codes     []string
	Range     span.Range
	Step      int
	MaxPoints int
}

func (q SeriesQuery) values() url.Values {
	v := url.Values{}
	v.Set("channels", joinCodes(q.Codes))
	v.Set("start_ms", strconv.FormatInt(q.Range.StartMs, 10))
	v.Set("end_ms", strconv.FormatInt(q.Range.EndMs, 10))
	if q.MaxPoints > 0 {
		v.Set("max_points", strconv.Itoa(q.MaxPoints))
	} else {
		v.Set("step", strconv.Itoa(max(1, q.Step)))
	}
	return v
}

// Series is the decoded /api/series response. Missing samples are nil.
type Series struct {
	T      []int64               `json:"t_ms"`
	Values map[string][]*float64 `json:"series"`
	Step   int                   `json:"step,omitempty"`
	Points int                   `json:"points,omitempty"`
}

// Series fetches decimated samples.
func (c *Client) Series(ctx context.Context, q SeriesQuery) (*Series, error) {
	if len(q.Codes) == 0 {
		return nil, plot.ErrNoChannels
	}
	var s Series
	if err := c.call(ctx, "GET", "/api/series", q.values(), nil, &s); err != nil {
		return nil, fmt.Errorf("series: %w", err)
	}
	return &s, nil
}

// Traces converts s into chart traces in the order of codes. Missing samples
// become NaN.
func (s *Series) Traces(codes []string, meta map[string]channel.Channel) []plot.Trace {
	out := make([]plot.Trace, 0, len(codes))
	for _, code := range codes {
		vals := s.Values[code]
		y := make([]float64, len(s.T))
		for i := range y {
			if i < len(vals) && vals[i] != nil {
				y[i] = *vals[i]
			} else {
				y[i] = math.NaN()
			}
		}
		ch := meta[code]
		out = append(out, plot.Trace{
			Code: code,
			Name: ch.DisplayLabel(),
			Unit: ch.Unit,
			T:    s.T,
			Y:    y,
		})
	}
	return out
}

// RangeStats asks for the exact number of samples in r. Calls are rate
// limited.
func (c *Client) RangeStats(ctx context.Context, r span.Range) (autostep.Stats, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return autostep.Stats{}, fmt.Errorf("rate limiter: %w", err)
	}
	v := url.Values{}
	v.Set("start_ms", strconv.FormatInt(r.StartMs, 10))
	v.Set("end_ms", strconv.FormatInt(r.EndMs, 10))

	var resp struct {
		Points int `json:"points"`
		Total  int `json:"total"`
	}
	if err := c.call(ctx, "GET", "/api/range_stats", v, nil, &resp); err != nil {
		return autostep.Stats{}, fmt.Errorf("range stats: %w", err)
	}
	// Keyed by the requested range so the cache lookup matches exactly.
	return autostep.Stats{Range: r.Normalize(), Points: resp.Points, Total: resp.Total}, nil
}

// SaveOrder persists the custom channel order for the loaded test.
func (c *Client) SaveOrder(ctx context.Context, order []string) error {
	if order == nil {
		order = []string{}
	}
	if err := c.call(ctx, "POST", "/api/save_order", nil, map[string]any{"order": order}, nil); err != nil {
		return fmt.Errorf("save order: %w", err)
	}
	return nil
}
