package backend

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/abelbrown/lemure/internal/span"
)

// ExportQuery is the parameter set of /api/export and /api/export_template.
type ExportQuery struct {
	Format       string // "csv" or "xlsx"; ignored for templates
	Codes        []string
	Range        span.Range
	Step         int
	Template     bool
	IncludeExtra bool
	Refrigerant  string
}

func (q ExportQuery) path() string {
	if q.Template {
		return "/api/export_template"
	}
	return "/api/export"
}

func (q ExportQuery) values() url.Values {
	v := url.Values{}
	v.Set("channels", joinCodes(q.Codes))
	v.Set("start_ms", strconv.FormatInt(q.Range.StartMs, 10))
	v.Set("end_ms", strconv.FormatInt(q.Range.EndMs, 10))
	v.Set("step", strconv.Itoa(max(1, q.Step)))
	if q.Template {
		extra := "0"
		if q.IncludeExtra {
			extra = "1"
		}
		v.Set("include_extra", extra)
		if q.Refrigerant != "" {
			v.Set("refrigerant", q.Refrigerant)
		}
	} else {
		v.Set("format", q.Format)
	}
	return v
}

// Blob is a downloaded export.
type Blob struct {
	Data        []byte
	Filename    string // from Content-Disposition, may be empty
	ContentType string
	ServerTime  time.Duration // X-Export-Total-S, zero when absent
	Timing      string        // X-Export-Timing
}

// Export downloads an export file. A non-2xx status carries a JSON error
// which is returned wrapping ErrNotOK.
func (c *Client) Export(ctx context.Context, q ExportQuery) (*Blob, error) {
	path := q.path()
	req, err := c.newRequest(ctx, http.MethodGet, path, q.values(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("export: read body: %w", err)
	}
	ct := resp.Header.Get("Content-Type")
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("export: %w", serverError(resp.StatusCode, data))
	}
	// A 200 with a JSON body is an error envelope, not a file.
	if strings.HasPrefix(ct, "application/json") {
		return nil, fmt.Errorf("export: %w", serverError(resp.StatusCode, data))
	}

	b := &Blob{
		Data:        data,
		ContentType: ct,
		Filename:    dispositionFilename(resp.Header.Get("Content-Disposition")),
		Timing:      resp.Header.Get("X-Export-Timing"),
	}
	if s := resp.Header.Get("X-Export-Total-S"); s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 {
			b.ServerTime = time.Duration(f * float64(time.Second))
		}
	}
	return b, nil
}

func dispositionFilename(h string) string {
	if h == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(h)
	if err != nil {
		return ""
	}
	return params["filename"]
}
