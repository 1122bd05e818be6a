// Package export turns the current selection, window and step into export
// requests and writes the downloaded files.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/abelbrown/lemure/internal/backend"
	"github.com/abelbrown/lemure/internal/span"
)

var (
	// ErrNoChannels is returned when nothing is selected.
	ErrNoChannels = errors.New("no channels selected for export")
	// ErrBadRefrigerant is returned for a refrigerant the template does not know.
	ErrBadRefrigerant = errors.New("unknown refrigerant")
	// ErrBadFormat is returned for an unknown export format.
	ErrBadFormat = errors.New("unknown export format")
)

// Format is the kind of file to produce.
type Format string

const (
	CSV      Format = "csv"
	XLSX     Format = "xlsx"
	Template Format = "template"
)

// ParseFormat accepts "csv", "xlsx" and "template", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case CSV, XLSX, Template:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrBadFormat, s)
}

// FileName is the name the downloaded file is saved under.
func (f Format) FileName() string {
	switch f {
	case XLSX:
		return "export.xlsx"
	case Template:
		return "template_filled.xlsx"
	default:
		return "export.csv"
	}
}

// Refrigerants lists the refrigerants the template export supports.
var Refrigerants = []string{"R290", "R600a"}

// DefaultRefrigerant is used when none is configured.
const DefaultRefrigerant = "R290"

// ValidateRefrigerant returns the canonical spelling of r.
func ValidateRefrigerant(r string) (string, error) {
	r = strings.TrimSpace(r)
	if r == "" {
		return DefaultRefrigerant, nil
	}
	for _, known := range Refrigerants {
		if strings.EqualFold(r, known) {
			return known, nil
		}
	}
	return "", fmt.Errorf("%w: %q (want %s)", ErrBadRefrigerant, r, strings.Join(Refrigerants, " or "))
}

// Params is what the user chose for an export.
type Params struct {
	Format       Format
	Codes        []string // ordered selection
	Window       span.Range
	Step         int
	IncludeExtra bool
	Refrigerant  string
}

// BuildQuery validates p and converts it into a backend request.
func BuildQuery(p Params) (backend.ExportQuery, error) {
	if len(p.Codes) == 0 {
		return backend.ExportQuery{}, ErrNoChannels
	}
	q := backend.ExportQuery{
		Codes: append([]string(nil), p.Codes...),
		Range: p.Window.Normalize(),
		Step:  max(1, p.Step),
	}
	switch p.Format {
	case CSV, XLSX:
		q.Format = string(p.Format)
	case Template:
		ref, err := ValidateRefrigerant(p.Refrigerant)
		if err != nil {
			return backend.ExportQuery{}, err
		}
		q.Template = true
		q.IncludeExtra = p.IncludeExtra
		q.Refrigerant = ref
	default:
		return backend.ExportQuery{}, fmt.Errorf("%w: %q", ErrBadFormat, p.Format)
	}
	return q, nil
}

// Exporter downloads export files.
type Exporter interface {
	Export(ctx context.Context, q backend.ExportQuery) (*backend.Blob, error)
}

// Result describes a written export.
type Result struct {
	Path       string
	Size       int
	Elapsed    time.Duration
	ServerTime time.Duration
	Timing     string
}

// Summary is a one-line report for the status bar.
func (r Result) Summary() string {
	s := fmt.Sprintf("saved %s (%s) in %s", filepath.Base(r.Path),
		humanize.Bytes(uint64(r.Size)), r.Elapsed.Round(100*time.Millisecond))
	if r.ServerTime > 0 {
		s += fmt.Sprintf(", server %.1fs", r.ServerTime.Seconds())
	}
	return s
}

// Run builds the request, downloads the file and writes it into dir.
func Run(ctx context.Context, ex Exporter, p Params, dir string) (*Result, error) {
	q, err := BuildQuery(p)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	blob, err := ex.Export(ctx, q)
	if err != nil {
		return nil, err
	}
	path, err := Write(dir, p.Format.FileName(), blob.Data)
	if err != nil {
		return nil, err
	}
	return &Result{
		Path:       path,
		Size:       len(blob.Data),
		Elapsed:    time.Since(start),
		ServerTime: blob.ServerTime,
		Timing:     blob.Timing,
	}, nil
}

// Write stores data as dir/name, creating dir if needed. The file is written
// to a temporary name first so a failed export never leaves a partial file.
func Write(dir, name string, data []byte) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, name)
	tmp := path + ".part"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}
