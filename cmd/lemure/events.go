package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abelbrown/lemure/internal/otel"
)

// eventFilter selects which log lines are shown.
type eventFilter struct {
	kind  string
	level string
	comp  string
}

func (f eventFilter) match(ev otel.Event) bool {
	if f.kind != "" && !strings.HasPrefix(string(ev.Kind), f.kind) {
		return false
	}
	if f.level != "" && ev.Level.Rank() < otel.Level(f.level).Rank() {
		return false
	}
	if f.comp != "" && ev.Comp != f.comp {
		return false
	}
	return true
}

func newEventsCommand(gf *globalFlags) *cobra.Command {
	var (
		tail    int
		follow  bool
		rawJSON bool
		filter  eventFilter
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show the JSONL event log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*gf)
			if err != nil {
				return err
			}
			logPath := cfg.EventLogPath()
			f, err := os.Open(logPath)
			if err != nil {
				return fmt.Errorf("event log not found at %s (run the TUI first): %w", logPath, err)
			}
			defer f.Close()

			out := cmd.OutOrStdout()
			show := func(l parsedLine) {
				if rawJSON {
					fmt.Fprintln(out, string(l.raw))
				} else {
					fmt.Fprintln(out, formatEvent(l.ev))
				}
			}

			lines, err := readTailLines(f, tail, filter.match)
			if err != nil {
				return err
			}
			for _, l := range lines {
				show(l)
			}
			if !follow {
				return nil
			}

			ctx, cancel := signalContext()
			defer cancel()
			return followLines(ctx, f, filter.match, show)
		},
	}

	cmd.Flags().IntVarP(&tail, "tail", "n", 50, "number of recent lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep printing new lines (like tail -f)")
	cmd.Flags().StringVar(&filter.kind, "kind", "", "event kind prefix, e.g. 'plot' or 'export.error'")
	cmd.Flags().StringVar(&filter.level, "level", "", "minimum level: debug, info, warn, error")
	cmd.Flags().StringVar(&filter.comp, "comp", "", "component name")
	cmd.Flags().BoolVar(&rawJSON, "json", false, "print raw JSON lines")
	return cmd
}

func formatEvent(ev otel.Event) string {
	lvl := strings.ToUpper(string(ev.Level))
	if lvl == "" {
		lvl = "?"
	}
	parts := []string{fmt.Sprintf("%s %-5s [%-4s] %-22s", ev.Time.Format("15:04:05.000"), lvl, ev.Comp, ev.Kind)}

	if ev.Msg != "" {
		parts = append(parts, "- "+truncate(ev.Msg, 80))
	}
	if ev.DurMs > 0 {
		parts = append(parts, fmt.Sprintf("(%.*fms)", durPrecision(ev.DurMs), ev.DurMs))
	}
	if ev.Seq > 0 {
		parts = append(parts, fmt.Sprintf("#%d", ev.Seq))
	}
	if ev.Folder != "" {
		parts = append(parts, "folder="+ev.Folder)
	}
	if ev.Channels > 0 {
		parts = append(parts, fmt.Sprintf("ch=%d", ev.Channels))
	}
	if ev.Step > 0 {
		parts = append(parts, fmt.Sprintf("step=%d", ev.Step))
	}
	if ev.Points > 0 {
		parts = append(parts, fmt.Sprintf("pts=%d", ev.Points))
	}
	if ev.Err != "" {
		parts = append(parts, "err="+ev.Err)
	}
	return strings.Join(parts, " ")
}

type parsedLine struct {
	ev  otel.Event
	raw []byte
}

func parseLine(raw []byte) (otel.Event, bool) {
	var ev otel.Event
	if len(raw) == 0 || json.Unmarshal(raw, &ev) != nil {
		return ev, false
	}
	return ev, true
}

// readTailLines reads r to the end and returns the last n lines matching.
func readTailLines(r io.Reader, n int, match func(otel.Event) bool) ([]parsedLine, error) {
	scanner := bufio.NewScanner(r)
	// Allow large lines (some events may have big Extra maps)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)

	var ring []parsedLine
	for scanner.Scan() {
		ev, ok := parseLine(scanner.Bytes())
		if !ok || !match(ev) {
			continue
		}
		raw := append([]byte(nil), scanner.Bytes()...)
		ring = append(ring, parsedLine{ev: ev, raw: raw})
		if len(ring) > n {
			ring = ring[1:]
		}
	}
	if n <= 0 {
		return nil, scanner.Err()
	}
	return ring, scanner.Err()
}

// followLines polls r for appended lines until ctx is done.
func followLines(ctx context.Context, r io.Reader, match func(otel.Event) bool, show func(parsedLine)) error {
	reader := bufio.NewReader(r)
	var pending []byte
	for {
		chunk, err := reader.ReadBytes('\n')
		pending = append(pending, chunk...)
		switch {
		case errors.Is(err, io.EOF):
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(100 * time.Millisecond):
			}
			continue
		case err != nil:
			return err
		}
		line := trimLine(pending)
		pending = nil
		if ev, ok := parseLine(line); ok && match(ev) {
			show(parsedLine{ev: ev, raw: line})
		}
	}
}

func trimLine(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}

func durPrecision(ms float64) int {
	if ms >= 100 {
		return 0
	}
	if ms >= 1 {
		return 1
	}
	return 2
}
