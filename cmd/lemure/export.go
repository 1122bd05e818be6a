package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abelbrown/lemure/internal/autostep"
	"github.com/abelbrown/lemure/internal/backend"
	"github.com/abelbrown/lemure/internal/channel"
	"github.com/abelbrown/lemure/internal/export"
	"github.com/abelbrown/lemure/internal/selection"
	"github.com/abelbrown/lemure/internal/span"
)

func newExportCommand(gf *globalFlags) *cobra.Command {
	var (
		channels    []string
		format      string
		outDir      string
		step        int
		target      int
		extra       bool
		refrigerant string
		png         bool
	)

	cmd := &cobra.Command{
		Use:   "export <folder>",
		Short: "Export channels of a test without the TUI",
		Long: `Loads the test in folder and exports the given channels over the full
time span. Without --channels the default selection is used (up to six °C
channels). The step is computed the same way the viewer computes it: --step
sets a manual stride, otherwise the stride keeps about --target rows.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*gf)
			if err != nil {
				return err
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			if refrigerant == "" {
				refrigerant = cfg.DefaultRefrigerant
			}
			if f == export.Template {
				if refrigerant, err = export.ValidateRefrigerant(refrigerant); err != nil {
					return err
				}
			}
			if outDir == "" {
				outDir = cfg.OutputDir
			}
			settings := cfg.Step.Settings()
			switch {
			case step > 0:
				settings.Enabled, settings.Manual = false, step
			case target > 0:
				settings.Enabled, settings.Target = true, target
			}

			ctx, cancel := signalContext()
			defer cancel()
			client := newClient(cfg)

			ds, err := client.Load(ctx, args[0])
			if err != nil {
				return err
			}
			codes, err := pickChannels(ds, channels)
			if err != nil {
				return err
			}
			window := ds.Summary.Range()
			res := exportStep(ctx, cmd.ErrOrStderr(), client, settings, window, ds.Summary.Points)

			info := export.Info{Channels: len(codes), Step: res, Auto: settings.Enabled, IncludeExtra: extra}
			fmt.Fprintln(cmd.OutOrStdout(), info.String())

			result, err := export.Run(ctx, client, export.Params{
				Format:       f,
				Codes:        codes,
				Window:       window,
				Step:         res.Step,
				IncludeExtra: extra,
				Refrigerant:  refrigerant,
			}, outDir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Summary())

			if png {
				path, err := writePNG(ctx, client, ds, codes, window, outDir)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "plot", path)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&channels, "channels", nil, "channel codes in export order (comma separated)")
	cmd.Flags().StringVar(&format, "format", "csv", "csv, xlsx or template")
	cmd.Flags().StringVar(&outDir, "out", "", "output directory (default: config output_dir, else the current directory)")
	cmd.Flags().IntVar(&step, "step", 0, "manual stride")
	cmd.Flags().IntVar(&target, "target", 0, "auto-step target row count")
	cmd.Flags().BoolVar(&extra, "extra", false, "template only: include the Z channels")
	cmd.Flags().StringVar(&refrigerant, "refrigerant", "", "template only: "+strings.Join(export.Refrigerants, " or "))
	cmd.Flags().BoolVar(&png, "png", false, "also write a PNG plot of the exported channels")
	cmd.MarkFlagsMutuallyExclusive("step", "target")
	return cmd
}

// pickChannels validates the requested codes against the dataset, or falls
// back to the default selection in file order.
func pickChannels(ds *backend.Dataset, requested []string) ([]string, error) {
	if len(requested) == 0 {
		codes := selection.Default(ds.Channels)
		if len(codes) == 0 {
			return nil, export.ErrNoChannels
		}
		return codes, nil
	}
	known := channel.CodeSet(ds.Channels)
	seen := make(map[string]bool, len(requested))
	var codes, unknown []string
	for _, c := range requested {
		switch {
		case seen[c]:
			continue
		case !known[c]:
			unknown = append(unknown, c)
		default:
			codes = append(codes, c)
		}
		seen[c] = true
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown channels: %s", strings.Join(unknown, ", "))
	}
	return codes, nil
}

// exportStep resolves the stride, preferring an exact sample count from the
// backend over the estimate. Falling back to the estimate is reported on warn.
func exportStep(ctx context.Context, warn io.Writer, client *backend.Client, s autostep.Settings, window span.Range, total int) autostep.Result {
	var cache autostep.Cache
	token := cache.Begin()
	if st, err := client.RangeStats(ctx, window); err == nil {
		cache.Apply(token, st)
	} else if !errors.Is(err, context.Canceled) {
		fmt.Fprintln(warn, "warning: range stats unavailable, using the estimate:", err)
	}
	return autostep.Effective(s, window, window, total, &cache)
}

func writePNG(ctx context.Context, client *backend.Client, ds *backend.Dataset, codes []string, window span.Range, dir string) (string, error) {
	s, err := client.Series(ctx, backend.SeriesQuery{Codes: codes, Range: window, MaxPoints: 2000})
	if err != nil {
		return "", err
	}
	traces := s.Traces(codes, channel.Lookup(ds.Channels))
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, filepath.Base(ds.Folder)+".png")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := export.RenderPNG(f, traces, window, 1200, 600); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}
