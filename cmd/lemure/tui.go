package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/lemure/internal/backend"
	"github.com/abelbrown/lemure/internal/config"
	"github.com/abelbrown/lemure/internal/coord"
	"github.com/abelbrown/lemure/internal/export"
	"github.com/abelbrown/lemure/internal/logging"
	"github.com/abelbrown/lemure/internal/otel"
	"github.com/abelbrown/lemure/internal/plot"
	"github.com/abelbrown/lemure/internal/span"
	"github.com/abelbrown/lemure/internal/store"
	"github.com/abelbrown/lemure/internal/ui"
)

func runTUI(gf globalFlags, folder string) error {
	cfg, err := loadConfig(gf)
	if err != nil {
		return err
	}

	if err := logging.Init(cfg.DataDir, version); err != nil {
		return err
	}
	defer logging.Close()

	ring := otel.NewRingBuffer(otel.DefaultRingSize)
	events, err := otel.Open(cfg.EventLogPath())
	if err != nil {
		logging.Warn("event log disabled", "err", err)
		events = otel.NewNullLogger()
	}
	events.SetRingBuffer(ring)
	defer events.Close()

	st, err := store.Open(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("open local store: %w", err)
	}
	defer st.Close()

	snap, err := st.LoadSnapshot()
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		logging.Warn("last session unreadable", "err", err)
	}
	if folder == "" && snap != nil {
		folder = snap.Folder
	}

	client := newClient(cfg)
	events.Emit(otel.Event{
		Kind: otel.KindStartup, Level: otel.LevelInfo, Comp: "main",
		Msg: client.BaseURL(), Folder: folder,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The coordinator reports through the program, which needs the app first.
	var watcher *coord.Coordinator

	appCfg := uiConfig(ctx, cfg, client, st, events, folderHooks{
		watch: func(f string) error {
			if watcher == nil {
				return nil
			}
			return watcher.Watch(f)
		},
		forget: func(f string) {
			events.Warn(otel.KindLoadError, "main", "forgetting rejected folder "+f)
			if err := st.RemoveRecent(f); err != nil {
				logging.Warn("forget folder", "folder", f, "err", err)
				events.Error(otel.KindError, "store", err)
			}
			if watcher != nil && watcher.Folder() == filepath.Clean(f) {
				watcher.Unwatch()
			}
		},
	})
	if r, err := st.Get(refrigerantKey); err == nil {
		appCfg.Refrigerant = r
	}
	appCfg.Snapshot = snap
	appCfg.Folder = folder
	appCfg.Obs = ui.ObsConfig{Logger: events, Ring: ring}

	program := tea.NewProgram(ui.NewApp(appCfg), tea.WithAltScreen())

	if cfg.WatchFolder {
		watcher = coord.New(program, cfg.Debounce.Watch)
		watcher.Start(ctx)
	}

	_, runErr := program.Run()

	cancel()
	if watcher != nil {
		watcher.Wait()
	}
	events.Info(otel.KindShutdown, "main", "")
	if d := events.Dropped(); d > 0 {
		logging.Warn("event log dropped events", "count", d)
	}
	if runErr != nil {
		return fmt.Errorf("run program: %w", runErr)
	}
	return nil
}

// refrigerantKey stores the refrigerant of the last template export.
const refrigerantKey = "export.refrigerant"

// folderHooks connects the loader to the folder watcher. forget runs when
// the server rejects a folder outright.
type folderHooks struct {
	watch  func(string) error
	forget func(string)
}

// uiConfig wires every App operation to the backend client and the local
// store. Each func returns a tea.Cmd; the App never sees either dependency.
// Backend calls are timed into events when it is non-nil.
func uiConfig(ctx context.Context, cfg *config.Config, client *backend.Client, st *store.Store, events *otel.Logger, hooks folderHooks) ui.AppConfig {
	timed := func(endpoint string, start time.Time, err error, e otel.Event) {
		if events == nil {
			return
		}
		e.Level, e.Msg = otel.LevelDebug, endpoint
		events.Timed(otel.KindRequest, "backend", start, err, e)
	}

	return ui.AppConfig{
		Load: func(folder string) tea.Cmd {
			return func() tea.Msg {
				start := time.Now()
				ds, err := client.Load(ctx, folder)
				timed("load", start, err, otel.Event{Folder: folder})
				if errors.Is(err, backend.ErrNotOK) && hooks.forget != nil {
					hooks.forget(folder)
				}
				return ui.DatasetLoaded{Folder: folder, Dataset: ds, Elapsed: time.Since(start), Err: err}
			}
		},
		Fetch: func(req plot.Request) tea.Cmd {
			return func() tea.Msg {
				start := time.Now()
				s, err := client.Series(ctx, backend.SeriesQuery{
					Codes:     req.Codes,
					Range:     req.Full,
					Step:      req.Step,
					MaxPoints: req.MaxPoints,
				})
				timed("series", start, err, otel.Event{Seq: req.Seq, Channels: len(req.Codes), Step: req.Step})
				return ui.SeriesLoaded{Req: req, Series: s, Err: err}
			}
		},
		RangeStats: func(token uint64, r span.Range) tea.Cmd {
			return func() tea.Msg {
				start := time.Now()
				stats, err := client.RangeStats(ctx, r)
				timed("range_stats", start, err, otel.Event{Seq: token, StartMs: r.StartMs, EndMs: r.EndMs})
				return ui.StatsLoaded{Token: token, Stats: stats, Err: err}
			}
		},
		SaveOrder: func(order []string) tea.Cmd {
			return func() tea.Msg {
				start := time.Now()
				err := client.SaveOrder(ctx, order)
				timed("save_order", start, err, otel.Event{Channels: len(order)})
				return ui.OrderSaved{Order: order, Err: err}
			}
		},
		SaveSnapshot: func(snap store.Snapshot) tea.Cmd {
			return func() tea.Msg {
				return ui.SnapshotSaved{Err: st.SaveSnapshot(snap)}
			}
		},
		Export: func(p export.Params) tea.Cmd {
			return func() tea.Msg {
				start := time.Now()
				res, err := export.Run(ctx, client, p, cfg.OutputDir)
				timed("export "+string(p.Format), start, err, otel.Event{Channels: len(p.Codes), Step: p.Step})
				if err == nil && p.Format == export.Template {
					if err := st.Set(refrigerantKey, p.Refrigerant); err != nil {
						logging.Warn("remember refrigerant", "err", err)
						if events != nil {
							events.Error(otel.KindError, "store", err)
						}
					}
				}
				return ui.ExportDone{Format: p.Format, Result: res, Err: err}
			}
		},
		Catalog: func() tea.Cmd {
			return func() tea.Msg {
				start := time.Now()
				cat, err := client.Catalog(ctx)
				timed("catalog", start, err, otel.Event{})
				return ui.CatalogLoaded{Catalog: cat, Err: err}
			}
		},
		SaveNamedOrder: func(name string, order []string) tea.Cmd {
			return func() tea.Msg {
				key, err := client.SaveNamedOrder(ctx, name, order)
				return ui.NamedOrderSaved{Key: key, Name: name, Order: order, Err: err}
			}
		},
		LoadNamedOrder: func(key string) tea.Cmd {
			return func() tea.Msg {
				o, err := client.LoadNamedOrder(ctx, key)
				return ui.NamedOrderLoaded{Order: o, Err: err}
			}
		},
		SavePreset: func(name string, p backend.Preset) tea.Cmd {
			return func() tea.Msg {
				key, err := client.SavePreset(ctx, name, p)
				return ui.PresetSaved{Key: key, Name: name, Err: err}
			}
		},
		LoadPreset: func(key string) tea.Cmd {
			return func() tea.Msg {
				name, p, err := client.LoadPreset(ctx, key)
				return ui.PresetLoaded{Name: name, Preset: p, Err: err}
			}
		},
		DeletePreset: func(key string) tea.Cmd {
			return func() tea.Msg {
				return ui.PresetDeleted{Key: key, Err: client.DeletePreset(ctx, key)}
			}
		},
		Recent: func() tea.Cmd {
			return func() tea.Msg {
				folders, err := st.Recent()
				return ui.RecentLoaded{Folders: folders, Err: err}
			}
		},
		Remember: func(folder string) tea.Cmd {
			return func() tea.Msg {
				if err := st.AddRecent(folder, cfg.RecentLimit); err != nil {
					return ui.RecentLoaded{Err: err}
				}
				folders, err := st.Recent()
				return ui.RecentLoaded{Folders: folders, Err: err}
			}
		},
		Watch: func(folder string) tea.Cmd {
			return func() tea.Msg {
				if err := hooks.watch(folder); err != nil {
					return coord.WatchFailed{Folder: folder, Err: err}
				}
				return nil
			}
		},

		Step: cfg.Step.Settings(),
		Delays: ui.Delays{
			Redraw:     cfg.Debounce.Redraw,
			OrderSave:  cfg.Debounce.OrderSave,
			LastState:  cfg.Debounce.LastState,
			RangeStats: cfg.Debounce.RangeStats,
			Filter:     cfg.Debounce.Filter,
		},
		Refrigerant: cfg.DefaultRefrigerant,
		HideLegend:  !cfg.ShowLegend,
	}
}
