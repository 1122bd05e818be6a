package backend

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abelbrown/lemure/internal/channel"
	"github.com/abelbrown/lemure/internal/plot"
	"github.com/abelbrown/lemure/internal/span"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, Options{Timeout: 5 * time.Second, RangeStatsRPS: 1000})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestLoad(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/load" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["folder"] != "/data/run1" {
			t.Errorf("folder = %q", body["folder"])
		}
		writeJSON(w, 200, map[string]any{
			"ok":      true,
			"folder":  "/data/run1",
			"summary": map[string]any{"points": 9, "start_ms": 1000, "end_ms": 9000},
			"channels": []map[string]string{
				{"code": "A-Pc", "unit": "bar"},
				{"code": "A-Te", "unit": "°C"},
			},
			"file_order":  []string{"A-Pc", "A-Te"},
			"saved_order": []string{"A-Te"},
		})
	})

	ds, err := c.Load(context.Background(), "  /data/run1 ")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ds.Channels) != 2 || ds.Channels[1].Unit != "°C" {
		t.Errorf("channels = %+v", ds.Channels)
	}
	if ds.Summary.Range() != span.New(1000, 9000) || ds.Summary.Points != 9 {
		t.Errorf("summary = %+v", ds.Summary)
	}
	if len(ds.SavedOrder) != 1 || ds.SavedOrder[0] != "A-Te" {
		t.Errorf("saved order = %v", ds.SavedOrder)
	}
}

func TestLoadErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{"ok": false, "error": "folder does not exist"})
	})
	if _, err := c.Load(context.Background(), ""); !errors.Is(err, ErrNoFolder) {
		t.Errorf("empty folder: %v", err)
	}
	_, err := c.Load(context.Background(), "/nope")
	if !errors.Is(err, ErrNotOK) {
		t.Fatalf("err = %v, want ErrNotOK", err)
	}
	if !strings.Contains(err.Error(), "folder does not exist") {
		t.Errorf("server message lost: %v", err)
	}
}

func TestNon2xxWithoutJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})
	_, err := c.Orders(context.Background())
	if !errors.Is(err, ErrNotOK) || !strings.Contains(err.Error(), "502") {
		t.Errorf("err = %v", err)
	}
}

func TestSeriesQueryAndTraces(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("channels") != "A,B" || q.Get("max_points") != "5000" || q.Get("step") != "" {
			t.Errorf("query = %v", q)
		}
		if q.Get("start_ms") != "1000" || q.Get("end_ms") != "9000" {
			t.Errorf("range = %s..%s", q.Get("start_ms"), q.Get("end_ms"))
		}
		writeJSON(w, 200, map[string]any{
			"ok":     true,
			"t_ms":   []int64{1000, 2000, 3000},
			"series": map[string]any{"A": []any{1.5, nil, 3}, "B": []any{4, 5}},
			"step":   3,
		})
	})

	s, err := c.Series(context.Background(), SeriesQuery{
		Codes: []string{"A", "B"}, Range: span.New(1000, 9000), MaxPoints: 5000,
	})
	if err != nil {
		t.Fatalf("Series: %v", err)
	}
	if s.Step != 3 {
		t.Errorf("step = %d", s.Step)
	}
	traces := s.Traces([]string{"B", "A"}, map[string]channel.Channel{"A": {Code: "A", Label: "Alpha", Unit: "bar"}})
	if traces[0].Code != "B" || traces[1].Name != "Alpha" || traces[1].Unit != "bar" {
		t.Errorf("traces = %+v", traces)
	}
	if !math.IsNaN(traces[1].Y[1]) || traces[1].Y[2] != 3 {
		t.Errorf("A values = %v", traces[1].Y)
	}
	if !math.IsNaN(traces[0].Y[2]) {
		t.Errorf("short series should be padded with NaN, got %v", traces[0].Y)
	}

	if _, err := c.Series(context.Background(), SeriesQuery{}); !errors.Is(err, plot.ErrNoChannels) {
		t.Errorf("no codes: %v", err)
	}
}

func TestSeriesManualStep(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("step"); got != "7" {
			t.Errorf("step = %q", got)
		}
		writeJSON(w, 200, map[string]any{"ok": true, "t_ms": []int64{}, "series": map[string]any{}})
	})
	if _, err := c.Series(context.Background(), SeriesQuery{Codes: []string{"A"}, Step: 7}); err != nil {
		t.Fatal(err)
	}
}

func TestRangeStats(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{"ok": true, "start_ms": 2000, "end_ms": 5000, "points": 4, "total": 9})
	})
	st, err := c.RangeStats(context.Background(), span.New(5000, 2000))
	if err != nil {
		t.Fatal(err)
	}
	if st.Range != span.New(2000, 5000) || st.Points != 4 || st.Total != 9 {
		t.Errorf("stats = %+v", st)
	}
}

func TestRangeStatsCancelled(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeJSON(w, 200, map[string]any{"ok": true})
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.RangeStats(ctx, span.New(0, 1)); err == nil {
		t.Error("cancelled context should fail")
	}
	if hits.Load() != 0 {
		t.Errorf("server hit %d times", hits.Load())
	}
}

func TestOrdersAndPresets(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/orders_list", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{"ok": true, "orders": []Entry{{Key: "o1", Name: "First", Count: 3}}})
	})
	mux.HandleFunc("/api/presets_list", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{"ok": true, "presets": []Entry{{Key: "p1", Name: "Temps", Count: 2}}})
	})
	mux.HandleFunc("/api/orders_save", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name  string   `json:"name"`
			Order []string `json:"order"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if body.Name != "mine" || len(body.Order) != 2 {
			t.Errorf("orders_save body = %+v", body)
		}
		writeJSON(w, 200, map[string]any{"ok": true, "key": "mine", "saved": 2})
	})
	mux.HandleFunc("/api/presets_load", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "p1" {
			writeJSON(w, 404, map[string]any{"ok": false, "error": "not found"})
			return
		}
		writeJSON(w, 200, map[string]any{"ok": true, "name": "Temps", "preset": map[string]any{
			"channels": []string{"A-Te"}, "sort_mode": "priority", "step_auto": false, "step": 4,
		}})
	})
	mux.HandleFunc("/api/presets_save", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name   string         `json:"name"`
			Preset map[string]any `json:"preset"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if body.Preset["step_target"] != float64(3000) || body.Preset["show_legend"] != true {
			t.Errorf("preset body = %+v", body.Preset)
		}
		writeJSON(w, 200, map[string]any{"ok": true, "key": "temps"})
	})
	c := newTestClient(t, mux.ServeHTTP)
	ctx := context.Background()

	cat, err := c.Catalog(ctx)
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	if len(cat.Orders) != 1 || cat.Orders[0].Name != "First" || len(cat.Presets) != 1 {
		t.Errorf("catalog = %+v", cat)
	}

	key, err := c.SaveNamedOrder(ctx, " mine ", []string{"A", "B"})
	if err != nil || key != "mine" {
		t.Errorf("SaveNamedOrder = %q, %v", key, err)
	}
	if _, err := c.SaveNamedOrder(ctx, "  ", nil); !errors.Is(err, ErrNoName) {
		t.Errorf("blank name: %v", err)
	}

	name, p, err := c.LoadPreset(ctx, "p1")
	if err != nil {
		t.Fatalf("LoadPreset: %v", err)
	}
	if name != "Temps" || p.SortMode != "priority" || p.Enabled || p.Manual != 4 {
		t.Errorf("preset = %q %+v", name, p)
	}
	if p.Target != 5000 || !p.ShowLegend {
		t.Errorf("defaults not applied: %+v", p)
	}
	if _, _, err := c.LoadPreset(ctx, "missing"); !errors.Is(err, ErrNotOK) {
		t.Errorf("missing preset: %v", err)
	}
	if _, _, err := c.LoadPreset(ctx, ""); !errors.Is(err, ErrNoKey) {
		t.Errorf("empty key: %v", err)
	}

	saved := Preset{Channels: []string{"A"}, ShowLegend: true}
	saved.Target = 3000
	if key, err := c.SavePreset(ctx, "Temps", saved); err != nil || key != "temps" {
		t.Errorf("SavePreset = %q, %v", key, err)
	}
}

func TestCatalogFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/orders_list", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{"ok": true, "orders": []Entry{}})
	})
	mux.HandleFunc("/api/presets_list", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 500, map[string]any{"ok": false, "error": "disk full"})
	})
	c := newTestClient(t, mux.ServeHTTP)
	if _, err := c.Catalog(context.Background()); !errors.Is(err, ErrNotOK) {
		t.Errorf("err = %v", err)
	}
}

func TestExport(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch r.URL.Path {
		case "/api/export":
			if q.Get("format") != "xlsx" || q.Get("step") != "2" || q.Get("channels") != "A,B" {
				t.Errorf("export query = %v", q)
			}
			w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
			w.Header().Set("Content-Disposition", `attachment; filename="export.xlsx"`)
			w.Write([]byte("PK\x03\x04"))
		case "/api/export_template":
			if q.Get("include_extra") != "0" || q.Get("refrigerant") != "R600a" {
				t.Errorf("template query = %v", q)
			}
			w.Header().Set("Content-Type", "application/octet-stream")
			w.Header().Set("X-Export-Total-S", "1.250")
			w.Header().Set("X-Export-Timing", "load 0.1s | total 1.2s")
			w.Write([]byte("xlsx"))
		}
	})
	ctx := context.Background()

	b, err := c.Export(ctx, ExportQuery{Format: "xlsx", Codes: []string{"A", "B"}, Range: span.New(1, 2), Step: 2})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if b.Filename != "export.xlsx" || string(b.Data) != "PK\x03\x04" {
		t.Errorf("blob = %+v", b)
	}

	b, err = c.Export(ctx, ExportQuery{Template: true, Codes: []string{"A"}, Range: span.New(1, 2), Refrigerant: "R600a"})
	if err != nil {
		t.Fatalf("template Export: %v", err)
	}
	if b.ServerTime != 1250*time.Millisecond || b.Timing != "load 0.1s | total 1.2s" {
		t.Errorf("timing = %v %q", b.ServerTime, b.Timing)
	}
}

func TestExportJSONError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 400, map[string]any{"ok": false, "error": "empty range"})
	})
	_, err := c.Export(context.Background(), ExportQuery{Format: "csv", Codes: []string{"A"}})
	if !errors.Is(err, ErrNotOK) || !strings.Contains(err.Error(), "empty range") {
		t.Errorf("err = %v", err)
	}
}
