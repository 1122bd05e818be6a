package backend

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/lemure/internal/autostep"
)

// ErrNoName is returned when saving under an empty name.
var ErrNoName = errors.New("name is empty")

// ErrNoKey is returned when loading or deleting without a key.
var ErrNoKey = errors.New("nothing chosen")

// Entry is one saved named order or preset as listed by the server.
type Entry struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Count   int    `json:"count"`
	SavedAt string `json:"saved_at"`
}

// NamedOrder is a saved channel order.
type NamedOrder struct {
	Key   string   `json:"key"`
	Name  string   `json:"name"`
	Order []string `json:"order"`
}

// Preset bundles a selection with the view settings it was saved with.
type Preset struct {
	Channels []string `json:"channels"`
	SortMode string   `json:"sort_mode"`
	Order    []string `json:"order"`
	autostep.Settings
	ShowLegend bool `json:"show_legend"`
}

// Orders lists saved named orders, sorted by name on the server.
func (c *Client) Orders(ctx context.Context) ([]Entry, error) {
	var resp struct {
		Orders []Entry `json:"orders"`
	}
	if err := c.call(ctx, "GET", "/api/orders_list", nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return resp.Orders, nil
}

// SaveNamedOrder stores order under name and returns its key.
func (c *Client) SaveNamedOrder(ctx context.Context, name string, order []string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrNoName
	}
	var resp struct {
		Key string `json:"key"`
	}
	body := map[string]any{"name": name, "order": nonNil(order)}
	if err := c.call(ctx, "POST", "/api/orders_save", nil, body, &resp); err != nil {
		return "", fmt.Errorf("save order %q: %w", name, err)
	}
	return resp.Key, nil
}

// LoadNamedOrder fetches a saved order by key.
func (c *Client) LoadNamedOrder(ctx context.Context, key string) (*NamedOrder, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrNoKey
	}
	var no NamedOrder
	if err := c.call(ctx, "GET", "/api/orders_load", url.Values{"key": {key}}, nil, &no); err != nil {
		return nil, fmt.Errorf("load order %q: %w", key, err)
	}
	return &no, nil
}

// Presets lists saved presets.
func (c *Client) Presets(ctx context.Context) ([]Entry, error) {
	var resp struct {
		Presets []Entry `json:"presets"`
	}
	if err := c.call(ctx, "GET", "/api/presets_list", nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	return resp.Presets, nil
}

// SavePreset stores p under name and returns its key.
func (c *Client) SavePreset(ctx context.Context, name string, p Preset) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrNoName
	}
	p.Channels = nonNil(p.Channels)
	p.Order = nonNil(p.Order)
	var resp struct {
		Key string `json:"key"`
	}
	if err := c.call(ctx, "POST", "/api/presets_save", nil, map[string]any{"name": name, "preset": p}, &resp); err != nil {
		return "", fmt.Errorf("save preset %q: %w", name, err)
	}
	return resp.Key, nil
}

// LoadPreset fetches a preset by key. Missing step fields fall back to the
// defaults.
func (c *Client) LoadPreset(ctx context.Context, key string) (string, *Preset, error) {
	if strings.TrimSpace(key) == "" {
		return "", nil, ErrNoKey
	}
	resp := struct {
		Name   string `json:"name"`
		Preset Preset `json:"preset"`
	}{Preset: Preset{Settings: autostep.DefaultSettings(), ShowLegend: true}}
	if err := c.call(ctx, "GET", "/api/presets_load", url.Values{"key": {key}}, nil, &resp); err != nil {
		return "", nil, fmt.Errorf("load preset %q: %w", key, err)
	}
	resp.Preset.Settings = resp.Preset.Settings.Sanitize()
	return resp.Name, &resp.Preset, nil
}

// DeletePreset removes a preset.
func (c *Client) DeletePreset(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrNoKey
	}
	if err := c.call(ctx, "POST", "/api/presets_delete", nil, map[string]string{"key": key}, nil); err != nil {
		return fmt.Errorf("delete preset %q: %w", key, err)
	}
	return nil
}

// Catalog is everything saved on the server.
type Catalog struct {
	Orders  []Entry
	Presets []Entry
}

// Catalog fetches both listings in parallel.
func (c *Client) Catalog(ctx context.Context) (*Catalog, error) {
	var cat Catalog
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cat.Orders, err = c.Orders(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		cat.Presets, err = c.Presets(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &cat, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
