// Package coord runs lemure's background work: watching the loaded test
// folder for changes and reporting them to the UI program.
package coord

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/lemure/internal/logging"
)

// DefaultDebounce coalesces a burst of file events into one notification.
const DefaultDebounce = 500 * time.Millisecond

// FolderChanged is sent to the program after files in the watched folder
// changed and the debounce window has passed.
type FolderChanged struct {
	Folder string
	Paths  []string // changed files, sorted, without duplicates
}

// WatchFailed is sent when the watcher reports an error.
type WatchFailed struct {
	Folder string
	Err    error
}

// Sender receives messages for the UI. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// Coordinator owns the folder watcher. Uses context cancellation as the ONLY
// stop mechanism: cancelling the Start context ends every goroutine.
type Coordinator struct {
	sender   Sender
	debounce time.Duration
	log      *log.Logger

	mu     sync.Mutex
	ctx    context.Context
	g      *errgroup.Group
	folder string
	stop   context.CancelFunc
}

// New creates a Coordinator that reports to sender.
func New(sender Sender, debounce time.Duration) *Coordinator {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Coordinator{
		sender:   sender,
		debounce: debounce,
		log:      logging.WithPrefix("watch"),
		g:        &errgroup.Group{},
	}
}

// Start binds the coordinator to ctx. Watch fails before Start.
func (c *Coordinator) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ctx = ctx
}

// Folder returns the folder currently watched, or "".
func (c *Coordinator) Folder() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.folder
}

// Watch replaces the watched folder. Watching the same folder again is a
// no-op.
func (c *Coordinator) Watch(folder string) error {
	folder = filepath.Clean(folder)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ctx == nil {
		return errors.New("coordinator not started")
	}
	if folder == c.folder && c.stop != nil {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(folder); err != nil {
		w.Close()
		return fmt.Errorf("watch %s: %w", folder, err)
	}

	if c.stop != nil {
		c.stop()
	}
	ctx, cancel := context.WithCancel(c.ctx)
	c.folder, c.stop = folder, cancel

	c.g.Go(func() error {
		defer w.Close()
		c.loop(ctx, folder, w)
		return nil
	})
	c.log.Debug("watching folder", "folder", folder)
	return nil
}

// Unwatch stops watching the current folder.
func (c *Coordinator) Unwatch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
	c.folder = ""
}

// Wait blocks until every watch goroutine has exited. Call after cancelling
// the Start context.
func (c *Coordinator) Wait() error {
	return c.g.Wait()
}

func (c *Coordinator) loop(ctx context.Context, folder string, w *fsnotify.Watcher) {
	timer := time.NewTimer(0)
	<-timer.C // drain initial timer
	defer timer.Stop()

	pending := make(map[string]bool)
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if !relevant(ev) {
				continue
			}
			pending[ev.Name] = true
			timer.Reset(c.debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			c.log.Warn("folder watch error", "folder", folder, "err", err)
			c.send(ctx, WatchFailed{Folder: folder, Err: err})

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			clear(pending)
			c.send(ctx, FolderChanged{Folder: folder, Paths: paths})
		}
	}
}

func (c *Coordinator) send(ctx context.Context, msg tea.Msg) {
	if c.sender == nil || ctx.Err() != nil {
		return
	}
	c.sender.Send(msg)
}

// relevant drops chmod-only events and editor or Excel scratch files.
func relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	base := filepath.Base(ev.Name)
	switch {
	case strings.HasPrefix(base, "."), strings.HasPrefix(base, "~$"),
		strings.HasSuffix(base, "~"), strings.HasSuffix(base, ".tmp"),
		strings.HasSuffix(base, ".part"):
		return false
	}
	return true
}
