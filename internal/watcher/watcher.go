package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ziadkadry99/vaultsearch/internal/walker"
)

// Options configures a Watcher.
type Options struct {
	// Debounce is the coalescing window. Default: DefaultDebounce.
	Debounce time.Duration
	// BufferSize is the capacity of the Events channel. Default: 256.
	BufferSize int
	Logger     *slog.Logger
}

// Watcher watches a vault recursively and emits debounced events for
// eligible notes only.
type Watcher struct {
	vault     *walker.Vault
	fsw       *fsnotify.Watcher
	debouncer *Debouncer
	events    chan Event
	logger    *slog.Logger

	mu   sync.Mutex
	dirs map[string]struct{}
}

// New creates a Watcher for vault. Call Run to start delivering events.
func New(vault *walker.Vault, opts Options) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watcher: create fsnotify watcher: %w", err)
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = 256
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Watcher{
		vault:     vault,
		fsw:       fsw,
		debouncer: NewDebouncer(opts.Debounce),
		events:    make(chan Event, opts.BufferSize),
		logger:    opts.Logger,
		dirs:      make(map[string]struct{}),
	}, nil
}

// Events returns the channel of debounced events. It is closed when Run returns.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Run watches until ctx is done or the underlying watcher fails. It always
// releases the fsnotify watcher and closes Events before returning.
func (w *Watcher) Run(ctx context.Context) error {
	forwardDone := make(chan struct{})
	go func() {
		defer close(forwardDone)
		w.forward(ctx)
	}()
	defer func() {
		_ = w.fsw.Close()
		w.debouncer.Stop()
		<-forwardDone
		close(w.events)
	}()

	if err := w.addRecursive(w.vault.Root(), false); err != nil {
		return fmt.Errorf("watcher: watch %s: %w", w.vault.Root(), err)
	}
	w.logger.Info("watching vault", "root", w.vault.Root(), "dirs", w.dirCount())

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "err", err)
		}
	}
}

func (w *Watcher) forward(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case batch, ok := <-w.debouncer.Output():
			if !ok {
				return
			}
			for _, ev := range batch {
				select {
				case w.events <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	now := time.Now()

	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		if w.forgetDir(ev.Name) {
			w.debouncer.Add(Event{Op: OpDeleted, Path: ev.Name, Dir: true, Time: now})
			return
		}
		if _, ok := w.vault.Eligible(ev.Name); ok {
			w.debouncer.Add(Event{Op: OpDeleted, Path: ev.Name, Time: now})
		}

	case ev.Has(fsnotify.Create):
		info, err := os.Lstat(ev.Name)
		if err != nil {
			return
		}
		if info.IsDir() {
			// A directory moved or copied in carries notes that produce no
			// events of their own.
			if err := w.addRecursive(ev.Name, true); err != nil {
				w.logger.Warn("watch new directory", "path", ev.Name, "err", err)
			}
			return
		}
		if _, ok := w.vault.Eligible(ev.Name); ok {
			w.debouncer.Add(Event{Op: OpCreated, Path: ev.Name, Time: now})
		}

	case ev.Has(fsnotify.Write):
		if _, ok := w.vault.Eligible(ev.Name); ok {
			w.debouncer.Add(Event{Op: OpModified, Path: ev.Name, Time: now})
		}
	}
}

// addRecursive watches root and every non-excluded directory below it. With
// announce set, eligible files found along the way are emitted as created.
func (w *Watcher) addRecursive(root string, announce bool) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			if announce {
				if _, ok := w.vault.Eligible(path); ok {
					w.debouncer.Add(Event{Op: OpCreated, Path: path, Time: time.Now()})
				}
			}
			return nil
		}
		if path != w.vault.Root() && walker.IsExcludedDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			if path == root {
				return err
			}
			w.logger.Warn("watch directory", "path", path, "err", err)
			return nil
		}
		w.mu.Lock()
		w.dirs[path] = struct{}{}
		w.mu.Unlock()
		return nil
	})
}

// forgetDir drops path and its subdirectories from the watched set and
// reports whether path was a watched directory.
func (w *Watcher) forgetDir(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.dirs[path]; !ok {
		return false
	}
	prefix := path + string(filepath.Separator)
	for d := range w.dirs {
		if d == path || strings.HasPrefix(d, prefix) {
			delete(w.dirs, d)
			// Already gone for removes; still watched under the new name for renames.
			_ = w.fsw.Remove(d)
		}
	}
	return true
}

func (w *Watcher) dirCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.dirs)
}
