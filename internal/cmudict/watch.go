package cmudict

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// ErrNotLoaded is returned by Watcher.Lookup when no dictionary is loaded.
var ErrNotLoaded = errors.New("dictionary not loaded")

// Watcher serves lookups from a dictionary file and reloads it whenever the
// file is written or replaced. A failed or empty reload keeps the previous
// contents.
type Watcher struct {
	path    string
	log     *slog.Logger
	fw      *fsnotify.Watcher
	cur     atomic.Pointer[Dict]
	reloads atomic.Uint64

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// Watch loads path and starts watching its directory for changes.
func Watch(path string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve dictionary path: %w", err)
	}

	d, err := Load(abs)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create dictionary watcher: %w", err)
	}
	// Watch the directory: a watch on the file is lost when it is replaced
	// by rename.
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch dictionary directory: %w", err)
	}

	w := &Watcher{
		path: abs,
		log:  logger.With(slog.String("component", "cmudict")),
		fw:   fw,
		done: make(chan struct{}),
	}
	w.cur.Store(d)

	w.wg.Add(1)
	go w.loop()

	w.log.Info("dictionary loaded",
		slog.String("path", abs),
		slog.Int("words", d.Len()),
	)

	return w, nil
}

// Lookup delegates to the currently loaded dictionary.
func (w *Watcher) Lookup(word string) ([][]string, error) {
	d := w.cur.Load()
	if d == nil {
		return nil, ErrNotLoaded
	}
	return d.Lookup(word)
}

// Dict returns the currently loaded dictionary.
func (w *Watcher) Dict() *Dict { return w.cur.Load() }

// Reloads returns how many successful reloads have happened since Watch.
func (w *Watcher) Reloads() uint64 { return w.reloads.Load() }

// Close stops watching. Lookups keep working against the last contents.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fw.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.reload()
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Error("dictionary watcher error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) reload() {
	d, err := Load(w.path)
	if err != nil {
		w.log.Error("dictionary reload failed",
			slog.String("path", w.path),
			slog.String("error", err.Error()),
		)
		return
	}
	if d.Len() == 0 {
		w.log.Warn("dictionary reload skipped: file is empty", slog.String("path", w.path))
		return
	}
	w.cur.Store(d)
	w.reloads.Add(1)
	w.log.Info("dictionary reloaded",
		slog.String("path", w.path),
		slog.Int("words", d.Len()),
	)
}
