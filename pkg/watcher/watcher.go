// Package watcher reloads the rule catalog when its YAML document changes
// on disk. Reloads are atomic: a document that fails to parse leaves the
// previously loaded rules in place.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/labops/go-sdk/pkg/dq"
	"github.com/labops/go-sdk/pkg/types"
)

// debounceWindow coalesces rapid write events into one reload. Editors
// commonly emit several writes per save.
const debounceWindow = 100 * time.Millisecond

// Options configures a rules watcher
type Options struct {
	// Path is the rules YAML file to watch
	Path string
	// Catalog receives reloaded rules
	Catalog *dq.Catalog
	// Logger receives reload logs
	Logger types.Logger
	// OnReload is called after each successful reload with the new rules
	OnReload func(rules []dq.Rule)
}

// Watcher reloads a rule catalog from a file on change
type Watcher struct {
	path     string
	catalog  *dq.Catalog
	logger   types.Logger
	onReload func(rules []dq.Rule)
	fsw      *fsnotify.Watcher
}

// New creates a watcher for the given rules file. The file's directory is
// watched rather than the file itself so that rename-based saves are seen.
func New(opts Options) (*Watcher, error) {
	if opts.Path == "" {
		return nil, errors.New("watcher path must not be empty")
	}
	if opts.Catalog == nil {
		return nil, errors.New("watcher catalog must not be nil")
	}
	logger := opts.Logger
	if logger == nil {
		logger = types.NewNoOpLogger()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create file watcher")
	}
	if err := fsw.Add(filepath.Dir(opts.Path)); err != nil {
		fsw.Close()
		return nil, errors.Wrapf(err, "watch directory of %s", opts.Path)
	}

	return &Watcher{
		path:     opts.Path,
		catalog:  opts.Catalog,
		logger:   logger,
		onReload: opts.OnReload,
		fsw:      fsw,
	}, nil
}

// Run watches until the context is canceled. It blocks; callers typically
// run it in a goroutine.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	debounce := time.NewTimer(0)
	if !debounce.Stop() {
		<-debounce.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			debounce.Reset(debounceWindow)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("rules watch error", types.LogField{Key: "error", Value: err.Error()})
		case <-debounce.C:
			w.reload()
		}
	}
}

// relevant reports whether an event concerns the watched rules file
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != filepath.Clean(w.path) {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// reload replaces the catalog's rules from the file. Load failures keep the
// current rules.
func (w *Watcher) reload() {
	rules, err := w.loadRules()
	if err != nil {
		w.logger.Error("rules reload failed, keeping previous rules",
			types.LogField{Key: "path", Value: w.path},
			types.LogField{Key: "error", Value: err.Error()})
		return
	}

	w.catalog.Replace(rules)
	w.logger.Info("rules reloaded",
		types.LogField{Key: "path", Value: w.path},
		types.LogField{Key: "rules", Value: len(rules)})
	if w.onReload != nil {
		w.onReload(rules)
	}
}

// loadRules reads and parses the rules file without touching the catalog
func (w *Watcher) loadRules() ([]dq.Rule, error) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return nil, errors.Wrapf(err, "read rules file %s", w.path)
	}
	return dq.ParseRules(data)
}
