package vault

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"booknav/common"
)

// Watcher reports changes of vault documents. Bursts of file system events
// are coalesced into a single notification after debounce interval.
type Watcher struct {
	src      Source
	filter   Filter
	debounce time.Duration
	log      *zap.Logger
	w        *fsnotify.Watcher
}

// NewWatcher starts watching vault location. For directory vaults all
// non-ignored folders are watched recursively, for archives the folder
// containing archive is watched.
func NewWatcher(src Source, filter Filter, debounce time.Duration, log *zap.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("unable to create file system watcher: %w", err)
	}
	res := &Watcher{
		src:      src,
		filter:   filter,
		debounce: debounce,
		log:      log,
		w:        w,
	}

	switch src.Kind() {
	case common.SourceKindDirectory:
		err = res.addTree(src.Location())
	default:
		err = w.Add(filepath.Dir(src.Location()))
	}
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("unable to watch vault: %w", err), w.Close())
	}
	return res, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.w.Close()
}

// Run delivers notifications until context is cancelled or watcher is
// closed. notify is always called from the Run goroutine.
func (w *Watcher) Run(ctx context.Context, notify func()) error {
	// armed by the first relevant event
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			w.log.Debug("Vault changed")
			notify()
		case err, ok := <-w.w.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("File system watcher error", zap.Error(err))
		case ev, ok := <-w.w.Events:
			if !ok {
				return nil
			}
			if w.relevant(ev) {
				timer.Reset(w.debounce)
			}
		}
	}
}

// relevant checks event against filter, registering new folders on the way.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if w.src.Kind() != common.SourceKindDirectory {
		return filepath.Clean(ev.Name) == filepath.Clean(w.src.Location())
	}

	rel, err := filepath.Rel(w.src.Location(), ev.Name)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if w.filter.Skip(rel) {
		return false
	}
	if ev.Op.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				w.log.Warn("Unable to watch new folder", zap.String("path", ev.Name), zap.Error(err))
			}
			// folder could be moved in with documents already inside
			return true
		}
	}
	if ev.Op.Has(fsnotify.Chmod) && !ev.Op.Has(fsnotify.Write) {
		return false
	}
	// removed or renamed folders cannot be checked for extension anymore
	if ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename) {
		return true
	}
	return w.filter.Match(rel)
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if rel, err := filepath.Rel(w.src.Location(), p); err == nil && rel != "." && w.filter.Skip(filepath.ToSlash(rel)) {
			return filepath.SkipDir
		}
		return w.w.Add(p)
	})
}
