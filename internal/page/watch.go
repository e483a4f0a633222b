package page

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/openairframe/stlview/internal/logger"
)

// Watcher reports changed documentation pages so the shell can re-run
// container discovery, the desktop analogue of a client-side navigation
// event firing after content is swapped in place.
type Watcher struct {
	fsw    *fsnotify.Watcher
	events chan string
	done   chan struct{}
}

// NewWatcher watches root and its subdirectories for page changes.
func NewWatcher(root string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
	if err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		fsw:    fsw,
		events: make(chan string, 16),
		done:   make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Events delivers paths of pages that changed on disk.
func (w *Watcher) Events() <-chan string {
	return w.events
}

func (w *Watcher) run() {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			ext := strings.ToLower(filepath.Ext(ev.Name))
			if ext != ".html" && ext != ".htm" {
				// A created directory may hold future pages.
				if ev.Op&fsnotify.Create != 0 {
					if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
						_ = w.fsw.Add(ev.Name)
					}
				}
				continue
			}
			// Cleaned so consumers can compare against List output
			path := filepath.Clean(ev.Name)
			logger.Debug("page changed", zap.String("path", path))
			select {
			case w.events <- path:
			case <-w.done:
				return
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher error", zap.Error(err))
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher and releases its resources.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
