package batch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/freightdocs/bol-extractor/constants"
)

// WatchConfig configures directory watching for continuous batch runs.
type WatchConfig struct {
	Roots       []string      // directories to watch (recursive)
	InitialScan bool          // if true, walk roots and emit existing files
	Debounce    time.Duration // coalesce rapid update/rename bursts
	Buffer      int           // event channel capacity; <=0 means 256
	Logger      *slog.Logger
}

// StartWatcher emits the path of every PDF that appears or changes under
// the roots. The watcher runs until ctx is done; both channels close when
// it stops.
func StartWatcher(ctx context.Context, cfg WatchConfig) (<-chan string, <-chan error, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Roots) == 0 {
		return nil, nil, errors.New("batch: no watch roots provided")
	}

	buffer := cfg.Buffer
	if buffer <= 0 {
		buffer = 256
	}
	evCh := make(chan string, buffer)
	errCh := make(chan error, 1)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}

	// Add roots recursively. Files already present are collected and emitted
	// from the goroutine below, where sends may block without losing paths.
	var initial []string
	addRoot := func(root string) error {
		return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() {
				return w.Add(path)
			}
			if cfg.InitialScan && constants.IsAllowedExt(filepath.Ext(path)) {
				initial = append(initial, path)
			}
			return nil
		})
	}
	for _, root := range cfg.Roots {
		if err := addRoot(root); err != nil {
			logger.Error("failed to add watch root", "root", root, "error", err)
			_ = w.Close()
			return nil, nil, err
		}
	}

	go func() {
		defer close(evCh)
		defer close(errCh)
		defer w.Close()

		for _, p := range initial {
			select {
			case <-ctx.Done():
				return
			case evCh <- p:
			}
		}

		// pending stays confined to this goroutine. The debounce timer only
		// signals flush, so every send on evCh happens here and can block
		// until the consumer catches up without losing paths.
		var timer *time.Timer
		pending := map[string]struct{}{}
		flush := make(chan struct{}, 1)

		sendPending := func() bool {
			for p := range pending {
				select {
				case <-ctx.Done():
					return false
				case evCh <- p:
				}
				delete(pending, p)
			}
			return true
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-flush:
				if !sendPending() {
					return
				}
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if e.Op&fsnotify.Create != 0 {
					// New directories start being watched; for files the
					// Add fails and that is fine.
					if err := w.Add(e.Name); err != nil {
						logger.Debug("watch add skipped", "path", e.Name, "error", err)
					}
				}

				if constants.IsAllowedExt(filepath.Ext(e.Name)) && e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
					pending[e.Name] = struct{}{}
					if cfg.Debounce > 0 {
						if timer != nil {
							timer.Stop()
						}
						timer = time.AfterFunc(cfg.Debounce, func() {
							select {
							case flush <- struct{}{}:
							default:
							}
						})
					} else if !sendPending() {
						return
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("watcher error", "error", err)
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	return evCh, errCh, nil
}
