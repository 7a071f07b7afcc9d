package game

import (
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileWatcher polls file modification times and reports changed paths on
// Changes. A file that appears after start counts as a change.
type FileWatcher struct {
	Paths     []string
	Interval  time.Duration
	changes   chan string
	stopCh    chan struct{}
	stopOnce  sync.Once
	lastMTime map[string]time.Time
}

// NewFileWatcher creates a watcher for given paths and interval.
func NewFileWatcher(paths []string, interval time.Duration) *FileWatcher {
	if interval <= 0 {
		interval = time.Second
	}
	return &FileWatcher{
		Paths:     paths,
		Interval:  interval,
		changes:   make(chan string, len(paths)),
		stopCh:    make(chan struct{}),
		lastMTime: make(map[string]time.Time),
	}
}

// VariantPaths lists the on-disk layers of game under dir.
func VariantPaths(dir, game, season string) []string {
	var p Paths
	out := []string{
		filepath.Join(dir, filepath.FromSlash(p.DefaultPath())),
		filepath.Join(dir, filepath.FromSlash(p.GamePath(game))),
	}
	if season != "" {
		out = append(out, filepath.Join(dir, filepath.FromSlash(p.SeasonPath(game, season))))
	}
	return out
}

// Changes delivers paths whose mtime moved forward. Slow readers drop events
// rather than stall polling; the next change is reported again.
func (w *FileWatcher) Changes() <-chan string { return w.changes }

// Start begins polling in a goroutine.
func (w *FileWatcher) Start() {
	// prime cache before returning so edits right after Start are seen
	w.scanAll(true)
	ticker := time.NewTicker(w.Interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.scanAll(false)
			case <-w.stopCh:
				return
			}
		}
	}()
}

// Stop terminates the watcher. Safe to call more than once.
func (w *FileWatcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

// scanAll checks mtimes and reports files that changed since last scan.
func (w *FileWatcher) scanAll(prime bool) {
	for _, p := range w.Paths {
		fi, err := os.Stat(p)
		if err != nil {
			// missing file: keep going, report it if it shows up later
			continue
		}
		mt := fi.ModTime()
		last, ok := w.lastMTime[p]
		w.lastMTime[p] = mt
		if prime {
			continue
		}
		if !ok || mt.After(last) {
			select {
			case w.changes <- p:
			default:
			}
		}
	}
}
