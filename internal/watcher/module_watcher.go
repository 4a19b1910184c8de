// Package watcher reports Jac module files appearing, changing and disappearing under
// workspace roots so open documents can be reconciled again.
package watcher

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
)

// DefaultDebounce is the quiet period before a batch of changes is delivered.
const DefaultDebounce = 500 * time.Millisecond

// Options configures a module watcher.
type Options struct {
	// Extensions to monitor, e.g. []string{".jac"}.
	Extensions []string
	// Debounce is the quiet period before firing the callback. Zero means DefaultDebounce.
	Debounce time.Duration
	// SkipDirs are glob patterns matched against directory base names that are never watched.
	SkipDirs []string
	// Verbose logs each delivered batch.
	Verbose bool
}

// moduleWatcher implements ModuleWatcher.
type moduleWatcher struct {
	watcher    *fsnotify.Watcher
	roots      []string
	extensions map[string]bool
	skip       []glob.Glob
	debounce   time.Duration
	verbose    bool

	callback func(changes []Change)
	ctx      context.Context
	cancel   context.CancelFunc

	paused   bool
	pausedMu sync.RWMutex

	pending   map[string]ChangeKind
	pendingMu sync.Mutex

	// dirs holds every directory currently watched. Only the watch goroutine touches it
	// after New returns.
	dirs map[string]bool

	timer   *time.Timer
	timerMu sync.Mutex

	stopOnce sync.Once
	doneCh   chan struct{}
}

// New creates a watcher over the given workspace roots. Every root must exist.
func New(roots []string, opts Options) (ModuleWatcher, error) {
	skip := make([]glob.Glob, 0, len(opts.SkipDirs))
	for _, pattern := range opts.SkipDirs {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid skip pattern %q: %w", pattern, err)
		}
		skip = append(skip, g)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	extensions := make(map[string]bool, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		extensions[ext] = true
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	mw := &moduleWatcher{
		watcher:    fsw,
		roots:      roots,
		extensions: extensions,
		skip:       skip,
		debounce:   debounce,
		verbose:    opts.Verbose,
		pending:    make(map[string]ChangeKind),
		dirs:       make(map[string]bool),
		doneCh:     make(chan struct{}),
	}

	for _, root := range roots {
		if err := mw.addTree(root, false); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", root, err)
		}
	}
	return mw, nil
}

// Start begins watching for module changes.
func (mw *moduleWatcher) Start(ctx context.Context, callback func(changes []Change)) error {
	if callback == nil {
		return nil
	}
	mw.callback = callback
	mw.ctx, mw.cancel = context.WithCancel(ctx)

	go mw.watch()
	return nil
}

// Stop stops the watcher. Safe to call more than once.
func (mw *moduleWatcher) Stop() error {
	var err error
	mw.stopOnce.Do(func() {
		if mw.cancel != nil {
			mw.cancel()
			<-mw.doneCh
		} else {
			close(mw.doneCh)
		}
		err = mw.watcher.Close()
	})
	return err
}

// Pause stops firing callbacks but continues accumulating events.
func (mw *moduleWatcher) Pause() {
	mw.pausedMu.Lock()
	defer mw.pausedMu.Unlock()
	mw.paused = true
}

// Resume resumes firing callbacks and flushes anything accumulated while paused.
func (mw *moduleWatcher) Resume() {
	mw.pausedMu.Lock()
	wasPaused := mw.paused
	mw.paused = false
	mw.pausedMu.Unlock()

	if wasPaused {
		mw.flush()
	}
}

func (mw *moduleWatcher) watch() {
	defer close(mw.doneCh)

	fireCh := make(chan struct{}, 1)

	for {
		select {
		case <-mw.ctx.Done():
			mw.stopTimer()
			return

		case event, ok := <-mw.watcher.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					// Modules inside a directory that appears at once (a package moved in,
					// an archive unpacked) produce no events of their own.
					if mw.skipped(event.Name) {
						continue
					}
					if err := mw.addTree(event.Name, true); err != nil {
						log.Printf("[watcher] failed to watch new directory %s: %v", event.Name, err)
					}
					mw.resetTimer(fireCh)
					continue
				}
			}

			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 && mw.dirs[event.Name] {
				// A removed or renamed package directory takes its index and __init__
				// modules with it.
				mw.removeTree(event.Name)
				mw.record(event.Name, Removed)
				mw.resetTimer(fireCh)
				continue
			}

			kind, ok := mw.classify(event)
			if !ok {
				continue
			}
			mw.record(event.Name, kind)
			mw.resetTimer(fireCh)

		case <-fireCh:
			mw.pausedMu.RLock()
			paused := mw.paused
			mw.pausedMu.RUnlock()
			if !paused {
				mw.flush()
			}

		case err, ok := <-mw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[watcher] fsnotify error: %v", err)
		}
	}
}

func (mw *moduleWatcher) record(path string, kind ChangeKind) {
	mw.pendingMu.Lock()
	mw.pending[path] = kind
	mw.pendingMu.Unlock()
}

// flush delivers the accumulated batch, sorted by path.
func (mw *moduleWatcher) flush() {
	mw.pendingMu.Lock()
	if len(mw.pending) == 0 {
		mw.pendingMu.Unlock()
		return
	}
	changes := make([]Change, 0, len(mw.pending))
	for path, kind := range mw.pending {
		changes = append(changes, Change{Path: path, Kind: kind})
	}
	mw.pending = make(map[string]ChangeKind)
	mw.pendingMu.Unlock()

	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })

	if mw.verbose {
		log.Printf("[watcher] %d module changes", len(changes))
	}
	if mw.callback != nil {
		mw.callback(changes)
	}
}

func (mw *moduleWatcher) resetTimer(fireCh chan struct{}) {
	mw.timerMu.Lock()
	defer mw.timerMu.Unlock()

	if mw.timer != nil {
		mw.timer.Stop()
	}
	mw.timer = time.AfterFunc(mw.debounce, func() {
		select {
		case fireCh <- struct{}{}:
		default:
		}
	})
}

func (mw *moduleWatcher) stopTimer() {
	mw.timerMu.Lock()
	defer mw.timerMu.Unlock()

	if mw.timer != nil {
		mw.timer.Stop()
		mw.timer = nil
	}
}

// classify maps an fsnotify event on a module file to a change kind.
// Chmod-only events and files with other extensions are dropped.
func (mw *moduleWatcher) classify(event fsnotify.Event) (ChangeKind, bool) {
	if !mw.extensions[filepath.Ext(event.Name)] {
		return 0, false
	}
	switch {
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		return Removed, true
	case event.Op&fsnotify.Create != 0:
		return Created, true
	case event.Op&fsnotify.Write != 0:
		return Modified, true
	}
	return 0, false
}

func (mw *moduleWatcher) skipped(dir string) bool {
	base := filepath.Base(dir)
	for _, g := range mw.skip {
		if g.Match(base) {
			return true
		}
	}
	return false
}

// addTree adds root and every non-skipped directory below it to the watcher. With
// record set, module files already inside the tree are reported as Created.
func (mw *moduleWatcher) addTree(root string, record bool) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			log.Printf("[watcher] error accessing %s: %v", path, err)
			return nil
		}
		if !info.IsDir() {
			if record && info.Mode().IsRegular() && mw.extensions[filepath.Ext(path)] {
				mw.record(path, Created)
			}
			return nil
		}
		if path != root && mw.skipped(path) {
			return filepath.SkipDir
		}
		if err := mw.watcher.Add(path); err != nil {
			log.Printf("[watcher] failed to watch directory %s: %v", path, err)
			return nil
		}
		mw.dirs[path] = true
		return nil
	})
}

// removeTree forgets dir and every watched directory below it. fsnotify drops watches on
// deleted directories itself; a renamed directory keeps its watch and is removed here.
func (mw *moduleWatcher) removeTree(dir string) {
	prefix := dir + string(filepath.Separator)
	for path := range mw.dirs {
		if path != dir && !strings.HasPrefix(path, prefix) {
			continue
		}
		delete(mw.dirs, path)
		_ = mw.watcher.Remove(path)
	}
}
