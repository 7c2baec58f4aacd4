package resolve

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce coalesces the burst of write events a single save
// produces into one reload, mirroring the debounce window the uispec
// indexer's watcher uses for its own editor-save bursts.
const reloadDebounce = 150 * time.Millisecond

// Watcher reloads a set of plugin files on write, for dev-mode runs
// where a module author expects edits to take effect
// without restarting the pool.
type Watcher struct {
	fsw *fsnotify.Watcher

	mu      sync.Mutex
	timers  map[string]*time.Timer
	onEvent func(path string)
}

// NewWatcher starts watching the directories containing each path in
// paths, invoking onChange(path) once (after debouncing) per written or
// created file in those directories. Events are not filtered down to the
// paths given: any other file in a watched directory triggers onChange
// too.
func NewWatcher(paths []string, onChange func(path string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	watched := make(map[string]bool)
	for _, p := range paths {
		dir := parentDir(p)
		if watched[dir] {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, err
		}
		watched[dir] = true
	}

	w := &Watcher{
		fsw:     fsw,
		timers:  make(map[string]*time.Timer),
		onEvent: onChange,
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.debounce(event.Name)
			}
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) debounce(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(reloadDebounce, func() {
		w.onEvent(path)
	})
}

// Close stops the watcher and any pending debounce timers.
func (w *Watcher) Close() error {
	w.mu.Lock()
	for _, t := range w.timers {
		t.Stop()
	}
	w.mu.Unlock()
	return w.fsw.Close()
}

func parentDir(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return "."
}
