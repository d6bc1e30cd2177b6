package settings

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounce coalesces the burst of events editors produce on save.
const defaultDebounce = 100 * time.Millisecond

// Watcher reloads a FileStore when its file changes on disk and reports
// records that differ from the last one it saw.
type Watcher struct {
	store    *FileStore
	onChange func(Settings)
	debounce time.Duration

	fsw *fsnotify.Watcher

	mu    sync.Mutex
	last  Settings
	timer *time.Timer

	closeOnce sync.Once
	closeCh   chan struct{}
	wg        sync.WaitGroup
}

// NewWatcher starts watching store's file. initial is the record the caller
// already knows about; onChange is called from the watcher goroutine.
func NewWatcher(store *FileStore, initial Settings, onChange func(Settings)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create settings watcher: %w", err)
	}

	// Watch the directory: atomic saves replace the file, which drops a
	// watch on the file itself.
	dir := filepath.Dir(store.Path())
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	w := &Watcher{
		store:    store,
		onChange: onChange,
		debounce: defaultDebounce,
		fsw:      fsw,
		last:     initial.Clone(),
		closeCh:  make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Close stops the watcher and waits for its goroutine.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.closeCh)
		err = w.fsw.Close()
		w.wg.Wait()

		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
	})
	return err
}

// Remember records s as already known so that a later reload of the same
// record is not reported.
func (w *Watcher) Remember(s Settings) {
	w.mu.Lock()
	w.last = s.Clone()
	w.mu.Unlock()
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	target := filepath.Clean(w.store.Path())

	for {
		select {
		case <-w.closeCh:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove) {
				w.schedule()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("[SETTINGS] watcher error", "error", err)
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	select {
	case <-w.closeCh:
		return
	default:
	}

	s, err := Load(context.Background(), w.store)
	if err != nil {
		slog.Warn("[SETTINGS] reload after file change failed", "error", err)
		return
	}

	w.mu.Lock()
	if s.Equal(w.last) {
		w.mu.Unlock()
		return
	}
	w.last = s.Clone()
	w.mu.Unlock()

	slog.Info("[SETTINGS] settings file changed on disk", "path", w.store.Path())
	if w.onChange != nil {
		w.onChange(s)
	}
}
