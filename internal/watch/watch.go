// Package watch re-runs a handler when JavaScript sources change.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a batch of changes is handed over.
const DefaultDebounce = 150 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	Debounce   time.Duration
	Extensions []string // ".js"
	Exclude    []string // имена каталогов, как в config.Files
}

// Handler receives the sorted, de-duplicated paths changed in one batch.
// It runs on the watcher goroutine; the next batch waits for it.
type Handler func(ctx context.Context, paths []string)

// Watcher watches files and directory trees.
type Watcher struct {
	fsw      *fsnotify.Watcher
	opts     Options
	handler  Handler
	explicit map[string]bool // пути файлов из аргументов
	onError  func(error)
}

// New starts watching roots. Directories are watched recursively; file
// roots are watched through their parent directory.
func New(roots []string, opts Options, handler Handler) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsw:      fsw,
		opts:     opts,
		handler:  handler,
		explicit: make(map[string]bool),
	}
	for _, root := range roots {
		if err := w.addRoot(root); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// OnError sets a callback for watcher errors; they are dropped otherwise.
func (w *Watcher) OnError(fn func(error)) {
	w.onError = fn
}

func (w *Watcher) addRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		w.explicit[filepath.Clean(root)] = true
		return w.fsw.Add(filepath.Dir(root))
	}
	return w.addTree(root)
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.excluded(d.Name()) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) excluded(name string) bool {
	return slices.Contains(w.opts.Exclude, name)
}

// relevant reports whether a change of path should trigger the handler.
func (w *Watcher) relevant(path string) bool {
	path = filepath.Clean(path)
	if w.explicit[path] {
		return true
	}
	for _, part := range strings.Split(filepath.ToSlash(filepath.Dir(path)), "/") {
		if w.excluded(part) {
			return false
		}
	}
	ext := filepath.Ext(path)
	for _, e := range w.opts.Extensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

// Run processes events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	pending := make(map[string]bool)
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		if len(pending) == 0 {
			return
		}
		paths := make([]string, 0, len(pending))
		for p := range pending {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		clear(pending)
		if w.handler != nil {
			w.handler(ctx, paths)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			// новый каталог тоже наблюдаем
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() && !w.excluded(info.Name()) {
					_ = w.addTree(ev.Name)
					continue
				}
			}
			if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
				continue
			}
			if !w.relevant(ev.Name) {
				continue
			}
			pending[filepath.Clean(ev.Name)] = true
			if timer == nil {
				timer = time.NewTimer(w.opts.Debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.opts.Debounce)
			}

		case <-timerC:
			timer, timerC = nil, nil
			flush()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			if w.onError != nil {
				w.onError(err)
			}
		}
	}
}
