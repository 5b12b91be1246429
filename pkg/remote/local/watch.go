package local

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watch streams filesystem changes under the document tree into
// subscription redeliveries. Bursts coalesce: one redelivery per affected
// collection per window, so an import of a hundred documents does not
// trigger a hundred renders.
func (s *Store) watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				s.log.WithError(err).Warn("watcher close")
			}
		})
	}

	dirs, err := collectDirs(s.base)
	if err != nil {
		closeWatcher()
		return err
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			closeWatcher()
			return err
		}
	}

	go func() {
		defer closeWatcher()

		watched := make(map[string]struct{}, len(dirs))
		for _, dir := range dirs {
			watched[dir] = struct{}{}
		}

		throttle := newThrottle(100 * time.Millisecond)
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.log.WithError(err).Warn("watcher error")
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if evt.Op&fsnotify.Create == fsnotify.Create {
					if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
						dir := filepath.Clean(evt.Name)
						if _, found := watched[dir]; !found {
							if err := watcher.Add(dir); err != nil {
								s.log.WithField("dir", dir).WithError(err).Warn("watch add")
							} else {
								watched[dir] = struct{}{}
							}
						}
						continue
					}
				}
				if coll := s.collectionForFile(evt.Name); coll != "" {
					throttle.Enqueue(coll, s.notify)
				}
			}
		}
	}()

	return nil
}

func collectDirs(base string) ([]string, error) {
	dirs := []string{base}
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() && path != base {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs, err
}

// collectionForFile maps a changed file back to the collection path whose
// subscribers should refresh.
func (s *Store) collectionForFile(path string) string {
	rel, err := filepath.Rel(s.base, path)
	if err != nil || rel == "." {
		return ""
	}
	segs := strings.Split(rel, string(os.PathSeparator))
	last := segs[len(segs)-1]
	if !strings.HasSuffix(last, ".json") {
		return ""
	}
	// Drop the file name; what remains is the collection directory.
	return strings.Join(segs[:len(segs)-1], "/")
}

// throttle coalesces change notifications per collection.
type throttle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]struct{}
	delay   time.Duration
}

func newThrottle(delay time.Duration) *throttle {
	return &throttle{delay: delay, pending: make(map[string]struct{})}
}

func (t *throttle) Enqueue(collection string, fire func(string)) {
	t.mu.Lock()
	t.pending[collection] = struct{}{}
	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.flush(fire)
		})
	}
	t.mu.Unlock()
}

func (t *throttle) flush(fire func(string)) {
	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[string]struct{})
	t.timer = nil
	t.mu.Unlock()

	for collection := range pending {
		fire(collection)
	}
}

func (t *throttle) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}
