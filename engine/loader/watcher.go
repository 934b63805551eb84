package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/mochi2d/mochi/engine/core"
)

// Watcher re-runs files through their type's load pipeline when the backing
// asset changes on disk. Development aid; only files served from the local
// root can be watched.
type Watcher struct {
	loader   *Loader
	fsnotify *fsnotify.Watcher

	mutex    sync.Mutex
	watched  map[string]*File
	isClosed bool

	done chan struct{}
}

func NewWatcher(l *Loader) (*Watcher, error) {
	if l.cfg.LocalRoot == "" {
		return nil, errors.New("watcher requires a configured local_root")
	}
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		loader:   l,
		fsnotify: fsWatch,
		watched:  make(map[string]*File),
		done:     make(chan struct{}),
	}
	if err := w.addRecursive(l.cfg.LocalRoot); err != nil {
		fsWatch.Close()
		return nil, err
	}
	go w.start()
	return w, nil
}

// Watch registers a completed file for hot reload. The file must have been
// fetched through the local transport.
func (w *Watcher) Watch(f *File) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.isClosed {
		return errors.New("watcher already closed")
	}
	// Mirror the local transport's path rules: file:// URLs carry their own
	// path, anything else absolute is remote and cannot be watched.
	p := f.ResolvedURL
	switch {
	case strings.HasPrefix(p, "file://"):
		p = strings.TrimPrefix(p, "file://")
	case IsAbsoluteURL(p):
		return fmt.Errorf("cannot watch '%s': %s is not served from the local root", f.Key, p)
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(w.loader.cfg.LocalRoot, p)
	}
	path, err := filepath.Abs(p)
	if err != nil {
		return err
	}
	w.watched[path] = f
	return nil
}

// addRecursive walks the root and watches every directory under it.
func (w *Watcher) addRecursive(root string) error {
	return filepath.Walk(root, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return w.fsnotify.Add(walkPath)
		}
		return nil
	})
}

func (w *Watcher) start() {
	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					w.fsnotify.Add(e.Name)
				}
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.handleChange(e.Name)
			}

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("watcher: %v", err)

		case <-w.done:
			w.fsnotify.Close()
			return
		}
	}
}

func (w *Watcher) handleChange(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	w.mutex.Lock()
	f, watched := w.watched[abs]
	w.mutex.Unlock()
	if !watched {
		return
	}

	core.LogInfo("asset '%s' changed on disk, reloading", f.Key)
	core.EventFire(core.EVENT_CODE_ASSET_CHANGED, w, core.EventContext{
		FileKey:  f.Key,
		FileType: f.Type(),
	})
	w.reload(f)
}

// reload evicts the stale cache entry and runs the file through a fresh
// single-file batch.
func (w *Watcher) reload(f *File) {
	l := w.loader

	target := f.fileType.TargetCache()
	if target == "" {
		if l.textures != nil {
			l.textures.Remove(f.Key)
		}
	} else if l.caches != nil {
		l.caches.Custom(target).Remove(f.Key)
	}

	if err := l.Reset(); err != nil {
		core.LogWarn("reload of '%s' skipped: %v", f.Key, err)
		return
	}
	fresh := NewFile(f.fileType, f.Key, f.URL, f.Settings, f.defaultExtension)
	if err := l.Enqueue(fresh); err != nil {
		core.LogWarn("reload of '%s' skipped: %v", f.Key, err)
		return
	}
	go func() {
		if err := l.Start(context.Background()); err != nil {
			core.LogError("reload of '%s': %v", f.Key, err)
		}
	}()
}

func (w *Watcher) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.isClosed {
		return nil
	}
	w.isClosed = true
	close(w.done)
	return nil
}
