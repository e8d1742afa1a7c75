package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/vista/engine/core"
)

type AssetInfo struct {
	Path       string
	Asset      Asset
	LastLoaded time.Time
}

// ReloadHandler is called on the render thread after an asset picked up new
// contents from disk.
type ReloadHandler func(path string, asset Asset)

// AssetManager loads assets by path relative to a root directory, caches them
// by path and, once Watch is called, reloads changed files in place.
type AssetManager struct {
	root    string
	assets  map[string]*AssetInfo
	loaders map[string]Loader
	tasks   *core.TaskQueue

	mutex sync.RWMutex

	onReload ReloadHandler

	fsnotify *fsnotify.Watcher
	done     chan struct{}
	wg       sync.WaitGroup
	isClosed bool
}

// NewAssetManager creates a manager rooted at root. Reloads are marshalled
// onto the render thread through tasks.
func NewAssetManager(root string, tasks *core.TaskQueue) (*AssetManager, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	if tasks == nil {
		err := fmt.Errorf("asset manager requires a task queue: %w", core.ErrInvalidConfig)
		core.LogError(err.Error())
		return nil, err
	}
	return &AssetManager{
		root:    abs,
		assets:  make(map[string]*AssetInfo),
		loaders: make(map[string]Loader),
		tasks:   tasks,
		done:    make(chan struct{}),
	}, nil
}

func (am *AssetManager) Root() string {
	return am.root
}

// RegisterLoader binds a loader to a file extension such as ".png".
func (am *AssetManager) RegisterLoader(ext string, loader Loader) {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.loaders[strings.ToLower(ext)] = loader
}

func (am *AssetManager) SetReloadHandler(h ReloadHandler) {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.onReload = h
}

// Acquire returns the asset for path, loading it on first use. Safe to call
// from any goroutine.
func (am *AssetManager) Acquire(path string) (Asset, error) {
	key := am.key(path)

	am.mutex.RLock()
	info, exists := am.assets[key]
	am.mutex.RUnlock()
	if exists {
		return info.Asset, nil
	}

	a, err := am.load(key)
	if err != nil {
		return nil, err
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	// Another goroutine may have won the race; keep the first instance.
	if info, exists := am.assets[key]; exists {
		return info.Asset, nil
	}
	am.assets[key] = &AssetInfo{Path: key, Asset: a, LastLoaded: time.Now()}
	core.LogDebug("loaded %s asset '%s'", a.Kind(), key)
	return a, nil
}

func (am *AssetManager) AcquireMaterial(path string) (*Material, error) {
	a, err := am.Acquire(path)
	if err != nil {
		return nil, err
	}
	m, ok := a.(*Material)
	if !ok {
		return nil, fmt.Errorf("'%s' is a %s, not a material: %w", path, a.Kind(), core.ErrUnknownAsset)
	}
	return m, nil
}

func (am *AssetManager) AcquireImage(path string) (*Image, error) {
	a, err := am.Acquire(path)
	if err != nil {
		return nil, err
	}
	img, ok := a.(*Image)
	if !ok {
		return nil, fmt.Errorf("'%s' is a %s, not an image: %w", path, a.Kind(), core.ErrUnknownAsset)
	}
	return img, nil
}

// Reload loads path again off the render thread and queues a task that copies
// the new contents into the cached asset. Unknown paths are ignored.
func (am *AssetManager) Reload(path string) error {
	key := am.key(path)

	am.mutex.RLock()
	info, exists := am.assets[key]
	am.mutex.RUnlock()
	if !exists {
		return nil
	}

	fresh, err := am.load(key)
	if err != nil {
		core.LogError("failed to reload '%s': %s", key, err)
		return err
	}

	err = am.tasks.Post(func() {
		if err := Replace(info.Asset, fresh); err != nil {
			core.LogError(err.Error())
			return
		}
		am.mutex.Lock()
		info.LastLoaded = time.Now()
		handler := am.onReload
		am.mutex.Unlock()

		core.LogInfo("reloaded '%s' (version %d)", key, info.Asset.Version())
		if handler != nil {
			handler(key, info.Asset)
		}
	})
	if err != nil {
		core.LogError("dropped reload of '%s': %s", key, err)
	}
	return err
}

// Watch starts watching the root directory and all sub-directories.
func (am *AssetManager) Watch() error {
	if am.isClosed {
		return errors.New("asset manager already closed")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		core.LogError(err.Error())
		return err
	}
	am.fsnotify = w
	if err := am.watchRecursive(am.root); err != nil {
		w.Close()
		am.fsnotify = nil
		return err
	}

	am.wg.Add(1)
	go am.start()
	return nil
}

func (am *AssetManager) Shutdown() error {
	if am.isClosed {
		return nil
	}
	am.isClosed = true
	close(am.done)
	am.wg.Wait()
	return nil
}

func (am *AssetManager) start() {
	defer am.wg.Done()
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					if err := am.watchRecursive(e.Name); err != nil {
						core.LogError(err.Error())
					}
				}
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				// Reload logs its own failures.
				_ = am.Reload(e.Name)
			}
			if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				// Keep the in-memory asset alive for whoever still holds it.
				core.LogWarn("asset '%s' removed from disk", e.Name)
			}

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(err.Error())

		case <-am.done:
			am.fsnotify.Close()
			return
		}
	}
}

// watchRecursive adds all directories under the given one to the watch list.
func (am *AssetManager) watchRecursive(path string) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return am.fsnotify.Add(walkPath)
		}
		return nil
	})
}

func (am *AssetManager) load(key string) (Asset, error) {
	ext := strings.ToLower(filepath.Ext(key))
	am.mutex.RLock()
	loader, ok := am.loaders[ext]
	am.mutex.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no loader registered for '%s': %w", ext, core.ErrUnknownAsset)
	}
	a, err := loader.Load(filepath.Join(am.root, key), am)
	if err != nil {
		return nil, fmt.Errorf("loading '%s': %w", key, err)
	}
	return a, nil
}

// key normalizes path to a slash separated path relative to the root.
func (am *AssetManager) key(path string) string {
	if filepath.IsAbs(path) {
		if rel, err := filepath.Rel(am.root, path); err == nil {
			path = rel
		}
	}
	return filepath.ToSlash(filepath.Clean(path))
}

func errKindMismatch(dst, src Asset) error {
	return fmt.Errorf("cannot replace %T with %T: %w", dst, src, core.ErrUnknownAsset)
}
