package systems

import (
	"errors"

	"github.com/spaghettifunk/vista/engine/assets"
	"github.com/spaghettifunk/vista/engine/assets/loaders"
	"github.com/spaghettifunk/vista/engine/config"
	"github.com/spaghettifunk/vista/engine/core"
)

// SystemManager owns the services that move work between goroutines: the
// render thread task queue, the asset manager and the job system.
type SystemManager struct {
	tasks     *core.TaskQueue
	assets    *assets.AssetManager
	jobSystem *JobSystem
}

func NewSystemManager(cfg config.Assets) (*SystemManager, error) {
	if cfg.TaskQueue < 1 {
		return nil, core.Errorf(core.ErrInvalidConfig, "task queue capacity must be at least 1")
	}
	tasks := core.NewTaskQueue(cfg.TaskQueue)

	am, err := assets.NewAssetManager(cfg.Root, tasks)
	if err != nil {
		return nil, err
	}
	RegisterDefaultLoaders(am)

	js, err := NewJobSystem(cfg.Workers, cfg.Workers*4, tasks)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	if cfg.Watch {
		if err := am.Watch(); err != nil {
			js.Shutdown()
			return nil, err
		}
		core.LogInfo("watching '%s' for asset changes", am.Root())
	}

	return &SystemManager{
		tasks:     tasks,
		assets:    am,
		jobSystem: js,
	}, nil
}

// RegisterDefaultLoaders binds the material and image loaders to their file
// extensions.
func RegisterDefaultLoaders(am *assets.AssetManager) {
	am.RegisterLoader(".toml", &loaders.MaterialLoader{})
	images := &loaders.ImageLoader{}
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".webp"} {
		am.RegisterLoader(ext, images)
	}
}

func (sm *SystemManager) Tasks() *core.TaskQueue {
	return sm.tasks
}

func (sm *SystemManager) Assets() *assets.AssetManager {
	return sm.assets
}

func (sm *SystemManager) Jobs() *JobSystem {
	return sm.jobSystem
}

// Update runs the work other goroutines queued for the render thread and
// returns how many tasks ran.
func (sm *SystemManager) Update() int {
	return sm.tasks.Drain()
}

// Shutdown waits for queued jobs, stops the asset watcher and runs whatever
// callbacks they left behind.
func (sm *SystemManager) Shutdown() error {
	err := errors.Join(sm.jobSystem.Shutdown(), sm.assets.Shutdown())
	sm.tasks.Drain()
	return err
}
