package engine

import (
	"github.com/spaghettifunk/vista/engine/assets"
	"github.com/spaghettifunk/vista/engine/core"
	"github.com/spaghettifunk/vista/engine/scene"
	"github.com/spaghettifunk/vista/engine/systems"
)

// Game is the set of callbacks the engine drives. SystemManager, Scene,
// Library and Input are filled in by the engine before FnInitialize runs.
type Game struct {
	ApplicationConfig *ApplicationConfig
	SystemManager     *systems.SystemManager
	Scene             *scene.Scene
	Library           *assets.Library
	Input             *core.Input
	State             interface{}
	FnInitialize      Initialize
	FnUpdate          Update
	FnRender          Render
	FnOnResize        OnResize
	FnShutdown        Shutdown
}

type Initialize func() error
type Update func(deltaTime float64) error

// Render runs right before the scene is drawn.
type Render func(deltaTime float64) error
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
