package engine

import (
	"errors"
	"time"
	"unsafe"

	"github.com/spaghettifunk/vista/engine/assets"
	"github.com/spaghettifunk/vista/engine/core"
	"github.com/spaghettifunk/vista/engine/gpu/software"
	"github.com/spaghettifunk/vista/engine/gpu/vulkan"
	"github.com/spaghettifunk/vista/engine/renderer"
	"github.com/spaghettifunk/vista/engine/scene"
	"github.com/spaghettifunk/vista/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Engine has released everything
	EngineStageShutdown
)

// vulkanLoader is implemented by windows able to hand out a Vulkan loader.
type vulkanLoader interface {
	VulkanLoader() (unsafe.Pointer, []string, bool)
}

type Engine struct {
	currentStage  Stage
	gameInstance  *Game
	isRunning     bool
	isSuspended   bool
	bus           *core.EventBus
	input         *core.Input
	window        Window
	systemManager *systems.SystemManager
	device        *software.Device
	renderer      *renderer.Renderer
	scene         *scene.Scene
	width         uint32
	height        uint32
	clock         *core.Clock
	metrics       *core.Metrics
	lastTime      float64
	frames        uint64
	adapters      []vulkan.Adapter
}

func New(g *Game) (*Engine, error) {
	if g == nil || g.ApplicationConfig == nil {
		return nil, core.Errorf(core.ErrInvalidConfig, "engine requires a game with an application config")
	}
	cfg := g.ApplicationConfig
	if err := cfg.Validate(); err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	level, _ := cfg.LogLevel()
	core.SetLogLevel(level)

	sm, err := systems.NewSystemManager(cfg.Assets)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	opts, err := cfg.RendererOptions()
	if err != nil {
		sm.Shutdown()
		return nil, err
	}
	device := software.New(software.WithClearColour(cfg.ClearColour()))
	r, err := renderer.New(device, opts)
	if err != nil {
		core.LogError(err.Error())
		sm.Shutdown()
		return nil, err
	}

	bus := core.NewEventBus()
	return &Engine{
		currentStage:  EngineStageUninitialized,
		gameInstance:  g,
		bus:           bus,
		input:         core.NewInput(bus),
		systemManager: sm,
		device:        device,
		renderer:      r,
		scene:         scene.NewScene(cfg.Application.Name, r),
		width:         cfg.Application.Width,
		height:        cfg.Application.Height,
		clock:         core.NewClock(),
		metrics:       core.NewMetrics(),
	}, nil
}

func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageUninitialized {
		core.Violation("Engine.Initialize", "engine is in stage %d", e.currentStage)
	}
	e.currentStage = EngineStageInitializing
	cfg := e.gameInstance.ApplicationConfig

	e.bus.Register(core.EVENT_CODE_APPLICATION_QUIT, e.onEvent)
	e.bus.Register(core.EVENT_CODE_RESIZED, e.onResized)

	e.systemManager.Assets().SetReloadHandler(func(path string, asset assets.Asset) {
		e.bus.Fire(core.EventContext{
			Type:   core.EVENT_CODE_ASSET_RELOADED,
			Sender: e,
			Data:   &core.AssetEvent{Path: path, Version: asset.Version()},
		})
	})

	if cfg.Window != nil {
		w, err := cfg.Window(e.bus, e.input)
		if err != nil {
			return err
		}
		app := cfg.Application
		if err := w.Startup(app.Name, app.StartPosX, app.StartPosY, app.Width, app.Height); err != nil {
			return err
		}
		e.window = w
		e.probeAdapters()
	} else {
		core.LogInfo("running headless")
	}

	e.gameInstance.SystemManager = e.systemManager
	e.gameInstance.Scene = e.scene
	e.gameInstance.Library = e.renderer.Library()
	e.gameInstance.Input = e.input
	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			return err
		}
	}
	e.scene.Activate()

	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}
	e.isRunning = true
	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) probeAdapters() {
	loader, ok := e.window.(vulkanLoader)
	if !ok {
		return
	}
	procAddr, extensions, ok := loader.VulkanLoader()
	if !ok {
		core.LogWarn("no Vulkan loader found, rendering on the CPU")
		return
	}
	adapters, err := vulkan.Probe(procAddr, e.gameInstance.ApplicationConfig.Application.Name, extensions)
	if err != nil {
		core.LogWarn("Vulkan probe failed: %s", err)
		return
	}
	e.adapters = adapters
}

func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		core.Violation("Engine.Run", "engine is in stage %d", e.currentStage)
	}
	e.currentStage = EngineStageRunning
	cfg := e.gameInstance.ApplicationConfig

	var targetFrameSeconds float64
	if cfg.Application.TargetFrameRate > 0 {
		targetFrameSeconds = 1.0 / float64(cfg.Application.TargetFrameRate)
	}
	var runningTime float64

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	for e.isRunning {
		if e.window != nil {
			e.window.PumpMessages()
		}
		if e.isSuspended {
			time.Sleep(10 * time.Millisecond)
			continue
		}

		// Update clock and get delta time.
		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime
		frameStart := time.Now()

		// Work finished by loaders and workers lands here.
		e.systemManager.Update()

		if e.gameInstance.FnUpdate != nil {
			if err := e.gameInstance.FnUpdate(delta); err != nil {
				core.LogError("game update failed, shutting down: %s", err)
				return err
			}
		}
		e.scene.Update(delta)

		if e.gameInstance.FnRender != nil {
			if err := e.gameInstance.FnRender(delta); err != nil {
				core.LogError("game render failed, shutting down: %s", err)
				return err
			}
		}
		// A failed frame has already been logged by the renderer; the next
		// one may well succeed.
		_ = e.scene.Render()
		e.frames++

		frameElapsed := time.Since(frameStart).Seconds()
		e.metrics.Update(frameElapsed)
		runningTime += frameElapsed
		if runningTime >= 1 {
			fps, ms := e.metrics.Frame()
			core.LogDebug("%.0f fps, %.2f ms/frame, %d draws", fps, ms, e.renderer.Stats().Draws)
			runningTime = 0
		}
		if remaining := targetFrameSeconds - frameElapsed; remaining > 0 {
			// Give the time left back to the OS.
			time.Sleep(time.Duration(remaining * float64(time.Second)))
		}

		// Input state is copied last so this frame's presses are seen once.
		e.input.Update()

		if cfg.MaxFrames > 0 && e.frames >= cfg.MaxFrames {
			e.isRunning = false
		}
		e.lastTime = currentTime
	}
	return nil
}

// Stop ends the frame loop after the current frame.
func (e *Engine) Stop() {
	e.bus.Fire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT, Sender: e})
}

// Shutdown releases everything in reverse order of creation. Calling it
// again is a no-op.
func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShuttingDown || e.currentStage == EngineStageShutdown {
		return nil
	}
	e.currentStage = EngineStageShuttingDown
	var errs []error
	if e.gameInstance.FnShutdown != nil {
		errs = append(errs, e.gameInstance.FnShutdown())
	}
	e.scene.Destroy()
	errs = append(errs, e.systemManager.Shutdown())
	if e.window != nil {
		errs = append(errs, e.window.Shutdown())
	}
	e.bus.Shutdown()
	e.currentStage = EngineStageShutdown
	core.LogInfo("engine shut down after %d frames", e.frames)
	return errors.Join(errs...)
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

func (e *Engine) Bus() *core.EventBus {
	return e.bus
}

func (e *Engine) Input() *core.Input {
	return e.input
}

func (e *Engine) Renderer() *renderer.Renderer {
	return e.renderer
}

func (e *Engine) Device() *software.Device {
	return e.device
}

func (e *Engine) Frames() uint64 {
	return e.frames
}

// Adapters lists the Vulkan adapters found at startup.
func (e *Engine) Adapters() []vulkan.Adapter {
	return e.adapters
}

// GetFramebufferSize returns the width and height (in this order) of the
// application framebuffer.
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) onEvent(context core.EventContext) bool {
	if context.Type == core.EVENT_CODE_APPLICATION_QUIT {
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down")
		e.isRunning = false
		return true
	}
	return false
}

func (e *Engine) onResized(context core.EventContext) bool {
	se, ok := context.Data.(*core.SystemEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}
	width, height := se.WindowWidth, se.WindowHeight
	if width == e.width && height == e.height {
		return false
	}
	e.width, e.height = width, height
	core.LogDebug("window resize: %d, %d", width, height)

	// Handle minimization
	if width == 0 || height == 0 {
		core.LogInfo("window minimized, suspending application")
		e.isSuspended = true
		return false
	}
	if e.isSuspended {
		core.LogInfo("window restored, resuming application")
		e.isSuspended = false
	}
	e.renderer.Resize(width, height)
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(width, height); err != nil {
			core.LogError(err.Error())
		}
	}
	return false
}
