package engine

import (
	"github.com/spaghettifunk/vista/engine/config"
	"github.com/spaghettifunk/vista/engine/core"
)

// Window is the platform collaborator driven by the frame loop. Window events
// reach the engine as events on the bus.
type Window interface {
	Startup(applicationName string, x uint32, y uint32, width uint32, height uint32) error
	PumpMessages()
	Shutdown() error
}

// WindowFactory builds the window once the event bus exists. The window
// feeds keyboard and mouse state into input.
type WindowFactory func(bus *core.EventBus, input *core.Input) (Window, error)

type ApplicationConfig struct {
	config.Config
	// Window is nil for a headless run.
	Window WindowFactory
	// MaxFrames stops the loop after that many frames; zero runs until quit.
	MaxFrames uint64
}

// LoadApplicationConfig reads path, or uses the defaults when path is empty.
func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	if path == "" {
		return &ApplicationConfig{Config: config.Default()}, nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	return &ApplicationConfig{Config: *cfg}, nil
}
