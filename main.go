/*
This is an example of application that will use the
engine package to test things out.

Frames are rendered on the CPU and the window only carries input: press F12
or pass -screenshot to see what was drawn.
*/
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/vista/engine"
	"github.com/spaghettifunk/vista/engine/core"
	"github.com/spaghettifunk/vista/engine/platform"
	"github.com/spaghettifunk/vista/testbed"
)

func main() {
	configPath := flag.String("config", "", "TOML or YAML configuration file")
	headless := flag.Uint64("headless", 0, "render this many frames without a window, then exit")
	screenshot := flag.String("screenshot", "", "write the last frame to this PNG on exit")
	flag.Parse()

	cfg, err := engine.LoadApplicationConfig(*configPath)
	if err != nil {
		os.Exit(1)
	}

	tb := testbed.NewTestGame(cfg)
	if *headless > 0 {
		cfg.MaxFrames = *headless
	} else {
		cfg.Window = func(bus *core.EventBus, input *core.Input) (engine.Window, error) {
			return platform.New(bus, input)
		}
	}

	e, err := engine.New(tb.Game)
	if err != nil {
		panic(err)
	}
	tb.Screenshot = e.Screenshot

	if err := e.Initialize(); err != nil {
		panic(err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// the loop owns the bus, so the quit request is handed over through the task queue
	go func() {
		<-sigCh
		_ = tb.SystemManager.Tasks().Post(e.Stop)
	}()

	// run engine
	runErr := e.Run()
	if *screenshot != "" {
		if err := e.Screenshot(*screenshot); err != nil {
			core.LogError(err.Error())
		}
	}
	if err := e.Shutdown(); err != nil {
		core.LogError(err.Error())
	}
	if runErr != nil {
		panic(runErr)
	}
}
