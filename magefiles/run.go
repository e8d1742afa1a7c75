//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Opens the testbed window with vista.toml.
func (Run) Engine() error {
	mg.Deps(Build.Engine)
	fmt.Println("Run engine...")
	if _, err := executeCmd("bin/vista", withArgs("-config", "vista.toml"), withStream()); err != nil {
		return err
	}
	return nil
}

// Renders a few frames without a window and saves the last one.
func (Run) Headless() error {
	mg.Deps(Build.Engine)
	if _, err := executeCmd("bin/vista", withArgs("-config", "vista.toml", "-headless", "10", "-screenshot", "frame.png"), withStream()); err != nil {
		return err
	}
	return nil
}
