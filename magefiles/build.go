//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Downloads the modules and builds the testbed binary into bin/.
func (Build) Engine() error {
	if _, err := executeCmd("go", withArgs("mod", "download")); err != nil {
		return err
	}
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/vista", "."), withEnv("CGO_ENABLED=1"), withStream()); err != nil {
		return err
	}
	return nil
}

type Test mg.Namespace

// Runs every package test with the race detector.
func (Test) All() error {
	// the race detector, glfw and vulkan all need cgo
	if _, err := executeCmd("go", withArgs("test", "-race", "./..."), withEnv("CGO_ENABLED=1"), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the tests that need neither a window nor a GPU.
func (Test) Headless() error {
	_, err := executeCmd("go", withArgs("test",
		"./engine/core/...",
		"./engine/containers/...",
		"./engine/math/...",
		"./engine/assets/...",
		"./engine/resources/...",
		"./engine/gpu/software/...",
		"./engine/renderer",
		"./engine/scene/...",
		"./engine/config/...",
		"./engine/systems/...",
	), withStream())
	return err
}
