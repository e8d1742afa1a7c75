// Package config loads the engine configuration from TOML or YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/spaghettifunk/vista/engine/core"
	"github.com/spaghettifunk/vista/engine/math"
	"github.com/spaghettifunk/vista/engine/renderer"
	"github.com/spaghettifunk/vista/engine/resources"
)

type Format uint8

const (
	FormatTOML Format = iota
	FormatYAML
)

func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "toml"
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return 0, core.Errorf(core.ErrInvalidConfig, "unsupported config file '%s'", path)
}

type Application struct {
	// The application name used in windowing.
	Name string `toml:"name" yaml:"name"`
	// Window starting position, if applicable.
	StartPosX uint32 `toml:"start_pos_x" yaml:"start_pos_x"`
	StartPosY uint32 `toml:"start_pos_y" yaml:"start_pos_y"`
	// Window starting size.
	Width  uint32 `toml:"width" yaml:"width"`
	Height uint32 `toml:"height" yaml:"height"`
	// Zero leaves the frame loop unthrottled.
	TargetFrameRate uint32 `toml:"target_frame_rate" yaml:"target_frame_rate"`
}

type Log struct {
	Level string `toml:"level" yaml:"level"`
}

type Renderer struct {
	// Preset is used when no passes are listed under the pipeline.
	Preset      string     `toml:"preset" yaml:"preset"`
	ClearColour [4]float32 `toml:"clear_colour" yaml:"clear_colour"`
}

type Assets struct {
	Root string `toml:"root" yaml:"root"`
	// Watch reloads assets when their files change.
	Watch bool `toml:"watch" yaml:"watch"`
	// Workers loading assets off the render thread.
	Workers int `toml:"workers" yaml:"workers"`
	// Capacity of the queue carrying work back to the render thread.
	TaskQueue int `toml:"task_queue" yaml:"task_queue"`
}

type Pipeline struct {
	Passes []renderer.PassConfig `toml:"passes" yaml:"passes"`
}

type Config struct {
	Application Application      `toml:"application" yaml:"application"`
	Log         Log              `toml:"log" yaml:"log"`
	Renderer    Renderer         `toml:"renderer" yaml:"renderer"`
	Cache       resources.Config `toml:"cache" yaml:"cache"`
	Assets      Assets           `toml:"assets" yaml:"assets"`
	Pipeline    Pipeline         `toml:"pipeline" yaml:"pipeline"`
}

func Default() Config {
	return Config{
		Application: Application{
			Name:      "Vista",
			StartPosX: 100,
			StartPosY: 100,
			Width:     1280,
			Height:    720,
		},
		Log:      Log{Level: "info"},
		Renderer: Renderer{Preset: "forward", ClearColour: [4]float32{0, 0, 0.2, 1}},
		Cache:    resources.DefaultConfig(),
		Assets: Assets{
			Root:      "assets",
			Workers:   2,
			TaskQueue: 256,
		},
	}
}

// Load reads the file at path on top of the defaults.
func Load(path string) (*Config, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("config '%s': %w", path, err)
	}
	core.LogInfo("loaded configuration from '%s'", path)
	return cfg, nil
}

// Decode reads a document on top of the defaults and validates the result.
// Unknown fields are rejected.
func Decode(r io.Reader, format Format) (*Config, error) {
	cfg := Default()
	var err error
	switch format {
	case FormatTOML:
		err = toml.NewDecoder(r).DisallowUnknownFields().Decode(&cfg)
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err = dec.Decode(&cfg); errors.Is(err, io.EOF) {
			err = nil
		}
	default:
		err = fmt.Errorf("unknown format %d", format)
	}
	if err != nil {
		return nil, core.Errorf(core.ErrInvalidConfig, "decode %s: %s", format, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every problem found, joined.
func (c *Config) Validate() error {
	var errs []error
	if c.Application.Width == 0 || c.Application.Height == 0 {
		errs = append(errs, core.Errorf(core.ErrInvalidConfig, "window size %dx%d", c.Application.Width, c.Application.Height))
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.Cache.MaxAge == 0 {
		errs = append(errs, core.Errorf(core.ErrInvalidConfig, "cache max_age must be at least 1"))
	}
	if c.Assets.Workers < 1 {
		errs = append(errs, core.Errorf(core.ErrInvalidConfig, "assets need at least one worker"))
	}
	if c.Assets.TaskQueue < 1 {
		errs = append(errs, core.Errorf(core.ErrInvalidConfig, "task queue capacity must be at least 1"))
	}
	if _, err := c.Passes(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *Config) LogLevel() (core.LogLevel, error) {
	return core.ParseLogLevel(c.Log.Level)
}

// Passes returns the listed pipeline passes or, when none are listed, the
// passes of the renderer preset.
func (c *Config) Passes() ([]renderer.PassConfig, error) {
	if len(c.Pipeline.Passes) > 0 {
		return c.Pipeline.Passes, nil
	}
	passes, ok := renderer.Preset(c.Renderer.Preset)
	if !ok {
		return nil, core.Errorf(core.ErrInvalidConfig, "unknown renderer preset '%s'", c.Renderer.Preset)
	}
	return passes, nil
}

func (c *Config) ClearColour() math.Vec4 {
	cc := c.Renderer.ClearColour
	return math.NewVec4(cc[0], cc[1], cc[2], cc[3])
}

// RendererOptions sizes the renderer to the starting window.
func (c *Config) RendererOptions() (renderer.Options, error) {
	passes, err := c.Passes()
	if err != nil {
		return renderer.Options{}, err
	}
	return renderer.Options{
		Passes: passes,
		Cache:  c.Cache,
		Width:  c.Application.Width,
		Height: c.Application.Height,
	}, nil
}
