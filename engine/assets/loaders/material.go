package loaders

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/vista/engine/assets"
	"github.com/spaghettifunk/vista/engine/math"
)

// MaterialConfig is the on-disk form of a material (.toml).
//
//	name = "brick"
//	diffuse_colour = [1.0, 0.9, 0.8, 1.0]
//	shininess = 32.0
//	diffuse_map = "textures/brick.png"
type MaterialConfig struct {
	Name          string     `toml:"name"`
	DiffuseColour [4]float32 `toml:"diffuse_colour"`
	Shininess     float32    `toml:"shininess"`
	DiffuseMap    string     `toml:"diffuse_map"`
	SpecularMap   string     `toml:"specular_map"`
	NormalMap     string     `toml:"normal_map"`
}

type MaterialLoader struct{}

func (ml *MaterialLoader) Load(path string, ctx assets.LoadContext) (assets.Asset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := MaterialConfig{
		DiffuseColour: [4]float32{1, 1, 1, 1},
		Shininess:     8,
	}
	if err := toml.NewDecoder(f).DisallowUnknownFields().Decode(&cfg); err != nil {
		return nil, err
	}
	if err := validateMaterial(&cfg); err != nil {
		return nil, err
	}

	m := assets.NewMaterial(cfg.Name)
	m.SetDiffuseColour(math.NewVec4(cfg.DiffuseColour[0], cfg.DiffuseColour[1], cfg.DiffuseColour[2], cfg.DiffuseColour[3]))
	m.SetShininess(cfg.Shininess)

	maps := []struct {
		path string
		set  func(*assets.Image)
	}{
		{cfg.DiffuseMap, m.SetDiffuseMap},
		{cfg.SpecularMap, m.SetSpecularMap},
		{cfg.NormalMap, m.SetNormalMap},
	}
	for _, slot := range maps {
		if slot.path == "" {
			continue
		}
		a, err := ctx.Acquire(slot.path)
		if err != nil {
			return nil, fmt.Errorf("material '%s': %w", cfg.Name, err)
		}
		img, ok := a.(*assets.Image)
		if !ok {
			return nil, fmt.Errorf("material '%s': '%s' is not an image", cfg.Name, slot.path)
		}
		slot.set(img)
	}
	return m, nil
}

func validateMaterial(material *MaterialConfig) error {
	if material.Name == "" {
		return fmt.Errorf("material name is required")
	}
	for _, c := range material.DiffuseColour {
		if c < 0.0 || c > 1.0 {
			return fmt.Errorf("diffuse_colour values must be between 0.0 and 1.0")
		}
	}
	if material.Shininess < 0 {
		return fmt.Errorf("shininess must be a non-negative value")
	}
	return nil
}
