package renderer

import (
	"strings"

	"github.com/spaghettifunk/vista/engine/gpu"
	"github.com/spaghettifunk/vista/engine/math"
)

// ForwardPasses draws every geometry once, unlit.
func ForwardPasses() []PassConfig {
	return []PassConfig{
		{Name: "forward", Mode: ModePerGeometry, Shader: gpu.ProgramUnlit, Depth: DepthReadWrite, Blend: BlendOff},
	}
}

// ForwardAdditivePasses fills the depth buffer first, then accumulates one
// lit layer per light over every geometry.
func ForwardAdditivePasses() []PassConfig {
	return []PassConfig{
		{Name: "depth_prepass", Mode: ModePerGeometry, Shader: gpu.ProgramDepth, Depth: DepthReadWrite, Blend: BlendOff},
		{Name: "lighting", Mode: ModePerLightPerGeometry, Shader: gpu.ProgramLit, Depth: DepthReadOnly, Blend: BlendAdditiveMultipass},
	}
}

// DeferredPasses writes a geometry buffer, accumulates one fullscreen layer
// per light and resolves ambient light on top.
func DeferredPasses() []PassConfig {
	return []PassConfig{
		{Name: "gbuffer", Mode: ModePerGeometry, Shader: gpu.ProgramGBuffer, Depth: DepthReadWrite, Blend: BlendOff},
		{Name: "lighting", Mode: ModePerLight, Shader: gpu.ProgramDeferredLight, Depth: DepthOff, Blend: BlendAdditiveMultipass},
		{
			Name:   "ambient",
			Mode:   ModeFullscreenOnce,
			Shader: gpu.ProgramAmbient,
			Depth:  DepthOff,
			Blend:  BlendAdditiveMultipass,
			Params: map[string]any{gpu.UniformAmbient: math.NewVec3(0.05, 0.05, 0.05)},
		},
	}
}

// Preset returns the passes of a named preset: forward, forward_additive or
// deferred. Dashes and underscores are interchangeable.
func Preset(name string) ([]PassConfig, bool) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_") {
	case "forward":
		return ForwardPasses(), true
	case "forward_additive":
		return ForwardAdditivePasses(), true
	case "deferred":
		return DeferredPasses(), true
	}
	return nil, false
}
