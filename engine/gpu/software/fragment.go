package software

import (
	"github.com/chewxy/math32"

	"github.com/spaghettifunk/vista/engine/gpu"
	"github.com/spaghettifunk/vista/engine/math"
)

// Shader computes the colour of one fragment. Returning false leaves the
// colour target untouched; depth is still written when the depth state asks
// for it.
type Shader func(f *Fragment) (math.Vec4, bool)

// GSample is one texel of the geometry buffer.
type GSample struct {
	Albedo   math.Vec4
	Normal   math.Vec3
	Position math.Vec3
	Valid    bool
}

// Fragment is the input of a Shader. Mesh draws fill the interpolated vertex
// attributes; fullscreen draws fill GBuffer with the sample under the pixel.
type Fragment struct {
	X, Y     int
	Depth    float32
	Position math.Vec3
	Normal   math.Vec3
	Texcoord math.Vec2
	Colour   math.Vec4
	GBuffer  GSample

	dev *Device
	idx int
}

func (f *Fragment) uniform(name string) (any, bool) {
	v, ok := f.dev.uniforms[name]
	return v, ok
}

func (f *Fragment) Mat4(name string) math.Mat4 {
	if v, ok := f.uniform(name); ok {
		if m, ok := v.(math.Mat4); ok {
			return m
		}
	}
	return math.NewMat4Identity()
}

func (f *Fragment) Vec4(name string, def math.Vec4) math.Vec4 {
	v, ok := f.uniform(name)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case math.Vec4:
		return t
	case math.Vec3:
		return t.ToVec4(1)
	}
	return def
}

func (f *Fragment) Vec3(name string, def math.Vec3) math.Vec3 {
	v, ok := f.uniform(name)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case math.Vec3:
		return t
	case math.Vec4:
		return t.ToVec3()
	}
	return def
}

func (f *Fragment) Float(name string, def float32) float32 {
	v, ok := f.uniform(name)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case float32:
		return t
	case float64:
		return float32(t)
	case int:
		return float32(t)
	case int32:
		return float32(t)
	}
	return def
}

func (f *Fragment) Int(name string, def int32) int32 {
	v, ok := f.uniform(name)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case int32:
		return t
	case int:
		return int32(t)
	case uint32:
		return int32(t)
	case int64:
		return int32(t)
	}
	return def
}

// Sample reads the texture bound to slot with nearest filtering and repeat
// wrapping. An empty slot samples as opaque white.
func (f *Fragment) Sample(slot string, uv math.Vec2) math.Vec4 {
	t, ok := f.dev.textures[f.dev.bound[slot]]
	if !ok {
		return math.NewVec4One()
	}
	u := uv.X - math32.Floor(uv.X)
	v := uv.Y - math32.Floor(uv.Y)
	x := math.Clamp(int(u*float32(t.width)), 0, t.width-1)
	y := math.Clamp(int(v*float32(t.height)), 0, t.height-1)
	return t.texels[y*t.width+x]
}

// WriteGBuffer stores surface attributes under the fragment.
func (f *Fragment) WriteGBuffer(albedo math.Vec4, normal, position math.Vec3) {
	f.dev.gbuffer[f.idx] = GSample{Albedo: albedo, Normal: normal, Position: position, Valid: true}
}

// LightUniforms is the light state bound by the pipeline for per-light passes.
type LightUniforms struct {
	Kind      int32
	Colour    math.Vec3
	Intensity float32
	Position  math.Vec3
	Direction math.Vec3
	Range     float32
	SpotCos   float32
}

func (f *Fragment) Light() LightUniforms {
	return LightUniforms{
		Kind:      f.Int(gpu.UniformLightKind, gpu.LightKindDirectional),
		Colour:    f.Vec3(gpu.UniformLightColour, math.NewVec3One()),
		Intensity: f.Float(gpu.UniformLightIntensity, 1),
		Position:  f.Vec3(gpu.UniformLightPosition, math.NewVec3Zero()),
		Direction: f.Vec3(gpu.UniformLightDirection, math.NewVec3Forward()),
		Range:     f.Float(gpu.UniformLightRange, 0),
		SpotCos:   f.Float(gpu.UniformLightSpotCos, -1),
	}
}
