package renderer

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/vista/engine/assets"
	"github.com/spaghettifunk/vista/engine/core"
	"github.com/spaghettifunk/vista/engine/math"
)

// Handle identifies a camera, light or geometry registered with a Renderer.
// Handles increase monotonically and are never reused by the same Renderer.
type Handle uint64

const InvalidHandle Handle = 0

// PassMode selects what a pass iterates over.
type PassMode uint8

const (
	// One fullscreen draw.
	ModeFullscreenOnce PassMode = iota
	// One mesh draw per geometry.
	ModePerGeometry
	// One fullscreen draw per light.
	ModePerLight
	// For each light, one mesh draw per geometry.
	ModePerLightPerGeometry
	// For each geometry, one mesh draw per light.
	ModePerGeometryPerLight
)

var passModeNames = []string{
	"fullscreen_once",
	"per_geometry",
	"per_light",
	"per_light_per_geometry",
	"per_geometry_per_light",
}

func (m PassMode) String() string {
	return enumName(passModeNames, m)
}

func (m *PassMode) UnmarshalText(text []byte) error {
	return parseEnum(passModeNames, "pass mode", text, m)
}

func (m PassMode) usesLights() bool {
	return m == ModePerLight || m == ModePerLightPerGeometry || m == ModePerGeometryPerLight
}

type DepthPolicy uint8

const (
	DepthOff DepthPolicy = iota
	// Test against the depth buffer without writing it.
	DepthReadOnly
	DepthReadWrite
)

var depthPolicyNames = []string{"off", "read_only", "read_write"}

func (d DepthPolicy) String() string {
	return enumName(depthPolicyNames, d)
}

func (d *DepthPolicy) UnmarshalText(text []byte) error {
	return parseEnum(depthPolicyNames, "depth policy", text, d)
}

type BlendPolicy uint8

const (
	BlendOff BlendPolicy = iota
	BlendAlpha
	// In light iterating modes the first light layer is written and later
	// layers are added to it. Other modes blend additively.
	BlendAdditiveMultipass
)

var blendPolicyNames = []string{"off", "alpha", "additive_multipass"}

func (b BlendPolicy) String() string {
	return enumName(blendPolicyNames, b)
}

func (b *BlendPolicy) UnmarshalText(text []byte) error {
	return parseEnum(blendPolicyNames, "blend policy", text, b)
}

func enumName[T ~uint8](names []string, v T) string {
	if int(v) < len(names) {
		return names[v]
	}
	return fmt.Sprintf("unknown(%d)", v)
}

func parseEnum[T ~uint8](names []string, what string, text []byte, out *T) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for i, n := range names {
		if n == s {
			*out = T(i)
			return nil
		}
	}
	return core.Errorf(core.ErrInvalidConfig, "unknown %s %q", what, s)
}

// PassConfig declares one pass. Params are static uniforms applied after the
// camera uniforms on every execution of the pass.
type PassConfig struct {
	Name   string         `toml:"name" yaml:"name"`
	Mode   PassMode       `toml:"mode" yaml:"mode"`
	Shader string         `toml:"shader" yaml:"shader"`
	Depth  DepthPolicy    `toml:"depth" yaml:"depth"`
	Blend  BlendPolicy    `toml:"blend" yaml:"blend"`
	Params map[string]any `toml:"params" yaml:"params"`
}

type Projection uint8

const (
	ProjectionPerspective Projection = iota
	ProjectionOrthographic
)

// CameraParams is the state of one registered camera.
type CameraParams struct {
	Projection Projection
	// Horizontal field of view in radians, perspective only.
	FOV float32
	// Visible height in world units, orthographic only.
	Height float32
	Near   float32
	Far    float32
	// Normalized region of the surface; a zero rectangle covers all of it.
	Viewport math.Rect
	View     math.Mat4
	Position math.Vec3
}

// ProjectionMatrix builds the projection for a viewport of the given aspect
// ratio. The horizontal field of view is kept fixed as the aspect changes.
func (c CameraParams) ProjectionMatrix(aspect float32) math.Mat4 {
	if c.Projection == ProjectionOrthographic {
		halfH := c.Height * 0.5
		halfW := halfH * aspect
		return math.NewMat4Orthographic(-halfW, halfW, -halfH, halfH, c.Near, c.Far)
	}
	return math.NewMat4Perspective(math.VerticalFOV(c.FOV, aspect), aspect, c.Near, c.Far)
}

type LightKind uint8

const (
	LightDirectional LightKind = iota
	LightPoint
	LightSpot
)

var lightKindNames = []string{"directional", "point", "spot"}

func (k LightKind) String() string {
	return enumName(lightKindNames, k)
}

func (k *LightKind) UnmarshalText(text []byte) error {
	return parseEnum(lightKindNames, "light kind", text, k)
}

// LightParams is the state of one registered light, in world space.
type LightParams struct {
	Kind      LightKind
	Colour    math.Vec3
	Intensity float32
	Position  math.Vec3
	Direction math.Vec3
	// Distance at which point and spot lights fade out; zero means no falloff.
	Range float32
	// Half angle of the spot cone in radians.
	SpotAngle float32
}

// GeometryParams is the state of one registered geometry.
type GeometryParams struct {
	Transform math.Mat4
	Mesh      *assets.Mesh
	Material  *assets.Material
}

// FrameCamera is the per camera state the pipeline binds for every pass.
type FrameCamera struct {
	Projection math.Mat4
	View       math.Mat4
	Position   math.Vec3
	// x, y, width, height in pixels.
	Viewport [4]uint32
}
