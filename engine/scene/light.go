package scene

import (
	"github.com/spaghettifunk/vista/engine/core"
	"github.com/spaghettifunk/vista/engine/math"
	"github.com/spaghettifunk/vista/engine/renderer"
)

// Light registers a light source. Position and direction come from the world
// transform; an unrotated light points down -Z.
type Light struct {
	SpatialNode
	params renderer.LightParams
	handle renderer.Handle
}

func newLight(name string, params renderer.LightParams) *Light {
	l := &Light{params: params}
	l.init(l, name)
	return l
}

func NewDirectionalLight(name string, colour math.Vec3, intensity float32) *Light {
	return newLight(name, renderer.LightParams{
		Kind:      renderer.LightDirectional,
		Colour:    colour,
		Intensity: intensity,
	})
}

// NewPointLight creates a light that fades out at lightRange, or never when
// lightRange is zero.
func NewPointLight(name string, colour math.Vec3, intensity, lightRange float32) *Light {
	return newLight(name, renderer.LightParams{
		Kind:      renderer.LightPoint,
		Colour:    colour,
		Intensity: intensity,
		Range:     lightRange,
	})
}

// NewSpotLight creates a cone light with the given half angle in degrees.
func NewSpotLight(name string, colour math.Vec3, intensity, lightRange, angleDegrees float32) *Light {
	return newLight(name, renderer.LightParams{
		Kind:      renderer.LightSpot,
		Colour:    colour,
		Intensity: intensity,
		Range:     lightRange,
		SpotAngle: math.DegToRad(angleDegrees),
	})
}

func (l *Light) Handle() renderer.Handle {
	return l.handle
}

func (l *Light) Params() renderer.LightParams {
	p := l.params
	world := l.WorldTransform()
	p.Position = world.Position()
	p.Direction = math.NewVec3Forward().TransformDirection(world).Normalized()
	return p
}

func (l *Light) Kind() renderer.LightKind {
	return l.params.Kind
}

func (l *Light) SetColour(colour math.Vec3) {
	l.params.Colour = colour
	l.push()
}

func (l *Light) SetIntensity(intensity float32) {
	l.params.Intensity = intensity
	l.push()
}

func (l *Light) SetRange(lightRange float32) {
	l.params.Range = lightRange
	l.push()
}

func (l *Light) SetSpotAngle(angleDegrees float32) {
	l.params.SpotAngle = math.DegToRad(angleDegrees)
	l.push()
}

func (l *Light) Activate(ctx *Context) {
	if l.handle != renderer.InvalidHandle {
		core.Violation("Light.Activate", "light %q already holds handle %d", l.name, l.handle)
	}
	l.SpatialNode.Activate(ctx)
	l.handle = ctx.Renderer.AddLight(l.Params())
}

func (l *Light) Deactivate() {
	if l.handle == renderer.InvalidHandle {
		core.Violation("Light.Deactivate", "light %q holds no handle", l.name)
	}
	l.ctx.Renderer.RemoveLight(l.handle)
	l.handle = renderer.InvalidHandle
	l.SpatialNode.Deactivate()
}

func (l *Light) TransformChanged() {
	l.push()
}

func (l *Light) push() {
	if l.handle != renderer.InvalidHandle {
		l.ctx.Renderer.UpdateLight(l.handle, l.Params())
	}
}
