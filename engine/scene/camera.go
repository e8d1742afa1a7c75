package scene

import (
	"github.com/spaghettifunk/vista/engine/core"
	"github.com/spaghettifunk/vista/engine/math"
	"github.com/spaghettifunk/vista/engine/renderer"
)

// pitchLimit keeps the fly camera away from gimbal lock, 89 degrees.
const pitchLimit = float32(1.55334306)

// Camera registers a view onto the scene. Its view matrix is the inverse of
// its world transform.
type Camera struct {
	SpatialNode
	params renderer.CameraParams
	handle renderer.Handle

	// fly camera state, see SetPosition and SetEulerRotation
	position math.Vec3
	euler    math.Vec3
}

// NewPerspectiveCamera creates a camera with a horizontal field of view in
// degrees.
func NewPerspectiveCamera(name string, fovDegrees, near, far float32) *Camera {
	c := &Camera{}
	c.init(c, name)
	c.params = renderer.CameraParams{
		Projection: renderer.ProjectionPerspective,
		FOV:        math.DegToRad(fovDegrees),
		Near:       near,
		Far:        far,
	}
	return c
}

// NewOrthographicCamera creates a camera showing height world units
// vertically.
func NewOrthographicCamera(name string, height, near, far float32) *Camera {
	c := &Camera{}
	c.init(c, name)
	c.params = renderer.CameraParams{
		Projection: renderer.ProjectionOrthographic,
		Height:     height,
		Near:       near,
		Far:        far,
	}
	return c
}

// Handle is the renderer handle while the camera is active.
func (c *Camera) Handle() renderer.Handle {
	return c.handle
}

// Params returns the state the renderer sees for this camera.
func (c *Camera) Params() renderer.CameraParams {
	p := c.params
	world := c.WorldTransform()
	p.View = world.Inverse()
	p.Position = world.Position()
	return p
}

func (c *Camera) SetPerspective(fovDegrees, near, far float32) {
	c.params.Projection = renderer.ProjectionPerspective
	c.params.FOV = math.DegToRad(fovDegrees)
	c.params.Near, c.params.Far = near, far
	c.push()
}

func (c *Camera) SetOrthographic(height, near, far float32) {
	c.params.Projection = renderer.ProjectionOrthographic
	c.params.Height = height
	c.params.Near, c.params.Far = near, far
	c.push()
}

// SetViewport restricts the camera to a normalized region of the surface.
func (c *Camera) SetViewport(viewport math.Rect) {
	c.params.Viewport = viewport
	c.push()
}

func (c *Camera) Activate(ctx *Context) {
	if c.handle != renderer.InvalidHandle {
		core.Violation("Camera.Activate", "camera %q already holds handle %d", c.name, c.handle)
	}
	c.SpatialNode.Activate(ctx)
	c.handle = ctx.Renderer.AddCamera(c.Params())
}

func (c *Camera) Deactivate() {
	if c.handle == renderer.InvalidHandle {
		core.Violation("Camera.Deactivate", "camera %q holds no handle", c.name)
	}
	c.ctx.Renderer.RemoveCamera(c.handle)
	c.handle = renderer.InvalidHandle
	c.SpatialNode.Deactivate()
}

func (c *Camera) TransformChanged() {
	c.push()
}

func (c *Camera) push() {
	if c.handle != renderer.InvalidHandle {
		c.ctx.Renderer.UpdateCamera(c.handle, c.Params())
	}
}

// The helpers below drive the camera like a fly camera. They own the local
// transform: calling SetTransform directly discards their state on the next
// call.

func (c *Camera) Position() math.Vec3 {
	return c.position
}

func (c *Camera) SetPosition(position math.Vec3) {
	c.position = position
	c.SetTransform(c.flyTransform())
}

// EulerRotation is pitch, yaw and roll in radians.
func (c *Camera) EulerRotation() math.Vec3 {
	return c.euler
}

func (c *Camera) SetEulerRotation(rotation math.Vec3) {
	c.euler = rotation
	c.SetTransform(c.flyTransform())
}

func (c *Camera) flyTransform() math.Mat4 {
	rotation := math.NewMat4EulerZ(c.euler.Z).
		Mul(math.NewMat4EulerX(c.euler.X)).
		Mul(math.NewMat4EulerY(c.euler.Y))
	return rotation.Mul(math.NewMat4Translation(c.position))
}

func (c *Camera) Forward() math.Vec3 {
	return c.flyTransform().Forward()
}

func (c *Camera) Right() math.Vec3 {
	return c.flyTransform().Right()
}

func (c *Camera) MoveForward(amount float32) {
	c.SetPosition(c.position.Add(c.Forward().MulScalar(amount)))
}

func (c *Camera) MoveBackward(amount float32) {
	c.MoveForward(-amount)
}

func (c *Camera) MoveRight(amount float32) {
	c.SetPosition(c.position.Add(c.Right().MulScalar(amount)))
}

func (c *Camera) MoveLeft(amount float32) {
	c.MoveRight(-amount)
}

func (c *Camera) MoveUp(amount float32) {
	c.SetPosition(c.position.Add(math.NewVec3Up().MulScalar(amount)))
}

func (c *Camera) MoveDown(amount float32) {
	c.MoveUp(-amount)
}

func (c *Camera) Yaw(amount float32) {
	c.euler.Y += amount
	c.SetTransform(c.flyTransform())
}

func (c *Camera) Pitch(amount float32) {
	c.euler.X = math.Clamp(c.euler.X+amount, -pitchLimit, pitchLimit)
	c.SetTransform(c.flyTransform())
}
