package scene

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/vista/engine/assets"
	"github.com/spaghettifunk/vista/engine/core"
	"github.com/spaghettifunk/vista/engine/gpu/software"
	"github.com/spaghettifunk/vista/engine/math"
	"github.com/spaghettifunk/vista/engine/renderer"
)

func init() {
	core.SetLogOutput(io.Discard)
}

const tolerance = 1e-5

// recorder is a real renderer that logs every call the scene makes.
type recorder struct {
	*renderer.Renderer
	device    *software.Device
	calls     []string
	destroyed int
}

func newRecorder(t *testing.T) *recorder {
	t.Helper()
	dev := software.New()
	r, err := renderer.New(dev, renderer.Options{Width: 8, Height: 8})
	require.NoError(t, err)
	return &recorder{Renderer: r, device: dev}
}

func (r *recorder) log(op string, h renderer.Handle) {
	r.calls = append(r.calls, fmt.Sprintf("%s:%d", op, h))
}

func (r *recorder) count(op string) int {
	n := 0
	for _, o := range r.ops() {
		if o == op {
			n++
		}
	}
	return n
}

func (r *recorder) ops() []string {
	out := make([]string, len(r.calls))
	for i, c := range r.calls {
		out[i], _, _ = strings.Cut(c, ":")
	}
	return out
}

func (r *recorder) AddCamera(p renderer.CameraParams) renderer.Handle {
	h := r.Renderer.AddCamera(p)
	r.log("add_camera", h)
	return h
}

func (r *recorder) UpdateCamera(h renderer.Handle, p renderer.CameraParams) {
	r.log("update_camera", h)
	r.Renderer.UpdateCamera(h, p)
}

func (r *recorder) RemoveCamera(h renderer.Handle) {
	r.log("remove_camera", h)
	r.Renderer.RemoveCamera(h)
}

func (r *recorder) AddLight(p renderer.LightParams) renderer.Handle {
	h := r.Renderer.AddLight(p)
	r.log("add_light", h)
	return h
}

func (r *recorder) UpdateLight(h renderer.Handle, p renderer.LightParams) {
	r.log("update_light", h)
	r.Renderer.UpdateLight(h, p)
}

func (r *recorder) RemoveLight(h renderer.Handle) {
	r.log("remove_light", h)
	r.Renderer.RemoveLight(h)
}

func (r *recorder) AddGeometry(p renderer.GeometryParams) renderer.Handle {
	h := r.Renderer.AddGeometry(p)
	r.log("add_geometry", h)
	return h
}

func (r *recorder) UpdateGeometry(h renderer.Handle, p renderer.GeometryParams) {
	r.log("update_geometry", h)
	r.Renderer.UpdateGeometry(h, p)
}

func (r *recorder) RemoveGeometry(h renderer.Handle) {
	r.log("remove_geometry", h)
	r.Renderer.RemoveGeometry(h)
}

func (r *recorder) Destroy() {
	r.destroyed++
	r.Renderer.Destroy()
}

func box(r *recorder, name string) *Geometry {
	return NewShape(name, r.Library(), assets.UnitBox(), nil)
}

func requireViolation(t *testing.T, op string, fn func()) {
	t.Helper()
	defer func() {
		rec := recover()
		require.NotNil(t, rec, "expected a contract violation")
		err, ok := rec.(*core.ContractError)
		require.True(t, ok, "panic value %v is not a contract error", rec)
		assert.Equal(t, op, err.Op)
	}()
	fn()
}

func TestWorldTransformComposesAncestors(t *testing.T) {
	s := NewScene("root", newRecorder(t))
	a := NewNodeGroup("a")
	b := NewNodeGroup("b")
	c := NewSpatialNode("c")
	s.AddChild(a)
	a.AddChild(b)
	b.AddChild(c)

	s.SetTransform(math.NewMat4Translation(math.NewVec3(1, 0, 0)))
	a.SetTransform(math.NewMat4EulerZ(math32.Pi / 3))
	b.SetTransform(math.NewMat4Scale(math.NewVec3(2, 2, 2)))
	c.SetTransform(math.NewMat4Translation(math.NewVec3(0, 1, 0)))

	assert.True(t, s.WorldTransform().Compare(s.Transform(), tolerance))
	for _, n := range []*SpatialNode{&a.SpatialNode, &b.SpatialNode, c} {
		want := n.Transform().Mul(n.Parent().WorldTransform())
		assert.True(t, n.WorldTransform().Compare(want, tolerance), "node %s", n.Name())
	}

	// A change high up the tree shows through on the next read.
	a.SetTransform(math.NewMat4Translation(math.NewVec3(0, 0, 5)))
	assert.True(t, c.WorldTransform().Position().Compare(math.NewVec3(1, 2, 5), tolerance))
}

func TestActivationRegistersEveryRenderableOnce(t *testing.T) {
	rec := newRecorder(t)
	s := NewScene("root", rec)
	group := NewNodeGroup("group")
	cam := NewOrthographicCamera("cam", 2, 0.1, 10)
	light := NewDirectionalLight("sun", math.NewVec3One(), 1)
	inner := box(rec, "inner")
	outer := box(rec, "outer")
	group.AddChild(cam)
	group.AddChild(light)
	group.AddChild(inner)
	s.AddChild(group)
	s.AddChild(outer)

	assert.Empty(t, rec.calls)
	assert.Equal(t, StateAttachedInactive, inner.State())
	assert.Equal(t, renderer.InvalidHandle, inner.Handle())

	s.Activate()
	assert.Equal(t, []string{"add_camera", "add_light", "add_geometry", "add_geometry"}, rec.ops())
	for _, h := range []renderer.Handle{cam.Handle(), light.Handle(), inner.Handle(), outer.Handle()} {
		assert.NotEqual(t, renderer.InvalidHandle, h)
	}
	assert.Equal(t, StateAttachedActive, inner.State())
	first := inner.Handle()

	rec.calls = nil
	s.Deactivate()
	assert.Equal(t, []string{"remove_geometry", "remove_geometry", "remove_light", "remove_camera"}, rec.ops())
	assert.Equal(t, renderer.InvalidHandle, inner.Handle())
	stats := rec.Stats()
	assert.Zero(t, stats.Cameras)
	assert.Zero(t, stats.Lights)
	assert.Zero(t, stats.Geometry)

	s.Activate()
	assert.NotEqual(t, first, inner.Handle())
	assert.Equal(t, 2, rec.Stats().Geometry)
}

func TestInactiveChangesAppearOnActivation(t *testing.T) {
	rec := newRecorder(t)
	s := NewScene("root", rec)
	s.Activate()

	light := NewPointLight("lamp", math.NewVec3(1, 0, 0), 2, 10)
	light.SetColour(math.NewVec3(0, 1, 0))
	light.SetTransform(math.NewMat4Translation(math.NewVec3(1, 2, 3)))

	group := NewNodeGroup("group")
	geom := box(rec, "box")
	group.AddChild(geom)
	group.SetTransform(math.NewMat4Translation(math.NewVec3(0, 0, -4)))
	assert.Empty(t, rec.calls)

	s.AddChild(light)
	s.AddChild(group)

	params, ok := rec.Light(light.Handle())
	require.True(t, ok)
	assert.Equal(t, math.NewVec3(0, 1, 0), params.Colour)
	assert.Equal(t, float32(2), params.Intensity)
	assert.True(t, params.Position.Compare(math.NewVec3(1, 2, 3), tolerance))

	g, ok := rec.Geometry(geom.Handle())
	require.True(t, ok)
	assert.True(t, g.Transform.Position().Compare(math.NewVec3(0, 0, -4), tolerance))
	assert.Same(t, geom.Material(), g.Material)
}

func TestActiveChangesArePushed(t *testing.T) {
	rec := newRecorder(t)
	s := NewScene("root", rec)
	group := NewNodeGroup("group")
	geom := box(rec, "box")
	cam := NewPerspectiveCamera("cam", 90, 0.1, 100)
	group.AddChild(geom)
	s.AddChild(group)
	s.AddChild(cam)
	s.Activate()
	rec.calls = nil

	group.SetTransform(math.NewMat4Translation(math.NewVec3(0, 5, 0)))
	assert.Equal(t, []string{"update_geometry"}, rec.ops())
	g, _ := rec.Geometry(geom.Handle())
	assert.True(t, g.Transform.Position().Compare(math.NewVec3(0, 5, 0), tolerance))

	cam.SetTransform(math.NewMat4Translation(math.NewVec3(0, 0, 5)))
	c, ok := rec.Camera(cam.Handle())
	require.True(t, ok)
	assert.True(t, c.View.Compare(math.NewMat4Translation(math.NewVec3(0, 0, -5)), tolerance))
	assert.True(t, c.Position.Compare(math.NewVec3(0, 0, 5), tolerance))

	cam.SetPerspective(60, 0.5, 50)
	c, _ = rec.Camera(cam.Handle())
	assert.InDelta(t, math.DegToRad(60), c.FOV, tolerance)
	assert.Equal(t, float32(0.5), c.Near)

	rec.calls = nil
	mat := assets.NewMaterial("red")
	geom.SetMaterial(mat)
	geom.SetMaterial(nil)
	assert.Equal(t, []string{"update_geometry", "update_geometry"}, rec.ops())
	g, _ = rec.Geometry(geom.Handle())
	assert.NotNil(t, g.Material)
	assert.NotSame(t, mat, g.Material)
}

func TestSceneRendersEndToEnd(t *testing.T) {
	rec := newRecorder(t)
	s := NewScene("root", rec)
	cam := NewPerspectiveCamera("cam", 90, 0.1, 100)
	cam.SetPosition(math.NewVec3(0, 0, 5))
	geom := box(rec, "box")
	s.AddChild(cam)
	s.AddChild(geom)

	s.Activate()
	require.NoError(t, s.Render())
	assert.NotEqual(t, renderer.InvalidHandle, geom.Handle())
	assert.Len(t, rec.device.Draws(), 1)
	assert.Equal(t, assets.NewDefaultMaterial().DiffuseColour(), geom.Material().DiffuseColour())

	s.RemoveChild(geom)
	assert.Equal(t, 1, rec.count("remove_geometry"))
	assert.Equal(t, renderer.InvalidHandle, geom.Handle())
	assert.Equal(t, StateDetached, geom.State())
	assert.Zero(t, rec.Stats().Geometry)
}

func TestDestroyHonoursOwnership(t *testing.T) {
	rec := newRecorder(t)
	s := NewScene("root", rec)
	group := NewNodeGroup("group")
	owned := box(rec, "owned")
	borrowed := box(rec, "borrowed")
	group.AddChild(owned)
	group.AttachChild(borrowed)
	s.AddChild(group)
	s.Activate()

	o, ok := group.Ownership(borrowed)
	require.True(t, ok)
	assert.Equal(t, Borrowed, o)

	group.Destroy()
	assert.True(t, group.IsDestroyed())
	assert.True(t, owned.IsDestroyed())
	assert.False(t, borrowed.IsDestroyed())
	assert.Nil(t, borrowed.Parent())
	assert.Equal(t, StateDetached, borrowed.State())
	assert.Empty(t, s.Children())
	assert.Equal(t, 2, rec.count("remove_geometry"))

	// The borrowed node is free to join another tree.
	s.AddChild(borrowed)
	assert.NotEqual(t, renderer.InvalidHandle, borrowed.Handle())
}

func TestSceneDestroyReleasesRenderer(t *testing.T) {
	rec := newRecorder(t)
	s := NewScene("root", rec)
	cam := NewOrthographicCamera("cam", 2, 0.1, 10)
	s.AddChild(cam)
	s.Activate()

	s.Destroy()
	assert.Equal(t, 1, rec.destroyed)
	assert.Equal(t, 1, rec.count("remove_camera"))
	assert.True(t, cam.IsDestroyed())

	s.Destroy()
	assert.Equal(t, 1, rec.destroyed)
}

func TestUpdateReachesEveryNode(t *testing.T) {
	rec := newRecorder(t)
	s := NewScene("root", rec)
	group := NewNodeGroup("group")
	geom := box(rec, "box")
	group.AddChild(geom)
	s.AddChild(group)

	var seen []Node
	hook := func(n Node, dt float64) {
		assert.Equal(t, 0.5, dt)
		seen = append(seen, n)
	}
	s.OnUpdate = hook
	group.OnUpdate = hook
	geom.OnUpdate = hook

	s.Update(0.5)
	require.Len(t, seen, 3)
	assert.Same(t, group, seen[1])
	assert.Same(t, geom, seen[2])
}

func TestBoundsUnionChildren(t *testing.T) {
	rec := newRecorder(t)
	s := NewScene("root", rec)
	left := box(rec, "left")
	right := box(rec, "right")
	left.SetTransform(math.NewMat4Translation(math.NewVec3(-2, 0, 0)))
	right.SetTransform(math.NewMat4Translation(math.NewVec3(3, 0, 0)))
	s.AddChild(left)
	s.AddChild(right)
	s.AddChild(NewSpatialNode("empty"))

	b, ok := s.Bounds()
	require.True(t, ok)
	assert.InDelta(t, -2.5, b.Min.X, tolerance)
	assert.InDelta(t, 3.5, b.Max.X, tolerance)

	_, ok = NewNodeGroup("none").Bounds()
	assert.False(t, ok)
}

func TestCameraFlyHelpers(t *testing.T) {
	cam := NewPerspectiveCamera("cam", 90, 0.1, 100)
	cam.MoveForward(2)
	assert.True(t, cam.Position().Compare(math.NewVec3(0, 0, -2), tolerance))
	assert.True(t, cam.Params().Position.Compare(math.NewVec3(0, 0, -2), tolerance))

	cam.Yaw(math32.Pi / 2)
	assert.True(t, cam.Forward().Compare(math.NewVec3(-1, 0, 0), tolerance))
	cam.MoveForward(1)
	assert.True(t, cam.Position().Compare(math.NewVec3(-1, 0, -2), tolerance))
	cam.MoveUp(3)
	assert.InDelta(t, 3, cam.Params().Position.Y, tolerance)

	cam.Pitch(10)
	assert.Equal(t, pitchLimit, cam.EulerRotation().X)
}

func TestLightDirectionFollowsTransform(t *testing.T) {
	group := NewNodeGroup("group")
	light := NewSpotLight("spot", math.NewVec3One(), 1, 20, 30)
	group.AddChild(light)
	group.SetTransform(math.NewMat4EulerY(math32.Pi / 2))

	p := light.Params()
	assert.True(t, p.Direction.Compare(math.NewVec3(-1, 0, 0), tolerance))
	assert.InDelta(t, math.DegToRad(30), p.SpotAngle, tolerance)
	assert.Equal(t, renderer.LightSpot, p.Kind)
}

func TestContractViolations(t *testing.T) {
	rec := newRecorder(t)

	t.Run("child already parented", func(t *testing.T) {
		a, b := NewNodeGroup("a"), NewNodeGroup("b")
		n := NewSpatialNode("n")
		a.AddChild(n)
		requireViolation(t, "NodeGroup.AddChild", func() { b.AddChild(n) })
	})
	t.Run("destroyed child", func(t *testing.T) {
		n := NewSpatialNode("n")
		n.Destroy()
		requireViolation(t, "NodeGroup.AttachChild", func() { NewNodeGroup("g").AttachChild(n) })
	})
	t.Run("cycle", func(t *testing.T) {
		a, b := NewNodeGroup("a"), NewNodeGroup("b")
		a.AddChild(b)
		requireViolation(t, "NodeGroup.AddChild", func() { b.AddChild(a) })
		requireViolation(t, "NodeGroup.AddChild", func() { a.AddChild(a) })
	})
	t.Run("scene as child", func(t *testing.T) {
		s := NewScene("root", rec)
		requireViolation(t, "NodeGroup.AddChild", func() { NewNodeGroup("g").AddChild(&s.NodeGroup) })
	})
	t.Run("remove stranger", func(t *testing.T) {
		requireViolation(t, "NodeGroup.RemoveChild", func() { NewNodeGroup("g").RemoveChild(NewSpatialNode("n")) })
	})
	t.Run("double activation", func(t *testing.T) {
		s := NewScene("root", newRecorder(t))
		s.Activate()
		requireViolation(t, "SpatialNode.Activate", s.Activate)
	})
	t.Run("geometry without mesh", func(t *testing.T) {
		requireViolation(t, "NewGeometry", func() { NewGeometry("g", nil, nil) })
	})
	t.Run("nil mesh update", func(t *testing.T) {
		g := box(rec, "g")
		requireViolation(t, "Geometry.SetMesh", func() { g.SetMesh(nil) })
	})
	t.Run("scene without renderer", func(t *testing.T) {
		requireViolation(t, "NewScene", func() { NewScene("root", nil) })
	})
}
