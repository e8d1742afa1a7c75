package renderer

import (
	"io"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/vista/engine/assets"
	"github.com/spaghettifunk/vista/engine/core"
	"github.com/spaghettifunk/vista/engine/gpu"
	"github.com/spaghettifunk/vista/engine/gpu/software"
	"github.com/spaghettifunk/vista/engine/math"
	"github.com/spaghettifunk/vista/engine/resources"
)

func init() {
	core.SetLogOutput(io.Discard)
}

const tolerance = 1e-5

func newRenderer(t *testing.T, dev *software.Device, passes []PassConfig) *Renderer {
	t.Helper()
	r, err := New(dev, Options{Passes: passes, Width: 4, Height: 4})
	require.NoError(t, err)
	return r
}

// screenPlane covers the whole view of orthoCamera.
func screenPlane(r *Renderer) *assets.Mesh {
	return r.Library().Get(assets.ShapeDescriptor{Kind: assets.ShapePlane, Size: math.NewVec3(2, 2, 0)})
}

func orthoCamera() CameraParams {
	return CameraParams{
		Projection: ProjectionOrthographic,
		Height:     2,
		Near:       0.1,
		Far:        10,
		View:       math.NewMat4Identity(),
	}
}

func geometryAt(mesh *assets.Mesh, z float32) GeometryParams {
	return GeometryParams{
		Transform: math.NewMat4Translation(math.NewVec3(0, 0, z)),
		Mesh:      mesh,
		Material:  assets.NewDefaultMaterial(),
	}
}

func directional(colour math.Vec3) LightParams {
	return LightParams{Kind: LightDirectional, Colour: colour, Intensity: 1, Direction: math.NewVec3(0, 0, -1)}
}

func assertEveryPixel(t *testing.T, dev *software.Device, want math.Vec3) {
	t.Helper()
	w, h := dev.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			got := dev.Pixel(x, y).ToVec3()
			assert.True(t, got.Compare(want, tolerance), "pixel %d,%d = %v, want %v", x, y, got, want)
		}
	}
}

func TestAdditiveMultipassSumsLightLayers(t *testing.T) {
	dev := software.New(software.WithClearColour(math.NewVec4(0.5, 0.5, 0.5, 1)))
	r := newRenderer(t, dev, []PassConfig{{
		Name:   "lit",
		Mode:   ModePerLightPerGeometry,
		Shader: gpu.ProgramLit,
		Depth:  DepthReadWrite,
		Blend:  BlendAdditiveMultipass,
	}})
	r.AddCamera(orthoCamera())
	r.AddGeometry(geometryAt(screenPlane(r), -1))
	r.AddLight(directional(math.NewVec3(0.1, 0, 0)))
	r.AddLight(directional(math.NewVec3(0, 0.2, 0)))
	r.AddLight(directional(math.NewVec3(0, 0, 0.3)))

	require.NoError(t, r.Execute())

	draws := dev.Draws()
	require.Len(t, draws, 3)
	assert.Equal(t, gpu.BlendNone, draws[0].Blend)
	assert.Equal(t, gpu.BlendAdditive, draws[1].Blend)
	assert.Equal(t, gpu.BlendAdditive, draws[2].Blend)
	for i, d := range draws {
		assert.Equal(t, int32(i), d.Uniforms[gpu.UniformLightIndex])
	}
	// the clear colour is overwritten by the first layer, not blended with it
	assertEveryPixel(t, dev, math.NewVec3(0.1, 0.2, 0.3))
}

func TestPerGeometryPerLightRestartsLayersPerGeometry(t *testing.T) {
	dev := software.New()
	r := newRenderer(t, dev, []PassConfig{{
		Name:   "lit",
		Mode:   ModePerGeometryPerLight,
		Shader: gpu.ProgramLit,
		Depth:  DepthReadWrite,
		Blend:  BlendAdditiveMultipass,
	}})
	r.AddCamera(orthoCamera())
	plane := screenPlane(r)
	near := r.AddGeometry(geometryAt(plane, -1))
	far := r.AddGeometry(geometryAt(plane, -2))
	r.AddLight(directional(math.NewVec3(0.25, 0, 0)))
	r.AddLight(directional(math.NewVec3(0, 0.5, 0)))
	assert.Less(t, near, far)

	require.NoError(t, r.Execute())

	draws := dev.Draws()
	require.Len(t, draws, 4)
	blends := []gpu.BlendState{draws[0].Blend, draws[1].Blend, draws[2].Blend, draws[3].Blend}
	assert.Equal(t, []gpu.BlendState{gpu.BlendNone, gpu.BlendAdditive, gpu.BlendNone, gpu.BlendAdditive}, blends)
	assertEveryPixel(t, dev, math.NewVec3(0.25, 0.5, 0))
}

func TestNestedModesWithoutLightsDrawNothing(t *testing.T) {
	dev := software.New(software.WithClearColour(math.NewVec4(0.2, 0.2, 0.2, 1)))
	r := newRenderer(t, dev, ForwardAdditivePasses())
	r.AddCamera(orthoCamera())
	r.AddGeometry(geometryAt(screenPlane(r), -1))

	require.NoError(t, r.Execute())

	require.Len(t, dev.Draws(), 1, "only the depth prepass draws")
	assert.Equal(t, gpu.ProgramDepth, dev.Draws()[0].Program)
	assertEveryPixel(t, dev, math.NewVec3(0.2, 0.2, 0.2))
}

func TestForwardAdditivePreset(t *testing.T) {
	dev := software.New()
	r := newRenderer(t, dev, ForwardAdditivePasses())
	r.AddCamera(orthoCamera())
	r.AddGeometry(geometryAt(screenPlane(r), -1))
	r.AddLight(directional(math.NewVec3(0.5, 0.25, 0.125)))

	require.NoError(t, r.Execute())

	require.Len(t, dev.Draws(), 2)
	assert.Equal(t, gpu.DepthState{Test: true}, dev.Draws()[1].Depth)
	assertEveryPixel(t, dev, math.NewVec3(0.5, 0.25, 0.125))
}

func TestDeferredPreset(t *testing.T) {
	dev := software.New()
	r := newRenderer(t, dev, DeferredPasses())
	r.AddCamera(orthoCamera())
	r.AddGeometry(geometryAt(screenPlane(r), -1))
	r.AddLight(directional(math.NewVec3(0.25, 0, 0)))
	r.AddLight(directional(math.NewVec3(0, 0.5, 0)))

	require.NoError(t, r.Execute())

	draws := dev.Draws()
	require.Len(t, draws, 4)
	assert.Equal(t, []string{"mesh", "fullscreen", "fullscreen", "fullscreen"}, drawKinds(draws))
	assert.Equal(t, gpu.BlendNone, draws[1].Blend)
	assert.Equal(t, gpu.BlendAdditive, draws[2].Blend)
	assert.Equal(t, gpu.BlendAdditive, draws[3].Blend)
	assertEveryPixel(t, dev, math.NewVec3(0.3, 0.55, 0.05))
}

// The full-view camera sees the red plane in front. The inset camera's near
// plane cuts the red plane away, so it must see the green one behind it.
func TestEachCameraGetsItsOwnDepthAndGBuffer(t *testing.T) {
	cases := map[string]struct {
		passes []PassConfig
		scale  float32
	}{
		"forward":          {passes: ForwardPasses(), scale: 1},
		"forward additive": {passes: ForwardAdditivePasses(), scale: 1},
		"deferred":         {passes: DeferredPasses(), scale: 1.05},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			dev := software.New()
			r := newRenderer(t, dev, tc.passes)
			plane := screenPlane(r)

			red := geometryAt(plane, -1)
			red.Material = assets.NewDefaultMaterial()
			red.Material.SetDiffuseColour(math.NewVec4(1, 0, 0, 1))
			green := geometryAt(plane, -3)
			green.Material = assets.NewDefaultMaterial()
			green.Material.SetDiffuseColour(math.NewVec4(0, 1, 0, 1))
			r.AddGeometry(red)
			r.AddGeometry(green)
			r.AddLight(directional(math.NewVec3One()))

			r.AddCamera(orthoCamera())
			inset := orthoCamera()
			inset.Near = 1.5
			inset.Viewport = math.Rect{X: 0.5, Y: 0.5, Width: 0.5, Height: 0.5}
			r.AddCamera(inset)

			require.NoError(t, r.Execute())

			for y := 0; y < 4; y++ {
				for x := 0; x < 4; x++ {
					want := math.NewVec3(tc.scale, 0, 0)
					if x >= 2 && y >= 2 {
						want = math.NewVec3(0, tc.scale, 0)
					}
					got := dev.Pixel(x, y).ToVec3()
					assert.True(t, got.Compare(want, tolerance), "pixel %d,%d = %v, want %v", x, y, got, want)
				}
			}
		})
	}
}

func drawKinds(draws []software.Draw) []string {
	out := make([]string, len(draws))
	for i, d := range draws {
		if d.Kind == software.DrawKindMesh {
			out[i] = "mesh"
		} else {
			out[i] = "fullscreen"
		}
	}
	return out
}

func TestMaterialSlotsUseFallbacks(t *testing.T) {
	dev := software.New()
	r := newRenderer(t, dev, nil)
	r.AddCamera(orthoCamera())
	r.AddGeometry(geometryAt(screenPlane(r), -1))
	require.NoError(t, r.Execute())

	white, err := r.Cache().Fallback(resources.FallbackWhite)
	require.NoError(t, err)
	black, err := r.Cache().Fallback(resources.FallbackBlack)
	require.NoError(t, err)
	normal, err := r.Cache().Fallback(resources.FallbackNormal)
	require.NoError(t, err)

	textures := dev.Draws()[0].Textures
	assert.Equal(t, white, textures[gpu.TextureDiffuse])
	assert.Equal(t, black, textures[gpu.TextureSpecular])
	assert.Equal(t, normal, textures[gpu.TextureNormal])
	assertEveryPixel(t, dev, math.NewVec3One())
}

func TestZeroCamerasIsANoOp(t *testing.T) {
	dev := software.New()
	r := newRenderer(t, dev, nil)
	r.AddGeometry(geometryAt(screenPlane(r), -1))

	require.NoError(t, r.Execute())
	assert.Empty(t, dev.Draws())
	assert.Equal(t, 1, dev.Frames())
	assert.Equal(t, uint64(1), r.Stats().Frames)
}

func TestExecuteCollectsOncePerFrame(t *testing.T) {
	dev := software.New()
	r, err := New(dev, Options{Cache: resources.Config{MaxAge: 2}, Width: 4, Height: 4})
	require.NoError(t, err)
	cam := r.AddCamera(orthoCamera())
	r.AddGeometry(geometryAt(screenPlane(r), -1))

	require.NoError(t, r.Execute())
	assert.Equal(t, uint64(1), r.Stats().Cache.Collections)
	assert.Equal(t, 1, r.Cache().Len())

	r.RemoveCamera(cam)
	require.NoError(t, r.Execute())
	assert.Equal(t, uint64(2), r.Stats().Cache.Collections)
	assert.Zero(t, r.Cache().Len(), "unreferenced mesh ages out after two frames")
}

func TestExecuteCollectsEvenWhenAFrameFails(t *testing.T) {
	dev := software.New()
	r := newRenderer(t, dev, nil)
	r.AddCamera(orthoCamera())
	r.AddGeometry(geometryAt(screenPlane(r), -1))
	dev.FailUploads(1)

	err := r.Execute()
	assert.ErrorIs(t, err, core.ErrResourceCreate)
	assert.Equal(t, uint64(1), r.Stats().Cache.Collections)
	assert.Equal(t, 1, dev.Frames(), "the device frame is still ended")

	require.NoError(t, r.Execute())
	assert.Equal(t, uint64(2), r.Stats().Cache.Collections)
}

func TestPerspectiveUsesVerticalFOVFromHorizontal(t *testing.T) {
	r := newRenderer(t, software.New(), nil)
	r.Resize(1600, 900)
	cam := CameraParams{FOV: math.DegToRad(90), Near: 0.1, Far: 100, View: math.NewMat4Identity()}

	fc := r.frameCamera(cam)
	aspect := float32(16) / 9
	vfov := math32.Atan(math32.Tan(math.DegToRad(45)) / aspect)
	want := math.NewMat4Perspective(vfov, aspect, 0.1, 100)
	assert.True(t, fc.Projection.Compare(want, tolerance))
	assert.Equal(t, [4]uint32{0, 0, 1600, 900}, fc.Viewport)
}

func TestCameraViewportIsNormalized(t *testing.T) {
	r := newRenderer(t, software.New(), nil)
	r.Resize(200, 100)
	cam := orthoCamera()
	cam.Viewport = math.Rect{X: 0.5, Y: 0, Width: 0.5, Height: 1}

	fc := r.frameCamera(cam)
	assert.Equal(t, [4]uint32{100, 0, 100, 100}, fc.Viewport)
	assert.True(t, fc.Projection.Compare(math.NewMat4Orthographic(-1, 1, -1, 1, 0.1, 10), tolerance))
}

func TestHandlesAreUniqueAcrossKinds(t *testing.T) {
	r := newRenderer(t, software.New(), nil)
	c := r.AddCamera(orthoCamera())
	l := r.AddLight(directional(math.NewVec3One()))
	g := r.AddGeometry(geometryAt(screenPlane(r), -1))
	r.RemoveLight(l)
	l2 := r.AddLight(directional(math.NewVec3One()))

	assert.NotEqual(t, InvalidHandle, c)
	assert.Less(t, c, l)
	assert.Less(t, l, g)
	assert.Less(t, g, l2)
}

func TestContractViolations(t *testing.T) {
	r := newRenderer(t, software.New(), nil)
	mesh := screenPlane(r)
	g := r.AddGeometry(geometryAt(mesh, -1))
	r.RemoveGeometry(g)

	cases := map[string]func(){
		"double remove":  func() { r.RemoveGeometry(g) },
		"update removed": func() { r.UpdateGeometry(g, geometryAt(mesh, -1)) },
		"nil mesh":       func() { r.AddGeometry(GeometryParams{Material: assets.NewDefaultMaterial()}) },
		"nil material":   func() { r.AddGeometry(GeometryParams{Mesh: mesh}) },
		"unknown camera": func() { r.UpdateCamera(99, orthoCamera()) },
		"unknown light":  func() { r.RemoveLight(99) },
		"remove camera twice": func() {
			c := r.AddCamera(orthoCamera())
			r.RemoveCamera(c)
			r.RemoveCamera(c)
		},
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Panics(t, fn)
		})
	}
}

func TestTablesCannotChangeDuringExecute(t *testing.T) {
	var r *Renderer
	dev := software.New(software.WithShader("mutate", func(*software.Fragment) (math.Vec4, bool) {
		r.AddLight(directional(math.NewVec3One()))
		return math.Vec4{}, false
	}))
	r = newRenderer(t, dev, []PassConfig{{Name: "mutate", Mode: ModeFullscreenOnce, Shader: "mutate"}})
	r.AddCamera(orthoCamera())

	defer func() {
		err, ok := recover().(*core.ContractError)
		require.True(t, ok)
		assert.Equal(t, "Pipeline.AddLight", err.Op)
		assert.False(t, r.Pipeline().executing)
	}()
	_ = r.Execute()
}

func TestFailedPassLeavesNothingBehind(t *testing.T) {
	dev := software.New()
	dev.FailProgram(gpu.ProgramLit)

	_, err := New(dev, Options{Passes: ForwardAdditivePasses(), Width: 4, Height: 4})
	assert.ErrorIs(t, err, core.ErrShaderCompile)
	assert.Zero(t, dev.Programs())
	assert.Zero(t, dev.Live())
}

func TestInvalidPassConfig(t *testing.T) {
	_, err := New(software.New(), Options{Passes: []PassConfig{{Name: "empty", Mode: ModePerGeometry}}})
	assert.ErrorIs(t, err, core.ErrInvalidConfig)

	_, err = New(software.New(), Options{Passes: []PassConfig{{
		Name:   "params",
		Shader: gpu.ProgramAmbient,
		Params: map[string]any{gpu.UniformAmbient: "bright"},
	}}})
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestPassParamsAreConverted(t *testing.T) {
	dev := software.New()
	r := newRenderer(t, dev, []PassConfig{{
		Name:   "ambient",
		Mode:   ModeFullscreenOnce,
		Shader: gpu.ProgramAmbient,
		Params: map[string]any{
			gpu.UniformAmbient: []any{int64(1), 0.5, 0},
			"u_scale":          2.0,
		},
	}})
	r.AddCamera(orthoCamera())
	require.NoError(t, r.Execute())

	u := dev.Draws()[0].Uniforms
	assert.Equal(t, math.NewVec3(1, 0.5, 0), u[gpu.UniformAmbient])
	assert.Equal(t, float32(2), u["u_scale"])
}

func TestDestroyReleasesEverything(t *testing.T) {
	dev := software.New()
	r := newRenderer(t, dev, DeferredPasses())
	r.AddCamera(orthoCamera())
	r.AddGeometry(geometryAt(screenPlane(r), -1))
	require.NoError(t, r.Execute())
	require.NotZero(t, dev.Live())

	r.Destroy()
	r.Destroy()
	assert.Zero(t, dev.Live())
	assert.Zero(t, dev.Programs())
	assert.Zero(t, r.Library().Len())
	assert.Panics(t, func() { _ = r.Execute() })
}

func TestEnumsParseFromText(t *testing.T) {
	var m PassMode
	require.NoError(t, m.UnmarshalText([]byte("per_light_per_geometry")))
	assert.Equal(t, ModePerLightPerGeometry, m)
	assert.Equal(t, "per_light_per_geometry", m.String())

	var b BlendPolicy
	require.NoError(t, b.UnmarshalText([]byte(" Additive_Multipass ")))
	assert.Equal(t, BlendAdditiveMultipass, b)

	var d DepthPolicy
	assert.ErrorIs(t, d.UnmarshalText([]byte("sometimes")), core.ErrInvalidConfig)

	_, ok := Preset("deferred")
	assert.True(t, ok)
	_, ok = Preset("raytraced")
	assert.False(t, ok)
}
