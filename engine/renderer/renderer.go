// Package renderer turns registered cameras, lights and geometry into draws.
// A Renderer owns a Pipeline, a resources.Cache and a shape Library, and is
// driven through opaque handles.
package renderer

import (
	"errors"

	"github.com/spaghettifunk/vista/engine/assets"
	"github.com/spaghettifunk/vista/engine/containers"
	"github.com/spaghettifunk/vista/engine/core"
	"github.com/spaghettifunk/vista/engine/gpu"
	"github.com/spaghettifunk/vista/engine/math"
	"github.com/spaghettifunk/vista/engine/resources"
)

type Options struct {
	// Passes defaults to ForwardPasses.
	Passes []PassConfig
	// A zero MaxAge uses resources.DefaultMaxAge.
	Cache  resources.Config
	Width  uint32
	Height uint32
}

type Stats struct {
	Frames   uint64
	Draws    int
	Cameras  int
	Lights   int
	Geometry int
	Cache    resources.Stats
}

// Renderer is the handle based facade over the pipeline. Cameras, lights and
// geometry share one handle sequence.
//
// A Renderer must only be used from the render thread.
type Renderer struct {
	device    gpu.Device
	pipeline  *Pipeline
	cache     *resources.Cache
	library   *assets.Library
	cameras   *containers.OrderedTable[Handle, CameraParams]
	width     uint32
	height    uint32
	frames    uint64
	destroyed bool
}

// New builds the pipeline and cache. Nothing is kept when a pass fails to
// compile.
func New(device gpu.Device, opts Options) (*Renderer, error) {
	if device == nil {
		return nil, core.Errorf(core.ErrInvalidConfig, "renderer needs a device")
	}
	passes := opts.Passes
	if len(passes) == 0 {
		passes = ForwardPasses()
	}
	cacheCfg := opts.Cache
	if cacheCfg.MaxAge == 0 {
		cacheCfg = resources.DefaultConfig()
	}
	cache, err := resources.NewCache(device, cacheCfg)
	if err != nil {
		return nil, err
	}
	pipeline, err := NewPipeline(device, cache, passes...)
	if err != nil {
		cache.Destroy()
		return nil, err
	}
	core.LogInfo("renderer created with %d passes at %dx%d", len(passes), opts.Width, opts.Height)
	return &Renderer{
		device:   device,
		pipeline: pipeline,
		cache:    cache,
		library:  assets.NewLibrary(),
		cameras:  containers.NewOrderedTable[Handle, CameraParams](),
		width:    opts.Width,
		height:   opts.Height,
	}, nil
}

func (r *Renderer) Pipeline() *Pipeline {
	return r.pipeline
}

func (r *Renderer) Cache() *resources.Cache {
	return r.cache
}

// Library is the shape mesh cache owned by this renderer.
func (r *Renderer) Library() *assets.Library {
	return r.library
}

func (r *Renderer) Size() (uint32, uint32) {
	return r.width, r.height
}

// Resize sets the surface size used for viewports and aspect ratios.
func (r *Renderer) Resize(width, height uint32) {
	r.width, r.height = width, height
	core.LogDebug("renderer resized to %dx%d", width, height)
}

func (r *Renderer) AddCamera(c CameraParams) Handle {
	r.pipeline.mutating("Renderer.AddCamera")
	h := Handle(r.pipeline.handles.Next())
	r.cameras.Put(h, c)
	return h
}

func (r *Renderer) UpdateCamera(h Handle, c CameraParams) {
	r.pipeline.mutating("Renderer.UpdateCamera")
	if !r.cameras.Has(h) {
		core.Violation("Renderer.UpdateCamera", "unknown camera handle %d", h)
	}
	r.cameras.Put(h, c)
}

func (r *Renderer) RemoveCamera(h Handle) {
	r.pipeline.mutating("Renderer.RemoveCamera")
	if !r.cameras.Delete(h) {
		core.Violation("Renderer.RemoveCamera", "unknown camera handle %d", h)
	}
}

func (r *Renderer) Camera(h Handle) (CameraParams, bool) {
	return r.cameras.Get(h)
}

func (r *Renderer) AddLight(l LightParams) Handle {
	return r.pipeline.AddLight(l)
}

func (r *Renderer) UpdateLight(h Handle, l LightParams) {
	r.pipeline.UpdateLight(h, l)
}

func (r *Renderer) RemoveLight(h Handle) {
	r.pipeline.RemoveLight(h)
}

func (r *Renderer) Light(h Handle) (LightParams, bool) {
	return r.pipeline.Light(h)
}

func (r *Renderer) AddGeometry(g GeometryParams) Handle {
	return r.pipeline.AddGeometry(g)
}

func (r *Renderer) UpdateGeometry(h Handle, g GeometryParams) {
	r.pipeline.UpdateGeometry(h, g)
}

func (r *Renderer) RemoveGeometry(h Handle) {
	r.pipeline.RemoveGeometry(h)
}

func (r *Renderer) Geometry(h Handle) (GeometryParams, bool) {
	return r.pipeline.Geometry(h)
}

// Execute draws one frame: the pipeline runs once per camera in handle
// order, each camera starting from cleared depth inside its viewport. The
// cache is collected exactly once per call, whatever the outcome.
func (r *Renderer) Execute() error {
	if r.destroyed {
		core.Violation("Renderer.Execute", "renderer is destroyed")
	}
	defer r.cache.Collect()

	if err := r.device.BeginFrame(r.width, r.height); err != nil {
		return err
	}
	r.pipeline.draws = 0
	var execErr error
	r.cameras.Each(func(_ Handle, c CameraParams) bool {
		execErr = r.executeCamera(r.frameCamera(c))
		return execErr == nil
	})
	if execErr != nil {
		core.LogError("frame %d failed: %s", r.frames, execErr)
	}
	endErr := r.device.EndFrame()
	r.frames++
	return errors.Join(execErr, endErr)
}

// executeCamera gives each camera its own depth and geometry buffer inside
// its viewport, then runs the pipeline.
func (r *Renderer) executeCamera(fc FrameCamera) error {
	r.device.SetViewport(fc.Viewport[0], fc.Viewport[1], fc.Viewport[2], fc.Viewport[3])
	if err := r.device.ClearTargets(true, true); err != nil {
		return err
	}
	return r.pipeline.Execute(fc)
}

func (r *Renderer) frameCamera(c CameraParams) FrameCamera {
	vp := c.Viewport
	if vp.Width <= 0 || vp.Height <= 0 {
		vp = math.Rect{Width: 1, Height: 1}
	}
	w, h := float32(r.width), float32(r.height)
	x, y := uint32(vp.X*w), uint32(vp.Y*h)
	pw, ph := uint32(vp.Width*w), uint32(vp.Height*h)
	aspect := float32(1)
	if pw > 0 && ph > 0 {
		aspect = float32(pw) / float32(ph)
	}
	return FrameCamera{
		Projection: c.ProjectionMatrix(aspect),
		View:       c.View,
		Position:   c.Position,
		Viewport:   [4]uint32{x, y, pw, ph},
	}
}

func (r *Renderer) Stats() Stats {
	return Stats{
		Frames:   r.frames,
		Draws:    r.pipeline.draws,
		Cameras:  r.cameras.Len(),
		Lights:   r.pipeline.LightCount(),
		Geometry: r.pipeline.GeometryCount(),
		Cache:    r.cache.Stats(),
	}
}

// Destroy releases the pass programs, every cached resource and the shape
// library. Further calls are no-ops.
func (r *Renderer) Destroy() {
	if r.destroyed {
		return
	}
	r.pipeline.Destroy()
	r.cache.Destroy()
	r.library.Clear()
	r.cameras.Clear()
	r.destroyed = true
	core.LogInfo("renderer destroyed after %d frames", r.frames)
}
