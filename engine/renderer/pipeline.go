package renderer

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/spaghettifunk/vista/engine/assets"
	"github.com/spaghettifunk/vista/engine/containers"
	"github.com/spaghettifunk/vista/engine/core"
	"github.com/spaghettifunk/vista/engine/gpu"
	"github.com/spaghettifunk/vista/engine/math"
	"github.com/spaghettifunk/vista/engine/resources"
)

type pass struct {
	config  PassConfig
	program gpu.ProgramID
	params  map[string]any
}

// Pipeline is an ordered list of passes run against the registered geometry
// and lights. Passes run in the order they were added; tables are walked in
// insertion order. Tables are read live at execution time and must not be
// changed while Execute runs.
//
// A Pipeline must only be used from the render thread.
type Pipeline struct {
	device   gpu.Device
	cache    *resources.Cache
	handles  *core.HandleAllocator
	passes   []*pass
	geometry *containers.OrderedTable[Handle, GeometryParams]
	lights   *containers.OrderedTable[Handle, LightParams]

	executing bool
	draws     int
}

// NewPipeline compiles every pass. When one fails the programs created so
// far are destroyed and the error is returned.
func NewPipeline(device gpu.Device, cache *resources.Cache, passes ...PassConfig) (*Pipeline, error) {
	p := &Pipeline{
		device:   device,
		cache:    cache,
		handles:  core.NewHandleAllocator(),
		geometry: containers.NewOrderedTable[Handle, GeometryParams](),
		lights:   containers.NewOrderedTable[Handle, LightParams](),
	}
	for _, cfg := range passes {
		if err := p.AddPass(cfg); err != nil {
			p.Destroy()
			return nil, err
		}
	}
	return p, nil
}

// AddPass compiles the pass program and appends the pass.
func (p *Pipeline) AddPass(cfg PassConfig) error {
	p.mutating("Pipeline.AddPass")
	if cfg.Shader == "" {
		return core.Errorf(core.ErrInvalidConfig, "pass %q has no shader", cfg.Name)
	}
	if int(cfg.Mode) >= len(passModeNames) || int(cfg.Depth) >= len(depthPolicyNames) || int(cfg.Blend) >= len(blendPolicyNames) {
		return core.Errorf(core.ErrInvalidConfig, "pass %q has an unknown mode, depth or blend policy", cfg.Name)
	}
	params := make(map[string]any, len(cfg.Params))
	for name, v := range cfg.Params {
		u, err := uniformValue(v)
		if err != nil {
			return core.Errorf(core.ErrInvalidConfig, "pass %q parameter %q: %s", cfg.Name, name, err)
		}
		params[name] = u
	}
	program, err := p.device.CreateProgram(gpu.ShaderSource{Name: cfg.Shader})
	if err != nil {
		return fmt.Errorf("pass %q: %w", cfg.Name, err)
	}
	p.passes = append(p.passes, &pass{config: cfg, program: program, params: params})
	core.LogDebug("added pass '%s' (mode %s, shader %s, depth %s, blend %s)", cfg.Name, cfg.Mode, cfg.Shader, cfg.Depth, cfg.Blend)
	return nil
}

func (p *Pipeline) Passes() []PassConfig {
	out := make([]PassConfig, len(p.passes))
	for i, ps := range p.passes {
		out[i] = ps.config
	}
	return out
}

func (p *Pipeline) AddGeometry(g GeometryParams) Handle {
	p.mutating("Pipeline.AddGeometry")
	checkGeometry("Pipeline.AddGeometry", g)
	h := Handle(p.handles.Next())
	p.geometry.Put(h, g)
	return h
}

func (p *Pipeline) UpdateGeometry(h Handle, g GeometryParams) {
	p.mutating("Pipeline.UpdateGeometry")
	checkGeometry("Pipeline.UpdateGeometry", g)
	if !p.geometry.Has(h) {
		core.Violation("Pipeline.UpdateGeometry", "unknown geometry handle %d", h)
	}
	p.geometry.Put(h, g)
}

func (p *Pipeline) RemoveGeometry(h Handle) {
	p.mutating("Pipeline.RemoveGeometry")
	if !p.geometry.Delete(h) {
		core.Violation("Pipeline.RemoveGeometry", "unknown geometry handle %d", h)
	}
}

func (p *Pipeline) Geometry(h Handle) (GeometryParams, bool) {
	return p.geometry.Get(h)
}

func (p *Pipeline) GeometryCount() int {
	return p.geometry.Len()
}

func (p *Pipeline) AddLight(l LightParams) Handle {
	p.mutating("Pipeline.AddLight")
	h := Handle(p.handles.Next())
	p.lights.Put(h, l)
	return h
}

func (p *Pipeline) UpdateLight(h Handle, l LightParams) {
	p.mutating("Pipeline.UpdateLight")
	if !p.lights.Has(h) {
		core.Violation("Pipeline.UpdateLight", "unknown light handle %d", h)
	}
	p.lights.Put(h, l)
}

func (p *Pipeline) RemoveLight(h Handle) {
	p.mutating("Pipeline.RemoveLight")
	if !p.lights.Delete(h) {
		core.Violation("Pipeline.RemoveLight", "unknown light handle %d", h)
	}
}

func (p *Pipeline) Light(h Handle) (LightParams, bool) {
	return p.lights.Get(h)
}

func (p *Pipeline) LightCount() int {
	return p.lights.Len()
}

func checkGeometry(op string, g GeometryParams) {
	if g.Mesh == nil {
		core.Violation(op, "geometry without a mesh")
	}
	if g.Material == nil {
		core.Violation(op, "geometry without a material")
	}
}

func (p *Pipeline) mutating(op string) {
	if p.executing {
		core.Violation(op, "pipeline tables cannot change while the pipeline executes")
	}
}

// Execute runs every pass for one camera. The first failing draw or upload
// stops the pipeline and is returned.
func (p *Pipeline) Execute(cam FrameCamera) error {
	p.executing = true
	defer func() {
		p.executing = false
	}()
	for _, ps := range p.passes {
		if err := p.run(ps, cam); err != nil {
			return fmt.Errorf("pass %q: %w", ps.config.Name, err)
		}
	}
	return nil
}

func (p *Pipeline) run(ps *pass, cam FrameCamera) error {
	d := p.device
	d.UseProgram(ps.program)
	d.SetViewport(cam.Viewport[0], cam.Viewport[1], cam.Viewport[2], cam.Viewport[3])
	d.SetUniform(gpu.UniformProjection, cam.Projection)
	d.SetUniform(gpu.UniformView, cam.View)
	d.SetUniform(gpu.UniformCameraPosition, cam.Position)
	d.SetUniform(gpu.UniformViewport, math.NewVec4(
		float32(cam.Viewport[0]), float32(cam.Viewport[1]), float32(cam.Viewport[2]), float32(cam.Viewport[3]),
	))
	for name, v := range ps.params {
		d.SetUniform(name, v)
	}
	d.SetDepth(depthState(ps.config.Depth))
	d.SetBlend(passBlend(ps.config.Blend))

	switch ps.config.Mode {
	case ModeFullscreenOnce:
		return p.draw(d.DrawFullscreen())

	case ModePerGeometry:
		return p.eachGeometry(func(g GeometryParams) error {
			mesh, err := p.bindGeometry(g)
			if err != nil {
				return err
			}
			return p.draw(d.DrawMesh(mesh))
		})

	case ModePerLight:
		return p.eachLight(func(layer int, l LightParams) error {
			d.SetBlend(layerBlend(ps.config.Blend, layer))
			p.bindLight(layer, l)
			return p.draw(d.DrawFullscreen())
		})

	case ModePerLightPerGeometry:
		return p.eachLight(func(layer int, l LightParams) error {
			d.SetBlend(layerBlend(ps.config.Blend, layer))
			p.bindLight(layer, l)
			return p.eachGeometry(func(g GeometryParams) error {
				mesh, err := p.bindGeometry(g)
				if err != nil {
					return err
				}
				return p.draw(d.DrawMesh(mesh))
			})
		})

	case ModePerGeometryPerLight:
		return p.eachGeometry(func(g GeometryParams) error {
			mesh, err := p.bindGeometry(g)
			if err != nil {
				return err
			}
			return p.eachLight(func(layer int, l LightParams) error {
				d.SetBlend(layerBlend(ps.config.Blend, layer))
				p.bindLight(layer, l)
				return p.draw(d.DrawMesh(mesh))
			})
		})
	}
	return nil
}

func (p *Pipeline) draw(err error) error {
	if err == nil {
		p.draws++
	}
	return err
}

func (p *Pipeline) eachGeometry(fn func(GeometryParams) error) error {
	var err error
	p.geometry.Each(func(_ Handle, g GeometryParams) bool {
		err = fn(g)
		return err == nil
	})
	return err
}

func (p *Pipeline) eachLight(fn func(int, LightParams) error) error {
	var err error
	layer := 0
	p.lights.Each(func(_ Handle, l LightParams) bool {
		err = fn(layer, l)
		layer++
		return err == nil
	})
	return err
}

// bindGeometry resolves the mesh and material maps through the cache, binds
// the per geometry uniforms and returns the mesh to draw.
func (p *Pipeline) bindGeometry(g GeometryParams) (gpu.ResourceID, error) {
	mesh, err := p.cache.UploadMesh(g.Mesh)
	if err != nil {
		return 0, err
	}
	m := g.Material
	slots := [...]struct {
		name     string
		image    *assets.Image
		fallback resources.FallbackKind
	}{
		{gpu.TextureDiffuse, m.DiffuseMap(), resources.FallbackWhite},
		{gpu.TextureSpecular, m.SpecularMap(), resources.FallbackBlack},
		{gpu.TextureNormal, m.NormalMap(), resources.FallbackNormal},
	}
	var textures [len(slots)]gpu.ResourceID
	for i, slot := range slots {
		id, err := p.cache.UploadTexture(slot.image, slot.fallback)
		if err != nil {
			return 0, err
		}
		textures[i] = id
	}

	d := p.device
	d.SetUniform(gpu.UniformModel, g.Transform)
	d.SetUniform(gpu.UniformDiffuseColour, m.DiffuseColour())
	d.SetUniform(gpu.UniformShininess, m.Shininess())
	for i, slot := range slots {
		d.BindTexture(slot.name, textures[i])
	}
	return mesh, nil
}

func (p *Pipeline) bindLight(layer int, l LightParams) {
	d := p.device
	d.SetUniform(gpu.UniformLightIndex, int32(layer))
	d.SetUniform(gpu.UniformLightKind, int32(l.Kind))
	d.SetUniform(gpu.UniformLightColour, l.Colour)
	d.SetUniform(gpu.UniformLightIntensity, l.Intensity)
	d.SetUniform(gpu.UniformLightPosition, l.Position)
	d.SetUniform(gpu.UniformLightDirection, l.Direction)
	d.SetUniform(gpu.UniformLightRange, l.Range)
	d.SetUniform(gpu.UniformLightSpotCos, math32.Cos(l.SpotAngle))
}

// Destroy releases the pass programs. The tables are left untouched.
func (p *Pipeline) Destroy() {
	for _, ps := range p.passes {
		p.device.DestroyProgram(ps.program)
	}
	p.passes = nil
}

func depthState(d DepthPolicy) gpu.DepthState {
	switch d {
	case DepthReadOnly:
		return gpu.DepthState{Test: true}
	case DepthReadWrite:
		return gpu.DepthState{Test: true, Write: true}
	}
	return gpu.DepthState{}
}

// passBlend is the blend state of modes that do not iterate lights.
func passBlend(b BlendPolicy) gpu.BlendState {
	switch b {
	case BlendAlpha:
		return gpu.BlendAlpha
	case BlendAdditiveMultipass:
		return gpu.BlendAdditive
	}
	return gpu.BlendNone
}

// layerBlend is the blend state of one light layer. Additive multipass
// writes the first layer and adds the rest on top of it.
func layerBlend(b BlendPolicy, layer int) gpu.BlendState {
	if b == BlendAdditiveMultipass && layer == 0 {
		return gpu.BlendNone
	}
	return passBlend(b)
}

// uniformValue converts decoded configuration values into uniform types.
func uniformValue(v any) (any, error) {
	switch t := v.(type) {
	case float32, int32, math.Vec2, math.Vec3, math.Vec4, math.Mat4:
		return t, nil
	case float64, int, int64:
		f, _ := toFloat32(t)
		return f, nil
	case []any:
		fs := make([]float32, len(t))
		for i, e := range t {
			f, ok := toFloat32(e)
			if !ok {
				return nil, fmt.Errorf("element %d is %T, not a number", i, e)
			}
			fs[i] = f
		}
		switch len(fs) {
		case 2:
			return math.NewVec2(fs[0], fs[1]), nil
		case 3:
			return math.NewVec3(fs[0], fs[1], fs[2]), nil
		case 4:
			return math.NewVec4(fs[0], fs[1], fs[2], fs[3]), nil
		case 16:
			var m math.Mat4
			copy(m.Data[:], fs)
			return m, nil
		}
		return nil, fmt.Errorf("%d element arrays are not a uniform type", len(fs))
	}
	return nil, fmt.Errorf("unsupported type %T", v)
}

func toFloat32(v any) (float32, bool) {
	switch t := v.(type) {
	case float32:
		return t, true
	case float64:
		return float32(t), true
	case int:
		return float32(t), true
	case int32:
		return float32(t), true
	case int64:
		return float32(t), true
	}
	return 0, false
}
