// Package software implements gpu.Device on the CPU. Programs are Go
// functions looked up by name, the framebuffer is float RGBA with a depth
// buffer and a geometry buffer, and every draw is recorded so callers can
// inspect what was submitted.
//
// A Device is not safe for concurrent use.
package software

import (
	"errors"
	"fmt"
	"maps"

	"github.com/spaghettifunk/vista/engine/core"
	"github.com/spaghettifunk/vista/engine/gpu"
	"github.com/spaghettifunk/vista/engine/math"
)

var (
	ErrNoFrame         = errors.New("draw outside of a frame")
	ErrUnknownResource = errors.New("unknown resource")
	ErrNoProgram       = errors.New("no program bound")
)

type DrawKind uint8

const (
	DrawKindMesh DrawKind = iota + 1
	DrawKindFullscreen
)

// Draw is the record of one submitted draw call.
type Draw struct {
	Kind     DrawKind
	Program  string
	Mesh     gpu.ResourceID
	Blend    gpu.BlendState
	Depth    gpu.DepthState
	Uniforms map[string]any
	Textures map[string]gpu.ResourceID
}

type program struct {
	name   string
	shader Shader
}

type mesh struct {
	vertices []math.Vertex3D
	indices  []uint32
}

type texture struct {
	width  int
	height int
	texels []math.Vec4
}

type viewport struct {
	x, y, width, height int
}

type Option func(*Device)

// WithClearColour sets the colour the framebuffer is cleared to on BeginFrame.
func WithClearColour(c math.Vec4) Option {
	return func(d *Device) {
		d.clearColour = c
	}
}

// WithShader registers an additional program source.
func WithShader(name string, s Shader) Option {
	return func(d *Device) {
		d.shaders[name] = s
	}
}

type Device struct {
	shaders  map[string]Shader
	programs map[gpu.ProgramID]*program
	meshes   map[gpu.ResourceID]*mesh
	textures map[gpu.ResourceID]*texture
	nextID   uint64

	width       int
	height      int
	clearColour math.Vec4
	colour      []math.Vec4
	depth       []float32
	gbuffer     []GSample
	inFrame     bool

	viewport viewport
	current  *program
	uniforms map[string]any
	bound    map[string]gpu.ResourceID
	depthSt  gpu.DepthState
	blend    gpu.BlendState

	draws    []Draw
	frames   int
	uploads  int
	releases int

	failUploads  int
	failPrograms map[string]bool
}

func New(opts ...Option) *Device {
	d := &Device{
		shaders:      builtinShaders(),
		programs:     make(map[gpu.ProgramID]*program),
		meshes:       make(map[gpu.ResourceID]*mesh),
		textures:     make(map[gpu.ResourceID]*texture),
		uniforms:     make(map[string]any),
		bound:        make(map[string]gpu.ResourceID),
		failPrograms: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// RegisterShader makes a program source available to CreateProgram.
func (d *Device) RegisterShader(name string, s Shader) {
	d.shaders[name] = s
}

// FailUploads makes the next n uploads fail.
func (d *Device) FailUploads(n int) {
	d.failUploads = n
}

// FailProgram makes CreateProgram fail for the named source.
func (d *Device) FailProgram(name string) {
	d.failPrograms[name] = true
}

func (d *Device) next() uint64 {
	d.nextID++
	return d.nextID
}

func (d *Device) CreateProgram(src gpu.ShaderSource) (gpu.ProgramID, error) {
	s, ok := d.shaders[src.Name]
	if !ok || d.failPrograms[src.Name] {
		return 0, core.Errorf(core.ErrShaderCompile, "program %q", src.Name)
	}
	id := gpu.ProgramID(d.next())
	d.programs[id] = &program{name: src.Name, shader: s}
	core.LogDebug("created program '%s' (%d)", src.Name, id)
	return id, nil
}

func (d *Device) DestroyProgram(id gpu.ProgramID) {
	if p, ok := d.programs[id]; ok {
		if d.current == p {
			d.current = nil
		}
		delete(d.programs, id)
	}
}

func (d *Device) Upload(desc gpu.UploadDesc) (gpu.ResourceID, error) {
	if d.failUploads > 0 {
		d.failUploads--
		return 0, core.Errorf(core.ErrResourceCreate, "upload %q: injected failure", desc.Label)
	}
	switch desc.Kind {
	case gpu.ResourceMesh:
		vertices, indices, err := gpu.UnpackMesh(desc.Data, desc.Layout)
		if err != nil {
			return 0, core.Errorf(core.ErrResourceCreate, "upload %q: %s", desc.Label, err)
		}
		if len(indices)%3 != 0 {
			return 0, core.Errorf(core.ErrResourceCreate, "upload %q: %d indices is not a triangle list", desc.Label, len(indices))
		}
		id := gpu.ResourceID(d.next())
		d.meshes[id] = &mesh{vertices: vertices, indices: indices}
		d.uploads++
		return id, nil
	case gpu.ResourceTexture:
		t, err := decodeTexture(desc)
		if err != nil {
			return 0, core.Errorf(core.ErrResourceCreate, "upload %q: %s", desc.Label, err)
		}
		id := gpu.ResourceID(d.next())
		d.textures[id] = t
		d.uploads++
		return id, nil
	}
	return 0, core.Errorf(core.ErrResourceCreate, "upload %q: unsupported kind %s", desc.Label, desc.Kind)
}

func decodeTexture(desc gpu.UploadDesc) (*texture, error) {
	w, h := int(desc.Width), int(desc.Height)
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("empty texture %dx%d", w, h)
	}
	var bpp int
	switch desc.Layout.Format {
	case gpu.TextureRGBA8:
		bpp = 4
	case gpu.TextureR8:
		bpp = 1
	default:
		return nil, fmt.Errorf("unsupported texture format %d", desc.Layout.Format)
	}
	if len(desc.Data) != w*h*bpp {
		return nil, fmt.Errorf("texture data is %d bytes, want %d", len(desc.Data), w*h*bpp)
	}
	t := &texture{width: w, height: h, texels: make([]math.Vec4, w*h)}
	for i := range t.texels {
		if bpp == 1 {
			v := float32(desc.Data[i]) / 255
			t.texels[i] = math.NewVec4(v, v, v, 1)
			continue
		}
		p := desc.Data[i*4 : i*4+4]
		t.texels[i] = math.NewVec4(float32(p[0])/255, float32(p[1])/255, float32(p[2])/255, float32(p[3])/255)
	}
	return t, nil
}

func (d *Device) Release(id gpu.ResourceID) {
	if _, ok := d.meshes[id]; ok {
		delete(d.meshes, id)
		d.releases++
		return
	}
	if _, ok := d.textures[id]; ok {
		delete(d.textures, id)
		d.releases++
	}
}

// BeginFrame resizes the targets when needed and clears colour, depth and
// the geometry buffer.
func (d *Device) BeginFrame(width, height uint32) error {
	if d.inFrame {
		return errors.New("frame already begun")
	}
	w, h := int(width), int(height)
	if w != d.width || h != d.height {
		d.width, d.height = w, h
		d.colour = make([]math.Vec4, w*h)
		d.depth = make([]float32, w*h)
		d.gbuffer = make([]GSample, w*h)
	}
	for i := range d.colour {
		d.colour[i] = d.clearColour
		d.depth[i] = 1
		d.gbuffer[i] = GSample{}
	}
	d.viewport = viewport{0, 0, w, h}
	d.draws = d.draws[:0]
	d.inFrame = true
	return nil
}

func (d *Device) EndFrame() error {
	if !d.inFrame {
		return ErrNoFrame
	}
	d.inFrame = false
	d.frames++
	return nil
}

func (d *Device) SetViewport(x, y, width, height uint32) {
	d.viewport = viewport{int(x), int(y), int(width), int(height)}
}

func (d *Device) ClearTargets(depth, gbuffer bool) error {
	if !d.inFrame {
		return ErrNoFrame
	}
	vp := d.clippedViewport()
	for py := vp.y; py < vp.y+vp.height; py++ {
		row := d.width * py
		for px := vp.x; px < vp.x+vp.width; px++ {
			if depth {
				d.depth[row+px] = 1
			}
			if gbuffer {
				d.gbuffer[row+px] = GSample{}
			}
		}
	}
	return nil
}

func (d *Device) UseProgram(id gpu.ProgramID) {
	d.current = d.programs[id]
}

func (d *Device) SetUniform(name string, value any) {
	d.uniforms[name] = value
}

func (d *Device) BindTexture(slot string, id gpu.ResourceID) {
	d.bound[slot] = id
}

func (d *Device) SetDepth(state gpu.DepthState) {
	d.depthSt = state
}

func (d *Device) SetBlend(state gpu.BlendState) {
	d.blend = state
}

func (d *Device) DrawMesh(id gpu.ResourceID) error {
	if err := d.checkDraw(); err != nil {
		return err
	}
	m, ok := d.meshes[id]
	if !ok {
		return fmt.Errorf("draw mesh %d: %w", id, ErrUnknownResource)
	}
	d.record(DrawKindMesh, id)
	d.drawMesh(m)
	return nil
}

func (d *Device) DrawFullscreen() error {
	if err := d.checkDraw(); err != nil {
		return err
	}
	d.record(DrawKindFullscreen, 0)
	d.drawFullscreen()
	return nil
}

func (d *Device) checkDraw() error {
	if !d.inFrame {
		return ErrNoFrame
	}
	if d.current == nil {
		return ErrNoProgram
	}
	return nil
}

func (d *Device) record(kind DrawKind, id gpu.ResourceID) {
	d.draws = append(d.draws, Draw{
		Kind:     kind,
		Program:  d.current.name,
		Mesh:     id,
		Blend:    d.blend,
		Depth:    d.depthSt,
		Uniforms: maps.Clone(d.uniforms),
		Textures: maps.Clone(d.bound),
	})
}

// Draws returns the draws submitted since the last BeginFrame.
func (d *Device) Draws() []Draw {
	return d.draws
}

func (d *Device) Frames() int {
	return d.frames
}

// Uploads counts successful uploads over the device lifetime.
func (d *Device) Uploads() int {
	return d.uploads
}

func (d *Device) Releases() int {
	return d.releases
}

// Live is the number of resources currently uploaded.
func (d *Device) Live() int {
	return len(d.meshes) + len(d.textures)
}

func (d *Device) Programs() int {
	return len(d.programs)
}

func (d *Device) Size() (int, int) {
	return d.width, d.height
}

// Pixel returns the framebuffer colour at x, y with y growing downwards.
func (d *Device) Pixel(x, y int) math.Vec4 {
	return d.colour[y*d.width+x]
}

func (d *Device) Depth(x, y int) float32 {
	return d.depth[y*d.width+x]
}

func (d *Device) GBuffer(x, y int) GSample {
	return d.gbuffer[y*d.width+x]
}
