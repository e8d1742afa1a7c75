// Package gpu describes the capability the renderer submits work to. A
// Device compiles programs, uploads raw buffers and issues draws; it owns no
// scene state.
package gpu

// ResourceID identifies an uploaded buffer or texture. Zero is never valid.
type ResourceID uint64

// ProgramID identifies a compiled shader program. Zero is never valid.
type ProgramID uint64

type ResourceKind uint8

const (
	ResourceMesh ResourceKind = iota + 1
	ResourceTexture
)

func (k ResourceKind) String() string {
	switch k {
	case ResourceMesh:
		return "mesh"
	case ResourceTexture:
		return "texture"
	}
	return "unknown"
}

// ShaderSource names a program and carries its stage sources. Devices that
// ship their own programs may resolve them by Name alone.
type ShaderSource struct {
	Name     string
	Vertex   string
	Fragment string
}

type AttributeFormat uint8

const (
	Float32x2 AttributeFormat = iota + 1
	Float32x3
	Float32x4
)

type Attribute struct {
	Name   string
	Format AttributeFormat
	Offset uint32
}

type TextureFormat uint8

const (
	TextureRGBA8 TextureFormat = iota + 1
	TextureR8
)

// Layout describes how the bytes of an upload are organised.
type Layout struct {
	// Vertex buffers: bytes per vertex and its attributes. Indices follow the
	// vertex data as little endian uint32.
	Stride      uint32
	Attributes  []Attribute
	VertexCount uint32
	IndexCount  uint32
	// Textures.
	Format TextureFormat
}

// UploadDesc is one upload: dimensions, a layout descriptor and raw bytes.
type UploadDesc struct {
	Kind   ResourceKind
	Label  string
	Width  uint32
	Height uint32
	Layout Layout
	Data   []byte
}

// DepthState controls the depth test (less-or-equal) and depth writes.
type DepthState struct {
	Test  bool
	Write bool
}

type BlendState uint8

const (
	// Source replaces destination.
	BlendNone BlendState = iota
	// src*a + dst*(1-a)
	BlendAlpha
	// src + dst
	BlendAdditive
)

func (b BlendState) String() string {
	switch b {
	case BlendNone:
		return "none"
	case BlendAlpha:
		return "alpha"
	case BlendAdditive:
		return "additive"
	}
	return "unknown"
}

// Device is the GPU submission boundary. It is driven from the render
// thread only.
type Device interface {
	CreateProgram(src ShaderSource) (ProgramID, error)
	DestroyProgram(id ProgramID)

	Upload(desc UploadDesc) (ResourceID, error)
	Release(id ResourceID)

	BeginFrame(width, height uint32) error
	EndFrame() error

	SetViewport(x, y, width, height uint32)
	// ClearTargets resets depth and the geometry buffer inside the current
	// viewport. Colour is left alone so later cameras draw over earlier ones.
	ClearTargets(depth, gbuffer bool) error
	UseProgram(id ProgramID)
	SetUniform(name string, value any)
	BindTexture(slot string, id ResourceID)
	SetDepth(state DepthState)
	SetBlend(state BlendState)

	DrawMesh(id ResourceID) error
	DrawFullscreen() error
}
