package scene

import (
	"github.com/spaghettifunk/vista/engine/assets"
	"github.com/spaghettifunk/vista/engine/core"
	"github.com/spaghettifunk/vista/engine/math"
	"github.com/spaghettifunk/vista/engine/renderer"
)

// Geometry registers a mesh drawn with a material at the node's world
// transform.
type Geometry struct {
	SpatialNode
	mesh     *assets.Mesh
	material *assets.Material
	handle   renderer.Handle
}

// NewGeometry requires a mesh. A nil material is replaced by the default
// material.
func NewGeometry(name string, mesh *assets.Mesh, material *assets.Material) *Geometry {
	if mesh == nil {
		core.Violation("NewGeometry", "geometry %q has no mesh", name)
	}
	if material == nil {
		material = assets.NewDefaultMaterial()
	}
	g := &Geometry{mesh: mesh, material: material}
	g.init(g, name)
	return g
}

// NewShape builds a geometry from a shape in the library.
func NewShape(name string, library *assets.Library, shape assets.ShapeDescriptor, material *assets.Material) *Geometry {
	if library == nil {
		core.Violation("NewShape", "geometry %q has no library", name)
	}
	return NewGeometry(name, library.Get(shape), material)
}

func (g *Geometry) Handle() renderer.Handle {
	return g.handle
}

func (g *Geometry) Params() renderer.GeometryParams {
	return renderer.GeometryParams{
		Transform: g.WorldTransform(),
		Mesh:      g.mesh,
		Material:  g.material,
	}
}

func (g *Geometry) Mesh() *assets.Mesh {
	return g.mesh
}

func (g *Geometry) SetMesh(mesh *assets.Mesh) {
	if mesh == nil {
		core.Violation("Geometry.SetMesh", "geometry %q given a nil mesh", g.name)
	}
	g.mesh = mesh
	g.push()
}

func (g *Geometry) Material() *assets.Material {
	return g.material
}

func (g *Geometry) SetMaterial(material *assets.Material) {
	if material == nil {
		material = assets.NewDefaultMaterial()
	}
	g.material = material
	g.push()
}

func (g *Geometry) Bounds() (math.Extents3D, bool) {
	local := g.mesh.Extents()
	if local.IsEmpty() {
		return math.Extents3D{}, false
	}
	return local.Transform(g.WorldTransform()), true
}

func (g *Geometry) Activate(ctx *Context) {
	if g.handle != renderer.InvalidHandle {
		core.Violation("Geometry.Activate", "geometry %q already holds handle %d", g.name, g.handle)
	}
	g.SpatialNode.Activate(ctx)
	g.handle = ctx.Renderer.AddGeometry(g.Params())
}

func (g *Geometry) Deactivate() {
	if g.handle == renderer.InvalidHandle {
		core.Violation("Geometry.Deactivate", "geometry %q holds no handle", g.name)
	}
	g.ctx.Renderer.RemoveGeometry(g.handle)
	g.handle = renderer.InvalidHandle
	g.SpatialNode.Deactivate()
}

func (g *Geometry) TransformChanged() {
	g.push()
}

func (g *Geometry) push() {
	if g.handle != renderer.InvalidHandle {
		g.ctx.Renderer.UpdateGeometry(g.handle, g.Params())
	}
}
