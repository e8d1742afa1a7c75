package assets

import (
	"github.com/google/uuid"
	"github.com/spaghettifunk/vista/engine/math"
)

// Mesh is an indexed triangle list.
type Mesh struct {
	header
	vertices []math.Vertex3D
	indices  []uint32
	extents  math.Extents3D
}

func NewMesh(name string, vertices []math.Vertex3D, indices []uint32) *Mesh {
	return newMeshWithID(uuid.New(), name, vertices, indices)
}

func newMeshWithID(id ID, name string, vertices []math.Vertex3D, indices []uint32) *Mesh {
	m := &Mesh{header: newHeader(id, name)}
	m.assign(vertices, indices)
	return m
}

func (m *Mesh) Kind() Kind {
	return KindMesh
}

func (m *Mesh) Vertices() []math.Vertex3D {
	return m.vertices
}

func (m *Mesh) Indices() []uint32 {
	return m.indices
}

// Extents is the local space bounding box of the vertices.
func (m *Mesh) Extents() math.Extents3D {
	return m.extents
}

// SetGeometry replaces the vertex and index data and bumps the version.
func (m *Mesh) SetGeometry(vertices []math.Vertex3D, indices []uint32) {
	m.assign(vertices, indices)
	m.bump()
}

func (m *Mesh) assign(vertices []math.Vertex3D, indices []uint32) {
	m.vertices = vertices
	m.indices = indices
	m.extents = math.ExtentsFromVertices(vertices)
}
