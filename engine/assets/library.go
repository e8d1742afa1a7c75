package assets

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/google/uuid"
	"github.com/spaghettifunk/vista/engine/core"
	"github.com/spaghettifunk/vista/engine/math"
)

type ShapeKind uint8

const (
	ShapeBox ShapeKind = iota + 1
	ShapeSphere
	ShapePlane
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeBox:
		return "box"
	case ShapeSphere:
		return "sphere"
	case ShapePlane:
		return "plane"
	}
	return "unknown"
}

// ShapeDescriptor fully describes a generated mesh. Equal descriptors always
// produce the same mesh instance from a Library.
type ShapeDescriptor struct {
	Kind ShapeKind
	// Box: width, height, depth. Sphere: X is the diameter. Plane: width, height.
	Size math.Vec3
	// Sphere rings and sectors, plane subdivisions per axis.
	Segments uint32
	// Texture repeat across each face.
	Tile math.Vec2
}

func UnitBox() ShapeDescriptor {
	return ShapeDescriptor{Kind: ShapeBox, Size: math.NewVec3One(), Tile: math.NewVec2One()}
}

func UnitSphere() ShapeDescriptor {
	return ShapeDescriptor{Kind: ShapeSphere, Size: math.NewVec3One(), Segments: 16, Tile: math.NewVec2One()}
}

func UnitPlane() ShapeDescriptor {
	return ShapeDescriptor{Kind: ShapePlane, Size: math.NewVec3(1, 1, 0), Segments: 1, Tile: math.NewVec2One()}
}

func (d ShapeDescriptor) String() string {
	return fmt.Sprintf("%s:%g,%g,%g:%d:%g,%g", d.Kind, d.Size.X, d.Size.Y, d.Size.Z, d.Segments, d.Tile.X, d.Tile.Y)
}

// Library is an owned cache of generated meshes keyed by descriptor. Its
// lifetime is that of its owner, usually one Renderer. Render-thread only.
type Library struct {
	meshes map[ShapeDescriptor]*Mesh
}

func NewLibrary() *Library {
	return &Library{meshes: make(map[ShapeDescriptor]*Mesh)}
}

// Get returns the mesh for d, generating it on first use.
func (l *Library) Get(d ShapeDescriptor) *Mesh {
	d = d.normalized()
	if m, ok := l.meshes[d]; ok {
		return m
	}

	var vertices []math.Vertex3D
	var indices []uint32
	switch d.Kind {
	case ShapeBox:
		vertices, indices = generateBox(d.Size.X, d.Size.Y, d.Size.Z, d.Tile.X, d.Tile.Y)
	case ShapeSphere:
		vertices, indices = generateSphere(d.Size.X*0.5, d.Segments, d.Tile.X, d.Tile.Y)
	case ShapePlane:
		vertices, indices = generatePlane(d.Size.X, d.Size.Y, d.Segments, d.Segments, d.Tile.X, d.Tile.Y)
	default:
		core.Violation("Library.Get", "unknown shape kind %d", d.Kind)
	}
	math.GeometryGenerateTangents(vertices, indices)

	id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(d.String()))
	m := newMeshWithID(id, d.String(), vertices, indices)
	l.meshes[d] = m
	core.LogDebug("generated %s mesh with %d vertices", d, len(vertices))
	return m
}

func (l *Library) Len() int {
	return len(l.meshes)
}

func (l *Library) Clear() {
	l.meshes = make(map[ShapeDescriptor]*Mesh)
}

func (d ShapeDescriptor) normalized() ShapeDescriptor {
	if d.Size.X == 0 {
		core.LogWarn("shape width must be nonzero. Defaulting to one.")
		d.Size.X = 1
	}
	if d.Size.Y == 0 && d.Kind != ShapeSphere {
		core.LogWarn("shape height must be nonzero. Defaulting to one.")
		d.Size.Y = 1
	}
	if d.Size.Z == 0 && d.Kind == ShapeBox {
		core.LogWarn("shape depth must be nonzero. Defaulting to one.")
		d.Size.Z = 1
	}
	if d.Kind == ShapeSphere {
		d.Size.Y, d.Size.Z = d.Size.X, d.Size.X
		if d.Segments < 3 {
			d.Segments = 16
		}
	}
	if d.Kind == ShapePlane {
		d.Size.Z = 0
		if d.Segments < 1 {
			d.Segments = 1
		}
	}
	if d.Kind == ShapeBox {
		d.Segments = 0
	}
	if d.Tile.X == 0 {
		d.Tile.X = 1
	}
	if d.Tile.Y == 0 {
		d.Tile.Y = 1
	}
	return d
}

type face struct {
	normal  math.Vec3
	corners [4]math.Vec3
}

func generateBox(width, height, depth, tileX, tileY float32) ([]math.Vertex3D, []uint32) {
	minX, maxX := -width*0.5, width*0.5
	minY, maxY := -height*0.5, height*0.5
	minZ, maxZ := -depth*0.5, depth*0.5

	// Corner order per face: bottom-left, top-right, top-left, bottom-right.
	faces := [6]face{
		{math.NewVec3(0, 0, 1), [4]math.Vec3{{X: minX, Y: minY, Z: maxZ}, {X: maxX, Y: maxY, Z: maxZ}, {X: minX, Y: maxY, Z: maxZ}, {X: maxX, Y: minY, Z: maxZ}}},
		{math.NewVec3(0, 0, -1), [4]math.Vec3{{X: maxX, Y: minY, Z: minZ}, {X: minX, Y: maxY, Z: minZ}, {X: maxX, Y: maxY, Z: minZ}, {X: minX, Y: minY, Z: minZ}}},
		{math.NewVec3(-1, 0, 0), [4]math.Vec3{{X: minX, Y: minY, Z: minZ}, {X: minX, Y: maxY, Z: maxZ}, {X: minX, Y: maxY, Z: minZ}, {X: minX, Y: minY, Z: maxZ}}},
		{math.NewVec3(1, 0, 0), [4]math.Vec3{{X: maxX, Y: minY, Z: maxZ}, {X: maxX, Y: maxY, Z: minZ}, {X: maxX, Y: maxY, Z: maxZ}, {X: maxX, Y: minY, Z: minZ}}},
		{math.NewVec3(0, -1, 0), [4]math.Vec3{{X: maxX, Y: minY, Z: maxZ}, {X: minX, Y: minY, Z: minZ}, {X: maxX, Y: minY, Z: minZ}, {X: minX, Y: minY, Z: maxZ}}},
		{math.NewVec3(0, 1, 0), [4]math.Vec3{{X: minX, Y: maxY, Z: maxZ}, {X: maxX, Y: maxY, Z: minZ}, {X: minX, Y: maxY, Z: minZ}, {X: maxX, Y: maxY, Z: maxZ}}},
	}
	uvs := [4]math.Vec2{{X: 0, Y: 0}, {X: tileX, Y: tileY}, {X: 0, Y: tileY}, {X: tileX, Y: 0}}

	vertices := make([]math.Vertex3D, 0, 24)
	indices := make([]uint32, 0, 36)
	for i, f := range faces {
		for c := 0; c < 4; c++ {
			vertices = append(vertices, math.Vertex3D{
				Position: f.corners[c],
				Normal:   f.normal,
				Texcoord: uvs[c],
				Colour:   math.NewVec4One(),
			})
		}
		v := uint32(i * 4)
		indices = append(indices, v+0, v+1, v+2, v+0, v+3, v+1)
	}
	return vertices, indices
}

func generatePlane(width, height float32, xSegments, ySegments uint32, tileX, tileY float32) ([]math.Vertex3D, []uint32) {
	vertices := make([]math.Vertex3D, 0, xSegments*ySegments*4)
	indices := make([]uint32, 0, xSegments*ySegments*6)

	segWidth := width / float32(xSegments)
	segHeight := height / float32(ySegments)
	halfWidth := width * 0.5
	halfHeight := height * 0.5
	normal := math.NewVec3Back()

	for y := uint32(0); y < ySegments; y++ {
		for x := uint32(0); x < xSegments; x++ {
			minX := float32(x)*segWidth - halfWidth
			minY := float32(y)*segHeight - halfHeight
			maxX := minX + segWidth
			maxY := minY + segHeight
			minU := float32(x) / float32(xSegments) * tileX
			minV := float32(y) / float32(ySegments) * tileY
			maxU := float32(x+1) / float32(xSegments) * tileX
			maxV := float32(y+1) / float32(ySegments) * tileY

			offset := uint32(len(vertices))
			vertices = append(vertices,
				math.Vertex3D{Position: math.NewVec3(minX, minY, 0), Normal: normal, Texcoord: math.NewVec2(minU, minV), Colour: math.NewVec4One()},
				math.Vertex3D{Position: math.NewVec3(maxX, maxY, 0), Normal: normal, Texcoord: math.NewVec2(maxU, maxV), Colour: math.NewVec4One()},
				math.Vertex3D{Position: math.NewVec3(minX, maxY, 0), Normal: normal, Texcoord: math.NewVec2(minU, maxV), Colour: math.NewVec4One()},
				math.Vertex3D{Position: math.NewVec3(maxX, minY, 0), Normal: normal, Texcoord: math.NewVec2(maxU, minV), Colour: math.NewVec4One()},
			)
			indices = append(indices, offset+0, offset+1, offset+2, offset+0, offset+3, offset+1)
		}
	}
	return vertices, indices
}

func generateSphere(radius float32, segments uint32, tileX, tileY float32) ([]math.Vertex3D, []uint32) {
	rings := segments
	sectors := segments * 2
	vertices := make([]math.Vertex3D, 0, (rings+1)*(sectors+1))
	indices := make([]uint32, 0, rings*sectors*6)

	for r := uint32(0); r <= rings; r++ {
		v := float32(r) / float32(rings)
		phi := v * math.K_PI
		for s := uint32(0); s <= sectors; s++ {
			u := float32(s) / float32(sectors)
			theta := u * math.K_PI_2
			n := math.NewVec3(
				math32.Sin(phi)*math32.Cos(theta),
				math32.Cos(phi),
				math32.Sin(phi)*math32.Sin(theta),
			)
			vertices = append(vertices, math.Vertex3D{
				Position: n.MulScalar(radius),
				Normal:   n,
				Texcoord: math.NewVec2(u*tileX, v*tileY),
				Colour:   math.NewVec4One(),
			})
		}
	}
	stride := sectors + 1
	for r := uint32(0); r < rings; r++ {
		for s := uint32(0); s < sectors; s++ {
			a := r*stride + s
			b := a + stride
			indices = append(indices, a, b, a+1, a+1, b, b+1)
		}
	}
	return vertices, indices
}
