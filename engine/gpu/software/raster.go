package software

import (
	"github.com/chewxy/math32"

	"github.com/spaghettifunk/vista/engine/gpu"
	"github.com/spaghettifunk/vista/engine/math"
)

type screenVertex struct {
	x, y, z  float32
	invW     float32
	position math.Vec3
	normal   math.Vec3
	texcoord math.Vec2
	colour   math.Vec4
	behind   bool
}

func (d *Device) drawMesh(m *mesh) {
	model := d.mat4(gpu.UniformModel)
	viewProj := d.mat4(gpu.UniformView).Mul(d.mat4(gpu.UniformProjection))
	vp := d.clippedViewport()

	verts := make([]screenVertex, len(m.vertices))
	for i, v := range m.vertices {
		world := v.Position.Transform(model)
		clip := world.ToVec4(1).Transform(viewProj)
		sv := screenVertex{
			position: world,
			normal:   v.Normal.TransformDirection(model).Normalized(),
			texcoord: v.Texcoord,
			colour:   v.Colour,
		}
		if clip.W <= 0 {
			sv.behind = true
		} else {
			invW := 1 / clip.W
			sv.invW = invW
			sv.x = float32(d.viewport.x) + (clip.X*invW+1)*0.5*float32(d.viewport.width)
			sv.y = float32(d.viewport.y) + (1-clip.Y*invW)*0.5*float32(d.viewport.height)
			sv.z = clip.Z*invW*0.5 + 0.5
		}
		verts[i] = sv
	}

	shader := d.current.shader
	for i := 0; i+2 < len(m.indices); i += 3 {
		d.drawTriangle(&verts[m.indices[i]], &verts[m.indices[i+1]], &verts[m.indices[i+2]], vp, shader)
	}
}

func (d *Device) drawTriangle(v0, v1, v2 *screenVertex, vp viewport, shader Shader) {
	// No near plane clipping: triangles reaching behind the eye are dropped.
	if v0.behind || v1.behind || v2.behind {
		return
	}
	area := edge(v0, v1, v2.x, v2.y)
	if area == 0 {
		return
	}
	if area < 0 {
		v1, v2 = v2, v1
	}

	minX := max(int(math32.Floor(min(v0.x, v1.x, v2.x))), vp.x)
	maxX := min(int(math32.Ceil(max(v0.x, v1.x, v2.x))), vp.x+vp.width)
	minY := max(int(math32.Floor(min(v0.y, v1.y, v2.y))), vp.y)
	maxY := min(int(math32.Ceil(max(v0.y, v1.y, v2.y))), vp.y+vp.height)

	for py := minY; py < maxY; py++ {
		for px := minX; px < maxX; px++ {
			cx, cy := float32(px)+0.5, float32(py)+0.5
			w0 := edge(v1, v2, cx, cy)
			w1 := edge(v2, v0, cx, cy)
			w2 := edge(v0, v1, cx, cy)
			if !covers(w0, v1, v2) || !covers(w1, v2, v0) || !covers(w2, v0, v1) {
				continue
			}
			sum := w0 + w1 + w2
			b0, b1, b2 := w0/sum, w1/sum, w2/sum

			z := b0*v0.z + b1*v1.z + b2*v2.z
			if z < 0 || z > 1 {
				continue
			}
			idx := py*d.width + px
			if d.depthSt.Test && z > d.depth[idx] {
				continue
			}

			// perspective correct weights for the varyings
			p0, p1, p2 := b0*v0.invW, b1*v1.invW, b2*v2.invW
			ps := p0 + p1 + p2
			p0, p1, p2 = p0/ps, p1/ps, p2/ps

			frag := Fragment{
				X:        px,
				Y:        py,
				Depth:    z,
				Position: v0.position.MulScalar(p0).Add(v1.position.MulScalar(p1)).Add(v2.position.MulScalar(p2)),
				Normal:   v0.normal.MulScalar(p0).Add(v1.normal.MulScalar(p1)).Add(v2.normal.MulScalar(p2)),
				Texcoord: math.NewVec2(
					v0.texcoord.X*p0+v1.texcoord.X*p1+v2.texcoord.X*p2,
					v0.texcoord.Y*p0+v1.texcoord.Y*p1+v2.texcoord.Y*p2,
				),
				Colour: v0.colour.MulScalar(p0).Add(v1.colour.MulScalar(p1)).Add(v2.colour.MulScalar(p2)),
				dev:    d,
				idx:    idx,
			}
			colour, write := shader(&frag)
			if d.depthSt.Write {
				d.depth[idx] = z
			}
			if write {
				d.blendPixel(idx, colour)
			}
		}
	}
}

// Fullscreen draws cover the viewport and ignore the depth state.
func (d *Device) drawFullscreen() {
	vp := d.clippedViewport()
	shader := d.current.shader
	for py := vp.y; py < vp.y+vp.height; py++ {
		for px := vp.x; px < vp.x+vp.width; px++ {
			idx := py*d.width + px
			frag := Fragment{
				X:       px,
				Y:       py,
				Depth:   d.depth[idx],
				GBuffer: d.gbuffer[idx],
				dev:     d,
				idx:     idx,
			}
			if colour, write := shader(&frag); write {
				d.blendPixel(idx, colour)
			}
		}
	}
}

func (d *Device) blendPixel(idx int, src math.Vec4) {
	dst := d.colour[idx]
	switch d.blend {
	case gpu.BlendAlpha:
		d.colour[idx] = src.MulScalar(src.W).Add(dst.MulScalar(1 - src.W))
	case gpu.BlendAdditive:
		d.colour[idx] = dst.Add(src)
	default:
		d.colour[idx] = src
	}
}

func (d *Device) clippedViewport() viewport {
	x0 := math.Clamp(d.viewport.x, 0, d.width)
	y0 := math.Clamp(d.viewport.y, 0, d.height)
	x1 := math.Clamp(d.viewport.x+d.viewport.width, 0, d.width)
	y1 := math.Clamp(d.viewport.y+d.viewport.height, 0, d.height)
	return viewport{x0, y0, x1 - x0, y1 - y0}
}

func (d *Device) mat4(name string) math.Mat4 {
	if m, ok := d.uniforms[name].(math.Mat4); ok {
		return m
	}
	return math.NewMat4Identity()
}

// edge is the signed area spanned by a, b and p. Endpoints are put in a
// canonical order first so a shared edge evaluates to exactly opposite values
// in the two triangles that use it.
func edge(a, b *screenVertex, px, py float32) float32 {
	if a.x > b.x || (a.x == b.x && a.y > b.y) {
		return -orient(b, a, px, py)
	}
	return orient(a, b, px, py)
}

func orient(a, b *screenVertex, px, py float32) float32 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// covers applies the fill rule: a pixel centre lying exactly on an edge
// belongs to only one of the two triangles sharing it.
func covers(w float32, a, b *screenVertex) bool {
	if w != 0 {
		return w > 0
	}
	dy := b.y - a.y
	dx := b.x - a.x
	return dy > 0 || (dy == 0 && dx < 0)
}
