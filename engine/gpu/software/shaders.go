package software

import (
	"github.com/chewxy/math32"

	"github.com/spaghettifunk/vista/engine/gpu"
	"github.com/spaghettifunk/vista/engine/math"
)

func builtinShaders() map[string]Shader {
	return map[string]Shader{
		gpu.ProgramUnlit:         unlit,
		gpu.ProgramLit:           lit,
		gpu.ProgramDepth:         depthOnly,
		gpu.ProgramGBuffer:       gbuffer,
		gpu.ProgramDeferredLight: deferredLight,
		gpu.ProgramAmbient:       ambient,
	}
}

func albedo(f *Fragment) math.Vec4 {
	return f.Vec4(gpu.UniformDiffuseColour, math.NewVec4One()).Mul(f.Sample(gpu.TextureDiffuse, f.Texcoord))
}

func unlit(f *Fragment) (math.Vec4, bool) {
	return albedo(f), true
}

func lit(f *Fragment) (math.Vec4, bool) {
	base := albedo(f)
	spec := f.Sample(gpu.TextureSpecular, f.Texcoord).ToVec3()
	eye := f.Vec3(gpu.UniformCameraPosition, math.NewVec3Zero())
	shininess := f.Float(gpu.UniformShininess, 8)
	rgb := shadeLight(f.Light(), base.ToVec3(), spec, shininess, f.Normal.Normalized(), f.Position, eye)
	return rgb.ToVec4(base.W), true
}

func depthOnly(*Fragment) (math.Vec4, bool) {
	return math.Vec4{}, false
}

func gbuffer(f *Fragment) (math.Vec4, bool) {
	f.WriteGBuffer(albedo(f), f.Normal.Normalized(), f.Position)
	return math.Vec4{}, false
}

func deferredLight(f *Fragment) (math.Vec4, bool) {
	g := f.GBuffer
	if !g.Valid {
		return math.Vec4{}, false
	}
	eye := f.Vec3(gpu.UniformCameraPosition, math.NewVec3Zero())
	rgb := shadeLight(f.Light(), g.Albedo.ToVec3(), math.Vec3{}, 0, g.Normal, g.Position, eye)
	return rgb.ToVec4(1), true
}

func ambient(f *Fragment) (math.Vec4, bool) {
	g := f.GBuffer
	if !g.Valid {
		return math.Vec4{}, false
	}
	a := f.Vec3(gpu.UniformAmbient, math.NewVec3(0.1, 0.1, 0.1))
	return g.Albedo.ToVec3().Mul(a).ToVec4(1), true
}

// shadeLight returns the Lambert diffuse plus Blinn-Phong specular
// contribution of one light at surface point p.
func shadeLight(l LightUniforms, base, specular math.Vec3, shininess float32, n, p, eye math.Vec3) math.Vec3 {
	var toLight math.Vec3
	attenuation := float32(1)
	switch l.Kind {
	case gpu.LightKindPoint, gpu.LightKindSpot:
		d := l.Position.Sub(p)
		toLight = d.Normalized()
		if l.Range > 0 {
			attenuation = math.Clamp(1-d.Length()/l.Range, 0, 1)
		}
		if l.Kind == gpu.LightKindSpot && l.Direction.Normalized().Dot(toLight.Negate()) < l.SpotCos {
			return math.Vec3{}
		}
	default:
		toLight = l.Direction.Normalized().Negate()
	}

	ndl := max(n.Dot(toLight), 0)
	out := base.MulScalar(ndl)
	if ndl > 0 && specular != (math.Vec3{}) {
		h := toLight.Add(eye.Sub(p).Normalized()).Normalized()
		out = out.Add(specular.MulScalar(math32.Pow(max(n.Dot(h), 0), shininess)))
	}
	return out.Mul(l.Colour).MulScalar(l.Intensity * attenuation)
}
