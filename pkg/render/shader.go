package render

import (
	"math"

	"github.com/taigrr/duorast/pkg/math3d"
)

// alphaDiscard is the alpha at or below which a transparent fragment leaves
// the backbuffer untouched.
const alphaDiscard = 0.01

// Shader computes pixel colors from interpolated vertex attributes with a
// single directional light. It is read-only while a frame renders, so one
// Shader may be used from many goroutines.
type Shader struct {
	LightDirection math3d.Vec3     // Direction the light travels
	LightIntensity float64         // Scales the diffuse term in FinalColor
	Kd             float64         // Diffuse reflectance
	Shininess      float64         // Gloss map multiplier for the Phong exponent
	Ambient        math3d.ColorRGB // Constant ambient term
}

// DefaultShader returns the standard light setup.
func DefaultShader() Shader {
	return Shader{
		LightDirection: math3d.V3(0.577, -0.577, 0.577),
		LightIntensity: 7,
		Kd:             1,
		Shininess:      25,
		Ambient:        math3d.Gray(0.025),
	}
}

// Shade returns the color of one fragment. current is the color already in
// the backbuffer at that pixel; transparent effects blend over it.
func (s *Shader) Shade(v VertexOut, tex TextureSet, effect Effect, mode ShadingMode, useNormalMap bool, current math3d.ColorRGB) math3d.ColorRGB {
	if effect == EffectTransparent {
		return shadeTransparent(v, tex, current)
	}

	n := v.Normal
	if useNormalMap && tex.Normal != nil {
		n = perturbNormal(n, v.Tangent, tex.Normal.SampleNormal(v.UV))
	}
	n = n.Normalize()

	light := s.LightDirection.Normalize()
	observed := max(0, n.Dot(light.Negate()))

	if mode == ShadeObservedArea {
		return math3d.Gray(observed)
	}

	// Untextured meshes fall back to their vertex color
	diffuse := v.Color
	if tex.Diffuse != nil {
		diffuse = tex.Diffuse.SampleColor(v.UV)
	}
	lambert := diffuse.Scale(s.Kd / math.Pi)

	if mode == ShadeDiffuse {
		return lambert.Add(s.Ambient)
	}

	var ks math3d.ColorRGB
	if tex.Specular != nil {
		ks = tex.Specular.SampleColor(v.UV)
	}
	var gloss float64
	if tex.Gloss != nil {
		gloss = tex.Gloss.SampleColor(v.UV).R
	}
	phong := ks.Scale(phongSpecular(1, gloss*s.Shininess, light, v.ViewDirection, n))

	if mode == ShadeSpecular {
		return phong.Scale(observed)
	}

	return lambert.Scale(s.LightIntensity).Add(phong).Add(s.Ambient).Scale(observed)
}

func shadeTransparent(v VertexOut, tex TextureSet, current math3d.ColorRGB) math3d.ColorRGB {
	if tex.Diffuse == nil {
		return current
	}
	c, a := tex.Diffuse.SampleRGBA(v.UV)
	if a <= alphaDiscard {
		return current
	}
	return current.Lerp(c, a)
}

// perturbNormal maps a tangent-space normal map sample in [0,1] to world space
// through the tangent, binormal and normal basis.
func perturbNormal(normal, tangent, sample math3d.Vec3) math3d.Vec3 {
	binormal := normal.Cross(tangent).Normalize()
	ts := sample.Scale(2).Sub(math3d.V3(1, 1, 1))
	return tangent.Scale(ts.X).
		Add(binormal.Scale(ts.Y)).
		Add(normal.Scale(ts.Z))
}

// phongSpecular returns ks * max(0, reflect(l, n) · -v)^exp.
func phongSpecular(ks, exp float64, light, viewDir, normal math3d.Vec3) float64 {
	r := light.Reflect(normal)
	cos := max(0, r.Dot(viewDir.Negate()))
	return ks * math.Pow(cos, exp)
}
