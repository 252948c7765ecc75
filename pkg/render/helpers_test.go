package render

import (
	"image/color"
	"math"

	"github.com/taigrr/duorast/pkg/math3d"
)

// identityView maps world space straight to clip space.
type identityView struct{}

func (identityView) ViewMatrix() math3d.Mat4        { return math3d.Identity() }
func (identityView) ProjectionMatrix() math3d.Mat4  { return math3d.Identity() }
func (identityView) InverseViewMatrix() math3d.Mat4 { return math3d.Identity() }

func ndcVertex(x, y, z float64) VertexOut {
	return VertexOut{
		Position:      math3d.V4(x, y, z, 1),
		Normal:        math3d.V3(0, 0, -1),
		ViewDirection: math3d.V3(0, 0, 1),
	}
}

func flatShader() Shader {
	// Diffuse mode with Kd = π and no ambient returns the vertex color as is
	return Shader{
		LightDirection: math3d.V3(0, 0, 1),
		LightIntensity: 1,
		Kd:             math.Pi,
	}
}

// centerSquare returns a clockwise unit square spanning [-0.5, 0.5]² at depth z.
func centerSquare(z float64) ([]VertexIn, []uint32) {
	n := math3d.V3(0, 0, -1)
	verts := []VertexIn{
		{Position: math3d.V3(-0.5, 0.5, z), Normal: n, UV: math3d.V2(0, 0)},
		{Position: math3d.V3(0.5, 0.5, z), Normal: n, UV: math3d.V2(1, 0)},
		{Position: math3d.V3(0.5, -0.5, z), Normal: n, UV: math3d.V2(1, 1)},
		{Position: math3d.V3(-0.5, -0.5, z), Normal: n, UV: math3d.V2(0, 1)},
	}
	return verts, []uint32{0, 1, 2, 0, 2, 3}
}

var (
	opaqueWhite = color.NRGBA{255, 255, 255, 255}
	clearBlack  = math3d.Gray(0)
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
