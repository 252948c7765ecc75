package render

import (
	"github.com/taigrr/duorast/pkg/math3d"
)

// Project transforms src from local space into post-divide clip space,
// writing one VertexOut per input vertex in the same order. dst is reused when
// it has enough capacity.
//
// Normals and tangents are rotated into world space, the view direction is the
// normalized vector from the camera to the world-space position, and the
// position ends up as (x/w, y/w, z/w, w). A vertex with w exactly zero keeps
// its undivided clip coordinates; the clipper's near stage removes it.
func Project(dst []VertexOut, src []VertexIn, world math3d.Mat4, view Viewpoint) []VertexOut {
	if cap(dst) < len(src) {
		dst = make([]VertexOut, len(src))
	}
	dst = dst[:len(src)]

	wvp := view.ProjectionMatrix().Mul(view.ViewMatrix()).Mul(world)
	eye := view.InverseViewMatrix().Translation()

	for i, v := range src {
		dst[i] = VertexOut{
			Position:      wvp.MulVec4(math3d.V4FromV3(v.Position, 1)).Divide(),
			Color:         v.Color,
			Normal:        world.MulVec3Dir(v.Normal).Normalize(),
			Tangent:       world.MulVec3Dir(v.Tangent).Normalize(),
			ViewDirection: world.MulVec3(v.Position).Sub(eye).Normalize(),
			UV:            v.UV,
		}
	}

	return dst
}

// Project refreshes the mesh's projected vertex buffer for the given camera.
func (m *Mesh) Project(view Viewpoint) []VertexOut {
	m.projected = Project(m.projected, m.Vertices, m.World, view)
	return m.projected
}
