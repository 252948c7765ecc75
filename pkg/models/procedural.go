package models

import (
	"github.com/taigrr/duorast/pkg/math3d"
	"github.com/taigrr/duorast/pkg/render"
)

// Quad creates a size×size square in the XY plane facing -Z, toward a camera
// on the negative Z axis.
func Quad(size float64) *Mesh {
	m := NewMesh("quad")
	m.addFace(math3d.V3(0, 0, -1), math3d.V3(0, 1, 0), size/2, 0)
	m.CalculateBounds()
	return m
}

// Glow creates a double-sided, alpha-blended quad of the given size whose
// centre sits offset units in front of the origin along -Z. Rotating it with
// the model keeps it in front of the same face.
func Glow(size, offset float64) *Mesh {
	m := NewMesh("glow")
	m.addFace(math3d.V3(0, 0, -1), math3d.V3(0, 1, 0), size/2, offset)
	m.Materials = []Material{{
		Name:                     "glow",
		BaseColor:                [4]float64{1, 1, 1, 1},
		Blend:                    true,
		DoubleSided:              true,
		BaseColorTexture:         -1,
		NormalTexture:            -1,
		MetallicRoughnessTexture: -1,
	}}
	m.CalculateBounds()
	return m
}

// Cube creates an axis-aligned cube centered on the origin with one texture
// unit per face.
func Cube(size float64) *Mesh {
	m := NewMesh("cube")
	half := size / 2
	faces := []struct{ normal, up math3d.Vec3 }{
		{math3d.V3(0, 0, -1), math3d.V3(0, 1, 0)},
		{math3d.V3(0, 0, 1), math3d.V3(0, 1, 0)},
		{math3d.V3(-1, 0, 0), math3d.V3(0, 1, 0)},
		{math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)},
		{math3d.V3(0, 1, 0), math3d.V3(0, 0, 1)},
		{math3d.V3(0, -1, 0), math3d.V3(0, 0, -1)},
	}
	for _, f := range faces {
		m.addFace(f.normal, f.up, half, half)
	}
	m.CalculateBounds()
	return m
}

// addFace appends a square of half-width half whose center sits offset along
// normal. Vertices run top-left, top-right, bottom-right, bottom-left as seen
// from outside, which is clockwise.
func (m *Mesh) addFace(normal, up math3d.Vec3, half, offset float64) {
	// Right as seen by a viewer looking along -normal (left-handed)
	right := up.Cross(normal.Negate())
	center := normal.Scale(offset)
	r := right.Scale(half)
	u := up.Scale(half)

	base := uint32(len(m.Vertices))
	corners := [4]struct {
		pos math3d.Vec3
		uv  math3d.Vec2
	}{
		{center.Sub(r).Add(u), math3d.V2(0, 0)},
		{center.Add(r).Add(u), math3d.V2(1, 0)},
		{center.Add(r).Sub(u), math3d.V2(1, 1)},
		{center.Sub(r).Sub(u), math3d.V2(0, 1)},
	}
	for _, c := range corners {
		m.Vertices = append(m.Vertices, render.VertexIn{
			Position: c.pos,
			Color:    math3d.Gray(1),
			Normal:   normal,
			Tangent:  right,
			UV:       c.uv,
		})
	}
	m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
}
