package render

import (
	"github.com/taigrr/duorast/pkg/math3d"
)

// Plane is the set of points p with Normal·p + D = 0.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// Normalize scales the plane equation so the normal has unit length.
func (p *Plane) Normalize() {
	l := p.Normal.Len()
	if l == 0 {
		return
	}
	p.Normal = p.Normal.Scale(1.0 / l)
	p.D /= l
}

// DistanceToPoint returns the signed distance from the plane to a point,
// positive on the side the normal points to.
func (p Plane) DistanceToPoint(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Frustum is the six inward-facing planes of a view volume, in the order
// Left, Right, Bottom, Top, Near, Far.
type Frustum struct {
	Planes [6]Plane
}

const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// frustumRows lists, per plane, the matrix row combined with row 3 and its
// sign. A clip point is inside when w ± coord >= 0, except near, which is
// z >= 0 for the [0, 1] depth range.
var frustumRows = [6]struct {
	row  int
	sign float64
	w    bool
}{
	FrustumLeft:   {0, 1, true},
	FrustumRight:  {0, -1, true},
	FrustumBottom: {1, 1, true},
	FrustumTop:    {1, -1, true},
	FrustumNear:   {2, 1, false},
	FrustumFar:    {2, -1, true},
}

// NewFrustumFromMatrix extracts the frustum planes of a view-projection
// matrix built with math3d.PerspectiveLH (Gribb/Hartmann).
func NewFrustumFromMatrix(m math3d.Mat4) Frustum {
	// Row i of a column-major matrix is m[i], m[i+4], m[i+8], m[i+12]
	row := func(i int) (math3d.Vec3, float64) {
		return math3d.V3(m[i], m[i+4], m[i+8]), m[i+12]
	}
	wn, wd := row(3)

	var f Frustum
	for i, r := range frustumRows {
		n, d := row(r.row)
		p := Plane{Normal: n.Scale(r.sign), D: d * r.sign}
		if r.w {
			p.Normal = p.Normal.Add(wn)
			p.D += wd
		}
		p.Normalize()
		f.Planes[i] = p
	}
	return f
}

// IntersectAABB reports whether any part of box may be inside the frustum.
// It is conservative: boxes near a frustum corner can pass while invisible.
func (f Frustum) IntersectAABB(box AABB) bool {
	for _, plane := range f.Planes {
		// The corner furthest along the plane normal
		far := box.corner(plane.Normal.X >= 0, plane.Normal.Y >= 0, plane.Normal.Z >= 0)
		if plane.DistanceToPoint(far) < 0 {
			return false
		}
	}
	return true
}

// ContainsPoint tests if a point is inside the frustum.
func (f Frustum) ContainsPoint(p math3d.Vec3) bool {
	for _, plane := range f.Planes {
		if plane.DistanceToPoint(p) < 0 {
			return false
		}
	}
	return true
}

// AABB is an axis-aligned bounding box. Min is componentwise <= Max.
type AABB struct {
	Min math3d.Vec3
	Max math3d.Vec3
}

// NewAABB creates an AABB from min and max points.
func NewAABB(min, max math3d.Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// Center returns the center of the AABB.
func (b AABB) Center() math3d.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the dimensions of the AABB.
func (b AABB) Size() math3d.Vec3 {
	return b.Max.Sub(b.Min)
}

// corner picks Max or Min per axis.
func (b AABB) corner(maxX, maxY, maxZ bool) math3d.Vec3 {
	return math3d.V3(
		selectComponent(maxX, b.Max.X, b.Min.X),
		selectComponent(maxY, b.Max.Y, b.Min.Y),
		selectComponent(maxZ, b.Max.Z, b.Min.Z),
	)
}

// Corners returns the eight corners. Bit 0 of the index selects Max.X, bit 1
// Max.Z and bit 2 Max.Y, so 0-3 are the bottom face and 4-7 the top.
func (b AABB) Corners() [8]math3d.Vec3 {
	var out [8]math3d.Vec3
	for i := range out {
		out[i] = b.corner(i&1 != 0, i&4 != 0, i&2 != 0)
	}
	return out
}

// Transform returns the box bounding all eight corners of b after m.
func (b AABB) Transform(m math3d.Mat4) AABB {
	corners := b.Corners()
	first := m.MulVec3(corners[0])
	out := AABB{Min: first, Max: first}
	for _, c := range corners[1:] {
		p := m.MulVec3(c)
		out.Min = out.Min.Min(p)
		out.Max = out.Max.Max(p)
	}
	return out
}

// ContainsPoint returns true if the point is inside the AABB.
func (b AABB) ContainsPoint(p math3d.Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

func selectComponent(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}
