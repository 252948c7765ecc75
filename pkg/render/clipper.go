package render

import (
	"math"

	"github.com/taigrr/duorast/pkg/math3d"
)

// Outcode bits, Cohen–Sutherland style.
const (
	OutLeft   = 1
	OutRight  = 2
	OutBottom = 4
	OutTop    = 8
)

// clipEpsilon is how far outside the boundary an intersection may land from
// rounding before it is snapped back onto it.
const clipEpsilon = 0.01

// Bounds is an axis-aligned rectangle. Min is componentwise <= Max.
type Bounds struct {
	Min, Max math3d.Vec2
}

// ClipBounds is the canonical view rectangle in NDC.
var ClipBounds = Bounds{Min: math3d.V2(-1, -1), Max: math3d.V2(1, 1)}

// Outcode classifies p against the rectangle.
func (b Bounds) Outcode(p math3d.Vec2) int {
	code := 0
	if p.X < b.Min.X {
		code |= OutLeft
	} else if p.X > b.Max.X {
		code |= OutRight
	}
	if p.Y < b.Min.Y {
		code |= OutBottom
	} else if p.Y > b.Max.Y {
		code |= OutTop
	}
	return code
}

// corners returns the rectangle corners counter-clockwise (y up), so the
// interior lies to the left of every edge.
func (b Bounds) corners() [4]math3d.Vec2 {
	return [4]math3d.Vec2{
		{X: b.Min.X, Y: b.Min.Y},
		{X: b.Max.X, Y: b.Min.Y},
		{X: b.Max.X, Y: b.Max.Y},
		{X: b.Min.X, Y: b.Max.Y},
	}
}

func (b Bounds) snap(p math3d.Vec2) math3d.Vec2 {
	p.X = snapAxis(p.X, b.Min.X, b.Max.X)
	p.Y = snapAxis(p.Y, b.Min.Y, b.Max.Y)
	return p
}

func snapAxis(v, lo, hi float64) float64 {
	if v < lo && v > lo-clipEpsilon {
		return lo
	}
	if v > hi && v < hi+clipEpsilon {
		return hi
	}
	return v
}

// ClipPolygon clips a polygon against b using Sutherland–Hodgman, one
// boundary edge at a time. The input is not modified. The result keeps the
// input's orientation and is empty when nothing remains.
func ClipPolygon(poly []math3d.Vec2, b Bounds) []math3d.Vec2 {
	out := append([]math3d.Vec2(nil), poly...)
	c := b.corners()

	for e := range 4 {
		if len(out) == 0 {
			break
		}
		a, d := c[e], c[(e+1)%4]

		in := out
		out = make([]math3d.Vec2, 0, len(in)+2)

		prev := in[len(in)-1]
		prevInside := insideEdge(prev, a, d)
		for _, cur := range in {
			curInside := insideEdge(cur, a, d)
			if curInside != prevInside {
				out = appendDistinct(out, b.snap(lineIntersection(prev, cur, a, d)))
			}
			if curInside {
				out = appendDistinct(out, cur)
			}
			prev, prevInside = cur, curInside
		}
	}

	if len(out) > 1 && nearlyEqual(out[0], out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	return out
}

func insideEdge(p, a, b math3d.Vec2) bool {
	return b.Sub(a).Cross(p.Sub(a)) >= 0
}

// lineIntersection returns the point where line p1p2 crosses line ab.
func lineIntersection(p1, p2, a, b math3d.Vec2) math3d.Vec2 {
	d := p2.Sub(p1)
	e := b.Sub(a)
	denom := d.Cross(e)
	if denom == 0 {
		return p1
	}
	t := a.Sub(p1).Cross(e) / denom
	return p1.Add(d.Scale(t))
}

func appendDistinct(poly []math3d.Vec2, p math3d.Vec2) []math3d.Vec2 {
	if n := len(poly); n > 0 && nearlyEqual(poly[n-1], p) {
		return poly
	}
	return append(poly, p)
}

func nearlyEqual(a, b math3d.Vec2) bool {
	return math.Abs(a.X-b.X) < 1e-12 && math.Abs(a.Y-b.Y) < 1e-12
}

// PolygonArea returns the absolute area of a simple polygon (shoelace formula).
func PolygonArea(poly []math3d.Vec2) float64 {
	var sum float64
	for i := range poly {
		sum += poly[i].Cross(poly[(i+1)%len(poly)])
	}
	return math.Abs(sum) / 2
}

// Interpolate blends three projected vertices with screen-space barycentric
// weights w0, w1, w2, correcting for perspective with the vertices' w.
// The view direction is renormalized. X and Y are interpolated linearly.
// With interpolateDepth the result also gets a recomputed depth: W becomes the
// interpolated view depth and Z the depth the rasterizer would compute at that
// point. Otherwise Z and W are left zero.
func Interpolate(v0, v1, v2 VertexOut, w0, w1, w2 float64, interpolateDepth bool) VertexOut {
	p0, p1, p2 := w0/v0.Position.W, w1/v1.Position.W, w2/v2.Position.W
	var ivd float64
	if sum := p0 + p1 + p2; sum != 0 {
		ivd = 1 / sum
	}
	p0, p1, p2 = p0*ivd, p1*ivd, p2*ivd

	out := VertexOut{
		Color:         v0.Color.Scale(p0).Add(v1.Color.Scale(p1)).Add(v2.Color.Scale(p2)),
		Normal:        blend3(v0.Normal, v1.Normal, v2.Normal, p0, p1, p2),
		Tangent:       blend3(v0.Tangent, v1.Tangent, v2.Tangent, p0, p1, p2),
		ViewDirection: blend3(v0.ViewDirection, v1.ViewDirection, v2.ViewDirection, p0, p1, p2).Normalize(),
		UV: math3d.V2(
			v0.UV.X*p0+v1.UV.X*p1+v2.UV.X*p2,
			v0.UV.Y*p0+v1.UV.Y*p1+v2.UV.Y*p2,
		),
	}
	out.Position.X = v0.Position.X*w0 + v1.Position.X*w1 + v2.Position.X*w2
	out.Position.Y = v0.Position.Y*w0 + v1.Position.Y*w1 + v2.Position.Y*w2

	if interpolateDepth {
		out.Position.Z = fragmentDepth(v0.Position.Z, v1.Position.Z, v2.Position.Z, w0, w1, w2)
		out.Position.W = ivd
	}
	return out
}

func blend3(a, b, c math3d.Vec3, wa, wb, wc float64) math3d.Vec3 {
	return math3d.Vec3{
		X: a.X*wa + b.X*wb + c.X*wc,
		Y: a.Y*wa + b.Y*wb + c.Y*wc,
		Z: a.Z*wa + b.Z*wb + c.Z*wc,
	}
}

// fragmentDepth interpolates post-divide depth with screen-space weights.
// NDC z is affine in 1/w, and 1/w is affine across the screen, so a plain
// weighted sum equals mapping the reciprocal view-depth blend
// 1 / (w0/W0 + w1/W1 + w2/W2) back through the projection. Vertices created on
// the near plane (z = 0) therefore pull depth towards 0 only in proportion to
// their weight. All-zero weights yield +Inf so the value never passes a depth
// test.
func fragmentDepth(z0, z1, z2, w0, w1, w2 float64) float64 {
	if w0 == 0 && w1 == 0 && w2 == 0 {
		return math.Inf(1)
	}
	return z0*w0 + z1*w1 + z2*w2
}

// Clip returns a triangle-list mesh whose triangles all lie inside the near
// plane and the [-1,1]² view rectangle. Triangles fully inside are passed
// through and keep sharing vertices; fully outside ones are dropped; the rest
// are polygon-clipped and re-triangulated as fans. Inputs are not modified and
// the returned buffers are freshly allocated.
func Clip(verts []VertexOut, indices []uint32, topology Topology) ([]VertexOut, []uint32) {
	b := clipBuilder{
		src:     verts,
		remap:   make([]int32, len(verts)),
		verts:   make([]VertexOut, 0, len(verts)),
		indices: make([]uint32, 0, len(indices)),
	}
	for i := range b.remap {
		b.remap[i] = -1
	}

	n := triangleCount(len(indices), topology)
	for i := range n {
		tri, ok := TriangleAt(indices, topology, i)
		if !ok {
			continue
		}
		b.clipTriangle(tri)
	}

	Logger().Debug("clipped mesh",
		"triangles_in", n,
		"triangles_out", len(b.indices)/3,
		"vertices_in", len(verts),
		"vertices_out", len(b.verts))

	return b.verts, b.indices
}

// clipVertex is a vertex in flight through the clipper. src is the index of
// the input vertex it is identical to, or -1 if it was created by clipping.
type clipVertex struct {
	v   VertexOut
	src int
}

type clipBuilder struct {
	src     []VertexOut
	remap   []int32
	verts   []VertexOut
	indices []uint32
}

func (b *clipBuilder) emit(cv clipVertex) uint32 {
	if cv.src < 0 {
		b.verts = append(b.verts, cv.v)
		return uint32(len(b.verts) - 1)
	}
	if b.remap[cv.src] < 0 {
		b.verts = append(b.verts, cv.v)
		b.remap[cv.src] = int32(len(b.verts) - 1)
	}
	return uint32(b.remap[cv.src])
}

func (b *clipBuilder) clipTriangle(tri [3]uint32) {
	var in [3]clipVertex
	for k, idx := range tri {
		in[k] = clipVertex{v: b.src[idx], src: int(idx)}
	}

	poly := clipNear(in[:])
	for k := 1; k+1 < len(poly); k++ {
		b.clipTriangleXY([3]clipVertex{poly[0], poly[k], poly[k+1]})
	}
}

// clipNear clips a polygon against the near plane (clip z >= 0) in
// homogeneous space. Vertices created here interpolate every attribute
// linearly in clip space and are divided again afterwards.
func clipNear(poly []clipVertex) []clipVertex {
	allInside := true
	for _, cv := range poly {
		if cv.v.Position.Undivide().Z < 0 {
			allInside = false
			break
		}
	}
	if allInside {
		return poly
	}

	out := make([]clipVertex, 0, len(poly)+1)
	prev := poly[len(poly)-1]
	prevZ := prev.v.Position.Undivide().Z
	for _, cur := range poly {
		curZ := cur.v.Position.Undivide().Z
		if (curZ >= 0) != (prevZ >= 0) {
			t := prevZ / (prevZ - curZ)
			if v, ok := lerpClip(prev.v, cur.v, t); ok {
				out = append(out, clipVertex{v: v, src: -1})
			}
		}
		if curZ >= 0 {
			out = append(out, cur)
		}
		prev, prevZ = cur, curZ
	}

	if len(out) < 3 {
		return nil
	}
	return out
}

func lerpClip(a, b VertexOut, t float64) (VertexOut, bool) {
	clip := a.Position.Undivide().Lerp(b.Position.Undivide(), t)
	if clip.W <= 0 {
		return VertexOut{}, false
	}
	return VertexOut{
		Position:      clip.Divide(),
		Color:         a.Color.Lerp(b.Color, t),
		Normal:        a.Normal.Lerp(b.Normal, t),
		Tangent:       a.Tangent.Lerp(b.Tangent, t),
		ViewDirection: a.ViewDirection.Lerp(b.ViewDirection, t).Normalize(),
		UV:            a.UV.Lerp(b.UV, t),
	}, true
}

// clipTriangleXY clips one triangle against ClipBounds and emits the result.
func (b *clipBuilder) clipTriangleXY(tri [3]clipVertex) {
	var pts [3]math3d.Vec2
	var codes [3]int
	for k, cv := range tri {
		if cv.v.Position.W <= 0 || !cv.v.Position.IsFinite() {
			return
		}
		pts[k] = math3d.V2(cv.v.Position.X, cv.v.Position.Y)
		codes[k] = ClipBounds.Outcode(pts[k])
	}

	if codes[0]|codes[1]|codes[2] == 0 {
		b.indices = append(b.indices, b.emit(tri[0]), b.emit(tri[1]), b.emit(tri[2]))
		return
	}
	if codes[0]&codes[1]&codes[2] != 0 {
		return
	}

	area := pts[1].Sub(pts[0]).Cross(pts[2].Sub(pts[0]))
	if math.Abs(area) < math3d.Epsilon {
		return
	}

	poly := ClipPolygon(pts[:], ClipBounds)
	if len(poly) < 3 {
		return
	}

	invArea := 1 / area
	first := uint32(len(b.verts))
	for _, q := range poly {
		w0 := pts[2].Sub(pts[1]).Cross(q.Sub(pts[1])) * invArea
		w1 := pts[0].Sub(pts[2]).Cross(q.Sub(pts[2])) * invArea
		w2 := pts[1].Sub(pts[0]).Cross(q.Sub(pts[0])) * invArea

		v := Interpolate(tri[0].v, tri[1].v, tri[2].v, w0, w1, w2, true)
		v.Position.X, v.Position.Y = q.X, q.Y
		b.verts = append(b.verts, v)
	}

	// Fan from the first vertex
	for k := uint32(1); int(k)+1 < len(poly); k++ {
		b.indices = append(b.indices, first, first+k, first+k+1)
	}
}
