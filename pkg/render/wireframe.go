package render

import (
	"math"

	"github.com/taigrr/duorast/pkg/math3d"
)

// Wireframe draws world-space line overlays on top of a rendered frame.
// Lines ignore the depth buffer.
type Wireframe struct {
	view Viewpoint
	fb   *Framebuffer
}

// NewWireframe creates a new wireframe overlay for the given viewpoint.
func NewWireframe(view Viewpoint, fb *Framebuffer) *Wireframe {
	return &Wireframe{
		view: view,
		fb:   fb,
	}
}

// boxEdges indexes the corners produced by AABB.Corners.
var boxEdges = [12][2]int{
	// Bottom face
	{0, 1},
	{1, 3},
	{3, 2},
	{2, 0},
	// Top face
	{4, 5},
	{5, 7},
	{7, 6},
	{6, 4},
	// Connecting edges
	{0, 4},
	{1, 5},
	{2, 6},
	{3, 7},
}

// DrawLine3D draws a line between two world-space points.
func (w *Wireframe) DrawLine3D(p1, p2 math3d.Vec3, c math3d.ColorRGB) {
	vp := w.view.ProjectionMatrix().Mul(w.view.ViewMatrix())
	a := vp.MulVec4(math3d.V4FromV3(p1, 1))
	b := vp.MulVec4(math3d.V4FromV3(p2, 1))

	// Trim the segment to the near plane (z >= 0 in clip space)
	if a.Z < 0 && b.Z < 0 {
		return
	}
	if a.Z < 0 {
		a = a.Lerp(b, a.Z/(a.Z-b.Z))
	} else if b.Z < 0 {
		b = b.Lerp(a, b.Z/(b.Z-a.Z))
	}
	if a.W <= 0 || b.W <= 0 {
		return
	}

	x1, y1, ok1 := w.toScreen(a)
	x2, y2, ok2 := w.toScreen(b)
	if !ok1 || !ok2 {
		return
	}
	w.fb.DrawLine(x1, y1, x2, y2, Pack(c))
}

func (w *Wireframe) toScreen(p math3d.Vec4) (int, int, bool) {
	x := (p.X/p.W + 1) * 0.5 * float64(w.fb.Width)
	y := (1 - p.Y/p.W) * 0.5 * float64(w.fb.Height)
	// Keep Bresenham bounded for points far off screen
	limit := 4 * float64(max(w.fb.Width, w.fb.Height))
	if math.IsNaN(x) || math.IsNaN(y) || math.Abs(x) > limit || math.Abs(y) > limit {
		return 0, 0, false
	}
	return int(math.Floor(x)), int(math.Floor(y)), true
}

// DrawAABB draws the twelve edges of a world-space box.
func (w *Wireframe) DrawAABB(box AABB, c math3d.ColorRGB) {
	corners := box.Corners()
	for _, edge := range boxEdges {
		w.DrawLine3D(corners[edge[0]], corners[edge[1]], c)
	}
}

// DrawMeshBounds draws the world-space bounds of every enabled mesh.
func (w *Wireframe) DrawMeshBounds(meshes []*Mesh, c math3d.ColorRGB) {
	for _, m := range meshes {
		if m == nil || !m.Enabled || len(m.Vertices) == 0 {
			continue
		}
		w.DrawAABB(m.Bounds().Transform(m.World), c)
	}
}

// DrawAxes draws the coordinate axes at the origin.
func (w *Wireframe) DrawAxes(length float64) {
	origin := math3d.Zero3()
	w.DrawLine3D(origin, math3d.V3(length, 0, 0), math3d.RGB(1, 0, 0)) // X axis
	w.DrawLine3D(origin, math3d.V3(0, length, 0), math3d.RGB(0, 1, 0)) // Y axis
	w.DrawLine3D(origin, math3d.V3(0, 0, length), math3d.RGB(0, 0, 1)) // Z axis
}
