// Package render implements a CPU triangle pipeline: vertex projection,
// clipping, edge-function rasterization with a depth buffer, and per-pixel
// shading into a packed 32-bit framebuffer.
package render

import (
	"math"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/taigrr/duorast/pkg/math3d"
)

// minParallelTriangles is the smallest triangle count worth splitting across
// goroutines.
const minParallelTriangles = 64

// Rasterizer scan-converts projected triangles into a Framebuffer and owns
// the depth buffer that goes with it.
type Rasterizer struct {
	fb     *Framebuffer
	depth  []float64
	rows   []sync.Mutex // One lock per scanline, held for depth test and color write
	Shader Shader

	// Workers limits parallel triangle dispatch; 0 means GOMAXPROCS.
	Workers int
}

// DrawCall is one mesh's worth of rasterization input.
type DrawCall struct {
	Vertices []VertexOut
	Indices  []uint32
	Topology Topology
	CullMode CullMode
	Effect   Effect
	Textures TextureSet
}

// NewRasterizer creates a rasterizer drawing into fb with the default shader.
func NewRasterizer(fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{
		fb:     fb,
		Shader: DefaultShader(),
	}
	r.Resize()
	return r
}

// Resize reallocates the depth buffer to match the framebuffer.
func (r *Rasterizer) Resize() {
	n := r.fb.Width * r.fb.Height
	if cap(r.depth) < n {
		r.depth = make([]float64, n)
	} else {
		r.depth = r.depth[:n]
	}
	if len(r.rows) != r.fb.Height {
		r.rows = make([]sync.Mutex, r.fb.Height)
	}
	r.ClearDepth()
}

// Width returns the target width in pixels.
func (r *Rasterizer) Width() int { return r.fb.Width }

// Height returns the target height in pixels.
func (r *Rasterizer) Height() int { return r.fb.Height }

// ClearDepth resets every depth value to 1.0 (the far plane).
func (r *Rasterizer) ClearDepth() {
	if len(r.depth) == 0 {
		return
	}
	r.depth[0] = 1
	for filled := 1; filled < len(r.depth); filled *= 2 {
		copy(r.depth[filled:], r.depth[:filled])
	}
}

// DepthAt returns the stored depth at (x, y), or 1 if out of bounds.
func (r *Rasterizer) DepthAt(x, y int) float64 {
	if x < 0 || x >= r.fb.Width || y < 0 || y >= r.fb.Height {
		return 1
	}
	return r.depth[y*r.fb.Width+x]
}

// Draw rasterizes every triangle of dc and returns how many triangles reached
// pixel traversal. Opaque draws are spread across goroutines when
// info.UseMultiThreading is set; transparent draws always run in submission
// order so blending stays deterministic.
func (r *Rasterizer) Draw(dc DrawCall, info RenderInfo) int {
	n := triangleCount(len(dc.Indices), dc.Topology)
	if n == 0 || len(r.depth) == 0 {
		return 0
	}

	if !info.UseMultiThreading || dc.Effect != EffectOpaque || n < minParallelTriangles {
		drawn := 0
		for i := range n {
			if r.drawTriangle(&dc, &info, i, false) {
				drawn++
			}
		}
		return drawn
	}

	workers := r.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	chunk := max((n+workers*4-1)/(workers*4), minParallelTriangles/4)

	var drawn atomic.Int64
	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		g.Go(func() error {
			var local int64
			for i := start; i < end; i++ {
				if r.drawTriangle(&dc, &info, i, true) {
					local++
				}
			}
			drawn.Add(local)
			return nil
		})
	}
	_ = g.Wait()

	return int(drawn.Load())
}

// outsideClipCube reports whether a projected vertex lies outside
// [-1,1]×[-1,1]×[0,1].
func outsideClipCube(p math3d.Vec4) bool {
	return p.X < -1 || p.X > 1 || p.Y < -1 || p.Y > 1 || p.Z < 0 || p.Z > 1
}

// edgeCoeffs returns A, B, C such that A*x + B*y + C equals the 2D cross
// product of (x1-x0, y1-y0) with (x-x0, y-y0).
// Positive = left of edge (in y-down screen space, clockwise interior).
func edgeCoeffs(x0, y0, x1, y1 float64) (A, B, C float64) {
	A = y0 - y1 // dy
	B = x1 - x0 // -dx
	C = x0*y1 - x1*y0
	return
}

// edgeFunc evaluates edge function at point (x, y)
func edgeFunc(A, B, C, x, y float64) float64 {
	return A*x + B*y + C
}

// topLeft reports whether an edge with interior-positive coefficients is a
// left edge (interior towards +x) or a top edge (horizontal, interior towards
// +y in y-down screen space). Pixel centres exactly on such edges are covered;
// on any other edge they belong to the neighbouring triangle.
func topLeft(A, B float64) bool {
	return A > 0 || (A == 0 && B > 0)
}

func covers(w float64, topLeft bool) bool {
	return w > 0 || (w == 0 && topLeft)
}

func (r *Rasterizer) drawTriangle(dc *DrawCall, info *RenderInfo, i int, locked bool) bool {
	tri, ok := TriangleAt(dc.Indices, dc.Topology, i)
	if !ok {
		return false
	}
	v0, v1, v2 := dc.Vertices[tri[0]], dc.Vertices[tri[1]], dc.Vertices[tri[2]]
	p0, p1, p2 := v0.Position, v1.Position, v2.Position

	// Unclipped geometry behind the eye cannot be interpolated
	if p0.W <= 0 || p1.W <= 0 || p2.W <= 0 || !p0.IsFinite() || !p1.IsFinite() || !p2.IsFinite() {
		return false
	}
	if info.UseFastCulling && outsideClipCube(p0) && outsideClipCube(p1) && outsideClipCube(p2) {
		return false
	}

	width, height := r.fb.Width, r.fb.Height
	fw, fh := float64(width), float64(height)

	// NDC to screen coordinates
	x0, y0 := (p0.X+1)*0.5*fw, (1-p0.Y)*0.5*fh
	x1, y1 := (p1.X+1)*0.5*fw, (1-p1.Y)*0.5*fh
	x2, y2 := (p2.X+1)*0.5*fw, (1-p2.Y)*0.5*fh

	area := (x1-x0)*(y2-y0) - (y1-y0)*(x2-x0)
	if math.Abs(area) < math3d.Epsilon {
		return false
	}
	invArea := 1 / area

	// Bounding box (clamped to screen)
	minX := int(math.Max(0, math.Floor(min(x0, x1, x2))))
	maxX := int(math.Min(fw-1, math.Ceil(max(x0, x1, x2))))
	minY := int(math.Max(0, math.Floor(min(y0, y1, y2))))
	maxY := int(math.Min(fh-1, math.Ceil(max(y0, y1, y2))))
	if minX > maxX || minY > maxY {
		return false
	}

	if info.VisualizeBoundingBox {
		white := Pack(math3d.Gray(1))
		for y := minY; y <= maxY; y++ {
			r.lockRow(y, locked)
			row := r.fb.Pixels[y*width : (y+1)*width]
			for x := minX; x <= maxX; x++ {
				row[x] = white
			}
			r.unlockRow(y, locked)
		}
		return true
	}

	// Edge 0: v1 -> v2, Edge 1: v2 -> v0, Edge 2: v0 -> v1
	A0, B0, C0 := edgeCoeffs(x1, y1, x2, y2)
	A1, B1, C1 := edgeCoeffs(x2, y2, x0, y0)
	A2, B2, C2 := edgeCoeffs(x0, y0, x1, y1)

	// Orient the edges so the interior is positive for either winding
	front := area > 0
	if !front {
		A0, B0, C0 = -A0, -B0, -C0
		A1, B1, C1 = -A1, -B1, -C1
		A2, B2, C2 = -A2, -B2, -C2
		invArea = -invArea
	}
	if (front && dc.CullMode == CullFront) || (!front && dc.CullMode == CullBack) {
		return true
	}
	tl0, tl1, tl2 := topLeft(A0, B0), topLeft(A1, B1), topLeft(A2, B2)

	// Evaluate edge functions at the first pixel center of the bounding box
	px := float64(minX) + 0.5
	py := float64(minY) + 0.5
	w0Row := edgeFunc(A0, B0, C0, px, py)
	w1Row := edgeFunc(A1, B1, C1, px, py)
	w2Row := edgeFunc(A2, B2, C2, px, py)

	writeDepth := dc.Effect.WritesDepth()

	for y := minY; y <= maxY; y++ {
		w0, w1, w2 := w0Row, w1Row, w2Row
		rowOffset := y * width

		r.lockRow(y, locked)
		for x := minX; x <= maxX; x, w0, w1, w2 = x+1, w0+A0, w1+A1, w2+A2 {
			if !covers(w0, tl0) || !covers(w1, tl1) || !covers(w2, tl2) {
				continue
			}

			bc0 := w0 * invArea
			bc1 := w1 * invArea
			bc2 := w2 * invArea

			z := fragmentDepth(p0.Z, p1.Z, p2.Z, bc0, bc1, bc2)
			idx := rowOffset + x
			if !(z < r.depth[idx]) {
				continue
			}
			if writeDepth {
				r.depth[idx] = z
			}

			if info.VisualizeDepth {
				r.fb.Pixels[idx] = Pack(math3d.Gray(math3d.Remap(z, info.DepthRemapMin, info.DepthRemapMax)))
				continue
			}

			frag := Interpolate(v0, v1, v2, bc0, bc1, bc2, false)
			current := Unpack(r.fb.Pixels[idx])
			c := r.Shader.Shade(frag, dc.Textures, dc.Effect, info.ShadingMode, info.UseNormalMap, current)
			r.fb.Pixels[idx] = Pack(c.MaxToOne())
		}
		r.unlockRow(y, locked)

		w0Row += B0
		w1Row += B1
		w2Row += B2
	}

	return true
}

func (r *Rasterizer) lockRow(y int, locked bool) {
	if locked {
		r.rows[y].Lock()
	}
}

func (r *Rasterizer) unlockRow(y int, locked bool) {
	if locked {
		r.rows[y].Unlock()
	}
}
