package render

import (
	"testing"

	"github.com/taigrr/duorast/pkg/math3d"
)

func countPixels(fb *Framebuffer, p uint32) int {
	n := 0
	for _, px := range fb.Pixels {
		if px == p {
			n++
		}
	}
	return n
}

func TestDrawLine3D(t *testing.T) {
	red := math3d.RGB(1, 0, 0)

	tests := []struct {
		name   string
		p1, p2 math3d.Vec3
		want   int
	}{
		{"in front", math3d.V3(-0.5, 0, 0.5), math3d.V3(0.5, 0, 0.5), 5},
		{"behind", math3d.V3(-0.5, 0, -0.5), math3d.V3(0.5, 0, -0.5), 0},
		// Only the half with z >= 0 is drawn
		{"crossing near plane", math3d.V3(-0.5, 0, -1), math3d.V3(0.5, 0, 1), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := NewFramebuffer(8, 8)
			fb.Clear(math3d.Gray(0))
			NewWireframe(identityView{}, fb).DrawLine3D(tt.p1, tt.p2, red)

			if got := countPixels(fb, Pack(red)); got != tt.want {
				t.Errorf("drew %d pixels, want %d", got, tt.want)
			}
		})
	}
}

func TestDrawLine3DFarOffscreen(t *testing.T) {
	fb := NewFramebuffer(8, 8)
	fb.Clear(math3d.Gray(0))
	NewWireframe(identityView{}, fb).DrawLine3D(math3d.V3(0, 0, 0.5), math3d.V3(1e9, 0, 0.5), math3d.Gray(1))

	if got := countPixels(fb, Pack(math3d.Gray(1))); got != 0 {
		t.Errorf("drew %d pixels for an unbounded line", got)
	}
}

func TestDrawAABB(t *testing.T) {
	fb := NewFramebuffer(16, 16)
	fb.Clear(math3d.Gray(0))
	box := NewAABB(math3d.V3(-0.5, -0.5, 0.25), math3d.V3(0.5, 0.5, 0.75))
	NewWireframe(identityView{}, fb).DrawAABB(box, math3d.Gray(1))

	// Orthographic view: front and back faces overlap into one square outline
	white := Pack(math3d.Gray(1))
	for _, p := range [][2]int{{4, 4}, {12, 4}, {4, 12}, {12, 12}, {8, 4}, {4, 8}} {
		if fb.GetPixel(p[0], p[1]) != white {
			t.Errorf("pixel %v not on the outline", p)
		}
	}
	if fb.GetPixel(8, 8) == white {
		t.Error("box interior should stay empty")
	}
}

func TestAABBCornersEdges(t *testing.T) {
	box := NewAABB(math3d.V3(0, 0, 0), math3d.V3(1, 2, 3))
	corners := box.Corners()

	seen := map[math3d.Vec3]bool{}
	for _, c := range corners {
		seen[c] = true
	}
	if len(seen) != 8 {
		t.Errorf("got %d distinct corners, want 8", len(seen))
	}
	// Every edge joins corners that differ in exactly one axis
	for _, e := range boxEdges {
		d := corners[e[1]].Sub(corners[e[0]])
		axes := 0
		for _, v := range []float64{d.X, d.Y, d.Z} {
			if v != 0 {
				axes++
			}
		}
		if axes != 1 {
			t.Errorf("edge %v spans %d axes", e, axes)
		}
	}
}

func TestRendererShowAxes(t *testing.T) {
	r := NewRenderer(16, 16)
	r.ShowAxes = true
	r.Render(nil, identityView{}, DefaultRenderInfo(), math3d.Gray(0))

	fb := r.Framebuffer()
	// The X axis runs right from the center, Y up
	if got := fb.GetPixel(12, 8); got != Pack(math3d.RGB(1, 0, 0)) {
		t.Errorf("x axis pixel = %#x", got)
	}
	if got := fb.GetPixel(8, 4); got != Pack(math3d.RGB(0, 1, 0)) {
		t.Errorf("y axis pixel = %#x", got)
	}
}
