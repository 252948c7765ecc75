package render

import (
	"image/color"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/taigrr/duorast/pkg/math3d"
)

func createTestRasterizer(width, height int) (*Rasterizer, *Framebuffer) {
	fb := NewFramebuffer(width, height)
	fb.Clear(clearBlack)
	r := NewRasterizer(fb)
	r.Shader = flatShader()
	return r, fb
}

func TestEdgeCoeffs(t *testing.T) {
	A, B, C := edgeCoeffs(0, 0, 4, 0)

	tests := []struct {
		name     string
		x, y     float64
		expected float64
	}{
		{"on edge", 2, 0, 0},
		{"below (y-down interior)", 2, 3, 12},
		{"above", 2, -1, -4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := edgeFunc(A, B, C, tc.x, tc.y); got != tc.expected {
				t.Errorf("edgeFunc(%v, %v) = %v, want %v", tc.x, tc.y, got, tc.expected)
			}
		})
	}
}

func TestFragmentDepth(t *testing.T) {
	tests := []struct {
		name       string
		z          [3]float64
		w          [3]float64
		expected   float64
		expectsInf bool
	}{
		{"constant depth", [3]float64{0.5, 0.5, 0.5}, [3]float64{0.2, 0.3, 0.5}, 0.5, false},
		{"single vertex", [3]float64{0.25, 0.5, 0.75}, [3]float64{1, 0, 0}, 0.25, false},
		{"midpoint", [3]float64{0.25, 0.75, 0.5}, [3]float64{0.5, 0.5, 0}, 0.5, false},
		{"near plane vertex", [3]float64{0, 0.9, 0.9}, [3]float64{0.2, 0.4, 0.4}, 0.72, false},
		{"no weights", [3]float64{0.5, 0.5, 0.5}, [3]float64{0, 0, 0}, 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := fragmentDepth(tc.z[0], tc.z[1], tc.z[2], tc.w[0], tc.w[1], tc.w[2])
			if tc.expectsInf {
				if !math.IsInf(got, 1) {
					t.Errorf("fragmentDepth = %v, want +Inf", got)
				}
				return
			}
			if !approxEqual(got, tc.expected, 1e-12) {
				t.Errorf("fragmentDepth = %v, want %v", got, tc.expected)
			}
		})
	}
}

// The interpolated depth must match the projection of the view depth that the
// reciprocal-w blend recovers at the same screen point.
func TestFragmentDepthMatchesViewDepth(t *testing.T) {
	cam := NewCamera()
	cam.SetAspectRatio(1)
	cam.SetPosition(math3d.V3(0, 0, 0))

	src := []VertexIn{
		{Position: math3d.V3(-1, -1, 2)},
		{Position: math3d.V3(1, -1, 8)},
		{Position: math3d.V3(0, 1, 30)},
	}
	out := Project(nil, src, math3d.Identity(), cam)
	proj := cam.ProjectionMatrix()

	for _, bc := range [][3]float64{{0.2, 0.3, 0.5}, {0.6, 0.2, 0.2}, {0.1, 0.1, 0.8}} {
		v := Interpolate(out[0], out[1], out[2], bc[0], bc[1], bc[2], true)
		want := proj.MulVec4(math3d.V4(0, 0, v.Position.W, 1)).Divide().Z
		if !approxEqual(v.Position.Z, want, 1e-9) {
			t.Errorf("depth at %v = %v, want %v", bc, v.Position.Z, want)
		}
	}
}

func TestRasterizerClearDepth(t *testing.T) {
	r, _ := createTestRasterizer(10, 10)

	// Manually set some depth values
	r.depth[0] = 0.5
	r.depth[50] = 0.25

	r.ClearDepth()

	for i, d := range r.depth {
		if d != 1 {
			t.Fatalf("depth[%d] = %v after clear, want 1", i, d)
		}
	}
}

func TestRasterizerDepthBoundsCheck(t *testing.T) {
	r, _ := createTestRasterizer(10, 10)

	for _, p := range [][2]int{{-1, 0}, {0, -1}, {10, 0}, {0, 10}} {
		if d := r.DepthAt(p[0], p[1]); d != 1 {
			t.Errorf("DepthAt(%d, %d) = %v, want 1", p[0], p[1], d)
		}
	}
}

func TestRasterizerResize(t *testing.T) {
	r, fb := createTestRasterizer(4, 4)
	fb.Resize(8, 6)
	r.Resize()

	if len(r.depth) != 48 {
		t.Errorf("len(depth) = %d, want 48", len(r.depth))
	}
	if len(r.rows) != 6 {
		t.Errorf("len(rows) = %d, want 6", len(r.rows))
	}
}

func TestDrawCoversPixelCenters(t *testing.T) {
	r, fb := createTestRasterizer(4, 4)

	v0, v1, v2 := ndcVertex(-0.5, 0.5, 0.5), ndcVertex(0.5, 0.5, 0.5), ndcVertex(0.5, -0.5, 0.5)
	for _, v := range []*VertexOut{&v0, &v1, &v2} {
		v.Color = math3d.Gray(1)
	}

	info := DefaultRenderInfo()
	info.ShadingMode = ShadeDiffuse
	drawn := r.Draw(DrawCall{
		Vertices: []VertexOut{v0, v1, v2},
		Indices:  []uint32{0, 1, 2},
		Topology: TriangleList,
		CullMode: CullBack,
	}, info)
	if drawn != 1 {
		t.Fatalf("Draw returned %d, want 1", drawn)
	}

	white := Pack(math3d.Gray(1))
	tests := []struct {
		x, y    int
		covered bool
	}{
		{1, 1, true},  // on the diagonal edge
		{2, 1, true},  // inside
		{2, 2, true},  // on the diagonal edge
		{1, 2, false}, // other half of the square
		{3, 1, false}, // centre at 3.5 lies past the right edge
		{0, 0, false},
	}
	for _, tc := range tests {
		got := fb.GetPixel(tc.x, tc.y) == white
		if got != tc.covered {
			t.Errorf("pixel (%d, %d) covered = %v, want %v", tc.x, tc.y, got, tc.covered)
		}
	}

	if d := r.DepthAt(2, 1); !approxEqual(d, 0.5, 1e-12) {
		t.Errorf("DepthAt(2, 1) = %v, want 0.5", d)
	}
}

func TestDrawCulling(t *testing.T) {
	// Clockwise in screen space, so front facing
	front := []VertexOut{ndcVertex(-1, 1, 0.5), ndcVertex(1, 1, 0.5), ndcVertex(1, -1, 0.5)}
	back := []VertexOut{front[0], front[2], front[1]}

	tests := []struct {
		name     string
		verts    []VertexOut
		cull     CullMode
		expected bool
	}{
		{"front with back culling", front, CullBack, true},
		{"back with back culling", back, CullBack, false},
		{"front with front culling", front, CullFront, false},
		{"back with front culling", back, CullFront, true},
		{"back with no culling", back, CullNone, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, fb := createTestRasterizer(8, 8)
			for i := range tc.verts {
				tc.verts[i].Color = math3d.Gray(1)
			}
			info := DefaultRenderInfo()
			info.ShadingMode = ShadeDiffuse
			r.Draw(DrawCall{
				Vertices: tc.verts,
				Indices:  []uint32{0, 1, 2},
				CullMode: tc.cull,
			}, info)

			got := fb.GetPixel(6, 2) != Pack(clearBlack)
			if got != tc.expected {
				t.Errorf("pixel drawn = %v, want %v", got, tc.expected)
			}
		})
	}
}

func TestDrawSkipsDegenerateTriangles(t *testing.T) {
	r, fb := createTestRasterizer(8, 8)
	info := DefaultRenderInfo()

	tests := []struct {
		name    string
		verts   []VertexOut
		indices []uint32
	}{
		{"zero area", []VertexOut{ndcVertex(-1, -1, 0.5), ndcVertex(0, 0, 0.5), ndcVertex(1, 1, 0.5)}, []uint32{0, 1, 2}},
		{"repeated index", []VertexOut{ndcVertex(-1, 1, 0.5), ndcVertex(1, 1, 0.5), ndcVertex(1, -1, 0.5)}, []uint32{0, 1, 1}},
		{"behind eye", []VertexOut{
			{Position: math3d.V4(-1, 1, 0.5, -1)},
			{Position: math3d.V4(1, 1, 0.5, -1)},
			{Position: math3d.V4(1, -1, 0.5, -1)},
		}, []uint32{0, 1, 2}},
		{"nan", []VertexOut{ndcVertex(math.NaN(), 1, 0.5), ndcVertex(1, 1, 0.5), ndcVertex(1, -1, 0.5)}, []uint32{0, 1, 2}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if drawn := r.Draw(DrawCall{Vertices: tc.verts, Indices: tc.indices, CullMode: CullNone}, info); drawn != 0 {
				t.Errorf("Draw returned %d, want 0", drawn)
			}
			for i, p := range fb.Pixels {
				if p != Pack(clearBlack) {
					t.Fatalf("pixel %d = %#x, want untouched", i, p)
				}
			}
		})
	}
}

func TestDrawFastCulling(t *testing.T) {
	// Every vertex is outside the unit cube but the triangle still covers it
	verts := []VertexOut{ndcVertex(-3, 3, 0.5), ndcVertex(3, 3, 0.5), ndcVertex(0, -3, 0.5)}
	dc := DrawCall{Vertices: verts, Indices: []uint32{0, 1, 2}, CullMode: CullNone}

	info := DefaultRenderInfo()
	info.UseFastCulling = true
	r, _ := createTestRasterizer(8, 8)
	if drawn := r.Draw(dc, info); drawn != 0 {
		t.Errorf("with fast culling Draw returned %d, want 0", drawn)
	}

	info.UseFastCulling = false
	r, _ = createTestRasterizer(8, 8)
	if drawn := r.Draw(dc, info); drawn != 1 {
		t.Errorf("without fast culling Draw returned %d, want 1", drawn)
	}
	if d := r.DepthAt(4, 4); d >= 1 {
		t.Errorf("DepthAt(4, 4) = %v, want < 1", d)
	}
}

func TestDrawDepthTest(t *testing.T) {
	r, fb := createTestRasterizer(4, 4)
	info := DefaultRenderInfo()
	info.ShadingMode = ShadeDiffuse

	tri := func(z float64, c math3d.ColorRGB) []VertexOut {
		verts := []VertexOut{ndcVertex(-1, 1, z), ndcVertex(3, 1, z), ndcVertex(-1, -3, z)}
		for i := range verts {
			verts[i].Color = c
		}
		return verts
	}

	red, green := math3d.RGB(1, 0, 0), math3d.RGB(0, 1, 0)
	r.Draw(DrawCall{Vertices: tri(0.3, red), Indices: []uint32{0, 1, 2}}, info)
	r.Draw(DrawCall{Vertices: tri(0.6, green), Indices: []uint32{0, 1, 2}}, info)

	if got := fb.GetPixel(1, 1); got != Pack(red) {
		t.Errorf("pixel = %#x, want nearer red %#x", got, Pack(red))
	}
	if d := r.DepthAt(1, 1); !approxEqual(d, 0.3, 1e-12) {
		t.Errorf("depth = %v, want 0.3", d)
	}

	// An equal depth does not pass
	r.Draw(DrawCall{Vertices: tri(0.3, green), Indices: []uint32{0, 1, 2}}, info)
	if got := fb.GetPixel(1, 1); got != Pack(red) {
		t.Errorf("equal depth overwrote pixel: %#x", got)
	}
}

func TestDrawTransparentDoesNotWriteDepth(t *testing.T) {
	r, fb := createTestRasterizer(4, 4)
	fb.Clear(math3d.Gray(0))
	info := DefaultRenderInfo()

	verts := []VertexOut{ndcVertex(-1, 1, 0.5), ndcVertex(3, 1, 0.5), ndcVertex(-1, -3, 0.5)}
	tex := TextureSet{Diffuse: NewSolidTexture(opaqueWhite)}
	r.Draw(DrawCall{Vertices: verts, Indices: []uint32{0, 1, 2}, Effect: EffectTransparent, Textures: tex}, info)

	if got := fb.GetPixel(2, 2); got != Pack(math3d.Gray(1)) {
		t.Errorf("pixel = %#x, want opaque white", got)
	}
	if d := r.DepthAt(2, 2); d != 1 {
		t.Errorf("depth = %v, want 1 (untouched)", d)
	}
}

func TestDrawSharedEdgeCoveredOnce(t *testing.T) {
	// The diagonal of the square passes through pixel centres. A translucent
	// quad must blend every pixel exactly once.
	verts, indices := centerSquare(0.5)
	projected := Project(nil, verts, math3d.Identity(), identityView{})
	tex := TextureSet{Diffuse: NewSolidTexture(color.NRGBA{255, 255, 255, 128})}

	tests := []struct {
		name    string
		indices []uint32
		cull    CullMode
	}{
		{"clockwise", indices, CullBack},
		{"counter-clockwise", []uint32{0, 2, 1, 0, 3, 2}, CullNone},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, fb := createTestRasterizer(8, 8)
			r.Draw(DrawCall{
				Vertices: projected,
				Indices:  tc.indices,
				CullMode: tc.cull,
				Effect:   EffectTransparent,
				Textures: tex,
			}, DefaultRenderInfo())

			once := Pack(math3d.Gray(128.0 / 255))
			for y := range 8 {
				for x := range 8 {
					want := Pack(clearBlack)
					if x >= 2 && x <= 5 && y >= 2 && y <= 5 {
						want = once
					}
					if got := fb.GetPixel(x, y); got != want {
						t.Errorf("pixel (%d, %d) = %#x, want %#x", x, y, got, want)
					}
				}
			}
		})
	}
}

func TestTopLeft(t *testing.T) {
	tests := []struct {
		name     string
		A, B     float64
		expected bool
	}{
		{"left edge", 2, -1, true},
		{"right edge", -2, 1, false},
		{"top edge", 0, 3, true},
		{"bottom edge", 0, -3, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := topLeft(tc.A, tc.B); got != tc.expected {
				t.Errorf("topLeft(%v, %v) = %v, want %v", tc.A, tc.B, got, tc.expected)
			}
		})
	}
}

func TestDrawStripWinding(t *testing.T) {
	// A two-triangle strip forming the full screen. Without the odd-triangle
	// swap the second triangle would be back facing and culled.
	verts := []VertexOut{
		ndcVertex(-1, 1, 0.5),
		ndcVertex(1, 1, 0.5),
		ndcVertex(-1, -1, 0.5),
		ndcVertex(1, -1, 0.5),
	}
	for i := range verts {
		verts[i].Color = math3d.Gray(1)
	}

	r, fb := createTestRasterizer(4, 4)
	info := DefaultRenderInfo()
	info.ShadingMode = ShadeDiffuse
	drawn := r.Draw(DrawCall{Vertices: verts, Indices: []uint32{0, 1, 2, 3}, Topology: TriangleStrip, CullMode: CullBack}, info)
	if drawn != 2 {
		t.Fatalf("Draw returned %d, want 2", drawn)
	}
	for i, p := range fb.Pixels {
		if p != Pack(math3d.Gray(1)) {
			t.Errorf("pixel %d = %#x, want white", i, p)
		}
	}
}

func TestDrawVisualizeBoundingBox(t *testing.T) {
	r, fb := createTestRasterizer(8, 8)
	info := DefaultRenderInfo()
	info.VisualizeBoundingBox = true

	// Thin diagonal triangle: coverage is small but its bbox is the full screen
	verts := []VertexOut{ndcVertex(-1, 1, 0.5), ndcVertex(1, -1, 0.5), ndcVertex(-0.9, 1, 0.5)}
	r.Draw(DrawCall{Vertices: verts, Indices: []uint32{0, 1, 2}, CullMode: CullNone}, info)

	white := Pack(math3d.Gray(1))
	if fb.GetPixel(7, 0) != white || fb.GetPixel(0, 7) != white {
		t.Errorf("bbox corners not filled: %#x %#x", fb.GetPixel(7, 0), fb.GetPixel(0, 7))
	}
}

func TestDrawVisualizeDepth(t *testing.T) {
	r, fb := createTestRasterizer(4, 4)
	info := DefaultRenderInfo()
	info.VisualizeDepth = true
	info.DepthRemapMin = 0
	info.DepthRemapMax = 1

	verts := []VertexOut{ndcVertex(-1, 1, 0.5), ndcVertex(3, 1, 0.5), ndcVertex(-1, -3, 0.5)}
	r.Draw(DrawCall{Vertices: verts, Indices: []uint32{0, 1, 2}}, info)

	if got, want := fb.GetPixel(1, 1), Pack(math3d.Gray(0.5)); got != want {
		t.Errorf("pixel = %#x, want %#x", got, want)
	}
}

// layeredTriangles returns n full-screen triangles with distinct depths and
// colors in shuffled order.
func layeredTriangles(n int) ([]VertexOut, []uint32, float64) {
	rng := rand.New(rand.NewPCG(7, 11))
	order := rng.Perm(n)

	verts := make([]VertexOut, 0, 3*n)
	indices := make([]uint32, 0, 3*n)
	nearest := 1.0
	for _, k := range order {
		z := 0.1 + 0.8*float64(k)/float64(n)
		nearest = min(nearest, z)
		// Jitter the corners so triangles overlap only partly near the edges
		jx, jy := rng.Float64()*0.5, rng.Float64()*0.5
		c := math3d.RGB(float64(k)/float64(n), rng.Float64(), 1-float64(k)/float64(n))
		tri := []VertexOut{ndcVertex(-1-jx, 1+jy, z), ndcVertex(3, 1+jy, z), ndcVertex(-1-jx, -3, z)}
		for i := range tri {
			tri[i].Color = c
		}
		base := uint32(len(verts))
		verts = append(verts, tri...)
		indices = append(indices, base, base+1, base+2)
	}
	return verts, indices, nearest
}

func TestDrawParallelMatchesSerial(t *testing.T) {
	verts, indices, nearest := layeredTriangles(256)
	dc := DrawCall{Vertices: verts, Indices: indices, CullMode: CullBack}

	info := DefaultRenderInfo()
	info.ShadingMode = ShadeDiffuse
	info.UseFastCulling = false

	serial, serialFB := createTestRasterizer(32, 32)
	info.UseMultiThreading = false
	serial.Draw(dc, info)

	parallel, parallelFB := createTestRasterizer(32, 32)
	parallel.Workers = 8
	info.UseMultiThreading = true
	if drawn := parallel.Draw(dc, info); drawn != 256 {
		t.Errorf("parallel Draw returned %d, want 256", drawn)
	}

	for i := range serialFB.Pixels {
		if serial.depth[i] != parallel.depth[i] {
			t.Fatalf("depth[%d]: serial %v, parallel %v", i, serial.depth[i], parallel.depth[i])
		}
		if serialFB.Pixels[i] != parallelFB.Pixels[i] {
			t.Fatalf("pixel[%d]: serial %#x, parallel %#x", i, serialFB.Pixels[i], parallelFB.Pixels[i])
		}
	}
	if d := serial.DepthAt(16, 16); !approxEqual(d, nearest, 1e-12) {
		t.Errorf("center depth = %v, want nearest %v", d, nearest)
	}
}

func BenchmarkDrawSerial(b *testing.B) {
	verts, indices, _ := layeredTriangles(512)
	r, _ := createTestRasterizer(160, 120)
	info := DefaultRenderInfo()
	info.UseFastCulling = false
	info.UseMultiThreading = false
	dc := DrawCall{Vertices: verts, Indices: indices}

	for b.Loop() {
		r.ClearDepth()
		r.Draw(dc, info)
	}
}

func BenchmarkDrawParallel(b *testing.B) {
	verts, indices, _ := layeredTriangles(512)
	r, _ := createTestRasterizer(160, 120)
	info := DefaultRenderInfo()
	info.UseFastCulling = false
	dc := DrawCall{Vertices: verts, Indices: indices}

	for b.Loop() {
		r.ClearDepth()
		r.Draw(dc, info)
	}
}
