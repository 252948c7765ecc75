package render

import (
	"github.com/taigrr/duorast/pkg/math3d"
)

// Stats summarizes one rendered frame.
type Stats struct {
	Meshes           int // Meshes that reached the rasterizer
	Culled           int // Meshes rejected by the view frustum
	Triangles        int // Triangles that reached pixel traversal
	ClippedTriangles int // Triangles emitted by the clipper
}

// Renderer drives the full pipeline for a list of meshes: clear, project,
// clip, rasterize.
type Renderer struct {
	fb     *Framebuffer
	raster *Rasterizer

	// ShowBounds draws every mesh's world-space bounds as a line overlay.
	ShowBounds  bool
	BoundsColor math3d.ColorRGB

	// ShowAxes draws unit-length world axes at the origin, X red, Y green, Z blue.
	ShowAxes bool
}

// NewRenderer creates a renderer with its own framebuffer of the given size.
func NewRenderer(width, height int) *Renderer {
	fb := NewFramebuffer(width, height)
	return &Renderer{
		fb:          fb,
		raster:      NewRasterizer(fb),
		BoundsColor: math3d.RGB(1, 1, 0),
	}
}

// Framebuffer returns the color target.
func (r *Renderer) Framebuffer() *Framebuffer { return r.fb }

// Rasterizer returns the rasterizer and its depth buffer.
func (r *Renderer) Rasterizer() *Rasterizer { return r.raster }

// Shader returns the pixel shader used for every lit fragment.
func (r *Renderer) Shader() *Shader { return &r.raster.Shader }

// Resize changes the target size. Contents are undefined until the next Render.
func (r *Renderer) Resize(width, height int) {
	if width == r.fb.Width && height == r.fb.Height {
		return
	}
	r.fb.Resize(width, height)
	r.raster.Resize()
}

// Render draws meshes in order as seen from view and returns frame stats.
func (r *Renderer) Render(meshes []*Mesh, view Viewpoint, info RenderInfo, clear math3d.ColorRGB) Stats {
	var stats Stats

	r.fb.Clear(clear)
	r.raster.ClearDepth()

	frustum := NewFrustumFromMatrix(view.ProjectionMatrix().Mul(view.ViewMatrix()))

	for _, m := range meshes {
		if m == nil || !m.Enabled || len(m.Indices) == 0 || len(m.Vertices) == 0 {
			continue
		}
		if !frustum.IntersectAABB(m.Bounds().Transform(m.World)) {
			stats.Culled++
			continue
		}
		stats.Meshes++

		verts := m.Project(view)
		indices, topology := m.Indices, m.Topology
		if info.UseClipping {
			verts, indices = Clip(verts, indices, topology)
			topology = TriangleList
			stats.ClippedTriangles += len(indices) / 3
		}

		stats.Triangles += r.raster.Draw(DrawCall{
			Vertices: verts,
			Indices:  indices,
			Topology: topology,
			CullMode: m.CullMode,
			Effect:   m.Effect,
			Textures: m.Textures,
		}, info)
	}

	if r.ShowBounds || r.ShowAxes {
		wf := NewWireframe(view, r.fb)
		if r.ShowBounds {
			wf.DrawMeshBounds(meshes, r.BoundsColor)
		}
		if r.ShowAxes {
			wf.DrawAxes(1)
		}
	}

	Logger().Debug("rendered frame",
		"meshes", stats.Meshes,
		"culled", stats.Culled,
		"triangles", stats.Triangles,
		"clipped", stats.ClippedTriangles,
	)
	return stats
}
