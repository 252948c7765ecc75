package render

import (
	"github.com/taigrr/duorast/pkg/math3d"
)

// VertexIn is a mesh vertex in local space.
type VertexIn struct {
	Position math3d.Vec3
	Color    math3d.ColorRGB
	Normal   math3d.Vec3
	Tangent  math3d.Vec3
	UV       math3d.Vec2
}

// VertexOut is a projected vertex. After projection Position holds NDC x, y, z
// and the clip-space w (view depth), which perspective-correct interpolation
// needs.
type VertexOut struct {
	Position      math3d.Vec4
	Color         math3d.ColorRGB
	Normal        math3d.Vec3
	Tangent       math3d.Vec3
	ViewDirection math3d.Vec3
	UV            math3d.Vec2
}

// Topology describes how the index sequence forms triangles.
type Topology int

const (
	TriangleList  Topology = iota // Every 3 indices form a triangle
	TriangleStrip                 // Every index after the first two forms a triangle with its predecessors
)

func (t Topology) String() string {
	switch t {
	case TriangleList:
		return "list"
	case TriangleStrip:
		return "strip"
	default:
		return "unknown"
	}
}

// Effect tags how a mesh is shaded and whether it writes depth.
type Effect int

const (
	EffectOpaque      Effect = iota // Lit, depth writing
	EffectTransparent               // Alpha blended, never writes depth
)

func (e Effect) String() string {
	if e == EffectTransparent {
		return "transparent"
	}
	return "opaque"
}

// WritesDepth reports whether fragments of this effect update the depth buffer.
func (e Effect) WritesDepth() bool {
	return e == EffectOpaque
}

// Mesh is a renderable triangle mesh. Vertices and indices are set once at
// creation; the projected buffer is rebuilt every frame.
type Mesh struct {
	Name     string
	Enabled  bool
	Topology Topology
	CullMode CullMode
	Effect   Effect
	World    math3d.Mat4
	Textures TextureSet

	Vertices []VertexIn
	Indices  []uint32

	projected []VertexOut

	// bounds caches computeBounds for the vertex slice it was taken from.
	bounds      AABB
	boundsOf    *VertexIn
	boundsCount int
}

// NewMesh creates an enabled, opaque, back-face culled mesh with an identity
// world transform.
func NewMesh(name string, vertices []VertexIn, indices []uint32, topology Topology) *Mesh {
	m := &Mesh{
		Name:     name,
		Enabled:  true,
		Topology: topology,
		CullMode: CullBack,
		Effect:   EffectOpaque,
		World:    math3d.Identity(),
		Vertices: vertices,
		Indices:  indices,
	}
	return m
}

func computeBounds(vertices []VertexIn) AABB {
	if len(vertices) == 0 {
		return AABB{}
	}
	b := AABB{Min: vertices[0].Position, Max: vertices[0].Position}
	for _, v := range vertices[1:] {
		b.Min = b.Min.Min(v.Position)
		b.Max = b.Max.Max(v.Position)
	}
	return b
}

// Bounds returns the local-space bounding box of the mesh. It is recomputed
// whenever Vertices is replaced; after editing positions in place, call
// InvalidateBounds.
func (m *Mesh) Bounds() AABB {
	if len(m.Vertices) == 0 {
		return AABB{}
	}
	if m.boundsOf != &m.Vertices[0] || m.boundsCount != len(m.Vertices) {
		m.bounds = computeBounds(m.Vertices)
		m.boundsOf, m.boundsCount = &m.Vertices[0], len(m.Vertices)
	}
	return m.bounds
}

// InvalidateBounds drops the cached bounding box.
func (m *Mesh) InvalidateBounds() {
	m.boundsOf, m.boundsCount = nil, 0
}

// Translate moves the mesh in world space.
func (m *Mesh) Translate(v math3d.Vec3) {
	m.World = math3d.Translate(v).Mul(m.World)
}

// RotateY rotates the mesh about the world Y axis.
func (m *Mesh) RotateY(angle float64) {
	// Rotate around the mesh origin, not the world origin
	t := m.World.Translation()
	m.World.SetTranslation(math3d.Vec3{})
	m.World = math3d.RotateY(angle).Mul(m.World)
	m.World.SetTranslation(t)
}

// Projected returns the vertices produced by the last call to Project.
// The slice is owned by the mesh and overwritten every frame.
func (m *Mesh) Projected() []VertexOut {
	return m.projected
}

// TriangleCount returns the number of triangles the index sequence describes,
// including degenerate ones.
func (m *Mesh) TriangleCount() int {
	return triangleCount(len(m.Indices), m.Topology)
}

func triangleCount(indexCount int, topology Topology) int {
	if indexCount < 3 {
		return 0
	}
	if topology == TriangleStrip {
		return indexCount - 2
	}
	return indexCount / 3
}

// TriangleAt returns the vertex indices of triangle i and whether it is
// usable. Strip triangles with an odd position have their last two indices
// swapped so every triangle shares the winding of the first. Triangles with
// repeated indices are reported as not usable.
func TriangleAt(indices []uint32, topology Topology, i int) ([3]uint32, bool) {
	var tri [3]uint32
	if topology == TriangleStrip {
		tri = [3]uint32{indices[i], indices[i+1], indices[i+2]}
		if i&1 == 1 {
			tri[1], tri[2] = tri[2], tri[1]
		}
	} else {
		tri = [3]uint32{indices[3*i], indices[3*i+1], indices[3*i+2]}
	}
	if tri[0] == tri[1] || tri[1] == tri[2] || tri[0] == tri[2] {
		return tri, false
	}
	return tri, true
}

// SetWorld replaces the world transform.
func (m *Mesh) SetWorld(world math3d.Mat4) {
	m.World = world
}
