// Package models loads and builds triangle meshes for the renderer.
package models

import (
	"github.com/taigrr/duorast/pkg/math3d"
	"github.com/taigrr/duorast/pkg/render"
)

// Mesh is an editable triangle mesh. It is turned into a renderable
// render.Mesh with Instance.
type Mesh struct {
	Name      string
	Vertices  []render.VertexIn
	Indices   []uint32
	Topology  render.Topology
	Materials []Material

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// Material represents a PBR material from GLTF. Texture fields index
// into the source document's textures, or are -1 when absent.
type Material struct {
	Name      string
	BaseColor [4]float64 // RGBA in 0-1 range
	Metallic  float64    // 0 = dielectric, 1 = metal
	Roughness float64    // 0 = smooth, 1 = rough

	Blend       bool // Alpha blended over what is behind it
	DoubleSided bool

	BaseColorTexture         int
	NormalTexture            int
	MetallicRoughnessTexture int
}

// HasTexture reports whether the material references a base color texture.
func (m Material) HasTexture() bool {
	return m.BaseColorTexture >= 0
}

// NewMesh creates an empty triangle-list mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:     name,
		Topology: render.TriangleList,
	}
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// TriangleCount returns the number of triangles, degenerate ones included.
func (m *Mesh) TriangleCount() int {
	n := len(m.Indices)
	if n < 3 {
		return 0
	}
	if m.Topology == render.TriangleStrip {
		return n - 2
	}
	return n / 3
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// eachTriangle calls fn with the vertex indices of every non-degenerate
// triangle, in front-face winding order.
func (m *Mesh) eachTriangle(fn func(tri [3]uint32)) {
	for i := range m.TriangleCount() {
		if tri, ok := render.TriangleAt(m.Indices, m.Topology, i); ok {
			fn(tri)
		}
	}
}

// CalculateNormals computes face normals and assigns them to vertices.
// This is a simple flat-shading approach; vertices shared between faces
// keep the normal of the last face that touches them.
func (m *Mesh) CalculateNormals() {
	m.eachTriangle(func(tri [3]uint32) {
		v0 := m.Vertices[tri[0]].Position
		v1 := m.Vertices[tri[1]].Position
		v2 := m.Vertices[tri[2]].Position

		normal := v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()

		m.Vertices[tri[0]].Normal = normal
		m.Vertices[tri[1]].Normal = normal
		m.Vertices[tri[2]].Normal = normal
	})
}

// CalculateSmoothNormals computes area-weighted averaged normals for smooth
// shading.
func (m *Mesh) CalculateSmoothNormals() {
	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.Zero3()
	}

	m.eachTriangle(func(tri [3]uint32) {
		v0 := m.Vertices[tri[0]].Position
		v1 := m.Vertices[tri[1]].Position
		v2 := m.Vertices[tri[2]].Position

		normal := v1.Sub(v0).Cross(v2.Sub(v0)) // Don't normalize yet

		for _, idx := range tri {
			m.Vertices[idx].Normal = m.Vertices[idx].Normal.Add(normal)
		}
	})

	for i := range m.Vertices {
		m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
	}
}

// CalculateTangents derives per-vertex tangents from positions and texture
// coordinates, orthogonalized against the vertex normal. Normals must be set.
func (m *Mesh) CalculateTangents() {
	acc := make([]math3d.Vec3, len(m.Vertices))

	m.eachTriangle(func(tri [3]uint32) {
		a, b, c := m.Vertices[tri[0]], m.Vertices[tri[1]], m.Vertices[tri[2]]
		e1 := b.Position.Sub(a.Position)
		e2 := c.Position.Sub(a.Position)
		d1 := b.UV.Sub(a.UV)
		d2 := c.UV.Sub(a.UV)

		det := d1.Cross(d2)
		if det > -math3d.Epsilon && det < math3d.Epsilon {
			return
		}
		tangent := e1.Scale(d2.Y).Sub(e2.Scale(d1.Y)).Scale(1 / det)
		for _, idx := range tri {
			acc[idx] = acc[idx].Add(tangent)
		}
	})

	for i := range m.Vertices {
		n := m.Vertices[i].Normal
		t := acc[i].Sub(n.Scale(n.Dot(acc[i])))
		m.Vertices[i].Tangent = t.Normalize()
	}
}

// Transform applies a transformation matrix to all vertices.
func (m *Mesh) Transform(mat math3d.Mat4) {
	for i := range m.Vertices {
		v := &m.Vertices[i]
		v.Position = mat.MulVec3(v.Position)
		// Rotation part only; non-uniform scale would need the inverse transpose
		v.Normal = mat.MulVec3Dir(v.Normal).Normalize()
		v.Tangent = mat.MulVec3Dir(v.Tangent).Normalize()
	}
	m.CalculateBounds()
}

// Normalize centers the mesh on the origin and scales it uniformly so its
// largest dimension equals size.
func (m *Mesh) Normalize(size float64) {
	m.CalculateBounds()
	dims := m.Size()
	largest := max(dims.X, dims.Y, dims.Z)
	if largest < math3d.Epsilon {
		return
	}
	scale := size / largest
	m.Transform(math3d.ScaleUniform(scale).Mul(math3d.Translate(m.Center().Negate())))
}

// Instance creates a renderable mesh sharing this mesh's vertex and index
// data. The textures are shared too. A blended first material makes the
// instance transparent; a double-sided one disables culling.
func (m *Mesh) Instance(name string, textures render.TextureSet) *render.Mesh {
	rm := render.NewMesh(name, m.Vertices, m.Indices, m.Topology)
	rm.Textures = textures
	if mat := m.GetMaterial(0); mat != nil {
		if mat.Blend {
			rm.Effect = render.EffectTransparent
		}
		if mat.DoubleSided {
			rm.CullMode = render.CullNone
		}
	}
	return rm
}

// Clone creates a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	clone := &Mesh{
		Name:      m.Name,
		Vertices:  make([]render.VertexIn, len(m.Vertices)),
		Indices:   make([]uint32, len(m.Indices)),
		Topology:  m.Topology,
		Materials: make([]Material, len(m.Materials)),
		BoundsMin: m.BoundsMin,
		BoundsMax: m.BoundsMax,
	}
	copy(clone.Vertices, m.Vertices)
	copy(clone.Indices, m.Indices)
	copy(clone.Materials, m.Materials)
	return clone
}

// GetMaterial returns the material at index i.
// Returns nil if index is out of bounds or -1.
func (m *Mesh) GetMaterial(i int) *Material {
	if i < 0 || i >= len(m.Materials) {
		return nil
	}
	return &m.Materials[i]
}

// MaterialCount returns the number of materials.
func (m *Mesh) MaterialCount() int {
	return len(m.Materials)
}
