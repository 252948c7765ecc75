package models

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/taigrr/duorast/pkg/math3d"
	"github.com/taigrr/duorast/pkg/render"
)

// GLTFLoader loads GLTF/GLB files into Mesh format.
//
// GLTF is right-handed with counter-clockwise front faces. The loader mirrors
// Z and reverses the winding so models keep their handedness and facing in
// the renderer's left-handed, clockwise-front convention.
type GLTFLoader struct {
	// Options
	CalculateNormals  bool
	SmoothNormals     bool
	CalculateTangents bool
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		CalculateNormals:  true,
		SmoothNormals:     true,
		CalculateTangents: true,
	}
}

// LoadGLB loads a binary GLTF (.glb) file.
func LoadGLB(path string) (*Mesh, error) {
	loader := NewGLTFLoader()
	return loader.Load(path)
}

// Load loads a GLTF or GLB file and returns a Mesh.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return l.FromDocument(doc, filepath.Base(path))
}

// FromDocument converts every triangle primitive of doc into a single mesh.
// A document whose only primitive is a triangle strip stays a strip; anything
// else is merged into a triangle list.
func (l *GLTFLoader) FromDocument(doc *gltf.Document, name string) (*Mesh, error) {
	mesh := NewMesh(name)
	mesh.Materials = readMaterials(doc)

	var prims []*gltf.Primitive
	for _, m := range doc.Meshes {
		for _, p := range m.Primitives {
			switch p.Mode {
			case gltf.PrimitiveTriangles, gltf.PrimitiveTriangleStrip:
				prims = append(prims, p)
			}
			// Lines, points and fans are skipped
		}
	}

	if len(prims) == 1 && prims[0].Mode == gltf.PrimitiveTriangleStrip {
		mesh.Topology = render.TriangleStrip
	}

	hasNormals, hasTangents := true, true
	for _, p := range prims {
		n, t, err := l.processPrimitive(doc, p, mesh)
		if err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", name, err)
		}
		hasNormals = hasNormals && n
		hasTangents = hasTangents && t
	}

	if l.CalculateNormals && !hasNormals {
		if l.SmoothNormals {
			mesh.CalculateSmoothNormals()
		} else {
			mesh.CalculateNormals()
		}
	}
	if l.CalculateTangents && !hasTangents {
		mesh.CalculateTangents()
	}

	mesh.CalculateBounds()

	return mesh, nil
}

// processPrimitive appends one primitive's geometry to mesh and reports
// whether it carried normals and tangents.
func (l *GLTFLoader) processPrimitive(doc *gltf.Document, prim *gltf.Primitive, mesh *Mesh) (bool, bool, error) {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return true, true, nil
	}

	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return false, false, fmt.Errorf("read positions: %w", err)
	}

	var normals [][3]float32
	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		if normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil); err != nil {
			return false, false, fmt.Errorf("read normals: %w", err)
		}
	}

	var tangents [][4]float32
	if idx, ok := prim.Attributes[gltf.TANGENT]; ok {
		if tangents, err = modeler.ReadTangent(doc, doc.Accessors[idx], nil); err != nil {
			return false, false, fmt.Errorf("read tangents: %w", err)
		}
	}

	var uvs [][2]float32
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		if uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil); err != nil {
			return false, false, fmt.Errorf("read uvs: %w", err)
		}
	}

	var colors [][4]uint8
	if idx, ok := prim.Attributes[gltf.COLOR_0]; ok {
		if colors, err = modeler.ReadColor(doc, doc.Accessors[idx], nil); err != nil {
			return false, false, fmt.Errorf("read colors: %w", err)
		}
	}

	// Base vertex index for this primitive
	base := uint32(len(mesh.Vertices))

	for i, p := range positions {
		v := render.VertexIn{
			Position: mirrorZ(p),
			Color:    math3d.Gray(1),
		}
		if i < len(normals) {
			v.Normal = mirrorZ(normals[i])
		}
		if i < len(tangents) {
			v.Tangent = mirrorZ([3]float32{tangents[i][0], tangents[i][1], tangents[i][2]})
		}
		if i < len(uvs) {
			// GLTF and the texture sampler both put V=0 at the top row
			v.UV = math3d.V2(float64(uvs[i][0]), float64(uvs[i][1]))
		}
		if i < len(colors) {
			c := colors[i]
			v.Color = math3d.RGB(float64(c[0])/255, float64(c[1])/255, float64(c[2])/255)
		}
		mesh.Vertices = append(mesh.Vertices, v)
	}

	var indices []uint32
	if prim.Indices != nil {
		if indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil); err != nil {
			return false, false, fmt.Errorf("read indices: %w", err)
		}
	} else {
		// No indices, assume sequential vertices
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	if mesh.Topology == render.TriangleStrip {
		// A leading duplicate flips the parity of every strip triangle, which
		// reverses the winding; the first triangle becomes degenerate.
		if len(indices) > 0 {
			mesh.Indices = append(mesh.Indices, base+indices[0])
		}
		for _, idx := range indices {
			mesh.Indices = append(mesh.Indices, base+idx)
		}
	} else if prim.Mode == gltf.PrimitiveTriangleStrip {
		// Strips merged into a list: unroll, then reverse winding
		for i := 0; i+2 < len(indices); i++ {
			tri, ok := render.TriangleAt(indices, render.TriangleStrip, i)
			if !ok {
				continue
			}
			mesh.Indices = append(mesh.Indices, base+tri[0], base+tri[2], base+tri[1])
		}
	} else {
		for i := 0; i+2 < len(indices); i += 3 {
			mesh.Indices = append(mesh.Indices,
				base+indices[i],
				base+indices[i+2], // swapped
				base+indices[i+1], // swapped
			)
		}
	}

	return len(normals) > 0, len(tangents) > 0, nil
}

func mirrorZ(v [3]float32) math3d.Vec3 {
	return math3d.V3(float64(v[0]), float64(v[1]), -float64(v[2]))
}

func readMaterials(doc *gltf.Document) []Material {
	out := make([]Material, 0, len(doc.Materials))
	for _, m := range doc.Materials {
		mat := Material{
			Name:                     m.Name,
			BaseColor:                [4]float64{1, 1, 1, 1},
			Metallic:                 1,
			Roughness:                1,
			BaseColorTexture:         -1,
			NormalTexture:            -1,
			MetallicRoughnessTexture: -1,
			Blend:                    m.AlphaMode == gltf.AlphaBlend,
			DoubleSided:              m.DoubleSided,
		}
		if pbr := m.PBRMetallicRoughness; pbr != nil {
			if pbr.BaseColorFactor != nil {
				mat.BaseColor = *pbr.BaseColorFactor
			}
			if pbr.MetallicFactor != nil {
				mat.Metallic = *pbr.MetallicFactor
			}
			if pbr.RoughnessFactor != nil {
				mat.Roughness = *pbr.RoughnessFactor
			}
			if pbr.BaseColorTexture != nil {
				mat.BaseColorTexture = pbr.BaseColorTexture.Index
			}
			if pbr.MetallicRoughnessTexture != nil {
				mat.MetallicRoughnessTexture = pbr.MetallicRoughnessTexture.Index
			}
		}
		if m.NormalTexture != nil && m.NormalTexture.Index != nil {
			mat.NormalTexture = *m.NormalTexture.Index
		}
		out = append(out, mat)
	}
	return out
}

// LoadGLBWithTextures loads a GLTF/GLB file and the texture maps of its first
// material. Base color becomes the diffuse map, the normal texture the normal
// map, and the metallic-roughness texture is split into specular and gloss
// maps. Missing maps are left nil.
func LoadGLBWithTextures(path string) (*Mesh, render.TextureSet, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, render.TextureSet{}, fmt.Errorf("open gltf: %w", err)
	}

	mesh, err := NewGLTFLoader().FromDocument(doc, filepath.Base(path))
	if err != nil {
		return nil, render.TextureSet{}, err
	}

	var set render.TextureSet
	if len(mesh.Materials) == 0 {
		return mesh, set, nil
	}
	mat := mesh.Materials[0]
	dir := filepath.Dir(path)

	if set.Diffuse, err = loadDocTexture(doc, dir, mat.BaseColorTexture); err != nil {
		return nil, set, fmt.Errorf("base color texture: %w", err)
	}
	if set.Normal, err = loadDocTexture(doc, dir, mat.NormalTexture); err != nil {
		return nil, set, fmt.Errorf("normal texture: %w", err)
	}
	mr, err := loadDocTexture(doc, dir, mat.MetallicRoughnessTexture)
	if err != nil {
		return nil, set, fmt.Errorf("metallic-roughness texture: %w", err)
	}
	if mr != nil {
		set.Specular, set.Gloss = SplitMetallicRoughness(mr)
	}

	return mesh, set, nil
}

// loadDocTexture decodes the image behind texture index idx. It returns nil
// without error when idx is negative.
func loadDocTexture(doc *gltf.Document, dir string, idx int) (*render.Texture, error) {
	if idx < 0 {
		return nil, nil
	}
	if idx >= len(doc.Textures) || doc.Textures[idx].Source == nil {
		return nil, fmt.Errorf("texture %d has no image", idx)
	}
	img := doc.Images[*doc.Textures[idx].Source]

	var data []byte
	var err error
	switch {
	case img.BufferView != nil:
		data, err = modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
	case img.IsEmbeddedResource():
		data, err = img.MarshalData()
	case img.URI != "":
		data, err = os.ReadFile(filepath.Join(dir, img.URI))
	default:
		return nil, fmt.Errorf("image %q has no data", img.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("read image data: %w", err)
	}

	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return render.TextureFromImage(decoded), nil
}

// SplitMetallicRoughness derives specular and gloss maps from a GLTF
// metallic-roughness texture (G = roughness, B = metallic). Specular ranges
// from a dielectric 4% up to full for metals; gloss is 1 - roughness in R.
func SplitMetallicRoughness(mr *render.Texture) (specular, gloss *render.Texture) {
	specular = render.NewTexture(mr.Width, mr.Height)
	gloss = render.NewTexture(mr.Width, mr.Height)
	for i, p := range mr.Pixels {
		metallic := float64(p.B) / 255
		s := uint8(math3d.Lerp(0.04, 1, metallic)*255 + 0.5)
		g := 255 - p.G
		specular.Pixels[i] = color.NRGBA{s, s, s, 255}
		gloss.Pixels[i] = color.NRGBA{g, g, g, 255}
	}
	return specular, gloss
}
