package render

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"math"
	"os"

	"github.com/taigrr/duorast/pkg/math3d"
)

// Texture holds a 2D image for texture mapping.
// Textures are shared between meshes by pointer and are never mutated while
// a frame is being rendered.
type Texture struct {
	Width  int
	Height int
	Pixels []color.NRGBA // Row-major pixel data, row 0 at the top
}

// TextureSet groups the maps a mesh samples from. Any entry may be nil.
type TextureSet struct {
	Diffuse  *Texture
	Normal   *Texture
	Specular *Texture
	Gloss    *Texture
}

// NewTexture creates an empty texture with the given dimensions.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Pixels: make([]color.NRGBA, width*height),
	}
}

// NewSolidTexture creates a 1x1 texture of a single color.
func NewSolidTexture(c color.NRGBA) *Texture {
	tex := NewTexture(1, 1)
	tex.Pixels[0] = c
	return tex
}

// LoadTexture loads a texture from an image file.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return TextureFromImage(img), nil
}

// TextureFromImage creates a texture from an image.Image.
func TextureFromImage(img image.Image) *Texture {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	tex := NewTexture(width, height)

	for y := range height {
		for x := range width {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			tex.SetPixel(x, y, c)
		}
	}

	return tex
}

// NewCheckerTexture creates a procedural checkerboard texture.
func NewCheckerTexture(width, height, checkSize int, c1, c2 color.NRGBA) *Texture {
	tex := NewTexture(width, height)
	checkSize = max(checkSize, 1)
	for y := range height {
		for x := range width {
			cx := x / checkSize
			cy := y / checkSize
			if (cx+cy)%2 == 0 {
				tex.SetPixel(x, y, c1)
			} else {
				tex.SetPixel(x, y, c2)
			}
		}
	}
	return tex
}

// NewGlowTexture creates a radial glow: c at the centre fading to fully
// transparent at the edge of the inscribed circle.
func NewGlowTexture(size int, c color.NRGBA) *Texture {
	tex := NewTexture(size, size)
	half := float64(size) / 2
	for y := range size {
		for x := range size {
			dx := (float64(x) + 0.5 - half) / half
			dy := (float64(y) + 0.5 - half) / half
			fade := max(0, 1-math.Sqrt(dx*dx+dy*dy))
			px := c
			px.A = uint8(float64(c.A)*fade*fade + 0.5)
			tex.SetPixel(x, y, px)
		}
	}
	return tex
}

// SetPixel sets a pixel in the texture.
func (t *Texture) SetPixel(x, y int, c color.NRGBA) {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return
	}
	t.Pixels[y*t.Width+x] = c
}

// GetPixel returns the pixel at (x, y) with bounds checking.
func (t *Texture) GetPixel(x, y int) color.NRGBA {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return color.NRGBA{}
	}
	return t.Pixels[y*t.Width+x]
}

// texel returns the nearest texel for uv. Coordinates are clamped to [0, 1]
// and u=1 or v=1 land on the last row/column.
func (t *Texture) texel(uv math3d.Vec2) color.NRGBA {
	if t == nil || t.Width == 0 || t.Height == 0 {
		return color.NRGBA{}
	}
	x := int(math3d.Clamp(uv.X, 0, 1) * float64(t.Width))
	y := int(math3d.Clamp(uv.Y, 0, 1) * float64(t.Height))
	if x >= t.Width {
		x = t.Width - 1
	}
	if y >= t.Height {
		y = t.Height - 1
	}
	return t.Pixels[y*t.Width+x]
}

// SampleColor returns the RGB color at uv, with channels in [0, 1].
func (t *Texture) SampleColor(uv math3d.Vec2) math3d.ColorRGB {
	c := t.texel(uv)
	return math3d.RGB(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255)
}

// SampleRGBA returns the color and alpha at uv, with channels in [0, 1].
func (t *Texture) SampleRGBA(uv math3d.Vec2) (math3d.ColorRGB, float64) {
	c := t.texel(uv)
	return math3d.RGB(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255), float64(c.A) / 255
}

// SampleNormal returns the texel at uv as a vector with components in [0, 1].
// Callers remap to [-1, 1].
func (t *Texture) SampleNormal(uv math3d.Vec2) math3d.Vec3 {
	return t.SampleColor(uv).Vec3()
}
