package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"golang.org/x/image/draw"

	"github.com/taigrr/duorast/pkg/math3d"
)

// Framebuffer is the CPU backbuffer the rasterizer writes into.
// Pixels are row-major and packed as 0xAARRGGBB with alpha always opaque.
type Framebuffer struct {
	Width  int      // Width in pixels
	Height int      // Height in pixels
	Pixels []uint32 // Row-major packed pixel data
}

// NewFramebuffer creates a new framebuffer with the given dimensions.
func NewFramebuffer(width, height int) *Framebuffer {
	width, height = max(width, 0), max(height, 0)
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]uint32, width*height),
	}
}

// Resize changes the framebuffer dimensions, reusing storage when possible.
// Pixel contents are undefined afterwards; call Clear.
func (fb *Framebuffer) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	n := width * height
	if cap(fb.Pixels) < n {
		fb.Pixels = make([]uint32, n)
	} else {
		fb.Pixels = fb.Pixels[:n]
	}
	fb.Width = width
	fb.Height = height
}

// Pack converts a color to the packed 0xAARRGGBB pixel format.
// Channels are clamped to [0, 1].
func Pack(c math3d.ColorRGB) uint32 {
	c = c.Clamp()
	r := uint32(c.R*255 + 0.5)
	g := uint32(c.G*255 + 0.5)
	b := uint32(c.B*255 + 0.5)
	return 0xFF000000 | r<<16 | g<<8 | b
}

// Unpack converts a packed pixel back to a color.
func Unpack(p uint32) math3d.ColorRGB {
	return math3d.ColorRGB{
		R: float64((p>>16)&0xFF) / 255,
		G: float64((p>>8)&0xFF) / 255,
		B: float64(p&0xFF) / 255,
	}
}

// Clear fills the framebuffer with a solid color.
func (fb *Framebuffer) Clear(c math3d.ColorRGB) {
	if len(fb.Pixels) == 0 {
		return
	}
	fb.Pixels[0] = Pack(c)
	// Fill by doubling copies
	for filled := 1; filled < len(fb.Pixels); filled *= 2 {
		copy(fb.Pixels[filled:], fb.Pixels[:filled])
	}
}

// SetPixel sets the packed pixel at (x, y).
// Bounds checking is performed.
func (fb *Framebuffer) SetPixel(x, y int, p uint32) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Pixels[y*fb.Width+x] = p
}

// GetPixel returns the packed pixel at (x, y).
// Returns 0 if out of bounds.
func (fb *Framebuffer) GetPixel(x, y int) uint32 {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return 0
	}
	return fb.Pixels[y*fb.Width+x]
}

// ColorAt returns the pixel at (x, y) as a color.
func (fb *Framebuffer) ColorAt(x, y int) math3d.ColorRGB {
	return Unpack(fb.GetPixel(x, y))
}

// SetColor packs c and stores it at (x, y).
func (fb *Framebuffer) SetColor(x, y int, c math3d.ColorRGB) {
	fb.SetPixel(x, y, Pack(c))
}

// DrawLine draws a line from (x0, y0) to (x1, y1) using Bresenham's algorithm.
func (fb *Framebuffer) DrawLine(x0, y0, x1, y1 int, p uint32) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		fb.SetPixel(x0, y0, p)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// RGBAAt returns the pixel at (x, y) as a color.RGBA.
func (fb *Framebuffer) RGBAAt(x, y int) color.RGBA {
	return toRGBA(fb.GetPixel(x, y))
}

func toRGBA(p uint32) color.RGBA {
	return color.RGBA{
		R: uint8(p >> 16),
		G: uint8(p >> 8),
		B: uint8(p),
		A: uint8(p >> 24),
	}
}

// ToImage converts the framebuffer to a standard Go image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			img.SetRGBA(x, y, toRGBA(fb.Pixels[y*fb.Width+x]))
		}
	}
	return img
}

// SavePNG saves the framebuffer as a PNG file.
func (fb *Framebuffer) SavePNG(path string) error {
	return fb.SavePNGScaled(path, 1)
}

// SavePNGScaled saves the framebuffer as a PNG file, upscaled by an integer
// factor with nearest-neighbor sampling so individual pixels stay sharp.
func (fb *Framebuffer) SavePNGScaled(path string, scale int) error {
	var img image.Image = fb.ToImage()
	if scale > 1 {
		dst := image.NewRGBA(image.Rect(0, 0, fb.Width*scale, fb.Height*scale))
		draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
		img = dst
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
