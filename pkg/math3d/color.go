package math3d

// ColorRGB is a linear floating point color. Channels are nominally in [0, 1]
// but intermediate shading results may exceed that range.
type ColorRGB struct {
	R, G, B float64
}

// RGB creates a new ColorRGB.
func RGB(r, g, b float64) ColorRGB {
	return ColorRGB{r, g, b}
}

// Gray returns a color with all three channels set to v.
func Gray(v float64) ColorRGB {
	return ColorRGB{v, v, v}
}

// Add returns the channel-wise sum.
func (c ColorRGB) Add(o ColorRGB) ColorRGB {
	return ColorRGB{c.R + o.R, c.G + o.G, c.B + o.B}
}

// Mul returns the channel-wise product.
func (c ColorRGB) Mul(o ColorRGB) ColorRGB {
	return ColorRGB{c.R * o.R, c.G * o.G, c.B * o.B}
}

// Scale multiplies every channel by s.
func (c ColorRGB) Scale(s float64) ColorRGB {
	return ColorRGB{c.R * s, c.G * s, c.B * s}
}

// Lerp blends from c toward o by t.
func (c ColorRGB) Lerp(o ColorRGB, t float64) ColorRGB {
	return ColorRGB{
		c.R + (o.R-c.R)*t,
		c.G + (o.G-c.G)*t,
		c.B + (o.B-c.B)*t,
	}
}

// MaxToOne rescales the color so that no channel exceeds 1, preserving hue.
func (c ColorRGB) MaxToOne() ColorRGB {
	m := max(c.R, c.G, c.B)
	if m <= 1 {
		return c
	}
	return c.Scale(1 / m)
}

// Clamp limits every channel to [0, 1].
func (c ColorRGB) Clamp() ColorRGB {
	return ColorRGB{Clamp(c.R, 0, 1), Clamp(c.G, 0, 1), Clamp(c.B, 0, 1)}
}

// Vec3 reinterprets the color as a vector (R→X, G→Y, B→Z).
func (c ColorRGB) Vec3() Vec3 {
	return Vec3{c.R, c.G, c.B}
}
