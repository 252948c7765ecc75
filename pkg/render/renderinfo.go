package render

import (
	"fmt"
	"strings"
)

// ShadingMode selects which lighting term the pixel shader outputs.
type ShadingMode int

const (
	ShadeFinalColor   ShadingMode = iota // Diffuse, specular and ambient combined
	ShadeObservedArea                    // Lambert cosine only, as grayscale
	ShadeDiffuse                         // Diffuse plus ambient
	ShadeSpecular                        // Phong specular only
	shadingModeCount
)

var shadingModeNames = [...]string{"final", "observed-area", "diffuse", "specular"}

func (m ShadingMode) String() string {
	if m < 0 || m >= shadingModeCount {
		return fmt.Sprintf("ShadingMode(%d)", int(m))
	}
	return shadingModeNames[m]
}

// Next returns the following shading mode, wrapping around.
func (m ShadingMode) Next() ShadingMode {
	return (m + 1) % shadingModeCount
}

// ParseShadingMode parses a shading mode name as printed by String.
func ParseShadingMode(s string) (ShadingMode, error) {
	for i, name := range shadingModeNames {
		if strings.EqualFold(s, name) {
			return ShadingMode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown shading mode %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m ShadingMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *ShadingMode) UnmarshalText(text []byte) error {
	v, err := ParseShadingMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// CullMode selects which triangle faces are discarded.
type CullMode int

const (
	CullBack  CullMode = iota // Discard back-facing pixels
	CullFront                 // Discard front-facing pixels
	CullNone                  // Rasterize both faces
	cullModeCount
)

var cullModeNames = [...]string{"back", "front", "none"}

func (c CullMode) String() string {
	if c < 0 || c >= cullModeCount {
		return fmt.Sprintf("CullMode(%d)", int(c))
	}
	return cullModeNames[c]
}

// Next returns the following cull mode, wrapping around.
func (c CullMode) Next() CullMode {
	return (c + 1) % cullModeCount
}

// ParseCullMode parses a cull mode name as printed by String.
func ParseCullMode(s string) (CullMode, error) {
	for i, name := range cullModeNames {
		if strings.EqualFold(s, name) {
			return CullMode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown cull mode %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (c CullMode) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *CullMode) UnmarshalText(text []byte) error {
	v, err := ParseCullMode(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// RenderInfo is the set of toggles that steer the pipeline. It is passed by
// value into every render call and never modified by the pipeline.
type RenderInfo struct {
	ShadingMode          ShadingMode `yaml:"shading_mode"`
	UseFastCulling       bool        `yaml:"fast_culling"`
	UseClipping          bool        `yaml:"clipping"`
	UseNormalMap         bool        `yaml:"normal_map"`
	UseMultiThreading    bool        `yaml:"multithreading"`
	VisualizeDepth       bool        `yaml:"visualize_depth"`
	VisualizeBoundingBox bool        `yaml:"visualize_bounding_box"`

	// Depth values in [DepthRemapMin, DepthRemapMax] are stretched to black..white
	// when VisualizeDepth is set.
	DepthRemapMin float64 `yaml:"depth_remap_min"`
	DepthRemapMax float64 `yaml:"depth_remap_max"`
}

// DefaultRenderInfo returns the default pipeline configuration.
func DefaultRenderInfo() RenderInfo {
	return RenderInfo{
		ShadingMode:       ShadeFinalColor,
		UseFastCulling:    true,
		UseClipping:       true,
		UseNormalMap:      true,
		UseMultiThreading: true,
		DepthRemapMin:     0.995,
		DepthRemapMax:     1,
	}
}
