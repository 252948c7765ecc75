package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/taigrr/duorast/pkg/math3d"
	"github.com/taigrr/duorast/pkg/render"
	"github.com/taigrr/duorast/pkg/scene"
)

// Config is the YAML file layout. Fields left out of the file keep their
// defaults.
type Config struct {
	Width             int               `yaml:"width"`
	Height            int               `yaml:"height"`
	FPS               int               `yaml:"fps"`
	ClearColor        [3]float64        `yaml:"clear_color"`
	UniformClearColor [3]float64        `yaml:"uniform_clear_color"`
	Cull              render.CullMode   `yaml:"cull"`
	FX                bool              `yaml:"fx"`
	Render            render.RenderInfo `yaml:"render"`
	Light             LightConfig       `yaml:"light"`
}

// LightConfig sets the directional light.
type LightConfig struct {
	Direction [3]float64 `yaml:"direction"`
	Intensity float64    `yaml:"intensity"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	sh := render.DefaultShader()
	d := sh.LightDirection
	return Config{
		Width:             320,
		Height:            240,
		FPS:               30,
		ClearColor:        [3]float64{0.39, 0.39, 0.39},
		UniformClearColor: [3]float64{0.1, 0.1, 0.1},
		Cull:              render.CullBack,
		FX:                true,
		Render:            render.DefaultRenderInfo(),
		Light: LightConfig{
			Direction: [3]float64{d.X, d.Y, d.Z},
			Intensity: sh.LightIntensity,
		},
	}
}

// LoadConfig reads path over the defaults. An empty path or a missing file
// yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("config file not found, using defaults", "path", path)
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("invalid size %dx%d", c.Width, c.Height)
	case c.FPS <= 0:
		return fmt.Errorf("invalid fps %d", c.FPS)
	case c.Render.DepthRemapMin >= c.Render.DepthRemapMax:
		return fmt.Errorf("depth_remap_min %v must be below depth_remap_max %v",
			c.Render.DepthRemapMin, c.Render.DepthRemapMax)
	}
	return nil
}

// Apply copies the config into a scene and a shader. The cull mode applies to
// opaque meshes only; effect meshes stay double-sided.
func (c Config) Apply(s *scene.Scene, sh *render.Shader) {
	s.Info = c.Render
	s.ClearColor = math3d.RGB(c.ClearColor[0], c.ClearColor[1], c.ClearColor[2])
	s.UniformClearColor = math3d.RGB(c.UniformClearColor[0], c.UniformClearColor[1], c.UniformClearColor[2])
	for _, m := range s.Meshes {
		if m.Effect == render.EffectOpaque {
			m.CullMode = c.Cull
		}
	}

	if dir := math3d.V3(c.Light.Direction[0], c.Light.Direction[1], c.Light.Direction[2]); dir.LenSq() > 0 {
		sh.LightDirection = dir
	}
	sh.LightIntensity = c.Light.Intensity
}
