// duorast renders triangle meshes on the CPU, either live in the terminal or
// to a PNG file.
//
// Usage:
//
//	duorast view [model.glb]            interactive terminal viewer
//	duorast render [model.glb] -o f.png one frame to a PNG
//
// Without a model both commands show a textured cube.
package main

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/taigrr/duorast/pkg/models"
	"github.com/taigrr/duorast/pkg/render"
	"github.com/taigrr/duorast/pkg/scene"
)

func main() {
	if err := fang.Execute(context.Background(), newRootCmd()); err != nil {
		os.Exit(1)
	}
}

// options holds the flags shared by every command.
type options struct {
	configPath string
	width      int
	height     int
	fps        int
	texture    string
	shading    string
	cull       string
	logLevel   string
	fx         bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "duorast",
		Short:        "CPU triangle rasterizer with a terminal viewer",
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	pf.IntVar(&opts.width, "width", 0, "framebuffer width in pixels")
	pf.IntVar(&opts.height, "height", 0, "framebuffer height in pixels")
	pf.IntVar(&opts.fps, "fps", 0, "target frames per second")
	pf.StringVarP(&opts.texture, "texture", "t", "", "diffuse texture (PNG/JPEG), replaces the model's")
	pf.StringVar(&opts.shading, "shading", "", "shading mode: final, observed-area, diffuse, specular")
	pf.StringVar(&opts.cull, "cull", "", "cull mode: back, front, none")
	pf.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	pf.BoolVar(&opts.fx, "fx", true, "add a translucent glow in front of the model")

	root.AddCommand(newViewCmd(opts), newRenderCmd(opts))
	return root
}

// config loads the config file and applies any flags the user set.
func (o *options) config(cmd *cobra.Command) (Config, error) {
	cfg, err := LoadConfig(o.configPath)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("width") {
		cfg.Width = o.width
	}
	if flags.Changed("height") {
		cfg.Height = o.height
	}
	if flags.Changed("fps") {
		cfg.FPS = o.fps
	}
	if flags.Changed("fx") {
		cfg.FX = o.fx
	}
	if o.shading != "" {
		if cfg.Render.ShadingMode, err = render.ParseShadingMode(o.shading); err != nil {
			return cfg, err
		}
	}
	if o.cull != "" {
		if cfg.Cull, err = render.ParseCullMode(o.cull); err != nil {
			return cfg, err
		}
	}
	return cfg, cfg.validate()
}

func (o *options) level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(o.logLevel)); err != nil {
		return lvl, fmt.Errorf("log level: %w", err)
	}
	return lvl, nil
}

// setLogger installs l for the CLI and the render package.
func setLogger(l *slog.Logger) {
	slog.SetDefault(l)
	render.SetLogger(l)
}

// loadScene builds a scene around modelPath, or a textured cube when it is
// empty.
func loadScene(cfg Config, modelPath, texturePath string) (*scene.Scene, render.TextureSet, error) {
	var (
		mesh *models.Mesh
		tex  render.TextureSet
		err  error
	)

	switch ext := strings.ToLower(filepath.Ext(modelPath)); ext {
	case "":
		mesh = models.Cube(2)
		tex.Diffuse = render.NewCheckerTexture(64, 64, 8, rgb(220, 220, 220), rgb(90, 90, 110))
	case ".glb", ".gltf":
		mesh, tex, err = models.LoadGLBWithTextures(modelPath)
		if err != nil {
			return nil, tex, fmt.Errorf("load model: %w", err)
		}
		mesh.Normalize(2)
	default:
		return nil, tex, fmt.Errorf("unsupported format: %s (use .glb or .gltf)", ext)
	}

	if texturePath != "" {
		if tex.Diffuse, err = render.LoadTexture(texturePath); err != nil {
			return nil, tex, err
		}
	}

	name := "cube"
	if modelPath != "" {
		name = filepath.Base(modelPath)
	}
	slog.Info("loaded model", "name", name,
		"vertices", mesh.VertexCount(), "triangles", mesh.TriangleCount(),
		"topology", mesh.Topology)

	s := scene.New(cfg.FPS)
	s.Add(mesh.Instance(name, tex))
	if cfg.FX {
		s.Add(fireFX(mesh))
	}
	return s, tex, nil
}

// fireFX builds a glow quad sized to the model, just in front of its -Z face.
func fireFX(mesh *models.Mesh) *render.Mesh {
	mesh.CalculateBounds()
	size := mesh.Size()
	glow := models.Glow(1.2*max(size.X, size.Y), -mesh.BoundsMin.Z+0.2)
	return glow.Instance("fire fx", render.TextureSet{
		Diffuse: render.NewGlowTexture(64, color.NRGBA{255, 140, 40, 200}),
	})
}

func rgb(r, g, b uint8) color.NRGBA {
	return color.NRGBA{r, g, b, 255}
}
