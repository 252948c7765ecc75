package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/taigrr/duorast/pkg/render"
)

func newRenderCmd(opts *options) *cobra.Command {
	var (
		output  string
		scale   int
		elapsed float64
	)

	cmd := &cobra.Command{
		Use:   "render [model]",
		Short: "Render one frame to a PNG file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := opts.level()
			if err != nil {
				return err
			}
			setLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))

			cfg, err := opts.config(cmd)
			if err != nil {
				return err
			}
			var modelPath string
			if len(args) > 0 {
				modelPath = args[0]
			}

			s, _, err := loadScene(cfg, modelPath, opts.texture)
			if err != nil {
				return err
			}
			scale = max(scale, 1)
			r := render.NewRenderer(cfg.Width, cfg.Height)
			cfg.Apply(s, r.Shader())
			s.Camera.SetAspectRatio(float64(cfg.Width) / float64(cfg.Height))

			// Advance the rotation in fixed frame steps
			step := 1 / float64(cfg.FPS)
			for t := 0.0; t < elapsed; t += step {
				s.Update(min(step, elapsed-t))
			}

			stats := s.Render(r)
			if err := r.Framebuffer().SavePNGScaled(output, scale); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			slog.Info("wrote frame", "path", output,
				"width", cfg.Width*scale, "height", cfg.Height*scale,
				"triangles", stats.Triangles, "culled", stats.Culled)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "frame.png", "PNG file to write")
	cmd.Flags().IntVar(&scale, "scale", 1, "integer upscale factor")
	cmd.Flags().Float64Var(&elapsed, "time", 0, "seconds of rotation before the frame is taken")
	return cmd
}
