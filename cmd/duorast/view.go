package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"

	"github.com/taigrr/duorast/pkg/math3d"
	"github.com/taigrr/duorast/pkg/render"
	"github.com/taigrr/duorast/pkg/scene"
)

// keyBindings maps keys to scene toggles. Function keys follow the original
// viewer; letters are for terminals that swallow them.
var keyBindings = []struct {
	keys   []string
	action scene.Action
}{
	{[]string{"f2", "r"}, scene.ToggleRotation},
	{[]string{"f3", "e"}, scene.ToggleFireFX},
	{[]string{"f5", "m"}, scene.CycleShading},
	{[]string{"f6", "n"}, scene.ToggleNormalMap},
	{[]string{"f7", "z"}, scene.ToggleDepth},
	{[]string{"f8", "b"}, scene.ToggleBoundingBox},
	{[]string{"f9", "c"}, scene.CycleCull},
	{[]string{"f10", "u"}, scene.ToggleUniformClear},
	{[]string{"f11", "h", "?"}, scene.ToggleHUD},
	{[]string{"x"}, scene.ToggleClipping},
	{[]string{"f"}, scene.ToggleFastCulling},
	{[]string{"p"}, scene.ToggleMultiThreading},
	{[]string{"o"}, scene.ToggleBounds},
	{[]string{"g"}, scene.ToggleAxes},
}

func actionFor(ev uv.KeyPressEvent) (scene.Action, bool) {
	for _, b := range keyBindings {
		if ev.MatchString(b.keys...) {
			return b.action, true
		}
	}
	return 0, false
}

func newViewCmd(opts *options) *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "view [model]",
		Short: "Show a model in the terminal",
		Long: `Show a model in the terminal.

Controls:
  W/S A/D     Move camera
  I/K J/L     Look around
  Arrows      Spin model / move camera up and down
  Mouse drag  Spin model
  Space       Random spin
  R / F2      Toggle rotation
  E / F3      Toggle fire FX
  M / F5      Cycle shading mode
  N / F6      Toggle normal map
  Z / F7      Depth buffer view
  B / F8      Bounding box view
  C / F9      Cycle cull mode
  U / F10     Uniform clear color
  H / F11     Toggle HUD
  X           Toggle clipping
  F           Toggle fast culling
  P           Toggle multithreading
  O           Toggle bounds overlay
  G           Toggle world axes
  T           Toggle textures
  Esc         Quit`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := opts.level()
			if err != nil {
				return err
			}
			// The terminal is in use; log to a file or nowhere
			logger := slog.New(slog.DiscardHandler)
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				defer f.Close()
				logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: lvl}))
			}
			setLogger(logger)

			cfg, err := opts.config(cmd)
			if err != nil {
				return err
			}
			var modelPath string
			if len(args) > 0 {
				modelPath = args[0]
			}
			return runViewer(cmd.Context(), cfg, modelPath, opts.texture)
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file")
	return cmd
}

func runViewer(ctx context.Context, cfg Config, modelPath, texturePath string) error {
	s, tex, err := loadScene(cfg, modelPath, texturePath)
	if err != nil {
		return err
	}
	name := "cube"
	if modelPath != "" {
		name = filepath.Base(modelPath)
	}

	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	// Any-event mouse tracking with SGR coordinates
	fmt.Fprint(os.Stdout, "\x1b[?1003h\x1b[?1006h")
	defer func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}()

	r := render.NewRenderer(render.TerminalSize(width, height))
	cfg.Apply(s, r.Shader())
	fbW, fbH := render.TerminalSize(width, height)
	s.Camera.SetAspectRatio(float64(fbW) / float64(fbH))
	hud := NewHUD(name, time.Now())

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var (
		textured   = true
		dragging   bool
		lastMouseX int
	)
	const (
		moveStep = 0.25
		lookStep = 0.05
	)

	ticker := time.NewTicker(time.Second / time.Duration(cfg.FPS))
	defer ticker.Stop()
	lastFrame := time.Now()
	events := term.Events()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				width, height = ev.Width, ev.Height
				term.Erase()
				term.Resize(width, height)
				fbW, fbH = render.TerminalSize(width, height)
				r.Resize(fbW, fbH)
				s.Camera.SetAspectRatio(float64(fbW) / float64(fbH))

			case uv.KeyPressEvent:
				if action, ok := actionFor(ev); ok {
					hud.SetStatus(s.Toggle(action), time.Now())
					continue
				}
				switch {
				case ev.MatchString("esc", "ctrl+c", "q"):
					return nil
				case ev.MatchString("w"):
					s.Camera.MoveForward(moveStep)
				case ev.MatchString("s"):
					s.Camera.MoveForward(-moveStep)
				case ev.MatchString("a"):
					s.Camera.MoveRight(-moveStep)
				case ev.MatchString("d"):
					s.Camera.MoveRight(moveStep)
				case ev.MatchString("i"):
					s.Camera.Rotate(lookStep, 0)
				case ev.MatchString("k"):
					s.Camera.Rotate(-lookStep, 0)
				case ev.MatchString("j"):
					s.Camera.Rotate(0, -lookStep)
				case ev.MatchString("l"):
					s.Camera.Rotate(0, lookStep)
				case ev.MatchString("up"):
					s.Camera.SetPosition(s.Camera.Position.Add(math3d.V3(0, moveStep, 0)))
				case ev.MatchString("down"):
					s.Camera.SetPosition(s.Camera.Position.Add(math3d.V3(0, -moveStep, 0)))
				case ev.MatchString("left"):
					s.Spin(-0.05)
				case ev.MatchString("right"):
					s.Spin(0.05)
				case ev.MatchString("space"):
					s.Spin((rand.Float64() - 0.5) * 0.6)
				case ev.MatchString("t"):
					textured = !textured
					for _, m := range s.Meshes {
						if m.Effect != render.EffectOpaque {
							continue
						}
						if textured {
							m.Textures = tex
						} else {
							m.Textures = render.TextureSet{}
						}
					}
					hud.SetStatus(fmt.Sprintf("textures: %s", onOff(textured)), time.Now())
				}

			case uv.MouseClickEvent:
				dragging = true
				lastMouseX = ev.X
				s.StopSpin()

			case uv.MouseReleaseEvent:
				dragging = false

			case uv.MouseMotionEvent:
				if dragging {
					s.Spin(float64(ev.X-lastMouseX) * 0.02)
					lastMouseX = ev.X
				}

			case uv.MouseWheelEvent:
				switch ev.Button {
				case uv.MouseWheelUp:
					s.Camera.MoveForward(moveStep)
				case uv.MouseWheelDown:
					s.Camera.MoveForward(-moveStep)
				}
			}

		case now := <-ticker.C:
			dt := min(now.Sub(lastFrame).Seconds(), 0.1)
			lastFrame = now

			s.Update(dt)
			stats := s.Render(r)
			hud.Frame(stats, now)

			area := uv.Rect(0, 0, width, height)
			r.Framebuffer().Draw(term, area)
			hud.Draw(term, area, s, now)
			if err := term.Display(); err != nil {
				return fmt.Errorf("display: %w", err)
			}
		}
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
