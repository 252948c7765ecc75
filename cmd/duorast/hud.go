package main

import (
	"fmt"
	"time"

	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/duorast/pkg/render"
	"github.com/taigrr/duorast/pkg/scene"
)

// statusTimeout is how long a toggle message stays on screen.
const statusTimeout = 2 * time.Second

var (
	hudStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#EEEEEE")).Background(lipgloss.Color("#282834")).Padding(0, 1)
	fpsStyle    = hudStyle.Foreground(lipgloss.Color("#5FFF87")).Bold(true)
	statusStyle = hudStyle.Foreground(lipgloss.Color("#FFD75F"))
)

// HUD is the overlay with frame rate, pipeline stats and the last toggle.
type HUD struct {
	name string

	fps       float64
	fpsFrames int
	fpsTime   time.Time

	stats    render.Stats
	status   string
	statusAt time.Time
}

// NewHUD creates a HUD for the named model.
func NewHUD(name string, now time.Time) *HUD {
	return &HUD{name: name, fpsTime: now}
}

// Frame records one rendered frame.
func (h *HUD) Frame(stats render.Stats, now time.Time) {
	h.stats = stats
	h.fpsFrames++
	if elapsed := now.Sub(h.fpsTime); elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = now
	}
}

// FPS returns the frame rate over the last full second.
func (h *HUD) FPS() float64 { return h.fps }

// SetStatus shows msg for a short while.
func (h *HUD) SetStatus(msg string, now time.Time) {
	h.status = msg
	h.statusAt = now
}

// Lines returns the styled top and bottom rows. Either may be empty.
func (h *HUD) Lines(s *scene.Scene, now time.Time) (top, bottom string) {
	if s.ShowHUD {
		top = fpsStyle.Render(fmt.Sprintf("%.0f FPS", h.fps)) +
			hudStyle.Render(fmt.Sprintf("%s  %d tris  %d drawn  %d clipped  %s  cull %s",
				h.name, s.TriangleCount(), h.stats.Triangles, h.stats.ClippedTriangles,
				s.Info.ShadingMode, cullOf(s)))
	}
	if h.status != "" && now.Sub(h.statusAt) < statusTimeout {
		bottom = statusStyle.Render(h.status)
	}
	return top, bottom
}

// Draw renders the HUD rows over area.
func (h *HUD) Draw(scr uv.Screen, area uv.Rectangle, s *scene.Scene, now time.Time) {
	top, bottom := h.Lines(s, now)
	if top != "" {
		uv.NewStyledString(top).Draw(scr, uv.Rect(area.Min.X, area.Min.Y, area.Dx(), 1))
	}
	if bottom != "" && area.Dy() > 1 {
		uv.NewStyledString(bottom).Draw(scr, uv.Rect(area.Min.X, area.Max.Y-1, area.Dx(), 1))
	}
}

func cullOf(s *scene.Scene) render.CullMode {
	if len(s.Meshes) == 0 {
		return render.CullNone
	}
	return s.Meshes[0].CullMode
}
