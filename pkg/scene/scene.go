// Package scene holds what the viewer draws: meshes, a camera and the
// pipeline toggles, plus the per-frame animation that moves them.
package scene

import (
	"log/slog"
	"math"

	"github.com/taigrr/duorast/pkg/math3d"
	"github.com/taigrr/duorast/pkg/render"
)

// DefaultRotationSpeed is 45 degrees per second.
const DefaultRotationSpeed = math.Pi / 4

// Scene is a set of meshes viewed through one camera.
type Scene struct {
	Camera *render.Camera
	Meshes []*render.Mesh
	Info   render.RenderInfo

	ClearColor        math3d.ColorRGB
	UniformClearColor math3d.ColorRGB
	UseUniformClear   bool

	Rotate        bool
	RotationSpeed float64 // Radians per second

	ShowBounds bool // Outline mesh bounds after drawing
	ShowAxes   bool // Draw the world axes after drawing
	ShowHUD    bool // Show frame time and toggles

	// Logger receives toggle messages. Nil uses slog.Default.
	Logger *slog.Logger

	spin Spin
}

// New creates a scene with the default toggles and a camera five units in
// front of the origin, looking at it.
func New(fps int) *Scene {
	cam := render.NewCamera()
	cam.SetPosition(math3d.V3(0, 0, -5))

	return &Scene{
		Camera:            cam,
		Info:              render.DefaultRenderInfo(),
		ClearColor:        math3d.Gray(0.39),
		UniformClearColor: math3d.Gray(0.1),
		Rotate:            true,
		RotationSpeed:     DefaultRotationSpeed,
		spin:              NewSpin(fps),
	}
}

// Add appends meshes to the draw list.
func (s *Scene) Add(meshes ...*render.Mesh) {
	s.Meshes = append(s.Meshes, meshes...)
}

// Update advances the scene by dt seconds.
func (s *Scene) Update(dt float64) {
	angle := s.spin.Step()
	if s.Rotate {
		angle += s.RotationSpeed * dt
	}
	if angle == 0 {
		return
	}
	for _, m := range s.Meshes {
		m.RotateY(angle)
	}
}

// Spin adds yaw velocity in radians per frame. It decays back to zero.
func (s *Scene) Spin(velocity float64) {
	s.spin.Impulse(velocity)
}

// StopSpin cancels any remaining spin.
func (s *Scene) StopSpin() {
	s.spin.Stop()
}

// ClearValue returns the color the backbuffer is cleared to.
func (s *Scene) ClearValue() math3d.ColorRGB {
	if s.UseUniformClear {
		return s.UniformClearColor
	}
	return s.ClearColor
}

// Render draws the scene with r and returns the frame stats.
func (s *Scene) Render(r *render.Renderer) render.Stats {
	r.ShowBounds = s.ShowBounds
	r.ShowAxes = s.ShowAxes
	return r.Render(s.Meshes, s.Camera, s.Info, s.ClearValue())
}

// TriangleCount sums the triangles of every mesh.
func (s *Scene) TriangleCount() int {
	n := 0
	for _, m := range s.Meshes {
		n += m.TriangleCount()
	}
	return n
}

func (s *Scene) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
