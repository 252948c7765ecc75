package scene

import (
	"bytes"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/taigrr/duorast/pkg/math3d"
	"github.com/taigrr/duorast/pkg/models"
	"github.com/taigrr/duorast/pkg/render"
)

func newTestScene() *Scene {
	s := New(60)
	s.Logger = slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	s.Add(models.Cube(1).Instance("cube", render.TextureSet{}))
	return s
}

func TestNewDefaults(t *testing.T) {
	s := New(60)

	if !s.Rotate {
		t.Error("rotation should start on")
	}
	if s.RotationSpeed != math.Pi/4 {
		t.Errorf("RotationSpeed = %v, want π/4", s.RotationSpeed)
	}
	if s.Info != render.DefaultRenderInfo() {
		t.Errorf("Info = %+v, want defaults", s.Info)
	}
	if got := s.ClearValue(); got != math3d.Gray(0.39) {
		t.Errorf("ClearValue = %v, want 0.39 gray", got)
	}
}

func TestClearValue(t *testing.T) {
	s := New(60)
	s.UseUniformClear = true
	if got := s.ClearValue(); got != math3d.Gray(0.1) {
		t.Errorf("ClearValue = %v, want 0.1 gray", got)
	}
}

func TestUpdateRotatesAtSpeed(t *testing.T) {
	s := newTestScene()
	m := s.Meshes[0]
	m.Translate(math3d.V3(1, 2, 3))

	// Two seconds at 45°/s
	for range 4 {
		s.Update(0.5)
	}

	want := math3d.RotateY(math.Pi / 2)
	want.SetTranslation(math3d.V3(1, 2, 3))
	for i := range want {
		if math.Abs(m.World[i]-want[i]) > 1e-9 {
			t.Fatalf("World = %v, want %v", m.World, want)
		}
	}
}

func TestUpdateWithoutRotation(t *testing.T) {
	s := newTestScene()
	s.Rotate = false
	s.Update(1)

	if s.Meshes[0].World != math3d.Identity() {
		t.Errorf("World = %v, want identity", s.Meshes[0].World)
	}
}

func TestSpinDecays(t *testing.T) {
	s := NewSpin(60)
	s.Impulse(0.1)

	total := 0.0
	for range 600 {
		total += s.Step()
	}

	if total < 0.1 {
		t.Errorf("total spin = %v, want at least the first impulse", total)
	}
	if math.Abs(s.Velocity) > 1e-6 {
		t.Errorf("Velocity = %v after 10s, want ~0", s.Velocity)
	}
}

func TestSpinIdle(t *testing.T) {
	s := NewSpin(0)
	if got := s.Step(); got != 0 {
		t.Errorf("Step = %v, want 0", got)
	}

	s.Impulse(1)
	s.Stop()
	if got := s.Step(); got != 0 {
		t.Errorf("Step after Stop = %v, want 0", got)
	}
}

func TestSceneSpin(t *testing.T) {
	s := newTestScene()
	s.Rotate = false
	s.Spin(math.Pi / 2)
	s.Update(0)

	want := math3d.RotateY(math.Pi / 2)
	for i := range want {
		if math.Abs(s.Meshes[0].World[i]-want[i]) > 1e-9 {
			t.Fatalf("World = %v, want %v", s.Meshes[0].World, want)
		}
	}
}

func TestToggle(t *testing.T) {
	tests := []struct {
		action Action
		want   string
		check  func(*Scene) bool
	}{
		{CycleShading, "shading: observed-area", func(s *Scene) bool { return s.Info.ShadingMode == render.ShadeObservedArea }},
		{CycleCull, "cull: front", func(s *Scene) bool { return s.Meshes[0].CullMode == render.CullFront }},
		{ToggleRotation, "rotation: off", func(s *Scene) bool { return !s.Rotate }},
		{ToggleNormalMap, "normal map: off", func(s *Scene) bool { return !s.Info.UseNormalMap }},
		{ToggleDepth, "depth view: on", func(s *Scene) bool { return s.Info.VisualizeDepth }},
		{ToggleBoundingBox, "bbox view: on", func(s *Scene) bool { return s.Info.VisualizeBoundingBox }},
		{ToggleUniformClear, "uniform clear: on", func(s *Scene) bool { return s.UseUniformClear }},
		{ToggleClipping, "clipping: off", func(s *Scene) bool { return !s.Info.UseClipping }},
		{ToggleFastCulling, "fast culling: off", func(s *Scene) bool { return !s.Info.UseFastCulling }},
		{ToggleMultiThreading, "multithreading: off", func(s *Scene) bool { return !s.Info.UseMultiThreading }},
		{ToggleBounds, "bounds: on", func(s *Scene) bool { return s.ShowBounds }},
		{ToggleAxes, "axes: on", func(s *Scene) bool { return s.ShowAxes }},
		{ToggleHUD, "hud: on", func(s *Scene) bool { return s.ShowHUD }},
	}

	for _, tt := range tests {
		t.Run(tt.action.String(), func(t *testing.T) {
			s := newTestScene()
			if got := s.Toggle(tt.action); got != tt.want {
				t.Errorf("Toggle(%v) = %q, want %q", tt.action, got, tt.want)
			}
			if !tt.check(s) {
				t.Errorf("Toggle(%v) did not change the scene", tt.action)
			}
		})
	}
}

func TestToggleFireFX(t *testing.T) {
	s := newTestScene()
	if got := s.Toggle(ToggleFireFX); got != "fire fx: no effect mesh" {
		t.Errorf("Toggle without effects = %q", got)
	}

	glow := models.Glow(1, 0.6).Instance("glow", render.TextureSet{})
	s.Add(glow)

	for _, want := range []string{"fire fx: off", "fire fx: on"} {
		if got := s.Toggle(ToggleFireFX); got != want {
			t.Errorf("Toggle = %q, want %q", got, want)
		}
		if glow.Enabled != (want == "fire fx: on") {
			t.Errorf("glow enabled = %v after %q", glow.Enabled, want)
		}
	}
	if !s.Meshes[0].Enabled {
		t.Error("opaque mesh was hidden")
	}
}

func TestToggleTwiceRestores(t *testing.T) {
	s := newTestScene()
	before := s.Info
	s.Toggle(ToggleClipping)
	s.Toggle(ToggleClipping)
	if s.Info != before {
		t.Errorf("Info = %+v, want %+v", s.Info, before)
	}
}

func TestToggleCullWithoutMeshes(t *testing.T) {
	s := New(60)
	s.Logger = slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	if got := s.Toggle(CycleCull); got != "cull: no mesh" {
		t.Errorf("Toggle = %q", got)
	}
}

func TestToggleLogs(t *testing.T) {
	var buf bytes.Buffer
	s := New(60)
	s.Logger = slog.New(slog.NewTextHandler(&buf, nil))

	s.Toggle(ToggleDepth)

	out := buf.String()
	if !strings.Contains(out, "msg=toggle") || !strings.Contains(out, `action="depth view"`) || !strings.Contains(out, "state=on") {
		t.Errorf("log output = %q", out)
	}
}

func TestUnknownAction(t *testing.T) {
	s := New(60)
	if got := s.Toggle(Action(99)); got != "unknown action 99" {
		t.Errorf("Toggle = %q", got)
	}
	if got := Action(99).String(); got != "Action(99)" {
		t.Errorf("String = %q", got)
	}
}

func TestRenderDrawsScene(t *testing.T) {
	s := newTestScene()
	s.Camera.SetAspectRatio(1)
	r := render.NewRenderer(32, 32)

	stats := s.Render(r)

	if stats.Meshes != 1 || stats.Triangles == 0 {
		t.Errorf("stats = %+v, want one visible mesh", stats)
	}
	fb := r.Framebuffer()
	if fb.GetPixel(16, 16) == render.Pack(s.ClearValue()) {
		t.Error("center pixel should be covered by the cube")
	}
	if fb.GetPixel(0, 0) != render.Pack(s.ClearValue()) {
		t.Error("corner pixel should show the clear color")
	}
	if s.TriangleCount() != 12 {
		t.Errorf("TriangleCount = %d, want 12", s.TriangleCount())
	}
}
