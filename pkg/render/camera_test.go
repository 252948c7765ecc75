package render

import (
	"math"
	"testing"

	"github.com/taigrr/duorast/pkg/math3d"
)

func TestCameraDefaults(t *testing.T) {
	cam := NewCamera()
	if !approxEqual(cam.FOV, math.Pi/4, 1e-12) || cam.Near != 0.1 || cam.Far != 100 {
		t.Errorf("defaults = fov %v near %v far %v", cam.FOV, cam.Near, cam.Far)
	}
	if f := cam.Forward(); !approxEqual(f.Z, 1, 1e-12) {
		t.Errorf("Forward = %v, want +Z", f)
	}
	if r := cam.Right(); !approxEqual(r.X, 1, 1e-12) {
		t.Errorf("Right = %v, want +X", r)
	}
}

func TestCameraInverseView(t *testing.T) {
	cam := NewCamera()
	cam.SetPosition(math3d.V3(1, 2, -3))
	cam.Rotate(0.2, 0.7)

	if got := cam.InverseViewMatrix().Translation(); !vecClose(got, cam.Position, 1e-9) {
		t.Errorf("eye = %v, want %v", got, cam.Position)
	}

	// A point straight ahead lands on the view axis
	ahead := cam.Position.Add(cam.Forward().Scale(5))
	v := cam.ViewMatrix().MulVec3(ahead)
	if !approxEqual(v.X, 0, 1e-9) || !approxEqual(v.Y, 0, 1e-9) || !approxEqual(v.Z, 5, 1e-9) {
		t.Errorf("view space = %v, want (0, 0, 5)", v)
	}
}

func TestCameraLookAt(t *testing.T) {
	cam := NewCamera()
	cam.SetPosition(math3d.V3(0, 0, -10))
	cam.LookAt(math3d.V3(10, 0, -10))

	if f := cam.Forward(); !vecClose(f, math3d.V3(1, 0, 0), 1e-9) {
		t.Errorf("Forward = %v, want +X", f)
	}
}

func TestCameraPitchClamp(t *testing.T) {
	cam := NewCamera()
	cam.Rotate(10, 0)
	if cam.Pitch >= math.Pi/2 {
		t.Errorf("pitch = %v, want < π/2", cam.Pitch)
	}
}

func TestCameraMove(t *testing.T) {
	cam := NewCamera()
	cam.MoveForward(2)
	cam.MoveRight(3)
	if !vecClose(cam.Position, math3d.V3(3, 0, 2), 1e-12) {
		t.Errorf("position = %v, want (3, 0, 2)", cam.Position)
	}
}

func vecClose(a, b math3d.Vec3, tol float64) bool {
	return approxEqual(a.X, b.X, tol) && approxEqual(a.Y, b.Y, tol) && approxEqual(a.Z, b.Z, tol)
}
