package scene

import "github.com/charmbracelet/harmonica"

// Spin is a yaw velocity that a critically damped spring pulls back to zero.
type Spin struct {
	Velocity float64 // Radians per frame

	spring harmonica.Spring
	accel  float64
}

// NewSpin creates a spin stepped at fps frames per second.
func NewSpin(fps int) Spin {
	if fps <= 0 {
		fps = 60
	}
	return Spin{
		// Frequency 4, damping 1: settles in about a second without overshoot
		spring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Impulse adds v to the current velocity.
func (s *Spin) Impulse(v float64) {
	s.Velocity += v
}

// Stop zeroes the velocity.
func (s *Spin) Stop() {
	s.Velocity, s.accel = 0, 0
}

// Step returns the angle to turn this frame and decays the velocity.
func (s *Spin) Step() float64 {
	if s.Velocity == 0 && s.accel == 0 {
		return 0
	}
	angle := s.Velocity
	s.Velocity, s.accel = s.spring.Update(s.Velocity, s.accel, 0)
	return angle
}
