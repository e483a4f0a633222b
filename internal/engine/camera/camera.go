// Package camera provides the orbit camera used by viewer instances.
package camera

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// Orbit orbits around a target point with damped input and an optional
// idle auto-rotation. Drag rotates, scroll zooms, and when PanEnabled
// is set a secondary drag moves the target in the view plane.
type Orbit struct {
	Target   mgl32.Vec3
	Distance float32
	Yaw      float32 // Horizontal angle, radians
	Pitch    float32 // Vertical angle, radians

	// Damped goals; input writes these, Update eases toward them.
	goalYaw      float32
	goalPitch    float32
	goalDistance float32

	// Damping is the smoothing time constant in seconds.
	Damping float32

	AutoRotate      bool
	AutoRotateSpeed float32 // radians per second
	PanEnabled      bool

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
	PanSensitivity  float32

	// Projection
	FOV    float32 // Vertical field of view, radians
	Aspect float32
	Near   float32
	Far    float32
}

// DefaultFOV is the vertical field of view for viewer instances.
const DefaultFOV = float32(45.0 * gomath.Pi / 180.0)

// New creates an orbit camera with viewer defaults.
func New() *Orbit {
	c := &Orbit{
		Distance:        100.0,
		Yaw:             0.6,
		Pitch:           0.5,
		Damping:         0.08,
		PanEnabled:      true,
		MinDistance:     0.1,
		MaxDistance:     1e6,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
		PanSensitivity:  0.0015,
		FOV:             DefaultFOV,
		Aspect:          1.0,
		Near:            0.1,
		Far:             2000.0,
	}
	c.goalYaw = c.Yaw
	c.goalPitch = c.Pitch
	c.goalDistance = c.Distance
	return c
}

// HandleDrag updates rotation goals from a mouse drag delta.
func (c *Orbit) HandleDrag(deltaX, deltaY float32) {
	c.goalYaw -= deltaX * c.DragSensitivity
	c.goalPitch += deltaY * c.DragSensitivity
	c.goalPitch = clamp(c.goalPitch, c.MinPitch, c.MaxPitch)
}

// HandleZoom updates the distance goal from a scroll wheel delta.
func (c *Orbit) HandleZoom(delta float32) {
	c.goalDistance -= delta * c.goalDistance * c.ZoomSensitivity
	c.goalDistance = clamp(c.goalDistance, c.MinDistance, c.MaxDistance)
}

// HandlePan moves the target in the view plane.
func (c *Orbit) HandlePan(deltaX, deltaY float32) {
	if !c.PanEnabled {
		return
	}
	right := mgl32.Vec3{
		float32(gomath.Cos(float64(c.Yaw))),
		0,
		float32(-gomath.Sin(float64(c.Yaw))),
	}
	up := mgl32.Vec3{0, 1, 0}
	scale := c.Distance * c.PanSensitivity
	c.Target = c.Target.Sub(right.Mul(deltaX * scale)).Add(up.Mul(deltaY * scale))
}

// Update advances damping and auto-rotation by dt seconds.
func (c *Orbit) Update(dt float32) {
	if c.AutoRotate {
		c.goalYaw += c.AutoRotateSpeed * dt
	}

	// Exponential ease toward the goals; frame-rate independent.
	alpha := float32(1.0)
	if c.Damping > 0 {
		alpha = 1 - float32(gomath.Exp(float64(-dt/c.Damping)))
	}
	c.Yaw += (c.goalYaw - c.Yaw) * alpha
	c.Pitch += (c.goalPitch - c.Pitch) * alpha
	c.Distance += (c.goalDistance - c.Distance) * alpha
}

// Position returns the camera position in world space.
func (c *Orbit) Position() mgl32.Vec3 {
	cosP := float32(gomath.Cos(float64(c.Pitch)))
	offset := mgl32.Vec3{
		c.Distance * cosP * float32(gomath.Sin(float64(c.Yaw))),
		c.Distance * float32(gomath.Sin(float64(c.Pitch))),
		c.Distance * cosP * float32(gomath.Cos(float64(c.Yaw))),
	}
	return c.Target.Add(offset)
}

// ViewMatrix returns the view matrix for this camera.
func (c *Orbit) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Target, mgl32.Vec3{0, 1, 0})
}

// ProjectionMatrix returns the perspective projection matrix.
func (c *Orbit) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(c.FOV, c.Aspect, c.Near, c.Far)
}

// SetAspect updates the projection aspect ratio (width over height).
func (c *Orbit) SetAspect(aspect float32) {
	if aspect > 0 {
		c.Aspect = aspect
	}
}

// SetViewDirection places the camera at distance along dir from the
// target and snaps the damped state so no easing occurs afterwards.
// Used when framing a freshly loaded mesh.
func (c *Orbit) SetViewDirection(dir mgl32.Vec3, distance float32) {
	d := dir.Normalize()
	c.Pitch = float32(gomath.Asin(float64(d.Y())))
	c.Yaw = float32(gomath.Atan2(float64(d.X()), float64(d.Z())))
	c.Distance = clamp(distance, c.MinDistance, c.MaxDistance)

	c.goalYaw = c.Yaw
	c.goalPitch = c.Pitch
	c.goalDistance = c.Distance
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
