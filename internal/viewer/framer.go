package viewer

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/openairframe/stlview/internal/engine/camera"
)

// FramePadding backs the camera off so the mesh never touches the
// frustum edges.
const FramePadding = float32(1.35)

// MinFrameRadius floors degenerate bounding spheres so the framing
// math never divides by zero.
const MinFrameRadius = float32(1e-3)

// DefaultViewDirection is the diagonal the camera frames from.
var DefaultViewDirection = mgl32.Vec3{1, 1, 1}.Normalize()

// Framing is a computed camera placement fully containing a sphere.
type Framing struct {
	Distance float32
	Near     float32
	Far      float32
}

// FrameSphere computes the distance along the view direction at which
// a sphere of the given radius fits both the vertical and horizontal
// field of view, erring toward the more restrictive axis.
func FrameSphere(radius, fov, aspect float32) Framing {
	return frameSphere(radius, fov, aspect, FramePadding)
}

func frameSphere(radius, fov, aspect, padding float32) Framing {
	if radius < MinFrameRadius {
		radius = MinFrameRadius
	}

	halfV := float64(fov) / 2
	distV := float64(radius) / gomath.Sin(halfV)

	// Horizontal fov from the standard perspective relation.
	halfH := gomath.Atan(gomath.Tan(halfV) * float64(aspect))
	distH := float64(radius) / gomath.Sin(halfH)

	dist := float32(gomath.Max(distV, distH)) * padding

	near := radius / 1000
	if near < 0.01 {
		near = 0.01
	}
	return Framing{
		Distance: dist,
		Near:     near,
		Far:      dist + radius*10,
	}
}

// ApplyFraming points the camera at its target from the default view
// direction and refreshes the controller's damped state so the first
// rendered frame already shows the full mesh.
func ApplyFraming(cam *camera.Orbit, f Framing) {
	cam.Near = f.Near
	cam.Far = f.Far
	cam.SetViewDirection(DefaultViewDirection, f.Distance)
}
