package viewer

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/openairframe/stlview/internal/engine/scene"
)

// CanonicalRotation turns the source asset's native orientation into
// the display orientation: STL exports from the CAD tooling face along
// +X, the viewer presents them facing the camera's default direction.
var CanonicalRotation = mgl32.Vec3{0, gomath.Pi / 2, 0}

// Normalize places a freshly loaded mesh node into the canonical frame.
// The order is load-bearing: rotation changes the bounding box, so it
// must precede centering and grounding.
//
//  1. apply the canonical rotation
//  2. translate so the bounding box center sits at the origin
//  3. translate so min Y is 0 and apply the horizontal offset
func Normalize(node *scene.MeshNode, offsetX float32) {
	node.Rotation = CanonicalRotation
	node.Position = mgl32.Vec3{}

	min, max := node.WorldBounds()
	center := min.Add(max).Mul(0.5)
	node.Position = node.Position.Sub(center)

	min, _ = node.WorldBounds()
	node.Position = node.Position.Add(mgl32.Vec3{offsetX, -min.Y(), 0})
}
