// Package scene holds the object graph rendered by a viewer instance:
// the mesh node, the fixed lighting rig, and the optional ground grid.
package scene

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/openairframe/stlview/pkg/stl"
)

// Background is the clear behavior for a scene.
type Background struct {
	Transparent bool
	Color       mgl32.Vec3
}

// Material holds surface parameters for the mesh.
type Material struct {
	Color     mgl32.Vec3
	Metalness float32
	Roughness float32
}

// HemisphereLight fades between a sky and a ground color by normal direction.
type HemisphereLight struct {
	SkyColor    mgl32.Vec3
	GroundColor mgl32.Vec3
	Intensity   float32
}

// DirectionalLight is a single infinite-distance light.
type DirectionalLight struct {
	Direction mgl32.Vec3
	Color     mgl32.Vec3
	Intensity float32
}

// LightRig is the fixed lighting setup shared by every instance;
// configuration does not alter it.
type LightRig struct {
	Hemisphere  HemisphereLight
	Directional DirectionalLight
}

// NewLightRig returns the standard viewer lighting.
func NewLightRig() LightRig {
	return LightRig{
		Hemisphere: HemisphereLight{
			SkyColor:    mgl32.Vec3{1, 1, 1},
			GroundColor: mgl32.Vec3{0.27, 0.27, 0.27},
			Intensity:   0.9,
		},
		Directional: DirectionalLight{
			Direction: mgl32.Vec3{1, 2, 1.5}.Normalize(),
			Color:     mgl32.Vec3{1, 1, 1},
			Intensity: 0.8,
		},
	}
}

// MeshNode places decoded geometry in the scene.
type MeshNode struct {
	Geometry *stl.Mesh
	Material Material

	// Rotation is applied before Position (XYZ Euler, radians).
	Rotation mgl32.Vec3
	Position mgl32.Vec3
}

// Transform returns the node's model matrix (translation after rotation).
func (n *MeshNode) Transform() mgl32.Mat4 {
	rot := mgl32.HomogRotate3DZ(n.Rotation.Z()).
		Mul4(mgl32.HomogRotate3DY(n.Rotation.Y())).
		Mul4(mgl32.HomogRotate3DX(n.Rotation.X()))
	return mgl32.Translate3D(n.Position.X(), n.Position.Y(), n.Position.Z()).Mul4(rot)
}

// WorldBounds returns the node's axis-aligned bounding box in world
// space, computed from the transformed corners of the geometry bounds.
func (n *MeshNode) WorldBounds() (min, max mgl32.Vec3) {
	gmin, gmax := n.Geometry.Bounds()
	m := n.Transform()

	min = mgl32.Vec3{float32(gomath.Inf(1)), float32(gomath.Inf(1)), float32(gomath.Inf(1))}
	max = min.Mul(-1)
	for i := 0; i < 8; i++ {
		corner := mgl32.Vec3{gmin[0], gmin[1], gmin[2]}
		if i&1 != 0 {
			corner[0] = gmax[0]
		}
		if i&2 != 0 {
			corner[1] = gmax[1]
		}
		if i&4 != 0 {
			corner[2] = gmax[2]
		}
		world := mgl32.TransformCoordinate(corner, m)
		for c := 0; c < 3; c++ {
			if world[c] < min[c] {
				min[c] = world[c]
			}
			if world[c] > max[c] {
				max[c] = world[c]
			}
		}
	}
	return min, max
}

// BoundingSphere returns the center and radius of the sphere enclosing
// the node's world bounds.
func (n *MeshNode) BoundingSphere() (center mgl32.Vec3, radius float32) {
	min, max := n.WorldBounds()
	center = min.Add(max).Mul(0.5)
	radius = max.Sub(center).Len()
	return center, radius
}

// Scene is the root of one viewer instance's object graph.
type Scene struct {
	Background Background
	Lights     LightRig
	Grid       *Grid    // nil when the grid is disabled
	Mesh       *MeshNode // nil until a load succeeds
}

// New creates a scene with the fixed light rig and the given background.
func New(bg Background) *Scene {
	return &Scene{
		Background: bg,
		Lights:     NewLightRig(),
	}
}
