package scene

import (
	gomath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/openairframe/stlview/pkg/stl"
)

// boxMesh returns a mesh whose positions span the given extents.
// Only Positions matter for bounds; a single degenerate index triple
// keeps the mesh structurally valid.
func boxMesh(min, max [3]float32) *stl.Mesh {
	return &stl.Mesh{
		Positions: [][3]float32{
			{min[0], min[1], min[2]},
			{max[0], max[1], max[2]},
			{min[0], max[1], min[2]},
		},
		Normals: [][3]float32{{0, 1, 0}, {0, 1, 0}, {0, 1, 0}},
		Indices: []uint32{0, 1, 2},
	}
}

func TestWorldBounds_Translation(t *testing.T) {
	n := &MeshNode{
		Geometry: boxMesh([3]float32{-1, -2, -3}, [3]float32{1, 2, 3}),
		Position: mgl32.Vec3{10, 20, 30},
	}

	min, max := n.WorldBounds()
	wantMin := mgl32.Vec3{9, 18, 27}
	wantMax := mgl32.Vec3{11, 22, 33}
	for c := 0; c < 3; c++ {
		if gomath.Abs(float64(min[c]-wantMin[c])) > 1e-5 {
			t.Errorf("min[%d] = %f, want %f", c, min[c], wantMin[c])
		}
		if gomath.Abs(float64(max[c]-wantMax[c])) > 1e-5 {
			t.Errorf("max[%d] = %f, want %f", c, max[c], wantMax[c])
		}
	}
}

func TestWorldBounds_RotationSwapsExtents(t *testing.T) {
	// A box longer in X than Z, rotated 90 degrees about Y: the world
	// box must have the extents swapped.
	n := &MeshNode{
		Geometry: boxMesh([3]float32{-4, 0, -1}, [3]float32{4, 1, 1}),
		Rotation: mgl32.Vec3{0, gomath.Pi / 2, 0},
	}

	min, max := n.WorldBounds()
	if gomath.Abs(float64((max.X()-min.X())-2)) > 1e-4 {
		t.Errorf("expected X extent 2 after rotation, got %f", max.X()-min.X())
	}
	if gomath.Abs(float64((max.Z()-min.Z())-8)) > 1e-4 {
		t.Errorf("expected Z extent 8 after rotation, got %f", max.Z()-min.Z())
	}
}

func TestBoundingSphere(t *testing.T) {
	n := &MeshNode{
		Geometry: boxMesh([3]float32{-1, -1, -1}, [3]float32{1, 1, 1}),
	}
	center, radius := n.BoundingSphere()
	if center.Len() > 1e-5 {
		t.Errorf("expected center at origin, got %v", center)
	}
	want := float32(gomath.Sqrt(3))
	if gomath.Abs(float64(radius-want)) > 1e-4 {
		t.Errorf("expected radius %f, got %f", want, radius)
	}
}

func TestGridVertices(t *testing.T) {
	g := &Grid{
		Size:      500,
		Divisions: 10,
		Color1:    mgl32.Vec3{0.5, 0.5, 0.5},
		Color2:    mgl32.Vec3{0.8, 0.8, 0.8},
		Offset:    -0.001,
	}

	verts := g.Vertices()
	if len(verts) != g.LineCount()*2 {
		t.Fatalf("expected %d vertices, got %d", g.LineCount()*2, len(verts))
	}
	if g.LineCount() != 22 {
		t.Errorf("expected 22 lines for 10 divisions, got %d", g.LineCount())
	}

	centerLines := 0
	for _, v := range verts {
		if v.Position[1] != -0.001 {
			t.Fatalf("grid vertex not at configured offset: %v", v.Position)
		}
		if v.Position[0] < -250 || v.Position[0] > 250 || v.Position[2] < -250 || v.Position[2] > 250 {
			t.Fatalf("grid vertex outside half-size extent: %v", v.Position)
		}
		if v.Color == [3]float32{0.5, 0.5, 0.5} {
			centerLines++
		}
	}
	// Two center lines, two endpoints each.
	if centerLines != 4 {
		t.Errorf("expected 4 center-line vertices, got %d", centerLines)
	}
}

func TestNewSceneHasFixedLights(t *testing.T) {
	s := New(Background{Transparent: true})
	if s.Lights.Hemisphere.Intensity <= 0 {
		t.Error("hemisphere light must be on")
	}
	if s.Lights.Directional.Intensity <= 0 {
		t.Error("directional light must be on")
	}
	if s.Grid != nil {
		t.Error("grid must be nil unless configured")
	}
	if s.Mesh != nil {
		t.Error("mesh must be nil before load")
	}
}
