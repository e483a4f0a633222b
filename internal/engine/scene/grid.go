package scene

import "github.com/go-gl/mathgl/mgl32"

// Grid is a ground-plane helper drawn as line segments in the XZ plane.
// The two center lines use Color1, all others Color2. Offset lifts or
// sinks the whole grid on Y; the default sits just below the ground
// plane so a grounded mesh never z-fights with it.
type Grid struct {
	Size      float32
	Divisions int
	Color1    mgl32.Vec3
	Color2    mgl32.Vec3
	Offset    float32
}

// GridVertex is one endpoint of a grid line.
type GridVertex struct {
	Position [3]float32
	Color    [3]float32
}

// LineCount returns the number of line segments in the grid.
func (g *Grid) LineCount() int {
	return 2 * (g.Divisions + 1)
}

// Vertices generates the grid's line endpoints, two per segment.
func (g *Grid) Vertices() []GridVertex {
	half := g.Size / 2
	step := g.Size / float32(g.Divisions)
	center := g.Divisions / 2

	verts := make([]GridVertex, 0, g.LineCount()*2)
	for i := 0; i <= g.Divisions; i++ {
		pos := -half + float32(i)*step
		color := g.Color2
		if i == center && g.Divisions%2 == 0 {
			color = g.Color1
		}
		c := [3]float32{color.X(), color.Y(), color.Z()}

		// Line parallel to X, then parallel to Z.
		verts = append(verts,
			GridVertex{Position: [3]float32{-half, g.Offset, pos}, Color: c},
			GridVertex{Position: [3]float32{half, g.Offset, pos}, Color: c},
			GridVertex{Position: [3]float32{pos, g.Offset, -half}, Color: c},
			GridVertex{Position: [3]float32{pos, g.Offset, half}, Color: c},
		)
	}
	return verts
}
