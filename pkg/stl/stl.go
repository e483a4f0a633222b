// Package stl parses stereolithography mesh files in binary and ASCII form.
package stl

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// STL format errors.
var (
	ErrEmptyData       = errors.New("stl: empty data")
	ErrTruncatedData   = errors.New("stl: truncated data")
	ErrNoTriangles     = errors.New("stl: no triangles")
	ErrMalformedASCII  = errors.New("stl: malformed ascii solid")
	ErrTriangleOverrun = errors.New("stl: triangle count exceeds data size")
)

// binary layout: 80-byte header, uint32 triangle count,
// then 50 bytes per triangle (normal, 3 vertices, attribute count).
const (
	binaryHeaderSize   = 84
	binaryTriangleSize = 50
)

// Mesh is a decoded triangle mesh with deduplicated vertices.
// Normals are recomputed from the geometry (area-weighted, smooth),
// any normals embedded in the source file are discarded.
type Mesh struct {
	Name      string
	Positions [][3]float32
	Normals   [][3]float32
	Indices   []uint32
}

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Bounds returns the axis-aligned bounding box of the mesh.
func (m *Mesh) Bounds() (min, max [3]float32) {
	min = [3]float32{1e30, 1e30, 1e30}
	max = [3]float32{-1e30, -1e30, -1e30}
	for _, p := range m.Positions {
		for c := 0; c < 3; c++ {
			if p[c] < min[c] {
				min[c] = p[c]
			}
			if p[c] > max[c] {
				max[c] = p[c]
			}
		}
	}
	return min, max
}

// Parse decodes an STL file, detecting binary versus ASCII form.
// Files starting with "solid" that also contain a "facet" keyword are
// treated as ASCII; everything else is parsed as binary.
func Parse(data []byte) (*Mesh, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	if isASCII(data) {
		return ParseASCII(data)
	}
	return ParseBinary(data)
}

// isASCII applies the classic heuristic: a "solid" prefix alone is not
// enough, some binary exporters write it into the 80-byte header.
func isASCII(data []byte) bool {
	head := bytes.TrimLeft(data, " \t\r\n")
	if !bytes.HasPrefix(head, []byte("solid")) {
		return false
	}
	probe := data
	if len(probe) > 1024 {
		probe = probe[:1024]
	}
	return bytes.Contains(probe, []byte("facet"))
}

// ParseBinary decodes a binary STL file.
func ParseBinary(data []byte) (*Mesh, error) {
	if len(data) < binaryHeaderSize {
		return nil, ErrTruncatedData
	}
	name := strings.TrimRight(string(bytes.TrimRight(data[:80], "\x00")), " ")
	count := binary.LittleEndian.Uint32(data[80:84])
	if count == 0 {
		return nil, ErrNoTriangles
	}
	need := binaryHeaderSize + int(count)*binaryTriangleSize
	if len(data) < need {
		return nil, fmt.Errorf("%w: want %d bytes, have %d", ErrTriangleOverrun, need, len(data))
	}

	b := newMeshBuilder(name, int(count))
	for i := 0; i < int(count); i++ {
		tri := data[binaryHeaderSize+i*binaryTriangleSize:]
		var verts [3][3]float32
		for v := 0; v < 3; v++ {
			// First 12 bytes are the embedded facet normal, skipped.
			const start = 12
			for c := 0; c < 3; c++ {
				bits := binary.LittleEndian.Uint32(tri[start+12*v+4*c:])
				verts[v][c] = math.Float32frombits(bits)
			}
		}
		b.addTriangle(verts)
	}
	return b.finish()
}

// ParseASCII decodes an ASCII STL solid.
func ParseASCII(data []byte) (*Mesh, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	b := newMeshBuilder("", 0)
	var verts [3][3]float32
	vertCount := 0

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "solid":
			if len(fields) > 1 && b.name == "" {
				b.name = strings.Join(fields[1:], " ")
			}
		case "vertex":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: short vertex line", ErrMalformedASCII)
			}
			if vertCount >= 3 {
				return nil, fmt.Errorf("%w: more than 3 vertices in facet", ErrMalformedASCII)
			}
			for c := 0; c < 3; c++ {
				f, err := strconv.ParseFloat(fields[c+1], 32)
				if err != nil {
					return nil, fmt.Errorf("%w: vertex coordinate %q", ErrMalformedASCII, fields[c+1])
				}
				verts[vertCount][c] = float32(f)
			}
			vertCount++
		case "endfacet":
			if vertCount != 3 {
				return nil, fmt.Errorf("%w: facet with %d vertices", ErrMalformedASCII, vertCount)
			}
			b.addTriangle(verts)
			vertCount = 0
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("stl: scanning ascii: %w", err)
	}
	return b.finish()
}

// meshBuilder deduplicates vertices and accumulates smooth normals.
type meshBuilder struct {
	name      string
	positions [][3]float32
	normals   [][3]float32
	indices   []uint32
	lookup    map[[3]float32]uint32
}

func newMeshBuilder(name string, triangleHint int) *meshBuilder {
	return &meshBuilder{
		name:      name,
		positions: make([][3]float32, 0, triangleHint*3/2),
		indices:   make([]uint32, 0, triangleHint*3),
		lookup:    make(map[[3]float32]uint32, triangleHint*3/2),
	}
}

func (b *meshBuilder) vertexIndex(p [3]float32) uint32 {
	if idx, ok := b.lookup[p]; ok {
		return idx
	}
	idx := uint32(len(b.positions))
	b.positions = append(b.positions, p)
	b.normals = append(b.normals, [3]float32{})
	b.lookup[p] = idx
	return idx
}

func (b *meshBuilder) addTriangle(verts [3][3]float32) {
	i0 := b.vertexIndex(verts[0])
	i1 := b.vertexIndex(verts[1])
	i2 := b.vertexIndex(verts[2])

	// Cross product of the edges; its magnitude weights the normal by
	// triangle area, so large faces dominate the shared-vertex average.
	e1 := [3]float32{verts[1][0] - verts[0][0], verts[1][1] - verts[0][1], verts[1][2] - verts[0][2]}
	e2 := [3]float32{verts[2][0] - verts[0][0], verts[2][1] - verts[0][1], verts[2][2] - verts[0][2]}
	n := [3]float32{
		e1[1]*e2[2] - e1[2]*e2[1],
		e1[2]*e2[0] - e1[0]*e2[2],
		e1[0]*e2[1] - e1[1]*e2[0],
	}

	for _, idx := range [3]uint32{i0, i1, i2} {
		b.normals[idx][0] += n[0]
		b.normals[idx][1] += n[1]
		b.normals[idx][2] += n[2]
	}
	b.indices = append(b.indices, i0, i1, i2)
}

func (b *meshBuilder) finish() (*Mesh, error) {
	if len(b.indices) == 0 {
		return nil, ErrNoTriangles
	}
	for i, n := range b.normals {
		mag := float32(math.Sqrt(float64(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])))
		if mag > 1e-12 {
			b.normals[i] = [3]float32{n[0] / mag, n[1] / mag, n[2] / mag}
		} else {
			b.normals[i] = [3]float32{0, 1, 0}
		}
	}
	return &Mesh{
		Name:      b.name,
		Positions: b.positions,
		Normals:   b.normals,
		Indices:   b.indices,
	}, nil
}
