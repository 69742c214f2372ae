// Package lattice models the cell complex the sampler walks over: skeleta of
// cells by dimension, integer coordinate encodings, and boundary operators
// over a prime field. The complex is immutable after construction; proposals
// never write back into it.
package lattice

import (
	"fmt"

	"pottsmc/internal/field"
)

// Cell is one cell of the complex. Index is the cell's position within its
// own skeleton and is stable for the complex's lifetime. Faces lists the
// indices of the boundary cells one dimension down; for an edge these are its
// two endpoint vertices. Encoding carries grid coordinates where the cell has
// them.
type Cell struct {
	Index     int
	Dimension int
	Encoding  []int
	Faces     []int
}

// Complex is a finite cell complex with spin values drawn from a prime field.
type Complex struct {
	f          *field.Field
	skeleta    [][]Cell
	boundaries []*field.Matrix
}

// NewComplex builds a one-dimensional complex (a graph) from an explicit edge
// list. Vertices are indexed 0..numVertices-1 and carry no encoding.
func NewComplex(f *field.Field, numVertices int, edges [][2]int) (*Complex, error) {
	if f == nil {
		return nil, fmt.Errorf("lattice: field is required")
	}
	if numVertices <= 0 {
		return nil, fmt.Errorf("lattice: vertex count must be > 0")
	}

	vertices := make([]Cell, numVertices)
	for i := range vertices {
		vertices[i] = Cell{Index: i, Dimension: 0}
	}
	edgeCells := make([]Cell, 0, len(edges))
	for i, e := range edges {
		if e[0] < 0 || e[0] >= numVertices || e[1] < 0 || e[1] >= numVertices {
			return nil, fmt.Errorf("lattice: edge %d endpoints (%d,%d) out of range [0,%d)", i, e[0], e[1], numVertices)
		}
		if e[0] == e[1] {
			return nil, fmt.Errorf("lattice: edge %d is a self-loop at vertex %d", i, e[0])
		}
		edgeCells = append(edgeCells, Cell{Index: i, Dimension: 1, Faces: []int{e[0], e[1]}})
	}

	c := &Complex{f: f, skeleta: [][]Cell{vertices, edgeCells}}
	c.boundaries = []*field.Matrix{nil, c.buildEdgeBoundary()}
	return c, nil
}

// NewGrid builds the width×height planar grid complex with vertices, edges,
// and unit-square faces. Both dimensions must be at least 2.
func NewGrid(width, height int, f *field.Field) (*Complex, error) {
	if f == nil {
		return nil, fmt.Errorf("lattice: field is required")
	}
	if width < 2 || height < 2 {
		return nil, fmt.Errorf("lattice: grid must be at least 2x2, got %dx%d", width, height)
	}

	vertices := make([]Cell, 0, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			vertices = append(vertices, Cell{
				Index:     y*width + x,
				Dimension: 0,
				Encoding:  []int{x, y},
			})
		}
	}

	// Horizontal edges first, then vertical, so edge indices stay stable
	// under the same (x, y) sweep the faces use.
	horizontal := (width - 1) * height
	edges := make([]Cell, 0, horizontal+width*(height-1))
	for y := 0; y < height; y++ {
		for x := 0; x < width-1; x++ {
			u := y*width + x
			edges = append(edges, Cell{
				Index:     len(edges),
				Dimension: 1,
				Faces:     []int{u, u + 1},
			})
		}
	}
	for y := 0; y < height-1; y++ {
		for x := 0; x < width; x++ {
			u := y*width + x
			edges = append(edges, Cell{
				Index:     len(edges),
				Dimension: 1,
				Faces:     []int{u, u + width},
			})
		}
	}

	horizontalAt := func(x, y int) int { return y*(width-1) + x }
	verticalAt := func(x, y int) int { return horizontal + y*width + x }

	faces := make([]Cell, 0, (width-1)*(height-1))
	for y := 0; y < height-1; y++ {
		for x := 0; x < width-1; x++ {
			faces = append(faces, Cell{
				Index:     len(faces),
				Dimension: 2,
				Encoding:  []int{x, y},
				Faces: []int{
					horizontalAt(x, y),   // bottom
					verticalAt(x+1, y),   // right
					horizontalAt(x, y+1), // top
					verticalAt(x, y),     // left
				},
			})
		}
	}

	c := &Complex{f: f, skeleta: [][]Cell{vertices, edges, faces}}
	c.boundaries = []*field.Matrix{nil, c.buildEdgeBoundary(), c.buildFaceBoundary()}
	return c, nil
}

// Field returns the spin field of the complex.
func (c *Complex) Field() *field.Field { return c.f }

// FieldOrder returns the order of the spin field.
func (c *Complex) FieldOrder() uint64 { return c.f.Order() }

// Dimension returns the highest cell dimension present.
func (c *Complex) Dimension() int { return len(c.skeleta) - 1 }

// Skeleton returns the cells of the given dimension in index order. The
// returned slice is shared; callers must not modify it.
func (c *Complex) Skeleton(dim int) []Cell {
	if dim < 0 || dim >= len(c.skeleta) {
		return nil
	}
	return c.skeleta[dim]
}

// NumCells returns the number of cells of the given dimension.
func (c *Complex) NumCells(dim int) int {
	return len(c.Skeleton(dim))
}

// Endpoints returns the two vertex indices incident to the given edge.
func (c *Complex) Endpoints(edge int) (int, int, error) {
	edges := c.Skeleton(1)
	if edge < 0 || edge >= len(edges) {
		return 0, 0, fmt.Errorf("lattice: edge %d out of range [0,%d)", edge, len(edges))
	}
	faces := edges[edge].Faces
	return faces[0], faces[1], nil
}

// Boundary returns the boundary operator from dim-cells to (dim-1)-cells:
// a NumCells(dim-1) × NumCells(dim) matrix over the complex's field. The
// matrix is built once at construction; callers must not modify it.
func (c *Complex) Boundary(dim int) (*field.Matrix, error) {
	if dim < 1 || dim >= len(c.skeleta) {
		return nil, fmt.Errorf("lattice: no boundary operator for dimension %d", dim)
	}
	return c.boundaries[dim], nil
}

// buildEdgeBoundary assembles the vertex×edge operator: each edge (u, v)
// contributes -1 at u and +1 at v.
func (c *Complex) buildEdgeBoundary() *field.Matrix {
	m := field.NewMatrix(c.f, len(c.skeleta[0]), len(c.skeleta[1]))
	for j, e := range c.skeleta[1] {
		m.Set(e.Faces[0], j, c.f.Neg(1))
		m.Set(e.Faces[1], j, 1)
	}
	return m
}

// buildFaceBoundary assembles the edge×face operator with the usual square
// orientation: bottom + right - top - left.
func (c *Complex) buildFaceBoundary() *field.Matrix {
	m := field.NewMatrix(c.f, len(c.skeleta[1]), len(c.skeleta[2]))
	for j, face := range c.skeleta[2] {
		m.Set(face.Faces[0], j, 1)
		m.Set(face.Faces[1], j, 1)
		m.Set(face.Faces[2], j, c.f.Neg(1))
		m.Set(face.Faces[3], j, c.f.Neg(1))
	}
	return m
}
