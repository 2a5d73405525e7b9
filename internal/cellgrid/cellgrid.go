// Package cellgrid implements the neighbour cell list used to bound
// interaction prediction to O(1) amortised work per particle
// (spec.md sec 4.4): the simulation volume is partitioned into cubic
// cells at least as wide as the largest interaction cutoff, and each
// particle's membership is tracked so that predictions only ever
// consider particles in the same or an adjacent cell.
package cellgrid

import (
	"math"

	"github.com/san-kum/edmd/internal/vecmath"
)

// Face identifies one of the six cell boundaries a particle can cross.
type Face int

const (
	FaceXLo Face = iota
	FaceXHi
	FaceYLo
	FaceYHi
	FaceZLo
	FaceZHi
)

var faceOffsets = [6][3]int{
	{-1, 0, 0}, {1, 0, 0},
	{0, -1, 0}, {0, 1, 0},
	{0, 0, -1}, {0, 0, 1},
}

// Grid partitions the boundary's volume into a regular lattice of
// cubic cells whose side is at least minCellWidth (the largest
// interaction cutoff registered with the simulation), except along an
// axis shorter than three such widths, which still gets three cells.
type Grid struct {
	dims     [3]int
	cellSize vecmath.Vec3
	origin   vecmath.Vec3
	extent   vecmath.Vec3

	cells      [][]int // flattened index -> particle IDs
	memberCell []int   // particle ID -> flattened cell index
}

// New builds a grid covering [0,extent) in each dimension with cells
// no smaller than minCellWidth, except that every axis gets at least
// three cells even when that makes them narrower. extent must be positive in every
// dimension that is bounded (periodic or Lees-Edwards); a Grid over
// an unbounded (Boundary.None) system should instead be sized to the
// initial particle spread by the caller.
func New(extent vecmath.Vec3, minCellWidth float64, nParticles int) *Grid {
	if minCellWidth <= 0 {
		minCellWidth = 1
	}
	dims := [3]int{
		cellCount(extent.X, minCellWidth),
		cellCount(extent.Y, minCellWidth),
		cellCount(extent.Z, minCellWidth),
	}
	g := &Grid{
		dims:   dims,
		extent: extent,
		cellSize: vecmath.Vec3{
			X: extent.X / float64(dims[0]),
			Y: extent.Y / float64(dims[1]),
			Z: extent.Z / float64(dims[2]),
		},
	}
	g.cells = make([][]int, dims[0]*dims[1]*dims[2])
	g.memberCell = make([]int, nParticles)
	for i := range g.memberCell {
		g.memberCell[i] = -1
	}
	return g
}

func cellCount(extent, minWidth float64) int {
	n := int(math.Floor(extent / minWidth))
	if n < 3 {
		n = 3 // keep at least a 3-wide lattice so neighbour scans stay local
	}
	return n
}

func (g *Grid) index(cx, cy, cz int) int {
	cx = wrapIndex(cx, g.dims[0])
	cy = wrapIndex(cy, g.dims[1])
	cz = wrapIndex(cz, g.dims[2])
	return (cz*g.dims[1]+cy)*g.dims[0] + cx
}

func wrapIndex(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

func (g *Grid) cellCoords(pos vecmath.Vec3) (int, int, int) {
	cx := int(math.Floor(pos.X / g.cellSize.X))
	cy := int(math.Floor(pos.Y / g.cellSize.Y))
	cz := int(math.Floor(pos.Z / g.cellSize.Z))
	return wrapIndex(cx, g.dims[0]), wrapIndex(cy, g.dims[1]), wrapIndex(cz, g.dims[2])
}

// Insert places particle id at position pos, replacing any prior
// membership it had.
func (g *Grid) Insert(id int, pos vecmath.Vec3) {
	g.ensureCapacity(id)
	cx, cy, cz := g.cellCoords(pos)
	idx := g.index(cx, cy, cz)
	g.cells[idx] = append(g.cells[idx], id)
	g.memberCell[id] = idx
}

func (g *Grid) ensureCapacity(id int) {
	if id < len(g.memberCell) {
		return
	}
	grown := make([]int, id+1)
	copy(grown, g.memberCell)
	for i := len(g.memberCell); i <= id; i++ {
		grown[i] = -1
	}
	g.memberCell = grown
}

// Remove deletes particle id from its current cell membership, if any.
func (g *Grid) Remove(id int) {
	if id >= len(g.memberCell) {
		return
	}
	idx := g.memberCell[id]
	if idx < 0 {
		return
	}
	bucket := g.cells[idx]
	for i, v := range bucket {
		if v == id {
			bucket[i] = bucket[len(bucket)-1]
			g.cells[idx] = bucket[:len(bucket)-1]
			break
		}
	}
	g.memberCell[id] = -1
}

// Move transfers particle id to the cell containing pos, a no-op if
// it is already there. Returns true if membership changed.
func (g *Grid) Move(id int, pos vecmath.Vec3) bool {
	cx, cy, cz := g.cellCoords(pos)
	newIdx := g.index(cx, cy, cz)
	if id < len(g.memberCell) && g.memberCell[id] == newIdx {
		return false
	}
	g.Remove(id)
	g.Insert(id, pos)
	return true
}

// Neighbours returns every particle sharing the same cell as id, or
// one of its 26 adjacent cells (spec.md sec 4.4).
func (g *Grid) Neighbours(id int) []int {
	if id >= len(g.memberCell) || g.memberCell[id] < 0 {
		return nil
	}
	idx := g.memberCell[id]
	cx := idx % g.dims[0]
	cy := (idx / g.dims[0]) % g.dims[1]
	cz := idx / (g.dims[0] * g.dims[1])

	var out []int
	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				bucket := g.cells[g.index(cx+dx, cy+dy, cz+dz)]
				for _, other := range bucket {
					if other != id {
						out = append(out, other)
					}
				}
			}
		}
	}
	return out
}

// CrossingTime computes the time at which the particle at position
// pos moving with velocity vel (already streamed to time t0) will
// leave its current cell, and which face it exits through.
// A zero velocity component along an axis never triggers a crossing
// on that axis.
func (g *Grid) CrossingTime(id int, pos, vel vecmath.Vec3, t0 float64) (float64, Face) {
	idx := g.memberCell[id]
	cx := idx % g.dims[0]
	cy := (idx / g.dims[0]) % g.dims[1]
	cz := idx / (g.dims[0] * g.dims[1])

	lo := vecmath.Vec3{X: float64(cx) * g.cellSize.X, Y: float64(cy) * g.cellSize.Y, Z: float64(cz) * g.cellSize.Z}
	hi := vecmath.Vec3{X: lo.X + g.cellSize.X, Y: lo.Y + g.cellSize.Y, Z: lo.Z + g.cellSize.Z}

	best := math.Inf(1)
	bestFace := FaceXLo

	consider := func(dt float64, face Face) {
		if dt >= 0 && dt < best {
			best = dt
			bestFace = face
		}
	}

	if vel.X < 0 {
		consider((lo.X-pos.X)/vel.X, FaceXLo)
	} else if vel.X > 0 {
		consider((hi.X-pos.X)/vel.X, FaceXHi)
	}
	if vel.Y < 0 {
		consider((lo.Y-pos.Y)/vel.Y, FaceYLo)
	} else if vel.Y > 0 {
		consider((hi.Y-pos.Y)/vel.Y, FaceYHi)
	}
	if vel.Z < 0 {
		consider((lo.Z-pos.Z)/vel.Z, FaceZLo)
	} else if vel.Z > 0 {
		consider((hi.Z-pos.Z)/vel.Z, FaceZHi)
	}

	if math.IsInf(best, 1) {
		return math.Inf(1), FaceXLo
	}
	return t0 + best, bestFace
}

// FaceOffset returns the (dx,dy,dz) cell displacement associated with
// crossing the given face, for callers that need to know which
// neighbouring cell a particle is entering.
func FaceOffset(f Face) (int, int, int) {
	o := faceOffsets[f]
	return o[0], o[1], o[2]
}

// Dims reports the lattice dimensions.
func (g *Grid) Dims() (int, int, int) { return g.dims[0], g.dims[1], g.dims[2] }

// CellSize reports the width of a single cell along each axis.
func (g *Grid) CellSize() vecmath.Vec3 { return g.cellSize }
