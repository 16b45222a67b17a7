// Package spatial provides the uniform-grid broad phase used by the
// simulation: a spatial hash over world coordinates answering "which
// indices might be within r of this point" queries.
package spatial

import "math"

// Grid is an unbounded spatial hash. Cells are keyed by their integer cell
// coordinates, so entities slightly outside the map still hash correctly.
//
// Queries return candidates only: callers run the exact distance test.
// A candidate list may contain false positives near cell borders but never
// misses an index whose inserted position lies within the query radius.
type Grid struct {
	cellSize float32
	cells    map[cellKey][]int
}

type cellKey struct {
	cx, cy int32
}

// NewGrid creates an empty grid. cellSize should be close to the largest
// expected query radius.
func NewGrid(cellSize float32) *Grid {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &Grid{
		cellSize: cellSize,
		cells:    make(map[cellKey][]int),
	}
}

// CellSize returns the grid's cell edge length.
func (g *Grid) CellSize() float32 {
	return g.cellSize
}

// Clear empties every cell but keeps the allocated slices for reuse.
func (g *Grid) Clear() {
	for k, v := range g.cells {
		g.cells[k] = v[:0]
	}
}

// Reset drops all cells including their storage.
func (g *Grid) Reset() {
	clear(g.cells)
}

func (g *Grid) cellOf(x, y float32) cellKey {
	return cellKey{
		cx: int32(math.Floor(float64(x / g.cellSize))),
		cy: int32(math.Floor(float64(y / g.cellSize))),
	}
}

// Insert adds idx to the cell containing (x, y).
func (g *Grid) Insert(idx int, x, y float32) {
	k := g.cellOf(x, y)
	g.cells[k] = append(g.cells[k], idx)
}

// InsertCircle adds idx to every cell the circle's bounding box touches.
// Used for static obstacles whose extent can span cells.
func (g *Grid) InsertCircle(idx int, x, y, radius float32) {
	lo := g.cellOf(x-radius, y-radius)
	hi := g.cellOf(x+radius, y+radius)
	for cy := lo.cy; cy <= hi.cy; cy++ {
		for cx := lo.cx; cx <= hi.cx; cx++ {
			k := cellKey{cx: cx, cy: cy}
			g.cells[k] = append(g.cells[k], idx)
		}
	}
}

// Rebuild clears the grid and inserts every point whose mask entry is
// non-zero. A nil mask inserts all points.
func (g *Grid) Rebuild(xs, ys []float32, mask []uint8) {
	g.Clear()
	n := min(len(xs), len(ys))
	for i := 0; i < n; i++ {
		if mask != nil && (i >= len(mask) || mask[i] == 0) {
			continue
		}
		g.Insert(i, xs[i], ys[i])
	}
}

// QueryRadius appends to dst every index stored in a cell that intersects
// the square [x-r, x+r] x [y-r, y+r] and returns the extended slice.
// Indices inserted with InsertCircle may appear more than once.
func (g *Grid) QueryRadius(x, y, radius float32, dst []int) []int {
	if radius < 0 {
		return dst
	}
	lo := g.cellOf(x-radius, y-radius)
	hi := g.cellOf(x+radius, y+radius)
	for cy := lo.cy; cy <= hi.cy; cy++ {
		for cx := lo.cx; cx <= hi.cx; cx++ {
			dst = append(dst, g.cells[cellKey{cx: cx, cy: cy}]...)
		}
	}
	return dst
}
