package physics

import (
	"github.com/vovakirdan/horde/internal/entity"
	"github.com/vovakirdan/horde/internal/spatial"
)

// spatialTries is how many times the search radius doubles before the
// nearest search gives up on the grid and scans every slot.
const spatialTries = 4

// FindNearest scans every alive enemy and returns the index of the closest
// one to (x, y), or -1 if none is alive. Ties keep the lowest index.
func FindNearest(e *entity.EnemyStore, x, y float32) int {
	return FindNearestExcluding(e, x, y, nil)
}

// FindNearestExcluding is FindNearest skipping every index i with
// exclude[i] set. exclude may be nil or shorter than the store.
func FindNearestExcluding(e *entity.EnemyStore, x, y float32, exclude []bool) int {
	best := -1
	bestD := float32(0)
	for i := range e.Len() {
		if e.Alive[i] == entity.Dead || excluded(exclude, i) {
			continue
		}
		dx := e.X[i] - x
		dy := e.Y[i] - y
		d := dx*dx + dy*dy
		if best < 0 || d < bestD {
			best, bestD = i, d
		}
	}
	return best
}

func excluded(exclude []bool, i int) bool {
	return i < len(exclude) && exclude[i]
}

// Nearest answers nearest-enemy queries through the dynamic grid.
type Nearest struct {
	Grid *spatial.Grid
	buf  []int
}

// Find returns the nearest alive enemy to (x, y). It searches the grid at
// radius, doubling it up to four times, and falls back to a full scan.
func (n *Nearest) Find(e *entity.EnemyStore, x, y, radius float32) int {
	return n.FindExcluding(e, x, y, radius, nil)
}

// FindExcluding is Find skipping indices set in exclude.
func (n *Nearest) FindExcluding(e *entity.EnemyStore, x, y, radius float32, exclude []bool) int {
	if n.Grid != nil && radius > 0 {
		r := radius
		for range spatialTries {
			n.buf = n.Grid.QueryRadius(x, y, r, n.buf[:0])
			best := -1
			bestD := float32(0)
			for _, i := range n.buf {
				if i >= e.Len() || e.Alive[i] == entity.Dead || excluded(exclude, i) {
					continue
				}
				dx := e.X[i] - x
				dy := e.Y[i] - y
				d := dx*dx + dy*dy
				if best < 0 || d < bestD {
					best, bestD = i, d
				}
			}
			if best >= 0 {
				return best
			}
			r *= 2
		}
	}
	return FindNearestExcluding(e, x, y, exclude)
}
