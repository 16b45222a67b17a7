// Package physics holds the per-tick movement solvers that operate directly
// on the enemy store: chase steering, pairwise separation, and obstacle
// push-out. Every solver skips dead slots.
package physics

import (
	"github.com/vovakirdan/horde/internal/entity"
	"github.com/vovakirdan/horde/internal/spatial"
)

// Separator pushes overlapping enemies apart.
type Separator struct {
	Radius float32
	Force  float32

	grid      *spatial.Grid
	neighbors []int
}

// NewSeparator creates a solver whose transient hash uses radius as the
// cell size.
func NewSeparator(radius, force float32) *Separator {
	return &Separator{
		Radius: radius,
		Force:  force,
		grid:   spatial.NewGrid(radius),
	}
}

// Apply scores every alive pair closer than Radius once, accumulates an
// equal and opposite impulse into SepX/SepY, then moves the enemies.
func (s *Separator) Apply(e *entity.EnemyStore, dt float32) {
	n := e.Len()
	if n < 2 {
		return
	}
	for i := 0; i < n; i++ {
		e.SepX[i] = 0
		e.SepY[i] = 0
	}
	s.grid.Rebuild(e.X, e.Y, e.Alive)

	r2 := s.Radius * s.Radius
	for i := 0; i < n; i++ {
		if e.Alive[i] == entity.Dead {
			continue
		}
		xi, yi := e.X[i], e.Y[i]
		s.neighbors = s.grid.QueryRadius(xi, yi, s.Radius, s.neighbors[:0])
		for _, j := range s.neighbors {
			if j <= i || e.Alive[j] == entity.Dead {
				continue
			}
			dx := xi - e.X[j]
			dy := yi - e.Y[j]
			distSq := dx*dx + dy*dy
			if distSq >= r2 || distSq <= 1e-6 {
				continue
			}
			dist := sqrt32(distSq)
			push := (s.Radius - dist) * s.Force * dt
			nx := dx / dist * push
			ny := dy / dist * push
			e.SepX[i] += nx
			e.SepY[i] += ny
			e.SepX[j] -= nx
			e.SepY[j] -= ny
		}
	}

	for i := 0; i < n; i++ {
		if e.Alive[i] == entity.Dead {
			continue
		}
		e.X[i] += e.SepX[i]
		e.Y[i] += e.SepY[i]
	}
}
