package physics

import (
	"github.com/vovakirdan/horde/internal/entity"
	"github.com/vovakirdan/horde/internal/spatial"
)

// maxPushIterations bounds how many obstacles one circle can be pushed
// out of per tick.
const maxPushIterations = 5

// PushOut moves a circle centered at (x, y) out of static obstacles. Each
// iteration pushes along the center axis of the first overlapping obstacle
// until nothing overlaps. scratch is reused for grid queries and returned.
func PushOut(cw *spatial.CollisionWorld, x, y, radius float32, scratch []int) (float32, float32, []int) {
	for range maxPushIterations {
		scratch = cw.QueryObstacles(x, y, radius, scratch[:0])
		pushed := false
		for _, idx := range scratch {
			o := cw.Obstacle(idx)
			dx := x - o.X
			dy := y - o.Y
			dist := max(sqrt32(dx*dx+dy*dy), 0.001)
			overlap := radius + o.Radius - dist
			if overlap > 0 {
				x += dx / dist * overlap
				y += dy / dist * overlap
				pushed = true
				break
			}
		}
		if !pushed {
			break
		}
	}
	return x, y, scratch
}

// RadiusFunc resolves the collision radius and obstacle pass-through flag
// for an enemy kind.
type RadiusFunc func(kind uint8) (radius float32, passes bool)

// PushOutEnemies runs PushOut for every alive enemy whose kind does not
// pass through obstacles.
func PushOutEnemies(cw *spatial.CollisionWorld, e *entity.EnemyStore, lookup RadiusFunc, scratch []int) []int {
	if len(cw.Obstacles()) == 0 {
		return scratch
	}
	for i := range e.Len() {
		if e.Alive[i] == entity.Dead {
			continue
		}
		r, passes := lookup(e.Kind[i])
		if passes {
			continue
		}
		e.X[i], e.Y[i], scratch = PushOut(cw, e.X[i], e.Y[i], r, scratch)
	}
	return scratch
}
