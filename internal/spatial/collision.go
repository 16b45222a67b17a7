package spatial

// Obstacle is a static circular blocker supplied by the caller.
type Obstacle struct {
	X      float32 `json:"x" yaml:"x" msgpack:"x"`
	Y      float32 `json:"y" yaml:"y" msgpack:"y"`
	Radius float32 `json:"radius" yaml:"radius" msgpack:"radius"`
	Kind   uint8   `json:"kind" yaml:"kind" msgpack:"kind"`
}

// CollisionWorld holds the two disjoint indices the simulation uses:
// static obstacles (rebuilt only when the obstacle list changes) and
// dynamic enemies (rebuilt once per tick).
type CollisionWorld struct {
	Static    *Grid
	Dynamic   *Grid
	obstacles []Obstacle
}

// NewCollisionWorld creates empty static and dynamic indices.
func NewCollisionWorld(cellSize float32) *CollisionWorld {
	return &CollisionWorld{
		Static:  NewGrid(cellSize),
		Dynamic: NewGrid(cellSize),
	}
}

// SetObstacles replaces the obstacle list and rebuilds the static index.
func (c *CollisionWorld) SetObstacles(obs []Obstacle) {
	c.obstacles = append(c.obstacles[:0], obs...)
	c.Static.Reset()
	for i, o := range c.obstacles {
		c.Static.InsertCircle(i, o.X, o.Y, o.Radius)
	}
}

// Obstacles returns the current obstacle list. Callers must not modify it.
func (c *CollisionWorld) Obstacles() []Obstacle {
	return c.obstacles
}

// Obstacle returns obstacle i.
func (c *CollisionWorld) Obstacle(i int) Obstacle {
	return c.obstacles[i]
}

// QueryObstacles appends candidate obstacle indices near (x, y).
func (c *CollisionWorld) QueryObstacles(x, y, radius float32, dst []int) []int {
	return c.Static.QueryRadius(x, y, radius, dst)
}

// OverlapsObstacle reports whether a circle at (x, y) intersects any
// obstacle. scratch is reused for the grid query and returned.
func (c *CollisionWorld) OverlapsObstacle(x, y, radius float32, scratch []int) (bool, []int) {
	scratch = c.Static.QueryRadius(x, y, radius, scratch[:0])
	for _, idx := range scratch {
		o := c.obstacles[idx]
		dx := x - o.X
		dy := y - o.Y
		r := radius + o.Radius
		if dx*dx+dy*dy < r*r {
			return true, scratch
		}
	}
	return false, scratch
}
