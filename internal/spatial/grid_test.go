package spatial

import (
	"math/rand"
	"slices"
	"testing"
)

func TestGridQueryFindsNearby(t *testing.T) {
	g := NewGrid(80)
	g.Insert(0, 100, 100)
	g.Insert(1, 110, 95)
	g.Insert(2, 1000, 1000)

	got := g.QueryRadius(100, 100, 30, nil)
	if !slices.Contains(got, 0) || !slices.Contains(got, 1) {
		t.Errorf("QueryRadius() = %v, expected to contain 0 and 1", got)
	}
	if slices.Contains(got, 2) {
		t.Errorf("QueryRadius() = %v, should not contain far index 2", got)
	}
}

func TestGridNoFalseNegatives(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	g := NewGrid(64)

	const n = 500
	xs := make([]float32, n)
	ys := make([]float32, n)
	for i := range n {
		xs[i] = rng.Float32()*2000 - 200 // includes negative coordinates
		ys[i] = rng.Float32()*2000 - 200
	}
	g.Rebuild(xs, ys, nil)

	for q := 0; q < 50; q++ {
		qx := rng.Float32()*2000 - 200
		qy := rng.Float32()*2000 - 200
		r := rng.Float32() * 150

		got := g.QueryRadius(qx, qy, r, nil)
		for i := range n {
			dx, dy := xs[i]-qx, ys[i]-qy
			if dx*dx+dy*dy <= r*r && !slices.Contains(got, i) {
				t.Fatalf("query (%.1f, %.1f, r=%.1f) missed index %d", qx, qy, r, i)
			}
		}
	}
}

func TestGridRebuildRespectsMask(t *testing.T) {
	g := NewGrid(80)
	xs := []float32{10, 20, 30}
	ys := []float32{10, 20, 30}
	mask := []uint8{0xFF, 0x00, 0xFF}

	g.Rebuild(xs, ys, mask)
	got := g.QueryRadius(20, 20, 50, nil)
	if slices.Contains(got, 1) {
		t.Errorf("masked index 1 should not be indexed, got %v", got)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 candidates, got %v", got)
	}

	// Rebuild must drop stale entries
	g.Rebuild(xs, ys, []uint8{0, 0, 0})
	if got := g.QueryRadius(20, 20, 50, nil); len(got) != 0 {
		t.Errorf("expected empty grid after rebuild, got %v", got)
	}
}

func TestCollisionWorldObstacles(t *testing.T) {
	cw := NewCollisionWorld(80)
	cw.SetObstacles([]Obstacle{{X: 200, Y: 200, Radius: 50}})

	if hit, _ := cw.OverlapsObstacle(190, 200, 32, nil); !hit {
		t.Error("circle inside obstacle should overlap")
	}
	if hit, _ := cw.OverlapsObstacle(400, 400, 32, nil); hit {
		t.Error("distant circle should not overlap")
	}

	// Obstacle spans several cells; a query at its edge must still see it
	got := cw.QueryObstacles(245, 200, 4, nil)
	if !slices.Contains(got, 0) {
		t.Errorf("edge query missed obstacle: %v", got)
	}

	cw.SetObstacles(nil)
	if hit, _ := cw.OverlapsObstacle(190, 200, 32, nil); hit {
		t.Error("cleared obstacles should not overlap")
	}
}
