package physics

import (
	"math"
	"runtime"
	"sync"

	"golang.org/x/sys/cpu"

	"github.com/vovakirdan/horde/internal/entity"
)

// DefaultParallelThreshold is the enemy count at which chase switches to
// the multi-goroutine path.
const DefaultParallelThreshold = 500

const lanes = 4

// HasBatchSupport reports whether the CPU has the vector units the batch
// path is tuned for.
var HasBatchSupport = cpu.X86.HasSSE2 || cpu.ARM64.HasASIMD

// Chaser steers every alive enemy straight at the player.
type Chaser struct {
	// ParallelThreshold is the live enemy count at or above which work is
	// split across GOMAXPROCS goroutines. Zero means
	// DefaultParallelThreshold.
	ParallelThreshold int
	// Batch enables the four-lane path. NewChaser sets it from
	// HasBatchSupport.
	Batch bool
}

// NewChaser returns a chaser configured for the current CPU.
func NewChaser(threshold int) Chaser {
	return Chaser{ParallelThreshold: threshold, Batch: HasBatchSupport}
}

// Update sets velocity = unit(player - enemy) * speed and integrates
// position for every alive enemy.
func (c Chaser) Update(e *entity.EnemyStore, px, py, dt float32) {
	n := e.Len()
	if !c.parallel(e) {
		c.updateRange(e, px, py, dt, 0, n)
		return
	}

	workers := runtime.GOMAXPROCS(0)
	chunk := (n + workers - 1) / workers
	// Keep chunk boundaries lane aligned so every batch stays whole.
	chunk = (chunk + lanes - 1) / lanes * lanes

	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			c.updateRange(e, px, py, dt, lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}

// parallel reports whether e has enough live enemies for the fan out.
// Dead slots are skipped by every worker, so they do not count.
func (c Chaser) parallel(e *entity.EnemyStore) bool {
	threshold := c.ParallelThreshold
	if threshold <= 0 {
		threshold = DefaultParallelThreshold
	}
	return e.Count() >= threshold
}

func (c Chaser) updateRange(e *entity.EnemyStore, px, py, dt float32, lo, hi int) {
	if c.Batch {
		ChaseBatch(e, px, py, dt, lo, hi)
		return
	}
	ChaseScalar(e, px, py, dt, lo, hi)
}

// ChaseScalar updates slots [lo, hi) one at a time.
func ChaseScalar(e *entity.EnemyStore, px, py, dt float32, lo, hi int) {
	for i := lo; i < hi; i++ {
		if e.Alive[i] == entity.Dead {
			continue
		}
		chaseOne(e, i, px, py, dt)
	}
}

func chaseOne(e *entity.EnemyStore, i int, px, py, dt float32) {
	dx := px - e.X[i]
	dy := py - e.Y[i]
	dist := max(sqrt32(dx*dx+dy*dy), 0.001)
	e.VX[i] = dx / dist * e.Speed[i]
	e.VY[i] = dy / dist * e.Speed[i]
	e.X[i] += e.VX[i] * dt
	e.Y[i] += e.VY[i] * dt
}

// ChaseBatch updates slots [lo, hi) four at a time using an approximate
// reciprocal square root. Dead lanes keep both position and velocity.
// The tail that does not fill a batch goes through the scalar path.
func ChaseBatch(e *entity.EnemyStore, px, py, dt float32, lo, hi int) {
	i := lo
	for ; i+lanes <= hi; i += lanes {
		var (
			x, y, vx, vy, sp [lanes]float32
			mask             [lanes]bool
		)
		for l := range lanes {
			x[l] = e.X[i+l]
			y[l] = e.Y[i+l]
			vx[l] = e.VX[i+l]
			vy[l] = e.VY[i+l]
			sp[l] = e.Speed[i+l]
			mask[l] = e.Alive[i+l] != entity.Dead
		}

		var nx, ny, nvx, nvy [lanes]float32
		for l := range lanes {
			dx := px - x[l]
			dy := py - y[l]
			inv := rsqrt(max(dx*dx+dy*dy, 0.001))
			nvx[l] = dx * inv * sp[l]
			nvy[l] = dy * inv * sp[l]
			nx[l] = x[l] + nvx[l]*dt
			ny[l] = y[l] + nvy[l]*dt
		}

		for l := range lanes {
			if !mask[l] {
				continue
			}
			e.X[i+l] = nx[l]
			e.Y[i+l] = ny[l]
			e.VX[i+l] = nvx[l]
			e.VY[i+l] = nvy[l]
		}
	}
	ChaseScalar(e, px, py, dt, i, hi)
}

// rsqrt approximates 1/sqrt(x) from the float bit pattern, refined with two
// Newton-Raphson steps (relative error below 1e-5).
func rsqrt(x float32) float32 {
	half := 0.5 * x
	y := math.Float32frombits(0x5f3759df - math.Float32bits(x)>>1)
	y *= 1.5 - half*y*y
	y *= 1.5 - half*y*y
	return y
}

func sqrt32(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}
