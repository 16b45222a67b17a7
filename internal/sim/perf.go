package sim

import "time"

// perfWindow is how many recent ticks the rolling average covers.
const perfWindow = 120

// PerfStats tracks tick cost over a rolling window.
type PerfStats struct {
	ring      [perfWindow]float64
	n         int
	next      int
	sum       float64
	maxMs     float64
	overruns  uint64
	ticks     uint64
	lockWait  time.Duration
	lockWaitN uint64
}

// PerfSnapshot is a copy of the perf counters.
type PerfSnapshot struct {
	Ticks       uint64        `json:"ticks"`
	LastMs      float64       `json:"last_ms"`
	AvgMs       float64       `json:"avg_ms"`
	MaxMs       float64       `json:"max_ms"`
	Overruns    uint64        `json:"overruns"`
	AvgLockWait time.Duration `json:"avg_lock_wait_ns"`
}

// record adds one tick cost and reports whether it exceeded budgetMs.
func (p *PerfStats) record(ms, budgetMs float64) bool {
	if p.n == perfWindow {
		p.sum -= p.ring[p.next]
	} else {
		p.n++
	}
	p.ring[p.next] = ms
	p.sum += ms
	p.next = (p.next + 1) % perfWindow
	p.ticks++
	p.maxMs = max(p.maxMs, ms)
	if budgetMs > 0 && ms > budgetMs {
		p.overruns++
		return true
	}
	return false
}

func (p *PerfStats) observeLockWait(d time.Duration) {
	p.lockWait += d
	p.lockWaitN++
}

func (p *PerfStats) snapshot() PerfSnapshot {
	s := PerfSnapshot{
		Ticks:    p.ticks,
		MaxMs:    p.maxMs,
		Overruns: p.overruns,
	}
	if p.n > 0 {
		s.AvgMs = p.sum / float64(p.n)
		s.LastMs = p.ring[(p.next+perfWindow-1)%perfWindow]
	}
	if p.lockWaitN > 0 {
		s.AvgLockWait = p.lockWait / time.Duration(p.lockWaitN)
	}
	return s
}

// Perf returns the rolling tick cost statistics.
func (w *World) Perf() PerfSnapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.perf.snapshot()
}
