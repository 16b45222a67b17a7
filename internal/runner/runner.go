// Package runner drives a simulation world at a fixed tick rate. Each tick
// it advances the world, drains the frame events, hands them to the
// scenario director, appends them to the journal and publishes a
// presentation frame to subscribers.
package runner

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/horde/internal/core"
	"github.com/vovakirdan/horde/internal/events"
	"github.com/vovakirdan/horde/internal/scenario"
	"github.com/vovakirdan/horde/internal/sim"
)

// EndReason describes why a run stopped.
type EndReason string

const (
	EndCompleted EndReason = "completed" // the director declared the run over
	EndLimit     EndReason = "limit"     // MaxTicks reached
	EndCancelled EndReason = "cancelled" // context cancelled or Stop called
)

// RunStats summarizes a finished run.
type RunStats struct {
	RunID          string
	Scenario       string
	Seed           int64
	Frames         uint64
	Kills          uint32
	Score          uint32
	ElapsedSeconds float64
	AvgMs          float64
	MaxMs          float64
	Overruns       uint64
	EndReason      EndReason
}

// Recorder persists run telemetry.
type Recorder interface {
	RecordRun(RunStats) error
}

// Journal receives every tick's events.
type Journal interface {
	Append(frame uint64, evs []events.Event) error
	Close() error
}

// Pilot produces input for headless runs.
type Pilot interface {
	Input(w *sim.World) core.InputFrame
}

// Options configures a Runner.
type Options struct {
	RunID    string
	Seed     int64
	TickRate int    // ticks per second, default 60
	MaxTicks uint64 // 0 runs until the director ends it
	// Realtime paces ticks with a wall-clock ticker. Headless runs leave
	// it off and tick as fast as they can.
	Realtime bool
	Pilot    Pilot
	Journal  Journal
	Recorder Recorder
	Logger   *log.Logger
}

// ErrRunning is returned when Run is called twice.
var ErrRunning = errors.New("runner: already running")

// Runner owns the tick loop for one world and director.
type Runner struct {
	world *sim.World
	dir   scenario.Director
	opts  Options

	inputChan chan core.InputFrame
	cmdChan   chan func(*sim.World, scenario.Director)
	lastInput core.InputFrame
	paused    atomic.Bool

	subMu   sync.Mutex
	subs    map[int]chan sim.Frame
	nextSub int

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	doneOnce sync.Once
	started  bool
	startMu  sync.Mutex
}

// New creates a runner. The director must already be set up on w.
func New(w *sim.World, dir scenario.Director, opts Options) *Runner {
	if opts.TickRate <= 0 {
		opts.TickRate = 60
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Runner{
		world:     w,
		dir:       dir,
		opts:      opts,
		inputChan: make(chan core.InputFrame, 64),
		cmdChan:   make(chan func(*sim.World, scenario.Director), 16),
		subs:      make(map[int]chan sim.Frame),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// RunID returns the id stamped on this run's records.
func (r *Runner) RunID() string { return r.opts.RunID }

// World returns the driven world. Reads are safe from any goroutine.
func (r *Runner) World() *sim.World { return r.world }

// SendInput queues the player's movement intent. The most recent input
// stays in effect until replaced. Non-blocking.
func (r *Runner) SendInput(in core.InputFrame) {
	select {
	case r.inputChan <- in:
	default:
		// Channel full, drop input
	}
}

// Do runs fn on the tick goroutine between ticks. It blocks until fn is
// queued or the runner stops.
func (r *Runner) Do(fn func(*sim.World, scenario.Director)) {
	select {
	case r.cmdChan <- fn:
	case <-r.done:
	}
}

// Subscribe returns a channel of presentation frames and a cancel func.
// Slow subscribers lose old frames, never block the loop.
func (r *Runner) Subscribe(buf int) (<-chan sim.Frame, func()) {
	if buf < 1 {
		buf = 1
	}
	ch := make(chan sim.Frame, buf)

	r.subMu.Lock()
	id := r.nextSub
	r.nextSub++
	select {
	case <-r.done:
		close(ch)
		r.subMu.Unlock()
		return ch, func() {}
	default:
	}
	r.subs[id] = ch
	r.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.subMu.Lock()
			defer r.subMu.Unlock()
			if c, ok := r.subs[id]; ok {
				delete(r.subs, id)
				close(c)
			}
		})
	}
}

// SetPaused freezes or resumes the simulation. Commands still run while
// paused.
func (r *Runner) SetPaused(p bool) { r.paused.Store(p) }

// Paused reports whether the simulation is frozen.
func (r *Runner) Paused() bool { return r.paused.Load() }

// Done returns a channel closed when the loop exits.
func (r *Runner) Done() <-chan struct{} { return r.done }

// Stop ends the run with EndCancelled. Safe to call more than once.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}

// Run drives the loop until the director ends the run, MaxTicks is
// reached or ctx is cancelled. It closes the journal, records the run and
// closes every subscriber channel before returning.
func (r *Runner) Run(ctx context.Context) (RunStats, error) {
	r.startMu.Lock()
	if r.started {
		r.startMu.Unlock()
		return RunStats{}, ErrRunning
	}
	r.started = true
	r.startMu.Unlock()

	logger := r.opts.Logger.With("run", shortID(r.opts.RunID), "scenario", r.dir.ID())
	logger.Info("run started", "tick_rate", r.opts.TickRate, "realtime", r.opts.Realtime)

	reason := r.loop(ctx, logger)
	stats := r.stats(reason)
	r.finish()

	var errs []error
	if r.opts.Journal != nil {
		if err := r.opts.Journal.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if r.opts.Recorder != nil {
		if err := r.opts.Recorder.RecordRun(stats); err != nil {
			errs = append(errs, err)
		}
	}
	logger.Info("run finished", "reason", reason, "frames", stats.Frames,
		"score", stats.Score, "kills", stats.Kills, "avg_ms", stats.AvgMs)
	return stats, errors.Join(errs...)
}

func (r *Runner) loop(ctx context.Context, logger *log.Logger) EndReason {
	tickMs := 1000 / float64(r.opts.TickRate)

	var tick <-chan time.Time
	if r.opts.Realtime {
		ticker := time.NewTicker(time.Duration(tickMs * float64(time.Millisecond)))
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		if r.opts.Realtime {
			select {
			case <-ctx.Done():
				return EndCancelled
			case <-r.stop:
				return EndCancelled
			case fn := <-r.cmdChan:
				fn(r.world, r.dir)
				continue
			case <-tick:
			}
		} else {
			select {
			case <-ctx.Done():
				return EndCancelled
			case <-r.stop:
				return EndCancelled
			default:
			}
			r.drainCmds()
			if r.paused.Load() {
				time.Sleep(time.Millisecond)
				continue
			}
		}
		if r.paused.Load() {
			continue
		}

		if reason, done := r.runTick(tickMs, logger); done {
			return reason
		}
	}
}

func (r *Runner) drainCmds() {
	for {
		select {
		case fn := <-r.cmdChan:
			fn(r.world, r.dir)
		default:
			return
		}
	}
}

func (r *Runner) drainInputs() {
	for {
		select {
		case in := <-r.inputChan:
			r.lastInput = in
		default:
			return
		}
	}
}

func (r *Runner) runTick(tickMs float64, logger *log.Logger) (EndReason, bool) {
	r.drainInputs()
	input := r.lastInput
	if r.opts.Pilot != nil {
		input = r.opts.Pilot.Input(r.world)
	}

	res, err := r.world.Advance(input, tickMs)
	if err != nil {
		logger.Error("tick failed", "frame", res.FrameID, "err", err)
	}

	evs := r.world.DrainEvents()
	r.dir.Update(r.world, evs, tickMs/1000)

	if r.opts.Journal != nil && len(evs) > 0 {
		if err := r.opts.Journal.Append(res.FrameID, evs); err != nil {
			logger.Error("journal append failed, journaling disabled", "err", err)
			r.opts.Journal = nil
		}
	}
	r.publish()

	if r.dir.Over() {
		return EndCompleted, true
	}
	if r.opts.MaxTicks > 0 && res.FrameID >= r.opts.MaxTicks {
		return EndLimit, true
	}
	return "", false
}

// publish sends the current frame to every subscriber. A full buffer
// drops its oldest frame.
func (r *Runner) publish() {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	if len(r.subs) == 0 {
		return
	}
	frame := r.world.Presentation()
	for _, ch := range r.subs {
		select {
		case ch <- frame:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- frame:
		default:
		}
	}
}

func (r *Runner) finish() {
	r.doneOnce.Do(func() { close(r.done) })
	r.subMu.Lock()
	defer r.subMu.Unlock()
	for id, ch := range r.subs {
		close(ch)
		delete(r.subs, id)
	}
}

func (r *Runner) stats(reason EndReason) RunStats {
	perf := r.world.Perf()
	tally := r.dir.Tally()
	return RunStats{
		RunID:          r.opts.RunID,
		Scenario:       r.dir.ID(),
		Seed:           r.opts.Seed,
		Frames:         r.world.FrameID(),
		Kills:          tally.Kills,
		Score:          tally.Score,
		ElapsedSeconds: float64(r.world.ElapsedSeconds()),
		AvgMs:          perf.AvgMs,
		MaxMs:          perf.MaxMs,
		Overruns:       perf.Overruns,
		EndReason:      reason,
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
