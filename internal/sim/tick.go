package sim

import (
	"fmt"
	"math"
	"time"

	"github.com/vovakirdan/horde/internal/core"
	"github.com/vovakirdan/horde/internal/entity"
	"github.com/vovakirdan/horde/internal/events"
	"github.com/vovakirdan/horde/internal/physics"
)

const popupLifetime = 0.8

var hurtColor = [4]float32{1.0, 0.15, 0.15, 1.0}

// TickResult summarizes one Advance call.
type TickResult struct {
	FrameID     uint64
	PlayerX     float32
	PlayerY     float32
	PlayerHP    float32
	EnemyCount  int
	TickCostMs  float64
	ParamsReady bool
}

// Advance runs one simulation step of elapsedMs milliseconds with the
// given player input.
//
// If the step panics the world restores the state it had when Advance was
// entered and returns an error wrapping ErrPoisoned. The world remains
// usable.
func (w *World) Advance(input core.InputFrame, elapsedMs float64) (TickResult, error) {
	waitStart := time.Now()
	w.mu.Lock()
	defer w.mu.Unlock()
	w.perf.observeLockWait(time.Since(waitStart))

	if elapsedMs < 0 || math.IsNaN(elapsedMs) || math.IsInf(elapsedMs, 0) {
		return w.result(0), fmt.Errorf("%w: elapsed %v ms", ErrInvalidValue, elapsedMs)
	}

	ready := w.params.Ready()
	if !ready && !w.warnedParams {
		w.logger.Debug("ticking without entity params", "frame", w.st.frameID+1)
		w.warnedParams = true
	}

	st := w.st
	st.prevPlayerX, st.prevPlayerY = st.player.X, st.player.Y
	st.prevTickMs = st.currTickMs
	w.good.copyFrom(st)
	w.goodRNG = *w.rngSrc

	start := time.Now()
	err := w.step(input, float32(elapsedMs/1000))
	cost := float64(time.Since(start).Nanoseconds()) / 1e6
	if err != nil {
		return w.result(cost), err
	}

	st.currTickMs = nowMs(w.now())
	st.lastFrameMs = cost
	over := w.perf.record(cost, w.cfg.FrameBudgetMs)
	if over {
		w.logger.Warn("frame budget exceeded", "ms", fmt.Sprintf("%.2f", cost), "enemies", st.enemies.Count())
	}
	return w.result(cost), nil
}

func (w *World) result(cost float64) TickResult {
	st := w.st
	return TickResult{
		FrameID:     st.frameID,
		PlayerX:     st.player.X,
		PlayerY:     st.player.Y,
		PlayerHP:    st.player.HP,
		EnemyCount:  st.enemies.Count(),
		TickCostMs:  cost,
		ParamsReady: w.params.Ready(),
	}
}

func (w *World) step(input core.InputFrame, dt float32) (err error) {
	defer func() {
		if r := recover(); r != nil {
			w.poisoned = true
			w.logger.Error("tick panicked, restoring last good state", "frame", w.good.frameID+1, "panic", r)
			w.st.copyFrom(w.good)
			*w.rngSrc = w.goodRNG
			err = fmt.Errorf("%w: %v", ErrPoisoned, r)
		}
	}()
	if w.beforeStep != nil {
		w.beforeStep()
	}
	w.tick(input, dt)
	return nil
}

func (w *World) tick(input core.InputFrame, dt float32) {
	st := w.st
	st.frameID++
	w.updatePopups(dt)
	st.elapsed += dt
	st.player.InputDX, st.player.InputDY = input.DX, input.DY

	w.movePlayer(dt)
	px, py := st.player.X, st.player.Y

	w.chaser.Update(st.enemies, px, py, dt)
	w.separator.Apply(st.enemies, dt)
	w.obstacleBuf = physics.PushOutEnemies(w.collision, st.enemies, w.enemyObstacleInfo, w.obstacleBuf)
	w.collision.Dynamic.Rebuild(st.enemies.X, st.enemies.Y, st.enemies.Alive)

	if st.player.InvincibleFor > 0 {
		st.player.InvincibleFor = max(st.player.InvincibleFor-dt, 0)
	}
	w.enemyContact(dt)

	w.updateWeapons(dt)
	st.particles.Update(dt)
	w.updateItems(dt)
	w.updateProjectiles(dt)
	w.updateBoss(dt)
}

func (w *World) movePlayer(dt float32) {
	p := &w.st.player
	r := w.cfg.Player.Radius
	dx, dy := p.InputDX, p.InputDY
	if l := core.Sqrt32(dx*dx + dy*dy); l > 0.001 {
		p.X += dx / l * w.cfg.Player.Speed * dt
		p.Y += dy / l * w.cfg.Player.Speed * dt
		if l > 0.01 {
			p.Facing = core.Atan2(dy, dx)
		}
	}
	p.X, p.Y, w.obstacleBuf = physics.PushOut(w.collision, p.X, p.Y, r, w.obstacleBuf)
	p.X = core.Clamp32(p.X, r, w.mapW-r)
	p.Y = core.Clamp32(p.Y, r, w.mapH-r)
}

// enemyContact emits at most one PlayerDamaged per invincibility window.
// Health itself is never touched; the authority applies the damage.
func (w *World) enemyContact(dt float32) {
	st := w.st
	p := &st.player
	e := st.enemies
	r := w.cfg.Player.Radius
	w.queryBuf = w.collision.Dynamic.QueryRadius(p.X, p.Y, r+w.queryPad, w.queryBuf[:0])
	for _, i := range w.queryBuf {
		if e.Alive[i] == entity.Dead {
			continue
		}
		ep, ok := w.params.Enemy(e.Kind[i])
		if !ok {
			continue
		}
		hit := r + ep.Radius
		dx := p.X - e.X[i]
		dy := p.Y - e.Y[i]
		if dx*dx+dy*dy >= hit*hit {
			continue
		}
		if w.hurtPlayer(ep.DamagePerSec * dt) {
			return
		}
	}
}

// hurtPlayer emits PlayerDamaged and starts the invincibility window if
// the player can currently be hurt.
func (w *World) hurtPlayer(damage float32) bool {
	p := &w.st.player
	if p.InvincibleFor > 0 || p.HP <= 0 {
		return false
	}
	w.st.events.Push(events.PlayerDamaged{Damage: damage})
	p.InvincibleFor = w.cfg.Player.InvincibleDuration
	w.st.particles.Emit(w.rng, p.X, p.Y, 6, hurtColor)
	return true
}

// damageEnemy applies damage to slot i and reports whether it died. A
// surviving enemy gets a small spark of sparkCount particles.
func (w *World) damageEnemy(i int, damage float32, sparkCount int, spark [4]float32) bool {
	e := w.st.enemies
	e.HP[i] -= damage
	x, y := e.X[i], e.Y[i]
	if e.HP[i] <= 0 {
		kind := e.Kind[i]
		e.Kill(i)
		w.st.events.Push(events.EnemyKilled{Kind: kind, X: x, Y: y})
		w.st.particles.Emit(w.rng, x, y, 8, w.particleColor(kind))
		if w.st.inj.ScorePopups {
			w.st.popups = append(w.st.popups, ScorePopup{X: x, Y: y, Value: w.st.inj.PopupValue, Lifetime: popupLifetime})
		}
		return true
	}
	if sparkCount > 0 {
		w.st.particles.Emit(w.rng, x, y, sparkCount, spark)
	}
	return false
}

func (w *World) updatePopups(dt float32) {
	kept := w.st.popups[:0]
	for _, p := range w.st.popups {
		p.Lifetime -= dt
		if p.Lifetime > 0 {
			kept = append(kept, p)
		}
	}
	w.st.popups = kept
}
