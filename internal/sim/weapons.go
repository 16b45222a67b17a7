package sim

import (
	"math"

	"github.com/vovakirdan/horde/internal/core"
	"github.com/vovakirdan/horde/internal/entity"
	"github.com/vovakirdan/horde/internal/params"
)

const (
	aimedSpread     = math.Pi * 0.08
	whipHalfAngle   = math.Pi * 0.3
	whipEffectLife  = 0.12
	chainEffectLife = 0.10
)

var (
	bossHitColor   = [4]float32{1.0, 0.8, 0.2, 1.0}
	whipSparkColor = [4]float32{1.0, 0.6, 0.1, 1.0}
	chainColor     = [4]float32{0.3, 0.8, 1.0, 1.0}
	auraSparkColor = [4]float32{0.9, 0.9, 0.3, 0.6}
)

var (
	radialDirs4 = [...]core.Vec2{{X: 0, Y: -1}, {X: 0, Y: 1}, {X: -1, Y: 0}, {X: 1, Y: 0}}
	radialDirs8 = [...]core.Vec2{
		{X: 0, Y: -1}, {X: 0, Y: 1}, {X: -1, Y: 0}, {X: 1, Y: 0},
		{X: math.Sqrt2 / 2, Y: -math.Sqrt2 / 2}, {X: -math.Sqrt2 / 2, Y: -math.Sqrt2 / 2},
		{X: math.Sqrt2 / 2, Y: math.Sqrt2 / 2}, {X: -math.Sqrt2 / 2, Y: math.Sqrt2 / 2},
	}
)

// updateWeapons counts every slot's cooldown down and fires the ones that
// reach zero. Aimed and piercing weapons with no target stay ready and try
// again next tick.
func (w *World) updateWeapons(dt float32) {
	if len(w.params.Weapons) == 0 {
		return
	}
	st := w.st
	facing := st.player.Facing

	for si := range st.slots {
		slot := &st.slots[si]
		slot.CooldownTimer = max(slot.CooldownTimer-dt, 0)
		if slot.CooldownTimer > 0 {
			continue
		}
		wp, ok := w.params.Weapon(slot.KindID)
		if !ok {
			continue
		}
		if w.fire(*slot, wp, facing) {
			slot.CooldownTimer = slot.EffectiveCooldown(wp)
		}
	}
}

func (w *World) fire(slot params.WeaponSlot, wp params.WeaponParams, facing float32) bool {
	px, py := w.st.player.X, w.st.player.Y
	dmg := slot.EffectiveDamage(wp)

	switch wp.Pattern {
	case params.PatternAimed:
		return w.fireAimed(px, py, dmg, slot.BulletCount(wp))
	case params.PatternFixedUp:
		w.spawnBullet(px, py, 0, -w.cfg.Bullets.Speed, dmg, false, entity.BulletKindNormal)
		return true
	case params.PatternRadial:
		w.fireRadial(px, py, dmg, slot.BulletCount(wp))
		return true
	case params.PatternWhip:
		w.fireWhip(px, py, dmg, wp.WhipRange(slot.Level), facing)
		return true
	case params.PatternPiercing:
		return w.firePiercing(px, py, dmg)
	case params.PatternChain:
		w.fireChain(px, py, dmg, wp.ChainCountFor(slot.Level))
		return true
	case params.PatternAura:
		w.fireAura(px, py, dmg, wp.AuraRadius(slot.Level))
		return true
	default:
		return false
	}
}

func (w *World) spawnBullet(x, y, vx, vy float32, dmg int32, piercing bool, kind uint8) {
	w.st.bullets.Spawn(entity.BulletSpec{
		X: x, Y: y, VX: vx, VY: vy,
		Damage:   dmg,
		Lifetime: w.cfg.Bullets.Lifetime,
		Piercing: piercing,
		Kind:     kind,
	})
}

func (w *World) spawnEffect(x, y, lifetime float32, kind uint8) {
	w.st.bullets.Spawn(entity.BulletSpec{X: x, Y: y, Lifetime: lifetime, Kind: kind})
}

// bearingToNearest returns the angle from (px, py) to the nearest enemy.
func (w *World) bearingToNearest(px, py float32) (float32, bool) {
	e := w.st.enemies
	ti := w.nearest.Find(e, px, py, w.cfg.Weapons.SearchRadius)
	if ti < 0 {
		return 0, false
	}
	return core.Atan2(e.Y[ti]-py, e.X[ti]-px), true
}

func (w *World) fireAimed(px, py float32, dmg int32, count int) bool {
	base, ok := w.bearingToNearest(px, py)
	if !ok {
		return false
	}
	speed := w.cfg.Bullets.Speed
	half := (float32(count) - 1) / 2
	for b := range count {
		a := base + (float32(b)-half)*aimedSpread
		w.spawnBullet(px, py, core.Cos(a)*speed, core.Sin(a)*speed, dmg, false, entity.BulletKindNormal)
	}
	return true
}

func (w *World) firePiercing(px, py float32, dmg int32) bool {
	a, ok := w.bearingToNearest(px, py)
	if !ok {
		return false
	}
	speed := w.cfg.Bullets.Speed
	w.spawnBullet(px, py, core.Cos(a)*speed, core.Sin(a)*speed, dmg, true, entity.BulletKindFireball)
	return true
}

func (w *World) fireRadial(px, py float32, dmg int32, count int) {
	dirs := radialDirs4[:]
	if count >= 8 {
		dirs = radialDirs8[:]
	}
	speed := w.cfg.Bullets.Speed
	for _, d := range dirs {
		w.spawnBullet(px, py, d.X*speed, d.Y*speed, dmg, false, entity.BulletKindNormal)
	}
}

// angleDiff returns a - b wrapped into [-pi, pi).
func angleDiff(a, b float32) float32 {
	d := math.Mod(float64(a-b)+math.Pi, 2*math.Pi)
	if d < 0 {
		d += 2 * math.Pi
	}
	return float32(d - math.Pi)
}

func inFan(dx, dy, rangeSq, facing float32) bool {
	if dx*dx+dy*dy > rangeSq {
		return false
	}
	diff := angleDiff(core.Atan2(dy, dx), facing)
	return diff > -whipHalfAngle && diff < whipHalfAngle
}

func (w *World) fireWhip(px, py float32, dmg int32, reach, facing float32) {
	w.spawnEffect(px+core.Cos(facing)*reach*0.5, py+core.Sin(facing)*reach*0.5, whipEffectLife, entity.BulletKindWhip)

	e := w.st.enemies
	rangeSq := reach * reach
	w.queryBuf = w.collision.Dynamic.QueryRadius(px, py, reach, w.queryBuf[:0])
	for _, i := range w.queryBuf {
		if e.Alive[i] == entity.Dead {
			continue
		}
		if inFan(e.X[i]-px, e.Y[i]-py, rangeSq, facing) {
			w.damageEnemy(i, float32(dmg), 3, whipSparkColor)
		}
	}

	if b := w.st.boss; b != nil && !b.Invincible && inFan(b.X-px, b.Y-py, rangeSq, facing) {
		w.st.bossPending += float32(dmg)
		w.st.particles.Emit(w.rng, b.X, b.Y, 4, bossHitColor)
	}
}

func (w *World) fireChain(px, py float32, dmg int32, links int) {
	e := w.st.enemies
	if cap(w.chainHit) < e.Len() {
		w.chainHit = make([]bool, e.Len())
	}
	w.chainHit = w.chainHit[:e.Len()]
	clear(w.chainHit)

	radius := w.cfg.Weapons.SearchRadius
	cur := w.nearest.Find(e, px, py, radius)
	for range links {
		if cur < 0 {
			break
		}
		hx, hy := e.X[cur], e.Y[cur]
		w.spawnEffect(hx, hy, chainEffectLife, entity.BulletKindLightning)
		w.st.particles.Emit(w.rng, hx, hy, 5, chainColor)
		w.damageEnemy(cur, float32(dmg), 0, chainColor)
		w.chainHit[cur] = true
		cur = w.nearest.FindExcluding(e, hx, hy, radius, w.chainHit)
	}

	if b := w.st.boss; b != nil && !b.Invincible {
		dx, dy := b.X-px, b.Y-py
		if dx*dx+dy*dy < params.ChainBossRange*params.ChainBossRange {
			w.st.bossPending += float32(dmg)
			w.spawnEffect(b.X, b.Y, chainEffectLife, entity.BulletKindLightning)
			w.st.particles.Emit(w.rng, b.X, b.Y, 5, chainColor)
		}
	}
}

func (w *World) fireAura(px, py float32, dmg int32, radius float32) {
	e := w.st.enemies
	rSq := radius * radius
	w.queryBuf = w.collision.Dynamic.QueryRadius(px, py, radius, w.queryBuf[:0])
	for _, i := range w.queryBuf {
		if e.Alive[i] == entity.Dead {
			continue
		}
		dx, dy := e.X[i]-px, e.Y[i]-py
		if dx*dx+dy*dy > rSq {
			continue
		}
		w.damageEnemy(i, float32(dmg), 2, auraSparkColor)
	}
}
