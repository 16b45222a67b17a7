package scenario

import (
	"math"

	"github.com/vovakirdan/horde/internal/config"
	"github.com/vovakirdan/horde/internal/params"
	"github.com/vovakirdan/horde/internal/sim"
)

// rockSpread is the angle between the three rocks of one volley.
const rockSpread = math.Pi / 8

// bossAI steers the boss toward the player and throws rock volleys. After
// every volley the boss is shielded for a short window.
type bossAI struct {
	cfg      config.BossSchedule
	spawned  bool
	defeated bool
	timer    float32
	shield   float32
	volleys  int
}

func (b *bossAI) update(w *sim.World, t params.Tables, elapsed float64, dt float32) {
	if !b.cfg.Enabled || b.defeated {
		return
	}
	bp, ok := t.Boss(b.cfg.Kind)
	if !ok {
		return
	}
	if !b.spawned {
		if elapsed < b.cfg.AtSeconds {
			return
		}
		b.spawned = w.SpawnBoss(b.cfg.Kind)
		b.timer = bp.SpecialInterval
		return
	}

	info, ok := w.Boss()
	if !ok {
		return
	}
	px, py := w.PlayerPos()
	dx, dy := px-info.X, py-info.Y
	l := float32(math.Hypot(float64(dx), float64(dy)))
	if l > info.Radius {
		_ = w.SetBossVelocity(dx/l*bp.Speed, dy/l*bp.Speed)
	} else {
		_ = w.SetBossVelocity(0, 0)
	}

	if b.shield > 0 {
		b.shield -= dt
		if b.shield <= 0 {
			w.SetBossInvincible(false)
		}
	}

	b.timer -= dt
	if b.timer <= 0 && bp.SpecialInterval > 0 {
		b.timer += bp.SpecialInterval
		b.volley(w, dx, dy)
	}
	_ = w.SetBossPhaseTimer(b.timer)
}

func (b *bossAI) volley(w *sim.World, dx, dy float32) {
	base := math.Atan2(float64(dy), float64(dx))
	for i := -1; i <= 1; i++ {
		a := base + float64(i)*rockSpread
		w.FireBossProjectile(float32(math.Cos(a)), float32(math.Sin(a)),
			b.cfg.RockSpeed, b.cfg.RockDamage, b.cfg.RockLifetime)
	}
	b.volleys++
	if b.cfg.ShieldTime > 0 {
		b.shield = b.cfg.ShieldTime
		w.SetBossInvincible(true)
	}
}
