package sim

import (
	"github.com/vovakirdan/horde/internal/core"
	"github.com/vovakirdan/horde/internal/entity"
	"github.com/vovakirdan/horde/internal/events"
)

var bossDeathColor = [4]float32{1.0, 0.5, 0.0, 1.0}

// bossHit is one bullet that struck the boss this tick.
type bossHit struct {
	idx  int
	kill bool
}

// updateBoss moves the boss by its injected velocity, applies contact
// damage to the player, sums every hit into one damage application and
// removes the boss when its health runs out.
func (w *World) updateBoss(dt float32) {
	st := w.st
	boss := st.boss
	if boss == nil {
		st.bossPending = 0
		return
	}
	p := &st.player

	r := boss.Radius
	boss.X = core.Clamp32(boss.X+boss.VX*dt, r, w.mapW-r)
	boss.Y = core.Clamp32(boss.Y+boss.VY*dt, r, w.mapH-r)

	hit := w.cfg.Player.Radius + r
	if dx, dy := p.X-boss.X, p.Y-boss.Y; dx*dx+dy*dy < hit*hit {
		w.hurtPlayer(boss.DamagePerSec * dt)
	}

	total := st.bossPending
	st.bossPending = 0
	hits := w.bossHits[:0]
	if !boss.Invincible {
		b := st.bullets
		hr := w.cfg.Bullets.Radius + r
		for i := range b.Len() {
			if !b.Alive[i] || b.Damage[i] == 0 || b.Kind[i] == entity.BulletKindRock {
				continue
			}
			dx := b.X[i] - boss.X
			dy := b.Y[i] - boss.Y
			if dx*dx+dy*dy < hr*hr {
				hits = append(hits, bossHit{idx: i, kill: !b.Piercing[i]})
				total += float32(b.Damage[i])
			}
		}
	} else {
		total = 0
	}

	if total > 0 {
		st.events.Push(events.SpecialEntityDamaged{Damage: total})
		boss.HP -= total
	}
	w.bossHits = hits
	if len(hits) > 0 {
		st.particles.Emit(w.rng, boss.X, boss.Y, 4, bossHitColor)
		for _, h := range hits {
			if h.kill {
				st.bullets.Kill(h.idx)
			}
		}
	}

	if boss.HP <= 0 {
		st.events.Push(events.SpecialEntityDefeated{Kind: boss.Kind, X: boss.X, Y: boss.Y})
		st.particles.Emit(w.rng, boss.X, boss.Y, 40, bossDeathColor)
		st.boss = nil
	}
}
