package sim

import (
	"github.com/vovakirdan/horde/internal/entity"
)

// mapMargin is how far outside the map a bullet may travel before it is
// discarded.
const mapMargin = 100

var (
	sparkColor         = [4]float32{1.0, 0.9, 0.3, 1.0}
	piercingSparkColor = [4]float32{1.0, 0.4, 0.0, 1.0}
)

func (w *World) updateProjectiles(dt float32) {
	b := w.st.bullets
	br := w.cfg.Bullets.Radius

	for i := range b.Len() {
		if !b.Alive[i] {
			continue
		}
		b.X[i] += b.VX[i] * dt
		b.Y[i] += b.VY[i] * dt
		b.Lifetime[i] -= dt
		if b.Lifetime[i] <= 0 {
			b.Kill(i)
			continue
		}
		x, y := b.X[i], b.Y[i]
		var hit bool
		hit, w.obstacleBuf = w.collision.OverlapsObstacle(x, y, br, w.obstacleBuf)
		if hit {
			b.Kill(i)
			continue
		}
		if x < -mapMargin || x > w.mapW+mapMargin || y < -mapMargin || y > w.mapH+mapMargin {
			b.Kill(i)
		}
	}

	e := w.st.enemies
	queryR := br + w.queryPad
	for bi := range b.Len() {
		if !b.Alive[bi] || b.Damage[bi] == 0 {
			continue
		}
		bx, by := b.X[bi], b.Y[bi]
		if b.Kind[bi] == entity.BulletKindRock {
			w.rockHit(bi)
			continue
		}
		piercing := b.Piercing[bi]
		spark := sparkColor
		if piercing {
			spark = piercingSparkColor
		}

		w.queryBuf = w.collision.Dynamic.QueryRadius(bx, by, queryR, w.queryBuf[:0])
		for _, ei := range w.queryBuf {
			if e.Alive[ei] == entity.Dead {
				continue
			}
			hitR := br + w.enemyRadius(e.Kind[ei])
			dx := bx - e.X[ei]
			dy := by - e.Y[ei]
			if dx*dx+dy*dy >= hitR*hitR {
				continue
			}
			w.damageEnemy(ei, float32(b.Damage[bi]), 3, spark)
			if !piercing {
				b.Kill(bi)
				break
			}
		}
	}
}

// rockHit tests a boss projectile against the player. Rocks never hit
// enemies or the boss.
func (w *World) rockHit(bi int) {
	b := w.st.bullets
	p := &w.st.player
	r := w.cfg.Bullets.Radius + w.cfg.Player.Radius
	dx := b.X[bi] - p.X
	dy := b.Y[bi] - p.Y
	if dx*dx+dy*dy >= r*r {
		return
	}
	if w.hurtPlayer(float32(b.Damage[bi])) {
		b.Kill(bi)
	}
}
