package sim

import (
	"github.com/vovakirdan/horde/internal/core"
	"github.com/vovakirdan/horde/internal/entity"
	"github.com/vovakirdan/horde/internal/events"
)

var (
	potionColor = [4]float32{0.2, 1.0, 0.4, 1.0}
	magnetColor = [4]float32{1.0, 0.9, 0.2, 1.0}
)

// updateItems runs the magnet pull and collects items in reach. Pickups
// only emit events; healing and experience are the authority's business.
func (w *World) updateItems(dt float32) {
	st := w.st
	it := st.items
	px, py := st.player.X, st.player.Y

	if st.magnetTimer > 0 {
		st.magnetTimer = max(st.magnetTimer-dt, 0)
	}

	magnet := st.magnetTimer > 0
	if magnet {
		pull := w.cfg.Items.MagnetPull * dt
		for i := range it.Len() {
			if !it.Alive[i] || it.Kind[i] != entity.ItemGem {
				continue
			}
			dx := px - it.X[i]
			dy := py - it.Y[i]
			d := max(core.Sqrt32(dx*dx+dy*dy), 1)
			it.X[i] += dx / d * pull
			it.Y[i] += dy / d * pull
		}
	}

	r := w.cfg.Items.CollectRadius
	if magnet {
		r = w.cfg.Items.MagnetRadius
	}
	rSq := r * r
	for i := range it.Len() {
		if !it.Alive[i] {
			continue
		}
		dx := px - it.X[i]
		dy := py - it.Y[i]
		if dx*dx+dy*dy > rSq {
			continue
		}
		kind := it.Kind[i]
		switch kind {
		case entity.ItemPotion:
			st.particles.Emit(w.rng, px, py, 6, potionColor)
		case entity.ItemMagnet:
			st.magnetTimer = w.cfg.Items.MagnetDuration
			st.particles.Emit(w.rng, px, py, 8, magnetColor)
		}
		st.events.Push(events.ItemPickup{Kind: uint8(kind), Value: it.Value[i]})
		it.Kill(i)
	}
}
