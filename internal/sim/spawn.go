package sim

import (
	"fmt"
	"math"

	"github.com/vovakirdan/horde/internal/core"
	"github.com/vovakirdan/horde/internal/entity"
	"github.com/vovakirdan/horde/internal/events"
	"github.com/vovakirdan/horde/internal/params"
)

// ringPosition picks a point on the annulus [RingMin, RingMax] around the
// player.
func (w *World) ringPosition() (float32, float32) {
	p := w.st.player
	lo, hi := w.cfg.Spawn.RingMin, w.cfg.Spawn.RingMax
	angle := w.rng.Float64() * 2 * math.Pi
	dist := float64(lo) + w.rng.Float64()*float64(max(hi-lo, 0))
	return p.X + float32(math.Cos(angle)*dist), p.Y + float32(math.Sin(angle)*dist)
}

// SpawnEnemies places count enemies of kind on a ring around the player
// and returns how many were spawned. A kind with no row spawns nothing.
func (w *World) SpawnEnemies(kind uint8, count int) int {
	return w.SpawnEliteEnemies(kind, count, 1)
}

// SpawnEliteEnemies is SpawnEnemies with health scaled by hpMultiplier.
func (w *World) SpawnEliteEnemies(kind uint8, count int, hpMultiplier float32) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	ep, ok := w.params.Enemy(kind)
	if !ok || count <= 0 || !finite(hpMultiplier) || hpMultiplier <= 0 {
		return 0
	}
	for range count {
		x, y := w.ringPosition()
		w.st.enemies.Spawn(x, y, kind, ep.Speed, ep.MaxHP*hpMultiplier)
	}
	return count
}

// SpawnEnemiesAt places one enemy of kind at each position.
func (w *World) SpawnEnemiesAt(kind uint8, positions []core.Vec2) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	ep, ok := w.params.Enemy(kind)
	if !ok {
		return 0
	}
	for _, pos := range positions {
		w.st.enemies.Spawn(pos.X, pos.Y, kind, ep.Speed, ep.MaxHP)
	}
	return len(positions)
}

// SpawnItem drops an item. Unknown kinds become gems.
func (w *World) SpawnItem(x, y float32, kind entity.ItemKind, value uint32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.st.items.Spawn(x, y, entity.ItemKindFromID(uint8(kind)), value)
}

// SpawnBoss brings boss kind into the world at a fixed offset from the
// player. It reports false if a boss is already present or the kind has
// no row.
func (w *World) SpawnBoss(kind uint8) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.st.boss != nil {
		return false
	}
	bp, ok := w.params.Boss(kind)
	if !ok {
		return false
	}
	p := w.st.player
	r := bp.Radius
	w.st.boss = &BossState{
		Kind:         kind,
		X:            core.Clamp32(p.X+w.cfg.Spawn.BossOffsetX, r, w.mapW-r),
		Y:            core.Clamp32(p.Y, r, w.mapH-r),
		HP:           bp.MaxHP,
		MaxHP:        bp.MaxHP,
		PhaseTimer:   bp.SpecialInterval,
		Radius:       r,
		DamagePerSec: bp.DamagePerSec,
		RenderKind:   bp.RenderKind,
	}
	w.st.events.Push(events.SpecialEntitySpawned{Kind: kind})
	return true
}

// FireBossProjectile launches a rock from the boss along (dx, dy). It
// reports false when there is no boss.
func (w *World) FireBossProjectile(dx, dy, speed float32, damage int32, lifetime float32) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	b := w.st.boss
	if b == nil || !finite(dx, dy, speed, lifetime) {
		return false
	}
	l := max(core.Sqrt32(dx*dx+dy*dy), 0.001)
	w.st.bullets.Spawn(entity.BulletSpec{
		X: b.X, Y: b.Y,
		VX:       dx / l * speed,
		VY:       dy / l * speed,
		Damage:   damage,
		Lifetime: lifetime,
		Kind:     entity.BulletKindRock,
	})
	return true
}

// AddWeapon levels up an equipped weapon of kind, or equips it at level 1
// if there is a free slot.
func (w *World) AddWeapon(kind uint8) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.params.Weapon(kind); !ok {
		return fmt.Errorf("%w: weapon %d", ErrInvalidKind, kind)
	}
	for i := range w.st.slots {
		if w.st.slots[i].KindID == kind {
			if w.st.slots[i].Level < params.MaxWeaponLevel {
				w.st.slots[i].Level++
			}
			return nil
		}
	}
	if len(w.st.slots) >= params.MaxWeaponSlots {
		return fmt.Errorf("%w: all %d slots in use", ErrInvalidSlot, params.MaxWeaponSlots)
	}
	w.st.slots = append(w.st.slots, params.NewWeaponSlot(kind))
	return nil
}
