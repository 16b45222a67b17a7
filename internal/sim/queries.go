package sim

import (
	"github.com/vovakirdan/horde/internal/events"
	"github.com/vovakirdan/horde/internal/params"
)

// BossInfo is a read-only copy of the boss state.
type BossInfo struct {
	Kind       uint8   `json:"kind"`
	X          float32 `json:"x"`
	Y          float32 `json:"y"`
	HP         float32 `json:"hp"`
	MaxHP      float32 `json:"max_hp"`
	Radius     float32 `json:"radius"`
	Invincible bool    `json:"invincible"`
	PhaseTimer float32 `json:"phase_timer"`
	RenderKind uint8   `json:"render_kind"`
}

func (b *BossState) info() BossInfo {
	return BossInfo{
		Kind:       b.Kind,
		X:          b.X,
		Y:          b.Y,
		HP:         b.HP,
		MaxHP:      b.MaxHP,
		Radius:     b.Radius,
		Invincible: b.Invincible,
		PhaseTimer: b.PhaseTimer,
		RenderKind: b.RenderKind,
	}
}

// WeaponLevel describes one equipped weapon.
type WeaponLevel struct {
	KindID uint8  `json:"kind_id"`
	Name   string `json:"name"`
	Level  uint32 `json:"level"`
}

// DrainEvents returns every event emitted since the last drain, in order,
// and empties the log.
func (w *World) DrainEvents() []events.Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.st.events.Drain()
}

// PlayerPos returns the player's center.
func (w *World) PlayerPos() (float32, float32) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.st.player.X, w.st.player.Y
}

// PlayerHP returns the injected player health.
func (w *World) PlayerHP() float32 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.st.player.HP
}

// IsPlayerDead reports whether injected health is at or below zero.
func (w *World) IsPlayerDead() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.st.player.HP <= 0
}

// EnemyCount returns the number of alive enemies.
func (w *World) EnemyCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.st.enemies.Count()
}

// BulletCount returns the number of alive bullets, effects included.
func (w *World) BulletCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.st.bullets.Count()
}

// Boss returns the boss state if one is present.
func (w *World) Boss() (BossInfo, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.st.boss == nil {
		return BossInfo{}, false
	}
	return w.st.boss.info(), true
}

// WeaponSlots returns a copy of the loadout including cooldowns.
func (w *World) WeaponSlots() []params.WeaponSlot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]params.WeaponSlot(nil), w.st.slots...)
}

// WeaponLevels lists equipped weapons with their names.
func (w *World) WeaponLevels() []WeaponLevel {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.weaponLevels()
}

func (w *World) weaponLevels() []WeaponLevel {
	out := make([]WeaponLevel, 0, len(w.st.slots))
	for _, s := range w.st.slots {
		wl := WeaponLevel{KindID: s.KindID, Level: s.Level}
		if wp, ok := w.params.Weapon(s.KindID); ok {
			wl.Name = wp.Name
		}
		out = append(out, wl)
	}
	return out
}

// MagnetTimer returns the seconds left on the magnet effect.
func (w *World) MagnetTimer() float32 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.st.magnetTimer
}

// FrameTimeMs returns the cost of the last successful tick.
func (w *World) FrameTimeMs() float64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.st.lastFrameMs
}

// ElapsedSeconds returns the run clock.
func (w *World) ElapsedSeconds() float32 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.st.elapsed
}

// FrameID returns the number of ticks run so far.
func (w *World) FrameID() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.st.frameID
}

// Params returns a copy of the injected parameter tables.
func (w *World) Params() params.Tables {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.params.Clone()
}
