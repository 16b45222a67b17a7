package sim

import (
	"fmt"

	"github.com/vovakirdan/horde/internal/params"
)

// SaveSnapshot is the persistent part of a run. Enemies, bullets and
// other transient entities are not saved.
type SaveSnapshot struct {
	PlayerHP       float32             `json:"player_hp" msgpack:"player_hp"`
	PlayerX        float32             `json:"player_x" msgpack:"player_x"`
	PlayerY        float32             `json:"player_y" msgpack:"player_y"`
	PlayerMaxHP    float32             `json:"player_max_hp" msgpack:"player_max_hp"`
	ElapsedSeconds float32             `json:"elapsed_seconds" msgpack:"elapsed_seconds"`
	WeaponSlots    []params.WeaponSlot `json:"weapon_slots" msgpack:"weapon_slots"`
}

// Save captures the persistent state.
func (w *World) Save() SaveSnapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	st := w.st
	snap := SaveSnapshot{
		PlayerHP:       st.player.HP,
		PlayerX:        st.player.X,
		PlayerY:        st.player.Y,
		PlayerMaxHP:    st.inj.PlayerMaxHP,
		ElapsedSeconds: st.elapsed,
		WeaponSlots:    make([]params.WeaponSlot, len(st.slots)),
	}
	for i, s := range st.slots {
		snap.WeaponSlots[i] = params.WeaponSlot{KindID: s.KindID, Level: s.Level}
	}
	return snap
}

// Load restores a snapshot into a fresh world state. Every transient
// store is emptied, the boss removed and pending events dropped. A
// snapshot with no weapons gets the default level 1 weapon 0.
func (w *World) Load(snap SaveSnapshot) error {
	if !finite(snap.PlayerHP, snap.PlayerX, snap.PlayerY, snap.PlayerMaxHP, snap.ElapsedSeconds) {
		return fmt.Errorf("%w: save snapshot has non-finite fields", ErrInvalidValue)
	}
	slots := snap.WeaponSlots
	if len(slots) == 0 {
		slots = []params.WeaponSlot{params.NewWeaponSlot(0)}
	}
	if err := validateSlots(slots); err != nil {
		return err
	}
	maxHP := snap.PlayerMaxHP
	if maxHP <= 0 {
		maxHP = w.cfg.Player.MaxHP
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	st := w.st
	st.enemies.Reset()
	st.bullets.Reset()
	st.particles.Reset()
	st.items.Reset()
	st.boss = nil
	st.bossPending = 0
	st.events.Clear()
	st.magnetTimer = 0
	st.popups = st.popups[:0]
	w.collision.Dynamic.Reset()

	st.player = Player{X: snap.PlayerX, Y: snap.PlayerY, HP: snap.PlayerHP}
	st.prevPlayerX, st.prevPlayerY = snap.PlayerX, snap.PlayerY
	st.elapsed = snap.ElapsedSeconds
	st.inj.PlayerMaxHP = maxHP
	st.inj.Score = 0
	st.inj.Kills = 0
	st.slots = make([]params.WeaponSlot, len(slots))
	for i, s := range slots {
		st.slots[i] = params.WeaponSlot{KindID: s.KindID, Level: s.Level}
	}
	w.poisoned = false
	return nil
}
