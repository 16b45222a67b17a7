package sim

import (
	"fmt"
	"math"
	"slices"

	"github.com/vovakirdan/horde/internal/params"
	"github.com/vovakirdan/horde/internal/spatial"
)

func finite(vs ...float32) bool {
	for _, v := range vs {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// SetPlayerHP injects the authority's view of player health.
func (w *World) SetPlayerHP(hp float32) error {
	if !finite(hp) {
		return fmt.Errorf("%w: player hp %v", ErrInvalidValue, hp)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.st.player.HP = hp
	return nil
}

// SetPlayerMaxHP injects the health bar maximum.
func (w *World) SetPlayerMaxHP(maxHP float32) error {
	if !finite(maxHP) || maxHP <= 0 {
		return fmt.Errorf("%w: player max hp %v", ErrInvalidValue, maxHP)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.st.inj.PlayerMaxHP = maxHP
	return nil
}

// SetElapsedSeconds overwrites the run clock.
func (w *World) SetElapsedSeconds(s float32) error {
	if !finite(s) || s < 0 {
		return fmt.Errorf("%w: elapsed %v", ErrInvalidValue, s)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.st.elapsed = s
	return nil
}

// SetBossHP overwrites boss health. No-op without a boss.
func (w *World) SetBossHP(hp float32) error {
	if !finite(hp) {
		return fmt.Errorf("%w: boss hp %v", ErrInvalidValue, hp)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.st.boss != nil {
		w.st.boss.HP = hp
	}
	return nil
}

// SetBossVelocity sets the velocity the boss integrates each tick.
func (w *World) SetBossVelocity(vx, vy float32) error {
	if !finite(vx, vy) {
		return fmt.Errorf("%w: boss velocity (%v, %v)", ErrInvalidValue, vx, vy)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.st.boss != nil {
		w.st.boss.VX, w.st.boss.VY = vx, vy
	}
	return nil
}

// SetBossInvincible toggles whether the boss can take damage.
func (w *World) SetBossInvincible(on bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.st.boss != nil {
		w.st.boss.Invincible = on
	}
}

// SetBossPhaseTimer stores the authority's phase countdown.
func (w *World) SetBossPhaseTimer(t float32) error {
	if !finite(t) {
		return fmt.Errorf("%w: phase timer %v", ErrInvalidValue, t)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.st.boss != nil {
		w.st.boss.PhaseTimer = t
	}
	return nil
}

func validateSlots(slots []params.WeaponSlot) error {
	if len(slots) > params.MaxWeaponSlots {
		return fmt.Errorf("%w: %d slots, at most %d", ErrInvalidSlot, len(slots), params.MaxWeaponSlots)
	}
	for i, s := range slots {
		if s.Level < 1 || s.Level > params.MaxWeaponLevel {
			return fmt.Errorf("%w: slot %d level %d", ErrInvalidSlot, i, s.Level)
		}
	}
	return nil
}

// SetWeaponSlots replaces the loadout. Cooldowns carry over for kinds that
// were already equipped; new kinds start ready to fire. Each old slot
// hands its cooldown to at most one new slot of the same kind.
func (w *World) SetWeaponSlots(slots []params.WeaponSlot) error {
	if err := validateSlots(slots); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.replaceSlots(slots)
	return nil
}

func (w *World) replaceSlots(slots []params.WeaponSlot) {
	next := make([]params.WeaponSlot, len(slots))
	taken := make([]bool, len(w.st.slots))
	for i, s := range slots {
		s.CooldownTimer = 0
		for oi, old := range w.st.slots {
			if !taken[oi] && old.KindID == s.KindID {
				s.CooldownTimer = old.CooldownTimer
				taken[oi] = true
				break
			}
		}
		next[i] = s
	}
	w.st.slots = next
}

// SetMapSize changes the map bounds. Entities are clamped on their next
// movement.
func (w *World) SetMapSize(width, height float32) error {
	if !finite(width, height) || width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %vx%v", ErrInvalidMapSize, width, height)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.mapW, w.mapH = width, height
	return nil
}

// SetEntityParams replaces all three parameter tables. Enemy radii larger
// than the configured contact pad widen the broad phase.
func (w *World) SetEntityParams(t params.Tables) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.params = t.Clone()
	w.queryPad = max(w.cfg.Player.ContactQueryPad, params.DefaultEnemyRadius)
	for _, ep := range w.params.Enemies {
		w.queryPad = max(w.queryPad, ep.Radius)
	}
	if w.params.Ready() {
		w.logger.Debug("entity params loaded",
			"enemies", len(w.params.Enemies), "weapons", len(w.params.Weapons), "bosses", len(w.params.Bosses))
	}
}

// SetObstacles replaces the static obstacles and rebuilds their index.
func (w *World) SetObstacles(obs []spatial.Obstacle) error {
	for i, o := range obs {
		if !finite(o.X, o.Y, o.Radius) || o.Radius < 0 {
			return fmt.Errorf("%w: obstacle %d %+v", ErrInvalidValue, i, o)
		}
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.collision.SetObstacles(obs)
	return nil
}

// SetHUD injects the authority-owned HUD fields.
func (w *World) SetHUD(h HUD) {
	w.mu.Lock()
	defer w.mu.Unlock()
	inj := &w.st.inj
	inj.Score = h.Score
	inj.Kills = h.Kills
	inj.Level = h.Level
	inj.Exp = h.Exp
	inj.ExpToNext = h.ExpToNext
	inj.LevelUpPending = h.LevelUpPending
	inj.Choices = slices.Clone(h.Choices)
	inj.UpgradeDescs = make([][]string, len(h.UpgradeDescs))
	for i, d := range h.UpgradeDescs {
		inj.UpgradeDescs[i] = slices.Clone(d)
	}
}

// SetScorePopups enables a floating score of value at every enemy kill.
func (w *World) SetScorePopups(enabled bool, value uint32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.st.inj.ScorePopups = enabled
	w.st.inj.PopupValue = value
	if !enabled {
		w.st.popups = w.st.popups[:0]
	}
}
