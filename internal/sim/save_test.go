package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/horde/internal/core"
	"github.com/vovakirdan/horde/internal/entity"
	"github.com/vovakirdan/horde/internal/params"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	w := newTestWorld(t,
		params.WeaponSlot{KindID: weaponWand, Level: 3},
		params.NewWeaponSlot(weaponWhip),
	)
	require.NoError(t, w.SetPlayerHP(42))
	require.NoError(t, w.SetPlayerMaxHP(150))
	require.NoError(t, w.SetElapsedSeconds(12))
	_, err := w.Advance(core.InputFrame{DX: 1}, tickMs)
	require.NoError(t, err)

	snap := w.Save()
	assert.Equal(t, float32(42), snap.PlayerHP)
	assert.Equal(t, float32(150), snap.PlayerMaxHP)
	assert.InDelta(t, 12.016, snap.ElapsedSeconds, 1e-4)
	for _, s := range snap.WeaponSlots {
		assert.Zero(t, s.CooldownTimer, "cooldowns are not saved")
	}

	other := newTestWorld(t)
	other.SpawnEnemies(kindSlime, 30)
	other.SpawnItem(1000, 1000, entity.ItemGem, 1)
	require.True(t, other.SpawnBoss(0))
	require.NoError(t, other.Load(snap))

	assert.Equal(t, snap, other.Save())
	assert.Zero(t, other.EnemyCount())
	assert.Zero(t, other.BulletCount())
	assert.Empty(t, other.DrainEvents())
	_, hasBoss := other.Boss()
	assert.False(t, hasBoss)
	assert.Zero(t, other.Presentation().HUD.ItemCount)
}

func TestLoadRepairsEmptyLoadout(t *testing.T) {
	w := newTestWorld(t)
	require.NoError(t, w.Load(SaveSnapshot{PlayerHP: 10, PlayerX: 300, PlayerY: 400}))

	assert.Equal(t, []params.WeaponSlot{{KindID: 0, Level: 1}}, w.WeaponSlots())
	d := w.Diagnostics()
	assert.Equal(t, float32(100), d.PlayerMaxHP, "missing max hp falls back to config")
	assert.Equal(t, float32(300), d.Player.X)
	assert.Equal(t, float32(400), d.Player.Y)
}

func TestLoadRejectsBadSnapshot(t *testing.T) {
	w := newTestWorld(t)
	w.SpawnEnemies(kindSlime, 3)

	err := w.Load(SaveSnapshot{PlayerHP: float32(math.Inf(1))})
	assert.ErrorIs(t, err, ErrInvalidValue)
	err = w.Load(SaveSnapshot{PlayerHP: 1, WeaponSlots: []params.WeaponSlot{{KindID: 0, Level: 9}}})
	assert.ErrorIs(t, err, ErrInvalidSlot)

	assert.Equal(t, 3, w.EnemyCount(), "a rejected load leaves the world alone")
}

func TestLoadClearsPoison(t *testing.T) {
	w := newTestWorld(t)
	w.beforeStep = func() { panic("boom") }
	_, err := w.Advance(core.InputFrame{}, tickMs)
	require.ErrorIs(t, err, ErrPoisoned)
	w.beforeStep = nil

	require.NoError(t, w.Load(w.Save()))
	assert.False(t, w.Poisoned())
}
