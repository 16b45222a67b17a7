package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/horde/internal/core"
	"github.com/vovakirdan/horde/internal/events"
	"github.com/vovakirdan/horde/internal/params"
)

func TestSpawnBoss(t *testing.T) {
	w := newTestWorld(t)

	assert.False(t, w.SpawnBoss(7), "unknown boss kind")
	require.True(t, w.SpawnBoss(0))
	assert.False(t, w.SpawnBoss(0), "only one boss at a time")

	spawned := ofType[events.SpecialEntitySpawned](w.DrainEvents())
	require.Len(t, spawned, 1)
	assert.Equal(t, uint8(0), spawned[0].Kind)

	b, ok := w.Boss()
	require.True(t, ok)
	assert.Equal(t, float32(1100), b.X)
	assert.Equal(t, float32(1000), b.Y)
	assert.Equal(t, float32(100), b.HP)
	assert.Equal(t, float32(5), b.PhaseTimer)
	assert.Equal(t, uint8(20), b.RenderKind)
}

func TestBossSpawnClampedToMap(t *testing.T) {
	w := newTestWorld(t)
	require.NoError(t, w.SetMapSize(1080, 2000))
	require.True(t, w.SpawnBoss(0))

	b, _ := w.Boss()
	assert.Equal(t, float32(1080-50), b.X)
}

func TestBossDamageSummedOncePerTick(t *testing.T) {
	w := newTestWorld(t, params.NewWeaponSlot(weaponWhip), params.NewWeaponSlot(weaponChain))
	require.True(t, w.SpawnBoss(0))
	w.DrainEvents()

	evs := advance(t, w, 1)
	dmg := ofType[events.SpecialEntityDamaged](evs)
	require.Len(t, dmg, 1)
	assert.Equal(t, float32(20+15), dmg[0].Damage)

	b, ok := w.Boss()
	require.True(t, ok)
	assert.Equal(t, float32(100-35), b.HP)
}

func TestBossDefeated(t *testing.T) {
	w := newTestWorld(t, params.NewWeaponSlot(weaponWhip), params.NewWeaponSlot(weaponChain))
	require.True(t, w.SpawnBoss(0))
	require.NoError(t, w.SetBossHP(30))
	w.DrainEvents()

	evs := advance(t, w, 1)
	require.Len(t, ofType[events.SpecialEntityDamaged](evs), 1)
	defeated := ofType[events.SpecialEntityDefeated](evs)
	require.Len(t, defeated, 1)
	assert.Equal(t, float32(1100), defeated[0].X)

	_, ok := w.Boss()
	assert.False(t, ok)
	assert.Empty(t, advance(t, w, 5), "a defeated boss emits nothing more")
}

func TestInvincibleBossTakesNoDamage(t *testing.T) {
	w := newTestWorld(t, params.NewWeaponSlot(weaponWhip))
	require.True(t, w.SpawnBoss(0))
	w.SetBossInvincible(true)
	w.DrainEvents()

	assert.Empty(t, ofType[events.SpecialEntityDamaged](advance(t, w, 1)))
	b, _ := w.Boss()
	assert.Equal(t, float32(100), b.HP)
}

func TestBulletsAgainstBoss(t *testing.T) {
	cfg := testConfig()
	cfg.Spawn.BossOffsetX = 0
	w := New(cfg)
	w.SetEntityParams(testTables())
	require.NoError(t, w.SetWeaponSlots([]params.WeaponSlot{
		params.NewWeaponSlot(weaponAxe),
		params.NewWeaponSlot(weaponFireball),
	}))
	// Something for the fireball to aim at, straight up past the boss.
	w.SpawnEnemiesAt(kindTank, []core.Vec2{{X: 1000, Y: 700}})
	require.True(t, w.SpawnBoss(0))
	require.NoError(t, w.SetBossHP(30))
	w.DrainEvents()

	evs := advance(t, w, 1)
	dmg := ofType[events.SpecialEntityDamaged](evs)
	require.Len(t, dmg, 1)
	assert.Equal(t, float32(25+20), dmg[0].Damage)
	assert.Len(t, ofType[events.SpecialEntityDefeated](evs), 1)
	assert.Equal(t, 1, w.BulletCount(), "the axe is consumed, the fireball pierces")
}

func TestBossVelocityClamped(t *testing.T) {
	w := newTestWorld(t)
	require.True(t, w.SpawnBoss(0))
	require.NoError(t, w.SetBossVelocity(10000, 0))

	advance(t, w, 10)
	b, _ := w.Boss()
	assert.Equal(t, float32(2000-50), b.X)
}

func TestBossRocksHitOnlyThePlayer(t *testing.T) {
	w := newTestWorld(t)
	assert.False(t, w.FireBossProjectile(-1, 0, 400, 7, 2), "no boss")

	require.True(t, w.SpawnBoss(0))
	w.SpawnEnemiesAt(kindTank, []core.Vec2{{X: 1070, Y: 1000}})
	require.True(t, w.FireBossProjectile(-1, 0, 400, 7, 2))
	w.DrainEvents()

	evs := advance(t, w, 20)
	hits := ofType[events.PlayerDamaged](evs)
	require.Len(t, hits, 1)
	assert.Equal(t, float32(7), hits[0].Damage)
	assert.Empty(t, ofType[events.SpecialEntityDamaged](evs))
	assert.Empty(t, ofType[events.EnemyKilled](evs))
	assert.Zero(t, w.BulletCount())

	b, _ := w.Boss()
	assert.Equal(t, float32(100), b.HP)
}
