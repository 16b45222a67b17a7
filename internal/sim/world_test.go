package sim

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/horde/internal/config"
	"github.com/vovakirdan/horde/internal/core"
	"github.com/vovakirdan/horde/internal/entity"
	"github.com/vovakirdan/horde/internal/events"
	"github.com/vovakirdan/horde/internal/params"
	"github.com/vovakirdan/horde/internal/spatial"
)

const tickMs = 16.0

// Enemy kinds in testTables.
const (
	kindSlime uint8 = iota
	kindPaper       // dies to any hit, never moves
	kindTank        // never dies, never moves
)

// Weapon kinds in testTables.
const (
	weaponWand uint8 = iota
	weaponFireball
	weaponWhip
	weaponChain
	weaponAura
	weaponAxe
	weaponCross
)

func testTables() params.Tables {
	return params.Tables{
		Enemies: []params.EnemyParams{
			{Name: "slime", MaxHP: 30, Speed: 80, Radius: 20, DamagePerSec: 20, RenderKind: 1},
			{Name: "paper", MaxHP: 5, Speed: 0, Radius: 20, DamagePerSec: 0, RenderKind: 7},
			{Name: "tank", MaxHP: 1e6, Speed: 0, Radius: 20, DamagePerSec: 0, RenderKind: 3},
		},
		Weapons: []params.WeaponParams{
			{Name: "wand", Cooldown: 1, Damage: 10, Pattern: params.PatternAimed},
			{Name: "fireball", Cooldown: 1.5, Damage: 20, Pattern: params.PatternPiercing},
			{Name: "whip", Cooldown: 1, Damage: 20, Pattern: params.PatternWhip, Range: 120},
			{Name: "chain", Cooldown: 1, Damage: 15, Pattern: params.PatternChain, ChainCount: 2},
			{Name: "aura", Cooldown: 0.2, Damage: 1, Pattern: params.PatternAura, Range: 80},
			{Name: "axe", Cooldown: 1.5, Damage: 25, Pattern: params.PatternFixedUp},
			{Name: "cross", Cooldown: 2, Damage: 15, Pattern: params.PatternRadial},
		},
		Bosses: []params.BossParams{
			{Name: "king", MaxHP: 100, Speed: 60, Radius: 50, DamagePerSec: 30, RenderKind: 20, SpecialInterval: 5},
		},
	}
}

func testConfig() config.SimConfig {
	cfg := config.DefaultSimConfig()
	cfg.Map.Width, cfg.Map.Height = 2000, 2000
	cfg.Spawn.BossOffsetX = 100
	cfg.FrameBudgetMs = 0
	return cfg
}

// newTestWorld returns a world with testTables loaded and the given
// loadout. The player sits at (1000, 1000).
func newTestWorld(t *testing.T, slots ...params.WeaponSlot) *World {
	t.Helper()
	w := New(testConfig())
	w.SetEntityParams(testTables())
	require.NoError(t, w.SetWeaponSlots(slots))
	return w
}

func advance(t *testing.T, w *World, ticks int) []events.Event {
	t.Helper()
	var out []events.Event
	for range ticks {
		_, err := w.Advance(core.InputFrame{}, tickMs)
		require.NoError(t, err)
		out = append(out, w.DrainEvents()...)
	}
	return out
}

func ofType[T events.Event](evs []events.Event) []T {
	var out []T
	for _, e := range evs {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func TestNewWorldDefaults(t *testing.T) {
	w := New(testConfig())

	x, y := w.PlayerPos()
	assert.Equal(t, float32(1000), x)
	assert.Equal(t, float32(1000), y)
	assert.Equal(t, float32(100), w.PlayerHP())
	assert.False(t, w.ParamsReady())
	assert.Equal(t, []params.WeaponSlot{{KindID: 0, Level: 1}}, w.WeaponSlots())
}

func TestAdvanceWithoutParams(t *testing.T) {
	w := New(testConfig())
	res, err := w.Advance(core.InputFrame{DX: 1}, tickMs)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), res.FrameID)
	assert.False(t, res.ParamsReady)
	assert.InDelta(t, 1000+200*0.016, res.PlayerX, 1e-3)
	assert.Empty(t, w.DrainEvents())
}

func TestPlayerMovementNormalizedAndClamped(t *testing.T) {
	w := newTestWorld(t)
	_, err := w.Advance(core.InputFrame{DX: 1, DY: 1}, 1000)
	require.NoError(t, err)

	x, y := w.PlayerPos()
	step := float32(200 / math.Sqrt2)
	assert.InDelta(t, 1000+step, x, 0.01)
	assert.InDelta(t, 1000+step, y, 0.01)

	for range 20 {
		_, err = w.Advance(core.InputFrame{DX: -1}, 1000)
		require.NoError(t, err)
	}
	x, _ = w.PlayerPos()
	assert.Equal(t, float32(32), x, "player stops at its radius from the edge")
}

func TestPlayerPushedOutOfObstacle(t *testing.T) {
	w := newTestWorld(t)
	require.NoError(t, w.SetObstacles([]spatial.Obstacle{{X: 1100, Y: 1010, Radius: 50}}))

	_, err := w.Advance(core.InputFrame{DX: 1}, 500)
	require.NoError(t, err)

	x, y := w.PlayerPos()
	d := core.Sqrt32((x-1100)*(x-1100) + (y-1010)*(y-1010))
	assert.GreaterOrEqual(t, d, float32(82-0.1))
}

func TestChaseMovesEnemiesTowardPlayer(t *testing.T) {
	w := newTestWorld(t)
	require.Equal(t, 1, w.SpawnEnemiesAt(kindSlime, []core.Vec2{{X: 1300, Y: 1000}}))

	_, err := w.Advance(core.InputFrame{}, 100)
	require.NoError(t, err)

	f := w.Presentation()
	require.Len(t, f.Enemies, 1)
	assert.InDelta(t, 1300-8, f.Enemies[0].X, 0.5)
	assert.InDelta(t, 1000, f.Enemies[0].Y, 0.01)
	assert.Equal(t, uint8(1), f.Enemies[0].Kind, "sprites carry the render kind")
}

func TestSpawnUnknownKind(t *testing.T) {
	w := newTestWorld(t)
	assert.Zero(t, w.SpawnEnemies(99, 10))
	assert.Zero(t, w.SpawnEnemiesAt(99, []core.Vec2{{X: 1, Y: 1}}))
	assert.Zero(t, w.EnemyCount())
}

func TestSpawnEnemiesOnRing(t *testing.T) {
	w := newTestWorld(t)
	require.Equal(t, 20, w.SpawnEnemies(kindTank, 20))

	for _, s := range w.Presentation().Enemies {
		d := core.Sqrt32((s.X-1000)*(s.X-1000) + (s.Y-1000)*(s.Y-1000))
		assert.GreaterOrEqual(t, d, float32(800-0.5))
		assert.LessOrEqual(t, d, float32(1200+0.5))
	}
}

func TestContactDamageRespectsInvincibility(t *testing.T) {
	w := newTestWorld(t)
	w.SpawnEnemiesAt(kindSlime, []core.Vec2{{X: 1010, Y: 1000}})

	evs := advance(t, w, 1)
	hits := ofType[events.PlayerDamaged](evs)
	require.Len(t, hits, 1)
	assert.InDelta(t, 20*0.016, hits[0].Damage, 1e-4)
	assert.Equal(t, float32(100), w.PlayerHP(), "the core never applies damage itself")

	assert.Empty(t, ofType[events.PlayerDamaged](advance(t, w, 10)))
	assert.NotEmpty(t, ofType[events.PlayerDamaged](advance(t, w, 30)))
}

func TestDeadPlayerTakesNoDamage(t *testing.T) {
	w := newTestWorld(t)
	require.NoError(t, w.SetPlayerHP(0))
	w.SpawnEnemiesAt(kindSlime, []core.Vec2{{X: 1010, Y: 1000}})

	assert.Empty(t, ofType[events.PlayerDamaged](advance(t, w, 5)))
	assert.True(t, w.IsPlayerDead())
}

func TestItemPickups(t *testing.T) {
	w := newTestWorld(t)
	w.SpawnItem(1010, 1000, entity.ItemPotion, 25)
	w.SpawnItem(1500, 1000, entity.ItemGem, 3)

	pickups := ofType[events.ItemPickup](advance(t, w, 1))
	require.Len(t, pickups, 1)
	assert.Equal(t, events.ItemPickup{Kind: uint8(entity.ItemPotion), Value: 25}, pickups[0])
	assert.Equal(t, float32(100), w.PlayerHP(), "potions only request a heal")

	w.SpawnItem(1000, 1020, entity.ItemMagnet, 0)
	pickups = ofType[events.ItemPickup](advance(t, w, 1))
	require.Len(t, pickups, 1)
	assert.Equal(t, uint8(entity.ItemMagnet), pickups[0].Kind)
	assert.InDelta(t, 10, w.MagnetTimer(), 1e-4)

	pickups = ofType[events.ItemPickup](advance(t, w, 1))
	require.Len(t, pickups, 1, "the magnet collects the far gem")
	assert.Equal(t, events.ItemPickup{Kind: uint8(entity.ItemGem), Value: 3}, pickups[0])
}

func TestSetterValidation(t *testing.T) {
	w := newTestWorld(t)
	nan := float32(math.NaN())

	assert.ErrorIs(t, w.SetPlayerHP(nan), ErrInvalidValue)
	assert.ErrorIs(t, w.SetPlayerMaxHP(0), ErrInvalidValue)
	assert.ErrorIs(t, w.SetElapsedSeconds(-1), ErrInvalidValue)
	assert.ErrorIs(t, w.SetMapSize(0, 100), ErrInvalidMapSize)
	assert.ErrorIs(t, w.SetObstacles([]spatial.Obstacle{{X: 1, Y: 1, Radius: -1}}), ErrInvalidValue)
	assert.ErrorIs(t, w.SetBossVelocity(nan, 0), ErrInvalidValue)

	_, err := w.Advance(core.InputFrame{}, -5)
	assert.ErrorIs(t, err, ErrInvalidValue)
	assert.Zero(t, w.FrameID(), "rejected ticks do not run")

	tooMany := make([]params.WeaponSlot, params.MaxWeaponSlots+1)
	for i := range tooMany {
		tooMany[i] = params.NewWeaponSlot(uint8(i))
	}
	assert.ErrorIs(t, w.SetWeaponSlots(tooMany), ErrInvalidSlot)
	assert.ErrorIs(t, w.SetWeaponSlots([]params.WeaponSlot{{KindID: 0, Level: 0}}), ErrInvalidSlot)
	assert.ErrorIs(t, w.SetWeaponSlots([]params.WeaponSlot{{KindID: 0, Level: 9}}), ErrInvalidSlot)

	require.NoError(t, w.SetMapSize(500, 400))
	_, err = w.Advance(core.InputFrame{}, tickMs)
	require.NoError(t, err)
	x, y := w.PlayerPos()
	assert.Equal(t, float32(500-32), x)
	assert.Equal(t, float32(400-32), y)
}

func TestPoisonedTickRestoresState(t *testing.T) {
	w := newTestWorld(t)
	w.SpawnEnemiesAt(kindTank, []core.Vec2{{X: 1500, Y: 1500}, {X: 500, Y: 500}})
	advance(t, w, 3)
	require.NoError(t, w.SetPlayerHP(55))

	w.beforeStep = func() {
		w.st.frameID += 100
		w.st.enemies.Kill(0)
		w.st.player.X = -1
		panic("boom")
	}
	_, err := w.Advance(core.InputFrame{DX: 1}, tickMs)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPoisoned))
	assert.True(t, w.Poisoned())

	assert.Equal(t, uint64(3), w.FrameID())
	assert.Equal(t, 2, w.EnemyCount())
	assert.Equal(t, float32(55), w.PlayerHP(), "setter changes before the tick survive")
	x, _ := w.PlayerPos()
	assert.Equal(t, float32(1000), x)

	w.beforeStep = nil
	res, err := w.Advance(core.InputFrame{}, tickMs)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), res.FrameID)
}

func TestPoisonedTickRestoresRNG(t *testing.T) {
	clean := newTestWorld(t)
	poisoned := newTestWorld(t)
	advance(t, clean, 2)
	advance(t, poisoned, 2)

	poisoned.beforeStep = func() {
		for range 10 {
			poisoned.rng.Float64()
		}
		panic("boom")
	}
	_, err := poisoned.Advance(core.InputFrame{}, tickMs)
	require.ErrorIs(t, err, ErrPoisoned)
	poisoned.beforeStep = nil

	require.Equal(t, 3, clean.SpawnEnemies(kindTank, 3))
	require.Equal(t, 3, poisoned.SpawnEnemies(kindTank, 3))
	for i := range 3 {
		assert.Equal(t, clean.st.enemies.X[i], poisoned.st.enemies.X[i], "x[%d]", i)
		assert.Equal(t, clean.st.enemies.Y[i], poisoned.st.enemies.Y[i], "y[%d]", i)
	}
}

func TestLargeEnemyRadiusWidensContactQuery(t *testing.T) {
	tbl := testTables()
	tbl.Enemies = append(tbl.Enemies, params.EnemyParams{Name: "giant", MaxHP: 1e6, Radius: 100, DamagePerSec: 50})
	giant := uint8(len(tbl.Enemies) - 1)

	w := New(testConfig())
	w.SetEntityParams(tbl)
	require.NoError(t, w.SetWeaponSlots(nil))
	w.SpawnEnemiesAt(giant, []core.Vec2{{X: 1130, Y: 1000}})

	hits := ofType[events.PlayerDamaged](advance(t, w, 1))
	require.Len(t, hits, 1, "centers 130 apart overlap with radii 32 and 100")
}

func TestScorePopups(t *testing.T) {
	w := newTestWorld(t, params.NewWeaponSlot(weaponAura))
	w.SetScorePopups(true, 10)
	w.SpawnEnemiesAt(kindPaper, []core.Vec2{{X: 1040, Y: 1000}})

	killed := ofType[events.EnemyKilled](advance(t, w, 1))
	require.Len(t, killed, 0, "aura deals 1 damage per pulse")

	require.NoError(t, w.SetWeaponSlots([]params.WeaponSlot{params.NewWeaponSlot(weaponWhip)}))
	killed = ofType[events.EnemyKilled](advance(t, w, 1))
	require.Len(t, killed, 1)

	f := w.Presentation()
	require.Len(t, f.HUD.Popups, 1)
	assert.Equal(t, uint32(10), f.HUD.Popups[0].Value)

	advance(t, w, 60)
	assert.Empty(t, w.Presentation().HUD.Popups, "popups fade out")
}

func TestWithClockStampsTicks(t *testing.T) {
	now := time.UnixMilli(5000)
	w := New(testConfig(), WithClock(func() time.Time { return now }))

	_, err := w.Advance(core.InputFrame{DX: 1}, tickMs)
	require.NoError(t, err)
	now = now.Add(16 * time.Millisecond)
	_, err = w.Advance(core.InputFrame{DX: 1}, tickMs)
	require.NoError(t, err)

	d := w.Interpolation()
	assert.Equal(t, uint64(5000), d.PrevTickMs)
	assert.Equal(t, uint64(5016), d.CurrTickMs)
	assert.InDelta(t, 0.5, d.Alpha(5008), 1e-6)
	assert.Greater(t, d.CurrPlayerX, d.PrevPlayerX)
}
