package sim

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/horde/internal/core"
	"github.com/vovakirdan/horde/internal/entity"
	"github.com/vovakirdan/horde/internal/params"
	"github.com/vovakirdan/horde/internal/spatial"
)

func TestInterpolationAlpha(t *testing.T) {
	d := InterpolationData{
		PrevPlayerX: 0, PrevPlayerY: 10,
		CurrPlayerX: 100, CurrPlayerY: 10,
		PrevTickMs: 1000, CurrTickMs: 1016,
	}
	tests := []struct {
		now  uint64
		want float32
	}{
		{900, 0},
		{1000, 0},
		{1004, 0.25},
		{1008, 0.5},
		{1016, 1},
		{5000, 1},
	}
	for _, tt := range tests {
		if got := d.Alpha(tt.now); got != tt.want {
			t.Errorf("Alpha(%d) = %v, expected %v", tt.now, got, tt.want)
		}
	}

	x, y := d.PlayerAt(0.25)
	if x != 25 || y != 10 {
		t.Errorf("PlayerAt(0.25) = (%v, %v), expected (25, 10)", x, y)
	}

	same := InterpolationData{PrevTickMs: 7, CurrTickMs: 7}
	if got := same.Alpha(0); got != 1 {
		t.Errorf("Alpha with equal timestamps = %v, expected 1", got)
	}
}

func TestPresentationContents(t *testing.T) {
	w := newTestWorld(t, params.WeaponSlot{KindID: weaponWand, Level: 2})
	require.NoError(t, w.SetObstacles([]spatial.Obstacle{{X: 100, Y: 100, Radius: 40}}))
	w.SpawnEnemiesAt(kindTank, []core.Vec2{{X: 1400, Y: 1000}})
	w.SpawnItem(1800, 1800, entity.ItemMagnet, 0)
	require.True(t, w.SpawnBoss(0))
	w.SetHUD(HUD{Score: 77, Kills: 3, Level: 2, Exp: 5, ExpToNext: 20})

	advance(t, w, 1)
	f := w.Presentation()

	assert.Equal(t, uint64(1), f.FrameID)
	assert.Equal(t, float32(2000), f.MapW)
	assert.Equal(t, float32(32), f.PlayerRadius)
	require.NotNil(t, f.Boss)
	assert.Equal(t, uint8(20), f.Boss.RenderKind)
	require.Len(t, f.Enemies, 1)
	assert.Equal(t, uint8(3), f.Enemies[0].Kind)
	assert.Len(t, f.Bullets, 1)
	assert.Len(t, f.Items, 1)
	assert.Equal(t, uint8(entity.ItemMagnet), f.Items[0].Kind)
	assert.Len(t, f.Obstacles, 1)

	hud := f.HUD
	assert.Equal(t, uint32(77), hud.Score)
	assert.Equal(t, uint32(3), hud.Kills)
	assert.Equal(t, float32(100), hud.MaxHP)
	assert.Equal(t, 1, hud.EnemyCount)
	assert.Equal(t, []WeaponLevel{{KindID: weaponWand, Name: "wand", Level: 2}}, hud.Weapons)
	assert.Zero(t, hud.ScreenFlashAlpha)

	for _, p := range f.Particles {
		assert.LessOrEqual(t, p.Color[3], float32(1))
	}

	_, err := json.Marshal(f)
	require.NoError(t, err)
}

func TestPresentationIsACopy(t *testing.T) {
	w := newTestWorld(t)
	w.SpawnEnemiesAt(kindTank, []core.Vec2{{X: 1400, Y: 1000}})
	f := w.Presentation()
	f.Enemies[0].X = -5

	assert.Equal(t, float32(1400), w.Presentation().Enemies[0].X)
}

func TestScreenFlashAfterHit(t *testing.T) {
	w := newTestWorld(t)
	w.SpawnEnemiesAt(kindSlime, []core.Vec2{{X: 1010, Y: 1000}})
	advance(t, w, 1)

	assert.InDelta(t, 0.5, w.Presentation().HUD.ScreenFlashAlpha, 1e-6)
}

func TestUpgradeDescriptions(t *testing.T) {
	w := newTestWorld(t, params.NewWeaponSlot(weaponWand))
	w.SetHUD(HUD{LevelUpPending: true, Choices: []string{"weapon_0", "weapon_2", "max_hp", "weapon_99"}})

	descs := w.Presentation().HUD.UpgradeDescs
	require.Len(t, descs, 4)
	assert.Equal(t, "DMG: 10 -> 12", descs[0][0])
	assert.Equal(t, "DMG: 20 -> 20", descs[1][0], "unowned weapon starts at level 1")
	assert.Equal(t, []string{params.UpgradeFallback}, descs[2])
	assert.Equal(t, []string{params.UpgradeFallback}, descs[3])

	w.SetHUD(HUD{Choices: []string{"weapon_0"}, UpgradeDescs: [][]string{{"custom"}}})
	assert.Equal(t, [][]string{{"custom"}}, w.Presentation().HUD.UpgradeDescs)
}

func TestDiagnosticsAndDump(t *testing.T) {
	w := newTestWorld(t)
	w.SpawnEnemies(kindTank, 5)
	advance(t, w, 2)

	d := w.Diagnostics()
	assert.Equal(t, uint64(2), d.FrameID)
	assert.Equal(t, 5, d.EnemyCount)
	assert.True(t, d.ParamsReady)
	assert.False(t, d.Poisoned)
	assert.Equal(t, uint64(2), d.Perf.Ticks)

	dump := w.DebugDump()
	assert.True(t, strings.HasPrefix(dump, "frame=2 "), dump)
	assert.Contains(t, dump, "enemies=5/5")
	assert.Contains(t, dump, "boss=none")
}
