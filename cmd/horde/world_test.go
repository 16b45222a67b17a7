package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/horde/internal/core"
	"github.com/vovakirdan/horde/internal/persistence/savefile"
)

func TestBuildWorldKnownScenarios(t *testing.T) {
	for _, name := range []string{"swarm", "arena", "boss"} {
		w, dir, err := buildWorld(name, testRC(42), nil, nil)
		require.NoError(t, err, name)
		assert.Equal(t, name, dir.ID())
		assert.True(t, w.ParamsReady(), "%s: params not installed", name)
		assert.False(t, dir.Over())
	}
}

func TestBuildWorldUnknownScenario(t *testing.T) {
	_, _, err := buildWorld("nope", testRC(1), nil, nil)
	assert.ErrorContains(t, err, "unknown scenario")
}

func TestBuildWorldResumesSnapshot(t *testing.T) {
	w, _, err := buildWorld("swarm", testRC(7), nil, nil)
	require.NoError(t, err)
	require.NoError(t, w.SetPlayerHP(33))
	require.NoError(t, w.SetElapsedSeconds(90))
	snap := w.Save()

	resumed, dir, err := buildWorld("swarm", testRC(8), &snap, nil)
	require.NoError(t, err)
	assert.InDelta(t, 33, resumed.PlayerHP(), 1e-4)
	assert.InDelta(t, 90, resumed.ElapsedSeconds(), 1e-4)
	assert.InDelta(t, 33, dir.Tally().HP, 1e-4)
}

func TestLoadSnapshotFromFile(t *testing.T) {
	w, _, err := buildWorld("arena", testRC(3), nil, nil)
	require.NoError(t, err)
	snap := w.Save()

	path := filepath.Join(t.TempDir(), "arena"+savefile.Ext)
	require.NoError(t, savefile.Write(path, savefile.NewHeader("arena", snap), snap))

	name, got, err := loadSnapshot(loadRequest{file: path}, nil)
	require.NoError(t, err)
	assert.Equal(t, "arena", name)
	assert.Equal(t, snap.WeaponSlots, got.WeaponSlots)

	_, _, err = loadSnapshot(loadRequest{slot: "x"}, nil)
	assert.Error(t, err, "slot without a database")
}

func TestSlotNameAndExpandHome(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, "swarm-20250102-030405", slotName("swarm", ts))

	assert.Equal(t, "/abs/path", expandHome("/abs/path"))
	t.Setenv("HOME", "/home/tester")
	assert.Equal(t, filepath.Join("/home/tester", ".horde", "x.db"), expandHome("~/.horde/x.db"))
}

func testRC(seed int64) core.RuntimeConfig {
	rc := core.DefaultConfig()
	rc.Seed = seed
	return rc
}

func TestBuildWorldMapOverride(t *testing.T) {
	rc := testRC(5)
	rc.MapW, rc.MapH = 1200, 900
	w, _, err := buildWorld("swarm", rc, nil, nil)
	require.NoError(t, err)
	f := w.Presentation()
	assert.Equal(t, float32(1200), f.MapW)
	assert.Equal(t, float32(900), f.MapH)
}
