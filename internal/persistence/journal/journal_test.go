package journal

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/horde/internal/events"
)

func TestAppendAndReadBack(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	require.NoError(t, err)

	require.NoError(t, w.Append(1, []events.Event{
		events.EnemyKilled{Kind: 2, X: 10, Y: 20},
		events.PlayerDamaged{Damage: 0.5},
	}))
	require.NoError(t, w.Append(2, nil))
	require.NoError(t, w.Append(3, []events.Event{events.SpecialEntityDefeated{Kind: 1, X: 5, Y: 6}}))
	assert.Equal(t, uint64(3), w.Count())
	require.NoError(t, w.Close())

	entries, err := ReadAll(&buf)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, uint64(1), entries[0].Frame)
	assert.Equal(t, "enemy_killed", entries[0].Type)
	var k events.EnemyKilled
	require.NoError(t, json.Unmarshal(entries[0].Data, &k))
	assert.Equal(t, events.EnemyKilled{Kind: 2, X: 10, Y: 20}, k)

	assert.Equal(t, uint64(3), entries[2].Frame)
	assert.Equal(t, map[string]int{"enemy_killed": 1, "player_damaged": 1, "special_defeated": 1}, Summary(entries))
}

func TestAppendAfterClose(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close(), "second close is a no-op")

	assert.Error(t, w.Append(1, []events.Event{events.PlayerDamaged{Damage: 1}}))
}

func TestCreateFile(t *testing.T) {
	path := PathFor(filepath.Join(t.TempDir(), "journals"), "run-123")
	assert.Equal(t, "run-123.jsonl.zst", filepath.Base(path))

	w, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, w.Append(7, []events.Event{events.ItemPickup{Kind: 1, Value: 20}}))
	require.NoError(t, w.Close())

	entries, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "item_pickup", entries[0].Type)
	assert.JSONEq(t, `{"kind":1,"value":20}`, string(entries[0].Data))
}
