package savefile

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/horde/internal/params"
	"github.com/vovakirdan/horde/internal/sim"
)

func sampleSnapshot() sim.SaveSnapshot {
	return sim.SaveSnapshot{
		PlayerHP:       70,
		PlayerX:        512,
		PlayerY:        640,
		PlayerMaxHP:    120,
		ElapsedSeconds: 95.5,
		WeaponSlots: []params.WeaponSlot{
			{KindID: 0, Level: 4},
			{KindID: 3, Level: 2},
		},
	}
}

func TestWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saves", "run"+Ext)
	snap := sampleSnapshot()
	h := NewHeader("arena", snap)

	require.NoError(t, Write(path, h, snap))
	gotH, gotSnap, err := Read(path)
	require.NoError(t, err)

	assert.Equal(t, h.SaveID, gotH.SaveID)
	assert.Equal(t, "arena", gotH.Scenario)
	assert.Equal(t, float32(95.5), gotH.Elapsed)
	assert.Equal(t, snap, gotSnap)
}

func TestHeaderLineIsPlainJSON(t *testing.T) {
	var buf bytes.Buffer
	snap := sampleSnapshot()
	require.NoError(t, Encode(&buf, NewHeader("swarm", snap), snap))

	dec, err := zstd.NewReader(nil)
	require.NoError(t, err)
	defer dec.Close()
	raw, err := dec.DecodeAll(buf.Bytes(), nil)
	require.NoError(t, err)

	line, _, ok := bytes.Cut(raw, []byte("\n"))
	require.True(t, ok, "header line must be newline terminated")
	var h Header
	require.NoError(t, json.Unmarshal(line, &h))
	assert.Equal(t, Version, h.Version)
	assert.Equal(t, "swarm", h.Scenario)
}

func TestDecodeRejectsBadHeader(t *testing.T) {
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = enc.Write([]byte("not json\n"))
	require.NoError(t, err)
	require.NoError(t, enc.Close())

	_, _, err = Decode(&buf)
	assert.True(t, errors.Is(err, ErrBadHeader), "got %v", err)
}

func TestDecodeRejectsFutureVersion(t *testing.T) {
	var buf bytes.Buffer
	snap := sampleSnapshot()
	h := NewHeader("swarm", snap)
	h.Version = Version + 1
	require.NoError(t, Encode(&buf, h, snap))

	_, _, err := Decode(&buf)
	assert.ErrorIs(t, err, ErrBadHeader)
}

func TestReadMissingFile(t *testing.T) {
	_, _, err := Read(filepath.Join(t.TempDir(), "missing"+Ext))
	assert.Error(t, err)
}
