// Package savefile reads and writes portable save files: a zstd stream
// holding one JSON header line followed by a msgpack-encoded
// sim.SaveSnapshot.
package savefile

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/vovakirdan/horde/internal/sim"
)

// Version is the current file format version.
const Version = 1

// Ext is the conventional file extension.
const Ext = ".hsav"

// ErrBadHeader is returned when the header line is missing or malformed,
// or names a format version this package cannot read.
var ErrBadHeader = errors.New("savefile: bad header")

// Header is the human-inspectable first line of a save file.
type Header struct {
	Version  int       `json:"version"`
	SaveID   string    `json:"save_id"`
	Scenario string    `json:"scenario"`
	Elapsed  float32   `json:"elapsed_seconds"`
	SavedAt  time.Time `json:"saved_at"`
}

// NewHeader returns a header for a fresh save of scenario.
func NewHeader(scenario string, snap sim.SaveSnapshot) Header {
	return Header{
		Version:  Version,
		SaveID:   uuid.NewString(),
		Scenario: scenario,
		Elapsed:  snap.ElapsedSeconds,
		SavedAt:  time.Now().UTC(),
	}
}

// Encode writes h and snap to w.
func Encode(w io.Writer, h Header, snap sim.SaveSnapshot) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(enc)

	hb, err := json.Marshal(h)
	if err != nil {
		enc.Close()
		return fmt.Errorf("savefile: cannot encode header: %w", err)
	}
	if _, err := bw.Write(hb); err != nil {
		enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		enc.Close()
		return err
	}
	if err := msgpack.NewEncoder(bw).Encode(&snap); err != nil {
		enc.Close()
		return fmt.Errorf("savefile: cannot encode body: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// Decode reads a header and snapshot from r.
func Decode(r io.Reader) (Header, sim.SaveSnapshot, error) {
	var h Header
	var snap sim.SaveSnapshot

	dec, err := zstd.NewReader(r)
	if err != nil {
		return h, snap, err
	}
	defer dec.Close()
	br := bufio.NewReader(dec)

	line, err := br.ReadBytes('\n')
	if err != nil {
		return h, snap, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, snap, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}
	if h.Version != Version {
		return h, snap, fmt.Errorf("%w: version %d", ErrBadHeader, h.Version)
	}

	if err := msgpack.NewDecoder(br).Decode(&snap); err != nil {
		return h, snap, fmt.Errorf("savefile: cannot decode body: %w", err)
	}
	return h, snap, nil
}

// Write saves snap to path, creating parent directories.
func Write(path string, h Header, snap sim.SaveSnapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := Encode(f, h, snap); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Read loads a save file from path.
func Read(path string) (Header, sim.SaveSnapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, sim.SaveSnapshot{}, err
	}
	defer f.Close()
	return Decode(f)
}
