// Package journal records frame events as zstd-compressed JSON lines, one
// line per event, so a run can be audited or replayed offline.
package journal

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/vovakirdan/horde/internal/events"
)

// Ext is the conventional journal file extension.
const Ext = ".jsonl.zst"

// Entry is one journal line.
type Entry struct {
	Frame uint64          `json:"frame"`
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
}

// Writer appends entries to a compressed stream. It is safe for
// concurrent use.
type Writer struct {
	mu     sync.Mutex
	closer io.Closer // underlying file, nil when writing to a caller's stream
	enc    *zstd.Encoder
	w      *bufio.Writer
	n      uint64
}

// NewWriter compresses entries into w. Close flushes the stream but does
// not close w.
func NewWriter(w io.Writer) (*Writer, error) {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, err
	}
	return &Writer{enc: enc, w: bufio.NewWriterSize(enc, 128*1024)}, nil
}

// Create opens a new journal file at path, creating parent directories.
func Create(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	jw, err := NewWriter(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	jw.closer = f
	return jw, nil
}

// PathFor returns the journal path of a run inside dir.
func PathFor(dir, runID string) string {
	return filepath.Join(dir, runID+Ext)
}

// Append writes every event of one frame.
func (j *Writer) Append(frame uint64, evs []events.Event) error {
	if len(evs) == 0 {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.w == nil {
		return errors.New("journal: writer closed")
	}
	for _, e := range evs {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("journal: cannot encode %s: %w", e.Type(), err)
		}
		line, err := json.Marshal(Entry{Frame: frame, Type: e.Type(), Data: data})
		if err != nil {
			return fmt.Errorf("journal: cannot encode entry: %w", err)
		}
		if _, err := j.w.Write(line); err != nil {
			return err
		}
		if err := j.w.WriteByte('\n'); err != nil {
			return err
		}
		j.n++
	}
	return nil
}

// Count returns how many entries have been written.
func (j *Writer) Count() uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.n
}

// Close flushes buffered entries and finishes the compressed stream.
func (j *Writer) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.w == nil {
		return nil
	}
	err := j.w.Flush()
	if cerr := j.enc.Close(); err == nil {
		err = cerr
	}
	if j.closer != nil {
		if cerr := j.closer.Close(); err == nil {
			err = cerr
		}
	}
	j.w = nil
	return err
}

// ReadAll decodes every entry in a journal stream.
func ReadAll(r io.Reader) ([]Entry, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out []Entry
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return out, fmt.Errorf("journal: line %d: %w", len(out)+1, err)
		}
		out = append(out, e)
	}
	return out, sc.Err()
}

// ReadFile decodes every entry in the journal at path.
func ReadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadAll(f)
}

// Summary counts entries by event type.
func Summary(entries []Entry) map[string]int {
	out := make(map[string]int)
	for _, e := range entries {
		out[e.Type]++
	}
	return out
}
