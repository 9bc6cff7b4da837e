// Package record keeps optional history of played games: a compressed
// per-turn decision log and a SQLite index with one row per match.
package record

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/genniabot/gbot-core/model"
)

// TurnEntry is one decision cycle.
type TurnEntry struct {
	Time     time.Time   `json:"time"`
	Room     string      `json:"room"`
	Turn     int         `json:"turn"`
	Fired    []string    `json:"fired"`
	Move     *model.Item `json:"move,omitempty"`
	Half     bool        `json:"half,omitempty"`
	QueueLen int         `json:"queue_len"`
	Army     int         `json:"army"`
	Land     int         `json:"land"`
}

// TurnLog appends TurnEntry rows as zstd-compressed JSON lines. Each room
// gets one file per UTC hour of the entry time:
// turns-<room>-<yyyy-mm-dd-hh>.jsonl.zst. Only one file is open at a time.
type TurnLog struct {
	dir string

	mu  sync.Mutex
	seg *segment
}

// segment is the open output file.
type segment struct {
	name string
	f    *os.File
	zw   *zstd.Encoder
	buf  *bufio.Writer
	enc  *json.Encoder
}

func NewTurnLog(dir string) *TurnLog {
	return &TurnLog{dir: dir}
}

// Write appends e, switching files when its room or hour differs from the
// previous entry. A zero Time is stamped with the current time.
func (l *TurnLog) Write(e TurnEntry) error {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	e.Time = e.Time.UTC()
	name := segmentName(e.Room, e.Time)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.seg == nil || l.seg.name != name {
		if err := l.closeSegment(); err != nil {
			return err
		}
		seg, err := openSegment(l.dir, name)
		if err != nil {
			return fmt.Errorf("open turn log %s: %w", name, err)
		}
		l.seg = seg
	}
	if err := l.seg.enc.Encode(e); err != nil {
		return err
	}
	return l.seg.buf.Flush()
}

func (l *TurnLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closeSegment()
}

func (l *TurnLog) closeSegment() error {
	if l.seg == nil {
		return nil
	}
	err := l.seg.close()
	l.seg = nil
	return err
}

// openSegment appends to an existing file as a new zstd frame.
func openSegment(dir, name string) (*segment, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	buf := bufio.NewWriterSize(zw, 32*1024)
	return &segment{name: name, f: f, zw: zw, buf: buf, enc: json.NewEncoder(buf)}, nil
}

func (s *segment) close() error {
	err := s.buf.Flush()
	if cerr := s.zw.Close(); err == nil {
		err = cerr
	}
	if cerr := s.f.Close(); err == nil {
		err = cerr
	}
	return err
}

func segmentName(room string, t time.Time) string {
	return fmt.Sprintf("turns-%s-%s.jsonl.zst", fileSafe(room), t.Format("2006-01-02-15"))
}

// fileSafe keeps letters, digits, '-' and '_' and maps the rest to '_'.
func fileSafe(s string) string {
	if s == "" {
		return "noroom"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}
