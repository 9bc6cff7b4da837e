package record

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/genniabot/gbot-core/model"
)

// Outcomes stored in the matches table.
const (
	OutcomeWon      = "won"
	OutcomeCaptured = "captured"
	OutcomeLost     = "lost"
)

// Index is a SQLite table of played matches.
type Index struct {
	db *sql.DB
}

func OpenIndex(path string) (*Index, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Index{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS matches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		room TEXT NOT NULL,
		color INTEGER NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		turns INTEGER,
		outcome TEXT,
		winner TEXT
	);`)
	return err
}

func (x *Index) Close() error { return x.db.Close() }

// StartMatch records a new game and returns its id.
func (x *Index) StartMatch(ctx context.Context, room string, color model.Color, width, height int) (int64, error) {
	res, err := x.db.ExecContext(ctx,
		`INSERT INTO matches (room, color, width, height, started_at) VALUES (?, ?, ?, ?, ?)`,
		room, int(color), width, height, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("insert match: %w", err)
	}
	return res.LastInsertId()
}

// FinishMatch closes out a game. Finishing an already finished match keeps
// the first result.
func (x *Index) FinishMatch(ctx context.Context, id int64, turns int, outcome, winner string) error {
	_, err := x.db.ExecContext(ctx,
		`UPDATE matches SET finished_at = ?, turns = ?, outcome = ?, winner = ? WHERE id = ? AND finished_at IS NULL`,
		time.Now().UTC().Format(time.RFC3339), turns, outcome, winner, id)
	if err != nil {
		return fmt.Errorf("finish match %d: %w", id, err)
	}
	return nil
}

// Match is one row of the index.
type Match struct {
	ID      int64
	Room    string
	Color   model.Color
	Width   int
	Height  int
	Turns   int
	Outcome string
	Winner  string
}

// Matches lists recorded games, newest first.
func (x *Index) Matches(ctx context.Context, limit int) ([]Match, error) {
	rows, err := x.db.QueryContext(ctx,
		`SELECT id, room, color, width, height, COALESCE(turns, 0), COALESCE(outcome, ''), COALESCE(winner, '')
		 FROM matches ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Match
	for rows.Next() {
		var m Match
		var color int
		if err := rows.Scan(&m.ID, &m.Room, &color, &m.Width, &m.Height, &m.Turns, &m.Outcome, &m.Winner); err != nil {
			return nil, err
		}
		m.Color = model.Color(color)
		out = append(out, m)
	}
	return out, rows.Err()
}
