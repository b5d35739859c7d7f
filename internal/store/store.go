// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/typist/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for scores and story progress.
type Store struct {
	db *sql.DB
}

// ScoreFilter narrows ListScores.
type ScoreFilter struct {
	// Mode matches exactly; empty matches all modes.
	Mode string
	// Prefix matches the start of the mode, e.g. "Story: ".
	Prefix string
	Since  *time.Time
	// Last keeps only the most recent records when positive.
	Last int
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Web handlers write concurrently; SQLite takes one writer at a time.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY,
			recorded_at TEXT NOT NULL,
			mode TEXT NOT NULL,
			net_wpm REAL NOT NULL,
			accuracy_pct REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS story_progress (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			current_node TEXT NOT NULL,
			pending_choices TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS story_history (
			seq INTEGER PRIMARY KEY,
			node TEXT NOT NULL,
			result TEXT NOT NULL,
			avg_net REAL NOT NULL,
			avg_acc REAL NOT NULL,
			choice TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_scores_recorded_at ON scores(recorded_at);`,
		`CREATE INDEX IF NOT EXISTS idx_scores_mode ON scores(mode);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// AppendScore stores one completed activity.
func (s *Store) AppendScore(ctx context.Context, rec model.ScoreRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scores (recorded_at, mode, net_wpm, accuracy_pct) VALUES (?, ?, ?, ?)`,
		rec.Timestamp.UTC().Format(time.RFC3339Nano),
		rec.Mode,
		rec.NetWPM,
		rec.AccuracyPct,
	)
	return err
}

// ListScores returns matching records, oldest first.
func (s *Store) ListScores(ctx context.Context, filter ScoreFilter) ([]model.ScoreRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Mode != "" {
		clauses = append(clauses, "mode = ?")
		args = append(args, filter.Mode)
	}
	if filter.Prefix != "" {
		clauses = append(clauses, "substr(mode, 1, ?) = ?")
		args = append(args, len(filter.Prefix), filter.Prefix)
	}
	if filter.Since != nil {
		clauses = append(clauses, "recorded_at >= ?")
		args = append(args, filter.Since.UTC().Format(time.RFC3339Nano))
	}
	limit := -1
	if filter.Last > 0 {
		limit = filter.Last
	}
	args = append(args, limit)
	query := fmt.Sprintf(`SELECT recorded_at, mode, net_wpm, accuracy_pct FROM (
			SELECT id, recorded_at, mode, net_wpm, accuracy_pct
			FROM scores
			WHERE %s
			ORDER BY id DESC
			LIMIT ?
		) ORDER BY id ASC`, strings.Join(clauses, " AND "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []model.ScoreRecord
	for rows.Next() {
		var rec model.ScoreRecord
		var recordedAt string
		if err := rows.Scan(&recordedAt, &rec.Mode, &rec.NetWPM, &rec.AccuracyPct); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, recordedAt)
		if err != nil {
			return nil, err
		}
		rec.Timestamp = parsed
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// LoadProgress reads story progress. ok is false when nothing is saved.
func (s *Store) LoadProgress(ctx context.Context) (p model.StoryProgress, ok bool, err error) {
	var pending string
	err = s.db.QueryRowContext(ctx,
		`SELECT current_node, pending_choices FROM story_progress WHERE id = 1`,
	).Scan(&p.CurrentNode, &pending)
	if errors.Is(err, sql.ErrNoRows) {
		return model.StoryProgress{}, false, nil
	}
	if err != nil {
		return model.StoryProgress{}, false, err
	}
	if pending != "" {
		if err := json.Unmarshal([]byte(pending), &p.PendingChoices); err != nil {
			return model.StoryProgress{}, false, fmt.Errorf("decode pending choices: %w", err)
		}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT node, result, avg_net, avg_acc, choice FROM story_history ORDER BY seq ASC`)
	if err != nil {
		return model.StoryProgress{}, false, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	p.History = []model.HistoryEntry{}
	for rows.Next() {
		var h model.HistoryEntry
		if err := rows.Scan(&h.Node, &h.Result, &h.AvgNet, &h.AvgAcc, &h.Choice); err != nil {
			return model.StoryProgress{}, false, err
		}
		p.History = append(p.History, h)
	}
	if err := rows.Err(); err != nil {
		return model.StoryProgress{}, false, err
	}
	return p, true, nil
}

// SaveProgress replaces the saved story progress.
func (s *Store) SaveProgress(ctx context.Context, p model.StoryProgress) (err error) {
	pending := []byte("[]")
	if len(p.PendingChoices) > 0 {
		pending, err = json.Marshal(p.PendingChoices)
		if err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO story_progress (id, current_node, pending_choices) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET current_node = excluded.current_node, pending_choices = excluded.pending_choices`,
		p.CurrentNode, string(pending),
	); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM story_history`); err != nil {
		return err
	}

	if len(p.History) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO story_history (seq, node, result, avg_net, avg_acc, choice) VALUES (?, ?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for i, h := range p.History {
			if _, err = stmt.ExecContext(ctx, i+1, h.Node, h.Result, h.AvgNet, h.AvgAcc, h.Choice); err != nil {
				return err
			}
		}
	}

	err = tx.Commit()
	return err
}

// ResetProgress deletes saved story progress.
func (s *Store) ResetProgress(ctx context.Context) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM story_progress`); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM story_history`); err != nil {
		return err
	}
	err = tx.Commit()
	return err
}
