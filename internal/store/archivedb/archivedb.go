package archivedb

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "modernc.org/sqlite"

	"weft/internal/model"
)

// DB wraps the SQLite analysis artifact written once per run. It is an
// output file like the CSV reports; nothing is read back across runs.
type DB struct{ sql *sql.DB }

func Open(path string) (*DB, error) {
	d, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := d.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil {
		return nil, err
	}
	db := &DB{sql: d}
	if err := db.migrate(); err != nil {
		_ = d.Close()
		return nil, err
	}
	return db, nil
}

func (d *DB) Close() error { return d.sql.Close() }

func (d *DB) migrate() error {
	_, err := d.sql.Exec(`
	CREATE TABLE IF NOT EXISTS events (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  ts INTEGER NOT NULL,
	  kind TEXT NOT NULL,
	  participants TEXT,
	  meta TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_events_ts ON events(ts);
	CREATE TABLE IF NOT EXISTS threads (
	  id TEXT PRIMARY KEY,
	  root_ts INTEGER NOT NULL,
	  post_count INTEGER NOT NULL,
	  total_favorites INTEGER NOT NULL,
	  total_retweets INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS profiles (
	  user_id TEXT PRIMARY KEY,
	  first_ts INTEGER,
	  last_ts INTEGER,
	  total INTEGER NOT NULL,
	  counts TEXT
	);
	`)
	return err
}

// PutEvents stores the normalized timeline in one transaction.
func (d *DB) PutEvents(ctx context.Context, events []model.InteractionEvent) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO events(ts, kind, participants, meta) VALUES(?,?,?,?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, e := range events {
		pb, _ := json.Marshal(e.Participants)
		mb, _ := json.Marshal(e.Metadata)
		if _, err := stmt.ExecContext(ctx, e.Timestamp.Unix(), e.Kind, string(pb), string(mb)); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// PutThreads stores thread summaries keyed by root post id.
func (d *DB) PutThreads(ctx context.Context, threads []model.Thread) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO threads(id, root_ts, post_count, total_favorites, total_retweets) VALUES(?,?,?,?,?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, t := range threads {
		rootTS := model.PostTimeOrFallback(t.Root().CreatedAt).Unix()
		if _, err := stmt.ExecContext(ctx, t.ID, rootTS, t.PostCount, t.TotalFavorites, t.TotalRetweets); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// PutProfiles stores one row per user profile.
func (d *DB) PutProfiles(ctx context.Context, profiles map[string]model.UserProfile) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO profiles(user_id, first_ts, last_ts, total, counts) VALUES(?,?,?,?,?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, p := range profiles {
		cb, _ := json.Marshal(p.InteractionCounts)
		if _, err := stmt.ExecContext(ctx, p.UserID, optUnix(p.FirstInteraction), optUnix(p.LastInteraction), p.TotalInteractions, string(cb)); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// CountEventsWithin returns events of kind in [start, end); kind "" counts all.
func (d *DB) CountEventsWithin(ctx context.Context, start, end time.Time, kind string) (int, error) {
	var row *sql.Row
	if kind == "" {
		row = d.sql.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE ts>=? AND ts<?`, start.Unix(), end.Unix())
	} else {
		row = d.sql.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE ts>=? AND ts<? AND kind=?`, start.Unix(), end.Unix(), kind)
	}
	var n int
	err := row.Scan(&n)
	return n, err
}

// CountThreads returns the number of stored thread summaries.
func (d *DB) CountThreads(ctx context.Context) (int, error) {
	var n int
	err := d.sql.QueryRowContext(ctx, `SELECT COUNT(*) FROM threads`).Scan(&n)
	return n, err
}

func optUnix(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}
