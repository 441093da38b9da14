// Package sqlite stores site records in a single-file SQLite database using
// the pure-Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/hamed0406/sitewatch/internal/domain"
	"github.com/hamed0406/sitewatch/internal/repo"
)

var _ repo.RecordStore = (*Store)(nil)

type Store struct {
	db  *sql.DB
	log *zap.Logger
}

// New opens (creating if needed) the database file and applies the schema.
func New(ctx context.Context, path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer; avoids SQLITE_BUSY between the pool's connections
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := &Store{db: db, log: log}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS site_records (
	name       TEXT PRIMARY KEY,
	record     TEXT NOT NULL,
	updated_at TEXT NOT NULL
);`)
	return err
}

func (s *Store) Load(ctx context.Context) (domain.Records, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, record FROM site_records ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	defer rows.Close()

	out := make(domain.Records)
	for rows.Next() {
		var name, raw string
		if err := rows.Scan(&name, &raw); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		var rec domain.SiteRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			s.log.Warn("record_decode_skipped",
				zap.String("site", name),
				zap.Error(&repo.CorruptionError{Source: "site_records", Err: err}),
			)
			continue
		}
		out[name] = rec
	}
	return out, rows.Err()
}

func (s *Store) Save(ctx context.Context, recs domain.Records) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM site_records`); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	for name, rec := range recs {
		b, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO site_records (name, record, updated_at) VALUES (?, ?, ?)`,
			name, string(b), now,
		); err != nil {
			return fmt.Errorf("insert record %s: %w", name, err)
		}
	}
	return tx.Commit()
}
