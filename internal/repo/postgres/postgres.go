package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hamed0406/sitewatch/internal/domain"
	"github.com/hamed0406/sitewatch/internal/repo"
)

var _ repo.RecordStore = (*Store)(nil)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS site_records (
  name       TEXT PRIMARY KEY,
  record     JSONB NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{pool: pool, log: log}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Load skips rows whose record cannot be decoded; one bad row must not
// cost every other site its history.
func (s *Store) Load(ctx context.Context) (domain.Records, error) {
	rows, err := s.pool.Query(ctx, `SELECT name, record FROM site_records ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	defer rows.Close()

	out := make(domain.Records)
	for rows.Next() {
		var (
			name string
			raw  []byte
		)
		if err := rows.Scan(&name, &raw); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		var rec domain.SiteRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
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

// Save replaces the table contents inside one transaction.
func (s *Store) Save(ctx context.Context, recs domain.Records) error {
	now := time.Now().UTC()
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM site_records`); err != nil {
			return fmt.Errorf("clear records: %w", err)
		}
		for name, rec := range recs {
			b, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("marshal %s: %w", name, err)
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO site_records (name, record, updated_at)
				 VALUES ($1, $2, $3)`,
				name, string(b), now,
			); err != nil {
				return fmt.Errorf("insert record %s: %w", name, err)
			}
		}
		return nil
	})
}
