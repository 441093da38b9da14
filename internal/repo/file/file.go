// Package file persists site records as a single indented JSON document,
// the status.json format the status page reads.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/hamed0406/sitewatch/internal/domain"
	"github.com/hamed0406/sitewatch/internal/repo"
)

type Store struct {
	path string
	log  *zap.Logger
}

func New(path string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{path: path, log: log}
}

func (s *Store) Path() string { return s.path }

func (s *Store) Load(ctx context.Context) (domain.Records, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Info("status_file_missing", zap.String("path", s.path))
		return make(domain.Records), nil
	}
	if err != nil {
		return make(domain.Records), &repo.CorruptionError{Source: s.path, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return make(domain.Records), nil
	}

	var recs domain.Records
	if err := json.Unmarshal(data, &recs); err != nil {
		return make(domain.Records), &repo.CorruptionError{Source: s.path, Err: err}
	}
	if recs == nil {
		recs = make(domain.Records)
	}
	return recs, nil
}

// Save writes to a temp file in the same directory and renames it over the
// target, so readers never observe a half-written document.
func (s *Store) Save(ctx context.Context, recs domain.Records) error {
	if recs == nil {
		recs = make(domain.Records)
	}
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "status-*.json.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("rename temp: %w", err)
	}
	committed = true
	return nil
}
