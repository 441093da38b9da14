package repo

import (
	"context"
	"fmt"

	"github.com/hamed0406/sitewatch/internal/domain"
)

// RecordStore persists the full site-name → record mapping. A check cycle
// calls Load once at the start and Save once at the end.
type RecordStore interface {
	// Load returns an empty mapping when no state exists yet. Unreadable or
	// malformed state comes back as an empty mapping plus *CorruptionError,
	// which callers treat as a warning.
	Load(ctx context.Context) (domain.Records, error)
	// Save replaces the persisted mapping with recs.
	Save(ctx context.Context, recs domain.Records) error
}

// CorruptionError reports persisted state that could not be read back.
type CorruptionError struct {
	Source string
	Err    error
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("corrupt state in %s: %v", e.Source, e.Err)
}

func (e *CorruptionError) Unwrap() error { return e.Err }
