package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/sitewatch/internal/domain"
)

func TestPostgresStore_SaveLoadReplace(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping Postgres integration test")
	}

	ctx := context.Background()
	store, err := New(ctx, dsn, zap.NewNop())
	if err != nil {
		t.Fatalf("New store: %v", err)
	}
	defer store.Close()

	// Unique names per run so leftovers from earlier runs are visible as replaced.
	name := fmt.Sprintf("site-%d", time.Now().UTC().UnixNano())
	code := 200
	recs := domain.Records{
		name: {
			Online:           true,
			StatusCode:       &code,
			SSLDaysRemaining: domain.SSLDays(12),
			LastCheck:        domain.NewTimestamp(time.Now()),
			TotalChecks:      2,
			SuccessfulChecks: 2,
			Uptime:           100,
		},
	}
	if err := store.Save(ctx, recs); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("save must replace the whole mapping, got %d rows", len(got))
	}
	want, _ := json.Marshal(recs)
	have, _ := json.Marshal(got)
	if string(want) != string(have) {
		t.Fatalf("round-trip mismatch:\nwant=%s\ngot =%s", want, have)
	}
}
