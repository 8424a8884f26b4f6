package testsupport

import (
	"context"
	"testing"

	"meridian/internal/config"
	"meridian/internal/ledger"
)

// MustOpenStore opens a ledger.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *ledger.Store {
	t.Helper()

	store, err := ledger.Open(cfg.Paths.WorkDir)
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewRun records a fresh run for tests using the provided store.
func NewRun(t testing.TB, store *ledger.Store, runID, title, sourceDir string) *ledger.Run {
	t.Helper()

	run, err := store.NewRun(context.Background(), runID, title, sourceDir)
	if err != nil {
		t.Fatalf("store.NewRun: %v", err)
	}
	return run
}
