package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWaitForMount_AlreadyMounted(t *testing.T) {
	if err := WaitForMount(context.Background(), t.TempDir(), 0); err != nil {
		t.Fatalf("expected immediate success for existing directory: %v", err)
	}
}

func TestWaitForMount_EmptyPath(t *testing.T) {
	if err := WaitForMount(context.Background(), "  ", 0); err == nil {
		t.Fatal("expected an error for an empty mount point")
	}
}

func TestWaitForMount_ContextBounded(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "never-mounted")
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := WaitForMount(ctx, missing, 0)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}

func TestWaitForMount_AppearsLater(t *testing.T) {
	mount := filepath.Join(t.TempDir(), "card")
	go func() {
		time.Sleep(150 * time.Millisecond)
		_ = os.MkdirAll(mount, 0o755)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := WaitForMount(ctx, mount, 0); err != nil {
		t.Fatalf("expected mount to be detected: %v", err)
	}
}

func TestWaitForMount_SettleDelays(t *testing.T) {
	dir := t.TempDir()
	start := time.Now()
	if err := WaitForMount(context.Background(), dir, 120*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 120*time.Millisecond {
		t.Fatalf("settle did not delay: elapsed %v", elapsed)
	}
}
