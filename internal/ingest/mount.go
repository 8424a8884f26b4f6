package ingest

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"
)

const mountPollInterval = 500 * time.Millisecond

// WaitForMount blocks until the mount point exists as a directory, then
// sleeps the settle duration so the automounter can finish before discovery
// reads the card. The caller bounds the wait through ctx.
func WaitForMount(ctx context.Context, mountPoint string, settle time.Duration) error {
	if strings.TrimSpace(mountPoint) == "" {
		return errors.New("mount point not configured")
	}

	for {
		if info, err := os.Stat(mountPoint); err == nil && info.IsDir() {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(mountPollInterval):
		}
	}

	if settle > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(settle):
		}
	}
	return nil
}
