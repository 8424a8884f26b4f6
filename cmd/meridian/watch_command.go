package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"meridian/internal/config"
	"meridian/internal/discovery"
	"meridian/internal/ingest"
	"meridian/internal/ledger"
	"meridian/internal/logging"
	"meridian/internal/pipeline"
)

// mountWaitTimeout bounds how long a detected card may take to mount before
// the ingest attempt is abandoned.
const mountWaitTimeout = 2 * time.Minute

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch for camera cards and stitch them automatically",
		Long: `Listen for udev block-device events matching ingest.device. When a card
appears, wait for ingest.mount_point, classify the footage on it, and run
the stitching pipeline. One card is processed at a time; insertions during
a run are ignored. Runs in the foreground until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(cfg.Ingest.Device) == "" {
				return errors.New("ingest.device is not configured; set it to the card reader's partition or a glob like /dev/sd?1")
			}
			if strings.TrimSpace(cfg.Ingest.MountPoint) == "" {
				return errors.New("ingest.mount_point is not configured")
			}

			watchCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			out := cmd.OutOrStdout()
			if err := reportPreflight(watchCtx, out, cfg); err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, cfg.Paths.LogDir)

			store, err := ledger.Open(cfg.Paths.WorkDir)
			if err != nil {
				return fmt.Errorf("open run ledger: %w", err)
			}
			defer store.Close()

			p, err := buildPipeline(watchCtx, cfg, store, logger)
			if err != nil {
				return err
			}

			var busy atomic.Bool
			handler := func(handlerCtx context.Context, device string) (*ingest.CardResult, error) {
				if !busy.CompareAndSwap(false, true) {
					return &ingest.CardResult{Message: "a run is already in flight"}, nil
				}
				defer busy.Store(false)
				return ingestCard(handlerCtx, cfg, p, out, device)
			}

			watcher := ingest.New(cfg, logger, handler, busy.Load)
			if err := watcher.Start(watchCtx); err != nil {
				return err
			}
			defer watcher.Stop()

			fmt.Fprintf(out, "Watching %s for camera cards (Ctrl-C to stop)\n", cfg.Ingest.Device)
			<-watchCtx.Done()
			fmt.Fprintln(out, "Watcher stopped")
			return nil
		},
	}
}

// ingestCard runs one detected card through the pipeline. Errors returned
// here surface through the watcher's handler-failure log, not the terminal.
func ingestCard(ctx context.Context, cfg *config.Config, p *pipeline.Pipeline, out io.Writer, device string) (*ingest.CardResult, error) {
	mountCtx, cancelMount := context.WithTimeout(ctx, mountWaitTimeout)
	defer cancelMount()
	settle := time.Duration(cfg.Ingest.SettleSeconds) * time.Second
	if err := ingest.WaitForMount(mountCtx, cfg.Ingest.MountPoint, settle); err != nil {
		return nil, fmt.Errorf("wait for %s to mount: %w", cfg.Ingest.MountPoint, err)
	}

	footage, err := discovery.Classify(cfg.Ingest.MountPoint, cfg.Footage.Extension)
	if err != nil {
		return nil, err
	}
	if footage.Empty() {
		return &ingest.CardResult{Message: "card holds no recognizable footage"}, nil
	}

	// Cards look alike once mounted, so runs are named by insertion time.
	stamp := time.Now().UTC().Format("20060102-150405")
	exec, err := p.Start(ctx, pipeline.Job{
		Title:      "Card " + stamp,
		SourceDir:  cfg.Ingest.MountPoint,
		Front:      discovery.Paths(footage.Front),
		Back:       discovery.Paths(footage.Back),
		OutputPath: filepath.Join(cfg.Paths.OutputDir, "card_"+stamp+".mp4"),
	})
	if err != nil {
		return nil, err
	}

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() {
		<-runCtx.Done()
		exec.Controller().Cancel()
	}()

	fmt.Fprintf(out, "Run %s started from %s\n", shortRunID(exec.RunID()), device)
	streamEvents(out, exec.Events())

	outcome, err := exec.Wait()
	switch outcome {
	case pipeline.OutcomeSucceeded:
		return &ingest.CardResult{Handled: true, RunID: exec.RunID()}, nil
	case pipeline.OutcomeCancelled:
		return &ingest.CardResult{Handled: true, RunID: exec.RunID(), Message: "run cancelled"}, nil
	default:
		return nil, err
	}
}
