package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"unicode"

	"github.com/spf13/cobra"

	"meridian/internal/config"
	"meridian/internal/discovery"
	"meridian/internal/ledger"
	"meridian/internal/logging"
	"meridian/internal/pipeline"
	"meridian/internal/preflight"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var title string
	var outputPath string

	cmd := &cobra.Command{
		Use:   "run [source-dir]",
		Short: "Stitch a directory of dual-lens footage into a spherical render",
		Long: `Classify the footage in a directory into front and back camera streams,
then run the full stitching pipeline: concatenate each stream, apply the
configured sync offset, stitch a preview frame, encode, and finalize the
output with spherical metadata.

Examples:
  meridian run                        # Use the configured footage.source_dir
  meridian run ~/footage/harbor       # Stitch a specific directory
  meridian run -t "Harbor Sunrise"    # Override the derived run title`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			sourceDir := cfg.Footage.SourceDir
			if len(args) > 0 {
				sourceDir = args[0]
			}
			if strings.TrimSpace(sourceDir) == "" {
				return errors.New("no source directory given and footage.source_dir is not configured")
			}
			sourceDir, err = config.ExpandPath(sourceDir)
			if err != nil {
				return fmt.Errorf("resolve source directory: %w", err)
			}

			runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			out := cmd.OutOrStdout()
			if err := reportPreflight(runCtx, out, cfg); err != nil {
				return err
			}

			footage, err := discovery.Classify(sourceDir, cfg.Footage.Extension)
			if err != nil {
				return err
			}
			if footage.Empty() {
				return fmt.Errorf("no footage found in %s", sourceDir)
			}
			fmt.Fprintf(out, "Found %d front and %d back segments in %s\n",
				len(footage.Front), len(footage.Back), sourceDir)

			runTitle := strings.TrimSpace(title)
			if runTitle == "" {
				runTitle = discovery.DeriveTitle(sourceDir)
			}
			target := strings.TrimSpace(outputPath)
			if target == "" {
				target = filepath.Join(cfg.Paths.OutputDir, renderFilename(runTitle))
			} else if target, err = config.ExpandPath(target); err != nil {
				return fmt.Errorf("resolve output path: %w", err)
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			store, err := ledger.Open(cfg.Paths.WorkDir)
			if err != nil {
				return fmt.Errorf("open run ledger: %w", err)
			}
			defer store.Close()

			p, err := buildPipeline(runCtx, cfg, store, logger)
			if err != nil {
				return err
			}

			exec, err := p.Start(runCtx, pipeline.Job{
				Title:      runTitle,
				SourceDir:  sourceDir,
				Front:      discovery.Paths(footage.Front),
				Back:       discovery.Paths(footage.Back),
				OutputPath: target,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Run %s started: %s\n", shortRunID(exec.RunID()), runTitle)

			go func() {
				<-runCtx.Done()
				exec.Controller().Cancel()
			}()

			streamEvents(out, exec.Events())

			outcome, err := exec.Wait()
			switch outcome {
			case pipeline.OutcomeSucceeded:
				fmt.Fprintf(out, "Render complete: %s\n", target)
				return nil
			case pipeline.OutcomeCancelled:
				fmt.Fprintln(out, "Run cancelled")
				return err
			default:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Run title (default: derived from the directory name)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: under paths.output_dir)")
	return cmd
}

// streamEvents drains a run's event channel to the terminal. Progress events
// are skipped because task events carry the same counters.
func streamEvents(out io.Writer, events <-chan pipeline.Event) {
	for evt := range events {
		switch evt.Type {
		case pipeline.EventTask:
			fmt.Fprintf(out, "[%d/%d] %s\n", evt.Current, evt.Total, evt.Stage)
		case pipeline.EventLog:
			fmt.Fprintf(out, "      %s\n", evt.Message)
		case pipeline.EventError:
			fmt.Fprintf(out, "      error (%s): %s\n", evt.ErrorClass, evt.Message)
		case pipeline.EventPreview:
			fmt.Fprintf(out, "      preview: %s\n", evt.PreviewPath)
		}
	}
}

// reportPreflight runs the preflight checks and prints only the failures;
// passing checks stay quiet to keep run output focused.
func reportPreflight(ctx context.Context, out io.Writer, cfg *config.Config) error {
	results := preflight.Run(ctx, cfg)
	if !preflight.Failed(results) {
		return nil
	}
	for _, res := range results {
		if res.Passed {
			continue
		}
		fmt.Fprintf(out, "preflight: %s: %s\n", res.Name, res.Detail)
	}
	return errors.New("preflight checks failed")
}

// renderFilename converts a run title into a filesystem-safe output name.
func renderFilename(title string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}
	name := b.String()
	if name == "" {
		name = "render"
	}
	return name + ".mp4"
}
