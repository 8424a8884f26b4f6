package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"meridian/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to point footage.source_dir at your camera downloads before running Meridian.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show resolved configuration values",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			source := ctx.configPath
			if !ctx.configExists {
				source += " (not found; defaults in effect)"
			}
			fmt.Fprintf(out, "Config file: %s\n\n", source)

			fmt.Fprintln(out, "[paths]")
			fmt.Fprintf(out, "  work_dir:            %s\n", cfg.Paths.WorkDir)
			fmt.Fprintf(out, "  output_dir:          %s\n", cfg.Paths.OutputDir)
			fmt.Fprintf(out, "  log_dir:             %s\n", cfg.Paths.LogDir)

			fmt.Fprintln(out, "[footage]")
			fmt.Fprintf(out, "  source_dir:          %s\n", orNone(cfg.Footage.SourceDir))
			fmt.Fprintf(out, "  extension:           %s\n", cfg.Footage.Extension)
			fmt.Fprintf(out, "  sync_offset_frames:  %d\n", cfg.Footage.SyncOffsetFrames)

			fmt.Fprintln(out, "[calibration]")
			fmt.Fprintf(out, "  file:                %s\n", orNone(cfg.Calibration.File))
			fmt.Fprintf(out, "  focal_length:        %g\n", cfg.Calibration.FocalLength)

			fmt.Fprintln(out, "[stitch]")
			fmt.Fprintf(out, "  feather_width:       %d\n", cfg.Stitch.FeatherWidth)
			fmt.Fprintf(out, "  output:              %dx%d\n", cfg.Stitch.OutputWidth, cfg.Stitch.OutputHeight)
			fmt.Fprintf(out, "  yaw/pitch/roll:      %g/%g/%g\n", cfg.Stitch.Yaw, cfg.Stitch.Pitch, cfg.Stitch.Roll)
			fmt.Fprintf(out, "  workers:             %d\n", cfg.Stitch.Workers)

			fmt.Fprintln(out, "[encode]")
			fmt.Fprintf(out, "  crf:                 %d\n", cfg.Encode.CRF)
			fmt.Fprintf(out, "  preset:              %s\n", cfg.Encode.Preset)

			fmt.Fprintln(out, "[metadata]")
			fmt.Fprintf(out, "  enabled:             %s\n", yesNo(cfg.Metadata.Enabled))
			fmt.Fprintf(out, "  insta360_compat:     %s\n", yesNo(cfg.Metadata.Insta360Compat))
			fmt.Fprintf(out, "  title:               %s\n", orNone(cfg.Metadata.Title))

			fmt.Fprintln(out, "[archive]")
			fmt.Fprintf(out, "  enabled:             %s\n", yesNo(cfg.Archive.Enabled))
			fmt.Fprintf(out, "  dir:                 %s\n", orNone(cfg.Archive.Dir))

			fmt.Fprintln(out, "[delivery]")
			fmt.Fprintf(out, "  enabled:             %s\n", yesNo(cfg.Delivery.Enabled))
			fmt.Fprintf(out, "  bucket:              %s\n", orNone(cfg.Delivery.Bucket))
			fmt.Fprintf(out, "  prefix:              %s\n", orNone(cfg.Delivery.Prefix))
			fmt.Fprintf(out, "  region:              %s\n", orNone(cfg.Delivery.Region))

			fmt.Fprintln(out, "[ingest]")
			fmt.Fprintf(out, "  device:              %s\n", orNone(cfg.Ingest.Device))
			fmt.Fprintf(out, "  mount_point:         %s\n", orNone(cfg.Ingest.MountPoint))
			fmt.Fprintf(out, "  settle_seconds:      %d\n", cfg.Ingest.SettleSeconds)

			fmt.Fprintln(out, "[logging]")
			fmt.Fprintf(out, "  format:              %s\n", cfg.Logging.Format)
			fmt.Fprintf(out, "  level:               %s\n", cfg.Logging.Level)
			fmt.Fprintf(out, "  retention_days:      %d\n", cfg.Logging.RetentionDays)
			return nil
		},
	}
}

func orNone(value string) string {
	if strings.TrimSpace(value) == "" {
		return "(none)"
	}
	return value
}
