package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"meridian/internal/config"
	"meridian/internal/media/ffprobe"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "probe <file>",
		Short: "Inspect a footage file with ffprobe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			path, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}
			info, err := os.Stat(path)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("file does not exist: %s", path)
				}
				return fmt.Errorf("inspect file: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("%s is a directory", path)
			}

			result, err := ffprobe.NewCLI(cfg.FFprobeBinary()).Inspect(cmd.Context(), path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				fmt.Fprintf(out, "%s\n", result.RawJSON())
				return nil
			}

			fmt.Fprintf(out, "File:        %s\n", path)
			fmt.Fprintf(out, "Codec:       %s\n", result.Codec())
			fmt.Fprintf(out, "Resolution:  %dx%d\n", result.Width(), result.Height())
			fmt.Fprintf(out, "Frame rate:  %.3f fps\n", result.FrameRate())
			fmt.Fprintf(out, "Duration:    %.2f s\n", result.Duration())
			fmt.Fprintf(out, "Audio:       %d stream(s)\n", result.AudioStreamCount())
			if size := result.SizeBytes(); size > 0 {
				fmt.Fprintf(out, "Size:        %s\n", formatBytes(size))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the raw ffprobe JSON")
	return cmd
}
