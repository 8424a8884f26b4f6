package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"meridian/internal/blend"
	"meridian/internal/calibration"
	"meridian/internal/config"
	"meridian/internal/frame"
	"meridian/internal/projection"
)

func newFrameCommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "frame <front-image> <back-image>",
		Short: "Stitch two still frames into one equirectangular PNG",
		Long: `Run the geometric stitch on a single pair of extracted frames using the
configured calibration, feather width, output geometry, and orientation.
Useful for dialing in stitch settings without waiting for a full encode.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			frontPath, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve front frame: %w", err)
			}
			backPath, err := config.ExpandPath(args[1])
			if err != nil {
				return fmt.Errorf("resolve back frame: %w", err)
			}

			front, err := frame.Load(frontPath)
			if err != nil {
				return err
			}
			back, err := frame.Load(backPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var calib *calibration.Calibration
			if file := strings.TrimSpace(cfg.Calibration.File); file != "" {
				if _, statErr := os.Stat(file); statErr == nil {
					calib, err = calibration.Load(file)
					if err != nil {
						return err
					}
				} else {
					fmt.Fprintln(out, "Calibration file missing; stitching without undistortion")
				}
			}

			proj := projection.New(calib, projection.WithWorkers(cfg.Stitch.Workers))
			focal := cfg.Calibration.FocalLength
			if focal <= 0 {
				focal = proj.FocalLength()
			}

			left := proj.CylindricalWarp(proj.Undistort(front, calibration.Left), focal)
			right := proj.CylindricalWarp(proj.Undistort(back, calibration.Right), focal)
			pano, err := blend.Feather(left, right, cfg.Stitch.FeatherWidth)
			if err != nil {
				return err
			}
			equirect := proj.EquirectangularRemap(pano, cfg.Stitch.OutputWidth, cfg.Stitch.OutputHeight)
			final := projection.ApplyOrientation(equirect, projection.Orientation{
				Yaw:   cfg.Stitch.Yaw,
				Pitch: cfg.Stitch.Pitch,
				Roll:  cfg.Stitch.Roll,
			})

			target := strings.TrimSpace(outputPath)
			if target == "" {
				target = "stitched_frame.png"
			}
			target, err = config.ExpandPath(target)
			if err != nil {
				return fmt.Errorf("resolve output path: %w", err)
			}
			if err := frame.SavePNG(target, final); err != nil {
				return err
			}
			fmt.Fprintf(out, "Stitched frame written to %s (%dx%d)\n", target, final.W, final.H)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination PNG (default stitched_frame.png)")
	return cmd
}
