package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"meridian/internal/config"
	"meridian/internal/discovery"
)

func newDiscoverCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "discover [dir]",
		Short: "Classify footage files into front and back camera streams",
		Long: `Scan a directory for footage of the configured extension and show how the
pipeline would split it into front and back camera streams. Useful for
checking a card before committing to a full stitch.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			dir := cfg.Footage.SourceDir
			if len(args) > 0 {
				dir = args[0]
			}
			if strings.TrimSpace(dir) == "" {
				return errors.New("no directory given and footage.source_dir is not configured")
			}
			dir, err = config.ExpandPath(dir)
			if err != nil {
				return fmt.Errorf("resolve directory: %w", err)
			}

			footage, err := discovery.Classify(dir, cfg.Footage.Extension)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if footage.Empty() {
				fmt.Fprintf(out, "No footage found in %s\n", dir)
				return nil
			}

			renderRows(out,
				[]string{"Role", "Order", "File"},
				buildFootageRows(footage),
				[]columnAlignment{alignLeft, alignRight, alignLeft},
			)
			if len(footage.Front) != len(footage.Back) {
				fmt.Fprintf(out, "Warning: %d front vs %d back segments; the streams should pair up\n",
					len(footage.Front), len(footage.Back))
			}
			return nil
		},
	}
}

func buildFootageRows(res discovery.Result) [][]string {
	rows := make([][]string, 0, len(res.Front)+len(res.Back))
	for _, stream := range [][]discovery.Asset{res.Front, res.Back} {
		for _, asset := range stream {
			rows = append(rows, []string{
				string(asset.Role),
				strconv.Itoa(asset.Ordinal),
				filepath.Base(asset.Path),
			})
		}
	}
	return rows
}
