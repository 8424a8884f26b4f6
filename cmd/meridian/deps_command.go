package main

import (
	"errors"

	"github.com/spf13/cobra"

	"meridian/internal/preflight"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check the external tools Meridian shells out to",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			statuses := preflight.CheckSystemDeps(cmd.Context(), cfg)
			rows := make([][]string, 0, len(statuses))
			missingRequired := false
			for _, status := range statuses {
				state := "ok"
				detail := status.Command
				if !status.Available {
					detail = status.Detail
					if status.Optional {
						state = "optional"
					} else {
						state = "missing"
						missingRequired = true
					}
				}
				rows = append(rows, []string{status.Name, state, detail})
			}

			renderRows(cmd.OutOrStdout(),
				[]string{"Dependency", "Status", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			)
			if missingRequired {
				return errors.New("required dependencies are missing")
			}
			return nil
		},
	}
}
