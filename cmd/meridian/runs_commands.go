package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"meridian/internal/ledger"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect recorded stitching runs",
	}

	runsCmd.AddCommand(newRunsListCommand(ctx))
	runsCmd.AddCommand(newRunsShowCommand(ctx))
	runsCmd.AddCommand(newRunsClearCommand(ctx))

	return runsCmd
}

func newRunsListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *ledger.Store) error {
				var statuses []ledger.Status
				for _, status := range listStatuses {
					statuses = append(statuses, ledger.Status(strings.ToLower(strings.TrimSpace(status))))
				}

				runs, err := store.List(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
					return nil
				}

				renderRows(cmd.OutOrStdout(),
					[]string{"Run", "Title", "Status", "Stage", "Progress", "Created"},
					buildRunRows(runs),
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&listStatuses, "status", "s", nil, "Filter by run status (repeatable)")
	return cmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *ledger.Store) error {
				run, err := findRun(cmd.Context(), store, strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("run %q not found", args[0])
				}
				printRunDetail(cmd, run)
				return nil
			})
		},
	}
}

func newRunsClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove completed runs from the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *ledger.Store) error {
				removed, err := store.ClearCompleted(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d completed runs\n", removed)
				return nil
			})
		},
	}
}

// findRun resolves a run by exact id first, then by unique prefix so table
// output's shortened ids work as arguments.
func findRun(ctx context.Context, store *ledger.Store, id string) (*ledger.Run, error) {
	run, err := store.GetByRunID(ctx, id)
	if err != nil || run != nil {
		return run, err
	}

	runs, err := store.List(ctx)
	if err != nil {
		return nil, err
	}
	var match *ledger.Run
	for _, candidate := range runs {
		if !strings.HasPrefix(candidate.RunID, id) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("run id %q is ambiguous", id)
		}
		match = candidate
	}
	return match, nil
}

func printRunDetail(cmd *cobra.Command, run *ledger.Run) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run:        %s\n", run.RunID)
	fmt.Fprintf(out, "Title:      %s\n", run.Title)
	fmt.Fprintf(out, "Status:     %s\n", formatStatusLabel(string(run.Status)))
	if run.Stage != "" {
		fmt.Fprintf(out, "Stage:      %s (%s)\n", run.Stage, formatProgress(run.StageCurrent, run.StageTotal))
	}
	if run.SourceDir != "" {
		fmt.Fprintf(out, "Source:     %s\n", run.SourceDir)
	}
	if run.OutputPath != "" {
		fmt.Fprintf(out, "Output:     %s\n", run.OutputPath)
	}
	if run.PreviewPath != "" {
		fmt.Fprintf(out, "Preview:    %s\n", run.PreviewPath)
	}
	if run.ErrorMessage != "" {
		fmt.Fprintf(out, "Error:      [%s] %s\n", run.ErrorClass, run.ErrorMessage)
	}
	fmt.Fprintf(out, "Created:    %s\n", formatDisplayTime(run.CreatedAt))
	fmt.Fprintf(out, "Updated:    %s\n", formatDisplayTime(run.UpdatedAt))
	if run.CompletedAt != nil {
		fmt.Fprintf(out, "Completed:  %s\n", formatDisplayTime(*run.CompletedAt))
	}
}
