package preflight

import (
	"context"
	"fmt"

	"meridian/internal/config"
	"meridian/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Run executes all preflight checks for the given config: writable pipeline
// directories, a readable footage source, and the external tool set.
func Run(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir))
	results = append(results, CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))

	if cfg.Footage.SourceDir != "" {
		results = append(results, CheckReadableDirectory("Source directory", cfg.Footage.SourceDir))
	}

	for _, status := range CheckSystemDeps(ctx, cfg) {
		results = append(results, depResult(status))
	}

	return results
}

// Failed reports whether any check in results did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}

// depResult converts a dependency status into a preflight result. Missing
// optional tools pass with a note so they never block a run.
func depResult(status deps.Status) Result {
	if status.Available {
		return Result{Name: status.Name, Passed: true, Detail: status.Command}
	}
	if status.Optional {
		return Result{Name: status.Name, Passed: true, Detail: fmt.Sprintf("%s (optional)", status.Detail)}
	}
	return Result{Name: status.Name, Detail: status.Detail}
}
