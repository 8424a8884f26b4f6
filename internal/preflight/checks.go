package preflight

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"meridian/internal/config"
	"meridian/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckReadableDirectory verifies that the directory exists and can be listed.
// Footage sources are often mounted read-only, so write access is not required.
func CheckReadableDirectory(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (readable)", path)}
}

// CheckSystemDeps evaluates the external tool set for the given config. Both
// the pipeline preflight and the CLI deps command use this to avoid
// duplicating the requirements list.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required for concatenation, sync trims, and encoding",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Required for stream inspection",
		},
	}
	if cfg.Metadata.Enabled {
		requirements = append(requirements, deps.Requirement{
			Name:        "ExifTool",
			Command:     cfg.ExifToolBinary(),
			Description: "Writes spherical metadata tags",
			Optional:    true,
		})
	}
	results := deps.CheckBinaries(requirements)
	if cfg.Archive.Enabled {
		results = append(results, deps.CheckArchiveFFmpeg(hostExecutable()))
	}
	return results
}

func hostExecutable() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	return exe
}
