package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// CheckArchiveFFmpeg reports the FFmpeg binary the archive encoder will run.
//
// The Drapto library prefers an ffmpeg binary that sits next to the host
// executable and falls back to resolving "ffmpeg" from PATH. This helper
// mirrors that lookup so status output matches what an archive encode would
// actually execute. hostExecutable is normally the running meridian binary;
// passing it in keeps the lookup testable.
func CheckArchiveFFmpeg(hostExecutable string) Status {
	result := Status{
		Name:        "Archive FFmpeg",
		Description: "Used by the archival encoder",
	}

	host := strings.TrimSpace(hostExecutable)
	if host != "" {
		if resolved, err := exec.LookPath(host); err == nil {
			if candidate, ok := sidecarCandidate(resolved); ok {
				if info, statErr := os.Stat(candidate); statErr == nil && isExecutable(info) {
					result.Command = candidate
					result.Available = true
					return result
				}
			}
		}
	}

	ffmpegName := "ffmpeg"
	if ffmpegPath, err := exec.LookPath(ffmpegName); err == nil {
		result.Command = ffmpegPath
		result.Available = true
		return result
	}

	result.Command = ffmpegName
	result.Available = false
	result.Detail = fmt.Sprintf("binary %q not found", ffmpegName)
	return result
}

func sidecarCandidate(hostPath string) (string, bool) {
	if hostPath == "" {
		return "", false
	}
	dir := filepath.Dir(hostPath)
	name := "ffmpeg"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(dir, name), true
}

func isExecutable(info os.FileInfo) bool {
	if info == nil {
		return false
	}
	if info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
