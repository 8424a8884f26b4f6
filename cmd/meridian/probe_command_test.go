package main

import (
	"os"
	"path/filepath"
	"testing"
)

const probeStubPayload = `{"streams":[{"index":0,"codec_name":"hevc","codec_type":"video","width":3840,"height":1920,"r_frame_rate":"30000/1001"},{"index":1,"codec_name":"aac","codec_type":"audio","channels":2}],"format":{"duration":"12.500000","size":"1048576"}}`

// stubProbe installs an ffprobe that prints a fixed JSON document no matter
// what it is asked about.
func stubProbe(t *testing.T, payload string) {
	t.Helper()
	binDir := t.TempDir()
	script := "#!/bin/sh\ncat <<'EOF'\n" + payload + "\nEOF\n"
	if err := os.WriteFile(filepath.Join(binDir, "ffprobe"), []byte(script), 0o755); err != nil {
		t.Fatalf("write stub ffprobe: %v", err)
	}
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestProbeSummarizesStreams(t *testing.T) {
	env := setupCLITestEnv(t)
	stubProbe(t, probeStubPayload)

	clip := filepath.Join(env.sourceDir, "VIDEO_000.mp4")
	if err := os.WriteFile(clip, []byte("clip"), 0o644); err != nil {
		t.Fatalf("write clip: %v", err)
	}

	out, _, err := runCLI(t, []string{"probe", clip}, env.configPath)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	requireContains(t, out, "Codec:       hevc")
	requireContains(t, out, "Resolution:  3840x1920")
	requireContains(t, out, "Frame rate:  29.970 fps")
	requireContains(t, out, "Duration:    12.50 s")
	requireContains(t, out, "Audio:       1 stream(s)")
	requireContains(t, out, "Size:        1.0 MiB")
}

func TestProbeJSONOutput(t *testing.T) {
	env := setupCLITestEnv(t)
	stubProbe(t, probeStubPayload)

	clip := filepath.Join(env.sourceDir, "VIDEO_000.mp4")
	if err := os.WriteFile(clip, []byte("clip"), 0o644); err != nil {
		t.Fatalf("write clip: %v", err)
	}

	out, _, err := runCLI(t, []string{"probe", clip, "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("probe --json: %v", err)
	}
	requireContains(t, out, `"codec_name":"hevc"`)
	requireContains(t, out, `"r_frame_rate":"30000/1001"`)
}

func TestProbeMissingFile(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"probe", filepath.Join(env.sourceDir, "gone.mp4")}, env.configPath)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	requireContains(t, err.Error(), "file does not exist")
}

func TestProbeRejectsDirectory(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"probe", env.sourceDir}, env.configPath)
	if err == nil {
		t.Fatal("expected error for directory argument")
	}
	requireContains(t, err.Error(), "is a directory")
}
