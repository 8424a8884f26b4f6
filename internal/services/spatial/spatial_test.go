package spatial

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"

	"meridian/internal/services"
)

func captureCommands(t *testing.T, mode string) *[][]string {
	t.Helper()
	var captured [][]string
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		captured = append(captured, append([]string{name}, args...))
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", fmt.Sprintf("SPATIAL_HELPER_MODE=%s", mode))
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
	return &captured
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	switch os.Getenv("SPATIAL_HELPER_MODE") {
	case "success":
		os.Exit(0)
	case "failure":
		fmt.Fprintln(os.Stderr, "tag write rejected")
		os.Exit(1)
	default:
		os.Exit(0)
	}
}

func TestMetadataDefaulted(t *testing.T) {
	meta := Metadata{Title: "Beach Run"}.Defaulted()
	if meta.Projection != "equirectangular" {
		t.Fatalf("expected default projection, got %q", meta.Projection)
	}
	meta = Metadata{Projection: "cubemap"}.Defaulted()
	if meta.Projection != "cubemap" {
		t.Fatalf("expected explicit projection to survive, got %q", meta.Projection)
	}
}

func TestInjectSphericalArgs(t *testing.T) {
	captured := captureCommands(t, "success")

	cli := New()
	meta := Metadata{Title: "Beach Run", Description: "Stitched 360 footage"}
	if err := cli.InjectSpherical(context.Background(), "final.mp4", meta); err != nil {
		t.Fatalf("InjectSpherical: %v", err)
	}
	if len(*captured) != 1 {
		t.Fatalf("expected one exiftool invocation, got %d", len(*captured))
	}
	if (*captured)[0][0] != "exiftool" {
		t.Fatalf("expected exiftool binary, got %q", (*captured)[0][0])
	}
	joined := strings.Join((*captured)[0], " ")
	for _, want := range []string{
		"-overwrite_original",
		"-XMP-GSpherical:Spherical=true",
		"-XMP-GSpherical:Stitched=true",
		"-XMP-GSpherical:ProjectionType=equirectangular",
		"-Title=Beach Run",
		"-Description=Stitched 360 footage",
		"final.mp4",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("inject args missing %q: %s", want, joined)
		}
	}
}

func TestInjectSphericalSkipsEmptyText(t *testing.T) {
	captured := captureCommands(t, "success")

	cli := New(WithExifTool("/usr/local/bin/exiftool"))
	if err := cli.InjectSpherical(context.Background(), "final.mp4", Metadata{}); err != nil {
		t.Fatalf("InjectSpherical: %v", err)
	}
	joined := strings.Join((*captured)[0], " ")
	if strings.Contains(joined, "-Title=") || strings.Contains(joined, "-Description=") {
		t.Fatalf("expected empty text tags to be omitted: %s", joined)
	}
	if (*captured)[0][0] != "/usr/local/bin/exiftool" {
		t.Fatalf("expected binary override, got %q", (*captured)[0][0])
	}
}

func TestInjectSphericalFailureIsNonFatal(t *testing.T) {
	captureCommands(t, "failure")

	cli := New()
	err := cli.InjectSpherical(context.Background(), "final.mp4", Metadata{})
	if err == nil {
		t.Fatal("expected injection failure")
	}
	if services.Classify(err) != "metadata_failure" {
		t.Fatalf("unexpected classification: %s", services.Classify(err))
	}
	if services.Fatal(err) {
		t.Fatal("metadata failures must not be fatal")
	}
	if !strings.Contains(err.Error(), "tag write rejected") {
		t.Fatalf("expected captured output in error, got %v", err)
	}
}

func TestMakeCompatibleArgs(t *testing.T) {
	captured := captureCommands(t, "success")

	cli := New()
	if err := cli.MakeCompatible(context.Background(), "encoded.mp4", "final.mp4"); err != nil {
		t.Fatalf("MakeCompatible: %v", err)
	}
	if (*captured)[0][0] != "ffmpeg" {
		t.Fatalf("expected ffmpeg binary, got %q", (*captured)[0][0])
	}
	joined := strings.Join((*captured)[0], " ")
	for _, want := range []string{
		"-i encoded.mp4",
		"-c copy",
		"spherical=true",
		"stereo=monoscopic",
		"projection=equirectangular",
		"final.mp4",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("compat args missing %q: %s", want, joined)
		}
	}
}

func TestMakeCompatibleFailureIsFatal(t *testing.T) {
	captureCommands(t, "failure")

	cli := New()
	err := cli.MakeCompatible(context.Background(), "encoded.mp4", "final.mp4")
	if err == nil {
		t.Fatal("expected remux failure")
	}
	if !services.Fatal(err) {
		t.Fatal("compatibility remux failures are fatal")
	}
	if services.Classify(err) == "metadata_failure" {
		t.Fatal("remux failures must not carry the warn-only metadata class")
	}
}
