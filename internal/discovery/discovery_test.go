package discovery_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"meridian/internal/discovery"
	"meridian/internal/services"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func names(assets []discovery.Asset) []string {
	out := make([]string, len(assets))
	for i, a := range assets {
		out[i] = filepath.Base(a.Path)
	}
	return out
}

func TestClassifySplitsByParity(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "VIDEO_0042.mp4")
	touch(t, dir, "VIDEO_0043.mp4")
	touch(t, dir, "VIDEO_01_0044.mp4")
	touch(t, dir, "VIDEO_02_0045.mp4")

	result, err := discovery.Classify(dir, ".mp4")
	if err != nil {
		t.Fatal(err)
	}

	wantFront := []string{"VIDEO_0042.mp4", "VIDEO_01_0044.mp4"}
	if diff := cmp.Diff(wantFront, names(result.Front)); diff != "" {
		t.Fatalf("front assets mismatch (-want +got):\n%s", diff)
	}

	wantBack := []string{"VIDEO_0043.mp4", "VIDEO_02_0045.mp4"}
	if diff := cmp.Diff(wantBack, names(result.Back)); diff != "" {
		t.Fatalf("back assets mismatch (-want +got):\n%s", diff)
	}

	for _, a := range result.Front {
		if a.Role != discovery.RoleFront {
			t.Fatalf("front asset carries role %q", a.Role)
		}
	}
	for i, a := range result.Front {
		if a.Ordinal != i {
			t.Fatalf("front ordinal %d = %d", i, a.Ordinal)
		}
	}
}

func TestClassifyChapteredUsesEmbeddedID(t *testing.T) {
	// The two-digit chapter prefix must not decide the role; the trailing
	// id does.
	dir := t.TempDir()
	touch(t, dir, "VIDEO_01_0043.mp4")
	touch(t, dir, "VIDEO_02_0042.mp4")

	result, err := discovery.Classify(dir, ".mp4")
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Back) != 1 || filepath.Base(result.Back[0].Path) != "VIDEO_01_0043.mp4" {
		t.Fatalf("odd id should be back, got back=%v", names(result.Back))
	}
	if len(result.Front) != 1 || filepath.Base(result.Front[0].Path) != "VIDEO_02_0042.mp4" {
		t.Fatalf("even id should be front, got front=%v", names(result.Front))
	}
}

func TestClassifySkipsNonMatching(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "VIDEO_0042.mp4")
	touch(t, dir, "notes.txt")
	touch(t, dir, "VIDEO_0044.mov")
	touch(t, dir, "CLIP_0046.mp4")
	touch(t, dir, "VIDEO_.mp4")
	if err := os.Mkdir(filepath.Join(dir, "VIDEO_0048.mp4"), 0o755); err != nil {
		t.Fatal(err)
	}

	result, err := discovery.Classify(dir, ".mp4")
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Front) != 1 || len(result.Back) != 0 {
		t.Fatalf("expected a single front asset, got front=%v back=%v", names(result.Front), names(result.Back))
	}
}

func TestClassifyExtensionCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "VIDEO_0042.MP4")

	result, err := discovery.Classify(dir, ".mp4")
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Front) != 1 {
		t.Fatalf("uppercase extension should classify, got %v", names(result.Front))
	}

	result, err = discovery.Classify(dir, "mp4")
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Front) != 1 {
		t.Fatal("extension without leading dot should classify")
	}
}

func TestClassifyMissingDirectory(t *testing.T) {
	result, err := discovery.Classify(filepath.Join(t.TempDir(), "absent"), ".mp4")
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
	if !errors.Is(err, services.ErrDiscoveryIO) {
		t.Fatalf("expected discovery io marker, got %v", err)
	}
	if !result.Empty() {
		t.Fatal("missing directory must yield empty lists")
	}
}

func TestPathsFlattens(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "VIDEO_0002.mp4")
	touch(t, dir, "VIDEO_0004.mp4")
	result, err := discovery.Classify(dir, ".mp4")
	if err != nil {
		t.Fatal(err)
	}
	paths := discovery.Paths(result.Front)
	if len(paths) != 2 || filepath.Base(paths[0]) != "VIDEO_0002.mp4" {
		t.Fatalf("unexpected paths %v", paths)
	}
}

func TestDeriveTitle(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"/footage/beach_day-2", "Beach Day 2"},
		{"/footage/ride.along.0517", "Ride Along 0517"},
		{"trail run", "Trail Run"},
		{"", "Untitled Run"},
		{"/footage/###", "Untitled Run"},
	}
	for _, tc := range cases {
		if got := discovery.DeriveTitle(tc.in); got != tc.want {
			t.Fatalf("DeriveTitle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
