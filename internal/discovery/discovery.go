package discovery

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"meridian/internal/services"
)

// Role identifies which camera of the rig produced an asset.
type Role string

const (
	RoleFront Role = "front"
	RoleBack  Role = "back"
)

// Asset is one classified footage file.
type Asset struct {
	Path    string
	Role    Role
	Ordinal int
}

// Result holds the two classified streams, each sorted by filename.
type Result struct {
	Front []Asset
	Back  []Asset
}

// Empty reports whether classification found no footage at all.
func (r Result) Empty() bool {
	return len(r.Front) == 0 && len(r.Back) == 0
}

// Paths flattens one stream back to its file list in order.
func Paths(assets []Asset) []string {
	out := make([]string, len(assets))
	for i, a := range assets {
		out[i] = a.Path
	}
	return out
}

var (
	primaryPattern   = regexp.MustCompile(`^VIDEO_(\d+)$`)
	chapteredPattern = regexp.MustCompile(`^VIDEO_(\d{2})_(\d+)$`)
)

// Classify scans dir for footage files of the configured extension and
// splits them into front and back streams. Two filename shapes are
// recognized: VIDEO_<id> and the chaptered VIDEO_<chapter>_<id>; an even
// embedded id means front, odd means back, a fixed rig convention rather
// than a validated property. Everything else is silently skipped. A missing or
// unreadable directory reports an error alongside two empty lists so the
// caller can log and proceed.
func Classify(dir, ext string) (Result, error) {
	ext = normalizeExt(ext)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return Result{}, services.Wrap(services.ErrDiscoveryIO, "discovery", "scan", "cannot read footage directory", err)
	}

	var front, back []Asset
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.EqualFold(filepath.Ext(name), ext) {
			continue
		}
		stem := strings.TrimSuffix(name, filepath.Ext(name))

		id, ok := embeddedID(stem)
		if !ok {
			continue
		}
		asset := Asset{Path: filepath.Join(dir, name)}
		if id%2 == 0 {
			asset.Role = RoleFront
			front = append(front, asset)
		} else {
			asset.Role = RoleBack
			back = append(back, asset)
		}
	}

	sortAssets(front)
	sortAssets(back)
	return Result{Front: front, Back: back}, nil
}

// embeddedID extracts the trailing numeric id from either filename shape.
func embeddedID(stem string) (int, bool) {
	var digits string
	if m := chapteredPattern.FindStringSubmatch(stem); m != nil {
		digits = m[2]
	} else if m := primaryPattern.FindStringSubmatch(stem); m != nil {
		digits = m[1]
	} else {
		return 0, false
	}
	id, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return id, true
}

func sortAssets(assets []Asset) {
	sort.Slice(assets, func(i, j int) bool {
		return filepath.Base(assets[i].Path) < filepath.Base(assets[j].Path)
	})
	for i := range assets {
		assets[i].Ordinal = i
	}
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ".mp4"
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
