package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WorkDir   string `toml:"work_dir"`
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
}

// Footage describes where raw camera files live and how the two streams relate.
type Footage struct {
	SourceDir        string `toml:"source_dir"`
	Extension        string `toml:"extension"`
	SyncOffsetFrames int    `toml:"sync_offset_frames"`
}

// Calibration points at the rig calibration document.
type Calibration struct {
	File        string  `toml:"file"`
	FocalLength float64 `toml:"focal_length"`
}

// Stitch contains the geometry knobs for the projection and blend stages.
type Stitch struct {
	FeatherWidth int     `toml:"feather_width"`
	OutputWidth  int     `toml:"output_width"`
	OutputHeight int     `toml:"output_height"`
	Yaw          float64 `toml:"yaw"`
	Pitch        float64 `toml:"pitch"`
	Roll         float64 `toml:"roll"`
	Workers      int     `toml:"workers"`
}

// Encode contains settings for the final H.264 encode.
type Encode struct {
	CRF    int    `toml:"crf"`
	Preset string `toml:"preset"`
}

// Metadata contains spherical metadata injection settings.
type Metadata struct {
	Enabled        bool   `toml:"enabled"`
	Insta360Compat bool   `toml:"insta360_compat"`
	Title          string `toml:"title"`
	Description    string `toml:"description"`
}

// Archive contains configuration for the optional AV1 archival master.
type Archive struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// Delivery contains configuration for uploading finished renders to object storage.
type Delivery struct {
	Enabled bool   `toml:"enabled"`
	Bucket  string `toml:"bucket"`
	Prefix  string `toml:"prefix"`
	Region  string `toml:"region"`
}

// Ingest contains configuration for the removable-media watcher.
type Ingest struct {
	Device        string `toml:"device"`
	MountPoint    string `toml:"mount_point"`
	SettleSeconds int    `toml:"settle_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for Meridian.
//
// Configuration sections by subsystem:
//   - Paths: work, output, and log directories
//   - Footage: raw camera file discovery and sync offset
//   - Calibration: rig calibration document and focal override
//   - Stitch: feather width, output geometry, orientation, worker count
//   - Encode: CRF and speed preset for the final encode
//   - Metadata: spherical metadata injection and compatibility remux
//   - Archive: optional AV1 archival master of finished renders
//   - Delivery: optional upload of finished renders to object storage
//   - Ingest: removable-media watch settings for auto-ingest
//   - Logging: log format, level, and retention
type Config struct {
	Paths       Paths       `toml:"paths"`
	Footage     Footage     `toml:"footage"`
	Calibration Calibration `toml:"calibration"`
	Stitch      Stitch      `toml:"stitch"`
	Encode      Encode      `toml:"encode"`
	Metadata    Metadata    `toml:"metadata"`
	Archive     Archive     `toml:"archive"`
	Delivery    Delivery    `toml:"delivery"`
	Ingest      Ingest      `toml:"ingest"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/meridian/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/meridian/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("meridian.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for pipeline operation.
// OutputDir is created on a best-effort basis so runs can start when external
// storage is temporarily unavailable.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.OutputDir) != "" {
		// Best-effort to avoid failing config load when storage is offline.
		_ = os.MkdirAll(c.Paths.OutputDir, 0o755)
	}
	if c.Archive.Enabled && strings.TrimSpace(c.Archive.Dir) != "" {
		if err := os.MkdirAll(c.Archive.Dir, 0o755); err != nil {
			return fmt.Errorf("create archive directory %q: %w", c.Archive.Dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name used for stream operations.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for media inspection.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// ExifToolBinary returns the exiftool executable name used for metadata injection.
func (c *Config) ExifToolBinary() string {
	return "exiftool"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
