package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeFootage(); err != nil {
		return err
	}
	if err := c.normalizeCalibration(); err != nil {
		return err
	}
	c.normalizeStitch()
	c.normalizeEncode()
	c.normalizeMetadata()
	if err := c.normalizeArchive(); err != nil {
		return err
	}
	c.normalizeDelivery()
	if err := c.normalizeIngest(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeFootage() error {
	var err error
	if strings.TrimSpace(c.Footage.SourceDir) != "" {
		if c.Footage.SourceDir, err = expandPath(c.Footage.SourceDir); err != nil {
			return fmt.Errorf("footage.source_dir: %w", err)
		}
	}
	ext := strings.ToLower(strings.TrimSpace(c.Footage.Extension))
	if ext == "" {
		ext = defaultFootageExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	c.Footage.Extension = ext
	return nil
}

func (c *Config) normalizeCalibration() error {
	var err error
	if strings.TrimSpace(c.Calibration.File) != "" {
		if c.Calibration.File, err = expandPath(c.Calibration.File); err != nil {
			return fmt.Errorf("calibration.file: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeStitch() {
	if c.Stitch.FeatherWidth <= 0 {
		c.Stitch.FeatherWidth = defaultFeatherWidth
	}
	if c.Stitch.OutputWidth <= 0 {
		c.Stitch.OutputWidth = defaultOutputWidth
	}
	if c.Stitch.OutputHeight <= 0 {
		c.Stitch.OutputHeight = defaultOutputHeight
	}
	if c.Stitch.Workers < 0 {
		c.Stitch.Workers = 0
	}
}

func (c *Config) normalizeEncode() {
	c.Encode.Preset = strings.ToLower(strings.TrimSpace(c.Encode.Preset))
	if c.Encode.Preset == "" {
		c.Encode.Preset = defaultEncodePreset
	}
}

func (c *Config) normalizeMetadata() {
	c.Metadata.Title = strings.TrimSpace(c.Metadata.Title)
	if c.Metadata.Title == "" {
		c.Metadata.Title = defaultMetadataTitle
	}
	c.Metadata.Description = strings.TrimSpace(c.Metadata.Description)
	if c.Metadata.Description == "" {
		c.Metadata.Description = defaultMetadataDescription
	}
}

func (c *Config) normalizeArchive() error {
	var err error
	if strings.TrimSpace(c.Archive.Dir) != "" {
		if c.Archive.Dir, err = expandPath(c.Archive.Dir); err != nil {
			return fmt.Errorf("archive.dir: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeDelivery() {
	c.Delivery.Bucket = strings.TrimSpace(c.Delivery.Bucket)
	c.Delivery.Prefix = strings.Trim(strings.TrimSpace(c.Delivery.Prefix), "/")
	c.Delivery.Region = strings.TrimSpace(c.Delivery.Region)
	if c.Delivery.Region == "" {
		c.Delivery.Region = defaultDeliveryRegion
	}
}

func (c *Config) normalizeIngest() error {
	var err error
	c.Ingest.Device = strings.TrimSpace(c.Ingest.Device)
	if strings.TrimSpace(c.Ingest.MountPoint) != "" {
		if c.Ingest.MountPoint, err = expandPath(c.Ingest.MountPoint); err != nil {
			return fmt.Errorf("ingest.mount_point: %w", err)
		}
	}
	if c.Ingest.SettleSeconds <= 0 {
		c.Ingest.SettleSeconds = defaultIngestSettleSeconds
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
