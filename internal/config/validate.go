package config

import (
	"errors"
	"fmt"
	"strings"
)

// EncodePresets is the fixed ordered set of speed/compression tradeoffs the
// encoder accepts, fastest first.
var EncodePresets = []string{
	"ultrafast", "superfast", "veryfast", "faster", "fast",
	"medium", "slow", "slower", "veryslow",
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateFootage(); err != nil {
		return err
	}
	if err := c.validateStitch(); err != nil {
		return err
	}
	if err := c.validateEncode(); err != nil {
		return err
	}
	if err := c.validateArchive(); err != nil {
		return err
	}
	if err := c.validateDelivery(); err != nil {
		return err
	}
	if err := c.validateIngest(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateFootage() error {
	if !strings.HasPrefix(c.Footage.Extension, ".") || len(c.Footage.Extension) < 2 {
		return fmt.Errorf("footage.extension must name a file extension, got %q", c.Footage.Extension)
	}
	return nil
}

func (c *Config) validateStitch() error {
	if c.Stitch.FeatherWidth <= 0 {
		return errors.New("stitch.feather_width must be positive")
	}
	if c.Stitch.OutputWidth <= 0 || c.Stitch.OutputHeight <= 0 {
		return errors.New("stitch.output_width and stitch.output_height must be positive")
	}
	if c.Calibration.FocalLength < 0 {
		return errors.New("calibration.focal_length must be >= 0")
	}
	return nil
}

func (c *Config) validateEncode() error {
	if c.Encode.CRF < 0 || c.Encode.CRF > 51 {
		return errors.New("encode.crf must be between 0 and 51")
	}
	for _, preset := range EncodePresets {
		if c.Encode.Preset == preset {
			return nil
		}
	}
	return fmt.Errorf("encode.preset must be one of %s", strings.Join(EncodePresets, ", "))
}

func (c *Config) validateArchive() error {
	if c.Archive.Enabled && strings.TrimSpace(c.Archive.Dir) == "" {
		return errors.New("archive.dir must be set when archive.enabled is true")
	}
	return nil
}

func (c *Config) validateDelivery() error {
	if !c.Delivery.Enabled {
		return nil
	}
	if c.Delivery.Bucket == "" {
		return errors.New("delivery.bucket must be set when delivery.enabled is true")
	}
	return nil
}

func (c *Config) validateIngest() error {
	if c.Ingest.Device != "" && strings.TrimSpace(c.Ingest.MountPoint) == "" {
		return errors.New("ingest.mount_point must be set when ingest.device is configured")
	}
	return nil
}
