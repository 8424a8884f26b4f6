package config

const (
	defaultWorkDir             = "~/.local/share/meridian/work"
	defaultOutputDir           = "~/renders"
	defaultLogDir              = "~/.local/share/meridian/logs"
	defaultLogRetentionDays    = 60
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultFootageExtension    = ".mp4"
	defaultFeatherWidth        = 50
	defaultOutputWidth         = 3840
	defaultOutputHeight        = 1920
	defaultEncodeCRF           = 23
	defaultEncodePreset        = "medium"
	defaultMetadataTitle       = "Meridian 360 Render"
	defaultMetadataDescription = "Equirectangular 360-degree video stitched by Meridian"
	defaultIngestSettleSeconds = 5
	defaultDeliveryRegion      = "us-east-1"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:   defaultWorkDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Footage: Footage{
			Extension: defaultFootageExtension,
		},
		Stitch: Stitch{
			FeatherWidth: defaultFeatherWidth,
			OutputWidth:  defaultOutputWidth,
			OutputHeight: defaultOutputHeight,
		},
		Encode: Encode{
			CRF:    defaultEncodeCRF,
			Preset: defaultEncodePreset,
		},
		Metadata: Metadata{
			Enabled:     true,
			Title:       defaultMetadataTitle,
			Description: defaultMetadataDescription,
		},
		Delivery: Delivery{
			Region: defaultDeliveryRegion,
		},
		Ingest: Ingest{
			SettleSeconds: defaultIngestSettleSeconds,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
