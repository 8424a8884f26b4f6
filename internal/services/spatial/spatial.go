package spatial

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"strings"

	"meridian/internal/services"
)

var commandContext = exec.CommandContext

// DefaultProjection is stamped when a render carries no explicit projection.
const DefaultProjection = "equirectangular"

// Metadata describes the spherical layout stamped onto a finished render.
type Metadata struct {
	Projection  string
	Title       string
	Description string
}

// Defaulted returns a copy with the projection defaulted for 360 output.
func (m Metadata) Defaulted() Metadata {
	if strings.TrimSpace(m.Projection) == "" {
		m.Projection = DefaultProjection
	}
	return m
}

// Client stamps spherical metadata onto finished renders.
type Client interface {
	InjectSpherical(ctx context.Context, file string, meta Metadata) error
	MakeCompatible(ctx context.Context, input, output string) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithExifTool overrides the exiftool binary name.
func WithExifTool(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.exiftool = binary
		}
	}
}

// WithFFmpeg overrides the ffmpeg binary name used for the compatibility remux.
func WithFFmpeg(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.ffmpeg = binary
		}
	}
}

// CLI drives exiftool and ffmpeg for metadata work.
type CLI struct {
	exiftool string
	ffmpeg   string
}

// New constructs a CLI client using defaults.
func New(opts ...Option) *CLI {
	cli := &CLI{exiftool: "exiftool", ffmpeg: "ffmpeg"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// InjectSpherical writes XMP-GSpherical tags in place. Failures carry the
// metadata class, which the pipeline treats as warn-and-continue: the render
// itself already stands.
func (c *CLI) InjectSpherical(ctx context.Context, file string, meta Metadata) error {
	meta = meta.Defaulted()
	args := []string{
		"-overwrite_original",
		"-XMP-GSpherical:Spherical=true",
		"-XMP-GSpherical:Stitched=true",
		"-XMP-GSpherical:ProjectionType=" + meta.Projection,
		"-XMP-GSpherical:StitchingSoftware=meridian",
	}
	if title := strings.TrimSpace(meta.Title); title != "" {
		args = append(args, "-Title="+title)
	}
	if description := strings.TrimSpace(meta.Description); description != "" {
		args = append(args, "-Description="+description)
	}
	args = append(args, file)

	if tail, err := run(ctx, c.exiftool, args...); err != nil {
		return services.Wrap(services.ErrMetadata, "spatial", "inject", tail, err)
	}
	return nil
}

// MakeCompatible remuxes input into output with spherical stream metadata
// that strict players accept. Unlike injection this produces the delivered
// artifact, so failures are fatal to the run.
func (c *CLI) MakeCompatible(ctx context.Context, input, output string) error {
	args := []string{
		"-y", "-i", input,
		"-c", "copy",
		"-metadata:s:v:0", "spherical=true",
		"-metadata:s:v:0", "stereo=monoscopic",
		"-metadata:s:v:0", "projection=" + DefaultProjection,
		"-movflags", "+faststart",
		output,
	}
	if tail, err := run(ctx, c.ffmpeg, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "spatial", "compat_remux", tail, err)
	}
	return nil
}

func run(ctx context.Context, binary string, args ...string) (string, error) {
	cmd := commandContext(ctx, binary, args...) //nolint:gosec
	var output bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &output
	if err := cmd.Run(); err != nil {
		return strings.TrimSpace(output.String()), err
	}
	return "", nil
}

var _ Client = (*CLI)(nil)
