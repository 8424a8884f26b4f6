package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"meridian/internal/fileutil"
	"meridian/internal/media/ffprobe"
	"meridian/internal/services"
)

var commandContext = exec.CommandContext

// stderrTailLines bounds how much collaborator output travels inside errors.
const stderrTailLines = 8

// Client prepares and finalizes video streams for the stitch pipeline.
type Client interface {
	Concat(ctx context.Context, inputs []string, output string) error
	Trim(ctx context.Context, input, output string, fromSeconds float64) error
	AdjustSync(ctx context.Context, front, back string, offsetFrames int, workDir string) (string, string, error)
	ExtractFrame(ctx context.Context, input, output string, atSeconds float64) error
	Encode(ctx context.Context, input, output string, crf int, preset string) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithProbe injects the stream inspector used for frame-to-second conversion.
func WithProbe(probe ffprobe.Client) Option {
	return func(c *CLI) {
		if probe != nil {
			c.probe = probe
		}
	}
}

// CLI wraps the ffmpeg command-line tool.
type CLI struct {
	binary string
	probe  ffprobe.Client
}

// New constructs a CLI client using defaults.
func New(opts ...Option) *CLI {
	cli := &CLI{
		binary: "ffmpeg",
		probe:  ffprobe.NewCLI(""),
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Concat joins the ordered input files into output without re-encoding. A
// single input is copied byte-identically; several go through the concat
// demuxer with a temporary playlist that is removed on every path.
func (c *CLI) Concat(ctx context.Context, inputs []string, output string) error {
	if len(inputs) == 0 {
		return services.Wrap(services.ErrConcatenation, "ffmpeg", "concat", "no input files", nil)
	}
	if strings.TrimSpace(output) == "" {
		return services.Wrap(services.ErrConcatenation, "ffmpeg", "concat", "output path required", nil)
	}

	if len(inputs) == 1 {
		if err := fileutil.CopyFileVerified(inputs[0], output); err != nil {
			return services.Wrap(services.ErrConcatenation, "ffmpeg", "concat", "copy single segment", err)
		}
		return nil
	}

	playlist := filepath.Join(filepath.Dir(output), "concat_list.txt")
	var list strings.Builder
	for _, input := range inputs {
		absolute, err := filepath.Abs(input)
		if err != nil {
			return services.Wrap(services.ErrConcatenation, "ffmpeg", "concat", "resolve segment path", err)
		}
		fmt.Fprintf(&list, "file '%s'\n", absolute)
	}
	if err := os.WriteFile(playlist, []byte(list.String()), 0o644); err != nil {
		return services.Wrap(services.ErrConcatenation, "ffmpeg", "concat", "write playlist", err)
	}
	defer os.Remove(playlist)

	if tail, err := c.run(ctx, "-y", "-f", "concat", "-safe", "0", "-i", playlist, "-c", "copy", output); err != nil {
		return services.Wrap(services.ErrConcatenation, "ffmpeg", "concat", tail, err)
	}
	return nil
}

// Trim writes a lossless stream-copy cut of input starting at fromSeconds.
func (c *CLI) Trim(ctx context.Context, input, output string, fromSeconds float64) error {
	if fromSeconds < 0 {
		return services.Wrap(services.ErrSyncAdjust, "ffmpeg", "trim", "negative start position", nil)
	}
	if tail, err := c.run(ctx, "-y", "-ss", formatSeconds(fromSeconds), "-i", input, "-c", "copy", output); err != nil {
		return services.Wrap(services.ErrSyncAdjust, "ffmpeg", "trim", tail, err)
	}
	return nil
}

// AdjustSync aligns the two camera streams by trimming the head of whichever
// one starts early. The offset is expressed in frames and converted to
// seconds with the front stream's probed frame rate; a positive offset trims
// the back stream, a negative one the front. Offset zero copies both inputs
// unmodified. Every branch is lossless.
func (c *CLI) AdjustSync(ctx context.Context, front, back string, offsetFrames int, workDir string) (string, string, error) {
	frontOut := filepath.Join(workDir, "front_synced.mp4")
	backOut := filepath.Join(workDir, "back_synced.mp4")

	if offsetFrames == 0 {
		if err := fileutil.CopyFileVerified(front, frontOut); err != nil {
			return "", "", services.Wrap(services.ErrSyncAdjust, "ffmpeg", "adjust_sync", "copy front stream", err)
		}
		if err := fileutil.CopyFileVerified(back, backOut); err != nil {
			return "", "", services.Wrap(services.ErrSyncAdjust, "ffmpeg", "adjust_sync", "copy back stream", err)
		}
		return frontOut, backOut, nil
	}

	info, err := c.probe.Inspect(ctx, front)
	if err != nil {
		return "", "", services.Wrap(services.ErrSyncAdjust, "ffmpeg", "adjust_sync", "probe front stream", err)
	}
	fps := info.FrameRate()
	if fps <= 0 {
		return "", "", services.Wrap(services.ErrSyncAdjust, "ffmpeg", "adjust_sync", "front stream reports no frame rate", nil)
	}
	offsetSeconds := float64(offsetFrames) / fps

	if offsetFrames > 0 {
		if err := fileutil.CopyFileVerified(front, frontOut); err != nil {
			return "", "", services.Wrap(services.ErrSyncAdjust, "ffmpeg", "adjust_sync", "copy front stream", err)
		}
		if err := c.Trim(ctx, back, backOut, offsetSeconds); err != nil {
			return "", "", err
		}
		return frontOut, backOut, nil
	}

	if err := c.Trim(ctx, front, frontOut, -offsetSeconds); err != nil {
		return "", "", err
	}
	if err := fileutil.CopyFileVerified(back, backOut); err != nil {
		return "", "", services.Wrap(services.ErrSyncAdjust, "ffmpeg", "adjust_sync", "copy back stream", err)
	}
	return frontOut, backOut, nil
}

// ExtractFrame exports a single frame at atSeconds as an image file. The
// output format follows the output extension; the pipeline uses PNG.
func (c *CLI) ExtractFrame(ctx context.Context, input, output string, atSeconds float64) error {
	if atSeconds < 0 {
		atSeconds = 0
	}
	if tail, err := c.run(ctx, "-y", "-ss", formatSeconds(atSeconds), "-i", input, "-frames:v", "1", output); err != nil {
		return services.Wrap(services.ErrExternalTool, "ffmpeg", "extract_frame", tail, err)
	}
	return nil
}

// Encode produces the final H.264/AAC render. Lower crf means higher
// quality; preset is one of the libx264 speed presets.
func (c *CLI) Encode(ctx context.Context, input, output string, crf int, preset string) error {
	preset = strings.TrimSpace(preset)
	if preset == "" {
		preset = "medium"
	}
	args := []string{
		"-y", "-i", input,
		"-c:v", "libx264",
		"-crf", strconv.Itoa(crf),
		"-preset", preset,
		"-c:a", "aac",
		"-movflags", "+faststart",
		output,
	}
	if tail, err := c.run(ctx, args...); err != nil {
		return services.Wrap(services.ErrEncode, "ffmpeg", "encode", tail, err)
	}
	return nil
}

// run executes ffmpeg and returns the captured stderr tail on failure.
func (c *CLI) run(ctx context.Context, args ...string) (string, error) {
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return stderrTail(stderr.String()), err
	}
	return "", nil
}

// stderrTail keeps the last few lines of collaborator output so wrapped
// errors stay bounded.
func stderrTail(output string) string {
	output = strings.TrimSpace(output)
	if output == "" {
		return ""
	}
	lines := strings.Split(output, "\n")
	if len(lines) > stderrTailLines {
		lines = lines[len(lines)-stderrTailLines:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', -1, 64)
}

var _ Client = (*CLI)(nil)
