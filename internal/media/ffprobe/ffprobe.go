package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// runProbe executes the probe binary and returns its combined output. It is
// a package-level variable so tests can replace it with a stub.
var runProbe = func(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Client inspects media containers.
type Client interface {
	Inspect(ctx context.Context, path string) (*Result, error)
}

// CLI is a Client backed by the ffprobe binary.
type CLI struct {
	binary string
}

// NewCLI returns a CLI invoking the given binary, defaulting to "ffprobe".
func NewCLI(binary string) *CLI {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	return &CLI{binary: binary}
}

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
	raw     []byte
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Duration  string `json:"duration"`
	FrameRate string `json:"r_frame_rate"`
	Channels  int    `json:"channels"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	FormatName string `json:"format_name"`
}

// Inspect executes ffprobe against the provided path and decodes the JSON
// response.
func (c *CLI) Inspect(ctx context.Context, path string) (*Result, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("ffprobe inspect: empty path")
	}

	output, err := runProbe(ctx, c.binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	if err != nil {
		return nil, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(output)))
	}

	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return nil, fmt.Errorf("ffprobe parse: %w", err)
	}
	result.raw = append([]byte(nil), output...)
	return &result, nil
}

// RawJSON returns the raw ffprobe JSON payload.
func (r *Result) RawJSON() []byte {
	return append([]byte(nil), r.raw...)
}

// VideoStream returns the first video stream, or nil when the container
// carries none. A nil return is a normal outcome, not an error.
func (r *Result) VideoStream() *Stream {
	for i := range r.Streams {
		if strings.EqualFold(r.Streams[i].CodecType, "video") {
			return &r.Streams[i]
		}
	}
	return nil
}

// AudioStreamCount returns the number of audio streams discovered.
func (r *Result) AudioStreamCount() int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			count++
		}
	}
	return count
}

// Width returns the primary video stream width in pixels, or 0 without one.
func (r *Result) Width() int {
	if stream := r.VideoStream(); stream != nil {
		return stream.Width
	}
	return 0
}

// Height returns the primary video stream height in pixels, or 0 without one.
func (r *Result) Height() int {
	if stream := r.VideoStream(); stream != nil {
		return stream.Height
	}
	return 0
}

// Codec returns the primary video stream codec name, or "" without one.
func (r *Result) Codec() string {
	if stream := r.VideoStream(); stream != nil {
		return stream.CodecName
	}
	return ""
}

// Duration returns the container duration in seconds, or 0 when unavailable.
func (r *Result) Duration() float64 {
	return parseFloat(r.Format.Duration)
}

// FrameRate returns the primary video stream frame rate in frames per
// second, parsed from ffprobe's rational form ("30000/1001"), or 0 when no
// video stream exists or the field cannot be parsed.
func (r *Result) FrameRate() float64 {
	stream := r.VideoStream()
	if stream == nil {
		return 0
	}
	return parseRational(stream.FrameRate)
}

// SizeBytes returns the reported container size in bytes, or 0 when
// unavailable.
func (r *Result) SizeBytes() int64 {
	size := parseFloat(r.Format.Size)
	if size < 0 {
		return 0
	}
	return int64(size)
}

func parseRational(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	num, den, found := strings.Cut(value, "/")
	if !found {
		return parseFloat(value)
	}
	numerator, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return 0
	}
	denominator, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
	if err != nil || denominator == 0 {
		return 0
	}
	return numerator / denominator
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return parsed
}
