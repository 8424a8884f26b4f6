package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"meridian/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level            string
	Format           string
	OutputPaths      []string
	ErrorOutputPaths []string
	Development      bool
}

// New constructs a slog logger from opts. The console format renders
// single-line records for terminals and log files; json emits one object
// per record with ts/level/msg field names.
func New(opts Options) (*slog.Logger, error) {
	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(opts.Level))

	sink, err := openSink(
		withDefault(opts.OutputPaths, "stdout"),
		withDefault(opts.ErrorOutputPaths, "stderr"),
	)
	if err != nil {
		return nil, err
	}

	withCaller := opts.Development || levelVar.Level() <= slog.LevelDebug

	switch normalizeFormat(opts.Format) {
	case "json":
		return slog.New(newJSONHandler(sink, levelVar, withCaller)), nil
	case "console":
		return slog.New(newConsoleHandler(sink, levelVar, withCaller)), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
}

// NewFromConfig creates a logger using application config defaults. Output
// goes to stdout plus meridian.log under the configured log directory.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console"})
	}

	outputs := []string{"stdout"}
	errorOutputs := []string{"stderr"}
	if cfg.Paths.LogDir != "" {
		if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
		logPath := filepath.Join(cfg.Paths.LogDir, "meridian.log")
		outputs = append(outputs, logPath)
		errorOutputs = append(errorOutputs, logPath)
	}

	return New(Options{
		Level:            cfg.Logging.Level,
		Format:           cfg.Logging.Format,
		OutputPaths:      outputs,
		ErrorOutputPaths: errorOutputs,
	})
}

func normalizeFormat(format string) string {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		return "console"
	}
	return format
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error", "fatal":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func withDefault(paths []string, fallback string) []string {
	if len(paths) == 0 {
		return []string{fallback}
	}
	return paths
}

// openSink opens every distinct destination once and fans writes out to
// all of them. "stdout" and "stderr" name the process streams; anything
// else is a file path opened for append.
func openSink(groups ...[]string) (io.Writer, error) {
	seen := make(map[string]struct{})
	var writers []io.Writer

	for _, group := range groups {
		for _, path := range group {
			path = strings.TrimSpace(path)
			if path == "" {
				continue
			}
			if _, dup := seen[path]; dup {
				continue
			}
			seen[path] = struct{}{}

			w, err := openDestination(path)
			if err != nil {
				return nil, err
			}
			writers = append(writers, w)
		}
	}

	switch len(writers) {
	case 0:
		return os.Stdout, nil
	case 1:
		return writers[0], nil
	default:
		return io.MultiWriter(writers...), nil
	}
}

func openDestination(path string) (io.Writer, error) {
	switch path {
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}

func newJSONHandler(w io.Writer, lvl *slog.LevelVar, withCaller bool) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       lvl,
		AddSource:   withCaller,
		ReplaceAttr: jsonFieldNames,
	})
}

// jsonFieldNames maps slog's default keys onto the ts/level/msg names the
// log tooling expects, with UTC timestamps and short source references.
func jsonFieldNames(_ []string, attr slog.Attr) slog.Attr {
	switch attr.Key {
	case slog.TimeKey:
		attr.Key = "ts"
		if attr.Value.Kind() == slog.KindTime {
			attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339))
		}
	case slog.LevelKey:
		attr.Key = "level"
		attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
	case slog.MessageKey:
		attr.Key = "msg"
	case slog.SourceKey:
		if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
			attr.Value = slog.StringValue(fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
		}
	}
	return attr
}

// consoleHandler renders "ts LEVEL component: [stage] msg k=v" lines.
// Component and stage attributes are promoted into the prefix so pipeline
// output scans well.
type consoleHandler struct {
	mu         sync.Mutex
	writer     io.Writer
	level      *slog.LevelVar
	attrs      []slog.Attr
	groups     []string
	withCaller bool
}

func newConsoleHandler(w io.Writer, lvl *slog.LevelVar, withCaller bool) slog.Handler {
	return &consoleHandler{writer: w, level: lvl, withCaller: withCaller}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	if record.Level < h.level.Level() {
		return nil
	}

	fields := make([]field, 0, record.NumAttrs()+len(h.attrs))
	gatherFields(&fields, h.groups, h.attrs)
	record.Attrs(func(attr slog.Attr) bool {
		gatherField(&fields, h.groups, attr)
		return true
	})
	component, stage, fields := promote(fields)

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	var line strings.Builder
	line.Grow(128 + len(fields)*24)
	line.WriteString(ts.UTC().Format(time.RFC3339))
	line.WriteByte(' ')
	line.WriteString(levelTag(record.Level))
	line.WriteByte(' ')
	if component != "" {
		line.WriteString(component)
		line.WriteString(": ")
	}
	if stage != "" {
		line.WriteByte('[')
		line.WriteString(stage)
		line.WriteString("] ")
	}

	if msg := strings.TrimSpace(record.Message); msg != "" {
		line.WriteString(msg)
	} else {
		line.WriteString("(no message)")
	}

	if h.withCaller {
		if src := record.Source(); src != nil {
			fmt.Fprintf(&line, " [%s:%d]", filepath.Base(src.File), src.Line)
		}
	}

	for _, f := range fields {
		if f.name == "" {
			continue
		}
		line.WriteByte(' ')
		line.WriteString(f.name)
		line.WriteByte('=')
		line.WriteString(renderValue(f.value))
	}
	line.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.writer, line.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := h.clone()
	clone.attrs = append(clone.attrs, attrs...)
	return clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	clone := h.clone()
	clone.groups = append(clone.groups, name)
	return clone
}

func (h *consoleHandler) clone() *consoleHandler {
	return &consoleHandler{
		writer:     h.writer,
		level:      h.level,
		attrs:      append([]slog.Attr(nil), h.attrs...),
		groups:     append([]string(nil), h.groups...),
		withCaller: h.withCaller,
	}
}

type field struct {
	name  string
	value slog.Value
}

func gatherFields(dst *[]field, prefix []string, attrs []slog.Attr) {
	for _, attr := range attrs {
		gatherField(dst, prefix, attr)
	}
}

// gatherField resolves attr and flattens groups into dot-joined names.
func gatherField(dst *[]field, prefix []string, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	attr.Value = attr.Value.Resolve()
	if attr.Value.Kind() == slog.KindGroup {
		next := prefix
		if attr.Key != "" {
			next = append(append(make([]string, 0, len(prefix)+1), prefix...), attr.Key)
		}
		gatherFields(dst, next, attr.Value.Group())
		return
	}

	name := attr.Key
	if len(prefix) > 0 {
		if name != "" {
			name = strings.Join(prefix, ".") + "." + name
		} else {
			name = strings.Join(prefix, ".")
		}
	}
	*dst = append(*dst, field{name: name, value: attr.Value})
}

// promote pulls the first component and stage values out of the field
// list; repeats are dropped so the prefix never echoes as a key-value.
func promote(fields []field) (component, stage string, rest []field) {
	rest = fields[:0]
	for _, f := range fields {
		switch f.name {
		case FieldComponent:
			if component == "" {
				component = plainString(f.value)
			}
		case FieldStage:
			if stage == "" {
				stage = plainString(f.value)
			}
		default:
			rest = append(rest, f)
		}
	}
	return component, stage, rest
}

func plainString(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	default:
		return renderValue(v)
	}
}

// renderValue formats v for k=v output, quoting strings that would break
// single-line parsing.
func renderValue(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339)
	case slog.KindString:
		return maybeQuote(v.String())
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return maybeQuote(err.Error())
		}
		return maybeQuote(fmt.Sprint(v.Any()))
	default:
		return maybeQuote(v.String())
	}
}

func maybeQuote(s string) string {
	if s == "" {
		return `""`
	}
	for _, r := range s {
		if r <= ' ' || r == '=' || r == '"' {
			return strconv.Quote(s)
		}
	}
	return s
}

func levelTag(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
