package logger

import (
	"io"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return Debug
	case "info", "":
		return Info
	case "warn", "warning":
		return Warn
	case "error":
		return Error
	default:
		return Info
	}
}

func (l Level) String() string {
	switch l {
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warn:
		return "warn"
	case Error:
		return "error"
	default:
		return "info"
	}
}

func (l Level) zap() zapcore.Level {
	switch l {
	case Debug:
		return zapcore.DebugLevel
	case Warn:
		return zapcore.WarnLevel
	case Error:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	default:
		return FormatText
	}
}

// Logger es la interfaz que usan dominio y adapters.
// Los campos van como map para no acoplar a zap fuera de este paquete.
type Logger interface {
	With(fields map[string]any) Logger

	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)

	Sync() error
}

type Options struct {
	Level  Level
	Format Format
	App    string

	// Output nil => stdout.
	Output io.Writer
}

// ZapLogger implementa Logger sobre un *zap.SugaredLogger.
type ZapLogger struct {
	z *zap.SugaredLogger
}

func New(opts Options) Logger {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "ts"
	enc.MessageKey = "msg"
	enc.EncodeTime = zapcore.RFC3339NanoTimeEncoder

	var encoder zapcore.Encoder
	switch opts.Format {
	case FormatJSON:
		encoder = zapcore.NewJSONEncoder(enc)
	default:
		enc.EncodeLevel = zapcore.LowercaseLevelEncoder
		encoder = zapcore.NewConsoleEncoder(enc)
	}

	var out io.Writer = os.Stdout
	if opts.Output != nil {
		out = opts.Output
	}
	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(out)), zap.NewAtomicLevelAt(opts.Level.zap()))
	l := NewFromCore(core)

	if app := strings.TrimSpace(opts.App); app != "" {
		l = l.With(map[string]any{"app": app})
	}
	return l
}

// NewFromCore permite inyectar un core (p.ej. zaptest/observer en tests).
func NewFromCore(core zapcore.Core) Logger {
	return &ZapLogger{z: zap.New(core).Sugar()}
}

// NewFromEnv crea logger desde env:
// - LOG_LEVEL=debug|info|warn|error (default info)
// - LOG_FORMAT=text|json (default text)
// - APP_NAME=pedigree-genetics (opcional)
func NewFromEnv() Logger {
	return New(Options{
		Level:  ParseLevel(os.Getenv("LOG_LEVEL")),
		Format: ParseFormat(os.Getenv("LOG_FORMAT")),
		App:    os.Getenv("APP_NAME"),
	})
}

// Nop descarta todo. Útil en tests y en el CLI.
func Nop() Logger {
	return &ZapLogger{z: zap.NewNop().Sugar()}
}

func (l *ZapLogger) With(fields map[string]any) Logger {
	kv := toKeysAndValues(fields)
	if len(kv) == 0 {
		return l
	}
	return &ZapLogger{z: l.z.With(kv...)}
}

func (l *ZapLogger) Debug(msg string, fields map[string]any) { l.z.Debugw(msg, toKeysAndValues(fields)...) }
func (l *ZapLogger) Info(msg string, fields map[string]any)  { l.z.Infow(msg, toKeysAndValues(fields)...) }
func (l *ZapLogger) Warn(msg string, fields map[string]any)  { l.z.Warnw(msg, toKeysAndValues(fields)...) }
func (l *ZapLogger) Error(msg string, fields map[string]any) { l.z.Errorw(msg, toKeysAndValues(fields)...) }

func (l *ZapLogger) Sync() error {
	return l.z.Sync()
}

// toKeysAndValues ordena las keys para salida estable (útil en tests/logs).
func toKeysAndValues(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if strings.TrimSpace(k) == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]any, 0, len(keys)*2)
	for _, k := range keys {
		out = append(out, k, fields[k])
	}
	return out
}
