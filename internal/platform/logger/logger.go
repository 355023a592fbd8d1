package logger

import (
	"io"
	"os"
	"strings"

	zerologadapter "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
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

func (l Level) zerolog() zerolog.Level {
	switch l {
	case Debug:
		return zerolog.DebugLevel
	case Warn:
		return zerolog.WarnLevel
	case Error:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
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

type Logger interface {
	With(fields map[string]any) Logger

	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

// ZeroLogger implementa Logger sobre zerolog.
type ZeroLogger struct {
	zl    zerolog.Logger
	level Level
}

type Options struct {
	Level  Level
	Format Format
	App    string
	// Out por defecto es os.Stderr (stdout queda libre para la salida del CLI).
	Out io.Writer
}

func New(opts Options) *ZeroLogger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	if opts.Format != FormatJSON {
		out = zerolog.ConsoleWriter{Out: out, NoColor: true}
	}

	ctx := zerolog.New(out).Level(opts.Level.zerolog()).With().Timestamp()
	if app := strings.TrimSpace(opts.App); app != "" {
		ctx = ctx.Str("app", app)
	}

	return &ZeroLogger{
		zl:    ctx.Logger(),
		level: opts.Level,
	}
}

// Nop descarta todo. Pensado para tests.
func Nop() *ZeroLogger {
	return &ZeroLogger{zl: zerolog.Nop(), level: Error}
}

func (l *ZeroLogger) With(fields map[string]any) Logger {
	if len(fields) == 0 {
		return l
	}
	clean := make(map[string]any, len(fields))
	for k, v := range fields {
		if strings.TrimSpace(k) == "" {
			continue
		}
		clean[k] = v
	}
	return &ZeroLogger{
		zl:    l.zl.With().Fields(clean).Logger(),
		level: l.level,
	}
}

func (l *ZeroLogger) Debug(msg string, fields map[string]any) { l.log(l.zl.Debug(), msg, fields) }
func (l *ZeroLogger) Info(msg string, fields map[string]any)  { l.log(l.zl.Info(), msg, fields) }
func (l *ZeroLogger) Warn(msg string, fields map[string]any)  { l.log(l.zl.Warn(), msg, fields) }
func (l *ZeroLogger) Error(msg string, fields map[string]any) { l.log(l.zl.Error(), msg, fields) }

func (l *ZeroLogger) log(ev *zerolog.Event, msg string, fields map[string]any) {
	// ev es nil cuando el nivel está deshabilitado.
	if ev == nil {
		return
	}
	for k, v := range fields {
		if strings.TrimSpace(k) == "" {
			continue
		}
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

// PgxTracer loguea las queries de pgx con el mismo logger.
// Si l no es un *ZeroLogger, el tracer no escribe nada.
func PgxTracer(l Logger) *tracelog.TraceLog {
	zl := zerolog.Nop()
	lvl := Error
	if z, ok := l.(*ZeroLogger); ok {
		zl = z.zl.With().Str("component", "pgx").Logger()
		lvl = z.level
	}
	return &tracelog.TraceLog{
		Logger:   zerologadapter.NewLogger(zl),
		LogLevel: pgxTraceLevel(lvl),
	}
}

func pgxTraceLevel(l Level) tracelog.LogLevel {
	switch l {
	case Debug:
		return tracelog.LogLevelDebug
	case Info:
		return tracelog.LogLevelInfo
	case Warn:
		return tracelog.LogLevelWarn
	default:
		return tracelog.LogLevelError
	}
}
