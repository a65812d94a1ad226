package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config opciones del logger.
type Config struct {
	Env     string // development: consola legible; cualquier otro valor: JSON
	Level   string // trace, debug, info, warn, error
	Service string // se agrega como campo "service" si no está vacío
}

// Logger envuelve zerolog para inyectarlo en casos de uso y handlers.
type Logger struct {
	zl zerolog.Logger
}

// New crea el logger del proceso y redirige el logger global de zerolog.
func New(cfg Config) *Logger {
	var w io.Writer = os.Stdout
	if cfg.Env == "development" {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.TimeOnly}
	}
	l := build(w, cfg.Level, cfg.Service)
	log.Logger = l.zl
	return l
}

// NewWriter crea un logger JSON sobre w sin tocar el global (tests, CLI).
func NewWriter(w io.Writer, level string) *Logger {
	return build(w, level, "")
}

// Nop descarta todo.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func build(w io.Writer, level, service string) *Logger {
	ctx := zerolog.New(w).Level(parseLevel(level)).With().Timestamp()
	if service != "" {
		ctx = ctx.Str("service", service)
	}
	return &Logger{zl: ctx.Logger()}
}

// parseLevel usa info ante un nivel vacío o desconocido.
func parseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Component devuelve un sublogger con el campo "component".
func (l *Logger) Component(name string) *Logger {
	return &Logger{zl: l.zl.With().Str("component", name).Logger()}
}

func (l *Logger) Trace() *zerolog.Event { return l.zl.Trace() }
func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.zl.Fatal() }

// Zerolog expone el logger interno.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.zl
}
