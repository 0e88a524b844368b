package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/guttosm/spimexpulse/config"
)

var (
	base zerolog.Logger
)

func init() {
	initWith(os.Stdout, config.LogConfig{Level: "info"})
}

// Init configures the global logger from cfg.
//
//   - Level: debug|info|warn|error (default: info)
//   - Pretty: console writer instead of JSON lines
func Init(cfg config.LogConfig) {
	initWith(os.Stdout, cfg)
}

func initWith(out io.Writer, cfg config.LogConfig) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	w := out
	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	base = zerolog.New(w).With().Timestamp().Logger().Level(parseLevel(cfg.Level))
}

// L returns the global logger. Call Init() once on startup; until then an
// info-level JSON logger writing to stdout is used.
func L() *zerolog.Logger {
	return &base
}

// With returns a child logger tagged with the given component name.
func With(component string) zerolog.Logger {
	return L().With().Str("component", component).Logger()
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error", "err":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
