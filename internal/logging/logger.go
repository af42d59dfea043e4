package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/rs/zerolog"
	slogzerolog "github.com/samber/slog-zerolog/v2"
)

type Opts struct {
	Env   string
	Level string
	Out   io.Writer
}

// New builds an slog logger backed by zerolog. Development gets the console
// writer, anything else gets JSON lines.
func New(opts Opts) *slog.Logger {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	if isDevelopment(opts.Env) {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	zl := zerolog.New(out).With().Timestamp().Logger()

	handler := slogzerolog.Option{
		Level:  parseLevel(opts.Level),
		Logger: &zl,
	}.NewZerologHandler()

	return slog.New(handler)
}

// Setup installs the logger as the slog default and returns it.
func Setup(opts Opts) *slog.Logger {
	logger := New(opts)
	slog.SetDefault(logger)
	return logger
}

func isDevelopment(env string) bool {
	switch strings.ToLower(env) {
	case "", "dev", "development", "local":
		return true
	}
	return false
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
