package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"MyFinance/config"

	"github.com/rs/zerolog"
)

var log = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Init configures the process wide logger. Development gets a console writer,
// everything else gets JSON lines on stdout.
func Init(cfg *config.Config) {
	var out io.Writer = os.Stdout
	if !cfg.IsProduction() {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Log.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	log = zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("app", cfg.App.Name).
		Str("env", cfg.App.Environment).
		Logger()
}

// SetOutput replaces the sink, mostly for tests.
func SetOutput(w io.Writer) {
	log = log.Output(w)
}

func Logger() *zerolog.Logger {
	return &log
}

func Debug() *zerolog.Event {
	return log.Debug()
}

func Info() *zerolog.Event {
	return log.Info()
}

func Warn() *zerolog.Event {
	return log.Warn()
}

func Error() *zerolog.Event {
	return log.Error()
}

func Fatal() *zerolog.Event {
	return log.Fatal()
}
