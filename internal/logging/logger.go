package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Options configures New. Dir, when non-empty, routes output through a
// rotating file writer instead of stderr.
type Options struct {
	Level  string // debug, info, warn, error, fatal
	Format string // "text" or "json"
	Dir    string

	// FileName names the active log file within Dir. Defaults to
	// "mosaic.log" when empty.
	FileName string

	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// New builds a zerolog.Logger per Options: a rotating file writer when
// Dir is set, console-formatted or raw JSON depending on Format, and the
// parsed Level as its threshold. The returned rotator (nil when logging
// to stderr) must be closed on shutdown.
func New(opts Options) (zerolog.Logger, *LogRotator, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}

	var out io.Writer = os.Stderr
	var rotator *LogRotator
	if opts.Dir != "" {
		rotator, err = NewLogRotator(opts.Dir, opts.FileName, opts.MaxSizeMB, opts.MaxBackups, opts.MaxAgeDays, opts.Compress)
		if err != nil {
			return zerolog.Logger{}, nil, err
		}
		out = rotator
	}

	if strings.EqualFold(opts.Format, "text") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "2006-01-02 15:04:05", NoColor: opts.Dir != ""}
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return logger, rotator, nil
}
