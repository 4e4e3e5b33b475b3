package telemetry

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type LogConfig struct {
	Service string
	Level   string
	Pretty  bool
}

// NewLogger writes JSON lines to w, or a console layout when Pretty is set.
// Unknown levels fall back to info.
func NewLogger(w io.Writer, cfg LogConfig) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(w).Level(level).With().Timestamp()
	if cfg.Service != "" {
		logger = logger.Str("service", cfg.Service)
	}
	return logger.Logger()
}
