package server

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cognifloe/control-plane/internal/config"
)

// SetupLogging configures the global zerolog logger. Format "json" writes
// raw JSON lines to w; anything else uses a console writer. Unknown levels
// fall back to info.
func SetupLogging(w io.Writer, lc config.LogConfig) {
	if w == nil {
		w = os.Stderr
	}
	level, err := zerolog.ParseLevel(lc.Level)
	if err != nil || lc.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if lc.Format == "json" {
		zerolog.TimeFieldFormat = time.RFC3339
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
		return
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339})
}
