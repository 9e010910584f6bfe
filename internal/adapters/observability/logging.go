package observability

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the process-wide logger. Dev environments get a
// human-friendly console writer at debug level; everything else emits JSON
// lines at info. Every entry carries the service tag so dashboard lines are
// filterable in shared log streams.
func NewLogger(env string) zerolog.Logger {
	var out io.Writer = os.Stdout
	level := zerolog.InfoLevel
	if env == "dev" || env == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		level = zerolog.DebugLevel
	}
	return zerolog.New(out).Level(level).
		With().Timestamp().Str("service", "review-dashboard").Logger()
}
