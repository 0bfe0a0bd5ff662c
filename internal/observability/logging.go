package observability

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-match-backend/internal/sysutil"
)

// SetupLogger installs the global zerolog logger. Every line carries the
// service name and version; pretty switches to the human-readable console
// writer for local development. Output defaults to stderr when w is nil.
func SetupLogger(w io.Writer, level string, pretty bool, service, version string) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	sysutil.SetLogLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	l := zerolog.New(w).With().
		Timestamp().
		Str("service", service).
		Str("version", sysutil.FirstNonEmpty(version, "dev")).
		Logger()
	log.Logger = l
	return l
}
