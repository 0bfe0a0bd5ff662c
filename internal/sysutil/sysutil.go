// Package sysutil holds tiny process-level helpers shared by the CLI and
// observability setup.
package sysutil

import (
	"strings"

	"github.com/rs/zerolog"
)

// ParseLogLevel maps a LOG_LEVEL value onto a zerolog level. Matching is
// case-insensitive, "warning" is accepted for warn, and blank or unknown
// values fall back to info.
func ParseLogLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel || lvl < zerolog.DebugLevel || lvl > zerolog.PanicLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// SetLogLevel applies ParseLogLevel(s) as the global zerolog level.
func SetLogLevel(s string) { zerolog.SetGlobalLevel(ParseLogLevel(s)) }

// FirstNonEmpty returns the first value that is not blank, unmodified.
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
