package shared

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// SetupLogger configures a charmbracelet logger writing to w
func SetupLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})
}

// DebugLevel picks debug over level when debug is set
func DebugLevel(level log.Level, debug bool) log.Level {
	if debug {
		return log.DebugLevel
	}
	return level
}
