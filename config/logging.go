package config

import (
	"strings"

	"github.com/pion/logging"
)

// LoggerFactory builds the process-wide leveled logger factory. Unknown
// levels fall back to info.
func (s Server) LoggerFactory() *logging.DefaultLoggerFactory {
	lf := logging.NewDefaultLoggerFactory()
	lf.DefaultLogLevel = ParseLogLevel(s.LogLevel)
	return lf
}

func ParseLogLevel(level string) logging.LogLevel {
	switch strings.ToLower(level) {
	case "disabled", "off":
		return logging.LogLevelDisabled
	case "error":
		return logging.LogLevelError
	case "warn", "warning":
		return logging.LogLevelWarn
	case "debug":
		return logging.LogLevelDebug
	case "trace":
		return logging.LogLevelTrace
	}
	return logging.LogLevelInfo
}
