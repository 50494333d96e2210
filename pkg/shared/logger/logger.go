package logger

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/securevibes/policyvibes/pkg/shared/config"
)

// NewLogger creates a named hclog.Logger configured from cfg.
// Logs go to stderr so that reports printed on stdout stay machine readable.
func NewLogger(cfg *config.Config, name string) hclog.Logger {
	return newLogger(cfg, name, os.Stderr)
}

func newLogger(cfg *config.Config, name string, output io.Writer) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:        name,
		DisableTime: config.GetBoolValue(cfg, "Logger.DisableTime", true),
		JSONFormat:  config.GetBoolValue(cfg, "Logger.JSONFormat", false),
		Output:      output,
		Level:       determineLogLevel(cfg),
	})
}

// determineLogLevel prefers POLICYVIBES_LOG_LEVEL over the configuration and defaults to INFO.
func determineLogLevel(cfg *config.Config) hclog.Level {
	if logLevelEnv := os.Getenv("POLICYVIBES_LOG_LEVEL"); logLevelEnv != "" {
		return parseLogLevel(strings.ToUpper(logLevelEnv))
	}
	if cfg == nil {
		return hclog.Info
	}
	return parseLogLevel(strings.ToUpper(cfg.Logger.Level))
}

func parseLogLevel(levelStr string) hclog.Level {
	switch levelStr {
	case "TRACE":
		return hclog.Trace
	case "DEBUG":
		return hclog.Debug
	case "WARN":
		return hclog.Warn
	case "ERROR":
		return hclog.Error
	default:
		return hclog.Info
	}
}
