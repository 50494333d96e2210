package logger

import (
	"bytes"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"

	"github.com/securevibes/policyvibes/pkg/shared/config"
)

func TestDetermineLogLevel(t *testing.T) {
	t.Setenv("POLICYVIBES_LOG_LEVEL", "")

	cfg := config.DefaultConfig()
	assert.Equal(t, hclog.Info, determineLogLevel(cfg))
	assert.Equal(t, hclog.Info, determineLogLevel(nil))

	cfg.Logger.Level = "debug"
	assert.Equal(t, hclog.Debug, determineLogLevel(cfg))

	t.Setenv("POLICYVIBES_LOG_LEVEL", "error")
	assert.Equal(t, hclog.Error, determineLogLevel(cfg))
}

func TestParseLogLevelUnknownDefaultsToInfo(t *testing.T) {
	assert.Equal(t, hclog.Info, parseLogLevel("LOUD"))
	assert.Equal(t, hclog.Trace, parseLogLevel("TRACE"))
	assert.Equal(t, hclog.Warn, parseLogLevel("WARN"))
}

func TestNewLoggerJSONOutput(t *testing.T) {
	t.Setenv("POLICYVIBES_LOG_LEVEL", "")
	enabled := true
	cfg := config.DefaultConfig()
	cfg.Logger.JSONFormat = &enabled

	var buf bytes.Buffer
	l := newLogger(cfg, "core-scan", &buf)
	l.Info("scan finished", "files", 3)

	assert.Contains(t, buf.String(), `"@module":"core-scan"`)
	assert.Contains(t, buf.String(), `"files":3`)
}
