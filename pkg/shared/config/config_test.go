package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policyvibes.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestNewConfigFromFile(t *testing.T) {
	path := writeConfig(t, `
logger:
  level: debug
  json_format: true
scan:
  engine: re2
  extra_skip_dirs: [vendor]
skills:
  paths: [./policy]
  disabled: [anthropic-credential-extraction]
report:
  format: sarif
  output: out.sarif
`)

	cfg, err := NewConfig(path)
	require.NoError(t, err)
	require.NoError(t, ValidateConfig(cfg))

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.True(t, GetBoolValue(cfg, "Logger.JSONFormat", false))
	assert.True(t, GetBoolValue(cfg, "Logger.DisableTime", true))
	assert.Equal(t, EngineRE2, cfg.Scan.Engine)
	assert.Equal(t, []string{"vendor"}, cfg.Scan.ExtraSkipDirs)
	assert.Equal(t, []string{"./policy"}, cfg.Skills.Paths)
	assert.Equal(t, []string{"anthropic-credential-extraction"}, cfg.Skills.Disabled)
	assert.Equal(t, FormatSarif, cfg.Report.Format)
	assert.Equal(t, "out.sarif", cfg.Report.Output)
}

func TestNewConfigMissingFile(t *testing.T) {
	t.Run("explicit path must exist", func(t *testing.T) {
		_, err := NewConfig(filepath.Join(t.TempDir(), "absent.yml"))
		assert.Error(t, err)
	})

	t.Run("implicit default may be absent", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("POLICYVIBES_CONFIG", "")

		cfg, err := NewConfig("")
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})
}

func TestNewConfigRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "scan:\n  engines: re2\n")
	_, err := NewConfig(path)
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(cfg *Config) {}},
		{name: "empty engine falls back", mutate: func(cfg *Config) { cfg.Scan.Engine = "" }},
		{name: "upper-case format", mutate: func(cfg *Config) { cfg.Report.Format = "JSON" }},
		{name: "unknown engine", mutate: func(cfg *Config) { cfg.Scan.Engine = "pcre" }, wantErr: true},
		{name: "unknown format", mutate: func(cfg *Config) { cfg.Report.Format = "html" }, wantErr: true},
		{name: "unknown level", mutate: func(cfg *Config) { cfg.Logger.Level = "verbose" }, wantErr: true},
		{name: "extension without dot", mutate: func(cfg *Config) { cfg.Scan.ExtraExtensions = []string{"go"} }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := ValidateConfig(cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}

	assert.Error(t, ValidateConfig(nil))
}

func TestSetThen(t *testing.T) {
	assert.Equal(t, "x", SetThen("", "x"))
	assert.Equal(t, "y", SetThen("y", "x"))
	assert.Equal(t, 3, SetThen(0, 3))
}
