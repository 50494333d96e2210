package config

import (
	"fmt"
	"strings"
)

const (
	EngineBacktracking = "backtracking"
	EngineRE2          = "re2"

	FormatText  = "text"
	FormatJSON  = "json"
	FormatSarif = "sarif"
)

// ValidateConfig checks if the global configurations have valid values.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("YAML global config: configuration object is nil")
	}
	if err := ValidateLoggerConfig(&cfg.Logger); err != nil {
		return fmt.Errorf("YAML global config: logger directive is invalid: %w", err)
	}
	if err := ValidateScanConfig(&cfg.Scan); err != nil {
		return fmt.Errorf("YAML global config: scan directive is invalid: %w", err)
	}
	if err := ValidateReportConfig(&cfg.Report); err != nil {
		return fmt.Errorf("YAML global config: report directive is invalid: %w", err)
	}
	return nil
}

// ValidateLoggerConfig checks the logger level name.
func ValidateLoggerConfig(loggerConfig *Logger) error {
	if loggerConfig == nil {
		return fmt.Errorf("logger configuration is nil")
	}
	switch strings.ToUpper(loggerConfig.Level) {
	case "", "TRACE", "DEBUG", "INFO", "WARN", "ERROR":
		return nil
	default:
		return fmt.Errorf("unsupported log level %q", loggerConfig.Level)
	}
}

// ValidateScanConfig normalises and checks the engine name.
func ValidateScanConfig(scanConfig *Scan) error {
	if scanConfig == nil {
		return fmt.Errorf("scan configuration is nil")
	}
	scanConfig.Engine = SetThen(strings.ToLower(strings.TrimSpace(scanConfig.Engine)), EngineBacktracking)
	if err := ValidateEngine(scanConfig.Engine); err != nil {
		return err
	}
	for _, ext := range scanConfig.ExtraExtensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extension %q must start with a dot", ext)
		}
	}
	return nil
}

// ValidateReportConfig normalises and checks the report format.
func ValidateReportConfig(reportConfig *Report) error {
	if reportConfig == nil {
		return fmt.Errorf("report configuration is nil")
	}
	reportConfig.Format = SetThen(strings.ToLower(strings.TrimSpace(reportConfig.Format)), FormatText)
	return ValidateFormat(reportConfig.Format)
}

// ValidateEngine reports whether name is a known pattern engine.
func ValidateEngine(name string) error {
	switch name {
	case EngineBacktracking, EngineRE2:
		return nil
	default:
		return fmt.Errorf("unsupported engine %q, expected %q or %q", name, EngineBacktracking, EngineRE2)
	}
}

// ValidateFormat reports whether name is a known report format.
func ValidateFormat(name string) error {
	switch name {
	case FormatText, FormatJSON, FormatSarif:
		return nil
	default:
		return fmt.Errorf("unsupported report format %q", name)
	}
}
