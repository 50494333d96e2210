package config

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

const (
	// DefaultConfigFile is looked up in the working directory when no path is given.
	DefaultConfigFile = "policyvibes.yml"
	// DefaultReportFile is the name of the JSON report written next to the scanned tree.
	DefaultReportFile = "POLICYVIBES_REPORT.json"
)

type Config struct {
	Logger Logger `yaml:"logger"`
	Scan   Scan   `yaml:"scan"`
	Skills Skills `yaml:"skills"`
	Report Report `yaml:"report"`
}

type Logger struct {
	Level       string `yaml:"level"`
	JSONFormat  *bool  `yaml:"json_format"`
	DisableTime *bool  `yaml:"disable_time"`
}

// Scan holds pattern engine and walker settings.
type Scan struct {
	Engine          string   `yaml:"engine"`            // backtracking | re2
	ExtraSkipDirs   []string `yaml:"extra_skip_dirs"`   // appended to the skill scope policy
	ExtraExtensions []string `yaml:"extra_extensions"`  // appended to the skill scope policy
}

// Skills holds skill discovery settings.
type Skills struct {
	Paths    []string `yaml:"paths"`    // folders with declarative YAML skills
	Disabled []string `yaml:"disabled"` // skill names to leave out
}

type Report struct {
	Format  string `yaml:"format"` // text | json | sarif
	Output  string `yaml:"output"`
	NoColor bool   `yaml:"no_color"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Logger: Logger{Level: "info"},
		Scan:   Scan{Engine: EngineBacktracking},
		Report: Report{Format: FormatText},
	}
}

func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}

func LoadYAML(configPath string, data interface{}) error {
	if err := ValidateConfigPath(configPath); err != nil {
		return err
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	d.SetStrict(true)
	if err := d.Decode(data); err != nil {
		return err
	}

	return nil
}

// NewConfig loads the configuration from configPath on top of the defaults.
// An empty configPath falls back to POLICYVIBES_CONFIG and then to DefaultConfigFile;
// only the implicit default file is allowed to be missing.
func NewConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	explicit := true
	if configPath == "" {
		configPath = os.Getenv("POLICYVIBES_CONFIG")
	}
	if configPath == "" {
		configPath = DefaultConfigFile
		explicit = false
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) && !explicit {
		return config, nil
	}

	if err := LoadYAML(configPath, config); err != nil {
		return nil, fmt.Errorf("failed to load config %q: %w", configPath, err)
	}

	return config, nil
}
