package scanner

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/securevibes/policyvibes/internal/engine"
	"github.com/securevibes/policyvibes/internal/skills"
	_ "github.com/securevibes/policyvibes/internal/skills/all"
	"github.com/securevibes/policyvibes/pkg/shared/config"
)

// configScopeSkill names the synthetic skill carrying scope entries from configuration.
const configScopeSkill = "config-scope"

// Options holds command-line overrides applied on top of the configuration.
type Options struct {
	Engine        string   // Pattern engine, overrides scan.engine
	SkillPaths    []string // Added to skills.paths
	DisableSkills []string // Added to skills.disabled
	ExcludeNames  []string // File names never read directly under the scan root
	ExcludePaths  []string // Files never read in directory mode
}

// Prepare discovers skills, compiles the engine and returns a ready scanner.
func Prepare(cfg *config.Config, opts Options, logger hclog.Logger) (*Scanner, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	engineName := config.SetThen(opts.Engine, cfg.Scan.Engine)
	if err := config.ValidateEngine(engineName); err != nil {
		return nil, err
	}

	discoverOpts := skills.Options{
		Paths:    append(append([]string(nil), cfg.Skills.Paths...), opts.SkillPaths...),
		Disabled: append(append([]string(nil), cfg.Skills.Disabled...), opts.DisableSkills...),
	}
	if len(cfg.Scan.ExtraExtensions) > 0 || len(cfg.Scan.ExtraSkipDirs) > 0 {
		discoverOpts.Extra = append(discoverOpts.Extra, skills.NewScopeSkill(configScopeSkill, skills.Scope{
			Extensions: cfg.Scan.ExtraExtensions,
			SkipDirs:   cfg.Scan.ExtraSkipDirs,
		}))
	}

	registry := skills.Discover(discoverOpts, logger.Named("skill-registry"))
	if registry.Len() == 0 {
		logger.Warn("no skills available, nothing will be detected")
	}

	e, err := engine.Compile(registry.Skills(), engine.Options{Engine: engineName}, logger.Named("pattern-engine"))
	if err != nil {
		return nil, fmt.Errorf("failed to compile rules: %w", err)
	}

	return New(e, logger.Named("scanner")).ExcludeRootNames(opts.ExcludeNames...).Exclude(opts.ExcludePaths...), nil
}
