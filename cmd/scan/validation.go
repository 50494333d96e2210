package scan

import (
	"fmt"
	"strings"

	"github.com/securevibes/policyvibes/pkg/shared/config"
)

// ValidateScanArgs validates the arguments provided to the scan command and
// fills format and engine from the configuration when the flags are empty.
func ValidateScanArgs(options *RunOptionsScan, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("exactly one target path must be specified")
	}
	if strings.TrimSpace(args[0]) == "" {
		return fmt.Errorf("the target path must not be empty")
	}

	options.Format = config.SetThen(strings.ToLower(strings.TrimSpace(options.Format)), cfg.Report.Format)
	options.Format = config.SetThen(options.Format, config.FormatText)
	if err := config.ValidateFormat(options.Format); err != nil {
		return err
	}

	options.Engine = config.SetThen(strings.ToLower(strings.TrimSpace(options.Engine)), cfg.Scan.Engine)
	if err := config.ValidateEngine(config.SetThen(options.Engine, config.EngineBacktracking)); err != nil {
		return err
	}

	options.OutputPath = config.SetThen(options.OutputPath, cfg.Report.Output)
	if options.Format == config.FormatText && options.OutputPath != "" {
		return fmt.Errorf("the 'output' flag requires the json or sarif format")
	}
	options.NoColor = options.NoColor || cfg.Report.NoColor

	for _, name := range options.DisableSkills {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("the 'disable-skill' flag must name a skill")
		}
	}
	return nil
}
