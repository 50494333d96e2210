package scan

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/securevibes/policyvibes/internal/scanner"
	"github.com/securevibes/policyvibes/pkg/shared"
	"github.com/securevibes/policyvibes/pkg/shared/config"
	"github.com/securevibes/policyvibes/pkg/shared/errors"
)

// RunOptionsScan holds the arguments of the scan and watch commands.
type RunOptionsScan struct {
	Format        string
	OutputPath    string
	Engine        string
	SkillsDirs    []string
	DisableSkills []string
	NoColor       bool
}

// Global variables for configuration and command arguments
var (
	AppConfig   *config.Config
	logger      hclog.Logger
	scanOptions RunOptionsScan

	exampleScanUsage = `  # Scan the current directory and print findings
  policyvibes scan .

  # Scan a repository and write a JSON report into it
  policyvibes scan --format json --output /path/to/repo /path/to/repo

  # Scan with the linear-time engine and produce SARIF for code scanning
  policyvibes scan -e re2 -f sarif -o results.sarif /path/to/repo

  # Stream the JSON report to another tool
  policyvibes scan -f json -o - /path/to/repo | jq .summary

  # Load additional YAML skills and leave a built-in one out
  policyvibes scan --skills-dir ./skills --disable-skill anthropic-credential-extraction .`
)

// ScanCmd represents the command for scan command.
var ScanCmd = &cobra.Command{
	Use:                   "scan [--format/-f FORMAT] [--output/-o PATH] [--engine/-e ENGINE] [--skills-dir DIR]... [--disable-skill NAME]... [--no-color] PATH",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleScanUsage,
	Short:                 "Scan a file or directory for terms-of-service violations",
	Long: `Scan a file or directory for terms-of-service violations.

Exit codes:
  0  no violations found
  1  active or potential violations found
  2  the scan could not run`,
	RunE: runScanCommand,
}

// Init initializes the global configuration variable and the command logger.
func Init(cfg *config.Config, l hclog.Logger) {
	AppConfig = cfg
	logger = l
}

func runScanCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !shared.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}
	return executeScan(cmd.OutOrStdout(), &scanOptions, args)
}

// executeScan runs one scan and emits its report. The returned error carries the exit code.
func executeScan(out io.Writer, options *RunOptionsScan, args []string) error {
	cfg, l := resolveDefaults(AppConfig, logger)

	if err := ValidateScanArgs(options, cfg, args); err != nil {
		l.Error("invalid scan arguments", "error", err)
		return errors.NewCommandError(fmt.Errorf("invalid scan arguments: %w", err), errors.ExitError)
	}

	if _, err := PinOutputPath(options); err != nil {
		l.Error("invalid output path", "error", err)
		return errors.NewCommandError(err, errors.ExitError)
	}

	s, err := Prepare(cfg, options, l)
	if err != nil {
		l.Error("failed to prepare scanner", "error", err)
		return errors.NewCommandError(fmt.Errorf("failed to prepare scanner: %w", err), errors.ExitError)
	}

	result, err := s.Scan(args[0])
	if err != nil {
		l.Error("scan failed", "error", err)
		return errors.NewCommandError(fmt.Errorf("scan failed: %w", err), errors.ExitError)
	}

	rep, err := Emit(out, result, s, options, l)
	if err != nil {
		l.Error("failed to write report", "error", err)
		return errors.NewCommandError(fmt.Errorf("failed to write report: %w", err), errors.ExitError)
	}

	l.Info("scan completed",
		"files_scanned", rep.Summary.FilesScanned,
		"active_violations", rep.Summary.ActiveViolations,
		"potential_violations", rep.Summary.PotentialViolations,
	)
	if rep.HasViolations() {
		return errors.NewCommandError(
			fmt.Errorf("%d violation(s) found", rep.Summary.ActiveViolations+rep.Summary.PotentialViolations),
			errors.ExitViolations,
		)
	}
	return nil
}

// resolveDefaults substitutes defaults for a command that was not initialised.
func resolveDefaults(cfg *config.Config, l hclog.Logger) (*config.Config, hclog.Logger) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if l == nil {
		l = hclog.NewNullLogger()
	}
	return cfg, l
}

// Prepare builds the scanner for options on top of cfg. The report file of
// options is never scanned; call PinOutputPath first so it is absolute.
func Prepare(cfg *config.Config, options *RunOptionsScan, l hclog.Logger) (*scanner.Scanner, error) {
	return scanner.Prepare(cfg, scanner.Options{
		Engine:        options.Engine,
		SkillPaths:    options.SkillsDirs,
		DisableSkills: options.DisableSkills,
		ExcludeNames:  ReportFileNames(),
		ExcludePaths:  []string{reportFile(options)},
	}, l)
}

func init() {
	RegisterFlags(ScanCmd, &scanOptions)
	ScanCmd.Flags().BoolP("help", "h", false, "Show help for the scan command.")
}

// RegisterFlags binds the scan flags of cmd to options.
func RegisterFlags(cmd *cobra.Command, options *RunOptionsScan) {
	cmd.Flags().StringVarP(&options.Format, "format", "f", "", "Report format: text, json or sarif. Defaults to report.format from the config.")
	cmd.Flags().StringVarP(&options.OutputPath, "output", "o", "", "Path to the output file or directory for json and sarif reports, or - for stdout.")
	cmd.Flags().StringVarP(&options.Engine, "engine", "e", "", "Pattern engine: backtracking or re2. Defaults to scan.engine from the config.")
	cmd.Flags().StringArrayVar(&options.SkillsDirs, "skills-dir", nil, "Directory or file with YAML skills. Can be repeated.")
	cmd.Flags().StringArrayVar(&options.DisableSkills, "disable-skill", nil, "Name of a skill to leave out. Can be repeated.")
	cmd.Flags().BoolVar(&options.NoColor, "no-color", false, "Disable colored output.")
}
