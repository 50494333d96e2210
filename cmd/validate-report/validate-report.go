package validatereport

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/securevibes/policyvibes/internal/report"
	"github.com/securevibes/policyvibes/internal/sarif"
	"github.com/securevibes/policyvibes/pkg/shared/config"
	"github.com/securevibes/policyvibes/pkg/shared/errors"
)

// RunOptionsValidateReport holds the arguments of the validate-report command.
type RunOptionsValidateReport struct {
	NoColor bool
}

// Global variables for configuration and command arguments
var (
	AppConfig             *config.Config
	logger                hclog.Logger
	validateReportOptions RunOptionsValidateReport

	exampleValidateReportUsage = `  # Validate and print a report written by scan
  policyvibes validate-report POLICYVIBES_REPORT.json

  # Summarise a SARIF report
  policyvibes validate-report POLICYVIBES_REPORT.sarif`
)

// ValidateReportCmd represents the command for validate-report command.
var ValidateReportCmd = &cobra.Command{
	Use:                   "validate-report [--no-color] PATH",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleValidateReportUsage,
	Short:                 "Validate a JSON or SARIF report and render it as text",
	Long: `Validate a JSON report and render it as text. Files with the .sarif
extension are read as SARIF and summarised by result level.

Exit codes:
  0  the report is valid and holds no violations
  1  the report is valid and holds violations
  2  the report is missing or invalid`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return validateReport(cmd.OutOrStdout(), &validateReportOptions, args)
	},
}

// Init initializes the global configuration variable and the command logger.
func Init(cfg *config.Config, l hclog.Logger) {
	AppConfig = cfg
	logger = l
}

func validateReport(out io.Writer, options *RunOptionsValidateReport, args []string) error {
	l := logger
	if l == nil {
		l = hclog.NewNullLogger()
	}
	if len(args) != 1 {
		return errors.NewCommandError(fmt.Errorf("exactly one report path must be specified"), errors.ExitError)
	}
	noColor := options.NoColor || (AppConfig != nil && AppConfig.Report.NoColor)
	path := args[0]

	warn := color.New(color.FgYellow)
	fail := color.New(color.FgRed, color.Bold)
	if noColor {
		warn.DisableColor()
		fail.DisableColor()
	}

	if strings.EqualFold(filepath.Ext(path), ".sarif") {
		return validateSarif(out, path, warn, fail, l)
	}

	valid, messages := report.Validate(path)
	if !valid {
		fail.Fprintln(out, "Report validation failed:")
		for _, m := range messages {
			fmt.Fprintf(out, "  - %s\n", m)
		}
		l.Error("invalid report", "path", path, "errors", len(messages))
		return errors.NewCommandError(fmt.Errorf("report %q is invalid", path), errors.ExitError)
	}
	for _, m := range messages {
		warn.Fprintf(out, "Warning: %s\n", m)
	}

	rep, err := report.Read(path)
	if err != nil {
		l.Error("failed to read report", "path", path, "error", err)
		return errors.NewCommandError(fmt.Errorf("failed to read report: %w", err), errors.ExitError)
	}

	report.RenderText(out, rep, noColor)
	if rep.HasViolations() {
		return errors.NewCommandError(fmt.Errorf("report %q holds violations", path), errors.ExitViolations)
	}
	return nil
}

func validateSarif(out io.Writer, path string, warn, fail *color.Color, l hclog.Logger) error {
	sarifReport, err := sarif.ReadReport(path)
	if err != nil {
		fail.Fprintln(out, "Report validation failed:")
		fmt.Fprintf(out, "  - %v\n", err)
		l.Error("invalid SARIF report", "path", path, "error", err)
		return errors.NewCommandError(fmt.Errorf("report %q is invalid", path), errors.ExitError)
	}

	tool, err := sarifReport.ExtractToolNameAndVersion()
	if err != nil {
		warn.Fprintf(out, "Warning: %v\n", err)
		tool = &sarif.ToolMetadata{Name: "unknown"}
	}
	toolVersion := "unknown"
	if tool.Version != nil {
		toolVersion = *tool.Version
	}

	info := sarifReport.CollectSeverityInfo()
	fmt.Fprintf(out, "\nSARIF report from %s %s\n", tool.Name, toolVersion)
	fmt.Fprintf(out, "  Results: %d\n", info["total"])
	fmt.Fprintf(out, "  Errors: %d\n", info["error"])
	fmt.Fprintf(out, "  Warnings: %d\n", info["warning"])
	fmt.Fprintf(out, "  Notes: %d\n", info["note"])

	if info["error"]+info["warning"] > 0 {
		return errors.NewCommandError(fmt.Errorf("report %q holds violations", path), errors.ExitViolations)
	}
	return nil
}

func init() {
	ValidateReportCmd.Flags().BoolVar(&validateReportOptions.NoColor, "no-color", false, "Disable colored output.")
	ValidateReportCmd.Flags().BoolP("help", "h", false, "Show help for the validate-report command.")
}
