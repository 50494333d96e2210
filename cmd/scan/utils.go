package scan

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/securevibes/policyvibes/cmd/version"
	"github.com/securevibes/policyvibes/internal/findings"
	"github.com/securevibes/policyvibes/internal/git"
	"github.com/securevibes/policyvibes/internal/report"
	"github.com/securevibes/policyvibes/internal/sarif"
	"github.com/securevibes/policyvibes/internal/scanner"
	"github.com/securevibes/policyvibes/pkg/shared/config"
	"github.com/securevibes/policyvibes/pkg/shared/files"
)

const (
	// DefaultSarifFile is the name of the SARIF report when the output is a folder.
	DefaultSarifFile = "POLICYVIBES_REPORT.sarif"
	// StdoutOutput streams the json or sarif report to stdout instead of a file.
	StdoutOutput     = "-"
)

// ReportFileNames lists the report names a scan never reads at its root.
func ReportFileNames() []string {
	return []string{config.DefaultReportFile, DefaultSarifFile}
}

// reportFileName returns the default file name for format.
func reportFileName(format string) string {
	if format == config.FormatSarif {
		return DefaultSarifFile
	}
	return config.DefaultReportFile
}

// ResolveOutputPath returns the file a json or sarif report is written to.
// An empty output means the current directory.
func ResolveOutputPath(output, format string) (string, error) {
	fullPath, folder, err := files.DetermineFileFullPath(config.SetThen(output, "."), reportFileName(format))
	if err != nil {
		return "", err
	}
	if err := files.CreateFolderIfNotExists(folder); err != nil {
		return "", err
	}
	return fullPath, nil
}

// PinOutputPath resolves the report file of a json or sarif run to an absolute
// path and stores it in options, so the scan can leave it out and later runs
// write to the same file. It returns "" for text output and StdoutOutput.
func PinOutputPath(options *RunOptionsScan) (string, error) {
	if options.Format == config.FormatText || options.OutputPath == StdoutOutput {
		return "", nil
	}
	outputFile, err := ResolveOutputPath(options.OutputPath, options.Format)
	if err != nil {
		return "", fmt.Errorf("failed to resolve output path: %w", err)
	}
	if outputFile, err = filepath.Abs(outputFile); err != nil {
		return "", fmt.Errorf("failed to resolve output path: %w", err)
	}
	options.OutputPath = outputFile
	return outputFile, nil
}

// reportFile returns the report file options write to, if any.
func reportFile(options *RunOptionsScan) string {
	if options.Format == config.FormatText || options.OutputPath == StdoutOutput {
		return ""
	}
	return options.OutputPath
}

// buildReport wraps result with scan metadata.
func buildReport(result *findings.ScanResult, s *scanner.Scanner, options *RunOptionsScan, l hclog.Logger) *report.Report {
	meta := report.NewMetadata(version.CoreVersion, result.RootPath)
	meta.Engine = config.SetThen(options.Engine, config.EngineBacktracking)
	for _, sk := range s.Engine().DetectionSkills() {
		meta.Skills = append(meta.Skills, sk.Name())
	}

	repo, err := git.CollectRepositoryMetadata(result.RootPath)
	if err != nil {
		l.Debug("repository metadata unavailable", "root", result.RootPath, "error", err)
	} else {
		meta.Repository = repo
	}
	return report.FromResult(result, meta)
}

// Emit renders result to out. For json and sarif it also writes the report
// file, or streams only the report when the output is StdoutOutput.
func Emit(out io.Writer, result *findings.ScanResult, s *scanner.Scanner, options *RunOptionsScan, l hclog.Logger) (*report.Report, error) {
	rep := buildReport(result, s, options, l)

	switch {
	case options.Format != config.FormatText && options.OutputPath == StdoutOutput:
		if err := streamReport(out, rep, result, options.Format); err != nil {
			return nil, err
		}
	case options.Format != config.FormatText:
		outputFile, err := ResolveOutputPath(options.OutputPath, options.Format)
		if err != nil {
			return nil, err
		}
		if err := writeReportFile(outputFile, rep, result, options.Format); err != nil {
			return nil, err
		}
		report.RenderText(out, rep, options.NoColor)
		fmt.Fprintf(out, "\nReport written to %s\n", outputFile)
		l.Info("results saved to file", "path", outputFile)
	default:
		report.RenderText(out, rep, options.NoColor)
	}
	return rep, nil
}

func streamReport(out io.Writer, rep *report.Report, result *findings.ScanResult, format string) error {
	if format != config.FormatSarif {
		return rep.Encode(out)
	}
	sarifReport, err := sarif.FromResult(result, version.CoreVersion)
	if err != nil {
		return fmt.Errorf("failed to build SARIF report: %w", err)
	}
	return sarifReport.Render(out)
}

func writeReportFile(outputFile string, rep *report.Report, result *findings.ScanResult, format string) error {
	if format != config.FormatSarif {
		return rep.Write(outputFile)
	}
	sarifReport, err := sarif.FromResult(result, version.CoreVersion)
	if err != nil {
		return fmt.Errorf("failed to build SARIF report: %w", err)
	}
	return sarifReport.WriteFile(outputFile)
}
