package sarif

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/securevibes/policyvibes/internal/findings"
	"github.com/securevibes/policyvibes/pkg/shared/files"
)

const (
	ToolName           = "policyvibes"
	ToolInformationURI = "https://github.com/securevibes/policyvibes"
)

// Report wraps a SARIF document produced from or read for a scan.
type Report struct {
	*sarif.Report
}

// ToolMetadata identifies the tool that produced a report.
type ToolMetadata struct {
	Name    string
	Version *string
}

// FromResult converts a scan result into a single-run SARIF report.
// Each category becomes a rule and each finding a result located by a path
// relative to the scan root.
func FromResult(result *findings.ScanResult, toolVersion string) (*Report, error) {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(ToolName, ToolInformationURI)
	if toolVersion != "" {
		version := toolVersion
		run.Tool.Driver.SemanticVersion = &version
	}

	rules := make(map[findings.Category]*sarif.ReportingDescriptor)
	for _, f := range result.Findings {
		// findings are ranked, so the first one per category carries the highest level
		rule, ok := rules[f.Category]
		if !ok {
			rule = run.AddRule(string(f.Category)).
				WithDescription(f.Category.Label()).
				WithDefaultConfiguration(&sarif.ReportingConfiguration{
					Level: toSarifLevel(f.Severity),
				})
			rules[f.Category] = rule
		}

		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(files.RelativeSlashPath(result.RootPath, f.FilePath))).
				WithRegion(sarif.NewRegion().WithStartLine(f.LineNumber)),
		)

		message := f.Description
		if message == "" {
			message = f.Category.Label()
		}
		res := sarif.NewRuleResult(rule.ID).
			WithMessage(sarif.NewTextMessage(message)).
			WithLevel(toSarifLevel(f.Severity)).
			WithLocations([]*sarif.Location{location})
		res.Properties = map[string]interface{}{
			"severity":    string(f.Severity),
			"remediation": f.Remediation,
			"matched":     f.MatchedText,
			"skill":       f.Skill,
		}
		run.AddResult(res)
	}

	report.AddRun(run)
	return &Report{Report: report}, nil
}

// ReadReport parses a SARIF file.
func ReadReport(inputPath string) (*Report, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, err
	}

	var sarifReport sarif.Report
	if err := json.Unmarshal(data, &sarifReport); err != nil {
		return nil, fmt.Errorf("failed to parse SARIF report %q: %w", inputPath, err)
	}
	return &Report{Report: &sarifReport}, nil
}

// Render writes the indented report to w.
func (r Report) Render(w io.Writer) error {
	return r.PrettyWrite(w)
}

// WriteFile writes the report to outputFile atomically.
func (r Report) WriteFile(outputFile string) error {
	var buf bytes.Buffer
	if err := r.PrettyWrite(&buf); err != nil {
		return fmt.Errorf("failed to encode SARIF report: %w", err)
	}
	return files.WriteJsonFile(outputFile, buf.Bytes())
}

// ExtractToolNameAndVersion extracts tool name and version from the first run.
func (r Report) ExtractToolNameAndVersion() (*ToolMetadata, error) {
	if len(r.Runs) == 0 || r.Runs[0].Tool.Driver == nil {
		return nil, fmt.Errorf("report has no tool information")
	}
	return &ToolMetadata{
		Name:    r.Runs[0].Tool.Driver.Name,
		Version: r.Runs[0].Tool.Driver.SemanticVersion,
	}, nil
}

// CollectSeverityInfo counts results per level across all runs,
// together with the total.
func (r Report) CollectSeverityInfo() map[string]int {
	severityInfo := map[string]int{
		"error":   0,
		"warning": 0,
		"note":    0,
		"total":   0,
	}

	for _, run := range r.Runs {
		for _, result := range run.Results {
			level := "note"
			if result.Level != nil {
				level = *result.Level
			}
			switch level {
			case "error", "warning":
				severityInfo[level]++
			default:
				severityInfo["note"]++
			}
			severityInfo["total"]++
		}
	}

	return severityInfo
}

func toSarifLevel(severity findings.Severity) string {
	switch severity {
	case findings.SeverityActive:
		return "error"
	case findings.SeverityPotential:
		return "warning"
	default:
		return "note"
	}
}
