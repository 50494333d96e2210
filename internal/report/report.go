// Package report builds, reads, validates and renders the JSON scan report.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/securevibes/policyvibes/internal/findings"
	"github.com/securevibes/policyvibes/internal/git"
	"github.com/securevibes/policyvibes/pkg/shared/files"
)

// ToolName is recorded in report metadata.
const ToolName = "policyvibes"

// Metadata describes the scan that produced a report.
type Metadata struct {
	Tool        string                  `json:"tool"`
	Version     string                  `json:"version"`
	ScanID      string                  `json:"scan_id"`
	GeneratedAt time.Time               `json:"generated_at"`
	Root        string                  `json:"root"`
	Engine      string                  `json:"engine,omitempty"`
	Skills      []string                `json:"skills,omitempty"`
	Repository  *git.RepositoryMetadata `json:"repository,omitempty"`
}

// NewMetadata returns metadata with a fresh scan id and the current UTC time.
func NewMetadata(version, root string) *Metadata {
	return &Metadata{
		Tool:        ToolName,
		Version:     version,
		ScanID:      uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Root:        root,
	}
}

// Summary holds the headline counts of a report.
type Summary struct {
	FilesScanned        int `json:"files_scanned"`
	ActiveViolations    int `json:"active_violations"`
	PotentialViolations int `json:"potential_violations"`
}

// Record is a structured finding as written to the report.
type Record struct {
	Severity    string `json:"severity"`
	Type        string `json:"type"`
	File        string `json:"file"`
	Line        int    `json:"line"`
	Code        string `json:"code"`
	Reason      string `json:"reason"`
	Remediation string `json:"remediation,omitempty"`
	Matched     string `json:"matched,omitempty"`
	Skill       string `json:"skill,omitempty"`
}

// Entry is one element of the findings array: a Record or a free-text note.
type Entry struct {
	Record *Record
	Note   string
}

func (e Entry) MarshalJSON() ([]byte, error) {
	if e.Record != nil {
		return json.Marshal(e.Record)
	}
	return json.Marshal(e.Note)
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		e.Record = nil
		return json.Unmarshal(data, &e.Note)
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	e.Record, e.Note = &r, ""
	return nil
}

// Report is the document written by scan and read by validate-report.
type Report struct {
	Metadata *Metadata `json:"metadata,omitempty"`
	Summary  Summary   `json:"summary"`
	Findings []Entry   `json:"findings"`
}

// FromResult converts a scan result. File paths become relative to the scan root.
func FromResult(result *findings.ScanResult, meta *Metadata) *Report {
	r := &Report{
		Metadata: meta,
		Summary: Summary{
			FilesScanned:        result.FilesScanned,
			ActiveViolations:    len(result.ActiveViolations()),
			PotentialViolations: len(result.PotentialViolations()),
		},
		Findings: make([]Entry, 0, len(result.Findings)),
	}
	for _, f := range result.Findings {
		reason := f.Description
		if reason == "" {
			reason = f.Category.Label()
		}
		r.Findings = append(r.Findings, Entry{Record: &Record{
			Severity:    string(f.Severity),
			Type:        f.Category.Label(),
			File:        files.RelativeSlashPath(result.RootPath, f.FilePath),
			Line:        f.LineNumber,
			Code:        f.Context,
			Reason:      reason,
			Remediation: f.Remediation,
			Matched:     f.MatchedText,
			Skill:       f.Skill,
		}})
	}
	return r
}

// HasViolations reports whether the summary counts any violation.
func (r *Report) HasViolations() bool {
	return r.Summary.ActiveViolations > 0 || r.Summary.PotentialViolations > 0
}

// Encode writes the indented report to w.
func (r *Report) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// Write stores the report at outputFile atomically.
func (r *Report) Write(outputFile string) error {
	var buf bytes.Buffer
	if err := r.Encode(&buf); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return files.WriteJsonFile(outputFile, buf.Bytes())
}

// Read parses a report file. Findings may mix objects and strings.
func Read(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse report %q: %w", path, err)
	}
	return &r, nil
}
