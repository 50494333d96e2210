// Package findings holds the data model shared by the engine, the scanner and the reporters.
package findings

import "strings"

// Severity ranks how certain a match is to be a policy violation.
type Severity string

const (
	SeverityActive    Severity = "ACTIVE_VIOLATION"
	SeverityPotential Severity = "POTENTIAL_VIOLATION"
	SeverityCompliant Severity = "COMPLIANT"
)

// Rank orders active violations ahead of everything else.
func (s Severity) Rank() int {
	if s == SeverityActive {
		return 0
	}
	return 1
}

// ParseSeverity accepts both the report spelling ("ACTIVE_VIOLATION") and the
// kebab-case spelling ("active-violation"). Unknown values are returned as is.
func ParseSeverity(raw string) Severity {
	norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), "-", "_"))
	return Severity(norm)
}

// Category is the kind of violation a rule detects.
type Category string

const (
	CategoryEnvVarAbuse     Category = "environment-variable-abuse"
	CategoryHeaderSpoofing  Category = "header-spoofing"
	CategoryTokenExtraction Category = "token-extraction"
	CategoryOAuthRouting    Category = "oauth-routing"
	CategoryEncodedToken    Category = "encoded-token"
)

var categoryLabels = map[Category]string{
	CategoryEnvVarAbuse:     "Environment variable abuse",
	CategoryHeaderSpoofing:  "Header spoofing",
	CategoryTokenExtraction: "Token extraction",
	CategoryOAuthRouting:    "OAuth subscription routing",
	CategoryEncodedToken:    "Encoded token detected",
}

// Label returns the human readable name of the category.
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// Categories lists the known categories in a fixed order.
func Categories() []Category {
	return []Category{
		CategoryEnvVarAbuse,
		CategoryHeaderSpoofing,
		CategoryTokenExtraction,
		CategoryOAuthRouting,
		CategoryEncodedToken,
	}
}

// FallbackRemediation is used when neither a skill nor the default table knows the category.
const FallbackRemediation = "Review this code for potential ToS violations."

var defaultRemediation = map[Category]string{
	CategoryEnvVarAbuse: "Use a proper Anthropic API key from console.anthropic.com " +
		"instead of OAuth tokens from Claude Code.",
	CategoryHeaderSpoofing: "Remove spoofed client identification headers. " +
		"Only official Claude Code should use these headers.",
	CategoryTokenExtraction: "Do not extract or reuse OAuth tokens from Claude CLI. " +
		"Use official API keys for programmatic access.",
	CategoryOAuthRouting: "Do not route OAuth subscription tokens through proxies. " +
		"This violates Anthropic's Terms of Service.",
	CategoryEncodedToken: "Encoded tokens near OAuth-related code suggest token obfuscation. " +
		"Use transparent, legitimate API key authentication.",
}

// DefaultRemediation returns the process-wide remediation text for c.
func DefaultRemediation(c Category) string {
	if text, ok := defaultRemediation[c]; ok {
		return text
	}
	return FallbackRemediation
}

// Finding is one concrete match, located by file and line.
type Finding struct {
	FilePath    string   `json:"file_path"`
	LineNumber  int      `json:"line_number"`
	Severity    Severity `json:"severity"`
	Category    Category `json:"category"`
	MatchedText string   `json:"matched_text"`
	Context     string   `json:"context"`
	Remediation string   `json:"remediation"`
	Description string   `json:"description,omitempty"`
	Skill       string   `json:"skill,omitempty"`
}

// NewFinding returns f with an empty Remediation filled from the category table.
func NewFinding(f Finding) Finding {
	if f.Remediation == "" {
		f.Remediation = DefaultRemediation(f.Category)
	}
	return f
}

// Key identifies findings that describe the same issue at the same place.
type Key struct {
	FilePath   string
	LineNumber int
	Category   Category
}

// Key returns the deduplication identity of f.
func (f Finding) Key() Key {
	return Key{FilePath: f.FilePath, LineNumber: f.LineNumber, Category: f.Category}
}
