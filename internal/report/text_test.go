package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderText(t *testing.T) {
	r := &Report{
		Summary: Summary{FilesScanned: 7, ActiveViolations: 1, PotentialViolations: 0},
		Findings: []Entry{
			{Record: &Record{
				Severity:    "ACTIVE_VIOLATION",
				Type:        "Header spoofing",
				File:        "src/client.py",
				Line:        4,
				Code:        strings.Repeat("x", 90),
				Reason:      "X-Client-Name header spoofing detected",
				Remediation: "Remove spoofed client identification headers.",
			}},
			{Note: "The proxy module was reviewed by hand."},
			{Record: &Record{Severity: "POTENTIAL_VIOLATION", Code: "short"}},
		},
	}

	var buf bytes.Buffer
	RenderText(&buf, r, true)
	out := buf.String()

	assert.Contains(t, out, "PolicyVibes Report")
	assert.Contains(t, out, "  Files scanned: 7\n")
	assert.Contains(t, out, "  Active violations: 1\n")
	assert.Contains(t, out, "  ACTIVE_VIOLATION [Header spoofing]\n")
	assert.Contains(t, out, "    File: src/client.py:4\n")
	assert.Contains(t, out, "    Code: "+strings.Repeat("x", 80)+"...\n")
	assert.Contains(t, out, "    Remediation: Remove spoofed client identification headers.\n")
	assert.Contains(t, out, "  The proxy module was reviewed by hand.\n")
	assert.Contains(t, out, "  POTENTIAL_VIOLATION [N/A]\n")
	assert.Contains(t, out, "    Code: short\n")
	assert.Contains(t, out, "    Reason: N/A\n")
	assert.NotContains(t, out, "\x1b[", "no escape codes when color is off")
}

func TestRenderTextClean(t *testing.T) {
	var buf bytes.Buffer
	RenderText(&buf, &Report{Summary: Summary{FilesScanned: 2}}, true)

	assert.Contains(t, buf.String(), "No violations found.")
	assert.NotContains(t, buf.String(), "Findings:")
}
