package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/securevibes/policyvibes/internal/findings"
)

const maxCodeWidth = 80

type palette struct {
	title, active, potential, path, remedy, dim *color.Color
}

func newPalette(noColor bool) palette {
	p := palette{
		title:     color.New(color.Bold),
		active:    color.New(color.FgRed),
		potential: color.New(color.FgYellow),
		path:      color.New(color.FgBlue),
		remedy:    color.New(color.FgGreen),
		dim:       color.New(color.Faint),
	}
	if noColor {
		for _, c := range []*color.Color{p.title, p.active, p.potential, p.path, p.remedy, p.dim} {
			c.DisableColor()
		}
	}
	return p
}

// RenderText writes a human readable version of r to w.
func RenderText(w io.Writer, r *Report, noColor bool) {
	p := newPalette(noColor)

	fmt.Fprintln(w)
	p.title.Fprintln(w, "PolicyVibes Report")
	fmt.Fprintf(w, "  Files scanned: %d\n", r.Summary.FilesScanned)
	fmt.Fprintf(w, "  Active violations: %s\n", p.active.Sprint(r.Summary.ActiveViolations))
	fmt.Fprintf(w, "  Potential violations: %s\n", p.potential.Sprint(r.Summary.PotentialViolations))
	fmt.Fprintln(w)

	if len(r.Findings) == 0 {
		fmt.Fprintln(w, "  No violations found.")
		return
	}

	p.title.Fprintln(w, "Findings:")
	for _, e := range r.Findings {
		if e.Record == nil {
			fmt.Fprintf(w, "\n  %s\n", p.dim.Sprint(e.Note))
			continue
		}
		rec := e.Record

		sev := p.potential
		if findings.ParseSeverity(rec.Severity) == findings.SeverityActive {
			sev = p.active
		}
		fmt.Fprintf(w, "\n  %s [%s]\n", sev.Sprint(orNA(rec.Severity)), orNA(rec.Type))
		fmt.Fprintf(w, "    File: %s\n", p.path.Sprintf("%s:%d", orNA(rec.File), rec.Line))
		fmt.Fprintf(w, "    Code: %s\n", truncate(rec.Code, maxCodeWidth))
		fmt.Fprintf(w, "    Reason: %s\n", orNA(rec.Reason))
		if rec.Remediation != "" {
			fmt.Fprintf(w, "    %s\n", p.remedy.Sprintf("Remediation: %s", rec.Remediation))
		}
	}
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width]) + "..."
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
