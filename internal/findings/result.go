package findings

import "sort"

// ScanResult is the outcome of one scan invocation.
type ScanResult struct {
	RootPath     string    `json:"root_path"`
	Findings     []Finding `json:"findings"`
	FilesScanned int       `json:"files_scanned"`

	seen map[Key]struct{}
}

// NewScanResult creates an empty result for root.
func NewScanResult(root string) *ScanResult {
	return &ScanResult{
		RootPath: root,
		Findings: []Finding{},
		seen:     make(map[Key]struct{}),
	}
}

// Add records f unless a finding with the same file, line and category was
// already recorded. It reports whether f was kept.
func (r *ScanResult) Add(f Finding) bool {
	if r.seen == nil {
		r.seen = make(map[Key]struct{})
	}
	key := f.Key()
	if _, ok := r.seen[key]; ok {
		return false
	}
	r.seen[key] = struct{}{}
	r.Findings = append(r.Findings, f)
	return true
}

// Sort orders findings by severity rank, file path and line number.
// Ties keep discovery order.
func (r *ScanResult) Sort() {
	sort.SliceStable(r.Findings, func(i, j int) bool {
		a, b := r.Findings[i], r.Findings[j]
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() < b.Severity.Rank()
		}
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		return a.LineNumber < b.LineNumber
	})
}

// ActiveViolations returns findings with SeverityActive.
func (r *ScanResult) ActiveViolations() []Finding {
	return r.filter(SeverityActive)
}

// PotentialViolations returns findings with SeverityPotential.
func (r *ScanResult) PotentialViolations() []Finding {
	return r.filter(SeverityPotential)
}

// HasViolations reports whether any active or potential violation was found.
func (r *ScanResult) HasViolations() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityActive || f.Severity == SeverityPotential {
			return true
		}
	}
	return false
}

func (r *ScanResult) filter(s Severity) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == s {
			out = append(out, f)
		}
	}
	return out
}
