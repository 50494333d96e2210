// Package skills defines detection skills and the registry that discovers them.
//
// A skill is a named bundle of regex rules plus the scope policy that decides
// which files those rules run against. Built-in skills register a constructor
// from an init function; declarative skills are loaded from YAML files.
package skills

import (
	"github.com/securevibes/policyvibes/internal/findings"
)

// Rule describes one detectable pattern. Values are never mutated after construction.
type Rule struct {
	Pattern     string
	Category    findings.Category
	Severity    findings.Severity
	Description string
}

// Skill is a bundle of rules and scope policy for one family of violations.
type Skill interface {
	Name() string
	Provider() string
	Version() string
	Description() string

	// Rules must return the same list on every call.
	Rules() []Rule

	Extensions() []string
	SpecialFiles() []string
	SkipDirs() []string

	// Remediation returns guidance for category, or "" to defer to the default table.
	Remediation(category findings.Category) string
}

// Scope is the file selection policy of a skill or a set of skills.
type Scope struct {
	Extensions   []string `yaml:"extensions" json:"extensions"`
	SpecialFiles []string `yaml:"special_files" json:"special_files"`
	SkipDirs     []string `yaml:"skip_dirs" json:"skip_dirs"`
}

// DefaultScope is used by skills that do not define their own policy and as
// the fallback when no skill contributes any entries.
var DefaultScope = Scope{
	Extensions: []string{
		".py", ".js", ".ts", ".jsx", ".tsx", ".mjs", ".cjs",
		".yaml", ".yml", ".json", ".toml", ".env", ".sh", ".bash",
		".md", ".txt", ".cfg", ".ini", ".conf",
	},
	SpecialFiles: []string{
		".env", ".env.local", ".env.development", ".env.production",
		"docker-compose.yml", "docker-compose.yaml",
		"Dockerfile", "Makefile",
	},
	SkipDirs: []string{
		".git", "node_modules", "__pycache__", ".venv", "venv",
		".tox", ".pytest_cache", ".mypy_cache", "dist", "build",
		".eggs", "*.egg-info",
	},
}

// Base carries skill metadata and the default scope policy. Embed it and
// implement Rules to get a complete Skill.
type Base struct {
	SkillName        string
	SkillProvider    string
	SkillVersion     string
	SkillDescription string
}

func (b Base) Name() string { return b.SkillName }
func (b Base) Provider() string { return b.SkillProvider }
func (b Base) Version() string { return b.SkillVersion }
func (b Base) Description() string { return b.SkillDescription }

func (Base) Extensions() []string { return clone(DefaultScope.Extensions) }
func (Base) SpecialFiles() []string { return clone(DefaultScope.SpecialFiles) }
func (Base) SkipDirs() []string { return clone(DefaultScope.SkipDirs) }

// Remediation defers every category to the default table.
func (Base) Remediation(findings.Category) string { return "" }

// ScopeOf returns the union of the scope policies of skills. Each list that
// ends up empty is replaced by the matching DefaultScope list.
func ScopeOf(skills []Skill) Scope {
	var exts, special, skip []string
	for _, s := range skills {
		exts = append(exts, s.Extensions()...)
		special = append(special, s.SpecialFiles()...)
		skip = append(skip, s.SkipDirs()...)
	}
	return Scope{
		Extensions:   orDefault(unique(exts), DefaultScope.Extensions),
		SpecialFiles: orDefault(unique(special), DefaultScope.SpecialFiles),
		SkipDirs:     orDefault(unique(skip), DefaultScope.SkipDirs),
	}
}

func orDefault(values, def []string) []string {
	if len(values) == 0 {
		return clone(def)
	}
	return values
}

func unique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func clone(values []string) []string {
	return append([]string(nil), values...)
}
