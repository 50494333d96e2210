package skills

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"
	"gopkg.in/yaml.v2"

	"github.com/securevibes/policyvibes/internal/findings"
)

// ruleDocument is one rule entry of a YAML skill file.
type ruleDocument struct {
	Pattern     string `yaml:"pattern"`
	Category    string `yaml:"category"`
	Severity    string `yaml:"severity"`
	Description string `yaml:"description"`
}

// skillDocument is the on-disk shape of a declarative skill.
type skillDocument struct {
	Name        string            `yaml:"name"`
	Provider    string            `yaml:"provider"`
	Version     string            `yaml:"version"`
	Description string            `yaml:"description"`
	Rules       []ruleDocument    `yaml:"rules"`
	Remediation map[string]string `yaml:"remediation"`
	Scope       Scope             `yaml:"scope"`
}

type declarativeSkill struct {
	Base
	rules       []Rule
	remediation map[findings.Category]string
	scope       Scope
}

func (s *declarativeSkill) Rules() []Rule {
	return append([]Rule(nil), s.rules...)
}

func (s *declarativeSkill) Remediation(c findings.Category) string {
	return s.remediation[c]
}

func (s *declarativeSkill) Extensions() []string {
	return orDefault(s.scope.Extensions, DefaultScope.Extensions)
}

func (s *declarativeSkill) SpecialFiles() []string {
	return orDefault(s.scope.SpecialFiles, DefaultScope.SpecialFiles)
}

func (s *declarativeSkill) SkipDirs() []string {
	return orDefault(s.scope.SkipDirs, DefaultScope.SkipDirs)
}

// ParseSkill builds a skill from YAML. Severities accept both the
// "active-violation" and "ACTIVE_VIOLATION" spellings.
func ParseSkill(data []byte) (Skill, error) {
	var doc skillDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse skill: %w", err)
	}
	if strings.TrimSpace(doc.Name) == "" {
		return nil, fmt.Errorf("skill has no name")
	}
	if len(doc.Rules) == 0 {
		return nil, fmt.Errorf("skill %q has no rules", doc.Name)
	}

	s := &declarativeSkill{
		Base: Base{
			SkillName:        doc.Name,
			SkillProvider:    doc.Provider,
			SkillVersion:     doc.Version,
			SkillDescription: doc.Description,
		},
		remediation: make(map[findings.Category]string, len(doc.Remediation)),
		scope:       doc.Scope,
	}
	for i, r := range doc.Rules {
		if r.Pattern == "" {
			return nil, fmt.Errorf("skill %q: rule %d has no pattern", doc.Name, i)
		}
		s.rules = append(s.rules, Rule{
			Pattern:     r.Pattern,
			Category:    findings.Category(strings.TrimSpace(r.Category)),
			Severity:    findings.ParseSeverity(r.Severity),
			Description: r.Description,
		})
	}
	for k, v := range doc.Remediation {
		s.remediation[findings.Category(k)] = v
	}
	return s, nil
}

// LoadFile reads a single YAML skill file.
func LoadFile(path string) (Skill, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read skill file %q: %w", path, err)
	}
	s, err := ParseSkill(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// LoadDir loads every *.yml and *.yaml file directly inside dir, in name
// order. When dir is a file it is loaded on its own. Files that fail to load
// are logged and skipped; only an unreadable dir is an error.
func LoadDir(dir string, logger hclog.Logger) ([]Skill, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		s, err := LoadFile(dir)
		if err != nil {
			return nil, err
		}
		return []Skill{s}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read skills directory %q: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var out []Skill
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".yml" && ext != ".yaml" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		s, err := LoadFile(path)
		if err != nil {
			logger.Warn("skipping declarative skill", "path", path, "error", err)
			continue
		}
		logger.Debug("loaded declarative skill", "name", s.Name(), "path", path)
		out = append(out, s)
	}
	return out, nil
}
