// Package engine compiles skill rules into matchers and runs them over file content.
package engine

import (
	"iter"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/securevibes/policyvibes/internal/findings"
	"github.com/securevibes/policyvibes/internal/skills"
)

// GenericRemediation is returned when no skill has guidance for a category.
const GenericRemediation = "Review and fix the detected issue."

// Options configures compilation.
type Options struct {
	// Engine is config.EngineBacktracking (default) or config.EngineRE2.
	Engine string
	// MatchTimeout bounds one backtracking match. Zero uses DefaultMatchTimeout.
	MatchTimeout time.Duration
}

type compiledRule struct {
	skills.Rule
	skill       string
	remediation string
	m           matcher
}

// Engine holds the compiled rules of a set of skills. It is not modified
// after Compile returns and may be shared by concurrent scans.
type Engine struct {
	skills  []skills.Skill
	rules   []compiledRule
	dropped int
	scope   skills.Scope
	matcher *scopeMatcher
	logger  hclog.Logger
}

// Compile builds an engine from skills. A rule whose pattern fails to
// compile is logged and dropped. Only an unknown engine name is an error.
func Compile(skillList []skills.Skill, opts Options, logger hclog.Logger) (*Engine, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	timeout := opts.MatchTimeout
	if timeout == 0 {
		timeout = DefaultMatchTimeout
	}
	compile, err := compilerFor(opts.Engine, timeout)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		skills: append([]skills.Skill(nil), skillList...),
		logger: logger,
	}
	for _, s := range e.skills {
		for _, rule := range s.Rules() {
			m, err := compile(rule.Pattern)
			if err != nil {
				e.dropped++
				logger.Warn("dropping rule that failed to compile",
					"skill", s.Name(), "description", rule.Description, "error", err)
				continue
			}
			e.rules = append(e.rules, compiledRule{
				Rule:        rule,
				skill:       s.Name(),
				remediation: s.Remediation(rule.Category),
				m:           m,
			})
		}
	}

	e.scope = skills.ScopeOf(e.skills)
	e.matcher = newScopeMatcher(e.scope, logger)

	logger.Debug("rules compiled", "engine", opts.Engine, "rules", len(e.rules), "dropped", e.dropped)
	return e, nil
}

// RuleCount returns the number of compiled rules.
func (e *Engine) RuleCount() int { return len(e.rules) }

// Dropped returns the number of rules that failed to compile.
func (e *Engine) Dropped() int { return e.dropped }

// Skills returns the skills the engine was compiled from.
func (e *Engine) Skills() []skills.Skill {
	return append([]skills.Skill(nil), e.skills...)
}

// DetectionSkills returns the skills that contributed at least one rule,
// leaving out skills that only carry scope policy.
func (e *Engine) DetectionSkills() []skills.Skill {
	var out []skills.Skill
	for _, s := range e.skills {
		if len(s.Rules()) > 0 {
			out = append(out, s)
		}
	}
	return out
}

// Scope returns the aggregated scope policy.
func (e *Engine) Scope() skills.Scope { return e.scope }

// ShouldScan reports whether path is a special file or has a scannable extension.
func (e *Engine) ShouldScan(path string) bool { return e.matcher.shouldScan(path) }

// ShouldSkip reports whether the directory's base name is in the skip policy.
func (e *Engine) ShouldSkip(dir string) bool { return e.matcher.shouldSkip(dir) }

// Scan yields one finding per match of every rule, rule by rule in
// compilation order. Overlapping matches from different rules are all yielded.
func (e *Engine) Scan(content, filePath string) iter.Seq[findings.Finding] {
	return func(yield func(findings.Finding) bool) {
		doc := newDocument(content)
		for i := range e.rules {
			rule := &e.rules[i]
			stopped := false
			err := rule.m.find(doc, func(s span) bool {
				matched := content[s.start:s.end]
				line := doc.lineAt(s.start)
				f := findings.NewFinding(findings.Finding{
					FilePath:    filePath,
					LineNumber:  line,
					Severity:    rule.Severity,
					Category:    rule.Category,
					MatchedText: matched,
					Context:     doc.contextFor(line, matched),
					Remediation: rule.remediation,
					Description: rule.Description,
					Skill:       rule.skill,
				})
				if !yield(f) {
					stopped = true
					return false
				}
				return true
			})
			if err != nil {
				e.logger.Warn("rule stopped matching", "skill", rule.skill,
					"description", rule.Description, "file", filePath, "error", err)
			}
			if stopped {
				return
			}
		}
	}
}

// Remediation returns the first non-empty guidance any skill offers for
// category, in skill order.
func (e *Engine) Remediation(category findings.Category) string {
	for _, s := range e.skills {
		if text := s.Remediation(category); text != "" {
			return text
		}
	}
	return GenericRemediation
}
