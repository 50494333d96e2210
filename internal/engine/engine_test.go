package engine

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/securevibes/policyvibes/internal/findings"
	"github.com/securevibes/policyvibes/internal/skills"
	"github.com/securevibes/policyvibes/internal/skills/anthropic"
	"github.com/securevibes/policyvibes/pkg/shared/config"
)

type ruleSkill struct {
	skills.Base
	rules       []skills.Rule
	remediation map[findings.Category]string
}

func (s ruleSkill) Rules() []skills.Rule { return s.rules }

func (s ruleSkill) Remediation(c findings.Category) string { return s.remediation[c] }

func newRuleSkill(name string, rules ...skills.Rule) ruleSkill {
	return ruleSkill{Base: skills.Base{SkillName: name}, rules: rules}
}

func builtinEngine(t *testing.T, engineName string) *Engine {
	t.Helper()
	e, err := Compile([]skills.Skill{anthropic.NewOAuthAbuse()}, Options{Engine: engineName}, nil)
	require.NoError(t, err)
	return e
}

func collect(e *Engine, content string) []findings.Finding {
	return slices.Collect(e.Scan(content, "sample.py"))
}

func TestScanScenarios(t *testing.T) {
	for _, engineName := range []string{config.EngineBacktracking, config.EngineRE2} {
		e := builtinEngine(t, engineName)

		t.Run(engineName, func(t *testing.T) {
			tests := []struct {
				name     string
				content  string
				category findings.Category
				severity findings.Severity
				none     bool
			}{
				{
					name:     "auth token assignment",
					content:  `ANTHROPIC_AUTH_TOKEN = "secret"`,
					category: findings.CategoryEnvVarAbuse,
					severity: findings.SeverityActive,
				},
				{
					name:     "lowercase auth token",
					content:  `anthropic_auth_token = "x"`,
					category: findings.CategoryEnvVarAbuse,
					severity: findings.SeverityActive,
				},
				{
					name:     "spoofed client header",
					content:  `headers = {"X-Client-Name": "claude-code"}`,
					category: findings.CategoryHeaderSpoofing,
					severity: findings.SeverityActive,
				},
				{
					name:     "credentials file",
					content:  `path = os.path.expanduser("~/.claude/.credentials.json")`,
					category: findings.CategoryTokenExtraction,
					severity: findings.SeverityActive,
				},
				{
					name:     "oauth provider in config",
					content:  "provider:\n  type: oauth\n",
					category: findings.CategoryOAuthRouting,
					severity: findings.SeverityActive,
				},
				{
					name:    "clean code",
					content: `print("Hello")`,
					none:    true,
				},
			}

			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					got := collect(e, tt.content)
					if tt.none {
						assert.Empty(t, got)
						return
					}
					require.NotEmpty(t, got)
					assert.True(t, slices.ContainsFunc(got, func(f findings.Finding) bool {
						return f.Category == tt.category && f.Severity == tt.severity
					}), "findings: %+v", got)
				})
			}
		})
	}
}

func TestBaseURLLookAhead(t *testing.T) {
	const description = "ANTHROPIC_BASE_URL pointing to non-Anthropic endpoint"
	hasBaseURL := func(fs []findings.Finding) bool {
		return slices.ContainsFunc(fs, func(f findings.Finding) bool { return f.Description == description })
	}

	e := builtinEngine(t, config.EngineBacktracking)
	assert.Equal(t, 16, e.RuleCount())
	assert.True(t, hasBaseURL(collect(e, "ANTHROPIC_BASE_URL=https://proxy.example.com")))
	assert.False(t, hasBaseURL(collect(e, "ANTHROPIC_BASE_URL=https://api.anthropic.com")))

	linear := builtinEngine(t, config.EngineRE2)
	assert.Equal(t, 15, linear.RuleCount())
	assert.Equal(t, 1, linear.Dropped())
}

func TestCompileDropsMalformedRules(t *testing.T) {
	s := newRuleSkill("broken",
		skills.Rule{Pattern: "(unclosed", Category: findings.CategoryEnvVarAbuse, Severity: findings.SeverityActive},
		skills.Rule{Pattern: "needle", Category: findings.CategoryEnvVarAbuse, Severity: findings.SeverityActive},
	)

	e, err := Compile([]skills.Skill{s}, Options{}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, e.RuleCount())
	assert.Equal(t, 1, e.Dropped())
	assert.Len(t, collect(e, "a needle here"), 1)
}

func TestCompileUnknownEngine(t *testing.T) {
	_, err := Compile(nil, Options{Engine: "pcre"}, nil)
	assert.Error(t, err)
}

func TestScanLineAndContext(t *testing.T) {
	s := newRuleSkill("s", skills.Rule{
		Pattern:  `ANTHROPIC_AUTH_TOKEN\s*[=:]`,
		Category: findings.CategoryEnvVarAbuse,
		Severity: findings.SeverityActive,
	})

	for _, engineName := range []string{config.EngineBacktracking, config.EngineRE2} {
		t.Run(engineName, func(t *testing.T) {
			e, err := Compile([]skills.Skill{s}, Options{Engine: engineName}, nil)
			require.NoError(t, err)

			content := "héllo wörld\n\n   export ANTHROPIC_AUTH_TOKEN: x   \nlast"
			got := collect(e, content)

			require.Len(t, got, 1)
			assert.Equal(t, 3, got[0].LineNumber)
			assert.Equal(t, "export ANTHROPIC_AUTH_TOKEN: x", got[0].Context)
			assert.Equal(t, "ANTHROPIC_AUTH_TOKEN:", got[0].MatchedText)
			assert.Equal(t, "sample.py", got[0].FilePath)
			assert.Equal(t, "s", got[0].Skill)
		})
	}
}

func TestScanPatternSpansLines(t *testing.T) {
	e := builtinEngine(t, config.EngineBacktracking)

	content := "x = 1\nheaders = {\n    \"X-Client-Name\":\n        \"claude_code\",\n}\n"
	got := collect(e, content)

	idx := slices.IndexFunc(got, func(f findings.Finding) bool {
		return f.Description == "Headers dict with spoofed X-Client-Name"
	})
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, 2, got[idx].LineNumber)
	assert.Equal(t, "headers = {", got[idx].Context)
}

func TestScanYieldsEveryRuleAndMatch(t *testing.T) {
	s := newRuleSkill("s",
		skills.Rule{Pattern: "token", Category: findings.CategoryTokenExtraction, Severity: findings.SeverityActive},
		skills.Rule{Pattern: "tok", Category: findings.CategoryTokenExtraction, Severity: findings.SeverityPotential},
	)
	e, err := Compile([]skills.Skill{s}, Options{}, nil)
	require.NoError(t, err)

	got := collect(e, "token TOKEN")

	require.Len(t, got, 4)
	assert.Equal(t, findings.SeverityActive, got[0].Severity)
	assert.Equal(t, "TOKEN", got[1].MatchedText)
	assert.Equal(t, findings.SeverityPotential, got[2].Severity)
}

func TestScanStopsWhenConsumerStops(t *testing.T) {
	s := newRuleSkill("s", skills.Rule{Pattern: "a", Category: findings.CategoryEnvVarAbuse})
	e, err := Compile([]skills.Skill{s}, Options{}, nil)
	require.NoError(t, err)

	count := 0
	for range e.Scan("aaaa", "f") {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func TestRemediation(t *testing.T) {
	plain := newRuleSkill("plain")
	custom := newRuleSkill("custom")
	custom.remediation = map[findings.Category]string{findings.CategoryHeaderSpoofing: "stop spoofing"}

	e, err := Compile([]skills.Skill{plain, custom}, Options{}, nil)
	require.NoError(t, err)

	assert.Equal(t, "stop spoofing", e.Remediation(findings.CategoryHeaderSpoofing))
	assert.Equal(t, GenericRemediation, e.Remediation(findings.CategoryOAuthRouting))

	withBuiltins, err := Compile([]skills.Skill{anthropic.NewCredentialExtraction(), anthropic.NewOAuthAbuse()}, Options{}, nil)
	require.NoError(t, err)
	assert.Contains(t, withBuiltins.Remediation(findings.CategoryTokenExtraction), "CLI tool only")
	assert.Equal(t, findings.DefaultRemediation(findings.CategoryHeaderSpoofing),
		withBuiltins.Remediation(findings.CategoryHeaderSpoofing))
}

func TestFindingRemediationFromOwningSkill(t *testing.T) {
	s := newRuleSkill("s", skills.Rule{Pattern: "x", Category: findings.CategoryOAuthRouting})
	s.remediation = map[findings.Category]string{findings.CategoryOAuthRouting: "owned"}
	plain := newRuleSkill("p", skills.Rule{Pattern: "y", Category: findings.CategoryOAuthRouting})

	e, err := Compile([]skills.Skill{s, plain}, Options{}, nil)
	require.NoError(t, err)

	got := collect(e, "x y")
	require.Len(t, got, 2)
	assert.Equal(t, "owned", got[0].Remediation)
	assert.Equal(t, findings.DefaultRemediation(findings.CategoryOAuthRouting), got[1].Remediation)
}

func TestDetectionSkillsLeaveScopeOnlySkillsOut(t *testing.T) {
	scopeOnly := skills.NewScopeSkill("extra-scope", skills.Scope{Extensions: []string{".tf"}})
	detecting := newRuleSkill("detecting", skills.Rule{Pattern: "secret", Category: findings.CategoryTokenExtraction, Severity: findings.SeverityActive})

	e, err := Compile([]skills.Skill{scopeOnly, detecting}, Options{}, nil)
	require.NoError(t, err)

	require.Len(t, e.DetectionSkills(), 1)
	assert.Equal(t, "detecting", e.DetectionSkills()[0].Name())
	assert.Len(t, e.Skills(), 2)
	assert.Equal(t, []string{".tf"}, e.Scope().Extensions)
}
