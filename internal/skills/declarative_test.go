package skills

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/securevibes/policyvibes/internal/findings"
)

const sampleSkill = `
name: openai-key-sharing
provider: openai
version: "1.2.0"
description: Detect shared session tokens
rules:
  - pattern: 'OPENAI_SESSION_TOKEN\s*='
    category: token-extraction
    severity: ACTIVE_VIOLATION
    description: Session token in source
  - pattern: 'chatgpt.*proxy'
    category: oauth-routing
    severity: potential-violation
remediation:
  token-extraction: Use a platform API key.
scope:
  extensions: [".go"]
`

func TestParseSkill(t *testing.T) {
	s, err := ParseSkill([]byte(sampleSkill))
	require.NoError(t, err)

	assert.Equal(t, "openai-key-sharing", s.Name())
	assert.Equal(t, "openai", s.Provider())
	assert.Equal(t, "1.2.0", s.Version())

	rules := s.Rules()
	require.Len(t, rules, 2)
	assert.Equal(t, findings.SeverityActive, rules[0].Severity)
	assert.Equal(t, findings.CategoryTokenExtraction, rules[0].Category)
	assert.Equal(t, findings.SeverityPotential, rules[1].Severity)

	assert.Equal(t, "Use a platform API key.", s.Remediation(findings.CategoryTokenExtraction))
	assert.Equal(t, "", s.Remediation(findings.CategoryOAuthRouting))

	assert.Equal(t, []string{".go"}, s.Extensions())
	assert.Equal(t, DefaultScope.SkipDirs, s.SkipDirs())
	assert.Equal(t, DefaultScope.SpecialFiles, s.SpecialFiles())
}

func TestParseSkillErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "not yaml", doc: "name: [unterminated"},
		{name: "no name", doc: "rules:\n  - pattern: x\n"},
		{name: "no rules", doc: "name: empty\n"},
		{name: "empty pattern", doc: "name: x\nrules:\n  - category: token-extraction\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSkill([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	write("b.yaml", sampleSkill)
	write("a.yml", "name: first\nrules:\n  - pattern: one\n")
	write("broken.yml", "name: broken\n")
	write("notes.txt", "name: ignored\nrules:\n  - pattern: x\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.yml"), 0o755))

	loaded, err := LoadDir(dir, nil)
	require.NoError(t, err)

	var got []string
	for _, s := range loaded {
		got = append(got, s.Name())
	}
	assert.Equal(t, []string{"first", "openai-key-sharing"}, got)

	single, err := LoadDir(filepath.Join(dir, "a.yml"), nil)
	require.NoError(t, err)
	require.Len(t, single, 1)

	_, err = LoadDir(filepath.Join(dir, "missing"), nil)
	assert.Error(t, err)
}
