package anthropic

import (
	"github.com/securevibes/policyvibes/internal/findings"
	"github.com/securevibes/policyvibes/internal/skills"
)

const credentialRemediation = "Do not read from Claude CLI credential files. " +
	"Get your own API key from https://console.anthropic.com and use the official " +
	"Anthropic SDK with ANTHROPIC_API_KEY. Claude CLI credentials are for the CLI " +
	"tool only, not for third-party applications."

// CredentialExtraction detects code that lifts OAuth tokens out of the
// Claude CLI credential store.
type CredentialExtraction struct {
	skills.Base
}

// NewCredentialExtraction returns the credential extraction skill.
func NewCredentialExtraction() *CredentialExtraction {
	return &CredentialExtraction{Base: skills.Base{
		SkillName:        CredentialExtractionName,
		SkillProvider:    provider,
		SkillVersion:     "1.0.0",
		SkillDescription: "Detect extraction of OAuth tokens from Claude CLI credential files",
	}}
}

func (s *CredentialExtraction) Rules() []skills.Rule {
	return []skills.Rule{
		{
			Pattern:     `\.claude/\.credentials\.json|\.claude\\\.credentials\.json`,
			Category:    findings.CategoryTokenExtraction,
			Severity:    findings.SeverityActive,
			Description: "Reading from Claude CLI credentials file",
		},
		{
			Pattern:     `claudeAiOauth`,
			Category:    findings.CategoryTokenExtraction,
			Severity:    findings.SeverityActive,
			Description: "Accessing claudeAiOauth field from credentials",
		},
		{
			Pattern:     `ANTHROPIC_OAUTH_TOKEN`,
			Category:    findings.CategoryTokenExtraction,
			Severity:    findings.SeverityActive,
			Description: "ANTHROPIC_OAUTH_TOKEN environment variable usage",
		},
		{
			Pattern:     `(?:claude|anthropic).*(?:oauth|token).*refresh|refresh.*(?:oauth|token).*(?:claude|anthropic)`,
			Category:    findings.CategoryTokenExtraction,
			Severity:    findings.SeverityPotential,
			Description: "OAuth token refresh pattern detected",
		},
	}
}

func (s *CredentialExtraction) Remediation(c findings.Category) string {
	if c == findings.CategoryTokenExtraction {
		return credentialRemediation
	}
	return ""
}
