// Package anthropic provides the built-in skills that detect misuse of
// Anthropic subscription credentials.
package anthropic

import (
	"github.com/securevibes/policyvibes/internal/findings"
	"github.com/securevibes/policyvibes/internal/skills"
)

const (
	provider = "anthropic"

	OAuthAbuseName           = "anthropic-oauth-abuse"
	CredentialExtractionName = "anthropic-credential-extraction"
)

func init() {
	skills.Register(OAuthAbuseName, func() (skills.Skill, error) { return NewOAuthAbuse(), nil })
	skills.Register(CredentialExtractionName, func() (skills.Skill, error) { return NewCredentialExtraction(), nil })
}

// OAuthAbuse detects OAuth tokens used as API keys, spoofed client headers,
// token extraction from the CLI config and subscription routing.
type OAuthAbuse struct {
	skills.Base
}

// NewOAuthAbuse returns the OAuth abuse skill.
func NewOAuthAbuse() *OAuthAbuse {
	return &OAuthAbuse{Base: skills.Base{
		SkillName:        OAuthAbuseName,
		SkillProvider:    provider,
		SkillVersion:     "1.0.0",
		SkillDescription: "Detect Anthropic ToS violations related to OAuth token abuse",
	}}
}

func (s *OAuthAbuse) Rules() []skills.Rule {
	var rules []skills.Rule
	rules = append(rules, envVarRules()...)
	rules = append(rules, headerRules()...)
	rules = append(rules, tokenExtractionRules()...)
	rules = append(rules, configRules()...)
	return rules
}

// Remediation uses the default table for every category it produces.
func (s *OAuthAbuse) Remediation(c findings.Category) string {
	return findings.DefaultRemediation(c)
}

func envVarRules() []skills.Rule {
	return []skills.Rule{
		{
			Pattern:     `ANTHROPIC_API_KEY\s*[=:]\s*.*(?:oauth|OAUTH|claude.code|CLAUDE_CODE)`,
			Category:    findings.CategoryEnvVarAbuse,
			Severity:    findings.SeverityActive,
			Description: "OAuth token used as API key",
		},
		{
			Pattern:     `ANTHROPIC_AUTH_TOKEN\s*[=:]`,
			Category:    findings.CategoryEnvVarAbuse,
			Severity:    findings.SeverityActive,
			Description: "ANTHROPIC_AUTH_TOKEN usage detected",
		},
		{
			Pattern:     `CLAUDE_CODE_OAUTH_TOKEN`,
			Category:    findings.CategoryEnvVarAbuse,
			Severity:    findings.SeverityActive,
			Description: "CLAUDE_CODE_OAUTH_TOKEN usage detected",
		},
		{
			// look-ahead; the re2 engine drops this rule
			Pattern:     `ANTHROPIC_BASE_URL\s*[=:]\s*["']?(?!https?://api\.anthropic\.com)`,
			Category:    findings.CategoryEnvVarAbuse,
			Severity:    findings.SeverityPotential,
			Description: "ANTHROPIC_BASE_URL pointing to non-Anthropic endpoint",
		},
	}
}

func headerRules() []skills.Rule {
	return []skills.Rule{
		{
			Pattern:     `["']?X-Client-Name["']?\s*[=:]\s*["']claude[_-]?code["']`,
			Category:    findings.CategoryHeaderSpoofing,
			Severity:    findings.SeverityActive,
			Description: "X-Client-Name header spoofing detected",
		},
		{
			Pattern:     `["']?User-Agent["']?\s*[=:]\s*["'].*claude[_-]?code.*["']`,
			Category:    findings.CategoryHeaderSpoofing,
			Severity:    findings.SeverityActive,
			Description: "User-Agent spoofing to impersonate Claude Code",
		},
		{
			Pattern:     `headers\s*=\s*\{[^}]*["']X-Client-Name["'][^}]*claude[_-]?code`,
			Category:    findings.CategoryHeaderSpoofing,
			Severity:    findings.SeverityActive,
			Description: "Headers dict with spoofed X-Client-Name",
		},
	}
}

func tokenExtractionRules() []skills.Rule {
	return []skills.Rule{
		{
			Pattern:     `\.claude/\.credentials\.json|\.claude\\\.credentials\.json`,
			Category:    findings.CategoryTokenExtraction,
			Severity:    findings.SeverityActive,
			Description: "Reading from Claude CLI credentials file",
		},
		{
			Pattern:     `ANTHROPIC_OAUTH_TOKEN`,
			Category:    findings.CategoryTokenExtraction,
			Severity:    findings.SeverityActive,
			Description: "ANTHROPIC_OAUTH_TOKEN usage detected",
		},
		{
			Pattern:     `(?:claude|anthropic).*(?:oauth|token).*refresh|refresh.*(?:oauth|token).*(?:claude|anthropic)`,
			Category:    findings.CategoryTokenExtraction,
			Severity:    findings.SeverityPotential,
			Description: "OAuth token refresh pattern detected",
		},
		{
			Pattern:     `subscription.*(?:oauth|anthropic)|(?:oauth|anthropic).*subscription`,
			Category:    findings.CategoryOAuthRouting,
			Severity:    findings.SeverityActive,
			Description: "Subscription-based OAuth routing detected",
		},
		{
			Pattern:     `(?:auth|profile).*rotation|rotation.*(?:auth|profile)`,
			Category:    findings.CategoryOAuthRouting,
			Severity:    findings.SeverityActive,
			Description: "Auth profile rotation detected",
		},
		{
			Pattern:     `anthropic[_-]oauth`,
			Category:    findings.CategoryOAuthRouting,
			Severity:    findings.SeverityActive,
			Description: "anthropic-oauth provider/profile detected",
		},
	}
}

// configRules target YAML and JSON provider configuration.
func configRules() []skills.Rule {
	return []skills.Rule{
		{
			Pattern:     `type\s*:\s*oauth`,
			Category:    findings.CategoryOAuthRouting,
			Severity:    findings.SeverityActive,
			Description: "OAuth provider type in config",
		},
		{
			Pattern:     `subscription\s*:\s*(?:max|pro)`,
			Category:    findings.CategoryOAuthRouting,
			Severity:    findings.SeverityActive,
			Description: "Subscription routing in config",
		},
		{
			Pattern:     `gateway.*anthropic|anthropic.*gateway`,
			Category:    findings.CategoryOAuthRouting,
			Severity:    findings.SeverityPotential,
			Description: "Gateway/proxy configuration with Anthropic",
		},
	}
}
