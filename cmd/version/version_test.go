package version

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/securevibes/policyvibes/internal/skills/all"
	"github.com/securevibes/policyvibes/pkg/shared/config"
)

func TestVersionCommand(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Skills.Disabled = []string{"anthropic-credential-extraction"}
	Init(cfg)

	cmd := NewVersionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "Core Version: vunknown")
	assert.Contains(t, out.String(), "anthropic-oauth-abuse: v1.0.0 (Provider: anthropic)")
	assert.NotContains(t, out.String(), "anthropic-credential-extraction")
	assert.Contains(t, out.String(), "Go Version: unknown")
}
