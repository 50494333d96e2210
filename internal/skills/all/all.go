// Package all links every built-in skill into the binary.
package all

import (
	_ "github.com/securevibes/policyvibes/internal/skills/anthropic"
)
