package shared

import "github.com/spf13/pflag"

// HasFlags reports whether any flag in the set was explicitly set by the user.
func HasFlags(flags *pflag.FlagSet) bool {
	changed := false
	flags.Visit(func(*pflag.Flag) {
		changed = true
	})
	return changed
}
