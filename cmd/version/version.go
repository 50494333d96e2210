package version

import (
	"fmt"
	"io"
	"sort"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/securevibes/policyvibes/internal/skills"
	"github.com/securevibes/policyvibes/pkg/shared/config"
)

var (
	AppConfig     *config.Config
	CoreVersion   = "unknown"
	GolangVersion = "unknown"
	BuildTime     = "unknown"
)

// Versions holds build information for the core application.
type Versions struct {
	Version       string `json:"version"`
	GolangVersion string `json:"golang_version"`
	BuildTime     string `json:"build_time"`
}

// CoreVersions holds version information for the core application and skills.
type CoreVersions struct {
	Versions   Versions             `json:"versions"`
	SkillsMeta map[string]SkillMeta `json:"skills_meta"`
}

// SkillMeta holds version information for a skill.
type SkillMeta struct {
	Version  string `json:"version"`
	Provider string `json:"provider"`
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// NewVersionCmd creates a new cobra.Command for the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "version",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Print the version number of the application and skills",
		Run: func(cmd *cobra.Command, args []string) {
			version := CoreVersions{
				Versions: Versions{
					Version:       CoreVersion,
					GolangVersion: GolangVersion,
					BuildTime:     BuildTime,
				},
				SkillsMeta: getSkillVersions(AppConfig),
			}

			printVersionInfo(cmd.OutOrStdout(), &version)
		},
	}
}

// getSkillVersions discovers the skills enabled by cfg and collects their versions.
func getSkillVersions(cfg *config.Config) map[string]SkillMeta {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	registry := skills.Discover(skills.Options{
		Paths:    cfg.Skills.Paths,
		Disabled: cfg.Skills.Disabled,
	}, hclog.NewNullLogger())

	skillsMeta := make(map[string]SkillMeta, registry.Len())
	for _, s := range registry.Skills() {
		skillsMeta[s.Name()] = SkillMeta{Version: s.Version(), Provider: s.Provider()}
	}
	return skillsMeta
}

// printVersionInfo prints the version information for the core application and skills.
func printVersionInfo(w io.Writer, versions *CoreVersions) {
	fmt.Fprintf(w, "Core Version: v%s\n", versions.Versions.Version)
	fmt.Fprintln(w, "Skill Versions:")
	names := make([]string, 0, len(versions.SkillsMeta))
	for name := range versions.SkillsMeta {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		meta := versions.SkillsMeta[name]
		fmt.Fprintf(w, "  %s: v%s (Provider: %s)\n", name, meta.Version, meta.Provider)
	}
	fmt.Fprintf(w, "Go Version: %s\n", versions.Versions.GolangVersion)
	fmt.Fprintf(w, "Build Time: %s\n", versions.Versions.BuildTime)
}
