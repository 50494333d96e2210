package listskills

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/securevibes/policyvibes/internal/engine"
	"github.com/securevibes/policyvibes/internal/scanner"
	"github.com/securevibes/policyvibes/internal/skills"
	"github.com/securevibes/policyvibes/pkg/shared/config"
	"github.com/securevibes/policyvibes/pkg/shared/errors"
)

// RunOptionsListSkills holds the arguments of the list-skills command.
type RunOptionsListSkills struct {
	Format        string
	Engine        string
	SkillsDirs    []string
	DisableSkills []string
}

// SkillInfo describes one registered skill.
type SkillInfo struct {
	Name        string `json:"name"`
	Provider    string `json:"provider"`
	Version     string `json:"version"`
	Rules       int    `json:"rules"`
	Description string `json:"description,omitempty"`
}

// SkillList is the json output of the command.
type SkillList struct {
	Skills []SkillInfo  `json:"skills"`
	Scope  skills.Scope `json:"scope"`
}

// Global variables for configuration and command arguments
var (
	AppConfig         *config.Config
	logger            hclog.Logger
	listSkillsOptions RunOptionsListSkills

	exampleListSkillsUsage = `  # List built-in skills
  policyvibes list-skills

  # Include YAML skills from a folder and print JSON
  policyvibes list-skills --skills-dir ./skills --format json`
)

// ListSkillsCmd represents the command for list-skills command.
var ListSkillsCmd = &cobra.Command{
	Use:                   "list-skills [--format text|json] [--engine/-e ENGINE] [--skills-dir DIR]... [--disable-skill NAME]...",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleListSkillsUsage,
	Short:                 "List registered skills with provider, version and rule count",
	Args:                  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listSkills(cmd.OutOrStdout(), &listSkillsOptions)
	},
}

// Init initializes the global configuration variable and the command logger.
func Init(cfg *config.Config, l hclog.Logger) {
	AppConfig = cfg
	logger = l
}

func listSkills(out io.Writer, options *RunOptionsListSkills) error {
	cfg, l := AppConfig, logger
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if l == nil {
		l = hclog.NewNullLogger()
	}

	options.Format = config.SetThen(strings.ToLower(options.Format), "text")
	if options.Format != "text" && options.Format != config.FormatJSON {
		return errors.NewCommandError(fmt.Errorf("unsupported list format %q", options.Format), errors.ExitError)
	}

	s, err := scanner.Prepare(cfg, scanner.Options{
		Engine:        options.Engine,
		SkillPaths:    options.SkillsDirs,
		DisableSkills: options.DisableSkills,
	}, l)
	if err != nil {
		l.Error("failed to load skills", "error", err)
		return errors.NewCommandError(fmt.Errorf("failed to load skills: %w", err), errors.ExitError)
	}

	infos := collectSkillInfo(s.Engine())
	if options.Format == config.FormatJSON {
		data, err := json.MarshalIndent(SkillList{Skills: infos, Scope: s.Engine().Scope()}, "", "  ")
		if err != nil {
			return errors.NewCommandError(fmt.Errorf("error marshaling skills: %w", err), errors.ExitError)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	printSkills(out, infos, s.Engine())
	return nil
}

func collectSkillInfo(e *engine.Engine) []SkillInfo {
	detection := e.DetectionSkills()
	infos := make([]SkillInfo, 0, len(detection))
	for _, sk := range detection {
		infos = append(infos, SkillInfo{
			Name:        sk.Name(),
			Provider:    sk.Provider(),
			Version:     sk.Version(),
			Rules:       len(sk.Rules()),
			Description: sk.Description(),
		})
	}
	return infos
}

func printSkills(out io.Writer, infos []SkillInfo, e *engine.Engine) {
	if len(infos) == 0 {
		fmt.Fprintln(out, "No skills registered.")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPROVIDER\tVERSION\tRULES\tDESCRIPTION")
	for _, info := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", info.Name, info.Provider, info.Version, info.Rules, info.Description)
	}
	tw.Flush()

	fmt.Fprintf(out, "\n%d rule(s) compiled", e.RuleCount())
	if e.Dropped() > 0 {
		fmt.Fprintf(out, ", %d dropped by the engine", e.Dropped())
	}
	fmt.Fprintln(out)

	scope := e.Scope()
	fmt.Fprintln(out, "\nScope:")
	fmt.Fprintf(out, "  Extensions: %s\n", strings.Join(scope.Extensions, " "))
	fmt.Fprintf(out, "  Special files: %s\n", strings.Join(scope.SpecialFiles, " "))
	fmt.Fprintf(out, "  Skipped directories: %s\n", strings.Join(scope.SkipDirs, " "))
}

func init() {
	ListSkillsCmd.Flags().StringVarP(&listSkillsOptions.Format, "format", "f", "", "Output format: text or json.")
	ListSkillsCmd.Flags().StringVarP(&listSkillsOptions.Engine, "engine", "e", "", "Pattern engine used to compile the rules: backtracking or re2.")
	ListSkillsCmd.Flags().StringArrayVar(&listSkillsOptions.SkillsDirs, "skills-dir", nil, "Directory or file with YAML skills. Can be repeated.")
	ListSkillsCmd.Flags().StringArrayVar(&listSkillsOptions.DisableSkills, "disable-skill", nil, "Name of a skill to leave out. Can be repeated.")
	ListSkillsCmd.Flags().BoolP("help", "h", false, "Show help for the list-skills command.")
}
