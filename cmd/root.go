package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	listskills "github.com/securevibes/policyvibes/cmd/list-skills"
	"github.com/securevibes/policyvibes/cmd/scan"
	validatereport "github.com/securevibes/policyvibes/cmd/validate-report"
	"github.com/securevibes/policyvibes/cmd/version"
	"github.com/securevibes/policyvibes/cmd/watch"
	"github.com/securevibes/policyvibes/pkg/shared/config"
	sharederrors "github.com/securevibes/policyvibes/pkg/shared/errors"
	"github.com/securevibes/policyvibes/pkg/shared/logger"
)

var (
	cfgFile   string
	AppConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:                   "policyvibes [command]",
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
		Short:                 "PolicyVibes scans source trees for AI provider terms-of-service violations.",
		Long: `PolicyVibes is a static compliance scanner. It walks a file or directory,
	matches skill-provided rules against every file in scope and reports
	active and potential violations as text, JSON or SARIF.
	`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is policyvibes.yml)")
	rootCmd.AddCommand(version.NewVersionCmd())
	rootCmd.AddCommand(scan.ScanCmd)
	rootCmd.AddCommand(listskills.ListSkillsCmd)
	rootCmd.AddCommand(validatereport.ValidateReportCmd)
	rootCmd.AddCommand(watch.WatchCmd)
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	if err := rootCmd.Execute(); err != nil {
		var cmdErr *sharederrors.CommandError
		if errors.As(err, &cmdErr) {
			if cmdErr.ExitCode != sharederrors.ExitViolations {
				fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
			}
			return cmdErr.ExitCode
		}
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		return sharederrors.ExitError
	}
	return sharederrors.ExitClean
}

func initConfig() {
	var err error

	AppConfig, err = config.NewConfig(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "initializing config file function is crashed - %v \n", err)
		os.Exit(sharederrors.ExitError)
	}
	if err := config.ValidateConfig(AppConfig); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(sharederrors.ExitError)
	}

	version.Init(AppConfig)
	scan.Init(AppConfig, logger.NewLogger(AppConfig, "core-scan"))
	listskills.Init(AppConfig, logger.NewLogger(AppConfig, "core-list-skills"))
	validatereport.Init(AppConfig, logger.NewLogger(AppConfig, "core-validate-report"))
	watch.Init(AppConfig, logger.NewLogger(AppConfig, "core-watch"))
}
