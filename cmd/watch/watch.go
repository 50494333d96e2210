package watch

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/securevibes/policyvibes/cmd/scan"
	fswatch "github.com/securevibes/policyvibes/internal/watch"
	"github.com/securevibes/policyvibes/pkg/shared/config"
	"github.com/securevibes/policyvibes/pkg/shared/errors"
	"github.com/securevibes/policyvibes/pkg/shared/files"
)

// Global variables for configuration and command arguments
var (
	AppConfig    *config.Config
	logger       hclog.Logger
	watchOptions scan.RunOptionsScan

	exampleWatchUsage = `  # Rescan the current directory on every change
  policyvibes watch .

  # Keep a JSON report next to the sources up to date
  policyvibes watch --format json --output /path/to/repo /path/to/repo`
)

// WatchCmd represents the command for watch command.
var WatchCmd = &cobra.Command{
	Use:                   "watch [--format/-f FORMAT] [--output/-o PATH] [--engine/-e ENGINE] [--skills-dir DIR]... [--disable-skill NAME]... [--no-color] PATH",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleWatchUsage,
	Short:                 "Rescan a directory whenever its files change",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runWatch(ctx, cmd.OutOrStdout(), &watchOptions, args)
	},
}

// Init initializes the global configuration variable and the command logger.
func Init(cfg *config.Config, l hclog.Logger) {
	AppConfig = cfg
	logger = l
}

func runWatch(ctx context.Context, out io.Writer, options *scan.RunOptionsScan, args []string) error {
	cfg, l := AppConfig, logger
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if l == nil {
		l = hclog.NewNullLogger()
	}

	if err := scan.ValidateScanArgs(options, cfg, args); err != nil {
		l.Error("invalid watch arguments", "error", err)
		return errors.NewCommandError(fmt.Errorf("invalid watch arguments: %w", err), errors.ExitError)
	}

	root, err := resolveRoot(args[0])
	if err != nil {
		return errors.NewCommandError(err, errors.ExitError)
	}

	// Pin the report location so the scanner leaves it out and later rescans
	// write to the same file.
	outputFile, err := scan.PinOutputPath(options)
	if err != nil {
		l.Error("invalid output path", "error", err)
		return errors.NewCommandError(err, errors.ExitError)
	}

	s, err := scan.Prepare(cfg, options, l)
	if err != nil {
		l.Error("failed to prepare scanner", "error", err)
		return errors.NewCommandError(fmt.Errorf("failed to prepare scanner: %w", err), errors.ExitError)
	}

	w := fswatch.New(root, fswatch.Options{
		Skip:   s.Engine().ShouldSkip,
		Ignore: reportFilter(outputFile),
	}, l.Named("watch"))

	l.Info("watching for changes", "root", root)
	err = w.Run(ctx, func() {
		result, err := s.Scan(root)
		if err != nil {
			l.Error("rescan failed", "error", err)
			return
		}
		fmt.Fprintf(out, "\n[%s] scanned %s\n", time.Now().Format(time.TimeOnly), root)
		if _, err := scan.Emit(out, result, s, options, l); err != nil {
			l.Error("failed to write report", "error", err)
		}
	})
	if err != nil {
		l.Error("watch failed", "error", err)
		return errors.NewCommandError(fmt.Errorf("watch failed: %w", err), errors.ExitError)
	}
	return nil
}

func resolveRoot(path string) (string, error) {
	expanded, err := files.ExpandPath(path)
	if err != nil {
		return "", err
	}
	root, err := filepath.Abs(expanded)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("the target path does not exist: %v", path)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("the target path must be a directory: %v", path)
	}
	return root, nil
}

// reportFilter ignores events on report files and on the temp files written
// while a report is replaced, so writing a report never triggers a rescan.
func reportFilter(outputFile string) func(string) bool {
	names := scan.ReportFileNames()
	if outputFile != "" {
		names = append(names, filepath.Base(outputFile))
	}
	return func(path string) bool {
		base := filepath.Base(path)
		for _, n := range names {
			if strings.HasPrefix(base, n) {
				return true
			}
		}
		return false
	}
}

func init() {
	scan.RegisterFlags(WatchCmd, &watchOptions)
	WatchCmd.Flags().BoolP("help", "h", false, "Show help for the watch command.")
}
