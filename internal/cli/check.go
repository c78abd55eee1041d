package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/flowfix/internal/configloader"
	"github.com/yaklabco/flowfix/internal/logging"
	"github.com/yaklabco/flowfix/pkg/config"
	"github.com/yaklabco/flowfix/pkg/lint"
	_ "github.com/yaklabco/flowfix/pkg/lint/rules" // Register built-in rules
	"github.com/yaklabco/flowfix/pkg/parser"
	"github.com/yaklabco/flowfix/pkg/reporter"
	"github.com/yaklabco/flowfix/pkg/runner"
)

type checkFlags struct {
	format       string
	ignore       []string
	extensions   []string
	enable       []string
	disable      []string
	fixRules     []string
	noContext    bool
	proposals    bool
	compact      bool
	perFile      bool
	ruleFormat   string
	summaryOrder string
	cpuprofile   string
	memprofile   string
	trace        string
}

func newCheckCommand(info BuildInfo) *cobra.Command {
	var cfg config.Config
	flags := &checkFlags{}

	cmd := &cobra.Command{
		Use:     "check [paths...]",
		Aliases: []string{"lint"},
		Short:   "Analyze Java sources and optionally apply fixes",
		Long:    checkLongDescription,
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			prof, err := startProfiling(flags.cpuprofile, flags.memprofile, flags.trace)
			if err != nil {
				return err
			}
			defer func() {
				err = errors.Join(err, prof.stop())
			}()
			return runCheck(cmd, args, &cfg, flags, info)
		},
	}

	addCheckFlags(cmd, &cfg, flags)

	return cmd
}

const checkLongDescription = `Analyze Java sources for flow problems.

By default, checks all .java files in the current directory and
subdirectories, skipping vendored and generated files. Specify paths to
check specific files or directories.

Examples:
  flowfix check                     # Check current directory
  flowfix check src/                # Check the src directory
  flowfix check Main.java           # Check a single file
  flowfix check --fix               # Apply preferred fixes in place
  flowfix check --fix --dry-run     # Show fixes as a diff without writing
  flowfix check --format sarif      # Output SARIF for code scanning
  flowfix check --proposals         # List every correction proposal
  flowfix check --strict            # Treat warnings as errors`

func runCheck(cmd *cobra.Command, args []string, cfg *config.Config, flags *checkFlags, info BuildInfo) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.FromContext(ctx)

	// Only values explicitly provided on the command line reach the CLI layer.
	if cmd.Flags().Changed("format") {
		cfg.Output = config.OutputFormat(flags.format)
	}
	if cmd.Flags().Changed("rule-format") {
		cfg.RuleFormat = config.RuleFormat(flags.ruleFormat)
	}
	if cmd.Flags().Changed("summary-order") {
		cfg.SummaryOrder = config.SummaryOrder(flags.summaryOrder)
	}
	cfg.Ignore = flags.ignore
	cfg.Extensions = flags.extensions
	cfg.EnableRules = flags.enable
	cfg.DisableRules = flags.disable
	cfg.FixRules = flags.fixRules

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("get config flag: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	loadResult, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    cfg,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	finalCfg := loadResult.Config

	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}
	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", logging.FieldFiles, loadResult.LoadedFrom)
	}
	logger.Debug("configuration loaded",
		logging.FieldFix, finalCfg.Fix,
		logging.FieldDryRun, finalCfg.DryRun,
		logging.FieldJobs, finalCfg.Jobs,
	)

	format, err := reporter.ParseFormat(string(finalCfg.Output))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}

	engine := lint.NewEngine(parser.New(), lint.DefaultRegistry)
	checkRunner := runner.New(lint.NewPipeline(engine))

	runOpts := runner.OptionsFromConfig(finalCfg, args)
	runOpts.WorkingDir = workDir

	logger.Debug("starting check",
		logging.FieldPaths, runOpts.Paths,
		logging.FieldWorkingDir, runOpts.WorkingDir,
		logging.FieldJobs, runOpts.Jobs,
	)

	result, err := checkRunner.Run(ctx, runOpts)
	if err != nil {
		return fmt.Errorf("check run failed: %w", err)
	}

	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		colorMode = "auto"
	}

	repOpts := reporter.OptionsFromConfig(finalCfg)
	repOpts.Writer = cmd.OutOrStdout()
	repOpts.Format = format
	repOpts.Color = colorMode
	repOpts.ShowContext = !flags.noContext
	repOpts.ShowProposals = flags.proposals
	repOpts.Compact = flags.compact
	repOpts.PerFile = flags.perFile
	repOpts.WorkingDir = workDir
	repOpts.ToolVersion = info.Version

	rep, err := reporter.New(repOpts)
	if err != nil {
		return fmt.Errorf("create reporter: %w", err)
	}

	if _, err := rep.Report(ctx, result); err != nil {
		logger.Error("report failed", logging.FieldError, err)
		return fmt.Errorf("report results: %w", err)
	}

	if result.Stats.FilesErrored > 0 && result.Stats.FilesProcessed == 0 {
		return fmt.Errorf("no file could be processed: %w", firstFileError(result))
	}

	if code := ExitCodeFromResult(result, finalCfg.Strict); code != ExitSuccess {
		return &issuesError{code: code}
	}

	return nil
}

func addCheckFlags(cmd *cobra.Command, cfg *config.Config, flags *checkFlags) {
	cmd.Flags().BoolVar(&cfg.Fix, "fix", false, "apply the preferred fix of each fixable issue")
	cmd.Flags().BoolVar(&cfg.DryRun, "dry-run", false, "show fixes as a diff without applying them")
	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, table, json, sarif, diff, summary")
	cmd.Flags().IntVar(&cfg.Jobs, "jobs", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().IntVar(&cfg.MaxPasses, "max-passes", 0, "maximum fix passes per file (0 = default)")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns to ignore")
	cmd.Flags().StringSliceVar(&flags.extensions, "ext", nil, "source file extensions (default .java)")
	cmd.Flags().StringSliceVar(&flags.enable, "enable", nil, "rule IDs or names to enable")
	cmd.Flags().StringSliceVar(&flags.disable, "disable", nil, "rule IDs or names to disable")
	cmd.Flags().StringSliceVar(&flags.fixRules, "fix-rules", nil, "limit fixes to specific rule IDs")
	cmd.Flags().BoolVar(&cfg.NoBackups, "no-backups", false, "disable backup creation when fixing")
	cmd.Flags().BoolVar(&cfg.Strict, "strict", false, "treat warnings as errors for exit code")
	cmd.Flags().BoolVar(&flags.noContext, "no-context", false, "hide source line context in output")
	cmd.Flags().BoolVar(&flags.proposals, "proposals", false, "list every correction proposal under an issue")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "use compact output format")
	cmd.Flags().BoolVar(&flags.perFile, "per-file", false, "output separate report for each file (table format)")
	cmd.Flags().StringVar(&flags.ruleFormat, "rule-format", "name",
		"rule identifier format in output: name, id, or combined")
	cmd.Flags().StringVar(&flags.summaryOrder, "summary-order", "rules",
		"order of tables in summary output: rules, files")

	// Profiling flags.
	cmd.Flags().StringVar(&flags.cpuprofile, "cpuprofile", "", "write CPU profile to file")
	cmd.Flags().StringVar(&flags.memprofile, "memprofile", "", "write memory profile to file")
	cmd.Flags().StringVar(&flags.trace, "trace", "", "write execution trace to file")
}

// firstFileError returns the error of the first file that failed.
func firstFileError(result *runner.Result) error {
	for _, file := range result.Files {
		if file.Error != nil {
			return file.Error
		}
	}
	return nil
}
