package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/yaklabco/flowfix/internal/configloader"
	"github.com/yaklabco/flowfix/internal/logging"
	"github.com/yaklabco/flowfix/pkg/config"
	"github.com/yaklabco/flowfix/pkg/lint/rules"
)

// configFilePermissions is the file mode for configuration files (world-readable).
const configFilePermissions = 0o644

const formatTOML = "toml"

// initFlags holds the flags for the init command.
type initFlags struct {
	force  bool
	full   bool
	format string
	output string
	pack   string
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new flowfix configuration file",
		Long: `Create a new .flowfix.yml configuration file in the current directory
with sensible defaults. The file can be customized to enable/disable rules,
change severities, and tune the analysis.

Examples:
  flowfix init                       Create minimal .flowfix.yml
  flowfix init --full                Create full config with all rules documented
  flowfix init --format toml         Create .flowfix.toml instead
  flowfix init --pack strict         Start from the strict rule pack
  flowfix init --output custom.yml   Write to a custom file path`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runInit(flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Overwrite existing configuration file")
	cmd.Flags().BoolVar(&flags.full, "full", false, "Generate full template with all rules documented")
	cmd.Flags().StringVar(&flags.format, "format", "yaml", "Output format: yaml or toml")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file path (default: .flowfix.yml or .flowfix.toml)")
	cmd.Flags().StringVar(&flags.pack, "pack", "",
		"Start from a rule pack: "+strings.Join(rules.PackNames(), ", "))

	return cmd
}

func runInit(flags *initFlags) error {
	logger := logging.NewInteractive()

	if flags.format != "yaml" && flags.format != formatTOML {
		return fmt.Errorf("%w: format %q must be yaml or toml", ErrUsage, flags.format)
	}

	outputPath := flags.output
	if outputPath == "" {
		outputPath = ".flowfix.yml"
		if flags.format == formatTOML {
			outputPath = ".flowfix.toml"
		}
	}

	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if _, err := os.Stat(absPath); err == nil {
		if !flags.force {
			return fmt.Errorf("%w: file %q already exists; use --force to overwrite", ErrUsage, outputPath)
		}
		logger.Warn("overwriting existing file", logging.FieldPath, outputPath)
	}

	if flags.pack != "" {
		return writePack(logger, flags.pack, absPath, outputPath)
	}

	content, err := config.GenerateTemplate(config.TemplateOptions{
		Full:   flags.full,
		Format: flags.format,
	})
	if err != nil {
		return fmt.Errorf("generate template: %w", err)
	}

	if err := os.WriteFile(absPath, content, configFilePermissions); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	logger.Info("created configuration file", logging.FieldPath, outputPath)
	if flags.full {
		logger.Info("full template includes all rules with documentation")
	}
	logger.Info("customize your configuration by editing the file")
	logger.Info("run 'flowfix rules' to see all available rules")

	return nil
}

// writePack writes a configuration holding the rule settings of a pack.
// The file format follows the path's extension.
func writePack(logger *log.Logger, name, absPath, shownPath string) error {
	pack := rules.PackByName(name)
	if pack == nil {
		return fmt.Errorf("%w: unknown pack %q (available: %s)", ErrUsage, name, strings.Join(rules.PackNames(), ", "))
	}

	cfg := config.NewConfig()
	for id, rc := range pack.Rules {
		cfg.Rules[id] = rc.Clone()
	}

	if err := configloader.WriteFile(cfg, absPath); err != nil {
		return err
	}

	logger.Info("created configuration file", logging.FieldPath, shownPath, "pack", pack.Name)
	return nil
}
