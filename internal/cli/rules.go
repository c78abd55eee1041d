package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/flowfix/internal/logging"
	"github.com/yaklabco/flowfix/pkg/config"
	"github.com/yaklabco/flowfix/pkg/lint"
	"github.com/yaklabco/flowfix/pkg/lint/rules"
)

type rulesFlags struct {
	ruleFormat string
	format     string
	packs      bool
}

const formatJSON = "json"

// ruleInfo represents a rule in JSON output.
type ruleInfo struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Severity    string   `json:"severity"`
	Fixable     bool     `json:"fixable"`
	Tags        []string `json:"tags,omitempty"`
}

// packInfo represents a rule pack in JSON output.
type packInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Rules       []string `json:"rules"`
}

func newRulesCommand() *cobra.Command {
	flags := &rulesFlags{}

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List available rules",
		Long: `List all available rules with their IDs, descriptions,
default severity, and whether they offer fixes. With --packs, list the
built-in rule packs that "flowfix init --pack" can start from.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.format != "text" && flags.format != formatJSON {
				return fmt.Errorf("%w: format %q must be text or json", ErrUsage, flags.format)
			}
			if flags.packs {
				return outputPacks(cmd.OutOrStdout(), flags.format)
			}

			registered := lint.DefaultRegistry.Rules()
			if flags.format == formatJSON {
				return outputRulesJSON(cmd.OutOrStdout(), registered)
			}

			logger := logging.NewInteractive()
			logger.Info("available rules")

			ruleFormat := config.RuleFormat(flags.ruleFormat)
			for _, rule := range registered {
				fixable := "-"
				if rule.CanFix() {
					fixable = "yes"
				}

				logger.Info(config.FormatRuleID(ruleFormat, rule.ID(), rule.Name()),
					logging.FieldSeverity, rule.DefaultSeverity(),
					logging.FieldFixable, fixable,
					logging.FieldTags, strings.Join(rule.Tags(), ","),
					logging.FieldDescription, rule.Description(),
				)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&flags.ruleFormat, "rule-format", "name",
		"rule identifier format in output: name, id, or combined")
	cmd.Flags().StringVar(&flags.format, "format", "text",
		"output format: text, json")
	cmd.Flags().BoolVar(&flags.packs, "packs", false, "list rule packs instead of rules")

	return cmd
}

// outputRulesJSON outputs rules as a JSON array.
func outputRulesJSON(w io.Writer, registered []lint.Rule) error {
	infos := make([]ruleInfo, 0, len(registered))
	for _, rule := range registered {
		infos = append(infos, ruleInfo{
			ID:          rule.ID(),
			Name:        rule.Name(),
			Description: rule.Description(),
			Severity:    string(rule.DefaultSeverity()),
			Fixable:     rule.CanFix(),
			Tags:        rule.Tags(),
		})
	}
	return writeJSON(w, infos)
}

func outputPacks(w io.Writer, format string) error {
	packs := rules.Packs()
	infos := make([]packInfo, 0, len(packs))
	for _, p := range packs {
		ids := make([]string, 0, len(p.Rules))
		for _, rule := range lint.DefaultRegistry.Rules() {
			if _, ok := p.Rules[rule.ID()]; ok {
				ids = append(ids, rule.ID())
			}
		}
		infos = append(infos, packInfo{Name: p.Name, Description: p.Description, Rules: ids})
	}

	if format == formatJSON {
		return writeJSON(w, infos)
	}

	logger := logging.NewInteractive()
	logger.Info("available packs")
	for _, p := range infos {
		logger.Info(p.Name, logging.FieldDescription, p.Description, "rules", strings.Join(p.Rules, ","))
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}
