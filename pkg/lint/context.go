package lint

import (
	"context"
	"sync"

	"github.com/yaklabco/flowfix/pkg/config"
	"github.com/yaklabco/flowfix/pkg/correction"
	"github.com/yaklabco/flowfix/pkg/flowcheck"
	"github.com/yaklabco/flowfix/pkg/indent"
	"github.com/yaklabco/flowfix/pkg/jast"
	"github.com/yaklabco/flowfix/pkg/rewrite"
)

// RuleContext provides everything a rule needs to check one file.
//
// RuleContext stores context.Context as a field because it is a short-lived
// parameter object created per rule invocation.
type RuleContext struct {
	// Ctx is the context for cancellation and timeouts.
	Ctx context.Context

	// File is the parsed FileSnapshot.
	File *jast.FileSnapshot

	// Root is the compilation unit (alias for File.Root).
	Root *jast.Node

	// Config is the resolved configuration.
	Config *config.Config

	// RuleConfig is the rule-specific configuration (may be nil).
	RuleConfig *config.RuleConfig

	// Registry provides access to the rule registry for name lookups.
	Registry *Registry

	analysis *Analysis
}

// NewRuleContext creates a RuleContext for the given file and configuration.
// Rules run through the same Analysis share one flow report.
func NewRuleContext(
	ctx context.Context,
	file *jast.FileSnapshot,
	cfg *config.Config,
	ruleCfg *config.RuleConfig,
	analysis *Analysis,
) *RuleContext {
	var root *jast.Node
	if file != nil {
		root = file.Root
	}
	if analysis == nil {
		analysis = NewAnalysis(file, cfg)
	}

	return &RuleContext{
		Ctx:        ctx,
		File:       file,
		Root:       root,
		Config:     cfg,
		RuleConfig: ruleCfg,
		analysis:   analysis,
	}
}

// Cancelled returns true if the context has been cancelled.
func (rc *RuleContext) Cancelled() bool {
	return rc.Ctx.Err() != nil
}

// Report returns the flow report of the file, analyzing it on first use.
func (rc *RuleContext) Report() (*flowcheck.Report, error) {
	return rc.analysis.Report(rc.Ctx)
}

// Findings returns the findings of the flow report with the given code.
func (rc *RuleContext) Findings(code flowcheck.Code) ([]flowcheck.Finding, error) {
	report, err := rc.Report()
	if report == nil {
		return nil, err
	}
	var out []flowcheck.Finding
	for _, f := range report.Findings {
		if f.Code == code {
			out = append(out, f)
		}
	}
	return out, err
}

// Proposals returns the correction proposals for f.
func (rc *RuleContext) Proposals(f flowcheck.Finding) []*correction.Proposal {
	return rc.analysis.Builder().Proposals(f)
}

// Option returns a rule-specific option value, or the default if not set.
func (rc *RuleContext) Option(key string, defaultValue any) any {
	if rc.RuleConfig == nil || rc.RuleConfig.Options == nil {
		return defaultValue
	}
	if v, ok := rc.RuleConfig.Options[key]; ok {
		return v
	}
	return defaultValue
}

// OptionBool returns a rule-specific boolean option, or the default.
func (rc *RuleContext) OptionBool(key string, defaultValue bool) bool {
	if b, ok := rc.Option(key, defaultValue).(bool); ok {
		return b
	}
	return defaultValue
}

// OptionInt returns a rule-specific integer option, or the default. YAML
// yields int and TOML yields int64.
func (rc *RuleContext) OptionInt(key string, defaultValue int) int {
	switch v := rc.Option(key, defaultValue).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return defaultValue
	}
}

// Analysis holds the per-file state shared by every rule: the flow report
// and the proposal builder. It is safe for concurrent use.
type Analysis struct {
	snap *jast.FileSnapshot
	opts flowcheck.Options
	rw   rewrite.Options

	reportOnce sync.Once
	report     *flowcheck.Report
	reportErr  error

	builderOnce sync.Once
	builder     *correction.Builder
}

// NewAnalysis prepares the shared analysis of snap under cfg.
func NewAnalysis(snap *jast.FileSnapshot, cfg *config.Config) *Analysis {
	return &Analysis{
		snap: snap,
		opts: FlowOptions(cfg),
		rw:   RewriteOptions(cfg),
	}
}

// Report runs the flow analyzers once and returns the cached result.
func (a *Analysis) Report(ctx context.Context) (*flowcheck.Report, error) {
	a.reportOnce.Do(func() {
		a.report, a.reportErr = flowcheck.Analyze(ctx, a.snap, a.opts)
	})
	return a.report, a.reportErr
}

// Builder returns the proposal builder for the snapshot.
func (a *Analysis) Builder() *correction.Builder {
	a.builderOnce.Do(func() {
		a.builder = correction.NewBuilder(a.snap, a.rw)
	})
	return a.builder
}

// FlowOptions maps the analysis section of cfg to analyzer flags.
func FlowOptions(cfg *config.Config) flowcheck.Options {
	if cfg == nil {
		return flowcheck.DefaultOptions()
	}
	return flowcheck.Options{
		AssertionsEnabled: cfg.AssertionsEnabled(),
		NullAnalysis:      cfg.NullAnalysis(),
	}
}

// RewriteOptions maps the format section of cfg to rewrite options.
func RewriteOptions(cfg *config.Config) rewrite.Options {
	if cfg == nil {
		return rewrite.Options{}
	}
	return rewrite.Options{
		Indent: indent.Options{
			TabWidth:   cfg.Format.TabWidth,
			IndentUnit: cfg.Format.IndentUnit,
		},
	}
}
