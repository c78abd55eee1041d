package analysis_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/flowfix/pkg/analysis"
	"github.com/yaklabco/flowfix/pkg/config"
	"github.com/yaklabco/flowfix/pkg/lint"
	_ "github.com/yaklabco/flowfix/pkg/lint/rules"
	"github.com/yaklabco/flowfix/pkg/parser"
	"github.com/yaklabco/flowfix/pkg/runner"
)

func outcome(path string, diags ...lint.Diagnostic) runner.FileOutcome {
	return runner.FileOutcome{
		Path: path,
		Result: &lint.PipelineResult{
			FileResult: &lint.FileResult{Diagnostics: diags},
		},
	}
}

func diag(id, name string, sev config.Severity) lint.Diagnostic {
	return lint.Diagnostic{RuleID: id, RuleName: name, Severity: sev}
}

func sampleResult() *runner.Result {
	return &runner.Result{
		Files: []runner.FileOutcome{
			outcome("/src/A.java",
				diag("FLOW001", "unreachable-code", config.SeverityError),
				diag("FLOW001", "unreachable-code", config.SeverityError),
				diag("FLOW008", "unused-variable", config.SeverityWarning),
			),
			outcome("/src/B.java",
				diag("FLOW008", "unused-variable", config.SeverityWarning),
				diag("FLOW008", "unused-variable", config.SeverityInfo),
			),
			outcome("/src/C.java"),
			{Path: "/src/D.java", Error: errors.New("permission denied")},
		},
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	t.Parallel()

	for _, result := range []*runner.Result{nil, {}} {
		report := analysis.Analyze(result, analysis.DefaultOptions())
		require.NotNil(t, report)
		assert.Equal(t, analysis.ReportVersion, report.Version)
		assert.False(t, report.Totals.HasIssues())
		assert.Empty(t, report.Diagnostics)
		assert.Empty(t, report.ByFile)
		assert.Empty(t, report.ByRule)
	}
}

func TestAnalyzeTotals(t *testing.T) {
	t.Parallel()

	report := analysis.Analyze(sampleResult(), analysis.DefaultOptions())

	assert.Equal(t, analysis.Totals{
		Files:           4,
		FilesWithIssues: 2,
		Issues:          5,
		Errors:          2,
		Warnings:        2,
		Infos:           1,
		FilesErrored:    1,
	}, report.Totals)
	assert.Len(t, report.Diagnostics, 5)
}

func TestAnalyzeGrouping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		sortBy    analysis.SortField
		wantRules []string
		wantFiles []string
	}{
		{
			name:      "count",
			sortBy:    analysis.SortByCount,
			wantRules: []string{"FLOW008", "FLOW001"},
			wantFiles: []string{"src/A.java", "src/B.java"},
		},
		{
			name:      "severity",
			sortBy:    analysis.SortBySeverity,
			wantRules: []string{"FLOW001", "FLOW008"},
			wantFiles: []string{"src/A.java", "src/B.java"},
		},
		{
			name:      "alpha",
			sortBy:    analysis.SortByAlpha,
			wantRules: []string{"FLOW001", "FLOW008"},
			wantFiles: []string{"src/A.java", "src/B.java"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := analysis.DefaultOptions()
			opts.SortBy = tt.sortBy
			opts.WorkingDir = "/"
			report := analysis.Analyze(sampleResult(), opts)

			rules := make([]string, 0, len(report.ByRule))
			for _, r := range report.ByRule {
				rules = append(rules, r.RuleID)
			}
			files := make([]string, 0, len(report.ByFile))
			for _, f := range report.ByFile {
				files = append(files, f.Path)
			}
			assert.Equal(t, tt.wantRules, rules)
			assert.Equal(t, tt.wantFiles, files)
		})
	}
}

func TestAnalyzeRuleDetail(t *testing.T) {
	t.Parallel()

	report := analysis.Analyze(sampleResult(), analysis.DefaultOptions())
	require.Len(t, report.ByRule, 2)

	unused := report.ByRule[0]
	assert.Equal(t, "unused-variable", unused.RuleName)
	assert.Equal(t, 3, unused.Issues)
	assert.Equal(t, 2, unused.Warnings)
	assert.Equal(t, 1, unused.Infos)
	assert.Equal(t, []string{"/src/A.java", "/src/B.java"}, unused.Files)

	a := report.ByFile[0]
	assert.Equal(t, []string{"FLOW001", "FLOW008"}, a.Rules)
}

func TestAnalyzeProposals(t *testing.T) {
	t.Parallel()

	src := "class T {\n    void m() {\n        throw new IOException();\n    }\n}\n"
	engine := lint.NewEngine(parser.New(), lint.DefaultRegistry)
	fr, err := engine.CheckFile(context.Background(), "T.java", []byte(src), config.NewConfig())
	require.NoError(t, err)

	result := &runner.Result{Files: []runner.FileOutcome{{
		Path:   "T.java",
		Result: &lint.PipelineResult{FileResult: fr},
	}}}
	report := analysis.Analyze(result, analysis.DefaultOptions())

	require.Len(t, report.Diagnostics, 1)
	entry := report.Diagnostics[0]
	assert.Equal(t, "FLOW009", entry.Code)
	assert.True(t, entry.Fixable)
	assert.Equal(t, 1, report.Totals.Fixable)

	require.Len(t, entry.Proposals, 2)
	first, second := entry.Proposals[0], entry.Proposals[1]
	assert.Equal(t, "Add throws declaration", first.Label)
	assert.Equal(t, "quickfix", first.Kind)
	assert.True(t, first.Preferred)
	assert.NotEmpty(t, first.Edits)
	assert.Equal(t, "Surround with try/catch", second.Label)
	assert.False(t, second.Preferred)
	assert.Empty(t, second.Edits)

	require.Len(t, report.ByRule, 1)
	assert.Equal(t, "FLOW009", report.ByRule[0].Code)
	assert.Equal(t, 1, report.ByRule[0].Fixable)
	assert.Equal(t, []analysis.KindAnalysis{
		{Kind: "quickfix", Offered: 1, Preferred: 1},
		{Kind: "refactor", Offered: 1, Preferred: 0},
	}, report.ByKind)
}

func TestAnalyzeViews(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		views     analysis.View
		wantDiags bool
		wantFiles bool
		wantRules bool
	}{
		{name: "all", views: analysis.ViewAll, wantDiags: true, wantFiles: true, wantRules: true},
		{name: "rules only", views: analysis.ViewByRule, wantRules: true},
		{name: "diagnostics and files", views: analysis.ViewDiagnostics | analysis.ViewByFile, wantDiags: true, wantFiles: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			report := analysis.Analyze(sampleResult(), analysis.Options{Views: tt.views, SortBy: analysis.SortByAlpha})
			assert.Equal(t, tt.wantDiags, len(report.Diagnostics) > 0)
			assert.Equal(t, tt.wantFiles, len(report.ByFile) > 0)
			assert.Equal(t, tt.wantRules, len(report.ByRule) > 0)
			assert.Equal(t, 5, report.Totals.Issues)
		})
	}
}

func TestAnalyzeFixCounts(t *testing.T) {
	t.Parallel()

	fixed := outcome("A.java")
	fixed.Result.Written = true
	fixed.Result.FixesApplied = 3

	report := analysis.Analyze(&runner.Result{Files: []runner.FileOutcome{fixed}}, analysis.DefaultOptions())
	assert.Equal(t, 1, report.Totals.FilesModified)
	assert.Equal(t, 3, report.Totals.Fixed)
	assert.False(t, report.Totals.HasErrors())
}

func TestAnalyzeFileErrors(t *testing.T) {
	t.Parallel()

	opts := analysis.DefaultOptions()
	opts.WorkingDir = "/src"
	report := analysis.Analyze(sampleResult(), opts)

	assert.Equal(t, []analysis.FileError{{Path: "D.java", Message: "permission denied"}}, report.Errors)
}
