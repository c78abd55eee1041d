package reporter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/flowfix/pkg/config"
	"github.com/yaklabco/flowfix/pkg/fix"
	"github.com/yaklabco/flowfix/pkg/lint"
	_ "github.com/yaklabco/flowfix/pkg/lint/rules"
	"github.com/yaklabco/flowfix/pkg/parser"
	"github.com/yaklabco/flowfix/pkg/reporter"
	"github.com/yaklabco/flowfix/pkg/runner"
)

const (
	throwing = "class T {\n    void m() {\n        throw new IOException();\n    }\n}\n"
	unused   = "class U {\n    void m() {\n        int x = 1;\n    }\n}\n"
)

func checked(t *testing.T, path, src string) runner.FileOutcome {
	t.Helper()

	engine := lint.NewEngine(parser.New(), lint.DefaultRegistry)
	fr, err := engine.CheckFile(context.Background(), path, []byte(src), config.NewConfig())
	require.NoError(t, err)
	return runner.FileOutcome{Path: path, Result: &lint.PipelineResult{FileResult: fr, Path: path}}
}

func sampleResult(t *testing.T) *runner.Result {
	t.Helper()

	return &runner.Result{
		Files: []runner.FileOutcome{
			checked(t, "/work/src/T.java", throwing),
			checked(t, "/work/src/U.java", unused),
		},
		Stats: runner.Stats{
			FilesProcessed:        2,
			FilesWithIssues:       2,
			DiagnosticsTotal:      2,
			DiagnosticsFixable:    2,
			DiagnosticsBySeverity: map[string]int{"error": 1, "warning": 1},
		},
	}
}

func options(buf *bytes.Buffer, format reporter.Format) reporter.Options {
	opts := reporter.DefaultOptions()
	opts.Writer = buf
	opts.Format = format
	opts.Color = "never"
	opts.WorkingDir = "/work"
	return opts
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    reporter.Format
		wantErr bool
	}{
		{input: "", want: reporter.FormatText},
		{input: "text", want: reporter.FormatText},
		{input: "table", want: reporter.FormatTable},
		{input: "json", want: reporter.FormatJSON},
		{input: "sarif", want: reporter.FormatSARIF},
		{input: "diff", want: reporter.FormatDiff},
		{input: "summary", want: reporter.FormatSummary},
		{input: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := reporter.ParseFormat(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, reporter.ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.IsValid())
		})
	}
}

func TestFormatsMatchConfig(t *testing.T) {
	t.Parallel()

	for _, f := range config.OutputFormats() {
		assert.True(t, reporter.Format(f).IsValid(), "format %s", f)
		rep, err := reporter.New(options(&bytes.Buffer{}, reporter.Format(f)))
		require.NoError(t, err)
		assert.NotNil(t, rep)
	}

	_, err := reporter.New(options(&bytes.Buffer{}, "xml"))
	require.ErrorIs(t, err, reporter.ErrUnknownFormat)
}

func TestOptionsFromConfig(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Output = config.FormatSARIF
	cfg.RuleFormat = config.RuleFormatCombined
	cfg.SummaryOrder = config.SummaryOrderFiles

	opts := reporter.OptionsFromConfig(cfg)
	assert.Equal(t, reporter.FormatSARIF, opts.Format)
	assert.Equal(t, config.RuleFormatCombined, opts.RuleFormat)
	assert.Equal(t, config.SummaryOrderFiles, opts.SummaryOrder)

	assert.Equal(t, reporter.DefaultOptions().Format, reporter.OptionsFromConfig(nil).Format)
}

func TestTextReporter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	opts := options(&buf, reporter.FormatText)
	opts.ShowProposals = true

	count, err := reporter.NewTextReporter(opts).Report(context.Background(), sampleResult(t))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	out := buf.String()
	assert.Contains(t, out, "src/T.java (1 issue)")
	assert.Contains(t, out, "src/T.java:3:9  error")
	assert.Contains(t, out, "(unhandled-exception)")
	assert.Contains(t, out, "        throw new IOException();")
	assert.Contains(t, out, "Suggestion: Add throws declaration (+1 more)")
	assert.Contains(t, out, "* Add throws declaration [quickfix]")
	assert.Contains(t, out, "Surround with try/catch [refactor]")
	assert.Contains(t, out, "src/U.java:3:13  warning")
	assert.Contains(t, out, "2 issues (1 errors, 1 warnings) in 2 files, 2 fixable")
	assert.NotContains(t, out, "/work/")
}

func TestTextReporterEmpty(t *testing.T) {
	t.Parallel()

	for _, result := range []*runner.Result{nil, {}} {
		var buf bytes.Buffer
		count, err := reporter.NewTextReporter(options(&buf, reporter.FormatText)).Report(context.Background(), result)
		require.NoError(t, err)
		assert.Zero(t, count)
		assert.Contains(t, buf.String(), "No files to check")
	}
}

func TestTextReporterFileError(t *testing.T) {
	t.Parallel()

	result := &runner.Result{Files: []runner.FileOutcome{{
		Path:  "/work/Bad.java",
		Error: lint.ErrPermissionDenied,
	}}}

	var buf bytes.Buffer
	opts := options(&buf, reporter.FormatText)
	opts.ShowSummary = false
	_, err := reporter.NewTextReporter(opts).Report(context.Background(), result)
	require.NoError(t, err)
	assert.Equal(t, "Bad.java: error: permission denied\n", buf.String())
}

func TestJSONReporter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep, err := reporter.New(options(&buf, reporter.FormatJSON))
	require.NoError(t, err)

	count, err := rep.Report(context.Background(), sampleResult(t))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	var doc struct {
		Version     string `json:"version"`
		Diagnostics []struct {
			FilePath  string `json:"filePath"`
			RuleID    string `json:"ruleId"`
			Code      string `json:"code"`
			Proposals []struct {
				Label     string `json:"label"`
				Preferred bool   `json:"preferred"`
				Edits     []struct {
					Offset int    `json:"offset"`
					Text   string `json:"text"`
				} `json:"edits"`
			} `json:"proposals"`
		} `json:"diagnostics"`
		Summary struct {
			Issues  int `json:"totalIssues"`
			Fixable int `json:"fixable"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, 2, doc.Summary.Issues)
	assert.Equal(t, 2, doc.Summary.Fixable)
	require.Len(t, doc.Diagnostics, 2)

	first := doc.Diagnostics[0]
	assert.Equal(t, "src/T.java", first.FilePath)
	assert.Equal(t, "FLOW009", first.Code)
	require.Len(t, first.Proposals, 2)
	assert.True(t, first.Proposals[0].Preferred)
	require.NotEmpty(t, first.Proposals[0].Edits)
	assert.Contains(t, first.Proposals[0].Edits[0].Text, "IOException")
}

func TestSARIFReporter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	opts := options(&buf, reporter.FormatSARIF)
	opts.ToolVersion = "1.2.3"

	count, err := reporter.NewSARIFReporter(opts).Report(context.Background(), sampleResult(t))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	var doc reporter.SARIFOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Runs, 1)

	driver := doc.Runs[0].Tool.Driver
	assert.Equal(t, "flowfix", driver.Name)
	assert.Equal(t, "1.2.3", driver.Version)
	require.Len(t, driver.Rules, 2)
	assert.Equal(t, "Checked exception is neither caught nor declared", driver.Rules[0].ShortDescription.Text)
	assert.Equal(t, "FLOW009", driver.Rules[0].Properties["code"])

	results := doc.Runs[0].Results
	require.Len(t, results, 2)
	assert.Equal(t, "error", results[0].Level)
	assert.Equal(t, "warning", results[1].Level)
	assert.Equal(t, 1, results[1].RuleIndex)
	loc := results[0].Locations[0].PhysicalLocation
	assert.Equal(t, "src/T.java", loc.ArtifactLocation.URI)
	assert.Equal(t, 3, loc.Region.StartLine)

	require.Len(t, results[0].Fixes, 1)
	fixDoc := results[0].Fixes[0]
	assert.Equal(t, "Add throws declaration", fixDoc.Description.Text)
	replacement := fixDoc.ArtifactChanges[0].Replacements[0]
	require.NotNil(t, replacement.DeletedRegion.ByteOffset)
	assert.Positive(t, *replacement.DeletedRegion.ByteOffset)
}

func TestDiffReporter(t *testing.T) {
	t.Parallel()

	fixed := "class U {\n    void m() {\n    }\n}\n"
	result := &runner.Result{Files: []runner.FileOutcome{
		{
			Path: "/work/src/U.java",
			Result: &lint.PipelineResult{
				Path:         "/work/src/U.java",
				Diff:         fix.GenerateDiff("/work/src/U.java", []byte(unused), []byte(fixed)),
				FixesApplied: 1,
			},
		},
		{Path: "/work/src/Clean.java", Result: &lint.PipelineResult{}},
		{Path: "/work/src/Odd.java", Result: &lint.PipelineResult{RejectedPass: true}},
	}}

	var buf bytes.Buffer
	count, err := reporter.NewDiffReporter(options(&buf, reporter.FormatDiff)).Report(context.Background(), result)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "diff --git a/src/U.java b/src/U.java\n--- a/src/U.java\n+++ b/src/U.java\n"))
	assert.Contains(t, out, "-        int x = 1;")
	assert.Contains(t, out, "1 file changed, 1 deletion(-); 1 fix applied; 1 with a rejected pass")
}

func TestTableReporter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	count, err := reporter.NewTableReporter(options(&buf, reporter.FormatTable)).Report(context.Background(), sampleResult(t))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	out := buf.String()
	assert.Contains(t, out, "src/T.java")
	assert.NotContains(t, out, "/work/")
	assert.Contains(t, out, "2 files checked | 1 errors | 1 warnings | 2 fixable")
	assert.Contains(t, out, "Run with --fix")
}
