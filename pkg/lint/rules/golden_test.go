package rules_test

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/flowfix/pkg/config"
	"github.com/yaklabco/flowfix/pkg/fix"
	"github.com/yaklabco/flowfix/pkg/lint"
	_ "github.com/yaklabco/flowfix/pkg/lint/rules"
	"github.com/yaklabco/flowfix/pkg/parser"
)

// update rewrites golden files instead of comparing.
// Usage: go test ./pkg/lint/rules/... -run TestGolden -update.
var update = flag.Bool("update", false, "update golden files")

const (
	inputSuffix       = ".input.java"
	goldenSuffix      = ".golden.java"
	diagnosticsSuffix = ".diagnostics"
)

type goldenCase struct {
	Name   string
	RuleID string
	Input  string
}

func testdataDir(t *testing.T) string {
	t.Helper()

	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("failed to get test file path")
	}
	return filepath.Join(filepath.Dir(filename), "testdata")
}

// discoverCases finds testdata/<RULE_ID>/*.input.java files.
func discoverCases(t *testing.T) []goldenCase {
	t.Helper()

	inputs, err := filepath.Glob(filepath.Join(testdataDir(t), "FLOW*", "*"+inputSuffix))
	require.NoError(t, err)

	cases := make([]goldenCase, 0, len(inputs))
	for _, input := range inputs {
		ruleID := filepath.Base(filepath.Dir(input))
		name := strings.TrimSuffix(filepath.Base(input), inputSuffix)
		cases = append(cases, goldenCase{
			Name:   ruleID + "/" + name,
			RuleID: ruleID,
			Input:  input,
		})
	}
	return cases
}

// TestGoldenPerRule runs each case with only its rule registered, in fix
// mode, and compares the diagnostics and the fixed source.
func TestGoldenPerRule(t *testing.T) {
	cases := discoverCases(t)
	require.NotEmpty(t, cases)

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			if !*update {
				t.Parallel()
			}
			runGolden(t, tc)
		})
	}
}

func runGolden(t *testing.T, tc goldenCase) {
	t.Helper()

	rule, ok := lint.DefaultRegistry.GetByID(tc.RuleID)
	require.True(t, ok, "rule %s not registered", tc.RuleID)
	registry := lint.NewRegistry()
	registry.Register(rule)

	content, err := os.ReadFile(tc.Input)
	require.NoError(t, err)

	cfg := config.NewConfig()
	cfg.Fix = true
	engine := lint.NewEngine(parser.New(), registry)
	result, err := engine.CheckFile(context.Background(), tc.Input, content, cfg)
	require.NoError(t, err)

	base := strings.TrimSuffix(tc.Input, inputSuffix)
	compareGolden(t, formatDiagnostics(result.Diagnostics), base+diagnosticsSuffix)
	compareGolden(t, fix.ApplyEdits(content, result.Edits), base+goldenSuffix)
}

func formatDiagnostics(diags []lint.Diagnostic) []byte {
	var b strings.Builder
	for _, d := range diags {
		fmt.Fprintf(&b, "%d:%d %s\n", d.StartLine, d.StartColumn, d.RuleID)
	}
	return []byte(b.String())
}

func compareGolden(t *testing.T, actual []byte, path string) {
	t.Helper()

	if *update {
		require.NoError(t, os.WriteFile(path, actual, 0o600))
		return
	}
	want, err := os.ReadFile(path)
	require.NoError(t, err, "missing golden file; run with -update")
	assert.Equal(t, string(want), string(actual), "mismatch with %s", filepath.Base(path))
}
