package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/flowfix/internal/cli"
	"github.com/yaklabco/flowfix/internal/configloader"
	"github.com/yaklabco/flowfix/pkg/fsutil"
)

const (
	// misplacedJump triggers FLOW010/misplaced-jump, an error with a fix.
	misplacedJump = "class T {\n    void a() {\n        break;\n    }\n}\n"
	jumpRemoved   = "class T {\n    void a() {\n    }\n}\n"

	// unusedLocal triggers FLOW008/unused-variable, a warning.
	unusedLocal = "class U {\n    void m() {\n        int x = 1;\n    }\n}\n"

	cleanSource = "class C {\n    int a() {\n        return 1;\n    }\n}\n"

	baseConfig = "analysis:\n  null_analysis: true\n"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// execute runs the root command with an explicit config so the project
// configuration of the working tree never leaks in.
func execute(t *testing.T, configContent string, args ...string) (string, error) {
	t.Helper()

	cfgFile := writeFile(t, t.TempDir(), ".flowfix.yml", configContent)

	cmd := cli.NewRootCommand(testInfo)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", cfgFile, "--color", "never"}, args...))

	err := cmd.Execute()
	return stdout.String() + stderr.String(), err
}

func TestCheckRuleFormat(t *testing.T) {
	t.Parallel()

	file := writeFile(t, t.TempDir(), "T.java", misplacedJump)

	tests := []struct {
		format  string
		want    string
		notWant string
	}{
		{format: "name", want: "(misplaced-jump)", notWant: "FLOW010"},
		{format: "id", want: "(FLOW010)", notWant: "misplaced-jump"},
		{format: "combined", want: "(FLOW010/misplaced-jump)"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()

			out, err := execute(t, baseConfig, "check", "--rule-format", tt.format, "--no-context", file)
			require.ErrorIs(t, err, cli.ErrLintIssuesFound)
			assert.Contains(t, out, tt.want)
			if tt.notWant != "" {
				assert.NotContains(t, out, tt.notWant)
			}
		})
	}
}

func TestCheckExitCodes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	files := map[string]string{
		"clean":   writeFile(t, dir, "C.java", cleanSource),
		"warning": writeFile(t, dir, "U.java", unusedLocal),
		"error":   writeFile(t, dir, "T.java", misplacedJump),
	}

	tests := []struct {
		name  string
		file  string
		extra []string
		want  int
	}{
		{name: "clean", file: "clean", want: cli.ExitSuccess},
		{name: "warning", file: "warning", want: cli.ExitSuccess},
		{name: "strict warning", file: "warning", extra: []string{"--strict"}, want: cli.ExitLintWarnings},
		{name: "error", file: "error", want: cli.ExitLintErrors},
		{name: "disabled error", file: "error", extra: []string{"--disable", "FLOW010"}, want: cli.ExitSuccess},
		{name: "invalid format", file: "clean", extra: []string{"--format", "xml"}, want: cli.ExitConfigError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			args := append([]string{"check"}, tt.extra...)
			_, err := execute(t, baseConfig, append(args, files[tt.file])...)
			assert.Equal(t, tt.want, cli.ExitCodeFromError(err))
		})
	}
}

func TestCheckMissingPath(t *testing.T) {
	t.Parallel()

	_, err := execute(t, baseConfig, "check", filepath.Join(t.TempDir(), "Missing.java"))
	require.Error(t, err)
	assert.Equal(t, cli.ExitIOError, cli.ExitCodeFromError(err))
}

func TestCheckConfigDisablesRuleByName(t *testing.T) {
	t.Parallel()

	file := writeFile(t, t.TempDir(), "T.java", misplacedJump)
	out, err := execute(t, "rules:\n  misplaced-jump:\n    enabled: false\n", "check", file)
	require.NoError(t, err)
	assert.NotContains(t, out, "misplaced-jump")
	assert.Contains(t, out, "No issues found")
}

func TestCheckInvalidConfig(t *testing.T) {
	t.Parallel()

	file := writeFile(t, t.TempDir(), "T.java", cleanSource)
	_, err := execute(t, "format:\n  tab_width: -1\n", "check", file)
	require.Error(t, err)
	assert.Equal(t, cli.ExitConfigError, cli.ExitCodeFromError(err))
}

func TestCheckJSON(t *testing.T) {
	t.Parallel()

	file := writeFile(t, t.TempDir(), "T.java", misplacedJump)
	out, err := execute(t, baseConfig, "check", "--format", "json", file)
	require.ErrorIs(t, err, cli.ErrLintIssuesFound)

	var doc struct {
		Diagnostics []struct {
			RuleID   string `json:"ruleId"`
			RuleName string `json:"ruleName"`
			Fixable  bool   `json:"fixable"`
		} `json:"diagnostics"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Diagnostics, 1)
	assert.Equal(t, "FLOW010", doc.Diagnostics[0].RuleID)
	assert.Equal(t, "misplaced-jump", doc.Diagnostics[0].RuleName)
	assert.True(t, doc.Diagnostics[0].Fixable)
}

func TestCheckProposals(t *testing.T) {
	t.Parallel()

	file := writeFile(t, t.TempDir(), "T.java", "class T {\n    void m() {\n        throw new IOException();\n    }\n}\n")
	out, err := execute(t, baseConfig, "check", "--proposals", file)
	require.ErrorIs(t, err, cli.ErrLintIssuesFound)
	assert.Contains(t, out, "* Add throws declaration [quickfix]")
	assert.Contains(t, out, "Surround with try/catch")
}

func TestCheckFixAndRestore(t *testing.T) {
	t.Parallel()

	file := writeFile(t, t.TempDir(), "T.java", misplacedJump)

	_, err := execute(t, baseConfig, "check", "--fix", file)
	require.NoError(t, err)

	got, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, jumpRemoved, string(got))
	assert.True(t, fsutil.HasBackup(file))

	_, err = execute(t, baseConfig, "restore", file)
	require.NoError(t, err)

	got, err = os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, misplacedJump, string(got))
	assert.False(t, fsutil.HasBackup(file))
}

func TestCheckFixWithoutBackups(t *testing.T) {
	t.Parallel()

	file := writeFile(t, t.TempDir(), "T.java", misplacedJump)
	_, err := execute(t, baseConfig, "check", "--fix", "--no-backups", file)
	require.NoError(t, err)
	assert.False(t, fsutil.HasBackup(file))
}

func TestCheckDryRunDiff(t *testing.T) {
	t.Parallel()

	file := writeFile(t, t.TempDir(), "T.java", misplacedJump)
	out, _ := execute(t, baseConfig, "check", "--fix", "--dry-run", "--format", "diff", file)

	assert.Contains(t, out, "-        break;")
	assert.Contains(t, out, "1 file changed")

	got, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, misplacedJump, string(got), "dry run must not write")
}

func TestCheckSummaryOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "T.java", misplacedJump)
	writeFile(t, dir, "U.java", unusedLocal)

	tests := []struct {
		order string
		first string
		last  string
	}{
		{order: "rules", first: "Rules Summary", last: "Files Summary"},
		{order: "files", first: "Files Summary", last: "Rules Summary"},
	}

	for _, tt := range tests {
		t.Run(tt.order, func(t *testing.T) {
			t.Parallel()

			out, err := execute(t, baseConfig, "check", "--format", "summary", "--summary-order", tt.order, dir)
			require.ErrorIs(t, err, cli.ErrLintIssuesFound)
			require.Contains(t, out, tt.first)
			require.Contains(t, out, tt.last)
			assert.Less(t, strings.Index(out, tt.first), strings.Index(out, tt.last))
			assert.Contains(t, out, "unused-variable")
		})
	}
}

func TestCheckSummaryNoIssues(t *testing.T) {
	t.Parallel()

	file := writeFile(t, t.TempDir(), "C.java", cleanSource)
	out, err := execute(t, baseConfig, "check", "--format", "summary", file)
	require.NoError(t, err)
	assert.Contains(t, out, "No issues found")
}

func TestRulesJSON(t *testing.T) {
	t.Parallel()

	out, err := execute(t, baseConfig, "rules", "--format", "json")
	require.NoError(t, err)

	var rules []struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Fixable bool   `json:"fixable"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rules))
	require.Len(t, rules, 12)
	assert.Equal(t, "FLOW001", rules[0].ID)
	assert.Equal(t, "unreachable-code", rules[0].Name)
	assert.True(t, rules[0].Fixable)
}

func TestRulesPacksJSON(t *testing.T) {
	t.Parallel()

	out, err := execute(t, baseConfig, "rules", "--packs", "--format", "json")
	require.NoError(t, err)

	var packs []struct {
		Name  string   `json:"name"`
		Rules []string `json:"rules"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &packs))
	require.Len(t, packs, 4)
	assert.Equal(t, "core", packs[0].Name)
	assert.Len(t, packs[1].Rules, 12)
}

func TestRulesInvalidFormat(t *testing.T) {
	t.Parallel()

	_, err := execute(t, baseConfig, "rules", "--format", "xml")
	assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCodeFromError(err))
}

func TestInit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		file      string
		args      []string
		wantRules int
	}{
		{name: "yaml", file: ".flowfix.yml"},
		{name: "full toml", file: ".flowfix.toml", args: []string{"--format", "toml", "--full"}, wantRules: 12},
		{name: "strict pack", file: "strict.yml", args: []string{"--pack", "strict"}, wantRules: 12},
		{name: "pack as toml", file: "strict.toml", args: []string{"--pack", "strict"}, wantRules: 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), tt.file)
			args := append([]string{"init", "--output", path}, tt.args...)
			_, err := execute(t, baseConfig, args...)
			require.NoError(t, err)

			cfg, err := configloader.LoadFile(path)
			require.NoError(t, err)
			assert.Len(t, cfg.Rules, tt.wantRules)
		})
	}
}

func TestInitErrors(t *testing.T) {
	t.Parallel()

	existing := writeFile(t, t.TempDir(), ".flowfix.yml", baseConfig)

	tests := []struct {
		name string
		args []string
	}{
		{name: "existing file", args: []string{"--output", existing}},
		{name: "unknown pack", args: []string{"--output", filepath.Join(t.TempDir(), "x.yml"), "--pack", "missing"}},
		{name: "unknown format", args: []string{"--output", filepath.Join(t.TempDir(), "x.json"), "--format", "json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := execute(t, baseConfig, append([]string{"init"}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCodeFromError(err))
		})
	}
}

func TestRestoreWithoutBackups(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "C.java", cleanSource)
	_, err := execute(t, baseConfig, "restore", dir)
	require.NoError(t, err)
}
