package configloader_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/flowfix/internal/configloader"
	"github.com/yaklabco/flowfix/pkg/config"
	_ "github.com/yaklabco/flowfix/pkg/lint/rules" // Register rules
)

func isolated(dir string) configloader.LoadOptions {
	return configloader.LoadOptions{
		WorkingDir:         dir,
		IgnoreSystemConfig: true,
		IgnoreUserConfig:   true,
		IgnoreEnv:          true,
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	result, err := configloader.Load(context.Background(), isolated(t.TempDir()))
	require.NoError(t, err)

	assert.Equal(t, config.NewConfig(), result.Config)
	assert.Empty(t, result.LoadedFrom)
	assert.Empty(t, result.Warnings)
}

func TestLoadProjectConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "yaml",
			file: ".flowfix.yml",
			content: `
analysis:
  unused_variable_severity: info
format:
  tab_width: 2
rules:
  unreachable-code:
    enabled: false
`,
		},
		{
			name: "toml",
			file: ".flowfix.toml",
			content: `
[analysis]
unused_variable_severity = "info"

[format]
tab_width = 2

[rules.unreachable-code]
enabled = false
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, tt.file), tt.content)

			result, err := configloader.Load(context.Background(), isolated(dir))
			require.NoError(t, err)

			cfg := result.Config
			assert.Equal(t, []string{filepath.Join(dir, tt.file)}, result.LoadedFrom)
			assert.Equal(t, "info", cfg.Analysis.UnusedVariableSeverity)
			assert.Equal(t, 2, cfg.Format.TabWidth)
			assert.Equal(t, config.DefaultIndentUnit, cfg.Format.IndentUnit, "unset fields keep defaults")
			assert.True(t, cfg.NullAnalysis())
			require.Contains(t, cfg.Rules, "FLOW001", "names are normalized to IDs")
			assert.False(t, *cfg.Rules["FLOW001"].Enabled)
		})
	}
}

func TestFindProjectConfigSearchesUpward(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	writeFile(t, filepath.Join(root, ".flowfix.yaml"), "ignore: []\n")
	nested := filepath.Join(root, "src", "main", "java")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found, err := configloader.FindProjectConfig(context.Background(), nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ".flowfix.yaml"), found)
}

func TestFindProjectConfigStopsAtVCSRoot(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".flowfix.yml"), "ignore: []\n")
	repo := filepath.Join(root, "repo")
	require.NoError(t, os.MkdirAll(filepath.Join(repo, ".git"), 0o755))

	found, err := configloader.FindProjectConfig(context.Background(), repo)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestLoadPrecedence(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".flowfix.yml"), "format:\n  tab_width: 2\n  indent_unit: \"  \"\n")
	explicit := filepath.Join(dir, "ci", "flowfix.toml")
	writeFile(t, explicit, "[format]\ntab_width = 8\n")

	opts := isolated(dir)
	opts.ExplicitPath = explicit
	opts.CLIConfig = &config.Config{Output: config.FormatJSON, Fix: true, DisableRules: []string{"unused"}}

	result, err := configloader.Load(context.Background(), opts)
	require.NoError(t, err)

	cfg := result.Config
	assert.Len(t, result.LoadedFrom, 2)
	assert.Equal(t, 8, cfg.Format.TabWidth, "explicit file beats project file")
	assert.Equal(t, "  ", cfg.Format.IndentUnit)
	assert.Equal(t, config.FormatJSON, cfg.Output)
	assert.True(t, cfg.Fix)
	assert.Equal(t, []string{"unused"}, cfg.DisableRules)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"rule severity", "rules:\n  FLOW001:\n    severity: fatal\n", "rules.FLOW001.severity"},
		{"unused severity", "analysis:\n  unused_variable_severity: error\n", "analysis.unused_variable_severity"},
		{"indent unit", "format:\n  indent_unit: \"xx\"\n", "format.indent_unit"},
		{"extension", "extensions: [\"java\"]\n", "extensions[0]"},
		{"ignore glob", "ignore: [\"[unclosed\"]\n", "ignore[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			path := filepath.Join(dir, ".flowfix.yml")
			writeFile(t, path, tt.content)

			_, err := configloader.Load(context.Background(), isolated(dir))
			require.Error(t, err)

			var verr *configloader.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, path, verr.FilePath)
		})
	}
}

func TestLoadWarnsAboutUnknownRules(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".flowfix.yml"), "rules:\n  MD013:\n    enabled: false\n")

	result, err := configloader.Load(context.Background(), isolated(dir))
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "MD013")
}

func TestLoadDuplicateRuleKeys(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".flowfix.yml"),
		"rules:\n  FLOW008:\n    severity: info\n  unused-variable:\n    enabled: false\n")

	result, err := configloader.Load(context.Background(), isolated(dir))
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)

	rc := result.Config.Rules["FLOW008"]
	require.NotNil(t, rc.Severity)
	assert.Equal(t, "info", *rc.Severity)
	require.NotNil(t, rc.Enabled)
	assert.False(t, *rc.Enabled)
}

func TestWriteFileRoundTrip(t *testing.T) {
	t.Parallel()

	for _, name := range []string{".flowfix.yml", ".flowfix.toml"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := config.NewConfig()
			cfg.Format.TabWidth = 3
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, configloader.WriteFile(cfg, path))

			back, err := configloader.LoadFile(path)
			require.NoError(t, err)
			assert.Equal(t, 3, back.Format.TabWidth)
		})
	}
}
