package cli_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/flowfix/internal/cli"
)

func TestHelpSections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		args   []string
		want   []string
		absent []string
	}{
		{
			name: "root lists packs and exit codes",
			args: []string{"--color", "never", "--help"},
			want: []string{
				"Usage:", "Commands:", "check", "Global Flags:", "--color string",
				`(default "auto")`, "Rule packs:", "core", "strict", "Exit codes:",
				"65   configuration could not be loaded or validated",
				`Use "flowfix [command] --help" for more information about a command.`,
			},
		},
		{
			name:   "check shows exit codes",
			args:   []string{"check", "--color", "never", "--help"},
			want:   []string{"flowfix check", "Aliases:", "lint", "Flags:", "--fix", "--debug", "Exit codes:"},
			absent: []string{"Rule packs:", "Commands:"},
		},
		{
			name:   "init shows packs",
			args:   []string{"init", "--color", "never", "--help"},
			want:   []string{"Rule packs:", "relaxed"},
			absent: []string{"Exit codes:"},
		},
		{
			name:   "version has neither",
			args:   []string{"version", "--color", "never", "--help"},
			absent: []string{"Rule packs:", "Exit codes:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			cmd := cli.NewRootCommand(testInfo)
			cmd.SetOut(&out)
			cmd.SetErr(&out)
			cmd.SetArgs(tt.args)
			require.NoError(t, cmd.Execute())

			for _, s := range tt.want {
				assert.Contains(t, out.String(), s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, out.String(), s)
			}
		})
	}
}
