package cli_test

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/flowfix/internal/cli"
	"github.com/yaklabco/flowfix/internal/configloader"
	"github.com/yaklabco/flowfix/pkg/runner"
)

func TestExitCodeFromResult(t *testing.T) {
	t.Parallel()

	stats := func(errs, warnings int) *runner.Result {
		return &runner.Result{Stats: runner.Stats{
			DiagnosticsBySeverity: map[string]int{"error": errs, "warning": warnings},
		}}
	}

	tests := []struct {
		name   string
		result *runner.Result
		strict bool
		want   int
	}{
		{"nil", nil, false, cli.ExitSuccess},
		{"clean", stats(0, 0), true, cli.ExitSuccess},
		{"errors", stats(2, 1), false, cli.ExitLintErrors},
		{"warnings", stats(0, 3), false, cli.ExitSuccess},
		{"strict warnings", stats(0, 3), true, cli.ExitLintWarnings},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, cli.ExitCodeFromResult(tt.result, tt.strict))
		})
	}
}

func TestExitCodeFromError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, cli.ExitSuccess},
		{"usage", fmt.Errorf("%w: bad", cli.ErrUsage), cli.ExitInvalidUsage},
		{"config", fmt.Errorf("%w: bad", cli.ErrConfig), cli.ExitConfigError},
		{"validation", &configloader.ValidationError{Field: "jobs", Message: "bad"}, cli.ExitConfigError},
		{"missing path", fmt.Errorf("stat x: %w", fs.ErrNotExist), cli.ExitIOError},
		{"other", errors.New("boom"), cli.ExitInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, cli.ExitCodeFromError(tt.err))
		})
	}
}
