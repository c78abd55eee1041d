package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/yaklabco/flowfix/internal/configloader"
	"github.com/yaklabco/flowfix/pkg/fsutil"
	"github.com/yaklabco/flowfix/pkg/runner"
)

// Exit codes for flowfix.
const (
	// ExitSuccess indicates successful execution with no issues.
	ExitSuccess = 0

	// ExitLintErrors indicates the check completed but found errors.
	ExitLintErrors = 1

	// ExitLintWarnings indicates the check completed but found warnings (when strict mode).
	ExitLintWarnings = 2

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

// exitCodeTable describes every exit code for command help, in code order.
var exitCodeTable = []struct {
	code    int
	meaning string
}{
	{ExitSuccess, "no error findings (no warnings either with --strict)"},
	{ExitLintErrors, "error findings remain after fixes"},
	{ExitLintWarnings, "warning findings remain and --strict is set"},
	{ExitInvalidUsage, "invalid flag value or argument"},
	{ExitConfigError, "configuration could not be loaded or validated"},
	{ExitInternalError, "analysis or rewrite defect"},
	{ExitIOError, "a source file or backup could not be read or written"},
}

var (
	// ErrLintIssuesFound is returned when the check found issues that fail the run.
	ErrLintIssuesFound = errors.New("lint issues found")

	// ErrConfig marks configuration loading failures.
	ErrConfig = errors.New("configuration error")

	// ErrUsage marks invalid flag values.
	ErrUsage = errors.New("invalid usage")
)

// issuesError carries the exit code of a run that found issues.
type issuesError struct {
	code int
}

func (e *issuesError) Error() string {
	return fmt.Sprintf("%s (exit %d)", ErrLintIssuesFound, e.code)
}

func (e *issuesError) Unwrap() error {
	return ErrLintIssuesFound
}

// ExitCodeFromResult determines the exit code based on result and strict mode.
func ExitCodeFromResult(result *runner.Result, strict bool) int {
	if result == nil {
		return ExitSuccess
	}

	errs := result.Stats.DiagnosticsBySeverity["error"]
	warnings := result.Stats.DiagnosticsBySeverity["warning"]

	if errs > 0 {
		return ExitLintErrors
	}

	if strict && warnings > 0 {
		return ExitLintWarnings
	}

	return ExitSuccess
}

// ExitCodeFromError maps an error returned by a command to a process exit code.
func ExitCodeFromError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var issues *issuesError
	if errors.As(err, &issues) {
		return issues.code
	}

	var validation *configloader.ValidationError
	switch {
	case errors.Is(err, ErrUsage):
		return ExitInvalidUsage
	case errors.Is(err, ErrConfig), errors.As(err, &validation):
		return ExitConfigError
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission),
		errors.Is(err, fsutil.ErrNotFound), errors.Is(err, fsutil.ErrPermissionDenied):
		return ExitIOError
	default:
		return ExitInternalError
	}
}
