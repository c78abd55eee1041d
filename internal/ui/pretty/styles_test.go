package pretty_test

import (
	"bytes"
	"os"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/flowfix/internal/ui/pretty"
	"github.com/yaklabco/flowfix/pkg/config"
)

func TestNewStylesNoColorIsPlain(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	require.NotNil(t, styles)

	for _, rendered := range []string{
		styles.Bold.Render("x"),
		styles.Error.Render("x"),
		styles.Caret.Render("x"),
		styles.Proposal.Render("x"),
		styles.DiffAdd.Render("x"),
		styles.TableErrorRow.Render("x"),
		styles.Heading.Render("x"),
		styles.Flag.Render("x"),
	} {
		assert.Equal(t, "x", rendered)
	}

	assert.NotNil(t, pretty.NewStyles(true))
}

func TestIsColorEnabled(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	tests := []struct {
		mode string
		w    *bytes.Buffer
		want bool
	}{
		{"always", &buf, true},
		{"never", &buf, false},
		{"auto", &buf, false},
		{"", &buf, false},
		{"unknown", &buf, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, pretty.IsColorEnabled(tt.mode, tt.w), "mode %q", tt.mode)
	}
	assert.False(t, pretty.IsColorEnabled("never", os.Stdout))
}

func TestIsColorEnabledHonorsNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	assert.False(t, pretty.IsColorEnabled("auto", os.Stdout))
	assert.True(t, pretty.IsColorEnabled("always", os.Stdout))
}

func TestForSeverityPicksTheSeverityStyle(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(true)
	tests := []struct {
		sev  config.Severity
		want lipgloss.Style
	}{
		{config.SeverityError, styles.Error},
		{config.SeverityWarning, styles.Warning},
		{config.SeverityInfo, styles.Info},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want.Render("x"), styles.ForSeverity(tt.sev).Render("x"), string(tt.sev))
	}
	assert.Equal(t, "fatal", pretty.NewStyles(false).FormatSeverity("fatal"))
}
