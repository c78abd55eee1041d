package reporter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yaklabco/flowfix/pkg/config"
)

// Format names an output format. It is the configuration type, so a
// validated config value selects a reporter without conversion.
type Format = config.OutputFormat

// Output formats supported by the reporter.
const (
	FormatText    = config.FormatText
	FormatTable   = config.FormatTable
	FormatJSON    = config.FormatJSON
	FormatSARIF   = config.FormatSARIF
	FormatDiff    = config.FormatDiff
	FormatSummary = config.FormatSummary
)

// ErrUnknownFormat is returned by ParseFormat for names no reporter serves.
var ErrUnknownFormat = errors.New("unknown format")

// ParseFormat resolves a --format value. The empty string means text.
func ParseFormat(name string) (Format, error) {
	if name == "" {
		return FormatText, nil
	}
	if f := Format(name); f.IsValid() {
		return f, nil
	}
	valid := make([]string, 0, len(config.OutputFormats()))
	for _, f := range config.OutputFormats() {
		valid = append(valid, string(f))
	}
	return "", fmt.Errorf("%w %q; valid formats: %s", ErrUnknownFormat, name, strings.Join(valid, ", "))
}
