package reporter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yaklabco/flowfix/pkg/analysis"
)

// JSONRenderer writes the analysis report as one JSON document.
type JSONRenderer struct {
	output
}

// NewJSONRenderer creates a JSON renderer.
func NewJSONRenderer(opts Options) *JSONRenderer {
	return &JSONRenderer{output: newOutput(opts)}
}

// Render implements Renderer.
func (r *JSONRenderer) Render(_ context.Context, report *analysis.Report) (err error) {
	defer r.flush(&err)

	encoder := json.NewEncoder(r.bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}
