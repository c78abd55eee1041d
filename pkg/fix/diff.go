package fix

import (
	"fmt"
	"strings"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

// Diff is a unified diff between the original and modified content of a file.
type Diff struct {
	Path      string
	Unified   gotextdiff.Unified
	Additions int
	Deletions int
}

// GenerateDiff creates a unified diff between original and modified content.
// Returns nil if there are no changes.
func GenerateDiff(path string, original, modified []byte) *Diff {
	before, after := string(original), string(modified)
	if before == after {
		return nil
	}

	edits := myers.ComputeEdits(span.URIFromPath(path), before, after)
	clean := strings.TrimPrefix(path, "/")
	unified := gotextdiff.ToUnified("a/"+clean, "b/"+clean, before, edits)

	diff := &Diff{Path: path, Unified: unified}
	for _, hunk := range unified.Hunks {
		for _, line := range hunk.Lines {
			switch line.Kind {
			case gotextdiff.Insert:
				diff.Additions++
			case gotextdiff.Delete:
				diff.Deletions++
			case gotextdiff.Equal:
			}
		}
	}
	return diff
}

// HasChanges returns true if the diff contains any changes.
func (d *Diff) HasChanges() bool {
	return d != nil && len(d.Unified.Hunks) > 0
}

// String returns the diff in unified format.
func (d *Diff) String() string {
	if !d.HasChanges() {
		return ""
	}
	return fmt.Sprint(d.Unified)
}

// FullString returns the diff prefixed with a "diff --git" header.
func (d *Diff) FullString() string {
	if !d.HasChanges() {
		return ""
	}
	path := strings.TrimPrefix(d.Path, "/")
	return fmt.Sprintf("diff --git a/%s b/%s\n", path, path) + d.String()
}
