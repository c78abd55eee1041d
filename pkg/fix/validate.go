package fix

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError describes an invalid edit.
type ValidationError struct {
	Edit    TextEdit
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid edit [%d:%d]: %s", e.Edit.Offset, e.Edit.End(), e.Message)
}

// Conflict is one pair of overlapping edits.
type Conflict struct {
	First  TextEdit
	Second TextEdit
}

// ConflictError lists every pair of overlapping edits found in one set.
type ConflictError struct {
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	parts := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		parts = append(parts, fmt.Sprintf("[%d:%d] and [%d:%d]",
			c.First.Offset, c.First.End(), c.Second.Offset, c.Second.End()))
	}
	return fmt.Sprintf("%d overlapping edit(s): %s", len(e.Conflicts), strings.Join(parts, ", "))
}

// ValidateEdits checks that all edits have valid ranges for the given content length.
// Returns nil if all edits are valid, or the first validation error encountered.
func ValidateEdits(edits []TextEdit, contentLen int) error {
	for _, edit := range edits {
		if edit.Offset < 0 {
			return &ValidationError{Edit: edit, Message: "offset is negative"}
		}
		if edit.Length < 0 {
			return &ValidationError{Edit: edit, Message: "length is negative"}
		}
		if edit.End() > contentLen {
			return &ValidationError{
				Edit:    edit,
				Message: fmt.Sprintf("end offset %d exceeds content length %d", edit.End(), contentLen),
			}
		}
	}
	return nil
}

// SortEdits sorts edits by offset, then by length, keeping insertion order
// for equal keys.
func SortEdits(edits []TextEdit) {
	sort.SliceStable(edits, func(i, j int) bool {
		if edits[i].Offset != edits[j].Offset {
			return edits[i].Offset < edits[j].Offset
		}
		return edits[i].Length < edits[j].Length
	})
}

// overlaps reports whether b, sorted after a, touches a's range. Two
// insertions at the same offset overlap because their order is ambiguous.
func overlaps(a, b TextEdit) bool {
	if b.Offset < a.End() {
		return true
	}
	return a.IsInsert() && b.IsInsert() && a.Offset == b.Offset
}

// DetectConflicts checks a sorted slice for overlapping edits and reports all
// of them in a single *ConflictError.
func DetectConflicts(edits []TextEdit) error {
	var conflicts []Conflict
	for i := 1; i < len(edits); i++ {
		for j := range i {
			if overlaps(edits[j], edits[i]) {
				conflicts = append(conflicts, Conflict{First: edits[j], Second: edits[i]})
			}
		}
	}
	if len(conflicts) > 0 {
		return &ConflictError{Conflicts: conflicts}
	}
	return nil
}

// PrepareEdits validates, sorts, and checks for conflicts.
// Returns the sorted edits and any error encountered.
func PrepareEdits(edits []TextEdit, contentLen int) ([]TextEdit, error) {
	if len(edits) == 0 {
		return edits, nil
	}

	if err := ValidateEdits(edits, contentLen); err != nil {
		return nil, err
	}

	result := make([]TextEdit, len(edits))
	copy(result, edits)
	SortEdits(result)

	if err := DetectConflicts(result); err != nil {
		return nil, err
	}

	return result, nil
}

// canMerge checks if two overlapping edits can be safely merged.
// Only pure deletions can be merged.
func canMerge(a, b TextEdit) bool {
	return a.Text == "" && b.Text == "" && !a.IsInsert() && !b.IsInsert()
}

// MergeAndFilterConflicts merges overlapping deletions, then drops any edit
// that still overlaps an accepted one. Earlier edits take precedence.
// Edits must be sorted by SortEdits before calling.
func MergeAndFilterConflicts(edits []TextEdit) ([]TextEdit, []TextEdit, int) {
	if len(edits) == 0 {
		return nil, nil, 0
	}

	accepted := make([]TextEdit, 0, len(edits))
	skipped := make([]TextEdit, 0)
	merged := 0

	current := edits[0]

	for i := 1; i < len(edits); i++ {
		edit := edits[i]

		switch {
		case !overlaps(current, edit):
			accepted = append(accepted, current)
			current = edit
		case canMerge(current, edit):
			end := max(current.End(), edit.End())
			current = TextEdit{Offset: current.Offset, Length: end - current.Offset}
			merged++
		default:
			skipped = append(skipped, edit)
		}
	}

	accepted = append(accepted, current)

	return accepted, skipped, merged
}

// PrepareEditsFiltered validates, sorts, merges, and filters conflicting edits.
// Unlike PrepareEdits, it does not error on conflicts.
// Error only for validation failures.
func PrepareEditsFiltered(edits []TextEdit, contentLen int) ([]TextEdit, []TextEdit, int, error) {
	if len(edits) == 0 {
		return nil, nil, 0, nil
	}

	if err := ValidateEdits(edits, contentLen); err != nil {
		return nil, nil, 0, err
	}

	sorted := make([]TextEdit, len(edits))
	copy(sorted, edits)
	SortEdits(sorted)

	accepted, skipped, merged := MergeAndFilterConflicts(sorted)
	return accepted, skipped, merged, nil
}
