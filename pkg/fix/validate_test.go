package fix_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/yaklabco/flowfix/pkg/fix"
)

func TestValidateEdits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		edits      []fix.TextEdit
		contentLen int
		errMsg     string
	}{
		{
			name:       "empty edits",
			contentLen: 10,
		},
		{
			name: "valid edits",
			edits: []fix.TextEdit{
				{Offset: 0, Length: 5, Text: "hello"},
				{Offset: 5, Length: 5, Text: "world"},
			},
			contentLen: 10,
		},
		{
			name:       "negative offset",
			edits:      []fix.TextEdit{{Offset: -1, Length: 2}},
			contentLen: 10,
			errMsg:     "offset is negative",
		},
		{
			name:       "negative length",
			edits:      []fix.TextEdit{{Offset: 3, Length: -2}},
			contentLen: 10,
			errMsg:     "length is negative",
		},
		{
			name:       "end exceeds content length",
			edits:      []fix.TextEdit{{Offset: 5, Length: 10, Text: "x"}},
			contentLen: 10,
			errMsg:     "exceeds content length",
		},
		{
			name:       "insertion at end of buffer",
			edits:      []fix.TextEdit{{Offset: 10, Text: "!"}},
			contentLen: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := fix.ValidateEdits(tt.edits, tt.contentLen)
			if tt.errMsg == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var verr *fix.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.errMsg)
			}
		})
	}
}

func TestDetectConflicts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		edits     []fix.TextEdit
		wantPairs int
	}{
		{
			name: "adjacent edits",
			edits: []fix.TextEdit{
				{Offset: 0, Length: 3, Text: "a"},
				{Offset: 3, Length: 2, Text: "b"},
			},
		},
		{
			name: "insert before replace at same offset",
			edits: []fix.TextEdit{
				{Offset: 4, Text: "x"},
				{Offset: 4, Length: 2, Text: "y"},
			},
		},
		{
			name: "overlapping replacements",
			edits: []fix.TextEdit{
				{Offset: 0, Length: 5, Text: "a"},
				{Offset: 3, Length: 5, Text: "b"},
			},
			wantPairs: 1,
		},
		{
			name: "two insertions at same offset",
			edits: []fix.TextEdit{
				{Offset: 2, Text: "a"},
				{Offset: 2, Text: "b"},
			},
			wantPairs: 1,
		},
		{
			name: "every conflict is listed",
			edits: []fix.TextEdit{
				{Offset: 0, Length: 10},
				{Offset: 2, Length: 1, Text: "x"},
				{Offset: 6, Length: 1, Text: "y"},
			},
			wantPairs: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			edits := append([]fix.TextEdit(nil), tt.edits...)
			fix.SortEdits(edits)
			err := fix.DetectConflicts(edits)

			if tt.wantPairs == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var cerr *fix.ConflictError
			if !errors.As(err, &cerr) {
				t.Fatalf("expected *ConflictError, got %v", err)
			}
			if len(cerr.Conflicts) != tt.wantPairs {
				t.Errorf("got %d conflicts, want %d", len(cerr.Conflicts), tt.wantPairs)
			}
		})
	}
}

func TestPrepareEditsFiltered(t *testing.T) {
	t.Parallel()

	edits := []fix.TextEdit{
		{Offset: 6, Length: 2, Text: "late"},
		{Offset: 0, Length: 4},
		{Offset: 2, Length: 4},
		{Offset: 7, Length: 1, Text: "skip"},
	}

	accepted, skipped, merged, err := fix.PrepareEditsFiltered(edits, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if merged != 1 {
		t.Errorf("merged = %d, want 1", merged)
	}
	if len(accepted) != 2 {
		t.Fatalf("accepted = %v, want 2 edits", accepted)
	}
	if accepted[0].Offset != 0 || accepted[0].Length != 6 {
		t.Errorf("merged deletion = %v, want [0:6]", accepted[0])
	}
	if len(skipped) != 1 || skipped[0].Text != "skip" {
		t.Errorf("skipped = %v, want the overlapping replacement", skipped)
	}
}
