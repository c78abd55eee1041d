// Package comments indexes line comments by the offset one past their last
// character, answering whether an insertion point would land inside one.
package comments

import (
	"github.com/google/btree"

	"github.com/yaklabco/flowfix/pkg/fix"
	"github.com/yaklabco/flowfix/pkg/jast"
)

const treeDegree = 8

// span is a live line comment, ordered by its end offset.
type span struct {
	start int
	end   int
}

func lessSpan(a, b span) bool {
	return a.end < b.end
}

// Index is an ordered set of line comment end offsets. Lookups are
// O(log n). It is not safe for concurrent mutation.
type Index struct {
	tree *btree.BTreeG[span]
}

// NewIndex builds an index over the line comments in the list.
func NewIndex(list []jast.Comment) *Index {
	idx := &Index{tree: btree.NewG[span](treeDegree, lessSpan)}
	for _, c := range list {
		if c.Kind == jast.CommentLine {
			idx.tree.ReplaceOrInsert(span{start: c.Range.Start, end: c.Range.End})
		}
	}
	return idx
}

// FromSnapshot builds an index over the snapshot's line comments.
func FromSnapshot(snap *jast.FileSnapshot) *Index {
	return NewIndex(snap.Comments)
}

// Len returns the number of live line comments.
func (idx *Index) Len() int {
	return idx.tree.Len()
}

// IsEndOfLineComment reports whether offset is one past the last character
// of a live line comment.
func (idx *Index) IsEndOfLineComment(offset int) bool {
	return idx.tree.Has(span{end: offset})
}

// Remove drops the comment ending at offset and reports whether it was present.
func (idx *Index) Remove(offset int) bool {
	_, ok := idx.tree.Delete(span{end: offset})
	return ok
}

// Containing returns the live line comment whose text would absorb an
// insertion at offset: start < offset <= end.
func (idx *Index) Containing(offset int) (jast.Range, bool) {
	var found span
	ok := false
	idx.tree.AscendGreaterOrEqual(span{end: offset}, func(s span) bool {
		if s.start < offset {
			found, ok = s, true
		}
		return false
	})
	if !ok {
		return jast.Range{}, false
	}
	return jast.Range{Start: found.start, End: found.end}, true
}

// SafeInsertOffset moves offset to the start of the next line when inserting
// there would split or extend a line comment. content is the buffer the
// index describes. A comment that ends the buffer without a newline has no
// next line; the result is then len(content) and callers need
// SafeInsertPoint to learn that a line break must come first.
func (idx *Index) SafeInsertOffset(offset int, content []byte) int {
	r, ok := idx.Containing(offset)
	if !ok {
		return offset
	}
	next := r.End
	for next < len(content) && content[next] != '\n' {
		next++
	}
	if next < len(content) {
		next++
	}
	return next
}

// SafeInsertPoint is SafeInsertOffset plus the line break that must precede
// the inserted text. lead is eol when the comment ends the buffer without a
// newline, since inserting there would still extend the comment.
func (idx *Index) SafeInsertPoint(offset int, content []byte, eol string) (int, string) {
	next := idx.SafeInsertOffset(offset, content)
	if _, ok := idx.Containing(offset); ok && next == len(content) && (next == 0 || content[next-1] != '\n') {
		return next, eol
	}
	return next, ""
}

// Offsets returns the live end offsets in ascending order.
func (idx *Index) Offsets() []int {
	out := make([]int, 0, idx.tree.Len())
	idx.tree.Ascend(func(s span) bool {
		out = append(out, s.end)
		return true
	})
	return out
}

// Update rebases the index after edits are applied to the buffer. Comments
// whose text an edit touched are removed; the rest shift by the length delta
// of every edit before them.
func (idx *Index) Update(edits *fix.MultiEdit) {
	if edits.IsEmpty() {
		return
	}
	list := edits.Edits()

	next := btree.NewG[span](treeDegree, lessSpan)
	idx.tree.Ascend(func(s span) bool {
		for _, e := range list {
			if e.Offset < s.end && e.End() > s.start {
				return true
			}
			if e.IsInsert() && e.Offset > s.start && e.Offset < s.end {
				return true
			}
		}
		next.ReplaceOrInsert(span{start: edits.MapStart(s.start), end: edits.MapOffset(s.end)})
		return true
	})
	idx.tree = next
}
