package comments_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/flowfix/pkg/comments"
	"github.com/yaklabco/flowfix/pkg/fix"
	"github.com/yaklabco/flowfix/pkg/parser"
)

const src = "class A {\n  void f(int param1, // note1\n         int param2 // note2\n  ) {}\n}\n"

func TestIndexMembership(t *testing.T) {
	t.Parallel()

	snap := parser.ParseString(src)
	idx := comments.FromSnapshot(snap)
	require.Equal(t, 2, idx.Len())

	for _, end := range idx.Offsets() {
		assert.True(t, idx.IsEndOfLineComment(end))
		assert.Equal(t, byte('\n'), snap.Content[end])
	}
	assert.False(t, idx.IsEndOfLineComment(0))
}

func TestIndexRemove(t *testing.T) {
	t.Parallel()

	idx := comments.FromSnapshot(parser.ParseString(src))
	end := idx.Offsets()[0]

	assert.True(t, idx.Remove(end))
	assert.False(t, idx.IsEndOfLineComment(end))
	assert.False(t, idx.Remove(end))
	assert.Equal(t, 1, idx.Len())
}

func TestSafeInsertOffset(t *testing.T) {
	t.Parallel()

	snap := parser.ParseString(src)
	idx := comments.FromSnapshot(snap)
	end := idx.Offsets()[1]
	r, ok := idx.Containing(end)
	require.True(t, ok)

	tests := []struct {
		name   string
		offset int
		want   int
	}{
		{name: "before comment", offset: r.Start, want: r.Start},
		{name: "inside comment", offset: r.Start + 3, want: end + 1},
		{name: "at comment end", offset: end, want: end + 1},
		{name: "after newline", offset: end + 1, want: end + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, idx.SafeInsertOffset(tt.offset, snap.Content))
		})
	}
}

func TestSafeInsertPointAtUnterminatedComment(t *testing.T) {
	t.Parallel()

	content := []byte("class A {}\n// tail")
	idx := comments.FromSnapshot(parser.ParseString(string(content)))
	require.Equal(t, 1, idx.Len())

	tests := []struct {
		name     string
		offset   int
		wantAt   int
		wantLead string
	}{
		{name: "inside the final comment", offset: len(content) - 2, wantAt: len(content), wantLead: "\n"},
		{name: "at the final comment end", offset: len(content), wantAt: len(content), wantLead: "\n"},
		{name: "before the comment", offset: 5, wantAt: 5, wantLead: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			at, lead := idx.SafeInsertPoint(tt.offset, content, "\n")
			assert.Equal(t, tt.wantAt, at)
			assert.Equal(t, tt.wantLead, lead)
		})
	}
}

func TestIndexUpdate(t *testing.T) {
	t.Parallel()

	snap := parser.ParseString(src)
	idx := comments.FromSnapshot(snap)
	offsets := idx.Offsets()
	first, _ := idx.Containing(offsets[0])

	edits := fix.NewMultiEdit()
	edits.Insert(0, "// header\n")
	edits.Delete(first.Start, first.End)

	idx.Update(edits)

	out, err := edits.Apply(snap.Content)
	require.NoError(t, err)

	require.Equal(t, 1, idx.Len())
	moved := idx.Offsets()[0]
	assert.Equal(t, offsets[1]+len("// header\n")-first.Len(), moved)
	assert.Equal(t, "// note2", string(out[moved-len("// note2"):moved]))
	assert.False(t, idx.IsEndOfLineComment(offsets[0]))
}
