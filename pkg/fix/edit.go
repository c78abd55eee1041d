// Package fix provides the text edit model: atomic replacements against a
// single original buffer and ordered, non-overlapping edit sets built from them.
package fix

import "fmt"

// TextEdit replaces Length bytes at Offset with Text.
type TextEdit struct {
	// Offset is the byte index where the edit begins.
	Offset int

	// Length is the number of original bytes replaced. Zero means insertion.
	Length int

	// Text is the replacement text.
	Text string
}

// End returns the exclusive end offset of the replaced range.
func (e TextEdit) End() int {
	return e.Offset + e.Length
}

// IsInsert reports whether the edit removes nothing.
func (e TextEdit) IsInsert() bool {
	return e.Length == 0
}

// IsNoop reports whether applying the edit leaves the buffer unchanged.
func (e TextEdit) IsNoop() bool {
	return e.Length == 0 && e.Text == ""
}

// Delta returns the change in buffer length caused by the edit.
func (e TextEdit) Delta() int {
	return len(e.Text) - e.Length
}

func (e TextEdit) String() string {
	return fmt.Sprintf("[%d:%d]->%q", e.Offset, e.End(), e.Text)
}

// MultiEdit is an edit set targeting one original buffer. Its edits must not
// overlap; Prepare and Apply enforce that before anything is mutated.
type MultiEdit struct {
	edits []TextEdit
}

// NewMultiEdit creates an edit set holding the given edits.
func NewMultiEdit(edits ...TextEdit) *MultiEdit {
	m := &MultiEdit{edits: make([]TextEdit, 0, len(edits))}
	for _, e := range edits {
		m.Add(e)
	}
	return m
}

// Add appends an edit. No-op edits are dropped.
func (m *MultiEdit) Add(e TextEdit) {
	if e.IsNoop() {
		return
	}
	m.edits = append(m.edits, e)
}

// Replace adds an edit replacing bytes [start, end) with text.
func (m *MultiEdit) Replace(start, end int, text string) {
	m.Add(TextEdit{Offset: start, Length: end - start, Text: text})
}

// Insert adds an edit inserting text at offset.
func (m *MultiEdit) Insert(offset int, text string) {
	m.Add(TextEdit{Offset: offset, Text: text})
}

// Delete adds an edit removing bytes [start, end).
func (m *MultiEdit) Delete(start, end int) {
	m.Add(TextEdit{Offset: start, Length: end - start})
}

// Merge appends every edit of other.
func (m *MultiEdit) Merge(other *MultiEdit) {
	if other == nil {
		return
	}
	m.edits = append(m.edits, other.edits...)
}

// Edits returns a copy of the edits in insertion order.
func (m *MultiEdit) Edits() []TextEdit {
	if m == nil {
		return nil
	}
	out := make([]TextEdit, len(m.edits))
	copy(out, m.edits)
	return out
}

// Len returns the number of edits.
func (m *MultiEdit) Len() int {
	if m == nil {
		return 0
	}
	return len(m.edits)
}

// IsEmpty reports whether the set holds no edits.
func (m *MultiEdit) IsEmpty() bool {
	return m.Len() == 0
}

// Prepare validates, sorts and conflict-checks the edits against a buffer of
// contentLen bytes.
func (m *MultiEdit) Prepare(contentLen int) ([]TextEdit, error) {
	return PrepareEdits(m.Edits(), contentLen)
}

// MapOffset translates an offset in the original buffer to the matching
// offset after the edits are applied. Offsets inside a replaced range map to
// the end of its replacement text. Text inserted exactly at offset ends up
// after it.
func (m *MultiEdit) MapOffset(offset int) int {
	return m.mapOffset(offset, false)
}

// MapStart is MapOffset for the start of a span: text inserted exactly at
// offset ends up before it.
func (m *MultiEdit) MapStart(offset int) int {
	return m.mapOffset(offset, true)
}

func (m *MultiEdit) mapOffset(offset int, pastInserts bool) int {
	sorted := m.Edits()
	SortEdits(sorted)

	shift := 0
	for _, e := range sorted {
		switch {
		case e.IsInsert() && e.Offset == offset:
			if pastInserts {
				shift += e.Delta()
			}
		case e.End() <= offset:
			shift += e.Delta()
		case e.Offset < offset && offset < e.End():
			return e.Offset + shift + len(e.Text)
		}
	}
	return offset + shift
}
