package fix

import "bytes"

// ApplyEdits applies a sorted, validated slice of edits to content.
// Edits must be prepared with PrepareEdits before calling.
func ApplyEdits(content []byte, edits []TextEdit) []byte {
	if len(edits) == 0 {
		return content
	}

	delta := 0
	for _, e := range edits {
		delta += e.Delta()
	}

	var out bytes.Buffer
	out.Grow(len(content) + delta)

	cursor := 0
	for _, e := range edits {
		out.Write(content[cursor:e.Offset])
		out.WriteString(e.Text)
		cursor = e.End()
	}
	out.Write(content[cursor:])

	return out.Bytes()
}

// Apply prepares the edit set against content and applies it. Conflicts and
// out-of-range edits are reported before anything is written.
func (m *MultiEdit) Apply(content []byte) ([]byte, error) {
	edits, err := m.Prepare(len(content))
	if err != nil {
		return nil, err
	}
	return ApplyEdits(content, edits), nil
}

// ApplyString is Apply for string buffers.
func (m *MultiEdit) ApplyString(content string) (string, error) {
	out, err := m.Apply([]byte(content))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Inverse returns the edit set that restores original from the result of
// applying m to it. Together they form one reversible unit for undo.
func (m *MultiEdit) Inverse(original []byte) (*MultiEdit, error) {
	edits, err := m.Prepare(len(original))
	if err != nil {
		return nil, err
	}

	inv := &MultiEdit{edits: make([]TextEdit, 0, len(edits))}
	shift := 0
	for _, e := range edits {
		next := TextEdit{
			Offset: e.Offset + shift,
			Length: len(e.Text),
			Text:   string(original[e.Offset:e.End()]),
		}
		shift += e.Delta()

		// Touching edits are coalesced so adjacent deletions do not invert
		// into two insertions at one offset.
		if n := len(inv.edits); n > 0 && inv.edits[n-1].End() == next.Offset {
			prev := &inv.edits[n-1]
			prev.Length += next.Length
			prev.Text += next.Text
			continue
		}
		if !next.IsNoop() {
			inv.edits = append(inv.edits, next)
		}
	}
	return inv, nil
}
