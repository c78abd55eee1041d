package jast

import (
	"sort"
	"strings"
)

// CommentKind distinguishes line comments from block comments.
type CommentKind uint8

// Comment kinds.
const (
	CommentLine CommentKind = iota
	CommentBlock
)

// Comment is a comment span, including its delimiters.
type Comment struct {
	Kind  CommentKind
	Range Range
}

// SyntaxError is a problem the parser recovered from.
type SyntaxError struct {
	Range   Range
	Message string
}

func (e SyntaxError) Error() string {
	return e.Message
}

// LineInfo holds metadata for a single line in a file.
type LineInfo struct {
	// StartOffset is the byte index of the line start.
	StartOffset int

	// NewlineStart is the byte index where newline characters begin.
	// For lines without a trailing newline, this equals EndOffset.
	NewlineStart int

	// EndOffset is the byte index just after the newline (or end of file).
	EndOffset int
}

// FileSnapshot is a parsed source file: raw content, line index, comments and
// the syntax tree. It is read-only for the duration of a request.
type FileSnapshot struct {
	// Path is the file path (may be empty for in-memory content).
	Path string

	// Content is the full file bytes.
	Content []byte

	// Lines contains metadata for each line in the file.
	Lines []LineInfo

	// Comments holds every comment in source order.
	Comments []Comment

	// Root is the compilation unit.
	Root *Node

	// Errors lists the syntax errors the parser recovered from.
	Errors []SyntaxError
}

// NewFileSnapshot creates a snapshot with its line index built.
func NewFileSnapshot(path string, content []byte) *FileSnapshot {
	return &FileSnapshot{
		Path:    path,
		Content: content,
		Lines:   BuildLines(content),
	}
}

// BuildLines constructs line metadata from file content.
// It handles both LF and CRLF line endings.
func BuildLines(content []byte) []LineInfo {
	if len(content) == 0 {
		return []LineInfo{}
	}

	var lines []LineInfo
	lineStart := 0

	for idx, char := range content {
		if char == '\n' {
			newlineStart := idx
			if idx > 0 && content[idx-1] == '\r' {
				newlineStart = idx - 1
			}

			lines = append(lines, LineInfo{
				StartOffset:  lineStart,
				NewlineStart: newlineStart,
				EndOffset:    idx + 1,
			})
			lineStart = idx + 1
		}
	}

	if lineStart < len(content) {
		lines = append(lines, LineInfo{
			StartOffset:  lineStart,
			NewlineStart: len(content),
			EndOffset:    len(content),
		})
	}

	return lines
}

// LineAt converts a byte offset to 1-based line and column numbers.
// Column counts bytes, not runes.
// Returns (0, 0) if the offset is out of range.
func (f *FileSnapshot) LineAt(offset int) (int, int) {
	if offset < 0 || len(f.Lines) == 0 {
		return 0, 0
	}

	if offset >= len(f.Content) {
		lastLine := f.Lines[len(f.Lines)-1]
		if lastLine.EndOffset > lastLine.NewlineStart {
			return len(f.Lines) + 1, offset - len(f.Content) + 1
		}
		return len(f.Lines), offset - lastLine.StartOffset + 1
	}

	lineIdx := sort.Search(len(f.Lines), func(i int) bool {
		return f.Lines[i].EndOffset > offset
	})
	if lineIdx >= len(f.Lines) {
		lineIdx = len(f.Lines) - 1
	}

	lineInfo := f.Lines[lineIdx]
	return lineIdx + 1, offset - lineInfo.StartOffset + 1
}

// Position returns the 1-based position of offset.
func (f *FileSnapshot) Position(offset int) Position {
	line, col := f.LineAt(offset)
	return Position{Line: line, Column: col}
}

// LineContent returns the content of a 1-based line number, excluding the newline.
// Returns nil if the line number is out of range.
func (f *FileSnapshot) LineContent(line int) []byte {
	if line < 1 || line > len(f.Lines) {
		return nil
	}

	lineInfo := f.Lines[line-1]
	return f.Content[lineInfo.StartOffset:lineInfo.NewlineStart]
}

// LineStart returns the offset of the first byte of the line holding offset.
func (f *FileSnapshot) LineStart(offset int) int {
	line, _ := f.LineAt(offset)
	if line < 1 || line > len(f.Lines) {
		return len(f.Content)
	}
	return f.Lines[line-1].StartOffset
}

// NextLineStart returns the offset just past the newline ending the line
// that holds offset, or the content length on the last line.
func (f *FileSnapshot) NextLineStart(offset int) int {
	line, _ := f.LineAt(offset)
	if line < 1 || line > len(f.Lines) {
		return len(f.Content)
	}
	return f.Lines[line-1].EndOffset
}

// Indentation returns the leading whitespace of the line holding offset.
func (f *FileSnapshot) Indentation(offset int) string {
	start := f.LineStart(offset)
	end := start
	for end < len(f.Content) && (f.Content[end] == ' ' || f.Content[end] == '\t') {
		end++
	}
	return string(f.Content[start:end])
}

// Text returns the source text of r.
func (f *FileSnapshot) Text(r Range) string {
	if r.Start < 0 || r.End > len(f.Content) || r.Start > r.End {
		return ""
	}
	return string(f.Content[r.Start:r.End])
}

// NodeText returns the source text of n.
func (f *FileSnapshot) NodeText(n *Node) string {
	return f.Text(n.Range)
}

// LineComments returns the line comments in source order.
func (f *FileSnapshot) LineComments() []Comment {
	var out []Comment
	for _, c := range f.Comments {
		if c.Kind == CommentLine {
			out = append(out, c)
		}
	}
	return out
}

// Methods returns every method declared in the file.
func (f *FileSnapshot) Methods() []*Node {
	return FindByKind(f.Root, NodeMethod)
}

// LineEnding returns "\r\n" when the file uses CRLF line endings.
func (f *FileSnapshot) LineEnding() string {
	if strings.Contains(string(f.Content), "\r\n") {
		return "\r\n"
	}
	return "\n"
}
