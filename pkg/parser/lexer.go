// Package parser turns Java-style source text into a jast.FileSnapshot: a
// syntax tree, its comment list and any syntax errors recovered from.
package parser

import (
	"fmt"

	"github.com/yaklabco/flowfix/pkg/jast"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokChar
	tokPunct
)

type token struct {
	kind  tokenKind
	text  string
	start int
	end   int
}

func (t token) String() string {
	if t.kind == tokEOF {
		return "end of file"
	}
	return fmt.Sprintf("%q", t.text)
}

// Operators, longest first so the scanner prefers maximal munch.
var punctuators = []string{
	">>>=", "<<=", ">>=", ">>>",
	"==", "!=", "<=", ">=", "&&", "||", "++", "--",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<", ">>",
	"...", "->", "::",
	"(", ")", "{", "}", "[", "]", ";", ",", ".", "=", "<", ">",
	"!", "~", "?", ":", "+", "-", "*", "/", "%", "&", "|", "^", "@",
}

type lexer struct {
	src      []byte
	pos      int
	comments []jast.Comment
	errors   []jast.SyntaxError
}

func (l *lexer) errorf(start, end int, format string, args ...any) {
	l.errors = append(l.errors, jast.SyntaxError{
		Range:   jast.Range{Start: start, End: end},
		Message: fmt.Sprintf(format, args...),
	})
}

// tokenize scans the whole buffer. Comments are recorded on the side.
func (l *lexer) tokenize() []token {
	var toks []token
	for {
		tok := l.next()
		toks = append(toks, tok)
		if tok.kind == tokEOF {
			return toks
		}
	}
}

func (l *lexer) skipTrivia() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f':
			l.pos++
		case c == '/' && l.peekByte(1) == '/':
			start := l.pos
			for l.pos < len(l.src) && l.src[l.pos] != '\n' && l.src[l.pos] != '\r' {
				l.pos++
			}
			l.comments = append(l.comments, jast.Comment{
				Kind:  jast.CommentLine,
				Range: jast.Range{Start: start, End: l.pos},
			})
		case c == '/' && l.peekByte(1) == '*':
			start := l.pos
			l.pos += 2
			closed := false
			for l.pos < len(l.src) {
				if l.src[l.pos] == '*' && l.peekByte(1) == '/' {
					l.pos += 2
					closed = true
					break
				}
				l.pos++
			}
			if !closed {
				l.errorf(start, l.pos, "unterminated block comment")
			}
			l.comments = append(l.comments, jast.Comment{
				Kind:  jast.CommentBlock,
				Range: jast.Range{Start: start, End: l.pos},
			})
		default:
			return
		}
	}
}

func (l *lexer) peekByte(ahead int) byte {
	if l.pos+ahead < len(l.src) {
		return l.src[l.pos+ahead]
	}
	return 0
}

func (l *lexer) next() token {
	l.skipTrivia()
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, start: len(l.src), end: len(l.src)}
	}

	start := l.pos
	c := l.src[l.pos]

	switch {
	case isIdentStart(c):
		for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
			l.pos++
		}
		return l.make(tokIdent, start)
	case isDigit(c) || (c == '.' && isDigit(l.peekByte(1))):
		l.scanNumber()
		return l.make(tokNumber, start)
	case c == '"':
		l.scanQuoted('"')
		return l.make(tokString, start)
	case c == '\'':
		l.scanQuoted('\'')
		return l.make(tokChar, start)
	}

	for _, p := range punctuators {
		if l.hasPrefix(p) {
			l.pos += len(p)
			return l.make(tokPunct, start)
		}
	}

	l.pos++
	l.errorf(start, l.pos, "unexpected character %q", c)
	return l.next()
}

func (l *lexer) make(kind tokenKind, start int) token {
	return token{kind: kind, text: string(l.src[start:l.pos]), start: start, end: l.pos}
}

func (l *lexer) hasPrefix(p string) bool {
	if l.pos+len(p) > len(l.src) {
		return false
	}
	return string(l.src[l.pos:l.pos+len(p)]) == p
}

func (l *lexer) scanNumber() {
	if l.src[l.pos] == '0' && (l.peekByte(1) == 'x' || l.peekByte(1) == 'X') {
		l.pos += 2
		for l.pos < len(l.src) && (isHexDigit(l.src[l.pos]) || l.src[l.pos] == '_') {
			l.pos++
		}
	} else {
		for l.pos < len(l.src) {
			c := l.src[l.pos]
			if isDigit(c) || c == '_' || c == '.' {
				l.pos++
				continue
			}
			if (c == 'e' || c == 'E') && l.pos+1 < len(l.src) {
				l.pos++
				if l.src[l.pos] == '+' || l.src[l.pos] == '-' {
					l.pos++
				}
				continue
			}
			break
		}
	}
	if l.pos < len(l.src) {
		switch l.src[l.pos] {
		case 'l', 'L', 'f', 'F', 'd', 'D':
			l.pos++
		}
	}
}

func (l *lexer) scanQuoted(quote byte) {
	start := l.pos
	l.pos++
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\\':
			l.pos += 2
		case c == quote:
			l.pos++
			return
		case c == '\n':
			l.errorf(start, l.pos, "unterminated literal")
			return
		default:
			l.pos++
		}
	}
	l.pos = len(l.src)
	l.errorf(start, l.pos, "unterminated literal")
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
