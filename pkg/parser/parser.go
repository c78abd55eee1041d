package parser

import (
	"fmt"
	"strings"

	"github.com/yaklabco/flowfix/pkg/jast"
)

// Parse parses content into a snapshot. It never fails: syntax errors are
// recorded on the snapshot and the affected regions become NodeBad nodes.
func Parse(path string, content []byte) *jast.FileSnapshot {
	snap := jast.NewFileSnapshot(path, content)

	lx := &lexer{src: content}
	p := &parser{toks: lx.tokenize(), src: content}
	p.errors = lx.errors

	snap.Root = p.parseCompilationUnit()
	snap.Comments = lx.comments
	snap.Errors = p.errors
	return snap
}

// ParseString is Parse for in-memory sources.
func ParseString(src string) *jast.FileSnapshot {
	return Parse("", []byte(src))
}

type parser struct {
	toks    []token
	pos     int
	src     []byte
	prevEnd int
	errors  []jast.SyntaxError
}

func (p *parser) tok() token {
	return p.toks[p.pos]
}

func (p *parser) peek(ahead int) token {
	if p.pos+ahead < len(p.toks) {
		return p.toks[p.pos+ahead]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) advance() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
		p.prevEnd = t.end
	}
	return t
}

func (p *parser) is(text string) bool {
	t := p.tok()
	return (t.kind == tokPunct || t.kind == tokIdent) && t.text == text
}

func (p *parser) accept(text string) bool {
	if p.is(text) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(text string) bool {
	if p.accept(text) {
		return true
	}
	p.errorAt(p.tok(), "expected %q, found %s", text, p.tok())
	return false
}

func (p *parser) errorAt(t token, format string, args ...any) {
	end := t.end
	if end == t.start && end < len(p.src) {
		end++
	}
	p.errors = append(p.errors, jast.SyntaxError{
		Range:   jast.Range{Start: t.start, End: end},
		Message: fmt.Sprintf(format, args...),
	})
}

func (p *parser) node(kind jast.Kind, text string, start int) *jast.Node {
	n := jast.NewNode(kind, text)
	n.Range = jast.Range{Start: start, End: start}
	return n
}

// finish closes a node's range at the end of the last consumed token.
func (p *parser) finish(n *jast.Node) *jast.Node {
	if p.prevEnd > n.Range.Start {
		n.Range.End = p.prevEnd
	}
	return n
}

func (p *parser) expectIdent() (token, bool) {
	t := p.tok()
	if t.kind == tokIdent && !isReserved(t.text) {
		p.advance()
		return t, true
	}
	p.errorAt(t, "expected identifier, found %s", t)
	return t, false
}

// recover skips to just past the next ';' or up to the next '}' at the
// current nesting level and returns a NodeBad covering the skipped tokens.
func (p *parser) recover(start int, msg string) *jast.Node {
	bad := p.node(jast.NodeBad, msg, start)
	depth := 0
	for p.tok().kind != tokEOF {
		switch {
		case p.is("{"):
			depth++
		case p.is("}"):
			if depth == 0 {
				return p.finishBad(bad)
			}
			depth--
			if depth == 0 {
				p.advance()
				return p.finishBad(bad)
			}
		case p.is(";") && depth == 0:
			p.advance()
			return p.finishBad(bad)
		}
		p.advance()
	}
	return p.finishBad(bad)
}

func (p *parser) finishBad(bad *jast.Node) *jast.Node {
	p.finish(bad)
	if bad.Range.IsEmpty() && bad.Range.Start < len(p.src) {
		bad.Range.End = bad.Range.Start + 1
		if p.tok().start < bad.Range.End && p.tok().kind != tokEOF && !p.is("}") {
			p.advance()
		}
	}
	return bad
}

var modifierWords = map[string]bool{
	"public": true, "private": true, "protected": true, "static": true,
	"final": true, "abstract": true, "synchronized": true, "native": true,
	"transient": true, "volatile": true, "strictfp": true, "default": false,
}

var reservedWords = map[string]bool{
	"abstract": true, "assert": true, "boolean": false, "break": true, "byte": false,
	"case": true, "catch": true, "char": false, "class": true, "const": true,
	"continue": true, "default": true, "do": true, "double": false, "else": true,
	"enum": true, "extends": true, "final": true, "finally": true, "float": false,
	"for": true, "goto": true, "if": true, "implements": true, "import": true,
	"instanceof": true, "int": false, "interface": true, "long": false, "native": true,
	"new": true, "package": true, "private": true, "protected": true, "public": true,
	"return": true, "short": false, "static": true, "strictfp": true, "super": false,
	"switch": true, "synchronized": true, "this": false, "throw": true, "throws": true,
	"transient": true, "try": true, "void": false, "volatile": true, "while": true,
	"true": true, "false": true, "null": true,
}

func isReserved(word string) bool {
	return reservedWords[word]
}

func (p *parser) parseCompilationUnit() *jast.Node {
	unit := p.node(jast.NodeCompilationUnit, "", 0)
	unit.Append(jast.PropMembers)

	for p.tok().kind != tokEOF {
		switch {
		case p.is("package") || p.is("import"):
			for !p.is(";") && p.tok().kind != tokEOF {
				p.advance()
			}
			p.expect(";")
		case p.accept(";"):
		default:
			start := p.pos
			cls := p.parseClass()
			unit.Append(jast.PropMembers, cls)
			if p.pos == start {
				p.advance()
			}
		}
	}

	unit.Range = jast.Range{Start: 0, End: len(p.src)}
	return unit
}

func (p *parser) parseModifiers(owner *jast.Node) {
	owner.Append(jast.PropModifiers)
	for {
		t := p.tok()
		switch {
		case t.kind == tokPunct && t.text == "@":
			p.skipAnnotation()
		case t.kind == tokIdent && modifierWords[t.text]:
			p.advance()
			m := p.node(jast.NodeModifier, t.text, t.start)
			owner.Append(jast.PropModifiers, p.finish(m))
		default:
			return
		}
	}
}

func (p *parser) skipAnnotation() {
	p.advance()
	p.expectIdent()
	for p.accept(".") {
		p.expectIdent()
	}
	if p.is("(") {
		p.skipBalanced("(", ")")
	}
}

func (p *parser) skipBalanced(open, closing string) {
	depth := 0
	for p.tok().kind != tokEOF {
		switch {
		case p.is(open):
			depth++
		case p.is(closing):
			depth--
			if depth == 0 {
				p.advance()
				return
			}
		}
		p.advance()
	}
}

func (p *parser) parseClass() *jast.Node {
	start := p.tok().start
	cls := p.node(jast.NodeClass, "", start)
	p.parseModifiers(cls)

	if !p.accept("class") && !p.accept("interface") && !p.accept("enum") {
		p.errorAt(p.tok(), "expected class declaration, found %s", p.tok())
		return p.recover(start, "expected class declaration")
	}
	name, _ := p.expectIdent()
	cls.Text = name.text

	if p.is("<") {
		p.skipBalanced("<", ">")
	}
	if p.accept("extends") {
		p.parseTypeList(cls, jast.PropTypes)
	}
	if p.accept("implements") {
		p.parseTypeList(cls, jast.PropTypes)
	}

	cls.Append(jast.PropMembers)
	if !p.expect("{") {
		return p.finish(cls)
	}
	for !p.is("}") && p.tok().kind != tokEOF {
		before := p.pos
		if m := p.parseMember(cls.Text); m != nil {
			cls.Append(jast.PropMembers, m)
		}
		if p.pos == before {
			p.advance()
		}
	}
	p.expect("}")
	return p.finish(cls)
}

func (p *parser) parseTypeList(owner *jast.Node, prop jast.Prop) {
	owner.Append(prop)
	for {
		if t := p.parseType(); t != nil {
			owner.Append(prop, t)
		}
		if !p.accept(",") {
			return
		}
	}
}

func (p *parser) parseMember(className string) *jast.Node {
	if p.accept(";") {
		return nil
	}
	start := p.tok().start

	if p.is("{") || (p.is("static") && p.peek(1).kind == tokPunct && p.peek(1).text == "{") {
		p.accept("static")
		return p.parseBlock()
	}

	decl := p.node(jast.NodeField, "", start)
	p.parseModifiers(decl)

	if p.is("class") || p.is("interface") || p.is("enum") {
		p.pos = p.indexOfOffset(start)
		return p.parseClass()
	}

	if p.is("<") {
		p.skipBalanced("<", ">")
	}

	// Constructor: Name '('.
	if p.tok().kind == tokIdent && p.tok().text == className && p.peek(1).text == "(" {
		name := p.advance()
		decl.Kind = jast.NodeMethod
		decl.Text = name.text
		decl.Set(jast.PropType, nil)
		return p.parseMethodRest(decl)
	}

	typ := p.parseType()
	if typ == nil {
		return p.recover(start, "expected member declaration")
	}
	decl.Set(jast.PropType, typ)

	name, ok := p.expectIdent()
	if !ok {
		return p.recover(start, "expected member name")
	}
	if p.is("(") {
		decl.Kind = jast.NodeMethod
		decl.Text = name.text
		return p.parseMethodRest(decl)
	}

	decl.Append(jast.PropFragments, p.parseFragmentRest(name))
	for p.accept(",") {
		n, ok := p.expectIdent()
		if !ok {
			break
		}
		decl.Append(jast.PropFragments, p.parseFragmentRest(n))
	}
	p.expect(";")
	return p.finish(decl)
}

func (p *parser) indexOfOffset(offset int) int {
	for i, t := range p.toks {
		if t.start >= offset {
			return i
		}
	}
	return len(p.toks) - 1
}

func (p *parser) parseMethodRest(m *jast.Node) *jast.Node {
	m.Append(jast.PropParams)
	p.expect("(")
	for !p.is(")") && p.tok().kind != tokEOF {
		param := p.node(jast.NodeParam, "", p.tok().start)
		p.parseModifiers(param)
		typ := p.parseType()
		if typ == nil {
			p.recover(param.Range.Start, "expected parameter")
			break
		}
		if p.accept("...") {
			typ.Text += "..."
		}
		param.Set(jast.PropType, typ)
		name, _ := p.expectIdent()
		param.Text = name.text
		for p.accept("[") {
			p.expect("]")
		}
		m.Append(jast.PropParams, p.finish(param))
		if !p.accept(",") {
			break
		}
	}
	p.expect(")")

	m.Append(jast.PropThrows)
	if p.accept("throws") {
		p.parseTypeList(m, jast.PropThrows)
	}

	if p.is("{") {
		m.Set(jast.PropBody, p.parseBlock())
	} else {
		m.Set(jast.PropBody, nil)
		p.expect(";")
	}
	return p.finish(m)
}

func (p *parser) parseFragmentRest(name token) *jast.Node {
	frag := p.node(jast.NodeFragment, name.text, name.start)
	for p.accept("[") {
		p.expect("]")
	}
	if p.accept("=") {
		frag.Set(jast.PropInit, p.parseVarInit())
	} else {
		frag.Set(jast.PropInit, nil)
	}
	return p.finish(frag)
}

func (p *parser) parseVarInit() *jast.Node {
	if p.is("{") {
		return p.parseArrayInit()
	}
	return p.parseExpr()
}

func (p *parser) parseArrayInit() *jast.Node {
	n := p.node(jast.NodeArrayInit, "", p.tok().start)
	n.Append(jast.PropArgs)
	p.expect("{")
	for !p.is("}") && p.tok().kind != tokEOF {
		n.Append(jast.PropArgs, p.parseVarInit())
		if !p.accept(",") {
			break
		}
	}
	p.expect("}")
	return p.finish(n)
}

// scanType reports the token index just past a type starting at i, without
// consuming anything.
func (p *parser) scanType(i int) (int, bool) {
	at := func(j int) token {
		if j < len(p.toks) {
			return p.toks[j]
		}
		return p.toks[len(p.toks)-1]
	}
	t := at(i)
	if t.kind != tokIdent || (isReserved(t.text) && !jast.IsPrimitiveType(t.text)) {
		return i, false
	}
	i++
	for at(i).text == "." && at(i+1).kind == tokIdent {
		i += 2
	}
	if at(i).text == "<" {
		depth := 0
		for ; at(i).kind != tokEOF; i++ {
			switch at(i).text {
			case "<":
				depth++
			case ">":
				depth--
			case ">>":
				depth -= 2
			case ">>>":
				depth -= 3
			case ",", "?", ".", "extends", "super", "[", "]":
			default:
				if at(i).kind != tokIdent {
					return i, false
				}
			}
			if depth <= 0 {
				i++
				break
			}
		}
	}
	for at(i).text == "[" && at(i+1).text == "]" {
		i += 2
	}
	return i, true
}

func (p *parser) parseType() *jast.Node {
	end, ok := p.scanType(p.pos)
	if !ok {
		p.errorAt(p.tok(), "expected type, found %s", p.tok())
		return nil
	}
	start := p.tok().start
	for p.pos < end {
		p.advance()
	}
	typ := p.node(jast.NodeType, "", start)
	p.finish(typ)
	typ.Text = strings.Join(strings.Fields(string(p.src[typ.Range.Start:typ.Range.End])), "")
	return typ
}
