package parser

import "github.com/yaklabco/flowfix/pkg/jast"

var assignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"&=": true, "|=": true, "^=": true, "<<=": true, ">>=": true, ">>>=": true,
}

// binaryPrecedence maps binary operators to their binding strength.
var binaryPrecedence = map[string]int{
	"||": 1,
	"&&": 2,
	"|":  3,
	"^":  4,
	"&":  5,
	"==": 6, "!=": 6,
	"<": 7, ">": 7, "<=": 7, ">=": 7, "instanceof": 7,
	"<<": 8, ">>": 8, ">>>": 8,
	"+": 9, "-": 9,
	"*": 10, "/": 10, "%": 10,
}

func (p *parser) parseExpr() *jast.Node {
	start := p.tok().start
	left := p.parseConditional()
	if t := p.tok(); t.kind == tokPunct && assignOps[t.text] {
		p.advance()
		n := p.node(jast.NodeAssign, t.text, start)
		n.Set(jast.PropLeft, left)
		n.Set(jast.PropRight, p.parseExpr())
		return p.finish(n)
	}
	return left
}

func (p *parser) parseConditional() *jast.Node {
	start := p.tok().start
	cond := p.parseBinary(1)
	if !p.accept("?") {
		return cond
	}
	n := p.node(jast.NodeConditional, "", start)
	n.Set(jast.PropCond, cond)
	n.Set(jast.PropThen, p.parseExpr())
	p.expect(":")
	n.Set(jast.PropElse, p.parseConditional())
	return p.finish(n)
}

func (p *parser) parseBinary(minPrec int) *jast.Node {
	start := p.tok().start
	left := p.parseUnary()
	for {
		t := p.tok()
		prec, ok := binaryPrecedence[t.text]
		if !ok || prec < minPrec || (t.kind != tokPunct && t.text != "instanceof") {
			return left
		}
		p.advance()
		if t.text == "instanceof" {
			n := p.node(jast.NodeInstanceOf, "", start)
			n.Set(jast.PropExpr, left)
			n.Set(jast.PropType, p.parseType())
			left = p.finish(n)
			continue
		}
		n := p.node(jast.NodeBinary, t.text, start)
		n.Set(jast.PropLeft, left)
		n.Set(jast.PropRight, p.parseBinary(prec+1))
		left = p.finish(n)
	}
}

func (p *parser) parseUnary() *jast.Node {
	t := p.tok()
	if t.kind == tokPunct {
		switch t.text {
		case "+", "-", "!", "~", "++", "--":
			p.advance()
			n := p.node(jast.NodeUnary, t.text, t.start)
			n.Set(jast.PropExpr, p.parseUnary())
			return p.finish(n)
		case "(":
			if p.isCast() {
				p.advance()
				n := p.node(jast.NodeCast, "", t.start)
				n.Set(jast.PropType, p.parseType())
				p.expect(")")
				n.Set(jast.PropExpr, p.parseUnary())
				return p.finish(n)
			}
		}
	}
	return p.parsePostfix(p.parsePrimary())
}

// isCast reports whether '(' at the cursor opens a cast.
func (p *parser) isCast() bool {
	end, ok := p.scanType(p.pos + 1)
	if !ok || end >= len(p.toks) || p.toks[end].text != ")" {
		return false
	}
	if jast.IsPrimitiveType(p.toks[p.pos+1].text) {
		return true
	}
	next := p.toks[end+1]
	switch next.kind {
	case tokIdent:
		return next.text != "instanceof"
	case tokNumber, tokString, tokChar:
		return true
	case tokPunct:
		return next.text == "(" || next.text == "!" || next.text == "~"
	case tokEOF:
	}
	return false
}

func (p *parser) parsePostfix(expr *jast.Node) *jast.Node {
	start := expr.Range.Start
	for {
		switch {
		case p.is("."):
			p.advance()
			name, _ := p.expectIdent()
			if p.is("(") {
				call := p.node(jast.NodeCall, name.text, start)
				call.Set(jast.PropTarget, expr)
				p.parseArgs(call)
				expr = p.finish(call)
			} else {
				fa := p.node(jast.NodeFieldAccess, name.text, start)
				fa.Set(jast.PropTarget, expr)
				expr = p.finish(fa)
			}
		case p.is("["):
			p.advance()
			n := p.node(jast.NodeArrayAccess, "", start)
			n.Set(jast.PropTarget, expr)
			n.Set(jast.PropExpr, p.parseExpr())
			p.expect("]")
			expr = p.finish(n)
		case p.is("++") || p.is("--"):
			op := p.advance()
			n := p.node(jast.NodePostfix, op.text, start)
			n.Set(jast.PropExpr, expr)
			expr = p.finish(n)
		default:
			return expr
		}
	}
}

func (p *parser) parseArgs(call *jast.Node) {
	call.Append(jast.PropArgs)
	p.expect("(")
	for !p.is(")") && p.tok().kind != tokEOF {
		call.Append(jast.PropArgs, p.parseExpr())
		if !p.accept(",") {
			break
		}
	}
	p.expect(")")
}

func (p *parser) parsePrimary() *jast.Node {
	t := p.tok()
	switch t.kind {
	case tokNumber, tokString, tokChar:
		p.advance()
		return p.finish(p.node(jast.NodeLiteral, t.text, t.start))
	case tokIdent:
		switch t.text {
		case "true", "false", "null":
			p.advance()
			return p.finish(p.node(jast.NodeLiteral, t.text, t.start))
		case "new":
			return p.parseNew()
		}
		if isReserved(t.text) {
			break
		}
		p.advance()
		if p.is("(") {
			call := p.node(jast.NodeCall, t.text, t.start)
			call.Set(jast.PropTarget, nil)
			p.parseArgs(call)
			return p.finish(call)
		}
		return p.finish(p.node(jast.NodeName, t.text, t.start))
	case tokPunct:
		if t.text == "(" {
			p.advance()
			n := p.node(jast.NodeParen, "", t.start)
			n.Set(jast.PropExpr, p.parseExpr())
			p.expect(")")
			return p.finish(n)
		}
	case tokEOF:
	}

	p.errorAt(t, "expected expression, found %s", t)
	bad := p.node(jast.NodeBad, "expected expression", t.start)
	bad.Range.End = t.start
	return bad
}

func (p *parser) parseNew() *jast.Node {
	n := p.node(jast.NodeNew, "", p.advance().start)
	end, ok := p.scanType(p.pos)
	if !ok {
		p.errorAt(p.tok(), "expected type after new")
		return p.finish(n)
	}
	// Array creation keeps dimension expressions out of the type.
	typeStart := p.tok().start
	for p.pos < end && !p.is("[") {
		p.advance()
	}
	typ := p.node(jast.NodeType, string(p.src[typeStart:p.prevEnd]), typeStart)
	n.Set(jast.PropType, p.finish(typ))

	if p.is("[") {
		n.Text = "[]"
		n.Append(jast.PropArgs)
		for p.accept("[") {
			if !p.is("]") {
				n.Append(jast.PropArgs, p.parseExpr())
			}
			p.expect("]")
		}
		if p.is("{") {
			n.Set(jast.PropInit, p.parseArrayInit())
		}
		return p.finish(n)
	}

	p.parseArgs(n)
	if p.is("{") {
		// Anonymous class body.
		p.skipBalanced("{", "}")
	}
	return p.finish(n)
}
