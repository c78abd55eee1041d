package parser

import "github.com/yaklabco/flowfix/pkg/jast"

func (p *parser) parseBlock() *jast.Node {
	block := p.node(jast.NodeBlock, "", p.tok().start)
	block.Append(jast.PropStatements)
	if !p.expect("{") {
		return p.finish(block)
	}
	for !p.is("}") && p.tok().kind != tokEOF {
		before := p.pos
		block.Append(jast.PropStatements, p.parseStatement())
		if p.pos == before {
			p.advance()
		}
	}
	p.expect("}")
	return p.finish(block)
}

func (p *parser) parseStatement() *jast.Node {
	t := p.tok()
	start := t.start

	if t.kind == tokIdent && p.peek(1).kind == tokPunct && p.peek(1).text == ":" && !isReserved(t.text) {
		p.advance()
		p.advance()
		n := p.node(jast.NodeLabeled, t.text, start)
		n.Set(jast.PropBody, p.parseStatement())
		return p.finish(n)
	}

	switch {
	case p.is("{"):
		return p.parseBlock()
	case p.is(";"):
		p.advance()
		return p.finish(p.node(jast.NodeEmpty, "", start))
	case p.is("if"):
		return p.parseIf()
	case p.is("while"):
		p.advance()
		n := p.node(jast.NodeWhile, "", start)
		n.Set(jast.PropCond, p.parseParenExpr())
		n.Set(jast.PropBody, p.parseStatement())
		return p.finish(n)
	case p.is("do"):
		return p.parseDo()
	case p.is("for"):
		return p.parseFor()
	case p.is("switch"):
		return p.parseSwitch()
	case p.is("break") || p.is("continue"):
		return p.parseJump()
	case p.is("return") || p.is("throw"):
		kind := jast.NodeReturn
		if p.is("throw") {
			kind = jast.NodeThrow
		}
		p.advance()
		n := p.node(kind, "", start)
		if kind == jast.NodeThrow || !p.is(";") {
			n.Set(jast.PropExpr, p.parseExpr())
		} else {
			n.Set(jast.PropExpr, nil)
		}
		p.expect(";")
		return p.finish(n)
	case p.is("try"):
		return p.parseTry()
	case p.is("assert"):
		p.advance()
		n := p.node(jast.NodeAssert, "", start)
		n.Set(jast.PropCond, p.parseExpr())
		if p.accept(":") {
			n.Set(jast.PropMessage, p.parseExpr())
		} else {
			n.Set(jast.PropMessage, nil)
		}
		p.expect(";")
		return p.finish(n)
	case p.is("synchronized") && p.peek(1).text == "(":
		p.advance()
		p.parseParenExpr()
		return p.parseBlock()
	case p.is("class"):
		return p.parseClass()
	}

	if p.isLocalVarStart() {
		decl := p.parseLocalVar(start)
		p.expect(";")
		return p.finish(decl)
	}

	before := len(p.errors)
	n := p.node(jast.NodeExprStmt, "", start)
	n.Set(jast.PropExpr, p.parseExpr())
	if len(p.errors) > before {
		return p.recover(start, "invalid statement")
	}
	if !p.expect(";") {
		return p.recover(start, "missing ';'")
	}
	return p.finish(n)
}

// isLocalVarStart reports whether the tokens at the cursor start a local
// variable declaration: modifiers, then a type followed by an identifier.
func (p *parser) isLocalVarStart() bool {
	i := p.pos
	for i < len(p.toks) && (p.toks[i].text == "final" || p.toks[i].text == "@") {
		if p.toks[i].text == "final" {
			i++
			continue
		}
		i += 2
	}
	end, ok := p.scanType(i)
	if !ok || end >= len(p.toks) {
		return false
	}
	name := p.toks[end]
	return name.kind == tokIdent && !isReserved(name.text)
}

func (p *parser) parseLocalVar(start int) *jast.Node {
	decl := p.node(jast.NodeLocalVar, "", start)
	p.parseModifiers(decl)
	decl.Set(jast.PropType, p.parseType())
	decl.Append(jast.PropFragments)
	for {
		name, ok := p.expectIdent()
		if !ok {
			break
		}
		decl.Append(jast.PropFragments, p.parseFragmentRest(name))
		if !p.accept(",") {
			break
		}
	}
	return p.finish(decl)
}

func (p *parser) parseParenExpr() *jast.Node {
	p.expect("(")
	e := p.parseExpr()
	p.expect(")")
	return e
}

func (p *parser) parseIf() *jast.Node {
	n := p.node(jast.NodeIf, "", p.advance().start)
	n.Set(jast.PropCond, p.parseParenExpr())
	n.Set(jast.PropThen, p.parseStatement())
	if p.accept("else") {
		n.Set(jast.PropElse, p.parseStatement())
	} else {
		n.Set(jast.PropElse, nil)
	}
	return p.finish(n)
}

func (p *parser) parseDo() *jast.Node {
	n := p.node(jast.NodeDo, "", p.advance().start)
	n.Set(jast.PropBody, p.parseStatement())
	p.expect("while")
	n.Set(jast.PropCond, p.parseParenExpr())
	p.expect(";")
	return p.finish(n)
}

func (p *parser) parseFor() *jast.Node {
	n := p.node(jast.NodeFor, "", p.advance().start)
	p.expect("(")

	n.Append(jast.PropInits)
	if p.isLocalVarStart() {
		decl := p.parseLocalVar(p.tok().start)
		p.finish(decl)
		n.Append(jast.PropInits, decl)
		if p.accept(":") {
			n.Set(jast.PropExpr, p.parseExpr())
			p.expect(")")
			n.Set(jast.PropBody, p.parseStatement())
			return p.finish(n)
		}
	} else {
		for !p.is(";") && p.tok().kind != tokEOF {
			n.Append(jast.PropInits, p.parseExprStatementNode())
			if !p.accept(",") {
				break
			}
		}
	}
	p.expect(";")

	if p.is(";") {
		n.Set(jast.PropCond, nil)
	} else {
		n.Set(jast.PropCond, p.parseExpr())
	}
	p.expect(";")

	n.Append(jast.PropUpdates)
	for !p.is(")") && p.tok().kind != tokEOF {
		n.Append(jast.PropUpdates, p.parseExprStatementNode())
		if !p.accept(",") {
			break
		}
	}
	p.expect(")")
	n.Set(jast.PropBody, p.parseStatement())
	return p.finish(n)
}

func (p *parser) parseExprStatementNode() *jast.Node {
	n := p.node(jast.NodeExprStmt, "", p.tok().start)
	n.Set(jast.PropExpr, p.parseExpr())
	return p.finish(n)
}

func (p *parser) parseSwitch() *jast.Node {
	n := p.node(jast.NodeSwitch, "", p.advance().start)
	n.Set(jast.PropExpr, p.parseParenExpr())
	n.Append(jast.PropCases)
	p.expect("{")
	for !p.is("}") && p.tok().kind != tokEOF {
		c := p.node(jast.NodeCase, "", p.tok().start)
		switch {
		case p.accept("case"):
			c.Set(jast.PropExpr, p.parseExpr())
		case p.accept("default"):
			c.Set(jast.PropExpr, nil)
			c.Text = "default"
		default:
			p.errorAt(p.tok(), "expected case label, found %s", p.tok())
			n.Append(jast.PropCases, p.recover(c.Range.Start, "expected case label"))
			continue
		}
		p.expect(":")
		c.Append(jast.PropStatements)
		for !p.is("case") && !p.is("default") && !p.is("}") && p.tok().kind != tokEOF {
			before := p.pos
			c.Append(jast.PropStatements, p.parseStatement())
			if p.pos == before {
				p.advance()
			}
		}
		n.Append(jast.PropCases, p.finish(c))
	}
	p.expect("}")
	return p.finish(n)
}

func (p *parser) parseJump() *jast.Node {
	t := p.advance()
	kind := jast.NodeBreak
	if t.text == "continue" {
		kind = jast.NodeContinue
	}
	n := p.node(kind, "", t.start)
	if p.tok().kind == tokIdent && !isReserved(p.tok().text) {
		n.Text = p.advance().text
	}
	p.expect(";")
	return p.finish(n)
}

func (p *parser) parseTry() *jast.Node {
	n := p.node(jast.NodeTry, "", p.advance().start)
	n.Set(jast.PropBody, p.parseBlock())
	n.Append(jast.PropCatches)
	for p.is("catch") {
		c := p.node(jast.NodeCatch, "", p.advance().start)
		p.expect("(")
		p.parseModifiers(c)
		c.Append(jast.PropTypes)
		for {
			if typ := p.parseType(); typ != nil {
				c.Append(jast.PropTypes, typ)
			}
			if !p.accept("|") {
				break
			}
		}
		name, _ := p.expectIdent()
		c.Text = name.text
		p.expect(")")
		c.Set(jast.PropBody, p.parseBlock())
		n.Append(jast.PropCatches, p.finish(c))
	}
	if p.accept("finally") {
		n.Set(jast.PropFinally, p.parseBlock())
	} else {
		n.Set(jast.PropFinally, nil)
	}
	if len(n.List(jast.PropCatches)) == 0 && n.Child(jast.PropFinally) == nil {
		p.errorAt(p.tok(), "try without catch or finally")
	}
	return p.finish(n)
}
