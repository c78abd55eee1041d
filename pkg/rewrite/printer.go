package rewrite

import (
	"strings"

	"github.com/yaklabco/flowfix/pkg/indent"
	"github.com/yaklabco/flowfix/pkg/jast"
)

// Print renders a synthesized subtree as source text. level is the
// indentation level of the line the text starts on.
func Print(n *jast.Node, opts indent.Options, eol string, level int) string {
	if eol == "" {
		eol = "\n"
	}
	p := &printer{opts: opts, eol: eol}
	var b strings.Builder
	p.node(&b, n, level)
	return b.String()
}

// print renders n for the engine: placeholders and original nodes reuse
// source text, everything else is printed.
func (e *engine) print(n *jast.Node, level int) string {
	p := &printer{opts: e.opts.Indent, eol: e.eol, source: e.sourceText}
	var b strings.Builder
	p.node(&b, n, level)
	return b.String()
}

func (e *engine) sourceText(n *jast.Node, level int) (string, bool) {
	if src, ok := e.rw.sources[n]; ok {
		return e.placeholderText(src, level), true
	}
	if n.Range.IsEmpty() || n.Range.End > len(e.src) {
		return "", false
	}
	text := string(e.src[n.Range.Start:n.Range.End])
	return e.opts.Indent.Reindent(text, e.levelAt(n.Range.Start), level), true
}

type printer struct {
	opts   indent.Options
	eol    string
	source func(n *jast.Node, level int) (string, bool)
}

func (p *printer) nl(b *strings.Builder, level int) {
	b.WriteString(p.eol)
	b.WriteString(p.opts.Indent(level))
}

func (p *printer) list(b *strings.Builder, nodes []*jast.Node, sep string, level int) {
	for i, c := range nodes {
		if i > 0 {
			b.WriteString(sep)
		}
		p.node(b, c, level)
	}
}

func (p *printer) modifiers(b *strings.Builder, n *jast.Node, level int) {
	for _, m := range n.List(jast.PropModifiers) {
		p.node(b, m, level)
		b.WriteByte(' ')
	}
}

// body prints a nested statement. Blocks stay on the header line; other
// statements move to the next line one level deeper.
func (p *printer) body(b *strings.Builder, s *jast.Node, level int) {
	if s == nil {
		b.WriteByte(';')
		return
	}
	if s.Kind == jast.NodeBlock {
		b.WriteByte(' ')
		p.node(b, s, level)
		return
	}
	p.nl(b, level+1)
	p.node(b, s, level+1)
}

func (p *printer) node(b *strings.Builder, n *jast.Node, level int) {
	if n == nil {
		return
	}
	if p.source != nil {
		if text, ok := p.source(n, level); ok {
			b.WriteString(text)
			return
		}
	}

	switch n.Kind {
	case jast.NodeBlock:
		b.WriteByte('{')
		for _, s := range n.List(jast.PropStatements) {
			p.nl(b, level+1)
			p.node(b, s, level+1)
		}
		p.nl(b, level)
		b.WriteByte('}')
	case jast.NodeEmpty:
		b.WriteByte(';')
	case jast.NodeLocalVar, jast.NodeField:
		p.modifiers(b, n, level)
		p.node(b, n.Child(jast.PropType), level)
		b.WriteByte(' ')
		p.list(b, n.List(jast.PropFragments), ", ", level)
		b.WriteByte(';')
	case jast.NodeFragment:
		b.WriteString(n.Text)
		if init := n.Child(jast.PropInit); init != nil {
			b.WriteString(" = ")
			p.node(b, init, level)
		}
	case jast.NodeExprStmt:
		p.node(b, n.Child(jast.PropExpr), level)
		b.WriteByte(';')
	case jast.NodeIf:
		b.WriteString("if (")
		p.node(b, n.Child(jast.PropCond), level)
		b.WriteByte(')')
		then := n.Child(jast.PropThen)
		p.body(b, then, level)
		if els := n.Child(jast.PropElse); els != nil {
			if then != nil && then.Kind == jast.NodeBlock {
				b.WriteByte(' ')
			} else {
				p.nl(b, level)
			}
			b.WriteString("else")
			if els.Kind == jast.NodeIf {
				b.WriteByte(' ')
				p.node(b, els, level)
			} else {
				p.body(b, els, level)
			}
		}
	case jast.NodeWhile:
		b.WriteString("while (")
		p.node(b, n.Child(jast.PropCond), level)
		b.WriteByte(')')
		p.body(b, n.Child(jast.PropBody), level)
	case jast.NodeDo:
		b.WriteString("do")
		body := n.Child(jast.PropBody)
		p.body(b, body, level)
		if body != nil && body.Kind == jast.NodeBlock {
			b.WriteByte(' ')
		} else {
			p.nl(b, level)
		}
		b.WriteString("while (")
		p.node(b, n.Child(jast.PropCond), level)
		b.WriteString(");")
	case jast.NodeFor:
		p.forHeader(b, n, level)
		p.body(b, n.Child(jast.PropBody), level)
	case jast.NodeSwitch:
		b.WriteString("switch (")
		p.node(b, n.Child(jast.PropExpr), level)
		b.WriteString(") {")
		for _, c := range n.List(jast.PropCases) {
			p.nl(b, level+1)
			p.node(b, c, level+1)
		}
		p.nl(b, level)
		b.WriteByte('}')
	case jast.NodeCase:
		if label := n.Child(jast.PropExpr); label != nil {
			b.WriteString("case ")
			p.node(b, label, level)
			b.WriteByte(':')
		} else {
			b.WriteString("default:")
		}
		for _, s := range n.List(jast.PropStatements) {
			p.nl(b, level+1)
			p.node(b, s, level+1)
		}
	case jast.NodeBreak, jast.NodeContinue:
		if n.Kind == jast.NodeBreak {
			b.WriteString("break")
		} else {
			b.WriteString("continue")
		}
		if n.Text != "" {
			b.WriteByte(' ')
			b.WriteString(n.Text)
		}
		b.WriteByte(';')
	case jast.NodeReturn:
		b.WriteString("return")
		if v := n.Child(jast.PropExpr); v != nil {
			b.WriteByte(' ')
			p.node(b, v, level)
		}
		b.WriteByte(';')
	case jast.NodeThrow:
		b.WriteString("throw ")
		p.node(b, n.Child(jast.PropExpr), level)
		b.WriteByte(';')
	case jast.NodeTry:
		b.WriteString("try ")
		p.node(b, n.Child(jast.PropBody), level)
		for _, c := range n.List(jast.PropCatches) {
			b.WriteByte(' ')
			p.node(b, c, level)
		}
		if fin := n.Child(jast.PropFinally); fin != nil {
			b.WriteString(" finally ")
			p.node(b, fin, level)
		}
	case jast.NodeCatch:
		b.WriteString("catch (")
		p.modifiers(b, n, level)
		p.list(b, n.List(jast.PropTypes), " | ", level)
		b.WriteByte(' ')
		b.WriteString(n.Text)
		b.WriteString(") ")
		p.node(b, n.Child(jast.PropBody), level)
	case jast.NodeAssert:
		b.WriteString("assert ")
		p.node(b, n.Child(jast.PropCond), level)
		if msg := n.Child(jast.PropMessage); msg != nil {
			b.WriteString(" : ")
			p.node(b, msg, level)
		}
		b.WriteByte(';')
	case jast.NodeLabeled:
		b.WriteString(n.Text)
		b.WriteString(": ")
		p.node(b, n.Child(jast.PropBody), level)
	case jast.NodeMethod:
		p.modifiers(b, n, level)
		if t := n.Child(jast.PropType); t != nil {
			p.node(b, t, level)
			b.WriteByte(' ')
		}
		b.WriteString(n.Text)
		b.WriteByte('(')
		p.list(b, n.List(jast.PropParams), ", ", level)
		b.WriteByte(')')
		if throws := n.List(jast.PropThrows); len(throws) > 0 {
			b.WriteString(" throws ")
			p.list(b, throws, ", ", level)
		}
		p.body(b, n.Child(jast.PropBody), level)
	case jast.NodeParam:
		p.modifiers(b, n, level)
		p.node(b, n.Child(jast.PropType), level)
		b.WriteByte(' ')
		b.WriteString(n.Text)
	case jast.NodeClass:
		p.modifiers(b, n, level)
		b.WriteString("class ")
		b.WriteString(n.Text)
		b.WriteString(" {")
		for _, m := range n.List(jast.PropMembers) {
			p.nl(b, level+1)
			p.node(b, m, level+1)
		}
		p.nl(b, level)
		b.WriteByte('}')
	default:
		p.expr(b, n, level)
	}
}

func (p *printer) forHeader(b *strings.Builder, n *jast.Node, level int) {
	b.WriteString("for (")
	inits := n.List(jast.PropInits)
	if each := n.Child(jast.PropExpr); each != nil && len(inits) == 1 {
		decl := inits[0]
		p.modifiers(b, decl, level)
		p.node(b, decl.Child(jast.PropType), level)
		for _, f := range decl.List(jast.PropFragments) {
			b.WriteByte(' ')
			b.WriteString(f.Text)
		}
		b.WriteString(" : ")
		p.node(b, each, level)
		b.WriteByte(')')
		return
	}
	for i, init := range inits {
		if i > 0 {
			b.WriteString(", ")
		}
		var sb strings.Builder
		p.node(&sb, init, level)
		// Statement forms end in ';' which the header supplies itself.
		b.WriteString(strings.TrimSuffix(sb.String(), ";"))
	}
	b.WriteString("; ")
	p.node(b, n.Child(jast.PropCond), level)
	b.WriteString("; ")
	for i, u := range n.List(jast.PropUpdates) {
		if i > 0 {
			b.WriteString(", ")
		}
		if u.Kind == jast.NodeExprStmt {
			p.node(b, u.Child(jast.PropExpr), level)
		} else {
			p.node(b, u, level)
		}
	}
	b.WriteByte(')')
}

func (p *printer) expr(b *strings.Builder, n *jast.Node, level int) {
	switch n.Kind {
	case jast.NodeLiteral, jast.NodeName, jast.NodeType, jast.NodeModifier, jast.NodeBad:
		b.WriteString(n.Text)
	case jast.NodeFieldAccess:
		p.node(b, n.Child(jast.PropTarget), level)
		b.WriteByte('.')
		b.WriteString(n.Text)
	case jast.NodeCall:
		if t := n.Child(jast.PropTarget); t != nil {
			p.node(b, t, level)
			b.WriteByte('.')
		}
		b.WriteString(n.Text)
		b.WriteByte('(')
		p.list(b, n.List(jast.PropArgs), ", ", level)
		b.WriteByte(')')
	case jast.NodeNew:
		b.WriteString("new ")
		p.node(b, n.Child(jast.PropType), level)
		if n.Text == "[]" {
			args := n.List(jast.PropArgs)
			for _, a := range args {
				b.WriteByte('[')
				p.node(b, a, level)
				b.WriteByte(']')
			}
			if len(args) == 0 {
				b.WriteString("[]")
			}
			if init := n.Child(jast.PropInit); init != nil {
				b.WriteByte(' ')
				p.node(b, init, level)
			}
			return
		}
		b.WriteByte('(')
		p.list(b, n.List(jast.PropArgs), ", ", level)
		b.WriteByte(')')
	case jast.NodeAssign, jast.NodeBinary:
		p.node(b, n.Child(jast.PropLeft), level)
		b.WriteByte(' ')
		b.WriteString(n.Text)
		b.WriteByte(' ')
		p.node(b, n.Child(jast.PropRight), level)
	case jast.NodeUnary:
		b.WriteString(n.Text)
		p.node(b, n.Child(jast.PropExpr), level)
	case jast.NodePostfix:
		p.node(b, n.Child(jast.PropExpr), level)
		b.WriteString(n.Text)
	case jast.NodeConditional:
		p.node(b, n.Child(jast.PropCond), level)
		b.WriteString(" ? ")
		p.node(b, n.Child(jast.PropThen), level)
		b.WriteString(" : ")
		p.node(b, n.Child(jast.PropElse), level)
	case jast.NodeParen:
		b.WriteByte('(')
		p.node(b, n.Child(jast.PropExpr), level)
		b.WriteByte(')')
	case jast.NodeInstanceOf:
		p.node(b, n.Child(jast.PropExpr), level)
		b.WriteString(" instanceof ")
		p.node(b, n.Child(jast.PropType), level)
	case jast.NodeCast:
		b.WriteByte('(')
		p.node(b, n.Child(jast.PropType), level)
		b.WriteString(") ")
		p.node(b, n.Child(jast.PropExpr), level)
	case jast.NodeArrayAccess:
		p.node(b, n.Child(jast.PropTarget), level)
		b.WriteByte('[')
		p.node(b, n.Child(jast.PropExpr), level)
		b.WriteByte(']')
	case jast.NodeArrayInit:
		b.WriteByte('{')
		p.list(b, n.List(jast.PropArgs), ", ", level)
		b.WriteByte('}')
	default:
		b.WriteString(n.Text)
	}
}
