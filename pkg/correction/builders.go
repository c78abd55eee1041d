package correction

import (
	"fmt"

	"github.com/yaklabco/flowfix/pkg/flowcheck"
	"github.com/yaklabco/flowfix/pkg/jast"
	"github.com/yaklabco/flowfix/pkg/rewrite"
)

// removeUnreachable removes the reported statement and every later sibling
// in its list, which share its reachability.
func (b *Builder) removeUnreachable(f flowcheck.Finding) *Proposal {
	n := f.Node
	if n == nil || n.Parent == nil {
		return nil
	}
	label := "Remove unreachable code"
	if f.Code == flowcheck.CodeDeadCode {
		label = "Remove dead code"
	}

	switch {
	case n.Kind == jast.NodeCatch:
		try := n.Parent
		if len(try.List(jast.PropCatches)) < 2 && try.Child(jast.PropFinally) == nil {
			return nil
		}
		return b.propose(f, "Remove catch clause", RelevanceHigh, KindQuickFix, func(rw *rewrite.Rewrite) error {
			return rw.Remove(n)
		})
	case n.Prop == jast.PropStatements:
		run := n.Parent.List(jast.PropStatements)[n.Index():]
		return b.propose(f, label, RelevanceHigh, KindQuickFix, func(rw *rewrite.Rewrite) error {
			for _, s := range run {
				if err := rw.Remove(s); err != nil {
					return err
				}
			}
			return nil
		})
	case n.Parent.Kind == jast.NodeIf && n.Prop == jast.PropElse:
		return b.propose(f, label, RelevanceHigh, KindQuickFix, func(rw *rewrite.Rewrite) error {
			return rw.Set(n.Parent, jast.PropElse, nil)
		})
	case n.Kind == jast.NodeBlock && len(n.List(jast.PropStatements)) == 0:
		return nil
	default:
		return b.propose(f, label, RelevanceHigh, KindQuickFix, func(rw *rewrite.Rewrite) error {
			return rw.Replace(n, jast.NewBlock())
		})
	}
}

// initialize gives an uninitialized local its type's default value.
func (b *Builder) initialize(f flowcheck.Finding) *Proposal {
	frag := f.Decl
	if frag == nil || frag.Kind != jast.NodeFragment || frag.Child(jast.PropInit) != nil {
		return nil
	}
	if frag.Parent == nil || frag.Parent.Kind != jast.NodeLocalVar || isForEachVar(frag.Parent) {
		return nil
	}
	value := jast.DefaultValue(declaredType(frag))
	return b.propose(f, fmt.Sprintf("Initialize variable '%s'", f.Local), RelevanceHigh, KindQuickFix,
		func(rw *rewrite.Rewrite) error {
			return rw.Set(frag, jast.PropInit, jast.NewLiteral(value))
		})
}

// addReturn appends a return of the result type's default value to the
// method body.
func (b *Builder) addReturn(f flowcheck.Finding) *Proposal {
	m := f.Method
	if m == nil || m.Kind != jast.NodeMethod || m.Child(jast.PropBody) == nil || m.Child(jast.PropType) == nil {
		return nil
	}
	body := m.Child(jast.PropBody)
	value := jast.DefaultValue(m.Child(jast.PropType).Text)
	return b.propose(f, "Add return statement", RelevanceHigh, KindQuickFix, func(rw *rewrite.Rewrite) error {
		return rw.Append(body, jast.PropStatements, jast.NewReturn(jast.NewLiteral(value)))
	})
}

// removeFinal drops the final modifier of the reassigned local.
func (b *Builder) removeFinal(f flowcheck.Finding) *Proposal {
	decl := declaration(f.Decl)
	if decl == nil {
		return nil
	}
	mod := decl.Modifier("final")
	if mod == nil {
		return nil
	}
	return b.propose(f, fmt.Sprintf("Remove 'final' modifier of '%s'", f.Local), RelevanceHigh, KindQuickFix,
		func(rw *rewrite.Rewrite) error {
			return rw.Remove(mod)
		})
}

// removeUnused removes an unused local whose initializer has no side
// effects and which is never assigned later.
func (b *Builder) removeUnused(f flowcheck.Finding) *Proposal {
	frag := f.Decl
	if frag == nil || frag.Kind != jast.NodeFragment || frag.Parent == nil || frag.Parent.Kind != jast.NodeLocalVar {
		return nil
	}
	decl := frag.Parent
	if decl.Prop != jast.PropStatements || !pure(frag.Child(jast.PropInit)) {
		return nil
	}
	if scope := decl.Parent; scope != nil && mentioned(scope, f.Local, decl) {
		return nil
	}

	target := frag
	if len(decl.List(jast.PropFragments)) == 1 {
		target = decl
	}
	return b.propose(f, fmt.Sprintf("Remove '%s'", f.Local), RelevanceMedium, KindQuickFix,
		func(rw *rewrite.Rewrite) error {
			return rw.Remove(target)
		})
}

func (b *Builder) addThrows(f flowcheck.Finding) *Proposal {
	m := f.Method
	if m == nil || m.Kind != jast.NodeMethod || f.TypeName == "" {
		return nil
	}
	return b.propose(f, "Add throws declaration", RelevanceHigh, KindQuickFix, func(rw *rewrite.Rewrite) error {
		return rw.Append(m, jast.PropThrows, jast.NewType(f.TypeName))
	})
}

// addCatch adds a catch clause to the nearest try whose body holds the
// throw.
func (b *Builder) addCatch(f flowcheck.Finding) *Proposal {
	if f.Node == nil || f.TypeName == "" {
		return nil
	}
	try := enclosingTry(f.Node)
	if try == nil {
		return nil
	}
	name := catchName(f.Method)
	return b.propose(f, "Add catch clause to surrounding try", RelevanceMedium, KindQuickFix,
		func(rw *rewrite.Rewrite) error {
			return rw.Append(try, jast.PropCatches, jast.NewCatch(name, jast.NewBlock(), f.TypeName))
		})
}

func (b *Builder) surroundWithTry(f flowcheck.Finding) *Proposal {
	stmt := f.Node
	if stmt == nil || stmt.Parent == nil || f.TypeName == "" {
		return nil
	}
	name := catchName(f.Method)
	return b.propose(f, "Surround with try/catch", RelevanceLow, KindRefactor, func(rw *rewrite.Rewrite) error {
		catch := jast.NewCatch(name, jast.NewBlock(), f.TypeName)
		return rw.Replace(stmt, jast.NewTry(jast.NewBlock(rw.Move(stmt)), []*jast.Node{catch}, nil))
	})
}

func (b *Builder) removeJump(f flowcheck.Finding) *Proposal {
	n := f.Node
	if n == nil || n.Parent == nil || (n.Kind != jast.NodeBreak && n.Kind != jast.NodeContinue) {
		return nil
	}
	return b.propose(f, "Remove statement", RelevanceHigh, KindQuickFix, func(rw *rewrite.Rewrite) error {
		if n.Prop.IsList() {
			return rw.Remove(n)
		}
		return rw.Replace(n, jast.NewEmpty())
	})
}

// changeType retypes the declaration to the assigned literal's type.
func (b *Builder) changeType(f flowcheck.Finding) *Proposal {
	decl := declaration(f.Decl)
	if decl == nil || f.TypeName == "" || decl.Kind != jast.NodeLocalVar {
		return nil
	}
	typ := decl.Child(jast.PropType)
	if typ == nil {
		return nil
	}
	return b.propose(f, fmt.Sprintf("Change type of '%s' to '%s'", f.Local, f.TypeName), RelevanceHigh, KindQuickFix,
		func(rw *rewrite.Rewrite) error {
			return rw.Replace(typ, jast.NewType(f.TypeName))
		})
}

// declaration returns the node carrying the modifiers and type of a local's
// declaring node.
func declaration(decl *jast.Node) *jast.Node {
	if decl == nil {
		return nil
	}
	if decl.Kind == jast.NodeFragment {
		return decl.Parent
	}
	return decl
}

func declaredType(decl *jast.Node) string {
	d := declaration(decl)
	if d == nil {
		return ""
	}
	if t := d.Child(jast.PropType); t != nil {
		return t.Text
	}
	return ""
}

func isForEachVar(decl *jast.Node) bool {
	return decl.Prop == jast.PropInits && decl.Parent != nil && decl.Parent.Child(jast.PropExpr) != nil
}

func enclosingTry(n *jast.Node) *jast.Node {
	for c, p := n, n.Parent; p != nil; c, p = p, p.Parent {
		switch p.Kind {
		case jast.NodeTry:
			if c.Prop == jast.PropBody {
				return p
			}
		case jast.NodeMethod, jast.NodeClass:
			return nil
		default:
		}
	}
	return nil
}

// catchName picks a catch parameter name not used in the method.
func catchName(method *jast.Node) string {
	for _, name := range []string{"e", "ex", "exc"} {
		if method == nil || !mentioned(method, name, nil) {
			return name
		}
	}
	return "caught"
}

// mentioned reports whether name appears as a simple name under root,
// outside skip.
func mentioned(root *jast.Node, name string, skip *jast.Node) bool {
	found := jast.FindFirst(root, func(n *jast.Node) bool {
		if skip != nil && (n == skip || isWithin(n, skip)) {
			return false
		}
		switch n.Kind {
		case jast.NodeName, jast.NodeCatch, jast.NodeParam, jast.NodeFragment:
			return n.Text == name
		default:
			return false
		}
	})
	return found != nil
}

func isWithin(n, ancestor *jast.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

// pure reports whether evaluating e can have no side effects. A missing
// initializer is pure.
func pure(e *jast.Node) bool {
	if e == nil {
		return true
	}
	switch e.Kind {
	case jast.NodeLiteral, jast.NodeName:
		return true
	case jast.NodeUnary:
		if e.Text == "++" || e.Text == "--" {
			return false
		}
		return pure(e.Child(jast.PropExpr))
	case jast.NodeBinary:
		return pure(e.Child(jast.PropLeft)) && pure(e.Child(jast.PropRight))
	case jast.NodeParen, jast.NodeCast, jast.NodeInstanceOf:
		return pure(e.Child(jast.PropExpr))
	case jast.NodeFieldAccess:
		return pure(e.Child(jast.PropTarget))
	case jast.NodeConditional:
		return pure(e.Child(jast.PropCond)) && pure(e.Child(jast.PropThen)) && pure(e.Child(jast.PropElse))
	case jast.NodeArrayInit:
		for _, a := range e.List(jast.PropArgs) {
			if !pure(a) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
