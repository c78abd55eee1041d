package flowcheck

import (
	"fmt"

	"github.com/yaklabco/flowfix/pkg/flow"
	"github.com/yaklabco/flowfix/pkg/jast"
)

// expr analyzes an expression evaluated for its value or side effects.
func (a *analyzer) expr(e *jast.Node, in flow.Info) flow.Info {
	if e == nil {
		return in
	}

	switch e.Kind {
	case jast.NodeLiteral:
		return in
	case jast.NodeName:
		a.read(e, in)
		return in
	case jast.NodeParen, jast.NodeCast, jast.NodeInstanceOf:
		return a.expr(e.Child(jast.PropExpr), in)
	case jast.NodeFieldAccess:
		target := e.Child(jast.PropTarget)
		return a.deref(target, a.expr(target, in))
	case jast.NodeArrayAccess:
		target := e.Child(jast.PropTarget)
		out := a.deref(target, a.expr(target, in))
		return a.expr(e.Child(jast.PropExpr), out)
	case jast.NodeCall:
		out := in
		if target := e.Child(jast.PropTarget); target != nil {
			out = a.deref(target, a.expr(target, out))
		}
		out = a.exprs(e.List(jast.PropArgs), out)
		a.fc.ThrowUnknown(out)
		return out
	case jast.NodeNew:
		out := a.exprs(e.List(jast.PropArgs), in)
		out = a.expr(e.Child(jast.PropInit), out)
		a.fc.ThrowUnknown(out)
		return out
	case jast.NodeArrayInit:
		return a.exprs(e.List(jast.PropArgs), in)
	case jast.NodeAssign:
		return a.assign(e, in)
	case jast.NodeUnary:
		if e.Text == "++" || e.Text == "--" {
			return a.increment(e, in)
		}
		if e.Text == "!" {
			whenTrue, whenFalse := a.condition(e, in)
			return flow.Merge(whenTrue, whenFalse)
		}
		return a.expr(e.Child(jast.PropExpr), in)
	case jast.NodePostfix:
		return a.increment(e, in)
	case jast.NodeBinary:
		switch e.Text {
		case "&&", "||", "==", "!=":
			whenTrue, whenFalse := a.condition(e, in)
			return flow.Merge(whenTrue, whenFalse)
		}
		out := a.expr(e.Child(jast.PropLeft), in)
		return a.expr(e.Child(jast.PropRight), out)
	case jast.NodeConditional:
		whenTrue, whenFalse := a.condition(e.Child(jast.PropCond), in)
		return flow.Merge(
			a.expr(e.Child(jast.PropThen), whenTrue),
			a.expr(e.Child(jast.PropElse), whenFalse),
		)
	case jast.NodeBad:
		return a.malformed(e, in)
	default:
		return a.exprs(e.Children(), in)
	}
}

func (a *analyzer) exprs(list []*jast.Node, in flow.Info) flow.Info {
	out := in
	for _, e := range list {
		out = a.expr(e, out)
	}
	return out
}

// condition analyzes a boolean expression and returns the flow when it
// evaluates to true and when it evaluates to false. A side that constant
// folding rules out is tagged unreachable.
func (a *analyzer) condition(e *jast.Node, in flow.Info) (flow.Info, flow.Info) {
	if e == nil {
		return in, in
	}

	switch e.Kind {
	case jast.NodeParen:
		return a.condition(e.Child(jast.PropExpr), in)
	case jast.NodeLiteral:
		switch e.Text {
		case "true":
			return in, dead(in)
		case "false":
			return dead(in), in
		}
	case jast.NodeUnary:
		if e.Text == "!" {
			whenTrue, whenFalse := a.condition(e.Child(jast.PropExpr), in)
			return whenFalse, whenTrue
		}
	case jast.NodeBinary:
		switch e.Text {
		case "&&":
			leftTrue, leftFalse := a.condition(e.Child(jast.PropLeft), in)
			rightTrue, rightFalse := a.condition(e.Child(jast.PropRight), leftTrue)
			return rightTrue, flow.Merge(leftFalse, rightFalse)
		case "||":
			leftTrue, leftFalse := a.condition(e.Child(jast.PropLeft), in)
			rightTrue, rightFalse := a.condition(e.Child(jast.PropRight), leftFalse)
			return flow.Merge(leftTrue, rightTrue), rightFalse
		case "==", "!=":
			return a.nullComparison(e, in)
		}
	case jast.NodeInstanceOf:
		out := a.expr(e, in)
		if l := a.local(e.Child(jast.PropExpr)); l != nil && a.opts.NullAnalysis && out.IsReachable() {
			return out.WithNull(l.Slot, flow.NonNull), out
		}
		return out, out
	default:
	}

	out := a.expr(e, in)
	return out, out
}

// nullComparison narrows the null state of a local compared against null.
func (a *analyzer) nullComparison(e *jast.Node, in flow.Info) (flow.Info, flow.Info) {
	left, right := e.Child(jast.PropLeft), e.Child(jast.PropRight)
	out := a.expr(right, a.expr(left, in))

	subject := left
	if isNullLiteral(left) {
		subject = right
	} else if !isNullLiteral(right) {
		return out, out
	}

	l := a.local(subject)
	if l == nil || !l.nullable() || !a.opts.NullAnalysis || !out.IsReachable() {
		return out, out
	}

	equal := out.WithNull(l.Slot, flow.Null)
	notEqual := out.WithNull(l.Slot, flow.NonNull)
	if e.Text == "==" {
		return equal, notEqual
	}
	return notEqual, equal
}

func isNullLiteral(e *jast.Node) bool {
	e = unparen(e)
	return e != nil && e.Kind == jast.NodeLiteral && e.Text == "null"
}

// constant folds a boolean expression built from literals, !, && and ||.
func constant(e *jast.Node) (value, ok bool) {
	e = unparen(e)
	if e == nil {
		return false, false
	}
	switch e.Kind {
	case jast.NodeLiteral:
		switch e.Text {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	case jast.NodeUnary:
		if e.Text == "!" {
			v, ok := constant(e.Child(jast.PropExpr))
			return !v, ok
		}
	case jast.NodeBinary:
		l, lok := constant(e.Child(jast.PropLeft))
		r, rok := constant(e.Child(jast.PropRight))
		switch e.Text {
		case "&&":
			if lok && !l || rok && !r {
				return false, true
			}
			return true, lok && rok
		case "||":
			if lok && l || rok && r {
				return true, true
			}
			return false, lok && rok
		}
	default:
	}
	return false, false
}

func (a *analyzer) read(name *jast.Node, in flow.Info) {
	l := a.lookup(name.Text)
	if l == nil {
		return
	}
	l.Reads++
	if in.IsDefinitelyAssigned(l.Slot) {
		return
	}
	a.report(Finding{
		Code:    CodeUninitialized,
		Range:   name.Range,
		Message: fmt.Sprintf("The local variable %s may not have been initialized", l.Name),
		Node:    name,
		Decl:    l.Decl,
		Local:   l.Name,
	})
}

// deref checks a dereference of target and returns the flow after it, in
// which a dereferenced local is known to be non-null.
func (a *analyzer) deref(target *jast.Node, in flow.Info) flow.Info {
	l := a.local(target)
	if l == nil || !l.nullable() || !a.opts.NullAnalysis || !in.IsReachable() {
		return in
	}
	node := unparen(target)

	switch in.NullState(l.Slot) {
	case flow.Null:
		a.reportNull(CodeNullDereference, node, l)
	case flow.PossiblyNull:
		a.reportNull(CodePotentialNull, node, l)
	case flow.NullUnknown, flow.NonNull:
		if in.Untouched(l.Slot) && l.loops < a.fc.LoopDepth() {
			a.deferNullCheck(node, l, in)
		}
	}
	return in.WithNull(l.Slot, flow.NonNull)
}

// deferNullCheck re-examines a dereference inside a loop once the state
// flowing back from later iterations is known.
func (a *analyzer) deferNullCheck(node *jast.Node, l *Local, at flow.Info) {
	quiet := a.quiet > 0
	a.fc.RecordDeferredCheck(flow.DeferredCheck{
		Node: node,
		Slot: l.Slot,
		At:   at,
		Resolve: func(at, loopBack flow.Info) {
			if quiet || !loopBack.IsReachable() {
				return
			}
			switch flow.MergeNull(at.NullState(l.Slot), loopBack.NullState(l.Slot)) {
			case flow.Null:
				a.reportNull(CodeNullDereference, node, l)
			case flow.PossiblyNull:
				a.reportNull(CodePotentialNull, node, l)
			case flow.NullUnknown, flow.NonNull:
			}
		},
	})
}

func (a *analyzer) reportNull(code Code, node *jast.Node, l *Local) {
	msg := fmt.Sprintf("Null pointer access: The variable %s can only be null at this location", l.Name)
	if code == CodePotentialNull {
		msg = fmt.Sprintf("Potential null pointer access: The variable %s may be null at this location", l.Name)
	}
	a.report(Finding{
		Code:    code,
		Range:   node.Range,
		Message: msg,
		Node:    node,
		Decl:    l.Decl,
		Local:   l.Name,
	})
}

func (a *analyzer) assign(e *jast.Node, in flow.Info) flow.Info {
	left, right := e.Child(jast.PropLeft), e.Child(jast.PropRight)
	l := a.local(left)
	if l == nil {
		out := a.expr(left, in)
		return a.expr(right, out)
	}

	if e.Text != "=" {
		a.read(unparen(left), in)
	}
	out := a.expr(right, in)
	out = a.assignLocal(l, e, out)
	if e.Text == "=" {
		a.checkLiteralType(l, right)
		return a.setNullFrom(out, l, right)
	}
	return out
}

func (a *analyzer) increment(e *jast.Node, in flow.Info) flow.Info {
	target := e.Child(jast.PropExpr)
	l := a.local(target)
	if l == nil {
		return a.expr(target, in)
	}
	a.read(unparen(target), in)
	return a.assignLocal(l, e, in)
}

// assignLocal records an assignment to l at node, checking final locals.
func (a *analyzer) assignLocal(l *Local, node *jast.Node, in flow.Info) flow.Info {
	if l.Final {
		switch {
		case l.Kind != LocalVariable:
			a.reportFinal(node, l, fmt.Sprintf("The final local variable %s cannot be assigned", l.Name))
		case in.IsPotentiallyAssigned(l.Slot):
			a.reportFinal(node, l, fmt.Sprintf("The final local variable %s may already have been assigned", l.Name))
		case l.loops < a.fc.LoopDepth():
			a.deferFinalCheck(node, l, in)
		}
	}
	return in.Assign(l.Slot)
}

// deferFinalCheck reports an assignment to a final local declared outside
// the loop when a later iteration may reach it again. A check that passes
// is handed on to the next enclosing loop the local is declared outside of.
func (a *analyzer) deferFinalCheck(node *jast.Node, l *Local, at flow.Info) {
	quiet := a.quiet > 0
	var check flow.DeferredCheck
	check = flow.DeferredCheck{
		Node: node,
		Slot: l.Slot,
		At:   at,
		Resolve: func(_, loopBack flow.Info) {
			if quiet {
				return
			}
			if loopBack.IsPotentiallyAssigned(l.Slot) {
				a.reportFinal(node, l, fmt.Sprintf("The final local variable %s may already have been assigned", l.Name))
				return
			}
			if l.loops < a.fc.LoopDepth() {
				a.fc.RecordDeferredCheck(check)
			}
		},
	}
	a.fc.RecordDeferredCheck(check)
}

func (a *analyzer) reportFinal(node *jast.Node, l *Local, msg string) {
	a.report(Finding{
		Code:    CodeFinalReassigned,
		Range:   node.Range,
		Message: msg,
		Node:    node,
		Decl:    l.Decl,
		Local:   l.Name,
	})
}

// setNullFrom records the null state of the value assigned to l.
func (a *analyzer) setNullFrom(in flow.Info, l *Local, value *jast.Node) flow.Info {
	if !l.nullable() || !a.opts.NullAnalysis || !in.IsReachable() {
		return in
	}
	return in.WithNull(l.Slot, a.valueNullState(value, in))
}

func (a *analyzer) valueNullState(e *jast.Node, in flow.Info) flow.NullState {
	e = unparen(e)
	if e == nil {
		return flow.NullUnknown
	}
	switch e.Kind {
	case jast.NodeLiteral:
		if e.Text == "null" {
			return flow.Null
		}
		return flow.NonNull
	case jast.NodeNew, jast.NodeArrayInit:
		return flow.NonNull
	case jast.NodeName:
		if l := a.lookup(e.Text); l != nil {
			return in.NullState(l.Slot)
		}
	case jast.NodeAssign:
		if e.Text == "=" {
			return a.valueNullState(e.Child(jast.PropRight), in)
		}
	case jast.NodeConditional:
		return flow.MergeNull(
			a.valueNullState(e.Child(jast.PropThen), in),
			a.valueNullState(e.Child(jast.PropElse), in),
		)
	default:
	}
	return flow.NullUnknown
}

// checkLiteralType reports a literal initializer whose type cannot be
// assigned to a local of primitive or String type.
func (a *analyzer) checkLiteralType(l *Local, value *jast.Node) {
	lit := unparen(value)
	if lit != nil && lit.Kind == jast.NodeUnary && (lit.Text == "-" || lit.Text == "+") {
		lit = unparen(lit.Child(jast.PropExpr))
	}
	kind := lit.LiteralKind()
	if kind == jast.LitInvalid {
		return
	}
	ok, known := literalAssignable(l.Type, kind)
	if !known || ok {
		return
	}

	msg := fmt.Sprintf("Type mismatch: cannot convert from %s to %s", kind.TypeName(), l.Type)
	if kind == jast.LitNull {
		msg = fmt.Sprintf("Type mismatch: cannot convert from null to %s", l.Type)
	}
	a.report(Finding{
		Code:     CodeTypeMismatch,
		Range:    value.Range,
		Message:  msg,
		Node:     value,
		Decl:     l.Decl,
		Local:    l.Name,
		TypeName: kind.TypeName(),
	})
}

// literalAssignable reports whether a literal of kind converts to declared.
// known is false when declared is neither primitive nor String.
func literalAssignable(declared string, kind jast.LiteralKind) (ok, known bool) {
	if !jast.IsPrimitiveType(declared) && declared != "String" {
		return false, false
	}
	switch kind {
	case jast.LitNull:
		return declared == "String", true
	case jast.LitString:
		return declared == "String", true
	case jast.LitBool:
		return declared == "boolean", true
	case jast.LitChar:
		return declared != "String" && declared != "boolean", true
	case jast.LitInt:
		return declared != "String" && declared != "boolean", true
	case jast.LitLong:
		return declared == "long" || declared == "float" || declared == "double", true
	case jast.LitFloat:
		return declared == "float" || declared == "double", true
	case jast.LitDouble:
		return declared == "double", true
	case jast.LitInvalid:
	}
	return false, false
}
