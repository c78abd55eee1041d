package flowcheck

import (
	"fmt"

	"github.com/yaklabco/flowfix/pkg/flow"
	"github.com/yaklabco/flowfix/pkg/jast"
)

// sequenceStatement analyzes s as the next statement of a list. Only the
// first statement of an unreachable run is reported, so complained tells
// whether the previous statement already was.
func (a *analyzer) sequenceStatement(s *jast.Node, in flow.Info, complained bool) flow.Info {
	if in.IsReachable() {
		return a.statement(s, in)
	}
	if !complained {
		a.complainUnreachable(s, in)
	}
	return a.unreachable(s, in)
}

// statements analyzes a statement list and returns the flow after it.
func (a *analyzer) statements(list []*jast.Node, in flow.Info) flow.Info {
	out := in
	complained := false
	for _, s := range list {
		wasReachable := out.IsReachable()
		out = a.sequenceStatement(s, out, complained)
		if !wasReachable && reportable(s) {
			complained = true
		}
	}
	return out
}

// branch analyzes the body of an if or loop, complaining when it cannot run.
func (a *analyzer) branch(s *jast.Node, in flow.Info) flow.Info {
	return a.sequenceStatement(s, in, false)
}

func reportable(s *jast.Node) bool {
	return s != nil && s.Kind != jast.NodeEmpty && s.Kind != jast.NodeClass
}

func (a *analyzer) complainUnreachable(s *jast.Node, in flow.Info) {
	if !reportable(s) {
		return
	}
	f := Finding{Range: s.Range, Node: s}
	if in.Reach() == flow.UnreachableOrDead {
		f.Code = CodeUnreachable
		f.Message = "Unreachable code"
	} else {
		f.Code = CodeDeadCode
		f.Message = "Dead code"
	}
	a.report(f)
}

// unreachable analyzes a statement that cannot run. Dead code keeps its
// configuration-dependent flow. Code that never runs is analyzed on a fake
// reachable path so that its own structure is still checked, and the
// incoming dead end is passed on unchanged.
func (a *analyzer) unreachable(s *jast.Node, in flow.Info) flow.Info {
	a.quiet++
	defer func() { a.quiet-- }()

	if in.Reach() == flow.UnreachableOrDead {
		a.statement(s, a.conservative(in))
		return in
	}
	return a.statement(s, in)
}

func (a *analyzer) statement(s *jast.Node, in flow.Info) flow.Info {
	if s == nil {
		return in
	}

	switch s.Kind {
	case jast.NodeBlock:
		return a.block(s, in)
	case jast.NodeEmpty, jast.NodeClass:
		return in
	case jast.NodeLocalVar:
		return a.localVar(s, in)
	case jast.NodeExprStmt:
		return a.expr(s.Child(jast.PropExpr), in)
	case jast.NodeIf:
		return a.ifStmt(s, in)
	case jast.NodeWhile, jast.NodeDo, jast.NodeFor:
		return a.loop(s, in, "")
	case jast.NodeLabeled:
		return a.labeled(s, in)
	case jast.NodeSwitch:
		return a.switchStmt(s, in)
	case jast.NodeBreak:
		return a.breakStmt(s, in)
	case jast.NodeContinue:
		return a.continueStmt(s, in)
	case jast.NodeReturn:
		return a.returnStmt(s, in)
	case jast.NodeThrow:
		return a.throwStmt(s, in)
	case jast.NodeTry:
		return a.tryStmt(s, in)
	case jast.NodeAssert:
		return a.assertStmt(s, in)
	default:
		return a.malformed(s, in)
	}
}

func (a *analyzer) malformed(n *jast.Node, in flow.Info) flow.Info {
	msg := "Syntax error"
	if n.Kind == jast.NodeBad && n.Text != "" {
		msg = "Syntax error: " + n.Text
	} else if n.Kind != jast.NodeBad {
		msg = fmt.Sprintf("Syntax error: unexpected %s", n.Kind)
	}
	a.report(Finding{
		Code:    CodeSyntax,
		Range:   n.Range,
		Message: msg,
		Node:    n,
	})
	return a.conservative(in)
}

func (a *analyzer) block(b *jast.Node, in flow.Info) flow.Info {
	a.pushScope()
	defer a.popScope()
	return a.statements(b.List(jast.PropStatements), in)
}

func (a *analyzer) localVar(s *jast.Node, in flow.Info) flow.Info {
	typ := typeText(s.Child(jast.PropType))
	final := s.HasModifier("final")
	out := in
	for _, frag := range s.List(jast.PropFragments) {
		l := a.declare(frag.Text, frag, typ, final, LocalVariable)
		out = out.Declare(l.Slot)
		init := frag.Child(jast.PropInit)
		if init == nil {
			continue
		}
		out = a.expr(init, out)
		a.checkLiteralType(l, init)
		out = out.Assign(l.Slot)
		out = a.setNullFrom(out, l, init)
	}
	return out
}

func (a *analyzer) ifStmt(s *jast.Node, in flow.Info) flow.Info {
	whenTrue, whenFalse := a.condition(s.Child(jast.PropCond), in)
	thenOut := a.branch(s.Child(jast.PropThen), whenTrue)
	elseOut := whenFalse
	if els := s.Child(jast.PropElse); els != nil {
		elseOut = a.branch(els, whenFalse)
	}
	return flow.Merge(thenOut, elseOut)
}

func (a *analyzer) labeled(s *jast.Node, in flow.Info) flow.Info {
	body := s.Child(jast.PropBody)
	if body != nil && body.Kind.IsLoop() {
		return a.loop(body, in, s.Text)
	}
	frame := a.fc.PushLabel(s, s.Text)
	out := a.statement(body, in)
	a.pop(frame)
	return flow.Merge(out, frame.Breaks())
}

func (a *analyzer) loop(s *jast.Node, in flow.Info, label string) flow.Info {
	switch s.Kind {
	case jast.NodeWhile:
		return a.whileLoop(s, in, label)
	case jast.NodeDo:
		return a.doLoop(s, in, label)
	default:
		if s.Child(jast.PropExpr) != nil {
			return a.forEachLoop(s, in, label)
		}
		return a.forLoop(s, in, label)
	}
}

func (a *analyzer) whileLoop(s *jast.Node, in flow.Info, label string) flow.Info {
	cond := s.Child(jast.PropCond)
	frame := a.fc.PushLoop(s, label)
	entry := in.EnterScope()

	whenTrue, whenFalse := a.condition(cond, entry)
	body := a.branch(s.Child(jast.PropBody), whenTrue)
	loopBack := flow.Merge(body, frame.Continues())
	frame.SetLoopBack(loopBack)
	a.pop(frame)

	exit := frame.Breaks()
	if v, ok := constant(cond); !ok || !v {
		exit = flow.Merge(whenFalse.AddPotential(loopBack), exit)
	}
	return exit.LeaveScope(in)
}

func (a *analyzer) doLoop(s *jast.Node, in flow.Info, label string) flow.Info {
	cond := s.Child(jast.PropCond)
	frame := a.fc.PushLoop(s, label)
	entry := in.EnterScope()

	body := a.statement(s.Child(jast.PropBody), entry)
	condIn := flow.Merge(body, frame.Continues())
	var whenTrue, whenFalse flow.Info
	if condIn.IsReachable() {
		whenTrue, whenFalse = a.condition(cond, condIn)
	} else {
		whenTrue, whenFalse = condIn, condIn
	}
	frame.SetLoopBack(whenTrue)
	a.pop(frame)

	exit := frame.Breaks()
	if v, ok := constant(cond); !ok || !v {
		exit = flow.Merge(whenFalse, exit)
	}
	return exit.LeaveScope(in)
}

func (a *analyzer) forLoop(s *jast.Node, in flow.Info, label string) flow.Info {
	a.pushScope()
	defer a.popScope()

	out := in
	for _, init := range s.List(jast.PropInits) {
		out = a.statement(init, out)
	}

	cond := s.Child(jast.PropCond)
	frame := a.fc.PushLoop(s, label)
	entry := out.EnterScope()

	var whenTrue, whenFalse flow.Info
	if cond == nil {
		whenTrue, whenFalse = entry, dead(entry)
	} else {
		whenTrue, whenFalse = a.condition(cond, entry)
	}

	body := a.branch(s.Child(jast.PropBody), whenTrue)
	update := flow.Merge(body, frame.Continues())
	for _, u := range s.List(jast.PropUpdates) {
		if update.IsReachable() {
			update = a.statement(u, update)
		} else {
			update = a.unreachable(u, update)
		}
	}
	frame.SetLoopBack(update)
	a.pop(frame)

	exit := frame.Breaks()
	if v, ok := constant(cond); cond != nil && (!ok || !v) {
		exit = flow.Merge(whenFalse.AddPotential(update), exit)
	}
	return exit.LeaveScope(out)
}

func (a *analyzer) forEachLoop(s *jast.Node, in flow.Info, label string) flow.Info {
	a.pushScope()
	defer a.popScope()

	iterable := s.Child(jast.PropExpr)
	out := a.expr(iterable, in)
	out = a.deref(iterable, out)

	frame := a.fc.PushLoop(s, label)
	entry := out.EnterScope()
	bodyIn := entry
	for _, decl := range s.List(jast.PropInits) {
		typ := typeText(decl.Child(jast.PropType))
		for _, frag := range decl.List(jast.PropFragments) {
			l := a.declare(frag.Text, frag, typ, decl.HasModifier("final"), LocalForEach)
			bodyIn = bodyIn.Declare(l.Slot).Assign(l.Slot)
		}
	}

	body := a.branch(s.Child(jast.PropBody), bodyIn)
	loopBack := flow.Merge(body, frame.Continues())
	frame.SetLoopBack(loopBack)
	a.pop(frame)

	exit := flow.Merge(entry.AddPotential(loopBack), frame.Breaks())
	return exit.LeaveScope(out)
}

func (a *analyzer) switchStmt(s *jast.Node, in flow.Info) flow.Info {
	selector := s.Child(jast.PropExpr)
	out := a.expr(selector, in)
	out = a.deref(selector, out)

	frame := a.fc.PushSwitch(s)
	a.pushScope()

	hasDefault := false
	fall := flow.DeadEnd()
	for _, c := range s.List(jast.PropCases) {
		if c.Kind != jast.NodeCase {
			fall = a.malformed(c, flow.Merge(out, fall))
			continue
		}
		if c.Text == "default" {
			hasDefault = true
		} else if e := c.Child(jast.PropExpr); e != nil {
			a.expr(e, out)
		}
		fall = a.statements(c.List(jast.PropStatements), flow.Merge(out, fall))
	}

	a.popScope()
	a.pop(frame)

	exit := flow.Merge(fall, frame.Breaks())
	if !hasDefault {
		exit = flow.Merge(exit, out)
	}
	return exit
}

func (a *analyzer) breakStmt(s *jast.Node, in flow.Info) flow.Info {
	target, err := a.fc.ResolveBreak(s)
	if err != nil {
		a.contract(s, err)
		return a.conservative(in)
	}
	a.fc.Break(target, in)
	return flow.DeadEnd()
}

func (a *analyzer) continueStmt(s *jast.Node, in flow.Info) flow.Info {
	target, err := a.fc.ResolveContinue(s)
	if err != nil {
		a.contract(s, err)
		return a.conservative(in)
	}
	a.fc.Continue(target, in)
	return flow.DeadEnd()
}

func (a *analyzer) returnStmt(s *jast.Node, in flow.Info) flow.Info {
	out := in
	if e := s.Child(jast.PropExpr); e != nil {
		out = a.expr(e, out)
	}
	a.fc.Return(out)
	return flow.DeadEnd()
}

func (a *analyzer) throwStmt(s *jast.Node, in flow.Info) flow.Info {
	e := s.Child(jast.PropExpr)
	out := a.expr(e, in)
	out = a.deref(e, out)

	typeName := a.thrownType(e)
	if typeName == "" {
		a.fc.ThrowUnknown(out)
		return flow.DeadEnd()
	}
	if a.fc.Throw(typeName, out) == flow.Unhandled {
		a.report(Finding{
			Code:     CodeUnhandledException,
			Range:    s.Range,
			Message:  fmt.Sprintf("Unhandled exception type %s", typeName),
			Node:     s,
			TypeName: typeName,
		})
	}
	return flow.DeadEnd()
}

// thrownType returns the static type of a thrown expression when it can be
// determined locally.
func (a *analyzer) thrownType(e *jast.Node) string {
	e = unparen(e)
	if e == nil {
		return ""
	}
	switch e.Kind {
	case jast.NodeNew:
		if e.Text == "" {
			return baseTypeName(typeText(e.Child(jast.PropType)))
		}
	case jast.NodeName:
		if l := a.lookup(e.Text); l != nil && l.Type != "" {
			return baseTypeName(l.Type)
		}
	case jast.NodeCast:
		return baseTypeName(typeText(e.Child(jast.PropType)))
	default:
	}
	return ""
}

func (a *analyzer) tryStmt(s *jast.Node, in flow.Info) flow.Info {
	catches := s.List(jast.PropCatches)
	finally := s.Child(jast.PropFinally)

	handlers := make([]*flow.Handler, len(catches))
	for i, c := range catches {
		handlers[i] = &flow.Handler{Types: typeNames(c.List(jast.PropTypes)), Node: c}
	}
	frame := a.fc.PushTryCatch(s, handlers, finally != nil)

	tryOut := a.statement(s.Child(jast.PropBody), in)
	frame.CloseHandlers()

	outs := []flow.Info{tryOut}
	for i, c := range catches {
		outs = append(outs, a.catchClause(c, handlers[i], in, tryOut))
	}
	normal := flow.MergeAll(outs...)

	a.pop(frame)
	if finally == nil {
		return normal
	}

	finallyIn := in.AddPotential(normal)
	if abrupt, ok := frame.FinallyIncoming(); ok {
		finallyIn = finallyIn.AddPotential(abrupt)
	}
	finallyOut, effect := a.block(finally, finallyIn.TrackEffect()).EndEffect(finallyIn)
	if !finallyOut.IsReachable() {
		return finallyOut
	}
	return flow.SequenceFinally(normal, finallyOut, effect)
}

func (a *analyzer) catchClause(c *jast.Node, h *flow.Handler, tryIn, tryOut flow.Info) flow.Info {
	catchIn, fed := h.Incoming()
	if !fed {
		if h.CatchesUnchecked() {
			catchIn = tryIn.AddPotential(tryOut)
		} else {
			a.report(Finding{
				Code: CodeUnreachable,
				Range: c.Range,
				Message: fmt.Sprintf(
					"Unreachable catch block for %s. This exception is never thrown from the try statement body",
					typeText(firstOf(c.List(jast.PropTypes)))),
				Node: c,
			})
			a.quiet++
			defer func() { a.quiet-- }()
			catchIn = a.conservative(tryIn)
		}
	}

	a.pushScope()
	defer a.popScope()

	typ := ""
	if types := c.List(jast.PropTypes); len(types) == 1 {
		typ = types[0].Text
	}
	l := a.declare(c.Text, c, typ, c.HasModifier("final"), LocalCatchParam)
	bodyIn := catchIn.Declare(l.Slot).Assign(l.Slot).WithNull(l.Slot, flow.NonNull)
	out := a.statement(c.Child(jast.PropBody), bodyIn)
	if !fed && !h.CatchesUnchecked() {
		return flow.DeadEnd()
	}
	return out
}

func firstOf(nodes []*jast.Node) *jast.Node {
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

func (a *analyzer) assertStmt(s *jast.Node, in flow.Info) flow.Info {
	cond := s.Child(jast.PropCond)
	whenTrue, whenFalse := a.condition(cond, in)
	if msg := s.Child(jast.PropMessage); msg != nil && whenFalse.IsReachable() {
		a.expr(msg, whenFalse)
	}

	if v, ok := constant(cond); ok {
		switch {
		case v:
			return whenTrue
		case a.opts.AssertionsEnabled:
			return dead(in)
		default:
			return in
		}
	}
	if a.opts.AssertionsEnabled {
		return whenTrue
	}
	return in.AddPotential(whenTrue)
}
