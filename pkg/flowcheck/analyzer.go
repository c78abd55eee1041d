package flowcheck

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/yaklabco/flowfix/pkg/flow"
	"github.com/yaklabco/flowfix/pkg/jast"
)

// Report is the result of analyzing one file.
type Report struct {
	// Findings are sorted by start offset. Findings at the same offset keep
	// the order they were produced in.
	Findings []Finding

	// Methods is the number of method bodies analyzed.
	Methods int

	// Defects holds internal errors, one per method that could not be
	// analyzed completely.
	Defects []error
}

// Analyze runs the flow analyzers over every method of snap. Cancellation is
// checked before each top-level statement of a method body; a cancelled
// analysis returns the findings gathered so far together with ctx.Err().
func Analyze(ctx context.Context, snap *jast.FileSnapshot, opts Options) (*Report, error) {
	report := &Report{}
	if snap == nil || snap.Root == nil {
		return report, nil
	}

	for _, m := range snap.Methods() {
		if err := ctx.Err(); err != nil {
			sortFindings(report.Findings)
			return report, fmt.Errorf("flow analysis: %w", err)
		}
		findings, err := analyzeMethod(ctx, m, opts)
		report.Findings = append(report.Findings, findings...)
		report.Methods++
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				sortFindings(report.Findings)
				return report, fmt.Errorf("flow analysis: %w", ctxErr)
			}
			report.Defects = append(report.Defects, err)
		}
	}

	sortFindings(report.Findings)
	return report, nil
}

// AnalyzeMethod runs the flow analyzers over one method declaration.
func AnalyzeMethod(m *jast.Node, opts Options) ([]Finding, error) {
	findings, err := analyzeMethod(context.Background(), m, opts)
	sortFindings(findings)
	return findings, err
}

func sortFindings(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Range.Start < findings[j].Range.Start
	})
}

func analyzeMethod(ctx context.Context, m *jast.Node, opts Options) (findings []Finding, err error) {
	a := &analyzer{ctx: ctx, opts: opts, method: m, fc: flow.NewContext()}
	defer func() {
		if r := recover(); r != nil {
			findings = a.findings
			err = &DefectError{Method: m.Text, Range: m.Range, Value: r}
		}
	}()

	err = a.run()
	return a.findings, err
}

// LocalKind distinguishes how a local was introduced.
type LocalKind uint8

// Local kinds.
const (
	LocalVariable LocalKind = iota
	LocalParam
	LocalCatchParam
	LocalForEach
)

// Local is a variable declared in a method body or parameter list.
type Local struct {
	Name  string
	Slot  flow.Slot
	Decl  *jast.Node
	Type  string
	Final bool
	Kind  LocalKind

	// Reads counts the expressions that read the local.
	Reads int

	loops int
	quiet bool
}

func (l *Local) nullable() bool {
	return !jast.IsPrimitiveType(l.Type)
}

type analyzer struct {
	ctx      context.Context
	opts     Options
	method   *jast.Node
	fc       *flow.Context
	scopes   []map[string]*Local
	locals   []*Local
	findings []Finding
	defects  []error

	// quiet is non-zero while analyzing code already reported as
	// unreachable.
	quiet int
}

func (a *analyzer) run() error {
	body := a.method.Child(jast.PropBody)
	if body == nil {
		return nil
	}

	frame := a.fc.PushMethod(a.method, typeNames(a.method.List(jast.PropThrows)))
	a.pushScope()

	in := flow.NewInfo()
	for _, p := range a.method.List(jast.PropParams) {
		l := a.declare(p.Text, p, typeText(p.Child(jast.PropType)), p.HasModifier("final"), LocalParam)
		in = in.Assign(l.Slot)
	}

	a.pushScope()
	out := in
	for _, s := range body.List(jast.PropStatements) {
		if err := a.ctx.Err(); err != nil {
			return err
		}
		out = a.sequenceStatement(s, out, false)
	}
	a.popScope()
	a.popScope()
	a.pop(frame)

	if out.IsReachable() && a.returnsValue() {
		a.report(Finding{
			Code:    CodeMissingReturn,
			Range:   closingBrace(body),
			Message: fmt.Sprintf("This method must return a result of type %s", typeText(a.method.Child(jast.PropType))),
			Node:    a.method,
		})
	}

	a.reportUnused()

	if len(a.defects) > 0 {
		return a.defects[0]
	}
	return nil
}

func (a *analyzer) returnsValue() bool {
	t := a.method.Child(jast.PropType)
	return t != nil && t.Text != "void"
}

func closingBrace(block *jast.Node) jast.Range {
	end := block.Range.End
	if end == 0 {
		return block.Range
	}
	return jast.Range{Start: end - 1, End: end}
}

func (a *analyzer) reportUnused() {
	for _, l := range a.locals {
		if l.Kind != LocalVariable || l.Reads > 0 || l.quiet {
			continue
		}
		a.findings = append(a.findings, Finding{
			Code:    CodeUnusedVariable,
			Range:   nameRange(l.Decl),
			Message: fmt.Sprintf("The value of the local variable %s is not used", l.Name),
			Node:    l.Decl.Parent,
			Decl:    l.Decl,
			Local:   l.Name,
			Method:  a.method,
		})
	}
}

// nameRange is the span of the identifier a fragment starts with.
func nameRange(decl *jast.Node) jast.Range {
	if decl.Kind == jast.NodeFragment {
		return jast.Range{Start: decl.Range.Start, End: decl.Range.Start + len(decl.Text)}
	}
	return decl.Range
}

func (a *analyzer) report(f Finding) {
	if a.quiet > 0 && !f.Code.Structural() {
		return
	}
	f.Method = a.method
	a.findings = append(a.findings, f)
}

func (a *analyzer) pop(f *flow.Frame) {
	if err := a.fc.Pop(f); err != nil {
		a.defects = append(a.defects, err)
	}
}

func (a *analyzer) contract(n *jast.Node, err error) {
	a.report(Finding{
		Code:    CodeMisplacedJump,
		Range:   n.Range,
		Message: err.Error(),
		Node:    n,
	})
}

func (a *analyzer) pushScope() {
	a.scopes = append(a.scopes, map[string]*Local{})
}

func (a *analyzer) popScope() {
	a.scopes = a.scopes[:len(a.scopes)-1]
}

func (a *analyzer) declare(name string, decl *jast.Node, typ string, final bool, kind LocalKind) *Local {
	l := &Local{
		Name:  name,
		Slot:  flow.Slot(len(a.locals)),
		Decl:  decl,
		Type:  typ,
		Final: final,
		Kind:  kind,
		loops: a.fc.LoopDepth(),
		quiet: a.quiet > 0,
	}
	a.locals = append(a.locals, l)
	a.scopes[len(a.scopes)-1][name] = l
	return l
}

func (a *analyzer) lookup(name string) *Local {
	for i := len(a.scopes) - 1; i >= 0; i-- {
		if l, ok := a.scopes[i][name]; ok {
			return l
		}
	}
	return nil
}

// local returns the local an expression names directly, ignoring
// parentheses.
func (a *analyzer) local(e *jast.Node) *Local {
	e = unparen(e)
	if e == nil || e.Kind != jast.NodeName {
		return nil
	}
	return a.lookup(e.Text)
}

func (a *analyzer) conservative(in flow.Info) flow.Info {
	return flow.Conservative(in, len(a.locals))
}

func unparen(e *jast.Node) *jast.Node {
	for e != nil && e.Kind == jast.NodeParen {
		e = e.Child(jast.PropExpr)
	}
	return e
}

func typeText(t *jast.Node) string {
	if t == nil {
		return ""
	}
	return t.Text
}

// typeNames returns the base names of type nodes, without type arguments or
// package qualifiers.
func typeNames(types []*jast.Node) []string {
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, baseTypeName(t.Text))
	}
	return names
}

func baseTypeName(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.IndexByte(name, '<'); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

func dead(in flow.Info) flow.Info {
	return in.WithReach(in.Reach() | flow.Unreachable)
}
