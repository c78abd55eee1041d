package flowcheck_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/flowfix/pkg/flowcheck"
	"github.com/yaklabco/flowfix/pkg/parser"
)

func analyzeSource(t *testing.T, src string, opts flowcheck.Options) []flowcheck.Finding {
	t.Helper()

	snap := parser.ParseString(src)
	report, err := flowcheck.Analyze(context.Background(), snap, opts)
	require.NoError(t, err)
	require.Empty(t, report.Defects)
	return report.Findings
}

// codes lists the finding codes in order, leaving out unused-variable
// findings unless keepUnused is set.
func codes(findings []flowcheck.Finding, keepUnused bool) []flowcheck.Code {
	out := []flowcheck.Code{}
	for _, f := range findings {
		if f.Code == flowcheck.CodeUnusedVariable && !keepUnused {
			continue
		}
		out = append(out, f.Code)
	}
	return out
}

func inClass(method string) string {
	return "class T {\n" + method + "\n}\n"
}

func TestAnalyzeFindings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		method     string
		opts       *flowcheck.Options
		keepUnused bool
		want       []flowcheck.Code
	}{
		{
			name:   "read of local assigned on one branch",
			method: "void m(boolean c) { int x; if (c) { x = 1; } use(x); }",
			want:   []flowcheck.Code{flowcheck.CodeUninitialized},
		},
		{
			name:   "local assigned on both branches",
			method: "void m(boolean c) { int x; if (c) { x = 1; } else { x = 2; } use(x); }",
			want:   []flowcheck.Code{},
		},
		{
			name:   "if without else merges the false side",
			method: "int m(boolean c) { int x; if (c) { x = 1; } return x; }",
			want:   []flowcheck.Code{flowcheck.CodeUninitialized},
		},
		{
			name:   "do while false runs the body once",
			method: "void m() { int x; do { x = 1; } while (false); use(x); }",
			want:   []flowcheck.Code{},
		},
		{
			name:   "statement after return",
			method: "int m() { return 1; foo(); }",
			want:   []flowcheck.Code{flowcheck.CodeUnreachable},
		},
		{
			name:   "only the first statement of an unreachable run",
			method: "void m() { return; foo(); bar(); }",
			want:   []flowcheck.Code{flowcheck.CodeUnreachable},
		},
		{
			name:   "constant false condition",
			method: "void m() { if (false) { foo(); } }",
			want:   []flowcheck.Code{flowcheck.CodeDeadCode},
		},
		{
			name:   "assignment in dead else does not count",
			method: "void m() { final int blank; if (true) { } else { blank = 0; } blank = 1; use(blank); }",
			want:   []flowcheck.Code{flowcheck.CodeDeadCode},
		},
		{
			name:   "infinite loop without break",
			method: "void m() { while (true) { foo(); } bar(); }",
			want:   []flowcheck.Code{flowcheck.CodeUnreachable},
		},
		{
			name:   "infinite loop with break",
			method: "void m(boolean c) { while (true) { if (c) break; } bar(); }",
			want:   []flowcheck.Code{},
		},
		{
			name:   "empty for condition loops forever",
			method: "void m() { for (;;) { foo(); } bar(); }",
			want:   []flowcheck.Code{flowcheck.CodeUnreachable},
		},
		{
			name:   "counting loop",
			method: "void m() { for (int i = 0; i < 10; i++) { use(i); } }",
			want:   []flowcheck.Code{},
		},
		{
			name:   "missing return",
			method: "int m(boolean c) { if (c) { return 1; } }",
			want:   []flowcheck.Code{flowcheck.CodeMissingReturn},
		},
		{
			name:   "final assigned twice",
			method: "void m() { final int x = 1; x = 2; use(x); }",
			want:   []flowcheck.Code{flowcheck.CodeFinalReassigned},
		},
		{
			name:   "final assigned in loop",
			method: "void m(boolean c) { final int x; while (c) { x = 1; } }",
			want:   []flowcheck.Code{flowcheck.CodeFinalReassigned},
		},
		{
			name:   "final declared inside loop",
			method: "void m(boolean c) { while (c) { final int x; x = 1; use(x); } }",
			want:   []flowcheck.Code{},
		},
		{
			name:   "final parameter assigned",
			method: "void m(final int p) { p = 1; }",
			want:   []flowcheck.Code{flowcheck.CodeFinalReassigned},
		},
		{
			name:   "dereference of null",
			method: "void m() { String s = null; s.length(); }",
			want:   []flowcheck.Code{flowcheck.CodeNullDereference},
		},
		{
			name:   "dereference of possibly null",
			method: `void m(boolean c) { String s = null; if (c) { s = "a"; } s.length(); }`,
			want:   []flowcheck.Code{flowcheck.CodePotentialNull},
		},
		{
			name:   "null check narrows",
			method: "void m(String s) { if (s == null) { return; } s.length(); }",
			want:   []flowcheck.Code{},
		},
		{
			name:   "null assigned on a later iteration",
			method: `void m(boolean c) { String s = "a"; while (c) { s.length(); s = null; } }`,
			want:   []flowcheck.Code{flowcheck.CodePotentialNull},
		},
		{
			name:   "null analysis disabled",
			method: "void m() { String s = null; s.length(); }",
			opts:   &flowcheck.Options{},
			want:   []flowcheck.Code{},
		},
		{
			name:   "unhandled checked exception",
			method: `void m() { throw new java.io.IOException("x"); }`,
			want:   []flowcheck.Code{flowcheck.CodeUnhandledException},
		},
		{
			name:   "declared checked exception",
			method: "void m() throws IOException { throw new IOException(); }",
			want:   []flowcheck.Code{},
		},
		{
			name:   "caught checked exception",
			method: "void m() { try { throw new IOException(); } catch (IOException e) { log(e); } }",
			want:   []flowcheck.Code{},
		},
		{
			name:   "unchecked exception",
			method: "void m() { throw new IllegalStateException(); }",
			want:   []flowcheck.Code{},
		},
		{
			name:   "catch block never entered",
			method: "void m() { int x; try { x = 1; } catch (IOException e) { } use(x); }",
			want:   []flowcheck.Code{flowcheck.CodeUnreachable},
		},
		{
			name:   "finally assigns",
			method: "void m() { int x; try { foo(); } finally { x = 1; } use(x); }",
			want:   []flowcheck.Code{},
		},
		{
			name:   "empty finally keeps the try body null state",
			method: `int m() { String s = null; try { s = "x"; } finally { } return s.length(); }`,
			want:   []flowcheck.Code{},
		},
		{
			name:   "finally without assignments keeps the try body null state",
			method: `int m() { String s = null; try { s = "x"; } finally { foo(); } return s.length(); }`,
			want:   []flowcheck.Code{},
		},
		{
			name:   "finally assigning null overrides the try body",
			method: `int m() { String s = "a"; try { s = "x"; } finally { s = null; } return s.length(); }`,
			want:   []flowcheck.Code{flowcheck.CodeNullDereference},
		},
		{
			name:   "try and catch both assign",
			method: "void m() { int x; try { x = compute(); } catch (RuntimeException e) { x = 0; } use(x); }",
			want:   []flowcheck.Code{},
		},
		{
			name:   "catch leaves local unassigned",
			method: "void m() { int x; try { x = compute(); } catch (RuntimeException e) { } use(x); }",
			want:   []flowcheck.Code{flowcheck.CodeUninitialized},
		},
		{
			name:   "break outside loop",
			method: "void m() { break; }",
			want:   []flowcheck.Code{flowcheck.CodeMisplacedJump},
		},
		{
			name:   "continue to a block label",
			method: "void m() { a: { continue a; } }",
			want:   []flowcheck.Code{flowcheck.CodeMisplacedJump},
		},
		{
			name:   "labeled break leaves the outer loop",
			method: "void m(boolean c) { int x; outer: while (true) { while (c) { x = 1; break outer; } } use(x); }",
			want:   []flowcheck.Code{},
		},
		{
			name:   "literal of the wrong type",
			method: `void m() { int x = "s"; use(x); }`,
			want:   []flowcheck.Code{flowcheck.CodeTypeMismatch},
		},
		{
			name:   "widening literal",
			method: "void m() { double d = 1; long l = -2; use(d, l); }",
			want:   []flowcheck.Code{},
		},
		{
			name:       "unused local",
			method:     "void m() { int x = 1; }",
			keepUnused: true,
			want:       []flowcheck.Code{flowcheck.CodeUnusedVariable},
		},
		{
			name:   "switch without default",
			method: "int m(int k) { int x; switch (k) { case 1: x = 1; break; case 2: x = 2; break; } return x; }",
			want:   []flowcheck.Code{flowcheck.CodeUninitialized},
		},
		{
			name:   "switch with default",
			method: "int m(int k) { int x; switch (k) { case 1: x = 1; break; default: x = 2; } return x; }",
			want:   []flowcheck.Code{},
		},
		{
			name:   "assert false with assertions disabled",
			method: "void m() { assert false; foo(); }",
			want:   []flowcheck.Code{},
		},
		{
			name:   "assert false with assertions enabled",
			method: "void m() { assert false; foo(); }",
			opts:   &flowcheck.Options{AssertionsEnabled: true, NullAnalysis: true},
			want:   []flowcheck.Code{flowcheck.CodeDeadCode},
		},
		{
			name:   "malformed initializer",
			method: "void m() { int x = ; use(x); }",
			want:   []flowcheck.Code{flowcheck.CodeSyntax},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := flowcheck.DefaultOptions()
			if tt.opts != nil {
				opts = *tt.opts
			}
			findings := analyzeSource(t, inClass(tt.method), opts)
			assert.Equal(t, tt.want, codes(findings, tt.keepUnused), "findings: %v", findings)
		})
	}
}

func TestUnreachableRange(t *testing.T) {
	t.Parallel()

	src := inClass("int m() {\n  return 1;\n  foo();\n  bar();\n}")
	findings := analyzeSource(t, src, flowcheck.DefaultOptions())
	require.Len(t, findings, 1)

	start := strings.Index(src, "foo();")
	assert.Equal(t, start, findings[0].Range.Start)
	assert.Equal(t, start+len("foo();"), findings[0].Range.End)
	assert.Equal(t, "m", findings[0].Method.Text)
}

func TestFindingDetails(t *testing.T) {
	t.Parallel()

	src := inClass("void m(boolean c) { int count; if (c) { count = 1; } use(count); throw new SQLException(); }")
	findings := analyzeSource(t, src, flowcheck.DefaultOptions())
	require.Len(t, findings, 2)

	uninit := findings[0]
	assert.Equal(t, flowcheck.CodeUninitialized, uninit.Code)
	assert.Equal(t, "count", uninit.Local)
	require.NotNil(t, uninit.Decl)
	assert.Equal(t, "count", uninit.Decl.Text)

	unhandled := findings[1]
	assert.Equal(t, flowcheck.CodeUnhandledException, unhandled.Code)
	assert.Equal(t, "SQLException", unhandled.TypeName)
}

func TestFindingsSortedByOffset(t *testing.T) {
	t.Parallel()

	src := inClass("void m(boolean c) { int x = 1; final int y; while (c) { y = 2; use(y); } }")
	findings := analyzeSource(t, src, flowcheck.DefaultOptions())
	require.Len(t, findings, 2)

	assert.Equal(t, flowcheck.CodeUnusedVariable, findings[0].Code)
	assert.Equal(t, flowcheck.CodeFinalReassigned, findings[1].Code)
	assert.Less(t, findings[0].Range.Start, findings[1].Range.Start)
}

// At one node the definite-assignment complaint is reported as the read is
// seen; the loop's deferred null complaint follows when the loop is left.
func TestAssignmentComplaintPrecedesDeferredNull(t *testing.T) {
	t.Parallel()

	src := inClass("void m(boolean c) { String s; while (c) { s.length(); s = null; } }")
	findings := analyzeSource(t, src, flowcheck.DefaultOptions())

	require.Equal(t, []flowcheck.Code{flowcheck.CodeUninitialized, flowcheck.CodePotentialNull}, codes(findings, false))
	assert.Equal(t, findings[0].Range.Start, findings[1].Range.Start)
}

func TestAnalyzeCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	snap := parser.ParseString(inClass("void m() { int x; use(x); }"))
	report, err := flowcheck.Analyze(ctx, snap, flowcheck.DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, report.Findings)
}

func TestAnalyzeMethod(t *testing.T) {
	t.Parallel()

	snap := parser.ParseString(inClass("void a() { int x; use(x); }\nvoid b() { return; foo(); }"))
	methods := snap.Methods()
	require.Len(t, methods, 2)

	findings, err := flowcheck.AnalyzeMethod(methods[1], flowcheck.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, flowcheck.CodeUnreachable, findings[0].Code)
}

func TestDefectErrorMessage(t *testing.T) {
	t.Parallel()

	err := &flowcheck.DefectError{Method: "run", Value: "boom"}
	assert.Equal(t, "analyzing method run: internal error: boom", err.Error())
}
