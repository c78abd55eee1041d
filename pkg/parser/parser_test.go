package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/flowfix/pkg/jast"
	"github.com/yaklabco/flowfix/pkg/parser"
)

const sample = `package demo;

import java.io.IOException;

public class Demo {
    private int count = 0;

    public int run(String name, int limit) throws IOException {
        final int x;
        // leading comment
        for (int i = 0; i < limit; i++) {
            if (i == 3) continue;
            count += i; /* block */
        }
        outer:
        while (true) {
            break outer;
        }
        try {
            x = read(name);
        } catch (IllegalStateException | IOException e) {
            throw e;
        } finally {
            count--;
        }
        return x;
    }
}
`

func TestParseStructure(t *testing.T) {
	t.Parallel()

	snap := parser.ParseString(sample)
	require.Empty(t, snap.Errors)

	classes := snap.Root.List(jast.PropMembers)
	require.Len(t, classes, 1)
	assert.Equal(t, "Demo", classes[0].Text)
	assert.True(t, classes[0].HasModifier("public"))

	members := classes[0].List(jast.PropMembers)
	require.Len(t, members, 2)
	assert.Equal(t, jast.NodeField, members[0].Kind)

	method := members[1]
	require.Equal(t, jast.NodeMethod, method.Kind)
	assert.Equal(t, "run", method.Text)
	assert.Equal(t, "int", method.Child(jast.PropType).Text)
	assert.Len(t, method.List(jast.PropParams), 2)
	require.Len(t, method.List(jast.PropThrows), 1)
	assert.Equal(t, "IOException", method.List(jast.PropThrows)[0].Text)

	stmts := method.Child(jast.PropBody).List(jast.PropStatements)
	kinds := make([]jast.Kind, 0, len(stmts))
	for _, s := range stmts {
		kinds = append(kinds, s.Kind)
	}
	assert.Equal(t, []jast.Kind{
		jast.NodeLocalVar, jast.NodeFor, jast.NodeLabeled, jast.NodeTry, jast.NodeReturn,
	}, kinds)

	decl := stmts[0]
	assert.True(t, decl.HasModifier("final"))
	assert.Nil(t, decl.List(jast.PropFragments)[0].Child(jast.PropInit))

	try := stmts[3]
	catches := try.List(jast.PropCatches)
	require.Len(t, catches, 1)
	assert.Len(t, catches[0].List(jast.PropTypes), 2)
	assert.Equal(t, "e", catches[0].Text)
	assert.NotNil(t, try.Child(jast.PropFinally))

	labeled := stmts[2]
	assert.Equal(t, "outer", labeled.Text)
	brk := labeled.Child(jast.PropBody).Child(jast.PropBody).List(jast.PropStatements)[0]
	assert.Equal(t, jast.NodeBreak, brk.Kind)
	assert.Equal(t, "outer", brk.Text)
}

func TestParseComments(t *testing.T) {
	t.Parallel()

	snap := parser.ParseString(sample)
	require.Len(t, snap.Comments, 2)

	line := snap.Comments[0]
	assert.Equal(t, jast.CommentLine, line.Kind)
	assert.Equal(t, "// leading comment", snap.Text(line.Range))
	assert.Equal(t, byte('\n'), snap.Content[line.Range.End])

	assert.Equal(t, jast.CommentBlock, snap.Comments[1].Kind)
	assert.Equal(t, "/* block */", snap.Text(snap.Comments[1].Range))
}

func TestParseRanges(t *testing.T) {
	t.Parallel()

	src := "class A { void f() { do { g(); } while (c); } }"
	snap := parser.ParseString(src)
	require.Empty(t, snap.Errors)

	do := jast.FindByKind(snap.Root, jast.NodeDo)
	require.Len(t, do, 1)
	assert.Equal(t, "do { g(); } while (c);", snap.NodeText(do[0]))
	assert.Equal(t, "{ g(); }", snap.NodeText(do[0].Child(jast.PropBody)))
	assert.Equal(t, "c", snap.NodeText(do[0].Child(jast.PropCond)))
}

func TestParseExpressions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		expr string
		kind jast.Kind
		text string
	}{
		{name: "precedence", expr: "a + b * c", kind: jast.NodeBinary, text: "+"},
		{name: "assignment", expr: "a = b = 1", kind: jast.NodeAssign, text: "="},
		{name: "compound", expr: "a += 2", kind: jast.NodeAssign, text: "+="},
		{name: "conditional", expr: "a ? b : c", kind: jast.NodeConditional},
		{name: "call chain", expr: "a.b().c(1, 2)", kind: jast.NodeCall, text: "c"},
		{name: "field", expr: "this.count", kind: jast.NodeFieldAccess, text: "count"},
		{name: "cast", expr: "(String) o", kind: jast.NodeCast},
		{name: "new", expr: "new Foo(1)", kind: jast.NodeNew},
		{name: "postfix", expr: "i++", kind: jast.NodePostfix, text: "++"},
		{name: "not", expr: "!done", kind: jast.NodeUnary, text: "!"},
		{name: "instanceof", expr: "o instanceof String", kind: jast.NodeInstanceOf},
		{name: "logical", expr: "a && b || c", kind: jast.NodeBinary, text: "||"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			snap := parser.ParseString("class A { void f() { x(" + tt.expr + "); } }")
			require.Empty(t, snap.Errors)

			call := jast.FindFirst(snap.Root, func(n *jast.Node) bool {
				return n.Kind == jast.NodeCall && n.Text == "x"
			})
			require.NotNil(t, call)
			arg := call.List(jast.PropArgs)[0]
			assert.Equal(t, tt.kind, arg.Kind)
			assert.Equal(t, tt.text, arg.Text)
			assert.Equal(t, tt.expr, snap.NodeText(arg))
		})
	}
}

func TestParseRecovery(t *testing.T) {
	t.Parallel()

	src := "class A {\n  void f() {\n    int a = ;\n    a = 1;\n  }\n}\n"
	snap := parser.ParseString(src)
	require.NotEmpty(t, snap.Errors)

	body := snap.Methods()[0].Child(jast.PropBody)
	stmts := body.List(jast.PropStatements)
	require.Len(t, stmts, 2)
	assert.Equal(t, jast.NodeExprStmt, stmts[1].Kind)
}
