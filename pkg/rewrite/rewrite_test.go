package rewrite_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/flowfix/pkg/indent"
	"github.com/yaklabco/flowfix/pkg/jast"
	"github.com/yaklabco/flowfix/pkg/parser"
	"github.com/yaklabco/flowfix/pkg/rewrite"
)

func method(body string) string {
	return "class T {\n    void m(boolean c) {\n" + body + "    }\n}\n"
}

func first(t *testing.T, snap *jast.FileSnapshot, kind jast.Kind) *jast.Node {
	t.Helper()

	nodes := jast.FindByKind(snap.Root, kind)
	require.NotEmpty(t, nodes, "no %s in source", kind)
	return nodes[0]
}

func applyRewrite(t *testing.T, snap *jast.FileSnapshot, rw *rewrite.Rewrite) string {
	t.Helper()

	edits, err := rw.ComputeEdits(snap, rewrite.Options{})
	require.NoError(t, err)
	out, err := edits.ApplyString(string(snap.Content))
	require.NoError(t, err)
	return out
}

func TestComputeEdits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		body  string
		build func(t *testing.T, snap *jast.FileSnapshot, rw *rewrite.Rewrite)
		want  string
	}{
		{
			name: "do body replaced by empty statement keeps the condition",
			body: "        do {\n            c = false;\n        } while (c);\n",
			build: func(t *testing.T, snap *jast.FileSnapshot, rw *rewrite.Rewrite) {
				do := first(t, snap, jast.NodeDo)
				require.NoError(t, rw.Replace(do.Child(jast.PropBody), jast.NewEmpty()))
			},
			want: "        do ; while (c);\n",
		},
		{
			name: "argument appended after a trailing line comment",
			body: "        call(a, // first\n            b // last\n        );\n",
			build: func(t *testing.T, snap *jast.FileSnapshot, rw *rewrite.Rewrite) {
				call := first(t, snap, jast.NodeCall)
				require.NoError(t, rw.Append(call, jast.PropArgs, jast.NewName("c")))
			},
			want: "        call(a, // first\n            b, // last\n            c\n        );\n",
		},
		{
			name: "statement removed with its line",
			body: "        int a = 1;\n        int b = 2;\n",
			build: func(t *testing.T, snap *jast.FileSnapshot, rw *rewrite.Rewrite) {
				decls := jast.FindByKind(snap.Root, jast.NodeLocalVar)
				require.NoError(t, rw.Remove(decls[1]))
			},
			want: "        int a = 1;\n",
		},
		{
			name: "statement inserted after an anchor",
			body: "        int a = 1;\n        use(a);\n",
			build: func(t *testing.T, snap *jast.FileSnapshot, rw *rewrite.Rewrite) {
				require.NoError(t, rw.InsertAfter(first(t, snap, jast.NodeLocalVar), jast.NewReturn(nil)))
			},
			want: "        int a = 1;\n        return;\n        use(a);\n",
		},
		{
			name: "statement moved into a new try",
			body: "        risky();\n",
			build: func(t *testing.T, snap *jast.FileSnapshot, rw *rewrite.Rewrite) {
				stmt := first(t, snap, jast.NodeExprStmt)
				catch := jast.NewCatch("e", jast.NewBlock(), "Exception")
				try := jast.NewTry(jast.NewBlock(rw.Move(stmt)), []*jast.Node{catch}, nil)
				require.NoError(t, rw.Replace(stmt, try))
			},
			want: "        try {\n            risky();\n        } catch (Exception e) {\n        }\n",
		},
		{
			name: "moved statement keeps edits made inside it",
			body: "        if (c) {\n            a(1);\n        }\n",
			build: func(t *testing.T, snap *jast.FileSnapshot, rw *rewrite.Rewrite) {
				stmt := first(t, snap, jast.NodeIf)
				lit := first(t, snap, jast.NodeLiteral)
				require.NoError(t, rw.Replace(lit, jast.NewLiteral("2")))
				require.NoError(t, rw.Replace(stmt, jast.NewBlock(rw.Move(stmt))))
			},
			want: "        {\n            if (c) {\n                a(2);\n            }\n        }\n",
		},
		{
			name: "else added to an if",
			body: "        if (c) {\n            a();\n        }\n",
			build: func(t *testing.T, snap *jast.FileSnapshot, rw *rewrite.Rewrite) {
				require.NoError(t, rw.Set(first(t, snap, jast.NodeIf), jast.PropElse, jast.NewBlock(jast.NewReturn(nil))))
			},
			want: "        if (c) {\n            a();\n        } else {\n            return;\n        }\n",
		},
		{
			name: "else removed from an if",
			body: "        if (c) { a(); } else { b(); }\n",
			build: func(t *testing.T, snap *jast.FileSnapshot, rw *rewrite.Rewrite) {
				require.NoError(t, rw.Set(first(t, snap, jast.NodeIf), jast.PropElse, nil))
			},
			want: "        if (c) { a(); }\n",
		},
		{
			name: "statement appended to a one-line block",
			body: "        if (c) { a(); }\n",
			build: func(t *testing.T, snap *jast.FileSnapshot, rw *rewrite.Rewrite) {
				then := first(t, snap, jast.NodeIf).Child(jast.PropThen)
				require.NoError(t, rw.Append(then, jast.PropStatements, jast.NewReturn(nil)))
			},
			want: "        if (c) { a();\n            return;\n        }\n",
		},
		{
			name: "statement appended to a one-line block with a trailing comment",
			body: "        if (c) { a(); /* x */ }\n",
			build: func(t *testing.T, snap *jast.FileSnapshot, rw *rewrite.Rewrite) {
				then := first(t, snap, jast.NodeIf).Child(jast.PropThen)
				require.NoError(t, rw.Append(then, jast.PropStatements, jast.NewReturn(nil)))
			},
			want: "        if (c) { a();\n            return; /* x */\n        }\n",
		},
		{
			name: "finally added to a try",
			body: "        try {\n            a();\n        } catch (Exception e) {\n        }\n",
			build: func(t *testing.T, snap *jast.FileSnapshot, rw *rewrite.Rewrite) {
				require.NoError(t, rw.Set(first(t, snap, jast.NodeTry), jast.PropFinally, jast.NewBlock()))
			},
			want: "        try {\n            a();\n        } catch (Exception e) {\n        } finally {\n        }\n",
		},
		{
			name: "modifier removed with its space",
			body: "        final int a = 1;\n",
			build: func(t *testing.T, snap *jast.FileSnapshot, rw *rewrite.Rewrite) {
				decl := first(t, snap, jast.NodeLocalVar)
				require.NoError(t, rw.Remove(decl.List(jast.PropModifiers)[0]))
			},
			want: "        int a = 1;\n",
		},
		{
			name: "middle argument removed with its separator",
			body: "        f(a, b, c);\n",
			build: func(t *testing.T, snap *jast.FileSnapshot, rw *rewrite.Rewrite) {
				require.NoError(t, rw.Remove(first(t, snap, jast.NodeCall).List(jast.PropArgs)[1]))
			},
			want: "        f(a, c);\n",
		},
		{
			name: "first argument removed with its separator",
			body: "        f(a, b, c);\n",
			build: func(t *testing.T, snap *jast.FileSnapshot, rw *rewrite.Rewrite) {
				require.NoError(t, rw.Remove(first(t, snap, jast.NodeCall).List(jast.PropArgs)[0]))
			},
			want: "        f(b, c);\n",
		},
		{
			name: "initializer removed",
			body: "        int a = 1;\n",
			build: func(t *testing.T, snap *jast.FileSnapshot, rw *rewrite.Rewrite) {
				require.NoError(t, rw.Set(first(t, snap, jast.NodeFragment), jast.PropInit, nil))
			},
			want: "        int a;\n",
		},
		{
			name: "initializer added",
			body: "        int a;\n",
			build: func(t *testing.T, snap *jast.FileSnapshot, rw *rewrite.Rewrite) {
				require.NoError(t, rw.Set(first(t, snap, jast.NodeFragment), jast.PropInit, jast.NewLiteral("0")))
			},
			want: "        int a = 0;\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			snap := parser.ParseString(method(tt.body))
			require.Empty(t, snap.Errors)

			rw := rewrite.New()
			tt.build(t, snap, rw)
			assert.Equal(t, method(tt.want), applyRewrite(t, snap, rw))
		})
	}
}

func TestInsertIntoEmptyBody(t *testing.T) {
	t.Parallel()

	snap := parser.ParseString("class T {\n    int m() {}\n}\n")
	body := first(t, snap, jast.NodeMethod).Child(jast.PropBody)

	rw := rewrite.New()
	require.NoError(t, rw.Append(body, jast.PropStatements, jast.NewReturn(jast.NewLiteral("0"))))
	assert.Equal(t, "class T {\n    int m() {\n        return 0;\n    }\n}\n", applyRewrite(t, snap, rw))
}

func TestEmptyOverlayProducesNoEdits(t *testing.T) {
	t.Parallel()

	snap := parser.ParseString(method("        int a = 1;\n"))
	rw := rewrite.New()
	assert.True(t, rw.IsEmpty())

	edits, err := rw.ComputeEdits(snap, rewrite.Options{})
	require.NoError(t, err)
	assert.True(t, edits.IsEmpty())
}

func TestEditInsideRemovedSubtreeConflicts(t *testing.T) {
	t.Parallel()

	snap := parser.ParseString(method("        if (c) {\n            a(1);\n        }\n"))
	rw := rewrite.New()
	require.NoError(t, rw.Remove(first(t, snap, jast.NodeIf)))
	require.NoError(t, rw.Replace(first(t, snap, jast.NodeLiteral), jast.NewLiteral("2")))

	edits, err := rw.ComputeEdits(snap, rewrite.Options{})
	assert.Nil(t, edits)

	var ce *rewrite.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.NotEmpty(t, ce.Ranges)
}

func TestReplaceTwiceConflicts(t *testing.T) {
	t.Parallel()

	snap := parser.ParseString(method("        int a = 1;\n"))
	lit := first(t, snap, jast.NodeLiteral)

	rw := rewrite.New()
	require.NoError(t, rw.Replace(lit, jast.NewLiteral("2")))
	require.NoError(t, rw.Remove(lit))

	_, err := rw.ComputeEdits(snap, rewrite.Options{})
	var ce *rewrite.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, []jast.Range{lit.Range}, ce.Ranges)
}

func TestSetUnknownSlot(t *testing.T) {
	t.Parallel()

	snap := parser.ParseString(method("        while (c) {\n        }\n"))
	rw := rewrite.New()
	require.NoError(t, rw.Set(first(t, snap, jast.NodeWhile), jast.PropElse, jast.NewEmpty()))

	_, err := rw.ComputeEdits(snap, rewrite.Options{})
	var se *rewrite.SlotError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, jast.NodeWhile, se.Kind)
}

func TestOverlayOperationErrors(t *testing.T) {
	t.Parallel()

	snap := parser.ParseString(method("        f(a);\n"))
	call := first(t, snap, jast.NodeCall)
	rw := rewrite.New()

	assert.ErrorIs(t, rw.Replace(nil, jast.NewEmpty()), rewrite.ErrNilNode)
	assert.ErrorIs(t, rw.InsertAt(call, jast.PropTarget, 0, jast.NewName("x")), rewrite.ErrNotListProp)
	assert.ErrorIs(t, rw.InsertAt(call, jast.PropArgs, 5, jast.NewName("x")), rewrite.ErrIndexRange)
	assert.ErrorIs(t, rw.Set(call, jast.PropArgs, nil), rewrite.ErrNotSlotProp)
	assert.ErrorIs(t, rw.InsertAfter(jast.NewName("free"), jast.NewName("x")), rewrite.ErrNotInList)
}

func TestEditsAreReversible(t *testing.T) {
	t.Parallel()

	snap := parser.ParseString(method("        final int a = 1;\n        f(a, b);\n"))
	rw := rewrite.New()
	require.NoError(t, rw.Remove(first(t, snap, jast.NodeModifier)))
	require.NoError(t, rw.Append(first(t, snap, jast.NodeCall), jast.PropArgs, jast.NewLiteral("3")))

	edits, err := rw.ComputeEdits(snap, rewrite.Options{})
	require.NoError(t, err)
	changed, err := edits.Apply(snap.Content)
	require.NoError(t, err)
	assert.NotEqual(t, string(snap.Content), string(changed))

	undo, err := edits.Inverse(snap.Content)
	require.NoError(t, err)
	restored, err := undo.Apply(changed)
	require.NoError(t, err)
	assert.Equal(t, string(snap.Content), string(restored))
}

func TestPrint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		node *jast.Node
		want string
	}{
		{
			name: "local with initializer",
			node: jast.NewLocalVar("int", "x", jast.NewLiteral("0")),
			want: "int x = 0;",
		},
		{
			name: "call with target",
			node: jast.NewExprStmt(jast.NewCall(jast.NewName("e"), "printStackTrace")),
			want: "e.printStackTrace();",
		},
		{
			name: "block nests one level",
			node: jast.NewBlock(jast.NewReturn(jast.NewLiteral("null"))),
			want: "{\n\t\treturn null;\n\t}",
		},
		{
			name: "multi catch",
			node: jast.NewCatch("e", jast.NewBlock(), "IOException", "SQLException"),
			want: "catch (IOException | SQLException e) {\n\t}",
		},
	}

	opts := indent.Options{IndentUnit: "\t"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, rewrite.Print(tt.node, opts, "\n", 1))
		})
	}
}

func TestConflictErrorMessage(t *testing.T) {
	t.Parallel()

	err := error(&rewrite.ConflictError{Ranges: []jast.Range{{Start: 1, End: 4}, {Start: 6, End: 9}}})
	assert.Equal(t, "rewrite: 2 conflicting range(s): [1:4], [6:9]", err.Error())

	var ce *rewrite.ConflictError
	assert.True(t, errors.As(err, &ce))
}
