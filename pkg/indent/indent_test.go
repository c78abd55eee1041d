package indent_test

import (
	"testing"

	"github.com/yaklabco/flowfix/pkg/indent"
)

func TestReindent(t *testing.T) {
	t.Parallel()

	spaces := indent.Options{TabWidth: 4, IndentUnit: "    "}
	tabs := indent.Options{TabWidth: 4, IndentUnit: "\t"}

	tests := []struct {
		name   string
		opts   indent.Options
		text   string
		source int
		target int
		want   string
	}{
		{
			name:   "single line is unchanged",
			opts:   spaces,
			text:   "foo();",
			source: 2,
			target: 3,
			want:   "foo();",
		},
		{
			name:   "nested block moves one level deeper",
			opts:   spaces,
			text:   "if (a) {\n            b();\n        }",
			source: 2,
			target: 3,
			want:   "if (a) {\n                b();\n            }",
		},
		{
			name:   "alignment whitespace is preserved",
			opts:   spaces,
			text:   "call(a,\n          b);",
			source: 2,
			target: 1,
			want:   "call(a,\n      b);",
		},
		{
			name:   "shallower lines are untouched",
			opts:   spaces,
			text:   "x(\n  y);",
			source: 2,
			target: 3,
			want:   "x(\n  y);",
		},
		{
			name:   "tab source converted to tab target",
			opts:   tabs,
			text:   "while (x) {\n\t\t\ty();\n\t\t}",
			source: 2,
			target: 1,
			want:   "while (x) {\n\t\ty();\n\t}",
		},
		{
			name:   "blank lines stay as they are",
			opts:   spaces,
			text:   "{\n\n    }",
			source: 1,
			target: 2,
			want:   "{\n\n        }",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := tt.opts.Reindent(tt.text, tt.source, tt.target)
			if got != tt.want {
				t.Errorf("Reindent() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWidthAndLevel(t *testing.T) {
	t.Parallel()

	opts := indent.Options{TabWidth: 4, IndentUnit: "  "}
	if got := opts.Width("\t  "); got != 6 {
		t.Errorf("Width = %d, want 6", got)
	}
	if got := opts.Level("\t  "); got != 3 {
		t.Errorf("Level = %d, want 3", got)
	}
	if got := opts.Indent(2); got != "    " {
		t.Errorf("Indent(2) = %q, want 4 spaces", got)
	}
}
