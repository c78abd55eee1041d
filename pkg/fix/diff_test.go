package fix_test

import (
	"strings"
	"testing"

	"github.com/yaklabco/flowfix/pkg/fix"
)

func TestGenerateDiff(t *testing.T) {
	t.Parallel()

	t.Run("identical content", func(t *testing.T) {
		t.Parallel()
		if d := fix.GenerateDiff("A.java", []byte("a\n"), []byte("a\n")); d != nil {
			t.Errorf("expected nil diff, got %v", d)
		}
	})

	t.Run("single changed line", func(t *testing.T) {
		t.Parallel()

		d := fix.GenerateDiff("src/A.java", []byte("a\nb\nc\n"), []byte("a\nB\nc\n"))
		if !d.HasChanges() {
			t.Fatal("expected changes")
		}
		if d.Additions != 1 || d.Deletions != 1 {
			t.Errorf("additions=%d deletions=%d, want 1/1", d.Additions, d.Deletions)
		}

		out := d.FullString()
		for _, want := range []string{"diff --git a/src/A.java b/src/A.java", "-b", "+B"} {
			if !strings.Contains(out, want) {
				t.Errorf("diff output missing %q:\n%s", want, out)
			}
		}
	})
}
