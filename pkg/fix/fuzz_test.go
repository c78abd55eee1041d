package fix_test

import (
	"testing"

	"github.com/yaklabco/flowfix/pkg/fix"
)

func FuzzGenerateDiff(f *testing.F) {
	f.Add([]byte(""), []byte(""))
	f.Add([]byte("int x;"), []byte("int x;"))
	f.Add([]byte("int x;\n"), []byte("int y;\n"))
	f.Add([]byte("a\nb\nc\n"), []byte("a\nx\nc\n"))
	f.Add([]byte("class T {\n}\n"), []byte("class T {\n    void m() {}\n}\n"))
	f.Add([]byte("line1\nline2\nline3\n"), []byte("line1\nline3\n"))

	f.Fuzz(func(t *testing.T, original, modified []byte) {
		diff := fix.GenerateDiff("T.java", original, modified)
		if diff == nil {
			if string(original) != string(modified) {
				t.Fatal("nil diff for differing content")
			}
			return
		}

		if diff.Path != "T.java" {
			t.Errorf("Path = %q, want T.java", diff.Path)
		}
		if diff.Additions < 0 || diff.Deletions < 0 {
			t.Errorf("negative counts: +%d -%d", diff.Additions, diff.Deletions)
		}
		if diff.HasChanges() && diff.String() == "" {
			t.Error("String() empty for a diff with hunks")
		}
	})
}

// FuzzMultiEditInverse checks that applying an edit set and then its inverse
// restores the original content.
func FuzzMultiEditInverse(f *testing.F) {
	f.Add([]byte("int x = 1;\n"), 0, 3, "long", 8, 1, "")
	f.Add([]byte("class T {}\n"), 9, 0, " int f; ", 0, 0, "// c\n")
	f.Add([]byte(""), 0, 0, "x", 0, 0, "y")

	f.Fuzz(func(t *testing.T, content []byte, off1, len1 int, text1 string, off2, len2 int, text2 string) {
		edits := fix.NewMultiEdit()
		for _, e := range []fix.TextEdit{
			{Offset: off1, Length: len1, Text: text1},
			{Offset: off2, Length: len2, Text: text2},
		} {
			if e.Offset < 0 || e.Length < 0 || e.Offset > len(content) || e.Length > len(content)-e.Offset {
				return
			}
			edits.Add(e)
		}

		modified, err := edits.Apply(content)
		if err != nil {
			return
		}

		inverse, err := edits.Inverse(content)
		if err != nil {
			t.Fatalf("Inverse() error = %v after successful Apply", err)
		}
		restored, err := inverse.Apply(modified)
		if err != nil {
			t.Fatalf("inverse Apply() error = %v", err)
		}
		if string(restored) != string(content) {
			t.Errorf("restored = %q, want %q", restored, content)
		}
	})
}
