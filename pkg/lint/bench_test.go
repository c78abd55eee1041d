package lint_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/yaklabco/flowfix/pkg/config"
)

// benchSource builds a class with n methods that each trigger several rules.
func benchSource(n int) []byte {
	var b strings.Builder
	b.WriteString("class Bench {\n")
	for i := range n {
		fmt.Fprintf(&b, "    int m%d(boolean c, String s) {\n", i)
		b.WriteString("        int unused = 1;\n")
		b.WriteString("        int x;\n")
		b.WriteString("        for (int i = 0; i < 10; i++) {\n")
		b.WriteString("            if (c) { x = i; continue; }\n")
		b.WriteString("            s = null;\n")
		b.WriteString("        }\n")
		b.WriteString("        if (c) {\n            return s.length();\n        }\n")
		b.WriteString("    }\n")
	}
	b.WriteString("}\n")
	return []byte(b.String())
}

func BenchmarkCheckFile(b *testing.B) {
	for _, methods := range []int{10, 100} {
		b.Run(fmt.Sprintf("methods=%d", methods), func(b *testing.B) {
			src := benchSource(methods)
			engine := newEngine()
			cfg := config.NewConfig()
			b.SetBytes(int64(len(src)))
			b.ReportAllocs()

			for b.Loop() {
				if _, err := engine.CheckFile(context.Background(), "Bench.java", src, cfg); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkCheckFileFix(b *testing.B) {
	src := benchSource(50)
	engine := newEngine()
	cfg := config.NewConfig()
	cfg.Fix = true
	b.ReportAllocs()

	for b.Loop() {
		if _, err := engine.CheckFile(context.Background(), "Bench.java", src, cfg); err != nil {
			b.Fatal(err)
		}
	}
}
