package runner_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/flowfix/pkg/config"
	"github.com/yaklabco/flowfix/pkg/runner"
)

const plainClass = "class T {\n    void m() {\n    }\n}\n"

// writeTree creates files under dir. Empty content gets plainClass.
func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		if content == "" {
			content = plainClass
		}
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
}

func rel(t *testing.T, dir string, files []string) []string {
	t.Helper()

	out := make([]string, 0, len(files))
	for _, f := range files {
		r, err := filepath.Rel(dir, f)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(r))
	}
	return out
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	tree := map[string]string{
		"src/main/java/App.java":      "",
		"src/main/java/Util.java":     "",
		"src/test/java/AppTest.java":  "",
		"build/Gen.java":              "",
		"notes.txt":                   "text",
		"README.md":                   "# readme\n",
		".hidden/Secret.java":         "",
		"src/.Shadow.java":            "",
		"vendor/lib/Lib.java":         "",
		"src/gen/Proto.java":          "// Code generated by protoc. DO NOT EDIT.\n" + plainClass,
		"src/main/java/Upper.JAVA":    "",
		"src/main/resources/app.yaml": "key: value\n",
	}

	tests := []struct {
		name  string
		setup func(opts *runner.Options)
		want  []string
	}{
		{
			name:  "defaults",
			setup: func(*runner.Options) {},
			want: []string{
				"build/Gen.java",
				"src/main/java/App.java",
				"src/main/java/Upper.JAVA",
				"src/main/java/Util.java",
				"src/test/java/AppTest.java",
			},
		},
		{
			name:  "exclude directory",
			setup: func(opts *runner.Options) { opts.ExcludeGlobs = []string{"build/**"} },
			want: []string{
				"src/main/java/App.java",
				"src/main/java/Upper.JAVA",
				"src/main/java/Util.java",
				"src/test/java/AppTest.java",
			},
		},
		{
			name:  "exclude anywhere",
			setup: func(opts *runner.Options) { opts.ExcludeGlobs = []string{"**/test/**"} },
			want: []string{
				"build/Gen.java",
				"src/main/java/App.java",
				"src/main/java/Upper.JAVA",
				"src/main/java/Util.java",
			},
		},
		{
			name:  "exclude base name",
			setup: func(opts *runner.Options) { opts.ExcludeGlobs = []string{"*Test.java", "Upper.*"} },
			want: []string{
				"build/Gen.java",
				"src/main/java/App.java",
				"src/main/java/Util.java",
			},
		},
		{
			name:  "include",
			setup: func(opts *runner.Options) { opts.IncludeGlobs = []string{"src/main/**"} },
			want: []string{
				"src/main/java/App.java",
				"src/main/java/Upper.JAVA",
				"src/main/java/Util.java",
			},
		},
		{
			name: "keep vendored and generated",
			setup: func(opts *runner.Options) {
				opts.IncludeVendored = true
				opts.IncludeGenerated = true
				opts.ExcludeGlobs = []string{"build", "src/main/**", "src/test/**"}
			},
			want: []string{
				"src/gen/Proto.java",
				"vendor/lib/Lib.java",
			},
		},
		{
			name:  "custom extensions",
			setup: func(opts *runner.Options) { opts.Extensions = []string{".txt"} },
			want:  []string{"notes.txt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeTree(t, dir, tree)

			opts := runner.Options{WorkingDir: dir}
			tt.setup(&opts)
			files, err := runner.Discover(context.Background(), opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rel(t, dir, files))
		})
	}
}

func TestDiscoverExplicitFileIsNotClassified(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"vendor/Lib.java": ""})

	files, err := runner.Discover(context.Background(), runner.Options{
		Paths:      []string{"vendor/Lib.java"},
		WorkingDir: dir,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "vendor", "Lib.java")}, files)
}

func TestDiscoverDeduplicates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a/A.java": "", "b/B.java": ""})

	files, err := runner.Discover(context.Background(), runner.Options{
		Paths:      []string{"b", ".", "a/A.java"},
		WorkingDir: dir,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a/A.java", "b/B.java"}, rel(t, dir, files))
}

func TestDiscoverErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := runner.Discover(context.Background(), runner.Options{
		Paths:      []string{"missing"},
		WorkingDir: dir,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = runner.Discover(context.Background(), runner.Options{
		WorkingDir:   dir,
		ExcludeGlobs: []string{"[unclosed"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exclude patterns")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = runner.Discover(ctx, runner.Options{WorkingDir: dir})
	require.ErrorIs(t, err, context.Canceled)
}

func TestDiscoverDirectorySymlinks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	outside := t.TempDir()
	writeTree(t, dir, map[string]string{"A.java": ""})
	writeTree(t, outside, map[string]string{"Linked.java": ""})
	if err := os.Symlink(outside, filepath.Join(dir, "linked")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	files, err := runner.Discover(context.Background(), runner.Options{WorkingDir: dir})
	require.NoError(t, err)
	assert.Len(t, files, 1)

	files, err = runner.Discover(context.Background(), runner.Options{WorkingDir: dir, FollowSymlinks: true})
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestOptionsFromConfig(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Extensions = []string{".jav"}
	cfg.Ignore = []string{"target/**"}
	cfg.Jobs = 3

	opts := runner.OptionsFromConfig(cfg, []string{"src"})
	assert.Equal(t, []string{"src"}, opts.Paths)
	assert.Equal(t, []string{".jav"}, opts.Extensions)
	assert.Equal(t, []string{"target/**"}, opts.ExcludeGlobs)
	assert.Equal(t, 3, opts.Jobs)
	assert.Same(t, cfg, opts.Config)

	assert.Equal(t, []string{".java"}, runner.DefaultExtensions())
}
