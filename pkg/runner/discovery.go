package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/yaklabco/flowfix/internal/logging"
	"github.com/yaklabco/flowfix/pkg/langdetect"
)

// Discover finds source files matching opts under the given working directory.
// It returns a deterministically sorted list of absolute file paths.
//
// Files named explicitly in opts.Paths are kept whatever their
// classification. Files found by walking a directory are skipped when
// they are vendored, generated or documentation, unless opts asks for them.
func Discover(ctx context.Context, opts Options) ([]string, error) {
	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	exclude, err := compilePatterns(opts.ExcludeGlobs)
	if err != nil {
		return nil, fmt.Errorf("exclude patterns: %w", err)
	}
	include, err := compilePatterns(opts.IncludeGlobs)
	if err != nil {
		return nil, fmt.Errorf("include patterns: %w", err)
	}

	w := &walker{
		ctx:        ctx,
		opts:       opts,
		workDir:    workDir,
		extensions: opts.effectiveExtensions(),
		exclude:    exclude,
		include:    include,
	}

	seen := make(map[string]struct{})
	var files []string
	add := func(path string) {
		if _, ok := seen[path]; !ok {
			seen[path] = struct{}{}
			files = append(files, path)
		}
	}

	for _, inputPath := range opts.effectivePaths() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("discovery cancelled: %w", err)
		}

		absPath := inputPath
		if !filepath.IsAbs(inputPath) {
			absPath = filepath.Join(workDir, inputPath)
		}
		absPath = filepath.Clean(absPath)

		info, err := os.Stat(absPath)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", inputPath, err)
		}

		if !info.IsDir() {
			if w.matchesFile(absPath) {
				add(absPath)
			}
			continue
		}

		discovered, err := w.walk(absPath)
		if err != nil {
			return nil, err
		}
		for _, f := range discovered {
			add(f)
		}
	}

	sort.Strings(files)

	return files, nil
}

// resolveWorkDir resolves the working directory, defaulting to os.Getwd().
func resolveWorkDir(workDir string) (string, error) {
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return wd, nil
	}
	absPath, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return absPath, nil
}

type walker struct {
	ctx        context.Context
	opts       Options
	workDir    string
	extensions []string
	exclude    patternSet
	include    patternSet
}

// walk recursively walks root and returns the matching source files.
func (w *walker) walk(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if err := w.ctx.Err(); err != nil {
			return err
		}

		if walkErr != nil {
			if os.IsPermission(walkErr) {
				return nil
			}
			return walkErr
		}

		relPath := w.rel(path)

		if entry.IsDir() {
			if path != root && strings.HasPrefix(entry.Name(), ".") {
				return filepath.SkipDir
			}
			if path != root && w.exclude.matchDir(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if entry.Type()&fs.ModeSymlink != 0 {
			realPath, evalErr := filepath.EvalSymlinks(path)
			if evalErr != nil {
				return nil //nolint:nilerr // broken symlinks are skipped
			}
			info, statErr := os.Stat(realPath)
			if statErr != nil {
				return nil //nolint:nilerr // inaccessible symlink targets are skipped
			}
			if info.IsDir() {
				if !w.opts.FollowSymlinks {
					return nil
				}
				// Walk the target: WalkDir does not descend into a symlinked root.
				subFiles, err := w.walk(realPath)
				if err != nil {
					return err
				}
				files = append(files, subFiles...)
				return nil
			}
		}

		if strings.HasPrefix(entry.Name(), ".") {
			return nil
		}

		if w.matchesFile(path) && !w.skipClassified(path, relPath) {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory %s: %w", root, err)
	}

	return files, nil
}

func (w *walker) rel(path string) string {
	relPath, err := filepath.Rel(w.workDir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(relPath)
}

// matchesFile checks extension, exclude and include criteria.
func (w *walker) matchesFile(path string) bool {
	if !hasMatchingExtension(path, w.extensions) {
		return false
	}

	relPath := w.rel(path)
	if w.exclude.match(relPath) {
		return false
	}
	if len(w.include) > 0 && !w.include.match(relPath) {
		return false
	}
	return true
}

// skipClassified reports whether a walked file is vendored, generated or
// documentation and the options do not keep that class.
func (w *walker) skipClassified(path, relPath string) bool {
	head, err := readHead(path)
	if err != nil {
		// The pipeline reports unreadable files.
		return false
	}

	class := langdetect.Classify(relPath, head)
	reason := class.SkipReason()
	switch {
	case reason == "":
		return false
	case reason == langdetect.ReasonVendored && w.opts.IncludeVendored:
		return false
	case reason == langdetect.ReasonGenerated && w.opts.IncludeGenerated:
		return false
	}

	logging.FromContext(w.ctx).Debug("skipping file", logging.FieldPath, relPath, "reason", reason)
	return true
}

func readHead(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, langdetect.HeadSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return buf[:n], nil
}

// hasMatchingExtension checks if the file has a matching extension.
func hasMatchingExtension(path string, extensions []string) bool {
	ext := filepath.Ext(path)
	for _, e := range extensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

// pattern is one compiled glob. Patterns without a slash match the
// base name as well as the whole relative path.
type pattern struct {
	full glob.Glob
	base bool
}

type patternSet []pattern

// compilePatterns compiles globs with '/' as the separator, so "*" stays
// within one path segment and "**" crosses segments. A leading "**/" also
// matches at the top level.
func compilePatterns(globs []string) (patternSet, error) {
	set := make(patternSet, 0, len(globs))
	for _, raw := range globs {
		src := filepath.ToSlash(raw)
		variants := []string{src}
		if rest, ok := strings.CutPrefix(src, "**/"); ok {
			variants = append(variants, rest)
		}
		for _, v := range variants {
			g, err := glob.Compile(v, '/')
			if err != nil {
				return nil, fmt.Errorf("compile %q: %w", raw, err)
			}
			set = append(set, pattern{full: g, base: !strings.Contains(v, "/")})
		}
	}
	return set, nil
}

func (s patternSet) match(relPath string) bool {
	for _, p := range s {
		if p.full.Match(relPath) {
			return true
		}
		if p.base && p.full.Match(pathBase(relPath)) {
			return true
		}
	}
	return false
}

// matchDir also tries relPath with a trailing slash so "build/**"
// prunes the build directory itself.
func (s patternSet) matchDir(relPath string) bool {
	return s.match(relPath) || s.match(relPath+"/")
}

func pathBase(relPath string) string {
	if i := strings.LastIndexByte(relPath, '/'); i >= 0 {
		return relPath[i+1:]
	}
	return relPath
}
