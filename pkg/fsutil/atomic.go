package fsutil

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultFileMode is used when no mode is known for a new file.
const DefaultFileMode fs.FileMode = 0o644

// WriteAtomic replaces path with content by writing a temporary file in the
// same directory and renaming it over the target. On failure the target is
// left untouched.
func WriteAtomic(ctx context.Context, path string, content []byte, mode fs.FileMode) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if mode == 0 {
		mode = DefaultFileMode
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".flowfix-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	committed = true
	return nil
}

// Replace writes content over the stamped file, keeping its mode. It fails
// with ErrChanged if the file no longer matches the stamp. Content equal to
// what was read is not written and reports false.
func Replace(ctx context.Context, stamp *Stamp, content []byte) (bool, error) {
	if stamp == nil {
		return false, ErrNilStamp
	}
	if stamp.Matches(content) {
		return false, nil
	}

	changed, err := stamp.Changed(ctx, true)
	if err != nil {
		return false, err
	}
	if changed {
		return false, fmt.Errorf("%w: %s", ErrChanged, stamp.Path)
	}

	if err := WriteAtomic(ctx, stamp.Path, content, stamp.Mode); err != nil {
		return false, err
	}
	return true, nil
}
