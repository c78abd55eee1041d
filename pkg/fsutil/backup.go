package fsutil

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// BackupSuffix is appended to a source path to name its backup.
const BackupSuffix = ".flowfix.orig"

// BackupPath returns the sidecar backup path for path.
func BackupPath(path string) string {
	return path + BackupSuffix
}

// HasBackup reports whether a backup exists for path.
func HasBackup(path string) bool {
	_, err := os.Stat(BackupPath(path))
	return err == nil
}

// Backup copies the original content of the stamped file to its sidecar.
// An existing backup is kept, so repeated fix runs preserve the content
// from before the first one. It reports whether a backup was written.
func Backup(ctx context.Context, stamp *Stamp, original []byte) (bool, error) {
	if stamp == nil {
		return false, ErrNilStamp
	}
	dst := BackupPath(stamp.Path)
	if _, err := os.Stat(dst); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat backup: %w", err)
	}

	if err := WriteAtomic(ctx, dst, original, stamp.Mode); err != nil {
		return false, fmt.Errorf("write backup: %w", err)
	}
	return true, nil
}

// Restore moves the backup of path back over it. It reports false when no
// backup exists.
func Restore(ctx context.Context, path string) (bool, error) {
	src := BackupPath(path)
	content, stamp, err := Read(ctx, src)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read backup: %w", err)
	}

	if err := WriteAtomic(ctx, path, content, stamp.Mode); err != nil {
		return false, fmt.Errorf("restore %s: %w", path, err)
	}
	if err := os.Remove(src); err != nil {
		return true, fmt.Errorf("remove backup: %w", err)
	}
	return true, nil
}

// FindBackups returns the source paths under root that have a backup.
func FindBackups(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, BackupSuffix) {
			return nil
		}
		out = append(out, strings.TrimSuffix(path, BackupSuffix))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("find backups in %s: %w", root, err)
	}
	return out, nil
}
