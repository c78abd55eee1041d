// Package fsutil holds the file safety primitives used when flowfix writes
// corrections back to disk: stamped reads, concurrent-change detection,
// atomic replacement and sidecar backups.
package fsutil

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
)

// Sentinel errors for use with errors.Is.
var (
	ErrNilStamp         = errors.New("nil stamp")
	ErrNotFound         = errors.New("file not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrIsDirectory      = errors.New("path is a directory")

	// ErrChanged is returned when a file changed on disk between the read
	// that produced its stamp and a write that depends on it.
	ErrChanged = errors.New("file changed on disk since it was read")
)

// Stamp records the state of a source file when it was read.
type Stamp struct {
	Path    string
	Mode    fs.FileMode
	ModTime time.Time
	Size    int64

	// Hash is the SHA-256 of the content that was read.
	Hash [sha256.Size]byte
}

// Read returns the content of the file at path together with its stamp.
func Read(ctx context.Context, path string) ([]byte, *Stamp, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, nil, classify(path, err)
	}
	if stat.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, classify(path, err)
	}

	return content, &Stamp{
		Path:    path,
		Mode:    stat.Mode().Perm(),
		ModTime: stat.ModTime(),
		Size:    stat.Size(),
		Hash:    sha256.Sum256(content),
	}, nil
}

// Changed reports whether the stamped file differs from its state at read
// time. A deleted file counts as changed. When deep is false only the
// modification time and size are compared.
func (s *Stamp) Changed(ctx context.Context, deep bool) (bool, error) {
	if s == nil {
		return false, ErrNilStamp
	}
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("check %s: %w", s.Path, err)
	}

	stat, err := os.Stat(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", s.Path, err)
	}
	if !stat.ModTime().Equal(s.ModTime) || stat.Size() != s.Size {
		return true, nil
	}
	if !deep {
		return false, nil
	}

	content, err := os.ReadFile(s.Path)
	if err != nil {
		return false, classify(s.Path, err)
	}
	return sha256.Sum256(content) != s.Hash, nil
}

// Matches reports whether content is what the stamp was taken from.
func (s *Stamp) Matches(content []byte) bool {
	return s != nil && sha256.Sum256(content) == s.Hash
}

func classify(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %s: %w", ErrPermissionDenied, path, err)
	default:
		return fmt.Errorf("read %s: %w", path, err)
	}
}
