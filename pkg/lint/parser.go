package lint

import (
	"context"

	"github.com/yaklabco/flowfix/pkg/jast"
)

// Parser parses source content into a FileSnapshot.
//
// Implementations must be deterministic for a given (path, content) pair,
// safe for concurrent use and free of I/O. Recoverable syntax errors are
// recorded in the snapshot's Errors; an error return means no snapshot
// could be produced at all.
type Parser interface {
	Parse(ctx context.Context, path string, content []byte) (*jast.FileSnapshot, error)
}
