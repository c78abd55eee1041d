package parser

import (
	"context"
	"fmt"

	"github.com/yaklabco/flowfix/pkg/jast"
)

// Parser is the engine-facing parser. The zero value is ready to use and
// safe for concurrent use.
type Parser struct{}

// New returns a Parser.
func New() *Parser {
	return &Parser{}
}

// Parse parses content, failing only when ctx is already done.
func (*Parser) Parse(ctx context.Context, path string, content []byte) (*jast.FileSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return Parse(path, content), nil
}
