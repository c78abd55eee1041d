// Package flowcheck walks method bodies computing definite assignment,
// reachability and null state, and reports the problems it finds. There is
// one analysis rule per node kind, dispatched by a switch over jast.Kind.
package flowcheck

import (
	"fmt"

	"github.com/yaklabco/flowfix/pkg/jast"
)

// Code identifies the kind of problem a finding reports.
type Code string

// Finding codes.
const (
	CodeUnreachable        Code = "FLOW001"
	CodeDeadCode           Code = "FLOW002"
	CodeUninitialized      Code = "FLOW003"
	CodeMissingReturn      Code = "FLOW004"
	CodeFinalReassigned    Code = "FLOW005"
	CodeNullDereference    Code = "FLOW006"
	CodePotentialNull      Code = "FLOW007"
	CodeUnusedVariable     Code = "FLOW008"
	CodeUnhandledException Code = "FLOW009"
	CodeMisplacedJump      Code = "FLOW010"
	CodeTypeMismatch       Code = "FLOW011"
	CodeSyntax             Code = "FLOW012"
)

// Structural reports whether the code describes a malformed tree rather
// than a flow property. Structural findings are reported even inside
// unreachable code.
func (c Code) Structural() bool {
	return c == CodeMisplacedJump || c == CodeSyntax
}

// Finding is one problem found in a method.
type Finding struct {
	// Code classifies the problem.
	Code Code

	// Range is the source span to highlight.
	Range jast.Range

	// Message is the human-readable description.
	Message string

	// Node is the statement or expression the finding is attached to.
	Node *jast.Node

	// Decl is the declaring fragment, parameter or catch clause of the local
	// involved, if any.
	Decl *jast.Node

	// Local is the name of the local involved, if any.
	Local string

	// TypeName is the exception type for unhandled exceptions and the
	// literal's type for type mismatches.
	TypeName string

	// Method is the enclosing method.
	Method *jast.Node
}

func (f Finding) String() string {
	return fmt.Sprintf("%s [%d:%d] %s", f.Code, f.Range.Start, f.Range.End, f.Message)
}

// DefectError reports a panic while analyzing one method. The rest of the
// file is still analyzed.
type DefectError struct {
	Method string
	Range  jast.Range
	Value  any
}

func (e *DefectError) Error() string {
	return fmt.Sprintf("analyzing method %s: internal error: %v", e.Method, e.Value)
}

// Options are the configuration flags the analyzers consult.
type Options struct {
	// AssertionsEnabled treats assert statements as always executed, so
	// code after assert false is dead.
	AssertionsEnabled bool

	// NullAnalysis enables null state tracking and dereference checks.
	NullAnalysis bool
}

// DefaultOptions returns the default analysis flags.
func DefaultOptions() Options {
	return Options{NullAnalysis: true}
}
