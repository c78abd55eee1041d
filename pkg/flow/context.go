package flow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yaklabco/flowfix/pkg/jast"
)

// Contract errors reported by Context lookups.
var (
	ErrNoBreakTarget    = errors.New("break outside of loop, switch or labeled statement")
	ErrNoContinueTarget = errors.New("continue outside of loop")
	ErrUnknownLabel     = errors.New("undefined label")
	ErrNotLoopLabel     = errors.New("continue target is not a loop")
	ErrFrameOrder       = errors.New("frame popped out of order")
)

// ContractError is a structural violation found while walking a tree. It
// carries the offending node's range so callers can report it.
type ContractError struct {
	Err   error
	Range jast.Range
	Label string
}

func (e *ContractError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("%v: %s", e.Err, e.Label)
	}
	return e.Err.Error()
}

func (e *ContractError) Unwrap() error {
	return e.Err
}

// FrameKind identifies what opened a frame.
type FrameKind uint8

// Frame kinds.
const (
	FrameMethod FrameKind = iota
	FrameLoop
	FrameSwitch
	FrameLabel
	FrameTry
)

func (k FrameKind) String() string {
	switch k {
	case FrameMethod:
		return "method"
	case FrameLoop:
		return "loop"
	case FrameSwitch:
		return "switch"
	case FrameLabel:
		return "label"
	case FrameTry:
		return "try"
	}
	return "invalid"
}

// Handler is one catch clause of a try frame and the flow reaching it.
type Handler struct {
	// Types are the caught type names.
	Types []string

	// Node is the catch clause.
	Node *jast.Node

	incoming Info
	fed      bool
}

// Incoming returns the merged flow of every path that can enter the
// handler, and whether any path did.
func (h *Handler) Incoming() (Info, bool) {
	if !h.fed {
		return DeadEnd(), false
	}
	return h.incoming, true
}

// Catches reports whether the handler catches exceptions named typeName.
func (h *Handler) Catches(typeName string) bool {
	for _, t := range h.Types {
		switch {
		case t == typeName, t == "Throwable":
			return true
		case t == "Exception" && !IsError(typeName):
			return true
		case t == "RuntimeException" && IsUnchecked(typeName) && !IsError(typeName):
			return true
		}
	}
	return false
}

// CatchesUnchecked reports whether the handler could catch an exception of
// unknown type.
func (h *Handler) CatchesUnchecked() bool {
	for _, t := range h.Types {
		if t == "Throwable" || t == "Exception" || IsUnchecked(t) {
			return true
		}
	}
	return false
}

func (h *Handler) feed(in Info) {
	if !in.IsReachable() {
		return
	}
	if h.fed {
		h.incoming = Merge(h.incoming, in)
		return
	}
	h.incoming = in
	h.fed = true
}

// uncheckedNames are the exception types treated as unchecked by name.
var uncheckedNames = map[string]bool{
	"RuntimeException":              true,
	"IllegalArgumentException":      true,
	"IllegalStateException":         true,
	"NullPointerException":          true,
	"UnsupportedOperationException": true,
	"IndexOutOfBoundsException":     true,
	"ArithmeticException":           true,
	"ClassCastException":            true,
}

// IsError reports whether typeName names an Error subclass by convention.
func IsError(typeName string) bool {
	return strings.HasSuffix(typeName, "Error")
}

// IsUnchecked reports whether typeName is an unchecked exception. Without a
// type hierarchy the decision is made by name.
func IsUnchecked(typeName string) bool {
	return uncheckedNames[typeName] || IsError(typeName)
}

// DeferredCheck is an obligation re-evaluated when its frame is popped,
// against the flow that loops back to the frame's entry.
type DeferredCheck struct {
	// Node is the node the check belongs to.
	Node *jast.Node

	// Slot is the local under test.
	Slot Slot

	// At is the flow at the check point on the first iteration.
	At Info

	// Resolve is called exactly once, when the owning frame is popped.
	Resolve func(at, loopBack Info)
}

// Frame is one entry of the control-transfer stack.
type Frame struct {
	Kind  FrameKind
	Node  *jast.Node
	Label string

	// Throws are the exception types a method frame declares.
	Throws []string

	// Handlers are the catch clauses of a try frame.
	Handlers []*Handler

	parent *Frame

	breaks       Info
	hasBreak     bool
	continues    Info
	hasContinue  bool
	loopBack     Info
	hasLoopBack  bool
	finally      bool
	finallyIn    Info
	hasFinallyIn bool
	closed       bool
	popped       bool
	deferred     []DeferredCheck
}

// Parent returns the enclosing frame.
func (f *Frame) Parent() *Frame {
	return f.parent
}

// Breaks returns the merged flow of every break targeting the frame, or a
// dead end when there is none.
func (f *Frame) Breaks() Info {
	if !f.hasBreak {
		return DeadEnd()
	}
	return f.breaks
}

// HasBreak reports whether any reachable break targets the frame.
func (f *Frame) HasBreak() bool {
	return f.hasBreak
}

// Continues returns the merged flow of every continue targeting the frame.
func (f *Frame) Continues() Info {
	if !f.hasContinue {
		return DeadEnd()
	}
	return f.continues
}

// SetLoopBack records the flow returning to the loop head: body completion
// merged with continues. Deferred checks are evaluated against it.
func (f *Frame) SetLoopBack(in Info) {
	f.loopBack = in
	f.hasLoopBack = true
}

// FinallyIncoming returns the merged flow of abrupt exits that pass through
// the frame's finally block.
func (f *Frame) FinallyIncoming() (Info, bool) {
	if !f.hasFinallyIn {
		return DeadEnd(), false
	}
	return f.finallyIn, true
}

// CloseHandlers stops the frame's handlers from receiving further
// exceptions. Catch blocks run after it; their exceptions propagate outward
// but still pass through finally.
func (f *Frame) CloseHandlers() {
	f.closed = true
}

func (f *Frame) recordBreak(in Info) {
	if !in.IsReachable() {
		return
	}
	if f.hasBreak {
		f.breaks = Merge(f.breaks, in)
		return
	}
	f.breaks = in
	f.hasBreak = true
}

func (f *Frame) recordContinue(in Info) {
	if !in.IsReachable() {
		return
	}
	if f.hasContinue {
		f.continues = Merge(f.continues, in)
		return
	}
	f.continues = in
	f.hasContinue = true
}

func (f *Frame) passFinally(in Info) {
	if !f.finally || !in.IsReachable() {
		return
	}
	if f.hasFinallyIn {
		f.finallyIn = Merge(f.finallyIn, in)
		return
	}
	f.finallyIn = in
	f.hasFinallyIn = true
}

// Context is the stack of frames enclosing the node being analyzed. A new
// Context is created per method; it is not safe for concurrent use.
type Context struct {
	top *Frame
}

// NewContext returns an empty stack.
func NewContext() *Context {
	return &Context{}
}

// Top returns the innermost frame.
func (c *Context) Top() *Frame {
	return c.top
}

func (c *Context) push(f *Frame) *Frame {
	f.parent = c.top
	c.top = f
	return f
}

// PushMethod opens the outermost frame of a method body.
func (c *Context) PushMethod(method *jast.Node, throws []string) *Frame {
	return c.push(&Frame{Kind: FrameMethod, Node: method, Throws: throws})
}

// PushLoop opens a frame for a loop. label is the label of an enclosing
// labeled statement, or "".
func (c *Context) PushLoop(loop *jast.Node, label string) *Frame {
	return c.push(&Frame{Kind: FrameLoop, Node: loop, Label: label})
}

// PushSwitch opens a frame for a switch statement.
func (c *Context) PushSwitch(sw *jast.Node) *Frame {
	return c.push(&Frame{Kind: FrameSwitch, Node: sw})
}

// PushLabel opens a frame for a labeled non-loop statement.
func (c *Context) PushLabel(stmt *jast.Node, label string) *Frame {
	return c.push(&Frame{Kind: FrameLabel, Node: stmt, Label: label})
}

// PushTryCatch opens a frame for a try statement with the given handlers.
// hasFinally makes abrupt exits through the frame visible to the finally
// block via FinallyIncoming.
func (c *Context) PushTryCatch(try *jast.Node, handlers []*Handler, hasFinally bool) *Frame {
	return c.push(&Frame{Kind: FrameTry, Node: try, Handlers: handlers, finally: hasFinally})
}

// Pop removes f, which must be the innermost frame, and resolves its
// deferred checks exactly once.
func (c *Context) Pop(f *Frame) error {
	if f.popped || c.top != f {
		return &ContractError{Err: ErrFrameOrder, Range: f.Node.Range, Label: f.Kind.String()}
	}
	f.popped = true
	c.top = f.parent

	loopBack := DeadEnd()
	if f.hasLoopBack {
		loopBack = f.loopBack
	}
	checks := f.deferred
	f.deferred = nil
	for _, d := range checks {
		d.Resolve(d.At, loopBack)
	}
	return nil
}

// RecordDeferredCheck attaches d to the innermost loop frame. Without an
// enclosing loop the check resolves immediately against a dead end.
func (c *Context) RecordDeferredCheck(d DeferredCheck) {
	for f := c.top; f != nil; f = f.parent {
		if f.Kind == FrameLoop {
			f.deferred = append(f.deferred, d)
			return
		}
	}
	d.Resolve(d.At, DeadEnd())
}

// InnermostLoop returns the nearest enclosing loop frame, or nil.
func (c *Context) InnermostLoop() *Frame {
	for f := c.top; f != nil; f = f.parent {
		if f.Kind == FrameLoop {
			return f
		}
	}
	return nil
}

// LoopDepth returns the number of enclosing loop frames.
func (c *Context) LoopDepth() int {
	depth := 0
	for f := c.top; f != nil; f = f.parent {
		if f.Kind == FrameLoop {
			depth++
		}
	}
	return depth
}

// ResolveBreak finds the frame a break statement exits. An unlabeled break
// targets the nearest loop or switch; a labeled one the frame with that label.
func (c *Context) ResolveBreak(jump *jast.Node) (*Frame, error) {
	label := jump.Text
	for f := c.top; f != nil; f = f.parent {
		if f.Kind == FrameMethod {
			break
		}
		if label == "" && (f.Kind == FrameLoop || f.Kind == FrameSwitch) {
			return f, nil
		}
		if label != "" && f.Label == label {
			return f, nil
		}
	}
	if label != "" {
		return nil, &ContractError{Err: ErrUnknownLabel, Range: jump.Range, Label: label}
	}
	return nil, &ContractError{Err: ErrNoBreakTarget, Range: jump.Range}
}

// ResolveContinue finds the loop a continue statement restarts.
func (c *Context) ResolveContinue(jump *jast.Node) (*Frame, error) {
	label := jump.Text
	for f := c.top; f != nil; f = f.parent {
		if f.Kind == FrameMethod {
			break
		}
		if label == "" && f.Kind == FrameLoop {
			return f, nil
		}
		if label != "" && f.Label == label {
			if f.Kind != FrameLoop {
				return nil, &ContractError{Err: ErrNotLoopLabel, Range: jump.Range, Label: label}
			}
			return f, nil
		}
	}
	if label != "" {
		return nil, &ContractError{Err: ErrUnknownLabel, Range: jump.Range, Label: label}
	}
	return nil, &ContractError{Err: ErrNoContinueTarget, Range: jump.Range}
}

// Break registers in with target and with every finally block between.
func (c *Context) Break(target *Frame, in Info) {
	c.passFinallyUntil(target, in)
	target.recordBreak(in)
}

// Continue registers in with the target loop and every finally block between.
func (c *Context) Continue(target *Frame, in Info) {
	c.passFinallyUntil(target, in)
	target.recordContinue(in)
}

// Return routes in through every finally block up to the method.
func (c *Context) Return(in Info) {
	c.passFinallyUntil(nil, in)
}

func (c *Context) passFinallyUntil(target *Frame, in Info) {
	for f := c.top; f != nil && f != target; f = f.parent {
		if f.Kind == FrameTry {
			f.passFinally(in)
		}
	}
}

// Resolution says what happens to a thrown exception.
type Resolution uint8

// Exception resolutions.
const (
	// Caught means an enclosing handler receives the exception.
	Caught Resolution = iota

	// Declared means the method's throws clause covers it.
	Declared

	// Unchecked means nothing handles it but none is required.
	Unchecked

	// Unhandled means a checked exception escapes the method undeclared.
	Unhandled
)

// Throw propagates an exception named typeName thrown with flow in. The
// first open handler that catches it receives in; finally blocks passed on
// the way see it too.
func (c *Context) Throw(typeName string, in Info) Resolution {
	for f := c.top; f != nil; f = f.parent {
		switch f.Kind {
		case FrameTry:
			if !f.closed {
				for _, h := range f.Handlers {
					if h.Catches(typeName) {
						h.feed(in)
						return Caught
					}
				}
			}
			f.passFinally(in)
		case FrameMethod:
			for _, t := range f.Throws {
				if t == typeName || t == "Throwable" || (t == "Exception" && !IsError(typeName)) {
					return Declared
				}
			}
		case FrameLoop, FrameSwitch, FrameLabel:
		}
	}
	if IsUnchecked(typeName) {
		return Unchecked
	}
	return Unhandled
}

// ThrowUnknown models a call or allocation that may throw an exception of
// unknown type: every open handler may receive in, and propagation stops at
// the first catch-all.
func (c *Context) ThrowUnknown(in Info) {
	for f := c.top; f != nil; f = f.parent {
		if f.Kind != FrameTry {
			continue
		}
		stop := false
		if !f.closed {
			for _, h := range f.Handlers {
				h.feed(in)
				for _, t := range h.Types {
					if t == "Throwable" {
						stop = true
					}
				}
			}
		}
		f.passFinally(in)
		if stop {
			return
		}
	}
}
