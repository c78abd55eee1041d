// Package rewrite records structural edits against an unmodified syntax tree
// and turns them into a minimal text edit set. The tree is never mutated:
// replacements, removals, insertions and moves are kept in an overlay that
// ComputeEdits consumes.
package rewrite

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/yaklabco/flowfix/pkg/jast"
)

// Errors returned by overlay operations.
var (
	ErrNilNode      = errors.New("nil node")
	ErrNotInList    = errors.New("node is not an element of a list property")
	ErrNotListProp  = errors.New("property is not a list")
	ErrNotSlotProp  = errors.New("property is not a single-valued slot")
	ErrIndexRange   = errors.New("insert index out of range")
	ErrAnchorAbsent = errors.New("anchor is not in the overlay list")
)

// SlotError reports a slot change the engine cannot express as text.
type SlotError struct {
	Kind jast.Kind
	Prop jast.Prop
	Op   string
}

func (e *SlotError) Error() string {
	return fmt.Sprintf("cannot %s %s of %s", e.Op, e.Prop, e.Kind)
}

// ConflictError lists every source range touched by more than one overlay
// entry. When it is returned no edits are produced.
type ConflictError struct {
	Ranges []jast.Range
}

func (e *ConflictError) Error() string {
	parts := make([]string, 0, len(e.Ranges))
	for _, r := range e.Ranges {
		parts = append(parts, fmt.Sprintf("[%d:%d]", r.Start, r.End))
	}
	return fmt.Sprintf("rewrite: %d conflicting range(s): %s", len(e.Ranges), strings.Join(parts, ", "))
}

type listKey struct {
	parent *jast.Node
	prop   jast.Prop
}

type slotValue struct {
	node *jast.Node
}

// Rewrite is the overlay for one correction. It is not safe for concurrent
// use.
type Rewrite struct {
	replaced map[*jast.Node]*jast.Node
	removed  map[*jast.Node]bool
	moved    map[*jast.Node]bool
	lists    map[listKey][]*jast.Node
	slots    map[listKey]slotValue

	// sources maps placeholders created by Move and Copy to the original
	// subtree whose text they reuse.
	sources map[*jast.Node]*jast.Node

	conflicts []jast.Range
}

// New returns an empty overlay.
func New() *Rewrite {
	return &Rewrite{
		replaced: make(map[*jast.Node]*jast.Node),
		removed:  make(map[*jast.Node]bool),
		moved:    make(map[*jast.Node]bool),
		lists:    make(map[listKey][]*jast.Node),
		slots:    make(map[listKey]slotValue),
		sources:  make(map[*jast.Node]*jast.Node),
	}
}

// IsEmpty reports whether no operation was recorded.
func (rw *Rewrite) IsEmpty() bool {
	return len(rw.replaced) == 0 && len(rw.removed) == 0 && len(rw.moved) == 0 &&
		len(rw.lists) == 0 && len(rw.slots) == 0
}

func (rw *Rewrite) touched(n *jast.Node) bool {
	_, replaced := rw.replaced[n]
	return replaced || rw.removed[n]
}

func (rw *Rewrite) conflict(a, b jast.Range) {
	rw.conflicts = append(rw.conflicts, a, b)
}

// Replace substitutes repl for the original node n.
func (rw *Rewrite) Replace(n, repl *jast.Node) error {
	if n == nil || repl == nil {
		return ErrNilNode
	}
	if rw.touched(n) {
		rw.conflict(n.Range, n.Range)
	}
	rw.replaced[n] = repl
	return nil
}

// Remove deletes the original node n together with its separator.
func (rw *Rewrite) Remove(n *jast.Node) error {
	if n == nil {
		return ErrNilNode
	}
	if rw.touched(n) {
		rw.conflict(n.Range, n.Range)
	}
	rw.removed[n] = true
	return nil
}

// Move returns a placeholder standing for the original subtree n. The
// placeholder prints as n's source text, re-indented for its new position,
// and n is removed from its old position unless it is also replaced there.
func (rw *Rewrite) Move(n *jast.Node) *jast.Node {
	rw.moved[n] = true
	return rw.placeholder(n)
}

// Copy returns a placeholder standing for the source text of n, leaving n
// in place.
func (rw *Rewrite) Copy(n *jast.Node) *jast.Node {
	return rw.placeholder(n)
}

func (rw *Rewrite) placeholder(n *jast.Node) *jast.Node {
	ph := jast.NewNode(n.Kind, n.Text)
	rw.sources[ph] = n
	return ph
}

// overlay returns the mutable overlay list of parent.prop, starting from
// the original children.
func (rw *Rewrite) overlay(parent *jast.Node, prop jast.Prop) []*jast.Node {
	key := listKey{parent, prop}
	if l, ok := rw.lists[key]; ok {
		return l
	}
	orig := parent.List(prop)
	l := make([]*jast.Node, len(orig))
	copy(l, orig)
	rw.lists[key] = l
	return l
}

// InsertAt inserts n at index of the overlay list parent.prop.
func (rw *Rewrite) InsertAt(parent *jast.Node, prop jast.Prop, index int, n *jast.Node) error {
	if parent == nil || n == nil {
		return ErrNilNode
	}
	if !prop.IsList() {
		return ErrNotListProp
	}
	l := rw.overlay(parent, prop)
	if index < 0 || index > len(l) {
		return fmt.Errorf("%w: %d of %d", ErrIndexRange, index, len(l))
	}
	l = append(l, nil)
	copy(l[index+1:], l[index:])
	l[index] = n
	rw.lists[listKey{parent, prop}] = l
	return nil
}

// Append adds n at the end of the overlay list parent.prop.
func (rw *Rewrite) Append(parent *jast.Node, prop jast.Prop, n *jast.Node) error {
	if parent == nil {
		return ErrNilNode
	}
	if !prop.IsList() {
		return ErrNotListProp
	}
	return rw.InsertAt(parent, prop, len(rw.overlay(parent, prop)), n)
}

// InsertBefore inserts n before anchor in anchor's list.
func (rw *Rewrite) InsertBefore(anchor, n *jast.Node) error {
	return rw.insertNear(anchor, n, 0)
}

// InsertAfter inserts n after anchor in anchor's list.
func (rw *Rewrite) InsertAfter(anchor, n *jast.Node) error {
	return rw.insertNear(anchor, n, 1)
}

func (rw *Rewrite) insertNear(anchor, n *jast.Node, offset int) error {
	if anchor == nil || n == nil {
		return ErrNilNode
	}
	if anchor.Parent == nil || !anchor.Prop.IsList() {
		return ErrNotInList
	}
	l := rw.overlay(anchor.Parent, anchor.Prop)
	for i, c := range l {
		if c == anchor {
			return rw.InsertAt(anchor.Parent, anchor.Prop, i+offset, n)
		}
	}
	return ErrAnchorAbsent
}

// Set stores n in the single-valued slot parent.prop. A nil n clears the
// slot; a non-nil n on an empty slot adds the optional child.
func (rw *Rewrite) Set(parent *jast.Node, prop jast.Prop, n *jast.Node) error {
	if parent == nil {
		return ErrNilNode
	}
	if prop.IsList() || prop == jast.PropNone {
		return ErrNotSlotProp
	}
	if orig := parent.Child(prop); orig != nil {
		if n == nil {
			return rw.Remove(orig)
		}
		return rw.Replace(orig, n)
	}
	key := listKey{parent, prop}
	if _, ok := rw.slots[key]; ok {
		rw.conflict(parent.Range, parent.Range)
	}
	rw.slots[key] = slotValue{node: n}
	return nil
}

// effectivelyRemoved reports whether the original node n disappears from
// its position.
func (rw *Rewrite) effectivelyRemoved(n *jast.Node) bool {
	if rw.removed[n] {
		return true
	}
	_, replaced := rw.replaced[n]
	return rw.moved[n] && !replaced
}

// structuralConflicts finds overlay entries nested inside a subtree that is
// replaced or removed as a whole.
func (rw *Rewrite) structuralConflicts() []jast.Range {
	ranges := append([]jast.Range(nil), rw.conflicts...)

	enclosed := func(n *jast.Node, self bool) {
		start := n.Parent
		if self {
			start = n
		}
		for a := start; a != nil; a = a.Parent {
			// Edits inside a moved subtree travel with its placeholder.
			if rw.touched(a) && !rw.moved[a] {
				ranges = append(ranges, n.Range, a.Range)
				return
			}
		}
	}

	for n := range rw.replaced {
		enclosed(n, false)
	}
	for n := range rw.removed {
		enclosed(n, false)
	}
	for key := range rw.lists {
		enclosed(key.parent, true)
	}
	for key := range rw.slots {
		enclosed(key.parent, true)
	}
	return normalizeRanges(ranges)
}

func normalizeRanges(ranges []jast.Range) []jast.Range {
	if len(ranges) == 0 {
		return nil
	}
	sort.Slice(ranges, func(i, j int) bool {
		if ranges[i].Start != ranges[j].Start {
			return ranges[i].Start < ranges[j].Start
		}
		return ranges[i].End < ranges[j].End
	})
	out := ranges[:1]
	for _, r := range ranges[1:] {
		if r != out[len(out)-1] {
			out = append(out, r)
		}
	}
	return out
}
