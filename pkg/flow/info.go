// Package flow models per-path analysis state (Info) and the stack of
// enclosing control-transfer targets (Context) used by the flow analyzers.
package flow

import (
	"fmt"
	"sort"
	"strings"

	"fortio.org/safecast"
	"github.com/RoaringBitmap/roaring/v2"
)

// Slot identifies a local variable within one method.
type Slot int

// Assignment is the tri-state initialization status of a local.
type Assignment uint8

// Assignment states.
const (
	Unassigned Assignment = iota
	PossiblyAssigned
	DefinitelyAssigned
)

func (a Assignment) String() string {
	switch a {
	case Unassigned:
		return "unassigned"
	case PossiblyAssigned:
		return "possibly-assigned"
	case DefinitelyAssigned:
		return "definitely-assigned"
	}
	return "invalid"
}

// Info is the state of one control-flow path: which locals are assigned,
// what is known about their nullness, and whether the path is reachable.
// Values are immutable by convention; every operation returns a new Info.
type Info struct {
	reach     Reach
	definite  *roaring.Bitmap
	potential *roaring.Bitmap
	touched   *roaring.Bitmap
	nulls     map[Slot]NullState

	// effect records the locals changed since TrackEffect; nil when no
	// recording is active.
	effect *roaring.Bitmap
}

// NewInfo returns the reachable state at method entry with nothing assigned.
func NewInfo() Info {
	return Info{
		definite:  roaring.New(),
		potential: roaring.New(),
		touched:   roaring.New(),
	}
}

// DeadEnd returns the state following an unconditional jump.
func DeadEnd() Info {
	return NewInfo().WithReach(UnreachableOrDead)
}

func bit(s Slot) uint32 {
	v, err := safecast.Conv[uint32](int(s))
	if err != nil {
		panic(fmt.Sprintf("flow: invalid slot %d: %v", s, err))
	}
	return v
}

func (in Info) valid() {
	if in.definite == nil || in.potential == nil || in.touched == nil {
		panic("flow: zero Info used; construct with NewInfo")
	}
}

func (in Info) clone() Info {
	in.valid()
	out := Info{
		reach:     in.reach,
		definite:  in.definite.Clone(),
		potential: in.potential.Clone(),
		touched:   in.touched.Clone(),
	}
	if in.effect != nil {
		out.effect = in.effect.Clone()
	}
	if len(in.nulls) > 0 {
		out.nulls = make(map[Slot]NullState, len(in.nulls))
		for k, v := range in.nulls {
			out.nulls[k] = v
		}
	}
	return out
}

// Reach returns the path's reachability tag.
func (in Info) Reach() Reach {
	return in.reach
}

// IsReachable reports whether the path can execute.
func (in Info) IsReachable() bool {
	return in.reach == Reachable
}

// WithReach returns a copy tagged with r.
func (in Info) WithReach(r Reach) Info {
	out := in.clone()
	out.reach = r
	return out
}

// Status returns the assignment state of s.
func (in Info) Status(s Slot) Assignment {
	in.valid()
	switch {
	case in.definite.Contains(bit(s)):
		return DefinitelyAssigned
	case in.potential.Contains(bit(s)):
		return PossiblyAssigned
	default:
		return Unassigned
	}
}

// IsDefinitelyAssigned reports whether s is assigned on every path here.
// Unreachable paths vacuously assign everything.
func (in Info) IsDefinitelyAssigned(s Slot) bool {
	if !in.IsReachable() {
		return true
	}
	return in.Status(s) == DefinitelyAssigned
}

// IsPotentiallyAssigned reports whether s is assigned on some path here.
func (in Info) IsPotentiallyAssigned(s Slot) bool {
	in.valid()
	if !in.IsReachable() {
		return false
	}
	return in.potential.Contains(bit(s))
}

// Untouched reports whether s still holds the state it had when the
// innermost scope marked by EnterScope was entered: no assignment,
// declaration or null narrowing happened on any path since.
func (in Info) Untouched(s Slot) bool {
	in.valid()
	return !in.touched.Contains(bit(s))
}

// EnterScope starts tracking Untouched afresh. Loops call it on entry.
func (in Info) EnterScope() Info {
	out := in.clone()
	out.touched = roaring.New()
	return out
}

// LeaveScope folds the locals touched inside a scope back into the outer
// path's tracking.
func (in Info) LeaveScope(outer Info) Info {
	outer.valid()
	out := in.clone()
	out.touched.Or(outer.touched)
	return out
}

// Assign marks s definitely assigned.
func (in Info) Assign(s Slot) Info {
	out := in.clone()
	out.definite.Add(bit(s))
	out.potential.Add(bit(s))
	out.touch(s)
	return out
}

// AddPotential adds the assignments other may have made, without making
// anything definite. Null states of reachable other are merged in. Loops
// use it to account for later iterations.
func (in Info) AddPotential(other Info) Info {
	other.valid()
	out := in.clone()
	if !other.IsReachable() {
		return out
	}
	out.potential.Or(other.potential)
	out.touched.Or(other.touched)
	if out.effect != nil && other.effect != nil {
		out.effect.Or(other.effect)
	}
	for s, st := range other.nulls {
		if m := MergeNull(out.nulls[s], st); m != NullUnknown {
			out = out.setNull(s, m)
		} else {
			delete(out.nulls, s)
		}
	}
	return out
}

// Declare resets s to unassigned. Used when a declaration is re-entered on a
// later loop iteration.
func (in Info) Declare(s Slot) Info {
	out := in.clone()
	out.definite.Remove(bit(s))
	out.potential.Remove(bit(s))
	out.touch(s)
	delete(out.nulls, s)
	return out
}

// NullState returns what is known about s's nullness.
func (in Info) NullState(s Slot) NullState {
	return in.nulls[s]
}

// WithNull returns a copy recording st for s.
func (in Info) WithNull(s Slot, st NullState) Info {
	out := in.clone()
	out.touch(s)
	if st == NullUnknown {
		delete(out.nulls, s)
		return out
	}
	if out.nulls == nil {
		out.nulls = make(map[Slot]NullState)
	}
	out.nulls[s] = st
	return out
}

// Merge joins two paths. It is commutative and idempotent. When exactly one
// side is unreachable the result is the other side.
func Merge(a, b Info) Info {
	a.valid()
	b.valid()
	switch {
	case a.IsReachable() && !b.IsReachable():
		return a.clone()
	case !a.IsReachable() && b.IsReachable():
		return b.clone()
	}

	out := Info{
		reach:     a.reach & b.reach,
		definite:  roaring.And(a.definite, b.definite),
		potential: roaring.Or(a.potential, b.potential),
		touched:   roaring.Or(a.touched, b.touched),
		effect:    orEffect(a.effect, b.effect),
	}
	for s, st := range a.nulls {
		if m := MergeNull(st, b.nulls[s]); m != NullUnknown {
			out = out.setNull(s, m)
		}
	}
	for s, st := range b.nulls {
		if _, seen := a.nulls[s]; seen {
			continue
		}
		if m := MergeNull(NullUnknown, st); m != NullUnknown {
			out = out.setNull(s, m)
		}
	}
	return out
}

// MergeAll folds Merge over infos. The result of an empty list is a dead end.
func MergeAll(infos ...Info) Info {
	if len(infos) == 0 {
		return DeadEnd()
	}
	out := infos[0]
	for _, in := range infos[1:] {
		out = Merge(out, in)
	}
	return out
}

func (in Info) setNull(s Slot, st NullState) Info {
	if in.nulls == nil {
		in.nulls = make(map[Slot]NullState)
	}
	in.nulls[s] = st
	return in
}

// Sequence composes a path a followed by the effect b along the fall-through
// edge. Assignments accumulate, b's known null states override a's, and the
// result is unreachable if either part is. It is associative.
func Sequence(a, b Info) Info {
	a.valid()
	b.valid()
	out := Info{
		reach:     a.reach | b.reach,
		definite:  roaring.Or(a.definite, b.definite),
		potential: roaring.Or(a.potential, b.potential),
		touched:   roaring.Or(a.touched, b.touched),
		effect:    orEffect(a.effect, b.effect),
	}
	for s, st := range a.nulls {
		out = out.setNull(s, st)
	}
	for s, st := range b.nulls {
		out = out.setNull(s, st)
	}
	return out
}

// SequenceFinally composes normal completion a with a finally block that
// ended in b. Assignments accumulate as in Sequence, but only the locals in
// effect, the ones the block itself changed, take their null state from b.
func SequenceFinally(a, b Info, effect []Slot) Info {
	out := Sequence(a, b)
	out.nulls = nil
	for s, st := range a.nulls {
		out = out.setNull(s, st)
	}
	for _, s := range effect {
		if st := b.nulls[s]; st != NullUnknown {
			out = out.setNull(s, st)
		} else {
			delete(out.nulls, s)
		}
	}
	return out
}

// TrackEffect starts recording the locals the path changes from here on.
func (in Info) TrackEffect() Info {
	out := in.clone()
	out.effect = roaring.New()
	return out
}

// EndEffect stops the recording started by TrackEffect and returns the
// locals changed since. Any recording outer had resumes with them added.
func (in Info) EndEffect(outer Info) (Info, []Slot) {
	in.valid()
	var changed []Slot
	if in.effect != nil {
		for _, v := range in.effect.ToArray() {
			changed = append(changed, Slot(v))
		}
	}
	out := in.clone()
	out.effect = nil
	if outer.effect != nil {
		out.effect = outer.effect.Clone()
		if in.effect != nil {
			out.effect.Or(in.effect)
		}
	}
	return out, changed
}

func (in *Info) touch(s Slot) {
	in.touched.Add(bit(s))
	if in.effect != nil {
		in.effect.Add(bit(s))
	}
}

func orEffect(a, b *roaring.Bitmap) *roaring.Bitmap {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		return b.Clone()
	case b == nil:
		return a.Clone()
	}
	return roaring.Or(a, b)
}

// Conservative is the state substituted after a malformed subtree: every
// declared local is possibly assigned, definite assignments from in are
// kept, and the path is reachable.
func Conservative(in Info, declared int) Info {
	out := in.clone()
	out.reach = Reachable
	if declared > 0 {
		out.potential.AddRange(0, uint64(declared))
	}
	out.nulls = nil
	return out
}

// Equal reports whether two infos are indistinguishable.
func Equal(a, b Info) bool {
	a.valid()
	b.valid()
	if a.reach != b.reach ||
		!a.definite.Equals(b.definite) ||
		!a.potential.Equals(b.potential) ||
		!a.touched.Equals(b.touched) {
		return false
	}
	if len(a.nulls) != len(b.nulls) {
		return false
	}
	for s, st := range a.nulls {
		if b.nulls[s] != st {
			return false
		}
	}
	return true
}

// SameVariableState reports whether two infos agree on every local's
// assignment and null state, ignoring reachability.
func SameVariableState(a, b Info) bool {
	return Equal(a.WithReach(Reachable), b.WithReach(Reachable))
}

func (in Info) String() string {
	in.valid()
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s def=%v pot=%v", in.reach, in.definite.ToArray(), in.potential.ToArray())
	if len(in.nulls) > 0 {
		slots := make([]int, 0, len(in.nulls))
		for s := range in.nulls {
			slots = append(slots, int(s))
		}
		sort.Ints(slots)
		sb.WriteString(" null={")
		for i, s := range slots {
			if i > 0 {
				sb.WriteString(" ")
			}
			fmt.Fprintf(&sb, "%d:%s", s, in.nulls[Slot(s)])
		}
		sb.WriteString("}")
	}
	return sb.String()
}
