package flow

// Reach classifies whether a path can execute. It is a bit set: merging two
// unreachable paths keeps only the tags they share, sequencing keeps all.
type Reach uint8

// Reachability tags.
const (
	// Reachable is normal flow.
	Reachable Reach = 0

	// Unreachable marks paths that are dead under the active configuration:
	// constant conditions, or code after assert false with assertions on.
	Unreachable Reach = 1 << 0

	// UnreachableOrDead marks paths that never execute under any
	// configuration: after return, throw, break, continue, or an infinite
	// loop without a break.
	UnreachableOrDead Reach = Unreachable | 1<<1
)

func (r Reach) String() string {
	switch r {
	case Reachable:
		return "reachable"
	case Unreachable:
		return "unreachable"
	case UnreachableOrDead:
		return "unreachable-or-dead"
	}
	return "invalid"
}

// NullState is what is known about a local's nullness on a path.
type NullState uint8

// Null states.
const (
	NullUnknown NullState = iota
	Null
	NonNull
	PossiblyNull
)

func (s NullState) String() string {
	switch s {
	case NullUnknown:
		return "unknown"
	case Null:
		return "null"
	case NonNull:
		return "non-null"
	case PossiblyNull:
		return "possibly-null"
	}
	return "invalid"
}

// MergeNull joins the null states of a local on two paths. It is commutative
// and idempotent: null on both sides stays null, non-null on both sides
// stays non-null, any other combination involving null becomes
// possibly-null, and everything else is unknown.
func MergeNull(a, b NullState) NullState {
	switch {
	case a == b:
		return a
	case a == Null || b == Null || a == PossiblyNull || b == PossiblyNull:
		return PossiblyNull
	default:
		return NullUnknown
	}
}
