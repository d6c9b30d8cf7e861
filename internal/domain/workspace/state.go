package workspace

// State is the health of one checkout, ordered by precedence: structural
// problems are reported before content state.
type State int

const (
	StateMissing State = iota
	StateInvalid
	StateBroken
	StateUninitialized
	StateDetachedPinned
	StateDetachedUnpinned
	StateModified
	StateClean
)

func (s State) String() string {
	switch s {
	case StateMissing:
		return "missing"
	case StateInvalid:
		return "invalid"
	case StateBroken:
		return "broken"
	case StateUninitialized:
		return "uninitialized"
	case StateDetachedPinned:
		return "detached-pinned"
	case StateDetachedUnpinned:
		return "detached-unpinned"
	case StateModified:
		return "modified"
	case StateClean:
		return "clean"
	default:
		return "unknown"
	}
}

// Tag is the bracketed label printed by status.
func (s State) Tag() string {
	switch s {
	case StateDetachedPinned:
		return "[pinned]"
	case StateDetachedUnpinned:
		return "[detached]"
	default:
		return "[" + s.String() + "]"
	}
}

// Valid reports whether a checkout in this state can be used as is.
func (s State) Valid() bool {
	switch s {
	case StateClean, StateModified, StateDetachedPinned, StateDetachedUnpinned:
		return true
	default:
		return false
	}
}

// NeedsRepair reports whether materialize should rebuild the checkout.
func (s State) NeedsRepair() bool {
	switch s {
	case StateInvalid, StateBroken, StateUninitialized:
		return true
	default:
		return false
	}
}

// DirtySummary counts uncommitted changes for status output.
type DirtySummary struct {
	Staged    int
	Unstaged  int
	Untracked int
	Unmerged  int
	Ahead     int
	Behind    int
	Upstream  string
}

func (d DirtySummary) Any() bool {
	return d.Staged+d.Unstaged+d.Untracked+d.Unmerged > 0
}
