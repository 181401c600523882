package operation

// State describes where an operation is in its lifecycle. States are
// monotonic: an operation only ever moves forward through them and
// Finished is terminal.
type State int32

const (
	// Pending means the operation has unfinished dependencies (or has not
	// been submitted yet).
	Pending State = iota

	// Ready means every dependency is finished and the operation may be
	// dispatched.
	Ready

	// Executing means the operation occupies a worker slot.
	Executing

	// Finished is terminal. The result and error slots are readable and
	// completion callbacks have fired or are firing.
	Finished
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	case Executing:
		return "executing"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// Priority orders dispatch among simultaneously ready operations. Higher
// priorities dispatch first; ties break by submission order.
type Priority int

const (
	VeryLow  Priority = -2
	Low      Priority = -1
	Normal   Priority = 0
	High     Priority = 1
	VeryHigh Priority = 2
)

// String returns a human-readable priority name.
func (p Priority) String() string {
	switch p {
	case VeryLow:
		return "very-low"
	case Low:
		return "low"
	case Normal:
		return "normal"
	case High:
		return "high"
	case VeryHigh:
		return "very-high"
	default:
		return "unknown"
	}
}

// Valid reports whether p is one of the defined priority levels.
func (p Priority) Valid() bool {
	return p >= VeryLow && p <= VeryHigh
}
