package models

// Status is the order lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusCompleted Status = "completed"

	// Reserved: shown by customer-facing copy, never produced by a transition.
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

var lifecycle = []Status{StatusPending, StatusPreparing, StatusReady, StatusCompleted}

var nextStatus = map[Status]Status{
	StatusPending:   StatusPreparing,
	StatusPreparing: StatusReady,
	StatusReady:     StatusCompleted,
}

// ParseStatus returns the Status for s and whether it is a known value.
func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	switch st {
	case StatusPending, StatusPreparing, StatusReady, StatusCompleted, StatusDelivered, StatusCancelled:
		return st, true
	}
	return "", false
}

func (s Status) Reserved() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Next is the suggested following state; ok is false for terminal or reserved states.
func (s Status) Next() (Status, bool) {
	n, ok := nextStatus[s]
	return n, ok
}

func (s Status) rank() int {
	for i, st := range lifecycle {
		if st == s {
			return i
		}
	}
	return -1
}

// CanTransition reports whether from -> to is allowed. Strict mode only
// accepts the table step; otherwise any forward move along the lifecycle is
// accepted. Backward moves and reserved states are never accepted.
func CanTransition(from, to Status, allowJumps bool) bool {
	if to.Reserved() || from.Reserved() {
		return false
	}
	if !allowJumps {
		n, ok := from.Next()
		return ok && n == to
	}
	f, t := from.rank(), to.rank()
	return f >= 0 && t > f
}
