package integration

// SyncState is the lifecycle of a synced order, invoice or payment:
//
//	pending -> processing -> {authorized | approved, rejected, denied, error}
//
// authorized, approved, rejected and denied are terminal. error is not: a
// later sync may move it back to processing or straight to a final state.
type SyncState string

const (
	SyncStatePending    SyncState = "pending"
	SyncStateProcessing SyncState = "processing"
	SyncStateAuthorized SyncState = "authorized"
	SyncStateApproved   SyncState = "approved"
	SyncStateRejected   SyncState = "rejected"
	SyncStateDenied     SyncState = "denied"
	SyncStateError      SyncState = "error"
)

// IsValid returns true if the state is known
func (s SyncState) IsValid() bool {
	switch s {
	case SyncStatePending, SyncStateProcessing, SyncStateAuthorized, SyncStateApproved,
		SyncStateRejected, SyncStateDenied, SyncStateError:
		return true
	default:
		return false
	}
}

// IsTerminal returns true for states a later sync cannot change
func (s SyncState) IsTerminal() bool {
	switch s {
	case SyncStateAuthorized, SyncStateApproved, SyncStateRejected, SyncStateDenied:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether moving from s to next is allowed.
// Staying in the same state is always allowed.
func (s SyncState) CanTransitionTo(next SyncState) bool {
	if !next.IsValid() {
		return false
	}
	if s == next || s == "" {
		return true
	}
	switch s {
	case SyncStatePending:
		return true
	case SyncStateProcessing:
		return next != SyncStatePending
	case SyncStateError:
		return next != SyncStatePending
	default:
		return false
	}
}

// Reconcile returns the state to store when a sync observes incoming.
// Disallowed transitions keep the current state.
func (s SyncState) Reconcile(incoming SyncState) SyncState {
	if s.CanTransitionTo(incoming) {
		return incoming
	}
	if s == "" {
		return SyncStatePending
	}
	return s
}
