package workflow

// NewPayrollMachine builds the payroll approval state machine starting at
// the given state. Transitions:
//
//	pending  --approve--> approved
//	pending  --reject-->  rejected
//	approved --reject-->  rejected
//
// Approving an already-approved record and rejecting an already-rejected
// record are idempotent no-ops handled by the caller, not transitions.
func NewPayrollMachine(initial State) StateMachine {
	builder := NewBuilder()

	builder.Configure(StatePending).
		Permit(TriggerApprove, StateApproved).
		Permit(TriggerReject, StateRejected)

	builder.Configure(StateApproved).
		Permit(TriggerReject, StateRejected)

	return builder.Build(initial)
}

// IsNoOp reports whether firing the trigger in the given state is the
// idempotent same-outcome case (already approved / already rejected).
func IsNoOp(current State, trigger Trigger) bool {
	switch trigger {
	case TriggerApprove:
		return current == StateApproved
	case TriggerReject:
		return current == StateRejected
	}
	return false
}
