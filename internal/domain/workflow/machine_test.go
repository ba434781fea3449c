package workflow

import (
	"context"
	"errors"
	"testing"
)

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StatePending, false},
		{StateApproved, false},
		{StateRejected, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("State.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"pending", StatePending, true},
		{"approved", StateApproved, true},
		{"rejected", StateRejected, true},
		{"invalid state", State("INVALID"), false},
		{"empty state", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuilder_Configure(t *testing.T) {
	builder := NewBuilder()

	config := builder.Configure(StatePending)
	if config == nil {
		t.Fatal("Configure() returned nil")
	}

	config2 := builder.Configure(StatePending)
	if config != config2 {
		t.Error("Configure() should return same config for same state")
	}
}

func TestBuilder_ConfigurePanicsOnInvalidState(t *testing.T) {
	builder := NewBuilder()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Configure() should panic on invalid state")
		}
	}()

	builder.Configure(State("INVALID"))
}

func TestPayrollMachine_ApproveFromPending(t *testing.T) {
	m := NewPayrollMachine(StatePending)

	if !m.CanFire(TriggerApprove) {
		t.Error("CanFire(approve) should be true from pending")
	}

	if err := m.Fire(context.Background(), TriggerApprove); err != nil {
		t.Fatalf("Fire(approve) error = %v", err)
	}

	if m.State() != StateApproved {
		t.Errorf("State() = %v, want %v", m.State(), StateApproved)
	}
}

func TestPayrollMachine_RejectFromPending(t *testing.T) {
	m := NewPayrollMachine(StatePending)

	if err := m.Fire(context.Background(), TriggerReject); err != nil {
		t.Fatalf("Fire(reject) error = %v", err)
	}

	if m.State() != StateRejected {
		t.Errorf("State() = %v, want %v", m.State(), StateRejected)
	}
}

func TestPayrollMachine_RejectFromApproved(t *testing.T) {
	m := NewPayrollMachine(StateApproved)

	if err := m.Fire(context.Background(), TriggerReject); err != nil {
		t.Fatalf("Fire(reject) error = %v", err)
	}

	if m.State() != StateRejected {
		t.Errorf("State() = %v, want %v", m.State(), StateRejected)
	}
}

func TestPayrollMachine_RejectedIsTerminal(t *testing.T) {
	m := NewPayrollMachine(StateRejected)

	if err := m.Fire(context.Background(), TriggerApprove); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire(approve) from rejected error = %v, want ErrInvalidTransition", err)
	}

	if got := len(m.PermittedTriggers()); got != 0 {
		t.Errorf("PermittedTriggers() from rejected = %d triggers, want 0", got)
	}
}

func TestIsNoOp(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		trigger  Trigger
		expected bool
	}{
		{"approve already approved", StateApproved, TriggerApprove, true},
		{"reject already rejected", StateRejected, TriggerReject, true},
		{"approve pending", StatePending, TriggerApprove, false},
		{"reject approved", StateApproved, TriggerReject, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNoOp(tt.state, tt.trigger); got != tt.expected {
				t.Errorf("IsNoOp(%v, %v) = %v, want %v", tt.state, tt.trigger, got, tt.expected)
			}
		})
	}
}

func TestMachine_GuardBlocksTransition(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StatePending).
		PermitIf(TriggerApprove, StateApproved, func(ctx context.Context) bool { return false })

	m := builder.Build(StatePending)

	if err := m.Fire(context.Background(), TriggerApprove); !errors.Is(err, ErrGuardFailed) {
		t.Errorf("Fire() with failing guard error = %v, want ErrGuardFailed", err)
	}

	if m.State() != StatePending {
		t.Errorf("State() = %v, want unchanged %v", m.State(), StatePending)
	}
}
