// Package privacy implements the consent gate that must open before the
// first message can be sent.
package privacy

import (
	"context"

	"github.com/qmuntal/stateless"
)

// Gate states
type GateState stateless.State

var (
	StateUngated GateState = "Ungated"
	StateAgreed  GateState = "Agreed"
)

// Gate triggers
type GateTrigger stateless.Trigger

var (
	TriggerAgree GateTrigger = "Agree"
)

// Gate is the ungated→agreed state machine. The transition fires only
// on explicit user confirmation and is one-way for the session; there
// is no trigger that leaves Agreed.
type Gate struct {
	fsm *stateless.StateMachine
}

// New builds a gate. When implicit is true the configuration marks
// agreement as given and the gate starts open.
func New(implicit bool) *Gate {
	initial := StateUngated
	if implicit {
		initial = StateAgreed
	}
	fsm := stateless.NewStateMachine(initial)
	fsm.Configure(StateUngated).
		Permit(TriggerAgree, StateAgreed)
	fsm.Configure(StateAgreed).
		Ignore(TriggerAgree)
	return &Gate{fsm: fsm}
}

// Agree records the user's explicit confirmation.
func (g *Gate) Agree(ctx context.Context) error {
	return g.fsm.FireCtx(ctx, TriggerAgree)
}

// Agreed reports whether the gate is open.
func (g *Gate) Agreed() bool {
	state, err := g.fsm.State(context.Background())
	if err != nil {
		return false
	}
	return state == StateAgreed
}
