// Package docflow governs the lifecycle of business documents: the closed
// state set, the static transition table, and the workflow service that
// applies transitions and triggers journal reversals.
package docflow

import (
	"ledgercore/internal/core/apperror"
)

// State is a document lifecycle state. The set is closed; anything else is
// rejected at the boundary.
type State string

const (
	StateDraft     State = "draft"
	StatePending   State = "pending"
	StateApproved  State = "approved"
	StateRejected  State = "rejected"
	StateCancelled State = "cancelled"
	StateCompleted State = "completed"
)

// ParseState validates a raw state value against the closed set.
func ParseState(s string) (State, error) {
	switch State(s) {
	case StateDraft, StatePending, StateApproved, StateRejected, StateCancelled, StateCompleted:
		return State(s), nil
	}
	return "", apperror.NewValidation("unknown document state").
		WithDetail("value", s)
}

// AllStates lists every lifecycle state.
func AllStates() []State {
	return []State{StateDraft, StatePending, StateApproved, StateRejected, StateCancelled, StateCompleted}
}

// Role is an actor role consulted by the transition table.
type Role string

const (
	RoleUser    Role = "user"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

// ParseRole validates a raw role value against the closed set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleManager, RoleAdmin:
		return Role(s), nil
	}
	return "", apperror.NewValidation("unknown role").
		WithDetail("value", s)
}

// AllRoles lists every actor role.
func AllRoles() []Role {
	return []Role{RoleUser, RoleManager, RoleAdmin}
}
