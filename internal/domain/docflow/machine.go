package docflow

import (
	"strings"

	"ledgercore/internal/core/apperror"
)

// Rule describes one legal transition: who may perform it and what it
// demands from the caller.
type Rule struct {
	Roles             []Role
	RequiresApproval  bool
	RequiresReason    bool
	TriggersReversal  bool
}

func (r Rule) allows(role Role) bool {
	for _, allowed := range r.Roles {
		if allowed == role {
			return true
		}
	}
	return false
}

type transitionKey struct {
	From, To State
}

// transitionTable is the full set of legal document transitions. Any pair
// absent here is illegal; there is no default transition.
var transitionTable = map[transitionKey]Rule{
	{StateDraft, StatePending}:       {Roles: []Role{RoleUser, RoleManager, RoleAdmin}},
	{StateDraft, StateCancelled}:     {Roles: []Role{RoleUser, RoleManager, RoleAdmin}, RequiresReason: true},
	{StatePending, StateApproved}:    {Roles: []Role{RoleManager, RoleAdmin}, RequiresApproval: true},
	{StatePending, StateRejected}:    {Roles: []Role{RoleManager, RoleAdmin}, RequiresApproval: true, RequiresReason: true},
	{StatePending, StateDraft}:       {Roles: []Role{RoleUser, RoleManager, RoleAdmin}, RequiresReason: true},
	{StateApproved, StateCompleted}:  {Roles: []Role{RoleUser, RoleManager, RoleAdmin}},
	{StateApproved, StateCancelled}:  {Roles: []Role{RoleManager, RoleAdmin}, RequiresApproval: true, RequiresReason: true, TriggersReversal: true},
	{StateRejected, StateDraft}:      {Roles: []Role{RoleUser, RoleManager, RoleAdmin}},
	{StateCompleted, StateCancelled}: {Roles: []Role{RoleAdmin}, RequiresApproval: true, RequiresReason: true, TriggersReversal: true},
}

// Effect tells the caller what a permitted transition entails.
type Effect struct {
	// RequiresApproval marks transitions that must be recorded as an
	// approval action by the workflow layer.
	RequiresApproval bool `json:"requiresApproval"`

	// RequiresReversal signals that the document's journal entry must be
	// reversed, with the transition reason as description suffix.
	RequiresReversal bool `json:"requiresReversal"`
}

// Transition decides whether (current -> target) is legal for role, and
// whether the supplied reason satisfies the rule. Pure function; the
// document's own row is the only place state is stored.
func Transition(current, target State, role Role, reason string) (Effect, error) {
	rule, ok := transitionTable[transitionKey{current, target}]
	if !ok {
		return Effect{}, apperror.NewIllegalTransition(string(current), string(target))
	}
	if !rule.allows(role) {
		return Effect{}, apperror.NewUnauthorizedRole(string(role), string(current), string(target))
	}
	if rule.RequiresReason && strings.TrimSpace(reason) == "" {
		return Effect{}, apperror.NewReasonRequired(string(current), string(target))
	}
	return Effect{
		RequiresApproval: rule.RequiresApproval,
		RequiresReversal: rule.TriggersReversal,
	}, nil
}

// AllowedTargets enumerates the states role may move a document to from
// current. Empty for terminal states or unauthorized roles.
func AllowedTargets(current State, role Role) []State {
	var targets []State
	for _, target := range AllStates() {
		rule, ok := transitionTable[transitionKey{current, target}]
		if ok && rule.allows(role) {
			targets = append(targets, target)
		}
	}
	return targets
}
