// Package lifecycle is the single source of truth for entity status
// state machines: which states exist per entity kind, the default for
// new entities, the legal transitions, and presentation metadata.
//
// Statuses live here as data, not as one type per state. Kinds share a
// single transition checker instead of per-entity mapping helpers, and
// status values stay plain string tokens end to end; the State shape
// exists only for display at the boundary.
package lifecycle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/planvote/planvote/internal/types"
)

// Sentinel errors for transition validation
var (
	// ErrInvalidTransition indicates the requested status change is not
	// declared in the kind's transition table and is not a no-op.
	ErrInvalidTransition = errors.New("status transition not allowed")

	// ErrUnknownState indicates a status value that is not declared for
	// the entity kind. Write paths reject it; display paths degrade to
	// Details' fallback instead.
	ErrUnknownState = errors.New("unknown status value")

	// ErrUnknownKind indicates an entity kind with no state machine.
	ErrUnknownKind = errors.New("unknown entity kind")
)

// State carries the presentation shape of one status value.
type State struct {
	Value types.Status `json:"value"`
	Label string       `json:"label"`
	Color string       `json:"color"`
}

// machine is one kind's state machine: declared states in display
// order, the default for new entities, and the permitted next states
// per current state. A state with no outgoing edges is terminal.
type machine struct {
	states      []State
	def         types.Status
	transitions map[types.Status][]types.Status
}

var machines = map[types.EntityKind]machine{
	types.KindFeature: {
		states: []State{
			{Value: types.FeatureInPlanning, Label: "In planning", Color: "blue"},
			{Value: types.FeatureApproved, Label: "Approved", Color: "green"},
			{Value: types.FeatureRejected, Label: "Rejected", Color: "red"},
			{Value: types.FeatureImplemented, Label: "Implemented", Color: "purple"},
			{Value: types.FeatureObsolete, Label: "Obsolete", Color: "yellow"},
			{Value: types.FeatureArchived, Label: "Archived", Color: "gray"},
			{Value: types.FeatureDeleted, Label: "Deleted", Color: "gray"},
		},
		def: types.FeatureInPlanning,
		transitions: map[types.Status][]types.Status{
			types.FeatureInPlanning:  {types.FeatureApproved, types.FeatureRejected, types.FeatureObsolete},
			types.FeatureApproved:    {types.FeatureImplemented, types.FeatureObsolete, types.FeatureArchived},
			types.FeatureImplemented: {types.FeatureArchived},
			types.FeatureRejected:    {types.FeatureObsolete, types.FeatureArchived},
			types.FeatureObsolete:    {types.FeatureArchived},
			types.FeatureArchived:    {types.FeatureDeleted},
		},
	},
	types.KindProject: {
		states: []State{
			{Value: types.ProjectInPlanning, Label: "In planning", Color: "blue"},
			{Value: types.ProjectInRealization, Label: "In realization", Color: "yellow"},
			{Value: types.ProjectInApproval, Label: "In approval", Color: "purple"},
			{Value: types.ProjectClosed, Label: "Closed", Color: "green"},
		},
		def: types.ProjectInPlanning,
		transitions: map[types.Status][]types.Status{
			types.ProjectInPlanning:    {types.ProjectInRealization},
			types.ProjectInRealization: {types.ProjectInApproval},
			types.ProjectInApproval:    {types.ProjectClosed},
		},
	},
	types.KindPlanning: {
		states: []State{
			{Value: types.PlanningInPlanning, Label: "In planning", Color: "blue"},
			{Value: types.PlanningInExecution, Label: "In execution", Color: "yellow"},
			{Value: types.PlanningCompleted, Label: "Completed", Color: "green"},
		},
		def: types.PlanningInPlanning,
		transitions: map[types.Status][]types.Status{
			types.PlanningInPlanning:  {types.PlanningInExecution},
			types.PlanningInExecution: {types.PlanningCompleted},
		},
	},
	types.KindCommitment: {
		states: []State{
			{Value: types.CommitmentSuggested, Label: "Suggested", Color: "blue"},
			{Value: types.CommitmentAccepted, Label: "Accepted", Color: "green"},
			{Value: types.CommitmentCompleted, Label: "Completed", Color: "gray"},
		},
		def: types.CommitmentSuggested,
		transitions: map[types.Status][]types.Status{
			types.CommitmentSuggested: {types.CommitmentAccepted, types.CommitmentCompleted},
			types.CommitmentAccepted:  {types.CommitmentCompleted},
		},
	},
}

// Default returns the initial status for new entities of the kind.
func Default(kind types.EntityKind) types.Status {
	return machines[kind].def
}

// States returns the declared states of the kind in display order.
// Returns nil for unknown kinds.
func States(kind types.EntityKind) []State {
	m, ok := machines[kind]
	if !ok {
		return nil
	}
	out := make([]State, len(m.states))
	copy(out, m.states)
	return out
}

// IsValid reports whether value is a declared state for the kind.
func IsValid(kind types.EntityKind, value types.Status) bool {
	_, ok := Lookup(kind, value)
	return ok
}

// Lookup resolves a status value to its State, with ok=false when the
// value is not declared for the kind.
func Lookup(kind types.EntityKind, value types.Status) (State, bool) {
	m, ok := machines[kind]
	if !ok {
		return State{}, false
	}
	for _, s := range m.states {
		if s.Value == value {
			return s, true
		}
	}
	return State{}, false
}

// Allowed returns the permitted next states from current. The result is
// empty when current is terminal or unknown.
func Allowed(kind types.EntityKind, current types.Status) []types.Status {
	m, ok := machines[kind]
	if !ok {
		return nil
	}
	next := m.transitions[current]
	out := make([]types.Status, len(next))
	copy(out, next)
	return out
}

// CanTransition validates a status change without applying it. It
// returns nil when target is reachable from current or equals current
// (no-op transitions are always accepted). Unknown targets fail with
// ErrUnknownState, undeclared moves with ErrInvalidTransition.
func CanTransition(kind types.EntityKind, current, target types.Status) error {
	if _, ok := machines[kind]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	if !IsValid(kind, target) {
		return fmt.Errorf("%w: %q is not a %s status", ErrUnknownState, target, kind)
	}
	if target == current {
		return nil
	}
	for _, next := range Allowed(kind, current) {
		if next == target {
			return nil
		}
	}
	return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, current, target)
}

// IsNoOp reports whether a transition request would change nothing.
// No-op transitions succeed but must not produce history records.
func IsNoOp(current, target types.Status) bool {
	return current == target
}

// Details normalizes any status value, declared or not, into the
// 3-field presentation shape. Unknown values degrade to a humanized
// label and gray color instead of failing: read paths must stay
// resilient even when storage holds a foreign token.
func Details(kind types.EntityKind, value types.Status) State {
	if s, ok := Lookup(kind, value); ok {
		return s
	}
	return State{Value: value, Label: humanize(value), Color: "gray"}
}

// humanize turns a raw token like "on-hold" into "On hold".
func humanize(value types.Status) string {
	s := strings.TrimSpace(string(value))
	if s == "" {
		return "Unknown"
	}
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	return strings.ToUpper(s[:1]) + s[1:]
}
