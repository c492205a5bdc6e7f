package lifecycle

import (
	"errors"
	"testing"

	"github.com/planvote/planvote/internal/types"
)

func TestDefaultIsDeclared(t *testing.T) {
	for _, kind := range types.Kinds() {
		def := Default(kind)
		if def == "" {
			t.Fatalf("kind %s has no default status", kind)
		}
		if !IsValid(kind, def) {
			t.Errorf("default %q for kind %s is not a declared state", def, kind)
		}
	}
}

func TestDetailsRoundTrip(t *testing.T) {
	for _, kind := range types.Kinds() {
		for _, s := range States(kind) {
			d := Details(kind, s.Value)
			if d.Value != s.Value {
				t.Errorf("%s/%s: Details().Value = %q, want %q", kind, s.Value, d.Value, s.Value)
			}
			if d.Label == "" || d.Color == "" {
				t.Errorf("%s/%s: empty label or color", kind, s.Value)
			}
		}
	}
}

func TestDetailsUnknownFallback(t *testing.T) {
	d := Details(types.KindFeature, "on-hold")
	if d.Value != "on-hold" {
		t.Errorf("Value = %q, want raw token preserved", d.Value)
	}
	if d.Label != "On hold" {
		t.Errorf("Label = %q, want humanized %q", d.Label, "On hold")
	}
	if d.Color != "gray" {
		t.Errorf("Color = %q, want gray fallback", d.Color)
	}

	d = Details(types.KindFeature, "")
	if d.Label != "Unknown" {
		t.Errorf("empty status Label = %q, want Unknown", d.Label)
	}
}

func TestFeatureTransitionTable(t *testing.T) {
	tests := []struct {
		current types.Status
		want    []types.Status
	}{
		{types.FeatureInPlanning, []types.Status{types.FeatureApproved, types.FeatureRejected, types.FeatureObsolete}},
		{types.FeatureApproved, []types.Status{types.FeatureImplemented, types.FeatureObsolete, types.FeatureArchived}},
		{types.FeatureImplemented, []types.Status{types.FeatureArchived}},
		{types.FeatureRejected, []types.Status{types.FeatureObsolete, types.FeatureArchived}},
		{types.FeatureObsolete, []types.Status{types.FeatureArchived}},
		{types.FeatureArchived, []types.Status{types.FeatureDeleted}},
		{types.FeatureDeleted, nil}, // terminal
	}

	for _, tt := range tests {
		got := Allowed(types.KindFeature, tt.current)
		if len(got) != len(tt.want) {
			t.Errorf("Allowed(feature, %s) = %v, want %v", tt.current, got, tt.want)
			continue
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("Allowed(feature, %s)[%d] = %s, want %s", tt.current, i, got[i], tt.want[i])
			}
		}
	}
}

func TestLinearChains(t *testing.T) {
	// Project and Planning are strictly linear; each state has at most
	// one successor and the last state is terminal.
	chains := map[types.EntityKind][]types.Status{
		types.KindProject:  {types.ProjectInPlanning, types.ProjectInRealization, types.ProjectInApproval, types.ProjectClosed},
		types.KindPlanning: {types.PlanningInPlanning, types.PlanningInExecution, types.PlanningCompleted},
	}
	for kind, chain := range chains {
		for i, cur := range chain {
			got := Allowed(kind, cur)
			if i == len(chain)-1 {
				if len(got) != 0 {
					t.Errorf("%s/%s is last in chain but has successors %v", kind, cur, got)
				}
				continue
			}
			if len(got) != 1 || got[0] != chain[i+1] {
				t.Errorf("Allowed(%s, %s) = %v, want [%s]", kind, cur, got, chain[i+1])
			}
		}
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		kind    types.EntityKind
		current types.Status
		target  types.Status
		wantErr error
	}{
		{"feature legal move", types.KindFeature, types.FeatureInPlanning, types.FeatureApproved, nil},
		{"feature no-op", types.KindFeature, types.FeatureApproved, types.FeatureApproved, nil},
		{"feature skip ahead", types.KindFeature, types.FeatureInPlanning, types.FeatureArchived, ErrInvalidTransition},
		{"feature backward", types.KindFeature, types.FeatureApproved, types.FeatureInPlanning, ErrInvalidTransition},
		{"feature unknown target", types.KindFeature, types.FeatureInPlanning, "on-hold", ErrUnknownState},
		{"commitment no backward", types.KindCommitment, types.CommitmentAccepted, types.CommitmentSuggested, ErrInvalidTransition},
		{"commitment fan-out short", types.KindCommitment, types.CommitmentSuggested, types.CommitmentCompleted, nil},
		{"archived to deleted", types.KindFeature, types.FeatureArchived, types.FeatureDeleted, nil},
		{"deleted is terminal", types.KindFeature, types.FeatureDeleted, types.FeatureApproved, ErrInvalidTransition},
		{"project linear", types.KindProject, types.ProjectInPlanning, types.ProjectInRealization, nil},
		{"project skip", types.KindProject, types.ProjectInPlanning, types.ProjectClosed, ErrInvalidTransition},
		{"unknown kind", "epic", "open", "closed", ErrUnknownKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanTransition(tt.kind, tt.current, tt.target)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("CanTransition() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CanTransition() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// Every declared transition target must itself be a declared state, and
// transition sources must be declared too. Guards against typos when
// the tables change.
func TestTransitionTableClosed(t *testing.T) {
	for _, kind := range types.Kinds() {
		for _, s := range States(kind) {
			for _, nxt := range Allowed(kind, s.Value) {
				if !IsValid(kind, nxt) {
					t.Errorf("%s: transition %s → %s targets undeclared state", kind, s.Value, nxt)
				}
			}
		}
	}
}

func TestHumanize(t *testing.T) {
	tests := []struct {
		in   types.Status
		want string
	}{
		{"in-planning", "In planning"},
		{"on_hold", "On hold"},
		{"x", "X"},
		{"", "Unknown"},
	}
	for _, tt := range tests {
		if got := humanize(tt.in); got != tt.want {
			t.Errorf("humanize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
