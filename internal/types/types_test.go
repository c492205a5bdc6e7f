package types

import (
	"strings"
	"testing"
)

func TestEntityKindIsValid(t *testing.T) {
	valid := []EntityKind{KindFeature, KindProject, KindPlanning, KindCommitment}
	for _, k := range valid {
		if !k.IsValid() {
			t.Errorf("expected kind %q to be valid", k)
		}
	}
	invalid := []EntityKind{"", "vote", "Feature", "FEATURE"}
	for _, k := range invalid {
		if k.IsValid() {
			t.Errorf("expected kind %q to be invalid", k)
		}
	}
}

func TestDimensionIsValid(t *testing.T) {
	for _, d := range Dimensions() {
		if !d.IsValid() {
			t.Errorf("expected dimension %q to be valid", d)
		}
	}
	invalid := []Dimension{"", "business_value", "BusinessValue", "effort"}
	for _, d := range invalid {
		if d.IsValid() {
			t.Errorf("expected dimension %q to be invalid", d)
		}
	}
}

func TestFeatureValidate(t *testing.T) {
	tests := []struct {
		name    string
		feature Feature
		wantErr string
	}{
		{
			name:    "valid",
			feature: Feature{Name: "SSO login", ProjectID: "p1"},
		},
		{
			name:    "missing name",
			feature: Feature{ProjectID: "p1"},
			wantErr: "name is required",
		},
		{
			name:    "whitespace name",
			feature: Feature{Name: "   ", ProjectID: "p1"},
			wantErr: "name is required",
		},
		{
			name:    "name too long",
			feature: Feature{Name: strings.Repeat("x", 256), ProjectID: "p1"},
			wantErr: "255 characters or less",
		},
		{
			name:    "missing project",
			feature: Feature{Name: "SSO login"},
			wantErr: "project_id is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.feature.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestVoteValidate(t *testing.T) {
	base := Vote{PlanningID: "pl1", FeatureID: "f1", VoterID: "u1", Dimension: DimBusinessValue, Value: 5}

	if err := base.Validate(); err != nil {
		t.Fatalf("valid vote rejected: %v", err)
	}

	v := base
	v.Value = 0
	if err := v.Validate(); err == nil {
		t.Error("expected error for value below range")
	}

	v = base
	v.Value = 11
	if err := v.Validate(); err == nil {
		t.Error("expected error for value above range")
	}

	v = base
	v.Dimension = "effort"
	if err := v.Validate(); err == nil {
		t.Error("expected error for unknown dimension")
	}

	v = base
	v.VoterID = ""
	if err := v.Validate(); err == nil {
		t.Error("expected error for missing voter")
	}
}

func TestEstimationValidateComponents(t *testing.T) {
	e := Estimation{
		PlanningID: "pl1", FeatureID: "f1", EstimatorID: "u1", Value: 8,
		Components: []*EstimationComponent{
			{Name: "backend", Value: 5},
			{Name: "frontend", Value: 3},
		},
	}
	if err := e.Validate(); err != nil {
		t.Fatalf("valid estimation rejected: %v", err)
	}

	e.Components[1].Value = 4 // sum 9 != 8
	if err := e.Validate(); err == nil {
		t.Error("expected error when components do not sum to value")
	}

	e.Components[1].Value = 3
	e.Components[0].Name = ""
	if err := e.Validate(); err == nil {
		t.Error("expected error for unnamed component")
	}

	e = Estimation{PlanningID: "pl1", FeatureID: "f1", EstimatorID: "u1", Value: 0}
	if err := e.Validate(); err == nil {
		t.Error("expected error for non-positive value")
	}
}

func TestStatusTokensAreWireFormat(t *testing.T) {
	// Status values are persisted verbatim; they must stay lowercase
	// hyphenated tokens.
	all := []Status{
		FeatureInPlanning, FeatureApproved, FeatureRejected, FeatureImplemented,
		FeatureObsolete, FeatureArchived, FeatureDeleted,
		ProjectInRealization, ProjectInApproval, ProjectClosed,
		PlanningInExecution, PlanningCompleted,
		CommitmentSuggested, CommitmentAccepted, CommitmentCompleted,
	}
	for _, s := range all {
		if string(s) != strings.ToLower(string(s)) {
			t.Errorf("status %q is not lowercase", s)
		}
		if strings.ContainsAny(string(s), " _") {
			t.Errorf("status %q contains spaces or underscores", s)
		}
	}
}
