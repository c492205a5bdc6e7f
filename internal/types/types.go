// Package types defines core data structures for the planvote WSJF planner.
package types

import (
	"fmt"
	"strings"
	"time"
)

// Status is the canonical lifecycle value of an entity. Statuses are
// persisted and serialized as lowercase hyphenated tokens (e.g.
// "in-planning", never "InPlanning"); the string is the wire format.
type Status string

// Feature lifecycle statuses
const (
	FeatureInPlanning  Status = "in-planning"
	FeatureApproved    Status = "approved"
	FeatureRejected    Status = "rejected"
	FeatureImplemented Status = "implemented"
	FeatureObsolete    Status = "obsolete"
	FeatureArchived    Status = "archived"
	FeatureDeleted     Status = "deleted"
)

// Project lifecycle statuses
const (
	ProjectInPlanning    Status = "in-planning"
	ProjectInRealization Status = "in-realization"
	ProjectInApproval    Status = "in-approval"
	ProjectClosed        Status = "closed"
)

// Planning lifecycle statuses
const (
	PlanningInPlanning  Status = "in-planning"
	PlanningInExecution Status = "in-execution"
	PlanningCompleted   Status = "completed"
)

// Commitment lifecycle statuses
const (
	CommitmentSuggested Status = "suggested"
	CommitmentAccepted  Status = "accepted"
	CommitmentCompleted Status = "completed"
)

// EntityKind identifies which lifecycle state machine governs an entity.
type EntityKind string

// Entity kind constants
const (
	KindFeature    EntityKind = "feature"
	KindProject    EntityKind = "project"
	KindPlanning   EntityKind = "planning"
	KindCommitment EntityKind = "commitment"
)

// IsValid checks if the entity kind value is valid
func (k EntityKind) IsValid() bool {
	switch k {
	case KindFeature, KindProject, KindPlanning, KindCommitment:
		return true
	}
	return false
}

// Kinds returns all lifecycle-governed entity kinds in stable order.
func Kinds() []EntityKind {
	return []EntityKind{KindFeature, KindProject, KindPlanning, KindCommitment}
}

// Tenant is an isolated ownership boundary. Every scoped entity belongs
// to exactly one tenant.
type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// User is the acting principal. Users are global identities, not
// tenant-scoped rows; tenant resolution reads CurrentTenantID first and
// falls back to TenantID (the home tenant assigned at registration).
type User struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	TenantID        *string   `json:"tenant_id,omitempty"`
	CurrentTenantID *string   `json:"current_tenant_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Project groups features and plannings under one initiative.
type Project struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Status      Status    `json:"status,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate checks if the project has valid field values
func (p *Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if len(p.Name) > 255 {
		return fmt.Errorf("name must be 255 characters or less (got %d)", len(p.Name))
	}
	return nil
}

// Feature is a plannable unit of work inside a project.
type Feature struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	ProjectID   string    `json:"project_id"`
	JiraKey     string    `json:"jira_key,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	RequesterID string    `json:"requester_id,omitempty"`
	Status      Status    `json:"status,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate checks if the feature has valid field values
func (f *Feature) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if len(f.Name) > 255 {
		return fmt.Errorf("name must be 255 characters or less (got %d)", len(f.Name))
	}
	if f.ProjectID == "" {
		return fmt.Errorf("project_id is required")
	}
	return nil
}

// Planning is a prioritization session over a project's features.
type Planning struct {
	ID        string     `json:"id"`
	TenantID  string     `json:"tenant_id"`
	ProjectID string     `json:"project_id"`
	Title     string     `json:"title"`
	PlannedAt *time.Time `json:"planned_at,omitempty"`
	Status    Status     `json:"status,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Validate checks if the planning has valid field values
func (p *Planning) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if p.ProjectID == "" {
		return fmt.Errorf("project_id is required")
	}
	return nil
}

// Commitment ties a feature into a planning session. It is the unit
// that moves suggested → accepted → completed.
type Commitment struct {
	ID         string    `json:"id"`
	TenantID   string    `json:"tenant_id"`
	PlanningID string    `json:"planning_id"`
	FeatureID  string    `json:"feature_id"`
	Status     Status    `json:"status,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Validate checks if the commitment has valid field values
func (c *Commitment) Validate() error {
	if c.PlanningID == "" {
		return fmt.Errorf("planning_id is required")
	}
	if c.FeatureID == "" {
		return fmt.Errorf("feature_id is required")
	}
	return nil
}

// Dimension is a WSJF voting axis.
type Dimension string

// Vote dimension constants
const (
	DimBusinessValue   Dimension = "business-value"
	DimTimeCriticality Dimension = "time-criticality"
	DimRiskOpportunity Dimension = "risk-opportunity"
)

// IsValid checks if the dimension value is valid
func (d Dimension) IsValid() bool {
	switch d {
	case DimBusinessValue, DimTimeCriticality, DimRiskOpportunity:
		return true
	}
	return false
}

// Dimensions returns all vote dimensions in cost-of-delay order.
func Dimensions() []Dimension {
	return []Dimension{DimBusinessValue, DimTimeCriticality, DimRiskOpportunity}
}

// Vote is one stakeholder's rating of a feature on one dimension within
// a planning. Re-voting upserts on (planning, feature, voter, dimension).
type Vote struct {
	ID         string    `json:"id"`
	TenantID   string    `json:"tenant_id"`
	PlanningID string    `json:"planning_id"`
	FeatureID  string    `json:"feature_id"`
	VoterID    string    `json:"voter_id"`
	Dimension  Dimension `json:"dimension"`
	Value      int       `json:"value"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Validate checks if the vote has valid field values
func (v *Vote) Validate() error {
	if v.PlanningID == "" || v.FeatureID == "" || v.VoterID == "" {
		return fmt.Errorf("planning_id, feature_id and voter_id are required")
	}
	if !v.Dimension.IsValid() {
		return fmt.Errorf("invalid dimension: %s", v.Dimension)
	}
	if v.Value < 1 || v.Value > 10 {
		return fmt.Errorf("value must be between 1 and 10 (got %d)", v.Value)
	}
	return nil
}

// Estimation is one estimator's job-size figure for a feature within a
// planning, optionally broken down into named components.
type Estimation struct {
	ID          string                 `json:"id"`
	TenantID    string                 `json:"tenant_id"`
	PlanningID  string                 `json:"planning_id"`
	FeatureID   string                 `json:"feature_id"`
	EstimatorID string                 `json:"estimator_id"`
	Value       int                    `json:"value"`
	Components  []*EstimationComponent `json:"components,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// Validate checks if the estimation has valid field values. Components,
// when present, must sum to the estimation value.
func (e *Estimation) Validate() error {
	if e.PlanningID == "" || e.FeatureID == "" || e.EstimatorID == "" {
		return fmt.Errorf("planning_id, feature_id and estimator_id are required")
	}
	if e.Value < 1 {
		return fmt.Errorf("value must be positive (got %d)", e.Value)
	}
	if len(e.Components) > 0 {
		sum := 0
		for _, c := range e.Components {
			if strings.TrimSpace(c.Name) == "" {
				return fmt.Errorf("component name is required")
			}
			if c.Value < 0 {
				return fmt.Errorf("component %q value cannot be negative", c.Name)
			}
			sum += c.Value
		}
		if sum != e.Value {
			return fmt.Errorf("components sum to %d, estimation value is %d", sum, e.Value)
		}
	}
	return nil
}

// EstimationComponent is a named share of an estimation's value.
type EstimationComponent struct {
	ID           string `json:"id"`
	EstimationID string `json:"estimation_id"`
	TenantID     string `json:"tenant_id"`
	Name         string `json:"name"`
	Value        int    `json:"value"`
}

// EstimationHistory is an append-only record of an estimation value
// change. Written reactively on upsert, never by callers.
type EstimationHistory struct {
	ID           int64     `json:"id"`
	EstimationID string    `json:"estimation_id"`
	TenantID     string    `json:"tenant_id"`
	OldValue     int       `json:"old_value"`
	NewValue     int       `json:"new_value"`
	ChangedAt    time.Time `json:"changed_at"`
}

// FeatureDependency is a depends-on edge between two features of the
// same tenant.
type FeatureDependency struct {
	FeatureID   string    `json:"feature_id"`
	DependsOnID string    `json:"depends_on_id"`
	TenantID    string    `json:"tenant_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Comment is a flat remark on a feature.
type Comment struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	FeatureID string    `json:"feature_id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Invitation invites an email address into a tenant. Acceptance is a
// single atomic flow: membership upsert + accepted_at stamp + current
// tenant switch all commit together.
type Invitation struct {
	ID         string     `json:"id"`
	TenantID   string     `json:"tenant_id"`
	Email      string     `json:"email"`
	CreatedAt  time.Time  `json:"created_at"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
}

// StatusHistory is an immutable audit entry capturing one realized
// lifecycle transition (or creation, with a nil FromStatus).
type StatusHistory struct {
	ID         int64      `json:"id"`
	EntityKind EntityKind `json:"entity_kind"`
	EntityID   string     `json:"entity_id"`
	TenantID   string     `json:"tenant_id"`
	FromStatus *Status    `json:"from_status,omitempty"`
	ToStatus   Status     `json:"to_status"`
	ChangedAt  time.Time  `json:"changed_at"`
}

// FeatureFilter is used to filter feature queries
type FeatureFilter struct {
	Status        *Status
	ProjectID     string
	TitleSearch   string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	Limit         int
}

// FeatureScore is one row of a WSJF tally: cost of delay is the sum of
// the three dimension means, and the score divides it by the mean job
// size. Features with no estimation carry a zero score and rank last.
type FeatureScore struct {
	FeatureID   string  `json:"feature_id"`
	FeatureName string  `json:"feature_name"`
	CostOfDelay float64 `json:"cost_of_delay"`
	JobSize     float64 `json:"job_size"`
	Score       float64 `json:"score"`
	VoteCount   int     `json:"vote_count"`
}

// Statistics provides aggregate per-tenant metrics
type Statistics struct {
	TotalFeatures    int            `json:"total_features"`
	FeaturesByStatus map[Status]int `json:"features_by_status"`
	TotalProjects    int            `json:"total_projects"`
	TotalPlannings   int            `json:"total_plannings"`
	TotalCommitments int            `json:"total_commitments"`
	TotalVotes       int            `json:"total_votes"`
}

// RepairResult records one correction made by the status repair pass.
type RepairResult struct {
	Kind      EntityKind `json:"kind"`
	EntityID  string     `json:"entity_id"`
	TenantID  string     `json:"tenant_id"`
	OldStatus string     `json:"old_status"` // raw stored value, possibly empty or foreign
	NewStatus Status     `json:"new_status"`
}
