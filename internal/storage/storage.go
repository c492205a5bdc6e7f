// Package storage provides shared types for planvote persistence.
//
// The concrete implementation lives in the sqlite sub-package. This
// package holds the interface and sentinel errors referenced by both
// the implementation and its consumers (services, cmd/pv).
//
// Every method that touches a tenant-scoped entity takes an explicit
// tenant.Context. An unresolved context makes reads return zero rows
// and creates fail with ErrNoTenant; cross-tenant rows are unreachable
// by construction, not by caller discipline.
package storage

import (
	"context"
	"errors"

	"github.com/planvote/planvote/internal/tenant"
	"github.com/planvote/planvote/internal/types"
)

// ErrNotFound is returned when a requested entity does not exist in the
// database, or exists under another tenant; callers cannot tell the
// two apart.
var ErrNotFound = errors.New("not found")

// ErrNoTenant is returned when a scoped write arrives without a
// resolvable tenant and the entity carries no pre-assigned tenant id.
var ErrNoTenant = errors.New("no tenant context")

// ErrConflict is returned when a conditional status update loses a race:
// the row's current status no longer matches what the caller read.
var ErrConflict = errors.New("concurrent status change")

// ErrDuplicate is returned on unique-constraint violations such as a
// repeated feature dependency edge.
var ErrDuplicate = errors.New("already exists")

// Storage is the interface satisfied by *sqlite.Store. Consumers depend
// on this interface rather than the concrete type so that alternative
// implementations (mocks, proxies) can be substituted.
type Storage interface {
	// Identity (unscoped: tenants and users are the ownership roots)
	CreateTenant(ctx context.Context, t *types.Tenant) error
	GetTenant(ctx context.Context, id string) (*types.Tenant, error)
	CreateUser(ctx context.Context, u *types.User) error
	GetUser(ctx context.Context, idOrEmail string) (*types.User, error)
	SetCurrentTenant(ctx context.Context, userID, tenantID string) error

	// Projects
	CreateProject(ctx context.Context, tc tenant.Context, p *types.Project) error
	GetProject(ctx context.Context, tc tenant.Context, id string) (*types.Project, error)
	ListProjects(ctx context.Context, tc tenant.Context) ([]*types.Project, error)

	// Features
	CreateFeature(ctx context.Context, tc tenant.Context, f *types.Feature) error
	GetFeature(ctx context.Context, tc tenant.Context, id string) (*types.Feature, error)
	ListFeatures(ctx context.Context, tc tenant.Context, filter types.FeatureFilter) ([]*types.Feature, error)
	UpdateFeature(ctx context.Context, tc tenant.Context, id string, updates map[string]interface{}) error
	AddFeatureDependency(ctx context.Context, tc tenant.Context, dep *types.FeatureDependency) error
	GetFeatureDependencies(ctx context.Context, tc tenant.Context, featureID string) ([]*types.Feature, error)
	AddComment(ctx context.Context, tc tenant.Context, c *types.Comment) error
	GetComments(ctx context.Context, tc tenant.Context, featureID string) ([]*types.Comment, error)

	// Plannings
	CreatePlanning(ctx context.Context, tc tenant.Context, p *types.Planning) error
	GetPlanning(ctx context.Context, tc tenant.Context, id string) (*types.Planning, error)
	ListPlannings(ctx context.Context, tc tenant.Context, projectID string) ([]*types.Planning, error)

	// Commitments
	CreateCommitment(ctx context.Context, tc tenant.Context, c *types.Commitment) error
	GetCommitment(ctx context.Context, tc tenant.Context, id string) (*types.Commitment, error)
	ListCommitments(ctx context.Context, tc tenant.Context, planningID string) ([]*types.Commitment, error)

	// Status transitions. Target must be declared and reachable per the
	// lifecycle tables; a no-op target succeeds silently. The update is
	// conditional on the current status (compare-and-swap): a lost race
	// surfaces ErrConflict. Every realized transition appends one
	// status_history row in the same transaction.
	TransitionStatus(ctx context.Context, tc tenant.Context, kind types.EntityKind, id string, target types.Status) error

	// Votes and estimations
	UpsertVote(ctx context.Context, tc tenant.Context, v *types.Vote) error
	ListVotes(ctx context.Context, tc tenant.Context, planningID string) ([]*types.Vote, error)
	UpsertEstimation(ctx context.Context, tc tenant.Context, e *types.Estimation) error
	ListEstimations(ctx context.Context, tc tenant.Context, planningID string) ([]*types.Estimation, error)
	GetEstimationHistory(ctx context.Context, tc tenant.Context, estimationID string) ([]*types.EstimationHistory, error)

	// Invitations
	CreateInvitation(ctx context.Context, tc tenant.Context, inv *types.Invitation) error
	GetInvitation(ctx context.Context, tc tenant.Context, id string) (*types.Invitation, error)

	// Audit trail
	GetStatusHistory(ctx context.Context, tc tenant.Context, kind types.EntityKind, entityID string) ([]*types.StatusHistory, error)

	// Statistics
	GetStatistics(ctx context.Context, tc tenant.Context) (*types.Statistics, error)

	// RepairStatuses is the maintenance pass of the status engine: scan
	// every row of the kind across all tenants and coerce missing or
	// undeclared statuses to the kind's default, appending history rows
	// for each correction. Privileged: not tenant-scoped.
	RepairStatuses(ctx context.Context, kind types.EntityKind) ([]*types.RepairResult, error)

	// Transactions
	RunInTransaction(ctx context.Context, fn func(tx Transaction) error) error

	// Lifecycle
	Close() error
}

// Transaction exposes the subset of operations available inside
// RunInTransaction. All calls share one database transaction: any error
// from the callback rolls everything back, a nil return commits.
//
// The invitation acceptance flow is the canonical user: membership
// upsert, accepted_at stamp and current-tenant switch must commit
// together or not at all.
type Transaction interface {
	GetUser(ctx context.Context, idOrEmail string) (*types.User, error)
	// GetInvitationByID is deliberately unscoped: the invitation id is
	// the capability, and the accepting user is not yet a member of the
	// inviting tenant.
	GetInvitationByID(ctx context.Context, id string) (*types.Invitation, error)
	MarkInvitationAccepted(ctx context.Context, id string) error
	UpsertMembership(ctx context.Context, userID, tenantID string) error
	SetCurrentTenant(ctx context.Context, userID, tenantID string) error
	SetHomeTenant(ctx context.Context, userID, tenantID string) error

	CreateFeature(ctx context.Context, tc tenant.Context, f *types.Feature) error
	CreateCommitment(ctx context.Context, tc tenant.Context, c *types.Commitment) error
	TransitionStatus(ctx context.Context, tc tenant.Context, kind types.EntityKind, id string, target types.Status) error
}
