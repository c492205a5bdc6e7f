// Package planvote provides a minimal public API for embedding the
// WSJF planner programmatically.
//
// Most integrations should use the pv CLI. This package exports the
// essential types and constructors for Go programs that want to drive
// the storage and service layers directly.
package planvote

import (
	"context"

	"github.com/planvote/planvote/internal/service"
	"github.com/planvote/planvote/internal/storage"
	"github.com/planvote/planvote/internal/storage/sqlite"
	"github.com/planvote/planvote/internal/tenant"
	"github.com/planvote/planvote/internal/types"
)

// Core entity types
type (
	Tenant     = types.Tenant
	User       = types.User
	Project    = types.Project
	Feature    = types.Feature
	Planning   = types.Planning
	Commitment = types.Commitment
	Vote       = types.Vote
	Estimation = types.Estimation
	Invitation = types.Invitation

	Status       = types.Status
	EntityKind   = types.EntityKind
	Dimension    = types.Dimension
	FeatureScore = types.FeatureScore
)

// Entity kind constants
const (
	KindFeature    = types.KindFeature
	KindProject    = types.KindProject
	KindPlanning   = types.KindPlanning
	KindCommitment = types.KindCommitment
)

// Vote dimension constants
const (
	DimBusinessValue   = types.DimBusinessValue
	DimTimeCriticality = types.DimTimeCriticality
	DimRiskOpportunity = types.DimRiskOpportunity
)

// Storage is the persistence interface behind Service.
type Storage = storage.Storage

// Service orchestrates lifecycle, isolation and WSJF semantics on top
// of a Storage.
type Service = service.Service

// TenantContext scopes every read and write to one tenant.
type TenantContext = tenant.Context

// TenantFor resolves the tenant scope for an acting user.
func TenantFor(u *User) TenantContext {
	return tenant.For(u)
}

// Open opens (creating if needed) a planvote SQLite database and
// returns a Service bound to it. Callers own the Storage and should
// close it when done.
func Open(ctx context.Context, dbPath string) (*Service, Storage, error) {
	store, err := sqlite.New(ctx, dbPath)
	if err != nil {
		return nil, nil, err
	}
	return service.New(store), store, nil
}
