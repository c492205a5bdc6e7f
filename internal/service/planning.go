package service

import (
	"context"
	"fmt"

	"github.com/planvote/planvote/internal/tenant"
	"github.com/planvote/planvote/internal/types"
)

// CreatePlanning creates a planning session for a project of the
// actor's tenant.
func (s *Service) CreatePlanning(ctx context.Context, tc tenant.Context, p *types.Planning) error {
	if !tenant.CanCreate(tc) {
		return fmt.Errorf("create planning: %w", ErrPermissionDenied)
	}
	return s.store.CreatePlanning(ctx, tc, p)
}

// GetPlanning fetches one planning visible to the actor.
func (s *Service) GetPlanning(ctx context.Context, tc tenant.Context, id string) (*types.Planning, error) {
	return s.store.GetPlanning(ctx, tc, id)
}

// ListPlannings lists plannings, optionally narrowed to one project.
func (s *Service) ListPlannings(ctx context.Context, tc tenant.Context, projectID string) ([]*types.Planning, error) {
	if !tenant.CanViewAny(tc) {
		return nil, fmt.Errorf("list plannings: %w", ErrPermissionDenied)
	}
	return s.store.ListPlannings(ctx, tc, projectID)
}

// TransitionPlanning moves a planning along its lifecycle.
func (s *Service) TransitionPlanning(ctx context.Context, tc tenant.Context, id string, target types.Status) error {
	return s.store.TransitionStatus(ctx, tc, types.KindPlanning, id, target)
}
