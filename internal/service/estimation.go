package service

import (
	"context"
	"fmt"

	"github.com/planvote/planvote/internal/tenant"
	"github.com/planvote/planvote/internal/types"
)

// Estimate records one estimator's job-size figure for a feature
// within a planning. Re-estimating replaces the previous figure and
// its component breakdown; value changes leave a history trail.
func (s *Service) Estimate(ctx context.Context, tc tenant.Context, e *types.Estimation) error {
	if !tenant.CanCreate(tc) {
		return fmt.Errorf("estimate: %w", ErrPermissionDenied)
	}
	return s.store.UpsertEstimation(ctx, tc, e)
}

// ListEstimations returns a planning's estimations with components.
func (s *Service) ListEstimations(ctx context.Context, tc tenant.Context, planningID string) ([]*types.Estimation, error) {
	if !tenant.CanViewAny(tc) {
		return nil, fmt.Errorf("list estimations: %w", ErrPermissionDenied)
	}
	return s.store.ListEstimations(ctx, tc, planningID)
}

// EstimationHistory returns an estimation's value-change trail.
func (s *Service) EstimationHistory(ctx context.Context, tc tenant.Context, estimationID string) ([]*types.EstimationHistory, error) {
	return s.store.GetEstimationHistory(ctx, tc, estimationID)
}
