package service

import (
	"context"
	"fmt"

	"github.com/planvote/planvote/internal/storage"
	"github.com/planvote/planvote/internal/tenant"
	"github.com/planvote/planvote/internal/types"
)

// SuggestFeature ties a feature into a planning as a suggested
// commitment.
func (s *Service) SuggestFeature(ctx context.Context, tc tenant.Context, planningID, featureID string) (*types.Commitment, error) {
	if !tenant.CanCreate(tc) {
		return nil, fmt.Errorf("suggest feature: %w", ErrPermissionDenied)
	}
	c := &types.Commitment{PlanningID: planningID, FeatureID: featureID}
	if err := s.store.CreateCommitment(ctx, tc, c); err != nil {
		return nil, err
	}
	return c, nil
}

// AcceptCommitments accepts a batch of suggested commitments in one
// transaction: either every acceptance lands or none does.
func (s *Service) AcceptCommitments(ctx context.Context, tc tenant.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		for _, id := range ids {
			if err := tx.TransitionStatus(ctx, tc, types.KindCommitment, id, types.CommitmentAccepted); err != nil {
				return fmt.Errorf("accept commitment %s: %w", id, err)
			}
		}
		return nil
	})
}

// TransitionCommitment moves one commitment along its lifecycle.
func (s *Service) TransitionCommitment(ctx context.Context, tc tenant.Context, id string, target types.Status) error {
	return s.store.TransitionStatus(ctx, tc, types.KindCommitment, id, target)
}

// GetCommitment fetches one commitment visible to the actor.
func (s *Service) GetCommitment(ctx context.Context, tc tenant.Context, id string) (*types.Commitment, error) {
	return s.store.GetCommitment(ctx, tc, id)
}

// ListCommitments lists a planning's commitments.
func (s *Service) ListCommitments(ctx context.Context, tc tenant.Context, planningID string) ([]*types.Commitment, error) {
	if !tenant.CanViewAny(tc) {
		return nil, fmt.Errorf("list commitments: %w", ErrPermissionDenied)
	}
	return s.store.ListCommitments(ctx, tc, planningID)
}
