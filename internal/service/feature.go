package service

import (
	"context"
	"fmt"

	"github.com/planvote/planvote/internal/tenant"
	"github.com/planvote/planvote/internal/types"
)

// CreateFeature creates a feature in the actor's tenant. The project
// must be visible to the same tenant.
func (s *Service) CreateFeature(ctx context.Context, tc tenant.Context, f *types.Feature) error {
	if !tenant.CanCreate(tc) {
		return fmt.Errorf("create feature: %w", ErrPermissionDenied)
	}
	return s.store.CreateFeature(ctx, tc, f)
}

// GetFeature fetches one feature visible to the actor.
func (s *Service) GetFeature(ctx context.Context, tc tenant.Context, id string) (*types.Feature, error) {
	return s.store.GetFeature(ctx, tc, id)
}

// ListFeatures lists features matching the filter within the actor's
// tenant.
func (s *Service) ListFeatures(ctx context.Context, tc tenant.Context, filter types.FeatureFilter) ([]*types.Feature, error) {
	if !tenant.CanViewAny(tc) {
		return nil, fmt.Errorf("list features: %w", ErrPermissionDenied)
	}
	return s.store.ListFeatures(ctx, tc, filter)
}

// UpdateFeature applies field updates to a feature. Status is not an
// updatable field; use TransitionFeature.
func (s *Service) UpdateFeature(ctx context.Context, tc tenant.Context, id string, updates map[string]interface{}) error {
	f, err := s.store.GetFeature(ctx, tc, id)
	if err != nil {
		return err
	}
	if !tenant.CanUpdate(tc, f.TenantID) {
		return fmt.Errorf("update feature: %w", ErrPermissionDenied)
	}
	return s.store.UpdateFeature(ctx, tc, id, updates)
}

// TransitionFeature moves a feature along its lifecycle.
func (s *Service) TransitionFeature(ctx context.Context, tc tenant.Context, id string, target types.Status) error {
	return s.store.TransitionStatus(ctx, tc, types.KindFeature, id, target)
}

// DeleteFeature soft-deletes a feature by driving it to the deleted
// state. The lifecycle table only admits this from archived.
func (s *Service) DeleteFeature(ctx context.Context, tc tenant.Context, id string) error {
	f, err := s.store.GetFeature(ctx, tc, id)
	if err != nil {
		return err
	}
	if !tenant.CanDelete(tc, f.TenantID) {
		return fmt.Errorf("delete feature: %w", ErrPermissionDenied)
	}
	return s.store.TransitionStatus(ctx, tc, types.KindFeature, id, types.FeatureDeleted)
}

// RestoreFeature is denied for every actor: restore is disabled at the
// policy layer.
func (s *Service) RestoreFeature(ctx context.Context, tc tenant.Context, id string) error {
	f, err := s.store.GetFeature(ctx, tc, id)
	if err != nil {
		return err
	}
	if !tenant.CanRestore(tc, f.TenantID) {
		return fmt.Errorf("restore feature: %w", ErrPermissionDenied)
	}
	return nil
}

// ForceDeleteFeature is denied for every actor: hard deletes are
// disabled at the policy layer.
func (s *Service) ForceDeleteFeature(ctx context.Context, tc tenant.Context, id string) error {
	f, err := s.store.GetFeature(ctx, tc, id)
	if err != nil {
		return err
	}
	if !tenant.CanForceDelete(tc, f.TenantID) {
		return fmt.Errorf("force delete feature: %w", ErrPermissionDenied)
	}
	return nil
}

// AddDependency records that feature depends on another feature of the
// same tenant.
func (s *Service) AddDependency(ctx context.Context, tc tenant.Context, featureID, dependsOnID string) error {
	if !tenant.CanCreate(tc) {
		return fmt.Errorf("add dependency: %w", ErrPermissionDenied)
	}
	return s.store.AddFeatureDependency(ctx, tc, &types.FeatureDependency{
		FeatureID:   featureID,
		DependsOnID: dependsOnID,
	})
}

// Dependencies returns the features a feature depends on.
func (s *Service) Dependencies(ctx context.Context, tc tenant.Context, featureID string) ([]*types.Feature, error) {
	return s.store.GetFeatureDependencies(ctx, tc, featureID)
}

// AddComment attaches a flat comment to a feature.
func (s *Service) AddComment(ctx context.Context, tc tenant.Context, featureID, authorID, body string) error {
	if !tenant.CanCreate(tc) {
		return fmt.Errorf("add comment: %w", ErrPermissionDenied)
	}
	return s.store.AddComment(ctx, tc, &types.Comment{
		FeatureID: featureID,
		AuthorID:  authorID,
		Body:      body,
	})
}

// Comments returns a feature's comments, oldest first.
func (s *Service) Comments(ctx context.Context, tc tenant.Context, featureID string) ([]*types.Comment, error) {
	return s.store.GetComments(ctx, tc, featureID)
}

// FeatureHistory returns the feature's status audit trail.
func (s *Service) FeatureHistory(ctx context.Context, tc tenant.Context, id string) ([]*types.StatusHistory, error) {
	return s.store.GetStatusHistory(ctx, tc, types.KindFeature, id)
}
