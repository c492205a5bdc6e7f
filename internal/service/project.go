package service

import (
	"context"
	"fmt"

	"github.com/planvote/planvote/internal/tenant"
	"github.com/planvote/planvote/internal/types"
)

// CreateProject creates a project in the actor's tenant.
func (s *Service) CreateProject(ctx context.Context, tc tenant.Context, p *types.Project) error {
	if !tenant.CanCreate(tc) {
		return fmt.Errorf("create project: %w", ErrPermissionDenied)
	}
	return s.store.CreateProject(ctx, tc, p)
}

// GetProject fetches one project visible to the actor.
func (s *Service) GetProject(ctx context.Context, tc tenant.Context, id string) (*types.Project, error) {
	return s.store.GetProject(ctx, tc, id)
}

// ListProjects lists the actor's tenant's projects.
func (s *Service) ListProjects(ctx context.Context, tc tenant.Context) ([]*types.Project, error) {
	if !tenant.CanViewAny(tc) {
		return nil, fmt.Errorf("list projects: %w", ErrPermissionDenied)
	}
	return s.store.ListProjects(ctx, tc)
}

// TransitionProject moves a project along its lifecycle.
func (s *Service) TransitionProject(ctx context.Context, tc tenant.Context, id string, target types.Status) error {
	return s.store.TransitionStatus(ctx, tc, types.KindProject, id, target)
}
