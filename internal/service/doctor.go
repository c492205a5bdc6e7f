package service

import (
	"context"
	"fmt"

	"github.com/planvote/planvote/internal/tenant"
	"github.com/planvote/planvote/internal/types"
)

// Doctor runs the status repair pass over every lifecycle kind and
// returns the corrections made. Kinds run sequentially: each pass takes
// the database write lock, so there is nothing to gain from overlap.
// Privileged maintenance path, not tenant-scoped.
func (s *Service) Doctor(ctx context.Context) ([]*types.RepairResult, error) {
	var all []*types.RepairResult
	for _, kind := range types.Kinds() {
		results, err := s.store.RepairStatuses(ctx, kind)
		if err != nil {
			return all, fmt.Errorf("repair %s: %w", kind, err)
		}
		all = append(all, results...)
	}
	return all, nil
}

// Statistics returns aggregate counts for the actor's tenant.
func (s *Service) Statistics(ctx context.Context, tc tenant.Context) (*types.Statistics, error) {
	if !tenant.CanViewAny(tc) {
		return nil, fmt.Errorf("statistics: %w", ErrPermissionDenied)
	}
	return s.store.GetStatistics(ctx, tc)
}
