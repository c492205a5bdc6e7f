package service

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/planvote/planvote/internal/tenant"
	"github.com/planvote/planvote/internal/types"
)

// CastVote records one stakeholder's rating of a feature on one
// dimension. Re-voting replaces the previous value.
func (s *Service) CastVote(ctx context.Context, tc tenant.Context, v *types.Vote) error {
	if !tenant.CanCreate(tc) {
		return fmt.Errorf("cast vote: %w", ErrPermissionDenied)
	}
	return s.store.UpsertVote(ctx, tc, v)
}

// ListVotes returns all votes of a planning.
func (s *Service) ListVotes(ctx context.Context, tc tenant.Context, planningID string) ([]*types.Vote, error) {
	if !tenant.CanViewAny(tc) {
		return nil, fmt.Errorf("list votes: %w", ErrPermissionDenied)
	}
	return s.store.ListVotes(ctx, tc, planningID)
}

// Tally computes the WSJF ranking for a planning.
//
// Per feature: cost of delay is the sum of the three dimension means,
// job size is the mean of its estimations, and the score divides the
// two. Features without an estimation carry a zero score and rank
// last regardless of cost of delay. Output is sorted best-first.
func (s *Service) Tally(ctx context.Context, tc tenant.Context, planningID string) ([]*types.FeatureScore, error) {
	if !tenant.CanViewAny(tc) {
		return nil, fmt.Errorf("tally: %w", ErrPermissionDenied)
	}

	var (
		votes       []*types.Vote
		estimations []*types.Estimation
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		votes, err = s.store.ListVotes(gctx, tc, planningID)
		return err
	})
	g.Go(func() error {
		var err error
		estimations, err = s.store.ListEstimations(gctx, tc, planningID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("tally %s: %w", planningID, err)
	}

	type accum struct {
		dimSum   map[types.Dimension]int
		dimCount map[types.Dimension]int
		estSum   int
		estCount int
		votes    int
	}
	byFeature := make(map[string]*accum)
	acc := func(featureID string) *accum {
		a, ok := byFeature[featureID]
		if !ok {
			a = &accum{
				dimSum:   make(map[types.Dimension]int),
				dimCount: make(map[types.Dimension]int),
			}
			byFeature[featureID] = a
		}
		return a
	}

	for _, v := range votes {
		a := acc(v.FeatureID)
		a.dimSum[v.Dimension] += v.Value
		a.dimCount[v.Dimension]++
		a.votes++
	}
	for _, e := range estimations {
		a := acc(e.FeatureID)
		a.estSum += e.Value
		a.estCount++
	}

	scores := make([]*types.FeatureScore, 0, len(byFeature))
	for featureID, a := range byFeature {
		f, err := s.store.GetFeature(ctx, tc, featureID)
		if err != nil {
			return nil, fmt.Errorf("tally %s: feature %s: %w", planningID, featureID, err)
		}

		var costOfDelay float64
		for _, dim := range types.Dimensions() {
			if n := a.dimCount[dim]; n > 0 {
				costOfDelay += float64(a.dimSum[dim]) / float64(n)
			}
		}

		score := &types.FeatureScore{
			FeatureID:   featureID,
			FeatureName: f.Name,
			CostOfDelay: costOfDelay,
			VoteCount:   a.votes,
		}
		if a.estCount > 0 {
			score.JobSize = float64(a.estSum) / float64(a.estCount)
			if score.JobSize > 0 {
				score.Score = costOfDelay / score.JobSize
			}
		}
		scores = append(scores, score)
	}

	sort.Slice(scores, func(i, j int) bool {
		a, b := scores[i], scores[j]
		// Unestimated features sink to the bottom.
		if (a.JobSize > 0) != (b.JobSize > 0) {
			return a.JobSize > 0
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.CostOfDelay != b.CostOfDelay {
			return a.CostOfDelay > b.CostOfDelay
		}
		return a.FeatureName < b.FeatureName
	})
	return scores, nil
}
