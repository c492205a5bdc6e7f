package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planvote/planvote/internal/storage"
	"github.com/planvote/planvote/internal/storage/sqlite"
	"github.com/planvote/planvote/internal/tenant"
	"github.com/planvote/planvote/internal/types"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store, err := sqlite.New(context.Background(), t.TempDir()+"/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })
	return New(store)
}

type fixture struct {
	tc       tenant.Context
	project  *types.Project
	planning *types.Planning
}

func newFixture(t *testing.T, svc *Service) fixture {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, svc.Store().CreateTenant(ctx, &types.Tenant{ID: "acme", Name: "Acme"}))
	tc := tenant.WithID("acme")

	project := &types.Project{Name: "Platform"}
	require.NoError(t, svc.CreateProject(ctx, tc, project))

	planning := &types.Planning{ProjectID: project.ID, Title: "Q3 session"}
	require.NoError(t, svc.CreatePlanning(ctx, tc, planning))

	return fixture{tc: tc, project: project, planning: planning}
}

func seedUser(t *testing.T, svc *Service, id string) {
	t.Helper()
	require.NoError(t, svc.Store().CreateUser(context.Background(), &types.User{
		ID: id, Name: id, Email: id + "@example.com",
	}))
}

func (f fixture) feature(t *testing.T, svc *Service, name string) *types.Feature {
	t.Helper()
	feat := &types.Feature{ProjectID: f.project.ID, Name: name}
	require.NoError(t, svc.CreateFeature(context.Background(), f.tc, feat))
	return feat
}

func TestPermissionDeniedWithoutTenant(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	none := tenant.None()

	err := svc.CreateProject(ctx, none, &types.Project{Name: "Orphan"})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.ListFeatures(ctx, none, types.FeatureFilter{})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.Tally(ctx, none, "p1")
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestRestoreAndForceDeleteAlwaysDenied(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	f := newFixture(t, svc)
	feat := f.feature(t, svc, "Dark mode")

	// Even the owning tenant cannot restore or hard-delete.
	assert.ErrorIs(t, svc.RestoreFeature(ctx, f.tc, feat.ID), ErrPermissionDenied)
	assert.ErrorIs(t, svc.ForceDeleteFeature(ctx, f.tc, feat.ID), ErrPermissionDenied)
}

func TestTallyWSJFOrdering(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	f := newFixture(t, svc)
	alpha := f.feature(t, svc, "Alpha")
	beta := f.feature(t, svc, "Beta")
	for _, id := range []string{"alice", "bob", "carol", "dave"} {
		seedUser(t, svc, id)
	}

	vote := func(featureID, voter string, dim types.Dimension, value int) {
		require.NoError(t, svc.CastVote(ctx, f.tc, &types.Vote{
			PlanningID: f.planning.ID,
			FeatureID:  featureID,
			VoterID:    voter,
			Dimension:  dim,
			Value:      value,
		}))
	}

	// Alpha: business-value mean 7, time-criticality mean 4 → CoD 11.
	vote(alpha.ID, "alice", types.DimBusinessValue, 8)
	vote(alpha.ID, "bob", types.DimBusinessValue, 6)
	vote(alpha.ID, "alice", types.DimTimeCriticality, 4)
	// Beta: higher cost of delay but no estimation.
	vote(beta.ID, "alice", types.DimBusinessValue, 9)
	vote(beta.ID, "alice", types.DimTimeCriticality, 9)

	require.NoError(t, svc.Estimate(ctx, f.tc, &types.Estimation{
		PlanningID:  f.planning.ID,
		FeatureID:   alpha.ID,
		EstimatorID: "carol",
		Value:       4,
	}))
	require.NoError(t, svc.Estimate(ctx, f.tc, &types.Estimation{
		PlanningID:  f.planning.ID,
		FeatureID:   alpha.ID,
		EstimatorID: "dave",
		Value:       6,
	}))

	scores, err := svc.Tally(ctx, f.tc, f.planning.ID)
	require.NoError(t, err)
	require.Len(t, scores, 2)

	// Alpha is estimated, so it ranks first despite the lower CoD.
	assert.Equal(t, alpha.ID, scores[0].FeatureID)
	assert.InDelta(t, 11.0, scores[0].CostOfDelay, 1e-9)
	assert.InDelta(t, 5.0, scores[0].JobSize, 1e-9)
	assert.InDelta(t, 2.2, scores[0].Score, 1e-9)
	assert.Equal(t, 3, scores[0].VoteCount)

	assert.Equal(t, beta.ID, scores[1].FeatureID)
	assert.InDelta(t, 18.0, scores[1].CostOfDelay, 1e-9)
	assert.Zero(t, scores[1].JobSize)
	assert.Zero(t, scores[1].Score)
}

func TestTallyRevoteUsesLatestValue(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	f := newFixture(t, svc)
	feat := f.feature(t, svc, "Alpha")
	seedUser(t, svc, "alice")

	cast := func(value int) {
		require.NoError(t, svc.CastVote(ctx, f.tc, &types.Vote{
			PlanningID: f.planning.ID,
			FeatureID:  feat.ID,
			VoterID:    "alice",
			Dimension:  types.DimBusinessValue,
			Value:      value,
		}))
	}
	cast(2)
	cast(9)

	scores, err := svc.Tally(ctx, f.tc, f.planning.ID)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.InDelta(t, 9.0, scores[0].CostOfDelay, 1e-9)
	assert.Equal(t, 1, scores[0].VoteCount)
}

func TestAcceptCommitmentsAtomicBatch(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	f := newFixture(t, svc)
	a := f.feature(t, svc, "Alpha")
	b := f.feature(t, svc, "Beta")

	ca, err := svc.SuggestFeature(ctx, f.tc, f.planning.ID, a.ID)
	require.NoError(t, err)
	cb, err := svc.SuggestFeature(ctx, f.tc, f.planning.ID, b.ID)
	require.NoError(t, err)

	// One bogus id poisons the whole batch.
	err = svc.AcceptCommitments(ctx, f.tc, []string{ca.ID, "nope"})
	require.ErrorIs(t, err, storage.ErrNotFound)

	got, err := svc.GetCommitment(ctx, f.tc, ca.ID)
	require.NoError(t, err)
	assert.Equal(t, types.CommitmentSuggested, got.Status, "failed batch must not partially apply")

	require.NoError(t, svc.AcceptCommitments(ctx, f.tc, []string{ca.ID, cb.ID}))
	for _, id := range []string{ca.ID, cb.ID} {
		got, err := svc.GetCommitment(ctx, f.tc, id)
		require.NoError(t, err)
		assert.Equal(t, types.CommitmentAccepted, got.Status)
	}
}

func TestInvitationAcceptanceSwitchesTenant(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	f := newFixture(t, svc)

	require.NoError(t, svc.Store().CreateUser(ctx, &types.User{
		ID: "carol", Name: "Carol", Email: "carol@example.com",
	}))

	inv, err := svc.Invite(ctx, f.tc, "carol@example.com")
	require.NoError(t, err)

	user, err := svc.AcceptInvitation(ctx, "carol@example.com", inv.ID)
	require.NoError(t, err)
	require.NotNil(t, user.CurrentTenantID)
	assert.Equal(t, "acme", *user.CurrentTenantID)
	require.NotNil(t, user.TenantID)
	assert.Equal(t, "acme", *user.TenantID, "first accepted tenant becomes home")

	// The accepted user now resolves a working context.
	tc, _, err := svc.ContextFor(ctx, "carol")
	require.NoError(t, err)
	id, ok := tc.ID()
	require.True(t, ok)
	assert.Equal(t, "acme", id)

	// Replay conflicts.
	_, err = svc.AcceptInvitation(ctx, "carol@example.com", inv.ID)
	assert.ErrorIs(t, err, storage.ErrConflict)
}

func TestDoctorRepairsAllKinds(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	f := newFixture(t, svc)
	f.feature(t, svc, "Alpha")

	results, err := svc.Doctor(ctx)
	require.NoError(t, err)
	assert.Empty(t, results, "healthy database needs no repairs")

	stats, err := svc.Statistics(ctx, f.tc)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalFeatures)
	assert.Equal(t, 1, stats.TotalProjects)
	assert.Equal(t, 1, stats.TotalPlannings)
}
