package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/planvote/planvote/internal/lifecycle"
	"github.com/planvote/planvote/internal/storage"
	"github.com/planvote/planvote/internal/tenant"
	"github.com/planvote/planvote/internal/types"
)

func TestCreateFeatureDefaultsStatus(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()
	tc := seedTenant(t, store, "acme")
	project := seedProject(t, store, tc, "Platform")

	f := &types.Feature{ProjectID: project.ID, Name: "Dark mode"}
	if err := store.CreateFeature(ctx, tc, f); err != nil {
		t.Fatalf("CreateFeature failed: %v", err)
	}

	got, err := store.GetFeature(ctx, tc, f.ID)
	if err != nil {
		t.Fatalf("GetFeature failed: %v", err)
	}
	if got.Status != types.FeatureInPlanning {
		t.Errorf("Expected default status %q, got %q", types.FeatureInPlanning, got.Status)
	}

	// Creation writes one history row with no from-status.
	hist, err := store.GetStatusHistory(ctx, tc, types.KindFeature, f.ID)
	if err != nil {
		t.Fatalf("GetStatusHistory failed: %v", err)
	}
	if len(hist) != 1 {
		t.Fatalf("Expected 1 history entry after create, got %d", len(hist))
	}
	if hist[0].FromStatus != nil {
		t.Errorf("Creation entry should have nil from_status, got %v", *hist[0].FromStatus)
	}
	if hist[0].ToStatus != types.FeatureInPlanning {
		t.Errorf("Creation entry to_status = %q, want %q", hist[0].ToStatus, types.FeatureInPlanning)
	}
}

func TestTransitionStatusRecordsHistory(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()
	tc := seedTenant(t, store, "acme")
	project := seedProject(t, store, tc, "Platform")
	f := seedFeature(t, store, tc, project.ID, "Dark mode")

	steps := []types.Status{
		types.FeatureApproved,
		types.FeatureImplemented,
		types.FeatureArchived,
	}
	for _, target := range steps {
		if err := store.TransitionStatus(ctx, tc, types.KindFeature, f.ID, target); err != nil {
			t.Fatalf("TransitionStatus(%s) failed: %v", target, err)
		}
	}

	got, err := store.GetFeature(ctx, tc, f.ID)
	if err != nil {
		t.Fatalf("GetFeature failed: %v", err)
	}
	if got.Status != types.FeatureArchived {
		t.Errorf("Final status = %q, want %q", got.Status, types.FeatureArchived)
	}

	// N transitions plus the creation row: N+1 entries, a contiguous
	// chain where each from_status matches the previous to_status.
	hist, err := store.GetStatusHistory(ctx, tc, types.KindFeature, f.ID)
	if err != nil {
		t.Fatalf("GetStatusHistory failed: %v", err)
	}
	if len(hist) != len(steps)+1 {
		t.Fatalf("Expected %d history entries, got %d", len(steps)+1, len(hist))
	}
	for i := 1; i < len(hist); i++ {
		if hist[i].FromStatus == nil {
			t.Fatalf("Entry %d has nil from_status", i)
		}
		if *hist[i].FromStatus != hist[i-1].ToStatus {
			t.Errorf("Entry %d from_status = %q, previous to_status = %q", i, *hist[i].FromStatus, hist[i-1].ToStatus)
		}
	}
}

func TestTransitionStatusNoOpWritesNoHistory(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()
	tc := seedTenant(t, store, "acme")
	project := seedProject(t, store, tc, "Platform")
	f := seedFeature(t, store, tc, project.ID, "Dark mode")

	if err := store.TransitionStatus(ctx, tc, types.KindFeature, f.ID, types.FeatureInPlanning); err != nil {
		t.Fatalf("No-op transition should succeed, got: %v", err)
	}

	hist, err := store.GetStatusHistory(ctx, tc, types.KindFeature, f.ID)
	if err != nil {
		t.Fatalf("GetStatusHistory failed: %v", err)
	}
	if len(hist) != 1 {
		t.Errorf("No-op transition must not append history, got %d entries", len(hist))
	}
}

func TestTransitionStatusRejectsUndeclaredEdge(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()
	tc := seedTenant(t, store, "acme")
	project := seedProject(t, store, tc, "Platform")
	f := seedFeature(t, store, tc, project.ID, "Dark mode")

	// in-planning → implemented skips approval.
	err := store.TransitionStatus(ctx, tc, types.KindFeature, f.ID, types.FeatureImplemented)
	if !errors.Is(err, lifecycle.ErrInvalidTransition) {
		t.Fatalf("Expected ErrInvalidTransition, got %v", err)
	}

	// The entity and its history are untouched.
	got, err := store.GetFeature(ctx, tc, f.ID)
	if err != nil {
		t.Fatalf("GetFeature failed: %v", err)
	}
	if got.Status != types.FeatureInPlanning {
		t.Errorf("Status changed after rejected transition: %q", got.Status)
	}
	hist, err := store.GetStatusHistory(ctx, tc, types.KindFeature, f.ID)
	if err != nil {
		t.Fatalf("GetStatusHistory failed: %v", err)
	}
	if len(hist) != 1 {
		t.Errorf("Rejected transition must not append history, got %d entries", len(hist))
	}
}

func TestTransitionStatusUnknownTarget(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()
	tc := seedTenant(t, store, "acme")
	project := seedProject(t, store, tc, "Platform")
	f := seedFeature(t, store, tc, project.ID, "Dark mode")

	err := store.TransitionStatus(ctx, tc, types.KindFeature, f.ID, types.Status("launched"))
	if !errors.Is(err, lifecycle.ErrUnknownState) {
		t.Fatalf("Expected ErrUnknownState, got %v", err)
	}
}

func TestTransitionStatusOtherTenantNotFound(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()
	acme := seedTenant(t, store, "acme")
	rival := seedTenant(t, store, "rival")
	project := seedProject(t, store, acme, "Platform")
	f := seedFeature(t, store, acme, project.ID, "Dark mode")

	err := store.TransitionStatus(ctx, rival, types.KindFeature, f.ID, types.FeatureApproved)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Cross-tenant transition should report not-found, got %v", err)
	}
}

func TestRepairStatusesCoercesInvalidValues(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()
	tc := seedTenant(t, store, "acme")
	project := seedProject(t, store, tc, "Platform")
	good := seedFeature(t, store, tc, project.ID, "Healthy")
	bad := seedFeature(t, store, tc, project.ID, "Corrupted")

	// Simulate legacy/foreign data behind the store's back.
	if _, err := store.db.ExecContext(ctx,
		`UPDATE features SET status = 'wip' WHERE id = ?`, bad.ID); err != nil {
		t.Fatalf("Failed to corrupt row: %v", err)
	}

	results, err := store.RepairStatuses(ctx, types.KindFeature)
	if err != nil {
		t.Fatalf("RepairStatuses failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 repair, got %d", len(results))
	}
	if results[0].EntityID != bad.ID || results[0].OldStatus != "wip" || results[0].NewStatus != types.FeatureInPlanning {
		t.Errorf("Unexpected repair result: %+v", results[0])
	}

	got, err := store.GetFeature(ctx, tc, bad.ID)
	if err != nil {
		t.Fatalf("GetFeature failed: %v", err)
	}
	if got.Status != types.FeatureInPlanning {
		t.Errorf("Repaired status = %q, want %q", got.Status, types.FeatureInPlanning)
	}

	// The repair leaves an audit trail like any other change, keeping
	// the raw foreign token so the trail records what was there.
	hist, err := store.GetStatusHistory(ctx, tc, types.KindFeature, bad.ID)
	if err != nil {
		t.Fatalf("GetStatusHistory failed: %v", err)
	}
	last := hist[len(hist)-1]
	if last.FromStatus == nil || *last.FromStatus != types.Status("wip") {
		t.Errorf("Repair history from_status = %v, want wip", last.FromStatus)
	}
	if last.ToStatus != types.FeatureInPlanning {
		t.Errorf("Repair history to_status = %q, want %q", last.ToStatus, types.FeatureInPlanning)
	}
	// Only the creation record carries a nil from_status.
	nilFrom := 0
	for _, h := range hist {
		if h.FromStatus == nil {
			nilFrom++
		}
	}
	if nilFrom != 1 {
		t.Errorf("History has %d nil-from entries, want 1 (creation only)", nilFrom)
	}

	// Running again is idempotent.
	results, err = store.RepairStatuses(ctx, types.KindFeature)
	if err != nil {
		t.Fatalf("Second RepairStatuses failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Second repair pass should find nothing, got %d", len(results))
	}

	// The healthy row was never touched.
	untouched, err := store.GetFeature(ctx, tc, good.ID)
	if err != nil {
		t.Fatalf("GetFeature failed: %v", err)
	}
	if untouched.Status != types.FeatureInPlanning {
		t.Errorf("Healthy feature status = %q, want %q", untouched.Status, types.FeatureInPlanning)
	}
	goodHist, err := store.GetStatusHistory(ctx, tc, types.KindFeature, good.ID)
	if err != nil {
		t.Fatalf("GetStatusHistory failed: %v", err)
	}
	if len(goodHist) != 1 {
		t.Errorf("Healthy feature history grew to %d entries", len(goodHist))
	}
}

func TestRepairStatusesBlankStatus(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()
	tc := seedTenant(t, store, "acme")
	project := seedProject(t, store, tc, "Platform")
	f := seedFeature(t, store, tc, project.ID, "Legacy")

	if _, err := store.db.ExecContext(ctx,
		`UPDATE features SET status = '' WHERE id = ?`, f.ID); err != nil {
		t.Fatalf("Failed to blank row: %v", err)
	}

	results, err := store.RepairStatuses(ctx, types.KindFeature)
	if err != nil {
		t.Fatalf("RepairStatuses failed: %v", err)
	}
	if len(results) != 1 || results[0].OldStatus != "" {
		t.Fatalf("Unexpected repair results: %+v", results)
	}

	// A blank status repairs like a creation: nil from_status.
	hist, err := store.GetStatusHistory(ctx, tc, types.KindFeature, f.ID)
	if err != nil {
		t.Fatalf("GetStatusHistory failed: %v", err)
	}
	last := hist[len(hist)-1]
	if last.FromStatus != nil {
		t.Errorf("Blank repair from_status = %v, want nil", *last.FromStatus)
	}
	if last.ToStatus != types.FeatureInPlanning {
		t.Errorf("Blank repair to_status = %q, want %q", last.ToStatus, types.FeatureInPlanning)
	}
}

func TestCommitmentLifecycle(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()
	tc := seedTenant(t, store, "acme")
	project := seedProject(t, store, tc, "Platform")
	f := seedFeature(t, store, tc, project.ID, "Dark mode")
	planning := seedPlanning(t, store, tc, project.ID, "Q3 session")

	c := &types.Commitment{PlanningID: planning.ID, FeatureID: f.ID}
	if err := store.CreateCommitment(ctx, tc, c); err != nil {
		t.Fatalf("CreateCommitment failed: %v", err)
	}
	if c.Status != types.CommitmentSuggested {
		t.Errorf("Default commitment status = %q, want %q", c.Status, types.CommitmentSuggested)
	}

	if err := store.TransitionStatus(ctx, tc, types.KindCommitment, c.ID, types.CommitmentAccepted); err != nil {
		t.Fatalf("TransitionStatus(accepted) failed: %v", err)
	}
	// Skipping back from accepted to suggested is not declared.
	err := store.TransitionStatus(ctx, tc, types.KindCommitment, c.ID, types.CommitmentSuggested)
	if !errors.Is(err, lifecycle.ErrInvalidTransition) {
		t.Fatalf("Expected ErrInvalidTransition, got %v", err)
	}
	if err := store.TransitionStatus(ctx, tc, types.KindCommitment, c.ID, types.CommitmentCompleted); err != nil {
		t.Fatalf("TransitionStatus(completed) failed: %v", err)
	}
}

func TestStatusHistoryScopedByTenant(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()
	acme := seedTenant(t, store, "acme")
	rival := seedTenant(t, store, "rival")
	project := seedProject(t, store, acme, "Platform")
	f := seedFeature(t, store, acme, project.ID, "Dark mode")

	hist, err := store.GetStatusHistory(ctx, rival, types.KindFeature, f.ID)
	if err != nil {
		t.Fatalf("GetStatusHistory failed: %v", err)
	}
	if len(hist) != 0 {
		t.Errorf("Other tenant sees %d history entries, want 0", len(hist))
	}

	hist, err = store.GetStatusHistory(ctx, tenant.None(), types.KindFeature, f.ID)
	if err != nil {
		t.Fatalf("GetStatusHistory with no tenant failed: %v", err)
	}
	if len(hist) != 0 {
		t.Errorf("Unresolved tenant sees %d history entries, want 0", len(hist))
	}
}
