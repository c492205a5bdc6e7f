package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/planvote/planvote/internal/storage"
	"github.com/planvote/planvote/internal/types"
)

func TestRunInTransactionRollsBackOnError(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()
	tc := seedTenant(t, store, "acme")
	project := seedProject(t, store, tc, "Platform")

	boom := errors.New("boom")
	err := store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		if err := tx.CreateFeature(ctx, tc, &types.Feature{ProjectID: project.ID, Name: "Doomed"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("RunInTransaction err = %v, want boom", err)
	}

	features, err := store.ListFeatures(ctx, tc, types.FeatureFilter{})
	if err != nil {
		t.Fatalf("ListFeatures failed: %v", err)
	}
	if len(features) != 0 {
		t.Errorf("Rolled-back feature is visible: %d rows", len(features))
	}
}

func TestRunInTransactionCommits(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()
	tc := seedTenant(t, store, "acme")
	project := seedProject(t, store, tc, "Platform")
	f := seedFeature(t, store, tc, project.ID, "Dark mode")
	planning := seedPlanning(t, store, tc, project.ID, "Q3 session")

	err := store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		c := &types.Commitment{PlanningID: planning.ID, FeatureID: f.ID}
		if err := tx.CreateCommitment(ctx, tc, c); err != nil {
			return err
		}
		return tx.TransitionStatus(ctx, tc, types.KindCommitment, c.ID, types.CommitmentAccepted)
	})
	if err != nil {
		t.Fatalf("RunInTransaction failed: %v", err)
	}

	commitments, err := store.ListCommitments(ctx, tc, planning.ID)
	if err != nil {
		t.Fatalf("ListCommitments failed: %v", err)
	}
	if len(commitments) != 1 {
		t.Fatalf("Expected 1 commitment, got %d", len(commitments))
	}
	if commitments[0].Status != types.CommitmentAccepted {
		t.Errorf("Commitment status = %q, want %q", commitments[0].Status, types.CommitmentAccepted)
	}
}

// The full invitation acceptance flow: membership, accepted_at stamp
// and current-tenant switch land together, and a second acceptance of
// the same invitation conflicts.
func TestInvitationAcceptanceFlow(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()
	acme := seedTenant(t, store, "acme")

	if err := store.CreateUser(ctx, &types.User{ID: "carol", Name: "Carol", Email: "carol@example.com"}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	inv := &types.Invitation{Email: "carol@example.com"}
	if err := store.CreateInvitation(ctx, acme, inv); err != nil {
		t.Fatalf("CreateInvitation failed: %v", err)
	}

	accept := func() error {
		return store.RunInTransaction(ctx, func(tx storage.Transaction) error {
			got, err := tx.GetInvitationByID(ctx, inv.ID)
			if err != nil {
				return err
			}
			user, err := tx.GetUser(ctx, got.Email)
			if err != nil {
				return err
			}
			if err := tx.MarkInvitationAccepted(ctx, got.ID); err != nil {
				return err
			}
			if err := tx.UpsertMembership(ctx, user.ID, got.TenantID); err != nil {
				return err
			}
			if user.TenantID == nil {
				if err := tx.SetHomeTenant(ctx, user.ID, got.TenantID); err != nil {
					return err
				}
			}
			return tx.SetCurrentTenant(ctx, user.ID, got.TenantID)
		})
	}

	if err := accept(); err != nil {
		t.Fatalf("Acceptance flow failed: %v", err)
	}

	user, err := store.GetUser(ctx, "carol")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if user.TenantID == nil || *user.TenantID != "acme" {
		t.Errorf("Home tenant = %v, want acme", user.TenantID)
	}
	if user.CurrentTenantID == nil || *user.CurrentTenantID != "acme" {
		t.Errorf("Current tenant = %v, want acme", user.CurrentTenantID)
	}

	got, err := store.GetInvitation(ctx, acme, inv.ID)
	if err != nil {
		t.Fatalf("GetInvitation failed: %v", err)
	}
	if got.AcceptedAt == nil {
		t.Error("Invitation accepted_at not stamped")
	}

	// Replaying the acceptance conflicts and commits nothing.
	if err := accept(); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("Second acceptance = %v, want ErrConflict", err)
	}
}

// A failure after the accepted_at stamp must roll the stamp back too.
func TestInvitationAcceptanceAtomicity(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()
	acme := seedTenant(t, store, "acme")

	inv := &types.Invitation{Email: "dave@example.com"}
	if err := store.CreateInvitation(ctx, acme, inv); err != nil {
		t.Fatalf("CreateInvitation failed: %v", err)
	}

	err := store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		if err := tx.MarkInvitationAccepted(ctx, inv.ID); err != nil {
			return err
		}
		// The invited user was never created.
		if _, err := tx.GetUser(ctx, "dave@example.com"); err != nil {
			return fmt.Errorf("resolve invited user: %w", err)
		}
		return nil
	})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound from missing user, got %v", err)
	}

	got, err := store.GetInvitation(ctx, acme, inv.ID)
	if err != nil {
		t.Fatalf("GetInvitation failed: %v", err)
	}
	if got.AcceptedAt != nil {
		t.Error("accepted_at survived a rolled-back transaction")
	}
}

func TestSetCurrentTenantRequiresMembership(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()
	seedTenant(t, store, "acme")

	if err := store.CreateUser(ctx, &types.User{ID: "eve", Name: "Eve", Email: "eve@example.com"}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	err := store.SetCurrentTenant(ctx, "eve", "acme")
	if err == nil {
		t.Fatal("SetCurrentTenant succeeded without membership")
	}
}
