package service

import (
	"context"
	"fmt"

	"github.com/planvote/planvote/internal/storage"
	"github.com/planvote/planvote/internal/tenant"
	"github.com/planvote/planvote/internal/types"
)

// Invite creates an invitation for an email address into the actor's
// tenant and returns it; the id doubles as the acceptance token.
func (s *Service) Invite(ctx context.Context, tc tenant.Context, email string) (*types.Invitation, error) {
	if !tenant.CanCreate(tc) {
		return nil, fmt.Errorf("invite: %w", ErrPermissionDenied)
	}
	inv := &types.Invitation{Email: email}
	if err := s.store.CreateInvitation(ctx, tc, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// AcceptInvitation accepts an invitation on behalf of a user. The whole
// flow runs in one transaction: stamp accepted_at, upsert the
// membership, adopt the tenant as home when the user has none, and
// switch the user's current tenant. A partially applied acceptance is
// impossible; replays fail with storage.ErrConflict.
func (s *Service) AcceptInvitation(ctx context.Context, userIDOrEmail, invitationID string) (*types.User, error) {
	var accepted *types.User
	err := s.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		inv, err := tx.GetInvitationByID(ctx, invitationID)
		if err != nil {
			return fmt.Errorf("invitation %s: %w", invitationID, err)
		}
		user, err := tx.GetUser(ctx, userIDOrEmail)
		if err != nil {
			return fmt.Errorf("user %s: %w", userIDOrEmail, err)
		}
		if err := tx.MarkInvitationAccepted(ctx, inv.ID); err != nil {
			return fmt.Errorf("invitation %s: %w", inv.ID, err)
		}
		if err := tx.UpsertMembership(ctx, user.ID, inv.TenantID); err != nil {
			return err
		}
		if user.TenantID == nil || *user.TenantID == "" {
			if err := tx.SetHomeTenant(ctx, user.ID, inv.TenantID); err != nil {
				return err
			}
			user.TenantID = &inv.TenantID
		}
		if err := tx.SetCurrentTenant(ctx, user.ID, inv.TenantID); err != nil {
			return err
		}
		user.CurrentTenantID = &inv.TenantID
		accepted = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return accepted, nil
}

// SwitchTenant changes a user's active tenant. Membership is checked by
// the storage layer.
func (s *Service) SwitchTenant(ctx context.Context, userID, tenantID string) error {
	return s.store.SetCurrentTenant(ctx, userID, tenantID)
}

// ContextFor resolves the acting user by id or email and returns their
// tenant context. An unknown user yields an error; a user without any
// tenant yields an unresolved context (reads see nothing, writes fail).
func (s *Service) ContextFor(ctx context.Context, userIDOrEmail string) (tenant.Context, *types.User, error) {
	user, err := s.store.GetUser(ctx, userIDOrEmail)
	if err != nil {
		return tenant.None(), nil, fmt.Errorf("resolve actor %s: %w", userIDOrEmail, err)
	}
	return tenant.For(user), user, nil
}
