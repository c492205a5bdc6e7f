package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/planvote/planvote/internal/storage"
	"github.com/planvote/planvote/internal/tenant"
	"github.com/planvote/planvote/internal/types"
)

// sqliteTx adapts a dedicated connection (already inside BEGIN
// IMMEDIATE) to the storage.Transaction interface. Every method
// delegates to the same conn-level helpers the Store methods use, so
// behavior inside and outside a transaction stays identical.
type sqliteTx struct {
	conn *sql.Conn
}

var (
	_ storage.Storage     = (*Store)(nil)
	_ storage.Transaction = (*sqliteTx)(nil)
)

// RunInTransaction executes fn atomically. Any error from fn rolls the
// whole transaction back.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx storage.Transaction) error) error {
	return s.withImmediateTx(ctx, func(conn *sql.Conn) error {
		return fn(&sqliteTx{conn: conn})
	})
}

func (t *sqliteTx) GetUser(ctx context.Context, idOrEmail string) (*types.User, error) {
	return getUser(ctx, t.conn, idOrEmail)
}

func (t *sqliteTx) GetInvitationByID(ctx context.Context, id string) (*types.Invitation, error) {
	var inv types.Invitation
	err := t.conn.QueryRowContext(ctx,
		`SELECT id, tenant_id, email, created_at, accepted_at
		 FROM invitations WHERE id = ?`, id).
		Scan(&inv.ID, &inv.TenantID, &inv.Email, &inv.CreatedAt, &inv.AcceptedAt)
	if err != nil {
		return nil, wrapDBError("get invitation", err)
	}
	return &inv, nil
}

func (t *sqliteTx) MarkInvitationAccepted(ctx context.Context, id string) error {
	res, err := t.conn.ExecContext(ctx,
		`UPDATE invitations SET accepted_at = ? WHERE id = ? AND accepted_at IS NULL`,
		time.Now().UTC(), id)
	if err != nil {
		return wrapDBError("accept invitation", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapDBError("accept invitation", err)
	}
	if n == 0 {
		// Already accepted, or no such invitation.
		return storage.ErrConflict
	}
	return nil
}

func (t *sqliteTx) UpsertMembership(ctx context.Context, userID, tenantID string) error {
	return upsertMembership(ctx, t.conn, userID, tenantID)
}

func (t *sqliteTx) SetCurrentTenant(ctx context.Context, userID, tenantID string) error {
	return setCurrentTenant(ctx, t.conn, userID, tenantID)
}

func (t *sqliteTx) SetHomeTenant(ctx context.Context, userID, tenantID string) error {
	res, err := t.conn.ExecContext(ctx,
		`UPDATE users SET tenant_id = ? WHERE id = ? AND tenant_id IS NULL`,
		tenantID, userID)
	if err != nil {
		return wrapDBError("set home tenant", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapDBError("set home tenant", err)
	}
	if n == 0 {
		// Home tenant is write-once; a second assignment is a conflict
		// unless the user does not exist at all.
		var count int
		if err := t.conn.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM users WHERE id = ?`, userID).Scan(&count); err != nil {
			return wrapDBError("set home tenant", err)
		}
		if count == 0 {
			return storage.ErrNotFound
		}
		return storage.ErrConflict
	}
	return nil
}

func (t *sqliteTx) CreateFeature(ctx context.Context, tc tenant.Context, f *types.Feature) error {
	return createFeature(ctx, t.conn, tc, f)
}

func (t *sqliteTx) CreateCommitment(ctx context.Context, tc tenant.Context, c *types.Commitment) error {
	return createCommitment(ctx, t.conn, tc, c)
}

func (t *sqliteTx) TransitionStatus(ctx context.Context, tc tenant.Context, kind types.EntityKind, id string, target types.Status) error {
	return transitionStatus(ctx, t.conn, tc, kind, id, target)
}
