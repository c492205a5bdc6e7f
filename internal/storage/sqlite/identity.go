package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/planvote/planvote/internal/storage"
	"github.com/planvote/planvote/internal/tenant"
	"github.com/planvote/planvote/internal/types"
)

// CreateTenant inserts a new tenant. Tenants are ownership roots and
// are never scoped themselves.
func (s *Store) CreateTenant(ctx context.Context, t *types.Tenant) error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("tenant name is required")
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tenants (id, name, created_at) VALUES (?, ?, ?)`,
		t.ID, t.Name, t.CreatedAt)
	return wrapDBError("insert tenant", err)
}

// GetTenant fetches a tenant by id.
func (s *Store) GetTenant(ctx context.Context, id string) (*types.Tenant, error) {
	var t types.Tenant
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM tenants WHERE id = ?`, id).
		Scan(&t.ID, &t.Name, &t.CreatedAt)
	if err != nil {
		return nil, wrapDBError("get tenant", err)
	}
	return &t, nil
}

// CreateUser inserts a new user. When the user carries a home tenant a
// membership row is written in the same transaction so tenant switching
// works immediately.
func (s *Store) CreateUser(ctx context.Context, u *types.User) error {
	if strings.TrimSpace(u.Email) == "" {
		return fmt.Errorf("email is required")
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	return s.withImmediateTx(ctx, func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx,
			`INSERT INTO users (id, name, email, tenant_id, current_tenant_id, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			u.ID, u.Name, u.Email, u.TenantID, u.CurrentTenantID, u.CreatedAt)
		if err != nil {
			return wrapDBError("insert user", err)
		}
		if u.TenantID != nil && *u.TenantID != "" {
			if err := upsertMembership(ctx, conn, u.ID, *u.TenantID); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetUser fetches a user by id or, when the argument contains "@", by
// email. CLI callers pass whatever the operator typed.
func (s *Store) GetUser(ctx context.Context, idOrEmail string) (*types.User, error) {
	return getUser(ctx, s.db, idOrEmail)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func getUser(ctx context.Context, q querier, idOrEmail string) (*types.User, error) {
	column := "id"
	if strings.Contains(idOrEmail, "@") {
		column = "email"
	}

	var u types.User
	err := q.QueryRowContext(ctx,
		`SELECT id, name, email, tenant_id, current_tenant_id, created_at
		 FROM users WHERE `+column+` = ?`, idOrEmail).
		Scan(&u.ID, &u.Name, &u.Email, &u.TenantID, &u.CurrentTenantID, &u.CreatedAt)
	if err != nil {
		return nil, wrapDBError("get user", err)
	}
	return &u, nil
}

// SetCurrentTenant switches a user's active tenant. The user must hold
// a membership in the target tenant.
func (s *Store) SetCurrentTenant(ctx context.Context, userID, tenantID string) error {
	return s.withImmediateTx(ctx, func(conn *sql.Conn) error {
		return setCurrentTenant(ctx, conn, userID, tenantID)
	})
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func setCurrentTenant(ctx context.Context, e execer, userID, tenantID string) error {
	var n int
	err := e.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memberships WHERE user_id = ? AND tenant_id = ?`,
		userID, tenantID).Scan(&n)
	if err != nil {
		return wrapDBError("check membership", err)
	}
	if n == 0 {
		return fmt.Errorf("user %s is not a member of tenant %s", userID, tenantID)
	}

	res, err := e.ExecContext(ctx,
		`UPDATE users SET current_tenant_id = ? WHERE id = ?`, tenantID, userID)
	if err != nil {
		return wrapDBError("set current tenant", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("set current tenant: %w", storage.ErrNotFound)
	}
	return nil
}

func upsertMembership(ctx context.Context, e execer, userID, tenantID string) error {
	_, err := e.ExecContext(ctx,
		`INSERT INTO memberships (user_id, tenant_id) VALUES (?, ?)
		 ON CONFLICT(user_id, tenant_id) DO NOTHING`,
		userID, tenantID)
	return wrapDBError("upsert membership", err)
}

// CreateInvitation inserts an invitation into the context's tenant.
func (s *Store) CreateInvitation(ctx context.Context, tc tenant.Context, inv *types.Invitation) error {
	if strings.TrimSpace(inv.Email) == "" {
		return fmt.Errorf("email is required")
	}
	if err := stampTenant(tc, &inv.TenantID); err != nil {
		return fmt.Errorf("create invitation: %w", err)
	}
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO invitations (id, tenant_id, email, created_at) VALUES (?, ?, ?, ?)`,
		inv.ID, inv.TenantID, inv.Email, inv.CreatedAt)
	return wrapDBError("insert invitation", err)
}

// GetInvitation fetches an invitation within the context's tenant.
func (s *Store) GetInvitation(ctx context.Context, tc tenant.Context, id string) (*types.Invitation, error) {
	return getInvitation(ctx, s.db, tc, id)
}

func getInvitation(ctx context.Context, q querier, tc tenant.Context, id string) (*types.Invitation, error) {
	where, args := scoped(tc, "invitations")
	args = append(args, id)

	var inv types.Invitation
	err := q.QueryRowContext(ctx,
		`SELECT id, tenant_id, email, created_at, accepted_at
		 FROM invitations WHERE `+where+` AND invitations.id = ?`, args...).
		Scan(&inv.ID, &inv.TenantID, &inv.Email, &inv.CreatedAt, &inv.AcceptedAt)
	if err != nil {
		return nil, wrapDBError("get invitation", err)
	}
	return &inv, nil
}
