package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/planvote/planvote/internal/lifecycle"
	"github.com/planvote/planvote/internal/storage"
	"github.com/planvote/planvote/internal/tenant"
	"github.com/planvote/planvote/internal/types"
)

// CreateCommitment inserts a new commitment tying a feature into a
// planning, plus its creation history record.
func (s *Store) CreateCommitment(ctx context.Context, tc tenant.Context, c *types.Commitment) error {
	return s.withImmediateTx(ctx, func(conn *sql.Conn) error {
		return createCommitment(ctx, conn, tc, c)
	})
}

func createCommitment(ctx context.Context, conn *sql.Conn, tc tenant.Context, c *types.Commitment) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if err := stampTenant(tc, &c.TenantID); err != nil {
		return fmt.Errorf("create commitment: %w", err)
	}
	if c.Status == "" {
		c.Status = lifecycle.Default(types.KindCommitment)
	}
	if !lifecycle.IsValid(types.KindCommitment, c.Status) {
		return fmt.Errorf("create commitment: %w: %q", lifecycle.ErrUnknownState, c.Status)
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	c.UpdatedAt = c.CreatedAt

	// Planning and feature must both be visible under the tenant.
	scope := tenant.WithID(c.TenantID)
	pwhere, pargs := scoped(scope, "plannings")
	pargs = append(pargs, c.PlanningID)
	var n int
	if err := conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM plannings WHERE `+pwhere+` AND plannings.id = ?`, pargs...).Scan(&n); err != nil {
		return wrapDBError("check planning", err)
	}
	if n == 0 {
		return fmt.Errorf("planning %s: %w", c.PlanningID, storage.ErrNotFound)
	}
	fwhere, fargs := scoped(scope, "features")
	fargs = append(fargs, c.FeatureID)
	if err := conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM features WHERE `+fwhere+` AND features.id = ?`, fargs...).Scan(&n); err != nil {
		return wrapDBError("check feature", err)
	}
	if n == 0 {
		return fmt.Errorf("feature %s: %w", c.FeatureID, storage.ErrNotFound)
	}

	_, err := conn.ExecContext(ctx,
		`INSERT INTO commitments (id, tenant_id, planning_id, feature_id, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.TenantID, c.PlanningID, c.FeatureID, c.Status, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return wrapDBError("insert commitment", err)
	}
	return recordStatusChange(ctx, conn, types.KindCommitment, c.ID, c.TenantID, nil, c.Status, c.CreatedAt)
}

// GetCommitment fetches one commitment within the context's tenant.
func (s *Store) GetCommitment(ctx context.Context, tc tenant.Context, id string) (*types.Commitment, error) {
	where, args := scoped(tc, "commitments")
	args = append(args, id)

	var c types.Commitment
	err := s.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, planning_id, feature_id, status, created_at, updated_at
		 FROM commitments WHERE `+where+` AND commitments.id = ?`, args...).
		Scan(&c.ID, &c.TenantID, &c.PlanningID, &c.FeatureID, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, wrapDBError("get commitment", err)
	}
	return &c, nil
}

// ListCommitments returns a planning's commitments in creation order.
func (s *Store) ListCommitments(ctx context.Context, tc tenant.Context, planningID string) ([]*types.Commitment, error) {
	where, args := scoped(tc, "commitments")
	args = append(args, planningID)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tenant_id, planning_id, feature_id, status, created_at, updated_at
		 FROM commitments WHERE `+where+` AND commitments.planning_id = ?
		 ORDER BY created_at ASC`, args...)
	if err != nil {
		return nil, wrapDBError("list commitments", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*types.Commitment
	for rows.Next() {
		var c types.Commitment
		if err := rows.Scan(&c.ID, &c.TenantID, &c.PlanningID, &c.FeatureID, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, wrapDBError("scan commitment", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
