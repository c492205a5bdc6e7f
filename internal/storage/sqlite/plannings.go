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

// CreatePlanning inserts a new planning session with its creation
// history record.
func (s *Store) CreatePlanning(ctx context.Context, tc tenant.Context, p *types.Planning) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if err := stampTenant(tc, &p.TenantID); err != nil {
		return fmt.Errorf("create planning: %w", err)
	}
	if p.Status == "" {
		p.Status = lifecycle.Default(types.KindPlanning)
	}
	if !lifecycle.IsValid(types.KindPlanning, p.Status) {
		return fmt.Errorf("create planning: %w: %q", lifecycle.ErrUnknownState, p.Status)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p.UpdatedAt = p.CreatedAt

	return s.withImmediateTx(ctx, func(conn *sql.Conn) error {
		where, args := scoped(tenant.WithID(p.TenantID), "projects")
		args = append(args, p.ProjectID)
		var n int
		if err := conn.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM projects WHERE `+where+` AND projects.id = ?`, args...).Scan(&n); err != nil {
			return wrapDBError("check project", err)
		}
		if n == 0 {
			return fmt.Errorf("project %s: %w", p.ProjectID, storage.ErrNotFound)
		}

		_, err := conn.ExecContext(ctx,
			`INSERT INTO plannings (id, tenant_id, project_id, title, planned_at, status, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.TenantID, p.ProjectID, p.Title, p.PlannedAt, p.Status, p.CreatedAt, p.UpdatedAt)
		if err != nil {
			return wrapDBError("insert planning", err)
		}
		return recordStatusChange(ctx, conn, types.KindPlanning, p.ID, p.TenantID, nil, p.Status, p.CreatedAt)
	})
}

// GetPlanning fetches one planning within the context's tenant.
func (s *Store) GetPlanning(ctx context.Context, tc tenant.Context, id string) (*types.Planning, error) {
	where, args := scoped(tc, "plannings")
	args = append(args, id)

	var p types.Planning
	err := s.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, project_id, title, planned_at, status, created_at, updated_at
		 FROM plannings WHERE `+where+` AND plannings.id = ?`, args...).
		Scan(&p.ID, &p.TenantID, &p.ProjectID, &p.Title, &p.PlannedAt, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, wrapDBError("get planning", err)
	}
	return &p, nil
}

// ListPlannings returns the context tenant's plannings, optionally
// narrowed to one project, newest first.
func (s *Store) ListPlannings(ctx context.Context, tc tenant.Context, projectID string) ([]*types.Planning, error) {
	where, args := scoped(tc, "plannings")
	query := `SELECT id, tenant_id, project_id, title, planned_at, status, created_at, updated_at
	          FROM plannings WHERE ` + where
	if projectID != "" {
		query += ` AND plannings.project_id = ?`
		args = append(args, projectID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError("list plannings", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*types.Planning
	for rows.Next() {
		var p types.Planning
		if err := rows.Scan(&p.ID, &p.TenantID, &p.ProjectID, &p.Title, &p.PlannedAt, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, wrapDBError("scan planning", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
