package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/planvote/planvote/internal/lifecycle"
	"github.com/planvote/planvote/internal/tenant"
	"github.com/planvote/planvote/internal/types"
)

// CreateProject inserts a new project. The status engine assigns the
// default status when none is given; a creation history record is
// written in the same transaction.
func (s *Store) CreateProject(ctx context.Context, tc tenant.Context, p *types.Project) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if err := stampTenant(tc, &p.TenantID); err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	if p.Status == "" {
		p.Status = lifecycle.Default(types.KindProject)
	}
	if !lifecycle.IsValid(types.KindProject, p.Status) {
		return fmt.Errorf("create project: %w: %q", lifecycle.ErrUnknownState, p.Status)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = p.CreatedAt

	return s.withImmediateTx(ctx, func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx,
			`INSERT INTO projects (id, tenant_id, name, description, status, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.TenantID, p.Name, p.Description, p.Status, p.CreatedAt, p.UpdatedAt)
		if err != nil {
			return wrapDBError("insert project", err)
		}
		return recordStatusChange(ctx, conn, types.KindProject, p.ID, p.TenantID, nil, p.Status, p.CreatedAt)
	})
}

// GetProject fetches one project within the context's tenant.
func (s *Store) GetProject(ctx context.Context, tc tenant.Context, id string) (*types.Project, error) {
	where, args := scoped(tc, "projects")
	args = append(args, id)

	var p types.Project
	err := s.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, name, description, status, created_at, updated_at
		 FROM projects WHERE `+where+` AND projects.id = ?`, args...).
		Scan(&p.ID, &p.TenantID, &p.Name, &p.Description, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, wrapDBError("get project", err)
	}
	return &p, nil
}

// ListProjects returns the context tenant's projects, newest first.
func (s *Store) ListProjects(ctx context.Context, tc tenant.Context) ([]*types.Project, error) {
	where, args := scoped(tc, "projects")

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tenant_id, name, description, status, created_at, updated_at
		 FROM projects WHERE `+where+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, wrapDBError("list projects", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*types.Project
	for rows.Next() {
		var p types.Project
		if err := rows.Scan(&p.ID, &p.TenantID, &p.Name, &p.Description, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, wrapDBError("scan project", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
