package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/planvote/planvote/internal/lifecycle"
	"github.com/planvote/planvote/internal/storage"
	"github.com/planvote/planvote/internal/tenant"
	"github.com/planvote/planvote/internal/types"
)

// CreateFeature inserts a new feature. The status engine assigns the
// default status when none is given, the tenant is stamped from the
// context, and a creation history record lands in the same transaction.
func (s *Store) CreateFeature(ctx context.Context, tc tenant.Context, f *types.Feature) error {
	return s.withImmediateTx(ctx, func(conn *sql.Conn) error {
		return createFeature(ctx, conn, tc, f)
	})
}

func createFeature(ctx context.Context, conn *sql.Conn, tc tenant.Context, f *types.Feature) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if err := stampTenant(tc, &f.TenantID); err != nil {
		return fmt.Errorf("create feature: %w", err)
	}
	if f.Status == "" {
		f.Status = lifecycle.Default(types.KindFeature)
	}
	if !lifecycle.IsValid(types.KindFeature, f.Status) {
		return fmt.Errorf("create feature: %w: %q", lifecycle.ErrUnknownState, f.Status)
	}
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	f.UpdatedAt = f.CreatedAt

	// The project must live in the same tenant; a feature must never
	// attach to another tenant's project.
	where, args := scoped(tenant.WithID(f.TenantID), "projects")
	args = append(args, f.ProjectID)
	var n int
	if err := conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM projects WHERE `+where+` AND projects.id = ?`, args...).Scan(&n); err != nil {
		return wrapDBError("check project", err)
	}
	if n == 0 {
		return fmt.Errorf("project %s: %w", f.ProjectID, storage.ErrNotFound)
	}

	_, err := conn.ExecContext(ctx,
		`INSERT INTO features (id, tenant_id, project_id, jira_key, name, description, requester_id, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.TenantID, f.ProjectID, f.JiraKey, f.Name, f.Description, f.RequesterID, f.Status, f.CreatedAt, f.UpdatedAt)
	if err != nil {
		return wrapDBError("insert feature", err)
	}
	return recordStatusChange(ctx, conn, types.KindFeature, f.ID, f.TenantID, nil, f.Status, f.CreatedAt)
}

const featureColumns = `id, tenant_id, project_id, jira_key, name, description, requester_id, status, created_at, updated_at`

func scanFeature(scan func(...interface{}) error) (*types.Feature, error) {
	var f types.Feature
	err := scan(&f.ID, &f.TenantID, &f.ProjectID, &f.JiraKey, &f.Name, &f.Description, &f.RequesterID, &f.Status, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// GetFeature fetches one feature within the context's tenant.
func (s *Store) GetFeature(ctx context.Context, tc tenant.Context, id string) (*types.Feature, error) {
	where, args := scoped(tc, "features")
	args = append(args, id)

	row := s.db.QueryRowContext(ctx,
		`SELECT `+featureColumns+` FROM features WHERE `+where+` AND features.id = ?`, args...)
	f, err := scanFeature(row.Scan)
	if err != nil {
		return nil, wrapDBError("get feature", err)
	}
	return f, nil
}

// ListFeatures returns the context tenant's features matching the
// filter, newest first.
func (s *Store) ListFeatures(ctx context.Context, tc tenant.Context, filter types.FeatureFilter) ([]*types.Feature, error) {
	where, args := scoped(tc, "features")
	conds := []string{where}

	if filter.Status != nil {
		conds = append(conds, "features.status = ?")
		args = append(args, *filter.Status)
	}
	if filter.ProjectID != "" {
		conds = append(conds, "features.project_id = ?")
		args = append(args, filter.ProjectID)
	}
	if filter.TitleSearch != "" {
		conds = append(conds, "features.name LIKE ?")
		args = append(args, "%"+filter.TitleSearch+"%")
	}
	if filter.CreatedAfter != nil {
		conds = append(conds, "features.created_at >= ?")
		args = append(args, filter.CreatedAfter.UTC())
	}
	if filter.CreatedBefore != nil {
		conds = append(conds, "features.created_at <= ?")
		args = append(args, filter.CreatedBefore.UTC())
	}

	query := `SELECT ` + featureColumns + ` FROM features WHERE ` + strings.Join(conds, " AND ") +
		` ORDER BY created_at DESC, id DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError("list features", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*types.Feature
	for rows.Next() {
		f, err := scanFeature(rows.Scan)
		if err != nil {
			return nil, wrapDBError("scan feature", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Allowed fields for update to prevent SQL injection. Status is
// deliberately absent: status changes go through TransitionStatus so
// the lifecycle rules and audit trail cannot be bypassed.
var allowedUpdateFields = map[string]bool{
	"name":         true,
	"description":  true,
	"jira_key":     true,
	"requester_id": true,
}

// UpdateFeature updates plain fields on a feature within the context's
// tenant. Use TransitionStatus for status changes.
func (s *Store) UpdateFeature(ctx context.Context, tc tenant.Context, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}

	setClauses := []string{"updated_at = ?"}
	args := []interface{}{time.Now().UTC()}
	for key, value := range updates {
		if !allowedUpdateFields[key] {
			return fmt.Errorf("invalid field for update: %s", key)
		}
		setClauses = append(setClauses, key+" = ?")
		args = append(args, value)
	}

	where, whereArgs := scoped(tc, "features")
	args = append(args, whereArgs...)
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		`UPDATE features SET `+strings.Join(setClauses, ", ")+` WHERE `+where+` AND features.id = ?`,
		args...)
	if err != nil {
		return wrapDBError("update feature", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("update feature %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

// AddFeatureDependency inserts a depends-on edge between two features
// of the context's tenant. Self-edges and duplicates are rejected.
func (s *Store) AddFeatureDependency(ctx context.Context, tc tenant.Context, dep *types.FeatureDependency) error {
	if dep.FeatureID == dep.DependsOnID {
		return fmt.Errorf("feature cannot depend on itself")
	}
	if err := stampTenant(tc, &dep.TenantID); err != nil {
		return fmt.Errorf("add dependency: %w", err)
	}
	if dep.CreatedAt.IsZero() {
		dep.CreatedAt = time.Now().UTC()
	}

	return s.withImmediateTx(ctx, func(conn *sql.Conn) error {
		// Both endpoints must be visible under the tenant.
		where, args := scoped(tenant.WithID(dep.TenantID), "features")
		args = append(args, dep.FeatureID, dep.DependsOnID)
		var n int
		if err := conn.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM features WHERE `+where+` AND features.id IN (?, ?)`, args...).Scan(&n); err != nil {
			return wrapDBError("check dependency endpoints", err)
		}
		if n != 2 {
			return fmt.Errorf("dependency endpoints: %w", storage.ErrNotFound)
		}

		_, err := conn.ExecContext(ctx,
			`INSERT INTO feature_dependencies (feature_id, depends_on_id, tenant_id, created_at)
			 VALUES (?, ?, ?, ?)`,
			dep.FeatureID, dep.DependsOnID, dep.TenantID, dep.CreatedAt)
		return wrapDBError("insert dependency", err)
	})
}

// GetFeatureDependencies returns the features the given feature depends
// on, within the context's tenant.
func (s *Store) GetFeatureDependencies(ctx context.Context, tc tenant.Context, featureID string) ([]*types.Feature, error) {
	where, args := scoped(tc, "features")
	args = append(args, featureID)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+prefixColumns("features", featureColumns)+`
		 FROM features
		 JOIN feature_dependencies d ON d.depends_on_id = features.id
		 WHERE `+where+` AND d.feature_id = ?
		 ORDER BY features.created_at`, args...)
	if err != nil {
		return nil, wrapDBError("get dependencies", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*types.Feature
	for rows.Next() {
		f, err := scanFeature(rows.Scan)
		if err != nil {
			return nil, wrapDBError("scan dependency", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// prefixColumns qualifies a comma-separated column list with a table
// name so selects stay unambiguous across joins.
func prefixColumns(table, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, p := range parts {
		parts[i] = table + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

// AddComment inserts a comment on a feature of the context's tenant.
func (s *Store) AddComment(ctx context.Context, tc tenant.Context, c *types.Comment) error {
	if strings.TrimSpace(c.Body) == "" {
		return fmt.Errorf("comment body is required")
	}
	if err := stampTenant(tc, &c.TenantID); err != nil {
		return fmt.Errorf("add comment: %w", err)
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	// Visibility check doubles as the cross-tenant guard.
	if _, err := s.GetFeature(ctx, tenant.WithID(c.TenantID), c.FeatureID); err != nil {
		return fmt.Errorf("add comment: %w", err)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO comments (id, tenant_id, feature_id, author_id, body, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.TenantID, c.FeatureID, c.AuthorID, c.Body, c.CreatedAt)
	return wrapDBError("insert comment", err)
}

// GetComments returns a feature's comments, oldest first.
func (s *Store) GetComments(ctx context.Context, tc tenant.Context, featureID string) ([]*types.Comment, error) {
	where, args := scoped(tc, "comments")
	args = append(args, featureID)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tenant_id, feature_id, author_id, body, created_at
		 FROM comments WHERE `+where+` AND comments.feature_id = ?
		 ORDER BY created_at ASC`, args...)
	if err != nil {
		return nil, wrapDBError("get comments", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*types.Comment
	for rows.Next() {
		var c types.Comment
		if err := rows.Scan(&c.ID, &c.TenantID, &c.FeatureID, &c.AuthorID, &c.Body, &c.CreatedAt); err != nil {
			return nil, wrapDBError("scan comment", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
