package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/planvote/planvote/internal/storage"
	"github.com/planvote/planvote/internal/tenant"
	"github.com/planvote/planvote/internal/types"
)

// UpsertVote inserts a vote or, when the voter already rated this
// feature on this dimension in this planning, replaces the value.
func (s *Store) UpsertVote(ctx context.Context, tc tenant.Context, v *types.Vote) error {
	if err := v.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if err := stampTenant(tc, &v.TenantID); err != nil {
		return fmt.Errorf("upsert vote: %w", err)
	}
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now
	}
	v.UpdatedAt = now

	return s.withImmediateTx(ctx, func(conn *sql.Conn) error {
		where, args := scoped(tenant.WithID(v.TenantID), "plannings")
		args = append(args, v.PlanningID)
		var n int
		if err := conn.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM plannings WHERE `+where+` AND plannings.id = ?`, args...).Scan(&n); err != nil {
			return wrapDBError("check planning", err)
		}
		if n == 0 {
			return fmt.Errorf("planning %s: %w", v.PlanningID, storage.ErrNotFound)
		}

		_, err := conn.ExecContext(ctx,
			`INSERT INTO votes (id, tenant_id, planning_id, feature_id, voter_id, dimension, value, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(planning_id, feature_id, voter_id, dimension)
			 DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			v.ID, v.TenantID, v.PlanningID, v.FeatureID, v.VoterID, v.Dimension, v.Value, v.CreatedAt, v.UpdatedAt)
		return wrapDBError("upsert vote", err)
	})
}

// ListVotes returns all votes of a planning within the context's tenant.
func (s *Store) ListVotes(ctx context.Context, tc tenant.Context, planningID string) ([]*types.Vote, error) {
	where, args := scoped(tc, "votes")
	args = append(args, planningID)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tenant_id, planning_id, feature_id, voter_id, dimension, value, created_at, updated_at
		 FROM votes WHERE `+where+` AND votes.planning_id = ?
		 ORDER BY created_at ASC`, args...)
	if err != nil {
		return nil, wrapDBError("list votes", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*types.Vote
	for rows.Next() {
		var v types.Vote
		if err := rows.Scan(&v.ID, &v.TenantID, &v.PlanningID, &v.FeatureID, &v.VoterID, &v.Dimension, &v.Value, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, wrapDBError("scan vote", err)
		}
		out = append(out, &v)
	}
	return out, rows.Err()
}

// UpsertEstimation inserts or replaces one estimator's job-size figure.
// Components are replaced wholesale; a value change appends an
// estimation_history row in the same transaction.
func (s *Store) UpsertEstimation(ctx context.Context, tc tenant.Context, e *types.Estimation) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if err := stampTenant(tc, &e.TenantID); err != nil {
		return fmt.Errorf("upsert estimation: %w", err)
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now

	return s.withImmediateTx(ctx, func(conn *sql.Conn) error {
		var existingID string
		var existingValue int
		err := conn.QueryRowContext(ctx,
			`SELECT id, value FROM estimations
			 WHERE planning_id = ? AND feature_id = ? AND estimator_id = ? AND tenant_id = ?`,
			e.PlanningID, e.FeatureID, e.EstimatorID, e.TenantID).
			Scan(&existingID, &existingValue)
		switch {
		case err == sql.ErrNoRows:
			_, err := conn.ExecContext(ctx,
				`INSERT INTO estimations (id, tenant_id, planning_id, feature_id, estimator_id, value, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				e.ID, e.TenantID, e.PlanningID, e.FeatureID, e.EstimatorID, e.Value, e.CreatedAt, e.UpdatedAt)
			if err != nil {
				return wrapDBError("insert estimation", err)
			}
		case err != nil:
			return wrapDBError("get estimation", err)
		default:
			e.ID = existingID
			_, err := conn.ExecContext(ctx,
				`UPDATE estimations SET value = ?, updated_at = ? WHERE id = ?`,
				e.Value, e.UpdatedAt, e.ID)
			if err != nil {
				return wrapDBError("update estimation", err)
			}
			if existingValue != e.Value {
				_, err := conn.ExecContext(ctx,
					`INSERT INTO estimation_history (estimation_id, tenant_id, old_value, new_value, changed_at)
					 VALUES (?, ?, ?, ?, ?)`,
					e.ID, e.TenantID, existingValue, e.Value, now)
				if err != nil {
					return wrapDBError("record estimation change", err)
				}
			}
		}

		// Replace components wholesale; partial edits are not a thing.
		if _, err := conn.ExecContext(ctx,
			`DELETE FROM estimation_components WHERE estimation_id = ?`, e.ID); err != nil {
			return wrapDBError("clear components", err)
		}
		for _, c := range e.Components {
			if c.ID == "" {
				c.ID = uuid.NewString()
			}
			c.EstimationID = e.ID
			c.TenantID = e.TenantID
			if _, err := conn.ExecContext(ctx,
				`INSERT INTO estimation_components (id, estimation_id, tenant_id, name, value)
				 VALUES (?, ?, ?, ?, ?)`,
				c.ID, c.EstimationID, c.TenantID, c.Name, c.Value); err != nil {
				return wrapDBError("insert component", err)
			}
		}
		return nil
	})
}

// ListEstimations returns all estimations of a planning with their
// components, within the context's tenant.
func (s *Store) ListEstimations(ctx context.Context, tc tenant.Context, planningID string) ([]*types.Estimation, error) {
	where, args := scoped(tc, "estimations")
	args = append(args, planningID)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tenant_id, planning_id, feature_id, estimator_id, value, created_at, updated_at
		 FROM estimations WHERE `+where+` AND estimations.planning_id = ?
		 ORDER BY created_at ASC`, args...)
	if err != nil {
		return nil, wrapDBError("list estimations", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*types.Estimation
	byID := make(map[string]*types.Estimation)
	for rows.Next() {
		var e types.Estimation
		if err := rows.Scan(&e.ID, &e.TenantID, &e.PlanningID, &e.FeatureID, &e.EstimatorID, &e.Value, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, wrapDBError("scan estimation", err)
		}
		out = append(out, &e)
		byID[e.ID] = &e
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("list estimations", err)
	}
	if len(out) == 0 {
		return out, nil
	}

	cwhere, cargs := scoped(tc, "c")
	crows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.estimation_id, c.tenant_id, c.name, c.value
		 FROM estimation_components c
		 JOIN estimations ON estimations.id = c.estimation_id
		 WHERE `+cwhere+` AND estimations.planning_id = ?
		 ORDER BY c.name ASC`, append(cargs, planningID)...)
	if err != nil {
		return nil, wrapDBError("list components", err)
	}
	defer func() { _ = crows.Close() }()

	for crows.Next() {
		var c types.EstimationComponent
		if err := crows.Scan(&c.ID, &c.EstimationID, &c.TenantID, &c.Name, &c.Value); err != nil {
			return nil, wrapDBError("scan component", err)
		}
		if e, ok := byID[c.EstimationID]; ok {
			e.Components = append(e.Components, &c)
		}
	}
	return out, crows.Err()
}

// GetEstimationHistory returns the value-change trail of one
// estimation, oldest first.
func (s *Store) GetEstimationHistory(ctx context.Context, tc tenant.Context, estimationID string) ([]*types.EstimationHistory, error) {
	where, args := scoped(tc, "estimation_history")
	args = append(args, estimationID)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, estimation_id, tenant_id, old_value, new_value, changed_at
		 FROM estimation_history WHERE `+where+` AND estimation_history.estimation_id = ?
		 ORDER BY id ASC`, args...)
	if err != nil {
		return nil, wrapDBError("get estimation history", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*types.EstimationHistory
	for rows.Next() {
		var h types.EstimationHistory
		if err := rows.Scan(&h.ID, &h.EstimationID, &h.TenantID, &h.OldValue, &h.NewValue, &h.ChangedAt); err != nil {
			return nil, wrapDBError("scan estimation history", err)
		}
		out = append(out, &h)
	}
	return out, rows.Err()
}
