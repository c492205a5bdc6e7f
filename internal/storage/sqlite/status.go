package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/planvote/planvote/internal/lifecycle"
	"github.com/planvote/planvote/internal/storage"
	"github.com/planvote/planvote/internal/tenant"
	"github.com/planvote/planvote/internal/types"
)

// kindTables maps lifecycle kinds to their backing tables. One generic
// transition path serves all four kinds; there is deliberately no
// per-entity transition code to drift apart.
var kindTables = map[types.EntityKind]string{
	types.KindFeature:    "features",
	types.KindProject:    "projects",
	types.KindPlanning:   "plannings",
	types.KindCommitment: "commitments",
}

// recordStatusChange appends one immutable audit row. Creation records
// pass from = nil. Callers never invoke this directly; it runs inside
// the create and transition paths so it cannot be forgotten.
func recordStatusChange(ctx context.Context, e execer, kind types.EntityKind, entityID, tenantID string, from *types.Status, to types.Status, at time.Time) error {
	_, err := e.ExecContext(ctx,
		`INSERT INTO status_history (entity_kind, entity_id, tenant_id, from_status, to_status, changed_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		kind, entityID, tenantID, from, to, at)
	return wrapDBError("record status change", err)
}

// TransitionStatus moves an entity to a target status.
//
// Validation happens before any write: the target must be a declared
// state and reachable from the current one, or equal to it (no-op).
// The update itself is conditional on the status the transaction read
// (compare-and-swap), so two racing transitions cannot both win; the
// loser gets storage.ErrConflict instead of silently overwriting.
// Realized transitions append a status_history row in the same
// transaction; no-ops append nothing.
func (s *Store) TransitionStatus(ctx context.Context, tc tenant.Context, kind types.EntityKind, id string, target types.Status) error {
	return s.withImmediateTx(ctx, func(conn *sql.Conn) error {
		return transitionStatus(ctx, conn, tc, kind, id, target)
	})
}

func transitionStatus(ctx context.Context, conn *sql.Conn, tc tenant.Context, kind types.EntityKind, id string, target types.Status) error {
	table, ok := kindTables[kind]
	if !ok {
		return fmt.Errorf("transition status: %w: %s", lifecycle.ErrUnknownKind, kind)
	}

	where, args := scoped(tc, table)
	args = append(args, id)

	var current types.Status
	var tenantID string
	err := conn.QueryRowContext(ctx,
		`SELECT status, tenant_id FROM `+table+` WHERE `+where+` AND `+table+`.id = ?`,
		args...).Scan(&current, &tenantID)
	if err != nil {
		return wrapDBError("get "+string(kind)+" for transition", err)
	}

	if err := lifecycle.CanTransition(kind, current, target); err != nil {
		return err
	}
	if lifecycle.IsNoOp(current, target) {
		return nil
	}

	now := time.Now().UTC()
	res, err := conn.ExecContext(ctx,
		`UPDATE `+table+` SET status = ?, updated_at = ? WHERE id = ? AND tenant_id = ? AND status = ?`,
		target, now, id, tenantID, current)
	if err != nil {
		return wrapDBError("update "+string(kind)+" status", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("transition %s %s: %w", kind, id, storage.ErrConflict)
	}

	return recordStatusChange(ctx, conn, kind, id, tenantID, &current, target, now)
}

// GetStatusHistory returns the audit trail for one entity, oldest
// first, scoped to the context's tenant.
func (s *Store) GetStatusHistory(ctx context.Context, tc tenant.Context, kind types.EntityKind, entityID string) ([]*types.StatusHistory, error) {
	where, args := scoped(tc, "status_history")
	args = append(args, kind, entityID)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, entity_kind, entity_id, tenant_id, from_status, to_status, changed_at
		 FROM status_history
		 WHERE `+where+` AND entity_kind = ? AND entity_id = ?
		 ORDER BY id ASC`, args...)
	if err != nil {
		return nil, wrapDBError("get status history", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*types.StatusHistory
	for rows.Next() {
		var h types.StatusHistory
		if err := rows.Scan(&h.ID, &h.EntityKind, &h.EntityID, &h.TenantID, &h.FromStatus, &h.ToStatus, &h.ChangedAt); err != nil {
			return nil, wrapDBError("scan status history", err)
		}
		out = append(out, &h)
	}
	return out, rows.Err()
}

// RepairStatuses scans every row of the kind and coerces missing or
// undeclared statuses to the kind's default. This is the batch
// consistency pass of the status engine, not part of request handling:
// it runs across all tenants and logs each correction. Each realized
// coercion appends a history row so the audit trail stays complete.
func (s *Store) RepairStatuses(ctx context.Context, kind types.EntityKind) ([]*types.RepairResult, error) {
	table, ok := kindTables[kind]
	if !ok {
		return nil, fmt.Errorf("repair statuses: %w: %s", lifecycle.ErrUnknownKind, kind)
	}
	def := lifecycle.Default(kind)

	var results []*types.RepairResult
	err := s.withImmediateTx(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx,
			`SELECT id, tenant_id, status FROM `+table+` ORDER BY id`)
		if err != nil {
			return wrapDBError("scan "+table, err)
		}

		type broken struct {
			id, tenantID, status string
		}
		var found []broken
		for rows.Next() {
			var b broken
			var status sql.NullString
			if err := rows.Scan(&b.id, &b.tenantID, &status); err != nil {
				_ = rows.Close()
				return wrapDBError("scan "+table+" row", err)
			}
			b.status = status.String
			if !lifecycle.IsValid(kind, types.Status(b.status)) {
				found = append(found, b)
			}
		}
		if err := rows.Close(); err != nil {
			return wrapDBError("close "+table+" scan", err)
		}

		now := time.Now().UTC()
		for _, b := range found {
			if _, err := conn.ExecContext(ctx,
				`UPDATE `+table+` SET status = ?, updated_at = ? WHERE id = ?`,
				def, now, b.id); err != nil {
				return wrapDBError("repair "+string(kind)+" status", err)
			}
			// A blank status repairs like a creation (nil from);
			// a foreign token is preserved in the trail as-is.
			var from *types.Status
			if b.status != "" {
				raw := types.Status(b.status)
				from = &raw
			}
			if err := recordStatusChange(ctx, conn, kind, b.id, b.tenantID, from, def, now); err != nil {
				return err
			}
			log.Printf("repair: %s %s: coerced status %q to %q", kind, b.id, b.status, def)
			results = append(results, &types.RepairResult{
				Kind:      kind,
				EntityID:  b.id,
				TenantID:  b.tenantID,
				OldStatus: b.status,
				NewStatus: def,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// GetStatistics returns aggregate counts for the context's tenant.
func (s *Store) GetStatistics(ctx context.Context, tc tenant.Context) (*types.Statistics, error) {
	stats := &types.Statistics{FeaturesByStatus: make(map[types.Status]int)}

	where, args := scoped(tc, "features")
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM features WHERE `+where+` GROUP BY status`, args...)
	if err != nil {
		return nil, wrapDBError("feature stats", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var st types.Status
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, wrapDBError("scan feature stats", err)
		}
		stats.FeaturesByStatus[st] = n
		stats.TotalFeatures += n
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("feature stats", err)
	}

	counts := []struct {
		table string
		dst   *int
	}{
		{"projects", &stats.TotalProjects},
		{"plannings", &stats.TotalPlannings},
		{"commitments", &stats.TotalCommitments},
		{"votes", &stats.TotalVotes},
	}
	for _, c := range counts {
		where, args := scoped(tc, c.table)
		if err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM `+c.table+` WHERE `+where, args...).Scan(c.dst); err != nil {
			return nil, wrapDBError(c.table+" stats", err)
		}
	}
	return stats, nil
}
