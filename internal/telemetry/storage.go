package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/planvote/planvote/internal/storage"
	"github.com/planvote/planvote/internal/tenant"
	"github.com/planvote/planvote/internal/types"
)

const storageScopeName = "github.com/planvote/planvote/storage"

// InstrumentedStorage wraps storage.Storage with OTel tracing and metrics.
// Every method gets a span and is counted in pv.storage.* metrics; status
// transitions and repairs additionally feed dedicated counters.
// Use WrapStorage to create one; it returns the original store unchanged
// when telemetry is disabled.
type InstrumentedStorage struct {
	inner        storage.Storage
	tracer       trace.Tracer
	ops          metric.Int64Counter
	dur          metric.Float64Histogram
	errs         metric.Int64Counter
	transitions  metric.Int64Counter
	repairs      metric.Int64Counter
	featureGauge metric.Int64Gauge
}

// WrapStorage returns s decorated with OTel instrumentation.
// When telemetry is disabled, s is returned as-is with zero overhead.
func WrapStorage(s storage.Storage) storage.Storage {
	if !Enabled() {
		return s
	}
	m := Meter(storageScopeName)
	ops, _ := m.Int64Counter("pv.storage.operations",
		metric.WithDescription("Total storage operations executed"),
	)
	dur, _ := m.Float64Histogram("pv.storage.operation.duration",
		metric.WithDescription("Storage operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	errs, _ := m.Int64Counter("pv.storage.errors",
		metric.WithDescription("Total storage operation errors"),
	)
	transitions, _ := m.Int64Counter("pv.status.transitions",
		metric.WithDescription("Status transitions requested, by entity kind"),
	)
	repairs, _ := m.Int64Counter("pv.status.repairs",
		metric.WithDescription("Statuses coerced to the default by the repair pass"),
	)
	featureGauge, _ := m.Int64Gauge("pv.feature.count",
		metric.WithDescription("Current number of features by status (snapshot from GetStatistics)"),
	)
	return &InstrumentedStorage{
		inner:        s,
		tracer:       Tracer(storageScopeName),
		ops:          ops,
		dur:          dur,
		errs:         errs,
		transitions:  transitions,
		repairs:      repairs,
		featureGauge: featureGauge,
	}
}

// op starts a span and records a metric for the named storage operation.
func (s *InstrumentedStorage) op(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span, time.Time) {
	all := append([]attribute.KeyValue{attribute.String("db.operation", name)}, attrs...)
	ctx, span := s.tracer.Start(ctx, "storage."+name,
		trace.WithAttributes(all...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	s.ops.Add(ctx, 1, metric.WithAttributes(all...))
	return ctx, span, time.Now()
}

// done ends the span, records duration and optional error.
func (s *InstrumentedStorage) done(ctx context.Context, span trace.Span, start time.Time, err error, attrs ...attribute.KeyValue) {
	ms := float64(time.Since(start).Milliseconds())
	s.dur.Record(ctx, ms, metric.WithAttributes(attrs...))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.errs.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	span.End()
}

func tenantAttr(tc tenant.Context) attribute.KeyValue {
	return attribute.String("pv.tenant", tc.String())
}

// ── Identity ────────────────────────────────────────────────────────────────

func (s *InstrumentedStorage) CreateTenant(ctx context.Context, t *types.Tenant) error {
	ctx, span, start := s.op(ctx, "CreateTenant")
	err := s.inner.CreateTenant(ctx, t)
	s.done(ctx, span, start, err)
	return err
}

func (s *InstrumentedStorage) GetTenant(ctx context.Context, id string) (*types.Tenant, error) {
	ctx, span, start := s.op(ctx, "GetTenant")
	v, err := s.inner.GetTenant(ctx, id)
	s.done(ctx, span, start, err)
	return v, err
}

func (s *InstrumentedStorage) CreateUser(ctx context.Context, u *types.User) error {
	ctx, span, start := s.op(ctx, "CreateUser")
	err := s.inner.CreateUser(ctx, u)
	s.done(ctx, span, start, err)
	return err
}

func (s *InstrumentedStorage) GetUser(ctx context.Context, idOrEmail string) (*types.User, error) {
	ctx, span, start := s.op(ctx, "GetUser")
	v, err := s.inner.GetUser(ctx, idOrEmail)
	s.done(ctx, span, start, err)
	return v, err
}

func (s *InstrumentedStorage) SetCurrentTenant(ctx context.Context, userID, tenantID string) error {
	attrs := []attribute.KeyValue{attribute.String("pv.tenant", tenantID)}
	ctx, span, start := s.op(ctx, "SetCurrentTenant", attrs...)
	err := s.inner.SetCurrentTenant(ctx, userID, tenantID)
	s.done(ctx, span, start, err, attrs...)
	return err
}

// ── Projects ────────────────────────────────────────────────────────────────

func (s *InstrumentedStorage) CreateProject(ctx context.Context, tc tenant.Context, p *types.Project) error {
	attrs := []attribute.KeyValue{tenantAttr(tc)}
	ctx, span, start := s.op(ctx, "CreateProject", attrs...)
	err := s.inner.CreateProject(ctx, tc, p)
	s.done(ctx, span, start, err, attrs...)
	return err
}

func (s *InstrumentedStorage) GetProject(ctx context.Context, tc tenant.Context, id string) (*types.Project, error) {
	attrs := []attribute.KeyValue{tenantAttr(tc)}
	ctx, span, start := s.op(ctx, "GetProject", attrs...)
	v, err := s.inner.GetProject(ctx, tc, id)
	s.done(ctx, span, start, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) ListProjects(ctx context.Context, tc tenant.Context) ([]*types.Project, error) {
	attrs := []attribute.KeyValue{tenantAttr(tc)}
	ctx, span, start := s.op(ctx, "ListProjects", attrs...)
	v, err := s.inner.ListProjects(ctx, tc)
	if err == nil {
		span.SetAttributes(attribute.Int("pv.result.count", len(v)))
	}
	s.done(ctx, span, start, err, attrs...)
	return v, err
}

// ── Features ────────────────────────────────────────────────────────────────

func (s *InstrumentedStorage) CreateFeature(ctx context.Context, tc tenant.Context, f *types.Feature) error {
	attrs := []attribute.KeyValue{tenantAttr(tc)}
	ctx, span, start := s.op(ctx, "CreateFeature", attrs...)
	err := s.inner.CreateFeature(ctx, tc, f)
	s.done(ctx, span, start, err, attrs...)
	return err
}

func (s *InstrumentedStorage) GetFeature(ctx context.Context, tc tenant.Context, id string) (*types.Feature, error) {
	attrs := []attribute.KeyValue{tenantAttr(tc), attribute.String("pv.feature.id", id)}
	ctx, span, start := s.op(ctx, "GetFeature", attrs...)
	v, err := s.inner.GetFeature(ctx, tc, id)
	s.done(ctx, span, start, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) ListFeatures(ctx context.Context, tc tenant.Context, filter types.FeatureFilter) ([]*types.Feature, error) {
	attrs := []attribute.KeyValue{tenantAttr(tc)}
	ctx, span, start := s.op(ctx, "ListFeatures", attrs...)
	v, err := s.inner.ListFeatures(ctx, tc, filter)
	if err == nil {
		span.SetAttributes(attribute.Int("pv.result.count", len(v)))
	}
	s.done(ctx, span, start, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) UpdateFeature(ctx context.Context, tc tenant.Context, id string, updates map[string]interface{}) error {
	attrs := []attribute.KeyValue{
		tenantAttr(tc),
		attribute.String("pv.feature.id", id),
		attribute.Int("pv.update.count", len(updates)),
	}
	ctx, span, start := s.op(ctx, "UpdateFeature", attrs...)
	err := s.inner.UpdateFeature(ctx, tc, id, updates)
	s.done(ctx, span, start, err, attrs...)
	return err
}

func (s *InstrumentedStorage) AddFeatureDependency(ctx context.Context, tc tenant.Context, dep *types.FeatureDependency) error {
	attrs := []attribute.KeyValue{
		tenantAttr(tc),
		attribute.String("pv.dep.from", dep.FeatureID),
		attribute.String("pv.dep.to", dep.DependsOnID),
	}
	ctx, span, start := s.op(ctx, "AddFeatureDependency", attrs...)
	err := s.inner.AddFeatureDependency(ctx, tc, dep)
	s.done(ctx, span, start, err, attrs...)
	return err
}

func (s *InstrumentedStorage) GetFeatureDependencies(ctx context.Context, tc tenant.Context, featureID string) ([]*types.Feature, error) {
	attrs := []attribute.KeyValue{tenantAttr(tc), attribute.String("pv.feature.id", featureID)}
	ctx, span, start := s.op(ctx, "GetFeatureDependencies", attrs...)
	v, err := s.inner.GetFeatureDependencies(ctx, tc, featureID)
	s.done(ctx, span, start, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) AddComment(ctx context.Context, tc tenant.Context, c *types.Comment) error {
	attrs := []attribute.KeyValue{tenantAttr(tc), attribute.String("pv.feature.id", c.FeatureID)}
	ctx, span, start := s.op(ctx, "AddComment", attrs...)
	err := s.inner.AddComment(ctx, tc, c)
	s.done(ctx, span, start, err, attrs...)
	return err
}

func (s *InstrumentedStorage) GetComments(ctx context.Context, tc tenant.Context, featureID string) ([]*types.Comment, error) {
	attrs := []attribute.KeyValue{tenantAttr(tc), attribute.String("pv.feature.id", featureID)}
	ctx, span, start := s.op(ctx, "GetComments", attrs...)
	v, err := s.inner.GetComments(ctx, tc, featureID)
	s.done(ctx, span, start, err, attrs...)
	return v, err
}

// ── Plannings ───────────────────────────────────────────────────────────────

func (s *InstrumentedStorage) CreatePlanning(ctx context.Context, tc tenant.Context, p *types.Planning) error {
	attrs := []attribute.KeyValue{tenantAttr(tc)}
	ctx, span, start := s.op(ctx, "CreatePlanning", attrs...)
	err := s.inner.CreatePlanning(ctx, tc, p)
	s.done(ctx, span, start, err, attrs...)
	return err
}

func (s *InstrumentedStorage) GetPlanning(ctx context.Context, tc tenant.Context, id string) (*types.Planning, error) {
	attrs := []attribute.KeyValue{tenantAttr(tc)}
	ctx, span, start := s.op(ctx, "GetPlanning", attrs...)
	v, err := s.inner.GetPlanning(ctx, tc, id)
	s.done(ctx, span, start, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) ListPlannings(ctx context.Context, tc tenant.Context, projectID string) ([]*types.Planning, error) {
	attrs := []attribute.KeyValue{tenantAttr(tc)}
	ctx, span, start := s.op(ctx, "ListPlannings", attrs...)
	v, err := s.inner.ListPlannings(ctx, tc, projectID)
	s.done(ctx, span, start, err, attrs...)
	return v, err
}

// ── Commitments ─────────────────────────────────────────────────────────────

func (s *InstrumentedStorage) CreateCommitment(ctx context.Context, tc tenant.Context, c *types.Commitment) error {
	attrs := []attribute.KeyValue{tenantAttr(tc)}
	ctx, span, start := s.op(ctx, "CreateCommitment", attrs...)
	err := s.inner.CreateCommitment(ctx, tc, c)
	s.done(ctx, span, start, err, attrs...)
	return err
}

func (s *InstrumentedStorage) GetCommitment(ctx context.Context, tc tenant.Context, id string) (*types.Commitment, error) {
	attrs := []attribute.KeyValue{tenantAttr(tc)}
	ctx, span, start := s.op(ctx, "GetCommitment", attrs...)
	v, err := s.inner.GetCommitment(ctx, tc, id)
	s.done(ctx, span, start, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) ListCommitments(ctx context.Context, tc tenant.Context, planningID string) ([]*types.Commitment, error) {
	attrs := []attribute.KeyValue{tenantAttr(tc)}
	ctx, span, start := s.op(ctx, "ListCommitments", attrs...)
	v, err := s.inner.ListCommitments(ctx, tc, planningID)
	s.done(ctx, span, start, err, attrs...)
	return v, err
}

// ── Status engine ───────────────────────────────────────────────────────────

func (s *InstrumentedStorage) TransitionStatus(ctx context.Context, tc tenant.Context, kind types.EntityKind, id string, target types.Status) error {
	attrs := []attribute.KeyValue{
		tenantAttr(tc),
		attribute.String("pv.kind", string(kind)),
		attribute.String("pv.status.target", string(target)),
	}
	ctx, span, start := s.op(ctx, "TransitionStatus", attrs...)
	err := s.inner.TransitionStatus(ctx, tc, kind, id, target)
	s.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("pv.kind", string(kind)),
		attribute.Bool("pv.status.ok", err == nil),
	))
	s.done(ctx, span, start, err, attrs...)
	return err
}

func (s *InstrumentedStorage) GetStatusHistory(ctx context.Context, tc tenant.Context, kind types.EntityKind, entityID string) ([]*types.StatusHistory, error) {
	attrs := []attribute.KeyValue{tenantAttr(tc), attribute.String("pv.kind", string(kind))}
	ctx, span, start := s.op(ctx, "GetStatusHistory", attrs...)
	v, err := s.inner.GetStatusHistory(ctx, tc, kind, entityID)
	s.done(ctx, span, start, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) RepairStatuses(ctx context.Context, kind types.EntityKind) ([]*types.RepairResult, error) {
	attrs := []attribute.KeyValue{attribute.String("pv.kind", string(kind))}
	ctx, span, start := s.op(ctx, "RepairStatuses", attrs...)
	v, err := s.inner.RepairStatuses(ctx, kind)
	if err == nil {
		span.SetAttributes(attribute.Int("pv.repair.count", len(v)))
		s.repairs.Add(ctx, int64(len(v)), metric.WithAttributes(attrs...))
	}
	s.done(ctx, span, start, err, attrs...)
	return v, err
}

// ── Votes and estimations ───────────────────────────────────────────────────

func (s *InstrumentedStorage) UpsertVote(ctx context.Context, tc tenant.Context, v *types.Vote) error {
	attrs := []attribute.KeyValue{tenantAttr(tc), attribute.String("pv.dimension", string(v.Dimension))}
	ctx, span, start := s.op(ctx, "UpsertVote", attrs...)
	err := s.inner.UpsertVote(ctx, tc, v)
	s.done(ctx, span, start, err, attrs...)
	return err
}

func (s *InstrumentedStorage) ListVotes(ctx context.Context, tc tenant.Context, planningID string) ([]*types.Vote, error) {
	attrs := []attribute.KeyValue{tenantAttr(tc)}
	ctx, span, start := s.op(ctx, "ListVotes", attrs...)
	v, err := s.inner.ListVotes(ctx, tc, planningID)
	s.done(ctx, span, start, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) UpsertEstimation(ctx context.Context, tc tenant.Context, e *types.Estimation) error {
	attrs := []attribute.KeyValue{tenantAttr(tc)}
	ctx, span, start := s.op(ctx, "UpsertEstimation", attrs...)
	err := s.inner.UpsertEstimation(ctx, tc, e)
	s.done(ctx, span, start, err, attrs...)
	return err
}

func (s *InstrumentedStorage) ListEstimations(ctx context.Context, tc tenant.Context, planningID string) ([]*types.Estimation, error) {
	attrs := []attribute.KeyValue{tenantAttr(tc)}
	ctx, span, start := s.op(ctx, "ListEstimations", attrs...)
	v, err := s.inner.ListEstimations(ctx, tc, planningID)
	s.done(ctx, span, start, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) GetEstimationHistory(ctx context.Context, tc tenant.Context, estimationID string) ([]*types.EstimationHistory, error) {
	attrs := []attribute.KeyValue{tenantAttr(tc)}
	ctx, span, start := s.op(ctx, "GetEstimationHistory", attrs...)
	v, err := s.inner.GetEstimationHistory(ctx, tc, estimationID)
	s.done(ctx, span, start, err, attrs...)
	return v, err
}

// ── Invitations ─────────────────────────────────────────────────────────────

func (s *InstrumentedStorage) CreateInvitation(ctx context.Context, tc tenant.Context, inv *types.Invitation) error {
	attrs := []attribute.KeyValue{tenantAttr(tc)}
	ctx, span, start := s.op(ctx, "CreateInvitation", attrs...)
	err := s.inner.CreateInvitation(ctx, tc, inv)
	s.done(ctx, span, start, err, attrs...)
	return err
}

func (s *InstrumentedStorage) GetInvitation(ctx context.Context, tc tenant.Context, id string) (*types.Invitation, error) {
	attrs := []attribute.KeyValue{tenantAttr(tc)}
	ctx, span, start := s.op(ctx, "GetInvitation", attrs...)
	v, err := s.inner.GetInvitation(ctx, tc, id)
	s.done(ctx, span, start, err, attrs...)
	return v, err
}

// ── Statistics and transactions ─────────────────────────────────────────────

func (s *InstrumentedStorage) GetStatistics(ctx context.Context, tc tenant.Context) (*types.Statistics, error) {
	attrs := []attribute.KeyValue{tenantAttr(tc)}
	ctx, span, start := s.op(ctx, "GetStatistics", attrs...)
	stats, err := s.inner.GetStatistics(ctx, tc)
	if err == nil && stats != nil {
		for status, count := range stats.FeaturesByStatus {
			s.featureGauge.Record(ctx, int64(count), metric.WithAttributes(
				attribute.String("pv.status", string(status)),
			))
		}
	}
	s.done(ctx, span, start, err, attrs...)
	return stats, err
}

// RunInTransaction gets a single span for the whole callback; the
// operations inside share one database transaction and are not
// individually instrumented.
func (s *InstrumentedStorage) RunInTransaction(ctx context.Context, fn func(tx storage.Transaction) error) error {
	ctx, span, start := s.op(ctx, "RunInTransaction")
	err := s.inner.RunInTransaction(ctx, fn)
	s.done(ctx, span, start, err)
	return err
}

func (s *InstrumentedStorage) Close() error {
	return s.inner.Close()
}
