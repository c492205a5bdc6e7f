package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/planvote/planvote/internal/storage"
	"github.com/planvote/planvote/internal/tenant"
	"github.com/planvote/planvote/internal/types"
)

// Two tenants sharing one database must never see each other's rows,
// no matter which read path they use.
func TestTenantIsolationReads(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()
	acme := seedTenant(t, store, "acme")
	rival := seedTenant(t, store, "rival")

	acmeProject := seedProject(t, store, acme, "Acme platform")
	rivalProject := seedProject(t, store, rival, "Rival platform")
	acmeFeature := seedFeature(t, store, acme, acmeProject.ID, "Acme feature")

	// List paths return only own rows.
	projects, err := store.ListProjects(ctx, rival)
	if err != nil {
		t.Fatalf("ListProjects failed: %v", err)
	}
	if len(projects) != 1 || projects[0].ID != rivalProject.ID {
		t.Errorf("Rival sees %d projects, want only its own", len(projects))
	}

	features, err := store.ListFeatures(ctx, rival, types.FeatureFilter{})
	if err != nil {
		t.Fatalf("ListFeatures failed: %v", err)
	}
	if len(features) != 0 {
		t.Errorf("Rival sees %d foreign features, want 0", len(features))
	}

	// Point lookups by a leaked id behave as if the row does not exist.
	if _, err := store.GetProject(ctx, rival, acmeProject.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetProject across tenants = %v, want ErrNotFound", err)
	}
	if _, err := store.GetFeature(ctx, rival, acmeFeature.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetFeature across tenants = %v, want ErrNotFound", err)
	}
}

// An unresolved tenant context fails closed: reads see nothing, writes
// are rejected before touching the database.
func TestUnresolvedTenantFailsClosed(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()
	acme := seedTenant(t, store, "acme")
	project := seedProject(t, store, acme, "Platform")
	seedFeature(t, store, acme, project.ID, "Dark mode")

	none := tenant.None()

	features, err := store.ListFeatures(ctx, none, types.FeatureFilter{})
	if err != nil {
		t.Fatalf("ListFeatures failed: %v", err)
	}
	if len(features) != 0 {
		t.Errorf("Unresolved context sees %d features, want 0", len(features))
	}

	if _, err := store.GetProject(ctx, none, project.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetProject without tenant = %v, want ErrNotFound", err)
	}

	err = store.CreateProject(ctx, none, &types.Project{Name: "Orphan"})
	if !errors.Is(err, storage.ErrNoTenant) {
		t.Errorf("CreateProject without tenant = %v, want ErrNoTenant", err)
	}
	err = store.CreateFeature(ctx, none, &types.Feature{ProjectID: project.ID, Name: "Orphan"})
	if !errors.Is(err, storage.ErrNoTenant) {
		t.Errorf("CreateFeature without tenant = %v, want ErrNoTenant", err)
	}
}

// Cross-tenant writes by leaked id must not land.
func TestTenantIsolationWrites(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()
	acme := seedTenant(t, store, "acme")
	rival := seedTenant(t, store, "rival")
	project := seedProject(t, store, acme, "Platform")
	f := seedFeature(t, store, acme, project.ID, "Dark mode")

	err := store.UpdateFeature(ctx, rival, f.ID, map[string]interface{}{"name": "Hijacked"})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("UpdateFeature across tenants = %v, want ErrNotFound", err)
	}

	got, err := store.GetFeature(ctx, acme, f.ID)
	if err != nil {
		t.Fatalf("GetFeature failed: %v", err)
	}
	if got.Name != "Dark mode" {
		t.Errorf("Feature name changed by foreign tenant: %q", got.Name)
	}

	// A foreign tenant cannot attach a feature to someone else's project.
	err = store.CreateFeature(ctx, rival, &types.Feature{ProjectID: project.ID, Name: "Cuckoo"})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("CreateFeature into foreign project = %v, want ErrNotFound", err)
	}
}

// Dependencies and comments ride the same scoping rules as their
// features.
func TestTenantIsolationDependenciesAndComments(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()
	acme := seedTenant(t, store, "acme")
	rival := seedTenant(t, store, "rival")
	acmeProject := seedProject(t, store, acme, "Acme platform")
	rivalProject := seedProject(t, store, rival, "Rival platform")
	a := seedFeature(t, store, acme, acmeProject.ID, "A")
	b := seedFeature(t, store, acme, acmeProject.ID, "B")
	r := seedFeature(t, store, rival, rivalProject.ID, "R")
	seedUser(t, store, "alice")
	seedUser(t, store, "mallory")

	// Dependencies never cross tenants.
	err := store.AddFeatureDependency(ctx, acme, &types.FeatureDependency{FeatureID: a.ID, DependsOnID: r.ID})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Cross-tenant dependency = %v, want ErrNotFound", err)
	}

	if err := store.AddFeatureDependency(ctx, acme, &types.FeatureDependency{FeatureID: a.ID, DependsOnID: b.ID}); err != nil {
		t.Fatalf("AddFeatureDependency failed: %v", err)
	}
	deps, err := store.GetFeatureDependencies(ctx, rival, a.ID)
	if err != nil {
		t.Fatalf("GetFeatureDependencies failed: %v", err)
	}
	if len(deps) != 0 {
		t.Errorf("Rival sees %d foreign dependencies, want 0", len(deps))
	}

	// Comments on foreign features are rejected and invisible.
	err = store.AddComment(ctx, rival, &types.Comment{FeatureID: a.ID, AuthorID: "mallory", Body: "hi"})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Comment on foreign feature = %v, want ErrNotFound", err)
	}
	if err := store.AddComment(ctx, acme, &types.Comment{FeatureID: a.ID, AuthorID: "alice", Body: "ship it"}); err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}
	comments, err := store.GetComments(ctx, rival, a.ID)
	if err != nil {
		t.Fatalf("GetComments failed: %v", err)
	}
	if len(comments) != 0 {
		t.Errorf("Rival sees %d foreign comments, want 0", len(comments))
	}
}

func TestGetStatisticsScopedByTenant(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()
	acme := seedTenant(t, store, "acme")
	rival := seedTenant(t, store, "rival")
	acmeProject := seedProject(t, store, acme, "Acme platform")
	seedProject(t, store, rival, "Rival platform")
	seedFeature(t, store, acme, acmeProject.ID, "A")
	seedFeature(t, store, acme, acmeProject.ID, "B")

	stats, err := store.GetStatistics(ctx, acme)
	if err != nil {
		t.Fatalf("GetStatistics failed: %v", err)
	}
	if stats.TotalFeatures != 2 || stats.TotalProjects != 1 {
		t.Errorf("Acme stats = %d features / %d projects, want 2 / 1", stats.TotalFeatures, stats.TotalProjects)
	}
	if stats.FeaturesByStatus[types.FeatureInPlanning] != 2 {
		t.Errorf("FeaturesByStatus[in-planning] = %d, want 2", stats.FeaturesByStatus[types.FeatureInPlanning])
	}

	stats, err = store.GetStatistics(ctx, tenant.None())
	if err != nil {
		t.Fatalf("GetStatistics without tenant failed: %v", err)
	}
	if stats.TotalFeatures != 0 || stats.TotalProjects != 0 {
		t.Errorf("Unresolved context stats not empty: %+v", stats)
	}
}
