package sqlite

import (
	"context"
	"testing"

	"github.com/planvote/planvote/internal/tenant"
	"github.com/planvote/planvote/internal/types"
)

// newTestStore creates a file-backed store under t.TempDir.
//
// File-based databases are preferred over ":memory:" here: the shared
// in-memory database leaks state between tests running in the same
// process, and the connection pool only works with MaxOpenConns(1)
// against memory databases.
func newTestStore(t *testing.T, dbPath string) *Store {
	t.Helper()

	if dbPath == "" {
		dbPath = t.TempDir() + "/test.db"
	}

	ctx := context.Background()
	store, err := New(ctx, dbPath)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	t.Cleanup(func() {
		if cerr := store.Close(); cerr != nil {
			t.Fatalf("Failed to close test database: %v", cerr)
		}
	})

	return store
}

// seedTenant creates a tenant row and returns a resolved context for it.
func seedTenant(t *testing.T, store *Store, id string) tenant.Context {
	t.Helper()
	ctx := context.Background()
	if err := store.CreateTenant(ctx, &types.Tenant{ID: id, Name: "Tenant " + id}); err != nil {
		t.Fatalf("CreateTenant(%s) failed: %v", id, err)
	}
	return tenant.WithID(id)
}

// seedUser creates a global user row so voter/estimator/author foreign
// keys resolve.
func seedUser(t *testing.T, store *Store, id string) {
	t.Helper()
	u := &types.User{ID: id, Name: id, Email: id + "@example.com"}
	if err := store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", id, err)
	}
}

// seedProject creates a project inside tc's tenant and returns it.
func seedProject(t *testing.T, store *Store, tc tenant.Context, name string) *types.Project {
	t.Helper()
	p := &types.Project{Name: name}
	if err := store.CreateProject(context.Background(), tc, p); err != nil {
		t.Fatalf("CreateProject(%s) failed: %v", name, err)
	}
	return p
}

// seedFeature creates a feature inside tc's tenant and returns it.
func seedFeature(t *testing.T, store *Store, tc tenant.Context, projectID, name string) *types.Feature {
	t.Helper()
	f := &types.Feature{ProjectID: projectID, Name: name}
	if err := store.CreateFeature(context.Background(), tc, f); err != nil {
		t.Fatalf("CreateFeature(%s) failed: %v", name, err)
	}
	return f
}

// seedPlanning creates a planning inside tc's tenant and returns it.
func seedPlanning(t *testing.T, store *Store, tc tenant.Context, projectID, title string) *types.Planning {
	t.Helper()
	p := &types.Planning{ProjectID: projectID, Title: title}
	if err := store.CreatePlanning(context.Background(), tc, p); err != nil {
		t.Fatalf("CreatePlanning(%s) failed: %v", title, err)
	}
	return p
}
