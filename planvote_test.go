package planvote

import (
	"context"
	"path/filepath"
	"testing"
)

func TestOpenAndPlan(t *testing.T) {
	ctx := context.Background()
	svc, store, err := Open(ctx, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = store.Close() }()

	ten := &Tenant{Name: "acme"}
	if err := store.CreateTenant(ctx, ten); err != nil {
		t.Fatalf("CreateTenant: %v", err)
	}
	user := &User{Email: "alice@example.com", TenantID: &ten.ID, CurrentTenantID: &ten.ID}
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	tc := TenantFor(user)
	if !tc.Resolved() {
		t.Fatal("expected resolved tenant context")
	}

	project := &Project{Name: "Launch"}
	if err := svc.CreateProject(ctx, tc, project); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	feature := &Feature{ProjectID: project.ID, Name: "Checkout"}
	if err := svc.CreateFeature(ctx, tc, feature); err != nil {
		t.Fatalf("CreateFeature: %v", err)
	}
	if feature.Status != "in-planning" {
		t.Errorf("default feature status = %q, want in-planning", feature.Status)
	}
}
