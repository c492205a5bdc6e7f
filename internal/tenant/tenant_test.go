package tenant

import (
	"testing"

	"github.com/planvote/planvote/internal/types"
)

func strPtr(s string) *string { return &s }

func TestForResolutionOrder(t *testing.T) {
	tests := []struct {
		name   string
		user   *types.User
		wantID string
		wantOK bool
	}{
		{"nil user", nil, "", false},
		{"no tenant at all", &types.User{ID: "u1"}, "", false},
		{"home tenant only", &types.User{ID: "u1", TenantID: strPtr("t1")}, "t1", true},
		{"current tenant wins", &types.User{ID: "u1", TenantID: strPtr("t1"), CurrentTenantID: strPtr("t2")}, "t2", true},
		{"current only", &types.User{ID: "u1", CurrentTenantID: strPtr("t2")}, "t2", true},
		{"empty strings are unresolved", &types.User{ID: "u1", TenantID: strPtr(""), CurrentTenantID: strPtr("")}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := For(tt.user)
			id, ok := c.ID()
			if ok != tt.wantOK || id != tt.wantID {
				t.Errorf("For() = (%q, %v), want (%q, %v)", id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestZeroValueDenies(t *testing.T) {
	var c Context
	if c.Resolved() {
		t.Error("zero-value context must be unresolved")
	}
	if CanViewAny(c) || CanCreate(c) {
		t.Error("unresolved context must deny viewAny/create")
	}
	if CanView(c, "") || CanUpdate(c, "") || CanDelete(c, "") {
		t.Error("unresolved context must deny entity access even for empty tenant ids")
	}
}

func TestPolicies(t *testing.T) {
	c := WithID("t1")

	if !CanViewAny(c) || !CanCreate(c) {
		t.Error("resolved context must allow viewAny/create")
	}
	if !CanView(c, "t1") || !CanUpdate(c, "t1") || !CanDelete(c, "t1") {
		t.Error("same-tenant entity access denied")
	}
	if CanView(c, "t2") || CanUpdate(c, "t2") || CanDelete(c, "t2") {
		t.Error("cross-tenant entity access allowed")
	}
	if CanRestore(c, "t1") || CanForceDelete(c, "t1") {
		t.Error("restore/forceDelete must always be denied")
	}
}

func TestWithIDEmpty(t *testing.T) {
	if WithID("").Resolved() {
		t.Error("WithID(\"\") must be unresolved")
	}
}

func TestString(t *testing.T) {
	if got := None().String(); got != "tenant:none" {
		t.Errorf("None().String() = %q", got)
	}
	if got := WithID("t9").String(); got != "tenant:t9" {
		t.Errorf("WithID(t9).String() = %q", got)
	}
}
