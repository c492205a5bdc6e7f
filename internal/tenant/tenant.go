// Package tenant carries the tenant context that scopes every read and
// write against tenant-owned entities.
//
// The context is an explicit value passed down the call stack, never an
// ambient session: storage methods take it as a parameter, so the
// fail-closed behavior is testable without faking global auth state.
// Resolution order is the acting user's current tenant, then the home
// tenant assigned at registration, then none. "None" means scoped
// reads match zero rows while scoped writes are rejected.
package tenant

import (
	"github.com/planvote/planvote/internal/types"
)

// Context identifies the effective tenant for one request. The zero
// value is the unresolved context and denies all scoped access.
type Context struct {
	id string
	ok bool
}

// None returns the unresolved context. Scoped reads under it match
// nothing; scoped creates fail with storage.ErrNoTenant.
func None() Context {
	return Context{}
}

// WithID returns a context pinned to a tenant id. Intended for tests
// and privileged bootstrap paths; request handling should resolve
// through For.
func WithID(id string) Context {
	if id == "" {
		return None()
	}
	return Context{id: id, ok: true}
}

// For resolves the effective tenant from an acting user:
// current_tenant_id if set, else tenant_id, else none. A nil user
// (unauthenticated request) always resolves to none.
func For(u *types.User) Context {
	if u == nil {
		return None()
	}
	if u.CurrentTenantID != nil && *u.CurrentTenantID != "" {
		return Context{id: *u.CurrentTenantID, ok: true}
	}
	if u.TenantID != nil && *u.TenantID != "" {
		return Context{id: *u.TenantID, ok: true}
	}
	return None()
}

// ID returns the resolved tenant id and whether one is present.
func (c Context) ID() (string, bool) {
	return c.id, c.ok
}

// Resolved reports whether the context carries a tenant.
func (c Context) Resolved() bool {
	return c.ok
}

// String implements fmt.Stringer for log output.
func (c Context) String() string {
	if !c.ok {
		return "tenant:none"
	}
	return "tenant:" + c.id
}
