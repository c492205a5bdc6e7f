package tenant

// Authorization policies layered on top of scoping. These are pure
// functions of (context, entity tenant id); they make the per-action
// decision while the storage layer's scope predicate makes cross-tenant
// rows unreachable in the first place.

// CanViewAny reports whether the actor may list entities of a scoped
// type. Listing only needs a resolvable tenant; the scope predicate
// narrows the rows.
func CanViewAny(c Context) bool {
	return c.ok
}

// CanCreate reports whether the actor may create scoped entities.
func CanCreate(c Context) bool {
	return c.ok
}

// CanView reports whether the actor may read one specific entity.
func CanView(c Context, entityTenantID string) bool {
	return c.ok && c.id == entityTenantID
}

// CanUpdate reports whether the actor may mutate one specific entity.
func CanUpdate(c Context, entityTenantID string) bool {
	return c.ok && c.id == entityTenantID
}

// CanDelete reports whether the actor may delete one specific entity.
func CanDelete(c Context, entityTenantID string) bool {
	return c.ok && c.id == entityTenantID
}

// CanRestore is always false: restore is disabled at the policy layer.
func CanRestore(Context, string) bool {
	return false
}

// CanForceDelete is always false: irreversible hard deletes are
// disabled at the policy layer.
func CanForceDelete(Context, string) bool {
	return false
}
