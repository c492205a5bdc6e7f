package sqlite

import (
	"github.com/planvote/planvote/internal/storage"
	"github.com/planvote/planvote/internal/tenant"
)

// scoped returns the WHERE fragment restricting table's rows to the
// context's tenant. The column is table-qualified so the predicate
// survives joins. With no resolvable tenant the fragment matches zero
// rows: resolution failure is silent empty results, never an error, so
// read paths cannot leak whether cross-tenant rows exist.
func scoped(tc tenant.Context, table string) (string, []interface{}) {
	id, ok := tc.ID()
	if !ok {
		return "1 = 0", nil
	}
	return table + ".tenant_id = ?", []interface{}{id}
}

// stampTenant fills a blank tenant id from the context at create time.
// A pre-assigned tenant id is left alone (explicit assignment paths,
// e.g. tenant bootstrap at registration). Writes differ from reads:
// with neither a context nor a pre-assigned id the create is rejected.
func stampTenant(tc tenant.Context, tenantID *string) error {
	if *tenantID != "" {
		return nil
	}
	id, ok := tc.ID()
	if !ok {
		return storage.ErrNoTenant
	}
	*tenantID = id
	return nil
}
