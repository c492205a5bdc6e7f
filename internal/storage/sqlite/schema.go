package sqlite

const schema = `
-- Tenants: ownership roots, never scoped themselves
CREATE TABLE IF NOT EXISTS tenants (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Users: global identities. tenant_id is the home tenant assigned at
-- registration; current_tenant_id is the active tenant for scoping.
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    tenant_id TEXT REFERENCES tenants(id),
    current_tenant_id TEXT REFERENCES tenants(id),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Memberships: which tenants a user belongs to
CREATE TABLE IF NOT EXISTS memberships (
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    tenant_id TEXT NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (user_id, tenant_id)
);

CREATE TABLE IF NOT EXISTS invitations (
    id TEXT PRIMARY KEY,
    tenant_id TEXT NOT NULL REFERENCES tenants(id),
    email TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    accepted_at DATETIME
);

CREATE TABLE IF NOT EXISTS projects (
    id TEXT PRIMARY KEY,
    tenant_id TEXT NOT NULL REFERENCES tenants(id),
    name TEXT NOT NULL CHECK(length(name) <= 255),
    description TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'in-planning',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_projects_tenant ON projects(tenant_id);

CREATE TABLE IF NOT EXISTS features (
    id TEXT PRIMARY KEY,
    tenant_id TEXT NOT NULL REFERENCES tenants(id),
    project_id TEXT NOT NULL REFERENCES projects(id),
    jira_key TEXT NOT NULL DEFAULT '',
    name TEXT NOT NULL CHECK(length(name) <= 255),
    description TEXT NOT NULL DEFAULT '',
    requester_id TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'in-planning',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_features_tenant ON features(tenant_id);
CREATE INDEX IF NOT EXISTS idx_features_project ON features(project_id);
CREATE INDEX IF NOT EXISTS idx_features_status ON features(status);

CREATE TABLE IF NOT EXISTS plannings (
    id TEXT PRIMARY KEY,
    tenant_id TEXT NOT NULL REFERENCES tenants(id),
    project_id TEXT NOT NULL REFERENCES projects(id),
    title TEXT NOT NULL,
    planned_at DATETIME,
    status TEXT NOT NULL DEFAULT 'in-planning',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_plannings_tenant ON plannings(tenant_id);
CREATE INDEX IF NOT EXISTS idx_plannings_project ON plannings(project_id);

CREATE TABLE IF NOT EXISTS commitments (
    id TEXT PRIMARY KEY,
    tenant_id TEXT NOT NULL REFERENCES tenants(id),
    planning_id TEXT NOT NULL REFERENCES plannings(id),
    feature_id TEXT NOT NULL REFERENCES features(id),
    status TEXT NOT NULL DEFAULT 'suggested',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (planning_id, feature_id)
);

CREATE INDEX IF NOT EXISTS idx_commitments_tenant ON commitments(tenant_id);
CREATE INDEX IF NOT EXISTS idx_commitments_planning ON commitments(planning_id);

CREATE TABLE IF NOT EXISTS votes (
    id TEXT PRIMARY KEY,
    tenant_id TEXT NOT NULL REFERENCES tenants(id),
    planning_id TEXT NOT NULL REFERENCES plannings(id),
    feature_id TEXT NOT NULL REFERENCES features(id),
    voter_id TEXT NOT NULL REFERENCES users(id),
    dimension TEXT NOT NULL CHECK(dimension IN ('business-value','time-criticality','risk-opportunity')),
    value INTEGER NOT NULL CHECK(value >= 1 AND value <= 10),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (planning_id, feature_id, voter_id, dimension)
);

CREATE INDEX IF NOT EXISTS idx_votes_tenant ON votes(tenant_id);
CREATE INDEX IF NOT EXISTS idx_votes_planning ON votes(planning_id);

CREATE TABLE IF NOT EXISTS estimations (
    id TEXT PRIMARY KEY,
    tenant_id TEXT NOT NULL REFERENCES tenants(id),
    planning_id TEXT NOT NULL REFERENCES plannings(id),
    feature_id TEXT NOT NULL REFERENCES features(id),
    estimator_id TEXT NOT NULL REFERENCES users(id),
    value INTEGER NOT NULL CHECK(value >= 1),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (planning_id, feature_id, estimator_id)
);

CREATE INDEX IF NOT EXISTS idx_estimations_tenant ON estimations(tenant_id);
CREATE INDEX IF NOT EXISTS idx_estimations_planning ON estimations(planning_id);

CREATE TABLE IF NOT EXISTS estimation_components (
    id TEXT PRIMARY KEY,
    estimation_id TEXT NOT NULL REFERENCES estimations(id) ON DELETE CASCADE,
    tenant_id TEXT NOT NULL REFERENCES tenants(id),
    name TEXT NOT NULL,
    value INTEGER NOT NULL CHECK(value >= 0)
);

CREATE INDEX IF NOT EXISTS idx_estimation_components_estimation ON estimation_components(estimation_id);

-- Append-only; rows are never updated or deleted in normal operation
CREATE TABLE IF NOT EXISTS estimation_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    estimation_id TEXT NOT NULL REFERENCES estimations(id),
    tenant_id TEXT NOT NULL REFERENCES tenants(id),
    old_value INTEGER NOT NULL,
    new_value INTEGER NOT NULL,
    changed_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS feature_dependencies (
    feature_id TEXT NOT NULL REFERENCES features(id) ON DELETE CASCADE,
    depends_on_id TEXT NOT NULL REFERENCES features(id) ON DELETE CASCADE,
    tenant_id TEXT NOT NULL REFERENCES tenants(id),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (feature_id, depends_on_id)
);

CREATE INDEX IF NOT EXISTS idx_feature_dependencies_depends_on ON feature_dependencies(depends_on_id);

CREATE TABLE IF NOT EXISTS comments (
    id TEXT PRIMARY KEY,
    tenant_id TEXT NOT NULL REFERENCES tenants(id),
    feature_id TEXT NOT NULL REFERENCES features(id) ON DELETE CASCADE,
    author_id TEXT NOT NULL REFERENCES users(id),
    body TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_comments_feature ON comments(feature_id);

-- Append-only audit trail for lifecycle transitions. from_status is
-- NULL on the creation record, and on a repair of a row whose stored
-- status was blank; a repaired foreign token is kept as-is.
CREATE TABLE IF NOT EXISTS status_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    entity_kind TEXT NOT NULL CHECK(entity_kind IN ('feature','project','planning','commitment')),
    entity_id TEXT NOT NULL,
    tenant_id TEXT NOT NULL REFERENCES tenants(id),
    from_status TEXT,
    to_status TEXT NOT NULL,
    changed_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_status_history_entity ON status_history(entity_kind, entity_id);
CREATE INDEX IF NOT EXISTS idx_status_history_tenant ON status_history(tenant_id);
`
