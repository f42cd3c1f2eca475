package paramrole

import (
	"github.com/fernandezvara/dbkit"
)

// MigrationService provides migration management functionality as an extension to Service
type MigrationService struct {
	*Service
}

// NewMigrationService creates a new migration service extension
func NewMigrationService(service *Service) *MigrationService {
	return &MigrationService{Service: service}
}

// Migrations returns all database migrations required for ParamRole.
// Use dbkit.Migrate(ctx, service.Migrations()) to run migrations.
// Use dbkit.MigrationStatus(ctx, service.Migrations()) to check status.
func (ms *MigrationService) Migrations() []dbkit.Migration {
	return []dbkit.Migration{
		{
			ID:          "paramrole-001",
			Description: "Create roles table",
			SQL: `
                CREATE TABLE IF NOT EXISTS roles (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    name TEXT NOT NULL UNIQUE,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                )`,
		},
		{
			ID:          "paramrole-002",
			Description: "Create params table",
			SQL: `
                CREATE TABLE IF NOT EXISTS params (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    name TEXT NOT NULL,
                    content_kind TEXT NOT NULL,
                    content_id TEXT NOT NULL,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    UNIQUE (name, content_kind, content_id)
                )`,
		},
		{
			ID:          "paramrole-003",
			Description: "Create param_roles table",
			SQL: `
                CREATE TABLE IF NOT EXISTS param_roles (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    role_id UUID NOT NULL REFERENCES roles (id),
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                )`,
		},
		{
			ID:          "paramrole-004",
			Description: "Create param_role_params join table",
			SQL: `
                CREATE TABLE IF NOT EXISTS param_role_params (
                    param_role_id UUID NOT NULL REFERENCES param_roles (id),
                    param_id UUID NOT NULL REFERENCES params (id),
                    PRIMARY KEY (param_role_id, param_id)
                )`,
		},
		{
			ID:          "paramrole-005",
			Description: "Create grant_relations table",
			SQL: `
                CREATE TABLE IF NOT EXISTS grant_relations (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    user_id TEXT,
                    group_id TEXT,
                    param_role_id UUID NOT NULL REFERENCES param_roles (id),
                    content_kind TEXT,
                    content_id TEXT,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    CHECK ((user_id IS NULL) <> (group_id IS NULL)),
                    CHECK ((content_kind IS NULL) = (content_id IS NULL))
                );
                CREATE UNIQUE INDEX IF NOT EXISTS grant_relations_unique
                    ON grant_relations (
                        coalesce(user_id, ''), coalesce(group_id, ''), param_role_id,
                        coalesce(content_kind, ''), coalesce(content_id, '')
                    )`,
		},
		{
			ID:          "paramrole-006",
			Description: "Create group_members table",
			SQL: `
                CREATE TABLE IF NOT EXISTS group_members (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    group_id TEXT NOT NULL,
                    member_id TEXT NOT NULL,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    UNIQUE (group_id, member_id)
                )`,
		},
		{
			ID:          "paramrole-007",
			Description: "Create global_permissions table",
			SQL: `
                CREATE TABLE IF NOT EXISTS global_permissions (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    permission TEXT NOT NULL,
                    role_id UUID NOT NULL REFERENCES roles (id),
                    content_kind TEXT NOT NULL,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    UNIQUE (permission, role_id, content_kind)
                )`,
		},
		{
			ID:          "paramrole-008",
			Description: "Create local_permissions table",
			SQL: `
                CREATE TABLE IF NOT EXISTS local_permissions (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    permission TEXT NOT NULL,
                    role_id UUID NOT NULL REFERENCES roles (id),
                    content_kind TEXT NOT NULL,
                    content_id TEXT NOT NULL,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    UNIQUE (permission, role_id, content_kind, content_id)
                )`,
		},
		{
			ID:          "paramrole-009",
			Description: "Create grant_audit_log table",
			SQL: `
                CREATE TABLE IF NOT EXISTS grant_audit_log (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    timestamp TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    actor_id TEXT NOT NULL DEFAULT '',
                    action TEXT NOT NULL,
                    principal_kind TEXT NOT NULL,
                    principal_id TEXT NOT NULL,
                    role_name TEXT NOT NULL DEFAULT '',
                    role_signature TEXT,
                    content_kind TEXT,
                    content_id TEXT,
                    ip_address TEXT,
                    user_agent TEXT,
                    request_id TEXT
                )`,
		},
		{
			ID:          "paramrole-010",
			Description: "Index grant_relations for resolution queries",
			SQL: `
                CREATE INDEX IF NOT EXISTS grant_relations_user_idx
                    ON grant_relations (user_id) WHERE user_id IS NOT NULL;
                CREATE INDEX IF NOT EXISTS grant_relations_group_idx
                    ON grant_relations (group_id) WHERE group_id IS NOT NULL;
                CREATE INDEX IF NOT EXISTS group_members_member_idx
                    ON group_members (member_id)`,
		},
	}
}
