package paramrole

import (
	"context"

	"github.com/fernandezvara/dbkit"
)

// Database defines the database operations interface for dependency injection
type Database interface {
	dbkit.IDB
}

// TransactionManager defines the transaction management interface
type TransactionManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
	TransactionWithOptions(ctx context.Context, opts dbkit.TxOptions, fn func(ctx context.Context) error) error
	ReadOnlyTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// RoleRegistry defines the parametric role registration interface
type RoleRegistry interface {
	Register(ctx context.Context, name string, params Params) (*ParamRole, error)
	GetRole(ctx context.Context, name string, params Params) (*ParamRole, error)
	CompareRoles(a, b any) (bool, error)
}

// GrantManager defines the grant relation management interface
type GrantManager interface {
	AddGlobalRole(ctx context.Context, principal Principal, role *ParamRole) (bool, error)
	AddLocalRole(ctx context.Context, obj Content, principal Principal, role *ParamRole) (bool, error)
	RemoveGlobalRole(ctx context.Context, principal Principal, role *ParamRole) (bool, error)
	RemoveLocalRole(ctx context.Context, obj Content, principal Principal, role *ParamRole) (bool, error)
	RemoveAllGlobalRoles(ctx context.Context, principal Principal) (bool, error)
	RemoveAllLocalRoles(ctx context.Context, obj Content, principal Principal) (bool, error)
}

// RoleResolver defines the principal resolution interface
type RoleResolver interface {
	ResolveRoles(ctx context.Context, principal Principal, obj Content) ([]ParamRole, error)
	ResolveRoleNames(ctx context.Context, principal Principal, obj Content) ([]string, error)
	HasRole(ctx context.Context, principal Principal, role *ParamRole, obj Content) (bool, error)
}

// PermissionManager defines the permission registration and checking interface
type PermissionManager interface {
	RegisterGlobalPermission(ctx context.Context, permission, roleName string, kind ContentKind) error
	GrantLocalPermission(ctx context.Context, obj Content, permission, roleName string) error
	RevokeLocalPermission(ctx context.Context, obj Content, permission, roleName string) (bool, error)
	HasPermission(ctx context.Context, principal Principal, permission string, obj Content) (bool, error)
}

// LifecycleHook defines the object-creation notification interface
type LifecycleHook interface {
	ObjectCreated(ctx context.Context, obj Content, created bool) error
}

// MigrationManager defines the migration management interface
type MigrationManager interface {
	Migrations() []dbkit.Migration
}

// HealthMonitor defines the health monitoring interface
type HealthMonitor interface {
	Health(ctx context.Context) dbkit.HealthStatus
	IsHealthy(ctx context.Context) bool
	Ping(ctx context.Context) error
	GetPoolStats() dbkit.PoolStats
}

// PoolManager defines the connection pool management interface
type PoolManager interface {
	ConfigureConnectionPool(config PoolConfig) error
	GetConnectionPoolConfig() (*PoolConfig, error)
	ResetConnectionPool() error
}

// AuditLogger defines the audit logging interface
type AuditLogger interface {
	GetAuditLog(ctx context.Context, filter AuditFilter) ([]GrantAuditLog, error)
}

// TransactionMonitor defines the transaction monitoring interface
type TransactionMonitor interface {
	GetTransactionMetrics() TransactionMetrics
	ResetTransactionMetrics()
	IsTransactionHealthy() bool
}
