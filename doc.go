// Package paramrole provides a parametric role and permission management system.
//
// ParamRole generalizes plain role-based access control with runtime-typed
// parameters: a role is not just a name, but a name plus a validated set of
// typed references to domain objects. "gas_referrer_supplier" parametrized by
// one purchasing group and one supplier is a different role than the same name
// parametrized by another pair, and the engine guarantees at most one stored
// role per (name, parameters) signature.
//
// # Core Concepts
//
// ContentRef: A tuple of (ContentKind, ID) pointing at an arbitrary domain
// object. Used both as a role parameter value and as the optional local scope
// of a grant.
//
// ParamRole: A base role name plus a set of named ContentRef parameters.
// Two ParamRoles are equal iff they share the base role and the same set of
// (name, ref) pairs. Registration is structural: registering an equal role
// twice returns the stored one.
//
// Constraints: The domain declares which parameter names and kinds each role
// name accepts. Registration validates against this table and rejects unknown
// roles, unknown parameter names, and wrong type signatures.
//
// Principal: A user or a group. Grants index roles by principal; resolving a
// user's roles walks its direct grants plus every group it belongs to.
//
// Global vs local grants: A grant without a content scope applies everywhere;
// a grant scoped to a content object is effective only when evaluating that
// exact object.
//
// # Key Features
//
//   - Structural deduplication: at most one ParamRole per (role, params) signature
//   - Constraint-table validation with exact type-signature matching
//   - Global and per-object (local) role and permission grants
//   - Principal resolution through users and group membership, cycle-safe
//   - Idempotent permission registration (global and local)
//   - Lifecycle hook for auto-provisioning roles/permissions on object creation
//   - Detailed audit logging of every grant and revocation
//   - DBKit integration: uses your existing database connection
//
// # Basic Usage
//
//	// 1. Declare the domain constraints (at application startup)
//	constraints := paramrole.NewConstraints()
//	constraints.Role("gas_member").Param("gas", "gas").
//	    Role("supplier_referrer").Param("supplier", "supplier").
//	    Role("gas_referrer_supplier").Param("gas", "gas").Param("supplier", "supplier").
//	    Role("gas_referrer_order").Param("order", "order")
//
//	// 2. Create the service
//	service := paramrole.NewService(constraints, db)
//
//	// 3. Run migrations
//	db.Migrate(ctx, paramrole.NewMigrationService(service).Migrations())
//
//	// 4. Register parametric roles and grant them
//	role, err := service.Register(ctx, "gas_member", paramrole.Params{"gas": paramrole.RefOf(gas)})
//	service.AddGlobalRole(ctx, paramrole.UserPrincipal(userID), role)
//	service.AddLocalRole(ctx, order, paramrole.GroupPrincipal(groupID), role)
//
//	// 5. Resolve effective roles
//	roles, err := service.ResolveRoles(ctx, paramrole.UserPrincipal(userID), order)
//
// # Permissions
//
// Permission codes are registered once and then bound to base roles either
// globally (per content kind) or locally (per object instance):
//
//	service.Permissions().Define("view", "Read access")
//	service.RegisterGlobalPermission(ctx, "view", "gas_member", "gas")
//	service.GrantLocalPermission(ctx, order, "edit", "gas_referrer_order")
//
//	ok, err := service.HasPermission(ctx, paramrole.UserPrincipal(userID), "edit", order)
//
// # Lifecycle Hook
//
// The embedding application notifies the engine exactly once per newly
// persisted domain object. Objects may implement RoleSetup to create their
// roles and LocalGranter to declare per-instance permission grants; content
// kinds registered with GlobalGrants get model-wide permission provisioning:
//
//	service.RegisterContent(paramrole.ContentDefinition{
//	    Kind: "supplier",
//	    Load: loadSupplier,
//	    List: listSuppliers,
//	    GlobalGrants: []paramrole.GrantSpec{{Permission: "view", Roles: []string{"gas_member"}}},
//	})
//
//	// after INSERT of a new supplier:
//	service.ObjectCreated(ctx, supplier, true)
//
// # Audit Log
//
// All grant changes are automatically logged with actor, target principal,
// role signature, scope, timestamp and request metadata (IP, user agent,
// request ID) taken from the context.
package paramrole
