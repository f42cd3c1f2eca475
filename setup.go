package paramrole

import (
	"context"
	"errors"
	"slices"

	"github.com/fernandezvara/dbkit"
)

// RoleSetup is implemented by domain objects that create their own parametric
// roles when first persisted. The lifecycle hook calls SetupRoles exactly
// once, at creation time.
type RoleSetup interface {
	SetupRoles(ctx context.Context, svc *Service) error
}

// LocalGranter is implemented by domain objects declaring per-instance
// permission grants: which permission codes are granted to which base roles
// on this object only.
type LocalGranter interface {
	LocalGrants() []GrantSpec
}

// ObjectCreated is the lifecycle notification for newly persisted domain
// objects. The embedding system must call it exactly once per instance,
// passing created=true only on first-time creation; the engine performs no
// autodiscovery of creation events.
//
// For a new object the hook runs, in order:
//
//  1. obj.SetupRoles, when the object implements RoleSetup.
//  2. Model-wide provisioning: when the object's content kind is registered
//     with GlobalGrants, each declared permission is registered as a global
//     permission for every currently-known base role. This mirrors the
//     one-time bulk pass run when an object type is introduced; the grant's
//     role list narrows only the later per-role pass.
//  3. Otherwise, per-instance provisioning: when the object implements
//     LocalGranter, each declared (permission, roles) pair is granted locally
//     on the object. Local grants are idempotent, so replayed notifications
//     do not accumulate rows.
//
// Registration of a new base role runs the converse provisioning pass
// internally (see Register): the new role picks up every model-wide and
// per-instance grant that names it.
func (s *Service) ObjectCreated(ctx context.Context, obj Content, created bool) error {
	if !created {
		return nil
	}

	if rs, ok := obj.(RoleSetup); ok {
		if err := rs.SetupRoles(ctx, s); err != nil {
			return err
		}
	}

	def, registered := s.contents.Get(obj.ContentKind())
	if registered && len(def.GlobalGrants) > 0 {
		// The model-wide pass is a bulk one: each declared permission is
		// registered for every base role currently stored, not only the
		// roles the grant names. The role filter applies when a new base
		// role is registered later (see setupPermissionsForNewRole).
		all, err := s.knownRoleNames(ctx)
		if err != nil {
			return err
		}
		for _, grant := range def.GlobalGrants {
			for _, roleName := range all {
				err := s.RegisterGlobalPermission(ctx, grant.Permission, roleName, obj.ContentKind())
				if err != nil && !errors.Is(err, ErrRoleNotFound) {
					return err
				}
			}
		}
		return nil
	}

	if lg, ok := obj.(LocalGranter); ok {
		for _, grant := range lg.LocalGrants() {
			for _, roleName := range grant.Roles {
				err := s.GrantLocalPermission(ctx, obj, grant.Permission, roleName)
				if err != nil && !errors.Is(err, ErrRoleNotFound) {
					return err
				}
			}
		}
	}

	return nil
}

// setupPermissionsForNewRole provisions permissions for a base role created
// for the first time: model-wide grants naming the role become global
// permissions, and per-instance grants naming the role on existing objects
// become local permissions.
func (s *Service) setupPermissionsForNewRole(ctx context.Context, role *Role) error {
	for _, kind := range s.contents.Kinds() {
		def, _ := s.contents.Get(kind)

		for _, grant := range def.GlobalGrants {
			if len(grant.Roles) == 0 || slices.Contains(grant.Roles, role.Name) {
				if err := s.RegisterGlobalPermission(ctx, grant.Permission, role.Name, kind); err != nil {
					return err
				}
			}
		}

		if def.List == nil {
			continue
		}
		instances, err := def.List(ctx)
		if err != nil {
			return err
		}
		for _, instance := range instances {
			lg, ok := instance.(LocalGranter)
			if !ok {
				continue
			}
			for _, grant := range lg.LocalGrants() {
				if slices.Contains(grant.Roles, role.Name) {
					if err := s.GrantLocalPermission(ctx, instance, grant.Permission, role.Name); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

// knownRoleNames returns the names of every base role currently stored.
func (s *Service) knownRoleNames(ctx context.Context) ([]string, error) {
	var names []string
	err := dbkit.WithErr1(s.conn(ctx).NewRaw("SELECT name FROM roles ORDER BY name").Scan(ctx, &names), "KnownRoleNames").Err()
	if err != nil {
		return nil, err
	}
	return names, nil
}
