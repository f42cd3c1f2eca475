package paramrole

import "context"

// Checker provides role and permission checks for one principal over a
// snapshot of its resolved roles. It is created by the Service and can be
// stored in context for reuse within a request.
//
// The snapshot is taken once, at creation time, optionally scoped to a
// content object; it does not observe later grant changes.
type Checker struct {
	principal Principal
	content   Content
	roles     []ParamRole
	service   *Service
}

// NewChecker resolves the principal's effective roles (against obj, when
// given) and returns a Checker over the snapshot.
func (s *Service) NewChecker(ctx context.Context, principal Principal, obj Content) (*Checker, error) {
	roles, err := s.ResolveRoles(ctx, principal, obj)
	if err != nil {
		return nil, err
	}
	return &Checker{
		principal: principal,
		content:   obj,
		roles:     roles,
		service:   s,
	}, nil
}

// Principal returns the principal this checker is for.
func (c *Checker) Principal() Principal {
	return c.principal
}

// Roles returns the resolved role snapshot.
func (c *Checker) Roles() []ParamRole {
	return c.roles
}

// HasRole checks if the snapshot contains a role structurally equal to
// (name, params).
//
// Example:
//
//	if checker.HasRole("gas_member", paramrole.Params{"gas": paramrole.RefOf(gas)}) {
//	    // principal is a member of this purchasing group
//	}
func (c *Checker) HasRole(name string, params Params) bool {
	want := RoleSpec{Name: name, Params: params}
	for i := range c.roles {
		if c.roles[i].Spec().Equal(want) {
			return true
		}
	}
	return false
}

// HasRoleNamed checks if the snapshot contains any role with the given base
// name, regardless of parameters.
func (c *Checker) HasRoleNamed(name string) bool {
	for i := range c.roles {
		if c.roles[i].RoleName() == name {
			return true
		}
	}
	return false
}

// HasAnyRole checks if the snapshot contains any role with one of the given
// base names.
func (c *Checker) HasAnyRole(names ...string) bool {
	for _, name := range names {
		if c.HasRoleNamed(name) {
			return true
		}
	}
	return false
}

// HasAllRoles checks if the snapshot contains roles with all of the given
// base names.
func (c *Checker) HasAllRoles(names ...string) bool {
	for _, name := range names {
		if !c.HasRoleNamed(name) {
			return false
		}
	}
	return true
}

// HasPermission checks whether the principal holds a permission against the
// content object the snapshot was resolved for. Unlike the role checks this
// queries the permission tables, so it needs a context.
func (c *Checker) HasPermission(ctx context.Context, permission string) (bool, error) {
	return c.service.HasPermission(ctx, c.principal, permission, c.content)
}
