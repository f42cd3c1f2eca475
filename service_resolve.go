package paramrole

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/fernandezvara/dbkit"
)

// ============================================================================
// ROLE RESOLUTION
// ============================================================================

// ResolveRoles computes the full effective set of parametric roles of a
// principal. Pass a nil obj for an unscoped resolution.
//
// The result contains, in order: the principal's own global grants; if obj is
// given, the principal's local grants scoped to obj; then, for a user, per
// group the user belongs to, the group's local grants scoped to obj (if
// given) followed by the group's own resolved roles. Groups resolve global
// grants only during recursion, so nested groups never re-derive local grants
// a second time. Duplicates are permitted; callers needing a set must
// post-process.
//
// Resolution is read-only and runs within a single read-only transaction so a
// grant added or removed mid-resolution is never partially observed. A
// visited set guards the walk against cyclic group graphs.
//
// Example:
//
//	roles, err := service.ResolveRoles(ctx, paramrole.UserPrincipal(userID), order)
func (s *Service) ResolveRoles(ctx context.Context, principal Principal, obj Content) ([]ParamRole, error) {
	if err := principal.Validate(); err != nil {
		return nil, err
	}

	var roles []ParamRole
	err := s.ReadOnlyTransaction(ctx, func(ctx context.Context) error {
		var err error
		roles, err = s.resolveRoles(ctx, principal, obj, make(map[string]bool))
		return err
	})
	if err != nil {
		return nil, err
	}
	return roles, nil
}

// ResolveRoleNames is a convenience wrapper returning the deduplicated base
// role names of ResolveRoles.
func (s *Service) ResolveRoleNames(ctx context.Context, principal Principal, obj Content) ([]string, error) {
	roles, err := s.ResolveRoles(ctx, principal, obj)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(roles))
	names := make([]string, 0, len(roles))
	for i := range roles {
		name := roles[i].RoleName()
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names, nil
}

// HasRole reports whether the principal's effective roles include one
// structurally equal to the given parametric role.
func (s *Service) HasRole(ctx context.Context, principal Principal, role *ParamRole, obj Content) (bool, error) {
	roles, err := s.ResolveRoles(ctx, principal, obj)
	if err != nil {
		return false, err
	}

	want := role.Spec()
	for i := range roles {
		if roles[i].Spec().Equal(want) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) resolveRoles(ctx context.Context, principal Principal, obj Content, visited map[string]bool) ([]ParamRole, error) {
	if principal.IsGroup() {
		if visited[principal.ID] {
			return nil, nil
		}
		visited[principal.ID] = true
	}

	roles, err := s.grantedRoles(ctx, principal, ContentRef{})
	if err != nil {
		return nil, err
	}

	if obj != nil {
		local, err := s.grantedRoles(ctx, principal, RefOf(obj))
		if err != nil {
			return nil, err
		}
		roles = append(roles, local...)
	}

	if principal.IsUser() {
		groups, err := s.GroupsOf(ctx, principal.ID)
		if err != nil {
			return nil, err
		}
		for _, groupID := range groups {
			group := GroupPrincipal(groupID)
			if obj != nil {
				local, err := s.grantedRoles(ctx, group, RefOf(obj))
				if err != nil {
					return nil, err
				}
				roles = append(roles, local...)
			}
			// The recursion passes no object: local grants of this group were
			// collected above and must not be re-derived through nesting.
			inherited, err := s.resolveRoles(ctx, group, nil, visited)
			if err != nil {
				return nil, err
			}
			roles = append(roles, inherited...)
		}
	}

	return roles, nil
}

// grantedRoles returns the parametric roles granted directly to a principal
// for one exact scope (zero scope means global grants).
func (s *Service) grantedRoles(ctx context.Context, principal Principal, scope ContentRef) ([]ParamRole, error) {
	grants, err := s.grantsOf(ctx, principal, scope)
	if err != nil {
		return nil, err
	}

	roles := make([]ParamRole, 0, len(grants))
	for i := range grants {
		role, err := s.paramRoleByID(ctx, grants[i].ParamRoleID)
		if err != nil {
			return nil, err
		}
		roles = append(roles, *role)
	}
	return roles, nil
}

func (s *Service) grantsOf(ctx context.Context, principal Principal, scope ContentRef) ([]GrantRelation, error) {
	var grants []GrantRelation
	q := s.conn(ctx).NewSelect().Model(&grants)
	if principal.IsUser() {
		q = q.Where("user_id = ?", principal.ID)
	} else {
		q = q.Where("group_id = ?", principal.ID)
	}
	if scope.IsZero() {
		q = q.Where("content_kind IS NULL AND content_id IS NULL")
	} else {
		q = q.Where("content_kind = ? AND content_id = ?", scope.Kind, scope.ID)
	}
	q = q.Order("created_at ASC")

	err := dbkit.WithErr1(q.Scan(ctx), "GetGrants").Err()
	if err != nil {
		return nil, err
	}
	return grants, nil
}

// ============================================================================
// REVERSE LOOKUPS
// ============================================================================

// RoleUsers returns the IDs of all users a parametric role is granted to
// globally. If obj is given, users holding the role locally on obj are
// included as well.
func (s *Service) RoleUsers(ctx context.Context, role *ParamRole, obj Content) ([]string, error) {
	return s.rolePrincipals(ctx, role, obj, "user_id")
}

// RoleGroups returns the IDs of all groups a parametric role is granted to
// globally. If obj is given, groups holding the role locally on obj are
// included as well.
func (s *Service) RoleGroups(ctx context.Context, role *ParamRole, obj Content) ([]string, error) {
	return s.rolePrincipals(ctx, role, obj, "group_id")
}

func (s *Service) rolePrincipals(ctx context.Context, role *ParamRole, obj Content, column string) ([]string, error) {
	var grants []GrantRelation
	q := s.conn(ctx).NewSelect().Model(&grants).
		Where("param_role_id = ?", role.ID).
		Where(column + " IS NOT NULL")
	if obj != nil {
		ref := RefOf(obj)
		q = q.Where("(content_kind IS NULL AND content_id IS NULL) OR (content_kind = ? AND content_id = ?)",
			ref.Kind, ref.ID)
	} else {
		q = q.Where("content_kind IS NULL AND content_id IS NULL")
	}
	q = q.Order("created_at ASC")

	err := dbkit.WithErr1(q.Scan(ctx), "GetRolePrincipals").Err()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(grants))
	ids := make([]string, 0, len(grants))
	for i := range grants {
		id := grants[i].UserID
		if column == "group_id" {
			id = grants[i].GroupID
		}
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// CountGrants returns the number of grant relations held by a principal,
// global and local combined.
func (s *Service) CountGrants(ctx context.Context, principal Principal) (int, error) {
	if err := principal.Validate(); err != nil {
		return 0, err
	}
	return dbkit.Count[GrantRelation](ctx, s.conn(ctx), func(q *bun.SelectQuery) *bun.SelectQuery {
		if principal.IsUser() {
			return q.Where("user_id = ?", principal.ID)
		}
		return q.Where("group_id = ?", principal.ID)
	})
}
