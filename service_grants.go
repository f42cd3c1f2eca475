package paramrole

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/fernandezvara/dbkit"
)

// ============================================================================
// GRANT RELATION OPERATIONS
// ============================================================================

// AddGlobalRole grants a parametric role to a principal for all content
// objects. Returns true if a new grant was created, false if an identical
// grant already existed. Fails with ErrInvalidPrincipal if the principal is
// neither a user nor a group.
//
// Example:
//
//	created, err := service.AddGlobalRole(ctx, paramrole.UserPrincipal(userID), role)
func (s *Service) AddGlobalRole(ctx context.Context, principal Principal, role *ParamRole) (bool, error) {
	return s.addRole(ctx, principal, role, ContentRef{})
}

// AddLocalRole grants a parametric role to a principal scoped to one content
// object. The grant is effective only when resolving roles against that exact
// object. Same idempotence semantics as AddGlobalRole.
//
// Example:
//
//	created, err := service.AddLocalRole(ctx, order, paramrole.GroupPrincipal(groupID), role)
func (s *Service) AddLocalRole(ctx context.Context, obj Content, principal Principal, role *ParamRole) (bool, error) {
	return s.addRole(ctx, principal, role, RefOf(obj))
}

// RemoveGlobalRole removes a global grant. Returns true if a matching grant
// was found and deleted, false if none existed.
func (s *Service) RemoveGlobalRole(ctx context.Context, principal Principal, role *ParamRole) (bool, error) {
	return s.removeRole(ctx, principal, role, ContentRef{})
}

// RemoveLocalRole removes a grant scoped to a content object. Returns true if
// a matching grant was found and deleted, false if none existed.
func (s *Service) RemoveLocalRole(ctx context.Context, obj Content, principal Principal, role *ParamRole) (bool, error) {
	return s.removeRole(ctx, principal, role, RefOf(obj))
}

// RemoveAllGlobalRoles removes every global grant of a principal.
// Returns true iff at least one grant was deleted.
func (s *Service) RemoveAllGlobalRoles(ctx context.Context, principal Principal) (bool, error) {
	return s.removeAllRoles(ctx, principal, ContentRef{})
}

// RemoveAllLocalRoles removes every grant of a principal scoped to a content
// object. Returns true iff at least one grant was deleted.
func (s *Service) RemoveAllLocalRoles(ctx context.Context, obj Content, principal Principal) (bool, error) {
	return s.removeAllRoles(ctx, principal, RefOf(obj))
}

func (s *Service) addRole(ctx context.Context, principal Principal, role *ParamRole, scope ContentRef) (bool, error) {
	if err := principal.Validate(); err != nil {
		return false, err
	}

	var created bool
	err := s.Transaction(ctx, func(ctx context.Context) error {
		exists, err := s.grantExists(ctx, principal, role.ID, scope)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}

		grant := &GrantRelation{
			ParamRoleID: role.ID,
			ContentKind: scope.Kind,
			ContentID:   scope.ID,
		}
		if err := grant.SetPrincipal(principal); err != nil {
			return err
		}

		result, err := s.conn(ctx).NewInsert().Model(grant).Exec(ctx)
		err = dbkit.WithErr(result, err, "CreateGrantRelation").Err()
		if err != nil {
			// A concurrent identical add can slip past the existence check;
			// the unique index turns it into a duplicate, not a failure.
			if dbkit.IsDuplicate(err) {
				return nil
			}
			return NewError(ErrDatabaseError, "failed to create grant relation").
				WithPrincipal(principal).
				WithRole(role.RoleName()).
				WithContent(scope)
		}
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if created {
		s.auditGrant(ctx, AuditActionGranted, principal, role, scope)
	}
	return created, nil
}

func (s *Service) removeRole(ctx context.Context, principal Principal, role *ParamRole, scope ContentRef) (bool, error) {
	if err := principal.Validate(); err != nil {
		return false, err
	}

	q := s.conn(ctx).NewDelete().Table("grant_relations").
		Where("param_role_id = ?", role.ID)
	q = whereGrantPrincipal(q, principal)
	q = whereGrantScopeDelete(q, scope)

	result, err := q.Exec(ctx)
	err = dbkit.WithErr(result, err, "DeleteGrantRelation").Err()
	if err != nil {
		return false, err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return false, nil
	}

	s.auditGrant(ctx, AuditActionRevoked, principal, role, scope)
	return true, nil
}

func (s *Service) removeAllRoles(ctx context.Context, principal Principal, scope ContentRef) (bool, error) {
	if err := principal.Validate(); err != nil {
		return false, err
	}

	q := s.conn(ctx).NewDelete().Table("grant_relations")
	q = whereGrantPrincipal(q, principal)
	q = whereGrantScopeDelete(q, scope)

	result, err := q.Exec(ctx)
	err = dbkit.WithErr(result, err, "DeleteGrantRelations").Err()
	if err != nil {
		return false, err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return false, nil
	}

	s.auditGrant(ctx, AuditActionRevoked, principal, nil, scope)
	return true, nil
}

// grantExists checks for an exact (principal, role, scope) grant.
func (s *Service) grantExists(ctx context.Context, principal Principal, roleID string, scope ContentRef) (bool, error) {
	return dbkit.Exists[GrantRelation](ctx, s.conn(ctx), func(q *bun.SelectQuery) *bun.SelectQuery {
		q = q.Where("param_role_id = ?", roleID)
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
		return q
	})
}

func whereGrantPrincipal(q *bun.DeleteQuery, principal Principal) *bun.DeleteQuery {
	if principal.IsUser() {
		return q.Where("user_id = ?", principal.ID)
	}
	return q.Where("group_id = ?", principal.ID)
}

func whereGrantScopeDelete(q *bun.DeleteQuery, scope ContentRef) *bun.DeleteQuery {
	if scope.IsZero() {
		return q.Where("content_kind IS NULL AND content_id IS NULL")
	}
	return q.Where("content_kind = ? AND content_id = ?", scope.Kind, scope.ID)
}

// ============================================================================
// GROUP MEMBERSHIP
// ============================================================================

// AddGroupMember records that a user belongs to a group. Idempotent; returns
// true if a new membership was created.
func (s *Service) AddGroupMember(ctx context.Context, groupID, memberID string) (bool, error) {
	member := &GroupMember{GroupID: groupID, MemberID: memberID}
	result, err := s.conn(ctx).NewInsert().
		Model(member).
		On("CONFLICT (group_id, member_id) DO NOTHING").
		Exec(ctx)
	err = dbkit.WithErr(result, err, "AddGroupMember").Err()
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// RemoveGroupMember removes a user from a group. Returns true if a membership
// was deleted.
func (s *Service) RemoveGroupMember(ctx context.Context, groupID, memberID string) (bool, error) {
	result, err := s.conn(ctx).NewDelete().Table("group_members").
		Where("group_id = ? AND member_id = ?", groupID, memberID).
		Exec(ctx)
	err = dbkit.WithErr(result, err, "RemoveGroupMember").Err()
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// GroupsOf returns the IDs of every group a principal belongs to.
func (s *Service) GroupsOf(ctx context.Context, memberID string) ([]string, error) {
	var groupIDs []string
	err := dbkit.WithErr1(s.conn(ctx).NewRaw(
		"SELECT group_id FROM group_members WHERE member_id = ? ORDER BY group_id", memberID).
		Scan(ctx, &groupIDs), "GroupsOf").Err()
	if err != nil {
		return nil, err
	}
	return groupIDs, nil
}

// GroupMembers returns the IDs of every member of a group.
func (s *Service) GroupMembers(ctx context.Context, groupID string) ([]string, error) {
	var memberIDs []string
	err := dbkit.WithErr1(s.conn(ctx).NewRaw(
		"SELECT member_id FROM group_members WHERE group_id = ? ORDER BY member_id", groupID).
		Scan(ctx, &memberIDs), "GroupMembers").Err()
	if err != nil {
		return nil, err
	}
	return memberIDs, nil
}
