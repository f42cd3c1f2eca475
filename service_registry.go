package paramrole

import (
	"context"
	"fmt"

	"github.com/fernandezvara/dbkit"
)

// ============================================================================
// PARAMETRIC ROLE REGISTRATION
// ============================================================================

// Register registers a parametric role with the given parameters.
//
// The (name, params) pair is validated against the domain constraint table,
// failing with ErrRoleNotAllowed, ErrParamNotAllowed or ErrWrongParamSpecs.
// On success the base Role row is created on first use, and registration is
// structural: if a parametric role with an equal (role, params) signature
// already exists it is returned as-is, so calling Register twice with equal
// arguments yields the same stored role.
//
// The read-then-write sequence runs inside a transaction holding a row lock
// on the base role, so two concurrent registrations of structurally equal
// roles cannot both create a row.
//
// Example:
//
//	role, err := service.Register(ctx, "gas_referrer_supplier", paramrole.Params{
//	    "gas":      paramrole.RefOf(gas),
//	    "supplier": paramrole.RefOf(supplier),
//	})
func (s *Service) Register(ctx context.Context, name string, params Params) (*ParamRole, error) {
	if err := s.constraints.Validate(name, params); err != nil {
		return nil, err
	}

	want := RoleSpec{Name: name, Params: params}
	var out *ParamRole

	err := s.Transaction(ctx, func(ctx context.Context) error {
		role, roleCreated, err := s.lockRole(ctx, name)
		if err != nil {
			return err
		}

		if roleCreated {
			// A brand new base role: provision permissions declared for it by
			// registered content kinds before anything can reference it.
			if err := s.setupPermissionsForNewRole(ctx, role); err != nil {
				return err
			}
		}

		candidates, err := s.paramRolesOf(ctx, role)
		if err != nil {
			return err
		}
		for i := range candidates {
			if candidates[i].Spec().Equal(want) {
				out = &candidates[i]
				return nil
			}
		}

		out, err = s.createParamRole(ctx, role, params)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetRole looks up a registered parametric role by structural match.
//
// Returns ErrRoleNotFound if no stored role matches. Returns ErrAmbiguousRole
// if more than one matches; that is unreachable while the deduplication
// invariant holds, but it is checked defensively and reported as an
// internal-consistency error.
func (s *Service) GetRole(ctx context.Context, name string, params Params) (*ParamRole, error) {
	role, err := s.findRole(ctx, name)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, NewError(ErrRoleNotFound, fmt.Sprintf("no role named %q", name)).WithRole(name)
	}

	candidates, err := s.paramRolesOf(ctx, role)
	if err != nil {
		return nil, err
	}

	want := RoleSpec{Name: name, Params: params}
	var matches []*ParamRole
	for i := range candidates {
		if candidates[i].Spec().Equal(want) {
			matches = append(matches, &candidates[i])
		}
	}

	switch len(matches) {
	case 0:
		return nil, NewError(ErrRoleNotFound, fmt.Sprintf("no parametric role matches %q with the given parameters", name)).
			WithRole(name)
	case 1:
		return matches[0], nil
	default:
		return nil, NewError(ErrAmbiguousRole,
			fmt.Sprintf("%d parametric roles share the signature of %q; the deduplication invariant is broken", len(matches), name)).
			WithRole(name)
	}
}

// CompareRoles compares two parametric roles for structural equality.
//
// Arguments can be *ParamRole instances (with parameters loaded) or RoleSpec
// canonical forms; anything else fails with ErrTypeMismatch. Parameter value
// equality is by referenced object identity (kind and id), not deep value
// equality.
func (s *Service) CompareRoles(a, b any) (bool, error) {
	return CompareRoles(a, b)
}

// CompareRoles is the package-level structural comparator used by the service.
func CompareRoles(a, b any) (bool, error) {
	specA, err := toRoleSpec(a)
	if err != nil {
		return false, err
	}
	specB, err := toRoleSpec(b)
	if err != nil {
		return false, err
	}
	return specA.Equal(specB), nil
}

func toRoleSpec(v any) (RoleSpec, error) {
	switch x := v.(type) {
	case *ParamRole:
		return x.Spec(), nil
	case ParamRole:
		return x.Spec(), nil
	case RoleSpec:
		return x, nil
	default:
		return RoleSpec{}, NewError(ErrTypeMismatch,
			fmt.Sprintf("%T is neither a ParamRole nor a RoleSpec", v))
	}
}

// ============================================================================
// INTERNAL REGISTRATION HELPERS
// ============================================================================

// lockRole creates the base role row on first use and acquires a row-level
// lock on it for the duration of the surrounding transaction. The lock
// serializes the structural-equality scan against concurrent registrations.
func (s *Service) lockRole(ctx context.Context, name string) (*Role, bool, error) {
	insert := &Role{Name: name}
	result, err := s.conn(ctx).NewInsert().
		Model(insert).
		On("CONFLICT (name) DO NOTHING").
		Exec(ctx)
	err = dbkit.WithErr(result, err, "CreateRole").Err()
	if err != nil {
		return nil, false, NewError(ErrDatabaseError, "failed to create base role").WithRole(name)
	}
	rows, _ := result.RowsAffected()
	created := rows > 0

	var role Role
	err = dbkit.WithErr1(s.conn(ctx).NewSelect().
		Model(&role).
		Where("name = ?", name).
		For("UPDATE").
		Limit(1).
		Scan(ctx), "LockRole").Err()
	if err != nil {
		return nil, false, err
	}
	return &role, created, nil
}

// findRole fetches a base role by name without locking; nil when absent.
func (s *Service) findRole(ctx context.Context, name string) (*Role, error) {
	var role Role
	err := dbkit.WithErr1(s.conn(ctx).NewSelect().
		Model(&role).
		Where("name = ?", name).
		Limit(1).
		Scan(ctx), "FindRole").Err()
	if err != nil {
		if dbkit.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

// paramRolesOf loads every parametric role of a base role, parameters included.
func (s *Service) paramRolesOf(ctx context.Context, role *Role) ([]ParamRole, error) {
	var paramRoles []ParamRole
	err := dbkit.WithErr1(s.conn(ctx).NewSelect().
		Model(&paramRoles).
		Where("role_id = ?", role.ID).
		Scan(ctx), "GetParamRoles").Err()
	if err != nil {
		return nil, err
	}

	for i := range paramRoles {
		paramRoles[i].Role = role
		if err := s.loadParams(ctx, &paramRoles[i]); err != nil {
			return nil, err
		}
	}
	return paramRoles, nil
}

// loadParams populates pr.Params from the join table.
func (s *Service) loadParams(ctx context.Context, pr *ParamRole) error {
	var params []Param
	err := dbkit.WithErr1(s.conn(ctx).NewSelect().
		Model(&params).
		Join("JOIN param_role_params AS prp ON prp.param_id = p.id").
		Where("prp.param_role_id = ?", pr.ID).
		Scan(ctx), "GetParams").Err()
	if err != nil {
		return err
	}
	pr.Params = params
	return nil
}

// createParamRole inserts a new parametric role and attaches its parameters,
// reusing Param rows that already describe the same (name, kind, id) triple.
func (s *Service) createParamRole(ctx context.Context, role *Role, params Params) (*ParamRole, error) {
	pr := &ParamRole{RoleID: role.ID, Role: role}
	result, err := s.conn(ctx).NewInsert().Model(pr).Exec(ctx)
	err = dbkit.WithErr(result, err, "CreateParamRole").Err()
	if err != nil {
		return nil, NewError(ErrDatabaseError, "failed to create parametric role").WithRole(role.Name)
	}

	for name, ref := range params {
		param, err := s.getOrCreateParam(ctx, name, ref)
		if err != nil {
			return nil, err
		}
		link := &ParamRoleParam{ParamRoleID: pr.ID, ParamID: param.ID}
		result, err := s.conn(ctx).NewInsert().Model(link).Exec(ctx)
		err = dbkit.WithErr(result, err, "AttachParam").Err()
		if err != nil {
			return nil, NewError(ErrDatabaseError, "failed to attach parameter").
				WithRole(role.Name).
				WithParam(name)
		}
		pr.Params = append(pr.Params, *param)
	}

	return pr, nil
}

// getOrCreateParam deduplicates Param rows by (name, content_kind, content_id).
func (s *Service) getOrCreateParam(ctx context.Context, name string, ref ContentRef) (*Param, error) {
	insert := &Param{Name: name, ContentKind: ref.Kind, ContentID: ref.ID}
	result, err := s.conn(ctx).NewInsert().
		Model(insert).
		On("CONFLICT (name, content_kind, content_id) DO NOTHING").
		Exec(ctx)
	err = dbkit.WithErr(result, err, "CreateParam").Err()
	if err != nil {
		return nil, NewError(ErrDatabaseError, "failed to create parameter").
			WithParam(name).
			WithContent(ref)
	}

	var param Param
	err = dbkit.WithErr1(s.conn(ctx).NewSelect().
		Model(&param).
		Where("name = ? AND content_kind = ? AND content_id = ?", name, ref.Kind, ref.ID).
		Limit(1).
		Scan(ctx), "GetParam").Err()
	if err != nil {
		return nil, err
	}
	return &param, nil
}

// paramRoleByID loads a single parametric role with role and parameters.
func (s *Service) paramRoleByID(ctx context.Context, id string) (*ParamRole, error) {
	var pr ParamRole
	err := dbkit.WithErr1(s.conn(ctx).NewSelect().
		Model(&pr).
		Relation("Role").
		Where("pr.id = ?", id).
		Limit(1).
		Scan(ctx), "GetParamRole").Err()
	if err != nil {
		return nil, err
	}
	if err := s.loadParams(ctx, &pr); err != nil {
		return nil, err
	}
	return &pr, nil
}
