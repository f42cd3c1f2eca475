package paramrole

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Constraints holds the domain constraint table: which parameter names and
// content kinds each role name accepts. It is built at startup and should be
// treated as immutable after initialization.
type Constraints struct {
	mu    sync.RWMutex
	roles map[string]*RoleConstraint
}

// RoleConstraint defines the expected parameter signature of one role name.
type RoleConstraint struct {
	name        string
	params      map[string]ContentKind
	constraints *Constraints
}

// NewConstraints creates an empty constraint table.
func NewConstraints() *Constraints {
	return &Constraints{
		roles: make(map[string]*RoleConstraint),
	}
}

// Role starts defining the constraint for a role name.
// Returns a RoleConstraint builder for fluent configuration.
//
// Example:
//
//	constraints.Role("gas_referrer_supplier").
//	    Param("gas", "gas").
//	    Param("supplier", "supplier")
func (c *Constraints) Role(name string) *RoleConstraint {
	c.mu.Lock()
	defer c.mu.Unlock()

	rc := &RoleConstraint{
		name:        name,
		params:      make(map[string]ContentKind),
		constraints: c,
	}
	c.roles[name] = rc
	return rc
}

// GetRole returns the constraint for a role name, or nil if undefined.
func (c *Constraints) GetRole(name string) *RoleConstraint {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roles[name]
}

// RoleNames returns all constrained role names.
func (c *Constraints) RoleNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.roles))
	for name := range c.roles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks a (name, params) pair against the table.
//
// The error ladder mirrors registration semantics: an unknown role name fails
// with ErrRoleNotAllowed; a parameter name not permitted for the role fails
// with ErrParamNotAllowed; any remaining difference between the actual and
// expected type signatures (missing parameters or wrong kinds) fails with
// ErrWrongParamSpecs. Signature equality is exact, not subkind-compatible.
func (c *Constraints) Validate(name string, params Params) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rc, ok := c.roles[name]
	if !ok {
		return NewError(ErrRoleNotAllowed, fmt.Sprintf("role %q is not in the constraint table", name)).
			WithRole(name)
	}

	for param := range params {
		if _, ok := rc.params[param]; !ok {
			return NewError(ErrParamNotAllowed,
				fmt.Sprintf("parameter %q is not allowed for role %q (allowed: %s)",
					param, name, strings.Join(rc.ParamNames(), ", "))).
				WithRole(name).
				WithParam(param)
		}
	}

	// Compare the actual type signature with the expected one.
	signature := make(map[string]ContentKind, len(params))
	for param, ref := range params {
		signature[param] = ref.Kind
	}
	if len(signature) != len(rc.params) {
		return NewError(ErrWrongParamSpecs,
			fmt.Sprintf("role %q expects signature %s, got %s", name, formatSignature(rc.params), formatSignature(signature))).
			WithRole(name)
	}
	for param, kind := range rc.params {
		if signature[param] != kind {
			return NewError(ErrWrongParamSpecs,
				fmt.Sprintf("role %q expects signature %s, got %s", name, formatSignature(rc.params), formatSignature(signature))).
				WithRole(name).
				WithParam(param)
		}
	}

	return nil
}

// Param declares an allowed parameter name and its expected content kind.
func (rc *RoleConstraint) Param(name string, kind ContentKind) *RoleConstraint {
	rc.params[name] = kind
	return rc
}

// Role continues defining constraints on the parent table (fluent API).
func (rc *RoleConstraint) Role(name string) *RoleConstraint {
	return rc.constraints.Role(name)
}

// Name returns the constrained role name.
func (rc *RoleConstraint) Name() string {
	return rc.name
}

// ParamNames returns the allowed parameter names, sorted.
func (rc *RoleConstraint) ParamNames() []string {
	names := make([]string, 0, len(rc.params))
	for name := range rc.params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParamKind returns the expected kind of a parameter and whether it is allowed.
func (rc *RoleConstraint) ParamKind(name string) (ContentKind, bool) {
	kind, ok := rc.params[name]
	return kind, ok
}

func formatSignature(sig map[string]ContentKind) string {
	parts := make([]string, 0, len(sig))
	for name, kind := range sig {
		parts = append(parts, name+":"+string(kind))
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ", ") + "}"
}
