package paramrole

// PrincipalKind discriminates the two principal flavors.
type PrincipalKind string

const (
	PrincipalUser  PrincipalKind = "user"
	PrincipalGroup PrincipalKind = "group"
)

// Principal is the subject of a role grant: a user or a group of users.
// Identity is opaque to the engine; the embedding application supplies the
// identifiers. The zero value is invalid.
type Principal struct {
	Kind PrincipalKind
	ID   string
}

// UserPrincipal creates a user principal.
func UserPrincipal(id string) Principal {
	return Principal{Kind: PrincipalUser, ID: id}
}

// GroupPrincipal creates a group principal.
func GroupPrincipal(id string) Principal {
	return Principal{Kind: PrincipalGroup, ID: id}
}

// IsUser reports whether the principal is a user.
func (p Principal) IsUser() bool {
	return p.Kind == PrincipalUser
}

// IsGroup reports whether the principal is a group.
func (p Principal) IsGroup() bool {
	return p.Kind == PrincipalGroup
}

// String returns a string representation of the principal.
func (p Principal) String() string {
	return string(p.Kind) + ":" + p.ID
}

// Validate checks that the principal is a user or a group with a non-empty
// identifier.
func (p Principal) Validate() error {
	if p.ID == "" {
		return NewError(ErrInvalidPrincipal, "principal ID is empty").WithPrincipal(p)
	}
	switch p.Kind {
	case PrincipalUser, PrincipalGroup:
		return nil
	default:
		return NewError(ErrInvalidPrincipal, "principal must be either a user or a group").WithPrincipal(p)
	}
}
