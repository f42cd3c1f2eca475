package paramrole

import (
	"errors"
	"fmt"
)

// Sentinel errors for ParamRole operations.
var (
	// ErrRoleNotAllowed is returned when a role name is absent from the constraint table.
	ErrRoleNotAllowed = errors.New("paramrole: role not allowed")

	// ErrParamNotAllowed is returned when a parameter name is not permitted for a role.
	ErrParamNotAllowed = errors.New("paramrole: role parameter not allowed")

	// ErrWrongParamSpecs is returned when the parameter type signature mismatches the expected one.
	ErrWrongParamSpecs = errors.New("paramrole: wrong parameter specs provided")

	// ErrInvalidPrincipal is returned when a principal is neither a user nor a group.
	ErrInvalidPrincipal = errors.New("paramrole: invalid principal")

	// ErrRoleNotFound is returned when a structural lookup matches no stored role.
	ErrRoleNotFound = errors.New("paramrole: role not found")

	// ErrAmbiguousRole is returned when a structural lookup unexpectedly matches
	// more than one stored role. This indicates a broken deduplication invariant
	// and should be treated as a bug, not a user-recoverable condition.
	ErrAmbiguousRole = errors.New("paramrole: ambiguous role lookup")

	// ErrTypeMismatch is returned when a comparison or conversion is given an
	// object of the wrong kind.
	ErrTypeMismatch = errors.New("paramrole: type mismatch")

	// ErrUnknownPermission is returned when a permission code was never defined.
	ErrUnknownPermission = errors.New("paramrole: unknown permission")

	// ErrUnknownContentKind is returned when a content kind has no registered definition.
	ErrUnknownContentKind = errors.New("paramrole: unknown content kind")

	// ErrDatabaseError is returned when a database operation fails.
	ErrDatabaseError = errors.New("paramrole: database error")
)

// Error wraps a sentinel error with additional context.
type Error struct {
	Err       error       // Underlying sentinel error
	Message   string      // Additional context
	Role      string      // Base role name involved (if applicable)
	Param     string      // Parameter name involved (if applicable)
	Principal Principal   // Principal involved (if applicable)
	Content   ContentRef  // Content reference involved (if applicable)
	ActorID   string      // Actor who triggered the error (if applicable)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is checks if the error matches a target error.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewError creates a new Error with context.
func NewError(err error, message string) *Error {
	return &Error{
		Err:     err,
		Message: message,
	}
}

// WithRole adds the base role name to the error.
func (e *Error) WithRole(role string) *Error {
	e.Role = role
	return e
}

// WithParam adds the offending parameter name to the error.
func (e *Error) WithParam(param string) *Error {
	e.Param = param
	return e
}

// WithPrincipal adds principal information to the error.
func (e *Error) WithPrincipal(principal Principal) *Error {
	e.Principal = principal
	return e
}

// WithContent adds the content reference to the error.
func (e *Error) WithContent(ref ContentRef) *Error {
	e.Content = ref
	return e
}

// WithActor adds the actor who triggered the error.
func (e *Error) WithActor(actorID string) *Error {
	e.ActorID = actorID
	return e
}

// IsRoleNotAllowed checks if an error is due to a role name missing from the constraints.
func IsRoleNotAllowed(err error) bool {
	return errors.Is(err, ErrRoleNotAllowed)
}

// IsParamNotAllowed checks if an error is due to a disallowed parameter name.
func IsParamNotAllowed(err error) bool {
	return errors.Is(err, ErrParamNotAllowed)
}

// IsWrongParamSpecs checks if an error is due to a parameter signature mismatch.
func IsWrongParamSpecs(err error) bool {
	return errors.Is(err, ErrWrongParamSpecs)
}

// IsInvalidPrincipal checks if an error is due to an invalid principal.
func IsInvalidPrincipal(err error) bool {
	return errors.Is(err, ErrInvalidPrincipal)
}

// IsAmbiguousRole checks if an error is an internal-consistency violation of
// the role deduplication invariant.
func IsAmbiguousRole(err error) bool {
	return errors.Is(err, ErrAmbiguousRole)
}

// IsTypeMismatch checks if an error is due to a wrong argument kind.
func IsTypeMismatch(err error) bool {
	return errors.Is(err, ErrTypeMismatch)
}
