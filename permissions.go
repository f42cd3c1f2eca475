package paramrole

import (
	"sort"
	"sync"
)

// Permission is a named capability such as "view", "edit" or "delete".
// Permissions are pure codes; what they allow is up to the embedding
// application. Roles and permissions are related only through grants.
type Permission struct {
	Code        string
	Description string
}

// PermissionRegister maps permission codes to Permission objects. Codes must
// be defined before they can be bound to roles, which catches typos at grant
// time instead of leaving dead rows in the database.
type PermissionRegister struct {
	mu    sync.RWMutex
	perms map[string]Permission
}

// NewPermissionRegister creates an empty permission register.
func NewPermissionRegister() *PermissionRegister {
	return &PermissionRegister{
		perms: make(map[string]Permission),
	}
}

// Define registers a permission code. Redefining a code replaces its description.
func (pr *PermissionRegister) Define(code, description string) *PermissionRegister {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.perms[code] = Permission{Code: code, Description: description}
	return pr
}

// Get returns the permission for a code.
func (pr *PermissionRegister) Get(code string) (Permission, error) {
	pr.mu.RLock()
	defer pr.mu.RUnlock()

	perm, ok := pr.perms[code]
	if !ok {
		return Permission{}, NewError(ErrUnknownPermission, "permission code "+code+" was never defined")
	}
	return perm, nil
}

// Has reports whether a code is defined.
func (pr *PermissionRegister) Has(code string) bool {
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	_, ok := pr.perms[code]
	return ok
}

// Codes returns all defined permission codes, sorted.
func (pr *PermissionRegister) Codes() []string {
	pr.mu.RLock()
	defer pr.mu.RUnlock()

	codes := make([]string, 0, len(pr.perms))
	for code := range pr.perms {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Validate checks if a permission code is well formed: non-empty and composed
// of lowercase identifier characters.
func (pr *PermissionRegister) Validate(code string) error {
	if code == "" {
		return NewError(ErrUnknownPermission, "permission code cannot be empty")
	}
	for _, c := range code {
		if !isValidPermissionChar(c) {
			return NewError(ErrUnknownPermission, "permission code contains invalid character")
		}
	}
	return nil
}

func isValidPermissionChar(c rune) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= '0' && c <= '9') ||
		c == '_'
}
