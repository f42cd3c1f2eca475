package paramrole

import (
	"sort"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// Role is a base, non-parametric role identified by its unique name.
// Roles are created lazily on first registration of that name and never
// deleted in normal operation.
type Role struct {
	bun.BaseModel `bun:"table:roles,alias:r"`

	ID        string    `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Name      string    `bun:"name,notnull,unique"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// Param is a named, typed reference attached to a parametric role.
// Rows are deduplicated by (name, content_kind, content_id) as a storage
// optimization; sharing is never relied upon for correctness.
type Param struct {
	bun.BaseModel `bun:"table:params,alias:p"`

	ID          string      `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Name        string      `bun:"name,notnull"`
	ContentKind ContentKind `bun:"content_kind,notnull"`
	ContentID   string      `bun:"content_id,notnull"`
	CreatedAt   time.Time   `bun:"created_at,notnull,default:current_timestamp"`
}

// Ref returns the content reference the parameter points at.
func (p *Param) Ref() ContentRef {
	return ContentRef{Kind: p.ContentKind, ID: p.ContentID}
}

// ParamRole is a parametric role: a base role plus a set of parameters.
// Params is populated by the service when the row is loaded; it is not a
// bun-managed relation.
type ParamRole struct {
	bun.BaseModel `bun:"table:param_roles,alias:pr"`

	ID        string    `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	RoleID    string    `bun:"role_id,notnull,type:uuid"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`

	Role   *Role   `bun:"rel:belongs-to,join:role_id=id"`
	Params []Param `bun:"-"`
}

// RoleName returns the base role name, or empty string if the relation is not loaded.
func (pr *ParamRole) RoleName() string {
	if pr.Role == nil {
		return ""
	}
	return pr.Role.Name
}

// Param returns the reference of the named parameter and whether it is set.
func (pr *ParamRole) Param(name string) (ContentRef, bool) {
	for i := range pr.Params {
		if pr.Params[i].Name == name {
			return pr.Params[i].Ref(), true
		}
	}
	return ContentRef{}, false
}

// Spec returns the canonical dictionary form of the parametric role.
func (pr *ParamRole) Spec() RoleSpec {
	spec := RoleSpec{Name: pr.RoleName(), Params: make(Params, len(pr.Params))}
	for i := range pr.Params {
		spec.Params[pr.Params[i].Name] = pr.Params[i].Ref()
	}
	return spec
}

// String returns "role_name on name: kind:id, ...".
func (pr *ParamRole) String() string {
	parts := make([]string, 0, len(pr.Params))
	for i := range pr.Params {
		parts = append(parts, pr.Params[i].Name+": "+pr.Params[i].Ref().String())
	}
	sort.Strings(parts)
	return pr.RoleName() + " on " + strings.Join(parts, ", ")
}

// ParamRoleParam links a parametric role to one of its parameters.
type ParamRoleParam struct {
	bun.BaseModel `bun:"table:param_role_params,alias:prp"`

	ParamRoleID string `bun:"param_role_id,pk,type:uuid"`
	ParamID     string `bun:"param_id,pk,type:uuid"`
}

// RoleSpec is the canonical dictionary representation of a parametric role:
// the base role name plus a map of parameter names to content references.
// Comparison of RoleSpecs is structural and independent of storage identity.
type RoleSpec struct {
	Name   string
	Params Params
}

// Equal reports whether two specs denote the same parametric role: same base
// role name and the same set of (name, ref) pairs. Reference equality is by
// (kind, id), not by deep value.
func (s RoleSpec) Equal(other RoleSpec) bool {
	if s.Name != other.Name || len(s.Params) != len(other.Params) {
		return false
	}
	for name, ref := range s.Params {
		if other.Params[name] != ref {
			return false
		}
	}
	return true
}

// GrantRelation associates a parametric role with a principal. Exactly one of
// UserID/GroupID is set. A zero content reference means the grant is global;
// otherwise the grant is local to that content object.
type GrantRelation struct {
	bun.BaseModel `bun:"table:grant_relations,alias:gr"`

	ID          string      `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	UserID      string      `bun:"user_id,nullzero"`
	GroupID     string      `bun:"group_id,nullzero"`
	ParamRoleID string      `bun:"param_role_id,notnull,type:uuid"`
	ContentKind ContentKind `bun:"content_kind,nullzero"`
	ContentID   string      `bun:"content_id,nullzero"`
	CreatedAt   time.Time   `bun:"created_at,notnull,default:current_timestamp"`
}

// Principal returns the principal of the grant.
func (g *GrantRelation) Principal() Principal {
	if g.UserID != "" {
		return UserPrincipal(g.UserID)
	}
	return GroupPrincipal(g.GroupID)
}

// SetPrincipal sets the user XOR group column from a principal.
func (g *GrantRelation) SetPrincipal(p Principal) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.IsUser() {
		g.UserID, g.GroupID = p.ID, ""
	} else {
		g.UserID, g.GroupID = "", p.ID
	}
	return nil
}

// IsLocal reports whether the grant is scoped to a content object.
func (g *GrantRelation) IsLocal() bool {
	return g.ContentKind != "" || g.ContentID != ""
}

// Scope returns the content scope of a local grant, zero for global grants.
func (g *GrantRelation) Scope() ContentRef {
	return ContentRef{Kind: g.ContentKind, ID: g.ContentID}
}

// GroupMember records that a principal belongs to a group. Members are users
// in the current domain; the member column carries an opaque principal ID so a
// future group-in-group hierarchy fits without a schema change. The resolver
// walks this table when computing a user's effective roles.
type GroupMember struct {
	bun.BaseModel `bun:"table:group_members,alias:gm"`

	ID        string    `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	GroupID   string    `bun:"group_id,notnull"`
	MemberID  string    `bun:"member_id,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// GlobalPermission binds a permission code to a base role for a whole content
// kind. Rows are unique per (permission, role, content_kind); duplicate
// registrations are absorbed silently.
type GlobalPermission struct {
	bun.BaseModel `bun:"table:global_permissions,alias:gp"`

	ID          string      `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Permission  string      `bun:"permission,notnull"`
	RoleID      string      `bun:"role_id,notnull,type:uuid"`
	ContentKind ContentKind `bun:"content_kind,notnull"`
	CreatedAt   time.Time   `bun:"created_at,notnull,default:current_timestamp"`
}

// LocalPermission binds a permission code to a base role for one content
// object only. Registration is idempotent per (permission, role, kind, id).
type LocalPermission struct {
	bun.BaseModel `bun:"table:local_permissions,alias:lp"`

	ID          string      `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Permission  string      `bun:"permission,notnull"`
	RoleID      string      `bun:"role_id,notnull,type:uuid"`
	ContentKind ContentKind `bun:"content_kind,notnull"`
	ContentID   string      `bun:"content_id,notnull"`
	CreatedAt   time.Time   `bun:"created_at,notnull,default:current_timestamp"`
}

// GrantAuditLog records all grant relation changes for compliance and debugging.
type GrantAuditLog struct {
	bun.BaseModel `bun:"table:grant_audit_log,alias:gal"`

	ID        string    `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Timestamp time.Time `bun:"timestamp,notnull,default:current_timestamp"`

	// Who performed the action
	ActorID string `bun:"actor_id,notnull"`

	// What action was performed
	Action string `bun:"action,notnull"` // "granted", "revoked"

	// Target of the action
	PrincipalKind PrincipalKind `bun:"principal_kind,notnull"`
	PrincipalID   string        `bun:"principal_id,notnull"`
	RoleName      string        `bun:"role_name,notnull"`
	RoleSignature string        `bun:"role_signature"`
	ContentKind   ContentKind   `bun:"content_kind"`
	ContentID     string        `bun:"content_id"`

	// Request metadata for forensics
	IPAddress string `bun:"ip_address"`
	UserAgent string `bun:"user_agent"`
	RequestID string `bun:"request_id"`
}

// AuditAction represents the type of action in the audit log.
type AuditAction string

const (
	AuditActionGranted AuditAction = "granted"
	AuditActionRevoked AuditAction = "revoked"
)

// AuditEntry is used to create new audit log entries.
type AuditEntry struct {
	ActorID       string
	Action        AuditAction
	Principal     Principal
	RoleName      string
	RoleSignature string
	Content       ContentRef
	IPAddress     string
	UserAgent     string
	RequestID     string
}

// ToModel converts an AuditEntry to a GrantAuditLog model.
func (e *AuditEntry) ToModel() *GrantAuditLog {
	return &GrantAuditLog{
		ActorID:       e.ActorID,
		Action:        string(e.Action),
		PrincipalKind: e.Principal.Kind,
		PrincipalID:   e.Principal.ID,
		RoleName:      e.RoleName,
		RoleSignature: e.RoleSignature,
		ContentKind:   e.Content.Kind,
		ContentID:     e.Content.ID,
		IPAddress:     e.IPAddress,
		UserAgent:     e.UserAgent,
		RequestID:     e.RequestID,
		Timestamp:     time.Now(),
	}
}
