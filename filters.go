package paramrole

import "time"

// AuditFilter provides options for filtering audit log queries.
type AuditFilter struct {
	// Filter by actor who performed the change
	ActorID string

	// Filter by target principal
	PrincipalKind PrincipalKind
	PrincipalID   string

	// Filter by base role name
	RoleName string

	// Filter by grant scope
	ContentKind ContentKind
	ContentID   string

	// Filter by action type ("granted" or "revoked")
	Action string

	// Filter by time range
	Since time.Time
	Until time.Time

	// Pagination
	Limit  int
	Offset int
}

// NewAuditFilter creates a new AuditFilter with default values.
func NewAuditFilter() AuditFilter {
	return AuditFilter{
		Limit: 100,
	}
}

// WithActor sets the actor ID filter.
func (f AuditFilter) WithActor(actorID string) AuditFilter {
	f.ActorID = actorID
	return f
}

// WithPrincipal sets the target principal filter.
func (f AuditFilter) WithPrincipal(principal Principal) AuditFilter {
	f.PrincipalKind = principal.Kind
	f.PrincipalID = principal.ID
	return f
}

// WithRole sets the base role name filter.
func (f AuditFilter) WithRole(name string) AuditFilter {
	f.RoleName = name
	return f
}

// WithContent sets the grant scope filter.
func (f AuditFilter) WithContent(ref ContentRef) AuditFilter {
	f.ContentKind = ref.Kind
	f.ContentID = ref.ID
	return f
}

// WithAction sets the action filter.
func (f AuditFilter) WithAction(action AuditAction) AuditFilter {
	f.Action = string(action)
	return f
}

// WithTimeRange sets the time range filter.
func (f AuditFilter) WithTimeRange(since, until time.Time) AuditFilter {
	f.Since = since
	f.Until = until
	return f
}

// WithSince sets the start time filter.
func (f AuditFilter) WithSince(since time.Time) AuditFilter {
	f.Since = since
	return f
}

// WithUntil sets the end time filter.
func (f AuditFilter) WithUntil(until time.Time) AuditFilter {
	f.Until = until
	return f
}

// WithLimit sets the limit for results.
func (f AuditFilter) WithLimit(limit int) AuditFilter {
	f.Limit = limit
	return f
}

// WithOffset sets the offset for pagination.
func (f AuditFilter) WithOffset(offset int) AuditFilter {
	f.Offset = offset
	return f
}

// WithPagination sets both limit and offset.
func (f AuditFilter) WithPagination(limit, offset int) AuditFilter {
	f.Limit = limit
	f.Offset = offset
	return f
}
