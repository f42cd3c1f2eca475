package paramrole

import (
	"context"

	"github.com/fernandezvara/dbkit"
)

// Service provides parametric role registration, grant management, principal
// resolution and permission checking. It integrates with the database through
// dbkit with enhanced error handling.
//
// Error Handling:
// All database operations use dbkit's chainable error wrapping to provide
// detailed context about failed operations. Validation failures surface as
// *Error values wrapping the package sentinels and are raised synchronously
// to the caller; they are programming or configuration errors, never retried.
//
// Example error handling:
//
//	role, err := service.Register(ctx, "gas_member", params)
//	if err != nil {
//	    switch {
//	    case paramrole.IsRoleNotAllowed(err):
//	        // role name missing from the constraint table
//	    case paramrole.IsWrongParamSpecs(err):
//	        // parameter signature mismatch
//	    case dbkit.IsDuplicate(err):
//	        // concurrent registration lost the race
//	    }
//	}
type Service struct {
	db          dbkit.IDB
	constraints *Constraints
	contents    *ContentRegistry
	permissions *PermissionRegister
	txMonitor   *transactionMonitor
}

// NewService creates a new ParamRole service.
//
// Example:
//
//	constraints := paramrole.NewConstraints()
//	// ... define role constraints ...
//	db, _ := dbkit.New(dbkit.Config{URL: "postgres://..."})
//	service := paramrole.NewService(constraints, db)
func NewService(constraints *Constraints, db dbkit.IDB) *Service {
	return &Service{
		db:          db,
		constraints: constraints,
		contents:    NewContentRegistry(),
		permissions: NewPermissionRegister(),
		txMonitor:   newTransactionMonitor(),
	}
}

// Constraints returns the domain constraint table.
func (s *Service) Constraints() *Constraints {
	return s.constraints
}

// Contents returns the content kind registry.
func (s *Service) Contents() *ContentRegistry {
	return s.contents
}

// RegisterContent registers a content kind definition. Shorthand for
// Contents().Register(def).
func (s *Service) RegisterContent(def ContentDefinition) {
	s.contents.Register(def)
}

// Permissions returns the permission register.
func (s *Service) Permissions() *PermissionRegister {
	return s.permissions
}

// conn returns the connection queries must run on: the transaction carried by
// ctx when one is open, the root handle otherwise.
func (s *Service) conn(ctx context.Context) dbkit.IDB {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return s.db
}

// ============================================================================
// AUDIT LOG
// ============================================================================

// GetAuditLog retrieves audit log entries with optional filters.
func (s *Service) GetAuditLog(ctx context.Context, filter AuditFilter) ([]GrantAuditLog, error) {
	var logs []GrantAuditLog
	q := s.conn(ctx).NewSelect().Model(&logs)
	if filter.ActorID != "" {
		q = q.Where("actor_id = ?", filter.ActorID)
	}
	if filter.PrincipalKind != "" {
		q = q.Where("principal_kind = ?", filter.PrincipalKind)
	}
	if filter.PrincipalID != "" {
		q = q.Where("principal_id = ?", filter.PrincipalID)
	}
	if filter.RoleName != "" {
		q = q.Where("role_name = ?", filter.RoleName)
	}
	if filter.ContentKind != "" {
		q = q.Where("content_kind = ?", filter.ContentKind)
	}
	if filter.ContentID != "" {
		q = q.Where("content_id = ?", filter.ContentID)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if !filter.Since.IsZero() {
		q = q.Where("timestamp >= ?", filter.Since)
	}
	if !filter.Until.IsZero() {
		q = q.Where("timestamp <= ?", filter.Until)
	}

	limit := filter.Limit
	if limit == 0 {
		limit = 100 // Default limit
	}
	q = q.Limit(limit)

	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	q = q.Order("timestamp DESC")
	err := dbkit.WithErr1(q.Scan(ctx), "GetAuditLog").Err()
	if err != nil {
		return nil, err
	}

	return logs, nil
}
