package paramrole

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/fernandezvara/dbkit"
)

// ============================================================================
// INTERNAL HELPERS
// ============================================================================

func (s *Service) logAudit(ctx context.Context, entry *AuditEntry) error {
	_, err := s.conn(ctx).NewInsert().Model(entry.ToModel()).Exec(ctx)
	return dbkit.WithErr1(err, "LogAudit").Err()
}

// auditGrant records a grant change. Audit failures are logged but never fail
// the grant operation itself. A nil role denotes a bulk removal.
func (s *Service) auditGrant(ctx context.Context, action AuditAction, principal Principal, role *ParamRole, scope ContentRef) {
	meta := GetAuditContext(ctx)
	entry := &AuditEntry{
		ActorID:   meta.ActorID,
		Action:    action,
		Principal: principal,
		Content:   scope,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		RequestID: meta.RequestID,
	}
	if role != nil {
		entry.RoleName = role.RoleName()
		entry.RoleSignature = role.String()
	}

	_ = s.logAudit(ctx, entry)
}

// RegisterWithRetry registers a parametric role with automatic retry for
// transient database errors. Validation failures are never retried; they are
// programming or configuration errors.
func (s *Service) RegisterWithRetry(ctx context.Context, name string, params Params) (*ParamRole, error) {
	return s.registerWithRetry(ctx, name, params, 3)
}

func (s *Service) registerWithRetry(ctx context.Context, name string, params Params, maxAttempts int) (*ParamRole, error) {
	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		role, err := s.Register(ctx, name, params)
		if err == nil {
			return role, nil
		}

		lastErr = err

		if !isTransientError(err) {
			return nil, err
		}

		if attempt == maxAttempts-1 {
			break
		}

		// Exponential backoff with jitter
		backoff := time.Duration(1<<uint(attempt)) * 100 * time.Millisecond
		jitter := time.Duration(float64(backoff) * 0.1 * (0.5 + rand.Float64()))
		time.Sleep(backoff + jitter)
	}

	return nil, lastErr
}

// isTransientError checks if an error is transient and worth a retry.
func isTransientError(err error) bool {
	if err == nil {
		return false
	}

	// Validation and lookup failures are deterministic.
	var perr *Error
	if errors.As(err, &perr) {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}

	errStr := strings.ToLower(err.Error())
	transient := []string{
		"connection",
		"timeout",
		"deadlock",
		"lock wait timeout",
		"connection refused",
		"connection reset",
		"broken pipe",
		"temporary failure",
		"try again",
		"resource temporarily unavailable",
		"serialization failure",
	}
	for _, marker := range transient {
		if strings.Contains(errStr, marker) {
			return true
		}
	}
	return false
}
