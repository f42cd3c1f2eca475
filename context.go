package paramrole

import (
	"context"

	"github.com/fernandezvara/dbkit"
)

// Context keys for ParamRole values.
type contextKey string

const (
	contextKeyActorID   contextKey = "paramrole:actor_id"
	contextKeyIPAddress contextKey = "paramrole:ip_address"
	contextKeyUserAgent contextKey = "paramrole:user_agent"
	contextKeyRequestID contextKey = "paramrole:request_id"
	contextKeyChecker   contextKey = "paramrole:checker"
	contextKeyTx        contextKey = "paramrole:tx"
)

// withTx stores the open transaction in the context so every query issued
// inside a Transaction callback joins it.
func withTx(ctx context.Context, tx *dbkit.Tx) context.Context {
	return context.WithValue(ctx, contextKeyTx, tx)
}

// txFromContext retrieves the open transaction, nil when none is open.
func txFromContext(ctx context.Context) *dbkit.Tx {
	if v := ctx.Value(contextKeyTx); v != nil {
		if tx, ok := v.(*dbkit.Tx); ok {
			return tx
		}
	}
	return nil
}

// WithActorID adds an actor ID to the context.
// This is the user performing grant changes, recorded in the audit log.
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, contextKeyActorID, actorID)
}

// GetActorID retrieves the actor ID from context.
// Returns empty string if not set.
func GetActorID(ctx context.Context) string {
	if v := ctx.Value(contextKeyActorID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithIPAddress adds the client IP address to the context for audit.
func WithIPAddress(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, contextKeyIPAddress, ip)
}

// GetIPAddress retrieves the client IP address from context.
func GetIPAddress(ctx context.Context) string {
	if v := ctx.Value(contextKeyIPAddress); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithUserAgent adds the client user agent to the context for audit.
func WithUserAgent(ctx context.Context, userAgent string) context.Context {
	return context.WithValue(ctx, contextKeyUserAgent, userAgent)
}

// GetUserAgent retrieves the client user agent from context.
func GetUserAgent(ctx context.Context) string {
	if v := ctx.Value(contextKeyUserAgent); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithRequestID adds a request ID to the context for audit.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, requestID)
}

// GetRequestID retrieves the request ID from context.
func GetRequestID(ctx context.Context) string {
	if v := ctx.Value(contextKeyRequestID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// AuditContext bundles the request metadata recorded with audit entries.
type AuditContext struct {
	ActorID   string
	IPAddress string
	UserAgent string
	RequestID string
}

// WithAuditContext adds all audit metadata to the context in one call.
func WithAuditContext(ctx context.Context, audit AuditContext) context.Context {
	ctx = WithActorID(ctx, audit.ActorID)
	ctx = WithIPAddress(ctx, audit.IPAddress)
	ctx = WithUserAgent(ctx, audit.UserAgent)
	ctx = WithRequestID(ctx, audit.RequestID)
	return ctx
}

// GetAuditContext retrieves the audit metadata from context.
func GetAuditContext(ctx context.Context) AuditContext {
	return AuditContext{
		ActorID:   GetActorID(ctx),
		IPAddress: GetIPAddress(ctx),
		UserAgent: GetUserAgent(ctx),
		RequestID: GetRequestID(ctx),
	}
}

// WithChecker stores a Checker in the context so handlers deeper in the call
// chain can reuse the resolved role snapshot.
func WithChecker(ctx context.Context, checker *Checker) context.Context {
	return context.WithValue(ctx, contextKeyChecker, checker)
}

// GetChecker retrieves a Checker from the context. Returns nil if not set.
func GetChecker(ctx context.Context) *Checker {
	if v := ctx.Value(contextKeyChecker); v != nil {
		if c, ok := v.(*Checker); ok {
			return c
		}
	}
	return nil
}
