package paramrole

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestActorIDContext tests storing and retrieving the actor ID
func TestActorIDContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", GetActorID(ctx))

	ctx = WithActorID(ctx, "admin-1")
	assert.Equal(t, "admin-1", GetActorID(ctx))

	// Overwriting replaces the value.
	ctx = WithActorID(ctx, "admin-2")
	assert.Equal(t, "admin-2", GetActorID(ctx))
}

// TestRequestMetadataContext tests IP, user agent and request ID accessors
func TestRequestMetadataContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", GetIPAddress(ctx))
	assert.Equal(t, "", GetUserAgent(ctx))
	assert.Equal(t, "", GetRequestID(ctx))

	ctx = WithIPAddress(ctx, "10.0.0.1")
	ctx = WithUserAgent(ctx, "cli/1.0")
	ctx = WithRequestID(ctx, "req-1")

	assert.Equal(t, "10.0.0.1", GetIPAddress(ctx))
	assert.Equal(t, "cli/1.0", GetUserAgent(ctx))
	assert.Equal(t, "req-1", GetRequestID(ctx))
}

// TestAuditContext tests the bundled audit metadata helpers
func TestAuditContext(t *testing.T) {
	audit := AuditContext{
		ActorID:   "admin-1",
		IPAddress: "10.0.0.1",
		UserAgent: "cli/1.0",
		RequestID: "req-1",
	}

	ctx := WithAuditContext(context.Background(), audit)
	assert.Equal(t, audit, GetAuditContext(ctx))

	// Missing values come back as the zero struct.
	assert.Equal(t, AuditContext{}, GetAuditContext(context.Background()))
}

// TestCheckerContext tests Checker storage in the context
func TestCheckerContext(t *testing.T) {
	assert.Nil(t, GetChecker(context.Background()))

	checker := &Checker{principal: UserPrincipal("user-1")}
	ctx := WithChecker(context.Background(), checker)
	assert.Same(t, checker, GetChecker(ctx))
}
