package paramrole

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAuditLogDatabase tests that grant changes are recorded with their metadata
func TestAuditLogDatabase(t *testing.T) {
	helper := NewTestDataHelper(t)
	if helper == nil {
		return
	}

	service := helper.GetService()
	ctx := helper.GetContext()

	gas := helper.NewGAS("gas")
	role := helper.MemberRole(gas)
	user := UserPrincipal(helper.NewUser("user"))
	actorID := helper.NewUser("admin")

	actorCtx := WithAuditContext(ctx, AuditContext{
		ActorID:   actorID,
		IPAddress: "10.0.0.1",
		UserAgent: "cli/1.0",
		RequestID: uniqueID("req"),
	})

	t.Run("Grant is audited", func(t *testing.T) {
		_, err := service.AddGlobalRole(actorCtx, user, role)
		require.NoError(t, err)

		logs, err := service.GetAuditLog(ctx, NewAuditFilter().WithActor(actorID))
		require.NoError(t, err)
		require.Len(t, logs, 1)

		entry := logs[0]
		assert.Equal(t, string(AuditActionGranted), entry.Action)
		assert.Equal(t, PrincipalUser, entry.PrincipalKind)
		assert.Equal(t, user.ID, entry.PrincipalID)
		assert.Equal(t, "gas_member", entry.RoleName)
		assert.Contains(t, entry.RoleSignature, "gas_member on gas:")
		assert.Equal(t, "10.0.0.1", entry.IPAddress)
		assert.Equal(t, "cli/1.0", entry.UserAgent)
	})

	t.Run("Revoke is audited", func(t *testing.T) {
		_, err := service.RemoveGlobalRole(actorCtx, user, role)
		require.NoError(t, err)

		logs, err := service.GetAuditLog(ctx, NewAuditFilter().
			WithActor(actorID).
			WithAction(AuditActionRevoked))
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, string(AuditActionRevoked), logs[0].Action)
	})

	t.Run("No-op grant is not audited", func(t *testing.T) {
		_, err := service.AddGlobalRole(actorCtx, user, role)
		require.NoError(t, err)
		_, err = service.AddGlobalRole(actorCtx, user, role)
		require.NoError(t, err)

		logs, err := service.GetAuditLog(ctx, NewAuditFilter().
			WithActor(actorID).
			WithAction(AuditActionGranted))
		require.NoError(t, err)
		assert.Len(t, logs, 2) // first subtest plus one re-grant
	})

	t.Run("Filters narrow results", func(t *testing.T) {
		logs, err := service.GetAuditLog(ctx, NewAuditFilter().
			WithActor(actorID).
			WithPrincipal(user).
			WithRole("gas_member").
			WithSince(time.Now().Add(-time.Hour)))
		require.NoError(t, err)
		assert.NotEmpty(t, logs)

		logs, err = service.GetAuditLog(ctx, NewAuditFilter().
			WithActor(actorID).
			WithRole("gas_referrer_cash"))
		require.NoError(t, err)
		assert.Empty(t, logs)
	})

	t.Run("Pagination", func(t *testing.T) {
		page, err := service.GetAuditLog(ctx, NewAuditFilter().
			WithActor(actorID).
			WithPagination(1, 0))
		require.NoError(t, err)
		assert.Len(t, page, 1)
	})
}

// TestIsTransientError tests transient error classification for retries
func TestIsTransientError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"validation error", NewError(ErrRoleNotAllowed, ""), false},
		{"lookup error", NewError(ErrRoleNotFound, ""), false},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"deadlock", errors.New("pq: deadlock detected"), true},
		{"serialization failure", errors.New("pq: could not serialize access due to serialization failure"), true},
		{"context canceled", context.Canceled, false},
		{"other error", errors.New("syntax error at or near"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isTransientError(tt.err))
		})
	}
}
