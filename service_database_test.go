package paramrole

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMigrations tests the migration list shape without a database
func TestMigrations(t *testing.T) {
	service := NewService(TestConstraints(), nil)
	migrations := NewMigrationService(service).Migrations()

	require.NotEmpty(t, migrations)

	seen := make(map[string]bool)
	for _, m := range migrations {
		assert.NotEmpty(t, m.ID)
		assert.NotEmpty(t, m.Description)
		assert.NotEmpty(t, m.SQL)
		assert.False(t, seen[m.ID], "duplicate migration ID %s", m.ID)
		seen[m.ID] = true
	}

	assert.True(t, seen["paramrole-001"])
}

// TestHealthServiceDatabase tests health monitoring with a real database
func TestHealthServiceDatabase(t *testing.T) {
	helper := NewTestDataHelper(t)
	if helper == nil {
		return
	}

	service := helper.GetService()
	ctx := helper.GetContext()
	health := NewHealthService(service)

	t.Run("Health reports healthy", func(t *testing.T) {
		status := health.Health(ctx)
		assert.True(t, status.Healthy)
	})

	t.Run("IsHealthy", func(t *testing.T) {
		assert.True(t, health.IsHealthy(ctx))
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, health.Ping(ctx))
	})

	t.Run("Pool stats are populated", func(t *testing.T) {
		stats := health.GetPoolStats()
		assert.GreaterOrEqual(t, stats.OpenConnections, 0)
	})
}

// TestTransactionDatabase tests the transaction wrapper semantics
func TestTransactionDatabase(t *testing.T) {
	helper := NewTestDataHelper(t)
	if helper == nil {
		return
	}

	service := helper.GetService()
	ctx := helper.GetContext()

	gas := helper.NewGAS("gas")
	member := helper.MemberRole(gas)
	referrer := helper.ReferrerRole(gas)
	user := UserPrincipal(helper.NewUser("user"))

	t.Run("Commit applies all operations", func(t *testing.T) {
		err := service.Transaction(ctx, func(ctx context.Context) error {
			if _, err := service.AddGlobalRole(ctx, user, member); err != nil {
				return err
			}
			_, err := service.AddGlobalRole(ctx, user, referrer)
			return err
		})
		require.NoError(t, err)

		count, err := service.CountGrants(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("Rollback discards all operations", func(t *testing.T) {
		other := UserPrincipal(helper.NewUser("other"))
		sentinel := errors.New("abort")

		err := service.Transaction(ctx, func(ctx context.Context) error {
			if _, err := service.AddGlobalRole(ctx, other, member); err != nil {
				return err
			}
			return sentinel
		})
		assert.ErrorIs(t, err, sentinel)

		count, err := service.CountGrants(ctx, other)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("Nested transactions use savepoints", func(t *testing.T) {
		nested := UserPrincipal(helper.NewUser("nested"))
		err := service.Transaction(ctx, func(ctx context.Context) error {
			return service.Transaction(ctx, func(ctx context.Context) error {
				_, err := service.AddGlobalRole(ctx, nested, member)
				return err
			})
		})
		require.NoError(t, err)

		count, err := service.CountGrants(ctx, nested)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}

// TestTransactionMetricsDatabase tests transaction monitoring
func TestTransactionMetricsDatabase(t *testing.T) {
	helper := NewTestDataHelper(t)
	if helper == nil {
		return
	}

	service := helper.GetService()
	ctx := helper.GetContext()

	service.ResetTransactionMetrics()

	gas := helper.NewGAS("gas")
	role := helper.MemberRole(gas)
	user := UserPrincipal(helper.NewUser("user"))

	_, err := service.AddGlobalRole(ctx, user, role)
	require.NoError(t, err)

	metrics := service.GetTransactionMetrics()
	assert.Greater(t, metrics.TotalTransactions, int64(0))
	assert.Equal(t, metrics.TotalTransactions, metrics.SuccessfulTransactions+metrics.FailedTransactions)

	service.ResetTransactionMetrics()
	metrics = service.GetTransactionMetrics()
	assert.Zero(t, metrics.TotalTransactions)
}
