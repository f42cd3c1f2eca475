package paramrole

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestResolveRolesDatabase tests direct role resolution with a real database
func TestResolveRolesDatabase(t *testing.T) {
	helper := NewTestDataHelper(t)
	if helper == nil {
		return
	}

	service := helper.GetService()
	ctx := helper.GetContext()

	gas := helper.NewGAS("gas")
	supplier := helper.NewSupplier("sup")
	order := helper.NewOrder("ord", gas, supplier)

	member := helper.MemberRole(gas)
	referrer := helper.ReferrerRole(gas)
	user := UserPrincipal(helper.NewUser("user"))

	t.Run("No grants resolves to nothing", func(t *testing.T) {
		roles, err := service.ResolveRoles(ctx, user, nil)
		require.NoError(t, err)
		assert.Empty(t, roles)
	})

	t.Run("Global grants resolve without an object", func(t *testing.T) {
		_, err := service.AddGlobalRole(ctx, user, member)
		require.NoError(t, err)

		roles, err := service.ResolveRoles(ctx, user, nil)
		require.NoError(t, err)
		require.Len(t, roles, 1)
		assert.Equal(t, member.ID, roles[0].ID)
		assert.Equal(t, "gas_member", roles[0].RoleName())
	})

	t.Run("Local grants require the matching object", func(t *testing.T) {
		_, err := service.AddLocalRole(ctx, order, user, referrer)
		require.NoError(t, err)

		unscoped, err := service.ResolveRoles(ctx, user, nil)
		require.NoError(t, err)
		assert.Len(t, unscoped, 1)

		scoped, err := service.ResolveRoles(ctx, user, order)
		require.NoError(t, err)
		assert.Len(t, scoped, 2)
	})

	t.Run("ResolveRoleNames deduplicates", func(t *testing.T) {
		otherGAS := helper.NewGAS("gas")
		otherMember := helper.MemberRole(otherGAS)
		_, err := service.AddGlobalRole(ctx, user, otherMember)
		require.NoError(t, err)

		names, err := service.ResolveRoleNames(ctx, user, order)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"gas_member", "gas_referrer"}, names)
	})

	t.Run("Invalid principal rejected", func(t *testing.T) {
		_, err := service.ResolveRoles(ctx, Principal{}, nil)
		assert.True(t, IsInvalidPrincipal(err))
	})
}

// TestGroupInheritanceDatabase tests role inheritance through group membership
func TestGroupInheritanceDatabase(t *testing.T) {
	helper := NewTestDataHelper(t)
	if helper == nil {
		return
	}

	service := helper.GetService()
	ctx := helper.GetContext()

	gas := helper.NewGAS("gas")
	supplier := helper.NewSupplier("sup")
	order := helper.NewOrder("ord", gas, supplier)

	member := helper.MemberRole(gas)
	referrer := helper.ReferrerRole(gas)

	alice := helper.NewUser("alice")
	techs := helper.NewGroup("techs")

	_, err := service.AddGroupMember(ctx, techs, alice)
	require.NoError(t, err)

	t.Run("User inherits group global grants", func(t *testing.T) {
		_, err := service.AddGlobalRole(ctx, GroupPrincipal(techs), member)
		require.NoError(t, err)

		helper.AssertHasRole(UserPrincipal(alice), member, nil)
	})

	t.Run("User inherits group local grants against the object", func(t *testing.T) {
		_, err := service.AddLocalRole(ctx, order, GroupPrincipal(techs), referrer)
		require.NoError(t, err)

		helper.AssertHasRole(UserPrincipal(alice), referrer, order)
		helper.AssertNotHasRole(UserPrincipal(alice), referrer, nil)
	})

	t.Run("Leaving the group drops inherited roles", func(t *testing.T) {
		removed, err := service.RemoveGroupMember(ctx, techs, alice)
		require.NoError(t, err)
		assert.True(t, removed)

		helper.AssertNotHasRole(UserPrincipal(alice), member, nil)
		helper.AssertNotHasRole(UserPrincipal(alice), referrer, order)
	})

	t.Run("Group principal resolves its own grants", func(t *testing.T) {
		roles, err := service.ResolveRoles(ctx, GroupPrincipal(techs), order)
		require.NoError(t, err)
		assert.Len(t, roles, 2)
	})

	t.Run("Membership in multiple groups accumulates", func(t *testing.T) {
		cashiers := helper.NewGroup("cashiers")
		cash := mustRegister(t, service, ctx, "gas_referrer_cash", Params{"gas": RefOf(gas)})

		_, err := service.AddGroupMember(ctx, techs, alice)
		require.NoError(t, err)
		_, err = service.AddGroupMember(ctx, cashiers, alice)
		require.NoError(t, err)
		_, err = service.AddGlobalRole(ctx, GroupPrincipal(cashiers), cash)
		require.NoError(t, err)

		names, err := service.ResolveRoleNames(ctx, UserPrincipal(alice), nil)
		require.NoError(t, err)
		assert.Contains(t, names, "gas_member")
		assert.Contains(t, names, "gas_referrer_cash")
	})

	t.Run("Cyclic group graph does not loop", func(t *testing.T) {
		// Membership rows forming a cycle between two groups must not hang
		// resolution for a user inside the cycle.
		loopA := helper.NewGroup("loop-a")
		loopB := helper.NewGroup("loop-b")
		_, err := service.AddGroupMember(ctx, loopA, loopB)
		require.NoError(t, err)
		_, err = service.AddGroupMember(ctx, loopB, loopA)
		require.NoError(t, err)
		_, err = service.AddGroupMember(ctx, loopA, alice)
		require.NoError(t, err)

		_, err = service.ResolveRoles(ctx, UserPrincipal(alice), nil)
		require.NoError(t, err)
	})
}

func mustRegister(t *testing.T, service *Service, ctx context.Context, name string, params Params) *ParamRole {
	t.Helper()
	role, err := service.Register(ctx, name, params)
	if err != nil {
		t.Fatalf("Failed to register role %s: %v", name, err)
	}
	return role
}
