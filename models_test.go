package paramrole

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleParamRole() *ParamRole {
	return &ParamRole{
		ID:     "pr-1",
		RoleID: "role-1",
		Role:   &Role{ID: "role-1", Name: "gas_referrer_supplier"},
		Params: []Param{
			{Name: "gas", ContentKind: KindGAS, ContentID: "gas-1"},
			{Name: "supplier", ContentKind: KindSupplier, ContentID: "sup-1"},
		},
	}
}

// TestParamRole_Accessors tests RoleName, Param and Spec
func TestParamRole_Accessors(t *testing.T) {
	pr := sampleParamRole()

	t.Run("RoleName", func(t *testing.T) {
		assert.Equal(t, "gas_referrer_supplier", pr.RoleName())
		assert.Equal(t, "", (&ParamRole{}).RoleName())
	})

	t.Run("Param lookup", func(t *testing.T) {
		ref, ok := pr.Param("supplier")
		require.True(t, ok)
		assert.Equal(t, NewContentRef(KindSupplier, "sup-1"), ref)

		_, ok = pr.Param("order")
		assert.False(t, ok)
	})

	t.Run("Spec", func(t *testing.T) {
		spec := pr.Spec()
		assert.Equal(t, "gas_referrer_supplier", spec.Name)
		assert.Len(t, spec.Params, 2)
		assert.Equal(t, NewContentRef(KindGAS, "gas-1"), spec.Params["gas"])
	})

	t.Run("String", func(t *testing.T) {
		assert.Equal(t, "gas_referrer_supplier on gas: gas:gas-1, supplier: supplier:sup-1", pr.String())
	})
}

// TestRoleSpec_Equal tests structural role comparison
func TestRoleSpec_Equal(t *testing.T) {
	base := RoleSpec{
		Name: "gas_referrer_supplier",
		Params: Params{
			"gas":      NewContentRef(KindGAS, "gas-1"),
			"supplier": NewContentRef(KindSupplier, "sup-1"),
		},
	}

	tests := []struct {
		name  string
		other RoleSpec
		want  bool
	}{
		{
			"identical",
			RoleSpec{Name: "gas_referrer_supplier", Params: Params{
				"gas":      NewContentRef(KindGAS, "gas-1"),
				"supplier": NewContentRef(KindSupplier, "sup-1"),
			}},
			true,
		},
		{
			"different role name",
			RoleSpec{Name: "gas_member", Params: Params{
				"gas":      NewContentRef(KindGAS, "gas-1"),
				"supplier": NewContentRef(KindSupplier, "sup-1"),
			}},
			false,
		},
		{
			"different content id",
			RoleSpec{Name: "gas_referrer_supplier", Params: Params{
				"gas":      NewContentRef(KindGAS, "gas-2"),
				"supplier": NewContentRef(KindSupplier, "sup-1"),
			}},
			false,
		},
		{
			"missing parameter",
			RoleSpec{Name: "gas_referrer_supplier", Params: Params{
				"gas": NewContentRef(KindGAS, "gas-1"),
			}},
			false,
		},
		{
			"extra parameter",
			RoleSpec{Name: "gas_referrer_supplier", Params: Params{
				"gas":      NewContentRef(KindGAS, "gas-1"),
				"supplier": NewContentRef(KindSupplier, "sup-1"),
				"order":    NewContentRef(KindOrder, "ord-1"),
			}},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Equal(tt.other))
			assert.Equal(t, tt.want, tt.other.Equal(base))
		})
	}
}

// TestGrantRelation_Principal tests the user XOR group mapping
func TestGrantRelation_Principal(t *testing.T) {
	t.Run("User grant", func(t *testing.T) {
		g := &GrantRelation{}
		require.NoError(t, g.SetPrincipal(UserPrincipal("user-1")))
		assert.Equal(t, "user-1", g.UserID)
		assert.Equal(t, "", g.GroupID)
		assert.Equal(t, UserPrincipal("user-1"), g.Principal())
	})

	t.Run("Group grant", func(t *testing.T) {
		g := &GrantRelation{}
		require.NoError(t, g.SetPrincipal(GroupPrincipal("group-1")))
		assert.Equal(t, "", g.UserID)
		assert.Equal(t, "group-1", g.GroupID)
		assert.Equal(t, GroupPrincipal("group-1"), g.Principal())
	})

	t.Run("Switching principal clears the other column", func(t *testing.T) {
		g := &GrantRelation{}
		require.NoError(t, g.SetPrincipal(UserPrincipal("user-1")))
		require.NoError(t, g.SetPrincipal(GroupPrincipal("group-1")))
		assert.Equal(t, "", g.UserID)
		assert.Equal(t, "group-1", g.GroupID)
	})

	t.Run("Invalid principal rejected", func(t *testing.T) {
		g := &GrantRelation{}
		err := g.SetPrincipal(Principal{Kind: "robot", ID: "r2"})
		assert.True(t, IsInvalidPrincipal(err))

		err = g.SetPrincipal(UserPrincipal(""))
		assert.True(t, IsInvalidPrincipal(err))
	})
}

// TestGrantRelation_Scope tests global versus local scoping
func TestGrantRelation_Scope(t *testing.T) {
	global := &GrantRelation{UserID: "user-1"}
	assert.False(t, global.IsLocal())
	assert.True(t, global.Scope().IsZero())

	local := &GrantRelation{UserID: "user-1", ContentKind: KindOrder, ContentID: "ord-1"}
	assert.True(t, local.IsLocal())
	assert.Equal(t, NewContentRef(KindOrder, "ord-1"), local.Scope())
}

// TestAuditEntry_ToModel tests conversion to the persisted audit model
func TestAuditEntry_ToModel(t *testing.T) {
	entry := &AuditEntry{
		ActorID:       "admin-1",
		Action:        AuditActionGranted,
		Principal:     UserPrincipal("user-1"),
		RoleName:      "gas_member",
		RoleSignature: "gas_member on gas: gas:gas-1",
		Content:       NewContentRef(KindGAS, "gas-1"),
		IPAddress:     "10.0.0.1",
		UserAgent:     "cli/1.0",
		RequestID:     "req-1",
	}

	model := entry.ToModel()
	assert.Equal(t, "admin-1", model.ActorID)
	assert.Equal(t, "granted", model.Action)
	assert.Equal(t, PrincipalUser, model.PrincipalKind)
	assert.Equal(t, "user-1", model.PrincipalID)
	assert.Equal(t, "gas_member", model.RoleName)
	assert.Equal(t, KindGAS, model.ContentKind)
	assert.Equal(t, "gas-1", model.ContentID)
	assert.Equal(t, "10.0.0.1", model.IPAddress)
	assert.False(t, model.Timestamp.IsZero())
}
