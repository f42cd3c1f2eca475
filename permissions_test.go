package paramrole

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPermissionRegister_Define tests definition and lookup
func TestPermissionRegister_Define(t *testing.T) {
	register := NewPermissionRegister().
		Define("view", "Read access").
		Define("edit", "Write access")

	t.Run("Get defined permission", func(t *testing.T) {
		perm, err := register.Get("view")
		require.NoError(t, err)
		assert.Equal(t, "view", perm.Code)
		assert.Equal(t, "Read access", perm.Description)
	})

	t.Run("Get undefined permission", func(t *testing.T) {
		_, err := register.Get("delete")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownPermission)
	})

	t.Run("Has", func(t *testing.T) {
		assert.True(t, register.Has("edit"))
		assert.False(t, register.Has("delete"))
	})

	t.Run("Codes are sorted", func(t *testing.T) {
		assert.Equal(t, []string{"edit", "view"}, register.Codes())
	})

	t.Run("Redefining replaces description", func(t *testing.T) {
		register.Define("view", "Read-only access")
		perm, err := register.Get("view")
		require.NoError(t, err)
		assert.Equal(t, "Read-only access", perm.Description)
	})
}

// TestPermissionRegister_Validate tests code well-formedness rules
func TestPermissionRegister_Validate(t *testing.T) {
	register := NewPermissionRegister()

	tests := []struct {
		name    string
		code    string
		wantErr bool
	}{
		{"simple code", "view", false},
		{"underscored code", "confirm_order", false},
		{"digits allowed", "tier2_access", false},
		{"empty code", "", true},
		{"uppercase rejected", "View", true},
		{"spaces rejected", "confirm order", true},
		{"dashes rejected", "confirm-order", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := register.Validate(tt.code)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownPermission)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
