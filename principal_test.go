package paramrole

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestPrincipalConstructors tests UserPrincipal and GroupPrincipal
func TestPrincipalConstructors(t *testing.T) {
	user := UserPrincipal("alice")
	assert.True(t, user.IsUser())
	assert.False(t, user.IsGroup())
	assert.Equal(t, "user:alice", user.String())

	group := GroupPrincipal("techs")
	assert.True(t, group.IsGroup())
	assert.False(t, group.IsUser())
	assert.Equal(t, "group:techs", group.String())
}

// TestPrincipalValidate tests the validation rules
func TestPrincipalValidate(t *testing.T) {
	tests := []struct {
		name      string
		principal Principal
		wantErr   bool
	}{
		{"valid user", UserPrincipal("alice"), false},
		{"valid group", GroupPrincipal("techs"), false},
		{"empty ID", UserPrincipal(""), true},
		{"zero value", Principal{}, true},
		{"unknown kind", Principal{Kind: "robot", ID: "r2"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.principal.Validate()
			if tt.wantErr {
				assert.True(t, IsInvalidPrincipal(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
