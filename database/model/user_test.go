package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	u, err := NewUser("ann@example.com", "pa55", RoleUser)
	require.NoError(t, err)

	assert.Equal(t, "ann@example.com", u.ID)
	assert.Equal(t, u.ID, u.Email)
	assert.Equal(t, RoleUser, u.Role)
	assert.NotEqual(t, "pa55", u.PwHash)
	assert.True(t, u.CheckPassword("pa55"))
	assert.False(t, u.CheckPassword("pa56"))
	assert.False(t, u.IsAdmin())
}

func TestNewUser_EmptyPassword(t *testing.T) {
	_, err := NewUser("ann@example.com", "", RoleUser)
	assert.Error(t, err)
}

func TestUser_SetPasswordReplacesHash(t *testing.T) {
	u, err := NewUser("ann@example.com", "old", RoleAdmin)
	require.NoError(t, err)
	oldHash := u.PwHash

	require.NoError(t, u.SetPassword("new"))

	assert.NotEqual(t, oldHash, u.PwHash)
	assert.True(t, u.CheckPassword("new"))
	assert.False(t, u.CheckPassword("old"))
	assert.True(t, u.IsAdmin())
}

func TestMetabolite_Summary(t *testing.T) {
	w := 180.16
	m := &Metabolite{ID: "HMDB0000122", CommonName: "Glucose", Formula: "C6H12O6", AverageMolecularWeight: &w, PubchemCompoundID: "5793", Smiles: "OC"}

	s := m.Summary()
	assert.Equal(t, MetaboliteSummary{ID: "HMDB0000122", CommonName: "Glucose", Formula: "C6H12O6", AverageMolecularWeight: &w, PubchemCompoundID: "5793"}, s)
}
