package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/hydra/internal/model"
)

func TestUsernameLookupIsCaseInsensitive(t *testing.T) {
	store := newTestStore(t)
	id, err := store.CreateUser("Operator", "hashed", model.RoleUser)
	require.NoError(t, err)

	u, err := store.GetUserByUsername("operator")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, "Operator", u.Username)

	// and uniqueness is case-insensitive too
	_, err = store.CreateUser("OPERATOR", "hashed", model.RoleUser)
	require.Error(t, err)
	assert.True(t, IsConflict(err))
}

func TestSeededAdminIsProtected(t *testing.T) {
	store := newTestStore(t)
	admin, err := store.GetUserByUsername("admin")
	require.NoError(t, err)

	assert.ErrorIs(t, store.DeleteUser(admin.ID), ErrProtectedUser)
	assert.ErrorIs(t, store.UpdateUserRole(admin.ID, model.RoleUser), ErrProtectedUser)

	// re-asserting the admin role is allowed
	assert.NoError(t, store.UpdateUserRole(admin.ID, model.RoleAdmin))
}

func TestDeleteOrdinaryUser(t *testing.T) {
	store := newTestStore(t)
	id, err := store.CreateUser("temp", "hashed", model.RoleUser)
	require.NoError(t, err)

	require.NoError(t, store.DeleteUser(id))
	_, err = store.GetUserByID(id)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUpdateUserRole(t *testing.T) {
	store := newTestStore(t)
	id, err := store.CreateUser("promoted", "hashed", model.RoleUser)
	require.NoError(t, err)

	require.NoError(t, store.UpdateUserRole(id, model.RoleAdmin))
	u, err := store.GetUserByID(id)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, u.Role)
}
