package db

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenameDeviceKeepsHistory(t *testing.T) {
	store := newTestStore(t)

	_, err := store.CreateDevice("old-name", strPtr("hw-1"), nil, nil)
	require.NoError(t, err)
	require.NoError(t, store.AppendPlayEvent("old-name", "a.mp4", nil, time.Now(), nil, nil))
	require.NoError(t, store.AppendPlayEvent("old-name", "b.mp4", nil, time.Now(), nil, nil))

	require.NoError(t, store.RenameDevice("old-name", "new-name"))

	_, err = store.GetDeviceByName("old-name")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	d, err := store.GetDeviceByName("new-name")
	require.NoError(t, err)
	require.NotNil(t, d.HardwareID)
	assert.Equal(t, "hw-1", *d.HardwareID)

	events, err := store.ListPlayEvents(strPtr("new-name"), nil, nil, 0)
	require.NoError(t, err)
	assert.Len(t, events, 2)

	events, err = store.ListPlayEvents(strPtr("old-name"), nil, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestRenameDeviceNameTaken(t *testing.T) {
	store := newTestStore(t)

	_, err := store.CreateDevice("a", strPtr("hw-a"), nil, nil)
	require.NoError(t, err)
	_, err = store.CreateDevice("b", strPtr("hw-b"), nil, nil)
	require.NoError(t, err)

	err = store.RenameDevice("a", "b")
	require.Error(t, err)
	assert.True(t, IsConflict(err))
}

func TestHardwareIDIsUnique(t *testing.T) {
	store := newTestStore(t)

	_, err := store.CreateDevice("a", strPtr("hw-1"), nil, nil)
	require.NoError(t, err)
	_, err = store.CreateDevice("b", strPtr("hw-1"), nil, nil)
	require.Error(t, err)
	assert.True(t, IsConflict(err))

	// multiple legacy devices without hardware ids are fine
	_, err = store.CreateDevice("c", nil, nil, nil)
	require.NoError(t, err)
	_, err = store.CreateDevice("d", nil, nil, nil)
	require.NoError(t, err)
}

func TestSetConfigOverrideAndClear(t *testing.T) {
	store := newTestStore(t)
	_, err := store.CreateDevice("kiosk", nil, nil, nil)
	require.NoError(t, err)

	require.NoError(t, store.SetConfigOverride("kiosk", strPtr(`{"volume":70}`)))
	d, err := store.GetDeviceByName("kiosk")
	require.NoError(t, err)
	require.NotNil(t, d.ConfigOverride)
	assert.JSONEq(t, `{"volume":70}`, *d.ConfigOverride)
	assert.NotNil(t, d.ConfigUpdatedAt)

	// clearing keeps the timestamp but drops the blob
	require.NoError(t, store.SetConfigOverride("kiosk", nil))
	d, err = store.GetDeviceByName("kiosk")
	require.NoError(t, err)
	assert.Nil(t, d.ConfigOverride)
	assert.NotNil(t, d.ConfigUpdatedAt)
}

func TestTouchDeviceRefreshesPresence(t *testing.T) {
	store := newTestStore(t)
	_, err := store.CreateDevice("kiosk", nil, nil, nil)
	require.NoError(t, err)

	require.NoError(t, store.TouchDevice("kiosk", strPtr("10.0.0.5"), strPtr(`{"uptime":12}`)))
	d, err := store.GetDeviceByName("kiosk")
	require.NoError(t, err)
	require.NotNil(t, d.LastSeen)
	require.NotNil(t, d.LastAddress)
	assert.Equal(t, "10.0.0.5", *d.LastAddress)

	// nil address and status leave the previous values in place
	require.NoError(t, store.TouchDevice("kiosk", nil, nil))
	d, err = store.GetDeviceByName("kiosk")
	require.NoError(t, err)
	require.NotNil(t, d.LastAddress)
	assert.Equal(t, "10.0.0.5", *d.LastAddress)
	require.NotNil(t, d.LastStatus)
}

func TestAssignPlaylist(t *testing.T) {
	store := newTestStore(t)
	_, err := store.CreateDevice("kiosk", nil, nil, nil)
	require.NoError(t, err)
	p, err := store.CreatePlaylist("loop", nil)
	require.NoError(t, err)

	require.NoError(t, store.AssignPlaylist("kiosk", &p.ID))
	d, err := store.GetDeviceByName("kiosk")
	require.NoError(t, err)
	require.NotNil(t, d.PlaylistID)
	assert.Equal(t, p.ID, *d.PlaylistID)

	require.NoError(t, store.AssignPlaylist("kiosk", nil))
	d, err = store.GetDeviceByName("kiosk")
	require.NoError(t, err)
	assert.Nil(t, d.PlaylistID)
}

func TestDeletePlaylistUnassignsDevice(t *testing.T) {
	store := newTestStore(t)
	_, err := store.CreateDevice("kiosk", nil, nil, nil)
	require.NoError(t, err)
	p, err := store.CreatePlaylist("loop", nil)
	require.NoError(t, err)
	require.NoError(t, store.AssignPlaylist("kiosk", &p.ID))

	require.NoError(t, store.DeletePlaylist(p.ID))

	d, err := store.GetDeviceByName("kiosk")
	require.NoError(t, err)
	assert.Nil(t, d.PlaylistID)
}
