package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocationVocabulary(t *testing.T) {
	store := newTestStore(t)

	loc, err := store.CreateLocation("HQ")
	require.NoError(t, err)
	assert.Equal(t, "HQ", loc.Name)

	_, err = store.CreateLocation("HQ")
	require.Error(t, err)
	assert.True(t, IsConflict(err))

	// devices keep the label as free text, so removing the vocabulary entry
	// never touches them
	_, err = store.CreateDevice("kiosk", nil, nil, nil)
	require.NoError(t, err)
	require.NoError(t, store.UpdateDevice("kiosk", nil, nil, strPtr("HQ"), nil, nil, nil, nil, nil))
	require.NoError(t, store.DeleteLocation(loc.ID))

	d, err := store.GetDeviceByName("kiosk")
	require.NoError(t, err)
	require.NotNil(t, d.Location)
	assert.Equal(t, "HQ", *d.Location)

	locations, err := store.ListLocations()
	require.NoError(t, err)
	assert.Empty(t, locations)
}
