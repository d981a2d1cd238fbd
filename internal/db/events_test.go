package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListPlayEventsFilters(t *testing.T) {
	store := newTestStore(t)
	_, err := store.CreateDevice("a", nil, nil, nil)
	require.NoError(t, err)
	_, err = store.CreateDevice("b", nil, nil, nil)
	require.NoError(t, err)

	base := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.AppendPlayEvent("a", "one.mp4", nil, base, intPtr(30), nil))
	require.NoError(t, store.AppendPlayEvent("a", "two.mp4", nil, base.Add(time.Hour), nil, nil))
	require.NoError(t, store.AppendPlayEvent("b", "three.mp4", nil, base.Add(2*time.Hour), nil, nil))

	// newest first, no filters
	events, err := store.ListPlayEvents(nil, nil, nil, 0)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "three.mp4", events[0].Filename)

	// by device
	events, err = store.ListPlayEvents(strPtr("a"), nil, nil, 0)
	require.NoError(t, err)
	assert.Len(t, events, 2)

	// half-open time range: from is inclusive, to is exclusive
	from := base.Add(time.Hour)
	to := base.Add(2 * time.Hour)
	events, err = store.ListPlayEvents(nil, &from, &to, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "two.mp4", events[0].Filename)

	// limit
	events, err = store.ListPlayEvents(nil, nil, nil, 2)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}
