package db

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsRunOnceAndSeedOneAdmin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hydra.db")
	store := New(path)
	require.NoError(t, store.Open())

	users, err := store.ListUsers()
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "admin", users[0].Username)
	assert.Equal(t, "admin", users[0].Role)

	// a second open must not re-run migrations or duplicate the seed
	require.NoError(t, store.Close())
	require.NoError(t, store.Open())
	defer store.Close()

	users, err = store.ListUsers()
	require.NoError(t, err)
	require.Len(t, users, 1)

	conn, err := store.handle()
	require.NoError(t, err)
	var version int
	require.NoError(t, conn.Get(&version, `SELECT MAX(version) FROM schema_migrations`))
	assert.Equal(t, len(migrationSteps()), version)
}

func TestLegacyDeviceMembershipMigration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hydra.db")

	// build a pre-playlist store by hand: membership rows hang directly off
	// a device name, and there is no version table yet
	raw, err := sqlx.Connect("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on", path))
	require.NoError(t, err)
	_, err = raw.Exec(`
		CREATE TABLE videos (
		    id            INTEGER PRIMARY KEY AUTOINCREMENT,
		    filename      TEXT NOT NULL UNIQUE,
		    original_name TEXT NOT NULL,
		    sha256        TEXT NOT NULL,
		    size_bytes    INTEGER NOT NULL DEFAULT 0,
		    description   TEXT,
		    category      TEXT,
		    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE device_playlists (
		    device_name TEXT NOT NULL,
		    filename    TEXT NOT NULL,
		    position    INTEGER NOT NULL
		);
		INSERT INTO videos (filename, original_name, sha256) VALUES
		    ('intro.mp4', 'intro.mp4', 'aa'),
		    ('promo.mp4', 'promo.mp4', 'bb');
		INSERT INTO device_playlists (device_name, filename, position) VALUES
		    ('lobby', 'promo.mp4', 2),
		    ('lobby', 'intro.mp4', 1);
	`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	store := New(path)
	require.NoError(t, store.Open())
	defer store.Close()

	// old table is gone
	conn, err := store.handle()
	require.NoError(t, err)
	var n int
	require.NoError(t, conn.Get(&n,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'device_playlists'`))
	assert.Zero(t, n)

	// one playlist per legacy device name, items in position order
	playlists, err := store.ListPlaylists()
	require.NoError(t, err)
	require.Len(t, playlists, 1)
	assert.Equal(t, "lobby", playlists[0].Name)
	require.Len(t, playlists[0].Items, 2)
	assert.Equal(t, "intro.mp4", playlists[0].Items[0].Filename)
	assert.Equal(t, "promo.mp4", playlists[0].Items[1].Filename)
}

func TestLegacyMigrationAssignsDevice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hydra.db")

	raw, err := sqlx.Connect("sqlite3", fmt.Sprintf("file:%s", path))
	require.NoError(t, err)
	_, err = raw.Exec(`
		CREATE TABLE videos (
		    id            INTEGER PRIMARY KEY AUTOINCREMENT,
		    filename      TEXT NOT NULL UNIQUE,
		    original_name TEXT NOT NULL,
		    sha256        TEXT NOT NULL,
		    size_bytes    INTEGER NOT NULL DEFAULT 0,
		    description   TEXT,
		    category      TEXT,
		    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE devices (
		    name         TEXT PRIMARY KEY,
		    description  TEXT,
		    last_seen    DATETIME,
		    last_status  TEXT,
		    last_address TEXT,
		    notes        TEXT,
		    location     TEXT,
		    sublocation  TEXT,
		    resolution   TEXT,
		    hardware     TEXT,
		    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE device_playlists (
		    device_name TEXT NOT NULL,
		    filename    TEXT NOT NULL,
		    position    INTEGER NOT NULL
		);
		INSERT INTO videos (filename, original_name, sha256) VALUES ('loop.mp4', 'loop.mp4', 'cc');
		INSERT INTO devices (name) VALUES ('kiosk-7');
		INSERT INTO device_playlists (device_name, filename, position) VALUES ('kiosk-7', 'loop.mp4', 1);
	`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	store := New(path)
	require.NoError(t, store.Open())
	defer store.Close()

	d, err := store.GetDeviceByName("kiosk-7")
	require.NoError(t, err)
	require.NotNil(t, d.PlaylistID)
	assert.Nil(t, d.HardwareID)

	p, err := store.GetPlaylistByID(*d.PlaylistID)
	require.NoError(t, err)
	assert.Equal(t, "kiosk-7", p.Name)
	require.Len(t, p.Items, 1)
	assert.Equal(t, "loop.mp4", p.Items[0].Filename)

	// the migrated column carries the playlist foreign key
	require.NoError(t, store.DeletePlaylist(*d.PlaylistID))
	d, err = store.GetDeviceByName("kiosk-7")
	require.NoError(t, err)
	assert.Nil(t, d.PlaylistID)

	// and the hardware id column gained its unique index
	_, err = store.CreateDevice("a", strPtr("hw-1"), nil, nil)
	require.NoError(t, err)
	_, err = store.CreateDevice("b", strPtr("hw-1"), nil, nil)
	require.Error(t, err)
	assert.True(t, IsConflict(err))
}
