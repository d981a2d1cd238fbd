package db

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// Schema evolution. Each step carries its own applied-probe so that stores
// created before the schema_migrations table existed still converge: the
// runner skips steps the version table says are done, probes the rest, and
// records everything it passes. Any failure aborts startup entirely; the
// process never serves traffic against a half-migrated store.

const baseSchema = `
CREATE TABLE IF NOT EXISTS users (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    username        TEXT NOT NULL UNIQUE COLLATE NOCASE,
    hashed_password TEXT NOT NULL,
    role            TEXT NOT NULL DEFAULT 'user',
    created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS videos (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    filename      TEXT NOT NULL UNIQUE,
    original_name TEXT NOT NULL,
    sha256        TEXT NOT NULL,
    size_bytes    INTEGER NOT NULL DEFAULT 0,
    description   TEXT,
    category      TEXT,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS playlists (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    name        TEXT NOT NULL UNIQUE,
    description TEXT,
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS playlist_items (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    playlist_id INTEGER NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
    video_id    INTEGER NOT NULL REFERENCES videos(id),
    position    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_playlist_items_playlist ON playlist_items(playlist_id);

CREATE TABLE IF NOT EXISTS devices (
    name               TEXT PRIMARY KEY,
    hardware_id        TEXT,
    description        TEXT,
    last_seen          DATETIME,
    last_status        TEXT,
    last_address       TEXT,
    notes              TEXT,
    location           TEXT,
    sublocation        TEXT,
    resolution         TEXT,
    layout             TEXT,
    hardware           TEXT,
    photo              TEXT,
    playlist_id        INTEGER REFERENCES playlists(id) ON DELETE SET NULL,
    config_override    TEXT,
    config_updated_at  DATETIME,
    reported_config    TEXT,
    reported_config_at DATETIME,
    created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS locations (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    name       TEXT NOT NULL UNIQUE,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS play_events (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    device_name   TEXT NOT NULL,
    filename      TEXT NOT NULL,
    video_id      INTEGER,
    played_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    duration_secs INTEGER,
    location      TEXT
);
CREATE INDEX IF NOT EXISTS idx_play_events_device ON play_events(device_name, played_at);
`

type migrationStep struct {
	version int
	name    string
	applied func(tx *sqlx.Tx) (bool, error)
	apply   func(tx *sqlx.Tx) error
}

func migrationSteps() []migrationStep {
	return []migrationStep{
		{
			version: 1,
			name:    "base schema",
			// CREATE IF NOT EXISTS throughout, so re-probing is free
			applied: func(tx *sqlx.Tx) (bool, error) { return false, nil },
			apply: func(tx *sqlx.Tx) error {
				_, err := tx.Exec(baseSchema)
				return err
			},
		},
		{
			version: 2,
			name:    "device identity and config columns",
			// every ALTER below carries its own column probe and the index
			// is IF NOT EXISTS, so re-running is free. A legacy devices
			// table survives the base-schema no-op and is reconciled here.
			applied: func(tx *sqlx.Tx) (bool, error) { return false, nil },
			apply: func(tx *sqlx.Tx) error {
				cols := map[string]string{
					"hardware_id":        "TEXT",
					"layout":             "TEXT",
					"photo":              "TEXT",
					"playlist_id":        "INTEGER REFERENCES playlists(id) ON DELETE SET NULL",
					"config_override":    "TEXT",
					"config_updated_at":  "DATETIME",
					"reported_config":    "TEXT",
					"reported_config_at": "DATETIME",
				}
				for name, typ := range cols {
					ok, err := columnExists(tx, "devices", name)
					if err != nil {
						return err
					}
					if ok {
						continue
					}
					stmt := fmt.Sprintf("ALTER TABLE devices ADD COLUMN %s %s", name, typ)
					if _, err := tx.Exec(stmt); err != nil {
						return fmt.Errorf("add column devices.%s: %w", name, err)
					}
				}
				_, err := tx.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_devices_hardware_id ON devices(hardware_id)`)
				return err
			},
		},
		{
			version: 3,
			name:    "device-keyed membership to playlists",
			applied: func(tx *sqlx.Tx) (bool, error) {
				exists, err := tableExists(tx, "device_playlists")
				return !exists, err
			},
			apply: migrateDevicePlaylists,
		},
		{
			version: 4,
			name:    "allow repeated videos in a playlist",
			applied: func(tx *sqlx.Tx) (bool, error) {
				ddl, err := tableDDL(tx, "playlist_items")
				if err != nil {
					return false, err
				}
				return !strings.Contains(strings.ToUpper(ddl), "UNIQUE"), nil
			},
			apply: rebuildPlaylistItems,
		},
		{
			version: 5,
			name:    "seed default admin",
			applied: func(tx *sqlx.Tx) (bool, error) {
				var n int
				err := tx.Get(&n, `SELECT COUNT(*) FROM users WHERE username = ?`, "admin")
				return n > 0, err
			},
			apply: func(tx *sqlx.Tx) error {
				hashed, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
				if err != nil {
					return err
				}
				_, err = tx.Exec(
					`INSERT INTO users (username, hashed_password, role) VALUES (?, ?, 'admin')`,
					"admin", string(hashed),
				)
				return err
			},
		},
	}
}

// migrate brings a database of unknown prior version up to the current
// schema. Each step runs in its own transaction; a failing step rolls back
// completely and aborts the open.
func migrate(conn *sqlx.DB) error {
	if _, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
		    version    INTEGER PRIMARY KEY,
		    applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	var current int
	if err := conn.Get(&current, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for _, step := range migrationSteps() {
		if step.version <= current {
			continue
		}
		tx, err := conn.Beginx()
		if err != nil {
			return err
		}
		done, err := step.applied(tx)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s) probe: %w", step.version, step.name, err)
		}
		if !done {
			if err := step.apply(tx); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d (%s): %w", step.version, step.name, err)
			}
			log.Info().Int("version", step.version).Str("name", step.name).Msg("applied schema migration")
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, step.version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", step.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", step.version, err)
		}
	}
	return nil
}

// migrateDevicePlaylists converts the pre-playlist layout, where membership
// rows hung directly off a device name, into playlist-keyed membership. One
// playlist is synthesized per device name, rows are copied across, the old
// table is dropped, and each device is pointed at its synthesized playlist.
func migrateDevicePlaylists(tx *sqlx.Tx) error {
	var names []string
	if err := tx.Select(&names, `SELECT DISTINCT device_name FROM device_playlists ORDER BY device_name`); err != nil {
		return fmt.Errorf("list legacy device names: %w", err)
	}

	for _, name := range names {
		res, err := tx.Exec(`INSERT INTO playlists (name) VALUES (?)`, name)
		if err != nil {
			return fmt.Errorf("synthesize playlist for %q: %w", name, err)
		}
		pid, err := res.LastInsertId()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`
			INSERT INTO playlist_items (playlist_id, video_id, position)
			SELECT ?, v.id, dp.position
			  FROM device_playlists dp
			  JOIN videos v ON v.filename = dp.filename
			 WHERE dp.device_name = ?`, pid, name); err != nil {
			return fmt.Errorf("copy membership for %q: %w", name, err)
		}
		if _, err := tx.Exec(`UPDATE devices SET playlist_id = ? WHERE name = ?`, pid, name); err != nil {
			return fmt.Errorf("assign playlist for %q: %w", name, err)
		}
	}

	if _, err := tx.Exec(`DROP TABLE device_playlists`); err != nil {
		return fmt.Errorf("drop device_playlists: %w", err)
	}
	_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_playlist_items_playlist ON playlist_items(playlist_id)`)
	return err
}

// rebuildPlaylistItems drops the historical UNIQUE(playlist_id, video_id)
// constraint so a video can appear at several positions in one playlist.
// SQLite cannot drop a table constraint in place, so: create, copy, drop,
// rename.
func rebuildPlaylistItems(tx *sqlx.Tx) error {
	stmts := []string{
		`CREATE TABLE playlist_items_new (
		    id          INTEGER PRIMARY KEY AUTOINCREMENT,
		    playlist_id INTEGER NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
		    video_id    INTEGER NOT NULL REFERENCES videos(id),
		    position    INTEGER NOT NULL
		)`,
		`INSERT INTO playlist_items_new (id, playlist_id, video_id, position)
		 SELECT id, playlist_id, video_id, position FROM playlist_items`,
		`DROP TABLE playlist_items`,
		`ALTER TABLE playlist_items_new RENAME TO playlist_items`,
		`CREATE INDEX IF NOT EXISTS idx_playlist_items_playlist ON playlist_items(playlist_id)`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("rebuild playlist_items: %w", err)
		}
	}
	return nil
}

func tableExists(tx *sqlx.Tx, table string) (bool, error) {
	var n int
	err := tx.Get(&n, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table)
	return n > 0, err
}

func columnExists(tx *sqlx.Tx, table, column string) (bool, error) {
	var n int
	err := tx.Get(&n, `SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`, table, column)
	return n > 0, err
}

func tableDDL(tx *sqlx.Tx, table string) (string, error) {
	var ddl string
	err := tx.Get(&ddl, `SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?`, table)
	return ddl, err
}
