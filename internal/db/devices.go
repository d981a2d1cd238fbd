package db

import (
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/hydra/internal/model"
)

const deviceColumns = `
	name, hardware_id, description, last_seen, last_status, last_address,
	notes, location, sublocation, resolution, layout, hardware, photo,
	playlist_id, config_override, config_updated_at,
	reported_config, reported_config_at, created_at`

func (s *Store) GetDeviceByName(name string) (*model.Device, error) {
	conn, err := s.handle()
	if err != nil {
		return nil, err
	}
	var d model.Device
	if err := conn.Get(&d, `SELECT `+deviceColumns+` FROM devices WHERE name = ?`, name); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Store) GetDeviceByHardwareID(hardwareID string) (*model.Device, error) {
	conn, err := s.handle()
	if err != nil {
		return nil, err
	}
	var d model.Device
	if err := conn.Get(&d, `SELECT `+deviceColumns+` FROM devices WHERE hardware_id = ?`, hardwareID); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Store) ListDevices() ([]model.Device, error) {
	conn, err := s.handle()
	if err != nil {
		return nil, err
	}
	var out []model.Device
	err = conn.Select(&out, `SELECT `+deviceColumns+` FROM devices ORDER BY name`)
	if err != nil {
		log.Error().Err(err).Msg("failed to list devices")
	}
	return out, err
}

func (s *Store) CreateDevice(name string, hardwareID, description, address *string) (*model.Device, error) {
	conn, err := s.handle()
	if err != nil {
		return nil, err
	}
	_, err = conn.Exec(`
		INSERT INTO devices (name, hardware_id, description, last_address)
		VALUES (?, ?, ?, ?)`,
		name, hardwareID, description, address)
	if err != nil {
		if !IsConflict(err) {
			log.Error().Err(err).Str("name", name).Msg("failed to create device")
		}
		return nil, err
	}
	return s.GetDeviceByName(name)
}

// UpdateDevice sets the operator-editable attributes. Nil fields are left
// unchanged.
func (s *Store) UpdateDevice(name string, description, notes, location, sublocation, resolution, layout, hardware, photo *string) error {
	conn, err := s.handle()
	if err != nil {
		return err
	}
	_, err = conn.Exec(`
		UPDATE devices
		SET description = COALESCE(?, description),
		    notes       = COALESCE(?, notes),
		    location    = COALESCE(?, location),
		    sublocation = COALESCE(?, sublocation),
		    resolution  = COALESCE(?, resolution),
		    layout      = COALESCE(?, layout),
		    hardware    = COALESCE(?, hardware),
		    photo       = COALESCE(?, photo)
		WHERE name = ?`,
		description, notes, location, sublocation, resolution, layout, hardware, photo, name)
	if err != nil {
		log.Error().Err(err).Str("name", name).Msg("failed to update device")
	}
	return err
}

func (s *Store) DeleteDevice(name string) error {
	conn, err := s.handle()
	if err != nil {
		return err
	}
	_, err = conn.Exec(`DELETE FROM devices WHERE name = ?`, name)
	if err != nil {
		log.Error().Err(err).Str("name", name).Msg("failed to delete device")
	}
	return err
}

// AssignPlaylist points a device at a playlist; nil unassigns.
func (s *Store) AssignPlaylist(name string, playlistID *int) error {
	conn, err := s.handle()
	if err != nil {
		return err
	}
	_, err = conn.Exec(`UPDATE devices SET playlist_id = ? WHERE name = ?`, playlistID, name)
	if err != nil {
		log.Error().Err(err).Str("name", name).Msg("failed to assign playlist")
	}
	return err
}

// SetConfigOverride stores the operator-authored configuration blob verbatim
// and stamps its own timestamp. A nil config clears the override, which is
// distinct from never having had one only in the timestamp column.
func (s *Store) SetConfigOverride(name string, config *string) error {
	conn, err := s.handle()
	if err != nil {
		return err
	}
	_, err = conn.Exec(`
		UPDATE devices
		SET config_override   = ?,
		    config_updated_at = CURRENT_TIMESTAMP
		WHERE name = ?`, config, name)
	return err
}

// SetReportedConfig stores the configuration a device says it is running.
// The server only ever reads this column.
func (s *Store) SetReportedConfig(name string, config string) error {
	conn, err := s.handle()
	if err != nil {
		return err
	}
	_, err = conn.Exec(`
		UPDATE devices
		SET reported_config    = ?,
		    reported_config_at = CURRENT_TIMESTAMP
		WHERE name = ?`, config, name)
	return err
}

// TouchDevice refreshes last-seen, and when supplied, the reported address
// and status blob.
func (s *Store) TouchDevice(name string, address, status *string) error {
	conn, err := s.handle()
	if err != nil {
		return err
	}
	_, err = conn.Exec(`
		UPDATE devices
		SET last_seen    = CURRENT_TIMESTAMP,
		    last_address = COALESCE(?, last_address),
		    last_status  = COALESCE(?, last_status)
		WHERE name = ?`, address, status, name)
	return err
}

// RenameDevice changes a device's name and rewrites its play history in the
// same transaction, so history stays attributed to the current name.
func (s *Store) RenameDevice(oldName, newName string) error {
	err := s.withTx(func(tx *sqlx.Tx) error {
		if _, err := tx.Exec(`UPDATE devices SET name = ? WHERE name = ?`, newName, oldName); err != nil {
			return err
		}
		_, err := tx.Exec(`UPDATE play_events SET device_name = ? WHERE device_name = ?`, newName, oldName)
		return err
	})
	if err != nil && !IsConflict(err) {
		log.Error().Err(err).Str("old", oldName).Str("new", newName).Msg("failed to rename device")
	}
	return err
}

// AdoptHardwareID attaches a stable identifier to a legacy device record
// that never had one.
func (s *Store) AdoptHardwareID(name, hardwareID string) error {
	conn, err := s.handle()
	if err != nil {
		return err
	}
	_, err = conn.Exec(`UPDATE devices SET hardware_id = ? WHERE name = ?`, hardwareID, name)
	if err != nil && !IsConflict(err) {
		log.Error().Err(err).Str("name", name).Msg("failed to adopt hardware id")
	}
	return err
}
