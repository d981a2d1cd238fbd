package model

import "time"

// Device represents one unattended caller display. The human-chosen name is
// the primary key and may change; the hardware identifier, once present,
// never does and is the stronger of the two keys.
type Device struct {
	Name             string     `db:"name"               json:"name"`
	HardwareID       *string    `db:"hardware_id"        json:"hardware_id,omitempty"`
	Description      *string    `db:"description"        json:"description,omitempty"`
	LastSeen         *time.Time `db:"last_seen"          json:"last_seen,omitempty"`
	LastStatus       *string    `db:"last_status"        json:"last_status,omitempty"`
	LastAddress      *string    `db:"last_address"       json:"last_address,omitempty"`
	Notes            *string    `db:"notes"              json:"notes,omitempty"`
	Location         *string    `db:"location"           json:"location,omitempty"`
	Sublocation      *string    `db:"sublocation"        json:"sublocation,omitempty"`
	Resolution       *string    `db:"resolution"         json:"resolution,omitempty"`
	Layout           *string    `db:"layout"             json:"layout,omitempty"`
	Hardware         *string    `db:"hardware"           json:"hardware,omitempty"`
	Photo            *string    `db:"photo"              json:"photo,omitempty"`
	PlaylistID       *int       `db:"playlist_id"        json:"playlist_id,omitempty"`
	ConfigOverride   *string    `db:"config_override"    json:"config_override,omitempty"`
	ConfigUpdatedAt  *time.Time `db:"config_updated_at"  json:"config_updated_at,omitempty"`
	ReportedConfig   *string    `db:"reported_config"    json:"reported_config,omitempty"`
	ReportedConfigAt *time.Time `db:"reported_config_at" json:"reported_config_at,omitempty"`
	CreatedAt        time.Time  `db:"created_at"         json:"created_at"`
}
