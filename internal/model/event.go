package model

import "time"

// PlayEvent is an append-only play-history row. Rows are never updated or
// deleted except by a full store reset; a device rename rewrites device_name
// so history stays attributed to the current name.
type PlayEvent struct {
	ID           int       `db:"id"            json:"id"`
	DeviceName   string    `db:"device_name"   json:"device_name"`
	Filename     string    `db:"filename"      json:"filename"`
	VideoID      *int      `db:"video_id"      json:"video_id,omitempty"`
	PlayedAt     time.Time `db:"played_at"     json:"played_at"`
	DurationSecs *int      `db:"duration_secs" json:"duration_secs,omitempty"`
	Location     *string   `db:"location"      json:"location,omitempty"`
}
