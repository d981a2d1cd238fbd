package model

import "time"

// Video is one catalog row backed by a file in the video directory.
type Video struct {
	ID           int       `db:"id"            json:"id"`
	Filename     string    `db:"filename"      json:"filename"`
	OriginalName string    `db:"original_name" json:"original_name"`
	SHA256       string    `db:"sha256"        json:"sha256"`
	SizeBytes    int64     `db:"size_bytes"    json:"size_bytes"`
	Description  *string   `db:"description"   json:"description,omitempty"`
	Category     *string   `db:"category"      json:"category,omitempty"`
	CreatedAt    time.Time `db:"created_at"    json:"created_at"`
}
