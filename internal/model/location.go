package model

import "time"

// Location is a tag vocabulary entry. Devices keep the label as free text, so
// deleting a location never cascades.
type Location struct {
	ID        int       `db:"id"         json:"id"`
	Name      string    `db:"name"       json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
