package model

import "time"

type Playlist struct {
	ID          int            `db:"id"           json:"id"`
	Name        string         `db:"name"         json:"name"`
	Description *string        `db:"description"  json:"description,omitempty"`
	CreatedAt   time.Time      `db:"created_at"   json:"created_at"`
	Items       []PlaylistItem `db:"-"            json:"items,omitempty"`
}

// PlaylistItem is one (playlist, video, position) membership row. The same
// video may appear at several positions in one playlist.
type PlaylistItem struct {
	ID         int    `db:"id"          json:"id"`
	PlaylistID int    `db:"playlist_id" json:"playlist_id"`
	VideoID    int    `db:"video_id"    json:"video_id"`
	Position   int    `db:"position"    json:"position"`
	Filename   string `db:"filename"    json:"filename"`
}
