package packets

import "encoding/json"

type PlaylistItemResponse struct {
	Filename string `json:"filename"`
	Position int    `json:"position"`
}

type PlaylistResponse struct {
	Name  string                 `json:"name"`
	Items []PlaylistItemResponse `json:"items"`
}

type ConfigResponse struct {
	Config    json.RawMessage `json:"config"`
	UpdatedAt *string         `json:"updated_at,omitempty"`
}
