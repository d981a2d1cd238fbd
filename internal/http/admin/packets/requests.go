package packets

import "encoding/json"

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=admin user"`
}

type UpdateUserRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin user"`
}

type UpdateUserPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

type UpdateVideoRequest struct {
	Description *string `json:"description"`
	Category    *string `json:"category"`
}

type CreatePlaylistRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

type UpdatePlaylistRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// ItemEntry is one membership row in a replacement request. The same video
// id may appear at several positions. Position nil means "use request
// order"; an explicit zero is kept as-is.
type ItemEntry struct {
	VideoID  int  `json:"video_id" binding:"required"`
	Position *int `json:"position"`
}

type ReplaceItemsRequest struct {
	Items []ItemEntry `json:"items"`
}

type AssignPlaylistRequest struct {
	DeviceName string `json:"device_name" binding:"required"`
}

type CreateDeviceRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

type UpdateDeviceRequest struct {
	Description *string `json:"description"`
	Notes       *string `json:"notes"`
	Location    *string `json:"location"`
	Sublocation *string `json:"sublocation"`
	Resolution  *string `json:"resolution"`
	Layout      *string `json:"layout"`
	Hardware    *string `json:"hardware"`
	Photo       *string `json:"photo"`
}

type DeviceConfigRequest struct {
	Config json.RawMessage `json:"config"`
}

type CreateLocationRequest struct {
	Name string `json:"name" binding:"required"`
}
