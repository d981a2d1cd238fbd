package packets

import "encoding/json"

// ReportRequest is one device announcement. Status and ReportedConfig are
// opaque JSON owned by the device/operator contract; the server stores them
// verbatim.
type ReportRequest struct {
	Name           string          `json:"name" binding:"required"`
	HardwareID     *string         `json:"hardware_id"`
	Address        *string         `json:"address"`
	Description    *string         `json:"description"`
	Status         json.RawMessage `json:"status"`
	ReportedConfig json.RawMessage `json:"reported_config"`
}

type PlayEventRequest struct {
	Name         string  `json:"name" binding:"required"`
	Filename     string  `json:"filename" binding:"required"`
	VideoID      *int    `json:"video_id"`
	PlayedAt     *string `json:"played_at"`
	DurationSecs *int    `json:"duration_secs"`
}
