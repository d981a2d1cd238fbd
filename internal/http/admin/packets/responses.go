package packets

type TokenResponse struct {
	Token string `json:"token"`
}

type UserResponse struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

type DeviceCreatedResponse struct {
	Name       string `json:"name"`
	HardwareID string `json:"hardware_id"`
}
