package types

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type HealthResponse struct {
	OK         bool   `json:"ok"`
	ServerTime string `json:"server_time"`
}
