package api

type ErrorResponse struct {
	Error   string            `json:"error" example:"something went wrong"`
	Code    string            `json:"code,omitempty" example:"invalid_input"`
	Details []ValidationError `json:"details,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type HealthResponse struct {
	Status string            `json:"status" example:"ok"`
	Checks map[string]string `json:"checks,omitempty"`
}
