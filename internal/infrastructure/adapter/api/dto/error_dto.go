package dto

// ErrorResponse represents a standardized error response for the API
type ErrorResponse struct {
	Success bool           `json:"success"`
	Code    int            `json:"code"`
	Error   string         `json:"error"`
	Details map[string]any `json:"details,omitempty"`
}
