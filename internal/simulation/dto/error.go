package dto

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the body of GET / and GET /health.
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}
