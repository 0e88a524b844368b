package dto

import "time"

// ErrorResponse is the standardized error body returned by every API endpoint.
//
// Fields:
//   - Message: short human-readable description.
//   - ErrorDetails: underlying error text, if any.
//   - Timestamp: when the error response was built (UTC).
type ErrorResponse struct {
	Message      string    `json:"message" example:"invalid date format, expected YYYY-MM-DD"`
	ErrorDetails string    `json:"error_details,omitempty" example:"parsing time \"2024/03/15\""`
	Timestamp    time.Time `json:"timestamp" example:"2024-03-15T10:00:00Z"`
}

// Error implements the error interface so an ErrorResponse can travel through c.Error().
func (e ErrorResponse) Error() string {
	if e.ErrorDetails == "" {
		return e.Message
	}
	return e.Message + ": " + e.ErrorDetails
}

// NewErrorResponse builds an ErrorResponse, copying err's text into ErrorDetails.
func NewErrorResponse(message string, err error) ErrorResponse {
	resp := ErrorResponse{
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
	if err != nil {
		resp.ErrorDetails = err.Error()
	}
	return resp
}
