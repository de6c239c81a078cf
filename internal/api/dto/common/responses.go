package common

// APIResponse is the standard wrapper for error responses
type APIResponse struct {
	Success bool           `json:"success"`
	Error   *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse is a standardized error response structure
type ErrorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// MessageResponse is a standardized message response structure
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// StatusResponse is returned by the liveness endpoints
type StatusResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version,omitempty"`
	Captcha string `json:"captcha,omitempty"`
}

// Define type for error codes to enforce consistency
type ErrorCode string

// Standard error codes
const (
	ErrCodeValidation      ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrCodeInternalServer  ErrorCode = "INTERNAL_SERVER_ERROR"
	ErrCodePayloadTooLarge ErrorCode = "PAYLOAD_TOO_LARGE"
)

// Submission error codes
const (
	ErrCodeOriginForbidden  ErrorCode = "ORIGIN_FORBIDDEN"
	ErrCodeCaptchaRequired  ErrorCode = "CAPTCHA_REQUIRED"
	ErrCodeCaptchaFailed    ErrorCode = "CAPTCHA_FAILED"
	ErrCodeFormNotFound     ErrorCode = "FORM_NOT_FOUND"
	ErrCodeMissingField     ErrorCode = "MISSING_FIELD"
	ErrCodeSubmissionFailed ErrorCode = "SUBMISSION_FAILED"
)

// NewMessageResponse creates a new success response with a simple message
func NewMessageResponse(message string) MessageResponse {
	return MessageResponse{
		Success: true,
		Message: message,
	}
}

// NewErrorResponse creates a new error API response
func NewErrorResponse(code ErrorCode, message string, details interface{}) APIResponse {
	return APIResponse{
		Success: false,
		Error: &ErrorResponse{
			Code:    string(code),
			Message: message,
			Details: details,
		},
	}
}
