package constants

// Context keys shared between middleware and handlers
const (
	ContextKeyRequestID = "RequestID"

	// ContextKeySubmit holds the bound *submit.SubmitRequest
	ContextKeySubmit = "submit"
)
