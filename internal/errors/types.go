package errors

// standardized error response body
type ErrorResponse struct {
	Error   string `json:"error"`             // error code (e.g., "not_found")
	Message string `json:"message"`           // user-friendly message
	Details string `json:"details,omitempty"` // sanitized in production
}

type errorInfo struct {
	category  string
	sanitized string
}

// standard error codes
const (
	CodeNotFound             = "not_found"
	CodeValidationError      = "validation_error"
	CodeServerError          = "server_error"
	CodeBadRequest           = "bad_request"
	CodeConflict             = "conflict"
	CodeTooManyRequests      = "too_many_requests"
	CodeSessionNotFound      = "session_not_found"
	CodeActionNotFound       = "action_not_found"
	CodeUpstreamError        = "upstream_error"
	CodeUpstreamValidation   = "upstream_validation"
	CodeInvalidConfiguration = "invalid_configuration"
)

// error categories for classification
const (
	categoryNetwork    = "network"
	categoryValidation = "validation"
	categoryNotFound   = "not_found"
	categoryTimeout    = "timeout"
	categoryUpstream   = "upstream"
	categoryUnknown    = "unknown"
)
