package constants

// Legacy Store Error Codes
// These constants define specific error scenarios for the legacy document store

// Connectivity errors
const (
	ErrCodeNetworkError         = "NETWORK_ERROR"
	ErrCodeTimeout              = "TIMEOUT"
	ErrCodeAuthenticationFailed = "AUTHENTICATION_FAILED"
)

// Document errors
const (
	ErrCodeDocumentNotFound = "DOCUMENT_NOT_FOUND"
	ErrCodeDecodeFailed     = "DECODE_FAILED"
	ErrCodeWriteFailed      = "WRITE_FAILED"
)

// Data validation errors
const (
	ErrCodeMissingExternalID = "MISSING_EXTERNAL_ID"
	ErrCodeInvalidPartition  = "INVALID_PARTITION"
)

// Error Messages
// Human-readable messages corresponding to error codes

var DataProviderErrorMessages = map[string]string{
	ErrCodeNetworkError:         "Unable to reach the legacy document store",
	ErrCodeTimeout:              "The legacy document store did not answer before the deadline",
	ErrCodeAuthenticationFailed: "Authentication with the legacy document store failed",

	ErrCodeDocumentNotFound: "The reservation document was not found in the legacy store",
	ErrCodeDecodeFailed:     "The reservation document could not be decoded",
	ErrCodeWriteFailed:      "The reservation document could not be written",

	ErrCodeMissingExternalID: "The reservation has no client id",
	ErrCodeInvalidPartition:  "The city/brand partition is not configured",
}

// GetErrorMessage returns the human-readable message for an error code
func GetErrorMessage(code string) string {
	if msg, exists := DataProviderErrorMessages[code]; exists {
		return msg
	}
	return "An unknown error occurred"
}
