package dto

import "net/http"

// Transport error codes, ERR_<CATEGORY>_<DESCRIPTION>. Handlers respond
// with these; clients are expected to branch on them rather than on the
// human-readable message.
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"

	ErrCodeValidation         = "ERR_VALIDATION"
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	ErrCodeValidationFormat   = "ERR_VALIDATION_FORMAT"

	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"

	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	ErrCodeConflict      = "ERR_CONFLICT"

	ErrCodeInvalidState = "ERR_INVALID_STATE"
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"

	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"

	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// GetHTTPStatus maps a transport error code to its HTTP status. Unknown
// codes come back as 500 so a missing table entry never leaks a 200.
func GetHTTPStatus(code string) int {
	switch code {
	case ErrCodeValidation, ErrCodeValidationRequired, ErrCodeValidationFormat,
		ErrCodeBadRequest, ErrCodeInvalidInput, ErrCodeInvalidJSON:
		return http.StatusBadRequest
	case ErrCodeUnauthorized, ErrCodeTokenExpired, ErrCodeTokenInvalid:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeAlreadyExists, ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeInvalidState, ErrCodeBusinessRule:
		return http.StatusUnprocessableEntity
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// domainToTransport translates the intent-revealing codes raised by domain
// packages into transport codes. The HTTP semantics of a domain failure are
// decided once, here at the boundary.
var domainToTransport = map[string]string{
	"NOT_FOUND":      ErrCodeNotFound,
	"ALREADY_EXISTS": ErrCodeAlreadyExists,
	"UNAUTHORIZED":   ErrCodeUnauthorized,
	"FORBIDDEN":      ErrCodeForbidden,
	"BAD_REQUEST":    ErrCodeBadRequest,
	"INVALID_INPUT":  ErrCodeInvalidInput,

	// Guarded deletes: the target still has dependents
	"STILL_REFERENCED": ErrCodeConflict,

	// Field-level domain validation
	"INVALID_NAME":        ErrCodeValidation,
	"INVALID_SHORT_NAME":  ErrCodeValidation,
	"INVALID_COURSE_CODE": ErrCodeValidation,
	"INVALID_FILE_NAME":   ErrCodeValidation,
	"INVALID_URL":         ErrCodeValidation,
	"INVALID_EMAIL":       ErrCodeValidation,
	"INVALID_GOOGLE_ID":   ErrCodeValidation,
	"INVALID_CREATOR":     ErrCodeValidation,
	"INVALID_SELECTOR":    ErrCodeValidation,

	// Bad references in requests
	"INVALID_BRANCH":  ErrCodeInvalidInput,
	"INVALID_SUBJECT": ErrCodeInvalidInput,
	"INVALID_FILE":    ErrCodeInvalidInput,

	// Upload flow
	"DISALLOWED_CONTENT_TYPE": ErrCodeValidation,
	"UPLOAD_NOT_FOUND":        ErrCodeInvalidState,
	"INVALID_STATE":           ErrCodeInvalidState,
	"STORAGE_UNAVAILABLE":     ErrCodeInternal,
	"STORAGE_CHECK_FAILED":    ErrCodeInternal,
	"UPLOAD_URL_FAILED":       ErrCodeInternal,

	// OAuth sign-in
	"OAUTH_EXCHANGE_FAILED": ErrCodeUnauthorized,
	"DOMAIN_NOT_ALLOWED":    ErrCodeForbidden,

	// Token lifecycle
	"TOKEN_EXPIRED": ErrCodeTokenExpired,
	"TOKEN_REVOKED": ErrCodeTokenInvalid,
	"INVALID_TOKEN": ErrCodeTokenInvalid,

	"RATE_LIMITED": ErrCodeRateLimited,
}

// NormalizeErrorCode converts a domain error code to a transport code.
// Codes with no mapping pass through unchanged.
func NormalizeErrorCode(code string) string {
	if transport, ok := domainToTransport[code]; ok {
		return transport
	}
	return code
}
