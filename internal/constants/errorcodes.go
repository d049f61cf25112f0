package constants

// Error Codes are machine-readable codes returned in API error responses.
const (
	ResponseSuccess = true
	ResponseFailure = false

	CodeBadRequest           = "bad_request"
	CodeUnauthorized         = "unauthorized"
	CodeForbidden            = "forbidden"
	CodeNotFound             = "not_found"
	CodeMethodNotAllowed     = "method_not_allowed"
	CodeConflict             = "conflict"
	CodeInternalError        = "internal_error"
	CodeValidationError      = "validation_error"
	CodeInvalidCredentials   = "invalid_credentials"
	CodeTokenExpired         = "token_expired"
	CodeTokenInvalid         = "token_invalid"
	CodeDuplicateResource    = "duplicate_resource"
	CodeAuthenticationFailed = "authentication_failed"
	CodeBanned               = "banned"
	CodeServiceUnavailable   = "service_unavailable"
	CodeRateLimited          = "rate_limited"
)

// User-facing messages.
const (
	MsgAuthRequired          = "Authentication required"
	MsgResourceNotFound      = "The requested resource could not be found"
	MsgMethodNotAllowed      = "Method not allowed"
	MsgInternalServerError   = "An internal server error occurred"
	MsgValidationFailed      = "Validation failed"
	MsgInvalidPassword       = "Invalid username or password"
	MsgAccessDenied          = "You don't have permission to access this resource"
	MsgStaffRequired         = "This action is available to staff members only"
	MsgTokenExpired          = "Authentication token has expired"
	MsgRequestBodyTooLarge   = "Request body too large"
	MsgEmptyRequestBody      = "Request body must not be empty"
	MsgMalformedJSON         = "Request body contains malformed JSON"
	MsgResourceAlreadyExists = "A resource with the same unique identifier already exists"
	MsgBanned                = "You are banned"
	MsgNotBanned             = "No matching ban"
	MsgBanDeleted            = "Ban successfully removed"
	MsgOldIPsRemoved         = "Old IP addresses removed"
	MsgRateLimited           = "Too many requests, please try again later"
)

// Database error codes.
const (
	PGErrorDuplicateConstraint  = "23505"
	PGErrorForeignKeyConstraint = "23503"
	PGErrorNotNullConstraint    = "23502"

	MySQLErrorDuplicateEntry = 1062
	MySQLErrorForeignKey     = 1452
)

// LogRedactedValue replaces secrets in logged configuration.
const LogRedactedValue = "[REDACTED]"
