package constants

// Machine-readable error codes returned in the error envelope.
const (
	CodeValidationError    = "validation_error"
	CodeBadRequest         = "bad_request"
	CodeUnauthorized       = "unauthorized"
	CodeForbidden          = "forbidden"
	CodeNotFound           = "not_found"
	CodeDuplicateResource  = "duplicate_resource"
	CodeInvalidCredentials = "invalid_credentials"
	CodeTokenExpired       = "token_expired"
	CodeTokenInvalid       = "token_invalid"
	CodeStaleToken         = "stale_token"
	CodeResetTokenInvalid  = "reset_token_invalid"
	CodeDeliveryError      = "delivery_error"
	CodeInternalError      = "internal_error"
	CodeMethodNotAllowed   = "method_not_allowed"
)

// User-facing messages.
const (
	MsgAuthRequired        = "You are not logged in. Please login to get access."
	MsgAccessDenied        = "You don't have permission to perform this action"
	MsgStaleSession        = "Password was changed recently. Please login again."
	MsgInvalidCredentials  = "Incorrect email or password"
	MsgResourceNotFound    = "The requested resource could not be found"
	MsgInternalServerError = "An internal server error occurred"
	MsgResetTokenInvalid   = "Token is invalid or has expired"
	MsgDeliveryFailed      = "There was an error sending the email. Please try again later."
	MsgEmptyRequestBody    = "Request body must not be empty"
	MsgMalformedJSON       = "Request body contains malformed JSON"
	MsgRequestBodyTooLarge = "Request body is too large"
	MsgMethodNotAllowed    = "Method not allowed"
)
