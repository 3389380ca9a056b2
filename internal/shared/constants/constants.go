package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// Default pagination
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// HTTP Headers
	HeaderContentType    = "Content-Type"
	HeaderAuthorization  = "Authorization"
	HeaderXRequestID     = "X-Request-ID"
	HeaderXForwardedFor  = "X-Forwarded-For"
	HeaderUserAgent      = "User-Agent"
	HeaderXClientToken   = "X-Client-Token"
	HeaderChecksumSHA256 = "X-Checksum-SHA256"

	// Content Types
	ContentTypeJSON        = "application/json"
	ContentTypeOctetStream = "application/octet-stream"

	// Context keys
	ContextKeyClientID   = "client_id"
	ContextKeyClientSID  = "client_sid"
	ContextKeyClientName = "client_name"
	ContextKeyRequestID  = "request_id"

	// Database table names
	TableClients    = "clients"
	TableVersions   = "versions"
	TableUpdateLogs = "update_logs"

	// Error messages
	ErrMsgInternalServerError = "Internal server error occurred"
	ErrMsgResourceNotFound    = "Resource not found"
	ErrMsgUnauthorized        = "Unauthorized access"
	ErrMsgValidationFailed    = "Validation failed"
	ErrMsgConflict            = "Resource already exists"
)
