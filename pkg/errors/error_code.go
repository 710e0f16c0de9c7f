package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidType          ErrorCode = 107
	ErrCodeInvalidPeriod        ErrorCode = 108
	ErrCodeMissingParameter     ErrorCode = 109
	ErrCodeInvalidVersion       ErrorCode = 110

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeNoDataFound           ErrorCode = 204

	// Ledger errors (300-399)
	ErrCodeLedgerSchema     ErrorCode = 300
	ErrCodeMissingColumn    ErrorCode = 301
	ErrCodeInvalidTimestamp ErrorCode = 302
	ErrCodeDuplicateRow     ErrorCode = 303
	ErrCodeMissingSeed      ErrorCode = 304

	// Metric errors (400-499)
	ErrCodeMetricNotFound    ErrorCode = 400
	ErrCodeMetricCalculation ErrorCode = 401

	// Cache errors (500-599)
	ErrCodeCacheUnavailable   ErrorCode = 500
	ErrCodeCacheWriteFailed   ErrorCode = 501
	ErrCodeCacheSchemaVersion ErrorCode = 502

	// Report errors (600-699)
	ErrCodeReportWriteFailed ErrorCode = 600
)
