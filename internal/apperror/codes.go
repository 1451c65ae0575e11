package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
	CodeInvalidInput Code = "INVALID_INPUT"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Pricing and routing error codes
const (
	// Venue-local failures. A router treats these as "skip this venue / path".
	CodeEmptyPool             Code = "EMPTY_POOL"
	CodeInvalidFee            Code = "INVALID_FEE"
	CodeInsufficientLiquidity Code = "INSUFFICIENT_LIQUIDITY"
	CodeArithmeticOverflow    Code = "ARITHMETIC_OVERFLOW"

	// Request-level failures, surfaced to the caller.
	CodeNoRouteFound   Code = "NO_ROUTE_FOUND"
	CodeInvalidRequest Code = "INVALID_REQUEST"

	// Venue snapshot / asset registry
	CodeUnknownAsset    Code = "UNKNOWN_ASSET"
	CodeInvalidVenue    Code = "INVALID_VENUE"
	CodeSnapshotMissing Code = "SNAPSHOT_MISSING"
)

// Sentinels for errors.Is comparisons. AppError.Is matches on Code only,
// so any error built with New(CodeX, ...) satisfies errors.Is(err, ErrX).
var (
	ErrEmptyPool             = &AppError{Code: CodeEmptyPool}
	ErrInvalidFee            = &AppError{Code: CodeInvalidFee}
	ErrInsufficientLiquidity = &AppError{Code: CodeInsufficientLiquidity}
	ErrArithmeticOverflow    = &AppError{Code: CodeArithmeticOverflow}
	ErrNoRouteFound          = &AppError{Code: CodeNoRouteFound}
	ErrInvalidRequest        = &AppError{Code: CodeInvalidRequest}
)
