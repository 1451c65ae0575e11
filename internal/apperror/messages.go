package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeInvalidInput: "Invalid input provided",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// System errors
	CodeInternalError: "Internal error",
	CodeUnknownError:  "An unknown error occurred",

	// Pricing
	CodeEmptyPool:             "Pool has an empty reserve",
	CodeInvalidFee:            "Fee must be below 10000 basis points",
	CodeInsufficientLiquidity: "Insufficient liquidity for trade size",
	CodeArithmeticOverflow:    "Arithmetic overflow",

	// Routing
	CodeNoRouteFound:   "No route found",
	CodeInvalidRequest: "Invalid routing request",

	// Snapshot
	CodeUnknownAsset:    "Unknown asset",
	CodeInvalidVenue:    "Invalid venue definition",
	CodeSnapshotMissing: "Venue snapshot unavailable",
}
