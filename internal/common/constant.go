package common

const (
	// APIBasePath prefixes every REST route.
	APIBasePath = "/api/v1"

	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "

	// ExportVersion is stamped into user data exports.
	ExportVersion = "2.0"
)
