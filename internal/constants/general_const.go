// Package constants provides shared constant values used throughout the application.
//
// The general_const.go file defines general-purpose constants related to routing
// and request parameters. These constants ensure consistent API patterns and URL
// structure throughout the application, making the API more predictable and easier
// to maintain.
package constants

// Base Routes define the root URL paths for different parts of the API.
// These constants establish the URL hierarchy for the service.
const (
	// APIBasePath is the root path prefix for all API endpoints.
	APIBasePath = "/api"

	// HealthPath is the endpoint for health checks and system status.
	HealthPath = "/health"
)

// URL Parameters define path parameter names used in route definitions.
// These constants are used when defining routes with path parameters and
// when extracting those parameters from requests.
const (
	// ParamCategory is the URL parameter for settings category identifiers.
	ParamCategory = "category"

	// ParamEntryID is the URL parameter for audit log entry identifiers.
	ParamEntryID = "entryID"
)

// Query Parameters define common query string parameter names.
// These constants ensure consistent parameter naming in query strings
// across different API endpoints.
const (
	// QueryParamPage is the query parameter for pagination page number.
	QueryParamPage = "page"

	// QueryParamPageSize is the query parameter for pagination page size.
	QueryParamPageSize = "page_size"

	// QueryParamCategory is the query parameter for filtering by settings category.
	QueryParamCategory = "category"

	// QueryParamCategories is the query parameter carrying a category selection,
	// either a comma-separated list or the "all" sentinel.
	QueryParamCategories = "categories"

	// QueryParamFormat is the query parameter selecting an export format.
	QueryParamFormat = "format"

	// QueryParamIncludeSensitive is the query parameter controlling whether
	// sensitive fields are exported in plaintext.
	QueryParamIncludeSensitive = "include_sensitive"

	// QueryParamValidateOnly is the query parameter enabling import dry-run mode.
	QueryParamValidateOnly = "validate_only"
)

// Selection Sentinels define special values accepted by selection parameters.
const (
	// SelectionAll selects every known settings category, including ones
	// added after the request was composed.
	SelectionAll = "all"
)

// Export Formats define the supported serialization formats for settings exports.
const (
	// FormatJSON exports settings as an indented JSON document.
	FormatJSON = "json"

	// FormatYAML exports settings as a YAML document.
	FormatYAML = "yaml"

	// FormatEnv exports settings as flat KEY=value lines.
	FormatEnv = "env"
)
