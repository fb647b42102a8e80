package apierror

// Error type URIs follow the urn:moodtrack:error:* pattern and populate the
// "type" member of RFC 9457 Problem Details.
const (
	// TypeBadRequest indicates a malformed or invalid request (400)
	TypeBadRequest = "urn:moodtrack:error:bad_request"

	// TypeUnauthorized indicates missing or invalid authentication (401)
	TypeUnauthorized = "urn:moodtrack:error:unauthorized"

	// TypePremiumRequired indicates the feature needs a premium subscription (403)
	TypePremiumRequired = "urn:moodtrack:error:premium_required"

	// TypeNotFound indicates the requested resource was not found (404)
	TypeNotFound = "urn:moodtrack:error:not_found"

	// TypeRateLimit indicates too many requests (429)
	TypeRateLimit = "urn:moodtrack:error:rate_limit"

	// TypeInternal indicates an unexpected server error (500)
	TypeInternal = "urn:moodtrack:error:internal"

	// TypeUpstreamUnavailable indicates the event store could not be reached (503)
	TypeUpstreamUnavailable = "urn:moodtrack:error:upstream_unavailable"
)

const (
	TitleBadRequest          = "Bad Request"
	TitleUnauthorized        = "Authentication Required"
	TitlePremiumRequired     = "Premium Subscription Required"
	TitleNotFound            = "Resource Not Found"
	TitleRateLimit           = "Rate Limit Exceeded"
	TitleInternal            = "Internal Server Error"
	TitleUpstreamUnavailable = "Service Unavailable"
)
