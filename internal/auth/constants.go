package auth

const (
	ContextKeyIdentity = "identity"
	ContextKeyPathname = "pathname"

	// HeaderPathname carries the resolved admin path to downstream handlers.
	HeaderPathname = "X-Pathname"

	logKeyRequestID = "request_id"
	logKeyPath      = "path"
	logKeyClass     = "class"
	logKeyUserID    = "user_id"
	logKeyRole      = "role"
	logKeyAction    = "action"
)

const (
	msgUnauthorized        = "Unauthorized"
	msgForbidden           = "Forbidden"
	msgInternalServerError = "Internal server error"

	msgUnexpectedSigningMethod = "unexpected signing method: %v"
	msgTokenParseFailed        = "failed to parse token: %w"
	msgInvalidTokenClaims      = "invalid token claims"
	msgInvalidSubject          = "invalid subject: %w"
	msgNoSessionCookie         = "no session cookie"
	msgEmptySessionCookie      = "empty session cookie"
	msgAccountNotFound         = "account no longer exists"
	msgAccountRoleUnknown      = "account has an unknown role"
	msgResolverPanic           = "token decoding panicked: %v"
	msgAccountLookupFailed     = "account lookup failed: %w"
)

// Decision names reported to the metrics recorder.
const (
	DecisionPassThrough   = "pass_through"
	DecisionAdmitted      = "admitted"
	DecisionRedirectLogin = "redirect_login"
	DecisionRedirectHome  = "redirect_home"
	DecisionAllowed       = "allowed"
	DecisionUnauthorized  = "unauthorized"
	DecisionForbidden     = "forbidden"
	DecisionFault         = "fault"
)
