package handler

const (
	jsonKeyError   = "error"
	jsonKeyMessage = "message"
	jsonKeyFields  = "fields"

	paramID = "id"

	logKeyRequestID = "request_id"
	logKeyUserID    = "user_id"
)

const (
	msgContentTypeJSONRequired = "Content-Type must be application/json"
	msgInvalidRequestBody      = "invalid request body"
	msgInvalidCredentials      = "invalid email or password"
	msgIssueSessionFail        = "failed to start session"
	msgLoggedOut               = "logged out"
	msgUnauthorized            = "Unauthorized"
	msgInvalidUserID           = "invalid user id"
	msgCannotChangeOwnRole     = "you cannot change your own role"
	msgListUsersFail           = "failed to list users"
	msgUpdateRoleFail          = "failed to update role"
	msgLoginPage               = "sign in to continue"
)
