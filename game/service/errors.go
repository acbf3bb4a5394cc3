package service

// Wire-visible error reasons.
const (
	ReasonActiveConnection = "Active connection"
	ReasonSignUpFailed     = "Sign up failed"
	ReasonLoginFailed      = "Login failed"
	ReasonConnectionHijack = "Connection hijack"
	ReasonMultipleRequests = "Multiple requests"
	ReasonNotParticipant   = "Not a game participant"
)

// AuthError is an authentication failure, answered with UNAUTHENTICATED.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string { return e.Reason }

// PermissionError is an authorization failure, answered with
// UNAUTHORIZED.
type PermissionError struct {
	Reason string
}

func (e *PermissionError) Error() string { return e.Reason }

// SessionExpiredError reports that the referenced session has no live
// and no adoptable instance, answered with SESSION_EXPIRED.
type SessionExpiredError struct {
	SessionID string
}

func (e *SessionExpiredError) Error() string { return "session expired: " + e.SessionID }

// MatchExpiredError reports that the referenced match no longer exists,
// answered with GAME_EXPIRED.
type MatchExpiredError struct {
	GameID string
}

func (e *MatchExpiredError) Error() string { return "game expired: " + e.GameID }
