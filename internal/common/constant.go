package common

// Well-known keys in the secure store. The gateway reads TokenKey and
// SessionIDKey on every refresh; all three are wiped together on an
// irrecoverable auth failure.
const (
	TokenKey     = "auth_token"
	SessionIDKey = "session_id"
	UserIDKey    = "user_id"

	// CalendarCacheKey holds the last academic-calendar payload so the
	// schedule stays renderable while the backend is unreachable.
	CalendarCacheKey = "academic_calendar"
)
