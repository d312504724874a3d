package constants

import "time"

const (
	AppName            = "moonlit"
	DefaultKeyringUser = "database-connection"
	SessionKeyringUser = "session-token"
	SessionKeyUser     = "session-key"
	DefaultConfigDir   = "~/.config/moonlit"
	ContentDBName      = "moonlit.db"
	ProfileDBName      = "profile.db"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// YearMonthFormat identifies a calendar month (YYYY-MM)
	YearMonthFormat = "2006-01"

	// Remote API defaults
	DefaultMoonAPIURL      = "https://api.farmsense.net/v1"
	DefaultHoroscopeAPIURL = "https://horoscope-app-api.vercel.app/api/v1"
	DefaultHTTPTimeout     = 10 * time.Second
	DefaultRatePerSecond   = 5.0
	DefaultRateBurst       = 5
	DefaultBreakerFailures = 5
	DefaultBreakerTimeout  = 30 * time.Second
	DefaultSessionTTL      = 30 * 24 * time.Hour

	// Fetch policies
	FetchPolicyFailFast   = "fail-fast"
	FetchPolicyBestEffort = "best-effort"

	// Month completeness policies
	CompletenessAny  = "any"
	CompletenessFull = "full"

	// Profile store backends
	ProfileStoreSQLite   = "sqlite"
	ProfileStorePostgres = "postgres"

	// MinPasswordLength applies to registration and password changes
	MinPasswordLength = 8

	// MaxNoteLength bounds a single note's content
	MaxNoteLength = 4000

	// AdviceUnavailable is shown whenever a horoscope fetch fails
	AdviceUnavailable = "advice unavailable"
)
