package constants

// SessionState represents the current view of the TUI application
type SessionState int

const (
	StateCalendar SessionState = iota
	StateDay
	StateAdvice
	StateFavorites
	StateNoteForm
	StateLogin
	StateRegister
	StateConfirmDelete
)
