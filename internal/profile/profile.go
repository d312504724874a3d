// Package profile defines the remote profile store: user profiles, credentials,
// saved days and notes, keyed by user id.
package profile

import (
	"context"
	"errors"

	"github.com/julianstephens/moonlit/internal/models"
)

var (
	// ErrUserNotFound is returned when no user matches the given uid or email.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when registering or changing to an email already in use.
	ErrEmailTaken = errors.New("email already registered")
	// ErrNoteNotFound is returned when a note id does not belong to the user.
	ErrNoteNotFound = errors.New("note not found")
)

// NewUser carries everything needed to create a profile.
type NewUser struct {
	Email        string
	PasswordHash string
	Birthdate    string
	ZodiacSign   models.ZodiacSign
}

// Store is the source of truth for profiles, favorites and notes.
type Store interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Accounts
	CreateUser(ctx context.Context, u NewUser) (models.Profile, error)
	GetProfile(ctx context.Context, uid string) (models.Profile, error)
	// Credentials returns the profile and password hash registered for email.
	Credentials(ctx context.Context, email string) (models.Profile, string, error)
	UpdateBirthdate(ctx context.Context, uid, birthdate string, sign models.ZodiacSign) (models.Profile, error)
	UpdateEmail(ctx context.Context, uid, email string) (models.Profile, error)
	UpdatePasswordHash(ctx context.Context, uid, hash string) error

	// Saved days. The toggle, save and remove operations are transactional
	// read-modify-write cycles on the user's saved days.
	SavedDays(ctx context.Context, uid string) ([]string, error)
	ToggleSavedDay(ctx context.Context, uid, date string) (bool, error)
	SetSavedDay(ctx context.Context, uid, date string, saved bool) error

	// Notes
	AddNote(ctx context.Context, uid string, note models.Note) (models.Note, error)
	UpdateNote(ctx context.Context, uid, id, content string) (models.Note, error)
	DeleteNote(ctx context.Context, uid, id string) (models.Note, error)
	NotesForDate(ctx context.Context, uid, date string) ([]models.Note, error)
	NoteDatesForMonth(ctx context.Context, uid string, ym models.YearMonth) ([]string, error)

	// Utils
	GetConfigPath() string
	SchemaVersion() (current, latest int, err error)
}
