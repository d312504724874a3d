package storage

import (
	"context"
	"errors"

	"github.com/julianstephens/moonlit/internal/models"
	"github.com/julianstephens/moonlit/internal/pubsub"
)

// ContentStore persists moon-phase records and the local note mirror on this device.
type ContentStore interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Moon phases
	RecordsForMonth(ctx context.Context, ym models.YearMonth) ([]models.MoonPhase, error)
	AllRecords(ctx context.Context) ([]models.MoonPhase, error)
	GetRecord(ctx context.Context, date string) (models.MoonPhase, error)
	InsertOrReplace(ctx context.Context, records []models.MoonPhase) error

	// Favorites mirror
	SetFavorited(ctx context.Context, date string, favorited bool) error
	ApplyFavorites(ctx context.Context, dates []string) error

	// Notes mirror
	NotesForDate(ctx context.Context, date string) ([]models.Note, error)
	NoteDatesForMonth(ctx context.Context, ym models.YearMonth) ([]string, error)
	InsertNote(ctx context.Context, note models.Note) error
	UpdateNoteContent(ctx context.Context, id, content string) error
	DeleteNoteByID(ctx context.Context, id string) error
	ReplaceNotesForDate(ctx context.Context, date string, notes []models.Note) error

	// Change notifications
	Changes() *pubsub.Topic[Change]

	// Utils
	GetConfigPath() string
	SchemaVersion() (current, latest int, err error)
}

// ChangeKind names the table a change touched.
type ChangeKind string

const (
	ChangePhases    ChangeKind = "phases"
	ChangeFavorites ChangeKind = "favorites"
	ChangeNotes     ChangeKind = "notes"
)

// Change describes a write to the content store. Seq increases with every write
// so subscribers can tell consecutive changes to the same date apart.
type Change struct {
	Seq   uint64
	Kind  ChangeKind
	Month models.YearMonth
	Dates []string
}

// Touches reports whether the change affected any date in ym.
func (c Change) Touches(ym models.YearMonth) bool {
	if c.Month == ym {
		return true
	}
	for _, d := range c.Dates {
		if ym.Contains(d) {
			return true
		}
	}
	return false
}

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")
