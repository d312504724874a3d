// Package syncer keeps favorites and notes consistent between the remote profile
// store and the local content store mirror. Every write commits remotely first;
// the mirror only changes after the profile store confirms.
package syncer

import (
	"context"

	"github.com/julianstephens/moonlit/internal/errors"
	"github.com/julianstephens/moonlit/internal/logger"
	"github.com/julianstephens/moonlit/internal/models"
	"github.com/julianstephens/moonlit/internal/profile"
	"github.com/julianstephens/moonlit/internal/storage"
	"github.com/julianstephens/moonlit/internal/validation"
)

// ErrNotSignedIn is returned when an operation needs a user id and none is set.
var ErrNotSignedIn = errors.New("not signed in")

type Synchronizer struct {
	remote profile.Store
	local  storage.ContentStore
}

func NewSynchronizer(remote profile.Store, local storage.ContentStore) *Synchronizer {
	return &Synchronizer{remote: remote, local: local}
}

func checkUser(op, uid string) error {
	if uid == "" {
		return errors.E(op, errors.KindAuth, ErrNotSignedIn)
	}
	return nil
}

// ToggleFavorite flips date in the user's saved days and reports whether it is
// saved afterwards.
func (s *Synchronizer) ToggleFavorite(ctx context.Context, uid, date string) (bool, error) {
	const op = "syncer.ToggleFavorite"
	if err := checkUser(op, uid); err != nil {
		return false, err
	}
	if err := validation.ValidateDate(date); err != nil {
		return false, err
	}

	saved, err := s.remote.ToggleSavedDay(ctx, uid, date)
	if err != nil {
		return false, errors.E(op, errors.KindOf(err), err)
	}
	s.mirrorFavorite(ctx, date, saved)
	return saved, nil
}

// SaveFavorite adds date to the saved days. Saving an already saved day is a no-op.
func (s *Synchronizer) SaveFavorite(ctx context.Context, uid, date string) error {
	return s.setFavorite(ctx, "syncer.SaveFavorite", uid, date, true)
}

// RemoveFavorite removes date from the saved days. Removing an unsaved day is a no-op.
func (s *Synchronizer) RemoveFavorite(ctx context.Context, uid, date string) error {
	return s.setFavorite(ctx, "syncer.RemoveFavorite", uid, date, false)
}

func (s *Synchronizer) setFavorite(ctx context.Context, op, uid, date string, saved bool) error {
	if err := checkUser(op, uid); err != nil {
		return err
	}
	if err := validation.ValidateDate(date); err != nil {
		return err
	}
	if err := s.remote.SetSavedDay(ctx, uid, date, saved); err != nil {
		return errors.E(op, errors.KindOf(err), err)
	}
	s.mirrorFavorite(ctx, date, saved)
	return nil
}

// The remote write already succeeded, so a mirror failure is only logged; the
// next FetchFavorites reconciles it.
func (s *Synchronizer) mirrorFavorite(ctx context.Context, date string, saved bool) {
	if err := s.local.SetFavorited(ctx, date, saved); err != nil {
		logger.Warn("failed to mirror favorite", "date", date, "saved", saved, "error", err)
	}
}

// FetchFavorites returns the user's saved days and makes the local mirror match them.
func (s *Synchronizer) FetchFavorites(ctx context.Context, uid string) ([]string, error) {
	const op = "syncer.FetchFavorites"
	if err := checkUser(op, uid); err != nil {
		return nil, err
	}

	days, err := s.remote.SavedDays(ctx, uid)
	if err != nil {
		return nil, errors.E(op, errors.KindOf(err), err)
	}
	if err := s.local.ApplyFavorites(ctx, days); err != nil {
		logger.Warn("failed to mirror favorites", "count", len(days), "error", err)
	}
	return days, nil
}

// AddNote stores a note for date and returns the date's notes as the profile
// store now has them.
func (s *Synchronizer) AddNote(ctx context.Context, uid, date, content string) ([]models.Note, error) {
	const op = "syncer.AddNote"
	if err := checkUser(op, uid); err != nil {
		return nil, err
	}
	if err := validation.ValidateDate(date); err != nil {
		return nil, err
	}
	content, err := validation.ValidateNoteContent(content)
	if err != nil {
		return nil, err
	}

	note, err := s.remote.AddNote(ctx, uid, models.Note{Date: date, Content: content})
	if err != nil {
		return nil, errors.E(op, errors.KindOf(err), err)
	}
	if err := s.local.InsertNote(ctx, note); err != nil {
		logger.Warn("failed to mirror note", "id", note.ID, "error", err)
	}
	return s.refresh(ctx, uid, date), nil
}

// UpdateNote replaces the content of note id and returns its date's notes.
func (s *Synchronizer) UpdateNote(ctx context.Context, uid, id, content string) ([]models.Note, error) {
	const op = "syncer.UpdateNote"
	if err := checkUser(op, uid); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, errors.Ef(op, errors.KindInvalidInput, "note id is required")
	}
	content, err := validation.ValidateNoteContent(content)
	if err != nil {
		return nil, err
	}

	note, err := s.remote.UpdateNote(ctx, uid, id, content)
	if err != nil {
		return nil, errors.E(op, errors.KindOf(err), err)
	}
	// Insert rather than update so a note missing from the mirror is picked up.
	if err := s.local.InsertNote(ctx, note); err != nil {
		logger.Warn("failed to mirror note", "id", note.ID, "error", err)
	}
	return s.refresh(ctx, uid, note.Date), nil
}

// DeleteNote removes note id and returns its date with the remaining notes of
// that date.
func (s *Synchronizer) DeleteNote(ctx context.Context, uid, id string) (string, []models.Note, error) {
	const op = "syncer.DeleteNote"
	if err := checkUser(op, uid); err != nil {
		return "", nil, err
	}
	if id == "" {
		return "", nil, errors.Ef(op, errors.KindInvalidInput, "note id is required")
	}

	note, err := s.remote.DeleteNote(ctx, uid, id)
	if err != nil {
		return "", nil, errors.E(op, errors.KindOf(err), err)
	}
	if err := s.local.DeleteNoteByID(ctx, id); err != nil {
		logger.Warn("failed to mirror note deletion", "id", id, "error", err)
	}
	return note.Date, s.refresh(ctx, uid, note.Date), nil
}

// FetchNotes returns the notes of date from the profile store and replaces the
// mirrored notes of that date with them.
func (s *Synchronizer) FetchNotes(ctx context.Context, uid, date string) ([]models.Note, error) {
	const op = "syncer.FetchNotes"
	if err := checkUser(op, uid); err != nil {
		return nil, err
	}
	if err := validation.ValidateDate(date); err != nil {
		return nil, err
	}

	notes, err := s.remote.NotesForDate(ctx, uid, date)
	if err != nil {
		return nil, errors.E(op, errors.KindOf(err), err)
	}
	if err := s.local.ReplaceNotesForDate(ctx, date, notes); err != nil {
		logger.Warn("failed to mirror notes", "date", date, "error", err)
	}
	return notes, nil
}

// refresh re-reads date after a confirmed write. If the re-read fails the
// mirror, which already holds the write, is served instead.
func (s *Synchronizer) refresh(ctx context.Context, uid, date string) []models.Note {
	notes, err := s.FetchNotes(ctx, uid, date)
	if err == nil {
		return notes
	}
	logger.Warn("failed to refresh notes after write", "date", date, "error", err)
	local, lerr := s.local.NotesForDate(ctx, date)
	if lerr != nil {
		logger.Warn("failed to read mirrored notes", "date", date, "error", lerr)
		return []models.Note{}
	}
	return local
}

// NoteDatesForMonth lists the dates in ym that carry at least one note.
func (s *Synchronizer) NoteDatesForMonth(ctx context.Context, uid string, ym models.YearMonth) ([]string, error) {
	const op = "syncer.NoteDatesForMonth"
	if err := checkUser(op, uid); err != nil {
		return nil, err
	}
	dates, err := s.remote.NoteDatesForMonth(ctx, uid, ym)
	if err != nil {
		return nil, errors.E(op, errors.KindOf(err), err)
	}
	return dates, nil
}

// LocalNotes serves the mirrored notes of date without contacting the profile store.
func (s *Synchronizer) LocalNotes(ctx context.Context, date string) ([]models.Note, error) {
	if err := validation.ValidateDate(date); err != nil {
		return nil, err
	}
	return s.local.NotesForDate(ctx, date)
}

// LocalNoteDatesForMonth serves the mirrored note markers of ym.
func (s *Synchronizer) LocalNoteDatesForMonth(ctx context.Context, ym models.YearMonth) ([]string, error) {
	return s.local.NoteDatesForMonth(ctx, ym)
}
