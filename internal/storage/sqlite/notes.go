package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/julianstephens/moonlit/internal/errors"
	"github.com/julianstephens/moonlit/internal/models"
	"github.com/julianstephens/moonlit/internal/storage"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// NotesForDate returns the mirrored notes of date, oldest first.
func (s *Store) NotesForDate(ctx context.Context, date string) ([]models.Note, error) {
	const op = "storage.NotesForDate"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, content, created_at, updated_at
		FROM notes WHERE date = ? ORDER BY created_at, id`, date)
	if err != nil {
		return nil, errors.E(op, errors.KindStorage, err)
	}
	defer rows.Close()

	var notes []models.Note
	for rows.Next() {
		var n models.Note
		var createdAt, updatedAt string
		if err := rows.Scan(&n.ID, &n.Date, &n.Content, &createdAt, &updatedAt); err != nil {
			return nil, errors.E(op, errors.KindStorage, err)
		}
		n.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		n.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.E(op, errors.KindStorage, err)
	}
	return notes, nil
}

// NoteDatesForMonth returns the distinct dates in ym that have mirrored notes.
func (s *Store) NoteDatesForMonth(ctx context.Context, ym models.YearMonth) ([]string, error) {
	const op = "storage.NoteDatesForMonth"

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT date FROM notes WHERE date BETWEEN ? AND ? ORDER BY date`,
		ym.First(), ym.Last())
	if err != nil {
		return nil, errors.E(op, errors.KindStorage, err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, errors.E(op, errors.KindStorage, err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.E(op, errors.KindStorage, err)
	}
	return dates, nil
}

// InsertNote mirrors a note confirmed by the profile store. Re-inserting an
// existing id overwrites it.
func (s *Store) InsertNote(ctx context.Context, note models.Note) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO notes (id, date, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		note.ID, note.Date, note.Content,
		note.CreatedAt.UTC().Format(timeLayout), note.UpdatedAt.UTC().Format(timeLayout))
	if err != nil {
		return errors.E("storage.InsertNote", errors.KindStorage, err)
	}
	s.publish(storage.ChangeNotes, monthOf(note.Date), note.Date)
	return nil
}

// UpdateNoteContent replaces the content of the note with the given id.
func (s *Store) UpdateNoteContent(ctx context.Context, id, content string) error {
	const op = "storage.UpdateNoteContent"

	date, err := s.noteDate(ctx, id)
	if err != nil {
		return errors.E(op, errors.KindStorage, err)
	}
	if date == "" {
		return errors.E(op, errors.KindNotFound, storage.ErrNotFound)
	}

	if _, err := s.db.ExecContext(ctx, `UPDATE notes SET content = ?, updated_at = ? WHERE id = ?`,
		content, time.Now().UTC().Format(timeLayout), id); err != nil {
		return errors.E(op, errors.KindStorage, err)
	}
	s.publish(storage.ChangeNotes, monthOf(date), date)
	return nil
}

// DeleteNoteByID removes a mirrored note. Deleting an unknown id is a no-op.
func (s *Store) DeleteNoteByID(ctx context.Context, id string) error {
	const op = "storage.DeleteNoteByID"

	date, err := s.noteDate(ctx, id)
	if err != nil {
		return errors.E(op, errors.KindStorage, err)
	}
	if date == "" {
		return nil
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id); err != nil {
		return errors.E(op, errors.KindStorage, err)
	}
	s.publish(storage.ChangeNotes, monthOf(date), date)
	return nil
}

// ReplaceNotesForDate makes the mirror of date hold exactly notes.
func (s *Store) ReplaceNotesForDate(ctx context.Context, date string, notes []models.Note) error {
	const op = "storage.ReplaceNotesForDate"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.E(op, errors.KindStorage, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE date = ?`, date); err != nil {
		return errors.E(op, errors.KindStorage, err)
	}
	for _, n := range notes {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO notes (id, date, content, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)`,
			n.ID, date, n.Content,
			n.CreatedAt.UTC().Format(timeLayout), n.UpdatedAt.UTC().Format(timeLayout)); err != nil {
			return errors.E(op, errors.KindStorage, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.E(op, errors.KindStorage, err)
	}

	s.publish(storage.ChangeNotes, monthOf(date), date)
	return nil
}

func (s *Store) noteDate(ctx context.Context, id string) (string, error) {
	var date string
	err := s.db.QueryRowContext(ctx, `SELECT date FROM notes WHERE id = ?`, id).Scan(&date)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}
	return date, nil
}
