package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/moonlit/internal/errors"
	"github.com/julianstephens/moonlit/internal/models"
	"github.com/julianstephens/moonlit/internal/profile"
)

const noteColumns = `id, date, content, created_at, updated_at`

func scanNote(row rowScanner) (models.Note, error) {
	var n models.Note
	var createdAt, updatedAt string
	if err := row.Scan(&n.ID, &n.Date, &n.Content, &createdAt, &updatedAt); err != nil {
		return models.Note{}, err
	}
	n.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	n.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)
	return n, nil
}

func noteErr(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return errors.E(op, errors.KindNotFound, profile.ErrNoteNotFound)
	}
	return errors.E(op, errors.KindStorage, err)
}

// AddNote stores note for uid. An empty ID is replaced with a new UUID.
func (s *Store) AddNote(ctx context.Context, uid string, note models.Note) (models.Note, error) {
	const op = "profile.AddNote"

	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	ts := time.Now().UTC()
	if note.CreatedAt.IsZero() {
		note.CreatedAt = ts
	}
	note.UpdatedAt = ts

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO notes (id, uid, date, content, created_at, updated_at)
		SELECT ?, uid, ?, ?, ?, ? FROM users WHERE uid = ?`,
		note.ID, note.Date, note.Content,
		note.CreatedAt.UTC().Format(timeLayout), note.UpdatedAt.Format(timeLayout), uid)
	if err != nil {
		return models.Note{}, noteErr(op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Note{}, errors.E(op, errors.KindNotFound, profile.ErrUserNotFound)
	}
	return s.getNote(ctx, op, uid, note.ID)
}

func (s *Store) UpdateNote(ctx context.Context, uid, id, content string) (models.Note, error) {
	const op = "profile.UpdateNote"

	res, err := s.db.ExecContext(ctx, `UPDATE notes SET content = ?, updated_at = ? WHERE id = ? AND uid = ?`,
		content, now(), id, uid)
	if err != nil {
		return models.Note{}, noteErr(op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Note{}, errors.E(op, errors.KindNotFound, profile.ErrNoteNotFound)
	}
	return s.getNote(ctx, op, uid, id)
}

// DeleteNote removes a note and returns it as it was before deletion.
func (s *Store) DeleteNote(ctx context.Context, uid, id string) (models.Note, error) {
	const op = "profile.DeleteNote"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Note{}, noteErr(op, err)
	}
	defer func() { _ = tx.Rollback() }()

	note, err := scanNote(tx.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = ? AND uid = ?`, id, uid))
	if err != nil {
		return models.Note{}, noteErr(op, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE id = ? AND uid = ?`, id, uid); err != nil {
		return models.Note{}, noteErr(op, err)
	}
	if err := tx.Commit(); err != nil {
		return models.Note{}, noteErr(op, err)
	}
	return note, nil
}

func (s *Store) getNote(ctx context.Context, op, uid, id string) (models.Note, error) {
	n, err := scanNote(s.db.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = ? AND uid = ?`, id, uid))
	if err != nil {
		return models.Note{}, noteErr(op, err)
	}
	return n, nil
}

func (s *Store) NotesForDate(ctx context.Context, uid, date string) ([]models.Note, error) {
	const op = "profile.NotesForDate"

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+noteColumns+` FROM notes
		WHERE uid = ? AND date = ? ORDER BY created_at, id`, uid, date)
	if err != nil {
		return nil, noteErr(op, err)
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, noteErr(op, err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, noteErr(op, err)
	}
	return notes, nil
}

func (s *Store) NoteDatesForMonth(ctx context.Context, uid string, ym models.YearMonth) ([]string, error) {
	const op = "profile.NoteDatesForMonth"

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT date FROM notes
		WHERE uid = ? AND date BETWEEN ? AND ? ORDER BY date`, uid, ym.First(), ym.Last())
	if err != nil {
		return nil, noteErr(op, err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, noteErr(op, err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, noteErr(op, err)
	}
	return dates, nil
}
