package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/julianstephens/moonlit/internal/models"
	"github.com/julianstephens/moonlit/internal/profile"
)

const noteColumns = `id::text, date::text, content, created_at, updated_at`

func scanNote(row rowScanner) (models.Note, error) {
	var n models.Note
	if err := row.Scan(&n.ID, &n.Date, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return models.Note{}, err
	}
	n.CreatedAt = n.CreatedAt.UTC()
	n.UpdatedAt = n.UpdatedAt.UTC()
	return n, nil
}

func noteErr(op string, err error) error {
	return classify(op, err, profile.ErrNoteNotFound)
}

// AddNote stores note for uid. An empty ID is replaced with a new UUID.
func (s *Store) AddNote(ctx context.Context, uid string, note models.Note) (models.Note, error) {
	const op = "profile.AddNote"

	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	var createdAt any
	if !note.CreatedAt.IsZero() {
		createdAt = note.CreatedAt.UTC()
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO notes (id, uid, date, content, created_at)
		SELECT $1, uid, $2, $3, COALESCE($4::timestamptz, now()) FROM users WHERE uid = $5
		RETURNING `+noteColumns,
		note.ID, note.Date, note.Content, createdAt, uid)
	n, err := scanNote(row)
	if err != nil {
		return models.Note{}, classify(op, err, profile.ErrUserNotFound)
	}
	return n, nil
}

func (s *Store) UpdateNote(ctx context.Context, uid, id, content string) (models.Note, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE notes SET content = $1, updated_at = now()
		WHERE id = $2 AND uid = $3 RETURNING `+noteColumns, content, id, uid)
	n, err := scanNote(row)
	if err != nil {
		return models.Note{}, noteErr("profile.UpdateNote", err)
	}
	return n, nil
}

// DeleteNote removes a note and returns it as it was before deletion.
func (s *Store) DeleteNote(ctx context.Context, uid, id string) (models.Note, error) {
	row := s.db.QueryRowContext(ctx, `DELETE FROM notes WHERE id = $1 AND uid = $2 RETURNING `+noteColumns, id, uid)
	n, err := scanNote(row)
	if err != nil {
		return models.Note{}, noteErr("profile.DeleteNote", err)
	}
	return n, nil
}

func (s *Store) NotesForDate(ctx context.Context, uid, date string) ([]models.Note, error) {
	const op = "profile.NotesForDate"

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+noteColumns+` FROM notes
		WHERE uid = $1 AND date = $2 ORDER BY created_at, id`, uid, date)
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
		SELECT DISTINCT date::text FROM notes
		WHERE uid = $1 AND date BETWEEN $2 AND $3 ORDER BY 1`, uid, ym.First(), ym.Last())
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
