package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	pq "github.com/lib/pq"

	"github.com/julianstephens/moonlit/internal/errors"
	"github.com/julianstephens/moonlit/internal/models"
	"github.com/julianstephens/moonlit/internal/profile"
)

const profileColumns = `uid::text, email, birthdate::text, zodiac_sign, saved_days::text, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner, extra ...any) (models.Profile, error) {
	var p models.Profile
	var sign, savedDays string
	dest := append([]any{&p.UID, &p.Email, &p.Birthdate, &sign, &savedDays, &p.CreatedAt, &p.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return models.Profile{}, err
	}
	p.ZodiacSign = models.ZodiacSign(sign)
	if err := json.Unmarshal([]byte(savedDays), &p.SavedDays); err != nil {
		return models.Profile{}, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

// classify maps driver errors onto error kinds. missing is returned for
// absent rows and malformed ids.
func classify(op string, err error, missing error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return errors.E(op, errors.KindNotFound, missing)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			return errors.E(op, errors.KindConflict, profile.ErrEmailTaken)
		case "22P02", "22007", "22008": // invalid uuid or date text
			return errors.E(op, errors.KindNotFound, missing)
		}
	}
	return errors.E(op, errors.KindTransient, err)
}

func userErr(op string, err error) error {
	return classify(op, err, profile.ErrUserNotFound)
}

func (s *Store) CreateUser(ctx context.Context, u profile.NewUser) (models.Profile, error) {
	const op = "profile.CreateUser"

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (uid, email, password_hash, birthdate, zodiac_sign)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+profileColumns,
		uuid.NewString(), strings.TrimSpace(u.Email), u.PasswordHash, u.Birthdate, string(u.ZodiacSign))
	p, err := scanProfile(row)
	if err != nil {
		return models.Profile{}, userErr(op, err)
	}
	return p, nil
}

func (s *Store) GetProfile(ctx context.Context, uid string) (models.Profile, error) {
	p, err := scanProfile(s.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM users WHERE uid = $1`, uid))
	if err != nil {
		return models.Profile{}, userErr("profile.GetProfile", err)
	}
	return p, nil
}

func (s *Store) Credentials(ctx context.Context, email string) (models.Profile, string, error) {
	var hash string
	row := s.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+`, password_hash FROM users WHERE lower(email) = lower($1)`,
		strings.TrimSpace(email))
	p, err := scanProfile(row, &hash)
	if err != nil {
		return models.Profile{}, "", userErr("profile.Credentials", err)
	}
	return p, hash, nil
}

func (s *Store) UpdateBirthdate(ctx context.Context, uid, birthdate string, sign models.ZodiacSign) (models.Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE users SET birthdate = $1, zodiac_sign = $2, updated_at = now()
		WHERE uid = $3 RETURNING `+profileColumns, birthdate, string(sign), uid)
	p, err := scanProfile(row)
	if err != nil {
		return models.Profile{}, userErr("profile.UpdateBirthdate", err)
	}
	return p, nil
}

func (s *Store) UpdateEmail(ctx context.Context, uid, email string) (models.Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE users SET email = $1, updated_at = now()
		WHERE uid = $2 RETURNING `+profileColumns, strings.TrimSpace(email), uid)
	p, err := scanProfile(row)
	if err != nil {
		return models.Profile{}, userErr("profile.UpdateEmail", err)
	}
	return p, nil
}

func (s *Store) UpdatePasswordHash(ctx context.Context, uid, hash string) error {
	const op = "profile.UpdatePasswordHash"
	res, err := s.db.ExecContext(ctx, `UPDATE users SET password_hash = $1, updated_at = now() WHERE uid = $2`, hash, uid)
	if err != nil {
		return userErr(op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.E(op, errors.KindNotFound, profile.ErrUserNotFound)
	}
	return nil
}

func (s *Store) SavedDays(ctx context.Context, uid string) ([]string, error) {
	p, err := s.GetProfile(ctx, uid)
	if err != nil {
		return nil, err
	}
	return p.SavedDays, nil
}

func (s *Store) ToggleSavedDay(ctx context.Context, uid, date string) (bool, error) {
	var saved bool
	err := s.modifySavedDays(ctx, "profile.ToggleSavedDay", uid, func(days []string) []string {
		days, saved = models.ToggleDay(days, date)
		return days
	})
	return saved, err
}

func (s *Store) SetSavedDay(ctx context.Context, uid, date string, saved bool) error {
	return s.modifySavedDays(ctx, "profile.SetSavedDay", uid, func(days []string) []string {
		if (models.Profile{SavedDays: days}).HasSavedDay(date) == saved {
			return days
		}
		days, _ = models.ToggleDay(days, date)
		return days
	})
}

// modifySavedDays locks the user's row, applies fn to the saved days and
// writes the result back in the same transaction.
func (s *Store) modifySavedDays(ctx context.Context, op, uid string, fn func([]string) []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return userErr(op, err)
	}
	defer func() { _ = tx.Rollback() }()

	var raw string
	if err := tx.QueryRowContext(ctx, `SELECT saved_days::text FROM users WHERE uid = $1 FOR UPDATE`, uid).Scan(&raw); err != nil {
		return userErr(op, err)
	}
	var days []string
	if err := json.Unmarshal([]byte(raw), &days); err != nil {
		return errors.E(op, errors.KindStorage, err)
	}

	days = fn(days)
	if days == nil {
		days = []string{}
	}
	updated, err := json.Marshal(days)
	if err != nil {
		return errors.E(op, errors.KindStorage, err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE users SET saved_days = $1::jsonb, updated_at = now() WHERE uid = $2`, string(updated), uid); err != nil {
		return userErr(op, err)
	}
	if err := tx.Commit(); err != nil {
		return userErr(op, err)
	}
	return nil
}
