package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/moonlit/internal/errors"
	"github.com/julianstephens/moonlit/internal/models"
	"github.com/julianstephens/moonlit/internal/profile"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const profileColumns = `uid, email, birthdate, zodiac_sign, saved_days, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner, extra ...any) (models.Profile, error) {
	var p models.Profile
	var sign, savedDays, createdAt, updatedAt string
	dest := append([]any{&p.UID, &p.Email, &p.Birthdate, &sign, &savedDays, &createdAt, &updatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return models.Profile{}, err
	}
	p.ZodiacSign = models.ZodiacSign(sign)
	if err := json.Unmarshal([]byte(savedDays), &p.SavedDays); err != nil {
		return models.Profile{}, err
	}
	p.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	p.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)
	return p, nil
}

func now() string {
	return time.Now().UTC().Format(timeLayout)
}

func storageErr(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return errors.E(op, errors.KindNotFound, profile.ErrUserNotFound)
	}
	return errors.E(op, errors.KindStorage, err)
}

func (s *Store) CreateUser(ctx context.Context, u profile.NewUser) (models.Profile, error) {
	const op = "profile.CreateUser"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Profile{}, storageErr(op, err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM users WHERE email = ? COLLATE NOCASE`, u.Email).Scan(&exists); err != nil {
		return models.Profile{}, storageErr(op, err)
	}
	if exists > 0 {
		return models.Profile{}, errors.E(op, errors.KindConflict, profile.ErrEmailTaken)
	}

	ts := now()
	uid := uuid.NewString()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO users (uid, email, password_hash, birthdate, zodiac_sign, saved_days, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, '[]', ?, ?)`,
		uid, u.Email, u.PasswordHash, u.Birthdate, string(u.ZodiacSign), ts, ts); err != nil {
		return models.Profile{}, storageErr(op, err)
	}
	if err := tx.Commit(); err != nil {
		return models.Profile{}, storageErr(op, err)
	}
	return s.GetProfile(ctx, uid)
}

func (s *Store) GetProfile(ctx context.Context, uid string) (models.Profile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM users WHERE uid = ?`, uid)
	p, err := scanProfile(row)
	if err != nil {
		return models.Profile{}, storageErr("profile.GetProfile", err)
	}
	return p, nil
}

func (s *Store) Credentials(ctx context.Context, email string) (models.Profile, string, error) {
	var hash string
	row := s.db.QueryRowContext(ctx, `SELECT `+profileColumns+`, password_hash FROM users WHERE email = ? COLLATE NOCASE`, strings.TrimSpace(email))
	p, err := scanProfile(row, &hash)
	if err != nil {
		return models.Profile{}, "", storageErr("profile.Credentials", err)
	}
	return p, hash, nil
}

func (s *Store) UpdateBirthdate(ctx context.Context, uid, birthdate string, sign models.ZodiacSign) (models.Profile, error) {
	const op = "profile.UpdateBirthdate"
	if err := s.execOne(ctx, op, `UPDATE users SET birthdate = ?, zodiac_sign = ?, updated_at = ? WHERE uid = ?`,
		birthdate, string(sign), now(), uid); err != nil {
		return models.Profile{}, err
	}
	return s.GetProfile(ctx, uid)
}

func (s *Store) UpdateEmail(ctx context.Context, uid, email string) (models.Profile, error) {
	const op = "profile.UpdateEmail"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Profile{}, storageErr(op, err)
	}
	defer func() { _ = tx.Rollback() }()

	var taken int
	if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM users WHERE email = ? COLLATE NOCASE AND uid <> ?`, email, uid).Scan(&taken); err != nil {
		return models.Profile{}, storageErr(op, err)
	}
	if taken > 0 {
		return models.Profile{}, errors.E(op, errors.KindConflict, profile.ErrEmailTaken)
	}

	res, err := tx.ExecContext(ctx, `UPDATE users SET email = ?, updated_at = ? WHERE uid = ?`, email, now(), uid)
	if err != nil {
		return models.Profile{}, storageErr(op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Profile{}, errors.E(op, errors.KindNotFound, profile.ErrUserNotFound)
	}
	if err := tx.Commit(); err != nil {
		return models.Profile{}, storageErr(op, err)
	}
	return s.GetProfile(ctx, uid)
}

func (s *Store) UpdatePasswordHash(ctx context.Context, uid, hash string) error {
	return s.execOne(ctx, "profile.UpdatePasswordHash",
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE uid = ?`, hash, now(), uid)
}

// execOne runs a single-row update and reports a missing user as not found.
func (s *Store) execOne(ctx context.Context, op, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return storageErr(op, err)
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

// modifySavedDays reads, changes and writes saved_days inside one immediate
// transaction.
func (s *Store) modifySavedDays(ctx context.Context, op, uid string, fn func([]string) []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr(op, err)
	}
	defer func() { _ = tx.Rollback() }()

	var raw string
	if err := tx.QueryRowContext(ctx, `SELECT saved_days FROM users WHERE uid = ?`, uid).Scan(&raw); err != nil {
		return storageErr(op, err)
	}
	var days []string
	if err := json.Unmarshal([]byte(raw), &days); err != nil {
		return errors.E(op, errors.KindStorage, err)
	}

	updated, err := json.Marshal(nonNil(fn(days)))
	if err != nil {
		return errors.E(op, errors.KindStorage, err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE users SET saved_days = ?, updated_at = ? WHERE uid = ?`, string(updated), now(), uid); err != nil {
		return storageErr(op, err)
	}
	if err := tx.Commit(); err != nil {
		return storageErr(op, err)
	}
	return nil
}

func nonNil(days []string) []string {
	if days == nil {
		return []string{}
	}
	return days
}
