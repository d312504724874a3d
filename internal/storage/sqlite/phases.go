package sqlite

import (
	"context"
	"database/sql"

	"github.com/julianstephens/moonlit/internal/errors"
	"github.com/julianstephens/moonlit/internal/models"
	"github.com/julianstephens/moonlit/internal/storage"
)

const phaseColumns = `date, phase, illumination, is_favorited, zodiac_sign, advice, mood`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPhase(row rowScanner) (models.MoonPhase, error) {
	var p models.MoonPhase
	var zodiac, advice, mood sql.NullString
	if err := row.Scan(&p.Date, &p.Phase, &p.Illumination, &p.IsFavorited, &zodiac, &advice, &mood); err != nil {
		return models.MoonPhase{}, err
	}
	p.ZodiacSign = nullableString(zodiac)
	p.Advice = nullableString(advice)
	p.Mood = nullableString(mood)
	return p, nil
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func toNull(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func (s *Store) queryPhases(ctx context.Context, op, query string, args ...any) ([]models.MoonPhase, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.E(op, errors.KindStorage, err)
	}
	defer rows.Close()

	var phases []models.MoonPhase
	for rows.Next() {
		p, err := scanPhase(rows)
		if err != nil {
			return nil, errors.E(op, errors.KindStorage, err)
		}
		phases = append(phases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.E(op, errors.KindStorage, err)
	}
	return phases, nil
}

// RecordsForMonth returns the stored records of ym ordered by date.
func (s *Store) RecordsForMonth(ctx context.Context, ym models.YearMonth) ([]models.MoonPhase, error) {
	return s.queryPhases(ctx, "storage.RecordsForMonth",
		`SELECT `+phaseColumns+` FROM moon_phases WHERE date BETWEEN ? AND ? ORDER BY date`,
		ym.First(), ym.Last())
}

// AllRecords returns every stored record ordered by date.
func (s *Store) AllRecords(ctx context.Context) ([]models.MoonPhase, error) {
	return s.queryPhases(ctx, "storage.AllRecords",
		`SELECT `+phaseColumns+` FROM moon_phases ORDER BY date`)
}

func (s *Store) GetRecord(ctx context.Context, date string) (models.MoonPhase, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+phaseColumns+` FROM moon_phases WHERE date = ?`, date)
	p, err := scanPhase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.MoonPhase{}, errors.E("storage.GetRecord", errors.KindNotFound, storage.ErrNotFound)
	}
	if err != nil {
		return models.MoonPhase{}, errors.E("storage.GetRecord", errors.KindStorage, err)
	}
	return p, nil
}

// InsertOrReplace upserts records keyed by date in a single transaction.
// The favorite flag of an existing row is preserved.
func (s *Store) InsertOrReplace(ctx context.Context, records []models.MoonPhase) error {
	const op = "storage.InsertOrReplace"
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.E(op, errors.KindStorage, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO moon_phases (`+phaseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			phase = excluded.phase,
			illumination = excluded.illumination,
			is_favorited = moon_phases.is_favorited OR excluded.is_favorited,
			zodiac_sign = COALESCE(excluded.zodiac_sign, moon_phases.zodiac_sign),
			advice = COALESCE(excluded.advice, moon_phases.advice),
			mood = COALESCE(excluded.mood, moon_phases.mood)`)
	if err != nil {
		return errors.E(op, errors.KindStorage, err)
	}
	defer stmt.Close()

	dates := make([]string, 0, len(records))
	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.Date, r.Phase, r.Illumination, r.IsFavorited,
			toNull(r.ZodiacSign), toNull(r.Advice), toNull(r.Mood)); err != nil {
			return errors.Ef(op, errors.KindStorage, "upsert %s: %w", r.Date, err)
		}
		dates = append(dates, r.Date)
	}

	if err := tx.Commit(); err != nil {
		return errors.E(op, errors.KindStorage, err)
	}

	s.publish(storage.ChangePhases, monthOf(dates[0]), dates...)
	return nil
}

// SetFavorited flips the local favorite mirror for one date. A date without a
// stored record is ignored.
func (s *Store) SetFavorited(ctx context.Context, date string, favorited bool) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE moon_phases SET is_favorited = ? WHERE date = ?`, favorited, date); err != nil {
		return errors.E("storage.SetFavorited", errors.KindStorage, err)
	}
	s.publish(storage.ChangeFavorites, monthOf(date), date)
	return nil
}

// ApplyFavorites makes exactly the given dates favorited.
func (s *Store) ApplyFavorites(ctx context.Context, dates []string) error {
	const op = "storage.ApplyFavorites"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.E(op, errors.KindStorage, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `UPDATE moon_phases SET is_favorited = 0 WHERE is_favorited <> 0`); err != nil {
		return errors.E(op, errors.KindStorage, err)
	}
	for _, d := range dates {
		if _, err := tx.ExecContext(ctx, `UPDATE moon_phases SET is_favorited = 1 WHERE date = ?`, d); err != nil {
			return errors.E(op, errors.KindStorage, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.E(op, errors.KindStorage, err)
	}

	s.publish(storage.ChangeFavorites, models.YearMonth{}, dates...)
	return nil
}

func monthOf(date string) models.YearMonth {
	if len(date) < 7 {
		return models.YearMonth{}
	}
	ym, err := models.ParseYearMonth(date[:7])
	if err != nil {
		return models.YearMonth{}
	}
	return ym
}
