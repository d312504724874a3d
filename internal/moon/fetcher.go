// Package moon keeps the local content store populated with one phase record per
// calendar day, fetching missing months from the phase API.
package moon

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/moonlit/internal/constants"
	"github.com/julianstephens/moonlit/internal/errors"
	"github.com/julianstephens/moonlit/internal/logger"
	"github.com/julianstephens/moonlit/internal/models"
	"github.com/julianstephens/moonlit/internal/remote/moonapi"
	"github.com/julianstephens/moonlit/internal/storage"
)

// PhaseSource returns the lunar phase at an instant.
type PhaseSource interface {
	PhaseAt(ctx context.Context, t time.Time) (moonapi.Phase, error)
}

// Options selects the completeness and failure policies.
type Options struct {
	// Completeness is "any" (a month with at least one record is populated)
	// or "full" (every day must be present; only missing days are fetched).
	Completeness string
	// FailurePolicy is "fail-fast" (nothing is written if any day fails) or
	// "best-effort" (successful days are written and a partial error is returned).
	FailurePolicy string
}

// Result summarizes one EnsureMonth call.
type Result struct {
	Month   models.YearMonth
	Fetched []string
	Failed  []string
	// Skipped is true when the month was already populated and no remote call was made.
	Skipped bool
}

// Fetcher fills months in the content store.
type Fetcher struct {
	store  storage.ContentStore
	source PhaseSource
	opts   Options
}

func NewFetcher(store storage.ContentStore, source PhaseSource, opts Options) *Fetcher {
	if opts.Completeness == "" {
		opts.Completeness = constants.CompletenessAny
	}
	if opts.FailurePolicy == "" {
		opts.FailurePolicy = constants.FetchPolicyFailFast
	}
	return &Fetcher{store: store, source: source, opts: opts}
}

// EnsureMonth makes sure ym has stored records under the configured policies.
func (f *Fetcher) EnsureMonth(ctx context.Context, ym models.YearMonth) (Result, error) {
	return f.ensure(ctx, ym, f.opts.Completeness)
}

// Repair fetches every day of ym that has no stored record, regardless of the
// configured completeness policy.
func (f *Fetcher) Repair(ctx context.Context, ym models.YearMonth) (Result, error) {
	return f.ensure(ctx, ym, constants.CompletenessFull)
}

// MonthRecords returns the stored records of ym ordered by date.
func (f *Fetcher) MonthRecords(ctx context.Context, ym models.YearMonth) ([]models.MoonPhase, error) {
	return f.store.RecordsForMonth(ctx, ym)
}

func (f *Fetcher) ensure(ctx context.Context, ym models.YearMonth, completeness string) (Result, error) {
	const op = "moon.EnsureMonth"
	res := Result{Month: ym}

	existing, err := f.store.RecordsForMonth(ctx, ym)
	if err != nil {
		return res, errors.E(op, errors.KindStorage, err)
	}

	days := missingDays(ym, existing, completeness)
	if len(days) == 0 {
		res.Skipped = true
		return res, nil
	}

	logger.Debug("fetching moon phases", "month", ym.String(), "days", len(days))

	records := make([]models.MoonPhase, 0, len(days))
	var firstErr error
	for _, day := range days {
		if err := ctx.Err(); err != nil {
			return Result{Month: ym}, errors.E(op, errors.KindTransient, err)
		}

		date := ym.Date(day)
		p, err := f.source.PhaseAt(ctx, ym.Day(day))
		if err != nil {
			logger.Warn("moon phase fetch failed", "date", date, "error", err)
			if f.opts.FailurePolicy == constants.FetchPolicyFailFast {
				return Result{Month: ym, Failed: []string{date}},
					errors.Ef(op, errors.KindOf(err), "could not load moon phases for %s: %s: %w", ym, date, err)
			}
			res.Failed = append(res.Failed, date)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		records = append(records, models.MoonPhase{
			Date:         date,
			Phase:        p.Phase,
			Illumination: p.Illumination,
		})
	}

	if err := f.store.InsertOrReplace(ctx, records); err != nil {
		return Result{Month: ym}, errors.E(op, errors.KindStorage, err)
	}
	for _, r := range records {
		res.Fetched = append(res.Fetched, r.Date)
	}

	if len(res.Failed) > 0 {
		return res, errors.E(op, errors.KindPartial, &PartialError{Month: ym, Failed: res.Failed, Cause: firstErr})
	}
	return res, nil
}

// missingDays lists the days of ym to fetch under the completeness policy.
func missingDays(ym models.YearMonth, existing []models.MoonPhase, completeness string) []int {
	if completeness != constants.CompletenessFull && len(existing) > 0 {
		return nil
	}

	have := make(map[string]bool, len(existing))
	for _, r := range existing {
		have[r.Date] = true
	}

	var days []int
	for d := 1; d <= ym.DaysIn(); d++ {
		if !have[ym.Date(d)] {
			days = append(days, d)
		}
	}
	return days
}

// PartialError names the days of a month that could not be fetched.
type PartialError struct {
	Month  models.YearMonth
	Failed []string
	Cause  error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("could not load moon phases for %s on %d day(s): %s",
		e.Month, len(e.Failed), strings.Join(e.Failed, ", "))
}

func (e *PartialError) Unwrap() error { return e.Cause }
