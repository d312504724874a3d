package state

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/julianstephens/moonlit/internal/errors"
	"github.com/julianstephens/moonlit/internal/logger"
	"github.com/julianstephens/moonlit/internal/models"
	"github.com/julianstephens/moonlit/internal/moon"
	"github.com/julianstephens/moonlit/internal/pubsub"
	"github.com/julianstephens/moonlit/internal/storage"
	"github.com/julianstephens/moonlit/internal/validation"
)

// MonthLoader fills and reads months of phase records.
type MonthLoader interface {
	EnsureMonth(ctx context.Context, ym models.YearMonth) (moon.Result, error)
	MonthRecords(ctx context.Context, ym models.YearMonth) ([]models.MoonPhase, error)
}

// FavoriteSyncer reads and writes the user's saved days and note markers.
type FavoriteSyncer interface {
	ToggleFavorite(ctx context.Context, uid, date string) (bool, error)
	FetchFavorites(ctx context.Context, uid string) ([]string, error)
	NoteDatesForMonth(ctx context.Context, uid string, ym models.YearMonth) ([]string, error)
}

// CalendarSnapshot is the calendar screen's state at one point in time.
type CalendarSnapshot struct {
	Month     models.YearMonth
	Records   []models.MoonPhase
	All       map[string]models.MoonPhase
	Selected  string
	SavedDays []string
	NoteDates []string
	MoonList  []models.MoonPhase
	Loading   bool
	Err       error
}

// Record returns the loaded record for date.
func (s CalendarSnapshot) Record(date string) (models.MoonPhase, bool) {
	r, ok := s.All[date]
	return r, ok
}

// IsSaved reports whether date is one of the user's saved days.
func (s CalendarSnapshot) IsSaved(date string) bool {
	return slices.Contains(s.SavedDays, date)
}

// HasNotes reports whether date carries a note marker.
func (s CalendarSnapshot) HasNotes(date string) bool {
	return slices.Contains(s.NoteDates, date)
}

// InMoonList reports whether the record for date is in the moon list.
func (s CalendarSnapshot) InMoonList(date string) bool {
	return slices.ContainsFunc(s.MoonList, func(r models.MoonPhase) bool { return r.Date == date })
}

type Calendar struct {
	mu     sync.Mutex
	snap   CalendarSnapshot
	uid    string
	epoch  uint64
	months MonthLoader
	favs   FavoriteSyncer
	month  slot
	saved  slot
	topic  *pubsub.Topic[CalendarSnapshot]
}

func NewCalendar(months MonthLoader, favs FavoriteSyncer) *Calendar {
	return &Calendar{
		months: months,
		favs:   favs,
		topic:  pubsub.NewTopic(CalendarSnapshot{}),
	}
}

// Current returns the latest snapshot.
func (c *Calendar) Current() CalendarSnapshot { return c.topic.Current() }

// Subscribe streams snapshots until ctx is done.
func (c *Calendar) Subscribe(ctx context.Context) <-chan CalendarSnapshot {
	return c.topic.Subscribe(ctx)
}

// SetUser scopes favorites and note markers to uid. An empty uid signs out.
func (c *Calendar) SetUser(uid string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.uid != uid {
		c.epoch++
	}
	c.uid = uid
}

func (c *Calendar) publishLocked() {
	s := c.snap
	s.Records = slices.Clone(s.Records)
	s.All = maps.Clone(s.All)
	s.SavedDays = slices.Clone(s.SavedDays)
	s.NoteDates = slices.Clone(s.NoteDates)
	s.MoonList = slices.Clone(s.MoonList)
	c.topic.Publish(s)
}

// SelectMonth makes ym the displayed month, fetching missing phase data first.
// A partially loaded month is still shown, with the error kept in the snapshot.
func (c *Calendar) SelectMonth(ctx context.Context, ym models.YearMonth) error {
	c.mu.Lock()
	ctx, gen := c.month.start(ctx)
	uid, epoch := c.uid, c.epoch
	c.snap.Month = ym
	c.snap.Records = nil
	c.snap.NoteDates = nil
	c.snap.Loading = true
	c.snap.Err = nil
	c.publishLocked()
	c.mu.Unlock()

	_, fetchErr := c.months.EnsureMonth(ctx, ym)
	if fetchErr != nil && !errors.IsKind(fetchErr, errors.KindPartial) {
		logger.Warn("failed to load month", "month", ym.String(), "error", fetchErr)
	}

	records, err := c.months.MonthRecords(ctx, ym)
	if err != nil {
		return c.finishMonth(gen, epoch, ym, nil, nil, errors.Join(fetchErr, err))
	}

	var noteDates []string
	if uid != "" {
		noteDates, err = c.favs.NoteDatesForMonth(ctx, uid, ym)
		if err != nil {
			logger.Warn("failed to load note markers", "month", ym.String(), "error", err)
		}
	}
	return c.finishMonth(gen, epoch, ym, records, noteDates, fetchErr)
}

func (c *Calendar) finishMonth(gen, epoch uint64, ym models.YearMonth, records []models.MoonPhase, noteDates []string, err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.month.done(gen) {
		return ErrStale
	}
	// Markers fetched for a user who has since signed out are not shown
	if c.epoch != epoch {
		noteDates = nil
	}

	if c.snap.All == nil {
		c.snap.All = make(map[string]models.MoonPhase, len(records))
	}
	for _, r := range records {
		r.IsFavorited = r.IsFavorited || c.isSavedLocked(r.Date)
		c.snap.All[r.Date] = r
	}
	c.snap.Records = nil
	for _, r := range records {
		c.snap.Records = append(c.snap.Records, c.snap.All[r.Date])
	}
	c.snap.NoteDates = noteDates
	c.snap.Loading = false
	c.snap.Err = err
	c.publishLocked()

	if err != nil {
		return errors.E("state.SelectMonth", errors.KindOf(err), err)
	}
	return nil
}

func (c *Calendar) isSavedLocked(date string) bool {
	return slices.Contains(c.snap.SavedDays, date)
}

// SelectDate marks date as the selected day.
func (c *Calendar) SelectDate(date string) error {
	if err := validation.ValidateDate(date); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap.Selected = date
	c.publishLocked()
	return nil
}

// ToggleFavorite flips date in the saved days once the profile store confirms.
func (c *Calendar) ToggleFavorite(ctx context.Context, date string) (bool, error) {
	const op = "state.ToggleFavorite"

	c.mu.Lock()
	uid, epoch := c.uid, c.epoch
	c.mu.Unlock()
	if err := uidRequired(op, uid); err != nil {
		return false, err
	}

	saved, err := c.favs.ToggleFavorite(ctx, uid, date)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return false, ErrStale
	}
	if err != nil {
		c.snap.Err = err
		c.publishLocked()
		return false, err
	}
	days := slices.DeleteFunc(slices.Clone(c.snap.SavedDays), func(d string) bool { return d == date })
	if saved {
		days = append(days, date)
	}
	c.applySavedLocked(days)
	c.snap.Err = nil
	c.publishLocked()
	return saved, nil
}

// RefreshFavorites replaces the saved days with the profile store's set.
func (c *Calendar) RefreshFavorites(ctx context.Context) error {
	const op = "state.RefreshFavorites"

	c.mu.Lock()
	uid := c.uid
	ctx, gen := c.saved.start(ctx)
	c.mu.Unlock()
	if err := uidRequired(op, uid); err != nil {
		c.mu.Lock()
		c.saved.done(gen)
		c.mu.Unlock()
		return err
	}

	days, err := c.favs.FetchFavorites(ctx, uid)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.saved.done(gen) {
		return ErrStale
	}
	if err != nil {
		c.snap.Err = err
		c.publishLocked()
		return err
	}
	c.applySavedLocked(days)
	c.publishLocked()
	return nil
}

func (c *Calendar) applySavedLocked(days []string) {
	c.snap.SavedDays = days
	for date, r := range c.snap.All {
		r.IsFavorited = slices.Contains(days, date)
		c.snap.All[date] = r
	}
	for i, r := range c.snap.Records {
		c.snap.Records[i].IsFavorited = slices.Contains(days, r.Date)
	}
	for i, r := range c.snap.MoonList {
		c.snap.MoonList[i].IsFavorited = slices.Contains(days, r.Date)
	}
}

// ToggleMoonList adds record to the moon list or removes it if present.
func (c *Calendar) ToggleMoonList(record models.MoonPhase) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inMoonListLocked(record.Date) {
		c.removeMoonListLocked(record.Date)
		c.publishLocked()
		return false
	}
	c.snap.MoonList = append(c.snap.MoonList, record)
	c.publishLocked()
	return true
}

// AddToMoonList appends record unless its date is already listed.
func (c *Calendar) AddToMoonList(record models.MoonPhase) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inMoonListLocked(record.Date) {
		return
	}
	c.snap.MoonList = append(c.snap.MoonList, record)
	c.publishLocked()
}

// RemoveFromMoonList drops the record for date from the moon list.
func (c *Calendar) RemoveFromMoonList(date string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.inMoonListLocked(date) {
		return
	}
	c.removeMoonListLocked(date)
	c.publishLocked()
}

func (c *Calendar) inMoonListLocked(date string) bool {
	return slices.ContainsFunc(c.snap.MoonList, func(r models.MoonPhase) bool { return r.Date == date })
}

func (c *Calendar) removeMoonListLocked(date string) {
	c.snap.MoonList = slices.DeleteFunc(slices.Clone(c.snap.MoonList), func(r models.MoonPhase) bool { return r.Date == date })
}

// SetNoteDates replaces the note markers of the displayed month.
func (c *Calendar) SetNoteDates(ym models.YearMonth, dates []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snap.Month != ym {
		return
	}
	c.snap.NoteDates = dates
	c.publishLocked()
}

// Watch re-reads the displayed month whenever phase records inside it are
// written, until changes is closed. Writes made by an in-flight SelectMonth
// are left to that call.
func (c *Calendar) Watch(ctx context.Context, changes <-chan storage.Change) {
	for ch := range changes {
		if ch.Kind != storage.ChangePhases {
			continue
		}
		c.mu.Lock()
		ym, loading := c.snap.Month, c.snap.Loading
		c.mu.Unlock()
		if ym.IsZero() || loading || !ch.Touches(ym) {
			continue
		}
		if err := c.reloadMonth(ctx, ym); err != nil {
			logger.Warn("failed to reload month", "month", ym.String(), "error", err)
		}
	}
}

func (c *Calendar) reloadMonth(ctx context.Context, ym models.YearMonth) error {
	records, err := c.months.MonthRecords(ctx, ym)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snap.Month != ym || c.snap.Loading {
		return nil
	}
	if c.snap.All == nil {
		c.snap.All = make(map[string]models.MoonPhase, len(records))
	}
	c.snap.Records = nil
	for _, r := range records {
		r.IsFavorited = r.IsFavorited || c.isSavedLocked(r.Date)
		c.snap.All[r.Date] = r
		c.snap.Records = append(c.snap.Records, r)
	}
	c.snap.Err = nil
	c.publishLocked()
	return nil
}

// Clear cancels in-flight fetches and resets every field.
func (c *Calendar) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.month.stop()
	c.saved.stop()
	c.epoch++
	c.uid = ""
	c.snap = CalendarSnapshot{}
	c.publishLocked()
}
