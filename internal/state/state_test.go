package state

import (
	"bytes"
	"context"
	"reflect"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/moonlit/internal/constants"
	"github.com/julianstephens/moonlit/internal/errors"
	"github.com/julianstephens/moonlit/internal/logger"
	"github.com/julianstephens/moonlit/internal/models"
	"github.com/julianstephens/moonlit/internal/moon"
	"github.com/julianstephens/moonlit/internal/storage"
)

var (
	feb   = models.YearMonth{Year: 2024, Month: time.February}
	march = models.YearMonth{Year: 2024, Month: time.March}
)

// fakeMonths serves generated records. Months listed in block wait for their
// context to be cancelled before returning.
type fakeMonths struct {
	mu      sync.Mutex
	block   map[models.YearMonth]bool
	started chan models.YearMonth
	phase   string
}

func (f *fakeMonths) EnsureMonth(ctx context.Context, ym models.YearMonth) (moon.Result, error) {
	f.mu.Lock()
	block := f.block[ym]
	f.mu.Unlock()
	if f.started != nil {
		f.started <- ym
	}
	if block {
		<-ctx.Done()
		return moon.Result{}, errors.E("fake", errors.KindTransient, ctx.Err())
	}
	return moon.Result{Month: ym}, nil
}

func (f *fakeMonths) MonthRecords(_ context.Context, ym models.YearMonth) ([]models.MoonPhase, error) {
	f.mu.Lock()
	phase := f.phase
	f.mu.Unlock()
	if phase == "" {
		phase = "Full Moon"
	}
	var out []models.MoonPhase
	for d := 1; d <= ym.DaysIn(); d++ {
		out = append(out, models.MoonPhase{Date: ym.Date(d), Phase: phase, Illumination: 1})
	}
	return out, nil
}

// fakeSync keeps saved days and notes in memory. When gate is set, writes
// announce themselves on entered and wait for gate before touching anything.
type fakeSync struct {
	mu      sync.Mutex
	saved   []string
	notes   map[string][]models.Note
	nextID  int
	fail    error
	offline bool
	entered chan string
	gate    chan struct{}
}

func (f *fakeSync) hold(op string) {
	if f.entered != nil {
		f.entered <- op
	}
	if f.gate != nil {
		<-f.gate
	}
}

func newFakeSync() *fakeSync {
	return &fakeSync{notes: make(map[string][]models.Note)}
}

func (f *fakeSync) ToggleFavorite(_ context.Context, _, date string) (bool, error) {
	f.hold("toggle")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return false, f.fail
	}
	var saved bool
	f.saved, saved = models.ToggleDay(f.saved, date)
	return saved, nil
}

func (f *fakeSync) FetchFavorites(context.Context, string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	return slices.Clone(f.saved), nil
}

func (f *fakeSync) NoteDatesForMonth(_ context.Context, _ string, ym models.YearMonth) ([]string, error) {
	f.hold("markers")
	f.mu.Lock()
	defer f.mu.Unlock()
	var dates []string
	for d, notes := range f.notes {
		if ym.Contains(d) && len(notes) > 0 {
			dates = append(dates, d)
		}
	}
	slices.Sort(dates)
	return dates, nil
}

func (f *fakeSync) FetchNotes(_ context.Context, _, date string) ([]models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return nil, errors.E("fake", errors.KindTransient, errors.New("connection refused"))
	}
	return slices.Clone(f.notes[date]), nil
}

func (f *fakeSync) AddNote(_ context.Context, _, date, content string) ([]models.Note, error) {
	f.hold("add")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.notes[date] = append(f.notes[date], models.Note{ID: string(rune('a' + f.nextID)), Date: date, Content: content})
	return slices.Clone(f.notes[date]), nil
}

func (f *fakeSync) UpdateNote(_ context.Context, _, id, content string) ([]models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, notes := range f.notes {
		for i := range notes {
			if notes[i].ID == id {
				notes[i].Content = content
				return slices.Clone(notes), nil
			}
		}
	}
	return nil, errors.E("fake", errors.KindNotFound, errors.New("note not found"))
}

func (f *fakeSync) DeleteNote(_ context.Context, _, id string) (string, []models.Note, error) {
	f.hold("delete")
	f.mu.Lock()
	defer f.mu.Unlock()
	for date, notes := range f.notes {
		if i := slices.IndexFunc(notes, func(n models.Note) bool { return n.ID == id }); i >= 0 {
			f.notes[date] = slices.Delete(notes, i, i+1)
			return date, slices.Clone(f.notes[date]), nil
		}
	}
	return "", nil, errors.E("fake", errors.KindNotFound, errors.New("note not found"))
}

func (f *fakeSync) LocalNotes(_ context.Context, date string) ([]models.Note, error) {
	return []models.Note{{ID: "local", Date: date, Content: "mirrored"}}, nil
}

// fakeAdvice returns canned readings. When gate is set each call waits for a
// value or for its context to end.
type fakeAdvice struct {
	gate  chan struct{}
	fail  error
	calls chan models.Granularity
}

func (f *fakeAdvice) Fetch(ctx context.Context, sign models.ZodiacSign, g models.Granularity, day string) (models.Advice, error) {
	if f.calls != nil {
		f.calls <- g
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return models.Advice{}, ctx.Err()
		}
	}
	if f.fail != nil {
		return models.Advice{}, f.fail
	}
	return models.Advice{Sign: sign, Granularity: g, Key: day, Text: string(g) + " reading"}, nil
}

func TestAdviceSlotsAreMutuallyExclusive(t *testing.T) {
	ctx := context.Background()
	src := &fakeAdvice{}
	a := NewAdvice(src)

	if err := a.SetSign("leo"); err != nil {
		t.Fatalf("SetSign() error = %v", err)
	}
	if _, err := a.FetchDaily(ctx, "TODAY"); err != nil {
		t.Fatalf("FetchDaily() error = %v", err)
	}
	if s := a.Current(); s.Daily == nil || s.Weekly != nil || s.Monthly != nil {
		t.Fatalf("after FetchDaily snapshot = %+v", s)
	}

	src.gate = make(chan struct{})
	src.calls = make(chan models.Granularity, 1)
	done := make(chan error, 1)
	go func() {
		_, err := a.FetchWeekly(ctx)
		done <- err
	}()

	<-src.calls
	// All three slots are empty while the weekly fetch is in flight
	if s := a.Current(); s.Daily != nil || s.Weekly != nil || s.Monthly != nil || !s.Loading {
		t.Errorf("during FetchWeekly snapshot = %+v, want all slots cleared and loading", s)
	}

	close(src.gate)
	if err := <-done; err != nil {
		t.Fatalf("FetchWeekly() error = %v", err)
	}
	s := a.Current()
	if s.Daily != nil || s.Weekly == nil || s.Monthly != nil || s.Loading {
		t.Errorf("after FetchWeekly snapshot = %+v", s)
	}
	if s.Message != "weekly reading" {
		t.Errorf("Message = %q", s.Message)
	}

	src.gate, src.calls = nil, nil
	if _, err := a.FetchMonthly(ctx); err != nil {
		t.Fatal(err)
	}
	if s := a.Current(); s.Daily != nil || s.Weekly != nil || s.Monthly == nil {
		t.Errorf("after FetchMonthly snapshot = %+v", s)
	}
}

func TestAdviceFailureShowsUnavailable(t *testing.T) {
	a := NewAdvice(&fakeAdvice{fail: errors.E("fake", errors.KindTransient, errors.New("503"))})
	if _, err := a.FetchDaily(context.Background(), ""); !errors.IsKind(err, errors.KindInvalidInput) {
		t.Errorf("FetchDaily() without sign error = %v, want invalid input", err)
	}

	_ = a.SetSign("Pisces")
	_, err := a.FetchDaily(context.Background(), "TODAY")
	if err == nil {
		t.Fatal("FetchDaily() error = nil")
	}
	s := a.Current()
	if s.Message != constants.AdviceUnavailable || s.Daily != nil || s.Err == nil {
		t.Errorf("snapshot = %+v, want advice unavailable", s)
	}
}

func TestAdviceStaleResultDropped(t *testing.T) {
	ctx := context.Background()
	src := &fakeAdvice{gate: make(chan struct{}), calls: make(chan models.Granularity, 2)}
	a := NewAdvice(src)
	_ = a.SetSign("Leo")

	first := make(chan error, 1)
	go func() {
		_, err := a.FetchDaily(ctx, "TODAY")
		first <- err
	}()
	<-src.calls

	second := make(chan error, 1)
	go func() {
		_, err := a.FetchMonthly(ctx)
		second <- err
	}()
	<-src.calls

	// The first request's context was cancelled by the second
	if err := <-first; !errors.Is(err, ErrStale) {
		t.Errorf("first fetch error = %v, want ErrStale", err)
	}
	close(src.gate)
	if err := <-second; err != nil {
		t.Fatalf("second fetch error = %v", err)
	}
	if s := a.Current(); s.Monthly == nil || s.Daily != nil {
		t.Errorf("snapshot = %+v, want monthly only", s)
	}
}

func TestCalendarSelectMonthAndFavorites(t *testing.T) {
	ctx := context.Background()
	favs := newFakeSync()
	favs.saved = []string{"2024-02-14"}
	c := NewCalendar(&fakeMonths{}, favs)
	c.SetUser("u-1")

	if err := c.RefreshFavorites(ctx); err != nil {
		t.Fatalf("RefreshFavorites() error = %v", err)
	}
	if err := c.SelectMonth(ctx, feb); err != nil {
		t.Fatalf("SelectMonth() error = %v", err)
	}

	s := c.Current()
	if len(s.Records) != 29 || s.Records[0].Date != "2024-02-01" || s.Records[28].Date != "2024-02-29" {
		t.Fatalf("Records = %d, want 29 from 2024-02-01", len(s.Records))
	}
	if r, _ := s.Record("2024-02-14"); !r.IsFavorited {
		t.Error("saved day not marked favorited")
	}

	saved, err := c.ToggleFavorite(ctx, "2024-02-20")
	if err != nil || !saved {
		t.Fatalf("ToggleFavorite() = %v, %v", saved, err)
	}
	s = c.Current()
	if !s.IsSaved("2024-02-20") {
		t.Error("toggled day not saved")
	}
	if r, _ := s.Record("2024-02-20"); !r.IsFavorited {
		t.Error("toggled record not favorited")
	}

	favs.fail = errors.E("fake", errors.KindTransient, errors.New("offline"))
	if _, err := c.ToggleFavorite(ctx, "2024-02-20"); err == nil {
		t.Fatal("ToggleFavorite() error = nil")
	}
	if s := c.Current(); !s.IsSaved("2024-02-20") || s.Err == nil {
		t.Errorf("failed toggle changed state: saved = %v, err = %v", s.IsSaved("2024-02-20"), s.Err)
	}

	// Records of earlier months stay loaded
	favs.fail = nil
	if err := c.SelectMonth(ctx, march); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Current().Record("2024-02-01"); !ok {
		t.Error("All lost February after selecting March")
	}
}

func TestCalendarToggleFavoriteRequiresUser(t *testing.T) {
	c := NewCalendar(&fakeMonths{}, newFakeSync())
	if _, err := c.ToggleFavorite(context.Background(), "2024-02-01"); !errors.IsKind(err, errors.KindAuth) {
		t.Errorf("ToggleFavorite() error = %v, want auth", err)
	}
}

func TestCalendarStaleMonthDropped(t *testing.T) {
	ctx := context.Background()
	months := &fakeMonths{block: map[models.YearMonth]bool{feb: true}, started: make(chan models.YearMonth, 2)}
	c := NewCalendar(months, newFakeSync())

	first := make(chan error, 1)
	go func() { first <- c.SelectMonth(ctx, feb) }()
	<-months.started

	if err := c.SelectMonth(ctx, march); err != nil {
		t.Fatalf("SelectMonth(march) error = %v", err)
	}
	<-months.started
	if err := <-first; !errors.Is(err, ErrStale) {
		t.Errorf("SelectMonth(feb) error = %v, want ErrStale", err)
	}

	s := c.Current()
	if s.Month != march || len(s.Records) != 31 || s.Loading {
		t.Errorf("snapshot month = %s records = %d loading = %v", s.Month, len(s.Records), s.Loading)
	}
}

func TestCalendarMoonList(t *testing.T) {
	c := NewCalendar(&fakeMonths{}, newFakeSync())
	full := models.MoonPhase{Date: "2024-02-24", Phase: "Full Moon"}
	nw := models.MoonPhase{Date: "2024-02-09", Phase: "New Moon"}

	if !c.ToggleMoonList(full) {
		t.Error("ToggleMoonList() = false on first toggle")
	}
	c.AddToMoonList(nw)
	c.AddToMoonList(nw)
	if got := len(c.Current().MoonList); got != 2 {
		t.Errorf("MoonList length = %d, want 2", got)
	}
	if c.ToggleMoonList(full) {
		t.Error("ToggleMoonList() = true on second toggle")
	}
	c.RemoveFromMoonList(nw.Date)
	if got := c.Current().MoonList; len(got) != 0 {
		t.Errorf("MoonList = %v, want empty", got)
	}
}

func TestSnapshotsAreImmutable(t *testing.T) {
	c := NewCalendar(&fakeMonths{}, newFakeSync())
	c.AddToMoonList(models.MoonPhase{Date: "2024-02-01"})
	before := c.Current()
	c.AddToMoonList(models.MoonPhase{Date: "2024-02-02"})
	if len(before.MoonList) != 1 {
		t.Errorf("earlier snapshot changed: %v", before.MoonList)
	}
}

func TestNotesLifecycle(t *testing.T) {
	ctx := context.Background()
	syncer := newFakeSync()
	cal := NewCalendar(&fakeMonths{}, syncer)
	notes := NewNotes(syncer)
	NewSession(cal, NewAdvice(&fakeAdvice{}), notes)
	cal.SetUser("u-1")
	notes.SetUser("u-1")

	if err := cal.SelectMonth(ctx, march); err != nil {
		t.Fatal(err)
	}
	if err := notes.LoadMonth(ctx, march); err != nil {
		t.Fatal(err)
	}
	if err := notes.Load(ctx, "2024-03-10"); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := notes.Add(ctx, "hello"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	s := notes.Current()
	if len(s.Notes) != 1 || s.Notes[0].Content != "hello" {
		t.Fatalf("Notes = %+v, want one hello", s.Notes)
	}
	if !cal.Current().HasNotes("2024-03-10") {
		t.Error("calendar marker not set after Add")
	}

	id := s.Notes[0].ID
	if err := notes.Update(ctx, id, "hi"); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if n, _ := notes.Current().Note(id); n.Content != "hi" {
		t.Errorf("updated content = %q", n.Content)
	}

	if err := notes.Delete(ctx, id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if got := notes.Current().Notes; len(got) != 0 {
		t.Errorf("Notes after Delete = %+v", got)
	}
	if cal.Current().HasNotes("2024-03-10") {
		t.Error("calendar marker kept after last note deleted")
	}
}

func TestNotesOfflineFallback(t *testing.T) {
	syncer := newFakeSync()
	syncer.offline = true
	notes := NewNotes(syncer)
	notes.SetUser("u-1")

	err := notes.Load(context.Background(), "2024-03-10")
	if !errors.IsKind(err, errors.KindTransient) {
		t.Fatalf("Load() error = %v, want transient", err)
	}
	s := notes.Current()
	if !s.Offline || len(s.Notes) != 1 || s.Notes[0].Content != "mirrored" {
		t.Errorf("snapshot = %+v, want mirrored offline notes", s)
	}
}

func TestSessionClearResetsEverything(t *testing.T) {
	ctx := context.Background()
	syncer := newFakeSync()
	syncer.saved = []string{"2024-02-14"}
	session := NewSession(NewCalendar(&fakeMonths{}, syncer), NewAdvice(&fakeAdvice{}), NewNotes(syncer))

	err := session.SignIn(ctx, models.Profile{UID: "u-1", Email: "luna@example.com", ZodiacSign: models.Leo})
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if s := session.Advice.Current(); s.Sign != models.Leo {
		t.Errorf("advice sign = %s, want Leo", s.Sign)
	}

	_ = session.Calendar.SelectMonth(ctx, feb)
	_ = session.Calendar.SelectDate("2024-02-14")
	session.Calendar.AddToMoonList(models.MoonPhase{Date: "2024-02-14"})
	_, _ = session.Advice.FetchDaily(ctx, "TODAY")
	_ = session.Notes.Load(ctx, "2024-02-14")
	_ = session.Notes.Add(ctx, "hello")

	session.Clear()

	if got := session.Current(); !reflect.DeepEqual(got, SessionSnapshot{}) {
		t.Errorf("session = %+v, want empty", got)
	}
	if _, ok := session.Profile(); ok {
		t.Error("Profile() still set after Clear")
	}
	if got := session.Calendar.Current(); !reflect.DeepEqual(got, CalendarSnapshot{}) {
		t.Errorf("calendar = %+v, want empty", got)
	}
	if got := session.Advice.Current(); !reflect.DeepEqual(got, AdviceSnapshot{}) {
		t.Errorf("advice = %+v, want empty", got)
	}
	if got := session.Notes.Current(); !reflect.DeepEqual(got, NotesSnapshot{}) {
		t.Errorf("notes = %+v, want empty", got)
	}

	// Cleared holders are signed out
	if _, err := session.Calendar.ToggleFavorite(ctx, "2024-02-14"); !errors.IsKind(err, errors.KindAuth) {
		t.Errorf("ToggleFavorite() after Clear error = %v, want auth", err)
	}
}

func TestClearDropsInFlightWrites(t *testing.T) {
	tests := []struct {
		name string
		run  func(ctx context.Context, s *Session) error
	}{
		{"toggle favorite", func(ctx context.Context, s *Session) error {
			_, err := s.Calendar.ToggleFavorite(ctx, "2024-03-10")
			return err
		}},
		{"add note", func(ctx context.Context, s *Session) error {
			return s.Notes.Add(ctx, "late")
		}},
		{"delete note", func(ctx context.Context, s *Session) error {
			return s.Notes.Delete(ctx, "seed")
		}},
		{"note markers", func(ctx context.Context, s *Session) error {
			return s.Notes.LoadMonth(ctx, march)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			syncer := newFakeSync()
			syncer.notes["2024-03-10"] = []models.Note{
				{ID: "seed", Date: "2024-03-10", Content: "first"},
				{ID: "other", Date: "2024-03-10", Content: "second"},
			}
			session := NewSession(NewCalendar(&fakeMonths{}, syncer), NewAdvice(&fakeAdvice{}), NewNotes(syncer))
			if err := session.SignIn(ctx, models.Profile{UID: "u-1", ZodiacSign: models.Leo}); err != nil {
				t.Fatalf("SignIn() error = %v", err)
			}
			if err := session.Notes.Load(ctx, "2024-03-10"); err != nil {
				t.Fatalf("Load() error = %v", err)
			}

			syncer.entered = make(chan string)
			syncer.gate = make(chan struct{})
			done := make(chan error, 1)
			go func() { done <- tt.run(ctx, session) }()

			<-syncer.entered
			session.Clear()
			close(syncer.gate)

			if err := <-done; !errors.Is(err, ErrStale) {
				t.Errorf("error = %v, want ErrStale", err)
			}
			if got := session.Calendar.Current(); !reflect.DeepEqual(got, CalendarSnapshot{}) {
				t.Errorf("calendar = %+v, want empty", got)
			}
			if got := session.Notes.Current(); !reflect.DeepEqual(got, NotesSnapshot{}) {
				t.Errorf("notes = %+v, want empty", got)
			}
		})
	}
}

func TestDeleteShowsDeletedNotesDate(t *testing.T) {
	ctx := context.Background()
	syncer := newFakeSync()
	syncer.notes["2024-03-12"] = []models.Note{{ID: "x", Date: "2024-03-12", Content: "elsewhere"}}
	notes := NewNotes(syncer)
	notes.SetUser("u-1")

	if err := notes.Load(ctx, "2024-03-10"); err != nil {
		t.Fatal(err)
	}
	if err := notes.Delete(ctx, "x"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	s := notes.Current()
	if s.Date != "2024-03-12" {
		t.Errorf("Date = %q, want 2024-03-12", s.Date)
	}
	if len(s.Notes) != 0 {
		t.Errorf("Notes = %+v, want none", s.Notes)
	}
}

func TestSubscribeReceivesSnapshots(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := NewCalendar(&fakeMonths{}, newFakeSync())
	ch := c.Subscribe(ctx)
	<-ch // current value

	if err := c.SelectDate("2024-02-03"); err != nil {
		t.Fatal(err)
	}
	select {
	case s := <-ch:
		if s.Selected != "2024-02-03" {
			t.Errorf("Selected = %q", s.Selected)
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot published")
	}

	cancel()
	for range ch {
	}
}

func TestCalendarWatchReloadsDisplayedMonth(t *testing.T) {
	ctx := context.Background()
	months := &fakeMonths{}
	c := NewCalendar(months, newFakeSync())
	if err := c.SelectMonth(ctx, feb); err != nil {
		t.Fatalf("SelectMonth() error = %v", err)
	}

	months.mu.Lock()
	months.phase = "New Moon"
	months.mu.Unlock()

	tests := []struct {
		name   string
		change storage.Change
		want   string
	}{
		{"other month", storage.Change{Kind: storage.ChangePhases, Month: march, Dates: []string{"2024-03-01"}}, "Full Moon"},
		{"notes only", storage.Change{Kind: storage.ChangeNotes, Month: feb, Dates: []string{"2024-02-01"}}, "Full Moon"},
		{"displayed month", storage.Change{Kind: storage.ChangePhases, Month: feb, Dates: []string{"2024-02-10"}}, "New Moon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := make(chan storage.Change, 1)
			ch <- tt.change
			close(ch)
			c.Watch(ctx, ch)

			s := c.Current()
			if len(s.Records) != 29 {
				t.Fatalf("Records = %d, want 29", len(s.Records))
			}
			if s.Records[0].Phase != tt.want {
				t.Errorf("Phase = %q, want %q", s.Records[0].Phase, tt.want)
			}
			if r, _ := s.Record("2024-02-10"); r.Phase != tt.want {
				t.Errorf("All[2024-02-10].Phase = %q, want %q", r.Phase, tt.want)
			}
		})
	}
}

func TestUpdateProfileLogsUnknownSign(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf, log.WarnLevel)
	t.Cleanup(func() { logger.Logger = nil })

	syncer := newFakeSync()
	session := NewSession(NewCalendar(&fakeMonths{}, syncer), NewAdvice(&fakeAdvice{}), NewNotes(syncer))
	if err := session.SignIn(context.Background(), models.Profile{UID: "u-1", ZodiacSign: models.Leo}); err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}

	session.UpdateProfile(models.Profile{UID: "u-1", ZodiacSign: "Ophiuchus"})

	if got := session.Advice.Current().Sign; got != models.Leo {
		t.Errorf("advice sign = %s, want Leo kept", got)
	}
	if p, _ := session.Profile(); p.ZodiacSign != "Ophiuchus" {
		t.Errorf("profile sign = %s, want the edited value", p.ZodiacSign)
	}
	if out := buf.String(); !strings.Contains(out, "unknown zodiac sign") || !strings.Contains(out, "Ophiuchus") {
		t.Errorf("log = %q, want the rejected sign", out)
	}
}
