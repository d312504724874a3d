package state

import (
	"context"
	"slices"
	"sync"

	"github.com/julianstephens/moonlit/internal/errors"
	"github.com/julianstephens/moonlit/internal/logger"
	"github.com/julianstephens/moonlit/internal/models"
	"github.com/julianstephens/moonlit/internal/pubsub"
	"github.com/julianstephens/moonlit/internal/validation"
)

// NoteSyncer reads and writes notes through the profile store.
type NoteSyncer interface {
	FetchNotes(ctx context.Context, uid, date string) ([]models.Note, error)
	AddNote(ctx context.Context, uid, date, content string) ([]models.Note, error)
	UpdateNote(ctx context.Context, uid, id, content string) ([]models.Note, error)
	DeleteNote(ctx context.Context, uid, id string) (string, []models.Note, error)
	NoteDatesForMonth(ctx context.Context, uid string, ym models.YearMonth) ([]string, error)
	LocalNotes(ctx context.Context, date string) ([]models.Note, error)
}

// NotesSnapshot is the notes of one date plus the note markers of its month.
type NotesSnapshot struct {
	Date      string
	Notes     []models.Note
	Month     models.YearMonth
	NoteDates []string
	Loading   bool
	// Offline is set when Notes came from the local mirror because the
	// profile store could not be reached.
	Offline bool
	Err     error
}

// Note returns the note with the given id.
func (s NotesSnapshot) Note(id string) (models.Note, bool) {
	i := slices.IndexFunc(s.Notes, func(n models.Note) bool { return n.ID == id })
	if i < 0 {
		return models.Note{}, false
	}
	return s.Notes[i], true
}

type Notes struct {
	mu      sync.Mutex
	snap    NotesSnapshot
	uid     string
	epoch   uint64
	sync    NoteSyncer
	load    slot
	markers func(models.YearMonth, []string)
	topic   *pubsub.Topic[NotesSnapshot]
}

func NewNotes(syncer NoteSyncer) *Notes {
	return &Notes{sync: syncer, topic: pubsub.NewTopic(NotesSnapshot{})}
}

func (n *Notes) Current() NotesSnapshot { return n.topic.Current() }

func (n *Notes) Subscribe(ctx context.Context) <-chan NotesSnapshot {
	return n.topic.Subscribe(ctx)
}

// SetUser scopes notes to uid. An empty uid signs out.
func (n *Notes) SetUser(uid string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.uid != uid {
		n.epoch++
	}
	n.uid = uid
}

// OnMarkersChanged registers fn to receive a month's note dates whenever a
// write changes them.
func (n *Notes) OnMarkersChanged(fn func(models.YearMonth, []string)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.markers = fn
}

func (n *Notes) publishLocked() {
	s := n.snap
	s.Notes = slices.Clone(s.Notes)
	s.NoteDates = slices.Clone(s.NoteDates)
	n.topic.Publish(s)
}

// Load shows the notes of date. When the profile store is unreachable the local
// mirror is shown instead and the snapshot is marked offline.
func (n *Notes) Load(ctx context.Context, date string) error {
	const op = "state.LoadNotes"
	if err := validation.ValidateDate(date); err != nil {
		return err
	}

	n.mu.Lock()
	uid, epoch := n.uid, n.epoch
	ctx, gen := n.load.start(ctx)
	if n.snap.Date != date {
		n.snap.Notes = nil
	}
	n.snap.Date = date
	n.snap.Loading = true
	n.snap.Err = nil
	n.publishLocked()
	n.mu.Unlock()

	var (
		notes   []models.Note
		offline bool
		err     error
	)
	if uid == "" {
		err = uidRequired(op, uid)
	} else {
		notes, err = n.sync.FetchNotes(ctx, uid, date)
	}
	if err != nil && (errors.IsKind(err, errors.KindTransient) || errors.IsKind(err, errors.KindStorage)) {
		local, lerr := n.sync.LocalNotes(ctx, date)
		if lerr == nil {
			logger.Warn("serving mirrored notes", "date", date, "error", err)
			notes, offline = local, true
		}
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.load.done(gen) {
		return ErrStale
	}
	if n.epoch != epoch {
		n.snap.Notes = nil
		n.snap.Loading = false
		n.publishLocked()
		return ErrStale
	}
	n.snap.Notes = notes
	n.snap.Loading = false
	n.snap.Offline = offline
	n.snap.Err = err
	n.publishLocked()
	return err
}

// LoadMonth refreshes the note markers of ym.
func (n *Notes) LoadMonth(ctx context.Context, ym models.YearMonth) error {
	n.mu.Lock()
	uid, epoch := n.uid, n.epoch
	n.mu.Unlock()
	if err := uidRequired("state.LoadNoteMonth", uid); err != nil {
		return err
	}

	dates, err := n.sync.NoteDatesForMonth(ctx, uid, ym)
	if err != nil {
		return err
	}

	n.mu.Lock()
	if n.epoch != epoch {
		n.mu.Unlock()
		return ErrStale
	}
	n.snap.Month = ym
	n.snap.NoteDates = dates
	n.publishLocked()
	markers := n.markers
	n.mu.Unlock()

	if markers != nil {
		markers(ym, slices.Clone(dates))
	}
	return nil
}

// Add stores a note on the loaded date.
func (n *Notes) Add(ctx context.Context, content string) error {
	return n.write(ctx, "state.AddNote", func(uid, date string) (string, []models.Note, error) {
		if date == "" {
			return "", nil, errors.Ef("state.AddNote", errors.KindInvalidInput, "no date selected")
		}
		notes, err := n.sync.AddNote(ctx, uid, date, content)
		return date, notes, err
	})
}

// Update replaces the content of note id.
func (n *Notes) Update(ctx context.Context, id, content string) error {
	return n.write(ctx, "state.UpdateNote", func(uid, date string) (string, []models.Note, error) {
		notes, err := n.sync.UpdateNote(ctx, uid, id, content)
		if len(notes) > 0 {
			date = notes[0].Date
		}
		return date, notes, err
	})
}

// Delete removes note id.
func (n *Notes) Delete(ctx context.Context, id string) error {
	return n.write(ctx, "state.DeleteNote", func(uid, _ string) (string, []models.Note, error) {
		return n.sync.DeleteNote(ctx, uid, id)
	})
}

// write runs do for the signed-in user and shows the notes of the date it
// reports. Results that arrive after a sign-out or user change are dropped.
func (n *Notes) write(ctx context.Context, op string, do func(uid, date string) (string, []models.Note, error)) error {
	n.mu.Lock()
	uid, date, epoch := n.uid, n.snap.Date, n.epoch
	n.mu.Unlock()
	if err := uidRequired(op, uid); err != nil {
		return err
	}

	date, notes, err := do(uid, date)

	n.mu.Lock()
	if n.epoch != epoch {
		n.mu.Unlock()
		return ErrStale
	}
	if err != nil {
		n.snap.Err = err
		n.publishLocked()
		n.mu.Unlock()
		return err
	}
	// A write supersedes any load still running for the date
	n.load.stop()
	n.snap.Date = date
	n.snap.Notes = notes
	n.snap.Loading = false
	n.snap.Offline = false
	n.snap.Err = nil
	n.publishLocked()
	month := n.snap.Month
	n.mu.Unlock()

	if !month.IsZero() && month.Contains(date) {
		if err := n.LoadMonth(ctx, month); err != nil {
			logger.Warn("failed to refresh note markers", "month", month.String(), "error", err)
		}
	}
	return nil
}

// Clear cancels any in-flight load and resets every field.
func (n *Notes) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.load.stop()
	n.epoch++
	n.uid = ""
	n.snap = NotesSnapshot{}
	n.publishLocked()
}
