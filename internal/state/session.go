package state

import (
	"context"
	"sync"

	"github.com/julianstephens/moonlit/internal/logger"
	"github.com/julianstephens/moonlit/internal/models"
	"github.com/julianstephens/moonlit/internal/pubsub"
)

// SessionSnapshot is the signed-in user, or nil when signed out.
type SessionSnapshot struct {
	Profile *models.Profile
}

func (s SessionSnapshot) SignedIn() bool { return s.Profile != nil }

// Session ties the calendar, advice and notes holders to one signed-in user.
type Session struct {
	Calendar *Calendar
	Advice   *Advice
	Notes    *Notes

	mu    sync.Mutex
	snap  SessionSnapshot
	topic *pubsub.Topic[SessionSnapshot]
}

func NewSession(calendar *Calendar, advice *Advice, notes *Notes) *Session {
	notes.OnMarkersChanged(calendar.SetNoteDates)
	return &Session{
		Calendar: calendar,
		Advice:   advice,
		Notes:    notes,
		topic:    pubsub.NewTopic(SessionSnapshot{}),
	}
}

func (s *Session) Current() SessionSnapshot { return s.topic.Current() }

func (s *Session) Subscribe(ctx context.Context) <-chan SessionSnapshot {
	return s.topic.Subscribe(ctx)
}

// Profile returns the signed-in profile.
func (s *Session) Profile() (models.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.Profile == nil {
		return models.Profile{}, false
	}
	return *s.snap.Profile, true
}

// SignIn scopes every holder to p, selects p's zodiac sign for advice and
// loads the saved days.
func (s *Session) SignIn(ctx context.Context, p models.Profile) error {
	s.mu.Lock()
	cp := p
	s.snap.Profile = &cp
	s.topic.Publish(SessionSnapshot{Profile: &p})
	s.mu.Unlock()

	s.Calendar.SetUser(p.UID)
	s.Notes.SetUser(p.UID)
	if p.ZodiacSign != "" {
		if err := s.Advice.SetSign(string(p.ZodiacSign)); err != nil {
			logger.Warn("profile has an unknown zodiac sign", "uid", p.UID, "sign", p.ZodiacSign)
		}
	}
	return s.Calendar.RefreshFavorites(ctx)
}

// UpdateProfile replaces the signed-in profile after an edit. A changed zodiac
// sign becomes the advice sign.
func (s *Session) UpdateProfile(p models.Profile) {
	s.mu.Lock()
	prev := s.snap.Profile
	cp := p
	s.snap.Profile = &cp
	s.topic.Publish(SessionSnapshot{Profile: &p})
	s.mu.Unlock()

	if prev == nil || prev.ZodiacSign != p.ZodiacSign {
		if err := s.Advice.SetSign(string(p.ZodiacSign)); err != nil {
			logger.Warn("profile has an unknown zodiac sign", "uid", p.UID, "sign", p.ZodiacSign, "error", err)
		}
	}
}

// Clear signs out and resets every holder to its empty state.
func (s *Session) Clear() {
	s.Calendar.Clear()
	s.Advice.Clear()
	s.Notes.Clear()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = SessionSnapshot{}
	s.topic.Publish(SessionSnapshot{})
}
