package state

import (
	"context"
	"sync"

	"github.com/julianstephens/moonlit/internal/errors"
	"github.com/julianstephens/moonlit/internal/horoscope"
	"github.com/julianstephens/moonlit/internal/models"
	"github.com/julianstephens/moonlit/internal/pubsub"
)

// AdviceSource fetches one horoscope reading per call.
type AdviceSource interface {
	Fetch(ctx context.Context, sign models.ZodiacSign, g models.Granularity, day string) (models.Advice, error)
}

// AdviceSnapshot holds at most one of the daily, weekly and monthly readings.
type AdviceSnapshot struct {
	Sign    models.ZodiacSign
	Daily   *models.Advice
	Weekly  *models.Advice
	Monthly *models.Advice
	Loading bool
	// Message is the text to display for the last request, or "advice
	// unavailable" when it failed.
	Message string
	Err     error
}

// Active returns the reading that is currently set, if any.
func (s AdviceSnapshot) Active() *models.Advice {
	switch {
	case s.Daily != nil:
		return s.Daily
	case s.Weekly != nil:
		return s.Weekly
	default:
		return s.Monthly
	}
}

type Advice struct {
	mu     sync.Mutex
	snap   AdviceSnapshot
	source AdviceSource
	fetch  slot
	topic  *pubsub.Topic[AdviceSnapshot]
}

func NewAdvice(source AdviceSource) *Advice {
	return &Advice{source: source, topic: pubsub.NewTopic(AdviceSnapshot{})}
}

func (a *Advice) Current() AdviceSnapshot { return a.topic.Current() }

func (a *Advice) Subscribe(ctx context.Context) <-chan AdviceSnapshot {
	return a.topic.Subscribe(ctx)
}

func (a *Advice) publishLocked() {
	s := a.snap
	s.Daily = cloneAdvice(s.Daily)
	s.Weekly = cloneAdvice(s.Weekly)
	s.Monthly = cloneAdvice(s.Monthly)
	a.topic.Publish(s)
}

func cloneAdvice(p *models.Advice) *models.Advice {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// SetSign selects the sign used by later fetches. Readings for the previous
// sign are dropped.
func (a *Advice) SetSign(sign string) error {
	parsed, err := models.ParseZodiacSign(sign)
	if err != nil {
		return errors.E("state.SetSign", errors.KindInvalidInput, err)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if parsed != a.snap.Sign {
		a.fetch.stop()
		a.snap = AdviceSnapshot{Sign: parsed}
	}
	a.publishLocked()
	return nil
}

// FetchDaily loads the daily reading for day (TODAY, TOMORROW, YESTERDAY or a date).
func (a *Advice) FetchDaily(ctx context.Context, day string) (models.Advice, error) {
	return a.load(ctx, models.GranularityDaily, day)
}

func (a *Advice) FetchWeekly(ctx context.Context) (models.Advice, error) {
	return a.load(ctx, models.GranularityWeekly, "")
}

func (a *Advice) FetchMonthly(ctx context.Context) (models.Advice, error) {
	return a.load(ctx, models.GranularityMonthly, "")
}

// load clears all three readings before fetching, so only one is ever shown.
func (a *Advice) load(ctx context.Context, g models.Granularity, day string) (models.Advice, error) {
	a.mu.Lock()
	sign := a.snap.Sign
	if sign == "" {
		a.mu.Unlock()
		return models.Advice{}, errors.Ef("state.FetchAdvice", errors.KindInvalidInput, "no zodiac sign selected")
	}
	ctx, gen := a.fetch.start(ctx)
	a.snap.Daily, a.snap.Weekly, a.snap.Monthly = nil, nil, nil
	a.snap.Loading = true
	a.snap.Message = ""
	a.snap.Err = nil
	a.publishLocked()
	a.mu.Unlock()

	advice, err := a.source.Fetch(ctx, sign, g, day)

	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.fetch.done(gen) {
		return models.Advice{}, ErrStale
	}
	a.snap.Loading = false
	a.snap.Message = horoscope.Message(advice, err)
	a.snap.Err = err
	if err == nil {
		switch g {
		case models.GranularityDaily:
			a.snap.Daily = &advice
		case models.GranularityWeekly:
			a.snap.Weekly = &advice
		case models.GranularityMonthly:
			a.snap.Monthly = &advice
		}
	}
	a.publishLocked()
	return advice, err
}

// Clear cancels any in-flight fetch and resets every field, including the sign.
func (a *Advice) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fetch.stop()
	a.snap = AdviceSnapshot{}
	a.publishLocked()
}
