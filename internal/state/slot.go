// Package state holds what the terminal UI and CLI display. Each holder guards
// its fields with a mutex and publishes immutable snapshots to subscribers.
package state

import (
	"context"

	"github.com/julianstephens/moonlit/internal/errors"
)

// ErrStale is returned when a newer request for the same slot replaced this one
// before it finished. Its result was dropped.
var ErrStale = errors.New("request superseded")

// slot tracks the in-flight request of one kind. Starting a request cancels the
// previous one. Callers hold the owning holder's mutex.
type slot struct {
	cancel context.CancelFunc
	gen    uint64
}

func (s *slot) start(parent context.Context) (context.Context, uint64) {
	s.stop()
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	s.gen++
	return ctx, s.gen
}

// done releases the request's context if it is still the current one and
// reports whether its result should be kept.
func (s *slot) done(gen uint64) bool {
	if gen != s.gen {
		return false
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	return true
}

func (s *slot) stop() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
}

func uidRequired(op, uid string) error {
	if uid == "" {
		return errors.Ef(op, errors.KindAuth, "not signed in")
	}
	return nil
}
