package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/moonlit/internal/auth"
	"github.com/julianstephens/moonlit/internal/errors"
	"github.com/julianstephens/moonlit/internal/logger"
	"github.com/julianstephens/moonlit/internal/models"
	"github.com/julianstephens/moonlit/internal/state"
)

func (m Model) restoreSession() tea.Cmd {
	return func() tea.Msg {
		p, err := m.accounts.Current(m.ctx)
		if err != nil {
			if errors.IsKind(err, errors.KindAuth) {
				return signedOutMsg{}
			}
			return doneMsg{err: err}
		}
		return m.signIn(p, "")
	}
}

func (m Model) login(in auth.LoginInput) tea.Cmd {
	return func() tea.Msg {
		p, err := m.accounts.Login(m.ctx, in)
		if err != nil {
			return doneMsg{err: err}
		}
		return m.signIn(p, "Signed in as "+p.Email)
	}
}

func (m Model) register(in auth.RegisterInput) tea.Cmd {
	return func() tea.Msg {
		p, err := m.accounts.Register(m.ctx, in)
		if err != nil {
			return doneMsg{err: err}
		}
		return m.signIn(p, fmt.Sprintf("Welcome, %s (%s)", p.Email, p.ZodiacSign))
	}
}

// signIn scopes the session to p. Saved days that fail to load are logged and
// the user stays signed in.
func (m Model) signIn(p models.Profile, status string) tea.Msg {
	if err := m.session.SignIn(m.ctx, p); err != nil {
		logger.Warn("failed to load saved days", "uid", p.UID, "error", err)
	}
	return signedInMsg{profile: p, status: status}
}

func (m Model) logout() tea.Cmd {
	return func() tea.Msg {
		if err := m.accounts.Logout(); err != nil {
			return doneMsg{err: err}
		}
		m.session.Clear()
		return signedOutMsg{status: "Signed out"}
	}
}

func (m Model) selectMonth(ym models.YearMonth) tea.Cmd {
	return func() tea.Msg {
		err := m.session.Calendar.SelectMonth(m.ctx, ym)
		if errors.Is(err, state.ErrStale) {
			return doneMsg{}
		}
		if _, ok := m.session.Profile(); ok {
			if merr := m.session.Notes.LoadMonth(m.ctx, ym); merr != nil && !errors.Is(merr, state.ErrStale) {
				logger.Warn("failed to load note markers", "month", ym.String(), "error", merr)
			}
		}
		return doneMsg{err: err}
	}
}

func (m Model) openDay(date string) tea.Cmd {
	return func() tea.Msg {
		if err := m.session.Calendar.SelectDate(date); err != nil {
			return doneMsg{err: err}
		}
		if _, ok := m.session.Profile(); !ok {
			return doneMsg{}
		}
		err := m.session.Notes.Load(m.ctx, date)
		if errors.Is(err, state.ErrStale) {
			err = nil
		}
		return doneMsg{err: err}
	}
}

func (m Model) toggleFavorite(date string) tea.Cmd {
	return func() tea.Msg {
		saved, err := m.session.Calendar.ToggleFavorite(m.ctx, date)
		if err != nil {
			return failed(err)
		}
		if saved {
			return doneMsg{status: "★ Saved " + date}
		}
		return doneMsg{status: "Removed " + date + " from saved days"}
	}
}

func (m Model) fetchAdvice(g models.Granularity) tea.Cmd {
	return func() tea.Msg {
		var err error
		switch g {
		case models.GranularityDaily:
			_, err = m.session.Advice.FetchDaily(m.ctx, m.dayForAdvice())
		case models.GranularityWeekly:
			_, err = m.session.Advice.FetchWeekly(m.ctx)
		default:
			_, err = m.session.Advice.FetchMonthly(m.ctx)
		}
		// Fetch failures are shown through the snapshot message
		if err != nil && !errors.IsKind(err, errors.KindInvalidInput) {
			err = nil
		}
		return doneMsg{err: err}
	}
}

func (m Model) dayForAdvice() string {
	if m.calendar.Selected != "" {
		return m.calendar.Selected
	}
	return m.grid.Cursor()
}

func (m Model) saveNote(editing *models.Note, content string) tea.Cmd {
	return func() tea.Msg {
		if editing != nil {
			if err := m.session.Notes.Update(m.ctx, editing.ID, content); err != nil {
				return failed(err)
			}
			return doneMsg{status: "✓ Note updated"}
		}
		if err := m.session.Notes.Add(m.ctx, content); err != nil {
			return failed(err)
		}
		return doneMsg{status: "✓ Note added"}
	}
}

func (m Model) deleteNote(id string) tea.Cmd {
	return func() tea.Msg {
		if err := m.session.Notes.Delete(m.ctx, id); err != nil {
			return failed(err)
		}
		return doneMsg{status: "✓ Note deleted"}
	}
}

// failed reports err unless the write finished after a sign-out.
func failed(err error) doneMsg {
	if errors.Is(err, state.ErrStale) {
		return doneMsg{}
	}
	return doneMsg{err: err}
}
