// Package tui is the interactive terminal front end. Every view renders the
// latest snapshot published by the session's state holders, and every action
// runs as a command that reports back through a message.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/moonlit/internal/auth"
	"github.com/julianstephens/moonlit/internal/constants"
	"github.com/julianstephens/moonlit/internal/models"
	"github.com/julianstephens/moonlit/internal/state"
	"github.com/julianstephens/moonlit/internal/tui/components/monthgrid"
	"github.com/julianstephens/moonlit/internal/tui/components/notelist"
)

// Accounts signs users in and out.
type Accounts interface {
	Current(ctx context.Context) (models.Profile, error)
	Login(ctx context.Context, in auth.LoginInput) (models.Profile, error)
	Register(ctx context.Context, in auth.RegisterInput) (models.Profile, error)
	Logout() error
}

type NoteFormModel struct {
	Content string
}

type LoginFormModel struct {
	Email    string
	Password string
}

type RegisterFormModel struct {
	Email     string
	Password  string
	Birthdate string
}

type Model struct {
	session  *state.Session
	accounts Accounts
	ctx      context.Context
	cancel   context.CancelFunc

	calendarCh <-chan state.CalendarSnapshot
	adviceCh   <-chan state.AdviceSnapshot
	notesCh    <-chan state.NotesSnapshot
	sessionCh  <-chan state.SessionSnapshot

	calendar state.CalendarSnapshot
	advice   state.AdviceSnapshot
	notes    state.NotesSnapshot
	profile  *models.Profile

	state         constants.SessionState
	previousState constants.SessionState
	keys          KeyMap
	help          help.Model
	grid          monthgrid.Model
	noteList      notelist.Model

	form         *huh.Form
	noteForm     *NoteFormModel
	loginForm    *LoginFormModel
	registerForm *RegisterFormModel
	editingNote  *models.Note
	deletingID   string
	favCursor    int

	status   string
	err      error
	quitting bool
	width    int
	height   int
}

// NewModel subscribes to every holder of session. Close releases the
// subscriptions once the program has exited.
func NewModel(session *state.Session, accounts Accounts) Model {
	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		session:    session,
		accounts:   accounts,
		ctx:        ctx,
		cancel:     cancel,
		calendarCh: session.Calendar.Subscribe(ctx),
		adviceCh:   session.Advice.Subscribe(ctx),
		notesCh:    session.Notes.Subscribe(ctx),
		sessionCh:  session.Subscribe(ctx),
		state:      constants.StateCalendar,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		grid:       monthgrid.New(0, 0),
		noteList:   notelist.New(nil, 0, 0),
	}
}

// Close cancels in-flight work and ends the subscriptions.
func (m Model) Close() {
	m.cancel()
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		listen(m.calendarCh, func(s state.CalendarSnapshot) tea.Msg { return calendarMsg{s} }),
		listen(m.adviceCh, func(s state.AdviceSnapshot) tea.Msg { return adviceMsg{s} }),
		listen(m.notesCh, func(s state.NotesSnapshot) tea.Msg { return notesMsg{s} }),
		listen(m.sessionCh, func(s state.SessionSnapshot) tea.Msg { return sessionMsg{s} }),
		m.restoreSession(),
		m.selectMonth(models.NewYearMonth(time.Now())),
	)
}

type calendarMsg struct{ snap state.CalendarSnapshot }

type adviceMsg struct{ snap state.AdviceSnapshot }

type notesMsg struct{ snap state.NotesSnapshot }

type sessionMsg struct{ snap state.SessionSnapshot }

// signedInMsg reports a completed login, registration or restored session.
type signedInMsg struct {
	profile models.Profile
	status  string
}

type signedOutMsg struct {
	status string
}

// doneMsg reports the outcome of an action. A nil err with an empty status
// changes nothing on screen.
type doneMsg struct {
	status string
	err    error
}

// listen waits for the next snapshot on ch. The model re-issues it after
// every delivery; a closed channel ends the loop.
func listen[T any](ch <-chan T, wrap func(T) tea.Msg) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return wrap(s)
	}
}
