package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/moonlit/internal/auth"
	"github.com/julianstephens/moonlit/internal/constants"
	"github.com/julianstephens/moonlit/internal/errors"
	"github.com/julianstephens/moonlit/internal/models"
	"github.com/julianstephens/moonlit/internal/state"
	"github.com/julianstephens/moonlit/internal/tui/components/monthgrid"
	"github.com/julianstephens/moonlit/internal/tui/components/notelist"
	"github.com/julianstephens/moonlit/internal/validation"
)

const tabCount = 4

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.grid.SetSize(msg.Width, msg.Height-4)
		m.noteList.SetSize(msg.Width-4, max(msg.Height-14, 4))
		return m, nil

	case calendarMsg:
		m.calendar = msg.snap
		m.grid.SetSnapshot(msg.snap)
		if n := len(m.calendar.MoonList); m.favCursor >= n {
			m.favCursor = max(n-1, 0)
		}
		return m, listen(m.calendarCh, func(s state.CalendarSnapshot) tea.Msg { return calendarMsg{s} })

	case adviceMsg:
		m.advice = msg.snap
		return m, listen(m.adviceCh, func(s state.AdviceSnapshot) tea.Msg { return adviceMsg{s} })

	case notesMsg:
		m.notes = msg.snap
		m.noteList.SetNotes(msg.snap.Notes)
		return m, listen(m.notesCh, func(s state.NotesSnapshot) tea.Msg { return notesMsg{s} })

	case sessionMsg:
		m.profile = msg.snap.Profile
		return m, listen(m.sessionCh, func(s state.SessionSnapshot) tea.Msg { return sessionMsg{s} })

	case signedInMsg:
		p := msg.profile
		m.profile = &p
		m.setStatus(msg.status)
		cmds := []tea.Cmd{m.selectMonth(m.displayedMonth())}
		if m.calendar.Selected != "" {
			cmds = append(cmds, m.openDay(m.calendar.Selected))
		}
		return m, tea.Batch(cmds...)

	case signedOutMsg:
		m.profile = nil
		m.setStatus(msg.status)
		return m, m.selectMonth(m.displayedMonth())

	case doneMsg:
		if msg.err != nil {
			m.err = msg.err
			m.status = ""
		} else if msg.status != "" {
			m.setStatus(msg.status)
		}
		return m, nil

	case monthgrid.MonthMsg:
		return m, m.selectMonth(msg.Month)

	case monthgrid.OpenDayMsg:
		m.state = constants.StateDay
		return m, m.openDay(msg.Date)

	case monthgrid.ToggleFavoriteMsg:
		return m, m.toggleFavorite(msg.Date)

	case monthgrid.ToggleMoonListMsg:
		r, ok := m.calendar.Record(msg.Date)
		if !ok {
			m.err = errors.Ef("tui.MoonList", errors.KindNotFound, "no phase data for %s", msg.Date)
			return m, nil
		}
		if m.session.Calendar.ToggleMoonList(r) {
			m.setStatus("Added " + msg.Date + " to the moon list")
		} else {
			m.setStatus("Removed " + msg.Date + " from the moon list")
		}
		return m, nil

	case notelist.AddNoteMsg:
		return m.openNoteForm(nil)

	case notelist.EditNoteMsg:
		n := msg.Note
		return m.openNoteForm(&n)

	case notelist.DeleteNoteMsg:
		m.deletingID = msg.ID
		m.previousState = m.state
		m.state = constants.StateConfirmDelete
		return m, nil
	}

	if m.form != nil {
		return m.updateForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.state == constants.StateDay {
			var cmd tea.Cmd
			m.noteList, cmd = m.noteList.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if m.state == constants.StateConfirmDelete {
		return m.updateConfirmDelete(keyMsg)
	}

	// The filter input receives every key while it has focus
	if m.state == constants.StateDay && m.noteList.Filtering() {
		var cmd tea.Cmd
		m.noteList, cmd = m.noteList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.quitting = true
		m.cancel()
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(keyMsg, m.keys.Tab):
		return m.switchTab((m.state + 1) % tabCount)
	case key.Matches(keyMsg, m.keys.ShiftTab):
		return m.switchTab((m.state - 1 + tabCount) % tabCount)
	case key.Matches(keyMsg, m.keys.Login):
		if m.profile == nil {
			return m.openLoginForm()
		}
	case key.Matches(keyMsg, m.keys.Register):
		if m.profile == nil {
			return m.openRegisterForm()
		}
	case key.Matches(keyMsg, m.keys.Logout):
		if m.profile != nil {
			return m, m.logout()
		}
	}

	switch m.state {
	case constants.StateCalendar:
		var cmd tea.Cmd
		m.grid, cmd = m.grid.Update(msg)
		return m, cmd
	case constants.StateDay:
		return m.updateDay(keyMsg)
	case constants.StateAdvice:
		return m.updateAdvice(keyMsg)
	case constants.StateFavorites:
		return m.updateFavorites(keyMsg)
	}
	return m, nil
}

func (m *Model) setStatus(status string) {
	m.status = status
	m.err = nil
}

// displayedMonth is the month on screen, or the cursor's month after a reset.
func (m Model) displayedMonth() models.YearMonth {
	if !m.calendar.Month.IsZero() {
		return m.calendar.Month
	}
	if t, err := time.Parse(constants.DateFormat, m.grid.Cursor()); err == nil {
		return models.NewYearMonth(t)
	}
	return models.NewYearMonth(time.Now())
}

func (m Model) switchTab(next constants.SessionState) (tea.Model, tea.Cmd) {
	m.state = next
	m.err = nil
	if next == constants.StateDay && m.calendar.Selected == "" {
		return m, m.openDay(m.grid.Cursor())
	}
	return m, nil
}

func (m Model) updateDay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.state = constants.StateCalendar
		return m, nil
	case key.Matches(msg, m.keys.Favorite):
		if m.calendar.Selected != "" {
			return m, m.toggleFavorite(m.calendar.Selected)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.noteList, cmd = m.noteList.Update(msg)
	return m, cmd
}

func (m Model) updateAdvice(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Daily):
		return m, m.fetchAdvice(models.GranularityDaily)
	case key.Matches(msg, m.keys.Weekly):
		return m, m.fetchAdvice(models.GranularityWeekly)
	case key.Matches(msg, m.keys.Monthly):
		return m, m.fetchAdvice(models.GranularityMonthly)
	}
	return m, nil
}

func (m Model) updateFavorites(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.calendar.MoonList)
	switch msg.String() {
	case "up", "k":
		if m.favCursor > 0 {
			m.favCursor--
		}
	case "down", "j":
		if m.favCursor < n-1 {
			m.favCursor++
		}
	case "x":
		if m.favCursor < n {
			date := m.calendar.MoonList[m.favCursor].Date
			m.session.Calendar.RemoveFromMoonList(date)
			m.setStatus("Removed " + date + " from the moon list")
		}
	}
	return m, nil
}

func (m Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		id := m.deletingID
		m.deletingID = ""
		m.state = m.previousState
		return m, m.deleteNote(id)
	case key.Matches(msg, m.keys.Cancel):
		m.deletingID = ""
		m.state = m.previousState
	}
	return m, nil
}

func (m Model) openNoteForm(editing *models.Note) (tea.Model, tea.Cmd) {
	if m.profile == nil {
		m.err = errors.Ef("tui.Notes", errors.KindAuth, "not signed in")
		return m, nil
	}
	m.noteForm = &NoteFormModel{}
	m.editingNote = editing
	title := "New note for " + m.notes.Date
	if editing != nil {
		m.noteForm.Content = editing.Content
		title = "Edit note"
	}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title(title).
				Value(&m.noteForm.Content).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("note cannot be empty")
					}
					return nil
				}),
		),
	)
	m.previousState = m.state
	m.state = constants.StateNoteForm
	return m, m.form.Init()
}

func (m Model) openLoginForm() (tea.Model, tea.Cmd) {
	m.loginForm = &LoginFormModel{}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&m.loginForm.Email),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.loginForm.Password),
		),
	)
	m.previousState = m.state
	m.state = constants.StateLogin
	return m, m.form.Init()
}

func (m Model) openRegisterForm() (tea.Model, tea.Cmd) {
	m.registerForm = &RegisterFormModel{}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&m.registerForm.Email),
			huh.NewInput().
				Title("Password").
				Description("At least 8 characters").
				EchoMode(huh.EchoModePassword).
				Value(&m.registerForm.Password),
			huh.NewInput().
				Title("Birthdate").
				Placeholder("YYYY-MM-DD").
				Value(&m.registerForm.Birthdate).
				Validate(validation.ValidateDate),
		),
	)
	m.previousState = m.state
	m.state = constants.StateRegister
	return m, m.form.Init()
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
		return m.closeForm(), nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m.submitForm()
	case huh.StateAborted:
		return m.closeForm(), nil
	}
	return m, cmd
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.state {
	case constants.StateNoteForm:
		cmd = m.saveNote(m.editingNote, strings.TrimSpace(m.noteForm.Content))
	case constants.StateLogin:
		cmd = m.login(auth.LoginInput{Email: strings.TrimSpace(m.loginForm.Email), Password: m.loginForm.Password})
	case constants.StateRegister:
		cmd = m.register(auth.RegisterInput{
			Email:     strings.TrimSpace(m.registerForm.Email),
			Password:  m.registerForm.Password,
			Birthdate: strings.TrimSpace(m.registerForm.Birthdate),
		})
	}
	return m.closeForm(), cmd
}

func (m Model) closeForm() Model {
	m.form = nil
	m.noteForm = nil
	m.loginForm = nil
	m.registerForm = nil
	m.editingNote = nil
	m.state = m.previousState
	return m
}
