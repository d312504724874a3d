package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/moonlit/internal/auth"
	"github.com/julianstephens/moonlit/internal/constants"
	"github.com/julianstephens/moonlit/internal/errors"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string

	switch m.state {
	case constants.StateCalendar:
		content = m.viewCalendar()
	case constants.StateDay:
		content = m.viewDay()
	case constants.StateAdvice:
		content = m.viewAdvice()
	case constants.StateFavorites:
		content = m.viewFavorites()
	case constants.StateNoteForm, constants.StateLogin, constants.StateRegister:
		if m.form != nil {
			content = docStyle.Render(m.form.View())
		}
	case constants.StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		m.viewStatus(),
		m.help.View(m.keys),
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range []string{"Calendar", "Day", "Advice", "Favorites"} {
		if m.state == constants.SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}

	user := mutedStyle.Render("not signed in · L log in · R register")
	if m.profile != nil {
		user = fmt.Sprintf("%s (%s)", m.profile.Email, m.profile.ZodiacSign)
	}
	tabs = append(tabs, userStyle.Render(user))
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewStatus() string {
	switch {
	case m.err != nil:
		return docStyle.Render(dangerStyle.Render("❌ " + m.describe(m.err)))
	case m.status != "":
		return docStyle.Render(successStyle.Render(m.status))
	}
	return ""
}

// describe turns an error into a line for the status bar.
func (m Model) describe(err error) string {
	if errors.IsKind(err, errors.KindAuth) && !errors.Is(err, auth.ErrInvalidCredentials) {
		return "not signed in: press L to log in"
	}
	return errors.UserMessage(err)
}

func (m Model) viewCalendar() string {
	view := m.grid.View()
	if m.calendar.Err != nil && !m.calendar.Loading {
		view += "\n" + warningStyle.Render("⚠ "+errors.UserMessage(m.calendar.Err))
	}
	return docStyle.Render(view)
}

func (m Model) viewDay() string {
	date := m.calendar.Selected
	if date == "" {
		return docStyle.Render(mutedStyle.Render("No day selected. Press enter on a calendar day."))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(date))
	if m.calendar.IsSaved(date) {
		b.WriteString("  ★")
	}
	b.WriteString("\n")
	if r, ok := m.calendar.Record(date); ok {
		fmt.Fprintf(&b, "%s %s, %d%% illuminated\n", r.Glyph(), r.Phase, r.IlluminationPercent())
		if r.Mood != nil {
			fmt.Fprintf(&b, "Mood: %s\n", *r.Mood)
		}
		if r.Advice != nil {
			fmt.Fprintf(&b, "%s\n", *r.Advice)
		}
	} else {
		b.WriteString(mutedStyle.Render("No phase data for this day.") + "\n")
	}
	b.WriteString("\n")

	if m.profile == nil {
		b.WriteString(mutedStyle.Render("Log in to keep notes for this day."))
		return docStyle.Render(b.String())
	}
	if m.notes.Offline {
		b.WriteString(warningStyle.Render("⚠ Offline: showing the local copy of your notes") + "\n")
	}
	if m.notes.Loading {
		b.WriteString(mutedStyle.Render("loading notes…") + "\n")
	}
	b.WriteString(m.noteList.View())
	return docStyle.Render(b.String())
}

func (m Model) viewAdvice() string {
	var b strings.Builder
	sign := string(m.advice.Sign)
	if sign == "" {
		sign = "no sign"
	}
	b.WriteString(titleStyle.Render("Horoscope for "+sign) + "\n")
	b.WriteString(mutedStyle.Render("d daily · w weekly · m monthly") + "\n\n")

	switch {
	case m.advice.Loading:
		b.WriteString(mutedStyle.Render("loading…"))
	case m.advice.Active() != nil:
		a := m.advice.Active()
		fmt.Fprintf(&b, "%s reading for %s\n\n%s", a.Granularity, a.Period, a.Text)
	case m.advice.Message != "":
		b.WriteString(warningStyle.Render(m.advice.Message))
	default:
		b.WriteString(mutedStyle.Render("Pick a reading."))
	}
	return docStyle.Render(b.String())
}

func (m Model) viewFavorites() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Saved days") + "\n")
	if m.profile == nil {
		b.WriteString(mutedStyle.Render("Log in to save days.") + "\n")
	} else if len(m.calendar.SavedDays) == 0 {
		b.WriteString(mutedStyle.Render("No saved days yet. Press f on a calendar day.") + "\n")
	} else {
		days := slices.Clone(m.calendar.SavedDays)
		slices.Sort(days)
		for _, d := range days {
			line := "★ " + d
			if r, ok := m.calendar.All[d]; ok {
				line += fmt.Sprintf("  %s %s", r.Glyph(), r.Phase)
			}
			b.WriteString(line + "\n")
		}
	}

	b.WriteString("\n" + titleStyle.Render("Moon list") + "\n")
	if len(m.calendar.MoonList) == 0 {
		b.WriteString(mutedStyle.Render("Empty. Press m on a calendar day to add it."))
		return docStyle.Render(b.String())
	}
	for i, r := range m.calendar.MoonList {
		cursor := "  "
		if i == m.favCursor {
			cursor = "> "
		}
		fmt.Fprintf(&b, "%s%s  %s %-16s %3d%%\n", cursor, r.Date, r.Glyph(), r.Phase, r.IlluminationPercent())
	}
	b.WriteString(mutedStyle.Render("x remove"))
	return docStyle.Render(b.String())
}

func (m Model) viewConfirmDelete() string {
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render("Are you sure you want to delete this note?"),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
