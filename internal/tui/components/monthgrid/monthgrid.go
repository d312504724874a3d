// Package monthgrid renders one month of moon phases as a weekday grid with a
// day cursor.
package monthgrid

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/moonlit/internal/constants"
	"github.com/julianstephens/moonlit/internal/models"
	"github.com/julianstephens/moonlit/internal/state"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252"))

	weekdayStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	cellStyle = lipgloss.NewStyle().
			Width(7)

	cursorStyle = lipgloss.NewStyle().
			Width(7).
			Reverse(true)

	savedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// MonthMsg asks for another month to be shown.
type MonthMsg struct {
	Month models.YearMonth
}

// OpenDayMsg asks for the day view of Date.
type OpenDayMsg struct {
	Date string
}

// ToggleFavoriteMsg flips Date in the saved days.
type ToggleFavoriteMsg struct {
	Date string
}

// ToggleMoonListMsg flips Date in the session moon list.
type ToggleMoonListMsg struct {
	Date string
}

type KeyMap struct {
	Left      key.Binding
	Right     key.Binding
	Up        key.Binding
	Down      key.Binding
	PrevMonth key.Binding
	NextMonth key.Binding
	Today     key.Binding
	Open      key.Binding
	Favorite  key.Binding
	MoonList  key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev day"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next day"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "prev week"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next week"),
		),
		PrevMonth: key.NewBinding(
			key.WithKeys("p", "["),
			key.WithHelp("p", "prev month"),
		),
		NextMonth: key.NewBinding(
			key.WithKeys("n", "]"),
			key.WithHelp("n", "next month"),
		),
		Today: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "today"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open day"),
		),
		Favorite: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "favorite"),
		),
		MoonList: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "moon list"),
		),
	}
}

func (k KeyMap) Bindings() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Up, k.Down, k.PrevMonth, k.NextMonth, k.Today, k.Open, k.Favorite, k.MoonList}
}

type Model struct {
	snap   state.CalendarSnapshot
	cursor time.Time
	keys   KeyMap
	width  int
	height int
}

func New(width, height int) Model {
	now := time.Now()
	return Model{
		cursor: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		keys:   DefaultKeyMap(),
		width:  width,
		height: height,
	}
}

func (m Model) Keys() KeyMap { return m.keys }

// SetSnapshot replaces the displayed month. The cursor stays on its day when
// the month still contains it and otherwise moves to the first of the month.
func (m *Model) SetSnapshot(snap state.CalendarSnapshot) {
	m.snap = snap
	if snap.Month.IsZero() || snap.Month.Contains(m.Cursor()) {
		return
	}
	m.cursor = snap.Month.Day(1)
}

// Cursor returns the date under the cursor as YYYY-MM-DD.
func (m Model) Cursor() string {
	return m.cursor.Format(constants.DateFormat)
}

// SetCursor moves the cursor to date.
func (m *Model) SetCursor(date string) error {
	t, err := time.Parse(constants.DateFormat, date)
	if err != nil {
		return err
	}
	m.cursor = t
	return nil
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Left):
		return m.move(0, -1)
	case key.Matches(keyMsg, m.keys.Right):
		return m.move(0, 1)
	case key.Matches(keyMsg, m.keys.Up):
		return m.move(0, -7)
	case key.Matches(keyMsg, m.keys.Down):
		return m.move(0, 7)
	case key.Matches(keyMsg, m.keys.PrevMonth):
		return m.move(-1, 0)
	case key.Matches(keyMsg, m.keys.NextMonth):
		return m.move(1, 0)
	case key.Matches(keyMsg, m.keys.Today):
		now := time.Now()
		return m.jump(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC))
	case key.Matches(keyMsg, m.keys.Open):
		date := m.Cursor()
		return m, func() tea.Msg { return OpenDayMsg{Date: date} }
	case key.Matches(keyMsg, m.keys.Favorite):
		date := m.Cursor()
		return m, func() tea.Msg { return ToggleFavoriteMsg{Date: date} }
	case key.Matches(keyMsg, m.keys.MoonList):
		date := m.Cursor()
		return m, func() tea.Msg { return ToggleMoonListMsg{Date: date} }
	}
	return m, nil
}

func (m Model) move(months, days int) (Model, tea.Cmd) {
	if months != 0 {
		// Clamp to the last day so Jan 31 moves to the end of February
		first := time.Date(m.cursor.Year(), m.cursor.Month()+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
		ym := models.NewYearMonth(first)
		return m.jump(ym.Day(min(m.cursor.Day(), ym.DaysIn())))
	}
	return m.jump(m.cursor.AddDate(0, 0, days))
}

func (m Model) jump(t time.Time) (Model, tea.Cmd) {
	m.cursor = t
	ym := models.NewYearMonth(t)
	if ym == m.snap.Month {
		return m, nil
	}
	return m, func() tea.Msg { return MonthMsg{Month: ym} }
}

func (m Model) View() string {
	ym := m.snap.Month
	if ym.IsZero() {
		return statusStyle.Render("No month selected.")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(ym.Day(1).Format("January 2006")))
	if m.snap.Loading {
		b.WriteString(statusStyle.Render("  loading…"))
	}
	b.WriteString("\n\n")

	var header []string
	for _, d := range []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"} {
		header = append(header, cellStyle.Render(weekdayStyle.Render(d)))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, header...))
	b.WriteString("\n")

	offset := int(ym.Day(1).Weekday())
	var row []string
	for i := 0; i < offset; i++ {
		row = append(row, cellStyle.Render(""))
	}
	for day := 1; day <= ym.DaysIn(); day++ {
		row = append(row, m.cell(ym.Date(day), day))
		if len(row) == 7 {
			b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, row...))
			b.WriteString("\n")
			row = row[:0]
		}
	}
	if len(row) > 0 {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, row...))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.footer())
	return b.String()
}

func (m Model) cell(date string, day int) string {
	glyph := " "
	if r, ok := m.snap.Record(date); ok {
		glyph = r.Glyph()
	}
	marks := ""
	if m.snap.IsSaved(date) {
		marks += savedStyle.Render("*")
	}
	if m.snap.HasNotes(date) {
		marks += "+"
	}
	text := fmt.Sprintf("%2d %s%s", day, glyph, marks)
	if date == m.Cursor() {
		return cursorStyle.Render(text)
	}
	return cellStyle.Render(text)
}

func (m Model) footer() string {
	date := m.Cursor()
	r, ok := m.snap.Record(date)
	if !ok {
		if m.snap.Err != nil {
			return statusStyle.Render(fmt.Sprintf("%s  no phase data", date))
		}
		return statusStyle.Render(date)
	}
	line := fmt.Sprintf("%s  %s %s  %d%% illuminated", date, r.Glyph(), r.Phase, r.IlluminationPercent())
	if m.snap.InMoonList(date) {
		line += "  (moon list)"
	}
	return statusStyle.Render(line)
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
