package notelist

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/moonlit/internal/models"
)

type AddNoteMsg struct{}

type DeleteNoteMsg struct {
	ID string
}

type EditNoteMsg struct {
	Note models.Note
}

type Item struct {
	Note models.Note
}

func (i Item) Title() string {
	first, _, _ := strings.Cut(i.Note.Content, "\n")
	return first
}

func (i Item) Description() string {
	desc := i.Note.CreatedAt.Local().Format("Jan 2 15:04")
	if !i.Note.UpdatedAt.Equal(i.Note.CreatedAt) {
		desc += " | edited " + i.Note.UpdatedAt.Local().Format("Jan 2 15:04")
	}
	return desc
}

func (i Item) FilterValue() string { return i.Note.Content }

type KeyMap struct {
	Add    key.Binding
	Edit   key.Binding
	Delete key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add note"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit note"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete note"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(notes []models.Note, width, height int) Model {
	l := list.New(items(notes), list.NewDefaultDelegate(), width, height)
	l.Title = "Notes"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Edit, keys.Delete}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Edit, keys.Delete}
	}

	return Model{list: l, keys: keys}
}

func items(notes []models.Note) []list.Item {
	out := make([]list.Item, len(notes))
	for i, n := range notes {
		out[i] = Item{Note: n}
	}
	return out
}

func (m *Model) SetNotes(notes []models.Note) {
	m.list.SetItems(items(notes))
}

func (m Model) Len() int { return len(m.list.Items()) }

func (m Model) Keys() KeyMap { return m.keys }

// Filtering reports whether the filter input has focus.
func (m Model) Filtering() bool { return m.list.FilterState() == list.Filtering }

// Selected returns the note under the cursor.
func (m Model) Selected() (models.Note, bool) {
	i, ok := m.list.SelectedItem().(Item)
	return i.Note, ok
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddNoteMsg{} }
		case key.Matches(msg, m.keys.Edit):
			if n, ok := m.Selected(); ok {
				return m, func() tea.Msg { return EditNoteMsg{Note: n} }
			}
		case key.Matches(msg, m.keys.Delete):
			if n, ok := m.Selected(); ok {
				return m, func() tea.Msg { return DeleteNoteMsg{ID: n.ID} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No notes for this day.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
