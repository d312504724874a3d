package notes

import (
	"context"
	"strings"

	"github.com/julianstephens/moonlit/internal/cli"
	"github.com/julianstephens/moonlit/internal/errors"
	"github.com/julianstephens/moonlit/internal/models"
)

type NotesCmd struct {
	List   NoteListCmd   `cmd:"" default:"withargs" help:"List the notes of a day."`
	Add    NoteAddCmd    `cmd:"" help:"Add a note to a day."`
	Edit   NoteEditCmd   `cmd:"" help:"Replace the content of a note."`
	Delete NoteDeleteCmd `cmd:"" help:"Delete a note."`
	Month  NoteMonthCmd  `cmd:"" help:"List the days of a month that have notes."`
}

type NoteListCmd struct {
	Date string `arg:"" optional:"" default:"today" help:"Date (YYYY-MM-DD, today, tomorrow or yesterday)."`
}

func (c *NoteListCmd) Run(ctx *cli.Context) error {
	date, err := cli.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	return ctx.WithUser(func(reqCtx context.Context, p models.Profile) error {
		notes, err := ctx.Sync.FetchNotes(reqCtx, p.UID, date)
		if err != nil {
			if !errors.IsKind(err, errors.KindTransient) && !errors.IsKind(err, errors.KindStorage) {
				return err
			}
			local, lerr := ctx.Sync.LocalNotes(reqCtx, date)
			if lerr != nil {
				return err
			}
			ctx.Println("⚠ Profile store unreachable, showing notes saved on this device")
			notes = local
		}
		printNotes(ctx, date, notes)
		return nil
	})
}

type NoteAddCmd struct {
	Content []string `arg:"" help:"Note text."`
	Date    string   `short:"d" default:"today" help:"Date (YYYY-MM-DD, today, tomorrow or yesterday)."`
}

func (c *NoteAddCmd) Run(ctx *cli.Context) error {
	date, err := cli.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	content := strings.Join(c.Content, " ")
	return ctx.WithUser(func(reqCtx context.Context, p models.Profile) error {
		notes, err := ctx.Sync.AddNote(reqCtx, p.UID, date, content)
		if err != nil {
			return err
		}
		ctx.Printf("✓ Note added to %s\n", date)
		printNotes(ctx, date, notes)
		return nil
	})
}

type NoteEditCmd struct {
	ID      string   `arg:"" help:"Note id or a unique prefix of it."`
	Content []string `arg:"" help:"New note text."`
	Date    string   `short:"d" default:"today" help:"Date the note belongs to, used to resolve id prefixes."`
}

func (c *NoteEditCmd) Run(ctx *cli.Context) error {
	content := strings.Join(c.Content, " ")
	return ctx.WithUser(func(reqCtx context.Context, p models.Profile) error {
		id, err := resolveID(reqCtx, ctx, p.UID, c.Date, c.ID)
		if err != nil {
			return err
		}
		notes, err := ctx.Sync.UpdateNote(reqCtx, p.UID, id, content)
		if err != nil {
			return err
		}
		ctx.Println("✓ Note updated")
		if len(notes) > 0 {
			printNotes(ctx, notes[0].Date, notes)
		}
		return nil
	})
}

type NoteDeleteCmd struct {
	ID   string `arg:"" help:"Note id or a unique prefix of it."`
	Date string `short:"d" default:"today" help:"Date the note belongs to, used to resolve id prefixes."`
	Yes  bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *NoteDeleteCmd) Run(ctx *cli.Context) error {
	return ctx.WithUser(func(reqCtx context.Context, p models.Profile) error {
		id, err := resolveID(reqCtx, ctx, p.UID, c.Date, c.ID)
		if err != nil {
			return err
		}
		if !c.Yes {
			ok, err := ctx.Prompter.Confirm("Delete this note?")
			if err != nil {
				return err
			}
			if !ok {
				ctx.Println("Cancelled")
				return nil
			}
		}
		if _, _, err := ctx.Sync.DeleteNote(reqCtx, p.UID, id); err != nil {
			return err
		}
		ctx.Println("✓ Note deleted")
		return nil
	})
}

type NoteMonthCmd struct {
	Month string `arg:"" optional:"" help:"Month (YYYY-MM). Defaults to the current month."`
}

func (c *NoteMonthCmd) Run(ctx *cli.Context) error {
	ym, err := cli.ResolveMonth(c.Month)
	if err != nil {
		return err
	}
	return ctx.WithUser(func(reqCtx context.Context, p models.Profile) error {
		dates, err := ctx.Sync.NoteDatesForMonth(reqCtx, p.UID, ym)
		if err != nil {
			return err
		}
		if len(dates) == 0 {
			ctx.Printf("No notes in %s\n", ym)
			return nil
		}
		for _, d := range dates {
			ctx.Println(d)
		}
		return nil
	})
}

// resolveID expands a short id against the notes of date. Full ids are used as given.
func resolveID(reqCtx context.Context, ctx *cli.Context, uid, dateArg, prefix string) (string, error) {
	const op = "notes.ResolveID"
	if len(prefix) == 36 {
		return prefix, nil
	}
	date, err := cli.ResolveDate(dateArg)
	if err != nil {
		return "", err
	}
	notes, err := ctx.Sync.FetchNotes(reqCtx, uid, date)
	if err != nil {
		return "", err
	}

	var match string
	for _, n := range notes {
		if strings.HasPrefix(n.ID, prefix) {
			if match != "" {
				return "", errors.Ef(op, errors.KindInvalidInput, "id %q matches more than one note on %s", prefix, date)
			}
			match = n.ID
		}
	}
	if match == "" {
		return "", errors.Ef(op, errors.KindNotFound, "no note %q on %s", prefix, date)
	}
	return match, nil
}

func printNotes(ctx *cli.Context, date string, notes []models.Note) {
	if len(notes) == 0 {
		ctx.Printf("No notes for %s\n", date)
		return
	}
	ctx.Printf("Notes for %s:\n", date)
	for _, n := range notes {
		ctx.Printf("  [%s] %s\n", shortID(n.ID), n.Content)
		if !n.UpdatedAt.Equal(n.CreatedAt) {
			ctx.Printf("  %s  edited %s\n", strings.Repeat(" ", 8), n.UpdatedAt.Local().Format("Jan 2 15:04"))
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

