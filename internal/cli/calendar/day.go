package calendar

import (
	"github.com/julianstephens/moonlit/internal/cli"
	"github.com/julianstephens/moonlit/internal/errors"
)

type DayCmd struct {
	Date string `arg:"" optional:"" help:"Date to show (YYYY-MM-DD, today, tomorrow or yesterday)." default:"today"`
}

func (c *DayCmd) Run(ctx *cli.Context) error {
	date, err := cli.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	if err := ctx.Load(); err != nil {
		return err
	}

	reqCtx, cancel := ctx.Ctx()
	defer cancel()

	rec, err := recordFor(reqCtx, ctx, date)
	if err != nil {
		return err
	}

	ctx.Printf("%s  %s\n", rec.Date, rec.Glyph())
	ctx.Printf("Phase:        %s\n", rec.Phase)
	ctx.Printf("Illumination: %d%%\n", rec.IlluminationPercent())
	if rec.ZodiacSign != nil {
		ctx.Printf("Moon sign:    %s\n", *rec.ZodiacSign)
	}
	if rec.Mood != nil {
		ctx.Printf("Mood:         %s\n", *rec.Mood)
	}
	if rec.Advice != nil {
		ctx.Printf("Advice:       %s\n", *rec.Advice)
	}

	p, err := ctx.RequireUser(reqCtx)
	if errors.IsKind(err, errors.KindAuth) {
		return nil
	}
	if err != nil {
		ctx.Printf("\n⚠ Could not load your profile: %v\n", err)
		return nil
	}

	if p.HasSavedDay(date) {
		ctx.Println("Saved:        ★")
	}

	notes, err := ctx.Sync.FetchNotes(reqCtx, p.UID, date)
	if err != nil {
		local, lerr := ctx.Sync.LocalNotes(reqCtx, date)
		if lerr != nil {
			return err
		}
		ctx.Printf("\n⚠ Profile store unreachable, showing notes saved on this device\n")
		notes = local
	}
	if len(notes) == 0 {
		return nil
	}
	ctx.Printf("\nNotes:\n")
	for _, n := range notes {
		ctx.Printf("  [%s] %s\n", shortID(n.ID), n.Content)
	}
	return nil
}

// shortID is the prefix of a note id shown in listings.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
