package calendar

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/moonlit/internal/cli"
	"github.com/julianstephens/moonlit/internal/errors"
	"github.com/julianstephens/moonlit/internal/models"
	"github.com/julianstephens/moonlit/internal/moon"
	"github.com/julianstephens/moonlit/internal/state"
)

type MonthCmd struct {
	Show   MonthShowCmd   `cmd:"" default:"withargs" help:"Show a month of moon phases."`
	Repair MonthRepairCmd `cmd:"" help:"Fetch any days missing from a month."`
}

type MonthShowCmd struct {
	Month string `arg:"" optional:"" help:"Month to show (YYYY-MM). Defaults to the current month."`
	List  bool   `help:"List every day instead of drawing a grid."`
}

func (c *MonthShowCmd) Run(ctx *cli.Context) error {
	ym, err := cli.ResolveMonth(c.Month)
	if err != nil {
		return err
	}
	if err := ctx.Load(); err != nil {
		return err
	}

	reqCtx, cancel := ctx.Ctx()
	defer cancel()

	session := ctx.NewSession()
	if err := signIn(reqCtx, ctx, session); err != nil {
		return err
	}

	err = session.Calendar.SelectMonth(reqCtx, ym)
	snap := session.Calendar.Current()
	if err != nil && len(snap.Records) == 0 {
		return err
	}

	if c.List {
		printList(ctx, snap)
	} else {
		printGrid(ctx, snap)
	}

	var partial *moon.PartialError
	if errors.As(err, &partial) {
		ctx.Printf("\n⚠ %d day(s) could not be loaded: %s\n", len(partial.Failed), strings.Join(partial.Failed, ", "))
		ctx.Printf("  Run 'moonlit month repair %s' to retry.\n", ym)
	}
	return nil
}

type MonthRepairCmd struct {
	Month string `arg:"" optional:"" help:"Month to repair (YYYY-MM). Defaults to the current month."`
}

func (c *MonthRepairCmd) Run(ctx *cli.Context) error {
	ym, err := cli.ResolveMonth(c.Month)
	if err != nil {
		return err
	}
	if err := ctx.Content.Load(); err != nil {
		return err
	}

	reqCtx, cancel := ctx.Ctx()
	defer cancel()

	res, err := ctx.Moon.Repair(reqCtx, ym)
	switch {
	case res.Skipped:
		ctx.Printf("✓ %s is complete, nothing to fetch\n", ym)
	case len(res.Fetched) > 0:
		ctx.Printf("✓ Fetched %d day(s) for %s\n", len(res.Fetched), ym)
	}
	return err
}

// signIn scopes session to the stored user. Being signed out is not an error.
func signIn(reqCtx context.Context, ctx *cli.Context, session *state.Session) error {
	p, err := ctx.RequireUser(reqCtx)
	if errors.IsKind(err, errors.KindAuth) {
		return nil
	}
	if err != nil {
		// Profile store unreachable: show the calendar without favorites
		ctx.Printf("⚠ Could not load your profile: %v\n", err)
		return nil
	}
	if err := session.SignIn(reqCtx, p); err != nil {
		ctx.Printf("⚠ Could not sync saved days: %v\n", err)
	}
	return nil
}

func printGrid(ctx *cli.Context, snap state.CalendarSnapshot) {
	ym := snap.Month
	first := ym.Day(1)

	ctx.Printf("%s\n\n", first.Format("January 2006"))
	ctx.Println(" Sun  Mon  Tue  Wed  Thu  Fri  Sat")

	var line strings.Builder
	for range int(first.Weekday()) {
		line.WriteString("     ")
	}
	for day := 1; day <= ym.DaysIn(); day++ {
		date := ym.Date(day)
		glyph := "  "
		if rec, ok := snap.Record(date); ok {
			glyph = rec.Glyph()
		}
		mark := " "
		switch {
		case snap.IsSaved(date):
			mark = "*"
		case snap.HasNotes(date):
			mark = "+"
		}
		fmt.Fprintf(&line, "%2d%s%s", day, glyph, mark)
		if ym.Day(day).Weekday() == time.Saturday {
			ctx.Println(strings.TrimRight(line.String(), " "))
			line.Reset()
		}
	}
	if line.Len() > 0 {
		ctx.Println(strings.TrimRight(line.String(), " "))
	}
	ctx.Println()
	ctx.Println("* saved   + has notes")
}

func printList(ctx *cli.Context, snap state.CalendarSnapshot) {
	for _, rec := range snap.Records {
		flags := ""
		if snap.IsSaved(rec.Date) {
			flags += " ★"
		}
		if snap.HasNotes(rec.Date) {
			flags += " ✎"
		}
		ctx.Printf("%s  %s %-16s %3d%%%s\n", rec.Date, rec.Glyph(), rec.Phase, rec.IlluminationPercent(), flags)
	}
}

// recordFor loads the month containing date and returns its record.
func recordFor(reqCtx context.Context, ctx *cli.Context, date string) (models.MoonPhase, error) {
	ym, err := models.ParseYearMonth(date[:7])
	if err != nil {
		return models.MoonPhase{}, err
	}
	if _, err := ctx.Moon.EnsureMonth(reqCtx, ym); err != nil && !errors.IsKind(err, errors.KindPartial) {
		return models.MoonPhase{}, err
	}
	rec, err := ctx.Content.GetRecord(reqCtx, date)
	if err != nil {
		return models.MoonPhase{}, errors.E("calendar.Day", errors.KindNotFound, fmt.Errorf("no moon data for %s: %w", date, err))
	}
	return rec, nil
}
