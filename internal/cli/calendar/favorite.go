package calendar

import (
	"context"
	"slices"

	"github.com/julianstephens/moonlit/internal/cli"
	"github.com/julianstephens/moonlit/internal/models"
)

type FavoriteCmd struct {
	Toggle FavoriteToggleCmd `cmd:"" help:"Save a day, or unsave it if already saved."`
	Add    FavoriteAddCmd    `cmd:"" help:"Save a day."`
	Remove FavoriteRemoveCmd `cmd:"" help:"Unsave a day."`
	List   FavoriteListCmd   `cmd:"" default:"1" help:"List saved days."`
}

type FavoriteToggleCmd struct {
	Date string `arg:"" help:"Date (YYYY-MM-DD or today)."`
}

func (c *FavoriteToggleCmd) Run(ctx *cli.Context) error {
	date, err := cli.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	return ctx.WithUser(func(reqCtx context.Context, p models.Profile) error {
		saved, err := ctx.Sync.ToggleFavorite(reqCtx, p.UID, date)
		if err != nil {
			return err
		}
		if saved {
			ctx.Printf("★ Saved %s\n", date)
		} else {
			ctx.Printf("☆ Removed %s from saved days\n", date)
		}
		return nil
	})
}

type FavoriteAddCmd struct {
	Date string `arg:"" help:"Date (YYYY-MM-DD or today)."`
}

func (c *FavoriteAddCmd) Run(ctx *cli.Context) error {
	date, err := cli.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	return ctx.WithUser(func(reqCtx context.Context, p models.Profile) error {
		if err := ctx.Sync.SaveFavorite(reqCtx, p.UID, date); err != nil {
			return err
		}
		ctx.Printf("★ Saved %s\n", date)
		return nil
	})
}

type FavoriteRemoveCmd struct {
	Date string `arg:"" help:"Date (YYYY-MM-DD or today)."`
}

func (c *FavoriteRemoveCmd) Run(ctx *cli.Context) error {
	date, err := cli.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	return ctx.WithUser(func(reqCtx context.Context, p models.Profile) error {
		if err := ctx.Sync.RemoveFavorite(reqCtx, p.UID, date); err != nil {
			return err
		}
		ctx.Printf("☆ Removed %s from saved days\n", date)
		return nil
	})
}

type FavoriteListCmd struct{}

func (c *FavoriteListCmd) Run(ctx *cli.Context) error {
	return ctx.WithUser(func(reqCtx context.Context, p models.Profile) error {
		days, err := ctx.Sync.FetchFavorites(reqCtx, p.UID)
		if err != nil {
			return err
		}
		if len(days) == 0 {
			ctx.Println("No saved days.")
			return nil
		}
		slices.Sort(days)
		for _, d := range days {
			line := d
			if rec, err := ctx.Content.GetRecord(reqCtx, d); err == nil {
				line += "  " + rec.Glyph() + " " + rec.Phase
			}
			ctx.Println(line)
		}
		return nil
	})
}
