package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/moonlit/internal/auth"
	"github.com/julianstephens/moonlit/internal/cli"
	"github.com/julianstephens/moonlit/internal/models"
)

type RegisterCmd struct {
	Email     string `help:"Email address to sign in with." required:""`
	Birthdate string `help:"Birthdate (YYYY-MM-DD), used to pick your zodiac sign." required:""`
}

func (c *RegisterCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	password, err := ctx.Prompter.Password("Choose a password")
	if err != nil {
		return err
	}
	confirm, err := ctx.Prompter.Password("Confirm password")
	if err != nil {
		return err
	}
	if password != confirm {
		return errors.New("passwords do not match")
	}

	reqCtx, cancel := ctx.Ctx()
	defer cancel()
	p, err := ctx.Auth.Register(reqCtx, auth.RegisterInput{
		Email:     c.Email,
		Password:  password,
		Birthdate: c.Birthdate,
	})
	if err != nil {
		return err
	}

	ctx.Printf("✓ Registered %s\n", p.Email)
	ctx.Printf("  Zodiac sign: %s\n", p.ZodiacSign)
	return nil
}

type LoginCmd struct {
	Email string `help:"Email address." required:""`
}

func (c *LoginCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	password, err := ctx.Prompter.Password("Password")
	if err != nil {
		return err
	}

	reqCtx, cancel := ctx.Ctx()
	defer cancel()
	p, err := ctx.Auth.Login(reqCtx, auth.LoginInput{Email: c.Email, Password: password})
	if err != nil {
		return err
	}

	// Pull saved days so the calendar shows them offline
	if _, err := ctx.Sync.FetchFavorites(reqCtx, p.UID); err != nil {
		ctx.Printf("⚠ Could not sync saved days: %v\n", err)
	}

	ctx.Printf("✓ Signed in as %s (%s)\n", p.Email, p.ZodiacSign)
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *cli.Context) error {
	if err := ctx.Auth.Logout(); err != nil {
		return err
	}
	ctx.Println("✓ Signed out")
	return nil
}

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx *cli.Context) error {
	return ctx.WithUser(func(_ context.Context, p models.Profile) error {
		ctx.Printf("Email:       %s\n", p.Email)
		ctx.Printf("Birthdate:   %s\n", p.Birthdate)
		ctx.Printf("Zodiac sign: %s\n", p.ZodiacSign)
		ctx.Printf("Saved days:  %d\n", len(p.SavedDays))
		ctx.Printf("Member since %s\n", p.CreatedAt.Local().Format("January 2, 2006"))
		return nil
	})
}

type ProfileCmd struct {
	Birthdate ProfileBirthdateCmd `cmd:"" help:"Change your birthdate and zodiac sign."`
	Email     ProfileEmailCmd     `cmd:"" help:"Change your sign-in email."`
	Password  ProfilePasswordCmd  `cmd:"" help:"Change your password."`
}

type ProfileBirthdateCmd struct {
	Date string `arg:"" help:"New birthdate (YYYY-MM-DD)."`
}

func (c *ProfileBirthdateCmd) Run(ctx *cli.Context) error {
	return ctx.WithUser(func(reqCtx context.Context, p models.Profile) error {
		updated, err := ctx.Auth.UpdateBirthdate(reqCtx, p.UID, c.Date)
		if err != nil {
			return err
		}
		ctx.Printf("✓ Birthdate set to %s\n", updated.Birthdate)
		if updated.ZodiacSign != p.ZodiacSign {
			ctx.Printf("  Zodiac sign changed: %s → %s\n", p.ZodiacSign, updated.ZodiacSign)
		}
		return nil
	})
}

type ProfileEmailCmd struct {
	Email string `arg:"" help:"New email address."`
}

func (c *ProfileEmailCmd) Run(ctx *cli.Context) error {
	return ctx.WithUser(func(reqCtx context.Context, p models.Profile) error {
		updated, err := ctx.Auth.UpdateEmail(reqCtx, p.UID, c.Email)
		if err != nil {
			return err
		}
		ctx.Printf("✓ Email changed to %s\n", updated.Email)
		return nil
	})
}

type ProfilePasswordCmd struct{}

func (c *ProfilePasswordCmd) Run(ctx *cli.Context) error {
	return ctx.WithUser(func(reqCtx context.Context, p models.Profile) error {
		current, err := ctx.Prompter.Password("Current password")
		if err != nil {
			return err
		}
		next, err := ctx.Prompter.Password("New password")
		if err != nil {
			return err
		}
		if err := ctx.Auth.ChangePassword(reqCtx, p.UID, current, next); err != nil {
			return err
		}
		ctx.Println("✓ Password changed")
		return nil
	})
}

type ZodiacCmd struct {
	Date string `arg:"" help:"Birthdate (YYYY-MM-DD)."`
}

func (c *ZodiacCmd) Run(ctx *cli.Context) error {
	sign, err := models.ZodiacSignForDate(c.Date)
	if err != nil {
		return fmt.Errorf("invalid date: %w", err)
	}
	ctx.Println(sign)
	return nil
}
