package advice

import (
	"context"

	"github.com/julianstephens/moonlit/internal/cli"
	"github.com/julianstephens/moonlit/internal/errors"
	"github.com/julianstephens/moonlit/internal/models"
	"github.com/julianstephens/moonlit/internal/state"
)

type AdviceCmd struct {
	Sign    string `short:"s" help:"Zodiac sign. Defaults to the signed-in user's sign."`
	Daily   bool   `xor:"period" help:"Daily reading (default)."`
	Weekly  bool   `xor:"period" help:"Reading for the current week."`
	Monthly bool   `xor:"period" help:"Reading for the current month."`
	Day     string `default:"today" help:"Day for the daily reading: today, tomorrow, yesterday or YYYY-MM-DD."`
}

func (c *AdviceCmd) granularity() models.Granularity {
	switch {
	case c.Weekly:
		return models.GranularityWeekly
	case c.Monthly:
		return models.GranularityMonthly
	default:
		return models.GranularityDaily
	}
}

func (c *AdviceCmd) Run(ctx *cli.Context) error {
	reqCtx, cancel := ctx.Ctx()
	defer cancel()

	sign, err := c.resolveSign(reqCtx, ctx)
	if err != nil {
		return err
	}

	advice := state.NewAdvice(ctx.Horoscope)
	if err := advice.SetSign(string(sign)); err != nil {
		return err
	}

	var reading models.Advice
	switch c.granularity() {
	case models.GranularityWeekly:
		reading, err = advice.FetchWeekly(reqCtx)
	case models.GranularityMonthly:
		reading, err = advice.FetchMonthly(reqCtx)
	default:
		reading, err = advice.FetchDaily(reqCtx, c.Day)
	}
	if errors.IsKind(err, errors.KindInvalidInput) {
		return err
	}

	snap := advice.Current()
	if err != nil {
		ctx.Printf("%s %s\n", sign, c.granularity())
		ctx.Println(snap.Message)
		return nil
	}

	ctx.Printf("%s, %s reading for %s\n\n", reading.Sign, reading.Granularity, reading.Period)
	ctx.Println(snap.Message)
	return nil
}

// resolveSign uses --sign, then the signed-in user's sign.
func (c *AdviceCmd) resolveSign(reqCtx context.Context, ctx *cli.Context) (models.ZodiacSign, error) {
	if c.Sign != "" {
		sign, err := models.ParseZodiacSign(c.Sign)
		if err != nil {
			return "", errors.E("advice.Sign", errors.KindInvalidInput, err)
		}
		return sign, nil
	}

	if err := ctx.Load(); err != nil {
		return "", err
	}
	p, err := ctx.RequireUser(reqCtx)
	if err != nil {
		if errors.IsKind(err, errors.KindAuth) {
			return "", errors.Ef("advice.Sign", errors.KindInvalidInput, "no zodiac sign: pass --sign or log in")
		}
		return "", err
	}
	return p.ZodiacSign, nil
}
