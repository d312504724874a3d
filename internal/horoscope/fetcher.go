// Package horoscope fetches zodiac readings on demand. Readings are never cached.
package horoscope

import (
	"context"
	"strings"
	"time"

	"github.com/julianstephens/moonlit/internal/constants"
	"github.com/julianstephens/moonlit/internal/errors"
	"github.com/julianstephens/moonlit/internal/logger"
	"github.com/julianstephens/moonlit/internal/models"
	"github.com/julianstephens/moonlit/internal/remote/horoscopeapi"
)

// Relative day keywords accepted by daily readings.
const (
	Today     = "TODAY"
	Tomorrow  = "TOMORROW"
	Yesterday = "YESTERDAY"
)

// Source is the horoscope API.
type Source interface {
	Daily(ctx context.Context, sign, day string) (horoscopeapi.Reading, error)
	Weekly(ctx context.Context, sign string) (horoscopeapi.Reading, error)
	Monthly(ctx context.Context, sign string) (horoscopeapi.Reading, error)
}

type Fetcher struct {
	source Source
}

func NewFetcher(source Source) *Fetcher {
	return &Fetcher{source: source}
}

// Fetch issues exactly one remote request for the reading. day is only used
// for daily readings and may be TODAY, TOMORROW, YESTERDAY or a YYYY-MM-DD date;
// empty means TODAY.
func (f *Fetcher) Fetch(ctx context.Context, sign models.ZodiacSign, g models.Granularity, day string) (models.Advice, error) {
	const op = "horoscope.Fetch"

	if _, err := models.ParseZodiacSign(string(sign)); err != nil {
		return models.Advice{}, errors.E(op, errors.KindInvalidInput, err)
	}

	var (
		reading horoscopeapi.Reading
		key     string
		err     error
	)
	switch g {
	case models.GranularityDaily:
		key, err = NormalizeDay(day)
		if err != nil {
			return models.Advice{}, errors.E(op, errors.KindInvalidInput, err)
		}
		reading, err = f.source.Daily(ctx, string(sign), key)
	case models.GranularityWeekly:
		key = "week"
		reading, err = f.source.Weekly(ctx, string(sign))
	case models.GranularityMonthly:
		key = "month"
		reading, err = f.source.Monthly(ctx, string(sign))
	default:
		return models.Advice{}, errors.Ef(op, errors.KindInvalidInput, "invalid granularity %q", g)
	}
	if err != nil {
		logger.Warn("horoscope fetch failed", "sign", sign, "granularity", g, "day", key, "error", err)
		return models.Advice{}, errors.E(op, kindOrTransient(err), err)
	}

	return models.Advice{
		Sign:        sign,
		Granularity: g,
		Key:         key,
		Period:      reading.Period(),
		Text:        strings.TrimSpace(reading.HoroscopeData),
	}, nil
}

// NormalizeDay validates a daily reading key and upper-cases relative keywords.
func NormalizeDay(day string) (string, error) {
	d := strings.TrimSpace(day)
	if d == "" {
		return Today, nil
	}
	switch up := strings.ToUpper(d); up {
	case Today, Tomorrow, Yesterday:
		return up, nil
	}
	if _, err := time.Parse(constants.DateFormat, d); err != nil {
		return "", errors.New("day must be TODAY, TOMORROW, YESTERDAY or a YYYY-MM-DD date")
	}
	return d, nil
}

// Message returns the text to show for a reading or its failure.
func Message(a models.Advice, err error) string {
	if err != nil || a.Text == "" {
		return constants.AdviceUnavailable
	}
	return a.Text
}

func kindOrTransient(err error) errors.Kind {
	if k := errors.KindOf(err); k != errors.KindUnknown {
		return k
	}
	return errors.KindTransient
}
