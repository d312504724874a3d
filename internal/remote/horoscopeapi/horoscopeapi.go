// Package horoscopeapi is a client for the horoscope-app API.
package horoscopeapi

import (
	"context"
	"strings"

	"github.com/julianstephens/moonlit/internal/errors"
	"github.com/julianstephens/moonlit/internal/remote"
)

// Reading is the data block of a horoscope response. Only one of Date, Week
// or Month is set depending on the endpoint.
type Reading struct {
	Date          string `json:"date"`
	Week          string `json:"week"`
	Month         string `json:"month"`
	HoroscopeData string `json:"horoscope_data"`
}

// Period returns whichever date descriptor the server sent.
func (r Reading) Period() string {
	switch {
	case r.Date != "":
		return r.Date
	case r.Week != "":
		return r.Week
	default:
		return r.Month
	}
}

type response struct {
	Data    Reading `json:"data"`
	Status  int     `json:"status"`
	Success bool    `json:"success"`
}

// Client issues one request per reading and caches nothing.
type Client struct {
	rc *remote.Client
}

// New creates a horoscope client.
func New(opts remote.Options) *Client {
	if opts.Name == "" {
		opts.Name = "horoscope-api"
	}
	return &Client{rc: remote.NewClient(opts)}
}

// Daily returns the reading for sign on day (TODAY, TOMORROW, YESTERDAY or YYYY-MM-DD).
func (c *Client) Daily(ctx context.Context, sign, day string) (Reading, error) {
	return c.get(ctx, "horoscopeapi.Daily", "/get-horoscope/daily", map[string]string{"sign": sign, "day": day})
}

// Weekly returns the current week's reading for sign.
func (c *Client) Weekly(ctx context.Context, sign string) (Reading, error) {
	return c.get(ctx, "horoscopeapi.Weekly", "/get-horoscope/weekly", map[string]string{"sign": sign})
}

// Monthly returns the current month's reading for sign.
func (c *Client) Monthly(ctx context.Context, sign string) (Reading, error) {
	return c.get(ctx, "horoscopeapi.Monthly", "/get-horoscope/monthly", map[string]string{"sign": sign})
}

func (c *Client) get(ctx context.Context, op, path string, query map[string]string) (Reading, error) {
	var body response
	if err := c.rc.GetJSON(ctx, op, path, query, &body); err != nil {
		return Reading{}, err
	}
	if !body.Success {
		return Reading{}, errors.Ef(op, errors.KindTransient, "api reported failure (status %d)", body.Status)
	}
	if strings.TrimSpace(body.Data.HoroscopeData) == "" {
		return Reading{}, errors.Ef(op, errors.KindTransient, "api returned an empty reading")
	}
	return body.Data, nil
}

// Ping checks that the API host answers.
func (c *Client) Ping(ctx context.Context) error {
	return c.rc.Ping(ctx, "/get-horoscope/daily")
}

// BreakerState reports the circuit breaker state.
func (c *Client) BreakerState() string {
	return c.rc.State()
}
