// Package moonapi is a client for the FarmSense-compatible moon phase API.
package moonapi

import (
	"context"
	"strconv"
	"time"

	"github.com/julianstephens/moonlit/internal/errors"
	"github.com/julianstephens/moonlit/internal/remote"
)

// Phase is the subset of a moon phase response the app uses.
type Phase struct {
	Error        int      `json:"Error"`
	ErrorMsg     string   `json:"ErrorMsg"`
	Phase        string   `json:"Phase"`
	Illumination float64  `json:"Illumination"`
	Age          float64  `json:"Age"`
	Moon         []string `json:"Moon"`
}

// Client fetches one day's phase per call.
type Client struct {
	rc *remote.Client
}

// New creates a moon phase client.
func New(opts remote.Options) *Client {
	if opts.Name == "" {
		opts.Name = "moon-api"
	}
	return &Client{rc: remote.NewClient(opts)}
}

// PhaseAt returns the phase for the instant t, sent as a unix timestamp.
func (c *Client) PhaseAt(ctx context.Context, t time.Time) (Phase, error) {
	const op = "moonapi.PhaseAt"

	var body []Phase
	err := c.rc.GetJSON(ctx, op, "/moonphases/", map[string]string{
		"d":   strconv.FormatInt(t.Unix(), 10),
		"lat": "0",
		"lon": "0",
	}, &body)
	if err != nil {
		return Phase{}, err
	}

	if len(body) == 0 {
		return Phase{}, errors.Ef(op, errors.KindTransient, "empty response for %d", t.Unix())
	}
	p := body[0]
	if p.Error != 0 {
		return Phase{}, errors.Ef(op, errors.KindTransient, "api error %d: %s", p.Error, p.ErrorMsg)
	}
	if p.Phase == "" {
		return Phase{}, errors.Ef(op, errors.KindTransient, "response for %d has no phase", t.Unix())
	}
	return p, nil
}

// Ping checks that the API host answers.
func (c *Client) Ping(ctx context.Context) error {
	return c.rc.Ping(ctx, "/moonphases/")
}

// BreakerState reports the circuit breaker state.
func (c *Client) BreakerState() string {
	return c.rc.State()
}
