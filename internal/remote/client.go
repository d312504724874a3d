// Package remote holds the HTTP plumbing shared by the moon-phase and horoscope
// API clients: rate limiting, a circuit breaker and error classification.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/julianstephens/moonlit/internal/constants"
	"github.com/julianstephens/moonlit/internal/errors"
	"github.com/julianstephens/moonlit/internal/logger"
)

// ErrCircuitOpen is returned while the breaker rejects calls to a failing API.
var ErrCircuitOpen = errors.New("service temporarily unavailable (circuit open)")

// Options configures a Client.
type Options struct {
	Name            string
	BaseURL         string
	Timeout         time.Duration
	RatePerSecond   float64
	RateBurst       int
	BreakerFailures uint32
	BreakerTimeout  time.Duration
	// HTTPClient overrides the transport, mostly for tests.
	HTTPClient *http.Client
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = constants.DefaultHTTPTimeout
	}
	if o.RatePerSecond <= 0 {
		o.RatePerSecond = constants.DefaultRatePerSecond
	}
	if o.RateBurst < 1 {
		o.RateBurst = constants.DefaultRateBurst
	}
	if o.BreakerFailures == 0 {
		o.BreakerFailures = constants.DefaultBreakerFailures
	}
	if o.BreakerTimeout <= 0 {
		o.BreakerTimeout = constants.DefaultBreakerTimeout
	}
	return o
}

// Client issues rate-limited GET requests guarded by a circuit breaker.
// There are no automatic retries.
type Client struct {
	name    string
	http    *resty.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[*resty.Response]
}

// abandonedError marks a request the caller cancelled or timed out before the
// API answered. It says nothing about the API's health.
type abandonedError struct{ err error }

func (e *abandonedError) Error() string { return e.err.Error() }
func (e *abandonedError) Unwrap() error { return e.err }

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// NewClient creates a Client for one API.
func NewClient(opts Options) *Client {
	opts = opts.withDefaults()

	var hc *resty.Client
	if opts.HTTPClient != nil {
		hc = resty.NewWithClient(opts.HTTPClient)
	} else {
		hc = resty.New()
	}
	hc.SetBaseURL(opts.BaseURL).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", constants.AppName+"/"+constants.Version).
		SetTimeout(opts.Timeout)

	settings := gobreaker.Settings{
		Name:        opts.Name,
		MaxRequests: 1,
		Timeout:     opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"api", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
		// Client errors and abandoned requests do not count against the API.
		IsSuccessful: func(err error) bool {
			var abandoned *abandonedError
			return err == nil || errors.IsKind(err, errors.KindInvalidInput) || errors.As(err, &abandoned)
		},
	}

	return &Client{
		name:    opts.Name,
		http:    hc,
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSecond), opts.RateBurst),
		breaker: gobreaker.NewCircuitBreaker[*resty.Response](settings),
	}
}

// GetJSON requests path with query parameters and decodes a JSON body into out.
func (c *Client) GetJSON(ctx context.Context, op, path string, query map[string]string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.E(op, errors.KindTransient, err)
	}

	resp, err := c.breaker.Execute(func() (*resty.Response, error) {
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParams(query).
			Get(path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, errors.E(op, errors.KindTransient, &abandonedError{err: ctx.Err()})
			}
			return nil, errors.E(op, errors.KindTransient, err)
		}
		if code := resp.StatusCode(); code < 200 || code > 299 {
			kind := errors.KindTransient
			if code >= 400 && code < 500 && code != http.StatusTooManyRequests {
				kind = errors.KindInvalidInput
			}
			return nil, errors.E(op, kind, &StatusError{Code: code, Body: truncate(resp.String(), 200)})
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return errors.E(op, errors.KindTransient, ErrCircuitOpen)
		}
		logger.Debug("api request failed", "api", c.name, "path", path, "error", err)
		return err
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return errors.Ef(op, errors.KindTransient, "decode %s response: %w", c.name, err)
	}
	return nil
}

// State reports the breaker state for diagnostics.
func (c *Client) State() string {
	return c.breaker.State().String()
}

// Ping issues a GET against path and reports whether the API answered at all.
func (c *Client) Ping(ctx context.Context, path string) error {
	resp, err := c.http.R().SetContext(ctx).Get(path)
	if err != nil {
		return errors.E("remote.Ping", errors.KindTransient, err)
	}
	if resp.StatusCode() >= 500 {
		return errors.E("remote.Ping", errors.KindTransient, &StatusError{Code: resp.StatusCode()})
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
