package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/julianstephens/moonlit/internal/auth"
	"github.com/julianstephens/moonlit/internal/config"
	"github.com/julianstephens/moonlit/internal/constants"
	"github.com/julianstephens/moonlit/internal/horoscope"
	"github.com/julianstephens/moonlit/internal/keyring"
	"github.com/julianstephens/moonlit/internal/models"
	"github.com/julianstephens/moonlit/internal/moon"
	"github.com/julianstephens/moonlit/internal/profile"
	"github.com/julianstephens/moonlit/internal/profile/postgres"
	profilesqlite "github.com/julianstephens/moonlit/internal/profile/sqlite"
	"github.com/julianstephens/moonlit/internal/remote"
	"github.com/julianstephens/moonlit/internal/remote/horoscopeapi"
	"github.com/julianstephens/moonlit/internal/remote/moonapi"
	"github.com/julianstephens/moonlit/internal/state"
	"github.com/julianstephens/moonlit/internal/storage"
	contentsqlite "github.com/julianstephens/moonlit/internal/storage/sqlite"
	"github.com/julianstephens/moonlit/internal/syncer"
)

// Pinger is implemented by the remote API clients.
type Pinger interface {
	Ping(ctx context.Context) error
	BreakerState() string
}

// Migrator is implemented by stores with embedded schema migrations.
type Migrator interface {
	Migrate(logFn func(string)) (int, error)
}

// Context carries the wired application into every command's Run method.
type Context struct {
	Config   *config.Config
	Content  storage.ContentStore
	Profiles profile.Store

	Moon      *moon.Fetcher
	Horoscope *horoscope.Fetcher
	Sync      *syncer.Synchronizer
	Auth      *auth.Service

	MoonAPI      Pinger
	HoroscopeAPI Pinger

	Prompter Prompter
	Out      io.Writer

	// Timeout bounds each command's remote work. Zero means no limit.
	Timeout time.Duration

	// profileErr is reported by Load when the profile store could not be configured.
	profileErr error
}

// New wires stores, API clients and services from cfg. Nothing is opened yet.
// A misconfigured profile store only fails once Load is called, so commands
// such as keyring set still run.
func New(cfg *config.Config) (*Context, error) {
	profiles, profileErr := newProfileStore(cfg)
	content := contentsqlite.NewStore(cfg.ContentDB)

	moonClient := moonapi.New(remoteOptions(cfg, "moon-api", cfg.MoonAPIURL))
	horoscopeClient := horoscopeapi.New(remoteOptions(cfg, "horoscope-api", cfg.HoroscopeAPIURL))

	key, err := auth.LoadOrGenerateKey(cfg.SessionKey, cfg.ConfigDir)
	if err != nil {
		return nil, err
	}
	tokens, err := auth.NewTokenService(key, cfg.SessionTTL)
	if err != nil {
		return nil, err
	}

	return &Context{
		Config:   cfg,
		Content:  content,
		Profiles: profiles,
		Moon: moon.NewFetcher(content, moonClient, moon.Options{
			Completeness:  cfg.MonthCompleteness,
			FailurePolicy: cfg.FetchPolicy,
		}),
		Horoscope:    horoscope.NewFetcher(horoscopeClient),
		Sync:         syncer.NewSynchronizer(profiles, content),
		Auth:         auth.NewService(profiles, tokens, auth.DefaultSessions(cfg.ConfigDir)),
		MoonAPI:      moonClient,
		HoroscopeAPI: horoscopeClient,
		Prompter:     HuhPrompter{},
		Out:          os.Stdout,
		Timeout:      5 * time.Minute,
		profileErr:   profileErr,
	}, nil
}

func remoteOptions(cfg *config.Config, name, baseURL string) remote.Options {
	return remote.Options{
		Name:            name,
		BaseURL:         baseURL,
		Timeout:         cfg.HTTPTimeout,
		RatePerSecond:   cfg.RatePerSecond,
		RateBurst:       cfg.RateBurst,
		BreakerFailures: cfg.BreakerFailures,
		BreakerTimeout:  cfg.BreakerTimeout,
	}
}

func newProfileStore(cfg *config.Config) (profile.Store, error) {
	if cfg.ProfileStore != constants.ProfileStorePostgres {
		return profilesqlite.NewStore(cfg.ProfileDSN), nil
	}

	dsn := cfg.ProfileDSN
	if dsn != "" {
		if _, err := postgres.ValidateConnString(dsn); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("MOONLIT_PROFILE_DSN must not embed a password; use .pgpass or '%s keyring set'", constants.AppName)
			}
			return nil, err
		}
		return postgres.New(dsn), nil
	}

	// Keyring entries may carry credentials since the keyring is encrypted
	dsn, err := keyring.GetConnectionString()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, fmt.Errorf("no PostgreSQL connection string configured; set MOONLIT_PROFILE_DSN or run '%s keyring set'", constants.AppName)
		}
		return nil, err
	}
	return postgres.New(dsn), nil
}

// Load opens both stores and checks their schema versions. It is safe to call
// more than once; the stores stay open until Close.
func (c *Context) Load() error {
	if c.profileErr != nil {
		return c.profileErr
	}
	if err := c.Content.Load(); err != nil {
		return err
	}
	return c.Profiles.Load()
}

// ProfileConfigErr reports why the profile store could not be configured, if it could not.
func (c *Context) ProfileConfigErr() error {
	return c.profileErr
}

// Close releases both stores.
func (c *Context) Close() error {
	var errs []error
	if c.Content != nil {
		errs = append(errs, c.Content.Close())
	}
	if c.Profiles != nil {
		errs = append(errs, c.Profiles.Close())
	}
	return errors.Join(errs...)
}

// Ctx returns a context bounded by the command timeout.
func (c *Context) Ctx() (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), c.Timeout)
}

// RequireUser returns the signed-in profile.
func (c *Context) RequireUser(ctx context.Context) (models.Profile, error) {
	return c.Auth.Current(ctx)
}

// NewSession builds the presentation state holders over this context's services.
func (c *Context) NewSession() *state.Session {
	return state.NewSession(
		state.NewCalendar(c.Moon, c.Sync),
		state.NewAdvice(c.Horoscope),
		state.NewNotes(c.Sync),
	)
}

// Printf writes to the command output.
func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.output(), format, args...)
}

// Println writes a line to the command output.
func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.output(), args...)
}

func (c *Context) output() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// Today returns the current local date as YYYY-MM-DD.
func Today() string {
	return time.Now().Format(constants.DateFormat)
}

// ResolveDate accepts "today", "tomorrow", "yesterday" or a YYYY-MM-DD date.
func ResolveDate(s string) (string, error) {
	switch s {
	case "", "today":
		return Today(), nil
	case "tomorrow":
		return time.Now().AddDate(0, 0, 1).Format(constants.DateFormat), nil
	case "yesterday":
		return time.Now().AddDate(0, 0, -1).Format(constants.DateFormat), nil
	}
	if _, err := time.Parse(constants.DateFormat, s); err != nil {
		return "", fmt.Errorf("invalid date %q (expected YYYY-MM-DD or today)", s)
	}
	return s, nil
}

// ResolveMonth accepts an empty string for the current month or YYYY-MM.
func ResolveMonth(s string) (models.YearMonth, error) {
	if s == "" || s == "this" {
		return models.NewYearMonth(time.Now()), nil
	}
	return models.ParseYearMonth(s)
}

// WithUser opens the stores and runs fn for the signed-in user.
func (c *Context) WithUser(fn func(context.Context, models.Profile) error) error {
	if err := c.Load(); err != nil {
		return err
	}

	reqCtx, cancel := c.Ctx()
	defer cancel()
	p, err := c.RequireUser(reqCtx)
	if err != nil {
		return err
	}
	return fn(reqCtx, p)
}
