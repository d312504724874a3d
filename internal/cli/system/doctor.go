package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/moonlit/internal/auth"
	"github.com/julianstephens/moonlit/internal/cli"
	"github.com/julianstephens/moonlit/internal/keyring"
)

type DoctorCmd struct {
	Offline bool `help:"Skip the remote API checks."`
}

type schemaVersioner interface {
	SchemaVersion() (current, latest int, err error)
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	fail := func(name string, err error) {
		ctx.Printf("❌ %s: FAIL\n", name)
		ctx.Printf("   Error: %v\n", err)
		hasError = true
	}
	warn := func(name string, err error) {
		ctx.Printf("⚠ %s: WARNING\n", name)
		ctx.Printf("   %v\n", err)
	}
	ok := func(name string) {
		ctx.Printf("✓ %s: OK\n", name)
	}

	// Check 1: Configuration
	if err := ctx.Config.Validate(); err != nil {
		fail("Configuration", err)
	} else {
		ok("Configuration")
	}

	// Check 2: Content store reachable and current
	contentReachable := false
	if err := ctx.Content.Load(); err != nil {
		fail("Content store reachable", err)
	} else {
		ok("Content store reachable")
		contentReachable = true
	}
	if contentReachable {
		if err := checkSchema(ctx.Content); err != nil {
			fail("Content schema version", err)
		} else {
			ok("Content schema version")
		}
	} else {
		ctx.Printf("⊘ Content schema version: SKIPPED (store not reachable)\n")
	}

	// Check 3: Profile store reachable and current
	profileReachable := false
	if err := ctx.ProfileConfigErr(); err != nil {
		fail("Profile store reachable", err)
	} else if err := ctx.Profiles.Load(); err != nil {
		fail("Profile store reachable", err)
	} else {
		ok("Profile store reachable")
		profileReachable = true
	}
	if profileReachable {
		if err := checkSchema(ctx.Profiles); err != nil {
			fail("Profile schema version", err)
		} else {
			ok("Profile schema version")
		}
	} else {
		ctx.Printf("⊘ Profile schema version: SKIPPED (store not reachable)\n")
	}

	// Check 4: Keyring (warning only, sessions fall back to a file)
	if keyring.IsAvailable() {
		ok("OS keyring")
	} else {
		warn("OS keyring", errors.New("not available; sessions are stored in the config directory"))
	}

	// Check 5: Session
	if profileReachable {
		c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		p, err := ctx.Auth.Current(c)
		cancel()
		switch {
		case err == nil:
			ctx.Printf("✓ Session: signed in as %s\n", p.Email)
		case errors.Is(err, auth.ErrNotSignedIn):
			ctx.Printf("ℹ Session: not signed in\n")
		default:
			warn("Session", err)
		}
	}

	// Check 6: Remote APIs (warning only, cached months still work offline)
	if cmd.Offline {
		ctx.Printf("⊘ Remote APIs: SKIPPED (--offline)\n")
	} else {
		checkAPI(ctx, "Moon phase API", ctx.MoonAPI, warn, ok)
		checkAPI(ctx, "Horoscope API", ctx.HoroscopeAPI, warn, ok)
	}

	// Check 7: Clock/timezone sanity
	if err := checkClockTimezone(); err != nil {
		fail("Clock/timezone", err)
	} else {
		ok("Clock/timezone")
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	ctx.Println("All diagnostics passed!")
	return nil
}

func checkSchema(store schemaVersioner) error {
	current, latest, err := store.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("schema version %d is newer than supported version %d", current, latest)
	}
	if current < latest {
		return fmt.Errorf("schema version %d is behind %d, run 'moonlit migrate'", current, latest)
	}
	return nil
}

func checkAPI(ctx *cli.Context, name string, api cli.Pinger, warn func(string, error), ok func(string)) {
	if api == nil {
		warn(name, errors.New("not configured"))
		return
	}
	c, cancel := context.WithTimeout(context.Background(), ctx.Config.HTTPTimeout)
	defer cancel()
	if err := api.Ping(c); err != nil {
		warn(name, fmt.Errorf("%v (breaker %s)", err, api.BreakerState()))
		return
	}
	ok(fmt.Sprintf("%s (breaker %s)", name, api.BreakerState()))
}

func checkClockTimezone() error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	// Moon phases are keyed by local calendar date
	if _, offset := now.Zone(); offset == 0 && now.Location() == time.UTC {
		fmt.Printf("   Note: timezone is UTC\n")
	}
	return nil
}
