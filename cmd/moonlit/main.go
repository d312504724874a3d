package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/moonlit/internal/cli"
	"github.com/julianstephens/moonlit/internal/cli/account"
	"github.com/julianstephens/moonlit/internal/cli/advice"
	"github.com/julianstephens/moonlit/internal/cli/calendar"
	"github.com/julianstephens/moonlit/internal/cli/notes"
	"github.com/julianstephens/moonlit/internal/cli/system"
	"github.com/julianstephens/moonlit/internal/config"
	"github.com/julianstephens/moonlit/internal/constants"
	"github.com/julianstephens/moonlit/internal/errors"
	"github.com/julianstephens/moonlit/internal/logger"
)

var CLI struct {
	Version   kong.VersionFlag
	EnvFile   string `name:"env-file" help:"Environment file read before MOONLIT_* variables." type:"path" default:".env"`
	ConfigDir string `name:"config-dir" help:"Override MOONLIT_CONFIG_DIR." type:"path"`
	DebugLog  bool   `name:"debug" help:"Enable debug logging to stderr."`

	Init    system.InitCmd    `cmd:"" help:"Initialize moonlit storage."`
	Migrate system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Tui     system.TuiCmd     `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Backup  system.BackupCmd  `cmd:"" help:"Manage backups of the local databases."`
	Debug   system.DebugCmd   `cmd:"" help:"Debug commands for troubleshooting."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store the PostgreSQL connection string in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string with the password masked."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Show keyring and session status." default:"1"`
	} `cmd:"" help:"Manage credentials in the OS keyring."`

	Register account.RegisterCmd `cmd:"" help:"Create an account and sign in."`
	Login    account.LoginCmd    `cmd:"" help:"Sign in."`
	Logout   account.LogoutCmd   `cmd:"" help:"Sign out."`
	Whoami   account.WhoamiCmd   `cmd:"" help:"Show the signed-in profile."`
	Profile  account.ProfileCmd  `cmd:"" help:"Edit your profile."`
	Zodiac   account.ZodiacCmd   `cmd:"" help:"Show the zodiac sign for a birthdate."`

	Month    calendar.MonthCmd    `cmd:"" help:"Show or repair a month of moon phases."`
	Day      calendar.DayCmd      `cmd:"" help:"Show one day's phase, notes and saved status."`
	Favorite calendar.FavoriteCmd `cmd:"" help:"Manage saved days."`
	Notes    notes.NotesCmd       `cmd:"" help:"Manage notes for a day."`
	Advice   advice.AdviceCmd     `cmd:"" help:"Show a horoscope reading."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Moon phase calendar with horoscope readings, saved days and notes"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	cfg, err := config.Load(CLI.EnvFile)
	if err != nil {
		errors.Fatal(err)
	}
	if CLI.ConfigDir != "" {
		if err := cfg.SetConfigDir(CLI.ConfigDir); err != nil {
			errors.Fatal(err)
		}
	}
	cfg.Debug = cfg.Debug || CLI.DebugLog

	if err := logger.Init(logger.Config{Debug: cfg.Debug, ConfigDir: cfg.ConfigDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
	}

	appCtx, err := cli.New(cfg)
	if err != nil {
		errors.Fatal(err)
	}

	err = ctx.Run(appCtx)
	if cerr := appCtx.Close(); cerr != nil {
		logger.Warn("failed to close stores", "error", cerr)
	}
	errors.Fatal(err)
}
