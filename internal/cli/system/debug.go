package system

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/moonlit/internal/cli"
	"github.com/julianstephens/moonlit/internal/errors"
	"github.com/julianstephens/moonlit/internal/logger"
	"github.com/julianstephens/moonlit/internal/models"
	"github.com/julianstephens/moonlit/internal/storage"
)

type DebugCmd struct {
	DBPath    *DebugDBPathCmd    `cmd:"" help:"Show database locations."`
	DumpDay   *DebugDumpDayCmd   `cmd:"" help:"Dump a day's cached record and mirrored notes as JSON."`
	DumpMonth *DebugDumpMonthCmd `cmd:"" help:"Dump a month's cached records as JSON."`
}

func printJSON(ctx *cli.Context, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(out))
	return nil
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	return printJSON(ctx, map[string]string{
		"config_dir":    ctx.Config.ConfigDir,
		"content":       ctx.Content.GetConfigPath(),
		"profile_store": ctx.Config.ProfileStore,
		"profile":       maskPassword(ctx.Config.ProfileDSN),
		"log_file":      logger.Path(ctx.Config.ConfigDir),
	})
}

type DebugDumpDayCmd struct {
	Date string `arg:"" help:"Date to dump (YYYY-MM-DD or 'today')."`
}

func (cmd *DebugDumpDayCmd) Run(ctx *cli.Context) error {
	if err := ctx.Content.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	date, err := cli.ResolveDate(cmd.Date)
	if err != nil {
		return err
	}

	reqCtx, cancel := ctx.Ctx()
	defer cancel()

	out := struct {
		Date   string            `json:"date"`
		Record *models.MoonPhase `json:"record"`
		Notes  []models.Note     `json:"mirrored_notes"`
	}{Date: date, Notes: []models.Note{}}

	record, err := ctx.Content.GetRecord(reqCtx, date)
	switch {
	case err == nil:
		out.Record = &record
	case !errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("failed to get record: %w", err)
	}

	notes, err := ctx.Content.NotesForDate(reqCtx, date)
	if err != nil {
		return fmt.Errorf("failed to get notes: %w", err)
	}
	if notes != nil {
		out.Notes = notes
	}
	return printJSON(ctx, out)
}

type DebugDumpMonthCmd struct {
	Month string `arg:"" help:"Month to dump (YYYY-MM)."`
}

func (cmd *DebugDumpMonthCmd) Run(ctx *cli.Context) error {
	if err := ctx.Content.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	ym, err := cli.ResolveMonth(cmd.Month)
	if err != nil {
		return err
	}

	reqCtx, cancel := ctx.Ctx()
	defer cancel()

	records, err := ctx.Content.RecordsForMonth(reqCtx, ym)
	if err != nil {
		return fmt.Errorf("failed to get records: %w", err)
	}
	if records == nil {
		records = []models.MoonPhase{}
	}
	return printJSON(ctx, records)
}
