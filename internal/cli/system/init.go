package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/moonlit/internal/cli"
)

type InitCmd struct {
	Force bool `help:"Delete the local moon phase cache and note mirror before initialization. Accounts are kept."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		dbPath := ctx.Content.GetConfigPath()
		if _, err := os.Stat(dbPath); err == nil {
			if err := ctx.Content.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
				if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("failed to delete existing database: %w", err)
				}
			}
			ctx.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Content.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized moonlit storage at: %s\n", ctx.Content.GetConfigPath())

	if err := ctx.ProfileConfigErr(); err != nil {
		return err
	}
	if err := ctx.Profiles.Init(); err != nil {
		return fmt.Errorf("failed to initialize profile store: %w", err)
	}
	ctx.Printf("Initialized profile store at: %s\n", ctx.Profiles.GetConfigPath())
	return nil
}
