package system

import (
	"fmt"

	"github.com/julianstephens/moonlit/internal/cli"
)

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	stores := []struct {
		name  string
		store any
	}{
		{"content", ctx.Content},
		{"profile", ctx.Profiles},
	}

	total := 0
	for _, s := range stores {
		m, ok := s.store.(cli.Migrator)
		if !ok {
			ctx.Printf("Skipping %s store: migrations are not supported\n", s.name)
			continue
		}
		count, err := m.Migrate(func(msg string) {
			ctx.Printf("[%s] %s\n", s.name, msg)
		})
		if err != nil {
			return fmt.Errorf("%s store migration failed: %w", s.name, err)
		}
		total += count
	}

	if total == 0 {
		ctx.Println("No migrations to apply. Databases are up to date.")
	} else {
		ctx.Printf("\nSuccessfully applied %d migration(s).\n", total)
	}
	return nil
}
