package system

import (
	"fmt"
	"path/filepath"

	"github.com/julianstephens/moonlit/internal/backup"
	"github.com/julianstephens/moonlit/internal/cli"
	"github.com/julianstephens/moonlit/internal/constants"
	"github.com/julianstephens/moonlit/internal/errors"
)

type BackupCmd struct {
	Create  BackupCreateCmd  `cmd:"" help:"Back up the local databases." default:"1"`
	List    BackupListCmd    `cmd:"" help:"List available backups."`
	Restore BackupRestoreCmd `cmd:"" help:"Restore a database from a backup."`
}

// backupManagers covers the content database and, when profiles are kept
// locally, the profile database.
func backupManagers(ctx *cli.Context) []*backup.Manager {
	dir := filepath.Join(ctx.Config.ConfigDir, backup.DirName)
	managers := []*backup.Manager{backup.NewManager("content", ctx.Config.ContentDB, dir)}
	if ctx.Config.ProfileStore == constants.ProfileStoreSQLite {
		managers = append(managers, backup.NewManager("profiles", ctx.Config.ProfileDSN, dir))
	}
	return managers
}

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	for _, m := range backupManagers(ctx) {
		path, err := m.Create()
		if err != nil {
			return fmt.Errorf("%s backup failed: %w", m.Name(), err)
		}
		ctx.Printf("✓ Backup created: %s\n", filepath.Base(path))
	}
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	managers := backupManagers(ctx)
	found := 0
	for _, m := range managers {
		backups, err := m.List()
		if err != nil {
			return fmt.Errorf("failed to list backups: %w", err)
		}
		if len(backups) == 0 {
			continue
		}
		found += len(backups)
		ctx.Printf("%s (%d, keeping most recent %d):\n", m.Name(), len(backups), backup.MaxBackups)
		for _, b := range backups {
			ctx.Printf("  %s  %s  (%.1f KB)\n", b.Timestamp.Format("2006-01-02 15:04:05"), filepath.Base(b.Path), float64(b.Size)/1024.0)
		}
		ctx.Println()
	}

	if found == 0 {
		ctx.Println("No backups found.")
	}
	ctx.Printf("Backup directory: %s\n", managers[0].Dir())
	return nil
}

type BackupRestoreCmd struct {
	BackupFile string `arg:"" help:"Path or filename of the backup to restore."`
	Yes        bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	var (
		mgr  *backup.Manager
		path string
	)
	for _, m := range backupManagers(ctx) {
		if p := m.Resolve(c.BackupFile); m.Owns(p) {
			mgr, path = m, p
			break
		}
	}
	if mgr == nil {
		return errors.Ef("backup.Restore", errors.KindInvalidInput,
			"%s is not a moonlit backup (expected content-... or profiles-...)", c.BackupFile)
	}

	if !c.Yes {
		ctx.Printf("⚠ This will replace the %s database with %s.\n", mgr.Name(), filepath.Base(path))
		ctx.Println("A backup of the current database is created first.")
		ok, err := ctx.Prompter.Confirm("Continue?")
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Restore cancelled.")
			return nil
		}
	}

	if err := ctx.Close(); err != nil {
		ctx.Printf("⚠ Failed to close databases: %v\n", err)
	}

	safety, err := mgr.Restore(path)
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}
	if safety != "" {
		ctx.Printf("Created backup of current database: %s\n", filepath.Base(safety))
	}
	ctx.Printf("✓ %s database restored from %s\n", mgr.Name(), filepath.Base(path))
	return nil
}
