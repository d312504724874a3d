// Package backup snapshots the local SQLite databases into the config
// directory and restores them.
package backup

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/moonlit/internal/errors"
	"github.com/julianstephens/moonlit/internal/logger"
)

const (
	// MaxBackups is the number of backups kept per database
	MaxBackups = 14
	// DirName is the backup directory under the config directory
	DirName = "backups"

	fileSuffix      = ".db"
	timestampFormat = "20060102-150405"
)

// Info describes one backup file.
type Info struct {
	Path      string
	Timestamp time.Time
	Size      int64
}

// Manager backs up a single database. Backups are named
// <name>-YYYYMMDD-HHMMSS[-N].db so several databases can share a directory.
type Manager struct {
	name      string
	dbPath    string
	backupDir string
	now       func() time.Time
}

func NewManager(name, dbPath, backupDir string) *Manager {
	return &Manager{
		name:      name,
		dbPath:    dbPath,
		backupDir: backupDir,
		now:       time.Now,
	}
}

func (m *Manager) Name() string { return m.name }

func (m *Manager) Dir() string { return m.backupDir }

// Create copies the database into a new backup and prunes backups beyond
// MaxBackups.
func (m *Manager) Create() (string, error) {
	path, err := m.create()
	if err != nil {
		return "", err
	}
	if err := m.rotate(); err != nil {
		logger.Warn("failed to rotate old backups", "database", m.name, "error", err)
	}
	return path, nil
}

func (m *Manager) create() (string, error) {
	const op = "backup.Create"

	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", errors.E(op, errors.KindStorage, err)
	}
	if _, err := os.Stat(m.dbPath); err != nil {
		return "", errors.Ef(op, errors.KindNotFound, "database does not exist: %s", m.dbPath)
	}

	path, err := m.nextPath()
	if err != nil {
		return "", errors.E(op, errors.KindStorage, err)
	}
	if err := vacuumInto(m.dbPath, path); err != nil {
		return "", errors.E(op, errors.KindStorage, fmt.Errorf("failed to back up %s: %w", m.name, err))
	}
	logger.Info("backup created", "database", m.name, "path", path)
	return path, nil
}

func (m *Manager) nextPath() (string, error) {
	base := m.name + "-" + m.now().Format(timestampFormat)
	path := filepath.Join(m.backupDir, base+fileSuffix)
	for i := 1; fileExists(path); i++ {
		if i > 100 {
			return "", fmt.Errorf("failed to generate unique backup filename")
		}
		path = filepath.Join(m.backupDir, fmt.Sprintf("%s-%d%s", base, i, fileSuffix))
	}
	return path, nil
}

// vacuumInto writes a compacted, consistent copy of src to dst.
func vacuumInto(src, dst string) error {
	db, err := sql.Open("sqlite", src+"?mode=ro")
	if err != nil {
		return err
	}
	defer db.Close()

	if err := verify(db); err != nil {
		return fmt.Errorf("source database appears to be corrupted: %w", err)
	}
	_, err = db.Exec("VACUUM INTO ?", dst)
	return err
}

// List returns this database's backups, newest first.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.backupDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.E("backup.List", errors.KindStorage, err)
	}

	var backups []Info
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ts, ok := m.parseName(entry.Name())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, Info{
			Path:      filepath.Join(m.backupDir, entry.Name()),
			Timestamp: ts,
			Size:      info.Size(),
		})
	}

	slices.SortStableFunc(backups, func(a, b Info) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}
		return strings.Compare(b.Path, a.Path)
	})
	return backups, nil
}

// parseName extracts the timestamp from a backup file name, dropping any
// collision counter.
func (m *Manager) parseName(name string) (time.Time, bool) {
	rest, ok := strings.CutPrefix(name, m.name+"-")
	if !ok {
		return time.Time{}, false
	}
	rest, ok = strings.CutSuffix(rest, fileSuffix)
	if !ok {
		return time.Time{}, false
	}
	if len(rest) > len(timestampFormat) {
		counter, found := strings.CutPrefix(rest[len(timestampFormat):], "-")
		if _, err := strconv.Atoi(counter); !found || err != nil {
			return time.Time{}, false
		}
		rest = rest[:len(timestampFormat)]
	}
	ts, err := time.ParseInLocation(timestampFormat, rest, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

func (m *Manager) rotate() error {
	backups, err := m.List()
	if err != nil {
		return err
	}
	for i := MaxBackups; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
	}
	return nil
}

// Resolve accepts an absolute path or a file name inside the backup directory.
func (m *Manager) Resolve(file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	if p := filepath.Join(m.backupDir, file); fileExists(p) {
		return p
	}
	return file
}

// Owns reports whether file is one of this database's backups.
func (m *Manager) Owns(file string) bool {
	_, ok := m.parseName(filepath.Base(file))
	return ok
}

// Restore replaces the database with backupPath. The current database is
// backed up first and returned as safetyPath. The database must be closed.
func (m *Manager) Restore(backupPath string) (safetyPath string, err error) {
	const op = "backup.Restore"

	if !fileExists(backupPath) {
		return "", errors.Ef(op, errors.KindNotFound, "backup file does not exist: %s", backupPath)
	}
	if err := verifyFile(backupPath); err != nil {
		return "", errors.E(op, errors.KindInvalidInput, fmt.Errorf("backup file is corrupted or invalid: %w", err))
	}

	if fileExists(m.dbPath) {
		// Not rotated, so the restore source can never be pruned
		if safetyPath, err = m.create(); err != nil {
			return "", errors.E(op, errors.KindStorage, fmt.Errorf("failed to back up current database before restore: %w", err))
		}
	}

	tmp := m.dbPath + ".restore.tmp"
	if err := copyFile(backupPath, tmp); err != nil {
		return "", errors.E(op, errors.KindStorage, fmt.Errorf("failed to copy backup file: %w", err))
	}
	if err := os.Rename(tmp, m.dbPath); err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil {
			logger.Warn("failed to remove temporary file", "path", tmp, "error", rmErr)
		}
		return "", errors.E(op, errors.KindStorage, fmt.Errorf("failed to restore database: %w", err))
	}
	// Stale WAL files would replay over the restored pages
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(m.dbPath + suffix); err != nil && !os.IsNotExist(err) {
			logger.Warn("failed to remove journal file", "path", m.dbPath+suffix, "error", err)
		}
	}
	logger.Info("backup restored", "database", m.name, "from", backupPath)
	return safetyPath, nil
}

func verifyFile(path string) error {
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return err
	}
	defer db.Close()
	return verify(db)
}

func verify(db *sql.DB) error {
	var count int
	return db.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.ReadFrom(in); err != nil {
		return err
	}
	return out.Sync()
}
