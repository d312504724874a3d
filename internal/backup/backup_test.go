package backup

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "content.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE moon_phases (date TEXT PRIMARY KEY, phase TEXT NOT NULL)`); err != nil {
		t.Fatalf("failed to create test table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO moon_phases VALUES ('2024-01-25', 'Full Moon'), ('2024-01-11', 'New Moon')`); err != nil {
		t.Fatalf("failed to insert test data: %v", err)
	}
	return dbPath
}

func countRows(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM moon_phases").Scan(&n); err != nil {
		t.Fatalf("failed to count rows in %s: %v", path, err)
	}
	return n
}

// fixedClock returns a clock that advances one minute per call.
func fixedClock(start time.Time) func() time.Time {
	next := start
	return func() time.Time {
		t := next
		next = next.Add(time.Minute)
		return t
	}
}

func newTestManager(t *testing.T, dbPath string) *Manager {
	t.Helper()
	m := NewManager("content", dbPath, filepath.Join(filepath.Dir(dbPath), DirName))
	m.now = fixedClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local))
	return m
}

func TestCreate(t *testing.T) {
	dbPath := setupTestDB(t)
	m := newTestManager(t, dbPath)

	path, err := m.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if filepath.Base(path) != "content-20240301-090000.db" {
		t.Errorf("backup name = %s", filepath.Base(path))
	}
	if got := countRows(t, path); got != 2 {
		t.Errorf("backup rows = %d, want 2", got)
	}
}

func TestCreate_MissingDatabase(t *testing.T) {
	m := newTestManager(t, filepath.Join(t.TempDir(), "missing.db"))

	if _, err := m.Create(); err == nil {
		t.Fatal("Create() error = nil, want missing database")
	}
}

func TestCreate_NameCollision(t *testing.T) {
	dbPath := setupTestDB(t)
	m := newTestManager(t, dbPath)
	m.now = func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local) }

	first, err := m.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	second, err := m.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if first == second {
		t.Fatal("second backup overwrote the first")
	}
	if filepath.Base(second) != "content-20240301-090000-1.db" {
		t.Errorf("second name = %s", filepath.Base(second))
	}
	backups, err := m.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(backups) != 2 {
		t.Errorf("List() = %d backups, want 2", len(backups))
	}
}

func TestList_NewestFirstAndScoped(t *testing.T) {
	dbPath := setupTestDB(t)
	m := newTestManager(t, dbPath)

	for i := 0; i < 3; i++ {
		if _, err := m.Create(); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	// Files from other databases and unrelated files are ignored
	for _, name := range []string{"profile-20240301-090000.db", "content-notes.txt", "content-garbage.db"} {
		if err := os.WriteFile(filepath.Join(m.Dir(), name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	backups, err := m.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(backups) != 3 {
		t.Fatalf("List() = %d backups, want 3", len(backups))
	}
	for i := 1; i < len(backups); i++ {
		if !backups[i-1].Timestamp.After(backups[i].Timestamp) {
			t.Errorf("backups not sorted newest first: %v then %v", backups[i-1].Timestamp, backups[i].Timestamp)
		}
	}
}

func TestList_NoDirectory(t *testing.T) {
	m := newTestManager(t, filepath.Join(t.TempDir(), "content.db"))

	backups, err := m.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("List() = %v, want empty", backups)
	}
}

func TestCreate_Rotates(t *testing.T) {
	dbPath := setupTestDB(t)
	m := newTestManager(t, dbPath)

	for i := 0; i < MaxBackups+3; i++ {
		if _, err := m.Create(); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	backups, err := m.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(backups) != MaxBackups {
		t.Errorf("List() = %d backups, want %d", len(backups), MaxBackups)
	}
}

func TestRestore(t *testing.T) {
	dbPath := setupTestDB(t)
	m := newTestManager(t, dbPath)

	backupPath, err := m.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("DELETE FROM moon_phases"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	safety, err := m.Restore(backupPath)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if got := countRows(t, dbPath); got != 2 {
		t.Errorf("restored rows = %d, want 2", got)
	}
	if safety == "" {
		t.Fatal("no safety backup created")
	}
	if got := countRows(t, safety); got != 0 {
		t.Errorf("safety backup rows = %d, want 0", got)
	}
}

func TestRestore_InvalidBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	m := newTestManager(t, dbPath)

	bad := filepath.Join(t.TempDir(), "content-20240301-090000.db")
	if err := os.WriteFile(bad, []byte("not a database"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := m.Restore(bad); err == nil {
		t.Fatal("Restore() error = nil, want invalid backup")
	}
	if got := countRows(t, dbPath); got != 2 {
		t.Errorf("database rows = %d after failed restore, want 2", got)
	}
}

func TestRestore_MissingBackup(t *testing.T) {
	m := newTestManager(t, setupTestDB(t))

	if _, err := m.Restore(filepath.Join(t.TempDir(), "nope.db")); err == nil {
		t.Fatal("Restore() error = nil, want missing backup")
	}
}

func TestResolveAndOwns(t *testing.T) {
	dbPath := setupTestDB(t)
	m := newTestManager(t, dbPath)
	path, err := m.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if got := m.Resolve(filepath.Base(path)); got != path {
		t.Errorf("Resolve(name) = %s, want %s", got, path)
	}
	if got := m.Resolve(path); got != path {
		t.Errorf("Resolve(abs) = %s, want %s", got, path)
	}
	if !m.Owns(path) {
		t.Errorf("Owns(%s) = false", path)
	}
	if m.Owns("profile-20240301-090000.db") {
		t.Error("Owns(profile backup) = true")
	}
}
