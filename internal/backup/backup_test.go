package backup

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/feedlog/internal/models"
	"github.com/julianstephens/feedlog/internal/storage/sqlite"
)

func setupTestDB(t *testing.T, feedings int) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "feedlog.db")
	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	defer store.Close()

	base := time.Date(2025, 12, 12, 8, 0, 0, 0, time.UTC)
	for i := 0; i < feedings; i++ {
		ts := base.Add(time.Duration(i) * time.Hour)
		f := models.Feeding{ID: string(rune('a' + i)), FeedingTime: ts, Amount: 10, CreatedAt: ts, UpdatedAt: ts}
		if err := store.InsertFeeding(context.Background(), f); err != nil {
			t.Fatalf("failed to insert feeding: %v", err)
		}
	}
	return dbPath
}

// steppingClock advances one minute per call so every backup gets its own name.
func steppingClock() func() time.Time {
	t := time.Date(2025, 12, 13, 1, 0, 0, 0, time.Local)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func countFeedings(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM feedings").Scan(&n); err != nil {
		t.Fatalf("failed to count feedings: %v", err)
	}
	return n
}

func TestCreate(t *testing.T) {
	dbPath := setupTestDB(t, 2)
	mgr := NewManager(dbPath)
	mgr.now = steppingClock()

	path, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if filepath.Dir(path) != mgr.Dir() {
		t.Errorf("backup written to %s, want dir %s", path, mgr.Dir())
	}
	if got := filepath.Base(path); got != "feedlog-20251213-010100.db" {
		t.Errorf("backup name = %s", got)
	}
	if got := countFeedings(t, path); got != 2 {
		t.Errorf("expected 2 feedings in backup, got %d", got)
	}
}

func TestCreateMissingDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "absent.db"))
	if _, err := mgr.Create(); err == nil {
		t.Error("expected error for missing database")
	}
}

func TestCreateSameSecond(t *testing.T) {
	dbPath := setupTestDB(t, 1)
	mgr := NewManager(dbPath)
	fixed := time.Date(2025, 12, 13, 1, 0, 0, 0, time.Local)
	mgr.now = func() time.Time { return fixed }

	first, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	second, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if filepath.Base(second) != "feedlog-20251213-010000-1.db" {
		t.Errorf("second backup name = %s", filepath.Base(second))
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != 2 || backups[0].Path != second || backups[1].Path != first {
		t.Errorf("unexpected order: %+v", backups)
	}
}

func TestRotation(t *testing.T) {
	dbPath := setupTestDB(t, 1)
	mgr := NewManager(dbPath)
	mgr.now = steppingClock()
	mgr.keep = 3

	var created []string
	for i := 0; i < 5; i++ {
		path, err := mgr.Create()
		if err != nil {
			t.Fatalf("Create #%d failed: %v", i, err)
		}
		created = append(created, path)
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != 3 {
		t.Fatalf("expected 3 backups after rotation, got %d", len(backups))
	}
	for i, b := range backups {
		if want := created[len(created)-1-i]; b.Path != want {
			t.Errorf("backups[%d] = %s, want %s", i, b.Path, want)
		}
	}
	if _, err := os.Stat(created[0]); !os.IsNotExist(err) {
		t.Error("oldest backup should have been removed")
	}
}

func TestListIgnoresForeignFiles(t *testing.T) {
	dbPath := setupTestDB(t, 1)
	mgr := NewManager(dbPath)

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("expected no backups before the directory exists, got %d", len(backups))
	}

	if err := os.MkdirAll(mgr.Dir(), 0700); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"notes.txt", "feedlog-latest.db", "daylit-20251213-010000.db"} {
		if err := os.WriteFile(filepath.Join(mgr.Dir(), name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}
	backups, err = mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("expected foreign files to be ignored, got %d", len(backups))
	}
}

func TestRestore(t *testing.T) {
	dbPath := setupTestDB(t, 2)
	mgr := NewManager(dbPath)
	mgr.now = steppingClock()

	snapshot, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("DELETE FROM feedings"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	previous, err := mgr.Restore(snapshot)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if got := countFeedings(t, dbPath); got != 2 {
		t.Errorf("expected 2 feedings after restore, got %d", got)
	}
	if previous == "" {
		t.Fatal("expected the pre-restore database to be backed up")
	}
	if got := countFeedings(t, previous); got != 0 {
		t.Errorf("pre-restore backup should hold the emptied log, got %d rows", got)
	}
}

func TestRestoreRejectsInvalid(t *testing.T) {
	dbPath := setupTestDB(t, 1)
	mgr := NewManager(dbPath)
	dir := t.TempDir()

	garbage := filepath.Join(dir, "garbage.db")
	if err := os.WriteFile(garbage, []byte("not a database"), 0600); err != nil {
		t.Fatal(err)
	}

	other := filepath.Join(dir, "other.db")
	db, err := sql.Open("sqlite", other)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("CREATE TABLE notes (body TEXT)"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	tests := []struct {
		name string
		path string
	}{
		{"missing", filepath.Join(dir, "absent.db")},
		{"not sqlite", garbage},
		{"no feedings table", other},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := mgr.Restore(tt.path); err == nil {
				t.Error("expected Restore to fail")
			}
		})
	}
	if got := countFeedings(t, dbPath); got != 1 {
		t.Errorf("database should be untouched, got %d rows", got)
	}
}
