package profile

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory SQLite database with the device_profiles table.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE device_profiles (
			device_id TEXT PRIMARY KEY,
			alias TEXT NOT NULL DEFAULT '',
			auto_connect INTEGER NOT NULL DEFAULT 0,
			updated_at TEXT NOT NULL
		);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close() //nolint:errcheck // Test cleanup
	})
	return db
}

func TestSaveAndGet(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	p := &Profile{
		DeviceID:    "aa:bb:cc:dd:ee:01",
		Alias:       "Studio Monitors",
		AutoConnect: true,
	}
	if err := repo.Save(ctx, p); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if p.UpdatedAt.IsZero() {
		t.Error("Save() should stamp UpdatedAt")
	}

	got, err := repo.Get(ctx, "aa:bb:cc:dd:ee:01")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Alias != "Studio Monitors" {
		t.Errorf("Alias = %q, want %q", got.Alias, "Studio Monitors")
	}
	if !got.AutoConnect {
		t.Error("AutoConnect = false, want true")
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be set")
	}
}

func TestSave_Upsert(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	if err := repo.Save(ctx, &Profile{DeviceID: "dev-1", Alias: "Old Name"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := repo.Save(ctx, &Profile{DeviceID: "dev-1", Alias: "New Name", AutoConnect: true}); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	got, err := repo.Get(ctx, "dev-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Alias != "New Name" {
		t.Errorf("Alias = %q, want %q", got.Alias, "New Name")
	}
	if !got.AutoConnect {
		t.Error("AutoConnect not updated by upsert")
	}

	profiles, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(profiles) != 1 {
		t.Errorf("List() returned %d profiles, want 1", len(profiles))
	}
}

func TestSave_MissingDeviceID(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))

	err := repo.Save(context.Background(), &Profile{Alias: "No ID"})
	if !errors.Is(err, ErrMissingDeviceID) {
		t.Errorf("Save() error = %v, want ErrMissingDeviceID", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))

	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestList_Ordered(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	for _, id := range []string{"dev-c", "dev-a", "dev-b"} {
		if err := repo.Save(ctx, &Profile{DeviceID: id}); err != nil {
			t.Fatalf("Save(%s) error = %v", id, err)
		}
	}

	profiles, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(profiles) != 3 {
		t.Fatalf("List() returned %d profiles, want 3", len(profiles))
	}
	for i, want := range []string{"dev-a", "dev-b", "dev-c"} {
		if profiles[i].DeviceID != want {
			t.Errorf("profiles[%d].DeviceID = %q, want %q", i, profiles[i].DeviceID, want)
		}
	}
}

func TestDelete_Idempotent(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	if err := repo.Save(ctx, &Profile{DeviceID: "dev-1"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := repo.Delete(ctx, "dev-1"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if _, err := repo.Get(ctx, "dev-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}

	// Deleting again is a no-op.
	if err := repo.Delete(ctx, "dev-1"); err != nil {
		t.Errorf("second Delete() error = %v", err)
	}
}

func TestAliases_SkipsEmpty(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	saves := []*Profile{
		{DeviceID: "dev-1", Alias: "Front Speakers"},
		{DeviceID: "dev-2", Alias: ""},
		{DeviceID: "dev-3", Alias: "Turntable"},
	}
	for _, p := range saves {
		if err := repo.Save(ctx, p); err != nil {
			t.Fatalf("Save(%s) error = %v", p.DeviceID, err)
		}
	}

	aliases, err := repo.Aliases(ctx)
	if err != nil {
		t.Fatalf("Aliases() error = %v", err)
	}
	if len(aliases) != 2 {
		t.Errorf("Aliases() returned %d entries, want 2", len(aliases))
	}
	if aliases["dev-1"] != "Front Speakers" {
		t.Errorf("aliases[dev-1] = %q, want %q", aliases["dev-1"], "Front Speakers")
	}
	if _, ok := aliases["dev-2"]; ok {
		t.Error("empty alias should not appear in Aliases()")
	}
}

func TestAutoConnectIDs(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	saves := []*Profile{
		{DeviceID: "dev-1", AutoConnect: true},
		{DeviceID: "dev-2", AutoConnect: false},
		{DeviceID: "dev-3", AutoConnect: true},
	}
	for _, p := range saves {
		if err := repo.Save(ctx, p); err != nil {
			t.Fatalf("Save(%s) error = %v", p.DeviceID, err)
		}
	}

	ids, err := repo.AutoConnectIDs(ctx)
	if err != nil {
		t.Fatalf("AutoConnectIDs() error = %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("AutoConnectIDs() returned %d, want 2", len(ids))
	}
	if ids[0] != "dev-1" || ids[1] != "dev-3" {
		t.Errorf("AutoConnectIDs() = %v, want [dev-1 dev-3]", ids)
	}
}
