package profile

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Repository defines the interface for device profile persistence.
type Repository interface {
	Get(ctx context.Context, deviceID string) (*Profile, error)
	List(ctx context.Context) ([]Profile, error)
	Save(ctx context.Context, p *Profile) error
	Delete(ctx context.Context, deviceID string) error

	// Aliases returns the device-id to alias mapping for non-empty aliases.
	// Satisfies connectivity.AliasSource.
	Aliases(ctx context.Context) (map[string]string, error)

	// AutoConnectIDs returns device IDs flagged for connect-on-startup.
	AutoConnectIDs(ctx context.Context) ([]string, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed profile repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Get returns the profile for a device ID.
func (r *SQLiteRepository) Get(ctx context.Context, deviceID string) (*Profile, error) {
	const query = `SELECT device_id, alias, auto_connect, updated_at
		FROM device_profiles WHERE device_id = ?`
	row := r.db.QueryRowContext(ctx, query, deviceID)

	var p Profile
	var autoConnect int
	var updatedAt string
	err := row.Scan(&p.DeviceID, &p.Alias, &autoConnect, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning profile: %w", err)
	}
	p.AutoConnect = autoConnect != 0
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}

// List returns all profiles ordered by device ID.
func (r *SQLiteRepository) List(ctx context.Context) ([]Profile, error) {
	const query = `SELECT device_id, alias, auto_connect, updated_at
		FROM device_profiles ORDER BY device_id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying profiles: %w", err)
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		var p Profile
		var autoConnect int
		var updatedAt string
		if err := rows.Scan(&p.DeviceID, &p.Alias, &autoConnect, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning profile row: %w", err)
		}
		p.AutoConnect = autoConnect != 0
		p.UpdatedAt = parseTime(updatedAt)
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating profile rows: %w", err)
	}
	return profiles, nil
}

// Save inserts or replaces a profile. The UpdatedAt field is stamped here.
func (r *SQLiteRepository) Save(ctx context.Context, p *Profile) error {
	if p.DeviceID == "" {
		return ErrMissingDeviceID
	}

	p.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO device_profiles (device_id, alias, auto_connect, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(device_id) DO UPDATE SET
			alias = excluded.alias,
			auto_connect = excluded.auto_connect,
			updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query,
		p.DeviceID, p.Alias, boolToInt(p.AutoConnect), p.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("saving profile %s: %w", p.DeviceID, err)
	}
	return nil
}

// Delete removes a profile. Deleting a missing profile is not an error.
func (r *SQLiteRepository) Delete(ctx context.Context, deviceID string) error {
	const query = `DELETE FROM device_profiles WHERE device_id = ?`
	if _, err := r.db.ExecContext(ctx, query, deviceID); err != nil {
		return fmt.Errorf("deleting profile %s: %w", deviceID, err)
	}
	return nil
}

// Aliases returns the device-id to alias mapping for non-empty aliases.
func (r *SQLiteRepository) Aliases(ctx context.Context) (map[string]string, error) {
	const query = `SELECT device_id, alias FROM device_profiles WHERE alias != ''`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying aliases: %w", err)
	}
	defer rows.Close()

	aliases := make(map[string]string)
	for rows.Next() {
		var deviceID, alias string
		if err := rows.Scan(&deviceID, &alias); err != nil {
			return nil, fmt.Errorf("scanning alias row: %w", err)
		}
		aliases[deviceID] = alias
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating alias rows: %w", err)
	}
	return aliases, nil
}

// AutoConnectIDs returns device IDs flagged for connect-on-startup.
func (r *SQLiteRepository) AutoConnectIDs(ctx context.Context) ([]string, error) {
	const query = `SELECT device_id FROM device_profiles WHERE auto_connect != 0 ORDER BY device_id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying auto-connect profiles: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning auto-connect row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating auto-connect rows: %w", err)
	}
	return ids, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// parseTime parses an RFC3339 timestamp, returning the zero time on failure.
func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s) //nolint:errcheck // Format is controlled
	return t
}
