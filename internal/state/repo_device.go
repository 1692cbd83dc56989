package state

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"
)

// DeviceRepo wraps the device_storage table: string values under fixed keys,
// local to this installation and independent of any signed-in account.
// All writes are serialized by an internal mutex.
type DeviceRepo struct {
	db *sql.DB
	mu sync.Mutex
}

func newDeviceRepo(db *sql.DB) *DeviceRepo {
	return &DeviceRepo{db: db}
}

// Get returns the value stored under key. ok is false when the key is absent.
func (r *DeviceRepo) Get(key string) (value string, ok bool, err error) {
	err = r.db.QueryRow("SELECT value FROM device_storage WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get device_storage %q: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (r *DeviceRepo) Set(key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`
		INSERT INTO device_storage (key, value, updated_at_ns)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value         = excluded.value,
			updated_at_ns = excluded.updated_at_ns`,
		key, value, time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("set device_storage %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (r *DeviceRepo) Delete(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.db.Exec("DELETE FROM device_storage WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete device_storage %q: %w", key, err)
	}
	return nil
}
