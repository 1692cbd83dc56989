package state

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// persistenceCloser holds DB handles for cleanup. Implements io.Closer.
type persistenceCloser struct {
	stateDB *sql.DB
	cacheDB *sql.DB
}

func (c *persistenceCloser) Close() error {
	return errors.Join(c.stateDB.Close(), c.cacheDB.Close())
}

// Repos bundles the repositories backed by state.db and cache.db.
type Repos struct {
	Device        *DeviceRepo
	Profiles      *ProfileRepo
	ResponseCache *ResponseCacheRepo
}

// PersistenceBootstrap initializes both databases and returns ready-to-use
// repositories plus an io.Closer for the DB handles.
//
// Steps:
//  1. Open/create state.db and cache.db with recommended pragmas.
//  2. Apply embedded migrations to both databases.
//  3. Construct the repositories.
func PersistenceBootstrap(stateDir, cacheDir string) (repos *Repos, closer io.Closer, err error) {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create state dir %s: %w", stateDir, err)
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create cache dir %s: %w", cacheDir, err)
	}

	stateDB, err := OpenDB(filepath.Join(stateDir, "state.db"))
	if err != nil {
		return nil, nil, fmt.Errorf("open state.db: %w", err)
	}

	cacheDB, err := OpenDB(filepath.Join(cacheDir, "cache.db"))
	if err != nil {
		stateDB.Close()
		return nil, nil, fmt.Errorf("open cache.db: %w", err)
	}

	if err := MigrateStateDB(stateDB); err != nil {
		stateDB.Close()
		cacheDB.Close()
		return nil, nil, fmt.Errorf("migrate state.db: %w", err)
	}

	if err := MigrateCacheDB(cacheDB); err != nil {
		stateDB.Close()
		cacheDB.Close()
		return nil, nil, fmt.Errorf("migrate cache.db: %w", err)
	}

	repos = &Repos{
		Device:        newDeviceRepo(stateDB),
		Profiles:      newProfileRepo(stateDB),
		ResponseCache: newResponseCacheRepo(cacheDB),
	}
	return repos, &persistenceCloser{stateDB: stateDB, cacheDB: cacheDB}, nil
}
