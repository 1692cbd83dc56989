package state

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
)

// ResponseCacheEntry is one stored response body in cache.db.
type ResponseCacheEntry struct {
	ID         string
	Namespace  string
	RequestKey string
	Body       []byte
	StoredAtNs int64
}

// ResponseCacheRepo wraps cache.db's response_cache table.
type ResponseCacheRepo struct {
	db *sql.DB
	mu sync.Mutex
}

func newResponseCacheRepo(db *sql.DB) *ResponseCacheRepo {
	return &ResponseCacheRepo{db: db}
}

// Upsert stores e, replacing any entry with the same ID.
func (r *ResponseCacheRepo) Upsert(e ResponseCacheEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`
		INSERT INTO response_cache (id, namespace, request_key, body, stored_at_ns)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			namespace    = excluded.namespace,
			request_key  = excluded.request_key,
			body         = excluded.body,
			stored_at_ns = excluded.stored_at_ns`,
		e.ID, e.Namespace, e.RequestKey, e.Body, e.StoredAtNs,
	)
	if err != nil {
		return fmt.Errorf("upsert response_cache %s: %w", e.ID, err)
	}
	return nil
}

// Get loads the entry with the given id and namespace. Returns ErrNotFound when absent.
func (r *ResponseCacheRepo) Get(namespace, id string) (*ResponseCacheEntry, error) {
	var e ResponseCacheEntry
	err := r.db.QueryRow(`
		SELECT id, namespace, request_key, body, stored_at_ns
		FROM response_cache WHERE id = ? AND namespace = ?`, id, namespace,
	).Scan(&e.ID, &e.Namespace, &e.RequestKey, &e.Body, &e.StoredAtNs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get response_cache %s: %w", id, err)
	}
	return &e, nil
}

// DeleteByNamespacePrefix removes every entry whose namespace starts with
// prefix and returns the number of rows removed.
func (r *ResponseCacheRepo) DeleteByNamespacePrefix(prefix string) (int64, error) {
	if prefix == "" {
		return 0, fmt.Errorf("delete response_cache: empty namespace prefix")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.Exec(
		"DELETE FROM response_cache WHERE substr(namespace, 1, ?) = ?",
		len(prefix), prefix,
	)
	if err != nil {
		return 0, fmt.Errorf("delete response_cache prefix %q: %w", prefix, err)
	}
	return res.RowsAffected()
}

// CountByNamespace returns the number of entries stored under namespace.
func (r *ResponseCacheRepo) CountByNamespace(namespace string) (int, error) {
	var n int
	if err := r.db.QueryRow(
		"SELECT COUNT(*) FROM response_cache WHERE namespace = ?", namespace,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("count response_cache %q: %w", namespace, err)
	}
	return n, nil
}
