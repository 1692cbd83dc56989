// Package respcache is the offline fallback store for launches API responses.
// It never reports storage failures to callers: a failed read is a miss and a
// failed write is logged and dropped.
package respcache

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"log"
	"time"

	"github.com/maypok86/otter"
	"github.com/zeebo/xxh3"

	"github.com/Resinat/launchview/internal/state"
)

const (
	// NamespacePrefix marks every entry owned by this application.
	NamespacePrefix = "spacex-api-cache"
	// Version is bumped when the stored body format changes.
	Version = "v1"
)

// Namespace is the active cache namespace.
func Namespace() string {
	return NamespacePrefix + "-" + Version
}

// Key derives the request key from the target URL and, when present, the
// serialized request body. Callers must pass the exact bytes they send so
// identical requests map to identical keys.
func Key(url string, body []byte) string {
	if body == nil {
		return url
	}
	return url + "?body=" + base64.StdEncoding.EncodeToString(body)
}

// Repo is the durable tier.
type Repo interface {
	Upsert(e state.ResponseCacheEntry) error
	Get(namespace, id string) (*state.ResponseCacheEntry, error)
	DeleteByNamespacePrefix(prefix string) (int64, error)
	CountByNamespace(namespace string) (int, error)
}

// Cache layers a bounded in-memory tier over the durable repo.
type Cache struct {
	repo      Repo
	hot       otter.Cache[string, []byte]
	namespace string
	now       func() time.Time
}

// New creates a Cache whose hot tier holds at most hotEntries responses.
func New(repo Repo, hotEntries int) *Cache {
	if hotEntries <= 0 {
		hotEntries = 1
	}
	hot, err := otter.MustBuilder[string, []byte](hotEntries).
		Cost(func(_ string, _ []byte) uint32 { return 1 }).
		Build()
	if err != nil {
		panic("respcache: failed to create hot tier: " + err.Error())
	}
	return &Cache{
		repo:      repo,
		hot:       hot,
		namespace: Namespace(),
		now:       time.Now,
	}
}

// Put stores body under key, replacing any previous entry.
func (c *Cache) Put(key string, body []byte) {
	if key == "" || body == nil {
		return
	}
	stored := append([]byte(nil), body...)
	c.hot.Set(key, stored)
	if c.repo == nil {
		return
	}
	err := c.repo.Upsert(state.ResponseCacheEntry{
		ID:         entryID(key),
		Namespace:  c.namespace,
		RequestKey: key,
		Body:       stored,
		StoredAtNs: c.now().UnixNano(),
	})
	if err != nil {
		log.Printf("[respcache] put %s: %v", key, err)
	}
}

// Get returns the last stored body for key. ok is false on a miss or on any
// storage error.
func (c *Cache) Get(key string) (body []byte, ok bool) {
	if key == "" {
		return nil, false
	}
	if body, ok := c.hot.Get(key); ok {
		return body, true
	}
	if c.repo == nil {
		return nil, false
	}
	e, err := c.repo.Get(c.namespace, entryID(key))
	if err != nil {
		if !errors.Is(err, state.ErrNotFound) {
			log.Printf("[respcache] get %s: %v", key, err)
		}
		return nil, false
	}
	// Guard against an id collision between two distinct keys.
	if e.RequestKey != key {
		return nil, false
	}
	c.hot.Set(key, e.Body)
	return e.Body, true
}

// Clear removes every entry owned by this application, across all versions,
// and returns how many durable entries were removed.
func (c *Cache) Clear() int64 {
	c.hot.Clear()
	if c.repo == nil {
		return 0
	}
	n, err := c.repo.DeleteByNamespacePrefix(NamespacePrefix)
	if err != nil {
		log.Printf("[respcache] clear: %v", err)
		return 0
	}
	return n
}

// Len returns the number of durable entries in the active namespace.
func (c *Cache) Len() int {
	if c.repo == nil {
		return c.hot.Size()
	}
	n, err := c.repo.CountByNamespace(c.namespace)
	if err != nil {
		log.Printf("[respcache] count: %v", err)
		return 0
	}
	return n
}

// Close releases the hot tier.
func (c *Cache) Close() {
	c.hot.Close()
}

// entryID is the hex xxh3-128 of key, giving unbounded keys a fixed-width row id.
func entryID(key string) string {
	h128 := xxh3.HashString128(key)
	var b [16]byte
	binary.LittleEndian.PutUint64(b[:8], h128.Lo)
	binary.LittleEndian.PutUint64(b[8:], h128.Hi)
	return hex.EncodeToString(b[:])
}
