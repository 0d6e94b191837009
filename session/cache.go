package session

import (
	"encoding/json"
	"time"

	extErrors "github.com/pkg/errors"
)

// Clock tells the current time
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// Storage is a key value store for serialized records
type Storage interface {
	// Get returns ok false when key is absent
	Get(key string) (value []byte, ok bool, err error)
	Set(key string, value []byte) error
	// Delete succeeds when key is absent
	Delete(key string) error
}

// Cache keeps one Record under StorageKey and drops it once it is older than TTL
type Cache struct {
	storage Storage
	clock   Clock
}

// NewCache returns a Cache over storage
func NewCache(storage Storage, clock Clock) *Cache {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Cache{
		storage: storage,
		clock:   clock,
	}
}

// Load returns the stored record while it is valid. Stale or unreadable entries are
// deleted and reported as absent.
func (c *Cache) Load() (*Record, error) {
	raw, ok, err := c.storage.Get(StorageKey)
	if err != nil {
		return nil, extErrors.Wrap(err, "Cannot read session storage")
	}
	if !ok {
		return nil, nil
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil || !rec.Valid(c.clock.Now()) {
		if err := c.storage.Delete(StorageKey); err != nil {
			return nil, extErrors.Wrap(err, "Cannot discard stale session")
		}
		return nil, nil
	}
	return &rec, nil
}

// Save stores rec as is
func (c *Cache) Save(rec Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return extErrors.Wrap(err, "Cannot encode session")
	}
	if err := c.storage.Set(StorageKey, raw); err != nil {
		return extErrors.Wrap(err, "Cannot write session storage")
	}
	return nil
}

// Clear removes the stored record
func (c *Cache) Clear() error {
	if err := c.storage.Delete(StorageKey); err != nil {
		return extErrors.Wrap(err, "Cannot clear session storage")
	}
	return nil
}

// Now is the cache's clock
func (c *Cache) Now() time.Time {
	return c.clock.Now()
}
