package persist

import (
	"encoding/json"
	"log"
	"time"
)

// Cache stores JSON values in the kv table with a fixed time-to-live.
type Cache struct {
	db     *DB
	prefix string
	ttl    time.Duration
}

// Cache returns a TTL cache whose keys are namespaced by prefix.
func (d *DB) Cache(prefix string, ttl time.Duration) *Cache {
	return &Cache{db: d, prefix: prefix, ttl: ttl}
}

// Get decodes the cached value for key into dest. Expired or unreadable
// entries are removed and reported as a miss.
func (c *Cache) Get(key string, dest any) bool {
	if c == nil || c.db == nil {
		return false
	}
	full := c.prefix + key
	raw, at, found, err := c.db.Get(full)
	if err != nil {
		log.Printf("persist: cache read %s: %v", full, err)
		return false
	}
	if !found {
		return false
	}
	if c.db.now().Sub(at) >= c.ttl {
		_ = c.db.Delete(full)
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		log.Printf("persist: cache entry %s unreadable: %v", full, err)
		_ = c.db.Delete(full)
		return false
	}
	return true
}

// Put stores value under key.
func (c *Cache) Put(key string, value any) error {
	if c == nil || c.db == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.db.Put(c.prefix+key, raw)
}
