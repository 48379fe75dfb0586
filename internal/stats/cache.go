package stats

import (
	"sync"
	"time"

	"github.com/mitchellh/hashstructure/v2"

	"github.com/julianstephens/quitlog/internal/logger"
	"github.com/julianstephens/quitlog/internal/models"
)

type cacheKey struct {
	entryCount   int
	profileID    string
	fingerprint  uint64
	journeyStart time.Time
	location     string
}

// Cache memoizes Calculate for a short TTL. The key covers the entry count,
// the profile identity and content, and the journey start, so baseline
// edits miss immediately. Callers must Invalidate after loading or writing
// entries. A Cache is safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	ttl      time.Duration
	key      cacheKey
	stats    Stats
	storedAt time.Time
	valid    bool

	hits   uint64
	misses uint64
}

// NewCache returns a cache whose results live for ttl. A non-positive ttl
// disables memoization.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{ttl: ttl}
}

// Get returns cached Stats for the snapshot or computes and stores them.
func (c *Cache) Get(entries []models.SmokingEntry, profile *models.UserProfile, journeyStart, now time.Time, loc *time.Location) Stats {
	key, keyed := makeKey(entries, profile, journeyStart, loc)

	c.mu.Lock()
	defer c.mu.Unlock()

	if keyed && c.valid && c.key == key {
		age := now.Sub(c.storedAt)
		if age >= 0 && age < c.ttl {
			c.hits++
			return c.stats
		}
	}

	c.misses++
	s := Calculate(entries, profile, journeyStart, now, loc)
	if keyed && c.ttl > 0 {
		c.key = key
		c.stats = s
		c.storedAt = now
		c.valid = true
	}
	return s
}

// Invalidate drops the memoized result.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.valid = false
	c.stats = Stats{}
	c.mu.Unlock()
}

// Counts reports cache hits and misses since creation.
func (c *Cache) Counts() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

func makeKey(entries []models.SmokingEntry, profile *models.UserProfile, journeyStart time.Time, loc *time.Location) (cacheKey, bool) {
	key := cacheKey{
		entryCount:   len(entries),
		journeyStart: journeyStart,
	}
	if loc != nil {
		key.location = loc.String()
	}
	if profile != nil {
		key.profileID = profile.ID
		fp, err := hashstructure.Hash(profile, hashstructure.FormatV2, nil)
		if err != nil {
			logger.Warn("Failed to fingerprint profile, skipping stats cache", "error", err)
			return key, false
		}
		key.fingerprint = fp
	}
	return key, true
}
