// Package cache implements the two bounded in-memory tiers that sit in
// front of expensive data retrieval and task output computation.
//
// Each tier is an independent Store with its own TTL, capacity and eviction
// policy; the Manager owns the pair. Stores never share keys or state:
// clearing one never affects the other.
package cache

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/arcfactory/arc/internal/metrics"
)

// Policy selects the eviction victim when a tier is at capacity.
type Policy string

const (
	// LRU evicts the entry with the oldest last access.
	LRU Policy = "lru"
	// LFU evicts the entry with the lowest access count.
	LFU Policy = "lfu"
	// FIFO evicts the entry created earliest.
	FIFO Policy = "fifo"
)

// Metadata tags an entry for exact-match lookup.
type Metadata struct {
	Source   string `json:"source,omitempty"`
	Ticker   string `json:"ticker,omitempty"`
	PromptID string `json:"prompt_id,omitempty"`
	RunID    string `json:"run_id,omitempty"`
}

// entry is one cached value with its bookkeeping.
type entry struct {
	key          string
	value        any
	createdAt    time.Time
	expiresAt    time.Time
	lastAccessed time.Time
	accessCount  int64
	sizeBytes    int64
	metadata     Metadata
}

// Config bounds one tier.
type Config struct {
	// MaxEntries caps the entry count. Zero means 1000.
	MaxEntries int
	// MaxSizeBytes caps the estimated total value size. Zero means 50 MiB.
	MaxSizeBytes int64
	// DefaultTTL applies to entries set without an explicit TTL.
	// Zero means one hour.
	DefaultTTL time.Duration
	// Policy selects the eviction rule. Empty means LRU.
	Policy Policy
}

func (c Config) withDefaults() Config {
	if c.MaxEntries <= 0 {
		c.MaxEntries = 1000
	}
	if c.MaxSizeBytes <= 0 {
		c.MaxSizeBytes = 50 << 20
	}
	if c.DefaultTTL <= 0 {
		c.DefaultTTL = time.Hour
	}
	if c.Policy == "" {
		c.Policy = LRU
	}
	return c
}

// Stats is a point-in-time snapshot of one tier.
type Stats struct {
	Entries               int     `json:"entries"`
	SizeBytes             int64   `json:"size_bytes"`
	Hits                  int64   `json:"hits"`
	Misses                int64   `json:"misses"`
	HitRate               float64 `json:"hit_rate"`
	Evictions             int64   `json:"evictions"`
	OldestEntryAgeSeconds float64 `json:"oldest_entry_age_seconds"`
}

// SetOptions carries per-entry overrides for Set.
type SetOptions struct {
	// TTL overrides the tier default. Zero keeps the default.
	TTL time.Duration
	// Metadata tags the entry for GetByMetadata.
	Metadata Metadata
}

// Store is one bounded cache tier. All operations are safe for concurrent
// use; the capacity check and insertion inside Set happen under one lock so
// concurrent writers can never overshoot the configured ceilings.
type Store struct {
	mu sync.Mutex

	tier    string
	cfg     Config
	entries map[string]*entry
	order   []string // insertion order: FIFO ground truth and scan order

	hits      int64
	misses    int64
	evictions int64
	sizeBytes int64

	metrics *metrics.Collector
}

// NewStore creates a tier with the given name and bounds. The metrics
// collector may be nil.
func NewStore(tier string, cfg Config, collector *metrics.Collector) *Store {
	return &Store{
		tier:    tier,
		cfg:     cfg.withDefaults(),
		entries: make(map[string]*entry),
		metrics: collector,
	}
}

// Get returns the cached value, or (nil, false) on miss. An expired entry is
// removed lazily and counts as a miss. A hit updates the entry's access
// bookkeeping.
func (s *Store) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if ok && time.Now().After(e.expiresAt) {
		s.remove(key)
		ok = false
	}
	if !ok {
		s.misses++
		s.metrics.CacheMiss(s.tier)
		return nil, false
	}

	s.hits++
	e.accessCount++
	e.lastAccessed = time.Now()
	s.metrics.CacheHit(s.tier)
	return e.value, true
}

// Set inserts or replaces a value, evicting under the tier policy until both
// the entry count and byte ceilings hold. A value whose estimated size
// exceeds the tier's byte ceiling is dropped outright; no eviction sequence
// could make room for it.
func (s *Store) Set(key string, value any, opts SetOptions) {
	size := estimateSize(value)
	if size > s.cfg.MaxSizeBytes {
		return
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = s.cfg.DefaultTTL
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Replacing an existing key frees its budget first and is not an
	// eviction.
	if _, exists := s.entries[key]; exists {
		s.remove(key)
	}

	// Expired entries go first under capacity pressure; they cost nothing.
	if len(s.entries) >= s.cfg.MaxEntries || s.sizeBytes+size > s.cfg.MaxSizeBytes {
		s.sweepExpired()
	}

	for len(s.entries) >= s.cfg.MaxEntries || s.sizeBytes+size > s.cfg.MaxSizeBytes {
		victim := s.victim()
		if victim == "" {
			break
		}
		s.remove(victim)
		s.evictions++
		s.metrics.CacheEviction(s.tier)
	}

	now := time.Now()
	s.entries[key] = &entry{
		key:          key,
		value:        value,
		createdAt:    now,
		expiresAt:    now.Add(ttl),
		lastAccessed: now,
		sizeBytes:    size,
		metadata:     opts.Metadata,
	}
	s.order = append(s.order, key)
	s.sizeBytes += size
	s.metrics.CacheSize(s.tier, len(s.entries))
}

// Has reports whether the key is present and unexpired. It does not touch
// access bookkeeping or hit/miss counts.
func (s *Store) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return false
	}
	if time.Now().After(e.expiresAt) {
		s.remove(key)
		return false
	}
	return true
}

// Delete removes a key. It reports whether the key was present.
func (s *Store) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return false
	}
	s.remove(key)
	s.metrics.CacheSize(s.tier, len(s.entries))
	return true
}

// Clear drops every entry. Counters (hits, misses, evictions) survive.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*entry)
	s.order = s.order[:0]
	s.sizeBytes = 0
	s.metrics.CacheSize(s.tier, 0)
}

// Prune removes all expired entries regardless of capacity pressure and
// returns how many were dropped. Intended to run on a periodic timer.
func (s *Store) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.sweepExpired()
	if n > 0 {
		s.metrics.CacheSize(s.tier, len(s.entries))
	}
	return n
}

// Stats returns a snapshot. HitRate is 0 when there have been no requests.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{
		Entries:   len(s.entries),
		SizeBytes: s.sizeBytes,
		Hits:      s.hits,
		Misses:    s.misses,
		Evictions: s.evictions,
	}
	if total := s.hits + s.misses; total > 0 {
		st.HitRate = float64(s.hits) / float64(total)
	}

	now := time.Now()
	for _, key := range s.order {
		if e, ok := s.entries[key]; ok {
			st.OldestEntryAgeSeconds = now.Sub(e.createdAt).Seconds()
			break
		}
	}
	return st
}

// GetByMetadata returns the values of all unexpired entries whose metadata
// exactly matches every non-empty field of the filter, in insertion order.
func (s *Store) GetByMetadata(filter Metadata) []any {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var out []any
	for _, key := range s.order {
		e, ok := s.entries[key]
		if !ok || now.After(e.expiresAt) {
			continue
		}
		if filter.Source != "" && e.metadata.Source != filter.Source {
			continue
		}
		if filter.Ticker != "" && e.metadata.Ticker != filter.Ticker {
			continue
		}
		if filter.PromptID != "" && e.metadata.PromptID != filter.PromptID {
			continue
		}
		if filter.RunID != "" && e.metadata.RunID != filter.RunID {
			continue
		}
		out = append(out, e.value)
	}
	return out
}

// remove deletes a key and its budget. Caller holds the lock.
func (s *Store) remove(key string) {
	e, ok := s.entries[key]
	if !ok {
		return
	}
	delete(s.entries, key)
	s.sizeBytes -= e.sizeBytes
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// sweepExpired drops every expired entry. Caller holds the lock.
func (s *Store) sweepExpired() int {
	now := time.Now()
	var expired []string
	for _, key := range s.order {
		if e, ok := s.entries[key]; ok && now.After(e.expiresAt) {
			expired = append(expired, key)
		}
	}
	for _, key := range expired {
		s.remove(key)
	}
	return len(expired)
}

// victim picks the next eviction under the tier policy. The scan walks
// insertion order with strict comparisons, so ties keep the first entry
// encountered (the oldest-inserted). Caller holds the lock.
func (s *Store) victim() string {
	var best *entry
	for _, key := range s.order {
		e, ok := s.entries[key]
		if !ok {
			continue
		}
		if best == nil {
			best = e
			continue
		}
		switch s.cfg.Policy {
		case LFU:
			if e.accessCount < best.accessCount {
				best = e
			}
		case FIFO:
			if e.createdAt.Before(best.createdAt) {
				best = e
			}
		default: // LRU
			if e.lastAccessed.Before(best.lastAccessed) {
				best = e
			}
		}
	}
	if best == nil {
		return ""
	}
	return best.key
}

// estimateSize approximates the in-memory cost of a value as twice its JSON
// serialization length (UTF-16 code units).
func estimateSize(value any) int64 {
	raw, err := json.Marshal(value)
	if err != nil {
		return int64(2 * len(fmt.Sprintf("%v", value)))
	}
	return int64(2 * len(raw))
}
