package cache

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(cfg Config) *Store {
	return NewStore("test", cfg, nil)
}

func TestStore_GetSetRoundtrip(t *testing.T) {
	s := newTestStore(Config{})

	s.Set("quote:ACME", map[string]any{"price": 101.5}, SetOptions{})

	v, ok := s.Get("quote:ACME")
	require.True(t, ok)
	assert.Equal(t, 101.5, v.(map[string]any)["price"])

	_, ok = s.Get("quote:OTHER")
	assert.False(t, ok)
}

func TestStore_EntryCapTriggersExactlyOneEviction(t *testing.T) {
	s := newTestStore(Config{MaxEntries: 100})

	for i := 0; i < 100; i++ {
		s.Set("k"+strconv.Itoa(i), i, SetOptions{})
	}
	require.Equal(t, 100, s.Stats().Entries)
	require.Zero(t, s.Stats().Evictions)

	s.Set("k100", 100, SetOptions{})

	st := s.Stats()
	assert.Equal(t, 100, st.Entries, "insert succeeds at the cap")
	assert.Equal(t, int64(1), st.Evictions, "exactly one eviction")
	assert.True(t, s.Has("k100"))
}

func TestStore_ByteBudgetEviction(t *testing.T) {
	// "xxxx...": JSON adds quotes; estimate = 2*(len+2).
	big := make([]byte, 100)
	for i := range big {
		big[i] = 'x'
	}
	payload := string(big) // ~204 bytes estimated

	s := newTestStore(Config{MaxEntries: 100, MaxSizeBytes: 500})
	s.Set("a", payload, SetOptions{})
	s.Set("b", payload, SetOptions{})
	require.Equal(t, 2, s.Stats().Entries)

	s.Set("c", payload, SetOptions{})

	st := s.Stats()
	assert.Equal(t, 2, st.Entries, "third entry forces a byte-budget eviction")
	assert.Equal(t, int64(1), st.Evictions)
	assert.LessOrEqual(t, st.SizeBytes, int64(500))
}

func TestStore_OversizedValueIsDropped(t *testing.T) {
	big := make([]byte, 100)
	for i := range big {
		big[i] = 'x'
	}

	s := newTestStore(Config{MaxEntries: 10, MaxSizeBytes: 50})
	s.Set("small", 1, SetOptions{})
	before := s.Stats().SizeBytes

	// ~204 bytes estimated: larger than the whole tier, so no eviction
	// sequence can admit it.
	s.Set("huge", string(big), SetOptions{})

	st := s.Stats()
	assert.False(t, s.Has("huge"))
	assert.True(t, s.Has("small"), "resident entries survive a rejected insert")
	assert.Equal(t, before, st.SizeBytes)
	assert.LessOrEqual(t, st.SizeBytes, int64(50))
	assert.Zero(t, st.Evictions)
}

func TestStore_HitRate(t *testing.T) {
	s := newTestStore(Config{})
	s.Set("k", 1, SetOptions{})

	s.Get("k")
	s.Get("k")
	s.Get("missing")

	st := s.Stats()
	assert.Equal(t, int64(2), st.Hits)
	assert.Equal(t, int64(1), st.Misses)
	assert.InDelta(t, 0.667, st.HitRate, 0.01)
}

func TestStore_HitRateZeroWithoutRequests(t *testing.T) {
	s := newTestStore(Config{})
	assert.Zero(t, s.Stats().HitRate)
}

func TestStore_TTLExpiry(t *testing.T) {
	s := newTestStore(Config{})
	s.Set("ephemeral", "v", SetOptions{TTL: 100 * time.Millisecond})

	require.True(t, s.Has("ephemeral"))
	time.Sleep(150 * time.Millisecond)

	assert.False(t, s.Has("ephemeral"))
	_, ok := s.Get("ephemeral")
	assert.False(t, ok, "expired entry is a miss")
	assert.Equal(t, int64(1), s.Stats().Misses)
}

func TestStore_LRUEvictsOldestAccess(t *testing.T) {
	s := newTestStore(Config{MaxEntries: 3, Policy: LRU})
	s.Set("a", 1, SetOptions{})
	s.Set("b", 2, SetOptions{})
	s.Set("c", 3, SetOptions{})

	// Touch a and c so b holds the oldest last access.
	s.Get("a")
	s.Get("c")

	s.Set("d", 4, SetOptions{})

	assert.False(t, s.Has("b"))
	assert.True(t, s.Has("a"))
	assert.True(t, s.Has("c"))
	assert.True(t, s.Has("d"))
}

func TestStore_LFUEvictsLeastUsed(t *testing.T) {
	s := newTestStore(Config{MaxEntries: 3, Policy: LFU})
	s.Set("a", 1, SetOptions{})
	s.Set("b", 2, SetOptions{})
	s.Set("c", 3, SetOptions{})

	s.Get("a")
	s.Get("a")
	s.Get("c")
	// b has access count 0.

	s.Set("d", 4, SetOptions{})

	assert.False(t, s.Has("b"))
	assert.True(t, s.Has("a"))
}

func TestStore_FIFOEvictsEarliestCreated(t *testing.T) {
	s := newTestStore(Config{MaxEntries: 3, Policy: FIFO})
	s.Set("a", 1, SetOptions{})
	time.Sleep(time.Millisecond)
	s.Set("b", 2, SetOptions{})
	time.Sleep(time.Millisecond)
	s.Set("c", 3, SetOptions{})

	// Heavy access does not save the oldest entry under FIFO.
	s.Get("a")
	s.Get("a")
	s.Get("a")

	s.Set("d", 4, SetOptions{})

	assert.False(t, s.Has("a"))
	assert.True(t, s.Has("b"))
}

func TestStore_EvictionTieBreakKeepsFirstInserted(t *testing.T) {
	s := newTestStore(Config{MaxEntries: 2, Policy: LFU})
	s.Set("first", 1, SetOptions{})
	s.Set("second", 2, SetOptions{})
	// Both have access count 0: the tie resolves to the first-encountered
	// entry in insertion order.
	s.Set("third", 3, SetOptions{})

	assert.False(t, s.Has("first"))
	assert.True(t, s.Has("second"))
}

func TestStore_ReplaceIsNotEviction(t *testing.T) {
	s := newTestStore(Config{MaxEntries: 2})
	s.Set("k", "old", SetOptions{})
	s.Set("k", "new", SetOptions{})

	st := s.Stats()
	assert.Equal(t, 1, st.Entries)
	assert.Zero(t, st.Evictions)

	v, _ := s.Get("k")
	assert.Equal(t, "new", v)
}

func TestStore_DeleteAndClear(t *testing.T) {
	s := newTestStore(Config{})
	s.Set("a", 1, SetOptions{})
	s.Set("b", 2, SetOptions{})

	assert.True(t, s.Delete("a"))
	assert.False(t, s.Delete("a"), "second delete reports absence")
	assert.False(t, s.Has("a"))

	s.Clear()
	assert.Zero(t, s.Stats().Entries)
	assert.Zero(t, s.Stats().SizeBytes)
}

func TestStore_Prune(t *testing.T) {
	s := newTestStore(Config{})
	s.Set("short", 1, SetOptions{TTL: 50 * time.Millisecond})
	s.Set("long", 2, SetOptions{TTL: time.Hour})

	time.Sleep(80 * time.Millisecond)

	assert.Equal(t, 1, s.Prune())
	assert.Equal(t, 1, s.Stats().Entries)
	assert.True(t, s.Has("long"))
}

func TestStore_GetByMetadata(t *testing.T) {
	s := newTestStore(Config{})
	s.Set("a", "acme-q1", SetOptions{Metadata: Metadata{Ticker: "ACME", Source: "edgar"}})
	s.Set("b", "acme-q2", SetOptions{Metadata: Metadata{Ticker: "ACME", Source: "vendor"}})
	s.Set("c", "glob-q1", SetOptions{Metadata: Metadata{Ticker: "GLOB", Source: "edgar"}})

	assert.Len(t, s.GetByMetadata(Metadata{Ticker: "ACME"}), 2)
	assert.Equal(t, []any{"acme-q1"}, s.GetByMetadata(Metadata{Ticker: "ACME", Source: "edgar"}))
	assert.Empty(t, s.GetByMetadata(Metadata{Ticker: "NONE"}))
	assert.Len(t, s.GetByMetadata(Metadata{}), 3, "empty filter matches everything")
}

func TestStore_OldestEntryAge(t *testing.T) {
	s := newTestStore(Config{})
	s.Set("old", 1, SetOptions{})
	time.Sleep(30 * time.Millisecond)
	s.Set("new", 2, SetOptions{})

	st := s.Stats()
	assert.GreaterOrEqual(t, st.OldestEntryAgeSeconds, 0.03)
}
