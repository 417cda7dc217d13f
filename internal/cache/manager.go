package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/arcfactory/arc/internal/logging"
	"github.com/arcfactory/arc/internal/metrics"
	"github.com/arcfactory/arc/pkg/domain"
	"github.com/arcfactory/arc/pkg/ports"
)

// Tier names used in stats and metrics labels.
const (
	TierData   = "data"
	TierOutput = "prompt_output"
)

// DefaultDataConfig bounds the raw-data tier: generous byte budget, short
// TTL, LRU. External inputs go stale quickly but are re-fetched cheaply
// relative to recomputing outputs.
func DefaultDataConfig() Config {
	return Config{
		MaxEntries:   500,
		MaxSizeBytes: 50 << 20,
		DefaultTTL:   15 * time.Minute,
		Policy:       LRU,
	}
}

// DefaultOutputConfig bounds the task-output tier: few entries, long TTL,
// LFU. Computed outputs are expensive, so frequently used ones are retained.
func DefaultOutputConfig() Config {
	return Config{
		MaxEntries:   200,
		MaxSizeBytes: 20 << 20,
		DefaultTTL:   24 * time.Hour,
		Policy:       LFU,
	}
}

// Manager owns the two cache tiers. It is an explicitly constructed
// instance passed to callers; a process may build one at startup but must
// tear it down with Close rather than rely on ambient global state.
type Manager struct {
	data   *Store
	output *Store

	persist ports.OutputStore
	logger  *slog.Logger

	cancelPruner context.CancelFunc
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithOutputPersistence writes output-tier entries through to a durable
// store and reads through to it on miss. Values cross the boundary as JSON.
func WithOutputPersistence(store ports.OutputStore) ManagerOption {
	return func(m *Manager) { m.persist = store }
}

// WithManagerLogger sets a structured logger.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates the two tiers. The metrics collector may be nil.
func NewManager(dataCfg, outputCfg Config, collector *metrics.Collector, opts ...ManagerOption) *Manager {
	m := &Manager{
		data:   NewStore(TierData, dataCfg, collector),
		output: NewStore(TierOutput, outputCfg, collector),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Data returns the raw-data tier.
func (m *Manager) Data() *Store { return m.data }

// Output returns the task-output tier.
func (m *Manager) Output() *Store { return m.output }

// ClearData empties the data tier only.
func (m *Manager) ClearData() { m.data.Clear() }

// ClearOutput empties the output tier only.
func (m *Manager) ClearOutput() { m.output.Clear() }

// PruneAll sweeps expired entries from both tiers and returns the total
// removed.
func (m *Manager) PruneAll() int {
	return m.data.Prune() + m.output.Prune()
}

// SetOutput stores a task output, writing through to the persistent store
// when one is configured. Persistence failures are logged, not fatal: the
// in-memory tier is the source of truth for the running process.
func (m *Manager) SetOutput(ctx context.Context, key string, value any, opts SetOptions) {
	m.output.Set(key, value, opts)

	if m.persist == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		m.logger.Warn("output not persisted: value not serializable", "key", key, "error", err)
		return
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = m.output.cfg.DefaultTTL
	}
	if err := m.persist.Save(ctx, key, raw, ttl); err != nil {
		m.logger.Warn("output write-through failed", "key", key, "error", err)
	}
}

// GetOutput reads a task output, falling back to the persistent store on a
// memory miss. A persisted value found on fallback is re-seeded into the
// memory tier.
func (m *Manager) GetOutput(ctx context.Context, key string) (any, bool) {
	if v, ok := m.output.Get(key); ok {
		return v, true
	}
	if m.persist == nil {
		return nil, false
	}

	raw, err := m.persist.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrEntryNotFound) {
			m.logger.Warn("output read-through failed", "key", key, "error", err)
		}
		return nil, false
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		m.logger.Warn("persisted output is not valid JSON", "key", key, "error", err)
		return nil, false
	}
	m.output.Set(key, value, SetOptions{})
	return value, true
}

// StartPruner sweeps both tiers every interval until the context is
// cancelled or Close is called. Starting twice replaces the previous loop.
func (m *Manager) StartPruner(ctx context.Context, interval time.Duration) {
	if m.cancelPruner != nil {
		m.cancelPruner()
	}
	ctx, cancel := context.WithCancel(ctx)
	m.cancelPruner = cancel

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := m.PruneAll(); n > 0 {
					m.logger.Debug("pruned expired cache entries", "removed", n)
				}
			}
		}
	}()
}

// Close stops the pruner and closes the persistent store if present.
func (m *Manager) Close() error {
	if m.cancelPruner != nil {
		m.cancelPruner()
		m.cancelPruner = nil
	}
	if m.persist != nil {
		if err := m.persist.Close(); err != nil {
			return fmt.Errorf("close output persistence: %w", err)
		}
	}
	return nil
}
