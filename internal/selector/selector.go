// Package selector ranks the optional-task catalog by value/cost and picks
// the subset that fits inside a run's remaining resource budget.
package selector

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/mitchellh/mapstructure"

	"github.com/arcfactory/arc/internal/logging"
	"github.com/arcfactory/arc/pkg/domain"
)

const (
	// DefaultUsageThreshold is the budget usage fraction above which the
	// selector tightens the admissible cost ceiling.
	DefaultUsageThreshold = 0.8

	// DefaultHotCostCeiling is the maximum cost score admitted once usage
	// crosses the threshold. Cheap high-value tasks stay eligible while
	// expensive ones are shed first.
	DefaultHotCostCeiling = 3.0
)

// Filter constrains Select. Zero values leave a dimension unconstrained.
type Filter struct {
	Lane     string  `mapstructure:"lane"`
	Stage    string  `mapstructure:"stage"`
	Status   string  `mapstructure:"status"`
	MinValue float64 `mapstructure:"min_value"`
	MaxCost  float64 `mapstructure:"max_cost"`
}

// DecodeFilter builds a Filter from a loose map, e.g. a CLI or HTTP query
// payload.
func DecodeFilter(raw map[string]any) (Filter, error) {
	var f Filter
	if err := mapstructure.WeakDecode(raw, &f); err != nil {
		return Filter{}, fmt.Errorf("invalid filter: %w", err)
	}
	return f, nil
}

// Selector holds the candidate catalog. The catalog is replaced wholesale by
// Load and is read-only during selection; concurrent readers are safe.
type Selector struct {
	mu      sync.RWMutex
	catalog []domain.CandidateTask

	usageThreshold float64
	hotCostCeiling float64
	logger         *slog.Logger
}

// Option configures a Selector.
type Option func(*Selector)

// WithUsageThreshold overrides the budget usage fraction at which the cost
// ceiling tightens.
func WithUsageThreshold(t float64) Option {
	return func(s *Selector) {
		if t > 0 {
			s.usageThreshold = t
		}
	}
}

// WithHotCostCeiling overrides the cost score ceiling applied above the
// usage threshold.
func WithHotCostCeiling(c float64) Option {
	return func(s *Selector) {
		if c > 0 {
			s.hotCostCeiling = c
		}
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Selector) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates an empty Selector.
func New(opts ...Option) *Selector {
	s := &Selector{
		usageThreshold: DefaultUsageThreshold,
		hotCostCeiling: DefaultHotCostCeiling,
		logger:         logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the whole catalog.
func (s *Selector) Load(catalog []domain.CandidateTask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = make([]domain.CandidateTask, len(catalog))
	copy(s.catalog, catalog)
	s.logger.Info("catalog loaded", "candidates", len(catalog))
}

// Len returns the catalog size.
func (s *Selector) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.catalog)
}

// Select returns the candidates matching the filter, ranked by value/cost
// ratio descending. The sort is stable: ties keep catalog order.
func (s *Selector) Select(f Filter) []domain.CandidateTask {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.CandidateTask, 0, len(s.catalog))
	for _, c := range s.catalog {
		if f.Lane != "" && c.Lane != f.Lane {
			continue
		}
		if f.Stage != "" && c.Stage != f.Stage {
			continue
		}
		if f.Status != "" && string(c.Status) != f.Status {
			continue
		}
		if f.MinValue > 0 && c.ValueScore < f.MinValue {
			continue
		}
		if f.MaxCost > 0 && c.CostScore > f.MaxCost {
			continue
		}
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Ratio() > out[j].Ratio()
	})
	return out
}

// ForBudget returns the ranked candidates of a lane that are still
// affordable under the given budget state.
//
// Below the usage threshold, expensive high-ratio tasks are admitted freely.
// At or above it, only tasks at or under the hot cost ceiling survive, so
// cheap high-value work is preferred as the budget drains. An exhausted
// budget admits nothing; exclusion here is how BudgetExceeded is handled,
// never as a runtime error during execution.
func (s *Selector) ForBudget(lane string, budget domain.BudgetState) []domain.CandidateTask {
	if budget.Exceeded() {
		s.logger.Warn("budget exhausted, selecting nothing", "lane", lane, "used_pct", budget.UsedPct())
		return nil
	}

	f := Filter{Lane: lane}
	if budget.UsedPct() >= s.usageThreshold {
		f.MaxCost = s.hotCostCeiling
	}
	selected := s.Select(f)
	s.logger.Debug("budget selection",
		"lane", lane,
		"used_pct", budget.UsedPct(),
		"selected", len(selected),
	)
	return selected
}

// HighValue returns the ranked candidates of a lane with a value score of at
// least minValue.
func (s *Selector) HighValue(lane string, minValue float64) []domain.CandidateTask {
	return s.Select(Filter{Lane: lane, MinValue: minValue})
}
