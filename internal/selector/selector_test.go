package selector_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcfactory/arc/internal/selector"
	"github.com/arcfactory/arc/pkg/domain"
)

func idsOf(list []domain.CandidateTask) []string {
	out := make([]string, 0, len(list))
	for _, c := range list {
		out = append(out, c.ID)
	}
	return out
}

func testCatalog() []domain.CandidateTask {
	return []domain.CandidateTask{
		{ID: "thesis_synthesis", Lane: domain.LaneB, Stage: "synthesis", Status: domain.StatusCore, ValueScore: 10, CostScore: 7},
		{ID: "bull_bear", Lane: domain.LaneB, Stage: "synthesis", Status: domain.StatusCore, ValueScore: 9, CostScore: 2},
		{ID: "deep_dive", Lane: domain.LaneB, Stage: "analysis", Status: domain.StatusSupporting, ValueScore: 9, CostScore: 9},
		{ID: "peer_comparison", Lane: domain.LaneB, Stage: "analysis", Status: domain.StatusOptional, ValueScore: 7, CostScore: 4.5},
		{ID: "screen_momentum", Lane: domain.LaneA, Stage: "screening", Status: domain.StatusCore, ValueScore: 8, CostScore: 2},
	}
}

func TestSelect_RanksByRatioDescending(t *testing.T) {
	s := selector.New()
	s.Load(testCatalog())

	got := s.Select(selector.Filter{Lane: domain.LaneB})
	require.Len(t, got, 4)

	// bull_bear 4.5, peer_comparison 1.56, thesis_synthesis 1.43, deep_dive 1.0
	assert.Equal(t, "bull_bear", got[0].ID)
	assert.Equal(t, "peer_comparison", got[1].ID)
	assert.Equal(t, "thesis_synthesis", got[2].ID)
	assert.Equal(t, "deep_dive", got[3].ID)
}

func TestSelect_TiesKeepCatalogOrder(t *testing.T) {
	s := selector.New()
	s.Load([]domain.CandidateTask{
		{ID: "first", Lane: domain.LaneA, ValueScore: 6, CostScore: 3},
		{ID: "second", Lane: domain.LaneA, ValueScore: 8, CostScore: 4},
		{ID: "third", Lane: domain.LaneA, ValueScore: 4, CostScore: 2},
	})

	got := s.Select(selector.Filter{Lane: domain.LaneA})
	require.Len(t, got, 3)
	assert.Equal(t, []string{"first", "second", "third"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestSelect_Filters(t *testing.T) {
	s := selector.New()
	s.Load(testCatalog())

	t.Run("stage", func(t *testing.T) {
		got := s.Select(selector.Filter{Stage: "screening"})
		require.Len(t, got, 1)
		assert.Equal(t, "screen_momentum", got[0].ID)
	})

	t.Run("status", func(t *testing.T) {
		got := s.Select(selector.Filter{Lane: domain.LaneB, Status: "core"})
		assert.Len(t, got, 2)
	})

	t.Run("min value", func(t *testing.T) {
		got := s.Select(selector.Filter{Lane: domain.LaneB, MinValue: 9})
		assert.Len(t, got, 3)
	})

	t.Run("max cost", func(t *testing.T) {
		got := s.Select(selector.Filter{Lane: domain.LaneB, MaxCost: 5})
		assert.Len(t, got, 2)
	})
}

func TestForBudget_TightensCostCeilingWhenHot(t *testing.T) {
	s := selector.New()
	s.Load(testCatalog())

	t.Run("cold budget admits expensive tasks", func(t *testing.T) {
		budget := domain.BudgetState{TokensUsed: 10, MaxTokens: 100}
		got := s.ForBudget(domain.LaneB, budget)
		ids := idsOf(got)
		assert.Contains(t, ids, "deep_dive", "cost 9 admitted at 10%% usage")
		assert.Contains(t, ids, "bull_bear")
	})

	t.Run("hot budget sheds expensive tasks", func(t *testing.T) {
		budget := domain.BudgetState{TokensUsed: 80, MaxTokens: 100}
		got := s.ForBudget(domain.LaneB, budget)
		ids := idsOf(got)
		assert.NotContains(t, ids, "deep_dive", "cost 9 excluded at 80%% usage")
		assert.Contains(t, ids, "bull_bear", "cost 2 value 9 survives")
	})

	t.Run("exhausted budget admits nothing", func(t *testing.T) {
		budget := domain.BudgetState{CostUsed: 5, MaxCost: 5}
		assert.Empty(t, s.ForBudget(domain.LaneB, budget))
	})

	t.Run("usage is the max across dimensions", func(t *testing.T) {
		budget := domain.BudgetState{
			TokensUsed: 10, MaxTokens: 100,
			TimeUsed: 90, MaxTime: 100,
		}
		got := s.ForBudget(domain.LaneB, budget)
		assert.NotContains(t, idsOf(got), "deep_dive", "time dimension drives tightening")
	})
}

func TestHighValue(t *testing.T) {
	s := selector.New()
	s.Load(testCatalog())

	got := s.HighValue(domain.LaneB, 9)
	require.Len(t, got, 3)
	for _, c := range got {
		assert.GreaterOrEqual(t, c.ValueScore, 9.0)
	}
}

func TestStats(t *testing.T) {
	s := selector.New()
	s.Load(testCatalog())

	st := s.Stats()
	assert.Equal(t, 5, st.Total)

	laneB := st.ByLane[domain.LaneB]
	assert.Equal(t, 4, laneB.Count)
	assert.InDelta(t, 8.75, laneB.AvgValue, 0.001)
	assert.InDelta(t, 5.625, laneB.AvgCost, 0.001)

	synthesis := st.ByStage["synthesis"]
	assert.Equal(t, 2, synthesis.Count)

	assert.Equal(t, 3, st.ByStatus["core"])
	assert.Equal(t, 1, st.ByStatus["optional"])
}

func TestLoad_ReplacesCatalog(t *testing.T) {
	s := selector.New()
	s.Load(testCatalog())
	require.Equal(t, 5, s.Len())

	s.Load([]domain.CandidateTask{{ID: "only", Lane: domain.LaneA, ValueScore: 5, CostScore: 5}})
	assert.Equal(t, 1, s.Len())
}

func TestDecodeFilter(t *testing.T) {
	f, err := selector.DecodeFilter(map[string]any{
		"lane":      "B",
		"min_value": "7.5", // weak decode from string
		"max_cost":  6,
	})
	require.NoError(t, err)
	assert.Equal(t, "B", f.Lane)
	assert.Equal(t, 7.5, f.MinValue)
	assert.Equal(t, 6.0, f.MaxCost)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid catalog", func(t *testing.T) {
		path := filepath.Join(dir, "catalog.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
candidates:
  - id: bull_bear
    lane: B
    stage: synthesis
    status: core
    value_score: 9
    cost_score: 2
    dependencies: [financials, valuation]
  - id: screen_momentum
    lane: A
    stage: screening
    value_score: 8
    cost_score: 2
`), 0o644))

		s := selector.New()
		require.NoError(t, s.LoadFile(path))
		assert.Equal(t, 2, s.Len())

		got := s.Select(selector.Filter{Lane: domain.LaneB})
		require.Len(t, got, 1)
		assert.Equal(t, []string{"financials", "valuation"}, got[0].Dependencies)
	})

	t.Run("score out of range rejected", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
candidates:
  - id: broken
    lane: A
    value_score: 0.9
    cost_score: 2
`), 0o644))

		s := selector.New()
		err := s.LoadFile(path)
		assert.ErrorContains(t, err, "outside [1,10]")
		assert.Equal(t, 0, s.Len(), "partial catalog never goes live")
	})
}
