package selector

import "github.com/arcfactory/arc/pkg/domain"

// GroupStats aggregates one lane or stage.
type GroupStats struct {
	Count    int     `json:"count"`
	AvgValue float64 `json:"avg_value"`
	AvgCost  float64 `json:"avg_cost"`
}

// Stats summarizes the loaded catalog.
type Stats struct {
	Total    int                   `json:"total"`
	ByLane   map[string]GroupStats `json:"by_lane"`
	ByStage  map[string]GroupStats `json:"by_stage"`
	ByStatus map[string]int        `json:"by_status"`
}

// Stats aggregates counts and average value/cost per lane and per stage.
func (s *Selector) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type acc struct {
		count       int
		value, cost float64
	}
	lanes := make(map[string]*acc)
	stages := make(map[string]*acc)
	statuses := make(map[string]int)

	add := func(m map[string]*acc, key string, c domain.CandidateTask) {
		a, ok := m[key]
		if !ok {
			a = &acc{}
			m[key] = a
		}
		a.count++
		a.value += c.ValueScore
		a.cost += c.CostScore
	}

	for _, c := range s.catalog {
		add(lanes, c.Lane, c)
		add(stages, c.Stage, c)
		if c.Status != "" {
			statuses[string(c.Status)]++
		}
	}

	finish := func(m map[string]*acc) map[string]GroupStats {
		out := make(map[string]GroupStats, len(m))
		for k, a := range m {
			out[k] = GroupStats{
				Count:    a.count,
				AvgValue: a.value / float64(a.count),
				AvgCost:  a.cost / float64(a.count),
			}
		}
		return out
	}

	return Stats{
		Total:    len(s.catalog),
		ByLane:   finish(lanes),
		ByStage:  finish(stages),
		ByStatus: statuses,
	}
}
