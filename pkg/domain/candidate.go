package domain

// Lane identifiers from the research factory catalog. Lane A covers
// screening and data preparation, lane B covers synthesis and output.
const (
	LaneA = "A"
	LaneB = "B"
)

// CandidateStatus tags how established a catalog entry is.
type CandidateStatus string

const (
	StatusCore         CandidateStatus = "core"
	StatusSupporting   CandidateStatus = "supporting"
	StatusOptional     CandidateStatus = "optional"
	StatusExperimental CandidateStatus = "experimental"
)

// CandidateTask is one optional task in the selector catalog.
//
// Scores are 1-10 heuristics: ValueScore rates expected benefit, CostScore
// rates expected resource consumption. Entries are read-only during
// selection.
type CandidateTask struct {
	ID           string          `yaml:"id" json:"id"`
	Lane         string          `yaml:"lane" json:"lane"`
	Stage        string          `yaml:"stage" json:"stage"`
	Status       CandidateStatus `yaml:"status,omitempty" json:"status,omitempty"`
	ValueScore   float64         `yaml:"value_score" json:"value_score"`
	CostScore    float64         `yaml:"cost_score" json:"cost_score"`
	Dependencies []string        `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
	Description  string          `yaml:"description,omitempty" json:"description,omitempty"`
}

// Ratio returns value/cost, recomputed from the current scores so it can
// never go stale. A non-positive cost yields the value score itself.
func (c CandidateTask) Ratio() float64 {
	if c.CostScore <= 0 {
		return c.ValueScore
	}
	return c.ValueScore / c.CostScore
}

// BudgetState tracks cumulative resource usage for one run against the
// configured maxima. It is supplied per run and never shared across runs.
type BudgetState struct {
	TokensUsed float64 `json:"tokens_used"`
	MaxTokens  float64 `json:"max_tokens"`
	CostUsed   float64 `json:"cost_used"`
	MaxCost    float64 `json:"max_cost"`
	TimeUsed   float64 `json:"time_used"`
	MaxTime    float64 `json:"max_time"`
}

// UsedPct returns the dominant usage fraction across tokens, cost and time,
// in [0,1+). A zero maximum contributes nothing.
func (b BudgetState) UsedPct() float64 {
	pct := func(used, max float64) float64 {
		if max <= 0 {
			return 0
		}
		return used / max
	}
	p := pct(b.TokensUsed, b.MaxTokens)
	if v := pct(b.CostUsed, b.MaxCost); v > p {
		p = v
	}
	if v := pct(b.TimeUsed, b.MaxTime); v > p {
		p = v
	}
	return p
}

// Exceeded reports whether any dimension is at or over its maximum.
func (b BudgetState) Exceeded() bool {
	return b.UsedPct() >= 1
}
