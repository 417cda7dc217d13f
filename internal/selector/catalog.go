package selector

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/arcfactory/arc/pkg/domain"
)

// catalogFile is the on-disk shape of a candidate catalog.
type catalogFile struct {
	Candidates []domain.CandidateTask `yaml:"candidates"`
}

// LoadFile reads a YAML catalog and replaces the current one.
//
// Entries must carry an ID and scores inside [1,10]; the file is rejected as
// a whole on the first bad entry so a partial catalog never goes live.
func (s *Selector) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse catalog: %w", err)
	}

	for i, c := range file.Candidates {
		if c.ID == "" {
			return fmt.Errorf("catalog entry %d: id is required", i)
		}
		if c.ValueScore < 1 || c.ValueScore > 10 {
			return fmt.Errorf("catalog entry %q: value_score %.1f outside [1,10]", c.ID, c.ValueScore)
		}
		if c.CostScore < 1 || c.CostScore > 10 {
			return fmt.Errorf("catalog entry %q: cost_score %.1f outside [1,10]", c.ID, c.CostScore)
		}
	}

	s.Load(file.Candidates)
	return nil
}
