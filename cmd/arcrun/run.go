package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arcfactory/arc"
	"github.com/arcfactory/arc/internal/cache"
	"github.com/arcfactory/arc/internal/config"
	"github.com/arcfactory/arc/internal/selector"
	"github.com/arcfactory/arc/pkg/domain"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Select affordable catalog tasks and execute them as a graph",
	Long: `Loads the candidate catalog, picks the tasks that fit the remaining budget,
wires their dependency edges into a task graph and executes it. The run
result is printed as JSON on stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		catalogPath, _ := cmd.Flags().GetString("catalog")
		lane, _ := cmd.Flags().GetString("lane")
		budget := budgetFromFlags(cmd, cfg)

		sel := selector.New(
			selector.WithUsageThreshold(cfg.Selector.UsageThreshold),
			selector.WithHotCostCeiling(cfg.Selector.HotCostCeiling),
			selector.WithLogger(logger),
		)
		o := arc.New(
			arc.WithLogger(logger),
			arc.WithSelector(sel),
			arc.WithEngineDefaults(
				cfg.Engine.BaseDelay.Std(),
				cfg.Engine.DefaultTimeout.Std(),
				cfg.Engine.MaxRetries,
			),
		)
		defer o.Close()

		if err := o.LoadCatalogFile(catalogPath); err != nil {
			return err
		}

		selected := o.SelectForBudget(lane, budget)
		if len(selected) == 0 {
			fmt.Fprintln(os.Stderr, "No affordable candidates for this budget.")
			return nil
		}
		logger.Info("candidates selected", "lane", lane, "count", len(selected))

		if err := o.Register(simulatedNodes(o, selected)...); err != nil {
			return err
		}

		result, err := o.Run(cmd.Context(), nil)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("catalog", "c", "catalog.yaml", "Candidate catalog file")
	runCmd.Flags().StringP("lane", "l", domain.LaneA, "Catalog lane to execute")
	addBudgetFlags(runCmd)
}

func addBudgetFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("tokens-used", 0, "Tokens already consumed by the run")
	cmd.Flags().Float64("cost-used", 0, "Dollars already consumed by the run")
	cmd.Flags().Float64("time-used", 0, "Seconds already consumed by the run")
}

func budgetFromFlags(cmd *cobra.Command, cfg config.Config) domain.BudgetState {
	tokens, _ := cmd.Flags().GetFloat64("tokens-used")
	cost, _ := cmd.Flags().GetFloat64("cost-used")
	seconds, _ := cmd.Flags().GetFloat64("time-used")
	return domain.BudgetState{
		TokensUsed: tokens, MaxTokens: cfg.Budget.MaxTokens,
		CostUsed: cost, MaxCost: cfg.Budget.MaxCost,
		TimeUsed: seconds, MaxTime: cfg.Budget.MaxTime,
	}
}

// simulatedNodes turns selected candidates into executable task nodes. Each
// node stands in for a pipeline stage: it writes a stage record into the run
// data and parks it in the output cache tier. Dependency edges are kept only
// toward other selected candidates so a partial selection still forms a
// valid graph.
func simulatedNodes(o *arc.Orchestrator, selected []domain.CandidateTask) []*domain.TaskNode {
	included := make(map[string]struct{}, len(selected))
	for _, c := range selected {
		included[c.ID] = struct{}{}
	}

	nodes := make([]*domain.TaskNode, 0, len(selected))
	for _, c := range selected {
		var deps []string
		for _, dep := range c.Dependencies {
			if _, ok := included[dep]; ok {
				deps = append(deps, dep)
			}
		}
		nodes = append(nodes, &domain.TaskNode{
			ID:        c.ID,
			Name:      c.Description,
			DependsOn: deps,
			Execute: func(ctx context.Context, ec *domain.ExecutionContext) error {
				record := map[string]any{
					"task":  c.ID,
					"lane":  c.Lane,
					"stage": c.Stage,
				}
				ec.Data[c.ID] = record
				o.Caches().SetOutput(ctx, "output:"+c.ID, record, cache.SetOptions{
					Metadata: cache.Metadata{PromptID: c.ID, RunID: ec.RunID},
				})
				return nil
			},
		})
	}
	return nodes
}
