package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/arcfactory/arc/internal/selector"
)

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Dry-run the budget-aware selection",
	Long: `Loads the candidate catalog, applies the budget and filter flags, and
prints the ranked selection as JSON without executing anything.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		catalogPath, _ := cmd.Flags().GetString("catalog")
		lane, _ := cmd.Flags().GetString("lane")

		sel := selector.New(
			selector.WithUsageThreshold(cfg.Selector.UsageThreshold),
			selector.WithHotCostCeiling(cfg.Selector.HotCostCeiling),
			selector.WithLogger(newLogger(cfg)),
		)
		if err := sel.LoadFile(catalogPath); err != nil {
			return err
		}

		budget := budgetFromFlags(cmd, cfg)
		selected := sel.ForBudget(lane, budget)

		// Narrow further by the filter flags, decoded the same way an HTTP
		// query payload would be.
		raw := map[string]any{}
		if stage, _ := cmd.Flags().GetString("stage"); stage != "" {
			raw["stage"] = stage
		}
		if status, _ := cmd.Flags().GetString("status"); status != "" {
			raw["status"] = status
		}
		if minValue, _ := cmd.Flags().GetFloat64("min-value"); minValue > 0 {
			raw["min_value"] = minValue
		}
		if len(raw) > 0 {
			raw["lane"] = lane
			filter, err := selector.DecodeFilter(raw)
			if err != nil {
				return err
			}
			narrowed := sel.Select(filter)
			keep := make(map[string]struct{}, len(narrowed))
			for _, c := range narrowed {
				keep[c.ID] = struct{}{}
			}
			kept := selected[:0]
			for _, c := range selected {
				if _, ok := keep[c.ID]; ok {
					kept = append(kept, c)
				}
			}
			selected = kept
		}

		out := map[string]any{
			"lane":       lane,
			"used_pct":   budget.UsedPct(),
			"exhausted":  budget.Exceeded(),
			"candidates": selected,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	rootCmd.AddCommand(selectCmd)

	selectCmd.Flags().StringP("catalog", "c", "catalog.yaml", "Candidate catalog file")
	selectCmd.Flags().StringP("lane", "l", "", "Restrict to one lane")
	selectCmd.Flags().String("stage", "", "Restrict to one stage")
	selectCmd.Flags().String("status", "", "Restrict to one status tag")
	selectCmd.Flags().Float64("min-value", 0, "Minimum value score")
	addBudgetFlags(selectCmd)
}
