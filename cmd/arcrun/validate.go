package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arcfactory/arc/internal/graph"
	"github.com/arcfactory/arc/internal/selector"
	"github.com/arcfactory/arc/pkg/domain"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the catalog's dependency graph for consistency",
	Long: `Builds the dependency graph from the full candidate catalog and reports
unknown dependencies and cycles without executing anything.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalogPath, _ := cmd.Flags().GetString("catalog")

		sel := selector.New()
		if err := sel.LoadFile(catalogPath); err != nil {
			return err
		}

		registry := graph.NewRegistry()
		for _, c := range sel.Select(selector.Filter{}) {
			node := &domain.TaskNode{
				ID:        c.ID,
				Name:      c.Description,
				DependsOn: c.Dependencies,
				Execute:   func(ctx context.Context, ec *domain.ExecutionContext) error { return nil },
			}
			if err := registry.Add(node); err != nil {
				return err
			}
		}

		report := registry.Validate()
		if !report.Valid {
			for _, msg := range report.Errors {
				fmt.Fprintf(os.Stderr, "invalid: %s\n", msg)
			}
			os.Exit(1)
		}

		order, err := registry.ExecutionOrder()
		if err != nil {
			return err
		}
		fmt.Printf("Graph is valid: %d tasks\n", len(order))
		for i, id := range order {
			fmt.Printf("%3d. %s\n", i+1, id)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringP("catalog", "c", "catalog.yaml", "Candidate catalog file")
}
