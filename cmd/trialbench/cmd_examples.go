package main

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/trialbench/trialbench/internal/catalog"
)

func newExamplesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "examples",
		Short: "List the embedded example trials",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load()
			if err != nil {
				return err
			}

			table := newTable(cmd.OutOrStdout(), []string{"ID", "Name", "HR (95% CI)", "P value", "N", "Description"})
			for _, ex := range cat.List() {
				s, err := ex.Summary()
				if err != nil {
					return fmt.Errorf("summarizing %s: %w", ex.ID, err)
				}
				_ = table.Append([]string{
					ex.ID,
					ex.Name,
					formatCI(s.HazardRatio, s.CILower, s.CIUpper),
					formatP(s.PValue),
					fmt.Sprintf("%d", s.SampleSize),
					runewidth.Truncate(ex.Description, 48, "…"),
				})
			}
			return table.Render()
		},
	}

	cmd.AddCommand(newExamplesShowCommand())
	return cmd
}

func newExamplesShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one example trial in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load()
			if err != nil {
				return err
			}
			ex := cat.Get(args[0])
			if ex == nil {
				return fmt.Errorf("unknown example %q (try 'trialbench examples')", args[0])
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n\n", heading(ex.Name))
			fmt.Fprintf(out, "%s\n\n", ex.Description)
			fmt.Fprintf(out, "%s %s\n", label("Keywords:"), strings.Join(ex.Keywords, ", "))
			fmt.Fprintf(out, "%s %s\n\n", label("Causal question:"), ex.CausalQuestion)
			printExampleSummary(out, ex)
			fmt.Fprintf(out, "\n%s\n%s\n", heading("Protocol"), ex.DesignSpec)
			fmt.Fprintf(out, "%s\n%s\n", heading("Analysis code"), ex.Code)
			return nil
		},
	}
}
