package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/trialbench/trialbench/internal/synthdata"
)

func newSynthCommand() *cobra.Command {
	var (
		asJSON     bool
		asMarkdown bool
	)

	cmd := &cobra.Command{
		Use:   "synth <entity-id> [display-name] [record-count]",
		Short: "Generate the synthetic trial record for an entity",
		Long: `Generate the synthetic trial record for an entity.

The record is a pure function of the entity id and display name: the same
arguments always produce byte-identical output, which makes this command
useful for inspecting what the patient explorer will show.`,
		Args: cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			entityID := args[0]
			displayName := entityID
			recordCount := 0
			if len(args) > 1 {
				displayName = args[1]
			}
			if len(args) > 2 {
				n, err := strconv.Atoi(args[2])
				if err != nil {
					return fmt.Errorf("record-count must be an integer: %w", err)
				}
				recordCount = n
			}

			rec := synthdata.New().Get(entityID, displayName, recordCount)

			out := cmd.OutOrStdout()
			switch {
			case asJSON:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rec)
			case asMarkdown:
				fmt.Fprint(out, FormatRecordMarkdown(rec))
				return nil
			default:
				printRecord(out, rec)
				return nil
			}
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the record as JSON")
	cmd.Flags().BoolVar(&asMarkdown, "markdown", false, "Emit the record as a markdown report")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")

	return cmd
}
