package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"shotlist/internal/pipeline"
)

func newSetsCommand(ctx *commandContext) *cobra.Command {
	var input, bible string
	var set int

	cmd := &cobra.Command{
		Use:   "sets",
		Short: "Consolidate locations into master sets",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(input) == "" {
				return fmt.Errorf("--input is required")
			}
			doc, err := ctx.loadDocument(input, bible)
			if err != nil {
				return err
			}
			names := pipeline.SortedSetNames(doc.Sets)
			out := cmd.OutOrStdout()

			if set > 0 {
				if set > len(names) {
					return fmt.Errorf("set %d out of range 1..%d", set, len(names))
				}
				blob, err := json.MarshalIndent(pipeline.Hierarchy(doc.Sets[names[set-1]]), "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(blob))
				return nil
			}

			rows := make([][]string, 0, len(names))
			for i, name := range names {
				h := pipeline.Hierarchy(doc.Sets[name])
				rows = append(rows, []string{itoa(i + 1), h.MainSet, strings.Join(h.TimesOfDay, ", "), itoa(len(h.ShotIndices)), strings.Join(h.AllDressingItems, ", ")})
			}
			fmt.Fprintln(out, renderTable([]string{"#", "Set", "Times of day", "Shots", "Dressing"}, rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft}))
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Shot table or breakdown report")
	cmd.Flags().StringVar(&bible, "bible", "", "Character bible for breakdown input")
	cmd.Flags().IntVar(&set, "set", 0, "Print the hierarchy JSON of set N (1-based, sorted)")
	return cmd
}
