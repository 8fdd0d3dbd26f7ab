package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"shotlist/internal/assets"
	"shotlist/internal/pipeline"
	"shotlist/internal/util"
)

func newAssetsCommand(ctx *commandContext) *cobra.Command {
	var input, bible string
	var character int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "assets",
		Short: "Show master asset lists and scene statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(input) == "" {
				return fmt.Errorf("--input is required")
			}
			doc, err := ctx.loadDocument(input, bible)
			if err != nil {
				return err
			}
			master := assets.Collect(doc.Shots, ctx.rules)
			stats := assets.SceneStats(doc.Shots)
			out := cmd.OutOrStdout()

			selected, costumes := "N/A", "N/A"
			names := master.CharacterNames()
			if character > 0 && character <= len(names) {
				selected = util.Capitalize(names[character-1])
				costumes = assets.CharacterCostumes(doc.Shots, names[character-1], ctx.rules)
			}

			if asJSON {
				lists := map[string]string{}
				for _, c := range assets.Categories {
					lists[c] = master.List(c)
				}
				payload := map[string]any{
					"lists":              lists,
					"stats":              stats,
					"main_sets":          pipeline.SortedSetNames(master.Sets),
					"selected_character": selected,
					"selected_costumes":  costumes,
				}
				blob, err := json.MarshalIndent(payload, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(blob))
				return nil
			}

			rows := make([][]string, 0, len(assets.Categories))
			for _, c := range assets.Categories {
				rows = append(rows, []string{c, itoa(master.Count(c)), master.List(c)})
			}
			fmt.Fprintln(out, renderTable([]string{"Category", "Count", "Items"}, rows, []columnAlignment{alignLeft, alignRight, alignLeft}))
			fmt.Fprintf(out, "Shots: %d  Characters: %d  Scenes: %d  Sets: %d\n",
				stats.TotalShots, stats.TotalCharacters, len(stats.Scenes), len(master.Sets))
			if character > 0 {
				fmt.Fprintf(out, "Character %d: %s\nCostumes: %s\n", character, selected, costumes)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Shot table or breakdown report")
	cmd.Flags().StringVar(&bible, "bible", "", "Character bible for breakdown input")
	cmd.Flags().IntVar(&character, "character", 0, "Select character N (1-based, sorted) and list their costumes")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}
