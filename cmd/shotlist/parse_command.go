package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"shotlist/internal/report"
)

var parseOutputs = []string{"csv", "dossier", "cinematography", "sound", "performance", "characters", "props"}

var parseFileNames = map[string]string{
	"csv":            "shots.csv",
	"dossier":        "dossier.md",
	"cinematography": "cinematography_notes.md",
	"sound":          "sound_design_notes.md",
	"performance":    "performance_notes.md",
	"characters":     "characters.txt",
	"props":          "props.txt",
}

func newParseCommand(ctx *commandContext) *cobra.Command {
	var input, bible, outDir string
	var debugShot int

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Normalize a shot breakdown report into a CSV shot list and notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(input) == "" {
				return fmt.Errorf("--input is required")
			}
			outputs := outputSet{}
			if outDir != "" {
				for _, slot := range parseOutputs {
					outputs[slot] = filepath.Join(outDir, parseFileNames[slot])
				}
			}

			doc, err := ctx.loadDocument(input, bible)
			if err != nil {
				return outputs.fail(err)
			}
			out := cmd.OutOrStdout()

			if debugShot > 0 {
				dump, err := doc.DebugShot(debugShot)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, dump)
				return nil
			}

			notes := report.Build(doc.Shots)
			contents := map[string]string{
				"csv":            doc.CSV(),
				"dossier":        notes.Dossier,
				"cinematography": notes.Cinematography,
				"sound":          notes.SoundDesign,
				"performance":    notes.Performance,
				"characters":     notes.Characters,
				"props":          notes.Props,
			}
			if outDir == "" {
				fmt.Fprint(out, contents["csv"])
			} else {
				for _, slot := range parseOutputs {
					if err := outputs.write(slot, contents[slot]); err != nil {
						return err
					}
				}
				fmt.Fprintf(out, "parsed %d shots into %s\n", len(doc.Shots), outDir)
			}
			printUnresolved(cmd.ErrOrStderr(), doc.Unresolved)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Breakdown report (.txt, .md, .html, .pdf) or shot table (.csv, .xlsx)")
	cmd.Flags().StringVar(&bible, "bible", "", "Character bible; defaults to the names stored in the database")
	cmd.Flags().StringVarP(&outDir, "out-dir", "o", "", "Write CSV and notes into this directory instead of printing the CSV")
	cmd.Flags().IntVar(&debugShot, "debug-shot", 0, "Print raw and normalized fields for shot N (1-based)")
	return cmd
}
