package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"shotlist/internal/assets"
	"shotlist/internal/catalog"
	"shotlist/internal/connectors"
	"shotlist/internal/pipeline"
	"shotlist/internal/report"
)

func newDossierCommand(ctx *commandContext) *cobra.Command {
	var input, bible, output, title string
	var documentID int

	cmd := &cobra.Command{
		Use:   "dossier",
		Short: "Render a PDF shot dossier with the master asset lists",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(output) == "" {
				return fmt.Errorf("--out is required")
			}
			var doc *pipeline.Document
			switch {
			case documentID > 0:
				db, err := ctx.openDB()
				if err != nil {
					return err
				}
				shots, err := db.ListShots(documentID)
				if err != nil {
					return err
				}
				doc = pipeline.FromTable(shots, ctx.rules)
			case strings.TrimSpace(input) != "":
				var err error
				if doc, err = ctx.loadDocument(input, bible); err != nil {
					return err
				}
			default:
				return fmt.Errorf("--input or --id is required")
			}
			opt := report.PDFOptions{Title: title, Assets: assets.Collect(doc.Shots, ctx.rules)}
			if err := report.WritePDF(doc.Shots, output, opt); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "dossier with %d shots written to %s\n", len(doc.Shots), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Shot table or breakdown report")
	cmd.Flags().StringVar(&bible, "bible", "", "Character bible for breakdown input")
	cmd.Flags().IntVar(&documentID, "id", 0, "Use the stored shots of this document instead of --input")
	cmd.Flags().StringVarP(&output, "out", "o", "", "Output PDF path")
	cmd.Flags().StringVar(&title, "title", "", "Dossier title")
	return cmd
}

func newBibleImportCommand(ctx *commandContext) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "bible:import <file>",
		Short: "Store the canonical character names of a character bible",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ctx.openDB()
			if err != nil {
				return err
			}
			svc := catalog.NewImportService(db)
			if reset {
				if err := svc.Reset(); err != nil {
					return err
				}
			}
			in, err := pipeline.ReadInputFile(args[0], "")
			if err != nil {
				return err
			}
			idx, added, err := svc.ImportBible(in.Text, filepath.Base(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "bible import done names=%d new=%d\n", idx.Len(), added)
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "Forget previously imported names first")
	return cmd
}

func newInboxFetchCommand(ctx *commandContext) *cobra.Command {
	var max int

	cmd := &cobra.Command{
		Use:   "inbox:fetch",
		Short: "Copy new inbox documents into the raw store",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ctx.openDB()
			if err != nil {
				return err
			}
			fetch := connectors.NewFetchService(db, ctx.config.RawDir, connectors.NewDirSource(ctx.config.InboxDir))
			result, err := fetch.FetchAndStore(max)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "inbox fetch done dir=%s fetched=%d stored=%d changed=%d\n",
				ctx.config.InboxDir, result.Fetched, result.Stored, result.Changed)
			return nil
		},
	}

	cmd.Flags().IntVar(&max, "max", 50, "Max documents per fetch")
	return cmd
}

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var documentID, batch int

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Process fetched documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ctx.openDB()
			if err != nil {
				return err
			}
			processor := ctx.processor(db)
			if documentID > 0 {
				res, err := processor.ProcessByID(cmd.Context(), documentID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "processed document id=%d kind=%s status=%s shots=%d unresolved=%d\n",
					res.DocumentID, res.Kind, res.Status, res.Shots, res.Unresolved)
				return nil
			}
			docs, shots, err := processor.ProcessPending(cmd.Context(), batch)
			fmt.Fprintf(cmd.OutOrStdout(), "processed pending documents=%d shots=%d\n", docs, shots)
			return err
		},
	}

	cmd.Flags().IntVar(&documentID, "id", 0, "Process a single document")
	cmd.Flags().IntVar(&batch, "batch", 20, "Batch size")
	return cmd
}

func newExportXLSXCommand(ctx *commandContext) *cobra.Command {
	var documentID int
	var output string

	cmd := &cobra.Command{
		Use:   "export:xlsx",
		Short: "Export the stored shots and sets of a document to a workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			if documentID == 0 || strings.TrimSpace(output) == "" {
				return fmt.Errorf("--id and --out are required")
			}
			db, err := ctx.openDB()
			if err != nil {
				return err
			}
			shots, err := db.ListShots(documentID)
			if err != nil {
				return err
			}
			if len(shots) == 0 {
				return fmt.Errorf("no shots for document id=%d", documentID)
			}
			if err := pipeline.ExportXLSX(shots, pipeline.Consolidate(shots, ctx.rules), output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d shots to %s\n", len(shots), output)
			return nil
		},
	}

	cmd.Flags().IntVar(&documentID, "id", 0, "Document id")
	cmd.Flags().StringVarP(&output, "out", "o", "", "Output xlsx path")
	return cmd
}

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent processing runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ctx.openDB()
			if err != nil {
				return err
			}
			runs, err := db.ListRuns(limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, r := range runs {
				name := "-"
				if r.DocumentID > 0 {
					if doc, err := db.GetDocumentByID(r.DocumentID); err == nil && doc != nil {
						name = doc.Name
					}
				}
				rows = append(rows, []string{
					itoa(r.ID), r.CreatedAt, name, r.Status,
					itoa(r.Counts["shots"]), itoa(r.Counts["unresolved"]),
					fmt.Sprintf("%.0f", r.Timings["totalMs"]), r.TraceID,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Created", "Document", "Status", "Shots", "Unresolved", "ms", "Trace"}, rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Number of runs to show")
	return cmd
}

func newUnresolvedCommand(ctx *commandContext) *cobra.Command {
	var documentID int

	cmd := &cobra.Command{
		Use:   "unresolved",
		Short: "List the names and pronouns a processed document could not resolve",
		RunE: func(cmd *cobra.Command, args []string) error {
			if documentID == 0 {
				return fmt.Errorf("--id is required")
			}
			db, err := ctx.openDB()
			if err != nil {
				return err
			}
			doc, err := db.MustDocument(documentID)
			if err != nil {
				return err
			}
			issues, err := db.ListUnresolved(doc.ID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(issues) == 0 {
				fmt.Fprintf(out, "No unresolved references in %s\n", doc.Name)
				return nil
			}
			printUnresolved(out, issues)
			return nil
		},
	}

	cmd.Flags().IntVar(&documentID, "id", 0, "Document id")
	return cmd
}
