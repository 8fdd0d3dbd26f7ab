package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"shotlist/internal/breakdown"
	"shotlist/internal/llm"
	"shotlist/internal/pipeline"
	"shotlist/internal/qc"
)

func newBreakdownCommand(ctx *commandContext) *cobra.Command {
	var input, output, promptLog string
	var temperature float64

	cmd := &cobra.Command{
		Use:   "breakdown",
		Short: "Ask the LLM for a shot breakdown of every scene in a screenplay",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(input) == "" {
				return fmt.Errorf("--input is required")
			}
			outputs := outputSet{"report": output, "prompts": promptLog}
			in, err := pipeline.ReadInputFile(input, "")
			if err != nil {
				return outputs.fail(err)
			}
			completer, err := ctx.completer()
			if err != nil {
				return outputs.fail(err)
			}
			params := breakdownParams(ctx.config)
			if cmd.Flags().Changed("temperature") {
				params.Temperature = temperature
			}
			res, err := breakdown.NewStage(completer, params, ctx.rules).Run(cmd.Context(), in.Text)
			if err != nil {
				return outputs.fail(err)
			}
			if err := outputs.write("prompts", strings.Join(res.Prompts, "\n\n")); err != nil {
				return err
			}
			if output == "" {
				fmt.Fprintln(cmd.OutOrStdout(), res.Report)
				return nil
			}
			if err := outputs.write("report", res.Report); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "broke down %d scenes into %s\n", res.Scenes, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Screenplay file")
	cmd.Flags().StringVarP(&output, "out", "o", "", "Write the breakdown report here instead of stdout")
	cmd.Flags().StringVar(&promptLog, "prompt-log", "", "Write every prompt sent to the model to this file")
	cmd.Flags().Float64Var(&temperature, "temperature", 0.5, "Sampling temperature")
	return cmd
}

func newQCCommand(ctx *commandContext) *cobra.Command {
	var input, output, logPath string
	var deterministic bool

	cmd := &cobra.Command{
		Use:   "qc",
		Short: "Clean the asset lists of a breakdown report",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(input) == "" {
				return fmt.Errorf("--input is required")
			}
			outputs := outputSet{"report": output, "log": logPath}
			text, err := readText(input)
			if err != nil {
				return outputs.fail(err)
			}
			var completer llm.Completer
			if !deterministic {
				if completer, err = ctx.completer(); err != nil {
					return outputs.fail(err)
				}
			}
			res, err := qc.NewSupervisor(completer, qc.DefaultParams(), ctx.rules).Run(cmd.Context(), text)
			if err != nil {
				return outputs.fail(err)
			}
			if err := outputs.write("log", strings.Join(res.Log, "\n\n")); err != nil {
				return err
			}
			if output == "" {
				fmt.Fprintln(cmd.OutOrStdout(), res.Report)
				return nil
			}
			if err := outputs.write("report", res.Report); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleaned report written to %s (%d junk keys dropped)\n", output, len(res.Dropped))
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Breakdown report")
	cmd.Flags().StringVarP(&output, "out", "o", "", "Write the cleaned report here instead of stdout")
	cmd.Flags().StringVar(&logPath, "log", "", "Write prompts and model answers to this file")
	cmd.Flags().BoolVar(&deterministic, "deterministic", false, "Clean with the rule set only, without the LLM")
	return cmd
}
