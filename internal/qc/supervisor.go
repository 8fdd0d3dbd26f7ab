package qc

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"text/template"

	"shotlist/internal/llm"
	"shotlist/internal/log"
	"shotlist/internal/pipeline"
	"shotlist/internal/rules"
)

//go:embed supervisor.tmpl
var defaultPrompt string

var promptTemplate = template.Must(template.New("qc").Parse(defaultPrompt))

func DefaultParams() llm.Params {
	return llm.Params{MaxTokens: 1024, Temperature: 0.1, Stop: []string{"</response>"}}
}

// Supervisor cleans a breakdown report. With a nil LLM it runs in
// deterministic mode.
type Supervisor struct {
	LLM    llm.Completer
	Params llm.Params
	Rules  *rules.Rules
}

type Result struct {
	Report  string
	Log     []string
	Dropped []string
}

func NewSupervisor(c llm.Completer, params llm.Params, r *rules.Rules) *Supervisor {
	if r == nil {
		r = rules.Default()
	}
	return &Supervisor{LLM: c, Params: params, Rules: r}
}

func RenderPrompt(assets string) (string, error) {
	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, struct{ Assets string }{assets}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *Supervisor) Run(ctx context.Context, report string) (*Result, error) {
	if err := pipeline.CheckInput(report); err != nil {
		return nil, err
	}
	blocks := SplitBlocks(report)
	if len(blocks) == 0 {
		return nil, pipeline.ErrNoShotData
	}

	logger := log.WithComponent("qc")
	res := &Result{}
	clean := make([]string, 0, len(blocks))
	for i, block := range blocks {
		assets := ExtractAssets(block)
		var cleaned Cleaned
		switch {
		case len(assets.Lines) == 0:
		case s.LLM == nil:
			cleaned = Deterministic(assets, s.Rules)
		default:
			prompt, err := RenderPrompt(assets.Text())
			if err != nil {
				return nil, err
			}
			res.Log = append(res.Log, fmt.Sprintf("--- PROMPT FOR BLOCK %d ---\n%s", i+1, prompt))
			out, err := s.LLM.Complete(ctx, prompt, s.Params)
			if err != nil {
				return nil, fmt.Errorf("block %d: %w", i+1, err)
			}
			res.Log = append(res.Log, fmt.Sprintf("--- QC REPORT FOR BLOCK %d ---\n%s", i+1, out))
			cleaned = ParseReport(out)
		}

		rebuilt, dropped := Rebuild(block, assets, cleaned)
		for _, key := range dropped {
			logger.Warn("discarded junk asset key", "block", i+1, "key", key)
		}
		res.Dropped = append(res.Dropped, dropped...)
		clean = append(clean, rebuilt)
	}
	res.Report = JoinBlocks(clean)
	logger.Info("report sanitized", "blocks", len(blocks), "dropped", len(res.Dropped), "deterministic", s.LLM == nil)
	return res, nil
}

func (s *Supervisor) RunText(ctx context.Context, report string) string {
	res, err := s.Run(ctx, report)
	if err != nil {
		log.WithComponent("qc").Error("qc failed", "error", err)
		return pipeline.ErrorText(err)
	}
	return res.Report
}
