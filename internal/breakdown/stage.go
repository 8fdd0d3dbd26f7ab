package breakdown

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"time"

	"shotlist/internal/llm"
	"shotlist/internal/log"
	"shotlist/internal/pipeline"
	"shotlist/internal/rules"
)

//go:embed cinematographer.tmpl
var defaultPrompt string

var promptTemplate = template.Must(template.New("cinematographer").Parse(defaultPrompt))

// DefaultParams are the sampling settings the breakdown prompt was tuned with.
func DefaultParams() llm.Params {
	return llm.Params{
		MaxTokens:   4096,
		Temperature: 0.5,
		TopP:        0.95,
		TopK:        40,
		Seed:        1234,
		Stop:        []string{"</response>"},
	}
}

type Stage struct {
	LLM    llm.Completer
	Params llm.Params
	Rules  *rules.Rules
}

// Result carries the joined report and the prompt sent for each scene.
// SceneCharacters is keyed by the renumbered SCENE value.
type Result struct {
	Report          string
	Prompts         []string
	Scenes          int
	SceneCharacters map[string][]string
}

func NewStage(c llm.Completer, params llm.Params, r *rules.Rules) *Stage {
	if r == nil {
		r = rules.Default()
	}
	return &Stage{LLM: c, Params: params, Rules: r}
}

func RenderPrompt(scene string) (string, error) {
	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, struct{ Scene string }{scene}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Run breaks the screenplay down scene by scene, in order. Any failure
// aborts the whole run.
func (s *Stage) Run(ctx context.Context, screenplay string) (*Result, error) {
	if err := pipeline.CheckInput(screenplay); err != nil {
		return nil, err
	}
	if s.LLM == nil {
		return nil, fmt.Errorf("no LLM configured")
	}
	scenes, err := SplitScenes(screenplay)
	if err != nil {
		return nil, err
	}

	logger := log.WithComponent("breakdown")
	logger.Info("screenplay split", "scenes", len(scenes))

	res := &Result{Scenes: len(scenes), SceneCharacters: map[string][]string{}}
	reports := make([]string, 0, len(scenes))
	for i, scene := range scenes {
		sceneNum := i + 1
		prompt, err := RenderPrompt(scene)
		if err != nil {
			return nil, fmt.Errorf("render prompt for scene %d: %w", sceneNum, err)
		}
		res.Prompts = append(res.Prompts, prompt)

		start := time.Now()
		out, err := s.LLM.Complete(ctx, prompt, s.Params)
		if err != nil {
			return nil, fmt.Errorf("scene %d: %w", sceneNum, err)
		}
		logger.Info("scene broken down", "scene", sceneNum, "chars", len(out), "ms", time.Since(start).Milliseconds())

		text := strings.TrimSpace(out)
		text = ResolveContextualPronouns(text, scene, s.Rules)
		text = NormalizeNames(text, screenplay)
		reports = append(reports, RenumberShots(text, sceneNum))
		if speakers := SceneCharacters(scene); len(speakers) > 0 {
			res.SceneCharacters[strconv.Itoa(sceneNum)] = speakers
		}
	}
	res.Report = strings.Join(reports, "\n\n")
	return res, nil
}

// RunText is Run for callers that fill a single output slot: failures come
// back as ERROR text.
func (s *Stage) RunText(ctx context.Context, screenplay string) string {
	res, err := s.Run(ctx, screenplay)
	if err != nil {
		log.WithComponent("breakdown").Error("breakdown failed", "error", err)
		return pipeline.ErrorText(err)
	}
	return res.Report
}

// ScreenplayStage adapts the stage for the processing service.
func (s *Stage) ScreenplayStage() pipeline.ScreenplayStage {
	return func(ctx context.Context, screenplay string) (pipeline.ScreenplayBreakdown, error) {
		res, err := s.Run(ctx, screenplay)
		if err != nil {
			return pipeline.ScreenplayBreakdown{}, err
		}
		return pipeline.ScreenplayBreakdown{Report: res.Report, SceneCharacters: res.SceneCharacters}, nil
	}
}
