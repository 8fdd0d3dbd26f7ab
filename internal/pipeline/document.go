package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"shotlist/internal"
	"shotlist/internal/catalog"
	"shotlist/internal/log"
	"shotlist/internal/rules"
)

type Options struct {
	Rules *rules.Rules
	Match MatchOptions
	// SceneCharacters maps a SCENE value to the characters that scene
	// introduces, used to resolve a CHARACTERS field that is only a pronoun.
	SceneCharacters map[string][]string
}

func (o Options) withDefaults() Options {
	if o.Rules == nil {
		o.Rules = rules.Default()
	}
	if o.Match == (MatchOptions{}) {
		o.Match = DefaultMatchOptions()
	}
	return o
}

// Document is the result of normalizing one breakdown report.
type Document struct {
	Blocks     []internal.ShotBlock
	Shots      []*internal.NormalizedShot
	Unresolved []internal.Unresolved
	Sets       map[string]*internal.MasterSet
	Names      *catalog.Index
	Rules      *rules.Rules
}

// Process runs tokenizer, merge, resolver and set consolidation over a
// breakdown report. bible may be empty, in which case names pass through.
func Process(report, bible string, opts Options) (*Document, error) {
	return ProcessWithIndex(report, catalog.ParseBible(bible), opts)
}

func ProcessWithIndex(report string, names *catalog.Index, opts Options) (*Document, error) {
	opts = opts.withDefaults()
	logger := log.WithComponent("parser")

	blocks, err := Tokenize(report)
	if err != nil {
		return nil, err
	}
	if names.Len() == 0 {
		logger.Info("no canonical names supplied; character names pass through")
	}

	resolver := NewResolver(NewMatcher(opts.Match, names), opts.Rules)
	doc := &Document{Blocks: blocks, Names: names, Rules: opts.Rules}
	for _, block := range blocks {
		merged := MergeBlock(block, opts.Rules)
		shot, issues := resolver.ResolveBlock(merged, Scope{SceneCharacters: sceneCharacters(merged, opts.SceneCharacters)})
		shotID := ShotID(shot, block.Index)
		for i := range issues {
			issues[i].ShotIndex = block.Index
			issues[i].ShotID = shotID
			logger.Warn("unresolved reference", "shot", shotID, "field", issues[i].Field, "kind", string(issues[i].Kind), "value", issues[i].Value)
		}
		doc.Shots = append(doc.Shots, shot)
		doc.Unresolved = append(doc.Unresolved, issues...)
	}
	doc.Sets = Consolidate(doc.Shots, opts.Rules)
	logger.Info("document normalized", "shots", len(doc.Shots), "unresolved", len(doc.Unresolved), "sets", len(doc.Sets))
	return doc, nil
}

// FromTable wraps an already tabular shot list so the same downstream
// consumers can run over it.
func FromTable(shots []*internal.NormalizedShot, r *rules.Rules) *Document {
	if r == nil {
		r = rules.Default()
	}
	return &Document{Shots: shots, Sets: Consolidate(shots, r), Names: catalog.BuildIndex(nil), Rules: r}
}

func sceneCharacters(shot *internal.NormalizedShot, byScene map[string][]string) []string {
	if len(byScene) == 0 {
		return nil
	}
	key, ok := shot.Find("SCENE")
	if !ok {
		return nil
	}
	return byScene[strings.TrimSpace(shot.Value(key))]
}

// ShotID is the SHOT value, falling back to SCENE and then to a numbered
// placeholder.
func ShotID(shot *internal.NormalizedShot, index int) string {
	for _, k := range []string{"SHOT", "SCENE"} {
		if key, ok := shot.Find(k); ok {
			if v := strings.TrimSpace(shot.Value(key)); v != "" {
				return v
			}
		}
	}
	return fmt.Sprintf("Unnumbered Shot %d", index+1)
}

func (d *Document) CSV() string { return AssembleCSV(d.Shots) }

// DebugShot renders the raw fields and the normalized result of shot n
// (1-based) as indented JSON.
func (d *Document) DebugShot(n int) (string, error) {
	if n < 1 || n > len(d.Blocks) {
		return "", fmt.Errorf("shot %d out of range 1..%d", n, len(d.Blocks))
	}
	block := d.Blocks[n-1]
	raw := make([][2]string, 0, len(block.Fields))
	for _, f := range block.Fields {
		raw = append(raw, [2]string{f.Key, f.Value})
	}
	var issues []internal.Unresolved
	for _, u := range d.Unresolved {
		if u.ShotIndex == block.Index {
			issues = append(issues, u)
		}
	}
	payload := struct {
		Index      int                      `json:"index"`
		Total      int                      `json:"total"`
		Raw        [][2]string              `json:"raw"`
		Normalized *internal.NormalizedShot `json:"normalized"`
		Unresolved []internal.Unresolved    `json:"unresolved,omitempty"`
	}{Index: n, Total: len(d.Blocks), Raw: raw, Normalized: d.Shots[n-1], Unresolved: issues}
	blob, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return string(blob), nil
}
