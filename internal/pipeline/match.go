package pipeline

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"shotlist/internal"
	"shotlist/internal/catalog"
	"shotlist/internal/config"
	"shotlist/internal/util"
)

var speechMarkers = []string{"(", "V.O.", "CONT'D", "O.S."}

type MatchOptions struct {
	MaxEditDistance int
	PrefixMatch     bool
	MaxSuggestions  int
}

func DefaultMatchOptions() MatchOptions {
	return MatchOptions{MaxEditDistance: 3, PrefixMatch: true, MaxSuggestions: 3}
}

func MatchOptionsFromConfig(cfg config.Config) MatchOptions {
	opts := DefaultMatchOptions()
	if cfg.NameMaxEditDistance >= 0 {
		opts.MaxEditDistance = cfg.NameMaxEditDistance
	}
	opts.PrefixMatch = cfg.NamePrefixMatch
	return opts
}

// Matcher resolves character name variations against a canonical index.
// It holds no mutable state and is safe for concurrent use.
type Matcher struct {
	opts  MatchOptions
	index *catalog.Index
}

func NewMatcher(opts MatchOptions, index *catalog.Index) *Matcher {
	if index == nil {
		index = catalog.BuildIndex(nil)
	}
	return &Matcher{opts: opts, index: index}
}

func (m *Matcher) Index() *catalog.Index { return m.index }

// CleanVariation cuts the variation at the first parenthetical or speech
// marker and trims it.
func CleanVariation(variation string) string {
	cut := -1
	for _, marker := range speechMarkers {
		if i := strings.Index(variation, marker); i != -1 && (cut == -1 || i < cut) {
			cut = i
		}
	}
	if cut != -1 {
		variation = variation[:cut]
	}
	return strings.TrimSpace(util.CanonicalText(variation))
}

// Normalize returns the canonical name for variation, or the cleaned
// variation when nothing matches.
func (m *Matcher) Normalize(variation string) string {
	return m.Match(variation).Name
}

func (m *Matcher) Match(variation string) internal.MatchResult {
	cleaned := CleanVariation(variation)
	result := internal.MatchResult{
		Input:      variation,
		Cleaned:    cleaned,
		Name:       cleaned,
		Status:     internal.MatchNotFound,
		Reason:     internal.ReasonNone,
		Candidates: []internal.MatchCandidate{},
	}
	if cleaned == "" || m.index.Len() == 0 {
		return result
	}
	lower := strings.ToLower(cleaned)

	if canonical, ok := m.index.ByLower[lower]; ok {
		result.Name, result.Status, result.Reason = canonical, internal.MatchOK, internal.ReasonExact
		result.Candidates = []internal.MatchCandidate{{Name: canonical}}
		return result
	}

	if m.opts.PrefixMatch {
		var prefixed []string
		for _, name := range m.index.Names {
			if strings.HasPrefix(strings.ToLower(name), lower) {
				prefixed = append(prefixed, name)
			}
		}
		if len(prefixed) == 1 {
			result.Name, result.Status, result.Reason = prefixed[0], internal.MatchOK, internal.ReasonPrefix
			result.Candidates = []internal.MatchCandidate{{Name: prefixed[0]}}
			return result
		}
	}

	best, bestDist := "", -1
	for _, name := range m.index.Names {
		d := fuzzy.LevenshteinDistance(lower, strings.ToLower(name))
		if bestDist == -1 || d < bestDist {
			best, bestDist = name, d
		}
	}
	if bestDist <= m.opts.MaxEditDistance {
		result.Name, result.Status, result.Reason, result.Distance = best, internal.MatchReview, internal.ReasonEdit, bestDist
		result.Candidates = []internal.MatchCandidate{{Name: best, Distance: bestDist}}
		return result
	}

	result.Distance = bestDist
	result.Candidates = m.suggest(lower)
	return result
}

// suggest lists the nearest canonical names for diagnostics. Subsequence
// matches from fuzzy ranking come first, then the closest by edit distance.
func (m *Matcher) suggest(lower string) []internal.MatchCandidate {
	limit := m.opts.MaxSuggestions
	if limit <= 0 {
		return []internal.MatchCandidate{}
	}
	seen := map[string]struct{}{}
	out := make([]internal.MatchCandidate, 0, limit)
	add := func(name string) {
		if _, ok := seen[name]; ok || len(out) >= limit {
			return
		}
		seen[name] = struct{}{}
		out = append(out, internal.MatchCandidate{Name: name, Distance: fuzzy.LevenshteinDistance(lower, strings.ToLower(name))})
	}

	ranks := fuzzy.RankFindFold(lower, m.index.Names)
	sort.Sort(ranks)
	for _, r := range ranks {
		add(r.Target)
	}

	byDistance := make([]internal.MatchCandidate, 0, len(m.index.Names))
	for _, name := range m.index.Names {
		byDistance = append(byDistance, internal.MatchCandidate{Name: name, Distance: fuzzy.LevenshteinDistance(lower, strings.ToLower(name))})
	}
	sort.SliceStable(byDistance, func(i, j int) bool { return byDistance[i].Distance < byDistance[j].Distance })
	for _, c := range byDistance {
		add(c.Name)
	}
	return out
}

// IsCanonical reports whether name is exactly one of the canonical names.
func (m *Matcher) IsCanonical(name string) bool {
	return m.index.Contains(name)
}

func suggestionNames(res internal.MatchResult) []string {
	out := make([]string, 0, len(res.Candidates))
	for _, c := range res.Candidates {
		out = append(out, c.Name)
	}
	return out
}
