// Package rules holds the validation vocabulary used when sanitizing list
// valued shot fields: null markers, excluded keywords, alias groups, pronoun
// lists, key aliases and the time-of-day suffixes for scene headings.
package rules

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

//go:embed schema.json
var schemaJSON []byte

type File struct {
	NullExact          []string                       `yaml:"null_exact"`
	NullPrefixes       []string                       `yaml:"null_prefixes"`
	InvalidKeywords    []string                       `yaml:"invalid_keywords"`
	CategoryExclusions map[string][]string            `yaml:"category_exclusions"`
	Aliases            map[string]map[string][]string `yaml:"aliases"`
	Pronouns           []string                       `yaml:"pronouns"`
	ContextPronouns    []string                       `yaml:"context_pronouns"`
	KeyAliases         map[string]string              `yaml:"key_aliases"`
	TimeOfDay          []string                       `yaml:"time_of_day"`
}

type Rules struct {
	nullExact       map[string]struct{}
	nullPrefixes    []string
	globalRegex     *regexp.Regexp
	categoryRegex   map[string]*regexp.Regexp
	aliases         map[string]map[string]string
	pronouns        map[string]struct{}
	contextPronouns map[string]struct{}
	keyAliases      map[string]string
	timeOfDay       []*regexp.Regexp
	source          File
}

var invalidChars = regexp.MustCompile(`[\[\]\(\)'"]`)

// Default returns the compiled-in rule set.
func Default() *Rules {
	var f File
	if err := yaml.Unmarshal(defaultsYAML, &f); err != nil {
		panic(fmt.Sprintf("rules: embedded defaults: %v", err))
	}
	return compile(f)
}

// Load reads a YAML rules file and overlays every section it names onto the
// defaults. An empty path or a missing file yields the defaults.
func Load(path string) (*Rules, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Rules, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	var overlay File
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("parse rules yaml: %w", err)
	}
	return compile(merge(Default().source, overlay)), nil
}

// Validate checks a YAML rules document against the embedded JSON schema.
func Validate(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse rules yaml: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	blob, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("rules to json: %w", err)
	}
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaJSON), gojsonschema.NewBytesLoader(blob))
	if err != nil {
		return fmt.Errorf("validate rules: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("rules do not conform to schema: %s", strings.Join(msgs, "; "))
	}
	return nil
}

func merge(base, overlay File) File {
	if overlay.NullExact != nil {
		base.NullExact = overlay.NullExact
	}
	if overlay.NullPrefixes != nil {
		base.NullPrefixes = overlay.NullPrefixes
	}
	if overlay.InvalidKeywords != nil {
		base.InvalidKeywords = overlay.InvalidKeywords
	}
	if overlay.CategoryExclusions != nil {
		merged := make(map[string][]string, len(base.CategoryExclusions)+len(overlay.CategoryExclusions))
		for category, keywords := range base.CategoryExclusions {
			merged[strings.ToUpper(category)] = keywords
		}
		for category, keywords := range overlay.CategoryExclusions {
			merged[strings.ToUpper(category)] = keywords
		}
		base.CategoryExclusions = merged
	}
	if overlay.Aliases != nil {
		base.Aliases = overlay.Aliases
	}
	if overlay.Pronouns != nil {
		base.Pronouns = overlay.Pronouns
	}
	if overlay.ContextPronouns != nil {
		base.ContextPronouns = overlay.ContextPronouns
	}
	if overlay.KeyAliases != nil {
		base.KeyAliases = overlay.KeyAliases
	}
	if overlay.TimeOfDay != nil {
		base.TimeOfDay = overlay.TimeOfDay
	}
	return base
}

func compile(f File) *Rules {
	r := &Rules{
		nullExact:       lowerSet(f.NullExact),
		globalRegex:     keywordRegex(f.InvalidKeywords),
		categoryRegex:   map[string]*regexp.Regexp{},
		aliases:         map[string]map[string]string{},
		pronouns:        lowerSet(f.Pronouns),
		contextPronouns: lowerSet(f.ContextPronouns),
		keyAliases:      map[string]string{},
		source:          f,
	}
	for _, p := range f.NullPrefixes {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			r.nullPrefixes = append(r.nullPrefixes, p)
		}
	}
	for category, keywords := range f.CategoryExclusions {
		if re := keywordRegex(keywords); re != nil {
			r.categoryRegex[strings.ToUpper(category)] = re
		}
	}
	for category, groups := range f.Aliases {
		lookup := map[string]string{}
		// Sorted canonical order keeps lookups deterministic when a synonym
		// appears under two canonical labels.
		for _, canonical := range sortedKeys(groups) {
			for _, synonym := range groups[canonical] {
				key := NormalizeKey(synonym)
				if _, taken := lookup[key]; !taken {
					lookup[key] = canonical
				}
			}
		}
		r.aliases[strings.ToUpper(category)] = lookup
	}
	for from, to := range f.KeyAliases {
		r.keyAliases[strings.ToUpper(strings.TrimSpace(from))] = to
	}

	suffixes := append([]string(nil), f.TimeOfDay...)
	sort.SliceStable(suffixes, func(i, j int) bool { return len(suffixes[i]) > len(suffixes[j]) })
	for _, s := range suffixes {
		r.timeOfDay = append(r.timeOfDay, regexp.MustCompile(`(?i)\s*-\s*(`+regexp.QuoteMeta(strings.TrimSpace(s))+`)\s*$`))
	}
	return r
}

func keywordRegex(keywords []string) *regexp.Regexp {
	quoted := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			quoted = append(quoted, regexp.QuoteMeta(k))
		}
	}
	if len(quoted) == 0 {
		return nil
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
}

func lowerSet(items []string) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item = strings.ToLower(strings.TrimSpace(item)); item != "" {
			out[item] = struct{}{}
		}
	}
	return out
}

func sortedKeys(m map[string][]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// SanitizeItem strips bracket and quote characters, trims, and removes one
// trailing period.
func SanitizeItem(item string) string {
	s := strings.TrimSpace(invalidChars.ReplaceAllString(item, ""))
	if strings.HasSuffix(s, ".") {
		s = strings.TrimSpace(s[:len(s)-1])
	}
	return s
}

// NormalizeKey is the dedup key for an accepted item.
func NormalizeKey(item string) string {
	return strings.TrimRight(strings.TrimSpace(strings.ToLower(item)), ".")
}

// IsValid reports whether item may enter the master list for category.
// Checks run in order: empty, null-exact, null-prefix, global keywords,
// category exclusions.
func (r *Rules) IsValid(item, category string) bool {
	lower := strings.ToLower(SanitizeItem(item))
	if lower == "" {
		return false
	}
	if _, ok := r.nullExact[lower]; ok {
		return false
	}
	for _, p := range r.nullPrefixes {
		if strings.HasPrefix(lower, p) {
			return false
		}
	}
	if r.globalRegex != nil && r.globalRegex.MatchString(lower) {
		return false
	}
	if re := r.categoryRegex[strings.ToUpper(category)]; re != nil && re.MatchString(lower) {
		return false
	}
	return true
}

// Canonicalize maps a synonym to its canonical label for category. Items
// without an alias are returned unchanged.
func (r *Rules) Canonicalize(item, category string) string {
	lookup := r.aliases[strings.ToUpper(category)]
	if canonical, ok := lookup[NormalizeKey(item)]; ok {
		return canonical
	}
	return item
}

func (r *Rules) IsPronoun(token string) bool {
	_, ok := r.pronouns[strings.ToLower(strings.TrimSpace(token))]
	return ok
}

func (r *Rules) IsContextPronoun(token string) bool {
	_, ok := r.contextPronouns[strings.ToLower(strings.TrimSpace(token))]
	return ok
}

// KeyAlias returns the remapped key name, matching aliases case-insensitively.
func (r *Rules) KeyAlias(key string) string {
	if to, ok := r.keyAliases[strings.ToUpper(strings.TrimSpace(key))]; ok {
		return to
	}
	return key
}

// SplitTimeOfDay finds a trailing "- SUFFIX" and returns the remaining base
// and the upper-cased label. ok is false when no suffix matches.
func (r *Rules) SplitTimeOfDay(location string) (base, label string, ok bool) {
	for _, re := range r.timeOfDay {
		loc := re.FindStringSubmatchIndex(location)
		if loc == nil {
			continue
		}
		return strings.TrimSpace(location[:loc[0]]), strings.ToUpper(location[loc[2]:loc[3]]), true
	}
	return location, "", false
}

// Source returns the merged rule file, for dumping the effective rules.
func (r *Rules) Source() File { return r.source }
