package pipeline

import (
	"regexp"
	"strings"

	"shotlist/internal"
	"shotlist/internal/rules"
	"shotlist/internal/util"
)

var rePerCharacterKey = regexp.MustCompile(`(?i)^(PROPS|COSTUMES)\s*\(([^)]+)\)$`)

// GroundTruth is the list of canonical characters present in one shot.
// It never contains pronouns.
type GroundTruth []string

// Scope carries context from outside the block, such as the characters a
// screenplay scene heading section introduces.
type Scope struct {
	SceneCharacters []string
}

type Resolver struct {
	matcher *Matcher
	rules   *rules.Rules
}

func NewResolver(m *Matcher, r *rules.Rules) *Resolver {
	return &Resolver{matcher: m, rules: r}
}

func (rv *Resolver) isPronoun(token string) bool {
	return rv.rules.IsPronoun(token) || rv.rules.IsContextPronoun(token)
}

// EstablishGroundTruth reads the CHARACTERS field and returns the
// normalized, pronoun-free character list for the shot. Pronouns the scene
// cannot pin to one character are dropped and reported.
func (rv *Resolver) EstablishGroundTruth(shot *internal.NormalizedShot, scope Scope) (GroundTruth, []internal.Unresolved) {
	key, ok := shot.Find("CHARACTERS")
	if !ok {
		return nil, nil
	}
	value := strings.TrimSpace(shot.Value(key))
	if rv.isPronoun(value) && len(scope.SceneCharacters) == 1 {
		value = scope.SceneCharacters[0]
	}
	if util.IsNoneValue(value) {
		return nil, nil
	}

	var truth GroundTruth
	var issues []internal.Unresolved
	seen := map[string]struct{}{}
	for _, token := range util.SplitList(value) {
		if rv.isPronoun(token) {
			issues = append(issues, internal.Unresolved{
				Field:       key,
				Kind:        internal.UnresolvedPronoun,
				Value:       token,
				Suggestions: append([]string(nil), scope.SceneCharacters...),
			})
			continue
		}
		res := rv.matcher.Match(token)
		if res.Name == "" {
			continue
		}
		if !res.Resolved() && rv.matcher.Index().Len() > 0 {
			issues = append(issues, internal.Unresolved{Field: key, Kind: internal.UnresolvedName, Value: token, Suggestions: suggestionNames(res)})
		}
		if _, dup := seen[res.Name]; dup {
			continue
		}
		seen[res.Name] = struct{}{}
		truth = append(truth, res.Name)
	}
	return truth, issues
}

// ResolveShot rewrites CHARACTERS, per-character PROPS/COSTUMES keys and
// DIALOGUE using the shot's ground truth. Every other key passes through.
func (rv *Resolver) ResolveShot(shot *internal.NormalizedShot, truth GroundTruth) (*internal.NormalizedShot, []internal.Unresolved) {
	out := internal.NewNormalizedShot()
	var issues []internal.Unresolved
	for _, key := range shot.Keys() {
		value := shot.Value(key)
		upper := strings.ToUpper(strings.TrimSpace(key))
		switch {
		case upper == "CHARACTERS":
			if len(truth) == 0 {
				out.Set(key, "None")
			} else {
				out.Set(key, strings.Join(truth, ", "))
			}
		case upper == "DIALOGUE":
			line, speaker := SanitizeDialogue(value, rv.matcher)
			if speaker != "" {
				issues = append(issues, internal.Unresolved{Field: key, Kind: internal.UnresolvedSpeaker, Value: speaker})
			}
			out.Set(key, line)
		default:
			m := rePerCharacterKey.FindStringSubmatch(strings.TrimSpace(key))
			if m == nil {
				out.Set(key, value)
				continue
			}
			kind, name := strings.ToUpper(m[1]), strings.TrimSpace(m[2])
			resolved, issue, keep := rv.resolveEntity(name, truth)
			if issue != nil {
				issue.Field = key
				issues = append(issues, *issue)
			}
			if !keep {
				continue
			}
			out.Append(kind+" ("+resolved+")", value, ", ")
		}
	}
	return out, issues
}

// resolveEntity maps the name inside a per-character key. keep is false for
// junk keys naming no character at all.
func (rv *Resolver) resolveEntity(name string, truth GroundTruth) (string, *internal.Unresolved, bool) {
	if util.IsNoneValue(name) {
		return "", &internal.Unresolved{Kind: internal.UnresolvedJunkKey, Value: name}, false
	}
	if rv.isPronoun(name) {
		if len(truth) == 1 {
			return truth[0], nil, true
		}
		return name, &internal.Unresolved{Kind: internal.UnresolvedPronoun, Value: name, Suggestions: append([]string(nil), truth...)}, true
	}
	res := rv.matcher.Match(name)
	if !res.Resolved() && rv.matcher.Index().Len() > 0 {
		return res.Name, &internal.Unresolved{Kind: internal.UnresolvedName, Value: name, Suggestions: suggestionNames(res)}, true
	}
	return res.Name, nil, true
}

// ResolveBlock runs both passes over one merged shot.
func (rv *Resolver) ResolveBlock(shot *internal.NormalizedShot, scope Scope) (*internal.NormalizedShot, []internal.Unresolved) {
	truth, issues := rv.EstablishGroundTruth(shot, scope)
	out, more := rv.ResolveShot(shot, truth)
	return out, append(issues, more...)
}
