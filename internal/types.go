package internal

import (
	"bytes"
	"encoding/json"
	"strings"
)

type DocumentKind string

const (
	KindBreakdown  DocumentKind = "breakdown"
	KindBible      DocumentKind = "bible"
	KindScreenplay DocumentKind = "screenplay"
	KindTable      DocumentKind = "table"
	KindUnknown    DocumentKind = "unknown"
)

type InputSource string

const (
	SourceText InputSource = "text"
	SourceHTML InputSource = "html"
	SourcePDF  InputSource = "pdf"
	SourceCSV  InputSource = "csv"
	SourceXLSX InputSource = "xlsx"
)

// Field is one KEY: value pair as it appeared in a shot block.
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ShotBlock is the ordered list of fields extracted from one
// //---SHOT_START---// unit. Index is 0-based in document order after dedup.
type ShotBlock struct {
	Index  int     `json:"index"`
	Fields []Field `json:"fields"`
}

// NormalizedShot is an insertion-ordered string map. Keys are compared
// exactly; callers that need case-insensitive lookup use Find.
type NormalizedShot struct {
	keys   []string
	values map[string]string
}

func NewNormalizedShot() *NormalizedShot {
	return &NormalizedShot{values: map[string]string{}}
}

func (s *NormalizedShot) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

func (s *NormalizedShot) Len() int { return len(s.keys) }

func (s *NormalizedShot) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s *NormalizedShot) Value(key string) string {
	return s.values[key]
}

// Find returns the first key equal to key ignoring case and surrounding space.
func (s *NormalizedShot) Find(key string) (string, bool) {
	want := strings.ToUpper(strings.TrimSpace(key))
	for _, k := range s.keys {
		if strings.ToUpper(strings.TrimSpace(k)) == want {
			return k, true
		}
	}
	return "", false
}

func (s *NormalizedShot) Set(key, value string) {
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
}

// Append joins value onto an existing non-empty value with sep. An empty
// value never overwrites content already stored under key.
func (s *NormalizedShot) Append(key, value, sep string) {
	existing, ok := s.values[key]
	switch {
	case !ok:
		s.Set(key, value)
	case existing == "":
		s.values[key] = value
	case value != "":
		s.values[key] = existing + sep + value
	}
}

func (s *NormalizedShot) Delete(key string) {
	if _, ok := s.values[key]; !ok {
		return
	}
	delete(s.values, key)
	for i, k := range s.keys {
		if k == key {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
}

// MarshalJSON keeps key order, which a plain map would lose.
func (s *NormalizedShot) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, k := range s.keys {
		if i > 0 {
			b.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(s.values[k])
		if err != nil {
			return nil, err
		}
		b.Write(kb)
		b.WriteByte(':')
		b.Write(vb)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// Map returns a plain copy, mostly for JSON debug output.
func (s *NormalizedShot) Map() map[string]string {
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

type MatchStatus string

type MatchReason string

const (
	MatchOK       MatchStatus = "OK"
	MatchReview   MatchStatus = "REVIEW"
	MatchNotFound MatchStatus = "NOT_FOUND"

	ReasonExact  MatchReason = "EXACT"
	ReasonPrefix MatchReason = "PREFIX"
	ReasonEdit   MatchReason = "EDIT"
	ReasonNone   MatchReason = "NONE"
)

type MatchCandidate struct {
	Name     string `json:"name"`
	Distance int    `json:"distance"`
}

// MatchResult is the outcome of resolving one name variation against the
// canonical set. Name holds the canonical name, or the cleaned variation
// when Status is NOT_FOUND.
type MatchResult struct {
	Input      string           `json:"input"`
	Cleaned    string           `json:"cleaned"`
	Name       string           `json:"name"`
	Status     MatchStatus      `json:"status"`
	Reason     MatchReason      `json:"reason"`
	Distance   int              `json:"distance"`
	Candidates []MatchCandidate `json:"candidates"`
}

func (r MatchResult) Resolved() bool { return r.Status != MatchNotFound }

type UnresolvedKind string

const (
	UnresolvedName     UnresolvedKind = "unmatched_name"
	UnresolvedPronoun  UnresolvedKind = "ambiguous_pronoun"
	UnresolvedJunkKey  UnresolvedKind = "junk_key"
	UnresolvedSpeaker  UnresolvedKind = "unmatched_speaker"
	UnresolvedLocation UnresolvedKind = "invalid_location"
)

// Unresolved records a non-fatal issue found while normalizing a shot.
type Unresolved struct {
	ShotIndex   int            `json:"shotIndex"`
	ShotID      string         `json:"shotId"`
	Field       string         `json:"field"`
	Kind        UnresolvedKind `json:"kind"`
	Value       string         `json:"value"`
	Suggestions []string       `json:"suggestions,omitempty"`
}

type Location struct {
	BaseName  string `json:"base_name"`
	TimeOfDay string `json:"time_of_day"`
}

// MasterSet aggregates every row that shares a base location.
type MasterSet struct {
	Name        string
	TimesOfDay  map[string]struct{}
	Dressing    map[string]struct{}
	ShotIndices []int
}

type DocumentRow struct {
	ID         int
	Source     string
	Name       string
	Kind       string
	Hash       string
	Status     string
	RawRef     string
	ReceivedAt string
}

type FetchedDocument struct {
	Source     string
	Name       string
	ReceivedAt string
	Raw        []byte
}

type ShotRow struct {
	DocumentID int
	ShotIndex  int
	ShotID     string
	Fields     *NormalizedShot
}

type RunRow struct {
	ID         int
	TraceID    string
	DocumentID int
	Status     string
	Counts     map[string]int
	Timings    map[string]float64
	CreatedAt  string
}
