// Package qc cleans the asset lists of a raw breakdown report, either with
// the LLM or with the deterministic rule set, and rebuilds each shot block.
package qc

import (
	"regexp"
	"sort"
	"strings"

	"shotlist/internal/pipeline"
	"shotlist/internal/rules"
	"shotlist/internal/util"
)

const (
	reportStart = "//---START_QC_REPORT--//"
	reportEnd   = "//---END_QC_REPORT--//"

	cleanedProps       = "CLEANED_PROPS"
	cleanedCostumes    = "CLEANED_COSTUMES"
	cleanedSetDressing = "CLEANED_SET_DRESSING"
)

var reOwnedAsset = regexp.MustCompile(`(?i)^(PROPS|COSTUMES)\s*\((.*?)\):\s*(.*)$`)

// OwnedItems is one "PROPS (Name): a, b" line.
type OwnedItems struct {
	Owner string
	Items []string
}

// Assets are the asset lines of one shot block.
type Assets struct {
	Lines       []string
	Props       []OwnedItems
	Costumes    []OwnedItems
	SetDressing []string
}

func (a Assets) Text() string { return strings.Join(a.Lines, "\n") }

// Cleaned is the sanitized item list per category.
type Cleaned struct {
	Props       []string
	Costumes    []string
	SetDressing []string
}

// SplitBlocks returns the body of every non-blank shot block with markers
// removed.
func SplitBlocks(report string) []string {
	var out []string
	for _, part := range strings.Split(report, pipeline.ShotStart) {
		if strings.TrimSpace(part) == "" {
			continue
		}
		out = append(out, strings.TrimSpace(strings.ReplaceAll(part, pipeline.ShotEnd, "")))
	}
	return out
}

// JoinBlocks wraps every block in start and end markers.
func JoinBlocks(blocks []string) string {
	sep := "\n" + pipeline.ShotEnd + "\n\n" + pipeline.ShotStart + "\n"
	return pipeline.ShotStart + "\n" + strings.Join(blocks, sep) + "\n" + pipeline.ShotEnd
}

func ExtractAssets(block string) Assets {
	var a Assets
	for _, line := range util.SplitLines(block) {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)
		switch {
		case strings.HasPrefix(lower, "props ("), strings.HasPrefix(lower, "costumes ("):
			a.Lines = append(a.Lines, trimmed)
			m := reOwnedAsset.FindStringSubmatch(trimmed)
			if m == nil {
				continue
			}
			owned := OwnedItems{Owner: strings.TrimSpace(m[2]), Items: splitItems(m[3])}
			if strings.EqualFold(m[1], "PROPS") {
				a.Props = append(a.Props, owned)
			} else {
				a.Costumes = append(a.Costumes, owned)
			}
		case strings.HasPrefix(lower, "set_dressing:"):
			a.Lines = append(a.Lines, trimmed)
			_, value, _ := strings.Cut(trimmed, ":")
			a.SetDressing = append(a.SetDressing, splitItems(value)...)
		}
	}
	return a
}

func splitItems(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

// ParseReport reads the CLEANED_* lines, preferring the text between the
// report markers when the model emitted them.
func ParseReport(text string) Cleaned {
	if start := strings.Index(text, reportStart); start >= 0 {
		text = text[start+len(reportStart):]
		if end := strings.Index(text, reportEnd); end >= 0 {
			text = text[:end]
		}
	}
	lists := map[string]string{}
	for _, line := range util.SplitLines(text) {
		key, value, ok := strings.Cut(line, ":")
		if ok {
			lists[strings.TrimSpace(key)] = strings.TrimSpace(value)
		}
	}
	return Cleaned{
		Props:       cleanItems(lists[cleanedProps]),
		Costumes:    cleanItems(lists[cleanedCostumes]),
		SetDressing: cleanItems(lists[cleanedSetDressing]),
	}
}

func cleanItems(value string) []string {
	var out []string
	for _, item := range util.SplitList(value) {
		if strings.ToLower(item) != "none" {
			out = append(out, item)
		}
	}
	return out
}

// Deterministic computes the cleaned lists with the rule set instead of
// the LLM.
func Deterministic(a Assets, r *rules.Rules) Cleaned {
	keep := func(items []string, category string) []string {
		var out []string
		for _, item := range items {
			if item != "" && r.IsValid(item, category) {
				out = append(out, item)
			}
		}
		return out
	}
	var c Cleaned
	for _, o := range a.Props {
		c.Props = append(c.Props, keep(o.Items, "PROPS")...)
	}
	for _, o := range a.Costumes {
		c.Costumes = append(c.Costumes, keep(o.Items, "COSTUMES")...)
	}
	c.SetDressing = keep(a.SetDressing, "SET_DRESSING")
	return c
}

// Rebuild drops the original asset lines and appends the retained items.
// Owner keys naming no one ("PROPS (None)") are discarded. dropped lists
// those junk keys.
func Rebuild(block string, a Assets, c Cleaned) (rebuilt string, dropped []string) {
	replace := map[string]bool{}
	for _, l := range a.Lines {
		replace[l] = true
	}
	var lines []string
	for _, line := range util.SplitLines(block) {
		if !replace[strings.TrimSpace(line)] {
			lines = append(lines, line)
		}
	}

	emit := func(kind string, owned []OwnedItems, clean []string) {
		allowed := map[string]bool{}
		for _, item := range clean {
			allowed[item] = true
		}
		for _, o := range owned {
			if strings.EqualFold(o.Owner, "none") {
				dropped = append(dropped, kind+" ("+o.Owner+")")
				continue
			}
			var retained []string
			for _, item := range o.Items {
				if allowed[item] {
					retained = append(retained, item)
				}
			}
			if len(retained) == 0 {
				continue
			}
			sort.Strings(retained)
			lines = append(lines, kind+" ("+o.Owner+"): "+strings.Join(retained, ", "))
		}
	}
	emit("PROPS", a.Props, c.Props)
	emit("COSTUMES", a.Costumes, c.Costumes)

	if len(c.SetDressing) > 0 {
		items := append([]string(nil), c.SetDressing...)
		sort.Strings(items)
		lines = append(lines, "SET_DRESSING: "+strings.Join(items, ", "))
	}
	return strings.Join(lines, "\n"), dropped
}
