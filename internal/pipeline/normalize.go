package pipeline

import (
	"shotlist/internal"
	"shotlist/internal/rules"
)

// MergeBlock applies key aliases and folds duplicate keys into one
// newline-joined value, keeping first-appearance order.
func MergeBlock(block internal.ShotBlock, r *rules.Rules) *internal.NormalizedShot {
	shot := internal.NewNormalizedShot()
	for _, f := range block.Fields {
		shot.Append(r.KeyAlias(f.Key), f.Value, "\n")
	}
	return shot
}

func MergeBlocks(blocks []internal.ShotBlock, r *rules.Rules) []*internal.NormalizedShot {
	out := make([]*internal.NormalizedShot, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, MergeBlock(b, r))
	}
	return out
}
