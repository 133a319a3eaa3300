package layout

import "github.com/vanderheijden86/treebrowse/pkg/model"

// AutoCollapseOptions are the tuned knobs of the large-tree safeguard.
type AutoCollapseOptions struct {
	// TipThreshold is the total tip count above which auto-collapse kicks in.
	TipThreshold int
	// MinGroupTips floors the per-tree collapse-group size.
	MinGroupTips int
	// TargetGroups is the approximate number of visible collapsed units.
	TargetGroups int
}

// DefaultAutoCollapseOptions matches the stock tuning.
func DefaultAutoCollapseOptions() AutoCollapseOptions {
	return AutoCollapseOptions{
		TipThreshold: 300,
		MinGroupTips: 20,
		TargetGroups: 50,
	}
}

// AutoCollapse seeds a collapse set for large trees. It greedily walks the
// tree top-down: an internal node whose full tip count is small enough
// (but > 1) is collapsed without recursing further, so the backbone of
// larger splits stays expanded while roughly TargetGroups collapsed units
// become visible. Trees at or below TipThreshold return an empty set.
//
// The result only seeds the collapse set; manual expand and re-collapse
// remain possible afterwards.
func AutoCollapse(snap *model.Snapshot, opts AutoCollapseOptions) map[int]bool {
	collapsed := make(map[int]bool)
	if snap.IsEmpty() || snap.TipCount <= opts.TipThreshold {
		return collapsed
	}

	groupSize := snap.TipCount / opts.TargetGroups
	if groupSize < opts.MinGroupTips {
		groupSize = opts.MinGroupTips
	}

	var walk func(n *model.TreeNode)
	walk = func(n *model.TreeNode) {
		if n.IsTip() {
			return
		}
		if tips := model.CountAllTips(n); tips <= groupSize && tips > 1 {
			collapsed[n.ID] = true
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(snap.Root)
	return collapsed
}
