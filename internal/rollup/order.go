package rollup

import (
	"github.com/EmpoweredVote/LSG-Trends/internal/registry"
	"github.com/EmpoweredVote/LSG-Trends/internal/view"
)

// Tier is one row of an ordered rollup.
type Tier struct {
	Type  registry.UnitType `json:"type"`
	Label string            `json:"label"`
	TierStatistics
}

// Ordered arranges stats for display on tab: the tab's panchayat tier first,
// then corporations and municipalities.
func Ordered(stats map[registry.UnitType]TierStatistics, tab view.Tab) []Tier {
	types := view.OrderedTypes(tab)
	out := make([]Tier, 0, len(types))
	for _, t := range types {
		ts, ok := stats[t]
		if !ok {
			ts = newTierStatistics()
		}
		out = append(out, Tier{Type: t, Label: t.Plural(), TierStatistics: ts})
	}
	return out
}
