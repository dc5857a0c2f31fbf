// Package rollup aggregates local-body summaries into per-tier statistics.
package rollup

import (
	"github.com/EmpoweredVote/LSG-Trends/internal/registry"
	"github.com/EmpoweredVote/LSG-Trends/internal/results"
)

// Others collects every front label outside the fixed set.
const Others = "Others"

// LeadLabels are the keys of TierStatistics.BodiesLed.
var LeadLabels = []string{"LDF", "UDF", "NDA", "IND", results.LabelHung, Others}

// SeatLabels are the keys of TierStatistics.WardsWon.
var SeatLabels = []string{"LDF", "UDF", "NDA", "IND", Others}

// Scope limits a rollup to the whole state or to one district.
type Scope struct {
	District string
}

func State() Scope { return Scope{} }

func District(name string) Scope { return Scope{District: name} }

func (s Scope) IsState() bool { return s.District == "" }

func (s Scope) Includes(u registry.AdministrativeUnit) bool {
	return s.IsState() || u.DistrictName == s.District
}

func (s Scope) String() string {
	if s.IsState() {
		return "state"
	}
	return "district:" + s.District
}

// TierStatistics is the front performance of one unit type within a scope.
type TierStatistics struct {
	TotalBodies int            `json:"totalBodies"`
	TotalWards  int            `json:"totalWards"`
	BodiesLed   map[string]int `json:"bodiesLed"`
	WardsWon    map[string]int `json:"wardsWon"`
}

func newTierStatistics() TierStatistics {
	ts := TierStatistics{
		BodiesLed: make(map[string]int, len(LeadLabels)),
		WardsWon:  make(map[string]int, len(SeatLabels)),
	}
	for _, l := range LeadLabels {
		ts.BodiesLed[l] = 0
	}
	for _, l := range SeatLabels {
		ts.WardsWon[l] = 0
	}
	return ts
}

// Seats is the total of WardsWon.
func (ts TierStatistics) Seats() int {
	n := 0
	for _, v := range ts.WardsWon {
		n += v
	}
	return n
}

// RollupTier groups the summaries of units in scope by unit type. Every type
// is present in the result, zeroed when nothing in scope has that type.
// Summaries for codes missing from unitsByCode are skipped, as are repeated
// codes after the first. Unknown leading-front labels count as Others.
func RollupTier(scope Scope, unitsByCode map[string]registry.AdministrativeUnit, summaries []results.LocalBodySummary) map[registry.UnitType]TierStatistics {
	out := make(map[registry.UnitType]TierStatistics, len(registry.AllTypes))
	for _, t := range registry.AllTypes {
		out[t] = newTierStatistics()
	}

	seen := make(map[string]bool, len(summaries))
	for _, s := range summaries {
		u, ok := unitsByCode[s.LBCode]
		if !ok || seen[s.LBCode] || !scope.Includes(u) {
			continue
		}
		ts, ok := out[u.Type]
		if !ok {
			continue
		}
		seen[s.LBCode] = true

		ts.TotalBodies++
		ts.TotalWards += s.WardsDeclared
		ts.BodiesLed[leadKey(s.LeadingFront)]++
		ts.WardsWon["LDF"] += s.LDFSeats
		ts.WardsWon["UDF"] += s.UDFSeats
		ts.WardsWon["NDA"] += s.NDASeats
		ts.WardsWon["IND"] += s.INDSeats
		out[u.Type] = ts
	}
	return out
}

func leadKey(label string) string {
	switch label {
	case "LDF", "UDF", "NDA", "IND", results.LabelHung:
		return label
	}
	return Others
}

// Total sums statistics across types.
func Total(stats map[registry.UnitType]TierStatistics) TierStatistics {
	total := newTierStatistics()
	for _, ts := range stats {
		total.TotalBodies += ts.TotalBodies
		total.TotalWards += ts.TotalWards
		for k, v := range ts.BodiesLed {
			total.BodiesLed[k] += v
		}
		for k, v := range ts.WardsWon {
			total.WardsWon[k] += v
		}
	}
	return total
}
