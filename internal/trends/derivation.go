// Package trends runs the derivation pipeline over the registry and the
// latest trend snapshot and serves its results over HTTP.
package trends

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/EmpoweredVote/LSG-Trends/internal/metrics"
	"github.com/EmpoweredVote/LSG-Trends/internal/registry"
	"github.com/EmpoweredVote/LSG-Trends/internal/results"
	"github.com/EmpoweredVote/LSG-Trends/internal/rollup"
	"golang.org/x/sync/errgroup"
)

// IgnoredWards is a local body whose trend data named wards outside its
// registered ward range or repeated a ward number.
type IgnoredWards struct {
	LBCode  string `json:"lb_code"`
	Ignored int    `json:"ignored"`
}

// DeclaredOverflow is a local body that declared more wards than the
// registry holds ward rows for.
type DeclaredOverflow struct {
	LBCode        string `json:"lb_code"`
	WardsDeclared int    `json:"wards_declared"`
	WardRows      int    `json:"ward_rows"`
}

// Derivation is the immutable result of one pass over a snapshot. Readers
// share it without locking.
type Derivation struct {
	SnapshotID string    `json:"snapshotId"`
	DerivedAt  time.Time `json:"derivedAt"`
	Stale      bool      `json:"stale"`

	Summaries []results.LocalBodySummary                             `json:"-"`
	State     map[registry.UnitType]rollup.TierStatistics            `json:"-"`
	Districts map[string]map[registry.UnitType]rollup.TierStatistics `json:"-"`

	Wards          int                          `json:"wards"`
	Orphans        []string                     `json:"orphans,omitempty"`
	Ignored        []IgnoredWards               `json:"ignoredWards,omitempty"`
	WardMismatches []registry.WardCountMismatch `json:"wardCountMismatches,omitempty"`
	Overdeclared   []DeclaredOverflow           `json:"overdeclared,omitempty"`

	byCode map[string]int
}

// Summary returns the summary of one local body.
func (d *Derivation) Summary(lbCode string) (results.LocalBodySummary, bool) {
	i, ok := d.byCode[lbCode]
	if !ok {
		return results.LocalBodySummary{}, false
	}
	return d.Summaries[i], true
}

// staleCopy returns d marked stale. d itself is left untouched.
func (d *Derivation) staleCopy() *Derivation {
	c := *d
	c.Stale = true
	return &c
}

// Derive resolves every ward of snap, summarises each local body the registry
// knows and rolls the summaries up for the state and every district.
// Summaries follow registry order. Trend codes the registry does not know are
// reported as orphans and otherwise ignored.
func Derive(ctx context.Context, reg *registry.Registry, snap *results.Snapshot, snapshotID string, now time.Time) (*Derivation, error) {
	var (
		summaries []results.LocalBodySummary
		ignored   []IgnoredWards
		orphans   []string
	)
	for _, u := range reg.Units() {
		body, ok := snap.Body(u.Code)
		if !ok {
			continue
		}
		wards := body.Resolve()
		s := results.SummarizeLocalBody(u, wards)
		if n := len(wards) - len(s.WardInfo); n > 0 {
			ignored = append(ignored, IgnoredWards{LBCode: u.Code, Ignored: n})
		}
		summaries = append(summaries, s)
	}
	for _, b := range snap.Bodies {
		if _, ok := reg.Unit(b.LBCode); !ok {
			orphans = append(orphans, b.LBCode)
		}
	}

	d, err := assemble(ctx, reg, snapshotID, summaries, now)
	if err != nil {
		return nil, err
	}
	d.Orphans = orphans
	d.Ignored = ignored
	return d, nil
}

// overdeclared compares each summary with the ward rows of its unit. Units
// without ward rows are skipped.
func overdeclared(reg *registry.Registry, summaries []results.LocalBodySummary) []DeclaredOverflow {
	var out []DeclaredOverflow
	for _, s := range summaries {
		rows := len(reg.WardsOf(s.LBCode))
		if rows == 0 || s.WardsDeclared <= rows {
			continue
		}
		out = append(out, DeclaredOverflow{LBCode: s.LBCode, WardsDeclared: s.WardsDeclared, WardRows: rows})
	}
	return out
}

// assemble builds the rollups around a set of summaries. It also restores a
// derivation from cached summaries.
func assemble(ctx context.Context, reg *registry.Registry, snapshotID string, summaries []results.LocalBodySummary, now time.Time) (*Derivation, error) {
	units := reg.UnitsByCode()
	d := &Derivation{
		SnapshotID:     snapshotID,
		DerivedAt:      now,
		Summaries:      summaries,
		State:          rollup.RollupTier(rollup.State(), units, summaries),
		WardMismatches: reg.ValidateWardCounts(),
		Overdeclared:   overdeclared(reg, summaries),
		byCode:         make(map[string]int, len(summaries)),
	}
	for i, s := range summaries {
		if _, dup := d.byCode[s.LBCode]; !dup {
			d.byCode[s.LBCode] = i
		}
		d.Wards += len(s.WardInfo)
	}

	districts := reg.Districts()
	var mu sync.Mutex
	d.Districts = make(map[string]map[registry.UnitType]rollup.TierStatistics, len(districts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, name := range districts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			stats := rollup.RollupTier(rollup.District(name), units, summaries)
			mu.Lock()
			d.Districts[name] = stats
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}

// DistrictNames lists the districts with rollups, sorted.
func (d *Derivation) DistrictNames() []string {
	out := make([]string, 0, len(d.Districts))
	for name := range d.Districts {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// InDistrict filters the summaries to the local bodies of one district.
func (d *Derivation) InDistrict(reg *registry.Registry, district string) []results.LocalBodySummary {
	var out []results.LocalBodySummary
	for _, s := range d.Summaries {
		if u, ok := reg.Unit(s.LBCode); ok && u.DistrictName == district {
			out = append(out, s)
		}
	}
	return out
}

// observe publishes the derivation's ward and body distribution.
func (d *Derivation) observe() {
	wards := map[results.WardStatus]float64{
		results.StatusWon:         0,
		results.StatusLeading:     0,
		results.StatusUncontested: 0,
		results.StatusHung:        0,
		results.StatusNoResult:    0,
	}
	for _, s := range d.Summaries {
		for _, w := range s.WardInfo {
			wards[w.Status()]++
		}
	}
	for status, n := range wards {
		metrics.WardsByStatus.WithLabelValues(string(status)).Set(n)
	}

	total := rollup.Total(d.State)
	for label, n := range total.BodiesLed {
		metrics.BodiesByFront.WithLabelValues(label).Set(float64(n))
	}
}
