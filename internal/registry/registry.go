package registry

import (
	"slices"
	"sort"
)

// Registry is an immutable, indexed view of one registry snapshot. It is safe
// for concurrent readers.
type Registry struct {
	units        map[string]AdministrativeUnit
	order        []string
	wards        []WardMeta
	wardsByLB    map[string][]WardMeta
	stations     []PollingStation
	stationsByLB map[string]int
}

// New indexes the snapshot. Duplicate unit codes keep the first record.
func New(units []AdministrativeUnit, wards []WardMeta, stations []PollingStation) *Registry {
	r := &Registry{
		units:        make(map[string]AdministrativeUnit, len(units)),
		wardsByLB:    make(map[string][]WardMeta),
		stationsByLB: make(map[string]int),
		wards:        slices.Clone(wards),
		stations:     slices.Clone(stations),
	}
	for _, u := range units {
		if u.Code == "" {
			continue
		}
		if _, dup := r.units[u.Code]; dup {
			continue
		}
		r.units[u.Code] = u
		r.order = append(r.order, u.Code)
	}
	for _, w := range wards {
		r.wardsByLB[w.LBCode] = append(r.wardsByLB[w.LBCode], w)
	}
	for _, ps := range stations {
		r.stationsByLB[ps.LBCode]++
	}
	return r
}

func (r *Registry) Unit(code string) (AdministrativeUnit, bool) {
	u, ok := r.units[code]
	return u, ok
}

// Units returns every unit in snapshot order.
func (r *Registry) Units() []AdministrativeUnit {
	out := make([]AdministrativeUnit, 0, len(r.order))
	for _, code := range r.order {
		out = append(out, r.units[code])
	}
	return out
}

// UnitsByCode returns a copy of the code index.
func (r *Registry) UnitsByCode() map[string]AdministrativeUnit {
	out := make(map[string]AdministrativeUnit, len(r.units))
	for k, v := range r.units {
		out[k] = v
	}
	return out
}

func (r *Registry) InDistrict(district string) []AdministrativeUnit {
	var out []AdministrativeUnit
	for _, code := range r.order {
		if u := r.units[code]; u.DistrictName == district {
			out = append(out, u)
		}
	}
	return out
}

// Districts returns the sorted distinct district names.
func (r *Registry) Districts() []string {
	seen := map[string]bool{}
	var out []string
	for _, u := range r.units {
		if u.DistrictName == "" || seen[u.DistrictName] {
			continue
		}
		seen[u.DistrictName] = true
		out = append(out, u.DistrictName)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) WardsOf(lbCode string) []WardMeta {
	return r.wardsByLB[lbCode]
}

func (r *Registry) Wards() []WardMeta {
	return r.wards
}

func (r *Registry) PollingStations() []PollingStation {
	return r.stations
}

func (r *Registry) TotalVoters(lbCode string) int {
	total := 0
	for _, w := range r.wardsByLB[lbCode] {
		total += w.TotalVoters
	}
	return total
}

// PollingStationCount counts the stations serving unit. A district panchayat
// has no stations of its own: it is credited with the stations of the grama
// panchayats in the same district, and only those.
func (r *Registry) PollingStationCount(unit AdministrativeUnit) int {
	if unit.Type != TypeDistrictPanchayat {
		return r.stationsByLB[unit.Code]
	}
	total := 0
	for _, code := range r.order {
		u := r.units[code]
		if u.DistrictName == unit.DistrictName && u.Type == TypeGramaPanchayat {
			total += r.stationsByLB[u.Code]
		}
	}
	return total
}

// WardCountMismatch is a unit whose declared ward count disagrees with the
// number of ward metadata rows.
type WardCountMismatch struct {
	LBCode    string `json:"lb_code"`
	WardCount int    `json:"ward_count"`
	WardRows  int    `json:"ward_rows"`
}

// ValidateWardCounts reports units with ward metadata whose row count differs
// from the registry's ward count. Units without any ward rows are skipped.
func (r *Registry) ValidateWardCounts() []WardCountMismatch {
	var out []WardCountMismatch
	for _, code := range r.order {
		u := r.units[code]
		rows := len(r.wardsByLB[code])
		if rows == 0 || rows == u.WardCount {
			continue
		}
		out = append(out, WardCountMismatch{LBCode: code, WardCount: u.WardCount, WardRows: rows})
	}
	return out
}
