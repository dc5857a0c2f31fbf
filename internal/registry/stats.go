package registry

// DistrictRow is one line of the district overview table.
type DistrictRow struct {
	District        string `json:"district"`
	BodyCount       int    `json:"kpiCount"`
	Voters          int    `json:"voters"`
	PollingStations int    `json:"stations"`
}

// DistrictTable builds the per-district overview. With a type filter only
// units of that type are counted and districts without any are omitted.
// Voters and stations always cover the base tiers, so panchayat overlays are
// not double counted.
func (r *Registry) DistrictTable(filter UnitType) []DistrictRow {
	var rows []DistrictRow
	for _, district := range r.Districts() {
		row := DistrictRow{District: district}
		for _, u := range r.InDistrict(district) {
			if filter == "" || u.Type == filter {
				row.BodyCount++
			}
			if u.Type.IsBaseTier() {
				row.Voters += r.TotalVoters(u.Code)
				row.PollingStations += r.stationsByLB[u.Code]
			}
		}
		if filter != "" && row.BodyCount == 0 {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

// KPIs are the state-wide headline counts.
type KPIs struct {
	Corporations       int `json:"corporations"`
	Municipalities     int `json:"municipalities"`
	GramaPanchayats    int `json:"gramaPanchayats"`
	BlockPanchayats    int `json:"blockPanchayats"`
	DistrictPanchayats int `json:"districtPanchayats"`
	Voters             int `json:"voters"`
	PollingStations    int `json:"pollingStations"`
	TotalWards         int `json:"totalWards"`
}

func (r *Registry) KPIs() KPIs {
	var k KPIs
	for _, u := range r.units {
		switch u.Type {
		case TypeCorporation:
			k.Corporations++
		case TypeMunicipality:
			k.Municipalities++
		case TypeGramaPanchayat:
			k.GramaPanchayats++
		case TypeBlockPanchayat:
			k.BlockPanchayats++
		case TypeDistrictPanchayat:
			k.DistrictPanchayats++
		}
		k.TotalWards += u.WardCount
		if u.Type.IsBaseTier() {
			k.Voters += r.TotalVoters(u.Code)
			k.PollingStations += r.stationsByLB[u.Code]
		}
	}
	return k
}
