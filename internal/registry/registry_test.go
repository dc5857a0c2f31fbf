package registry_test

import (
	"testing"

	"github.com/EmpoweredVote/LSG-Trends/internal/registry"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture() *registry.Registry {
	units := []registry.AdministrativeUnit{
		{Code: "G02001", Name: "Alappad", Type: registry.TypeGramaPanchayat, DistrictName: "Kollam", WardCount: 2},
		{Code: "G02002", Name: "Chavara", Type: registry.TypeGramaPanchayat, DistrictName: "Kollam", WardCount: 3},
		{Code: "M02001", Name: "Paravur", Type: registry.TypeMunicipality, DistrictName: "Kollam", WardCount: 1},
		{Code: "B02001", Name: "Oachira", Type: registry.TypeBlockPanchayat, DistrictName: "Kollam", WardCount: 14},
		{Code: "D02001", Name: "Kollam", Type: registry.TypeDistrictPanchayat, DistrictName: "Kollam", WardCount: 26},
		{Code: "G01001", Name: "Kallara", Type: registry.TypeGramaPanchayat, DistrictName: "Thiruvananthapuram", WardCount: 1},
		{Code: "G02001", Name: "Duplicate", Type: registry.TypeCorporation, DistrictName: "Kollam"},
	}
	wards := []registry.WardMeta{
		{Code: "G02001001", Number: 1, LBCode: "G02001", TotalVoters: 1000},
		{Code: "G02001002", Number: 2, LBCode: "G02001", TotalVoters: 1200},
		{Code: "G02002001", Number: 1, LBCode: "G02002", TotalVoters: 900},
		{Code: "M02001001", Number: 1, LBCode: "M02001", TotalVoters: 3000},
		{Code: "B02001001", Number: 1, LBCode: "B02001", TotalVoters: 99999},
		{Code: "G01001001", Number: 1, LBCode: "G01001", TotalVoters: 500},
	}
	stations := []registry.PollingStation{
		{Number: 1, LBCode: "G02001"},
		{Number: 2, LBCode: "G02001"},
		{Number: 1, LBCode: "G02002"},
		{Number: 1, LBCode: "M02001"},
		{Number: 1, LBCode: "G01001"},
	}
	return registry.New(units, wards, stations)
}

func TestRegistry_FirstDuplicateWins(t *testing.T) {
	reg := fixture()

	u, ok := reg.Unit("G02001")
	require.True(t, ok)
	assert.Equal(t, "Alappad", u.Name)
	assert.Len(t, reg.Units(), 6)
}

func TestRegistry_Districts(t *testing.T) {
	assert.Equal(t, []string{"Kollam", "Thiruvananthapuram"}, fixture().Districts())
}

// TestPollingStationCount_DistrictPanchayat verifies that a district
// panchayat is credited with the grama panchayat stations of its own district
// only.
func TestPollingStationCount_DistrictPanchayat(t *testing.T) {
	reg := fixture()

	dp, _ := reg.Unit("D02001")
	assert.Equal(t, 3, reg.PollingStationCount(dp))

	muni, _ := reg.Unit("M02001")
	assert.Equal(t, 1, reg.PollingStationCount(muni))
}

func TestTotalVoters(t *testing.T) {
	assert.Equal(t, 2200, fixture().TotalVoters("G02001"))
	assert.Zero(t, fixture().TotalVoters("nope"))
}

func TestValidateWardCounts(t *testing.T) {
	got := fixture().ValidateWardCounts()
	want := []registry.WardCountMismatch{
		{LBCode: "G02002", WardCount: 3, WardRows: 1},
		{LBCode: "B02001", WardCount: 14, WardRows: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatches (-want +got):\n%s", diff)
	}
}

// TestDistrictTable verifies that voters and stations only cover base tiers.
func TestDistrictTable(t *testing.T) {
	rows := fixture().DistrictTable("")
	want := []registry.DistrictRow{
		{District: "Kollam", BodyCount: 5, Voters: 6100, PollingStations: 4},
		{District: "Thiruvananthapuram", BodyCount: 1, Voters: 500, PollingStations: 1},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("district table (-want +got):\n%s", diff)
	}
}

func TestDistrictTable_Filtered(t *testing.T) {
	rows := fixture().DistrictTable(registry.TypeMunicipality)
	require.Len(t, rows, 1)
	assert.Equal(t, "Kollam", rows[0].District)
	assert.Equal(t, 1, rows[0].BodyCount)
}

func TestKPIs(t *testing.T) {
	k := fixture().KPIs()

	assert.Equal(t, 3, k.GramaPanchayats)
	assert.Equal(t, 1, k.Municipalities)
	assert.Equal(t, 1, k.BlockPanchayats)
	assert.Equal(t, 1, k.DistrictPanchayats)
	assert.Zero(t, k.Corporations)
	assert.Equal(t, 6600, k.Voters)
	assert.Equal(t, 5, k.PollingStations)
	assert.Equal(t, 47, k.TotalWards)
}

func TestParseUnitType(t *testing.T) {
	typ, ok := registry.ParseUnitType("Grama  Panchayat")
	assert.True(t, ok)
	assert.Equal(t, registry.TypeGramaPanchayat, typ)

	typ, ok = registry.ParseUnitType("Municipal Corporation")
	assert.True(t, ok)
	assert.Equal(t, registry.TypeCorporation, typ)

	_, ok = registry.ParseUnitType("Township")
	assert.False(t, ok)
}
