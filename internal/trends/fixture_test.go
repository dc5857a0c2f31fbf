package trends_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/EmpoweredVote/LSG-Trends/internal/geo"
	"github.com/EmpoweredVote/LSG-Trends/internal/registry"
	"github.com/EmpoweredVote/LSG-Trends/internal/results"
	"github.com/EmpoweredVote/LSG-Trends/internal/trends"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 12, 13, 10, 30, 0, 0, time.UTC)

func testRegistry() *registry.Registry {
	units := []registry.AdministrativeUnit{
		{Code: "G02001", Name: "Alappad", Type: registry.TypeGramaPanchayat, DistrictName: "Kollam", WardCount: 3},
		{Code: "M02001", Name: "Paravur", Type: registry.TypeMunicipality, DistrictName: "Kollam", WardCount: 2},
		{Code: "D02001", Name: "Kollam", Type: registry.TypeDistrictPanchayat, DistrictName: "Kollam", WardCount: 26},
		{Code: "G01001", Name: "Kallara", Type: registry.TypeGramaPanchayat, DistrictName: "Thiruvananthapuram", WardCount: 1},
	}
	wards := []registry.WardMeta{
		{Code: "G02001001", Number: 1, LBCode: "G02001", TotalVoters: 1000},
		{Code: "G02001002", Number: 2, LBCode: "G02001", TotalVoters: 1000},
		{Code: "G02001003", Number: 3, LBCode: "G02001", TotalVoters: 1000},
		{Code: "M02001001", Number: 1, LBCode: "M02001", TotalVoters: 2000},
		{Code: "M02001002", Number: 2, LBCode: "M02001", TotalVoters: 2000},
		{Code: "G01001001", Number: 1, LBCode: "G01001", TotalVoters: 500},
	}
	stations := []registry.PollingStation{
		{Number: 1, LBCode: "G02001"},
		{Number: 2, LBCode: "G02001"},
		{Number: 1, LBCode: "M02001"},
		{Number: 1, LBCode: "G01001"},
	}
	return registry.New(units, wards, stations)
}

func row(lb string, ward int, name, party string, votes int, status string) results.Row {
	return results.Row{LBCode: lb, WardNo: ward, CandidateName: name, Party: party, Votes: votes, Status: status}
}

// testRows gives Alappad an LDF majority with one tied ward and one ward out
// of range, Paravur a Hung council, Kallara an NDA lead with no seats and one
// code the registry does not know.
func testRows() []results.Row {
	return []results.Row{
		row("G02001", 1, "Asha", "CPI(M)", 500, "Won"),
		row("G02001", 1, "Biju", "INC", 300, "Lost"),
		row("G02001", 2, "Chitra", "CPI", 400, ""),
		row("G02001", 2, "Das", "BJP", 200, ""),
		row("G02001", 3, "Elsy", "INC", 300, ""),
		row("G02001", 3, "Faisal", "BJP", 300, ""),
		row("G02001", 9, "Xavier", "IND", 10, ""),
		row("M02001", 1, "Gopi", "INC", 700, "Won"),
		row("M02001", 1, "Hari", "CPI(M)", 600, "Lost"),
		row("M02001", 2, "Indu", "BJP", 800, "Won"),
		row("M02001", 2, "Jose", "INC", 100, "Lost"),
		row("G01001", 1, "Kiran", "BJP", 50, "Leading"),
		row("Z99001", 1, "Orphan", "INC", 10, ""),
	}
}

// fakeSource serves whatever rows or error it was last given.
type fakeSource struct {
	mu    sync.Mutex
	rows  []results.Row
	err   error
	calls int
}

func (s *fakeSource) Name() string { return "fake" }

func (s *fakeSource) Rows(ctx context.Context) ([]results.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

func (s *fakeSource) set(rows []results.Row, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows, s.err = rows, err
}

func (s *fakeSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// memCache is an in-memory SummaryCache.
type memCache struct {
	mu        sync.Mutex
	id        string
	summaries []results.LocalBodySummary
	saves     int
}

func (c *memCache) SaveLatest(ctx context.Context, id string, summaries []results.LocalBodySummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.id, c.summaries = id, summaries
	c.saves++
	return nil
}

func (c *memCache) LoadLatest(ctx context.Context) (string, []results.LocalBodySummary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.id == "" {
		return "", nil, trends.ErrCacheMiss
	}
	return c.id, c.summaries, nil
}

var errFeedDown = errors.New("feed down")

const kollamGrama = `{"type":"FeatureCollection","features":[
{"type":"Feature","properties":{"LSG_code":"G02001","LSGI_NAME":"Alappad","District":"KOLLAM","Lsgd_Type":"Grama Panchayat"},
 "geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}},
{"type":"Feature","properties":{"LSG_code":"M02001","LSGI_NAME":"Paravur","District":"KOLLAM","Lsgd_Type":"Municipality"},
 "geometry":{"type":"Polygon","coordinates":[[[1,0],[2,0],[2,1],[1,1],[1,0]]]}},
{"type":"Feature","properties":{"LSG_code":"G02999","LSGI_NAME":"Unknown","District":"KOLLAM","Lsgd_Type":"Grama Panchayat"},
 "geometry":{"type":"Polygon","coordinates":[[[2,0],[3,0],[3,1],[2,1],[2,0]]]}}
]}`

const paravurSVG = `<svg xmlns="http://www.w3.org/2000/svg"><path id="ward-1" d="M0 0h1v1z"/></svg>`

// geoRoot lays out the boundary files the tests read.
func geoRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	maps := filepath.Join(root, "topojson", "Kerala", "district_maps")
	require.NoError(t, os.MkdirAll(maps, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(maps, "Kollam_grama.json"), []byte(kollamGrama), 0o644))

	wards := filepath.Join(root, "geojson", "Kerala", "district_wards", "Kollam")
	require.NoError(t, os.MkdirAll(wards, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(wards, "M02001.svg"), []byte(paravurSVG), 0o644))
	return root
}

func newService(t *testing.T, src trends.TrendSource, caches ...trends.SummaryCache) *trends.Service {
	t.Helper()
	return trends.NewService(trends.Options{
		Registry: testRegistry(),
		Source:   src,
		Geo:      geo.FileSource{Root: geoRoot(t), State: "Kerala"},
		Caches:   caches,
		Now:      func() time.Time { return fixedNow },
	})
}
