package registry

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	ErrMissingColumn = errors.New("missing required column")
	ErrNoRows        = errors.New("csv has no data rows")
)

// File names under <data dir>/csv.
const (
	LocalBodiesFile     = "local_bodies.csv"
	WardsFile           = "wards.csv"
	PollingStationsFile = "polling_stations.csv"
)

// table is a header-indexed CSV body.
type table struct {
	col     map[string]int
	records [][]string
}

func (t table) get(rec []string, name string) string {
	i, ok := t.col[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func readTable(r io.Reader, required ...string) (table, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return table{}, err
	}
	if len(records) < 2 {
		return table{}, ErrNoRows
	}

	header := records[0]
	// Handle BOM on first header cell
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	col := map[string]int{}
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	for _, k := range required {
		if _, ok := col[k]; !ok {
			return table{}, fmt.Errorf("%w: %s", ErrMissingColumn, k)
		}
	}
	return table{col: col, records: records[1:]}, nil
}

// atoi parses an integer cell, treating blanks and garbage as zero.
func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ParseLocalBodies reads local_bodies.csv. Rows without a code are skipped;
// a missing or unknown type is inferred from the code prefix.
func ParseLocalBodies(r io.Reader) ([]AdministrativeUnit, error) {
	t, err := readTable(r, "Local Body Code", "Local Body Name", "Local Body Type", "District")
	if err != nil {
		return nil, err
	}

	var out []AdministrativeUnit
	for _, rec := range t.records {
		code := t.get(rec, "Local Body Code")
		if code == "" {
			continue
		}
		typ, ok := ParseUnitType(t.get(rec, "Local Body Type"))
		if !ok {
			typ, _ = TypeFromCode(code)
		}
		out = append(out, AdministrativeUnit{
			Code:         code,
			Name:         t.get(rec, "Local Body Name"),
			Type:         typ,
			DistrictName: t.get(rec, "District"),
			WardCount:    atoi(t.get(rec, "Ward Count")),
		})
	}
	return out, nil
}

// ParseWards reads wards.csv. The ward number is the last three digits of the
// ward code.
func ParseWards(r io.Reader) ([]WardMeta, error) {
	t, err := readTable(r, "Ward Code", "Local Body Code")
	if err != nil {
		return nil, err
	}

	var out []WardMeta
	for _, rec := range t.records {
		code := t.get(rec, "Ward Code")
		if code == "" {
			continue
		}
		out = append(out, WardMeta{
			Code:        code,
			Name:        t.get(rec, "Ward Name"),
			Number:      WardNumberFromCode(code),
			LBCode:      t.get(rec, "Local Body Code"),
			TotalVoters: atoi(t.get(rec, "Total")),
		})
	}
	return out, nil
}

// WardNumberFromCode extracts the trailing three-digit ward number.
func WardNumberFromCode(code string) int {
	if len(code) > 3 {
		code = code[len(code)-3:]
	}
	return atoi(code)
}

// ParsePollingStations reads polling_stations.csv, keeping only rows that
// carry a local body code.
func ParsePollingStations(r io.Reader) ([]PollingStation, error) {
	t, err := readTable(r, "Local Body Code")
	if err != nil {
		return nil, err
	}

	var out []PollingStation
	for _, rec := range t.records {
		lb := t.get(rec, "Local Body Code")
		if lb == "" {
			continue
		}
		out = append(out, PollingStation{
			Number:   atoi(t.get(rec, "PS No")),
			Name:     t.get(rec, "PS Name"),
			WardCode: t.get(rec, "Ward Code"),
			LBCode:   lb,
		})
	}
	return out, nil
}

// LoadDir reads the three registry CSVs from dir. Local bodies are required;
// a missing wards or polling stations file yields an empty list.
func LoadDir(dir string) (*Registry, error) {
	units, err := parseFile(filepath.Join(dir, LocalBodiesFile), ParseLocalBodies)
	if err != nil {
		return nil, err
	}
	wards, err := parseFile(filepath.Join(dir, WardsFile), ParseWards)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	stations, err := parseFile(filepath.Join(dir, PollingStationsFile), ParsePollingStations)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	return New(units, wards, stations), nil
}

func parseFile[T any](path string, parse func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return out, nil
}
