package results

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var ErrMissingColumn = errors.New("missing required trend column")

// Trend CSV header, in file order. Front is optional on input.
var TrendHeader = []string{
	"District", "LB_Type", "LB_Code", "LB_Name", "Ward_No", "Ward_Name",
	"Candidate_Code", "Candidate_Name", "Party", "Votes", "Status", "Front",
}

var requiredTrendColumns = []string{"LB_Code", "Ward_No", "Candidate_Name", "Party", "Votes"}

// Row is one candidate line of the detailed trend CSV.
type Row struct {
	District      string
	LBType        string
	LBCode        string
	LBName        string
	WardNo        int
	WardName      string
	CandidateCode string
	CandidateName string
	Party         string
	Votes         int
	Status        string
	Front         string
}

func (r Row) record() []string {
	return []string{
		r.District, r.LBType, r.LBCode, r.LBName, strconv.Itoa(r.WardNo), r.WardName,
		r.CandidateCode, r.CandidateName, r.Party, strconv.Itoa(r.Votes), r.Status, r.Front,
	}
}

// ParseTrendCSV reads the detailed trend CSV. Malformed vote and ward
// numbers read as zero; rows without a local-body code are skipped.
func ParseTrendCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read trend header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	col := map[string]int{}
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	for _, k := range requiredTrendColumns {
		if _, ok := col[k]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, k)
		}
	}
	get := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read trend row: %w", err)
		}
		code := get(rec, "LB_Code")
		if code == "" {
			continue
		}
		rows = append(rows, Row{
			District:      get(rec, "District"),
			LBType:        get(rec, "LB_Type"),
			LBCode:        code,
			LBName:        get(rec, "LB_Name"),
			WardNo:        parseCount(get(rec, "Ward_No")),
			WardName:      get(rec, "Ward_Name"),
			CandidateCode: get(rec, "Candidate_Code"),
			CandidateName: get(rec, "Candidate_Name"),
			Party:         get(rec, "Party"),
			Votes:         parseCount(get(rec, "Votes")),
			Status:        get(rec, "Status"),
			Front:         get(rec, "Front"),
		})
	}
	return rows, nil
}

// WriteTrendCSV writes rows with the full header.
func WriteTrendCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TrendHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func parseCount(s string) int {
	n, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// LocalBodyTrend is the candidate data of one local body, grouped by ward in
// first-seen order.
type LocalBodyTrend struct {
	LBCode   string
	LBName   string
	District string
	LBType   string
	Wards    []WardInput
}

// Resolve runs ResolveWard over every ward.
func (b LocalBodyTrend) Resolve() []WardResult {
	out := make([]WardResult, 0, len(b.Wards))
	for _, w := range b.Wards {
		out = append(out, ResolveWard(w))
	}
	return out
}

// Snapshot is one trend snapshot grouped by local body.
type Snapshot struct {
	Bodies []LocalBodyTrend
	index  map[string]int
}

func (s *Snapshot) Body(lbCode string) (LocalBodyTrend, bool) {
	i, ok := s.index[lbCode]
	if !ok {
		return LocalBodyTrend{}, false
	}
	return s.Bodies[i], true
}

// CandidateCount is the number of candidate rows across all wards.
func (s *Snapshot) CandidateCount() int {
	n := 0
	for _, b := range s.Bodies {
		for _, w := range b.Wards {
			n += len(w.Candidates)
		}
	}
	return n
}

// BuildSnapshot groups rows by local body and ward, classifying each party
// with c unless the row names its front. A row's Won/Leading status becomes
// the ward's declared marker.
func BuildSnapshot(rows []Row, c *Classifier) *Snapshot {
	if c == nil {
		c = DefaultClassifier()
	}
	s := &Snapshot{index: map[string]int{}}
	wardIdx := map[string]map[int]int{}

	for _, r := range rows {
		bi, ok := s.index[r.LBCode]
		if !ok {
			bi = len(s.Bodies)
			s.index[r.LBCode] = bi
			s.Bodies = append(s.Bodies, LocalBodyTrend{
				LBCode:   r.LBCode,
				LBName:   r.LBName,
				District: r.District,
				LBType:   r.LBType,
			})
			wardIdx[r.LBCode] = map[int]int{}
		}
		body := &s.Bodies[bi]

		wi, ok := wardIdx[r.LBCode][r.WardNo]
		if !ok {
			wi = len(body.Wards)
			wardIdx[r.LBCode][r.WardNo] = wi
			body.Wards = append(body.Wards, WardInput{Number: r.WardNo, Name: r.WardName})
		}

		party := r.Party
		if party == "" {
			party = "Ind/Other"
		}
		front := c.Classify(party)
		if r.Front != "" {
			front = ParseFront(r.Front)
		}
		body.Wards[wi].Candidates = append(body.Wards[wi].Candidates, Candidate{
			Code:      r.CandidateCode,
			Name:      r.CandidateName,
			Party:     party,
			Front:     front,
			VoteCount: r.Votes,
			Status:    strings.ToLower(r.Status),
		})
	}

	for bi := range s.Bodies {
		for wi := range s.Bodies[bi].Wards {
			w := &s.Bodies[bi].Wards[wi]
			w.Winner, w.Leading = DeclaredMarkers(w.Candidates)
		}
	}
	return s
}
