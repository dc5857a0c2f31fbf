package results

import (
	"cmp"
	"slices"
	"strings"
)

// Candidate is one contestant in a ward.
type Candidate struct {
	Code      string `json:"code,omitempty"`
	Name      string `json:"name"`
	Party     string `json:"party"`
	Front     Front  `json:"group"`
	VoteCount int    `json:"votes"`
	Status    string `json:"status,omitempty"`
}

// WardInput is the raw tally for one ward as delivered by the feed, with
// optional externally declared winner and leading markers.
type WardInput struct {
	Number     int
	Name       string
	Candidates []Candidate
	Winner     *Candidate
	Leading    *Candidate
}

// WardResult is the resolved electoral state of a ward. At most one of
// Winner and Leading is set.
type WardResult struct {
	Number        int         `json:"wardNo"`
	Name          string      `json:"wardName"`
	Winner        *Candidate  `json:"winner,omitempty"`
	Leading       *Candidate  `json:"leading,omitempty"`
	Candidates    []Candidate `json:"candidates"`
	IsHung        bool        `json:"isHung"`
	IsUncontested bool        `json:"isUncontested"`
}

type WardStatus string

const (
	StatusWon         WardStatus = "won"
	StatusLeading     WardStatus = "leading"
	StatusUncontested WardStatus = "uncontested"
	StatusHung        WardStatus = "hung"
	StatusNoResult    WardStatus = "no_result"
)

// ResolveWard ranks the ward's candidates and decides whether the ward is
// won, led, tied or without a result.
//
// An explicit winner always wins. A tie between the top two positive tallies
// is terminal, even over an explicit leading marker. Otherwise the explicit
// leading marker is used, and failing that the top-ranked candidate leads when
// it has votes or stands alone.
func ResolveWard(in WardInput) WardResult {
	ranked := rank(in.Candidates)
	res := WardResult{
		Number:        in.Number,
		Name:          in.Name,
		Candidates:    ranked,
		IsUncontested: len(ranked) == 1,
	}

	if in.Winner != nil {
		w := *in.Winner
		res.Winner = &w
		return res
	}

	if !res.IsUncontested && len(ranked) >= 2 {
		top, second := ranked[0].VoteCount, ranked[1].VoteCount
		res.IsHung = top > 0 && top == second
	}
	if res.IsHung {
		return res
	}

	if in.Leading != nil {
		l := *in.Leading
		res.Leading = &l
		return res
	}

	if len(ranked) > 0 && (ranked[0].VoteCount > 0 || res.IsUncontested) {
		l := ranked[0]
		res.Leading = &l
	}
	return res
}

// rank returns a copy of cands ordered by votes descending. Equal tallies keep
// their input order. Negative tallies are treated as zero.
func rank(cands []Candidate) []Candidate {
	out := make([]Candidate, len(cands))
	copy(out, cands)
	for i := range out {
		if out[i].VoteCount < 0 {
			out[i].VoteCount = 0
		}
	}
	slices.SortStableFunc(out, func(a, b Candidate) int {
		return cmp.Compare(b.VoteCount, a.VoteCount)
	})
	return out
}

// DeclaredMarkers picks the first candidate marked "won" and the first marked
// "leading" from the feed's per-candidate status.
func DeclaredMarkers(cands []Candidate) (winner, leading *Candidate) {
	for i := range cands {
		switch strings.ToLower(strings.TrimSpace(cands[i].Status)) {
		case "won":
			if winner == nil {
				c := cands[i]
				winner = &c
			}
		case "leading":
			if leading == nil {
				c := cands[i]
				leading = &c
			}
		}
	}
	return winner, leading
}

// Declared reports whether the ward has any result state at all.
func (r WardResult) Declared() bool {
	return r.Winner != nil || r.Leading != nil || r.IsHung
}

// Status is the display status. Hung takes precedence, then a declared
// winner, then an uncontested seat, then a lead.
func (r WardResult) Status() WardStatus {
	switch {
	case r.IsHung:
		return StatusHung
	case r.Winner != nil:
		return StatusWon
	case r.IsUncontested && len(r.Candidates) > 0:
		return StatusUncontested
	case r.Leading != nil:
		return StatusLeading
	default:
		return StatusNoResult
	}
}

// Front is the winner's front, else the leader's, else empty.
func (r WardResult) Front() Front {
	if r.Winner != nil {
		return r.Winner.Front
	}
	if r.Leading != nil {
		return r.Leading.Front
	}
	return ""
}

// RunnerUp returns the second-ranked candidate, if any.
func (r WardResult) RunnerUp() (Candidate, bool) {
	if len(r.Candidates) < 2 {
		return Candidate{}, false
	}
	return r.Candidates[1], true
}

// Margin is the vote gap between the top two ranked candidates.
func (r WardResult) Margin() int {
	if len(r.Candidates) < 2 {
		return 0
	}
	return r.Candidates[0].VoteCount - r.Candidates[1].VoteCount
}
