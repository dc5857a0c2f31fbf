package results

import (
	"maps"
	"slices"

	"github.com/EmpoweredVote/LSG-Trends/internal/registry"
)

// Local-body level labels that are not fronts.
const (
	LabelHung = "Hung"
	LabelNA   = "N/A"
)

// LocalBodySummary is the leading-front summary of one local body.
type LocalBodySummary struct {
	LBCode        string             `json:"lb_code"`
	LeadingFront  string             `json:"leadingFront"`
	WardCount     int                `json:"wardCount"`
	WardsDeclared int                `json:"wardsDeclared"`
	LDFSeats      int                `json:"ldfSeats"`
	UDFSeats      int                `json:"udfSeats"`
	NDASeats      int                `json:"ndaSeats"`
	INDSeats      int                `json:"indSeats"`
	WardInfo      map[int]WardResult `json:"wardInfo"`
}

// SummarizeLocalBody folds the resolved wards of unit into a summary.
//
// Seats count declared winners only, and the leading front is decided on
// seats: a front holding more than half of the declared wards leads, a tie
// for the most seats makes the body Hung, and otherwise the single front with
// the most seats leads. Leads never count, so a body with leads but no
// winners is Hung. A body with nothing declared is N/A.
//
// Wards are keyed by number and the first occurrence wins. When the unit has
// a ward count, wards numbered outside 1..WardCount are ignored; a unit with
// no ward count takes the number of distinct wards as its count.
func SummarizeLocalBody(unit registry.AdministrativeUnit, wards []WardResult) LocalBodySummary {
	s := LocalBodySummary{
		LBCode:    unit.Code,
		WardCount: unit.WardCount,
		WardInfo:  make(map[int]WardResult, len(wards)),
	}

	for _, w := range wards {
		if unit.WardCount > 0 && (w.Number < 1 || w.Number > unit.WardCount) {
			continue
		}
		if _, seen := s.WardInfo[w.Number]; seen {
			continue
		}
		s.WardInfo[w.Number] = w
	}
	if s.WardCount == 0 {
		s.WardCount = len(s.WardInfo)
	}

	for _, w := range s.WardInfo {
		if !w.Declared() {
			continue
		}
		s.WardsDeclared++
		if w.Winner != nil {
			s.addSeat(seatFront(w.Winner.Front))
		}
	}

	s.LeadingFront = s.leadingFront()
	return s
}

// seatFront folds fronts without their own tally into IND.
func seatFront(f Front) Front {
	switch f {
	case FrontLDF, FrontUDF, FrontNDA:
		return f
	}
	return FrontIND
}

func (s *LocalBodySummary) addSeat(f Front) {
	switch f {
	case FrontLDF:
		s.LDFSeats++
	case FrontUDF:
		s.UDFSeats++
	case FrontNDA:
		s.NDASeats++
	default:
		s.INDSeats++
	}
}

func (s LocalBodySummary) leadingFront() string {
	if s.WardsDeclared == 0 {
		return LabelNA
	}
	best, top, tied := Front(""), -1, false
	for _, f := range SeatFronts {
		n := s.Seats(f)
		switch {
		case n > top:
			best, top, tied = f, n, false
		case n == top:
			tied = true
		}
	}
	if 2*top > s.WardsDeclared {
		return string(best)
	}
	if tied {
		return LabelHung
	}
	return string(best)
}

// Seats returns the seat tally for f. Fronts without their own tally read
// the IND tally.
func (s LocalBodySummary) Seats(f Front) int {
	switch seatFront(f) {
	case FrontLDF:
		return s.LDFSeats
	case FrontUDF:
		return s.UDFSeats
	case FrontNDA:
		return s.NDASeats
	}
	return s.INDSeats
}

func (s LocalBodySummary) TotalSeats() int {
	return s.LDFSeats + s.UDFSeats + s.NDASeats + s.INDSeats
}

// HungWards lists the numbers of tied wards in ascending order.
func (s LocalBodySummary) HungWards() []int {
	var out []int
	for n, w := range s.WardInfo {
		if w.IsHung {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return out
}

// WardNumbers lists the ward numbers present in ascending order.
func (s LocalBodySummary) WardNumbers() []int {
	return slices.Sorted(maps.Keys(s.WardInfo))
}

// Wards returns the ward results ordered by ward number.
func (s LocalBodySummary) Wards() []WardResult {
	out := make([]WardResult, 0, len(s.WardInfo))
	for _, n := range s.WardNumbers() {
		out = append(out, s.WardInfo[n])
	}
	return out
}
