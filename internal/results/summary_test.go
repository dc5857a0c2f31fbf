package results_test

import (
	"testing"

	"github.com/EmpoweredVote/LSG-Trends/internal/registry"
	"github.com/EmpoweredVote/LSG-Trends/internal/results"
	"github.com/stretchr/testify/assert"
)

func won(n int, f results.Front) results.WardResult {
	c := cand("w", f, 100)
	return results.WardResult{Number: n, Winner: &c, Candidates: []results.Candidate{c}}
}

func leading(n int, f results.Front) results.WardResult {
	c := cand("l", f, 50)
	return results.WardResult{Number: n, Leading: &c, Candidates: []results.Candidate{c, cand("x", results.FrontOther, 10)}}
}

func hung(n int) results.WardResult {
	return results.WardResult{Number: n, IsHung: true}
}

func unit(code string, wards int) registry.AdministrativeUnit {
	return registry.AdministrativeUnit{Code: code, Name: code, Type: registry.TypeGramaPanchayat, DistrictName: "Kollam", WardCount: wards}
}

// TestSummarizeLocalBody_Majority covers the six-to-four example.
func TestSummarizeLocalBody_Majority(t *testing.T) {
	var wards []results.WardResult
	for i := 1; i <= 6; i++ {
		wards = append(wards, won(i, results.FrontLDF))
	}
	for i := 7; i <= 10; i++ {
		wards = append(wards, won(i, results.FrontUDF))
	}

	s := results.SummarizeLocalBody(unit("G01001", 10), wards)

	assert.Equal(t, "LDF", s.LeadingFront)
	assert.Equal(t, 6, s.LDFSeats)
	assert.Equal(t, 4, s.UDFSeats)
	assert.Equal(t, 10, s.WardsDeclared)
	assert.Equal(t, s.WardsDeclared, s.TotalSeats())
}

// TestSummarizeLocalBody_LeadersAreNotSeats verifies that leads count toward
// neither seats nor the leading front.
func TestSummarizeLocalBody_LeadersAreNotSeats(t *testing.T) {
	s := results.SummarizeLocalBody(unit("G01002", 5), []results.WardResult{
		won(1, results.FrontUDF),
		leading(2, results.FrontNDA),
		leading(3, results.FrontNDA),
		{Number: 4},
	})

	assert.Equal(t, 3, s.WardsDeclared)
	assert.Equal(t, 1, s.UDFSeats)
	assert.Equal(t, 0, s.NDASeats)
	assert.Equal(t, "UDF", s.LeadingFront)
	assert.LessOrEqual(t, s.TotalSeats(), s.WardsDeclared)
}

// TestSummarizeLocalBody_LeadsDoNotBreakSeatLead verifies that a front ahead
// on seats keeps the body even when another front leads as many wards.
func TestSummarizeLocalBody_LeadsDoNotBreakSeatLead(t *testing.T) {
	s := results.SummarizeLocalBody(unit("G01010", 4), []results.WardResult{
		won(1, results.FrontLDF),
		won(2, results.FrontLDF),
		leading(3, results.FrontUDF),
		leading(4, results.FrontUDF),
	})

	assert.Equal(t, 4, s.WardsDeclared)
	assert.Equal(t, 2, s.LDFSeats)
	assert.Zero(t, s.UDFSeats)
	assert.Equal(t, "LDF", s.LeadingFront)
}

// TestSummarizeLocalBody_OnlyLeadsIsHung verifies that a body with leads but
// no declared winners has every front tied at zero seats.
func TestSummarizeLocalBody_OnlyLeadsIsHung(t *testing.T) {
	s := results.SummarizeLocalBody(unit("G01011", 2), []results.WardResult{
		leading(1, results.FrontNDA),
		leading(2, results.FrontNDA),
	})

	assert.Equal(t, 2, s.WardsDeclared)
	assert.Zero(t, s.TotalSeats())
	assert.Equal(t, results.LabelHung, s.LeadingFront)
}

func TestSummarizeLocalBody_TieIsHung(t *testing.T) {
	s := results.SummarizeLocalBody(unit("G01003", 4), []results.WardResult{
		won(1, results.FrontLDF),
		won(2, results.FrontUDF),
		hung(3),
	})

	assert.Equal(t, results.LabelHung, s.LeadingFront)
	assert.Equal(t, 3, s.WardsDeclared)
	assert.Equal(t, []int{3}, s.HungWards())
}

func TestSummarizeLocalBody_AllHung(t *testing.T) {
	s := results.SummarizeLocalBody(unit("G01004", 2), []results.WardResult{hung(1), hung(2)})

	assert.Equal(t, results.LabelHung, s.LeadingFront)
	assert.Zero(t, s.TotalSeats())
}

func TestSummarizeLocalBody_NothingDeclared(t *testing.T) {
	s := results.SummarizeLocalBody(unit("G01005", 3), []results.WardResult{{Number: 1}, {Number: 2}})

	assert.Equal(t, results.LabelNA, s.LeadingFront)
	assert.Zero(t, s.WardsDeclared)
	assert.Len(t, s.WardInfo, 2)
}

func TestSummarizeLocalBody_PluralityWithoutMajority(t *testing.T) {
	s := results.SummarizeLocalBody(unit("G01006", 6), []results.WardResult{
		won(1, results.FrontLDF),
		won(2, results.FrontLDF),
		won(3, results.FrontUDF),
		won(4, results.FrontNDA),
		hung(5),
	})

	assert.Equal(t, "LDF", s.LeadingFront)
}

// TestSummarizeLocalBody_OtherFrontCountsAsIND verifies that winners from
// parties outside the three fronts land in the IND tally.
func TestSummarizeLocalBody_OtherFrontCountsAsIND(t *testing.T) {
	s := results.SummarizeLocalBody(unit("G01007", 3), []results.WardResult{
		won(1, results.FrontOther),
		won(2, results.FrontIND),
		won(3, results.FrontLDF),
	})

	assert.Equal(t, 2, s.INDSeats)
	assert.Equal(t, 2, s.Seats(results.FrontOther))
	assert.Equal(t, "IND", s.LeadingFront)
}

// TestSummarizeLocalBody_WardCountBound verifies that wardsDeclared never
// exceeds the unit's ward count, even with duplicate or out-of-range wards.
func TestSummarizeLocalBody_WardCountBound(t *testing.T) {
	s := results.SummarizeLocalBody(unit("G01008", 2), []results.WardResult{
		won(1, results.FrontLDF),
		won(1, results.FrontUDF),
		won(2, results.FrontLDF),
		won(3, results.FrontNDA),
		won(0, results.FrontNDA),
	})

	assert.Equal(t, 2, s.WardsDeclared)
	assert.LessOrEqual(t, s.WardsDeclared, s.WardCount)
	assert.Equal(t, 2, s.LDFSeats)
	assert.Zero(t, s.UDFSeats)
	assert.Zero(t, s.NDASeats)
	assert.Equal(t, []int{1, 2}, s.WardNumbers())
}

func TestSummarizeLocalBody_UnknownWardCount(t *testing.T) {
	s := results.SummarizeLocalBody(unit("G01009", 0), []results.WardResult{
		won(4, results.FrontLDF),
		won(9, results.FrontUDF),
		won(9, results.FrontUDF),
	})

	assert.Equal(t, 2, s.WardCount)
	assert.Equal(t, 2, s.WardsDeclared)
	assert.Len(t, s.Wards(), 2)
	assert.Equal(t, 4, s.Wards()[0].Number)
}
