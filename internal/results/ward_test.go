package results_test

import (
	"testing"

	"github.com/EmpoweredVote/LSG-Trends/internal/results"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cand(name string, f results.Front, votes int) results.Candidate {
	return results.Candidate{Name: name, Party: string(f), Front: f, VoteCount: votes}
}

// TestResolveWard_ExplicitWinner verifies that a declared winner is returned
// regardless of vote ordering.
func TestResolveWard_ExplicitWinner(t *testing.T) {
	a := cand("A", results.FrontLDF, 900)
	b := cand("B", results.FrontUDF, 100)
	res := results.ResolveWard(results.WardInput{
		Number:     3,
		Candidates: []results.Candidate{a, b},
		Winner:     &b,
	})

	require.NotNil(t, res.Winner)
	assert.Equal(t, "B", res.Winner.Name)
	assert.Nil(t, res.Leading)
	assert.False(t, res.IsHung)
	assert.Equal(t, results.StatusWon, res.Status())
	assert.Equal(t, "A", res.Candidates[0].Name, "candidates are still ranked")
}

// TestResolveWard_WinnerBeatsTie verifies that a declared winner overrides an
// equal top-two tally.
func TestResolveWard_WinnerBeatsTie(t *testing.T) {
	a := cand("A", results.FrontLDF, 500)
	b := cand("B", results.FrontUDF, 500)
	res := results.ResolveWard(results.WardInput{Candidates: []results.Candidate{a, b}, Winner: &a})

	assert.False(t, res.IsHung)
	require.NotNil(t, res.Winner)
	assert.Equal(t, results.FrontLDF, res.Front())
}

// TestResolveWard_Hung covers the two-way tie example.
func TestResolveWard_Hung(t *testing.T) {
	res := results.ResolveWard(results.WardInput{
		Candidates: []results.Candidate{
			cand("A", results.FrontLDF, 500),
			cand("B", results.FrontUDF, 500),
		},
	})

	assert.True(t, res.IsHung)
	assert.Nil(t, res.Winner)
	assert.Nil(t, res.Leading)
	assert.True(t, res.Declared())
	assert.Equal(t, results.StatusHung, res.Status())
}

// TestResolveWard_HungIgnoresLeadingMarker verifies that a tie is terminal
// even when the feed marks someone as leading.
func TestResolveWard_HungIgnoresLeadingMarker(t *testing.T) {
	b := cand("B", results.FrontUDF, 40)
	res := results.ResolveWard(results.WardInput{
		Candidates: []results.Candidate{cand("A", results.FrontLDF, 40), b, cand("C", results.FrontNDA, 3)},
		Leading:    &b,
	})

	assert.True(t, res.IsHung)
	assert.Nil(t, res.Leading)
}

func TestResolveWard_ZeroTieIsNotHung(t *testing.T) {
	res := results.ResolveWard(results.WardInput{
		Candidates: []results.Candidate{cand("A", results.FrontLDF, 0), cand("B", results.FrontUDF, 0)},
	})

	assert.False(t, res.IsHung)
	assert.Nil(t, res.Leading)
	assert.False(t, res.Declared())
	assert.Equal(t, results.StatusNoResult, res.Status())
}

// TestResolveWard_Uncontested verifies that a lone candidate leads even with
// no votes counted.
func TestResolveWard_Uncontested(t *testing.T) {
	res := results.ResolveWard(results.WardInput{
		Candidates: []results.Candidate{cand("Solo", results.FrontNDA, 0)},
	})

	assert.True(t, res.IsUncontested)
	require.NotNil(t, res.Leading)
	assert.Equal(t, "Solo", res.Leading.Name)
	assert.Equal(t, results.StatusUncontested, res.Status())
}

func TestResolveWard_ImplicitLead(t *testing.T) {
	res := results.ResolveWard(results.WardInput{
		Candidates: []results.Candidate{
			cand("A", results.FrontLDF, 120),
			cand("B", results.FrontUDF, 340),
			cand("C", results.FrontNDA, 90),
		},
	})

	require.NotNil(t, res.Leading)
	assert.Equal(t, "B", res.Leading.Name)
	assert.Equal(t, results.StatusLeading, res.Status())
	assert.Equal(t, 220, res.Margin())

	ru, ok := res.RunnerUp()
	require.True(t, ok)
	assert.Equal(t, "A", ru.Name)
}

func TestResolveWard_ExplicitLeading(t *testing.T) {
	c := cand("C", results.FrontNDA, 10)
	res := results.ResolveWard(results.WardInput{
		Candidates: []results.Candidate{cand("A", results.FrontLDF, 30), c},
		Leading:    &c,
	})

	require.NotNil(t, res.Leading)
	assert.Equal(t, "C", res.Leading.Name)
}

// TestResolveWard_StableRanking verifies that equal tallies keep their input
// order and negative tallies are clamped.
func TestResolveWard_StableRanking(t *testing.T) {
	in := []results.Candidate{
		cand("A", results.FrontLDF, 5),
		cand("B", results.FrontUDF, 9),
		cand("C", results.FrontNDA, 5),
		cand("D", results.FrontIND, -4),
	}
	res := results.ResolveWard(results.WardInput{Candidates: in})

	var names []string
	for _, c := range res.Candidates {
		names = append(names, c.Name)
	}
	if diff := cmp.Diff([]string{"B", "A", "C", "D"}, names); diff != "" {
		t.Errorf("ranking mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 0, res.Candidates[3].VoteCount)
	assert.Equal(t, -4, in[3].VoteCount, "input is not mutated")
}

func TestResolveWard_Empty(t *testing.T) {
	res := results.ResolveWard(results.WardInput{Number: 7})

	assert.Equal(t, 7, res.Number)
	assert.False(t, res.IsUncontested)
	assert.False(t, res.Declared())
	assert.Empty(t, res.Candidates)
}

func TestDeclaredMarkers(t *testing.T) {
	cands := []results.Candidate{
		{Name: "A", Status: "Lost"},
		{Name: "B", Status: " Won "},
		{Name: "C", Status: "leading"},
		{Name: "D", Status: "won"},
	}
	w, l := results.DeclaredMarkers(cands)

	require.NotNil(t, w)
	require.NotNil(t, l)
	assert.Equal(t, "B", w.Name)
	assert.Equal(t, "C", l.Name)
}
