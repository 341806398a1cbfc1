package bkt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateBKT_ResultAlwaysClampedAndMasteryConsistent(t *testing.T) {
	params := Params{PL0: 0.6, PT: 0.25, PS: 0.08, PG: 0.25}

	for _, pLearned := range []float64{0, 0.1, 0.5, 0.9, 1} {
		for _, correct := range []bool{true, false} {
			result, err := UpdateBKT(pLearned, correct, params)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, result, 0.0)
			assert.LessOrEqual(t, result, 1.0)
			assert.Equal(t, result >= MasteryThreshold, result >= 0.95)
		}
	}
}

// Scenario D from the spec: KC UK_capitals, pL0=0.60, pT=0.25, pS=0.08,
// pG=0.25. One correct response: filtered = 0.60*0.92 / (0.60*0.92 +
// 0.40*0.25) = 0.847..., then + (1-0.847)*0.25 ~= 0.885.
func TestUpdateBKT_ScenarioD(t *testing.T) {
	params := Params{PL0: 0.60, PT: 0.25, PS: 0.08, PG: 0.25}

	result, err := UpdateBKT(0.60, true, params)
	require.NoError(t, err)

	expectedFiltered := 0.60 * 0.92 / (0.60*0.92 + 0.40*0.25)
	expected := expectedFiltered + (1-expectedFiltered)*0.25

	assert.InDelta(t, expected, result, 1e-6)
	assert.InDelta(t, 0.885, result, 1e-3)
}

func TestUpdateBKT_AllCorrectMonotonicallyIncreasesBeforeMastery(t *testing.T) {
	params := Params{PL0: 0.3, PT: 0.2, PS: 0.1, PG: 0.2}
	pLearned := params.PL0

	for i := 0; i < 10 && pLearned < MasteryThreshold; i++ {
		next, err := UpdateBKT(pLearned, true, params)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, next, pLearned)
		pLearned = next
	}
}

func TestUpdateBKT_AllIncorrectDoesNotIncreaseBeforeTransition(t *testing.T) {
	params := Params{PL0: 0.6, PT: 0.0, PS: 0.1, PG: 0.2}

	// With pT=0 the transition step is a no-op, isolating the filter step:
	// an incorrect response must not increase pLearned.
	result, err := UpdateBKT(0.6, false, params)
	require.NoError(t, err)
	assert.LessOrEqual(t, result, 0.6)
}

func TestUpdateBKT_DegenerateDenominatorFails(t *testing.T) {
	params := Params{PL0: 0, PT: 0, PS: 1, PG: 0}

	// pLearned=0, incorrect: numerator = 0*1 = 0, denominator = 0 +
	// (1-0)*(1-0) = 1 -- not degenerate. Use a genuinely degenerate case:
	// correct with pLearned=0 and pG=0: numerator=0, denom=0.
	_, err := UpdateBKT(0, true, Params{PL0: 0, PT: 0, PS: 1, PG: 0})
	require.Error(t, err)
	var numErr *NumericError
	assert.ErrorAs(t, err, &numErr)
	_ = params
}

func TestUpdateKCState_AdvancesCountersAndDoesNotMutateInput(t *testing.T) {
	params := Params{PL0: 0.6, PT: 0.25, PS: 0.08, PG: 0.25}
	initial := State{KCID: "UK_capitals", PLearned: 0.6}

	next, err := UpdateKCState(initial, true, params)
	require.NoError(t, err)

	assert.Equal(t, 0, initial.Attempts)
	assert.Equal(t, 1, next.Attempts)
	assert.Equal(t, 1, next.Correct)
	assert.Equal(t, "UK_capitals", next.KCID)
}

func TestUpdateKCState_IncorrectDoesNotIncrementCorrect(t *testing.T) {
	params := Params{PL0: 0.6, PT: 0.25, PS: 0.08, PG: 0.25}
	initial := State{KCID: "UK_capitals", PLearned: 0.6, Attempts: 2, Correct: 1}

	next, err := UpdateKCState(initial, false, params)
	require.NoError(t, err)

	assert.Equal(t, 3, next.Attempts)
	assert.Equal(t, 1, next.Correct)
}

func TestInitialiseAllKCs_SeedsDefaultsForEveryKC(t *testing.T) {
	catalogue := Catalogue{
		"UK_capitals": {PL0: 0.6, PT: 0.25, PS: 0.08, PG: 0.25},
		"UK_rivers":   {PL0: 0.98, PT: 0.1, PS: 0.1, PG: 0.2},
	}

	states := InitialiseAllKCs(catalogue)

	require.Len(t, states, 2)
	assert.Equal(t, 0.6, states["UK_capitals"].PLearned)
	assert.False(t, states["UK_capitals"].IsMastered)
	assert.True(t, states["UK_rivers"].IsMastered)
}

func TestSummarize_CountsAndOverallProgress(t *testing.T) {
	states := map[string]State{
		"a": {PLearned: 0.97, IsMastered: true},
		"b": {PLearned: 0.5, Attempts: 3},
		"c": {PLearned: 0.6},
	}

	summary := Summarize(states)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.Mastered)
	assert.Equal(t, 1, summary.InProgress)
	assert.Equal(t, 1, summary.NotStarted)
	assert.Equal(t, 33, summary.OverallProgress)
}

func TestWeakestUnmastered_BreaksTiesByID(t *testing.T) {
	states := map[string]State{
		"zebra": {KCID: "zebra", PLearned: 0.4},
		"alpha": {KCID: "alpha", PLearned: 0.4},
		"beta":  {KCID: "beta", PLearned: 0.9, IsMastered: true},
	}

	weakest, ok := WeakestUnmastered(states)
	require.True(t, ok)
	assert.Equal(t, "alpha", weakest.KCID)
}

func TestWeakestUnmastered_NoneWhenAllMastered(t *testing.T) {
	states := map[string]State{
		"a": {PLearned: 0.99, IsMastered: true},
	}

	_, ok := WeakestUnmastered(states)
	assert.False(t, ok)
}
