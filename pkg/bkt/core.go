package bkt

import (
	"math"
	"sort"
)

// UpdateBKT runs the two-step BKT update given an observed response:
// a Bayesian filter step conditioned on correctness, followed by the
// learning transition. The result is clamped to [0, 1].
//
// Fails with a NumericError if the filter step's denominator is zero,
// which can only happen with degenerate parameters (e.g. pS=1, pG=0
// under certain priors) that callers must not expose.
func UpdateBKT(pLearned float64, isCorrect bool, params Params) (float64, error) {
	var numerator, denominator float64

	if isCorrect {
		numerator = pLearned * (1 - params.PS)
		denominator = numerator + (1-pLearned)*params.PG
	} else {
		numerator = pLearned * params.PS
		denominator = numerator + (1-pLearned)*(1-params.PG)
	}

	if denominator == 0 {
		return 0, &NumericError{Op: "UpdateBKT"}
	}

	filtered := numerator / denominator
	learned := filtered + (1-filtered)*params.PT

	return clamp01(learned), nil
}

// UpdateKCState applies UpdateBKT to state and returns a new state with
// attempts/correct counters advanced and mastery recomputed. state is
// not mutated.
func UpdateKCState(state State, isCorrect bool, params Params) (State, error) {
	pLearned, err := UpdateBKT(state.PLearned, isCorrect, params)
	if err != nil {
		return State{}, err
	}

	next := State{
		KCID:     state.KCID,
		PLearned: pLearned,
		Attempts: state.Attempts + 1,
		Correct:  state.Correct,
	}
	if isCorrect {
		next.Correct++
	}
	next.IsMastered = next.PLearned >= MasteryThreshold

	return next, nil
}

// InitialiseAllKCs returns the default per-session state for every KC in
// the catalogue: pLearned = pL0, zero attempts, mastery computed from
// pL0 alone (normally false).
func InitialiseAllKCs(catalogue Catalogue) map[string]State {
	states := make(map[string]State, len(catalogue))
	for kc, params := range catalogue {
		states[kc] = State{
			KCID:       kc,
			PLearned:   clamp01(params.PL0),
			IsMastered: params.PL0 >= MasteryThreshold,
		}
	}
	return states
}

// Summarize aggregates a session's KC states into totals, mastered/
// in-progress/not-started counts, and overall percent progress.
func Summarize(states map[string]State) Summary {
	summary := Summary{Total: len(states)}

	for _, s := range states {
		switch {
		case s.IsMastered:
			summary.Mastered++
		case s.Attempts > 0:
			summary.InProgress++
		default:
			summary.NotStarted++
		}
	}

	if summary.Total > 0 {
		summary.OverallProgress = int(math.Round(100 * float64(summary.Mastered) / float64(summary.Total)))
	}

	return summary
}

// WeakestUnmastered returns the non-mastered KC state with the lowest
// pLearned, breaking ties lexicographically by KC id for determinism. It
// returns false if every KC is mastered (or there are none).
func WeakestUnmastered(states map[string]State) (State, bool) {
	ids := make([]string, 0, len(states))
	for id := range states {
		if !states[id].IsMastered {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return State{}, false
	}

	sort.Slice(ids, func(i, j int) bool {
		si, sj := states[ids[i]], states[ids[j]]
		if si.PLearned != sj.PLearned {
			return si.PLearned < sj.PLearned
		}
		return ids[i] < ids[j]
	})

	return states[ids[0]], true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
