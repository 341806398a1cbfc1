// Package selector chooses the next question to serve from a bank,
// either by maximising IRT information at the learner's current ability
// (adaptive condition) or by authored order (static condition).
package selector

import (
	"sort"

	"github.com/codeready-toolchain/quizkernel/pkg/irt"
	"github.com/codeready-toolchain/quizkernel/pkg/models"
)

// Criteria narrows the eligible set before scoring.
type Criteria struct {
	ExcludeIDs map[string]struct{}
	// BloomLevel, when non-zero, restricts eligible items to that
	// cognitive level.
	BloomLevel int
}

func (c Criteria) eligible(bank []models.Question) []models.Question {
	out := make([]models.Question, 0, len(bank))
	for _, q := range bank {
		if _, excluded := c.ExcludeIDs[q.ID]; excluded {
			continue
		}
		if c.BloomLevel != 0 && q.Bloom != c.BloomLevel {
			continue
		}
		out = append(out, q)
	}
	return out
}

// SelectAdaptive returns the eligible item maximising Fisher information
// at targetTheta. Ties break first by the smallest |b - targetTheta|,
// then lexicographically by id, so the choice is deterministic given
// identical inputs. Returns false if no item is eligible.
func SelectAdaptive(bank []models.Question, targetTheta float64, criteria Criteria) (models.Question, bool, error) {
	eligible := criteria.eligible(bank)
	if len(eligible) == 0 {
		return models.Question{}, false, nil
	}

	type scored struct {
		question    models.Question
		information float64
	}

	scoredItems := make([]scored, 0, len(eligible))
	for _, q := range eligible {
		info, err := irt.ItemInformation(targetTheta, irt.Item{A: q.A, B: q.B, C: q.C})
		if err != nil {
			return models.Question{}, false, err
		}
		scoredItems = append(scoredItems, scored{question: q, information: info})
	}

	sort.Slice(scoredItems, func(i, j int) bool {
		a, b := scoredItems[i], scoredItems[j]
		if a.information != b.information {
			return a.information > b.information
		}
		da, db := absDiff(a.question.B, targetTheta), absDiff(b.question.B, targetTheta)
		if da != db {
			return da < db
		}
		return a.question.ID < b.question.ID
	})

	return scoredItems[0].question, true, nil
}

// SelectStatic returns the eligible item with the smallest authored
// Order, ignoring information entirely. Returns false if no item is
// eligible.
func SelectStatic(bank []models.Question, criteria Criteria) (models.Question, bool) {
	eligible := criteria.eligible(bank)
	if len(eligible) == 0 {
		return models.Question{}, false
	}

	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].Order != eligible[j].Order {
			return eligible[i].Order < eligible[j].Order
		}
		return eligible[i].ID < eligible[j].ID
	})

	return eligible[0], true
}

func absDiff(a, b float64) float64 {
	d := a - b
	if d < 0 {
		return -d
	}
	return d
}
