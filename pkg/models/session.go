package models

import (
	"time"

	"github.com/codeready-toolchain/quizkernel/pkg/bkt"
)

// Condition selects the item-selection strategy for a session.
type Condition string

const (
	ConditionAdaptive Condition = "adaptive"
	ConditionStatic   Condition = "static"
)

// ValidCondition reports whether c is a recognised condition value.
func ValidCondition(c Condition) bool {
	return c == ConditionAdaptive || c == ConditionStatic
}

// Session is one learner's live state for a single quiz attempt: the
// current IRT ability estimate and the BKT posterior for every
// knowledge component in the catalogue at session creation.
type Session struct {
	ID          string
	UserID      string
	QuizID      string
	Condition   Condition
	StartedAt   time.Time
	CompletedAt *time.Time

	Theta   float64
	ThetaSd float64

	// KCStates is keyed by knowledge-component id; its size equals the
	// catalogue size at session creation and never shrinks.
	KCStates map[string]bkt.State
}

// IsCompleted reports whether the session has reached its terminal state.
func (s Session) IsCompleted() bool {
	return s.CompletedAt != nil
}

// Clone returns a deep copy safe to hand to a caller without risking
// aliased mutation of the stored KCStates map.
func (s Session) Clone() Session {
	clone := s
	clone.KCStates = make(map[string]bkt.State, len(s.KCStates))
	for k, v := range s.KCStates {
		clone.KCStates[k] = v
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		clone.CompletedAt = &t
	}
	return clone
}
