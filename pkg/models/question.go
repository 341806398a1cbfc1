package models

import "fmt"

// AnswerLabels are the four allowed option labels, in authored order.
var AnswerLabels = [4]string{"A", "B", "C", "D"}

// Option is one of a question's exactly-four labelled choices.
type Option struct {
	Label     string `json:"label"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// Question is an immutable, calibrated assessment item. It is created by
// content authoring (outside the kernel) and never mutated here.
type Question struct {
	ID      string
	QuizID  string
	Stem    string
	Options [4]Option

	// IRT 3PL parameters.
	A float64 // discrimination, > 0
	B float64 // difficulty
	C float64 // guessing, in [0, 1)

	Bloom int    // cognitive level: 1 remember, 2 understand, 3 apply
	KC    string // knowledge-component id this item targets

	// Order is the authored position within the quiz, used for static
	// (non-adaptive) item ordering.
	Order int
}

// CorrectLabel returns the label (A-D) of the option marked correct. It
// returns an error if the question's options are malformed (not exactly
// one correct option), which should never happen for a validated
// catalogue but is checked defensively since it gates scoring.
func (q Question) CorrectLabel() (string, error) {
	found := ""
	for _, opt := range q.Options {
		if opt.IsCorrect {
			if found != "" {
				return "", fmt.Errorf("question %s has more than one correct option", q.ID)
			}
			found = opt.Label
		}
	}
	if found == "" {
		return "", fmt.Errorf("question %s has no correct option", q.ID)
	}
	return found, nil
}

// OptionsByLabel returns the options keyed by label, for the HTTP
// surface to render without leaking IsCorrect.
func (q Question) OptionsByLabel() map[string]string {
	out := make(map[string]string, len(q.Options))
	for _, opt := range q.Options {
		out[opt.Label] = opt.Text
	}
	return out
}
