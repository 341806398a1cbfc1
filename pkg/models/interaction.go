package models

import "time"

// Interaction is an immutable, audit-grade record of one answered
// question within a session. It is append-only and created atomically
// with the session update it produced (engine.SubmitAnswer).
type Interaction struct {
	ID             string
	SessionID      string
	QuestionID     string
	SelectedAnswer string // normalised A-D
	IsCorrect      bool
	ResponseTimeMs int

	ThetaBefore float64
	ThetaAfter  float64

	PLearnedBefore float64
	PLearnedAfter  float64

	CreatedAt time.Time
}
