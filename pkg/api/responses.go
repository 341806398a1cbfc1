package api

import "github.com/codeready-toolchain/quizkernel/pkg/kernel"

// SessionResponse is returned by POST /api/v1/sessions.
type SessionResponse struct {
	SessionID string  `json:"session_id"`
	UserID    string  `json:"user_id"`
	QuizID    string  `json:"quiz_id"`
	Condition string  `json:"condition"`
	Theta     float64 `json:"theta"`
	ThetaSd   float64 `json:"theta_sd"`
}

// QuestionResponse is the client-safe rendering of a question: options
// are keyed by label, with no indication of which one is correct.
type QuestionResponse struct {
	ID      string            `json:"id"`
	Stem    string            `json:"stem"`
	Options map[string]string `json:"options"`
	Bloom   int               `json:"bloom"`
}

// NextQuestionResponse is returned by GET /api/v1/sessions/:id/next-question.
type NextQuestionResponse struct {
	Completed          bool              `json:"completed"`
	FinalTheta         float64           `json:"final_theta,omitempty"`
	TotalAnswered      int               `json:"total_answered,omitempty"`
	Question           *QuestionResponse `json:"question,omitempty"`
	CurrentTheta       float64           `json:"current_theta,omitempty"`
	ItemDifficulty     float64           `json:"item_difficulty,omitempty"`
	ItemInformation    float64           `json:"item_information,omitempty"`
	QuestionsAnswered  int               `json:"questions_answered,omitempty"`
	QuestionsRemaining int               `json:"questions_remaining,omitempty"`
	Condition          string            `json:"condition,omitempty"`
}

func newNextQuestionResponse(o *kernel.NextQuestionOutcome) *NextQuestionResponse {
	if o.Completed {
		return &NextQuestionResponse{
			Completed:     true,
			FinalTheta:    o.FinalTheta,
			TotalAnswered: o.TotalAnswered,
		}
	}
	return &NextQuestionResponse{
		Question: &QuestionResponse{
			ID:      o.Question.ID,
			Stem:    o.Question.Stem,
			Options: o.Question.OptionsByLabel(),
			Bloom:   o.Question.Bloom,
		},
		CurrentTheta:       o.Meta.CurrentTheta,
		ItemDifficulty:     o.Meta.ItemDifficulty,
		ItemInformation:    o.Meta.ItemInformation,
		QuestionsAnswered:  o.Meta.QuestionsAnswered,
		QuestionsRemaining: o.Meta.QuestionsRemaining,
		Condition:          string(o.Meta.Condition),
	}
}

// AnswerResponse is returned by POST /api/v1/sessions/:id/answer.
type AnswerResponse struct {
	IsCorrect      bool    `json:"is_correct"`
	CorrectLabel   string  `json:"correct_label"`
	SelectedAnswer string  `json:"selected_answer"`
	InteractionID  string  `json:"interaction_id"`
	ThetaBefore    float64 `json:"theta_before"`
	ThetaAfter     float64 `json:"theta_after"`
	ThetaDelta     float64 `json:"theta_delta"`
	ThetaSd        float64 `json:"theta_sd"`
	ThetaCI95Low   float64 `json:"theta_ci95_low"`
	ThetaCI95High  float64 `json:"theta_ci95_high"`
	KC             string  `json:"kc"`
	PLearnedBefore float64 `json:"p_learned_before"`
	PLearnedAfter  float64 `json:"p_learned_after"`
	KCMastered     bool    `json:"kc_mastered"`
}

func newAnswerResponse(r *kernel.AnswerResult) *AnswerResponse {
	return &AnswerResponse{
		IsCorrect:      r.IsCorrect,
		CorrectLabel:   r.CorrectLabel,
		SelectedAnswer: r.SelectedAnswer,
		InteractionID:  r.InteractionID,
		ThetaBefore:    r.Theta.Before,
		ThetaAfter:     r.Theta.After,
		ThetaDelta:     r.Theta.Delta,
		ThetaSd:        r.Theta.Sd,
		ThetaCI95Low:   r.Theta.CI95Low,
		ThetaCI95High:  r.Theta.CI95High,
		KC:             r.BKT.KC,
		PLearnedBefore: r.BKT.PLearnedBefore,
		PLearnedAfter:  r.BKT.PLearnedAfter,
		KCMastered:     r.BKT.IsMastered,
	}
}

// KCStateResponse is one knowledge component's mastery state.
type KCStateResponse struct {
	KC         string  `json:"kc"`
	PLearned   float64 `json:"p_learned"`
	Attempts   int     `json:"attempts"`
	Correct    int     `json:"correct"`
	IsMastered bool    `json:"is_mastered"`
}

// SummaryResponse is returned by GET /api/v1/sessions/:id/summary.
type SummaryResponse struct {
	Total           int              `json:"total"`
	Mastered        int              `json:"mastered"`
	InProgress      int              `json:"in_progress"`
	NotStarted      int              `json:"not_started"`
	OverallProgress int              `json:"overall_progress"`
	WeakestKC       *KCStateResponse `json:"weakest_kc,omitempty"`
}

// InteractionResponse is one row of GET /api/v1/sessions/:id/interactions.
type InteractionResponse struct {
	ID             string  `json:"id"`
	QuestionID     string  `json:"question_id"`
	SelectedAnswer string  `json:"selected_answer"`
	IsCorrect      bool    `json:"is_correct"`
	ResponseTimeMs int     `json:"response_time_ms"`
	ThetaBefore    float64 `json:"theta_before"`
	ThetaAfter     float64 `json:"theta_after"`
	PLearnedBefore float64 `json:"p_learned_before"`
	PLearnedAfter  float64 `json:"p_learned_after"`
	CreatedAt      string  `json:"created_at"`
}

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status   string                 `json:"status"`
	Version  string                 `json:"version"`
	Quizzes  int                    `json:"quizzes"`
	Database map[string]interface{} `json:"database,omitempty"`
}
