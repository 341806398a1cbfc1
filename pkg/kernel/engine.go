package kernel

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/codeready-toolchain/quizkernel/pkg/bkt"
	"github.com/codeready-toolchain/quizkernel/pkg/irt"
	"github.com/codeready-toolchain/quizkernel/pkg/models"
	"github.com/codeready-toolchain/quizkernel/pkg/repository"
	"github.com/codeready-toolchain/quizkernel/pkg/selector"
	"github.com/google/uuid"
)

// DefaultPLearnedForUnknownKC is the externally visible C_DEFAULT
// constant from spec.md §6: the pLearned value reported for a question
// whose knowledge component is absent from the catalogue.
const DefaultPLearnedForUnknownKC = 0.25

// IDGenerator returns a new opaque identifier. Swappable in tests;
// production wiring uses uuid.NewString.
type IDGenerator func() string

// Clock returns the current time. Swappable in tests.
type Clock func() time.Time

// Engine is the session engine of spec.md §4.4: it owns one method per
// external event and is the only component that mutates session state.
type Engine struct {
	repo       repository.Repository
	catalogue  bkt.Catalogue
	priorMean  float64
	priorSd    float64
	newID      IDGenerator
	now        Clock
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithPriors overrides the default EAP priors (θ₀, σ₀). Intended for
// tests; production code should rely on the spec defaults.
func WithPriors(mean, sd float64) Option {
	return func(e *Engine) { e.priorMean, e.priorSd = mean, sd }
}

// WithIDGenerator overrides id generation, for deterministic tests.
func WithIDGenerator(gen IDGenerator) Option {
	return func(e *Engine) { e.newID = gen }
}

// WithClock overrides the time source, for deterministic tests.
func WithClock(clock Clock) Option {
	return func(e *Engine) { e.now = clock }
}

// NewEngine constructs an Engine backed by repo and the given KC
// parameter catalogue.
func NewEngine(repo repository.Repository, catalogue bkt.Catalogue, opts ...Option) *Engine {
	e := &Engine{
		repo:      repo,
		catalogue: catalogue,
		priorMean: irt.DefaultPriorMean,
		priorSd:   irt.DefaultPriorSd,
		newID:     uuid.NewString,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreateSession implements spec.md §4.4's createSession: validates the
// user/quiz exist and the condition is recognised, then writes a new
// session seeded with the prior ability estimate and default KC states.
func (e *Engine) CreateSession(ctx context.Context, userID, quizID string, condition models.Condition) (*models.Session, error) {
	if userID == "" {
		return nil, newValidationError("userId", "required")
	}
	if quizID == "" {
		return nil, newValidationError("quizId", "required")
	}
	if !models.ValidCondition(condition) {
		return nil, newValidationError("condition", "must be 'adaptive' or 'static'")
	}

	if _, err := e.repo.GetUser(ctx, userID); err != nil {
		return nil, wrapNotFound(err, "user")
	}
	if _, err := e.repo.GetQuiz(ctx, quizID); err != nil {
		return nil, wrapNotFound(err, "quiz")
	}

	initial := models.Session{
		ID:        e.newID(),
		UserID:    userID,
		QuizID:    quizID,
		Condition: condition,
		StartedAt: e.now(),
		Theta:     e.priorMean,
		ThetaSd:   e.priorSd,
		KCStates:  bkt.InitialiseAllKCs(e.catalogue),
	}

	created, err := e.repo.CreateSession(ctx, initial)
	if err != nil {
		return nil, fmt.Errorf("%w: creating session: %v", ErrInternal, err)
	}
	return created, nil
}

// QuestionMeta is the non-identifying envelope returned alongside a
// selected question: enough for a client to render progress without
// leaking correctness.
type QuestionMeta struct {
	CurrentTheta       float64
	ItemDifficulty     float64
	ItemInformation    float64
	QuestionsAnswered  int
	QuestionsRemaining int
	Condition          models.Condition
}

// NextQuestionOutcome is the result of SelectNext: either a question to
// serve, or a completion signal. Exactly one of Question or Completed
// is meaningful.
type NextQuestionOutcome struct {
	Completed     bool
	FinalTheta    float64
	TotalAnswered int

	Question models.Question
	Meta     QuestionMeta
}

// SelectNext implements spec.md §4.4's selectNext: loads the session and
// its prior interactions, completes the session if every quiz question
// has been answered, and otherwise delegates to the selector.
func (e *Engine) SelectNext(ctx context.Context, sessionID string) (*NextQuestionOutcome, error) {
	session, interactions, err := e.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, wrapNotFound(err, "session")
	}
	if session.IsCompleted() {
		return nil, fmt.Errorf("%w: session already completed", ErrConflict)
	}

	bank, err := e.repo.ListQuestionsForQuiz(ctx, session.QuizID)
	if err != nil {
		return nil, fmt.Errorf("%w: listing questions: %v", ErrInternal, err)
	}

	answered := answeredIDs(interactions)

	if len(answered) >= len(bank) {
		completedAt := e.now()
		if _, err := e.repo.CompleteSession(ctx, sessionID, completedAt); err != nil {
			return nil, fmt.Errorf("%w: completing session: %v", ErrInternal, err)
		}
		return &NextQuestionOutcome{
			Completed:     true,
			FinalTheta:    session.Theta,
			TotalAnswered: len(answered),
		}, nil
	}

	criteria := selector.Criteria{ExcludeIDs: answered}

	var question models.Question
	var ok bool
	if session.Condition == models.ConditionStatic {
		question, ok = selector.SelectStatic(bank, criteria)
	} else {
		question, ok, err = selector.SelectAdaptive(bank, session.Theta, criteria)
		if err != nil {
			return nil, &NumericError{Op: "SelectNext", Err: err}
		}
	}
	if !ok {
		return nil, fmt.Errorf("%w: no eligible question remains", ErrNotFound)
	}

	info, err := irt.ItemInformation(session.Theta, irt.Item{A: question.A, B: question.B, C: question.C})
	if err != nil {
		return nil, &NumericError{Op: "SelectNext", Err: err}
	}

	return &NextQuestionOutcome{
		Question: question,
		Meta: QuestionMeta{
			CurrentTheta:       round3(session.Theta),
			ItemDifficulty:     question.B,
			ItemInformation:    round3(info),
			QuestionsAnswered:  len(answered),
			QuestionsRemaining: len(bank) - len(answered),
			Condition:          session.Condition,
		},
	}, nil
}

// ThetaSummary reports a before/after/delta view of the ability estimate
// produced by one submitAnswer call.
type ThetaSummary struct {
	Before   float64
	After    float64
	Delta    float64
	Sd       float64
	CI95Low  float64
	CI95High float64
}

// BKTSummary reports the KC mastery change produced by one submitAnswer
// call.
type BKTSummary struct {
	KC             string
	PLearnedBefore float64
	PLearnedAfter  float64
	IsMastered     bool
}

// AnswerResult is the full outcome of SubmitAnswer.
type AnswerResult struct {
	IsCorrect      bool
	CorrectLabel   string
	SelectedAnswer string
	Theta          ThetaSummary
	BKT            BKTSummary
	InteractionID  string
}

// SubmitAnswer implements spec.md §4.4's submitAnswer: scores the
// response, runs the full-history EAP update and the BKT update for the
// question's KC, and atomically appends the interaction and overwrites
// the session.
func (e *Engine) SubmitAnswer(ctx context.Context, sessionID, questionID, selectedAnswer string, responseTimeMs int) (*AnswerResult, error) {
	if responseTimeMs < 0 {
		return nil, newValidationError("responseTimeMs", "must be non-negative")
	}

	session, interactions, err := e.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, wrapNotFound(err, "session")
	}
	if session.IsCompleted() {
		return nil, fmt.Errorf("%w: session already completed", ErrConflict)
	}

	question, err := e.repo.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, wrapNotFound(err, "question")
	}
	if question.QuizID != session.QuizID {
		return nil, newValidationError("questionId", "does not belong to the session's quiz")
	}

	for _, existing := range interactions {
		if existing.QuestionID == questionID {
			return nil, fmt.Errorf("%w: question already answered in this session", ErrConflict)
		}
	}

	normalised := strings.ToUpper(strings.TrimSpace(selectedAnswer))
	if !isValidLabel(normalised) {
		return nil, newValidationError("selectedAnswer", "must be one of A, B, C, D")
	}

	correctLabel, err := question.CorrectLabel()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	isCorrect := normalised == correctLabel

	responses, err := e.buildResponseHistory(ctx, interactions, *question, isCorrect)
	if err != nil {
		return nil, fmt.Errorf("%w: rebuilding response history: %v", ErrInternal, err)
	}

	estimate := irt.EapEstimate(responses, e.priorMean, e.priorSd)

	pLearnedBefore, pLearnedAfter, newStates := DefaultPLearnedForUnknownKC, DefaultPLearnedForUnknownKC, session.KCStates
	if params, inCatalogue := e.catalogue[question.KC]; inCatalogue {
		state := e.kcState(session, question.KC, params)
		pLearnedBefore = state.PLearned

		nextState, err := bkt.UpdateKCState(state, isCorrect, params)
		if err != nil {
			return nil, &NumericError{Op: "SubmitAnswer", Err: err}
		}
		pLearnedAfter = nextState.PLearned

		newStates = cloneKCStates(session.KCStates)
		newStates[question.KC] = nextState
	}

	now := e.now()
	interaction := models.Interaction{
		ID:             e.newID(),
		SessionID:      sessionID,
		QuestionID:     questionID,
		SelectedAnswer: normalised,
		IsCorrect:      isCorrect,
		ResponseTimeMs: responseTimeMs,
		ThetaBefore:    session.Theta,
		ThetaAfter:     estimate.Theta,
		PLearnedBefore: pLearnedBefore,
		PLearnedAfter:  pLearnedAfter,
		CreatedAt:      now,
	}

	updatedSession := session.Clone()
	updatedSession.Theta = clampProbabilityFree(estimate.Theta)
	updatedSession.ThetaSd = math.Max(0, estimate.Sd)
	updatedSession.KCStates = newStates

	if err := e.repo.RecordAnswerAtomically(ctx, sessionID, interaction, updatedSession); err != nil {
		return nil, mapRepoWriteError(err)
	}

	isMastered := pLearnedAfter >= bkt.MasteryThreshold

	return &AnswerResult{
		IsCorrect:      isCorrect,
		CorrectLabel:   correctLabel,
		SelectedAnswer: normalised,
		Theta: ThetaSummary{
			Before:   round3(session.Theta),
			After:    round3(estimate.Theta),
			Delta:    round3(estimate.Theta - session.Theta),
			Sd:       round3(estimate.Sd),
			CI95Low:  round3(estimate.CI95Low),
			CI95High: round3(estimate.CI95High),
		},
		BKT: BKTSummary{
			KC:             question.KC,
			PLearnedBefore: round3(pLearnedBefore),
			PLearnedAfter:  round3(pLearnedAfter),
			IsMastered:     isMastered,
		},
		InteractionID: interaction.ID,
	}, nil
}

// Summary returns the KC mastery summary for a session (spec.md §4.2's
// "session summary" operation, surfaced here for the summary endpoint).
func (e *Engine) Summary(ctx context.Context, sessionID string) (bkt.Summary, *bkt.State, error) {
	session, _, err := e.repo.GetSession(ctx, sessionID)
	if err != nil {
		return bkt.Summary{}, nil, wrapNotFound(err, "session")
	}

	summary := bkt.Summarize(session.KCStates)
	if weakest, ok := bkt.WeakestUnmastered(session.KCStates); ok {
		return summary, &weakest, nil
	}
	return summary, nil, nil
}

func (e *Engine) kcState(session *models.Session, kc string, params bkt.Params) bkt.State {
	if state, ok := session.KCStates[kc]; ok {
		return state
	}
	return bkt.State{
		KCID:       kc,
		PLearned:   params.PL0,
		IsMastered: params.PL0 >= bkt.MasteryThreshold,
	}
}

// buildResponseHistory rebuilds the full (a,b,c,isCorrect) history needed
// by eapEstimate: one irt.Response per prior interaction plus the
// response just scored.
func (e *Engine) buildResponseHistory(ctx context.Context, interactions []models.Interaction, current models.Question, currentCorrect bool) ([]irt.Response, error) {
	responses := make([]irt.Response, 0, len(interactions)+1)
	for _, ia := range interactions {
		q, err := e.repo.GetQuestion(ctx, ia.QuestionID)
		if err != nil {
			return nil, err
		}
		responses = append(responses, irt.Response{
			Item:      irt.Item{A: q.A, B: q.B, C: q.C},
			IsCorrect: ia.IsCorrect,
		})
	}
	responses = append(responses, irt.Response{
		Item:      irt.Item{A: current.A, B: current.B, C: current.C},
		IsCorrect: currentCorrect,
	})
	return responses, nil
}

func answeredIDs(interactions []models.Interaction) map[string]struct{} {
	ids := make(map[string]struct{}, len(interactions))
	for _, ia := range interactions {
		ids[ia.QuestionID] = struct{}{}
	}
	return ids
}

func cloneKCStates(states map[string]bkt.State) map[string]bkt.State {
	out := make(map[string]bkt.State, len(states))
	for k, v := range states {
		out[k] = v
	}
	return out
}

func isValidLabel(label string) bool {
	for _, l := range models.AnswerLabels {
		if l == label {
			return true
		}
	}
	return false
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// clampProbabilityFree leaves theta unclamped: theta is a logit-scale
// ability, not a probability, so spec.md's "clamp to [0,1]" invariant
// does not apply to it directly (only to BKT's pLearned and to p3PL's
// output). Named for clarity at the call site.
func clampProbabilityFree(v float64) float64 {
	return v
}

func wrapNotFound(err error, what string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return fmt.Errorf("%w: looking up %s: %v", ErrInternal, what, err)
}

func mapRepoWriteError(err error) error {
	switch {
	case errors.Is(err, repository.ErrSessionCompleted):
		return fmt.Errorf("%w: session already completed", ErrConflict)
	case errors.Is(err, repository.ErrDuplicateAnswer):
		return fmt.Errorf("%w: question already answered in this session", ErrConflict)
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: session", ErrNotFound)
	default:
		return fmt.Errorf("%w: recording answer: %v", ErrInternal, err)
	}
}
