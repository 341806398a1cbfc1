package kernel

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/codeready-toolchain/quizkernel/pkg/bkt"
	"github.com/codeready-toolchain/quizkernel/pkg/models"
	"github.com/codeready-toolchain/quizkernel/pkg/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedUKGeography builds the seed scenario from spec.md §8: a 5-question
// UK-Geography bank with b in {-0.80, -1.50, -0.60, 0.20, 0.50}, one user,
// one quiz, and the UK_capitals KC params from scenario D.
func seedUKGeography(t *testing.T) (*memory.Store, bkt.Catalogue) {
	t.Helper()
	store := memory.New()

	store.SeedUser(models.User{ID: "user-1"})
	store.SeedQuiz(models.Quiz{ID: "quiz-uk-geo", Title: "UK Geography"})

	questions := []models.Question{
		{ID: "q-001", QuizID: "quiz-uk-geo", Stem: "Capital of Scotland?", A: 1.2, B: -0.80, C: 0.25, Bloom: 1, KC: "UK_capitals", Order: 1,
			Options: Option4("Glasgow", "Edinburgh", "Aberdeen", "Dundee", 1)},
		{ID: "q-002", QuizID: "quiz-uk-geo", Stem: "Capital of England?", A: 1.2, B: -1.50, C: 0.25, Bloom: 1, KC: "UK_capitals", Order: 2,
			Options: Option4("Manchester", "Birmingham", "London", "Leeds", 2)},
		{ID: "q-003", QuizID: "quiz-uk-geo", Stem: "Longest river in the UK?", A: 1.2, B: -0.60, C: 0.25, Bloom: 2, KC: "UK_rivers", Order: 3,
			Options: Option4("Severn", "Thames", "Trent", "Tyne", 0)},
		{ID: "q-004", QuizID: "quiz-uk-geo", Stem: "River through York?", A: 1.2, B: 0.20, C: 0.25, Bloom: 2, KC: "UK_rivers", Order: 4,
			Options: Option4("Ouse", "Dee", "Avon", "Exe", 0)},
		{ID: "q-005", QuizID: "quiz-uk-geo", Stem: "Capital of Wales?", A: 1.2, B: 0.50, C: 0.25, Bloom: 3, KC: "UK_capitals", Order: 5,
			Options: Option4("Swansea", "Cardiff", "Newport", "Wrexham", 1)},
	}
	for _, q := range questions {
		store.SeedQuestion(q)
	}

	catalogue := bkt.Catalogue{
		"UK_capitals": {PL0: 0.60, PT: 0.25, PS: 0.08, PG: 0.25},
		"UK_rivers":   {PL0: 0.40, PT: 0.20, PS: 0.10, PG: 0.20},
	}

	return store, catalogue
}

// Option4 builds a [4]models.Option with labels A-D and the correct
// index marked. Test-only helper.
func Option4(a, b, c, d string, correctIdx int) [4]models.Option {
	texts := [4]string{a, b, c, d}
	var opts [4]models.Option
	for i, label := range models.AnswerLabels {
		opts[i] = models.Option{Label: label, Text: texts[i], IsCorrect: i == correctIdx}
	}
	return opts
}

func newEngine(t *testing.T, store *memory.Store, catalogue bkt.Catalogue) *Engine {
	t.Helper()
	var counter int64
	return NewEngine(store, catalogue,
		WithIDGenerator(func() string {
			n := atomic.AddInt64(&counter, 1)
			return "id-" + strconv.FormatInt(n, 10)
		}),
	)
}

// Scenario A: session bootstrap.
func TestEngine_ScenarioA_SessionBootstrap(t *testing.T) {
	store, catalogue := seedUKGeography(t)
	engine := newEngine(t, store, catalogue)

	session, err := engine.CreateSession(context.Background(), "user-1", "quiz-uk-geo", models.ConditionAdaptive)
	require.NoError(t, err)

	assert.InDelta(t, -0.780, session.Theta, 1e-9)
	assert.InDelta(t, 0.543, session.ThetaSd, 1e-9)
	assert.Equal(t, models.ConditionAdaptive, session.Condition)
	assert.Len(t, session.KCStates, 2)
}

// Scenario B: adaptive first pick is q-002.
func TestEngine_ScenarioB_AdaptiveFirstPick(t *testing.T) {
	store, catalogue := seedUKGeography(t)
	engine := newEngine(t, store, catalogue)
	ctx := context.Background()

	session, err := engine.CreateSession(ctx, "user-1", "quiz-uk-geo", models.ConditionAdaptive)
	require.NoError(t, err)

	outcome, err := engine.SelectNext(ctx, session.ID)
	require.NoError(t, err)
	require.False(t, outcome.Completed)
	assert.Equal(t, "q-002", outcome.Question.ID)
}

// Scenario C: correct answer updates theta upward.
func TestEngine_ScenarioC_CorrectAnswerIncreasesTheta(t *testing.T) {
	store, catalogue := seedUKGeography(t)
	engine := newEngine(t, store, catalogue)
	ctx := context.Background()

	session, err := engine.CreateSession(ctx, "user-1", "quiz-uk-geo", models.ConditionAdaptive)
	require.NoError(t, err)

	result, err := engine.SubmitAnswer(ctx, session.ID, "q-002", "c", 1500)
	require.NoError(t, err)

	assert.True(t, result.IsCorrect)
	assert.Equal(t, "C", result.CorrectLabel)
	assert.Greater(t, result.Theta.After, result.Theta.Before)
	assert.Greater(t, result.Theta.Delta, 0.0)
	assert.LessOrEqual(t, result.Theta.CI95Low, result.Theta.After)
	assert.GreaterOrEqual(t, result.Theta.CI95High, result.Theta.After)
}

// Scenario D: BKT transition numbers for UK_capitals.
func TestEngine_ScenarioD_BKTTransition(t *testing.T) {
	store, catalogue := seedUKGeography(t)
	engine := newEngine(t, store, catalogue)
	ctx := context.Background()

	session, err := engine.CreateSession(ctx, "user-1", "quiz-uk-geo", models.ConditionAdaptive)
	require.NoError(t, err)

	result, err := engine.SubmitAnswer(ctx, session.ID, "q-002", "C", 1000)
	require.NoError(t, err)

	assert.InDelta(t, 0.60, result.BKT.PLearnedBefore, 1e-6)
	assert.InDelta(t, 0.885, result.BKT.PLearnedAfter, 1e-3)
	assert.False(t, result.BKT.IsMastered)
}

// Scenario E: duplicate answer is rejected.
func TestEngine_ScenarioE_DuplicateAnswerRejected(t *testing.T) {
	store, catalogue := seedUKGeography(t)
	engine := newEngine(t, store, catalogue)
	ctx := context.Background()

	session, err := engine.CreateSession(ctx, "user-1", "quiz-uk-geo", models.ConditionAdaptive)
	require.NoError(t, err)

	_, err = engine.SubmitAnswer(ctx, session.ID, "q-002", "C", 1000)
	require.NoError(t, err)

	_, err = engine.SubmitAnswer(ctx, session.ID, "q-002", "A", 1000)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
}

// Scenario F: session completion after all items answered.
func TestEngine_ScenarioF_SessionCompletion(t *testing.T) {
	store, catalogue := seedUKGeography(t)
	engine := newEngine(t, store, catalogue)
	ctx := context.Background()

	session, err := engine.CreateSession(ctx, "user-1", "quiz-uk-geo", models.ConditionStatic)
	require.NoError(t, err)

	answers := map[string]string{
		"q-001": "B", "q-002": "C", "q-003": "B", "q-004": "A", "q-005": "B",
	}
	for i := 0; i < 5; i++ {
		outcome, err := engine.SelectNext(ctx, session.ID)
		require.NoError(t, err)
		require.False(t, outcome.Completed)

		_, err = engine.SubmitAnswer(ctx, session.ID, outcome.Question.ID, answers[outcome.Question.ID], 1000)
		require.NoError(t, err)
	}

	outcome, err := engine.SelectNext(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, outcome.Completed)
	assert.Equal(t, 5, outcome.TotalAnswered)

	// A further submitAnswer on a completed session is a Conflict.
	_, err = engine.SubmitAnswer(ctx, session.ID, "q-001", "B", 1000)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)

	// A further SelectNext call never mutates again: calling it twice
	// returns the same completed payload.
	outcome2, err := engine.SelectNext(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, outcome2.Completed)
}

func TestEngine_CreateSession_UnknownUserIsNotFound(t *testing.T) {
	store, catalogue := seedUKGeography(t)
	engine := newEngine(t, store, catalogue)

	_, err := engine.CreateSession(context.Background(), "ghost", "quiz-uk-geo", models.ConditionAdaptive)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEngine_CreateSession_InvalidConditionIsInvalidArgument(t *testing.T) {
	store, catalogue := seedUKGeography(t)
	engine := newEngine(t, store, catalogue)

	_, err := engine.CreateSession(context.Background(), "user-1", "quiz-uk-geo", "bogus")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestEngine_SubmitAnswer_WrongQuizIsInvalidArgument(t *testing.T) {
	store, catalogue := seedUKGeography(t)
	store.SeedQuiz(models.Quiz{ID: "other-quiz"})
	store.SeedQuestion(models.Question{ID: "other-q", QuizID: "other-quiz", A: 1, B: 0, C: 0.2, Order: 1,
		Options: Option4("a", "b", "c", "d", 0)})
	engine := newEngine(t, store, catalogue)
	ctx := context.Background()

	session, err := engine.CreateSession(ctx, "user-1", "quiz-uk-geo", models.ConditionAdaptive)
	require.NoError(t, err)

	_, err = engine.SubmitAnswer(ctx, session.ID, "other-q", "A", 1000)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestEngine_SubmitAnswer_UnknownKCUsesDefaultPLearned(t *testing.T) {
	store, catalogue := seedUKGeography(t)
	store.SeedQuestion(models.Question{ID: "q-orphan", QuizID: "quiz-uk-geo", A: 1, B: 0, C: 0.2, Order: 6, KC: "no_such_kc",
		Options: Option4("a", "b", "c", "d", 0)})
	engine := newEngine(t, store, catalogue)
	ctx := context.Background()

	session, err := engine.CreateSession(ctx, "user-1", "quiz-uk-geo", models.ConditionAdaptive)
	require.NoError(t, err)

	result, err := engine.SubmitAnswer(ctx, session.ID, "q-orphan", "A", 1000)
	require.NoError(t, err)

	assert.Equal(t, DefaultPLearnedForUnknownKC, result.BKT.PLearnedBefore)
	assert.Equal(t, DefaultPLearnedForUnknownKC, result.BKT.PLearnedAfter)
}

// Concurrent submitAnswer on the same (session, question): exactly one
// succeeds.
func TestEngine_ConcurrentSubmitAnswer_ExactlyOneWins(t *testing.T) {
	store, catalogue := seedUKGeography(t)
	engine := newEngine(t, store, catalogue)
	ctx := context.Background()

	session, err := engine.CreateSession(ctx, "user-1", "quiz-uk-geo", models.ConditionAdaptive)
	require.NoError(t, err)

	const n = 8
	var wg sync.WaitGroup
	results := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := engine.SubmitAnswer(ctx, session.ID, "q-002", "C", 1000)
			results[i] = err
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
		} else {
			assert.True(t, errors.Is(err, ErrConflict))
		}
	}
	assert.Equal(t, 1, successes)
}

func TestEngine_Summary_ReturnsOverallProgressAndWeakest(t *testing.T) {
	store, catalogue := seedUKGeography(t)
	engine := newEngine(t, store, catalogue)
	ctx := context.Background()

	session, err := engine.CreateSession(ctx, "user-1", "quiz-uk-geo", models.ConditionAdaptive)
	require.NoError(t, err)

	summary, weakest, err := engine.Summary(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total)
	require.NotNil(t, weakest)
	assert.Equal(t, "UK_rivers", weakest.KCID) // lower pL0 (0.40 < 0.60)
}
