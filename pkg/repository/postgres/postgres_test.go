package postgres_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/codeready-toolchain/quizkernel/pkg/bkt"
	"github.com/codeready-toolchain/quizkernel/pkg/models"
	"github.com/codeready-toolchain/quizkernel/pkg/repository"
	"github.com/codeready-toolchain/quizkernel/pkg/repository/postgres"
)

// PostgresSuite spins up a single testcontainer for the whole suite (the
// same "shared local container, per-CI-env fallback" shape as
// test/database/client.go's NewTestClient), since each test case only
// needs its own rows, not its own schema.
type PostgresSuite struct {
	suite.Suite
	store *postgres.Store
	pool  *pgxpool.Pool
}

func TestPostgresSuite(t *testing.T) {
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupSuite() {
	ctx := context.Background()

	connStr := os.Getenv("CI_DATABASE_URL")
	if connStr == "" {
		s.T().Log("using testcontainers for PostgreSQL")
		container, err := tcpostgres.Run(ctx,
			"postgres:16-alpine",
			tcpostgres.WithDatabase("quizkernel_test"),
			tcpostgres.WithUsername("test"),
			tcpostgres.WithPassword("test"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second)),
		)
		require.NoError(s.T(), err)
		s.T().Cleanup(func() {
			require.NoError(s.T(), testcontainers.TerminateContainer(container))
		})

		connStr, err = container.ConnectionString(ctx, "sslmode=disable")
		require.NoError(s.T(), err)
	}

	require.NoError(s.T(), postgres.Migrate(connStr))

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(s.T(), err)
	s.pool = pool
	s.store = postgres.New(pool)
}

func (s *PostgresSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *PostgresSuite) SetupTest() {
	ctx := context.Background()
	_, err := s.pool.Exec(ctx, `TRUNCATE interactions, sessions, questions, quizzes, users CASCADE`)
	require.NoError(s.T(), err)
}

func (s *PostgresSuite) seedQuiz(ctx context.Context, quizID string) models.Question {
	_, err := s.pool.Exec(ctx, `INSERT INTO quizzes (id, title) VALUES ($1, $2)`, quizID, "Test Quiz")
	require.NoError(s.T(), err)

	question := models.Question{
		ID:     "q-1",
		QuizID: quizID,
		Stem:   "2 + 2?",
		Options: [4]models.Option{
			{Label: "A", Text: "3"},
			{Label: "B", Text: "4", IsCorrect: true},
			{Label: "C", Text: "5"},
			{Label: "D", Text: "6"},
		},
		A: 1.0, B: 0.0, C: 0.25, Bloom: 1, KC: "arithmetic", Order: 0,
	}
	optionsJSON, err := json.Marshal(question.Options)
	require.NoError(s.T(), err)
	_, err = s.pool.Exec(ctx,
		`INSERT INTO questions (id, quiz_id, stem, options, a, b, c, bloom, kc, "order")
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		question.ID, question.QuizID, question.Stem, optionsJSON, question.A, question.B, question.C,
		question.Bloom, question.KC, question.Order)
	require.NoError(s.T(), err)
	return question
}

func (s *PostgresSuite) TestGetQuizAndQuestion_RoundTrip() {
	ctx := context.Background()
	question := s.seedQuiz(ctx, "quiz-1")

	quiz, err := s.store.GetQuiz(ctx, "quiz-1")
	require.NoError(s.T(), err)
	s.Equal("Test Quiz", quiz.Title)

	got, err := s.store.GetQuestion(ctx, question.ID)
	require.NoError(s.T(), err)
	s.Equal(question.Stem, got.Stem)
	label, err := got.CorrectLabel()
	require.NoError(s.T(), err)
	s.Equal("B", label)
}

func (s *PostgresSuite) TestGetQuiz_NotFoundIsErrNotFound() {
	_, err := s.store.GetQuiz(context.Background(), "missing")
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *PostgresSuite) TestCreateSessionAndRecordAnswerAtomically() {
	ctx := context.Background()
	s.seedQuiz(ctx, "quiz-1")

	session := models.Session{
		ID: "sess-1", UserID: "u-1", QuizID: "quiz-1", Condition: models.ConditionAdaptive,
		StartedAt: time.Now(), Theta: -0.78, ThetaSd: 0.543,
		KCStates: map[string]bkt.State{"arithmetic": {KCID: "arithmetic", PLearned: 0.5}},
	}
	created, err := s.store.CreateSession(ctx, session)
	require.NoError(s.T(), err)
	s.False(created.IsCompleted())

	interaction := models.Interaction{
		ID: "in-1", SessionID: "sess-1", QuestionID: "q-1", SelectedAnswer: "B", IsCorrect: true,
		ResponseTimeMs: 1200, ThetaBefore: -0.78, ThetaAfter: -0.40,
		PLearnedBefore: 0.5, PLearnedAfter: 0.8, CreatedAt: time.Now(),
	}
	update := session
	update.Theta = -0.40
	update.KCStates = map[string]bkt.State{"arithmetic": {KCID: "arithmetic", PLearned: 0.8}}

	require.NoError(s.T(), s.store.RecordAnswerAtomically(ctx, "sess-1", interaction, update))

	got, interactions, err := s.store.GetSession(ctx, "sess-1")
	require.NoError(s.T(), err)
	s.InDelta(-0.40, got.Theta, 1e-9)
	require.Len(s.T(), interactions, 1)
	s.Equal("q-1", interactions[0].QuestionID)

	// A second answer to the same question is rejected.
	err = s.store.RecordAnswerAtomically(ctx, "sess-1", interaction, update)
	s.ErrorIs(err, repository.ErrDuplicateAnswer)
}

func (s *PostgresSuite) TestCompleteSession() {
	ctx := context.Background()
	s.seedQuiz(ctx, "quiz-1")
	_, err := s.store.CreateSession(ctx, models.Session{
		ID: "sess-2", UserID: "u-1", QuizID: "quiz-1", Condition: models.ConditionStatic,
		StartedAt: time.Now(), KCStates: map[string]bkt.State{},
	})
	require.NoError(s.T(), err)

	completed, err := s.store.CompleteSession(ctx, "sess-2", time.Now())
	require.NoError(s.T(), err)
	s.True(completed.IsCompleted())

	got, _, err := s.store.GetSession(ctx, "sess-2")
	require.NoError(s.T(), err)
	s.True(got.IsCompleted())
}
