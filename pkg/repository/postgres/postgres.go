// Package postgres is the production Repository implementation backed
// by PostgreSQL via pgx/v5, generalised from pkg/database/client.go's
// connection-pooling shape and pkg/services/session_service.go's
// transactional-write pattern. Unlike the teacher, there is no Ent
// client here: the generated client was never retrieved alongside
// ent/schema/*.go, so this package talks to Postgres with hand-written
// SQL and golang-migrate-managed migrations instead (see migrate.go).
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/codeready-toolchain/quizkernel/pkg/bkt"
	"github.com/codeready-toolchain/quizkernel/pkg/models"
	"github.com/codeready-toolchain/quizkernel/pkg/repository"
)

// Store is a Repository backed by a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps an already-connected pool. Callers are responsible for
// running Migrate against the same DSN before serving traffic.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx, `SELECT id FROM users WHERE id = $1`, id).Scan(&u.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get user: %w", err)
	}
	return &u, nil
}

func (s *Store) GetQuiz(ctx context.Context, id string) (*models.Quiz, error) {
	var q models.Quiz
	err := s.pool.QueryRow(ctx, `SELECT id, title FROM quizzes WHERE id = $1`, id).Scan(&q.ID, &q.Title)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get quiz: %w", err)
	}
	return &q, nil
}

func (s *Store) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, quiz_id, stem, options, a, b, c, bloom, kc, "order" FROM questions WHERE id = $1`, id)
	q, err := scanQuestion(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get question: %w", err)
	}
	return q, nil
}

func (s *Store) ListQuestionsForQuiz(ctx context.Context, quizID string) ([]models.Question, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, quiz_id, stem, options, a, b, c, bloom, kc, "order" FROM questions WHERE quiz_id = $1 ORDER BY "order"`, quizID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list questions: %w", err)
	}
	defer rows.Close()

	var out []models.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan question: %w", err)
		}
		out = append(out, *q)
	}
	return out, rows.Err()
}

func (s *Store) GetSession(ctx context.Context, id string) (*models.Session, []models.Interaction, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, user_id, quiz_id, condition, started_at, completed_at, theta, theta_sd, kc_states
		 FROM sessions WHERE id = $1`, id)
	session, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: get session: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, session_id, question_id, selected_answer, is_correct, response_time_ms,
		        theta_before, theta_after, p_learned_before, p_learned_after, created_at
		 FROM interactions WHERE session_id = $1 ORDER BY created_at ASC`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: list interactions: %w", err)
	}
	defer rows.Close()

	var interactions []models.Interaction
	for rows.Next() {
		in, err := scanInteraction(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: scan interaction: %w", err)
		}
		interactions = append(interactions, *in)
	}
	return session, interactions, rows.Err()
}

func (s *Store) CreateSession(ctx context.Context, initial models.Session) (*models.Session, error) {
	kcStates, err := json.Marshal(initial.KCStates)
	if err != nil {
		return nil, fmt.Errorf("postgres: marshal kc states: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO sessions (id, user_id, quiz_id, condition, started_at, completed_at, theta, theta_sd, kc_states)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		initial.ID, initial.UserID, initial.QuizID, string(initial.Condition),
		initial.StartedAt, initial.CompletedAt, initial.Theta, initial.ThetaSd, kcStates)
	if err != nil {
		return nil, fmt.Errorf("postgres: create session: %w", err)
	}

	created := initial.Clone()
	return &created, nil
}

func (s *Store) CompleteSession(ctx context.Context, sessionID string, completedAt time.Time) (*models.Session, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx,
		`SELECT id, user_id, quiz_id, condition, started_at, completed_at, theta, theta_sd, kc_states
		 FROM sessions WHERE id = $1 FOR UPDATE`, sessionID)
	session, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get session for complete: %w", err)
	}

	if !session.IsCompleted() {
		if _, err := tx.Exec(ctx, `UPDATE sessions SET completed_at = $1 WHERE id = $2`, completedAt, sessionID); err != nil {
			return nil, fmt.Errorf("postgres: complete session: %w", err)
		}
		session.CompletedAt = &completedAt
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("postgres: commit complete session: %w", err)
	}
	return session, nil
}

// RecordAnswerAtomically serialises concurrent writers for sessionID
// with SELECT ... FOR UPDATE, the row-lock equivalent of
// pkg/repository/memory's per-session mutex: the first transaction to
// lock the row observes the pre-update state and commits; any
// concurrent caller blocks until that commit, then sees the session
// already updated and the duplicate-answer check fails closed.
func (s *Store) RecordAnswerAtomically(ctx context.Context, sessionID string, interaction models.Interaction, update models.Session) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var completedAt *time.Time
	err = tx.QueryRow(ctx, `SELECT completed_at FROM sessions WHERE id = $1 FOR UPDATE`, sessionID).Scan(&completedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("postgres: lock session: %w", err)
	}
	if completedAt != nil {
		return repository.ErrSessionCompleted
	}

	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM interactions WHERE session_id = $1 AND question_id = $2)`,
		sessionID, interaction.QuestionID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("postgres: check duplicate answer: %w", err)
	}
	if exists {
		return repository.ErrDuplicateAnswer
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO interactions (id, session_id, question_id, selected_answer, is_correct, response_time_ms,
		                            theta_before, theta_after, p_learned_before, p_learned_after, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		interaction.ID, interaction.SessionID, interaction.QuestionID, interaction.SelectedAnswer, interaction.IsCorrect,
		interaction.ResponseTimeMs, interaction.ThetaBefore, interaction.ThetaAfter,
		interaction.PLearnedBefore, interaction.PLearnedAfter, interaction.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: insert interaction: %w", err)
	}

	kcStates, err := json.Marshal(update.KCStates)
	if err != nil {
		return fmt.Errorf("postgres: marshal kc states: %w", err)
	}
	_, err = tx.Exec(ctx,
		`UPDATE sessions SET theta = $1, theta_sd = $2, kc_states = $3, completed_at = $4 WHERE id = $5`,
		update.Theta, update.ThetaSd, kcStates, update.CompletedAt, sessionID)
	if err != nil {
		return fmt.Errorf("postgres: update session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit record answer: %w", err)
	}
	return nil
}

// queryRower is the subset of pgx.Row / pgx.Rows the scan* helpers
// need, so the same scan* functions serve both a single
// QueryRow result and a Query row cursor.
type queryRower interface {
	Scan(dest ...any) error
}

func scanQuestion(row queryRower) (*models.Question, error) {
	var q models.Question
	var optionsJSON []byte
	if err := row.Scan(&q.ID, &q.QuizID, &q.Stem, &optionsJSON, &q.A, &q.B, &q.C, &q.Bloom, &q.KC, &q.Order); err != nil {
		return nil, err
	}
	var options [4]models.Option
	if err := json.Unmarshal(optionsJSON, &options); err != nil {
		return nil, fmt.Errorf("unmarshal options: %w", err)
	}
	q.Options = options
	return &q, nil
}

func scanSession(row queryRower) (*models.Session, error) {
	var s models.Session
	var condition string
	var kcStatesJSON []byte
	if err := row.Scan(&s.ID, &s.UserID, &s.QuizID, &condition, &s.StartedAt, &s.CompletedAt, &s.Theta, &s.ThetaSd, &kcStatesJSON); err != nil {
		return nil, err
	}
	s.Condition = models.Condition(condition)
	var kcStates map[string]bkt.State
	if err := json.Unmarshal(kcStatesJSON, &kcStates); err != nil {
		return nil, fmt.Errorf("unmarshal kc states: %w", err)
	}
	s.KCStates = kcStates
	return &s, nil
}

func scanInteraction(row queryRower) (*models.Interaction, error) {
	var in models.Interaction
	if err := row.Scan(&in.ID, &in.SessionID, &in.QuestionID, &in.SelectedAnswer, &in.IsCorrect, &in.ResponseTimeMs,
		&in.ThetaBefore, &in.ThetaAfter, &in.PLearnedBefore, &in.PLearnedAfter, &in.CreatedAt); err != nil {
		return nil, err
	}
	return &in, nil
}
