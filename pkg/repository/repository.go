// Package repository defines the abstract persistence contract the
// session engine (pkg/kernel) depends on. Concrete implementations live
// in pkg/repository/memory (in-process, test/demo) and
// pkg/repository/postgres (production).
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/codeready-toolchain/quizkernel/pkg/models"
)

// ErrNotFound is returned by any lookup whose entity does not exist.
var ErrNotFound = errors.New("repository: not found")

// ErrSessionCompleted is returned by RecordAnswerAtomically when the
// session is already in its terminal state.
var ErrSessionCompleted = errors.New("repository: session already completed")

// ErrDuplicateAnswer is returned by RecordAnswerAtomically when the
// session already has an interaction for the given question.
var ErrDuplicateAnswer = errors.New("repository: question already answered in this session")

// Repository is the storage contract from spec.md §6. Every method takes
// a context so the caller can bound I/O; all of the kernel's math is
// synchronous and CPU-bound and never blocks.
type Repository interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetQuiz(ctx context.Context, id string) (*models.Quiz, error)
	GetQuestion(ctx context.Context, id string) (*models.Question, error)
	ListQuestionsForQuiz(ctx context.Context, quizID string) ([]models.Question, error)

	// GetSession returns the session with its prior interactions
	// attached, ordered ascending by CreatedAt.
	GetSession(ctx context.Context, id string) (*models.Session, []models.Interaction, error)

	CreateSession(ctx context.Context, initial models.Session) (*models.Session, error)

	// RecordAnswerAtomically appends interaction and overwrites the
	// session's mutable fields in a single transaction: both succeed or
	// neither does. Implementations must serialise concurrent callers on
	// the same sessionID (e.g. SELECT ... FOR UPDATE, a per-session
	// mutex, or equivalent) so that the "no duplicate answer" invariant
	// holds under concurrency.
	RecordAnswerAtomically(ctx context.Context, sessionID string, interaction models.Interaction, update models.Session) error

	// CompleteSession marks a session terminal without an accompanying
	// interaction write. The engine completes sessions only through this
	// method, from SelectNext once every quiz question has an interaction;
	// SubmitAnswer does not complete a session, even on the last question.
	CompleteSession(ctx context.Context, sessionID string, completedAt time.Time) (*models.Session, error)
}
