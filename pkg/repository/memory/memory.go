// Package memory is an in-process Repository implementation, generalised
// from pkg/session/manager.go's map[string]*Session + sync.RWMutex
// pattern to the full §6 repository surface (users, quizzes, questions,
// sessions, interactions). It backs unit tests and local demo seeding;
// pkg/repository/postgres is the production implementation.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/codeready-toolchain/quizkernel/pkg/models"
	"github.com/codeready-toolchain/quizkernel/pkg/repository"
)

// Store is an in-memory Repository. All entity maps are guarded by a
// single RWMutex for reads/writes to the catalogue (users, quizzes,
// questions) and session/interaction rows; recordAnswerAtomically
// additionally serialises per-session writers through sessionLocks, the
// same role pkg/session/types.go's per-Session sync.RWMutex plays in the
// teacher, generalised to a registry rather than an embedded field
// because Store, not models.Session, owns concurrency control here.
type Store struct {
	mu sync.RWMutex

	users     map[string]models.User
	quizzes   map[string]models.Quiz
	questions map[string]models.Question
	// quizQuestionOrder preserves each quiz's authored question order.
	quizQuestionOrder map[string][]string

	sessions     map[string]models.Session
	interactions map[string][]models.Interaction

	lockMu       sync.Mutex
	sessionLocks map[string]*sync.Mutex
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		users:             make(map[string]models.User),
		quizzes:           make(map[string]models.Quiz),
		questions:         make(map[string]models.Question),
		quizQuestionOrder: make(map[string][]string),
		sessions:          make(map[string]models.Session),
		interactions:      make(map[string][]models.Interaction),
		sessionLocks:      make(map[string]*sync.Mutex),
	}
}

// SeedUser, SeedQuiz, and SeedQuestion populate the read-only catalogue.
// They are not part of the Repository interface: seeding is a test/demo
// concern, not something the session engine needs.
func (s *Store) SeedUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *Store) SeedQuiz(q models.Quiz) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[q.ID] = q
}

func (s *Store) SeedQuestion(q models.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions[q.ID] = q
	order := s.quizQuestionOrder[q.QuizID]
	for _, id := range order {
		if id == q.ID {
			return
		}
	}
	s.quizQuestionOrder[q.QuizID] = append(order, q.ID)
}

func (s *Store) GetUser(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetQuiz(_ context.Context, id string) (*models.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quizzes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &q, nil
}

func (s *Store) GetQuestion(_ context.Context, id string) (*models.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.questions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &q, nil
}

func (s *Store) ListQuestionsForQuiz(_ context.Context, quizID string) ([]models.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := append([]string(nil), s.quizQuestionOrder[quizID]...)
	sort.SliceStable(ids, func(i, j int) bool {
		return s.questions[ids[i]].Order < s.questions[ids[j]].Order
	})

	out := make([]models.Question, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.questions[id])
	}
	return out, nil
}

func (s *Store) GetSession(_ context.Context, id string) (*models.Session, []models.Interaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, nil, repository.ErrNotFound
	}
	clone := session.Clone()

	interactions := append([]models.Interaction(nil), s.interactions[id]...)
	sort.Slice(interactions, func(i, j int) bool {
		return interactions[i].CreatedAt.Before(interactions[j].CreatedAt)
	})

	return &clone, interactions, nil
}

func (s *Store) CreateSession(_ context.Context, initial models.Session) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := initial.Clone()
	s.sessions[stored.ID] = stored

	created := stored.Clone()
	return &created, nil
}

func (s *Store) CompleteSession(_ context.Context, sessionID string, completedAt time.Time) (*models.Session, error) {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if session.IsCompleted() {
		updated := session.Clone()
		return &updated, nil
	}

	t := completedAt
	session.CompletedAt = &t
	s.sessions[sessionID] = session

	updated := session.Clone()
	return &updated, nil
}

// RecordAnswerAtomically serialises writers for a single sessionID via a
// per-session mutex (mirroring pkg/session/types.go's embedded
// sync.RWMutex on each live Session) and then takes the store-wide lock
// only long enough to check the duplicate-answer invariant and commit
// both writes. The per-session mutex is what makes "exactly one
// concurrent submitAnswer wins" true: it is acquired before the
// completed/duplicate checks, so a losing goroutine always observes the
// winner's committed state.
func (s *Store) RecordAnswerAtomically(_ context.Context, sessionID string, interaction models.Interaction, update models.Session) error {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.sessions[sessionID]
	if !ok {
		return repository.ErrNotFound
	}
	if current.IsCompleted() {
		return repository.ErrSessionCompleted
	}
	for _, existing := range s.interactions[sessionID] {
		if existing.QuestionID == interaction.QuestionID {
			return repository.ErrDuplicateAnswer
		}
	}

	s.interactions[sessionID] = append(s.interactions[sessionID], interaction)
	s.sessions[sessionID] = update.Clone()

	return nil
}

func (s *Store) sessionLock(sessionID string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()

	lock, ok := s.sessionLocks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.sessionLocks[sessionID] = lock
	}
	return lock
}
