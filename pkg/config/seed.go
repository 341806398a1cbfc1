package config

import "github.com/codeready-toolchain/quizkernel/pkg/repository/memory"

// SeedMemoryStore populates an in-process Store with every quiz and
// question in the catalogue. It does not seed users: user identity is
// out of the kernel's scope (see models.User), so callers seed users
// separately as they are created.
func (c *Config) SeedMemoryStore(store *memory.Store) {
	for _, quiz := range c.Quizzes {
		store.SeedQuiz(quiz.Quiz)
		for _, question := range quiz.Questions {
			store.SeedQuestion(question)
		}
	}
}
