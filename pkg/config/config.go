// Package config loads the assessment catalogue (quizzes, questions, and
// per-knowledge-component BKT parameters) plus engine-wide defaults from
// YAML, generalising pkg/config/loader.go's merge-builtin-with-user-YAML
// shape from TARSy's agent/chain/MCP-server registries to a quiz
// catalogue. Unlike the teacher, configuration here describes content
// (questions and KC parameters), not wiring, so there is a single
// registry rather than four.
package config

import "github.com/codeready-toolchain/quizkernel/pkg/bkt"

// Config is the umbrella object returned by Initialize: everything the
// session engine needs to serve a quiz, assembled from the catalogue
// file(s) plus built-in defaults.
type Config struct {
	configDir string

	// Engine holds the IRT/BKT constants a deployment may override; a nil
	// field on an EngineDefaults means "use the package default" (see
	// pkg/irt.DefaultPriorMean, pkg/irt.DefaultPriorSd).
	Engine EngineDefaults

	Quizzes             map[string]QuizConfig
	KnowledgeComponents bkt.Catalogue
}

// ConfigDir returns the directory the catalogue was loaded from.
func (c *Config) ConfigDir() string {
	return c.configDir
}

// ConfigStats summarises a loaded catalogue for startup logging.
type ConfigStats struct {
	Quizzes             int
	Questions           int
	KnowledgeComponents int
}

// Stats returns catalogue statistics for logging/monitoring.
func (c *Config) Stats() ConfigStats {
	questions := 0
	for _, q := range c.Quizzes {
		questions += len(q.Questions)
	}
	return ConfigStats{
		Quizzes:             len(c.Quizzes),
		Questions:           questions,
		KnowledgeComponents: len(c.KnowledgeComponents),
	}
}

// GetQuiz retrieves a quiz's catalogue entry by id.
func (c *Config) GetQuiz(quizID string) (*QuizConfig, error) {
	q, ok := c.Quizzes[quizID]
	if !ok {
		return nil, NewValidationError("quiz", quizID, "", ErrQuizNotFound)
	}
	return &q, nil
}
