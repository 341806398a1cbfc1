package config

import "fmt"

// validate checks catalogue-wide invariants that toModels cannot check
// per-question: every quiz has at least one question, and every
// question's IRT parameters are in their valid ranges. A question
// referencing an unknown knowledge component is deliberately NOT an
// error here: pkg/kernel falls back to a default prior for any KC absent
// from the catalogue, so an uncalibrated KC is a content gap, not a
// structural one.
func validate(cfg *Config) error {
	if len(cfg.Quizzes) == 0 {
		return NewValidationError("catalogue", "", "", fmt.Errorf("%w: no quizzes defined", ErrMissingRequiredField))
	}

	for quizID, quiz := range cfg.Quizzes {
		if len(quiz.Questions) == 0 {
			return NewValidationError("quiz", quizID, "questions", fmt.Errorf("%w: quiz has no questions", ErrMissingRequiredField))
		}
		for _, q := range quiz.Questions {
			if q.A <= 0 {
				return NewValidationError("question", q.ID, "a", fmt.Errorf("%w: discrimination must be > 0, got %v", ErrInvalidValue, q.A))
			}
			if q.C < 0 || q.C >= 1 {
				return NewValidationError("question", q.ID, "c", fmt.Errorf("%w: guessing must be in [0, 1), got %v", ErrInvalidValue, q.C))
			}
			if q.Bloom < 1 || q.Bloom > 3 {
				return NewValidationError("question", q.ID, "bloom", fmt.Errorf("%w: bloom level must be 1-3, got %v", ErrInvalidValue, q.Bloom))
			}
		}
	}

	for kcID, p := range cfg.KnowledgeComponents {
		if err := validateProbability(kcID, "pl0", p.PL0); err != nil {
			return err
		}
		if err := validateProbability(kcID, "pt", p.PT); err != nil {
			return err
		}
		if err := validateProbability(kcID, "ps", p.PS); err != nil {
			return err
		}
		if err := validateProbability(kcID, "pg", p.PG); err != nil {
			return err
		}
	}

	return nil
}

func validateProbability(kcID, field string, v float64) error {
	if v < 0 || v > 1 {
		return NewValidationError("knowledge_component", kcID, field, fmt.Errorf("%w: must be in [0, 1], got %v", ErrInvalidValue, v))
	}
	return nil
}
