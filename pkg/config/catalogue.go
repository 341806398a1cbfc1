package config

import (
	"fmt"

	"github.com/codeready-toolchain/quizkernel/pkg/bkt"
	"github.com/codeready-toolchain/quizkernel/pkg/models"
)

// EngineDefaults are the deployment-overridable IRT/BKT constants.
// Pointer fields distinguish "not set in YAML" from "set to zero", the
// same convention pkg/config/defaults.go uses for MaxIterations.
type EngineDefaults struct {
	PriorMean *float64 `yaml:"prior_mean,omitempty"`
	PriorSd   *float64 `yaml:"prior_sd,omitempty"`
}

// CatalogueYAML is the on-disk shape of a catalogue file: quizzes,
// questions, and the knowledge-component parameter table.
type CatalogueYAML struct {
	Engine              *EngineDefaults     `yaml:"engine,omitempty"`
	KnowledgeComponents map[string]KCYAML   `yaml:"knowledge_components"`
	Quizzes             map[string]QuizYAML `yaml:"quizzes"`
}

// KCYAML is one knowledge component's calibrated BKT parameters.
type KCYAML struct {
	PL0 float64 `yaml:"pl0"`
	PT  float64 `yaml:"pt"`
	PS  float64 `yaml:"ps"`
	PG  float64 `yaml:"pg"`
}

// QuizYAML is one quiz's title and authored question list.
type QuizYAML struct {
	Title     string         `yaml:"title"`
	Questions []QuestionYAML `yaml:"questions"`
}

// QuestionYAML is one calibrated item.
type QuestionYAML struct {
	ID      string       `yaml:"id"`
	Stem    string       `yaml:"stem"`
	Options []OptionYAML `yaml:"options"`
	A       float64      `yaml:"a"`
	B       float64      `yaml:"b"`
	C       float64      `yaml:"c"`
	Bloom   int          `yaml:"bloom"`
	KC      string       `yaml:"kc"`
}

// OptionYAML is one labelled answer choice.
type OptionYAML struct {
	Label   string `yaml:"label"`
	Text    string `yaml:"text"`
	Correct bool   `yaml:"correct"`
}

// QuizConfig is the loaded, model-typed form of a QuizYAML, ready for
// the repository layer to seed and the kernel to serve.
type QuizConfig struct {
	Quiz      models.Quiz
	Questions []models.Question
}

// toModels converts the YAML catalogue into models.Quiz/models.Question
// values and a bkt.Catalogue, in authored question order.
func (c CatalogueYAML) toModels() (map[string]QuizConfig, bkt.Catalogue, error) {
	kcs := make(bkt.Catalogue, len(c.KnowledgeComponents))
	for id, p := range c.KnowledgeComponents {
		kcs[id] = bkt.Params{PL0: p.PL0, PT: p.PT, PS: p.PS, PG: p.PG}
	}

	quizzes := make(map[string]QuizConfig, len(c.Quizzes))
	for quizID, qy := range c.Quizzes {
		questions := make([]models.Question, 0, len(qy.Questions))
		for order, questionY := range qy.Questions {
			question, err := questionY.toModel(quizID, order)
			if err != nil {
				return nil, nil, err
			}
			questions = append(questions, question)
		}
		quizzes[quizID] = QuizConfig{
			Quiz:      models.Quiz{ID: quizID, Title: qy.Title},
			Questions: questions,
		}
	}
	return quizzes, kcs, nil
}

func (q QuestionYAML) toModel(quizID string, order int) (models.Question, error) {
	if len(q.Options) != 4 {
		return models.Question{}, fmt.Errorf("question %s: must have exactly 4 options, got %d", q.ID, len(q.Options))
	}
	var options [4]models.Option
	correctCount := 0
	for i, o := range q.Options {
		options[i] = models.Option{Label: o.Label, Text: o.Text, IsCorrect: o.Correct}
		if o.Correct {
			correctCount++
		}
	}
	if correctCount != 1 {
		return models.Question{}, fmt.Errorf("question %s: must have exactly 1 correct option, got %d", q.ID, correctCount)
	}
	return models.Question{
		ID:      q.ID,
		QuizID:  quizID,
		Stem:    q.Stem,
		Options: options,
		A:       q.A,
		B:       q.B,
		C:       q.C,
		Bloom:   q.Bloom,
		KC:      q.KC,
		Order:   order,
	}, nil
}
