package config

// GetBuiltinCatalogue returns the catalogue shipped with the binary: a
// single UK-Geography quiz exercising a handful of knowledge components,
// used when no catalogue file is supplied and by demos/integration
// tests. Generalised from pkg/config/builtin.go's GetBuiltinConfig,
// which ships a built-in set of agents/chains the same way.
func GetBuiltinCatalogue() CatalogueYAML {
	return CatalogueYAML{
		KnowledgeComponents: map[string]KCYAML{
			"uk_capitals": {PL0: 0.60, PT: 0.30, PS: 0.10, PG: 0.20},
			"uk_rivers":   {PL0: 0.40, PT: 0.25, PS: 0.10, PG: 0.20},
			"uk_regions":  {PL0: 0.50, PT: 0.30, PS: 0.10, PG: 0.20},
		},
		Quizzes: map[string]QuizYAML{
			"uk-geography": {
				Title: "UK Geography",
				Questions: []QuestionYAML{
					{
						ID:   "q-001",
						Stem: "What is the capital of Scotland?",
						Options: []OptionYAML{
							{Label: "A", Text: "Glasgow"},
							{Label: "B", Text: "Edinburgh", Correct: true},
							{Label: "C", Text: "Aberdeen"},
							{Label: "D", Text: "Dundee"},
						},
						A: 1.10, B: -0.50, C: 0.25, Bloom: 1, KC: "uk_capitals",
					},
					{
						ID:   "q-002",
						Stem: "Which of these is the longest river wholly in the UK?",
						Options: []OptionYAML{
							{Label: "A", Text: "Thames"},
							{Label: "B", Text: "Trent"},
							{Label: "C", Text: "Severn", Correct: true},
							{Label: "D", Text: "Tyne"},
						},
						A: 0.95, B: -1.50, C: 0.25, Bloom: 2, KC: "uk_rivers",
					},
					{
						ID:   "q-003",
						Stem: "Which English county borders Wales along the Severn estuary?",
						Options: []OptionYAML{
							{Label: "A", Text: "Gloucestershire", Correct: true},
							{Label: "B", Text: "Kent"},
							{Label: "C", Text: "Norfolk"},
							{Label: "D", Text: "Cumbria"},
						},
						A: 1.30, B: 0.80, C: 0.20, Bloom: 2, KC: "uk_regions",
					},
					{
						ID:   "q-004",
						Stem: "What is the capital of Northern Ireland?",
						Options: []OptionYAML{
							{Label: "A", Text: "Belfast", Correct: true},
							{Label: "B", Text: "Derry"},
							{Label: "C", Text: "Armagh"},
							{Label: "D", Text: "Lisburn"},
						},
						A: 1.00, B: -0.20, C: 0.25, Bloom: 1, KC: "uk_capitals",
					},
					{
						ID:   "q-005",
						Stem: "Which river flows through London?",
						Options: []OptionYAML{
							{Label: "A", Text: "Mersey"},
							{Label: "B", Text: "Thames", Correct: true},
							{Label: "C", Text: "Avon"},
							{Label: "D", Text: "Clyde"},
						},
						A: 1.45, B: -1.20, C: 0.25, Bloom: 1, KC: "uk_rivers",
					},
				},
			},
		},
	}
}
