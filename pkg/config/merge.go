package config

import "github.com/codeready-toolchain/quizkernel/pkg/bkt"

// mergeCatalogues merges the built-in catalogue with a user-supplied
// one: user quizzes and knowledge components override built-in entries
// with the same id, and add any new ones. Generalised from
// pkg/config/merge.go's mergeAgents/mergeMCPServers, which apply the
// same override-by-id rule to TARSy's agent and MCP-server registries.
func mergeCatalogues(builtin, user CatalogueYAML) (map[string]QuizConfig, bkt.Catalogue, error) {
	kcs := make(map[string]KCYAML, len(builtin.KnowledgeComponents)+len(user.KnowledgeComponents))
	for id, kc := range builtin.KnowledgeComponents {
		kcs[id] = kc
	}
	for id, kc := range user.KnowledgeComponents {
		kcs[id] = kc
	}

	quizYAML := make(map[string]QuizYAML, len(builtin.Quizzes)+len(user.Quizzes))
	for id, q := range builtin.Quizzes {
		quizYAML[id] = q
	}
	for id, q := range user.Quizzes {
		quizYAML[id] = q
	}

	merged := CatalogueYAML{KnowledgeComponents: kcs, Quizzes: quizYAML}
	return merged.toModels()
}
