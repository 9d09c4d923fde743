package canonical

import (
	"strings"

	"github.com/de-tools/revops-pilot/pkg/models/domain"
)

// stageSynonyms lists the accepted lower-case labels for each canonical stage.
// Matching is exact after lower-casing and trimming.
var stageSynonyms = map[domain.CanonicalStage][]string{
	domain.StageClosedWon:     {"closed_won", "won"},
	domain.StageClosedLost:    {"closed_lost", "lost"},
	domain.StageProposal:      {"proposal"},
	domain.StageEvaluation:    {"evaluation"},
	domain.StageQualification: {"qualification"},
}

var stageLookup = buildStageLookup(stageSynonyms)

func buildStageLookup(synonyms map[domain.CanonicalStage][]string) map[string]domain.CanonicalStage {
	lookup := make(map[string]domain.CanonicalStage)
	for stage, labels := range synonyms {
		for _, label := range labels {
			lookup[label] = stage
		}
	}
	return lookup
}

// NormalizeStage maps a free-text stage label onto the canonical vocabulary.
// Anything outside the synonym table, including nil and non-string values, is unspecified.
func NormalizeStage(raw any) domain.CanonicalStage {
	var label string
	switch v := raw.(type) {
	case string:
		label = v
	case []byte:
		label = string(v)
	case *string:
		if v == nil {
			return domain.StageUnspecified
		}
		label = *v
	default:
		return domain.StageUnspecified
	}

	if stage, ok := stageLookup[strings.ToLower(strings.TrimSpace(label))]; ok {
		return stage
	}
	return domain.StageUnspecified
}

// Synonyms returns a copy of the accepted labels for stage
func Synonyms(stage domain.CanonicalStage) []string {
	return append([]string(nil), stageSynonyms[stage]...)
}
