package domain

// CanonicalStage is one of the fixed pipeline stages every source stage label maps onto.
type CanonicalStage string

const (
	StageQualification CanonicalStage = "qualification"
	StageEvaluation    CanonicalStage = "evaluation"
	StageProposal      CanonicalStage = "proposal"
	StageClosedWon     CanonicalStage = "closed_won"
	StageClosedLost    CanonicalStage = "closed_lost"
	StageUnspecified   CanonicalStage = "unspecified"
)

// Stages lists every canonical stage in pipeline order.
var Stages = []CanonicalStage{
	StageQualification,
	StageEvaluation,
	StageProposal,
	StageClosedWon,
	StageClosedLost,
	StageUnspecified,
}

func (s CanonicalStage) IsClosed() bool {
	return s == StageClosedWon || s == StageClosedLost
}

// Valid reports whether s belongs to the closed stage set.
func (s CanonicalStage) Valid() bool {
	for _, stage := range Stages {
		if s == stage {
			return true
		}
	}
	return false
}

func (s CanonicalStage) String() string {
	return string(s)
}
