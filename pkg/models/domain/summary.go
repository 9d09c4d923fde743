package domain

// StagedDeal is a unified record annotated with whole days elapsed since its last change
type StagedDeal struct {
	UnifiedRecord
	DaysInStage int
}

// PipelineChange compares aggregate pipeline value between two snapshots.
// WeightedPipelinePrev is a placeholder until historical snapshots exist; PrevIsPlaceholder marks it.
type PipelineChange struct {
	WeightedPipelinePrev int64
	WeightedPipelineNow  int64
	PrevIsPlaceholder    bool
}

// DeltaSummary is the outcome of one reporting run
type DeltaSummary struct {
	ClientName     string
	Period         Period
	NewWon         []StagedDeal
	Lost           []StagedDeal
	TopRisks       []StagedDeal
	PipelineChange PipelineChange
	Notes          []string
}

// StageTotal aggregates the deals sitting in one canonical stage
type StageTotal struct {
	Stage       CanonicalStage
	Deals       int
	TotalAmount float64
}
