package api

import "time"

// Deal is one row of a summary section
type Deal struct {
	DealID         string     `json:"deal_id"`
	Name           string     `json:"name"`
	OwnerID        string     `json:"owner_id"`
	Amount         float64    `json:"amount"`
	CanonicalStage string     `json:"canonical_stage"`
	LastModified   *time.Time `json:"last_modified"`
	SourceSystem   string     `json:"source_system"`
	DaysInStage    int        `json:"days_in_stage"`
}

type PipelineChange struct {
	WeightedPipelinePrev int64 `json:"weighted_pipeline_prev"`
	WeightedPipelineNow  int64 `json:"weighted_pipeline_now"`
	PrevIsPlaceholder    bool  `json:"weighted_pipeline_prev_is_placeholder"`
}

// DeltaSummary is the payload handed to narration and returned by the API
type DeltaSummary struct {
	ClientName     string         `json:"client_name"`
	PeriodStart    string         `json:"period_start"`
	PeriodEnd      string         `json:"period_end"`
	NewWon         []Deal         `json:"new_won"`
	Lost           []Deal         `json:"lost"`
	TopRisks       []Deal         `json:"top_risks"`
	PipelineChange PipelineChange `json:"pipeline_change"`
	Notes          []string       `json:"notes"`
}

type StageTotal struct {
	Stage       string  `json:"canonical_stage"`
	Deals       int     `json:"deals"`
	TotalAmount float64 `json:"total_amount"`
}

type Run struct {
	ID          string     `json:"id"`
	Client      string     `json:"client"`
	PeriodStart string     `json:"period_start"`
	PeriodEnd   string     `json:"period_end"`
	Status      string     `json:"status"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

type Error struct {
	Class   string `json:"class"`
	Message string `json:"message"`
}

// SummaryResponse pairs the payload with its narrative, if one was requested
type SummaryResponse struct {
	Payload       DeltaSummary `json:"payload"`
	Summary       string       `json:"summary,omitempty"`
	SummaryFailed bool         `json:"summary_failed,omitempty"`
}

// RunRequest is the body of POST /api/v1/runs; every field is optional
type RunRequest struct {
	Client   string `json:"client"`
	DaysBack *int   `json:"days_back"`
	Narrate  bool   `json:"narrate"`
	Post     bool   `json:"post"`
}

type RunAccepted struct {
	Client      string `json:"client"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
}
