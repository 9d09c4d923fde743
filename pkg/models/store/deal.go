package store

import (
	"database/sql"
	"time"
)

// HubspotDeal is a row of raw_hubspot_deals
type HubspotDeal struct {
	DealID       string
	Name         string
	Amount       float64
	Stage        string
	Owner        string
	CreatedAt    time.Time
	LastModified time.Time
}

// SheetsDeal is a row of raw_sheets_pipeline_sheet
type SheetsDeal struct {
	PipelineID   string
	DealName     string
	DealAmount   float64
	CurrentStage string
	AccountOwner string
	CreatedDate  time.Time
	UpdatedDate  time.Time
}

// CanonicalDeal is a row of canonical_pipeline
type CanonicalDeal struct {
	SourceSystem   string
	SourceID       string
	Name           string
	OwnerID        string
	Amount         float64
	CanonicalStage string
	LastModified   sql.NullTime
}
