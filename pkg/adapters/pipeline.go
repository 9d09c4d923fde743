package adapters

import (
	"database/sql"

	"github.com/de-tools/revops-pilot/pkg/models/domain"
	"github.com/de-tools/revops-pilot/pkg/models/store"
)

func MapUnifiedRecordToStoreCanonicalDeal(record domain.UnifiedRecord) store.CanonicalDeal {
	return store.CanonicalDeal{
		SourceSystem:   string(record.SourceSystem),
		SourceID:       record.SourceID,
		Name:           record.DisplayName,
		OwnerID:        record.OwnerID,
		Amount:         record.Amount,
		CanonicalStage: string(record.Stage),
		LastModified: sql.NullTime{
			Time:  record.LastModified,
			Valid: record.HasLastModified(),
		},
	}
}

// MapStoreCanonicalDealToUnifiedRecord trusts nothing about the stored stage:
// anything outside the canonical set reads back as unspecified.
func MapStoreCanonicalDealToUnifiedRecord(deal store.CanonicalDeal) domain.UnifiedRecord {
	stage := domain.CanonicalStage(deal.CanonicalStage)
	if !stage.Valid() {
		stage = domain.StageUnspecified
	}

	record := domain.UnifiedRecord{
		SourceID:     deal.SourceID,
		DisplayName:  deal.Name,
		Amount:       deal.Amount,
		Stage:        stage,
		OwnerID:      deal.OwnerID,
		SourceSystem: domain.SourceSystem(deal.SourceSystem),
	}
	if deal.LastModified.Valid {
		record.LastModified = deal.LastModified.Time
	}
	return record
}
