package domain

import "time"

// SourceSystem tags the upstream system a deal record came from
type SourceSystem string

const (
	SourceHubspot SourceSystem = "hubspot"
	SourceSheets  SourceSystem = "sheets"
)

// UnifiedField names a field of the unified record schema
type UnifiedField string

const (
	FieldIdentifier   UnifiedField = "identifier"
	FieldName         UnifiedField = "name"
	FieldAmount       UnifiedField = "amount"
	FieldStage        UnifiedField = "stage"
	FieldOwner        UnifiedField = "owner"
	FieldLastModified UnifiedField = "last_modified"
)

// RequiredFields must all be mapped for every source system.
var RequiredFields = []UnifiedField{
	FieldIdentifier,
	FieldName,
	FieldAmount,
	FieldStage,
	FieldOwner,
	FieldLastModified,
}

// FieldMapping maps a unified field to the source-specific field name
type FieldMapping map[UnifiedField]string

// SchemaMap holds the field mapping of each source system
type SchemaMap map[SourceSystem]FieldMapping

// RawRecord is one deal as extracted from a source system, keyed by source field names
type RawRecord struct {
	Source SourceSystem
	Fields map[string]any
}

// UnifiedRecord is the canonical shape of a deal regardless of its source.
// SourceID is unique within SourceSystem only.
type UnifiedRecord struct {
	SourceID     string
	DisplayName  string
	Amount       float64
	Stage        CanonicalStage
	OwnerID      string
	LastModified time.Time // zero when the source had no parseable timestamp
	SourceSystem SourceSystem
}

// HasLastModified reports whether the record carries a usable timestamp
func (r UnifiedRecord) HasLastModified() bool {
	return !r.LastModified.IsZero()
}
