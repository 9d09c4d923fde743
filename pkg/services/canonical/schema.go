package canonical

import (
	"github.com/de-tools/revops-pilot/pkg/models/domain"
)

// DefaultSchemaMap returns the field mappings of the CRM and spreadsheet raw tables
func DefaultSchemaMap() domain.SchemaMap {
	return domain.SchemaMap{
		domain.SourceHubspot: {
			domain.FieldIdentifier:   "deal_id",
			domain.FieldName:         "name",
			domain.FieldAmount:       "amount",
			domain.FieldStage:        "stage",
			domain.FieldOwner:        "owner",
			domain.FieldLastModified: "last_modified",
		},
		domain.SourceSheets: {
			domain.FieldIdentifier:   "pipeline_id",
			domain.FieldName:         "deal_name",
			domain.FieldAmount:       "deal_amount",
			domain.FieldStage:        "current_stage",
			domain.FieldOwner:        "account_owner",
			domain.FieldLastModified: "updated_date",
		},
	}
}

// ValidateSchemaMap checks that every source maps every required unified field
func ValidateSchemaMap(schema domain.SchemaMap) error {
	if len(schema) == 0 {
		return &domain.ConfigurationError{Err: domain.ErrMissingMapping}
	}
	for source, mapping := range schema {
		if err := validateMapping(source, mapping); err != nil {
			return err
		}
	}
	return nil
}

func validateMapping(source domain.SourceSystem, mapping domain.FieldMapping) error {
	for _, field := range domain.RequiredFields {
		if mapping[field] == "" {
			return &domain.ConfigurationError{
				Source: source,
				Field:  field,
				Err:    domain.ErrMissingMapping,
			}
		}
	}
	return nil
}
