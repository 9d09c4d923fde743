package config

import (
	"fmt"

	"github.com/de-tools/revops-pilot/pkg/models/domain"
	"github.com/de-tools/revops-pilot/pkg/services/canonical"
	"github.com/de-tools/revops-pilot/pkg/store/schema"
	"gopkg.in/ini.v1"
)

// Source describes where one source system's deals live and how its fields are named
type Source struct {
	Table  string
	Fields domain.FieldMapping
}

type Sources map[domain.SourceSystem]Source

// SchemaMap extracts the field mappings for the canonicalizer
func (s Sources) SchemaMap() domain.SchemaMap {
	m := make(domain.SchemaMap, len(s))
	for source, src := range s {
		m[source] = src.Fields
	}
	return m
}

// DefaultSources describes the CRM and spreadsheet raw tables
func DefaultSources() Sources {
	fields := canonical.DefaultSchemaMap()
	return Sources{
		domain.SourceHubspot: {Table: schema.TableHubspotDeals, Fields: fields[domain.SourceHubspot]},
		domain.SourceSheets:  {Table: schema.TableSheetsDeals, Fields: fields[domain.SourceSheets]},
	}
}

// LoadSources reads an ini file with one section per source system:
//
//	[hubspot]
//	table = raw_hubspot_deals
//	identifier = deal_id
//	name = name
//	...
//
// Missing field keys are left empty; the canonicalizer rejects them before any record is read.
// An empty path yields DefaultSources.
func LoadSources(path string) (Sources, error) {
	if path == "" {
		return DefaultSources(), nil
	}

	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load sources file: %w", err)
	}

	sources := Sources{}
	for _, section := range cfg.Sections() {
		if section.Name() == ini.DefaultSection || len(section.Keys()) == 0 {
			continue
		}

		fields := domain.FieldMapping{}
		for _, field := range domain.RequiredFields {
			if value := section.Key(string(field)).String(); value != "" {
				fields[field] = value
			}
		}
		sources[domain.SourceSystem(section.Name())] = Source{
			Table:  section.Key("table").String(),
			Fields: fields,
		}
	}

	if len(sources) == 0 {
		return nil, &domain.ConfigurationError{Err: fmt.Errorf("no sources defined in %s", path)}
	}
	return sources, nil
}
