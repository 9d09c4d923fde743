package schema

const (
	TableHubspotDeals = "raw_hubspot_deals"
	TableSheetsDeals  = "raw_sheets_pipeline_sheet"
	TableCanonical    = "canonical_pipeline"
	TablePipelineRuns = "pipeline_runs"
)

const RawHubspotDeals = `
	CREATE TABLE IF NOT EXISTS raw_hubspot_deals (
		deal_id VARCHAR PRIMARY KEY,
		name VARCHAR NOT NULL,
		amount DOUBLE NOT NULL,
		stage VARCHAR NOT NULL,
		owner VARCHAR NOT NULL,
		created_at TIMESTAMP NOT NULL,
		last_modified TIMESTAMP NOT NULL,
		source_system VARCHAR DEFAULT 'hubspot'
	);
`

const RawSheetsPipeline = `
	CREATE TABLE IF NOT EXISTS raw_sheets_pipeline_sheet (
		pipeline_id VARCHAR PRIMARY KEY,
		deal_name VARCHAR NOT NULL,
		deal_amount DOUBLE NOT NULL,
		current_stage VARCHAR NOT NULL,
		account_owner VARCHAR NOT NULL,
		created_date TIMESTAMP NOT NULL,
		updated_date TIMESTAMP NOT NULL,
		source_system VARCHAR DEFAULT 'sheets'
	);
`

const CanonicalPipeline = `
	CREATE TABLE IF NOT EXISTS canonical_pipeline (
		source_system VARCHAR NOT NULL,
		source_id VARCHAR NOT NULL,
		name VARCHAR,
		owner_id VARCHAR,
		amount DOUBLE NOT NULL,
		canonical_stage VARCHAR NOT NULL,
		last_modified TIMESTAMP NULL,
		PRIMARY KEY (source_system, source_id)
	);
`

const PipelineRuns = `
	CREATE TABLE IF NOT EXISTS pipeline_runs (
		id VARCHAR PRIMARY KEY,
		client VARCHAR NOT NULL,
		period_start DATE NOT NULL,
		period_end DATE NOT NULL,
		status VARCHAR NOT NULL,
		error VARCHAR NULL,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NULL
	);
`

// BootQueries creates every table the pipeline reads or writes
var BootQueries = []string{
	RawHubspotDeals,
	RawSheetsPipeline,
	CanonicalPipeline,
	PipelineRuns,
}
