package canonical

import (
	"context"
	"fmt"

	"github.com/de-tools/revops-pilot/pkg/models/domain"
	"github.com/rs/zerolog"
)

// Canonicalizer maps raw per-source records onto the unified record schema
type Canonicalizer interface {
	Canonicalize(ctx context.Context, raws []domain.RawRecord) ([]domain.UnifiedRecord, error)
}

// Options controls how a batch reacts to records with bad data.
// By default the first bad record aborts the batch and nothing is returned.
type Options struct {
	// SkipInvalid drops records that fail data-quality checks and keeps going
	SkipInvalid bool
	// OnReject is called for every dropped record when SkipInvalid is set
	OnReject func(raw domain.RawRecord, err error)
}

type canonicalizer struct {
	schema domain.SchemaMap
	opts   Options
}

// NewCanonicalizer validates the schema map up front so that a missing mapping
// fails before any record is touched.
func NewCanonicalizer(schema domain.SchemaMap, opts Options) (Canonicalizer, error) {
	if err := ValidateSchemaMap(schema); err != nil {
		return nil, err
	}
	return &canonicalizer{schema: schema, opts: opts}, nil
}

// Canonicalize runs a fail-fast canonicalization of raws using schema
func Canonicalize(ctx context.Context, raws []domain.RawRecord, schema domain.SchemaMap) ([]domain.UnifiedRecord, error) {
	c, err := NewCanonicalizer(schema, Options{})
	if err != nil {
		return nil, err
	}
	return c.Canonicalize(ctx, raws)
}

func (c *canonicalizer) Canonicalize(ctx context.Context, raws []domain.RawRecord) ([]domain.UnifiedRecord, error) {
	logger := zerolog.Ctx(ctx)

	// every source in the batch must be known before processing starts
	for _, raw := range raws {
		if _, ok := c.schema[raw.Source]; !ok {
			return nil, &domain.ConfigurationError{Source: raw.Source, Err: domain.ErrUnknownSource}
		}
	}

	records := make([]domain.UnifiedRecord, 0, len(raws))
	rejected := 0
	for i, raw := range raws {
		record, err := c.canonicalizeRecord(ctx, raw)
		if err != nil {
			if !c.opts.SkipInvalid {
				return nil, fmt.Errorf("record %d: %w", i, err)
			}
			rejected++
			logger.Warn().
				Err(err).
				Str("source", string(raw.Source)).
				Int("index", i).
				Msg("skipping invalid record")
			if c.opts.OnReject != nil {
				c.opts.OnReject(raw, err)
			}
			continue
		}
		records = append(records, record)
	}

	logger.Debug().
		Int("input", len(raws)).
		Int("output", len(records)).
		Int("rejected", rejected).
		Msg("canonicalized records")

	return records, nil
}

func (c *canonicalizer) canonicalizeRecord(ctx context.Context, raw domain.RawRecord) (domain.UnifiedRecord, error) {
	mapping := c.schema[raw.Source]
	field := func(f domain.UnifiedField) any {
		return raw.Fields[mapping[f]]
	}

	id := stringify(field(domain.FieldIdentifier))
	if id == "" {
		return domain.UnifiedRecord{}, &domain.DataQualityError{
			Source: raw.Source,
			Field:  mapping[domain.FieldIdentifier],
			Value:  field(domain.FieldIdentifier),
			Err:    domain.ErrMissingIdentifier,
		}
	}

	amount, err := parseAmount(field(domain.FieldAmount))
	if err != nil {
		return domain.UnifiedRecord{}, &domain.DataQualityError{
			Source:   raw.Source,
			RecordID: id,
			Field:    mapping[domain.FieldAmount],
			Value:    field(domain.FieldAmount),
			Err:      err,
		}
	}

	lastModified, ok := parseTimestamp(field(domain.FieldLastModified))
	if !ok {
		zerolog.Ctx(ctx).Warn().
			Str("source", string(raw.Source)).
			Str("id", id).
			Interface("value", field(domain.FieldLastModified)).
			Msg("last modified timestamp missing or unparseable")
	}

	return domain.UnifiedRecord{
		SourceID:     id,
		DisplayName:  stringify(field(domain.FieldName)),
		Amount:       amount,
		Stage:        NormalizeStage(field(domain.FieldStage)),
		OwnerID:      stringify(field(domain.FieldOwner)),
		LastModified: lastModified,
		SourceSystem: raw.Source,
	}, nil
}
