package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingMapping    = errors.New("missing field mapping")
	ErrUnknownSource     = errors.New("unknown source system")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrMissingIdentifier = errors.New("missing identifier")
	ErrInvalidPeriod     = errors.New("period start is after period end")
	ErrInvalidDate       = errors.New("invalid date, expected YYYY-MM-DD")
)

// ConfigurationError reports a schema or setup problem detected before any record is processed
type ConfigurationError struct {
	Source SourceSystem
	Field  UnifiedField
	Err    error
}

func (e *ConfigurationError) Error() string {
	switch {
	case e.Field != "":
		return fmt.Sprintf("configuration error: source %q field %q: %v", e.Source, e.Field, e.Err)
	case e.Source != "":
		return fmt.Sprintf("configuration error: source %q: %v", e.Source, e.Err)
	default:
		return fmt.Sprintf("configuration error: %v", e.Err)
	}
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// DataQualityError reports input that cannot be used without changing the reported totals
type DataQualityError struct {
	Source   SourceSystem
	RecordID string
	Field    string
	Value    any
	Err      error
}

func (e *DataQualityError) Error() string {
	if e.RecordID != "" || e.Source != "" {
		return fmt.Sprintf("data quality error: %s record %q field %q (value %v): %v",
			e.Source, e.RecordID, e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("data quality error: %s (value %v): %v", e.Field, e.Value, e.Err)
}

func (e *DataQualityError) Unwrap() error { return e.Err }

// IsConfigurationError reports whether err carries a ConfigurationError
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsDataQualityError reports whether err carries a DataQualityError
func IsDataQualityError(err error) bool {
	var target *DataQualityError
	return errors.As(err, &target)
}
