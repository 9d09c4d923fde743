package terminal

import (
	"errors"

	"github.com/de-tools/revops-pilot/pkg/models/domain"
)

const (
	ExitOK            = 0
	ExitFailure       = 1
	ExitConfiguration = 2
	ExitDataQuality   = 3
)

// ConfigError marks failures to load the configuration files themselves
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return e.Err.Error() }
func (e *ConfigError) Unwrap() error { return e.Err }

// Classify names the error class shown to the user
func Classify(err error) string {
	var cfgErr *ConfigError
	switch {
	case err == nil:
		return ""
	case domain.IsConfigurationError(err), errors.As(err, &cfgErr):
		return "configuration"
	case domain.IsDataQualityError(err):
		return "data quality"
	default:
		return "error"
	}
}

// ExitCode maps an error class to the process exit status
func ExitCode(err error) int {
	switch Classify(err) {
	case "":
		return ExitOK
	case "configuration":
		return ExitConfiguration
	case "data quality":
		return ExitDataQuality
	default:
		return ExitFailure
	}
}
