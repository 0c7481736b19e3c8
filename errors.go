package runstats

import "fmt"

// ConfigurationError reports an invalid dimension spec or reduce-axes set at
// construction time. It is thrown with panic; catch it by type, e.g. with
// `exceptions.TryCatch[*runstats.ConfigurationError]` from
// github.com/gomlx/exceptions.
type ConfigurationError struct {
	Message string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string { return e.Message }

// ShapeError reports a batch or bin-index that doesn't match the configured
// dimension spec on a given AccumulateBatch call. The accumulator state is
// left unchanged when it is thrown. Catch it by type, e.g. with
// `exceptions.TryCatch[*runstats.ShapeError]`.
type ShapeError struct {
	Message string
}

// Error implements the error interface.
func (e *ShapeError) Error() string { return e.Message }

func configErrorf(format string, args ...any) {
	panic(&ConfigurationError{Message: fmt.Sprintf(format, args...)})
}

func shapeErrorf(format string, args ...any) {
	panic(&ShapeError{Message: fmt.Sprintf(format, args...)})
}
