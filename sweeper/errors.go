package sweeper

import (
	"errors"
	"fmt"

	kerrors "k8s.io/apimachinery/pkg/util/errors"
)

var (
	errNegativeBudget = errors.New("conflict budget must be >= 0")
	errNilLogger      = errors.New("logger must not be nil")
	errNilRecorder    = errors.New("metrics recorder must not be nil")
	errNilSolver      = errors.New("solver must not be nil")
)

// ConfigError reports a problem with one Option passed to New. Several
// options are validated independently, so New aggregates every failure it
// finds with kerrors.NewAggregate rather than stopping at the first one,
// matching the collector's own config-validation idiom.
type ConfigError struct {
	Option string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("sweeper: option %s: %v", e.Option, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// aggregateConfigErrors folds zero or more option validation failures into
// a single error, or nil if errs is empty/all-nil.
func aggregateConfigErrors(errs []error) error {
	return kerrors.NewAggregate(errs)
}
